package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"codeclash/internal/common"
	"codeclash/internal/domain/model"
)

type fakeContestRepo struct {
	contests map[string]*model.Contest
}

func newFakeContestRepo() *fakeContestRepo {
	return &fakeContestRepo{contests: map[string]*model.Contest{}}
}

func (f *fakeContestRepo) Create(_ context.Context, c *model.Contest) error {
	stored := *c
	f.contests[c.ID] = &stored
	return nil
}

func (f *fakeContestRepo) FindByID(_ context.Context, id string) (*model.Contest, error) {
	c, ok := f.contests[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	found := *c
	return &found, nil
}

func (f *fakeContestRepo) List(_ context.Context) ([]model.Contest, error) {
	contests := []model.Contest{}
	for _, c := range f.contests {
		contests = append(contests, *c)
	}
	return contests, nil
}

func (f *fakeContestRepo) Update(_ context.Context, c *model.Contest) error {
	if _, ok := f.contests[c.ID]; !ok {
		return common.ErrNotFound
	}
	stored := *c
	f.contests[c.ID] = &stored
	return nil
}

func (f *fakeContestRepo) TogglePause(_ context.Context, id string) (*model.Contest, error) {
	c, ok := f.contests[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	c.Paused = !c.Paused
	toggled := *c
	return &toggled, nil
}

func (f *fakeContestRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.contests[id]; !ok {
		return common.ErrNotFound
	}
	delete(f.contests, id)
	return nil
}

type fakeParticipantRepo struct {
	participants []model.ContestParticipant
}

func (f *fakeParticipantRepo) Create(_ context.Context, p *model.ContestParticipant) error {
	for _, existing := range f.participants {
		if existing.ContestID == p.ContestID && existing.UserID == p.UserID {
			return fmt.Errorf("user already joined this contest: %w", common.ErrConflict)
		}
	}
	f.participants = append(f.participants, *p)
	return nil
}

func (f *fakeParticipantRepo) ListByContest(_ context.Context, contestID string) ([]model.ContestParticipant, error) {
	out := []model.ContestParticipant{}
	for _, p := range f.participants {
		if p.ContestID == contestID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeParticipantRepo) CountsByContest(_ context.Context, contestIDs []string) (map[string]int, error) {
	counts := map[string]int{}
	for _, p := range f.participants {
		counts[p.ContestID]++
	}
	return counts, nil
}

func TestJoinContestCopiesContestType(t *testing.T) {
	contests := newFakeContestRepo()
	contests.contests["c1"] = &model.Contest{ID: "c1", Title: "Weekly", Type: model.ContestTeam}
	svc := NewParticipantService(&fakeParticipantRepo{}, contests)

	participant, err := svc.JoinContest(context.Background(), "u1", "Alice", "a@x.com", JoinContestRequest{ContestID: "c1"})
	if err != nil {
		t.Fatalf("JoinContest: %v", err)
	}
	if participant.Type != model.ContestTeam {
		t.Errorf("participant type = %q, want %q", participant.Type, model.ContestTeam)
	}
}

func TestJoinPausedContestIsRejected(t *testing.T) {
	contests := newFakeContestRepo()
	contests.contests["c1"] = &model.Contest{ID: "c1", Title: "Weekly", Type: model.ContestIndividual, Paused: true}
	svc := NewParticipantService(&fakeParticipantRepo{}, contests)

	_, err := svc.JoinContest(context.Background(), "u1", "Alice", "a@x.com", JoinContestRequest{ContestID: "c1"})
	if !errors.Is(err, common.ErrPreconditionFailed) {
		t.Fatalf("expected ErrPreconditionFailed, got %v", err)
	}
}

func TestJoinContestTwiceConflicts(t *testing.T) {
	contests := newFakeContestRepo()
	contests.contests["c1"] = &model.Contest{ID: "c1", Title: "Weekly", Type: model.ContestIndividual}
	svc := NewParticipantService(&fakeParticipantRepo{}, contests)

	if _, err := svc.JoinContest(context.Background(), "u1", "Alice", "a@x.com", JoinContestRequest{ContestID: "c1"}); err != nil {
		t.Fatalf("first join: %v", err)
	}
	_, err := svc.JoinContest(context.Background(), "u1", "Alice", "a@x.com", JoinContestRequest{ContestID: "c1"})
	if !errors.Is(err, common.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}
