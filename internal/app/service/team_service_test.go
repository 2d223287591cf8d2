package service

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"codeclash/internal/common"
	"codeclash/internal/domain/model"

	log "github.com/sirupsen/logrus"
)

func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	m.Run()
}

// noopDriver backs the *sql.DB handle the coordinator needs for BeginTx.
// The fake repository below ignores the transaction entirely.
type noopDriver struct{}
type noopConn struct{}
type noopTx struct{}

func (noopDriver) Open(string) (driver.Conn, error)  { return noopConn{}, nil }
func (noopConn) Prepare(string) (driver.Stmt, error) { return nil, errors.New("not implemented") }
func (noopConn) Close() error                        { return nil }
func (noopConn) Begin() (driver.Tx, error)           { return noopTx{}, nil }
func (noopTx) Commit() error                         { return nil }
func (noopTx) Rollback() error                       { return nil }

func init() {
	sql.Register("nooptx", noopDriver{})
}

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("nooptx", "")
	if err != nil {
		t.Fatalf("open noop db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

type fakeTeamRepo struct {
	byID   map[string]*model.Team
	byCode map[string]*model.Team
}

func newFakeTeamRepo() *fakeTeamRepo {
	return &fakeTeamRepo{byID: map[string]*model.Team{}, byCode: map[string]*model.Team{}}
}

func (f *fakeTeamRepo) add(t *model.Team) {
	f.byID[t.ID] = t
	f.byCode[t.Code] = t
}

func (f *fakeTeamRepo) Insert(_ context.Context, _ *sql.Tx, t *model.Team) error {
	if _, exists := f.byCode[t.Code]; exists {
		return fmt.Errorf("team code already taken: %w", common.ErrConflict)
	}
	stored := *t
	stored.Members = nil
	f.add(&stored)
	return nil
}

func (f *fakeTeamRepo) InsertMember(_ context.Context, _ *sql.Tx, teamID, _ string, m model.TeamMember) error {
	team, ok := f.byID[teamID]
	if !ok {
		return common.ErrNotFound
	}
	if team.HasMember(m.UserID) {
		return fmt.Errorf("already in this team: %w", common.ErrConflict)
	}
	m.JoinedAt = time.Now()
	team.Members = append(team.Members, m)
	return nil
}

func (f *fakeTeamRepo) FindByCode(_ context.Context, code string) (*model.Team, error) {
	team, ok := f.byCode[code]
	if !ok {
		return nil, common.ErrNotFound
	}
	return team, nil
}

func (f *fakeTeamRepo) FindByCodeForUpdate(ctx context.Context, _ *sql.Tx, code string) (*model.Team, error) {
	return f.FindByCode(ctx, code)
}

func (f *fakeTeamRepo) FindByID(_ context.Context, id string) (*model.Team, error) {
	team, ok := f.byID[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return team, nil
}

func (f *fakeTeamRepo) FindMostRecentByUserAndContest(_ context.Context, userID, contestID string) (*model.Team, error) {
	var newest *model.Team
	for _, team := range f.byID {
		if team.ContestID != contestID || !team.HasMember(userID) {
			continue
		}
		if newest == nil || team.CreatedAt.After(newest.CreatedAt) {
			newest = team
		}
	}
	if newest == nil {
		return nil, common.ErrNotFound
	}
	return newest, nil
}

func (f *fakeTeamRepo) List(_ context.Context) ([]model.Team, error) {
	teams := []model.Team{}
	for _, t := range f.byID {
		teams = append(teams, *t)
	}
	return teams, nil
}

func (f *fakeTeamRepo) SetMemberReady(_ context.Context, _ *sql.Tx, teamID, userID string, ready bool) error {
	team, ok := f.byID[teamID]
	if !ok {
		return common.ErrNotFound
	}
	for i := range team.Members {
		if team.Members[i].UserID == userID {
			team.Members[i].Ready = ready
			return nil
		}
	}
	return fmt.Errorf("no such member in team: %w", common.ErrNotFound)
}

func (f *fakeTeamRepo) RecomputeStatus(_ context.Context, _ *sql.Tx, teamID string) error {
	team, ok := f.byID[teamID]
	if !ok {
		return common.ErrNotFound
	}
	if team.Status != model.TeamWaiting && team.Status != model.TeamReady {
		return nil
	}
	if team.AllReady() {
		team.Status = model.TeamReady
		now := time.Now()
		team.ReadyAt = &now
	} else {
		team.Status = model.TeamWaiting
		team.ReadyAt = nil
	}
	return nil
}

func (f *fakeTeamRepo) ResetToWaiting(_ context.Context, _ *sql.Tx, teamID string) error {
	team, ok := f.byID[teamID]
	if !ok {
		return common.ErrNotFound
	}
	team.Status = model.TeamWaiting
	team.ReadyAt = nil
	return nil
}

func (f *fakeTeamRepo) MarkStarted(_ context.Context, _ *sql.Tx, teamID string) error {
	team, ok := f.byID[teamID]
	if !ok {
		return common.ErrNotFound
	}
	team.Status = model.TeamStarted
	return nil
}

func (f *fakeTeamRepo) SetStatus(_ context.Context, id string, status model.TeamStatus) error {
	team, ok := f.byID[id]
	if !ok {
		return common.ErrNotFound
	}
	team.Status = status
	return nil
}

func (f *fakeTeamRepo) Delete(_ context.Context, id string) error {
	team, ok := f.byID[id]
	if !ok {
		return common.ErrNotFound
	}
	delete(f.byCode, team.Code)
	delete(f.byID, id)
	return nil
}

func (f *fakeTeamRepo) StatsSummary(_ context.Context) (*model.TeamStatsSummary, error) {
	summary := &model.TeamStatsSummary{CountsByStatus: map[model.TeamStatus]int{}}
	for _, t := range f.byID {
		summary.CountsByStatus[t.Status]++
		summary.TotalTeams++
	}
	return summary, nil
}

func boolPtr(b bool) *bool { return &b }

func TestCreateTeamAssignsCodeAndLeader(t *testing.T) {
	repo := newFakeTeamRepo()
	svc := NewTeamService(newTestDB(t), repo, 0)
	actor := TeamActor{UserID: "u1", UserName: "Alice"}

	team, err := svc.CreateTeam(context.Background(), actor, CreateTeamRequest{Name: "Solvers", ContestID: "c1"})
	if err != nil {
		t.Fatalf("CreateTeam: %v", err)
	}
	if len(team.Code) != model.TeamCodeLength {
		t.Errorf("code length = %d, want %d", len(team.Code), model.TeamCodeLength)
	}
	for _, ch := range team.Code {
		if !strings.ContainsRune(model.TeamCodeAlphabet, ch) {
			t.Errorf("code %q contains %q outside the alphabet", team.Code, ch)
		}
	}
	if team.Status != model.TeamWaiting {
		t.Errorf("new team status = %q, want waiting", team.Status)
	}
	if len(team.Members) != 1 || team.Members[0].Role != model.MemberRoleLeader {
		t.Fatalf("expected creator as sole leader, got %+v", team.Members)
	}
}

func TestQuickCreateNamesTeamAfterCreator(t *testing.T) {
	repo := newFakeTeamRepo()
	svc := NewTeamService(newTestDB(t), repo, 0)

	team, err := svc.QuickCreateTeam(context.Background(), TeamActor{UserID: "u1", UserName: "Bob"}, QuickCreateTeamRequest{ContestID: "c1"})
	if err != nil {
		t.Fatalf("QuickCreateTeam: %v", err)
	}
	if team.Name != "Bob's Team" {
		t.Errorf("team name = %q", team.Name)
	}
}

func TestJoinTeamResetsReadyStatus(t *testing.T) {
	repo := newFakeTeamRepo()
	svc := NewTeamService(newTestDB(t), repo, 0)
	now := time.Now()
	repo.add(&model.Team{
		ID: "t1", Code: "ABC123", ContestID: "c1", Status: model.TeamReady, ReadyAt: &now,
		Members: []model.TeamMember{{UserID: "u1", Role: model.MemberRoleLeader, Ready: true}},
	})

	team, err := svc.JoinTeam(context.Background(), TeamActor{UserID: "u2", UserName: "Eve"}, JoinTeamRequest{Code: "ABC123"})
	if err != nil {
		t.Fatalf("JoinTeam: %v", err)
	}
	if team.Status != model.TeamWaiting {
		t.Errorf("status after join = %q, want waiting", team.Status)
	}
	if len(team.Members) != 2 {
		t.Errorf("member count = %d, want 2", len(team.Members))
	}
}

func TestJoinTeamRejectsDuplicateMember(t *testing.T) {
	repo := newFakeTeamRepo()
	svc := NewTeamService(newTestDB(t), repo, 0)
	repo.add(&model.Team{
		ID: "t1", Code: "ABC123", Status: model.TeamWaiting,
		Members: []model.TeamMember{{UserID: "u1", Role: model.MemberRoleLeader}},
	})

	_, err := svc.JoinTeam(context.Background(), TeamActor{UserID: "u1"}, JoinTeamRequest{Code: "ABC123"})
	if !errors.Is(err, common.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestJoinTeamEnforcesCapacity(t *testing.T) {
	repo := newFakeTeamRepo()
	svc := NewTeamService(newTestDB(t), repo, 0)
	size := 2
	repo.add(&model.Team{
		ID: "t1", Code: "ABC123", Status: model.TeamWaiting, MaxSize: &size,
		Members: []model.TeamMember{{UserID: "u1"}, {UserID: "u2"}},
	})

	_, err := svc.JoinTeam(context.Background(), TeamActor{UserID: "u3"}, JoinTeamRequest{Code: "ABC123"})
	if !errors.Is(err, common.ErrPreconditionFailed) {
		t.Fatalf("expected ErrPreconditionFailed, got %v", err)
	}
}

func TestJoinTeamRejectsStartedTeam(t *testing.T) {
	repo := newFakeTeamRepo()
	svc := NewTeamService(newTestDB(t), repo, 0)
	repo.add(&model.Team{ID: "t1", Code: "ABC123", Status: model.TeamStarted})

	_, err := svc.JoinTeam(context.Background(), TeamActor{UserID: "u9"}, JoinTeamRequest{Code: "ABC123"})
	if !errors.Is(err, common.ErrPreconditionFailed) {
		t.Fatalf("expected ErrPreconditionFailed, got %v", err)
	}
}

func TestSetReadyUnknownMemberIsNotFound(t *testing.T) {
	repo := newFakeTeamRepo()
	svc := NewTeamService(newTestDB(t), repo, 0)
	repo.add(&model.Team{
		ID: "t1", Code: "ABC123", Status: model.TeamWaiting,
		Members: []model.TeamMember{{UserID: "u1"}},
	})

	_, err := svc.SetReady(context.Background(), TeamActor{UserID: "stranger"}, "ABC123", SetReadyRequest{Ready: boolPtr(true)})
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSetReadyTransitionsTeamWhenAllReady(t *testing.T) {
	repo := newFakeTeamRepo()
	svc := NewTeamService(newTestDB(t), repo, 0)
	repo.add(&model.Team{
		ID: "t1", Code: "ABC123", Status: model.TeamWaiting,
		Members: []model.TeamMember{
			{UserID: "u1", Role: model.MemberRoleLeader, Ready: true},
			{UserID: "u2", Ready: false},
		},
	})

	team, err := svc.SetReady(context.Background(), TeamActor{UserID: "u2"}, "ABC123", SetReadyRequest{Ready: boolPtr(true)})
	if err != nil {
		t.Fatalf("SetReady: %v", err)
	}
	if team.Status != model.TeamReady {
		t.Errorf("status = %q, want ready", team.Status)
	}
	if team.ReadyAt == nil {
		t.Error("ReadyAt should be set when the team becomes ready")
	}

	// Unreadying one member drops the team back to waiting.
	team, err = svc.SetReady(context.Background(), TeamActor{UserID: "u1"}, "ABC123", SetReadyRequest{Ready: boolPtr(false)})
	if err != nil {
		t.Fatalf("SetReady(false): %v", err)
	}
	if team.Status != model.TeamWaiting {
		t.Errorf("status = %q, want waiting", team.Status)
	}
	if team.ReadyAt != nil {
		t.Error("ReadyAt should be cleared when not all ready")
	}
}

func TestStartContestLeaderGated(t *testing.T) {
	repo := newFakeTeamRepo()
	svc := NewTeamService(newTestDB(t), repo, 0)
	repo.add(&model.Team{
		ID: "t1", Code: "ABC123", Status: model.TeamReady,
		Members: []model.TeamMember{
			{UserID: "u1", Role: model.MemberRoleLeader, Ready: true},
			{UserID: "u2", Role: model.MemberRoleMember, Ready: true},
		},
	})

	if _, err := svc.StartContest(context.Background(), TeamActor{UserID: "u2"}, "ABC123"); !errors.Is(err, common.ErrForbidden) {
		t.Fatalf("member start: expected ErrForbidden, got %v", err)
	}

	team, err := svc.StartContest(context.Background(), TeamActor{UserID: "u1"}, "ABC123")
	if err != nil {
		t.Fatalf("leader start: %v", err)
	}
	if team.Status != model.TeamStarted {
		t.Errorf("status = %q, want started", team.Status)
	}
}

func TestStartContestRequiresReadyTeam(t *testing.T) {
	repo := newFakeTeamRepo()
	svc := NewTeamService(newTestDB(t), repo, 0)
	repo.add(&model.Team{
		ID: "t1", Code: "ABC123", Status: model.TeamWaiting,
		Members: []model.TeamMember{{UserID: "u1", Role: model.MemberRoleLeader}},
	})

	_, err := svc.StartContest(context.Background(), TeamActor{UserID: "u1"}, "ABC123")
	if !errors.Is(err, common.ErrPreconditionFailed) {
		t.Fatalf("expected ErrPreconditionFailed, got %v", err)
	}
}

func TestGenerateJoinCodeShape(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		code, err := generateJoinCode()
		if err != nil {
			t.Fatalf("generateJoinCode: %v", err)
		}
		if len(code) != model.TeamCodeLength {
			t.Fatalf("code %q has length %d", code, len(code))
		}
		for _, ch := range code {
			if !strings.ContainsRune(model.TeamCodeAlphabet, ch) {
				t.Fatalf("code %q contains %q outside the alphabet", code, ch)
			}
		}
		seen[code] = true
	}
	if len(seen) < 2 {
		t.Error("100 generated codes were all identical")
	}
}
