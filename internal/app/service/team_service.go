package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"math/big"

	"codeclash/internal/common"
	"codeclash/internal/domain/model"
	"codeclash/internal/domain/repository"

	"github.com/google/uuid"
)

// maxCodeAttempts bounds the insert-retry loop when a generated join code
// collides with an existing team.
const maxCodeAttempts = 5

type TeamService struct {
	db       *sql.DB
	teamRepo repository.TeamRepository
	maxSize  int
}

// NewTeamService wires the coordinator. maxSize <= 0 disables the capacity
// check.
func NewTeamService(db *sql.DB, teamRepo repository.TeamRepository, maxSize int) *TeamService {
	return &TeamService{db: db, teamRepo: teamRepo, maxSize: maxSize}
}

// TeamActor identifies the authenticated user performing a team operation.
type TeamActor struct {
	UserID    string
	UserName  string
	UserImage string
}

type CreateTeamRequest struct {
	Name      string `json:"name" validate:"required,min=2,max=64"`
	ContestID string `json:"contestId" validate:"required"`
}

type QuickCreateTeamRequest struct {
	ContestID string `json:"contestId" validate:"required"`
}

type SetReadyRequest struct {
	Ready *bool `json:"ready" validate:"required"`
}

type JoinTeamRequest struct {
	Code string `json:"code" validate:"required,len=6"`
}

func (s *TeamService) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return fmt.Errorf("%w (rollback also failed: %v)", err, rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func generateJoinCode() (string, error) {
	code := make([]byte, model.TeamCodeLength)
	alphabetLen := big.NewInt(int64(len(model.TeamCodeAlphabet)))
	for i := range code {
		n, err := rand.Int(rand.Reader, alphabetLen)
		if err != nil {
			return "", fmt.Errorf("generate join code: %w", err)
		}
		code[i] = model.TeamCodeAlphabet[n.Int64()]
	}
	return string(code), nil
}

func (s *TeamService) CreateTeam(ctx context.Context, actor TeamActor, req CreateTeamRequest) (*model.Team, error) {
	if err := common.ValidateInput(req); err != nil {
		return nil, err
	}
	return s.createTeam(ctx, actor, req.Name, req.ContestID)
}

// QuickCreateTeam names the team after its creator.
func (s *TeamService) QuickCreateTeam(ctx context.Context, actor TeamActor, req QuickCreateTeamRequest) (*model.Team, error) {
	if err := common.ValidateInput(req); err != nil {
		return nil, err
	}
	return s.createTeam(ctx, actor, actor.UserName+"'s Team", req.ContestID)
}

// createTeam inserts the team and its leader in one transaction. Join-code
// uniqueness is enforced by the database; a collision regenerates the code
// and retries the whole insert.
func (s *TeamService) createTeam(ctx context.Context, actor TeamActor, name, contestID string) (*model.Team, error) {
	var maxSize *int
	if s.maxSize > 0 {
		size := s.maxSize
		maxSize = &size
	}

	var created *model.Team
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := generateJoinCode()
		if err != nil {
			return nil, err
		}
		team := &model.Team{
			ID:        uuid.NewString(),
			Name:      name,
			ContestID: contestID,
			Code:      code,
			CreatedBy: actor.UserID,
			Status:    model.TeamWaiting,
			MaxSize:   maxSize,
		}

		err = s.withTx(ctx, func(tx *sql.Tx) error {
			if err := s.teamRepo.Insert(ctx, tx, team); err != nil {
				return err
			}
			leader := model.TeamMember{
				UserID:    actor.UserID,
				UserName:  actor.UserName,
				UserImage: actor.UserImage,
				Role:      model.MemberRoleLeader,
			}
			return s.teamRepo.InsertMember(ctx, tx, team.ID, uuid.NewString(), leader)
		})
		if err != nil {
			if errors.Is(err, common.ErrConflict) {
				continue
			}
			return nil, err
		}
		created = team
		break
	}
	if created == nil {
		return nil, fmt.Errorf("could not allocate a unique team code: %w", common.ErrInternalServer)
	}
	return s.teamRepo.FindByID(ctx, created.ID)
}

// JoinTeam adds the actor to the team behind the join code. Joining resets
// the team to waiting, since the newcomer has not signalled readiness.
func (s *TeamService) JoinTeam(ctx context.Context, actor TeamActor, req JoinTeamRequest) (*model.Team, error) {
	if err := common.ValidateInput(req); err != nil {
		return nil, err
	}

	var teamID string
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		team, err := s.teamRepo.FindByCodeForUpdate(ctx, tx, req.Code)
		if err != nil {
			return err
		}
		if team.Status == model.TeamStarted || team.Status == model.TeamCompleted {
			return fmt.Errorf("team has already started: %w", common.ErrPreconditionFailed)
		}
		if team.MaxSize != nil && len(team.Members) >= *team.MaxSize {
			return fmt.Errorf("team is full: %w", common.ErrPreconditionFailed)
		}

		member := model.TeamMember{
			UserID:    actor.UserID,
			UserName:  actor.UserName,
			UserImage: actor.UserImage,
			Role:      model.MemberRoleMember,
		}
		if err := s.teamRepo.InsertMember(ctx, tx, team.ID, uuid.NewString(), member); err != nil {
			return err
		}
		teamID = team.ID
		return s.teamRepo.ResetToWaiting(ctx, tx, team.ID)
	})
	if err != nil {
		return nil, err
	}
	return s.teamRepo.FindByID(ctx, teamID)
}

// SetReady flips the actor's ready flag and recomputes the team status in
// the same transaction, so a concurrent toggle cannot leave the status
// disagreeing with the flags.
func (s *TeamService) SetReady(ctx context.Context, actor TeamActor, code string, req SetReadyRequest) (*model.Team, error) {
	if err := common.ValidateInput(req); err != nil {
		return nil, err
	}

	var teamID string
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		team, err := s.teamRepo.FindByCodeForUpdate(ctx, tx, code)
		if err != nil {
			return err
		}
		if err := s.teamRepo.SetMemberReady(ctx, tx, team.ID, actor.UserID, *req.Ready); err != nil {
			return err
		}
		teamID = team.ID
		return s.teamRepo.RecomputeStatus(ctx, tx, team.ID)
	})
	if err != nil {
		return nil, err
	}
	return s.teamRepo.FindByID(ctx, teamID)
}

// StartContest transitions ready -> started. Only the team leader may start,
// and only once every member is ready.
func (s *TeamService) StartContest(ctx context.Context, actor TeamActor, code string) (*model.Team, error) {
	var teamID string
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		team, err := s.teamRepo.FindByCodeForUpdate(ctx, tx, code)
		if err != nil {
			return err
		}

		isLeader := false
		for _, m := range team.Members {
			if m.UserID == actor.UserID && m.Role == model.MemberRoleLeader {
				isLeader = true
				break
			}
		}
		if !isLeader {
			return fmt.Errorf("only the team leader can start the contest: %w", common.ErrForbidden)
		}
		if team.Status != model.TeamReady {
			return fmt.Errorf("team is not ready to start: %w", common.ErrPreconditionFailed)
		}

		teamID = team.ID
		return s.teamRepo.MarkStarted(ctx, tx, team.ID)
	})
	if err != nil {
		return nil, err
	}
	return s.teamRepo.FindByID(ctx, teamID)
}

func (s *TeamService) GetByCode(ctx context.Context, code string) (*model.Team, error) {
	return s.teamRepo.FindByCode(ctx, code)
}

// GetMyTeam returns the most recent team the user belongs to in the contest.
func (s *TeamService) GetMyTeam(ctx context.Context, userID, contestID string) (*model.Team, error) {
	return s.teamRepo.FindMostRecentByUserAndContest(ctx, userID, contestID)
}

func (s *TeamService) GetByID(ctx context.Context, id string) (*model.Team, error) {
	return s.teamRepo.FindByID(ctx, id)
}

func (s *TeamService) ListTeams(ctx context.Context) ([]model.Team, error) {
	return s.teamRepo.List(ctx)
}

type OverrideStatusRequest struct {
	Status model.TeamStatus `json:"status" validate:"required,oneof=waiting ready started completed"`
}

// OverrideStatus is the admin escape hatch. It does not consult member
// ready flags.
func (s *TeamService) OverrideStatus(ctx context.Context, id string, req OverrideStatusRequest) error {
	if err := common.ValidateInput(req); err != nil {
		return err
	}
	return s.teamRepo.SetStatus(ctx, id, req.Status)
}

func (s *TeamService) DeleteTeam(ctx context.Context, id string) error {
	return s.teamRepo.Delete(ctx, id)
}

func (s *TeamService) Stats(ctx context.Context) (*model.TeamStatsSummary, error) {
	return s.teamRepo.StatsSummary(ctx)
}
