package match

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"servicematch/internal/database"
	"servicematch/internal/domain/notification"
	"servicematch/internal/domain/user"
	"servicematch/internal/pkg/apperr"
)

// Directory is the part of the user directory needed to build participant summaries.
type Directory interface {
	FindByIDs(ctx context.Context, ids []int64) (map[int64]*user.User, error)
}

type Service struct {
	db    *gorm.DB
	repo  *Repository
	users Directory
	now   func() time.Time
}

func NewService(db *gorm.DB, repo *Repository, users Directory) *Service {
	return &Service{db: db, repo: repo, users: users, now: time.Now}
}

type CreateInput struct {
	ProposalID     int64
	ClientID       int64
	ProfessionalID int64
	ProjectID      int64
	JobID          *int64
}

// CreateMatch records an accepted proposal.
func (s *Service) CreateMatch(ctx context.Context, in CreateInput) (*Match, error) {
	if in.ProposalID <= 0 || in.ClientID <= 0 || in.ProfessionalID <= 0 || in.ProjectID <= 0 {
		return nil, ErrInvalidReferences
	}
	if in.ClientID == in.ProfessionalID {
		return nil, ErrSameParticipant
	}

	now := s.now().UTC()
	m := &Match{
		ProposalID:     in.ProposalID,
		ClientID:       in.ClientID,
		ProfessionalID: in.ProfessionalID,
		ProjectID:      in.ProjectID,
		JobID:          in.JobID,
		Status:         StatusActive,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.repo.Create(ctx, m); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, ErrMatchAlreadyExists
		}
		return nil, apperr.Persistence(err)
	}

	if err := s.hydrate(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// Load returns the raw match without any access check.
func (s *Service) Load(ctx context.Context, id int64) (*Match, error) {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.Persistence(err)
	}
	if m == nil {
		return nil, ErrMatchNotFound
	}
	return m, nil
}

// LoadForParticipant is Load plus the participant check.
func (s *Service) LoadForParticipant(ctx context.Context, id, userID int64) (*Match, error) {
	m, err := s.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := RequireParticipant(m, userID); err != nil {
		return nil, err
	}
	return m, nil
}

// GetMatch returns the hydrated match. A zero requestingUserID skips the participant check.
func (s *Service) GetMatch(ctx context.Context, id, requestingUserID int64) (*Match, error) {
	var (
		m   *Match
		err error
	)
	if requestingUserID == 0 {
		m, err = s.Load(ctx, id)
	} else {
		m, err = s.LoadForParticipant(ctx, id, requestingUserID)
	}
	if err != nil {
		return nil, err
	}
	if err := s.hydrate(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Service) ListMatchesForUser(ctx context.Context, userID int64, role *Role) ([]Match, error) {
	if role != nil && *role != RoleClient && *role != RoleProfessional {
		return nil, ErrInvalidRole
	}
	list, err := s.repo.ListForUser(ctx, userID, role)
	if err != nil {
		return nil, apperr.Persistence(err)
	}
	if err := s.hydrateAll(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

// UpdateStatus applies a status change permitted by the transition table.
// The returned events notify the counterparty.
func (s *Service) UpdateStatus(ctx context.Context, matchID, actingUserID int64, next Status) (*Match, []notification.Event, error) {
	if !next.Valid() {
		return nil, nil, ErrInvalidStatus
	}

	var updated *Match
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		m, err := repo.GetForUpdate(ctx, matchID)
		if err != nil {
			return apperr.Persistence(err)
		}
		if m == nil {
			return ErrMatchNotFound
		}
		if err := RequireParticipant(m, actingUserID); err != nil {
			return err
		}
		if !m.Status.CanTransitionTo(next) {
			return ErrInvalidTransition
		}

		now := s.now().UTC()
		if err := repo.UpdateStatus(ctx, m.ID, next, now); err != nil {
			return apperr.Persistence(err)
		}
		m.Status = next
		m.UpdatedAt = now
		updated = m
		return nil
	})
	if err != nil {
		return nil, nil, apperr.Persistence(err)
	}

	if err := s.hydrate(ctx, updated); err != nil {
		return nil, nil, err
	}

	events := []notification.Event{{
		UserID:    updated.Counterparty(actingUserID),
		Kind:      notification.KindMatchStatusChanged,
		Title:     "Match status changed",
		Message:   fmt.Sprintf("Match #%d is now %s", updated.ID, updated.Status),
		ActionRef: ActionRef(updated.ID),
	}}
	return updated, events, nil
}

// ActionRef is the client-side link to a match.
func ActionRef(matchID int64) string {
	return fmt.Sprintf("/matches/%d", matchID)
}

func (s *Service) hydrate(ctx context.Context, m *Match) error {
	one := []Match{*m}
	if err := s.hydrateAll(ctx, one); err != nil {
		return err
	}
	m.Client, m.Professional = one[0].Client, one[0].Professional
	return nil
}

func (s *Service) hydrateAll(ctx context.Context, list []Match) error {
	if len(list) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(list)*2)
	for _, m := range list {
		ids = append(ids, m.ClientID, m.ProfessionalID)
	}
	users, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		return apperr.Persistence(err)
	}
	for i := range list {
		list[i].Client = participant(list[i].ClientID, users)
		list[i].Professional = participant(list[i].ProfessionalID, users)
	}
	return nil
}

func participant(id int64, users map[int64]*user.User) *Participant {
	p := &Participant{ID: id}
	if u, ok := users[id]; ok {
		p.Name = u.Name
		p.AvatarURL = u.AvatarURL
	}
	return p
}
