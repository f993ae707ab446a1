package completion

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"servicematch/internal/domain/job"
	"servicematch/internal/domain/match"
	"servicematch/internal/domain/notification"
	"servicematch/internal/pkg/apperr"
)

// Status is the read model of the handshake for one match.
type Status struct {
	MatchID     int64        `json:"match_id"`
	MatchStatus match.Status `json:"match_status"`
	RequestedBy *int64       `json:"requested_by"`
	RequestedAt *time.Time   `json:"requested_at"`
	ConfirmedBy *int64       `json:"confirmed_by"`
	ConfirmedAt *time.Time   `json:"confirmed_at"`
	IsCompleted bool         `json:"is_completed"`
	CanReview   bool         `json:"can_review"`
}

// Service runs the two-step completion handshake on the job linked to a match.
// Requester and confirmer must be different participants.
type Service struct {
	db      *gorm.DB
	matches *match.Repository
	jobs    *job.Repository
	now     func() time.Time
}

func NewService(db *gorm.DB, matches *match.Repository, jobs *job.Repository) *Service {
	return &Service{db: db, matches: matches, jobs: jobs, now: time.Now}
}

// WithTx returns a copy whose reads and writes go through tx.
func (s *Service) WithTx(tx *gorm.DB) *Service {
	return &Service{db: tx, matches: s.matches.WithTx(tx), jobs: s.jobs.WithTx(tx), now: s.now}
}

func (s *Service) RequestCompletion(ctx context.Context, matchID, actingUserID int64, comment string) (*Status, []notification.Event, error) {
	var (
		m *match.Match
		j *job.Job
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		m, j, err = s.WithTx(tx).lockForHandshake(ctx, matchID, actingUserID)
		if err != nil {
			return err
		}
		if m.Status != match.StatusActive {
			return ErrMatchNotActive
		}
		if j.CompletionConfirmed() {
			return ErrAlreadyConfirmed
		}
		if j.CompletionRequestedBy != nil && *j.CompletionRequestedBy == actingUserID {
			return ErrAlreadyRequested
		}

		now := s.now().UTC()
		if err := s.jobs.WithTx(tx).SetCompletionRequested(ctx, j.ID, actingUserID, now); err != nil {
			return apperr.Persistence(err)
		}
		j.CompletionRequestedBy = &actingUserID
		j.CompletionRequestedAt = &now
		return nil
	})
	if err != nil {
		return nil, nil, apperr.Persistence(err)
	}

	msg := fmt.Sprintf("The other side marked match #%d as done. Please confirm.", m.ID)
	if comment != "" {
		msg += " Comment: " + comment
	}
	events := []notification.Event{{
		UserID:    m.Counterparty(actingUserID),
		Kind:      notification.KindCompletionRequested,
		Title:     "Completion requested",
		Message:   msg,
		ActionRef: match.ActionRef(m.ID),
	}}
	return buildStatus(m, j), events, nil
}

// ConfirmCompletion records the confirmation, completes the job and moves the
// match to completed in a single transaction.
func (s *Service) ConfirmCompletion(ctx context.Context, matchID, actingUserID int64) (*Status, []notification.Event, error) {
	var (
		m         *match.Match
		j         *job.Job
		requester int64
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		m, j, err = s.WithTx(tx).lockForHandshake(ctx, matchID, actingUserID)
		if err != nil {
			return err
		}
		if j.CompletionConfirmed() {
			return ErrAlreadyConfirmed
		}
		if j.CompletionRequestedBy == nil {
			return ErrNotRequested
		}
		if *j.CompletionRequestedBy == actingUserID {
			return ErrSelfConfirmation
		}
		if m.Status != match.StatusActive && m.Status != match.StatusCompleted {
			return ErrMatchNotActive
		}
		requester = *j.CompletionRequestedBy

		now := s.now().UTC()
		if err := s.jobs.WithTx(tx).SetCompletionConfirmed(ctx, j.ID, actingUserID, now); err != nil {
			return apperr.Persistence(err)
		}
		if m.Status != match.StatusCompleted {
			if err := s.matches.WithTx(tx).UpdateStatus(ctx, m.ID, match.StatusCompleted, now); err != nil {
				return apperr.Persistence(err)
			}
			m.Status = match.StatusCompleted
			m.UpdatedAt = now
		}
		j.CompletionConfirmedBy = &actingUserID
		j.CompletionConfirmedAt = &now
		j.Status = job.StatusCompleted
		return nil
	})
	if err != nil {
		return nil, nil, apperr.Persistence(err)
	}

	events := []notification.Event{{
		UserID:    requester,
		Kind:      notification.KindCompletionConfirmed,
		Title:     "Completion confirmed",
		Message:   fmt.Sprintf("Match #%d is completed. You can now leave a review.", m.ID),
		ActionRef: match.ActionRef(m.ID),
	}}
	return buildStatus(m, j), events, nil
}

// GetCompletionStatus is a pure read. A zero requestingUserID skips the participant check.
// Without a linked job every handshake field is empty.
func (s *Service) GetCompletionStatus(ctx context.Context, matchID, requestingUserID int64) (*Status, error) {
	m, err := s.matches.GetByID(ctx, matchID)
	if err != nil {
		return nil, apperr.Persistence(err)
	}
	if m == nil {
		return nil, match.ErrMatchNotFound
	}
	if requestingUserID != 0 {
		if err := match.RequireParticipant(m, requestingUserID); err != nil {
			return nil, err
		}
	}
	j, err := s.resolveJob(ctx, m, false)
	if err != nil {
		return nil, apperr.Persistence(err)
	}
	return buildStatus(m, j), nil
}

// ReviewGateOpen reports whether completion has been mutually confirmed. Matches
// without a linked job fall back to their own status.
func (s *Service) ReviewGateOpen(ctx context.Context, m *match.Match) (bool, error) {
	j, err := s.resolveJob(ctx, m, false)
	if err != nil {
		return false, apperr.Persistence(err)
	}
	if j == nil {
		return m.Status == match.StatusCompleted, nil
	}
	return j.CompletionConfirmed(), nil
}

// lockForHandshake must run on a tx-bound Service.
func (s *Service) lockForHandshake(ctx context.Context, matchID, actingUserID int64) (*match.Match, *job.Job, error) {
	m, err := s.matches.GetForUpdate(ctx, matchID)
	if err != nil {
		return nil, nil, apperr.Persistence(err)
	}
	if m == nil {
		return nil, nil, match.ErrMatchNotFound
	}
	if err := match.RequireParticipant(m, actingUserID); err != nil {
		return nil, nil, err
	}
	j, err := s.resolveJob(ctx, m, true)
	if err != nil {
		return nil, nil, apperr.Persistence(err)
	}
	if j == nil {
		return nil, nil, ErrJobNotFound
	}
	return m, j, nil
}

// resolveJob prefers the explicit job reference and falls back to the project.
func (s *Service) resolveJob(ctx context.Context, m *match.Match, lock bool) (*job.Job, error) {
	var (
		j   *job.Job
		err error
	)
	if m.JobID != nil {
		j, err = s.jobs.GetByID(ctx, *m.JobID)
	} else {
		j, err = s.jobs.GetByProjectID(ctx, m.ProjectID)
	}
	if err != nil || j == nil || !lock {
		return j, err
	}
	return s.jobs.GetForUpdate(ctx, j.ID)
}

func buildStatus(m *match.Match, j *job.Job) *Status {
	st := &Status{MatchID: m.ID, MatchStatus: m.Status}
	if j == nil {
		return st
	}
	st.RequestedBy = j.CompletionRequestedBy
	st.RequestedAt = j.CompletionRequestedAt
	st.ConfirmedBy = j.CompletionConfirmedBy
	st.ConfirmedAt = j.CompletionConfirmedAt
	st.IsCompleted = j.CompletionConfirmedAt != nil
	st.CanReview = st.IsCompleted
	return st
}
