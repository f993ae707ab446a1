package review

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"

	"servicematch/internal/database"
	"servicematch/internal/domain/completion"
	"servicematch/internal/domain/match"
	"servicematch/internal/domain/notification"
	"servicematch/internal/domain/rating"
	"servicematch/internal/pkg/apperr"
)

const DefaultEditWindow = 24 * time.Hour

type Stats struct {
	UserID                 int64         `json:"user_id"`
	TotalReviews           int64         `json:"total_reviews"`
	AverageRating          float64       `json:"average_rating"`
	AverageQuality         float64       `json:"average_quality"`
	AverageProfessionalism float64       `json:"average_professionalism"`
	AveragePunctuality     float64       `json:"average_punctuality"`
	AverageCommunication   float64       `json:"average_communication"`
	Distribution           map[int]int64 `json:"distribution"`
}

type MatchStatus struct {
	MatchID              int64        `json:"match_id"`
	ClientReviewed       bool         `json:"client_reviewed"`
	ProfessionalReviewed bool         `json:"professional_reviewed"`
	BothReviewed         bool         `json:"both_reviewed"`
	ClientReview         *MatchReview `json:"client_review,omitempty"`
	ProfessionalReview   *MatchReview `json:"professional_review,omitempty"`
}

type ListResult struct {
	Reviews []MatchReview `json:"reviews"`
	Total   int64         `json:"total"`
}

type Service struct {
	db         *gorm.DB
	repo       *Repository
	matches    *match.Repository
	completion *completion.Service
	aggregator *rating.Aggregator
	editWindow time.Duration
	now        func() time.Time
}

func NewService(db *gorm.DB, repo *Repository, matches *match.Repository, completion *completion.Service, aggregator *rating.Aggregator, editWindow time.Duration) *Service {
	if editWindow <= 0 {
		editWindow = DefaultEditWindow
	}
	return &Service{
		db:         db,
		repo:       repo,
		matches:    matches,
		completion: completion,
		aggregator: aggregator,
		editWindow: editWindow,
		now:        time.Now,
	}
}

// CreateReview stores the reviewer's rating of the counterparty and refreshes the
// counterparty's aggregate in the same transaction.
func (s *Service) CreateReview(ctx context.Context, matchID, reviewerID int64, ratings Ratings, comment string) (*MatchReview, []notification.Event, error) {
	m, err := s.loadMatch(ctx, matchID)
	if err != nil {
		return nil, nil, err
	}
	if err := match.RequireParticipant(m, reviewerID); err != nil {
		return nil, nil, err
	}
	reviewedUserID := m.Counterparty(reviewerID)

	existing, err := s.repo.FindLive(ctx, matchID, reviewerID)
	if err != nil {
		return nil, nil, apperr.Persistence(err)
	}
	if existing != nil {
		return nil, nil, ErrAlreadyReviewed
	}

	open, err := s.completion.ReviewGateOpen(ctx, m)
	if err != nil {
		return nil, nil, err
	}
	if !open {
		return nil, nil, ErrCompletionNotConfirmed
	}

	if err := ratings.Validate(); err != nil {
		return nil, nil, err
	}
	comment = strings.TrimSpace(comment)
	if err := validateComment(comment); err != nil {
		return nil, nil, err
	}

	now := s.now().UTC()
	rv := &MatchReview{
		MatchID:               matchID,
		ReviewerID:            reviewerID,
		ReviewedUserID:        reviewedUserID,
		OverallRating:         ratings.Overall,
		QualityRating:         ratings.Quality,
		ProfessionalismRating: ratings.Professionalism,
		PunctualityRating:     ratings.Punctuality,
		CommunicationRating:   ratings.Communication,
		Comment:               comment,
		IsVerified:            true,
		State:                 StateActive,
		CreatedAt:             now,
		UpdatedAt:             now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, rv); err != nil {
			// the partial unique index catches racing duplicates
			if database.IsUniqueViolation(err) {
				return ErrAlreadyReviewed
			}
			return apperr.Persistence(err)
		}
		if _, err := s.aggregator.WithTx(tx).Recompute(ctx, reviewedUserID); err != nil {
			return apperr.Persistence(err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, apperr.Persistence(err)
	}

	events := []notification.Event{{
		UserID:    reviewedUserID,
		Kind:      notification.KindNewReview,
		Title:     "New review",
		Message:   fmt.Sprintf("You received a %d-star review for match #%d.", rv.OverallRating, matchID),
		ActionRef: match.ActionRef(matchID),
	}}
	return rv, events, nil
}

// UpdateReview applies the provided fields. Only the author may edit, within the
// edit window and before the counterparty has reviewed.
func (s *Service) UpdateReview(ctx context.Context, reviewID, actingUserID int64, patch Patch) (*MatchReview, error) {
	if patch.Empty() {
		return nil, ErrEmptyPatch
	}
	rv, err := s.loadReview(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	counterpartyReviewed, err := s.counterpartyReviewed(ctx, rv)
	if err != nil {
		return nil, err
	}
	if err := rv.checkAuthorAction(actionEdit, actingUserID, counterpartyReviewed, s.now(), s.editWindow); err != nil {
		return nil, err
	}

	rv.apply(patch)
	if err := rv.ratings().Validate(); err != nil {
		return nil, err
	}
	rv.Comment = strings.TrimSpace(rv.Comment)
	if err := validateComment(rv.Comment); err != nil {
		return nil, err
	}
	rv.State = StateEdited
	rv.UpdatedAt = s.now().UTC()

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := s.repo.WithTx(tx).Save(ctx, rv)
		if err != nil {
			return apperr.Persistence(err)
		}
		if !ok {
			return ErrAlreadyDeleted
		}
		if _, err := s.aggregator.WithTx(tx).Recompute(ctx, rv.ReviewedUserID); err != nil {
			return apperr.Persistence(err)
		}
		return nil
	})
	if err != nil {
		return nil, apperr.Persistence(err)
	}
	return rv, nil
}

// DeleteReview soft-deletes the author's own review and recomputes the aggregate
// without it.
func (s *Service) DeleteReview(ctx context.Context, reviewID, actingUserID int64, reason string) error {
	rv, err := s.loadReview(ctx, reviewID)
	if err != nil {
		return err
	}
	counterpartyReviewed, err := s.counterpartyReviewed(ctx, rv)
	if err != nil {
		return err
	}
	if err := rv.checkAuthorAction(actionDelete, actingUserID, counterpartyReviewed, s.now(), s.editWindow); err != nil {
		return err
	}

	var why *string
	if r := strings.TrimSpace(reason); r != "" {
		why = &r
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := s.repo.WithTx(tx).SoftDelete(ctx, rv.ID, StateDeletedByAuthor, actingUserID, why, s.now().UTC())
		if err != nil {
			return apperr.Persistence(err)
		}
		if !ok {
			return ErrAlreadyDeleted
		}
		if _, err := s.aggregator.WithTx(tx).Recompute(ctx, rv.ReviewedUserID); err != nil {
			return apperr.Persistence(err)
		}
		return nil
	})
	return apperr.Persistence(err)
}

// GetReviewStats summarises live reviews about userID. Means are rounded to one
// decimal; sub-rating means only cover reviews that set them.
func (s *Service) GetReviewStats(ctx context.Context, userID int64) (*Stats, error) {
	agg, hist, err := s.repo.Aggregate(ctx, userID)
	if err != nil {
		return nil, apperr.Persistence(err)
	}

	st := &Stats{
		UserID:                 userID,
		TotalReviews:           agg.Total,
		AverageRating:          mean(agg.AvgOverall),
		AverageQuality:         mean(agg.AvgQuality),
		AverageProfessionalism: mean(agg.AvgProfessionalism),
		AveragePunctuality:     mean(agg.AvgPunctuality),
		AverageCommunication:   mean(agg.AvgCommunication),
		Distribution:           make(map[int]int64, MaxRating),
	}
	for star := MinRating; star <= MaxRating; star++ {
		st.Distribution[star] = 0
	}
	for _, h := range hist {
		st.Distribution[h.Rating] = h.Count
	}
	return st, nil
}

// CanLeaveReview is true for a participant of a mutually completed match who has
// not reviewed it yet.
func (s *Service) CanLeaveReview(ctx context.Context, matchID, userID int64) (bool, error) {
	m, err := s.loadMatch(ctx, matchID)
	if err != nil {
		return false, err
	}
	if !m.HasParticipant(userID) {
		return false, nil
	}
	open, err := s.completion.ReviewGateOpen(ctx, m)
	if err != nil || !open {
		return false, err
	}
	existing, err := s.repo.FindLive(ctx, matchID, userID)
	if err != nil {
		return false, apperr.Persistence(err)
	}
	return existing == nil, nil
}

// GetReviewStatus reports which side has reviewed. A zero requestingUserID skips
// the participant check.
func (s *Service) GetReviewStatus(ctx context.Context, matchID, requestingUserID int64) (*MatchStatus, error) {
	m, err := s.loadMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if requestingUserID != 0 {
		if err := match.RequireParticipant(m, requestingUserID); err != nil {
			return nil, err
		}
	}
	reviews, err := s.repo.ListLiveByMatch(ctx, matchID)
	if err != nil {
		return nil, apperr.Persistence(err)
	}

	st := &MatchStatus{MatchID: matchID}
	for i := range reviews {
		switch reviews[i].ReviewerID {
		case m.ClientID:
			st.ClientReviewed = true
			st.ClientReview = &reviews[i]
		case m.ProfessionalID:
			st.ProfessionalReviewed = true
			st.ProfessionalReview = &reviews[i]
		}
	}
	st.BothReviewed = st.ClientReviewed && st.ProfessionalReviewed
	return st, nil
}

// ListForUser pages through live reviews about userID, newest first.
func (s *Service) ListForUser(ctx context.Context, userID int64, limit, offset int) (*ListResult, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	rows, total, err := s.repo.ListLiveForUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, apperr.Persistence(err)
	}
	if rows == nil {
		rows = []MatchReview{}
	}
	return &ListResult{Reviews: rows, Total: total}, nil
}

func (s *Service) loadMatch(ctx context.Context, matchID int64) (*match.Match, error) {
	m, err := s.matches.GetByID(ctx, matchID)
	if err != nil {
		return nil, apperr.Persistence(err)
	}
	if m == nil {
		return nil, match.ErrMatchNotFound
	}
	return m, nil
}

func (s *Service) loadReview(ctx context.Context, reviewID int64) (*MatchReview, error) {
	rv, err := s.repo.GetByID(ctx, reviewID)
	if err != nil {
		return nil, apperr.Persistence(err)
	}
	if rv == nil {
		return nil, ErrReviewNotFound
	}
	return rv, nil
}

// counterpartyReviewed looks for a live review written by the person rv is about.
func (s *Service) counterpartyReviewed(ctx context.Context, rv *MatchReview) (bool, error) {
	other, err := s.repo.FindLive(ctx, rv.MatchID, rv.ReviewedUserID)
	if err != nil {
		return false, apperr.Persistence(err)
	}
	return other != nil, nil
}

func validateComment(comment string) error {
	if utf8.RuneCountInString(comment) > MaxCommentLength {
		return ErrCommentTooLong
	}
	return nil
}

func mean(v *float64) float64 {
	if v == nil {
		return 0
	}
	return rating.Round1(*v)
}
