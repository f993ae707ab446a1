package moderation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"

	"servicematch/internal/domain/match"
	"servicematch/internal/domain/notification"
	"servicematch/internal/domain/rating"
	"servicematch/internal/domain/review"
	"servicematch/internal/logger"
	"servicematch/internal/pkg/apperr"
)

const maxReasonLength = 500

var errRemovedMeanwhile = errors.New("review removed concurrently")

// Result describes the outcome of a moderation decision.
type Result struct {
	ReviewID       int64          `json:"review_id"`
	Action         Action         `json:"action"`
	ReviewedUserID int64          `json:"reviewed_user_id"`
	Rating         rating.Summary `json:"rating"`
	DecisionID     int64          `json:"decision_id"`
}

type Service struct {
	db         *gorm.DB
	decisions  *Repository
	reviews    *review.Repository
	aggregator *rating.Aggregator
	now        func() time.Time
}

func NewService(db *gorm.DB, decisions *Repository, reviews *review.Repository, aggregator *rating.Aggregator) *Service {
	return &Service{
		db:         db,
		decisions:  decisions,
		reviews:    reviews,
		aggregator: aggregator,
		now:        time.Now,
	}
}

// RejectReview removes a review on behalf of an administrator. The author-only
// and edit-window rules do not apply. The row is kept in the deleted_by_moderator
// state and the subject's aggregate is recomputed in the same transaction.
func (s *Service) RejectReview(ctx context.Context, reviewID, adminID int64, reason string) (*Result, []notification.Event, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, nil, ErrReasonRequired
	}
	if utf8.RuneCountInString(reason) > maxReasonLength {
		return nil, nil, ErrReasonTooLong
	}

	rv, err := s.loadReview(ctx, reviewID)
	if err != nil {
		return nil, nil, err
	}
	if !rv.State.Live() {
		res, err := s.removed(ctx, rv)
		return res, nil, err
	}

	now := s.now().UTC()
	res := &Result{ReviewID: rv.ID, Action: ActionReject, ReviewedUserID: rv.ReviewedUserID}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := s.reviews.WithTx(tx).SoftDelete(ctx, rv.ID, review.StateDeletedByModerator, adminID, &reason, now)
		if err != nil {
			return apperr.Persistence(err)
		}
		if !ok {
			return errRemovedMeanwhile
		}
		summary, err := s.aggregator.WithTx(tx).Recompute(ctx, rv.ReviewedUserID)
		if err != nil {
			return apperr.Persistence(err)
		}
		res.Rating = *summary

		d := &Decision{
			ReviewID:  rv.ID,
			AdminID:   adminID,
			Action:    ActionReject,
			Reason:    reason,
			Details:   snapshot(rv, summary),
			CreatedAt: now,
		}
		if err := s.decisions.WithTx(tx).Create(ctx, d); err != nil {
			return apperr.Persistence(err)
		}
		res.DecisionID = d.ID
		return nil
	})
	if errors.Is(err, errRemovedMeanwhile) {
		res, err := s.removed(ctx, rv)
		return res, nil, err
	}
	if err != nil {
		return nil, nil, apperr.Persistence(err)
	}

	logger.FromContext(ctx).Info("review rejected by moderator",
		"review_id", rv.ID,
		"admin_id", adminID,
		"reviewed_user_id", rv.ReviewedUserID,
		"rating", res.Rating.Rating,
		"review_count", res.Rating.ReviewCount,
	)

	events := []notification.Event{{
		UserID:    rv.ReviewerID,
		Kind:      notification.KindReviewRemoved,
		Title:     "Review removed",
		Message:   fmt.Sprintf("Your review for match #%d was removed by a moderator: %s", rv.MatchID, reason),
		ActionRef: match.ActionRef(rv.MatchID),
	}}
	return res, events, nil
}

// ApproveReview records that an administrator looked at the review and kept it.
// It changes no review state.
func (s *Service) ApproveReview(ctx context.Context, reviewID, adminID int64, reason string) (*Result, error) {
	reason = strings.TrimSpace(reason)
	if utf8.RuneCountInString(reason) > maxReasonLength {
		return nil, ErrReasonTooLong
	}
	rv, err := s.loadReview(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if !rv.State.Live() {
		return nil, review.ErrAlreadyDeleted
	}

	summary, err := s.aggregator.Get(ctx, rv.ReviewedUserID)
	if err != nil {
		return nil, apperr.Persistence(err)
	}
	d := &Decision{
		ReviewID:  rv.ID,
		AdminID:   adminID,
		Action:    ActionApprove,
		Reason:    reason,
		Details:   snapshot(rv, summary),
		CreatedAt: s.now().UTC(),
	}
	if err := s.decisions.Create(ctx, d); err != nil {
		return nil, apperr.Persistence(err)
	}
	return &Result{
		ReviewID:       rv.ID,
		Action:         ActionApprove,
		ReviewedUserID: rv.ReviewedUserID,
		Rating:         *summary,
		DecisionID:     d.ID,
	}, nil
}

func (s *Service) ListDecisions(ctx context.Context, reviewID int64) ([]Decision, error) {
	if _, err := s.loadReview(ctx, reviewID); err != nil {
		return nil, err
	}
	out, err := s.decisions.ListByReview(ctx, reviewID)
	if err != nil {
		return nil, apperr.Persistence(err)
	}
	if out == nil {
		out = []Decision{}
	}
	return out, nil
}

// removed reports a review that is already out of the aggregate. Rejecting it
// again changes nothing and notifies nobody.
func (s *Service) removed(ctx context.Context, rv *review.MatchReview) (*Result, error) {
	summary, err := s.aggregator.Get(ctx, rv.ReviewedUserID)
	if err != nil {
		return nil, apperr.Persistence(err)
	}
	res := &Result{ReviewID: rv.ID, Action: ActionReject, ReviewedUserID: rv.ReviewedUserID, Rating: *summary}
	decisions, err := s.decisions.ListByReview(ctx, rv.ID)
	if err != nil {
		return nil, apperr.Persistence(err)
	}
	for _, d := range decisions {
		if d.Action == ActionReject {
			res.DecisionID = d.ID
		}
	}
	return res, nil
}

func (s *Service) loadReview(ctx context.Context, reviewID int64) (*review.MatchReview, error) {
	rv, err := s.reviews.GetByID(ctx, reviewID)
	if err != nil {
		return nil, apperr.Persistence(err)
	}
	if rv == nil {
		return nil, review.ErrReviewNotFound
	}
	return rv, nil
}

func snapshot(rv *review.MatchReview, summary *rating.Summary) map[string]any {
	return map[string]any{
		"match_id":         rv.MatchID,
		"reviewer_id":      rv.ReviewerID,
		"reviewed_user_id": rv.ReviewedUserID,
		"overall_rating":   rv.OverallRating,
		"state":            string(rv.State),
		"rating_after":     summary.Rating,
		"review_count":     summary.ReviewCount,
	}
}
