package rating

import (
	"context"
	"errors"
	"math"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// reviewsTable is owned by the review package; the aggregator only reads it.
const reviewsTable = "match_reviews"

// Aggregator recomputes rating summaries from the full set of live reviews.
// It never patches a summary incrementally.
type Aggregator struct {
	db  *gorm.DB
	now func() time.Time
}

func NewAggregator(db *gorm.DB) *Aggregator {
	return &Aggregator{db: db, now: time.Now}
}

// WithTx binds the aggregator to an open transaction.
func (a *Aggregator) WithTx(tx *gorm.DB) *Aggregator {
	return &Aggregator{db: tx, now: a.now}
}

// Recompute rebuilds the summary for userID from every non-deleted review about them.
func (a *Aggregator) Recompute(ctx context.Context, userID int64) (*Summary, error) {
	var ratings []int
	err := a.db.WithContext(ctx).
		Table(reviewsTable).
		Where("reviewed_user_id = ? AND deleted_at IS NULL", userID).
		Pluck("overall_rating", &ratings).Error
	if err != nil {
		return nil, err
	}

	s := &Summary{UserID: userID, UpdatedAt: a.now().UTC()}
	if len(ratings) > 0 {
		total := 0
		for _, r := range ratings {
			total += r
		}
		s.Rating = Round1(float64(total) / float64(len(ratings)))
		s.ReviewCount = int64(len(ratings))
	}

	err = a.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"rating", "review_count", "updated_at"}),
	}).Create(s).Error
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Get returns the stored summary, or a zero summary when none exists yet.
func (a *Aggregator) Get(ctx context.Context, userID int64) (*Summary, error) {
	var s Summary
	err := a.db.WithContext(ctx).First(&s, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &Summary{UserID: userID}, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// RecomputeAll rebuilds every summary that exists or should exist. Used by maintenance tooling.
func (a *Aggregator) RecomputeAll(ctx context.Context) (int, error) {
	var reviewed []int64
	if err := a.db.WithContext(ctx).Table(reviewsTable).Distinct("reviewed_user_id").Pluck("reviewed_user_id", &reviewed).Error; err != nil {
		return 0, err
	}
	var existing []int64
	if err := a.db.WithContext(ctx).Model(&Summary{}).Pluck("user_id", &existing).Error; err != nil {
		return 0, err
	}

	seen := make(map[int64]struct{}, len(reviewed)+len(existing))
	n := 0
	for _, id := range append(reviewed, existing...) {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		if _, err := a.Recompute(ctx, id); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// Round1 rounds half away from zero to one decimal place.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}
