package review

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

func (r *Repository) Create(ctx context.Context, rv *MatchReview) error {
	return r.db.WithContext(ctx).Create(rv).Error
}

// GetByID includes deleted reviews. Returns (nil, nil) when absent.
func (r *Repository) GetByID(ctx context.Context, id int64) (*MatchReview, error) {
	var rv MatchReview
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&rv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rv, nil
}

// FindLive returns the live review by reviewer on a match, or nil.
func (r *Repository) FindLive(ctx context.Context, matchID, reviewerID int64) (*MatchReview, error) {
	var rv MatchReview
	err := r.db.WithContext(ctx).
		Where("match_id = ? AND reviewer_id = ? AND deleted_at IS NULL", matchID, reviewerID).
		First(&rv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rv, nil
}

func (r *Repository) ListLiveByMatch(ctx context.Context, matchID int64) ([]MatchReview, error) {
	var out []MatchReview
	err := r.db.WithContext(ctx).
		Where("match_id = ? AND deleted_at IS NULL", matchID).
		Order("created_at ASC, id ASC").
		Find(&out).Error
	return out, err
}

func (r *Repository) ListLiveForUser(ctx context.Context, reviewedUserID int64, limit, offset int) ([]MatchReview, int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&MatchReview{}).
		Where("reviewed_user_id = ? AND deleted_at IS NULL", reviewedUserID).
		Count(&total).Error
	if err != nil {
		return nil, 0, err
	}

	var out []MatchReview
	err = r.db.WithContext(ctx).
		Where("reviewed_user_id = ? AND deleted_at IS NULL", reviewedUserID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&out).Error
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// Save writes the editable columns of a live review. It reports false if the
// review was deleted in the meantime.
func (r *Repository) Save(ctx context.Context, rv *MatchReview) (bool, error) {
	res := r.db.WithContext(ctx).Model(&MatchReview{}).
		Where("id = ? AND deleted_at IS NULL", rv.ID).
		Updates(map[string]any{
			"overall_rating":         rv.OverallRating,
			"quality_rating":         rv.QualityRating,
			"professionalism_rating": rv.ProfessionalismRating,
			"punctuality_rating":     rv.PunctualityRating,
			"communication_rating":   rv.CommunicationRating,
			"comment":                rv.Comment,
			"state":                  rv.State,
			"updated_at":             rv.UpdatedAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// SoftDelete moves a live review into a deleted state. It reports false if the
// review was already deleted.
func (r *Repository) SoftDelete(ctx context.Context, id int64, state State, by int64, reason *string, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&MatchReview{}).
		Where("id = ? AND deleted_at IS NULL", id).
		Updates(map[string]any{
			"state":         state,
			"deleted_at":    at,
			"deleted_by":    by,
			"delete_reason": reason,
			"updated_at":    at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

type aggregateRow struct {
	Total              int64
	AvgOverall         *float64
	AvgQuality         *float64
	AvgProfessionalism *float64
	AvgPunctuality     *float64
	AvgCommunication   *float64
}

type histogramRow struct {
	Rating int
	Count  int64
}

// Aggregate computes counts and per-column means over live reviews about a user.
// AVG skips NULL sub-ratings.
func (r *Repository) Aggregate(ctx context.Context, reviewedUserID int64) (*aggregateRow, []histogramRow, error) {
	var agg aggregateRow
	err := r.db.WithContext(ctx).Model(&MatchReview{}).
		Select(`COUNT(*) AS total,
			AVG(overall_rating) AS avg_overall,
			AVG(quality_rating) AS avg_quality,
			AVG(professionalism_rating) AS avg_professionalism,
			AVG(punctuality_rating) AS avg_punctuality,
			AVG(communication_rating) AS avg_communication`).
		Where("reviewed_user_id = ? AND deleted_at IS NULL", reviewedUserID).
		Scan(&agg).Error
	if err != nil {
		return nil, nil, err
	}

	var hist []histogramRow
	err = r.db.WithContext(ctx).Model(&MatchReview{}).
		Select("overall_rating AS rating, COUNT(*) AS count").
		Where("reviewed_user_id = ? AND deleted_at IS NULL", reviewedUserID).
		Group("overall_rating").
		Scan(&hist).Error
	if err != nil {
		return nil, nil, err
	}
	return &agg, hist, nil
}
