package moderation

import (
	"context"

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

func (r *Repository) Create(ctx context.Context, d *Decision) error {
	return r.db.WithContext(ctx).Create(d).Error
}

// ListByReview returns decisions for a review, oldest first.
func (r *Repository) ListByReview(ctx context.Context, reviewID int64) ([]Decision, error) {
	var out []Decision
	err := r.db.WithContext(ctx).
		Where("review_id = ?", reviewID).
		Order("created_at ASC, id ASC").
		Find(&out).Error
	return out, err
}
