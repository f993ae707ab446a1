package job

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
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

func (r *Repository) Create(ctx context.Context, j *Job) error {
	return r.db.WithContext(ctx).Create(j).Error
}

// GetByID returns (nil, nil) when absent.
func (r *Repository) GetByID(ctx context.Context, id int64) (*Job, error) {
	return r.first(r.db.WithContext(ctx).Where("id = ?", id))
}

// GetByProjectID returns (nil, nil) when absent.
func (r *Repository) GetByProjectID(ctx context.Context, projectID int64) (*Job, error) {
	return r.first(r.db.WithContext(ctx).Where("project_id = ?", projectID))
}

// GetForUpdate reads the job with a row lock. Only meaningful inside a transaction.
func (r *Repository) GetForUpdate(ctx context.Context, id int64) (*Job, error) {
	return r.first(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id))
}

func (r *Repository) first(q *gorm.DB) (*Job, error) {
	var j Job
	err := q.First(&j).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &j, nil
}

func (r *Repository) SetCompletionRequested(ctx context.Context, id, userID int64, at time.Time) error {
	return r.db.WithContext(ctx).Model(&Job{}).Where("id = ?", id).Updates(map[string]any{
		"completion_requested_by": userID,
		"completion_requested_at": at,
		"updated_at":              at,
	}).Error
}

// SetCompletionConfirmed records the confirmation and marks the job completed.
func (r *Repository) SetCompletionConfirmed(ctx context.Context, id, userID int64, at time.Time) error {
	return r.db.WithContext(ctx).Model(&Job{}).Where("id = ?", id).Updates(map[string]any{
		"completion_confirmed_by": userID,
		"completion_confirmed_at": at,
		"status":                  StatusCompleted,
		"updated_at":              at,
	}).Error
}
