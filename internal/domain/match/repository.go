package match

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

func (r *Repository) Create(ctx context.Context, m *Match) error {
	return r.db.WithContext(ctx).Create(m).Error
}

// GetByID returns (nil, nil) when the match does not exist.
func (r *Repository) GetByID(ctx context.Context, id int64) (*Match, error) {
	return r.first(r.db.WithContext(ctx), id)
}

// GetForUpdate locks the match row for the rest of the transaction.
func (r *Repository) GetForUpdate(ctx context.Context, id int64) (*Match, error) {
	return r.first(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *Repository) first(q *gorm.DB, id int64) (*Match, error) {
	var m Match
	err := q.Where("id = ?", id).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// ListForUser returns matches the user takes part in, newest first.
// A nil role means either side.
func (r *Repository) ListForUser(ctx context.Context, userID int64, role *Role) ([]Match, error) {
	q := r.db.WithContext(ctx).Model(&Match{})
	switch {
	case role == nil:
		q = q.Where("client_id = ? OR professional_id = ?", userID, userID)
	case *role == RoleClient:
		q = q.Where("client_id = ?", userID)
	default:
		q = q.Where("professional_id = ?", userID)
	}

	var out []Match
	if err := q.Order("created_at DESC, id DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repository) UpdateStatus(ctx context.Context, id int64, status Status, at time.Time) error {
	return r.db.WithContext(ctx).Model(&Match{}).Where("id = ?", id).Updates(map[string]any{
		"status":     status,
		"updated_at": at,
	}).Error
}

// RecordPhoneReveal bumps the reveal counter atomically. The counter never decreases.
func (r *Repository) RecordPhoneReveal(ctx context.Context, id int64, at time.Time) error {
	return r.db.WithContext(ctx).Model(&Match{}).Where("id = ?", id).Updates(map[string]any{
		"phone_reveal_count":   gorm.Expr("phone_reveal_count + 1"),
		"last_phone_reveal_at": at,
		"updated_at":           at,
	}).Error
}
