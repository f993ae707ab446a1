package reveal

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

func (r *Repository) Create(ctx context.Context, rv *PhoneReveal) error {
	return r.db.WithContext(ctx).Create(rv).Error
}

// FindPending returns the unredeemed, unexpired grant for (match, token hash), or nil.
func (r *Repository) FindPending(ctx context.Context, matchID int64, tokenHash string, now time.Time) (*PhoneReveal, error) {
	var rv PhoneReveal
	err := r.db.WithContext(ctx).
		Where("match_id = ? AND token_hash = ? AND redeemed_at IS NULL AND expires_at > ?", matchID, tokenHash, now).
		First(&rv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rv, nil
}

// MarkRedeemed flips a pending grant to redeemed. It reports false when another
// redemption won the race or the grant expired in between.
func (r *Repository) MarkRedeemed(ctx context.Context, id, userID int64, now time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&PhoneReveal{}).
		Where("id = ? AND redeemed_at IS NULL AND expires_at > ?", id, now).
		Updates(map[string]any{"redeemed_at": now, "redeemed_by": userID})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *Repository) HasRedeemed(ctx context.Context, matchID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&PhoneReveal{}).
		Where("match_id = ? AND redeemed_at IS NOT NULL", matchID).
		Count(&count).Error
	return count > 0, err
}

func (r *Repository) ListByMatch(ctx context.Context, matchID int64) ([]PhoneReveal, error) {
	var out []PhoneReveal
	err := r.db.WithContext(ctx).
		Where("match_id = ?", matchID).
		Order("created_at DESC, id DESC").
		Find(&out).Error
	return out, err
}

// ListCreatedSince feeds the audit report.
func (r *Repository) ListCreatedSince(ctx context.Context, since time.Time) ([]PhoneReveal, error) {
	var out []PhoneReveal
	err := r.db.WithContext(ctx).
		Where("created_at >= ?", since).
		Order("created_at ASC").
		Find(&out).Error
	return out, err
}

func (r *Repository) CreateAudit(ctx context.Context, entry *AuditLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *Repository) ListAudit(ctx context.Context, matchID int64) ([]AuditLog, error) {
	var out []AuditLog
	err := r.db.WithContext(ctx).
		Where("match_id = ?", matchID).
		Order("created_at ASC, id ASC").
		Find(&out).Error
	return out, err
}
