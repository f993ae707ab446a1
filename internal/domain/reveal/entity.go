package reveal

import (
	"time"

	"gorm.io/datatypes"
)

// PhoneReveal is a single-use disclosure grant. Only the SHA-256 of the token is
// stored. Rows are kept after redemption or expiry as an audit trail.
type PhoneReveal struct {
	ID             int64      `json:"id" gorm:"primaryKey"`
	MatchID        int64      `json:"match_id" gorm:"not null;index:idx_phone_reveals_match"`
	UserID         int64      `json:"user_id" gorm:"not null;index"`
	TargetUserID   int64      `json:"target_user_id" gorm:"not null"`
	EncryptedPhone string     `json:"-" gorm:"type:text;not null"`
	TokenHash      string     `json:"-" gorm:"size:64;not null;uniqueIndex"`
	ExpiresAt      time.Time  `json:"expires_at" gorm:"not null;index"`
	RedeemedAt     *time.Time `json:"redeemed_at,omitempty"`
	RedeemedBy     *int64     `json:"redeemed_by,omitempty"`
	IPAddress      *string    `json:"ip_address,omitempty" gorm:"size:64"`
	UserAgent      *string    `json:"user_agent,omitempty" gorm:"size:512"`
	CreatedAt      time.Time  `json:"created_at"`
}

func (PhoneReveal) TableName() string { return "phone_reveals" }

func (r *PhoneReveal) Redeemable(now time.Time) bool {
	return r.RedeemedAt == nil && now.Before(r.ExpiresAt)
}

type AuditAction string

const (
	AuditIssued   AuditAction = "issued"
	AuditRedeemed AuditAction = "redeemed"
)

type AuditLog struct {
	ID        int64             `json:"id" gorm:"primaryKey"`
	MatchID   int64             `json:"match_id" gorm:"not null;index"`
	RevealID  int64             `json:"reveal_id" gorm:"not null;index"`
	UserID    int64             `json:"user_id" gorm:"not null"`
	Action    AuditAction       `json:"action" gorm:"size:16;not null"`
	IPAddress *string           `json:"ip_address,omitempty" gorm:"size:64"`
	UserAgent *string           `json:"user_agent,omitempty" gorm:"size:512"`
	Details   datatypes.JSONMap `json:"details,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

func (AuditLog) TableName() string { return "phone_reveal_audit_logs" }
