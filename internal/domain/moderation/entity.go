package moderation

import (
	"time"

	"gorm.io/datatypes"
)

type Action string

const (
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
)

// Decision is the audit record of an administrator acting on a review.
type Decision struct {
	ID       int64  `json:"id" gorm:"primaryKey"`
	ReviewID int64  `json:"review_id" gorm:"not null;index"`
	AdminID  int64  `json:"admin_id" gorm:"not null;index"`
	Action   Action `json:"action" gorm:"size:16;not null"`
	Reason   string `json:"reason,omitempty" gorm:"size:500"`
	// Snapshot of the review and the resulting aggregate at decision time.
	Details   datatypes.JSONMap `json:"details,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

func (Decision) TableName() string { return "review_moderation_decisions" }
