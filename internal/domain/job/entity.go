package job

import "time"

type Status string

const (
	StatusOpen       Status = "open"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// Job is owned by the job subsystem. This service only touches the completion
// handshake fields and Status.
type Job struct {
	ID             int64  `json:"id" gorm:"primaryKey"`
	ProjectID      int64  `json:"project_id" gorm:"not null;uniqueIndex"`
	ClientID       int64  `json:"client_id" gorm:"not null;index"`
	ProfessionalID int64  `json:"professional_id" gorm:"index"`
	Title          string `json:"title" gorm:"size:255"`
	Status         Status `json:"status" gorm:"size:32;not null;default:open"`

	CompletionRequestedBy *int64     `json:"completion_requested_by,omitempty"`
	CompletionRequestedAt *time.Time `json:"completion_requested_at,omitempty"`
	CompletionConfirmedBy *int64     `json:"completion_confirmed_by,omitempty"`
	CompletionConfirmedAt *time.Time `json:"completion_confirmed_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Job) TableName() string { return "jobs" }

// CompletionConfirmed is true once both confirmation fields are recorded.
func (j *Job) CompletionConfirmed() bool {
	return j.CompletionConfirmedBy != nil && j.CompletionConfirmedAt != nil
}

func (j *Job) CompletionRequested() bool {
	return j.CompletionRequestedBy != nil
}
