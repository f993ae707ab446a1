package match

import "time"

type Status string

const (
	StatusActive       Status = "active"
	StatusCompleted    Status = "completed"
	StatusDisputed     Status = "disputed"
	StatusCancelled    Status = "cancelled"
	StatusUnsuccessful Status = "unsuccessful"
)

// transitions lists every legal status change. Statuses without an entry are terminal.
var transitions = map[Status][]Status{
	StatusActive:    {StatusCompleted, StatusDisputed, StatusCancelled, StatusUnsuccessful},
	StatusCompleted: {StatusDisputed},
}

func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusCompleted, StatusDisputed, StatusCancelled, StatusUnsuccessful:
		return true
	}
	return false
}

func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s Status) Terminal() bool {
	return len(transitions[s]) == 0
}

type Role string

const (
	RoleClient       Role = "client"
	RoleProfessional Role = "professional"
)

// Participant is the public summary of a match side.
type Participant struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// Match is created once a proposal is accepted and is never hard-deleted.
type Match struct {
	ID                int64      `json:"id" gorm:"primaryKey"`
	ProposalID        int64      `json:"proposal_id" gorm:"not null;uniqueIndex"`
	ClientID          int64      `json:"client_id" gorm:"not null;index;check:chk_matches_distinct_participants,client_id <> professional_id"`
	ProfessionalID    int64      `json:"professional_id" gorm:"not null;index"`
	ProjectID         int64      `json:"project_id" gorm:"not null;index"`
	JobID             *int64     `json:"job_id,omitempty" gorm:"index"`
	Status            Status     `json:"status" gorm:"size:32;not null;default:active"`
	PhoneRevealCount  int        `json:"phone_reveal_count" gorm:"not null;default:0"`
	LastPhoneRevealAt *time.Time `json:"last_phone_reveal_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`

	Client       *Participant `json:"client,omitempty" gorm:"-"`
	Professional *Participant `json:"professional,omitempty" gorm:"-"`
}

func (Match) TableName() string { return "matches" }

func (m *Match) HasParticipant(userID int64) bool {
	return userID != 0 && (userID == m.ClientID || userID == m.ProfessionalID)
}

// Counterparty returns the other side of the match, or 0 if userID is not a participant.
func (m *Match) Counterparty(userID int64) int64 {
	switch userID {
	case m.ClientID:
		return m.ProfessionalID
	case m.ProfessionalID:
		return m.ClientID
	}
	return 0
}

func (m *Match) RoleOf(userID int64) (Role, bool) {
	switch userID {
	case m.ClientID:
		return RoleClient, true
	case m.ProfessionalID:
		return RoleProfessional, true
	}
	return "", false
}
