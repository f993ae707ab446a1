package rating

import "time"

// Summary is the aggregate shown on a professional's profile.
type Summary struct {
	UserID      int64     `json:"user_id" gorm:"primaryKey;autoIncrement:false"`
	Rating      float64   `json:"rating" gorm:"not null;default:0"`
	ReviewCount int64     `json:"review_count" gorm:"not null;default:0"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Summary) TableName() string { return "professional_rating_summaries" }
