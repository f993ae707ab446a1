package user

import "time"

type Role string

const (
	RoleClient       Role = "client"
	RoleProfessional Role = "professional"
	RoleAdmin        Role = "admin"
)

// User is the slice of the external user directory this service reads.
type User struct {
	ID             int64     `json:"id" gorm:"primaryKey"`
	Name           string    `json:"name" gorm:"size:255"`
	Email          string    `json:"email" gorm:"size:255;index"`
	Phone          string    `json:"-" gorm:"size:32"`
	WhatsAppNumber string    `json:"-" gorm:"column:whatsapp_number;size:32"`
	AvatarURL      string    `json:"avatar_url,omitempty"`
	Role           Role      `json:"role" gorm:"size:32"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (User) TableName() string { return "users" }

// ContactPhone prefers the WhatsApp number over the plain phone.
func (u *User) ContactPhone() string {
	if u.WhatsAppNumber != "" {
		return u.WhatsAppNumber
	}
	return u.Phone
}
