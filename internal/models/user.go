package models

import "time"

const (
	ProviderLocal       = "local"
	ProviderGoogle      = "google"
	ProviderLocalGoogle = "local+google"
)

// User is an identity record. Password is nil for Google-only accounts.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"size:100;not null" json:"name"`
	Email        string    `gorm:"size:255;not null;uniqueIndex" json:"email"`
	Password     *string   `gorm:"size:255" json:"-"`
	GoogleID     *string   `gorm:"size:255;uniqueIndex" json:"-"`
	AuthProvider string    `gorm:"size:20;not null;default:'local'" json:"auth_provider"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) HasPassword() bool {
	return u.Password != nil && *u.Password != ""
}
