// models/user.go
package models

import (
	"time"
)

type User struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Username  string     `gorm:"uniqueIndex;not null;size:64" json:"username"`
	Email     string     `gorm:"uniqueIndex;not null;size:255" json:"email"`
	Password  string     `gorm:"not null" json:"-"`
	AvatarURL string     `gorm:"size:512" json:"avatar_url"`
	BannerURL string     `gorm:"size:512" json:"banner_url"`
	Bio       string     `gorm:"type:text" json:"bio"`
	CreatedAt time.Time  `json:"registration_date"`
	UpdatedAt time.Time  `json:"updated_at"`
	LastLogin *time.Time `json:"last_login,omitempty"`
}
