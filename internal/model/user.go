package model

import (
	"gorm.io/gorm"
)

// User is an account owning contacts. Password holds the bcrypt hash,
// RefreshToken the currently valid refresh token (nil after logout or
// reuse detection).
type User struct {
	gorm.Model
	Username     string  `gorm:"size:100;not null" json:"username"`
	Email        string  `gorm:"size:100;not null;uniqueIndex" json:"email"`
	Password     string  `gorm:"size:255;not null" json:"-"`
	Confirmed    bool    `gorm:"not null;default:false" json:"confirmed"`
	RefreshToken *string `gorm:"size:512" json:"-"`
	Avatar       *string `gorm:"size:512" json:"avatar"`
}

func (User) TableName() string {
	return "users"
}
