package model

import (
	"time"

	"gorm.io/datatypes"
)

// Contact belongs to exactly one user; every query is scoped by UserID.
// No DeletedAt column: deleting a contact removes the row outright so
// its unique phone number becomes free again.
type Contact struct {
	ID          uint           `gorm:"primarykey" json:"id"`
	CreatedAt   time.Time      `json:"created_at"`
	Name        string         `gorm:"size:50;not null" json:"name"`
	Surname     string         `gorm:"size:50;not null" json:"surname"`
	Email       string         `gorm:"size:100;not null" json:"email"`
	PhoneNumber string         `gorm:"size:20;not null;uniqueIndex" json:"phone_number"`
	Birthdate   datatypes.Date `gorm:"type:date;not null" json:"birthdate"`
	UserID      uint           `gorm:"not null;index" json:"user_id"`
	User        User           `gorm:"foreignKey:UserID" json:"-"`
}

func (Contact) TableName() string {
	return "contacts"
}
