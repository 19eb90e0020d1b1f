// Package model contains the GORM-specific persistence structs.
// These are kept separate from the domain entities so that database
// concerns (column types, indexes, soft deletes) never leak upward.
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserModel is the GORM-specific struct for the 'users' table.
type UserModel struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	Email        string    `gorm:"type:varchar(255);unique;not null"`
	PasswordHash string    `gorm:"type:varchar(255)"`

	Name       string `gorm:"type:varchar(255)"`
	Gender     string `gorm:"type:varchar(50)"`
	Location   string `gorm:"type:varchar(255)"`
	Website    string `gorm:"type:varchar(255)"`
	PictureURL string `gorm:"type:text"`
	Phone      string `gorm:"type:varchar(50)"`

	TwoFactorEnabled  bool       `gorm:"not null;default:false"`
	TwoFactorType     string     `gorm:"type:varchar(20)"`
	TOTPSecret        string     `gorm:"type:varchar(255)"`
	TOTPPeriod        uint       `gorm:"not null;default:0"`
	PendingSMSHash    string     `gorm:"type:varchar(255)"`
	PendingSMSPhone   string     `gorm:"type:varchar(50)"`
	PendingSMSExpires *time.Time

	ResetTokenHash string     `gorm:"type:varchar(255)"`
	ResetExpires   *time.Time

	LastLoginAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   gorm.DeletedAt `gorm:"index"`
}

// TableName explicitly sets the table name for GORM.
func (UserModel) TableName() string {
	return "users"
}
