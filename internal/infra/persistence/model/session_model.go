package model

import (
	"time"

	"github.com/google/uuid"
)

// SessionModel mirrors the 'sessions' table. TokenHash is empty while a
// step-up challenge is pending, so uniqueness only applies to non-empty
// hashes via a partial expression index created in the migration.
type SessionModel struct {
	ID                   uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	UserID               uuid.UUID `gorm:"type:uuid;not null;index"`
	TokenHash            string    `gorm:"type:varchar(255);index"`
	SecondFactorVerified bool      `gorm:"not null;default:false"`
	AttemptedURL         string    `gorm:"type:text"`
	ExpiresAt            time.Time `gorm:"not null"`
	CreatedAt            time.Time
}

// TableName explicitly sets the table name for GORM.
func (SessionModel) TableName() string {
	return "sessions"
}

// LoginAttemptModel mirrors the 'login_attempts' table. Rows carry their own
// expiry and are swept opportunistically rather than on a schedule.
type LoginAttemptModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	Email     string    `gorm:"type:varchar(255);not null;index"`
	IP        string    `gorm:"type:varchar(64)"`
	CreatedAt time.Time
	ExpiresAt time.Time `gorm:"not null;index"`
}

// TableName explicitly sets the table name for GORM.
func (LoginAttemptModel) TableName() string {
	return "login_attempts"
}
