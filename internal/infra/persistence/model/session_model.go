package model

import (
	"time"

	"github.com/google/uuid"
)

// SessionModel mirrors the 'sessions' table. The token column carries the
// opaque bearer credential and is the hot lookup path for every request.
type SessionModel struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	UserID         uuid.UUID `gorm:"type:uuid;not null;index"`
	Token          string    `gorm:"type:varchar(64);unique;not null"`
	Remember       bool      `gorm:"not null;default:false"`
	ExpiresAt      time.Time `gorm:"not null;index"`
	LastActivityAt time.Time `gorm:"not null"`
	UserAgent      string    `gorm:"type:text"`
	IPAddress      string    `gorm:"type:varchar(45)"`
	CreatedAt      time.Time
}

// TableName explicitly sets the table name for GORM.
func (SessionModel) TableName() string {
	return "sessions"
}
