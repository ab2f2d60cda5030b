package model

import (
	"time"

	"github.com/google/uuid"
)

// OneTimeCodeModel mirrors the 'one_time_codes' table. Only the hash of a
// code is ever stored; the plaintext exists solely in the delivery email.
type OneTimeCodeModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	Email      string    `gorm:"type:varchar(255);not null;index:idx_codes_email_purpose"`
	CodeHash   string    `gorm:"type:varchar(64);not null"`
	Purpose    string    `gorm:"type:varchar(32);not null;index:idx_codes_email_purpose"`
	ExpiresAt  time.Time `gorm:"not null;index"`
	Attempts   int       `gorm:"not null;default:0"`
	ConsumedAt *time.Time
	UserID     *uuid.UUID `gorm:"type:uuid;index"`
	CreatedAt  time.Time
}

// TableName explicitly sets the table name for GORM.
func (OneTimeCodeModel) TableName() string {
	return "one_time_codes"
}
