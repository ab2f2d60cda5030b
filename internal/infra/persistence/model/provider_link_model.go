package model

import (
	"time"

	"github.com/google/uuid"
)

// ProviderLinkModel mirrors the 'provider_links' table. The (provider,
// provider_user_id) pair is unique: one federated identity maps to exactly
// one local account.
type ProviderLinkModel struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	UserID         uuid.UUID `gorm:"type:uuid;not null;index"`
	Provider       string    `gorm:"type:varchar(32);not null;uniqueIndex:idx_links_provider_subject"`
	ProviderUserID string    `gorm:"type:varchar(255);not null;uniqueIndex:idx_links_provider_subject"`
	Email          string    `gorm:"type:varchar(255)"`
	Name           string    `gorm:"type:varchar(255)"`
	Picture        string    `gorm:"type:text"`
	CreatedAt      time.Time
}

// TableName explicitly sets the table name for GORM.
func (ProviderLinkModel) TableName() string {
	return "provider_links"
}
