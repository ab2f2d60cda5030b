// Package model holds the GORM persistence models mirroring the database tables.
package model

import (
	"time"

	"github.com/google/uuid"
)

// UserModel mirrors the 'users' table. PostgreSQL generates UUIDs via uuid_generate_v7().
type UserModel struct {
	ID              uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	Email           string    `gorm:"type:varchar(255);unique;not null"`
	Phone           *string   `gorm:"type:varchar(32);unique"`
	FirstName       string    `gorm:"type:varchar(100)"`
	LastName        string    `gorm:"type:varchar(100)"`
	Role            string    `gorm:"type:varchar(32);not null;index"`
	Status          string    `gorm:"type:varchar(16);not null;default:'pending'"`
	EmailVerified   bool      `gorm:"not null;default:false"`
	EmailVerifiedAt *time.Time
	ProfileImage    string `gorm:"type:text"`
	CompanyEmail    string `gorm:"type:varchar(255)"`
	CompanyDomain   string `gorm:"type:varchar(255);index"`
	LastLoginAt     *time.Time
	LastLoginIP     string `gorm:"type:varchar(45)"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
	DeletedAt       *time.Time `gorm:"index"`

	Sessions      []SessionModel      `gorm:"foreignKey:UserID"`
	ProviderLinks []ProviderLinkModel `gorm:"foreignKey:UserID"`
}

// TableName explicitly sets the table name for GORM.
func (UserModel) TableName() string {
	return "users"
}
