package handler

import (
	"time"

	"pentrack/internal/domain/entity"

	"github.com/google/uuid"
)

// userView is the wire representation of a user. Internal bookkeeping
// fields (soft-delete marker, last-login source) never leave the service.
type userView struct {
	ID            uuid.UUID  `json:"id"`
	Email         string     `json:"email"`
	Phone         *string    `json:"phone,omitempty"`
	FirstName     string     `json:"firstName"`
	LastName      string     `json:"lastName"`
	Role          string     `json:"role"`
	Status        string     `json:"status"`
	EmailVerified bool       `json:"emailVerified"`
	ProfileImage  string     `json:"profileImage,omitempty"`
	LastLoginAt   *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
}

func toUserView(user *entity.User) *userView {
	if user == nil {
		return nil
	}

	return &userView{
		ID:            user.ID,
		Email:         user.Email,
		Phone:         user.Phone,
		FirstName:     user.FirstName,
		LastName:      user.LastName,
		Role:          user.Role.String(),
		Status:        user.Status.String(),
		EmailVerified: user.EmailVerified,
		ProfileImage:  user.ProfileImage,
		LastLoginAt:   user.LastLoginAt,
		CreatedAt:     user.CreatedAt,
	}
}

// sessionView is the wire representation of a session for /auth/sessions.
// The token itself is never echoed back.
type sessionView struct {
	ID             uuid.UUID `json:"id"`
	Remember       bool      `json:"remember"`
	ExpiresAt      time.Time `json:"expiresAt"`
	LastActivityAt time.Time `json:"lastActivityAt"`
	UserAgent      string    `json:"userAgent,omitempty"`
	IPAddress      string    `json:"ipAddress,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	Current        bool      `json:"current"`
}

func toSessionView(session *entity.Session, currentID uuid.UUID) *sessionView {
	if session == nil {
		return nil
	}

	return &sessionView{
		ID:             session.ID,
		Remember:       session.Remember,
		ExpiresAt:      session.ExpiresAt,
		LastActivityAt: session.LastActivityAt,
		UserAgent:      session.UserAgent,
		IPAddress:      session.IPAddress,
		CreatedAt:      session.CreatedAt,
		Current:        session.ID == currentID,
	}
}
