package models

import (
	"time"

	"github.com/google/uuid"
)

// AdminSession is the persisted server-side half of an admin login. The
// token alone is not enough: logout deletes the row, which invalidates the
// token before its natural expiry.
type AdminSession struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Username  string    `json:"username" db:"username"`
	IssuedAt  time.Time `json:"issued_at" db:"issued_at"`
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
}

// Valid reports whether the session is still usable at the given instant.
func (s *AdminSession) Valid(now time.Time) bool {
	return now.Before(s.ExpiresAt)
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
