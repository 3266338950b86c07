package repository

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/callstream/backend/internal/models"
)

// ErrNotFound wraps sql.ErrNoRows so callers can branch on missing records
// without importing database/sql.
var ErrNotFound = sql.ErrNoRows

// VideoStore is the persistence port for the video registry. The Postgres
// implementation lives in this package; the interface keeps handlers and
// services free of the backend choice.
type VideoStore interface {
	Create(v *models.Video, content []byte) error
	GetByID(id uuid.UUID) (*models.Video, error)
	GetContent(id uuid.UUID) ([]byte, string, error)
	List() ([]models.Video, error)
	GetActiveByDuration(minutes int) (*models.Video, error)
	IncrementViews(id uuid.UUID) error
	ToggleActive(id uuid.UUID) (bool, error)
	UpdatePrice(id uuid.UUID, price float64) error
	Delete(id uuid.UUID) (bool, error)
}

// CallStore is the persistence port for the call log.
type CallStore interface {
	Create(c *models.CallSession) error
	GetByID(id uuid.UUID) (*models.CallSession, error)
	Complete(id uuid.UUID, endedAt time.Time) (bool, error)
	ListCompleted() ([]models.CallSession, error)
}

// SessionStore is the persistence port for admin sessions.
type SessionStore interface {
	Create(s *models.AdminSession) error
	Get(id uuid.UUID) (*models.AdminSession, error)
	Delete(id uuid.UUID) error
	DeleteExpired(before time.Time) error
}
