package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/callstream/backend/internal/database"
	"github.com/callstream/backend/internal/models"
)

type SessionRepository struct {
	db *database.DB
}

func NewSessionRepository(db *database.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Create(s *models.AdminSession) error {
	query := `
        INSERT INTO admin_sessions (id, username, issued_at, expires_at)
        VALUES ($1,$2,$3,$4)
    `
	_, err := r.db.Exec(query, s.ID, s.Username, s.IssuedAt, s.ExpiresAt)
	if err != nil {
		return fmt.Errorf("failed to create admin session: %w", err)
	}
	return nil
}

func (r *SessionRepository) Get(id uuid.UUID) (*models.AdminSession, error) {
	query := `SELECT id, username, issued_at, expires_at FROM admin_sessions WHERE id = $1`
	s := &models.AdminSession{}
	err := r.db.QueryRow(query, id).Scan(&s.ID, &s.Username, &s.IssuedAt, &s.ExpiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("session %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get admin session: %w", err)
	}
	return s, nil
}

// Delete removes a session unconditionally; a missing row is not an error.
func (r *SessionRepository) Delete(id uuid.UUID) error {
	_, err := r.db.Exec(`DELETE FROM admin_sessions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete admin session: %w", err)
	}
	return nil
}

// DeleteExpired sweeps sessions past their expiry. There is no background
// eviction; callers run this opportunistically.
func (r *SessionRepository) DeleteExpired(before time.Time) error {
	_, err := r.db.Exec(`DELETE FROM admin_sessions WHERE expires_at < $1`, before)
	if err != nil {
		return fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return nil
}
