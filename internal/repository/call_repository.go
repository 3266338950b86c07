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

type CallRepository struct {
	db *database.DB
}

func NewCallRepository(db *database.DB) *CallRepository {
	return &CallRepository{db: db}
}

func (r *CallRepository) Create(c *models.CallSession) error {
	query := `
        INSERT INTO call_sessions (id, video_id, start_time, end_time, revenue, completed)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, start_time
    `
	err := r.db.QueryRow(query,
		c.ID,
		c.VideoID,
		c.StartTime,
		c.EndTime,
		c.Revenue,
		c.Completed,
	).Scan(&c.ID, &c.StartTime)
	if err != nil {
		return fmt.Errorf("failed to create call session: %w", err)
	}
	return nil
}

func (r *CallRepository) GetByID(id uuid.UUID) (*models.CallSession, error) {
	query := `
        SELECT id, video_id, start_time, end_time, revenue, completed
        FROM call_sessions WHERE id = $1
    `
	c := &models.CallSession{}
	err := r.db.QueryRow(query, id).Scan(
		&c.ID,
		&c.VideoID,
		&c.StartTime,
		&c.EndTime,
		&c.Revenue,
		&c.Completed,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("call %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get call session: %w", err)
	}
	return c, nil
}

// Complete marks a call finished exactly once. Completing an already
// completed call reports false and changes nothing.
func (r *CallRepository) Complete(id uuid.UUID, endedAt time.Time) (bool, error) {
	res, err := r.db.Exec(
		`UPDATE call_sessions SET end_time = $1, completed = TRUE WHERE id = $2 AND NOT completed`,
		endedAt, id,
	)
	if err != nil {
		return false, fmt.Errorf("failed to complete call session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read complete result: %w", err)
	}
	return n > 0, nil
}

func (r *CallRepository) ListCompleted() ([]models.CallSession, error) {
	query := `
        SELECT id, video_id, start_time, end_time, revenue, completed
        FROM call_sessions WHERE completed ORDER BY start_time DESC
    `
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list call sessions: %w", err)
	}
	defer rows.Close()

	var out []models.CallSession
	for rows.Next() {
		var c models.CallSession
		if err := rows.Scan(&c.ID, &c.VideoID, &c.StartTime, &c.EndTime, &c.Revenue, &c.Completed); err != nil {
			return nil, fmt.Errorf("failed to scan call session: %w", err)
		}
		out = append(out, c)
	}
	return out, nil
}
