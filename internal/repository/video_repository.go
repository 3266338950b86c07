package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/callstream/backend/internal/database"
	"github.com/callstream/backend/internal/models"
)

type VideoRepository struct {
	db *database.DB
}

func NewVideoRepository(db *database.DB) *VideoRepository {
	return &VideoRepository{db: db}
}

// Create inserts a video and deactivates any prior active video in the same
// plan bucket, so the new upload replaces it in catalog lookups.
func (r *VideoRepository) Create(v *models.Video, content []byte) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if v.Active {
		if _, err := tx.Exec(
			`UPDATE videos SET active = FALSE WHERE plan_minutes = $1 AND active`,
			v.PlanMinutes,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to deactivate prior videos: %w", err)
		}
	}

	query := `
        INSERT INTO videos (id, name, content, content_type, size_bytes, source_url, duration_seconds, plan_minutes, price, views, active, upload_date)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
        RETURNING id, upload_date
    `
	err = tx.QueryRow(query,
		v.ID,
		v.Name,
		content,
		v.ContentType,
		v.SizeBytes,
		v.SourceURL,
		v.DurationSeconds,
		v.PlanMinutes,
		v.Price,
		v.Views,
		v.Active,
		v.UploadDate,
	).Scan(&v.ID, &v.UploadDate)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to create video: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit video: %w", err)
	}
	return nil
}

const videoColumns = `id, name, content_type, size_bytes, source_url, duration_seconds, plan_minutes, price, views, active, upload_date`

func scanVideo(row interface{ Scan(...interface{}) error }) (*models.Video, error) {
	v := &models.Video{}
	err := row.Scan(
		&v.ID,
		&v.Name,
		&v.ContentType,
		&v.SizeBytes,
		&v.SourceURL,
		&v.DurationSeconds,
		&v.PlanMinutes,
		&v.Price,
		&v.Views,
		&v.Active,
		&v.UploadDate,
	)
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (r *VideoRepository) GetByID(id uuid.UUID) (*models.Video, error) {
	query := `SELECT ` + videoColumns + ` FROM videos WHERE id = $1`
	v, err := scanVideo(r.db.QueryRow(query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("video %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get video: %w", err)
	}
	return v, nil
}

// GetContent returns the stored payload and its media type. The payload is
// kept out of every other query so listings stay cheap.
func (r *VideoRepository) GetContent(id uuid.UUID) ([]byte, string, error) {
	var content []byte
	var contentType string
	err := r.db.QueryRow(`SELECT content, content_type FROM videos WHERE id = $1`, id).
		Scan(&content, &contentType)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", fmt.Errorf("video %s: %w", id, ErrNotFound)
		}
		return nil, "", fmt.Errorf("failed to get video content: %w", err)
	}
	return content, contentType, nil
}

func (r *VideoRepository) List() ([]models.Video, error) {
	query := `SELECT ` + videoColumns + ` FROM videos ORDER BY upload_date DESC`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list videos: %w", err)
	}
	defer rows.Close()

	var out []models.Video
	for rows.Next() {
		v, err := scanVideo(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan video: %w", err)
		}
		out = append(out, *v)
	}
	return out, nil
}

// GetActiveByDuration returns the most recently uploaded active video for a
// plan bucket. Uniqueness is not enforced by the schema; last write wins.
func (r *VideoRepository) GetActiveByDuration(minutes int) (*models.Video, error) {
	query := `
        SELECT ` + videoColumns + `
        FROM videos WHERE plan_minutes = $1 AND active
        ORDER BY upload_date DESC LIMIT 1
    `
	v, err := scanVideo(r.db.QueryRow(query, minutes))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("no active video for %d minutes: %w", minutes, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get active video: %w", err)
	}
	return v, nil
}

func (r *VideoRepository) IncrementViews(id uuid.UUID) error {
	_, err := r.db.Exec(`UPDATE videos SET views = views + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to increment views: %w", err)
	}
	return nil
}

// ToggleActive flips the active flag and returns the new value.
func (r *VideoRepository) ToggleActive(id uuid.UUID) (bool, error) {
	var active bool
	err := r.db.QueryRow(
		`UPDATE videos SET active = NOT active WHERE id = $1 RETURNING active`,
		id,
	).Scan(&active)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, fmt.Errorf("video %s: %w", id, ErrNotFound)
		}
		return false, fmt.Errorf("failed to toggle video: %w", err)
	}
	return active, nil
}

func (r *VideoRepository) UpdatePrice(id uuid.UUID, price float64) error {
	res, err := r.db.Exec(`UPDATE videos SET price = $1 WHERE id = $2`, price, id)
	if err != nil {
		return fmt.Errorf("failed to update price: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("video %s: %w", id, ErrNotFound)
	}
	return nil
}

// Delete removes the row and its payload. Deleting an absent id is a no-op;
// the bool reports whether a row was actually removed.
func (r *VideoRepository) Delete(id uuid.UUID) (bool, error) {
	res, err := r.db.Exec(`DELETE FROM videos WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete video: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read delete result: %w", err)
	}
	return n > 0, nil
}
