package models

import (
	"time"

	"github.com/google/uuid"
)

type CallSession struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	VideoID   uuid.UUID  `json:"video_id" db:"video_id"`
	StartTime time.Time  `json:"start_time" db:"start_time"`
	EndTime   *time.Time `json:"end_time,omitempty" db:"end_time"`
	Revenue   float64    `json:"revenue" db:"revenue"`
	Completed bool       `json:"completed" db:"completed"`
}

// DurationSeconds returns the real call length in seconds, or 0 for calls
// that have not completed.
func (c *CallSession) DurationSeconds() float64 {
	if c.EndTime == nil {
		return 0
	}
	return c.EndTime.Sub(c.StartTime).Seconds()
}

type StartCallRequest struct {
	Duration int `json:"duration" binding:"required"`
}

type StartCallResponse struct {
	Call  CallSession `json:"call"`
	Video Video       `json:"video"`
}
