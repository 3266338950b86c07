package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PlanDurations are the fixed plan lengths, in minutes.
var PlanDurations = []int{5, 10, 15}

// DefaultPrices maps plan duration (minutes) to the default price in
// currency units.
var DefaultPrices = map[int]float64{
	5:  60,
	10: 100,
	15: 150,
}

// Uploads are limited to containers the duration probe understands.
var allowedContentTypes = map[string]bool{
	"video/mp4":  true,
	"video/webm": true,
}

type Video struct {
	ID              uuid.UUID `json:"id" db:"id"`
	Name            string    `json:"name" db:"name"`
	ContentType     string    `json:"content_type" db:"content_type"`
	SizeBytes       int64     `json:"size_bytes" db:"size_bytes"`
	SourceURL       *string   `json:"source_url,omitempty" db:"source_url"`
	DurationSeconds int       `json:"duration_seconds" db:"duration_seconds"`
	PlanMinutes     int       `json:"plan_minutes" db:"plan_minutes"`
	Price           float64   `json:"price" db:"price"`
	Views           int       `json:"views" db:"views"`
	Active          bool      `json:"active" db:"active"`
	UploadDate      time.Time `json:"upload_date" db:"upload_date"`
}

// Validate checks basic video fields
func (v *Video) Validate() error {
	if v.Name == "" {
		return fmt.Errorf("name is required")
	}
	if !IsPlanDuration(v.PlanMinutes) {
		return fmt.Errorf("plan duration must be one of 5, 10 or 15 minutes")
	}
	if v.DurationSeconds < 0 {
		return fmt.Errorf("duration must not be negative")
	}
	if v.Price < 0 {
		return fmt.Errorf("price must not be negative")
	}
	return nil
}

// IsPlanDuration reports whether minutes is one of the fixed plan lengths.
func IsPlanDuration(minutes int) bool {
	for _, d := range PlanDurations {
		if d == minutes {
			return true
		}
	}
	return false
}

// IsAllowedContentType reports whether the declared media type is accepted
// for upload.
func IsAllowedContentType(contentType string) bool {
	return allowedContentTypes[contentType]
}

type UpdatePriceRequest struct {
	Price float64 `json:"price" binding:"required,gte=0"`
}
