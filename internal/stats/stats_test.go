package stats

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/callstream/backend/internal/models"
)

func TestRevenue(t *testing.T) {
	tests := []struct {
		name            string
		durationSeconds float64
		rate            float64
		want            float64
	}{
		{
			name:            "125 seconds bills 3 started minutes",
			durationSeconds: 125,
			rate:            0.50,
			want:            1.50,
		},
		{
			name:            "Exact minute boundary",
			durationSeconds: 120,
			rate:            0.50,
			want:            1.00,
		},
		{
			name:            "One second bills a full minute",
			durationSeconds: 1,
			rate:            0.50,
			want:            0.50,
		},
		{
			name:            "Zero duration",
			durationSeconds: 0,
			rate:            0.50,
			want:            0,
		},
		{
			name:            "Negative duration",
			durationSeconds: -10,
			rate:            0.50,
			want:            0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Revenue(tt.durationSeconds, tt.rate); got != tt.want {
				t.Errorf("Revenue(%v, %v) = %v, want %v", tt.durationSeconds, tt.rate, got, tt.want)
			}
		})
	}
}

func TestCompute_Empty(t *testing.T) {
	got := Compute(nil, nil)

	if got.TotalVideos != 0 || got.ActiveVideos != 0 || got.TotalViews != 0 {
		t.Errorf("Expected zero video stats, got %+v", got)
	}
	if got.TotalRevenue != 0 || got.TotalCalls != 0 || got.AverageCallDuration != 0 {
		t.Errorf("Expected zero call stats, got %+v", got)
	}
}

func TestCompute(t *testing.T) {
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	end1 := start.Add(125 * time.Second)
	end2 := start.Add(300 * time.Second)

	videos := []models.Video{
		{ID: uuid.New(), Views: 3, Active: true},
		{ID: uuid.New(), Views: 7, Active: false},
	}
	sessions := []models.CallSession{
		{ID: uuid.New(), StartTime: start, EndTime: &end1, Revenue: 1.50, Completed: true},
		{ID: uuid.New(), StartTime: start, EndTime: &end2, Revenue: 2.50, Completed: true},
		// Incomplete sessions contribute nothing
		{ID: uuid.New(), StartTime: start, Revenue: 99, Completed: false},
	}

	got := Compute(videos, sessions)

	if got.TotalVideos != 2 {
		t.Errorf("TotalVideos = %d, want 2", got.TotalVideos)
	}
	if got.ActiveVideos != 1 {
		t.Errorf("ActiveVideos = %d, want 1", got.ActiveVideos)
	}
	if got.TotalViews != 10 {
		t.Errorf("TotalViews = %d, want 10", got.TotalViews)
	}
	if got.TotalCalls != 2 {
		t.Errorf("TotalCalls = %d, want 2", got.TotalCalls)
	}
	if got.TotalRevenue != 4.00 {
		t.Errorf("TotalRevenue = %v, want 4.00", got.TotalRevenue)
	}
	if got.AverageCallDuration != 212.5 {
		t.Errorf("AverageCallDuration = %v, want 212.5", got.AverageCallDuration)
	}
}
