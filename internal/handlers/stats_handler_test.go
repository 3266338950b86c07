package handlers

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/callstream/backend/internal/models"
)

func TestGetStats_AggregatesCompletedCalls(t *testing.T) {
	gin.SetMode(gin.TestMode)

	videos := newFakeVideoStore()
	videoID := uuid.New()
	videos.Create(&models.Video{
		ID:              videoID,
		Name:            "five",
		ContentType:     "video/mp4",
		DurationSeconds: 300,
		PlanMinutes:     5,
		Price:           60,
		Views:           4,
		Active:          true,
		UploadDate:      time.Now(),
	}, nil)

	calls := newFakeCallStore()
	start := time.Now().Add(-10 * time.Minute)
	done := calls.Create(&models.CallSession{
		ID:        uuid.New(),
		VideoID:   videoID,
		StartTime: start,
		Revenue:   2.50,
	})
	if done != nil {
		t.Fatalf("seeding call: %v", done)
	}
	for id := range calls.calls {
		if _, err := calls.Complete(id, start.Add(300*time.Second)); err != nil {
			t.Fatalf("completing call: %v", err)
		}
	}
	// An open call must not count
	calls.Create(&models.CallSession{
		ID:        uuid.New(),
		VideoID:   videoID,
		StartTime: time.Now(),
		Revenue:   5,
	})

	h := NewStatsHandler(videos, calls)
	r := gin.New()
	r.GET("/stats", h.GetStats)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/stats", nil)
	r.ServeHTTP(rr, req)

	if rr.Code != 200 {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}

	var got models.AdminStats
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if got.TotalVideos != 1 || got.ActiveVideos != 1 {
		t.Fatalf("unexpected video counts: %+v", got)
	}
	if got.TotalViews != 4 {
		t.Fatalf("expected 4 views, got %d", got.TotalViews)
	}
	if got.TotalCalls != 1 {
		t.Fatalf("expected 1 completed call, got %d", got.TotalCalls)
	}
	if got.TotalRevenue != 2.50 {
		t.Fatalf("expected revenue 2.50, got %v", got.TotalRevenue)
	}
	if got.AverageCallDuration != 300 {
		t.Fatalf("expected average duration 300s, got %v", got.AverageCallDuration)
	}
}
