// Package stats aggregates the video registry and call log into the admin
// dashboard figures. Everything here is pure arithmetic over the persisted
// records.
package stats

import (
	"math"

	"github.com/callstream/backend/internal/models"
)

// DefaultRatePerMinute is the billing rate applied when none is configured.
const DefaultRatePerMinute = 0.50

// Revenue computes the charge for a call of the given real duration:
// started minutes are billed in full.
func Revenue(durationSeconds float64, ratePerMinute float64) float64 {
	if durationSeconds <= 0 {
		return 0
	}
	minutes := math.Ceil(durationSeconds / 60)
	return minutes * ratePerMinute
}

// Compute aggregates dashboard statistics. Only completed sessions count
// toward revenue, call totals and the average duration. Empty input yields
// all zeros.
func Compute(videos []models.Video, sessions []models.CallSession) models.AdminStats {
	out := models.AdminStats{
		TotalVideos: len(videos),
	}

	for _, v := range videos {
		out.TotalViews += v.Views
		if v.Active {
			out.ActiveVideos++
		}
	}

	var totalDuration float64
	for _, s := range sessions {
		if !s.Completed {
			continue
		}
		out.TotalCalls++
		out.TotalRevenue += s.Revenue
		totalDuration += s.DurationSeconds()
	}

	if out.TotalCalls > 0 {
		out.AverageCallDuration = totalDuration / float64(out.TotalCalls)
	}

	return out
}
