package database

import (
	"database/sql"
	"fmt"
)

type seedVideo struct {
	name        string
	sourceURL   string
	planMinutes int
	price       float64
}

// Default catalog entries, one per plan duration. They reference external
// URLs and carry no payload.
var seedVideos = []seedVideo{
	{name: "Intro Call - 5 min", sourceURL: "https://cdn.example.com/video5min.mp4", planMinutes: 5, price: 60},
	{name: "Full Experience - 10 min", sourceURL: "https://cdn.example.com/video10min.mp4", planMinutes: 10, price: 100},
	{name: "Exclusive Call - 15 min", sourceURL: "https://cdn.example.com/video15min.mp4", planMinutes: 15, price: 150},
}

// SeedDefaultVideos inserts the default catalog videos when the table is
// empty. Running it twice is a no-op.
func SeedDefaultVideos(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM videos").Scan(&count); err != nil {
		return fmt.Errorf("failed to count videos: %w", err)
	}
	if count > 0 {
		return nil
	}

	for _, v := range seedVideos {
		_, err := db.Exec(`
			INSERT INTO videos (name, source_url, duration_seconds, plan_minutes, price, views, active)
			VALUES ($1, $2, $3, $4, $5, 0, TRUE)
		`, v.name, v.sourceURL, v.planMinutes*60, v.planMinutes, v.price)
		if err != nil {
			return fmt.Errorf("failed to seed video %q: %w", v.name, err)
		}
		fmt.Printf("Seeded video %q\n", v.name)
	}
	return nil
}
