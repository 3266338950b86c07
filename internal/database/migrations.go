package database

import (
	"database/sql"
	"fmt"
	"sort"
)

// Migration represents a database migration
type Migration struct {
	Version int
	Up      string
	Down    string
}

// Migrations contains all database migrations
var Migrations = []Migration{
	{
		Version: 1,
		Up: `
			CREATE EXTENSION IF NOT EXISTS "uuid-ossp";

			CREATE TABLE IF NOT EXISTS videos (
				id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
				name VARCHAR(255) NOT NULL,
				content BYTEA,
				content_type VARCHAR(100) NOT NULL DEFAULT 'video/mp4',
				size_bytes BIGINT NOT NULL DEFAULT 0,
				source_url TEXT,
				duration_seconds INT NOT NULL DEFAULT 0,
				plan_minutes INT NOT NULL,
				price NUMERIC(10,2) NOT NULL DEFAULT 0,
				views INT NOT NULL DEFAULT 0,
				active BOOLEAN NOT NULL DEFAULT TRUE,
				upload_date TIMESTAMP NOT NULL DEFAULT NOW()
			);

			CREATE INDEX IF NOT EXISTS idx_videos_plan_active ON videos(plan_minutes, active);
		`,
		Down: `
			DROP TABLE IF EXISTS videos;
		`,
	},
	{
		Version: 2,
		Up: `
			CREATE TABLE IF NOT EXISTS call_sessions (
				id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
				video_id UUID NOT NULL REFERENCES videos(id) ON DELETE CASCADE,
				start_time TIMESTAMP NOT NULL DEFAULT NOW(),
				end_time TIMESTAMP,
				revenue NUMERIC(10,2) NOT NULL DEFAULT 0,
				completed BOOLEAN NOT NULL DEFAULT FALSE
			);

			CREATE INDEX IF NOT EXISTS idx_call_sessions_completed ON call_sessions(completed);
			CREATE INDEX IF NOT EXISTS idx_call_sessions_video ON call_sessions(video_id);
		`,
		Down: `
			DROP TABLE IF EXISTS call_sessions;
		`,
	},
	{
		Version: 3,
		Up: `
			CREATE TABLE IF NOT EXISTS admin_sessions (
				id UUID PRIMARY KEY,
				username VARCHAR(255) NOT NULL,
				issued_at TIMESTAMP NOT NULL DEFAULT NOW(),
				expires_at TIMESTAMP NOT NULL
			);

			CREATE INDEX IF NOT EXISTS idx_admin_sessions_expires ON admin_sessions(expires_at);
		`,
		Down: `
			DROP TABLE IF EXISTS admin_sessions;
		`,
	},
}

// RunMigrations runs all pending migrations
func RunMigrations(db *sql.DB) error {
	// Ensure migrations table exists
	if err := ensureMigrationsTable(db); err != nil {
		return err
	}

	// Get current version
	currentVersion, err := getCurrentVersion(db)
	if err != nil {
		return err
	}

	// Run pending migrations in ascending order by version
	sorted := make([]Migration, len(Migrations))
	copy(sorted, Migrations)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Version < sorted[j].Version })

	for _, migration := range sorted {
		if migration.Version <= currentVersion {
			continue
		}

		fmt.Printf("Running migration %d...\n", migration.Version)

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}

		if _, err := tx.Exec(migration.Up); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to run migration %d: %w", migration.Version, err)
		}

		if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES ($1)", migration.Version); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
		}

		fmt.Printf("Migration %d completed\n", migration.Version)
	}

	return nil
}

func ensureMigrationsTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INT PRIMARY KEY,
			applied_at TIMESTAMP NOT NULL DEFAULT NOW()
		)
	`)
	return err
}

func getCurrentVersion(db *sql.DB) (int, error) {
	var version int
	err := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&version)
	if err != nil {
		return 0, err
	}
	return version, nil
}
