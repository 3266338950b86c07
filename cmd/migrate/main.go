package main

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/lib/pq"
	"github.com/spf13/cobra"

	"github.com/callstream/backend/config"
	"github.com/callstream/backend/internal/database"
)

var rootCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Database migrations and seed data for the callstream backend",
	RunE:  runUp, // default: run pending migrations (same as "migrate up")
}

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE:  runUp,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show applied migrations",
	RunE:  runStatus,
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Run migrations, then insert the default video catalog",
	RunE:  runSeed,
}

func init() {
	rootCmd.AddCommand(upCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(seedCmd)
}

func openDB() (*sql.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	db, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}
	return db, nil
}

func runUp(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	log.Println("Running migrations...")
	if err := database.RunMigrations(db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	log.Println("Migrations completed successfully")
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	rows, err := db.Query("SELECT version, applied_at FROM schema_migrations ORDER BY version")
	if err != nil {
		return fmt.Errorf("no migrations found or table doesn't exist: %w", err)
	}
	defer rows.Close()

	fmt.Println("\nApplied Migrations:")
	fmt.Println("-------------------")
	for rows.Next() {
		var version int
		var appliedAt string
		if err := rows.Scan(&version, &appliedAt); err != nil {
			log.Printf("Error scanning row: %v", err)
			continue
		}
		fmt.Printf("Version %d - Applied at: %s\n", version, appliedAt)
	}
	return rows.Err()
}

func runSeed(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.RunMigrations(db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	if err := database.SeedDefaultVideos(db); err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	log.Println("Seed completed successfully")
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
