package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/pressly/goose/v3"
	"github.com/pressly/goose/v3/database"
	"github.com/spf13/cobra"

	"github.com/frahmantamala/budget-tracker/db/migrations"
)

const migrationTable = "schema_migrations"

var (
	migrateCmd = &cobra.Command{
		RunE:  runMigration,
		Use:   "migrate",
		Short: "to run the embedded db migrations",
	}
	migrateRollback bool
	migrateStatus   bool
)

func init() {
	migrateCmd.Flags().BoolVarP(&migrateRollback, "rollback", "r", false, "to rollback the latest version of sql migration")
	migrateCmd.Flags().BoolVar(&migrateStatus, "status", false, "to print the applied and pending migrations")
}

// newMigrationProvider binds the embedded migrations to db. The server reuses
// it to report schema drift from /health.
func newMigrationProvider(db *sql.DB) (*goose.Provider, error) {
	store, err := database.NewStore(goose.DialectPostgres, migrationTable)
	if err != nil {
		return nil, err
	}
	return goose.NewProvider("", db, migrations.FS, goose.WithStore(store))
}

func runMigration(_ *cobra.Command, _ []string) error {
	ctx := context.Background()
	cfg, err := loadConfig(configPath)
	if err != nil {
		log.Fatal(err)
	}

	db, err := sql.Open("pgx", cfg.Database.Source)
	if err != nil {
		log.Fatalf("goose: failed to open DB: %v\n", err)
	}
	defer db.Close()

	provider, err := newMigrationProvider(db)
	if err != nil {
		log.Fatalf("goose: %v", err)
	}

	switch {
	case migrateStatus:
		statuses, err := provider.Status(ctx)
		if err != nil {
			log.Fatalf("goose: %v", err)
		}
		for _, s := range statuses {
			applied := "-"
			if !s.AppliedAt.IsZero() {
				applied = s.AppliedAt.Format("2006-01-02 15:04:05")
			}
			fmt.Printf("%-10s %-20s %s\n", s.State, applied, s.Source.Path)
		}
	case migrateRollback:
		res, err := provider.Down(ctx)
		if err != nil {
			log.Fatalf("goose: %v", err)
		}
		fmt.Println(res)
	default:
		results, err := provider.Up(ctx)
		if err != nil {
			log.Fatalf("goose: %v", err)
		}
		for _, r := range results {
			fmt.Println(r)
		}
		if len(results) == 0 {
			fmt.Println("no migrations to apply")
		}
	}

	return nil
}
