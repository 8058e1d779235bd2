package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
	"github.com/lajospolya/popular-vote/internal/logging"
	"github.com/lajospolya/popular-vote/internal/migrations"
	"github.com/lajospolya/popular-vote/internal/migrations/seed"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const programName = "popular-vote-migrate"

var databaseURL string

// withDB opens a database/sql handle for goose commands
func withDB(fn func(ctx context.Context, db *sql.DB) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if databaseURL == "" {
			return fmt.Errorf("database url is required (--database-url or DATABASE_URL)")
		}
		db, err := migrations.Open(databaseURL)
		if err != nil {
			return err
		}
		defer db.Close()
		return fn(cmd.Context(), db)
	}
}

func upCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: withDB(func(ctx context.Context, db *sql.DB) error {
			if err := migrations.Up(ctx, db); err != nil {
				return err
			}
			logging.Logger.Info("migrations applied")
			return nil
		}),
	}
}

func downCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migration",
		RunE: withDB(func(ctx context.Context, db *sql.DB) error {
			if err := migrations.Down(ctx, db); err != nil {
				return err
			}
			logging.Logger.Info("migration rolled back")
			return nil
		}),
	}
}

func statusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print the state of every migration",
		RunE:  withDB(migrations.Status),
	}
}

func versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		RunE: withDB(func(ctx context.Context, db *sql.DB) error {
			version, err := migrations.Version(ctx, db)
			if err != nil {
				return err
			}
			fmt.Println(version)
			return nil
		}),
	}
}

func seedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the reference geography (idempotent)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if databaseURL == "" {
				return fmt.Errorf("database url is required (--database-url or DATABASE_URL)")
			}
			geo, err := seed.Load()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()

			conn, err := pgx.Connect(ctx, databaseURL)
			if err != nil {
				return fmt.Errorf("failed to connect: %w", err)
			}
			defer conn.Close(context.Background())

			if err := seed.Apply(ctx, conn, geo); err != nil {
				return err
			}
			logging.Logger.Info("geography seeded", zap.Int("provinces", len(geo.Provinces)))
			return nil
		},
	}
}

func main() {
	if err := logging.InitLogger(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logging.Logger.Sync() }()

	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:           programName,
		Short:         "Manage the Popular Vote database schema",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&databaseURL, "database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
	rootCmd.AddCommand(upCommand(), downCommand(), statusCommand(), versionCommand(), seedCommand())

	if err := rootCmd.Execute(); err != nil {
		logging.Logger.Error("command failed", zap.Error(err))
		os.Exit(1)
	}
}
