package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"time"

	_ "github.com/lib/pq"

	"github.com/BradenHooton/inkwell/internal/config"
	"github.com/BradenHooton/inkwell/internal/database"
)

const usage = "usage: migrate up|down|status"

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	sqlDB, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		logger.Error("failed to open database", slog.Any("error", err))
		os.Exit(1)
	}
	defer sqlDB.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := run(ctx, sqlDB, os.Args[1]); err != nil {
		logger.Error("migration failed", slog.String("command", os.Args[1]), slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, sqlDB *sql.DB, command string) error {
	switch command {
	case "up":
		return database.MigrateUp(ctx, sqlDB)
	case "down":
		return database.MigrateDown(ctx, sqlDB)
	case "status":
		return database.MigrationStatus(ctx, sqlDB)
	default:
		return fmt.Errorf("unknown command %q: %s", command, usage)
	}
}
