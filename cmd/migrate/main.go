package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/cardsite/backend/internal/config"
	"github.com/cardsite/backend/internal/logging"
	"github.com/cardsite/backend/internal/repository"
	"github.com/joho/godotenv"
)

func usage() {
	fmt.Fprintln(os.Stderr, `Usage: migrate [command]

Commands:
  (default)   apply pending migrations
  status      list migrations and whether they are applied
  reset       drop every table and recreate from the consolidated schema
  fresh       drop every table and apply all migrations in order`)
	os.Exit(1)
}

func main() {
	_ = godotenv.Load()
	_ = godotenv.Load("../.env")

	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		logging.Setup("ERROR", "json")
		logging.Fatal("failed to load config", "error", err)
	}
	logging.Setup(cfg.LogLevel, cfg.LogFormat)

	if !cfg.DatabaseEnabled() {
		logging.Fatal("DATABASE_URL is not set; the analytics mirror has no database to migrate")
	}

	ctx := context.Background()
	pool, err := repository.NewPool(ctx, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		logging.Fatal("connect failed", "error", err)
	}
	defer pool.Close()

	m := &migrator{db: pool, dir: findMigrationDir()}

	cmd := ""
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	switch cmd {
	case "":
		err = m.incremental(ctx)
	case "status":
		err = m.status(ctx, os.Stdout)
	case "reset":
		if err = m.dropAll(ctx); err == nil {
			err = m.consolidated(ctx)
		}
	case "fresh":
		if err = m.dropAll(ctx); err == nil {
			err = m.incremental(ctx)
		}
	default:
		usage()
	}
	if err != nil {
		pool.Close()
		logging.Fatal("migrate failed", "command", cmd, "error", err)
	}
	slog.Info("migrate finished", "command", cmd)
}

func findMigrationDir() string {
	dir := "migrations"
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		dir = "../migrations"
	}
	return dir
}
