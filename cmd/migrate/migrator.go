package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// execer is the part of pgxpool.Pool the migrator uses.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type migrator struct {
	db  execer
	dir string
}

// upFiles は .up.sql ファイル名をソート済みで返す
func (m *migrator) upFiles() ([]string, error) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return nil, fmt.Errorf("read migrations dir: %w", err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".up.sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

func (m *migrator) ensureSchemaMigrations(ctx context.Context) error {
	_, err := m.db.Exec(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		name TEXT PRIMARY KEY,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`)
	return err
}

func (m *migrator) applied(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := m.db.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE name=$1)", name).Scan(&exists)
	return exists, err
}

func (m *migrator) execFile(ctx context.Context, filename string) error {
	sql, err := os.ReadFile(filepath.Join(m.dir, filename))
	if err != nil {
		return fmt.Errorf("read %s: %w", filename, err)
	}
	if _, err := m.db.Exec(ctx, string(sql)); err != nil {
		return fmt.Errorf("exec %s: %w", filename, err)
	}
	return nil
}

// incremental applies every .up.sql file not yet recorded in
// schema_migrations, in file name order.
func (m *migrator) incremental(ctx context.Context) error {
	if err := m.ensureSchemaMigrations(ctx); err != nil {
		return err
	}
	files, err := m.upFiles()
	if err != nil {
		return err
	}

	count := 0
	for _, filename := range files {
		name := strings.TrimSuffix(filename, ".up.sql")
		done, err := m.applied(ctx, name)
		if err != nil {
			return fmt.Errorf("check %s: %w", name, err)
		}
		if done {
			continue
		}
		if err := m.execFile(ctx, filename); err != nil {
			return err
		}
		if _, err := m.db.Exec(ctx, "INSERT INTO schema_migrations (name) VALUES ($1)", name); err != nil {
			return fmt.Errorf("record %s: %w", name, err)
		}
		count++
		slog.Info("migration completed", "migration", name)
	}

	if count == 0 {
		slog.Info("all migrations already applied")
	} else {
		slog.Info("migrations completed", "count", count)
	}
	return nil
}

func (m *migrator) status(ctx context.Context, w io.Writer) error {
	if err := m.ensureSchemaMigrations(ctx); err != nil {
		return err
	}
	files, err := m.upFiles()
	if err != nil {
		return err
	}
	for _, filename := range files {
		name := strings.TrimSuffix(filename, ".up.sql")
		done, err := m.applied(ctx, name)
		if err != nil {
			return err
		}
		mark := "pending"
		if done {
			mark = "applied"
		}
		fmt.Fprintf(w, "%-8s %s\n", mark, name)
	}
	return nil
}

func (m *migrator) dropAll(ctx context.Context) error {
	slog.Info("dropping all tables")
	return m.execFile(ctx, "000_drop_all.sql")
}

// consolidated は集約スキーマを適用し、全マイグレーションを適用済みとして記録する
func (m *migrator) consolidated(ctx context.Context) error {
	if err := m.execFile(ctx, "000_consolidated.sql"); err != nil {
		return err
	}
	if err := m.ensureSchemaMigrations(ctx); err != nil {
		return err
	}
	files, err := m.upFiles()
	if err != nil {
		return err
	}
	for _, filename := range files {
		name := strings.TrimSuffix(filename, ".up.sql")
		if _, err := m.db.Exec(ctx, "INSERT INTO schema_migrations (name) VALUES ($1) ON CONFLICT DO NOTHING", name); err != nil {
			return fmt.Errorf("record %s: %w", name, err)
		}
	}
	slog.Info("consolidated schema applied", "migrations_marked", len(files))
	return nil
}
