package migrate

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/pressly/goose/v3"
)

// MigrationsDir is where the goose SQL files live, relative to the repo root.
const MigrationsDir = "pkg/migrate/migrations"

// ParseVersion parses a goose timestamp version such as 20260115100000.
func ParseVersion(raw string) (int64, error) {
	if raw == "" {
		return 0, fmt.Errorf("version is required")
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("version %q is not a goose timestamp: %w", raw, err)
	}
	return v, nil
}

// Apply runs a plain goose command (up, down, status) against the database.
func Apply(ctx context.Context, conn *sql.DB, dir, command string) error {
	if conn == nil {
		return fmt.Errorf("database handle is required")
	}
	if dir == "" {
		return fmt.Errorf("migrations directory is required")
	}
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}
	if err := goose.RunContext(ctx, command, conn, dir); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	return nil
}

// SyncTo moves the schema to exactly the target version, in whichever
// direction the current version requires. Already at the target is a no-op.
func SyncTo(ctx context.Context, conn *sql.DB, dir string, target int64) error {
	if conn == nil {
		return fmt.Errorf("database handle is required")
	}
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}

	current, err := goose.GetDBVersion(conn)
	if err != nil {
		return fmt.Errorf("read current version: %w", err)
	}

	switch {
	case current == target:
		return nil
	case current < target:
		if err := goose.UpToContext(ctx, conn, dir, target); err != nil {
			return fmt.Errorf("up to %d: %w", target, err)
		}
	default:
		if err := goose.DownToContext(ctx, conn, dir, target); err != nil {
			return fmt.Errorf("down to %d: %w", target, err)
		}
	}
	return nil
}
