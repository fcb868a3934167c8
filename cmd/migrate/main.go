package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/angelmondragon/shopzone-backend/pkg/config"
	"github.com/angelmondragon/shopzone-backend/pkg/db"
	"github.com/angelmondragon/shopzone-backend/pkg/logger"
	"github.com/angelmondragon/shopzone-backend/pkg/migrate"
)

// Schema management for the ShopZone database. create and validate operate on
// the migration files alone; every other command needs a reachable Postgres.
func main() {
	var (
		cmd  = flag.String("cmd", "up", "one of: up, down, status, to, create, validate")
		dir  = flag.String("dir", migrate.MigrationsDir, "directory holding the goose SQL files")
		name = flag.String("name", "", "slug for the new migration (create only)")
		to   = flag.String("to", "", "target schema version for -cmd=to")
	)
	flag.Parse()

	_ = godotenv.Load()

	if err := run(context.Background(), *cmd, *dir, *name, *to); err != nil {
		fmt.Fprintln(os.Stderr, "migrate:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd, dir, name, to string) error {
	switch cmd {
	case "create":
		if name == "" {
			return errors.New("create needs -name")
		}
		path, err := migrate.CreateSQLMigration(dir, name)
		if err != nil {
			return err
		}
		fmt.Println("created", path)
		return nil

	case "validate":
		if err := migrate.ValidateDir(dir); err != nil {
			return err
		}
		fmt.Println("migrations look good")
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logg := logger.New(logger.Options{
		ServiceName: "shopzone-migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})
	ctx = logg.WithFields(ctx, map[string]any{"cmd": cmd, "dir": dir, "env": cfg.App.Env})

	client, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer client.Close()

	conn, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("unwrap sql handle: %w", err)
	}

	switch cmd {
	case "up", "down", "status":
		return migrate.Apply(ctx, conn, dir, cmd)

	case "to":
		target, err := migrate.ParseVersion(to)
		if err != nil {
			return err
		}
		return migrate.SyncTo(ctx, conn, dir, target)

	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}
