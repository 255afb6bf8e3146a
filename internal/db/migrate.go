package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// MigrationLogger 与 goose.Logger 相同，方便上层传入 zap 适配器。
type MigrationLogger = goose.Logger

func migrate(ctx context.Context, sqlDB *sql.DB, l MigrationLogger) error {
	sub, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}

	opts := []goose.ProviderOption{}
	if l != nil {
		opts = append(opts, goose.WithLogger(l), goose.WithVerbose(true))
	}

	provider, err := goose.NewProvider(goose.DialectSQLite3, sqlDB, sub, opts...)
	if err != nil {
		return fmt.Errorf("goose provider: %w", err)
	}

	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}
