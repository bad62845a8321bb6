package core

import (
	"context"
	"fmt"

	"axiapac.com/backoffice/config"
	"axiapac.com/backoffice/infrastructure/devops"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ResolveDSN returns the configured DSN, or builds one from the SSM
// database list when only an SSM parameter is configured.
func ResolveDSN(ctx context.Context, cfg config.DatabaseConfig) (string, error) {
	if cfg.DSN != "" || cfg.SSMParameter == "" {
		return cfg.DSN, nil
	}

	entries, err := devops.LoadDBConfig(ctx, cfg.SSMParameter)
	if err != nil {
		return "", err
	}
	entry, ok := devops.FindEntry(entries, cfg.SSMEntry)
	if !ok {
		return "", fmt.Errorf("database entry %q not found in parameter %s", cfg.SSMEntry, cfg.SSMParameter)
	}
	// schema is selected per request, the pool connects without one
	return entry.GetDSN(""), nil
}

// Open builds the DatabaseManager for the configured driver.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*DatabaseManager, error) {
	level := ParseLogLevel(cfg.LogLevel)

	switch cfg.Driver {
	case "sqlite":
		db, err := OpenSQLite(cfg.DSN, level)
		if err != nil {
			return nil, err
		}
		return NewShared(db), nil
	case "mysql":
		dsn, err := ResolveDSN(ctx, cfg)
		if err != nil {
			return nil, err
		}
		dm, err := New(dsn, cfg.MaxConns)
		if err != nil {
			return nil, err
		}
		dm.LogLevel = level
		dm.DefaultSchema = cfg.Schema
		return dm, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// OpenSQLite opens a single-connection SQLite database. One connection keeps
// ":memory:" databases alive and serializes writers.
func OpenSQLite(dsn string, level LogLevel) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(level.gorm()),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	return db, nil
}
