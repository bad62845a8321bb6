package core

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type LogLevel int

const (
	LogLevelSilent LogLevel = iota + 1
	LogLevelError
	LogLevelWarn
	LogLevelInfo
)

func ParseLogLevel(s string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "silent":
		return LogLevelSilent
	case "error":
		return LogLevelError
	case "warn":
		return LogLevelWarn
	default:
		return LogLevelInfo
	}
}

func (l LogLevel) gorm() logger.LogLevel {
	switch l {
	case LogLevelError:
		return logger.Error
	case LogLevelWarn:
		return logger.Warn
	case LogLevelSilent:
		return logger.Silent
	default:
		return logger.Info
	}
}

// DatabaseManager hands out tenant databases. In pooled mode (MySQL) every
// tenant is a schema on one server; in shared mode every tenant uses the same
// *gorm.DB.
type DatabaseManager struct {
	SqlDB    *sql.DB
	LogLevel LogLevel

	// DefaultSchema is used for "localhost" and empty tenant names.
	DefaultSchema string

	shared *gorm.DB
}

// New creates the global pool (e.g. 30 conns).
// dsn should NOT include schema (just host/user/pass).
func New(dsn string, maxConnection int) (*DatabaseManager, error) {
	sqlDB, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open pool: %w", err)
	}

	sqlDB.SetMaxOpenConns(maxConnection)
	sqlDB.SetMaxIdleConns(maxConnection)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping pool: %w", err)
	}

	return &DatabaseManager{SqlDB: sqlDB}, nil
}

// NewShared wraps a single database used for every tenant.
func NewShared(db *gorm.DB) *DatabaseManager {
	return &DatabaseManager{shared: db}
}

// SchemaFor maps a request host to a schema name,
// e.g. "acme.backoffice.net" -> "acme".
func (dm *DatabaseManager) SchemaFor(host string) string {
	if host == "" || host == "localhost" {
		return dm.DefaultSchema
	}
	parts := strings.Split(host, ".")
	return parts[0]
}

// GetDB gets a *gorm.DB bound to a single connection
// and sets the schema with `USE schema`.
func (dm *DatabaseManager) GetDB(ctx context.Context, host string) (*gorm.DB, *sql.Conn, error) {
	if dm.shared != nil {
		return nil, nil, fmt.Errorf("GetDB is not available on a shared database")
	}
	schema := dm.SchemaFor(host)
	if schema == "" {
		return nil, nil, fmt.Errorf("no schema for host %q", host)
	}

	// Get a dedicated connection from pool
	conn, err := dm.SqlDB.Conn(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get conn: %w", err)
	}

	// Switch schema
	if _, err := conn.ExecContext(ctx, "USE `"+schema+"`"); err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("failed to use schema %s: %w", schema, err)
	}

	// Wrap this single connection into GORM
	dialector := mysql.New(mysql.Config{
		Conn: conn, // lock GORM to this connection
	})

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(dm.LogLevel.gorm()),
	})
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("failed to open gorm: %w", err)
	}

	return db.WithContext(ctx), conn, nil
}

// Close closes the global pool
func (dm *DatabaseManager) Close() error {
	if dm.shared != nil {
		sqlDB, err := dm.shared.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}
	return dm.SqlDB.Close()
}

// Exec runs fn against the tenant database for host and releases the
// connection afterwards.
func (dm *DatabaseManager) Exec(ctx context.Context, host string, fn func(db *gorm.DB) error) error {
	if dm.shared != nil {
		return fn(dm.shared.WithContext(ctx))
	}

	db, conn, err := dm.GetDB(ctx, host)
	if err != nil {
		return err
	}
	defer conn.Close()

	return fn(db)
}

// Tenants lists every tenant the manager can serve.
func (dm *DatabaseManager) Tenants(ctx context.Context) ([]string, error) {
	if dm.shared != nil {
		return []string{dm.DefaultSchema}, nil
	}

	rows, err := dm.SqlDB.QueryContext(ctx, "SHOW DATABASES")
	if err != nil {
		return nil, fmt.Errorf("failed to query databases: %w", err)
	}
	defer rows.Close()

	var databases []string
	for rows.Next() {
		var db string
		if err := rows.Scan(&db); err != nil {
			return nil, fmt.Errorf("failed to scan database name: %w", err)
		}

		// Filter out system databases
		switch db {
		case "information_schema", "mysql", "performance_schema", "sys":
			continue
		}
		databases = append(databases, db)
	}

	return databases, rows.Err()
}
