package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks values cleanenv cannot express as tags.
func (c *Config) Validate() error {
	var errs []error

	switch c.Database.Driver {
	case "mysql":
		if c.Database.DSN == "" && c.Database.SSMParameter == "" {
			errs = append(errs, errors.New("database: dsn or ssm_parameter is required for mysql"))
		}
	case "sqlite":
		if c.Database.DSN == "" {
			errs = append(errs, errors.New("database: dsn is required for sqlite"))
		}
	default:
		errs = append(errs, fmt.Errorf("database: unsupported driver %q", c.Database.Driver))
	}

	if c.Database.MaxConns <= 0 {
		errs = append(errs, errors.New("database: max_conns must be positive"))
	}

	if _, err := c.Attendance.Location(); err != nil {
		errs = append(errs, fmt.Errorf("attendance: timezone: %w", err))
	}

	switch strings.ToLower(c.Log.Format) {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("log: format must be json or text, got %q", c.Log.Format))
	}

	return errors.Join(errs...)
}
