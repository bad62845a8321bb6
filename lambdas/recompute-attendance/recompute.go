package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	attendance "axiapac.com/backoffice/attendance/core"
	"axiapac.com/backoffice/core"
	"axiapac.com/backoffice/infrastructure/communication"
	"axiapac.com/backoffice/utils"
	"gorm.io/gorm"
)

type RecomputeEvent struct {
	Date      string   `json:"date"`
	Databases []string `json:"databases"`
}

type RecomputeStats struct {
	Days  int    `json:"days"`
	Error string `json:"error,omitempty"`
}

// Normalize fills the defaults: yesterday in loc and trimmed database names.
func (e RecomputeEvent) Normalize(now time.Time, loc *time.Location) (RecomputeEvent, error) {
	if e.Date == "" {
		e.Date = utils.Yesterday(now, loc)
	}
	if _, err := utils.ParseDate(e.Date); err != nil {
		return e, err
	}
	e.Databases = utils.Map(e.Databases, strings.TrimSpace)
	e.Databases = utils.Filter(e.Databases, func(s string) bool { return s != "" })
	return e, nil
}

// RecomputeAttendance replays every tenant's days on event.Date. A failing
// tenant is reported and skipped.
func RecomputeAttendance(ctx context.Context, dm *core.DatabaseManager, notifier communication.Notifier, logger *slog.Logger, event RecomputeEvent) (map[string]RecomputeStats, error) {
	databases := event.Databases
	if len(databases) == 0 {
		logger.Info("no databases provided, fetching all databases")
		var err error
		databases, err = dm.Tenants(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get all databases: %w", err)
		}
	}

	results := make(map[string]RecomputeStats)
	var failed []string
	for _, dbName := range databases {
		err := dm.Exec(ctx, dbName, func(db *gorm.DB) error {
			n, err := attendance.RecomputeDate(db, event.Date)
			if err != nil {
				return err
			}
			results[dbName] = RecomputeStats{Days: n}
			return nil
		})
		if err != nil {
			logger.Error("failed to recompute attendance",
				slog.String("database", dbName), slog.String("date", event.Date), slog.Any("error", err))
			results[dbName] = RecomputeStats{Error: err.Error()}
			failed = append(failed, dbName)
			continue
		}
		logger.Info("recomputed attendance",
			slog.String("database", dbName), slog.String("date", event.Date), slog.Int("days", results[dbName].Days))
	}

	if len(failed) > 0 {
		msg := fmt.Sprintf("attendance recompute for %s failed on %s", event.Date, strings.Join(failed, ", "))
		if err := notifier.Error(msg); err != nil {
			logger.Warn("failed to notify slack", slog.Any("error", err))
		}
	}
	return results, nil
}
