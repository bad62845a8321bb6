package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"axiapac.com/backoffice/config"
	"axiapac.com/backoffice/core"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "backoffice",
	Short: "Back office API and batch tools",
	Long: `backoffice serves the attendance and client contract API and runs the
batch jobs around it: migrations, attendance replays, punch imports and reports.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == versionCmd.Name() {
			return nil
		}
		loaded, err := config.Load()
		if err != nil {
			return err
		}
		cfg = loaded
		logger = core.NewLogger(cfg.Log)
		slog.SetDefault(logger)
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("backoffice %s (%s, %s)\n", version, commit, date)
	},
}

// SetVersion sets the version information
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// openDatabase connects with the loaded configuration.
func openDatabase(ctx context.Context) (*core.DatabaseManager, error) {
	dm, err := core.Open(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return dm, nil
}

// targetTenants returns the tenants named on the command line, or every
// tenant the database serves.
func targetTenants(ctx context.Context, dm *core.DatabaseManager, named []string) ([]string, error) {
	if len(named) > 0 {
		return named, nil
	}
	return dm.Tenants(ctx)
}

func location() *time.Location {
	// validated by config.Load
	loc, _ := cfg.Attendance.Location()
	return loc
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(recomputeCmd)
	rootCmd.AddCommand(importPunchesCmd)
	rootCmd.AddCommand(exportAttendanceCmd)
	rootCmd.AddCommand(createTokenCmd)
	rootCmd.AddCommand(versionCmd)
}
