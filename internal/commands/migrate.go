package commands

import (
	"fmt"
	"log/slog"

	"axiapac.com/backoffice/core"
	"github.com/spf13/cobra"
)

var migrateTenants []string

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the tables of every tenant",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		dm, err := openDatabase(ctx)
		if err != nil {
			return err
		}
		defer dm.Close()

		tenants, err := targetTenants(ctx, dm, migrateTenants)
		if err != nil {
			return err
		}

		var failed int
		for _, tenant := range tenants {
			err := dm.Exec(ctx, tenant, core.AutoMigrate)
			if err != nil {
				failed++
				logger.Error("migration failed", slog.String("tenant", tenant), slog.Any("error", err))
				continue
			}
			logger.Info("migrated", slog.String("tenant", tenant))
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d tenants failed to migrate", failed, len(tenants))
		}
		return nil
	},
}

func init() {
	migrateCmd.Flags().StringSliceVar(&migrateTenants, "tenant", nil, "tenant schemas to migrate (default: all)")
}
