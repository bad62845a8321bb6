package commands

import (
	"fmt"
	"log/slog"
	"time"

	attendance "axiapac.com/backoffice/attendance/core"
	"axiapac.com/backoffice/utils"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var (
	recomputeDate    string
	recomputeTenants []string
)

var recomputeCmd = &cobra.Command{
	Use:   "recompute",
	Short: "Replay attendance totals for a date",
	Long: `recompute rebuilds total_minutes and status of every attendance day on
--date from its live records. Reruns are harmless.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		date := recomputeDate
		if date == "" {
			date = utils.Yesterday(time.Now(), location())
		}
		if _, err := utils.ParseDate(date); err != nil {
			return err
		}

		ctx := cmd.Context()
		dm, err := openDatabase(ctx)
		if err != nil {
			return err
		}
		defer dm.Close()

		tenants, err := targetTenants(ctx, dm, recomputeTenants)
		if err != nil {
			return err
		}

		var failed int
		for _, tenant := range tenants {
			err := dm.Exec(ctx, tenant, func(db *gorm.DB) error {
				n, err := attendance.RecomputeDate(db, date)
				if err != nil {
					return err
				}
				logger.Info("recomputed attendance",
					slog.String("tenant", tenant), slog.String("date", date), slog.Int("days", n))
				return nil
			})
			if err != nil {
				failed++
				logger.Error("recompute failed", slog.String("tenant", tenant), slog.Any("error", err))
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d tenants failed to recompute", failed, len(tenants))
		}
		return nil
	},
}

func init() {
	recomputeCmd.Flags().StringVar(&recomputeDate, "date", "", "date to replay, yyyy-MM-dd (default: yesterday)")
	recomputeCmd.Flags().StringSliceVar(&recomputeTenants, "tenant", nil, "tenant schemas (default: all)")
}
