package commands

import (
	"fmt"
	"log/slog"
	"os"

	attendance "axiapac.com/backoffice/attendance/core"
	"axiapac.com/backoffice/infrastructure/filesystem"
	"axiapac.com/backoffice/report"
	"axiapac.com/backoffice/utils"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var (
	exportMonth  string
	exportBucket string
	exportOut    string
	exportTenant string
)

var exportAttendanceCmd = &cobra.Command{
	Use:   "export-attendance",
	Short: "Write the monthly attendance workbook",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, _, err := utils.MonthRange(exportMonth); err != nil {
			return err
		}
		bucket := exportBucket
		if bucket == "" && exportOut == "" {
			bucket = cfg.Reports.Bucket
		}
		if bucket == "" && exportOut == "" {
			return fmt.Errorf("one of --out or --bucket is required")
		}

		ctx := cmd.Context()
		dm, err := openDatabase(ctx)
		if err != nil {
			return err
		}
		defer dm.Close()

		var rows []attendance.ReportRow
		if err := dm.Exec(ctx, exportTenant, func(db *gorm.DB) error {
			rows, err = attendance.MonthReport(db, exportMonth)
			return err
		}); err != nil {
			return err
		}

		f, err := report.Attendance(exportMonth, rows, location())
		if err != nil {
			return err
		}
		body, err := report.Bytes(f)
		if err != nil {
			return err
		}

		name := fmt.Sprintf("attendance-%s.xlsx", exportMonth)
		if exportOut != "" {
			if err := os.WriteFile(exportOut, body, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", exportOut, err)
			}
			logger.Info("wrote attendance report", slog.String("path", exportOut), slog.Int("rows", len(rows)))
		}
		if bucket != "" {
			key := "reports/"
			if exportTenant != "" {
				key += exportTenant + "/"
			}
			key += name
			if err := filesystem.WriteFile(ctx, bucket, key, report.ContentType, body); err != nil {
				return err
			}
			logger.Info("uploaded attendance report", slog.String("bucket", bucket), slog.String("key", key))
		}
		return nil
	},
}

func init() {
	exportAttendanceCmd.Flags().StringVar(&exportMonth, "month", "", "month to export, yyyy-MM")
	exportAttendanceCmd.Flags().StringVar(&exportBucket, "bucket", "", "S3 bucket to upload to (default: reports.bucket)")
	exportAttendanceCmd.Flags().StringVar(&exportOut, "out", "", "local file to write")
	exportAttendanceCmd.Flags().StringVar(&exportTenant, "tenant", "", "tenant schema (default: configured schema)")
	exportAttendanceCmd.MarkFlagRequired("month")
}
