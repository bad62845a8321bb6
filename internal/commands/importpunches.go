package commands

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"

	attendance "axiapac.com/backoffice/attendance/core"
	"axiapac.com/backoffice/infrastructure/filesystem"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var (
	importFile   string
	importPrefix string
	importTenant string
)

var importPunchesCmd = &cobra.Command{
	Use:   "import-punches",
	Short: "Import punch exports (csv or xlsx)",
	Long: `import-punches appends punches from a local file or an s3://bucket/key
object and recomputes every touched day. With --prefix every object under
s3://bucket/prefix is imported.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if importFile == "" && importPrefix == "" {
			return fmt.Errorf("one of --file or --prefix is required")
		}
		ctx := cmd.Context()

		sources := []string{importFile}
		if importPrefix != "" {
			listed, err := listObjects(ctx, importPrefix)
			if err != nil {
				return err
			}
			sources = listed
		}

		var punches []attendance.Punch
		for _, src := range sources {
			parsed, err := readPunches(ctx, src)
			if err != nil {
				return fmt.Errorf("%s: %w", src, err)
			}
			logger.Info("parsed punches", slog.String("source", src), slog.Int("rows", len(parsed)))
			punches = append(punches, parsed...)
		}

		dm, err := openDatabase(ctx)
		if err != nil {
			return err
		}
		defer dm.Close()

		return dm.Exec(ctx, importTenant, func(db *gorm.DB) error {
			result, err := attendance.Import(db, attendance.GroupPunches(punches))
			if err != nil {
				return err
			}
			logger.Info("imported punches",
				slog.String("tenant", importTenant), slog.Int("days", result.Days), slog.Int("records", result.Records))
			return nil
		})
	},
}

func listObjects(ctx context.Context, url string) ([]string, error) {
	bucket, prefix, ok := filesystem.ParseURL(url)
	if !ok {
		return nil, fmt.Errorf("--prefix must be an s3:// url, got %q", url)
	}
	keys, err := filesystem.ListFiles(ctx, bucket, prefix)
	if err != nil {
		return nil, err
	}

	var sources []string
	for _, key := range keys {
		switch path.Ext(key) {
		case ".csv", ".xlsx":
			sources = append(sources, "s3://"+bucket+"/"+key)
		}
	}
	return sources, nil
}

func readPunches(ctx context.Context, src string) ([]attendance.Punch, error) {
	var r io.Reader
	if bucket, key, ok := filesystem.ParseURL(src); ok {
		var buf bytes.Buffer
		if err := filesystem.ReadFile(ctx, bucket, key, &buf); err != nil {
			return nil, err
		}
		r = &buf
	} else {
		f, err := os.Open(src)
		if err != nil {
			return nil, fmt.Errorf("failed to open file %s: %w", src, err)
		}
		defer f.Close()
		r = f
	}
	return attendance.ParsePunchFile(src, r, location())
}

func init() {
	importPunchesCmd.Flags().StringVar(&importFile, "file", "", "local path or s3://bucket/key")
	importPunchesCmd.Flags().StringVar(&importPrefix, "prefix", "", "s3://bucket/prefix to import every export under")
	importPunchesCmd.Flags().StringVar(&importTenant, "tenant", "", "tenant schema (default: configured schema)")
}
