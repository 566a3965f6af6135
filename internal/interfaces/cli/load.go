package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ipfolio/patmaint/internal/domain/staging"
	"github.com/ipfolio/patmaint/internal/infrastructure/monitoring/logging"
	"github.com/ipfolio/patmaint/pkg/errors"
)

// NewLoadCmd creates the load command, which parses a CSV export and
// appends its rows to the staging area.
func NewLoadCmd(opts *RootOptions) *cobra.Command {
	var filePath string

	cmd := &cobra.Command{
		Use:   "load",
		Short: "Load a raw CSV export into the staging area",
		Long:  "Parses a patent CSV export and appends every row to the staging\narea as-is.  Loading never deduplicates; the transformation run does.",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(opts)
			if err != nil {
				return err
			}
			defer a.close()

			f, err := os.Open(filePath)
			if err != nil {
				return errors.Wrap(err, errors.ErrCodeBadRequest, "failed to open input file")
			}
			defer f.Close()

			records, err := staging.ParseCSV(f)
			if err != nil {
				return err
			}
			if err := a.stagingRepo.BulkInsert(cmd.Context(), records); err != nil {
				return err
			}

			total, err := a.stagingRepo.CountAll(cmd.Context())
			if err != nil {
				return err
			}
			a.log.Info("staging load complete",
				logging.String("file", filePath),
				logging.Int("rows", len(records)),
				logging.Int64("staged_total", total),
			)
			fmt.Fprintf(cmd.OutOrStdout(), "Loaded %d rows (%d staged in total)\n", len(records), total)
			return nil
		},
	}

	cmd.Flags().StringVarP(&filePath, "file", "f", "", "CSV file to load (required)")
	cmd.MarkFlagRequired("file")
	return cmd
}
