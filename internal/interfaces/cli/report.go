package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ipfolio/patmaint/internal/domain/obligation"
)

// NewReportCmd creates the report command with its three subcommands.
func NewReportCmd(opts *RootOptions) *cobra.Command {
	reportCmd := &cobra.Command{
		Use:   "report",
		Short: "Query reports over the normalized model",
	}
	reportCmd.AddCommand(
		newScheduleCmd(opts),
		newRevenueCmd(opts),
		newExpiryCmd(opts),
	)
	return reportCmd
}

func newScheduleCmd(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "schedule",
		Short: "Maintenance schedule per patent",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(opts)
			if err != nil {
				return err
			}
			defer a.close()

			rows, err := a.reporter.MaintenanceSchedule(cmd.Context())
			if err != nil {
				return err
			}

			w := newTable(cmd)
			fmt.Fprintln(w, "PATENT\tTITLE\tGRANT\tDEADLINE\tDUE")
			for _, row := range rows {
				grant := "-"
				if row.GrantYear != nil {
					grant = fmt.Sprintf("%d", *row.GrantYear)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n",
					row.PatentNumber, row.Title, grant, row.DeadlineType, row.DueYear)
			}
			return w.Flush()
		},
	}
}

func newRevenueCmd(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "revenue",
		Short: "Expected fee revenue by due year and jurisdiction",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(opts)
			if err != nil {
				return err
			}
			defer a.close()

			rows, err := a.reporter.RevenueForecast(cmd.Context())
			if err != nil {
				return err
			}

			w := newTable(cmd)
			fmt.Fprintln(w, "YEAR\tJURISDICTION\tTOTAL")
			for _, row := range rows {
				total := obligation.Money{Amount: row.TotalCents, Currency: row.Currency}
				fmt.Fprintf(w, "%d\t%s\t%s\n", row.DueYear, row.JurisdictionLabel, total.String())
			}
			return w.Flush()
		},
	}
}

func newExpiryCmd(opts *RootOptions) *cobra.Command {
	var from, to int

	cmd := &cobra.Command{
		Use:   "expiry",
		Short: "Patents expiring within an inclusive year window",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(opts)
			if err != nil {
				return err
			}
			defer a.close()

			rows, err := a.reporter.ExpiringPatents(cmd.Context(), from, to)
			if err != nil {
				return err
			}

			w := newTable(cmd)
			fmt.Fprintln(w, "PATENT\tTITLE\tFILED\tEXPIRES\tCLIENT\tJURISDICTION")
			for _, row := range rows {
				fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\t%s\n",
					row.PatentNumber, row.Title, row.FilingYear, row.ExpiryYear,
					row.ClientName, row.JurisdictionName)
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVar(&from, "from", 0, "window start year, inclusive (required)")
	cmd.Flags().IntVar(&to, "to", 0, "window end year, inclusive (required)")
	cmd.MarkFlagRequired("from")
	cmd.MarkFlagRequired("to")
	return cmd
}
