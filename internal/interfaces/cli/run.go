package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewRunCmd creates the run command, which executes the full
// transformation: collapse staged rows, resolve references, and derive
// obligations.  Safe to invoke repeatedly.
func NewRunCmd(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the normalization pipeline over the staged rows",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(opts)
			if err != nil {
				return err
			}
			defer a.close()

			svc, err := a.pipelineService()
			if err != nil {
				return err
			}
			stats, err := svc.Run(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Raw rows:          %d\n", stats.RawRows)
			fmt.Fprintf(out, "Rows without key:  %d\n", stats.RowsWithoutKey)
			fmt.Fprintf(out, "Patents created:   %d\n", stats.PatentsCreated)
			fmt.Fprintf(out, "Patents skipped:   %d\n", stats.PatentsSkipped)
			fmt.Fprintf(out, "Deadlines created: %d\n", stats.DeadlinesCreated)
			fmt.Fprintf(out, "Costs created:     %d\n", stats.CostsCreated)
			return nil
		},
	}
}
