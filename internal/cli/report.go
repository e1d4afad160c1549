package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/sakif/task-tracker/internal/service"
)

func (r *RootCommand) newReportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Display task count per status for each user",
		Long: `Print one block per user with the number of tasks in each status.

Statuses with no tasks are omitted; users without tasks still get a
block. Example output:

  User: John Doe
    - todo: 2
    - done: 1`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := r.openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			report := service.NewReportService(db, db, discardLogger())
			return writeReport(cmd.Context(), report, cmd.OutOrStdout())
		},
	}
}

// writeReport renders the per-user status counts. Counts arrive from
// the store already stabilized to todo, in_progress, done order.
func writeReport(ctx context.Context, report *service.ReportService, out io.Writer) error {
	reports, err := report.Generate(ctx)
	if err != nil {
		return fmt.Errorf("generating report: %w", err)
	}

	for _, ur := range reports {
		fmt.Fprintf(out, "User: %s\n", ur.User.Name)
		for _, sc := range ur.Counts {
			fmt.Fprintf(out, "  - %s: %d\n", sc.Status, sc.Count)
		}
		fmt.Fprintln(out)
	}

	return nil
}
