package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lumenworks/cmsctl/internal/output"
)

func newDashboardCmd() *cobra.Command {
	var outputMode string

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show backend aggregate counts and recent activity",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, api, err := runtimeAndClientFromCommand(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()
			format, err := output.ParseFormat(outputMode)
			if err != nil {
				return err
			}

			stats, err := api.GetDashboard(cmd.Context())
			if err != nil {
				return err
			}
			if format != output.FormatTable {
				return output.WriteStructured(cmd.OutOrStdout(), format, stats)
			}

			rows := [][]string{
				{"pages", itoa(stats.Pages)},
				{"modules", itoa(stats.Modules)},
				{"stories", itoa(stats.Stories)},
				{"blogs", itoa(stats.Blogs)},
				{"media", itoa(stats.Media)},
				{"submissions", itoa(stats.Submissions)},
				{"subscribers", itoa(stats.Subscribers)},
			}
			if err := output.WriteTable(cmd.OutOrStdout(), []string{"RESOURCE", "COUNT"}, rows); err != nil {
				return err
			}
			if len(stats.RecentActivity) == 0 {
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout())
			activity := make([][]string, 0, len(stats.RecentActivity))
			for _, a := range stats.RecentActivity {
				activity = append(activity, []string{
					a.Kind,
					output.Truncate(a.Title, 40),
					output.OrDash(a.Actor),
					a.Timestamp,
				})
			}
			return output.WriteTable(cmd.OutOrStdout(), []string{"KIND", "TITLE", "ACTOR", "TIMESTAMP"}, activity)
		},
	}

	cmd.Flags().StringVarP(&outputMode, "output", "o", "table", "Output format (table|json|yaml)")
	return cmd
}
