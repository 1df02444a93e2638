package cli

import "github.com/spf13/cobra"

// NewRootCmd builds the cmsctl root command tree.
func NewRootCmd(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "cmsctl",
		Short:        "Admin CLI for the CMS backend",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().String(flagConfig, "", "Path to the cmsctl config file")
	cmd.PersistentFlags().String(flagContext, "", "Context to use instead of current-context")
	cmd.PersistentFlags().BoolP(flagVerbose, "v", false, "Log requests to stderr")

	cmd.AddCommand(newPagesCmd())
	cmd.AddCommand(newModulesCmd())
	cmd.AddCommand(newStoriesCmd())
	cmd.AddCommand(newBlogsCmd())
	cmd.AddCommand(newMediaCmd())
	cmd.AddCommand(newBackupCmd())
	cmd.AddCommand(newFormsCmd())
	cmd.AddCommand(newSubscribersCmd())
	cmd.AddCommand(newDashboardCmd())
	cmd.AddCommand(newAuthCmd())
	cmd.AddCommand(newAuthLoginCmd())
	cmd.AddCommand(newAuthLogoutCmd())
	cmd.AddCommand(newAuthWhoamiCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newContextCmd())
	cmd.AddCommand(newVersionCmd(version))

	return cmd
}
