package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lumenworks/cmsctl/internal/config"
	"github.com/lumenworks/cmsctl/internal/output"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the cmsctl config file",
	}

	cmd.AddCommand(newConfigViewCmd())
	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigPathCmd())
	cmd.AddCommand(newConfigCurrentContextCmd())
	return cmd
}

func newConfigViewCmd() *cobra.Command {
	var showTokens bool

	cmd := &cobra.Command{
		Use:   "view",
		Short: "Print the loaded config (tokens redacted by default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := config.Load(rootStringFlag(cmd, flagConfig))
			if err != nil {
				return err
			}
			if !showTokens {
				for i := range cfg.Contexts {
					if cfg.Contexts[i].Token != "" {
						cfg.Contexts[i].Token = "REDACTED"
					}
				}
			}
			return output.WriteStructured(cmd.OutOrStdout(), output.FormatYAML, cfg)
		},
	}

	cmd.Flags().BoolVar(&showTokens, "show-tokens", false, "Print stored tokens in clear text")
	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var name, server string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a config file with one context",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.ResolvePath(rootStringFlag(cmd, flagConfig))
			if err != nil {
				return err
			}
			if _, _, loadErr := config.Load(path); loadErr == nil {
				return fmt.Errorf("config already exists at %s", path)
			}

			cfg := config.Config{
				APIVersion:     config.DefaultAPIVersion,
				CurrentContext: name,
				Contexts: []config.Context{
					{Name: name, Server: server},
				},
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if err := config.Save(path, cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s with context %q\n", path, name)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "default", "Context name")
	cmd.Flags().StringVar(&server, "server", "http://localhost:4000", "Backend base URL or ssh://user@host target")
	return cmd
}

func newConfigCurrentContextCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "current-context",
		Short: "Print the active context name",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := runtimeFromCommand(cmd)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), rt.ResolvedContext.Name)
			return nil
		},
	}
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the resolved config file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.ResolvePath(rootStringFlag(cmd, flagConfig))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}
