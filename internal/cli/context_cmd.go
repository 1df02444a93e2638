package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lumenworks/cmsctl/internal/config"
	"github.com/lumenworks/cmsctl/internal/output"
)

func newContextCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "context",
		Short: "Manage backend contexts",
	}

	cmd.AddCommand(newContextListCmd())
	cmd.AddCommand(newContextUseCmd())
	cmd.AddCommand(newContextAddCmd())
	cmd.AddCommand(newContextSetCmd())
	cmd.AddCommand(newContextDeleteCmd())
	return cmd
}

func newContextListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List configured contexts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := config.Load(rootStringFlag(cmd, flagConfig))
			if err != nil {
				return err
			}
			if len(cfg.Contexts) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No contexts configured.")
				return nil
			}
			rows := make([][]string, 0, len(cfg.Contexts))
			for _, c := range cfg.Contexts {
				current := ""
				if c.Name == cfg.CurrentContext {
					current = "*"
				}
				hasToken := "no"
				if strings.TrimSpace(c.Token) != "" {
					hasToken = "yes"
				}
				rows = append(rows, []string{current, c.Name, c.Server, hasToken})
			}
			return output.WriteTable(cmd.OutOrStdout(), []string{"CURRENT", "NAME", "SERVER", "TOKEN"}, rows)
		},
	}
	return cmd
}

func newContextUseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "use <name>",
		Short: "Switch current-context",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, err := config.Load(rootStringFlag(cmd, flagConfig))
			if err != nil {
				return err
			}
			if _, err := config.ResolveContext(cfg, args[0]); err != nil {
				return err
			}
			cfg.CurrentContext = strings.TrimSpace(args[0])
			if err := config.Save(path, cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Switched to context %q\n", cfg.CurrentContext)
			return nil
		},
	}
	return cmd
}

func newContextAddCmd() *cobra.Command {
	var entry config.Context

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a context entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, err := config.Load(rootStringFlag(cmd, flagConfig))
			if err != nil {
				return err
			}
			entry.Name = strings.TrimSpace(args[0])
			cfg.Contexts = append(cfg.Contexts, entry)
			if err := cfg.Validate(); err != nil {
				return err
			}
			if cfg.CurrentContext == "" {
				cfg.CurrentContext = entry.Name
			}
			if err := config.Save(path, cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added context %q\n", entry.Name)
			return nil
		},
	}

	addContextFieldFlags(cmd, &entry)
	return cmd
}

func newContextSetCmd() *cobra.Command {
	var entry config.Context

	cmd := &cobra.Command{
		Use:   "set <name>",
		Short: "Update fields on an existing context",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, err := config.Load(rootStringFlag(cmd, flagConfig))
			if err != nil {
				return err
			}
			name := strings.TrimSpace(args[0])
			index := -1
			for i := range cfg.Contexts {
				if strings.TrimSpace(cfg.Contexts[i].Name) == name {
					index = i
					break
				}
			}
			if index < 0 {
				return fmt.Errorf("context %q not found", name)
			}

			changed := false
			if cmd.Flags().Changed("server") {
				cfg.Contexts[index].Server = strings.TrimSpace(entry.Server)
				changed = true
			}
			if cmd.Flags().Changed("token") {
				cfg.Contexts[index].Token = strings.TrimSpace(entry.Token)
				changed = true
			}
			if cmd.Flags().Changed("backend-addr") {
				cfg.Contexts[index].BackendAddr = strings.TrimSpace(entry.BackendAddr)
				changed = true
			}
			if cmd.Flags().Changed("private-key") {
				cfg.Contexts[index].PrivateKeyPath = strings.TrimSpace(entry.PrivateKeyPath)
				changed = true
			}
			if cmd.Flags().Changed("known-hosts") {
				cfg.Contexts[index].KnownHostsPath = strings.TrimSpace(entry.KnownHostsPath)
				changed = true
			}
			if !changed {
				return fmt.Errorf("at least one context field must be set")
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if err := config.Save(path, cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated context %q\n", name)
			return nil
		},
	}

	addContextFieldFlags(cmd, &entry)
	return cmd
}

func addContextFieldFlags(cmd *cobra.Command, entry *config.Context) {
	cmd.Flags().StringVar(&entry.Server, "server", "", "Backend base URL or ssh://user@host target")
	cmd.Flags().StringVar(&entry.Token, "token", "", "API bearer token")
	cmd.Flags().StringVar(&entry.BackendAddr, "backend-addr", "", "Backend address on the remote side of an SSH tunnel")
	cmd.Flags().StringVar(&entry.PrivateKeyPath, "private-key", "", "SSH private key path")
	cmd.Flags().StringVar(&entry.KnownHostsPath, "known-hosts", "", "known_hosts path for SSH host verification")
}

func newContextDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <name>",
		Short: "Remove a context entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, err := config.Load(rootStringFlag(cmd, flagConfig))
			if err != nil {
				return err
			}
			name := strings.TrimSpace(args[0])
			kept := cfg.Contexts[:0]
			found := false
			for _, c := range cfg.Contexts {
				if strings.TrimSpace(c.Name) == name {
					found = true
					continue
				}
				kept = append(kept, c)
			}
			if !found {
				return fmt.Errorf("context %q not found", name)
			}
			cfg.Contexts = kept
			if cfg.CurrentContext == name {
				cfg.CurrentContext = ""
			}
			if err := config.Save(path, cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted context %q\n", name)
			return nil
		},
	}
	return cmd
}
