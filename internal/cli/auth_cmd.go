package cli

import (
	"fmt"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/lumenworks/cmsctl/internal/config"
	"github.com/lumenworks/cmsctl/internal/output"
)

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the backend session",
	}

	cmd.AddCommand(newAuthLoginCmd())
	cmd.AddCommand(newAuthLogoutCmd())
	cmd.AddCommand(newAuthRefreshCmd())
	cmd.AddCommand(newAuthWhoamiCmd())
	return cmd
}

func readPassword(cmd *cobra.Command) (string, error) {
	fmt.Fprint(cmd.OutOrStdout(), "Password: ")
	raw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(cmd.OutOrStdout())
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(raw), nil
}

func newAuthLoginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the bearer token in the active context",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, api, err := runtimeAndClientFromCommand(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			if strings.TrimSpace(password) == "" {
				password, err = readPassword(cmd)
				if err != nil {
					return err
				}
			}
			session, err := api.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			if err := config.SetToken(&rt.Config, rt.ResolvedContext.Name, session.Token); err != nil {
				return err
			}
			if err := config.Save(rt.ConfigPath, rt.Config); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s; token stored in context %q\n",
				session.User.Email, rt.ResolvedContext.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password (prompted when omitted)")
	return cmd
}

func newAuthLogoutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Log out and clear the stored token",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, api, err := runtimeAndClientFromCommand(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			// Clear the local token even when the server-side logout
			// fails; a dead session should never strand the CLI.
			logoutErr := api.Logout(cmd.Context())
			if err := config.SetToken(&rt.Config, rt.ResolvedContext.Name, ""); err != nil {
				return err
			}
			if err := config.Save(rt.ConfigPath, rt.Config); err != nil {
				return err
			}
			if logoutErr != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "Token cleared locally (server logout failed: %v)\n", logoutErr)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return nil
		},
	}
	return cmd
}

func newAuthRefreshCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Refresh the session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, api, err := runtimeAndClientFromCommand(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			session, err := api.Refresh(cmd.Context())
			if err != nil {
				return err
			}
			if err := config.SetToken(&rt.Config, rt.ResolvedContext.Name, session.Token); err != nil {
				return err
			}
			if err := config.Save(rt.ConfigPath, rt.Config); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Session refreshed (expires %s)\n", output.OrDash(session.ExpiresAt))
			return nil
		},
	}
	return cmd
}

func newAuthWhoamiCmd() *cobra.Command {
	var outputMode string

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the authenticated user",
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

			user, err := api.Me(cmd.Context())
			if err != nil {
				return err
			}
			if format != output.FormatTable {
				return output.WriteStructured(cmd.OutOrStdout(), format, user)
			}
			rows := [][]string{{user.ID, user.Email, output.OrDash(user.Name), output.OrDash(user.Role)}}
			return output.WriteTable(cmd.OutOrStdout(), []string{"ID", "EMAIL", "NAME", "ROLE"}, rows)
		},
	}

	cmd.Flags().StringVarP(&outputMode, "output", "o", "table", "Output format (table|json|yaml)")
	return cmd
}
