package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lumenworks/cmsctl/internal/client"
	"github.com/lumenworks/cmsctl/internal/output"
)

func newSubscribersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "subscribers",
		Short: "Manage mailing-list subscribers",
	}

	cmd.AddCommand(newSubscribersListCmd())
	cmd.AddCommand(newSubscribersGetCmd())
	cmd.AddCommand(newSubscribersAddCmd())
	cmd.AddCommand(newSubscribersUnsubscribeCmd())
	cmd.AddCommand(newSubscribersUpdateCmd())
	cmd.AddCommand(newSubscribersDeleteCmd())
	return cmd
}

func newSubscribersListCmd() *cobra.Command {
	var outputMode string
	var page, limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List subscribers",
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

			resp, err := api.ListSubscribers(cmd.Context(), page, limit)
			if err != nil {
				return err
			}
			if format != output.FormatTable {
				return output.WriteStructured(cmd.OutOrStdout(), format, resp)
			}
			if len(resp.Items) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No subscribers found.")
				return nil
			}
			rows := make([][]string, 0, len(resp.Items))
			for _, s := range resp.Items {
				state := "unsubscribed"
				if s.Subscribed {
					state = "subscribed"
				}
				rows = append(rows, []string{s.ID, s.Email, state, s.SubscribedAt})
			}
			return output.WriteTable(cmd.OutOrStdout(), []string{"ID", "EMAIL", "STATE", "SUBSCRIBED_AT"}, rows)
		},
	}

	cmd.Flags().StringVarP(&outputMode, "output", "o", "table", "Output format (table|json|yaml)")
	cmd.Flags().IntVar(&page, "page", 0, "Page number")
	cmd.Flags().IntVar(&limit, "limit", 0, "Page size")
	return cmd
}

func newSubscribersGetCmd() *cobra.Command {
	var outputMode string

	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Fetch one subscriber",
		Args:  cobra.ExactArgs(1),
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

			sub, err := api.GetSubscriber(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if format == output.FormatTable {
				format = output.FormatYAML
			}
			return output.WriteStructured(cmd.OutOrStdout(), format, sub)
		},
	}

	cmd.Flags().StringVarP(&outputMode, "output", "o", "yaml", "Output format (json|yaml)")
	return cmd
}

func newSubscribersAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <email>",
		Short: "Subscribe an email address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, api, err := runtimeAndClientFromCommand(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			sub, err := api.Subscribe(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Subscribed %s (%s)\n", sub.Email, sub.ID)
			return nil
		},
	}
	return cmd
}

func newSubscribersUnsubscribeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "unsubscribe <email>",
		Short: "Unsubscribe an email address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, api, err := runtimeAndClientFromCommand(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			if err := api.Unsubscribe(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Unsubscribed %s\n", args[0])
			return nil
		},
	}
	return cmd
}

func newSubscribersUpdateCmd() *cobra.Command {
	var email string
	var subscribed bool

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a subscriber (only flags you pass are sent)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, api, err := runtimeAndClientFromCommand(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			sub, err := api.UpdateSubscriber(cmd.Context(), args[0], client.SubscriberUpdate{
				Email:      stringPtrFlag(cmd, "email", email),
				Subscribed: boolPtrFlag(cmd, "subscribed", subscribed),
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated subscriber %s\n", sub.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "New email address")
	cmd.Flags().BoolVar(&subscribed, "subscribed", false, "Subscription state")
	return cmd
}

func newSubscribersDeleteCmd() *cobra.Command {
	var assumeYes bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a subscriber record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, api, err := runtimeAndClientFromCommand(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			ok, err := confirm(cmd, assumeYes, fmt.Sprintf("Delete subscriber %s?", args[0]))
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
				return nil
			}
			resp, err := api.DeleteSubscriber(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted subscriber %s\n", resp.ID)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}
