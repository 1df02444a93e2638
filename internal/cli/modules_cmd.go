package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lumenworks/cmsctl/internal/client"
	"github.com/lumenworks/cmsctl/internal/content"
	"github.com/lumenworks/cmsctl/internal/output"
)

func newModulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "modules",
		Short: "Manage reusable content modules",
	}

	cmd.AddCommand(newModulesListCmd())
	cmd.AddCommand(newModulesGetCmd())
	cmd.AddCommand(newModulesCreateCmd())
	cmd.AddCommand(newModulesUpdateCmd())
	cmd.AddCommand(newModulesCloneCmd())
	cmd.AddCommand(newModulesFieldsCmd())
	cmd.AddCommand(newModulesSetFieldCmd())
	cmd.AddCommand(newModulesRemoveFieldCmd())
	return cmd
}

func newModulesListCmd() *cobra.Command {
	var outputMode string
	var all bool
	var params client.ListModulesParams

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List modules",
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

			var resp client.ModuleList
			if all {
				resp, err = api.ListAllModules(cmd.Context())
			} else {
				resp, err = api.ListModules(cmd.Context(), params)
			}
			if err != nil {
				return err
			}
			if format != output.FormatTable {
				return output.WriteStructured(cmd.OutOrStdout(), format, resp)
			}
			if len(resp.Items) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No modules found.")
				return nil
			}
			rows := make([][]string, 0, len(resp.Items))
			for _, m := range resp.Items {
				rows = append(rows, []string{
					m.ID,
					m.Type,
					output.Truncate(m.Title, 40),
					m.Status,
					itoa(m.Version),
					m.UpdatedAt,
				})
			}
			return output.WriteTable(cmd.OutOrStdout(), []string{"ID", "TYPE", "TITLE", "STATUS", "VERSION", "UPDATED_AT"}, rows)
		},
	}

	cmd.Flags().StringVarP(&outputMode, "output", "o", "table", "Output format (table|json|yaml)")
	cmd.Flags().BoolVar(&all, "all", false, "Fetch every module in one request")
	cmd.Flags().IntVar(&params.Page, "page", 0, "Page number")
	cmd.Flags().IntVar(&params.Limit, "limit", 0, "Page size")
	cmd.Flags().StringVar(&params.Type, "type", "", "Filter by module type")
	cmd.Flags().StringVar(&params.Search, "search", "", "Filter by search term")
	return cmd
}

func newModulesGetCmd() *cobra.Command {
	var outputMode string

	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Fetch one module",
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

			module, err := api.GetModule(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if format == output.FormatTable {
				format = output.FormatJSON
			}
			return output.WriteStructured(cmd.OutOrStdout(), format, module)
		},
	}

	cmd.Flags().StringVarP(&outputMode, "output", "o", "json", "Output format (json|yaml)")
	return cmd
}

func newModulesCreateCmd() *cobra.Command {
	var create client.ModuleCreate
	var contentJSON string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a module",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, api, err := runtimeAndClientFromCommand(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			if contentJSON != "" {
				if err := json.Unmarshal([]byte(contentJSON), &create.Content); err != nil {
					return fmt.Errorf("--content is not valid JSON: %w", err)
				}
			}
			module, err := api.CreateModule(cmd.Context(), create)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created module %q (%s)\n", module.Title, module.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&create.Type, "type", "", "Module type (hero, gallery, ...)")
	cmd.Flags().StringVar(&create.Title, "title", "", "Module title")
	cmd.Flags().StringVar(&create.Status, "status", client.StatusDraft, "Initial status (draft|published|archived)")
	cmd.Flags().StringVar(&contentJSON, "content", "", "Content object as literal JSON")
	return cmd
}

func newModulesUpdateCmd() *cobra.Command {
	var typ, title, status, contentJSON string

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a module (only flags you pass are sent)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, api, err := runtimeAndClientFromCommand(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			update := client.ModuleUpdate{
				Type:   stringPtrFlag(cmd, "type", typ),
				Title:  stringPtrFlag(cmd, "title", title),
				Status: stringPtrFlag(cmd, "status", status),
			}
			if cmd.Flags().Changed("content") {
				var obj map[string]any
				if err := json.Unmarshal([]byte(contentJSON), &obj); err != nil {
					return fmt.Errorf("--content is not valid JSON: %w", err)
				}
				update.Content = &obj
			}
			module, err := api.UpdateModule(cmd.Context(), args[0], update)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated module %s (version %d)\n", module.ID, module.Version)
			return nil
		},
	}

	cmd.Flags().StringVar(&typ, "type", "", "Module type")
	cmd.Flags().StringVar(&title, "title", "", "Module title")
	cmd.Flags().StringVar(&status, "status", "", "Status (draft|published|archived)")
	cmd.Flags().StringVar(&contentJSON, "content", "", "Replacement content object as literal JSON")
	return cmd
}

func newModulesCloneCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clone <id> <new-title>",
		Short: "Clone a module with a deep-copied content object",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, api, err := runtimeAndClientFromCommand(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			clone, err := api.CloneModule(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cloned module %s into %q (%s)\n", args[0], clone.Title, clone.ID)
			return nil
		},
	}
	return cmd
}

func newModulesFieldsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fields <id>",
		Short: "Show a module's content fields with their inferred kinds",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, api, err := runtimeAndClientFromCommand(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			module, err := api.GetModule(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fields := content.FieldsOf(module.Content)
			if len(fields) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Module has no content fields.")
				return nil
			}
			rows := make([][]string, 0, len(fields))
			for _, f := range fields {
				preview, err := json.Marshal(f.Value)
				if err != nil {
					return fmt.Errorf("render field %q: %w", f.Key, err)
				}
				rows = append(rows, []string{f.Key, string(f.Kind), output.Truncate(string(preview), 60)})
			}
			return output.WriteTable(cmd.OutOrStdout(), []string{"KEY", "KIND", "VALUE"}, rows)
		},
	}
	return cmd
}

func newModulesSetFieldCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set-field <id> <key> <value>",
		Short: "Set one content field (value is literal JSON, or a plain string)",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, api, err := runtimeAndClientFromCommand(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			module, err := api.GetModule(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			var updated map[string]any
			ed := content.NewEditor(module.Content, func(obj map[string]any) { updated = obj })
			value := content.ParseArrayItem(args[2])
			if err := ed.SetValue(args[1], value); err != nil {
				if addErr := ed.AddField(args[1], content.InferKind(value)); addErr != nil {
					return err
				}
				if err := ed.SetValue(args[1], value); err != nil {
					return err
				}
			}
			if updated == nil {
				updated = ed.Object()
			}
			if _, err := api.UpdateModule(cmd.Context(), args[0], client.ModuleUpdate{Content: &updated}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Set %s on module %s (%s)\n", args[1], args[0], content.InferKind(value))
			return nil
		},
	}
	return cmd
}

func newModulesRemoveFieldCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remove-field <id> <key>",
		Short: "Remove one content field",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, api, err := runtimeAndClientFromCommand(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			module, err := api.GetModule(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			var updated map[string]any
			ed := content.NewEditor(module.Content, func(obj map[string]any) { updated = obj })
			if err := ed.RemoveField(args[1]); err != nil {
				return err
			}
			if updated == nil {
				updated = ed.Object()
			}
			if _, err := api.UpdateModule(cmd.Context(), args[0], client.ModuleUpdate{Content: &updated}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s from module %s\n", args[1], args[0])
			return nil
		},
	}
	return cmd
}
