package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lumenworks/cmsctl/internal/client"
	"github.com/lumenworks/cmsctl/internal/output"
)

func newFormsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "forms",
		Short: "Manage form submissions",
	}

	cmd.AddCommand(newFormsListCmd())
	cmd.AddCommand(newFormsGetCmd())
	cmd.AddCommand(newFormsDeleteCmd())
	cmd.AddCommand(newFormsExportCmd())
	cmd.AddCommand(newFormsSubmitCmd())
	return cmd
}

func newFormsSubmitCmd() *cobra.Command {
	var formName, fieldsJSON string

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit to a public form (for smoke-testing form handling)",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, api, err := runtimeAndClientFromCommand(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			var fields map[string]any
			if err := json.Unmarshal([]byte(fieldsJSON), &fields); err != nil {
				return fmt.Errorf("--fields is not valid JSON: %w", err)
			}
			sub, err := api.SubmitForm(cmd.Context(), client.FormSubmit{FormName: formName, Fields: fields})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Submitted to form %q (%s)\n", sub.FormName, sub.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&formName, "form", "", "Form name")
	cmd.Flags().StringVar(&fieldsJSON, "fields", "{}", "Field values as literal JSON")
	return cmd
}

func newFormsListCmd() *cobra.Command {
	var outputMode string
	var page, limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List form submissions",
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

			resp, err := api.ListFormSubmissions(cmd.Context(), page, limit)
			if err != nil {
				return err
			}
			if format != output.FormatTable {
				return output.WriteStructured(cmd.OutOrStdout(), format, resp)
			}
			if len(resp.Items) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No form submissions found.")
				return nil
			}
			rows := make([][]string, 0, len(resp.Items))
			for _, s := range resp.Items {
				rows = append(rows, []string{
					s.ID,
					s.FormName,
					itoa(len(s.Fields)),
					s.SubmittedAt,
				})
			}
			return output.WriteTable(cmd.OutOrStdout(), []string{"ID", "FORM", "FIELDS", "SUBMITTED_AT"}, rows)
		},
	}

	cmd.Flags().StringVarP(&outputMode, "output", "o", "table", "Output format (table|json|yaml)")
	cmd.Flags().IntVar(&page, "page", 0, "Page number")
	cmd.Flags().IntVar(&limit, "limit", 0, "Page size")
	return cmd
}

func newFormsGetCmd() *cobra.Command {
	var outputMode string

	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Fetch one form submission",
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

			sub, err := api.GetFormSubmission(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if format != output.FormatTable {
				return output.WriteStructured(cmd.OutOrStdout(), format, sub)
			}
			rows := make([][]string, 0, len(sub.Fields))
			for key, value := range sub.Fields {
				rendered, err := json.Marshal(value)
				if err != nil {
					return fmt.Errorf("render field %q: %w", key, err)
				}
				rows = append(rows, []string{key, output.Truncate(string(rendered), 60)})
			}
			return output.WriteTable(cmd.OutOrStdout(), []string{"FIELD", "VALUE"}, rows)
		},
	}

	cmd.Flags().StringVarP(&outputMode, "output", "o", "table", "Output format (table|json|yaml)")
	return cmd
}

func newFormsDeleteCmd() *cobra.Command {
	var assumeYes bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a form submission",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, api, err := runtimeAndClientFromCommand(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			ok, err := confirm(cmd, assumeYes, fmt.Sprintf("Delete form submission %s?", args[0]))
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
				return nil
			}
			resp, err := api.DeleteFormSubmission(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted form submission %s\n", resp.ID)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

func newFormsExportCmd() *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Download the CSV export of all submissions",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, api, err := runtimeAndClientFromCommand(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			out := cmd.OutOrStdout()
			var file *os.File
			if outPath != "" {
				file, err = os.Create(outPath)
				if err != nil {
					return fmt.Errorf("create export file: %w", err)
				}
				defer file.Close()
				out = file
			}
			n, err := api.ExportFormSubmissions(cmd.Context(), out)
			if err != nil {
				return err
			}
			if file != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "Exported %d bytes to %s\n", n, outPath)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outPath, "file", "f", "", "Write to a file instead of stdout")
	return cmd
}
