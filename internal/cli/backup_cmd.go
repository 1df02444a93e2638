package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lumenworks/cmsctl/internal/client"
	"github.com/lumenworks/cmsctl/internal/transport"
)

func newBackupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Export and import backend data",
	}

	cmd.AddCommand(newBackupExportCmd())
	cmd.AddCommand(newBackupImportCmd())
	cmd.AddCommand(newBackupExportTarCmd())
	cmd.AddCommand(newBackupImportTarCmd())
	return cmd
}

// uploadMeter prints a carriage-return progress line to stderr while a
// multipart body streams up.
func uploadMeter(cmd *cobra.Command) transport.ProgressFunc {
	return func(loaded, total int64) {
		if total > 0 {
			fmt.Fprintf(cmd.ErrOrStderr(), "\ruploading %d/%d bytes (%d%%)", loaded, total, loaded*100/total)
		} else {
			fmt.Fprintf(cmd.ErrOrStderr(), "\ruploading %d bytes", loaded)
		}
		if loaded == total {
			fmt.Fprintln(cmd.ErrOrStderr())
		}
	}
}

func newBackupExportCmd() *cobra.Command {
	var collections []string
	var outPath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Download an NDJSON export",
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
			n, err := api.ExportNDJSON(cmd.Context(), collections, out)
			if err != nil {
				return err
			}
			if file != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "Exported %d bytes to %s\n", n, outPath)
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&collections, "collections", nil, "Collections to export (default: all)")
	cmd.Flags().StringVarP(&outPath, "file", "f", "", "Write to a file instead of stdout")
	return cmd
}

func newBackupImportCmd() *cobra.Command {
	var mode string
	var assumeYes bool

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Upload an NDJSON import",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, api, err := runtimeAndClientFromCommand(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			if mode == client.ImportModeReplace {
				ok, err := confirm(cmd, assumeYes, "Replace mode drops existing documents. Continue?")
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
					return nil
				}
			}

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open import file: %w", err)
			}
			defer f.Close()

			result, err := api.ImportNDJSON(cmd.Context(), mode, client.UploadFile{
				Filename: filepath.Base(args[0]),
				Reader:   f,
			}, uploadMeter(cmd))
			if err != nil {
				return err
			}
			printImportResult(cmd, result)
			return nil
		},
	}

	cmd.Flags().StringVar(&mode, "mode", client.ImportModeInsert, "Import mode (insert|upsert|replace)")
	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Skip the replace-mode confirmation")
	return cmd
}

func newBackupExportTarCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export-tar <file>",
		Short: "Download the binary full-dump archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, api, err := runtimeAndClientFromCommand(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			file, err := os.Create(args[0])
			if err != nil {
				return fmt.Errorf("create archive file: %w", err)
			}
			defer file.Close()

			n, err := api.ExportTar(cmd.Context(), file)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d bytes to %s\n", n, args[0])
			return nil
		},
	}
	return cmd
}

func newBackupImportTarCmd() *cobra.Command {
	var assumeYes bool

	cmd := &cobra.Command{
		Use:   "import-tar <file>",
		Short: "Upload a binary full-dump archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, api, err := runtimeAndClientFromCommand(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			ok, err := confirm(cmd, assumeYes, "A full-dump import overwrites backend data. Continue?")
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
				return nil
			}

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open archive file: %w", err)
			}
			defer f.Close()

			result, err := api.ImportTar(cmd.Context(), client.UploadFile{
				Filename: filepath.Base(args[0]),
				Reader:   f,
			}, uploadMeter(cmd))
			if err != nil {
				return err
			}
			printImportResult(cmd, result)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

func printImportResult(cmd *cobra.Command, result client.ImportResult) {
	fmt.Fprintf(cmd.OutOrStdout(), "Imported: %d inserted, %d updated, %d skipped\n",
		result.Inserted, result.Updated, result.Skipped)
	if len(result.Errors) > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "Errors:\n  %s\n", strings.Join(result.Errors, "\n  "))
	}
}
