package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lumenworks/cmsctl/internal/media"
	"github.com/lumenworks/cmsctl/internal/output"
)

func newMediaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "media",
		Short: "Manage the media library",
	}

	cmd.AddCommand(newMediaListCmd())
	cmd.AddCommand(newMediaUploadCmd())
	cmd.AddCommand(newMediaDeleteCmd())
	return cmd
}

func newMediaListCmd() *cobra.Command {
	var outputMode, sortKey, sortOrder string
	var page int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List one page of the media library",
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

			lib := media.NewLibrary(api)
			if err := lib.Load(cmd.Context(), page); err != nil {
				return err
			}
			if err := lib.SetSort(media.SortKey(sortKey), media.SortOrder(sortOrder)); err != nil {
				return err
			}

			items := lib.Items()
			if format != output.FormatTable {
				remote := make([]any, 0, len(items))
				for _, it := range items {
					if it.Remote != nil {
						remote = append(remote, it.Remote)
					}
				}
				return output.WriteStructured(cmd.OutOrStdout(), format, remote)
			}
			if len(items) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Media library is empty.")
				return nil
			}
			rows := make([][]string, 0, len(items))
			for _, it := range items {
				if it.Remote == nil {
					continue
				}
				rows = append(rows, []string{
					it.Remote.ID,
					output.Truncate(it.Remote.Filename, 40),
					it.Remote.MimeType,
					output.KB(it.Remote.SizeKB),
					it.Remote.UploadedAt,
				})
			}
			if err := output.WriteTable(cmd.OutOrStdout(), []string{"ID", "FILENAME", "TYPE", "SIZE", "UPLOADED_AT"}, rows); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Page %d of %d (%d items total)\n", lib.Page(), lib.TotalPages(), lib.Total())
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputMode, "output", "o", "table", "Output format (table|json|yaml)")
	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	cmd.Flags().StringVar(&sortKey, "sort", string(media.SortDate), "Sort key (name|date|size)")
	cmd.Flags().StringVar(&sortOrder, "order", string(media.Descending), "Sort order (asc|desc)")
	return cmd
}

func newMediaUploadCmd() *cobra.Command {
	var probeFirst bool

	cmd := &cobra.Command{
		Use:   "upload <file>...",
		Short: "Upload files (all-or-nothing per batch, 50MB per-file limit)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if probeFirst {
				for _, path := range args {
					info, err := media.Probe(path)
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%s: %s %dx%d\n", path, info.MimeType, info.Width, info.Height)
				}
			}

			rt, api, err := runtimeAndClientFromCommand(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			lib := media.NewLibrary(api)
			if err := lib.Load(cmd.Context(), 1); err != nil {
				return err
			}
			if err := lib.Upload(cmd.Context(), args); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Uploaded %d file(s)\n", len(args))
			return nil
		},
	}

	cmd.Flags().BoolVar(&probeFirst, "probe", false, "Reject files that are not decodable images before uploading")
	return cmd
}

func newMediaDeleteCmd() *cobra.Command {
	var assumeYes bool
	var page int

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a media item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, api, err := runtimeAndClientFromCommand(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			lib := media.NewLibrary(api)
			if err := lib.Load(cmd.Context(), page); err != nil {
				return err
			}
			ok, err := confirm(cmd, assumeYes, fmt.Sprintf("Delete media %s?", args[0]))
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
				return nil
			}
			if err := lib.Delete(cmd.Context(), args[0], true); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted media %s (now on page %d of %d)\n", args[0], lib.Page(), lib.TotalPages())
			return nil
		},
	}

	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Skip the confirmation prompt")
	cmd.Flags().IntVar(&page, "page", 1, "Library page the item is on")
	return cmd
}
