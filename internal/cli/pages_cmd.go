package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lumenworks/cmsctl/internal/cache"
	"github.com/lumenworks/cmsctl/internal/client"
	"github.com/lumenworks/cmsctl/internal/editor"
	"github.com/lumenworks/cmsctl/internal/output"
)

func newPagesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pages",
		Short: "Manage pages",
	}

	cmd.AddCommand(newPagesListCmd())
	cmd.AddCommand(newPagesGetCmd())
	cmd.AddCommand(newPagesCreateCmd())
	cmd.AddCommand(newPagesUpdateCmd())
	cmd.AddCommand(newPagesDeleteCmd())
	cmd.AddCommand(newPagesLayoutCmd())
	return cmd
}

func newPagesListCmd() *cobra.Command {
	var outputMode string
	var params client.ListPagesParams

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List pages",
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

			resp, err := api.ListPages(cmd.Context(), params)
			if err != nil {
				return err
			}
			if format != output.FormatTable {
				return output.WriteStructured(cmd.OutOrStdout(), format, resp)
			}
			if len(resp.Items) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No pages found.")
				return nil
			}
			rows := make([][]string, 0, len(resp.Items))
			for _, p := range resp.Items {
				rows = append(rows, []string{
					p.ID,
					output.Truncate(p.Title, 40),
					p.Slug,
					p.Status,
					itoa(len(p.Layout)),
					p.UpdatedAt,
				})
			}
			return output.WriteTable(cmd.OutOrStdout(), []string{"ID", "TITLE", "SLUG", "STATUS", "MODULES", "UPDATED_AT"}, rows)
		},
	}

	cmd.Flags().StringVarP(&outputMode, "output", "o", "table", "Output format (table|json|yaml)")
	cmd.Flags().IntVar(&params.Page, "page", 0, "Page number")
	cmd.Flags().IntVar(&params.Limit, "limit", 0, "Page size")
	cmd.Flags().StringVar(&params.Status, "status", "", "Filter by status (draft|published|archived)")
	cmd.Flags().StringVar(&params.Search, "search", "", "Filter by search term")
	return cmd
}

func newPagesGetCmd() *cobra.Command {
	var outputMode string
	var bySlug bool

	cmd := &cobra.Command{
		Use:   "get <id|slug>",
		Short: "Fetch one page (use --slug for the content-expanded view)",
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

			var page client.Page
			if bySlug {
				page, err = api.GetPageBySlug(cmd.Context(), args[0])
			} else {
				page, err = api.GetPage(cmd.Context(), args[0])
			}
			if err != nil {
				return err
			}
			if format != output.FormatTable {
				return output.WriteStructured(cmd.OutOrStdout(), format, page)
			}
			rows := [][]string{{
				page.ID,
				output.Truncate(page.Title, 40),
				page.Slug,
				page.Status,
				output.OrNone(page.PublishedAt),
				itoa(len(page.Layout)),
			}}
			return output.WriteTable(cmd.OutOrStdout(), []string{"ID", "TITLE", "SLUG", "STATUS", "PUBLISHED_AT", "MODULES"}, rows)
		},
	}

	cmd.Flags().StringVarP(&outputMode, "output", "o", "table", "Output format (table|json|yaml)")
	cmd.Flags().BoolVar(&bySlug, "slug", false, "Treat the argument as a slug and expand module content")
	return cmd
}

func newPagesCreateCmd() *cobra.Command {
	var create client.PageCreate

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a page",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, api, err := runtimeAndClientFromCommand(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			page, err := api.CreatePage(cmd.Context(), create)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created page %q (%s)\n", page.Title, page.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&create.Title, "title", "", "Page title")
	cmd.Flags().StringVar(&create.Slug, "slug", "", "URL slug")
	cmd.Flags().StringVar(&create.Excerpt, "excerpt", "", "Short excerpt")
	cmd.Flags().StringVar(&create.MetaTitle, "meta-title", "", "SEO title")
	cmd.Flags().StringVar(&create.MetaDescription, "meta-description", "", "SEO description")
	cmd.Flags().StringVar(&create.CanonicalURL, "canonical-url", "", "Canonical URL")
	cmd.Flags().StringVar(&create.Status, "status", client.StatusDraft, "Initial status (draft|published|archived)")
	return cmd
}

func newPagesUpdateCmd() *cobra.Command {
	var title, slug, excerpt, metaTitle, metaDescription, canonicalURL, status string

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update page settings (only flags you pass are sent)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, api, err := runtimeAndClientFromCommand(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			pages := cache.NewPageService(api)
			session := editor.NewSession(pages, api)
			page, err := api.GetPage(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := session.Load(cmd.Context(), page.Slug, page.ID); err != nil {
				return err
			}
			if err := session.SaveSettings(cmd.Context(), editor.SettingsUpdate{
				Title:           stringPtrFlag(cmd, "title", title),
				Slug:            stringPtrFlag(cmd, "slug", slug),
				Excerpt:         stringPtrFlag(cmd, "excerpt", excerpt),
				MetaTitle:       stringPtrFlag(cmd, "meta-title", metaTitle),
				MetaDescription: stringPtrFlag(cmd, "meta-description", metaDescription),
				CanonicalURL:    stringPtrFlag(cmd, "canonical-url", canonicalURL),
				Status:          stringPtrFlag(cmd, "status", status),
			}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n", session.Message().Text)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Page title")
	cmd.Flags().StringVar(&slug, "slug", "", "URL slug")
	cmd.Flags().StringVar(&excerpt, "excerpt", "", "Short excerpt")
	cmd.Flags().StringVar(&metaTitle, "meta-title", "", "SEO title")
	cmd.Flags().StringVar(&metaDescription, "meta-description", "", "SEO description")
	cmd.Flags().StringVar(&canonicalURL, "canonical-url", "", "Canonical URL")
	cmd.Flags().StringVar(&status, "status", "", "Status (draft|published|archived)")
	return cmd
}

func newPagesDeleteCmd() *cobra.Command {
	var assumeYes bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a page (modules stay untouched)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, api, err := runtimeAndClientFromCommand(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			ok, err := confirm(cmd, assumeYes, fmt.Sprintf("Delete page %s? Its modules are kept", args[0]))
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
				return nil
			}
			resp, err := api.DeletePage(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted page %s\n", resp.ID)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

func newPagesLayoutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Edit a page's ordered module layout",
	}
	cmd.AddCommand(newPagesLayoutAddCmd())
	cmd.AddCommand(newPagesLayoutRemoveCmd())
	cmd.AddCommand(newPagesLayoutReorderCmd())
	return cmd
}

// layoutSession loads an edit session for the page with the given slug.
func layoutSession(cmd *cobra.Command, slug string) (*commandRuntime, *editor.Session, error) {
	rt, api, err := runtimeAndClientFromCommand(cmd)
	if err != nil {
		return nil, nil, err
	}
	pages := cache.NewPageService(api)
	session := editor.NewSession(pages, api)
	if err := session.Load(cmd.Context(), slug, ""); err != nil {
		rt.Close()
		return nil, nil, err
	}
	if session.State() == editor.StateNotFound {
		rt.Close()
		return nil, nil, fmt.Errorf("page %q not found", slug)
	}
	return rt, session, nil
}

func newPagesLayoutAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <page-slug> <module-id>",
		Short: "Append a module to the page layout",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, session, err := layoutSession(cmd, args[0])
			if err != nil {
				return err
			}
			defer rt.Close()
			if err := session.AddModule(cmd.Context(), args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n", session.Message().Text)
			return nil
		},
	}
	return cmd
}

func newPagesLayoutRemoveCmd() *cobra.Command {
	var assumeYes bool

	cmd := &cobra.Command{
		Use:   "remove <page-slug> <module-id>",
		Short: "Remove a module from the page layout",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, session, err := layoutSession(cmd, args[0])
			if err != nil {
				return err
			}
			defer rt.Close()

			ok, err := confirm(cmd, assumeYes, fmt.Sprintf("Remove module %s from page %s?", args[1], args[0]))
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
				return nil
			}
			if err := session.RemoveModule(cmd.Context(), args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n", session.Message().Text)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

func newPagesLayoutReorderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reorder <page-slug> <module-id>...",
		Short: "Rebuild the layout in the given module order",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, session, err := layoutSession(cmd, args[0])
			if err != nil {
				return err
			}
			defer rt.Close()
			if err := session.ReorderModules(cmd.Context(), args[1:]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n", session.Message().Text)
			return nil
		},
	}
	return cmd
}
