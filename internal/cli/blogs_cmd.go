package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lumenworks/cmsctl/internal/client"
	"github.com/lumenworks/cmsctl/internal/output"
)

// Blogs share the story payload shapes; only the endpoints differ, plus
// the slug lookup the public site uses.
func newBlogsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "blogs",
		Short: "Manage blog posts",
	}

	cmd.AddCommand(newBlogsListCmd())
	cmd.AddCommand(newBlogsGetCmd())
	cmd.AddCommand(newBlogsCreateCmd())
	cmd.AddCommand(newBlogsUpdateCmd())
	cmd.AddCommand(newBlogsDeleteCmd())
	return cmd
}

func newBlogsListCmd() *cobra.Command {
	var outputMode string
	var featured bool
	var params client.ListStoriesParams

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List blog posts",
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

			params.Featured = boolPtrFlag(cmd, "featured", featured)
			resp, err := api.ListBlogs(cmd.Context(), params)
			if err != nil {
				return err
			}
			if format != output.FormatTable {
				return output.WriteStructured(cmd.OutOrStdout(), format, resp)
			}
			if len(resp.Items) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No blog posts found.")
				return nil
			}
			rows := make([][]string, 0, len(resp.Items))
			for _, b := range resp.Items {
				rows = append(rows, []string{
					b.ID,
					output.Truncate(b.Title, 40),
					b.Slug,
					b.Status,
					output.OrNone(b.PublishedAt),
				})
			}
			return output.WriteTable(cmd.OutOrStdout(), []string{"ID", "TITLE", "SLUG", "STATUS", "PUBLISHED_AT"}, rows)
		},
	}

	cmd.Flags().StringVarP(&outputMode, "output", "o", "table", "Output format (table|json|yaml)")
	cmd.Flags().IntVar(&params.Page, "page", 0, "Page number")
	cmd.Flags().IntVar(&params.Limit, "limit", 0, "Page size")
	cmd.Flags().StringVar(&params.Status, "status", "", "Filter by status (draft|published|archived)")
	cmd.Flags().StringVar(&params.Search, "search", "", "Filter by search term")
	cmd.Flags().StringVar(&params.SortBy, "sort-by", "", "Sort field")
	cmd.Flags().StringVar(&params.SortOrder, "sort-order", "", "Sort order (asc|desc)")
	cmd.Flags().BoolVar(&featured, "featured", false, "Filter by featured flag")
	return cmd
}

func newBlogsGetCmd() *cobra.Command {
	var outputMode string
	var bySlug bool

	cmd := &cobra.Command{
		Use:   "get <id|slug>",
		Short: "Fetch one blog post",
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

			var blog client.Blog
			if bySlug {
				blog, err = api.GetBlogBySlug(cmd.Context(), args[0])
			} else {
				blog, err = api.GetBlog(cmd.Context(), args[0])
			}
			if err != nil {
				return err
			}
			if format == output.FormatTable {
				format = output.FormatYAML
			}
			return output.WriteStructured(cmd.OutOrStdout(), format, blog)
		},
	}

	cmd.Flags().StringVarP(&outputMode, "output", "o", "yaml", "Output format (json|yaml)")
	cmd.Flags().BoolVar(&bySlug, "slug", false, "Treat the argument as a slug")
	return cmd
}

func newBlogsCreateCmd() *cobra.Command {
	var create client.StoryCreate

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a blog post",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, api, err := runtimeAndClientFromCommand(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			blog, err := api.CreateBlog(cmd.Context(), create)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created blog post %q (%s)\n", blog.Title, blog.ID)
			return nil
		},
	}

	addStoryCreateFlags(cmd, &create)
	return cmd
}

func newBlogsUpdateCmd() *cobra.Command {
	var flags storyUpdateFlags

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a blog post (only flags you pass are sent)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, api, err := runtimeAndClientFromCommand(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			snap := flags.snapshot(cmd)
			if len(snap) == 0 {
				return fmt.Errorf("nothing to update: pass at least one field flag")
			}
			blog, err := api.UpdateBlog(cmd.Context(), args[0], storyUpdateFromSnapshot(snap))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated blog post %q (%s)\n", blog.Title, blog.ID)
			return nil
		},
	}

	addStoryUpdateFlags(cmd, &flags)
	return cmd
}

func newBlogsDeleteCmd() *cobra.Command {
	var assumeYes bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a blog post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, api, err := runtimeAndClientFromCommand(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			ok, err := confirm(cmd, assumeYes, fmt.Sprintf("Delete blog post %s?", args[0]))
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
				return nil
			}
			resp, err := api.DeleteBlog(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted blog post %s\n", resp.ID)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}
