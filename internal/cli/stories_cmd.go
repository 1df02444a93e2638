package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lumenworks/cmsctl/internal/client"
	"github.com/lumenworks/cmsctl/internal/drafts"
	"github.com/lumenworks/cmsctl/internal/output"
)

const storyDraftKind = "story"

func newStoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stories",
		Short: "Manage stories",
	}

	cmd.AddCommand(newStoriesListCmd())
	cmd.AddCommand(newStoriesGetCmd())
	cmd.AddCommand(newStoriesCreateCmd())
	cmd.AddCommand(newStoriesUpdateCmd())
	cmd.AddCommand(newStoriesDeleteCmd())
	cmd.AddCommand(newStoriesDraftCmd())
	return cmd
}

func newStoriesListCmd() *cobra.Command {
	var outputMode string
	var featured bool
	var params client.ListStoriesParams

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stories",
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
			resp, err := api.ListStories(cmd.Context(), params)
			if err != nil {
				return err
			}
			if format != output.FormatTable {
				return output.WriteStructured(cmd.OutOrStdout(), format, resp)
			}
			if len(resp.Items) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No stories found.")
				return nil
			}
			rows := make([][]string, 0, len(resp.Items))
			for _, s := range resp.Items {
				featuredMark := ""
				if s.Featured {
					featuredMark = "*"
				}
				rows = append(rows, []string{
					s.ID,
					output.Truncate(s.Title, 40),
					s.Slug,
					s.Status,
					featuredMark,
					s.UpdatedAt,
				})
			}
			return output.WriteTable(cmd.OutOrStdout(), []string{"ID", "TITLE", "SLUG", "STATUS", "FEATURED", "UPDATED_AT"}, rows)
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

func newStoriesGetCmd() *cobra.Command {
	var outputMode string

	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Fetch one story",
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

			story, err := api.GetStory(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if format == output.FormatTable {
				format = output.FormatYAML
			}
			return output.WriteStructured(cmd.OutOrStdout(), format, story)
		},
	}

	cmd.Flags().StringVarP(&outputMode, "output", "o", "yaml", "Output format (json|yaml)")
	return cmd
}

func newStoriesCreateCmd() *cobra.Command {
	var create client.StoryCreate

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a story",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, api, err := runtimeAndClientFromCommand(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			story, err := api.CreateStory(cmd.Context(), create)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created story %q (%s)\n", story.Title, story.ID)
			return nil
		},
	}

	addStoryCreateFlags(cmd, &create)
	return cmd
}

func addStoryCreateFlags(cmd *cobra.Command, create *client.StoryCreate) {
	cmd.Flags().StringVar(&create.Title, "title", "", "Title")
	cmd.Flags().StringVar(&create.Slug, "slug", "", "URL slug")
	cmd.Flags().StringVar(&create.Body, "body", "", "Body markup")
	cmd.Flags().StringVar(&create.Excerpt, "excerpt", "", "Short excerpt")
	cmd.Flags().StringSliceVar(&create.Tags, "tags", nil, "Tags")
	cmd.Flags().StringVar(&create.Status, "status", client.StatusDraft, "Initial status (draft|published|archived)")
	cmd.Flags().BoolVar(&create.Featured, "featured", false, "Mark as featured")
	cmd.Flags().StringVar(&create.MetaTitle, "meta-title", "", "SEO title")
	cmd.Flags().StringVar(&create.MetaDescription, "meta-description", "", "SEO description")
	cmd.Flags().StringVar(&create.CanonicalURL, "canonical-url", "", "Canonical URL")
}

// storyUpdateFlags collects the update-flag values so both the update
// and draft commands can share one flag surface.
type storyUpdateFlags struct {
	title, slug, body, excerpt    string
	tags                          []string
	status                        string
	featured                      bool
	metaTitle, metaDesc, canonURL string
}

func addStoryUpdateFlags(cmd *cobra.Command, f *storyUpdateFlags) {
	cmd.Flags().StringVar(&f.title, "title", "", "Title")
	cmd.Flags().StringVar(&f.slug, "slug", "", "URL slug")
	cmd.Flags().StringVar(&f.body, "body", "", "Body markup")
	cmd.Flags().StringVar(&f.excerpt, "excerpt", "", "Short excerpt")
	cmd.Flags().StringSliceVar(&f.tags, "tags", nil, "Tags")
	cmd.Flags().StringVar(&f.status, "status", "", "Status (draft|published|archived)")
	cmd.Flags().BoolVar(&f.featured, "featured", false, "Featured flag")
	cmd.Flags().StringVar(&f.metaTitle, "meta-title", "", "SEO title")
	cmd.Flags().StringVar(&f.metaDesc, "meta-description", "", "SEO description")
	cmd.Flags().StringVar(&f.canonURL, "canonical-url", "", "Canonical URL")
}

// snapshot converts set flags into a draft snapshot map. Unset flags are
// absent so they never shadow other sources on merge.
func (f *storyUpdateFlags) snapshot(cmd *cobra.Command) map[string]any {
	snap := map[string]any{}
	if cmd.Flags().Changed("title") {
		snap["title"] = f.title
	}
	if cmd.Flags().Changed("slug") {
		snap["slug"] = f.slug
	}
	if cmd.Flags().Changed("body") {
		snap["body"] = f.body
	}
	if cmd.Flags().Changed("excerpt") {
		snap["excerpt"] = f.excerpt
	}
	if cmd.Flags().Changed("tags") {
		snap["tags"] = f.tags
	}
	if cmd.Flags().Changed("status") {
		snap["status"] = f.status
	}
	if cmd.Flags().Changed("featured") {
		snap["featured"] = f.featured
	}
	if cmd.Flags().Changed("meta-title") {
		snap["metaTitle"] = f.metaTitle
	}
	if cmd.Flags().Changed("meta-description") {
		snap["metaDescription"] = f.metaDesc
	}
	if cmd.Flags().Changed("canonical-url") {
		snap["canonicalUrl"] = f.canonURL
	}
	return snap
}

// storyUpdateFromSnapshot maps snapshot keys onto the partial-update
// payload. Unknown keys are ignored; draft snapshots can carry fields
// from newer form layouts.
func storyUpdateFromSnapshot(snap map[string]any) client.StoryUpdate {
	var update client.StoryUpdate
	if v, ok := snap["title"].(string); ok {
		update.Title = &v
	}
	if v, ok := snap["slug"].(string); ok {
		update.Slug = &v
	}
	if v, ok := snap["body"].(string); ok {
		update.Body = &v
	}
	if v, ok := snap["excerpt"].(string); ok {
		update.Excerpt = &v
	}
	if tags, ok := snapshotTags(snap["tags"]); ok {
		update.Tags = &tags
	}
	if v, ok := snap["status"].(string); ok {
		update.Status = &v
	}
	if v, ok := snap["featured"].(bool); ok {
		update.Featured = &v
	}
	if v, ok := snap["metaTitle"].(string); ok {
		update.MetaTitle = &v
	}
	if v, ok := snap["metaDescription"].(string); ok {
		update.MetaDescription = &v
	}
	if v, ok := snap["canonicalUrl"].(string); ok {
		update.CanonicalURL = &v
	}
	return update
}

// snapshotTags accepts both []string (fresh flags) and []any (snapshots
// round-tripped through JSON).
func snapshotTags(v any) ([]string, bool) {
	switch tags := v.(type) {
	case []string:
		return tags, true
	case []any:
		out := make([]string, 0, len(tags))
		for _, t := range tags {
			s, ok := t.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	}
	return nil, false
}

func newStoriesUpdateCmd() *cobra.Command {
	var flags storyUpdateFlags
	var fromDraft bool

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a story (only flags you pass are sent)",
		Long:  "Update a story. With --from-draft, the locally autosaved draft is merged in first (explicit flags win) and discarded after a successful save.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, api, err := runtimeAndClientFromCommand(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			snap := flags.snapshot(cmd)
			var store *drafts.Store
			if fromDraft {
				store, err = openDraftStore()
				if err != nil {
					return err
				}
				defer store.Close()
				draft, ok, err := store.Load(cmd.Context(), storyDraftKind, args[0])
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("no local draft for story %s", args[0])
				}
				snap = drafts.Merge(draft.Snapshot, snap)
			}
			if len(snap) == 0 {
				return fmt.Errorf("nothing to update: pass at least one field flag")
			}

			story, err := api.UpdateStory(cmd.Context(), args[0], storyUpdateFromSnapshot(snap))
			if err != nil {
				return err
			}
			if store != nil {
				if err := store.Delete(cmd.Context(), storyDraftKind, args[0]); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated story %q (%s)\n", story.Title, story.ID)
			return nil
		},
	}

	addStoryUpdateFlags(cmd, &flags)
	cmd.Flags().BoolVar(&fromDraft, "from-draft", false, "Merge the local autosave draft and discard it on success")
	return cmd
}

func newStoriesDeleteCmd() *cobra.Command {
	var assumeYes bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a story",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, api, err := runtimeAndClientFromCommand(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			ok, err := confirm(cmd, assumeYes, fmt.Sprintf("Delete story %s?", args[0]))
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
				return nil
			}
			resp, err := api.DeleteStory(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted story %s\n", resp.ID)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

func openDraftStore() (*drafts.Store, error) {
	path, err := drafts.DefaultPath()
	if err != nil {
		return nil, err
	}
	return drafts.Open(path)
}

func newStoriesDraftCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "draft",
		Short: "Manage local autosave drafts for stories",
	}
	cmd.AddCommand(newStoriesDraftSaveCmd())
	cmd.AddCommand(newStoriesDraftShowCmd())
	cmd.AddCommand(newStoriesDraftDiscardCmd())
	return cmd
}

func newStoriesDraftSaveCmd() *cobra.Command {
	var flags storyUpdateFlags

	cmd := &cobra.Command{
		Use:   "save <id>",
		Short: "Save field values as a local draft without touching the server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap := flags.snapshot(cmd)
			if len(snap) == 0 {
				return fmt.Errorf("nothing to save: pass at least one field flag")
			}
			store, err := openDraftStore()
			if err != nil {
				return err
			}
			defer store.Close()

			// An existing draft is extended, not replaced, so repeated
			// saves accumulate the way an autosaving form would.
			existing, ok, err := store.Load(cmd.Context(), storyDraftKind, args[0])
			if err != nil {
				return err
			}
			if ok {
				snap = drafts.Merge(existing.Snapshot, snap)
			}
			if err := store.Save(cmd.Context(), storyDraftKind, args[0], snap); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Draft saved for story %s (%d fields)\n", args[0], len(snap))
			return nil
		},
	}

	addStoryUpdateFlags(cmd, &flags)
	return cmd
}

func newStoriesDraftShowCmd() *cobra.Command {
	var outputMode string

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show the local draft for a story",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := output.ParseFormat(outputMode)
			if err != nil {
				return err
			}
			store, err := openDraftStore()
			if err != nil {
				return err
			}
			defer store.Close()

			draft, ok, err := store.Load(cmd.Context(), storyDraftKind, args[0])
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintf(cmd.OutOrStdout(), "No local draft for story %s.\n", args[0])
				return nil
			}
			if format == output.FormatTable {
				format = output.FormatYAML
			}
			return output.WriteStructured(cmd.OutOrStdout(), format, map[string]any{
				"savedAt":  draft.SavedAt.UTC().Format("2006-01-02T15:04:05Z"),
				"snapshot": draft.Snapshot,
			})
		},
	}

	cmd.Flags().StringVarP(&outputMode, "output", "o", "yaml", "Output format (json|yaml)")
	return cmd
}

func newStoriesDraftDiscardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "discard <id>",
		Short: "Discard the local draft for a story",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openDraftStore()
			if err != nil {
				return err
			}
			defer store.Close()
			if err := store.Delete(cmd.Context(), storyDraftKind, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Draft discarded for story %s\n", args[0])
			return nil
		},
	}
	return cmd
}
