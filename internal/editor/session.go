// Package editor drives a page-edit session: loading the page, editing
// its settings, and mutating its ordered module layout. Every layout
// operation is a full read-modify-write of the layout array; re-fetching
// immediately before mutating narrows the race with a concurrent editor
// but does not eliminate it — last writer wins.
package editor

import (
	"context"
	"fmt"
	"time"

	"github.com/lumenworks/cmsctl/internal/cache"
	"github.com/lumenworks/cmsctl/internal/client"
)

type State int

const (
	StateLoading State = iota
	StateLoaded
	StateNotFound
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	case StateNotFound:
		return "not-found"
	case StateFailed:
		return "error"
	default:
		return "unknown"
	}
}

type MessageKind string

const (
	MessageSuccess MessageKind = "success"
	MessageError   MessageKind = "error"
)

// Message is the inline feedback shown after each mutating action.
type Message struct {
	Kind MessageKind
	Text string
}

// PageStore is the cached page access the session works through.
type PageStore interface {
	GetPage(ctx context.Context, id string) (client.Page, error)
	GetPageBySlug(ctx context.Context, slug string) (cache.PageResult, error)
	UpdatePage(ctx context.Context, id string, update client.PageUpdate) (client.Page, error)
	DeletePage(ctx context.Context, id string) (client.DeleteResponse, error)
	Invalidate()
}

// ModuleStore is the module access used for inline content editing.
type ModuleStore interface {
	GetModule(ctx context.Context, id string) (client.Module, error)
	UpdateModule(ctx context.Context, id string, update client.ModuleUpdate) (client.Module, error)
}

type Session struct {
	pages   PageStore
	modules ModuleStore
	now     func() time.Time

	state   State
	page    *client.Page
	slug    string
	message *Message
}

func NewSession(pages PageStore, modules ModuleStore) *Session {
	return &Session{pages: pages, modules: modules, now: time.Now, state: StateLoading}
}

func (s *Session) State() State { return s.state }

// Page returns the loaded page, nil outside StateLoaded.
func (s *Session) Page() *client.Page { return s.page }

// Message returns the latest inline message, nil when none is pending.
func (s *Session) Message() *Message { return s.message }

func (s *Session) ClearMessage() { s.message = nil }

// Load fetches the page with expanded module content by slug. When the
// content-rich fetch fails and a fallback id is known, the plain page
// shell (layout as id+order only) keeps the settings view usable.
func (s *Session) Load(ctx context.Context, slug, fallbackID string) error {
	s.state = StateLoading
	s.slug = slug

	result, err := s.pages.GetPageBySlug(ctx, slug)
	if err != nil {
		if fallbackID != "" {
			if shell, shellErr := s.pages.GetPage(ctx, fallbackID); shellErr == nil {
				s.page = &shell
				s.state = StateLoaded
				return nil
			}
		}
		s.state = StateFailed
		s.page = nil
		return fmt.Errorf("load page %q: %w", slug, err)
	}
	if result.Page == nil {
		s.state = StateNotFound
		s.page = nil
		return nil
	}
	s.page = result.Page
	s.state = StateLoaded
	return nil
}

// CanEditModules gates the modules view: an unpublished draft with an
// empty layout gets settings only. This is a UX rule, not a security
// boundary; the backend enforces nothing here.
func (s *Session) CanEditModules() bool {
	if s.state != StateLoaded || s.page == nil {
		return false
	}
	return s.page.Status != client.StatusDraft || len(s.page.Layout) > 0
}

// AddModule appends a module reference to the layout. The page is
// re-fetched first so the appended order is based on the server's current
// layout, not a stale local copy.
func (s *Session) AddModule(ctx context.Context, moduleID string) error {
	return s.mutateLayout(ctx, fmt.Sprintf("Module %s added", moduleID), func(layout []client.PageLayoutItem) ([]client.PageLayoutItem, error) {
		for _, item := range layout {
			if item.ModuleID == moduleID {
				return nil, fmt.Errorf("module %s is already in the layout", moduleID)
			}
		}
		return append(layout, client.PageLayoutItem{ModuleID: moduleID, Order: len(layout) + 1}), nil
	})
}

// RemoveModule drops a module reference and renumbers the remaining
// entries densely from 1.
func (s *Session) RemoveModule(ctx context.Context, moduleID string) error {
	return s.mutateLayout(ctx, fmt.Sprintf("Module %s removed", moduleID), func(layout []client.PageLayoutItem) ([]client.PageLayoutItem, error) {
		kept := layout[:0]
		found := false
		for _, item := range layout {
			if item.ModuleID == moduleID {
				found = true
				continue
			}
			kept = append(kept, item)
		}
		if !found {
			return nil, fmt.Errorf("module %s is not in the layout", moduleID)
		}
		return kept, nil
	})
}

// ReorderModules rebuilds the layout from a full ordered id list. The
// list must be a permutation of the current layout's module ids.
func (s *Session) ReorderModules(ctx context.Context, orderedIDs []string) error {
	return s.mutateLayout(ctx, "Layout reordered", func(layout []client.PageLayoutItem) ([]client.PageLayoutItem, error) {
		byID := make(map[string]client.PageLayoutItem, len(layout))
		for _, item := range layout {
			byID[item.ModuleID] = item
		}
		if len(orderedIDs) != len(layout) {
			return nil, fmt.Errorf("reorder list has %d entries, layout has %d", len(orderedIDs), len(layout))
		}
		next := make([]client.PageLayoutItem, 0, len(orderedIDs))
		for _, id := range orderedIDs {
			item, ok := byID[id]
			if !ok {
				return nil, fmt.Errorf("module %s is not in the layout", id)
			}
			delete(byID, id)
			next = append(next, item)
		}
		return next, nil
	})
}

// mutateLayout is the shared read-modify-write cycle: drop cached reads,
// re-fetch the shell, transform the layout, renumber densely, persist the
// whole array, then reload the content-rich view.
func (s *Session) mutateLayout(ctx context.Context, successText string, transform func([]client.PageLayoutItem) ([]client.PageLayoutItem, error)) error {
	if s.state != StateLoaded || s.page == nil {
		return fmt.Errorf("no page loaded")
	}
	pageID := s.page.ID

	s.pages.Invalidate()
	fresh, err := s.pages.GetPage(ctx, pageID)
	if err != nil {
		return s.fail(fmt.Errorf("refresh page before layout change: %w", err))
	}

	next, err := transform(fresh.Layout)
	if err != nil {
		return s.fail(err)
	}
	next = renumber(next)

	if _, err := s.pages.UpdatePage(ctx, pageID, client.PageUpdate{Layout: &next}); err != nil {
		return s.fail(fmt.Errorf("save layout: %w", err))
	}
	if err := s.reload(ctx); err != nil {
		return s.fail(err)
	}
	s.message = &Message{Kind: MessageSuccess, Text: successText}
	return nil
}

// renumber restores the density invariant: orders are exactly 1..N in
// slice order.
func renumber(layout []client.PageLayoutItem) []client.PageLayoutItem {
	out := make([]client.PageLayoutItem, len(layout))
	for i, item := range layout {
		item.Order = i + 1
		out[i] = item
	}
	return out
}

// SettingsUpdate is the settings-view form payload. Nil fields are
// untouched.
type SettingsUpdate struct {
	Title           *string
	Slug            *string
	Excerpt         *string
	MetaTitle       *string
	MetaDescription *string
	CanonicalURL    *string
	Status          *string
}

// SaveSettings persists a partial page update. PublishedAt is stamped
// only on a transition into published from a non-published status; an
// edit that keeps the page published never overwrites the original
// publish timestamp.
func (s *Session) SaveSettings(ctx context.Context, upd SettingsUpdate) error {
	if s.state != StateLoaded || s.page == nil {
		return fmt.Errorf("no page loaded")
	}
	update := client.PageUpdate{
		Title:           upd.Title,
		Slug:            upd.Slug,
		Excerpt:         upd.Excerpt,
		MetaTitle:       upd.MetaTitle,
		MetaDescription: upd.MetaDescription,
		CanonicalURL:    upd.CanonicalURL,
		Status:          upd.Status,
	}
	if upd.Status != nil && *upd.Status == client.StatusPublished && s.page.Status != client.StatusPublished {
		now := s.now().UTC().Format(time.RFC3339)
		update.PublishedAt = &now
	}

	if _, err := s.pages.UpdatePage(ctx, s.page.ID, update); err != nil {
		return s.fail(fmt.Errorf("save settings: %w", err))
	}
	if upd.Slug != nil {
		s.slug = *upd.Slug
	}
	if err := s.reload(ctx); err != nil {
		return s.fail(err)
	}
	s.message = &Message{Kind: MessageSuccess, Text: "Page settings saved"}
	return nil
}

// SaveModuleContent updates a module's content in place, independent of
// the page/layout cycle, then refreshes the whole page view so expanded
// layout snapshots match.
func (s *Session) SaveModuleContent(ctx context.Context, moduleID string, content map[string]any) error {
	if s.state != StateLoaded || s.page == nil {
		return fmt.Errorf("no page loaded")
	}
	if _, err := s.modules.UpdateModule(ctx, moduleID, client.ModuleUpdate{Content: &content}); err != nil {
		return s.fail(fmt.Errorf("save module %s: %w", moduleID, err))
	}
	s.pages.Invalidate()
	if err := s.reload(ctx); err != nil {
		return s.fail(err)
	}
	s.message = &Message{Kind: MessageSuccess, Text: fmt.Sprintf("Module %s saved", moduleID)}
	return nil
}

// DeletePage permanently removes the page after explicit confirmation.
// Modules referenced by the layout stay untouched; the confirmation text
// shown to the operator says so.
func (s *Session) DeletePage(ctx context.Context, confirmed bool) error {
	if s.state != StateLoaded || s.page == nil {
		return fmt.Errorf("no page loaded")
	}
	if !confirmed {
		return fmt.Errorf("delete requires confirmation")
	}
	if _, err := s.pages.DeletePage(ctx, s.page.ID); err != nil {
		return s.fail(fmt.Errorf("delete page: %w", err))
	}
	s.page = nil
	s.state = StateNotFound
	s.message = &Message{Kind: MessageSuccess, Text: "Page deleted"}
	return nil
}

func (s *Session) reload(ctx context.Context) error {
	result, err := s.pages.GetPageBySlug(ctx, s.slug)
	if err != nil {
		return fmt.Errorf("reload page %q: %w", s.slug, err)
	}
	if result.Page == nil {
		s.state = StateNotFound
		s.page = nil
		return fmt.Errorf("page %q no longer exists", s.slug)
	}
	s.page = result.Page
	s.state = StateLoaded
	return nil
}

// fail records the inline error message and returns err unchanged, so
// callers surface it and the view shows it.
func (s *Session) fail(err error) error {
	s.message = &Message{Kind: MessageError, Text: err.Error()}
	return err
}
