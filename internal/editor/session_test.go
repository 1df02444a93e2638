package editor

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenworks/cmsctl/internal/cache"
	"github.com/lumenworks/cmsctl/internal/client"
)

// fakeStore backs both PageStore and ModuleStore with one in-memory page.
type fakeStore struct {
	page    client.Page
	modules map[string]client.Module

	slugErr     error
	updateErr   error
	updates     []client.PageUpdate
	invalidated int
	deleted     bool
}

func (f *fakeStore) GetPage(ctx context.Context, id string) (client.Page, error) {
	if f.deleted || id != f.page.ID {
		return client.Page{}, fmt.Errorf("%w: page %s", client.ErrNotFound, id)
	}
	// The shell record carries layout as id+order only.
	shell := f.page
	shell.Layout = make([]client.PageLayoutItem, len(f.page.Layout))
	for i, item := range f.page.Layout {
		shell.Layout[i] = client.PageLayoutItem{ModuleID: item.ModuleID, Order: item.Order}
	}
	return shell, nil
}

func (f *fakeStore) GetPageBySlug(ctx context.Context, slug string) (cache.PageResult, error) {
	if f.slugErr != nil {
		return cache.PageResult{}, f.slugErr
	}
	if f.deleted || slug != f.page.Slug {
		return cache.PageResult{Page: nil, Message: "Not found"}, nil
	}
	page := f.page
	return cache.PageResult{Page: &page}, nil
}

func (f *fakeStore) UpdatePage(ctx context.Context, id string, update client.PageUpdate) (client.Page, error) {
	if f.updateErr != nil {
		return client.Page{}, f.updateErr
	}
	f.updates = append(f.updates, update)
	if update.Layout != nil {
		f.page.Layout = *update.Layout
	}
	if update.Status != nil {
		f.page.Status = *update.Status
	}
	if update.PublishedAt != nil {
		f.page.PublishedAt = update.PublishedAt
	}
	if update.Title != nil {
		f.page.Title = *update.Title
	}
	return f.page, nil
}

func (f *fakeStore) DeletePage(ctx context.Context, id string) (client.DeleteResponse, error) {
	f.deleted = true
	return client.DeleteResponse{Message: "deleted", ID: id}, nil
}

func (f *fakeStore) Invalidate() { f.invalidated++ }

func (f *fakeStore) GetModule(ctx context.Context, id string) (client.Module, error) {
	m, ok := f.modules[id]
	if !ok {
		return client.Module{}, fmt.Errorf("%w: module %s", client.ErrNotFound, id)
	}
	return m, nil
}

func (f *fakeStore) UpdateModule(ctx context.Context, id string, update client.ModuleUpdate) (client.Module, error) {
	m, ok := f.modules[id]
	if !ok {
		return client.Module{}, fmt.Errorf("%w: module %s", client.ErrNotFound, id)
	}
	if update.Content != nil {
		m.Content = *update.Content
	}
	f.modules[id] = m
	return m, nil
}

func layoutOf(ids ...string) []client.PageLayoutItem {
	out := make([]client.PageLayoutItem, len(ids))
	for i, id := range ids {
		out[i] = client.PageLayoutItem{ModuleID: id, Order: i + 1}
	}
	return out
}

func newLoadedSession(t *testing.T, store *fakeStore) *Session {
	t.Helper()
	s := NewSession(store, store)
	require.NoError(t, s.Load(context.Background(), store.page.Slug, store.page.ID))
	require.Equal(t, StateLoaded, s.State())
	return s
}

func assertDenseOrder(t *testing.T, layout []client.PageLayoutItem) {
	t.Helper()
	seen := make(map[string]struct{}, len(layout))
	for i, item := range layout {
		assert.Equal(t, i+1, item.Order, "order must be dense and 1-based")
		_, dup := seen[item.ModuleID]
		assert.False(t, dup, "module %s referenced twice", item.ModuleID)
		seen[item.ModuleID] = struct{}{}
	}
}

func TestLoadStates(t *testing.T) {
	t.Run("loaded", func(t *testing.T) {
		store := &fakeStore{page: client.Page{ID: "p1", Slug: "home", Status: client.StatusPublished, Layout: layoutOf("m1")}}
		s := newLoadedSession(t, store)
		assert.Equal(t, "home", s.Page().Slug)
	})

	t.Run("not found", func(t *testing.T) {
		store := &fakeStore{page: client.Page{ID: "p1", Slug: "home"}}
		s := NewSession(store, store)
		require.NoError(t, s.Load(context.Background(), "missing", ""))
		assert.Equal(t, StateNotFound, s.State())
		assert.Nil(t, s.Page())
	})

	t.Run("falls back to shell on content fetch failure", func(t *testing.T) {
		store := &fakeStore{
			page:    client.Page{ID: "p1", Slug: "home", Layout: layoutOf("m1")},
			slugErr: errors.New("expanded fetch exploded"),
		}
		s := NewSession(store, store)
		require.NoError(t, s.Load(context.Background(), "home", "p1"))
		assert.Equal(t, StateLoaded, s.State())
		require.NotNil(t, s.Page())
		assert.Nil(t, s.Page().Layout[0].Module, "shell fallback has no expanded content")
	})

	t.Run("failed without fallback", func(t *testing.T) {
		store := &fakeStore{page: client.Page{ID: "p1", Slug: "home"}, slugErr: errors.New("boom")}
		s := NewSession(store, store)
		require.Error(t, s.Load(context.Background(), "home", ""))
		assert.Equal(t, StateFailed, s.State())
	})
}

func TestCanEditModulesGuard(t *testing.T) {
	tests := []struct {
		name   string
		status string
		layout []client.PageLayoutItem
		want   bool
	}{
		{name: "draft with empty layout is settings-only", status: client.StatusDraft, layout: nil, want: false},
		{name: "draft with modules", status: client.StatusDraft, layout: layoutOf("m1"), want: true},
		{name: "published with empty layout", status: client.StatusPublished, layout: nil, want: true},
		{name: "archived", status: client.StatusArchived, layout: nil, want: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := &fakeStore{page: client.Page{ID: "p1", Slug: "home", Status: tc.status, Layout: tc.layout}}
			s := newLoadedSession(t, store)
			assert.Equal(t, tc.want, s.CanEditModules())
		})
	}
}

func TestAddModuleKeepsOrderDense(t *testing.T) {
	for _, start := range [][]string{{}, {"m1"}, {"m1", "m2", "m3"}} {
		store := &fakeStore{page: client.Page{ID: "p1", Slug: "home", Status: client.StatusPublished, Layout: layoutOf(start...)}}
		s := newLoadedSession(t, store)

		require.NoError(t, s.AddModule(context.Background(), "mNew"))
		assert.Len(t, store.page.Layout, len(start)+1)
		assertDenseOrder(t, store.page.Layout)
		assert.Equal(t, "mNew", store.page.Layout[len(start)].ModuleID)
		require.NotNil(t, s.Message())
		assert.Equal(t, MessageSuccess, s.Message().Kind)
		assert.Positive(t, store.invalidated, "add must drop cached reads before re-fetching")
	}
}

func TestAddModuleRejectsDuplicate(t *testing.T) {
	store := &fakeStore{page: client.Page{ID: "p1", Slug: "home", Status: client.StatusPublished, Layout: layoutOf("m1")}}
	s := newLoadedSession(t, store)

	err := s.AddModule(context.Background(), "m1")
	require.Error(t, err)
	require.NotNil(t, s.Message())
	assert.Equal(t, MessageError, s.Message().Kind)
	assert.Len(t, store.page.Layout, 1, "failed add must not persist")
}

func TestRemoveModuleRenumbersFromOne(t *testing.T) {
	store := &fakeStore{page: client.Page{ID: "p1", Slug: "home", Status: client.StatusPublished, Layout: layoutOf("m1", "m2", "m3")}}
	s := newLoadedSession(t, store)

	require.NoError(t, s.RemoveModule(context.Background(), "m2"))
	require.Len(t, store.page.Layout, 2)
	assertDenseOrder(t, store.page.Layout)
	assert.Equal(t, "m1", store.page.Layout[0].ModuleID)
	assert.Equal(t, "m3", store.page.Layout[1].ModuleID)

	err := s.RemoveModule(context.Background(), "mX")
	require.Error(t, err)
	assert.Equal(t, MessageError, s.Message().Kind)
}

func TestReorderModulesRebuildsFullList(t *testing.T) {
	store := &fakeStore{page: client.Page{ID: "p1", Slug: "home", Status: client.StatusPublished, Layout: layoutOf("m1", "m2", "m3")}}
	s := newLoadedSession(t, store)

	require.NoError(t, s.ReorderModules(context.Background(), []string{"m3", "m1", "m2"}))
	require.Len(t, store.page.Layout, 3)
	assertDenseOrder(t, store.page.Layout)
	assert.Equal(t, "m3", store.page.Layout[0].ModuleID)
	assert.Equal(t, "m1", store.page.Layout[1].ModuleID)
	assert.Equal(t, "m2", store.page.Layout[2].ModuleID)
}

func TestReorderModulesRejectsNonPermutations(t *testing.T) {
	store := &fakeStore{page: client.Page{ID: "p1", Slug: "home", Status: client.StatusPublished, Layout: layoutOf("m1", "m2")}}
	s := newLoadedSession(t, store)

	require.Error(t, s.ReorderModules(context.Background(), []string{"m1"}))
	require.Error(t, s.ReorderModules(context.Background(), []string{"m1", "mX"}))
	require.Error(t, s.ReorderModules(context.Background(), []string{"m1", "m1"}))
	assertDenseOrder(t, store.page.Layout)
}

func TestSaveSettingsStampsPublishedAtOnlyOnTransition(t *testing.T) {
	t.Run("draft to published", func(t *testing.T) {
		store := &fakeStore{page: client.Page{ID: "p1", Slug: "home", Status: client.StatusDraft, Layout: layoutOf("m1")}}
		s := newLoadedSession(t, store)

		status := client.StatusPublished
		require.NoError(t, s.SaveSettings(context.Background(), SettingsUpdate{Status: &status}))
		require.Len(t, store.updates, 1)
		require.NotNil(t, store.updates[0].Status)
		assert.Equal(t, client.StatusPublished, *store.updates[0].Status)
		assert.NotNil(t, store.updates[0].PublishedAt, "transition into published stamps publishedAt")
	})

	t.Run("published stays published", func(t *testing.T) {
		published := "2026-01-01T00:00:00Z"
		store := &fakeStore{page: client.Page{ID: "p1", Slug: "home", Status: client.StatusPublished, PublishedAt: &published, Layout: layoutOf("m1")}}
		s := newLoadedSession(t, store)

		status := client.StatusPublished
		title := "New title"
		require.NoError(t, s.SaveSettings(context.Background(), SettingsUpdate{Status: &status, Title: &title}))
		require.Len(t, store.updates, 1)
		assert.Nil(t, store.updates[0].PublishedAt, "status-preserving edit must not overwrite publishedAt")
		assert.Equal(t, published, *store.page.PublishedAt)
	})
}

func TestSaveModuleContentUpdatesModuleAndReloads(t *testing.T) {
	store := &fakeStore{
		page:    client.Page{ID: "p1", Slug: "home", Status: client.StatusPublished, Layout: layoutOf("m1")},
		modules: map[string]client.Module{"m1": {ID: "m1", Type: "hero", Content: map[string]any{"title": "Old"}}},
	}
	s := newLoadedSession(t, store)

	require.NoError(t, s.SaveModuleContent(context.Background(), "m1", map[string]any{"title": "New"}))
	assert.Equal(t, "New", store.modules["m1"].Content["title"])
	assert.Equal(t, MessageSuccess, s.Message().Kind)
	assert.Positive(t, store.invalidated)
}

func TestDeletePageRequiresConfirmation(t *testing.T) {
	store := &fakeStore{page: client.Page{ID: "p1", Slug: "home", Status: client.StatusPublished}}
	s := newLoadedSession(t, store)

	require.Error(t, s.DeletePage(context.Background(), false))
	assert.False(t, store.deleted)

	require.NoError(t, s.DeletePage(context.Background(), true))
	assert.True(t, store.deleted)
	assert.Equal(t, StateNotFound, s.State())
}

func TestFailedMutationRecordsInlineError(t *testing.T) {
	store := &fakeStore{
		page:      client.Page{ID: "p1", Slug: "home", Status: client.StatusPublished, Layout: layoutOf("m1")},
		updateErr: errors.New("server unavailable"),
	}
	s := newLoadedSession(t, store)

	err := s.AddModule(context.Background(), "m2")
	require.Error(t, err)
	require.NotNil(t, s.Message())
	assert.Equal(t, MessageError, s.Message().Kind)
	assert.Contains(t, s.Message().Text, "server unavailable")
	assert.Equal(t, StateLoaded, s.State(), "failed mutation leaves the session editable")
}
