package cache

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenworks/cmsctl/internal/client"
)

type fakePageAPI struct {
	listCalls   int
	getCalls    int
	slugCalls   int
	updateCalls int

	slugErr error
}

func (f *fakePageAPI) ListPages(ctx context.Context, params client.ListPagesParams) (client.PageList, error) {
	f.listCalls++
	return client.PageList{Items: []client.Page{{ID: "p1", Slug: "home"}}, Total: 1, Page: params.Page, Limit: params.Limit}, nil
}

func (f *fakePageAPI) GetPage(ctx context.Context, id string) (client.Page, error) {
	f.getCalls++
	return client.Page{ID: id, Slug: "home"}, nil
}

func (f *fakePageAPI) GetPageBySlug(ctx context.Context, slug string) (client.Page, error) {
	f.slugCalls++
	if f.slugErr != nil {
		return client.Page{}, f.slugErr
	}
	return client.Page{ID: "p1", Slug: slug}, nil
}

func (f *fakePageAPI) CreatePage(ctx context.Context, create client.PageCreate) (client.Page, error) {
	return client.Page{ID: "new", Slug: create.Slug}, nil
}

func (f *fakePageAPI) UpdatePage(ctx context.Context, id string, update client.PageUpdate) (client.Page, error) {
	f.updateCalls++
	return client.Page{ID: id}, nil
}

func (f *fakePageAPI) DeletePage(ctx context.Context, id string) (client.DeleteResponse, error) {
	return client.DeleteResponse{Message: "deleted", ID: id}, nil
}

func newServiceAt(api PageAPI, clock *time.Time) *PageService {
	s := NewPageService(api)
	s.now = func() time.Time { return *clock }
	return s
}

func TestRepeatedReadsWithinTTLHitNetworkOnce(t *testing.T) {
	api := &fakePageAPI{}
	clock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := newServiceAt(api, &clock)

	params := client.ListPagesParams{Page: 1, Limit: 10}
	for i := 0; i < 5; i++ {
		out, err := svc.GetPages(context.Background(), params)
		require.NoError(t, err)
		require.Len(t, out.Items, 1)
	}
	assert.Equal(t, 1, api.listCalls, "identical reads within the TTL must share one network call")

	// Different params miss the cache.
	_, err := svc.GetPages(context.Background(), client.ListPagesParams{Page: 2, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 2, api.listCalls)
}

func TestReadsExpireAfterTTL(t *testing.T) {
	api := &fakePageAPI{}
	clock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := newServiceAt(api, &clock)

	_, err := svc.GetPage(context.Background(), "p1")
	require.NoError(t, err)
	clock = clock.Add(DefaultTTL - time.Millisecond)
	_, err = svc.GetPage(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, 1, api.getCalls)

	clock = clock.Add(2 * time.Millisecond)
	_, err = svc.GetPage(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, 2, api.getCalls, "entry written at t=0 must be expired at t=TTL")
}

func TestMutationsInvalidateBeforeCalling(t *testing.T) {
	mutations := map[string]func(svc *PageService) error{
		"update": func(svc *PageService) error {
			title := "T"
			_, err := svc.UpdatePage(context.Background(), "p1", client.PageUpdate{Title: &title})
			return err
		},
		"create": func(svc *PageService) error {
			_, err := svc.CreatePage(context.Background(), client.PageCreate{Title: "T", Slug: "t"})
			return err
		},
		"delete": func(svc *PageService) error {
			_, err := svc.DeletePage(context.Background(), "p1")
			return err
		},
	}

	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			api := &fakePageAPI{}
			clock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
			svc := newServiceAt(api, &clock)

			_, err := svc.GetPage(context.Background(), "p1")
			require.NoError(t, err)
			require.Equal(t, 1, api.getCalls)

			require.NoError(t, mutate(svc))

			_, err = svc.GetPage(context.Background(), "p1")
			require.NoError(t, err)
			assert.Equal(t, 2, api.getCalls, "read after %s must hit the network", name)
		})
	}
}

func TestSlugNotFoundIsCachedAsAbsence(t *testing.T) {
	api := &fakePageAPI{slugErr: fmt.Errorf("%w: no page with slug", client.ErrNotFound)}
	clock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := newServiceAt(api, &clock)

	for i := 0; i < 3; i++ {
		result, err := svc.GetPageBySlug(context.Background(), "missing")
		require.NoError(t, err, "confirmed absence is an outcome, not an error")
		assert.Nil(t, result.Page)
		assert.Equal(t, "Not found", result.Message)
	}
	assert.Equal(t, 1, api.slugCalls, "absence must be cached like any other read")
}

func TestSlugTransportErrorIsNotCached(t *testing.T) {
	api := &fakePageAPI{slugErr: errors.New("connection refused")}
	clock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := newServiceAt(api, &clock)

	_, err := svc.GetPageBySlug(context.Background(), "home")
	require.Error(t, err)
	_, err = svc.GetPageBySlug(context.Background(), "home")
	require.Error(t, err)
	assert.Equal(t, 2, api.slugCalls, "transient failures must not be cached")

	api.slugErr = nil
	result, err := svc.GetPageBySlug(context.Background(), "home")
	require.NoError(t, err)
	require.NotNil(t, result.Page)
	assert.Equal(t, "home", result.Page.Slug)
}
