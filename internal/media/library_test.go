package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenworks/cmsctl/internal/client"
)

type fakeMediaAPI struct {
	pages map[int]client.MediaList

	listCalls   int
	uploadCalls int
	uploaded    [][]string
	deleted     []string
	uploadErr   error
}

func (f *fakeMediaAPI) ListMedia(ctx context.Context, page, limit int) (client.MediaList, error) {
	f.listCalls++
	list, ok := f.pages[page]
	if !ok {
		return client.MediaList{Page: page, Limit: limit}, nil
	}
	return list, nil
}

func (f *fakeMediaAPI) UploadMediaMulti(ctx context.Context, files []client.UploadFile) ([]client.MediaItem, error) {
	f.uploadCalls++
	names := make([]string, len(files))
	for i, file := range files {
		names[i] = file.Filename
	}
	f.uploaded = append(f.uploaded, names)
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	out := make([]client.MediaItem, len(files))
	for i, name := range names {
		out[i] = client.MediaItem{ID: "srv-" + name, Filename: name}
	}
	return out, nil
}

func (f *fakeMediaAPI) DeleteMedia(ctx context.Context, id string) (client.DeleteResponse, error) {
	f.deleted = append(f.deleted, id)
	return client.DeleteResponse{Message: "deleted", ID: id}, nil
}

func remoteItem(id string, sizeKB int64, uploadedAt string) client.MediaItem {
	return client.MediaItem{ID: id, Filename: id + ".png", SizeKB: sizeKB, UploadedAt: uploadedAt}
}

func newTestLibrary(api *fakeMediaAPI) *Library {
	l := NewLibrary(api)
	l.sleep = func(time.Duration) {}
	return l
}

func writeTempFile(t *testing.T, name string, size int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, make([]byte, size), 0o644))
	return path
}

func TestPaginationBounds(t *testing.T) {
	api := &fakeMediaAPI{pages: map[int]client.MediaList{
		1: {Items: []client.MediaItem{remoteItem("a", 1, "2026-01-01")}, Total: 3, Page: 1, Limit: 1},
		2: {Items: []client.MediaItem{remoteItem("b", 1, "2026-01-02")}, Total: 3, Page: 2, Limit: 1},
		3: {Items: []client.MediaItem{remoteItem("c", 1, "2026-01-03")}, Total: 3, Page: 3, Limit: 1},
	}}
	l := newTestLibrary(api)

	require.NoError(t, l.Load(context.Background(), 1))
	assert.Equal(t, 3, l.TotalPages())
	assert.True(t, l.HasNext())
	assert.False(t, l.HasPrev())

	require.NoError(t, l.NextPage(context.Background()))
	assert.Equal(t, 2, l.Page())
	assert.True(t, l.HasNext())
	assert.True(t, l.HasPrev())

	require.NoError(t, l.NextPage(context.Background()))
	assert.Equal(t, 3, l.Page())
	assert.False(t, l.HasNext())

	calls := api.listCalls
	require.NoError(t, l.NextPage(context.Background()), "past the last page must be a no-op")
	require.NoError(t, l.Load(context.Background(), 99))
	require.NoError(t, l.Load(context.Background(), 0))
	assert.Equal(t, calls, api.listCalls, "out-of-range navigation must not hit the network")
	assert.Equal(t, 3, l.Page())
}

func TestPaginationFallbackWithoutServerTotals(t *testing.T) {
	full := make([]client.MediaItem, DefaultLimit)
	for i := range full {
		full[i] = remoteItem(fmt.Sprintf("m%02d", i), 1, "2026-01-01")
	}
	api := &fakeMediaAPI{pages: map[int]client.MediaList{
		1: {Items: full},
		2: {Items: []client.MediaItem{remoteItem("last", 1, "2026-01-02")}},
	}}
	l := newTestLibrary(api)

	require.NoError(t, l.Load(context.Background(), 1))
	assert.True(t, l.HasNext(), "a full batch implies at least one more page")

	require.NoError(t, l.NextPage(context.Background()))
	assert.False(t, l.HasNext(), "a short batch is the last page")
}

func TestUploadBatchAtomicity(t *testing.T) {
	api := &fakeMediaAPI{pages: map[int]client.MediaList{}}
	l := newTestLibrary(api)
	require.NoError(t, l.Load(context.Background(), 1))

	small := writeTempFile(t, "small.png", 10)
	l.items = append(l.items, Item{Remote: &client.MediaItem{ID: "existing"}})

	oversized := filepath.Join(t.TempDir(), "huge.png")
	f, err := os.Create(oversized)
	require.NoError(t, err)
	require.NoError(t, f.Truncate(MaxUploadBytes+1))
	require.NoError(t, f.Close())

	err = l.Upload(context.Background(), []string{small, oversized})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "huge.png", "the error must list the offending file")
	assert.Zero(t, api.uploadCalls, "no file in a failed batch may be uploaded")
	for _, it := range l.Items() {
		assert.Nil(t, it.Local, "no preview may be staged for a failed batch")
	}
}

func TestUploadSuccessDropsLocalsAndRefreshes(t *testing.T) {
	api := &fakeMediaAPI{pages: map[int]client.MediaList{
		1: {Items: []client.MediaItem{remoteItem("srv-a", 1, "2026-01-01")}, Total: 1, Page: 1, Limit: DefaultLimit},
	}}
	l := newTestLibrary(api)
	require.NoError(t, l.Load(context.Background(), 1))

	a := writeTempFile(t, "a.png", 128)
	b := writeTempFile(t, "b.png", 256)
	require.NoError(t, l.Upload(context.Background(), []string{a, b}))

	require.Len(t, api.uploaded, 1)
	assert.ElementsMatch(t, []string{"a.png", "b.png"}, api.uploaded[0], "the batch goes up in one request")
	for _, it := range l.Items() {
		assert.Nil(t, it.Local, "locals are dropped once the server confirms")
	}
	assert.Equal(t, 2, api.listCalls, "success refreshes the current page")
}

func TestUploadFailureDistinguishesAuth(t *testing.T) {
	path := writeTempFile(t, "a.png", 128)

	t.Run("auth failure", func(t *testing.T) {
		api := &fakeMediaAPI{pages: map[int]client.MediaList{}, uploadErr: fmt.Errorf("%w: bad token", client.ErrUnauthorized)}
		l := newTestLibrary(api)
		require.NoError(t, l.Load(context.Background(), 1))

		err := l.Upload(context.Background(), []string{path})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not authenticated")
		assert.Empty(t, l.Items(), "locals are dropped on failure too")
	})

	t.Run("generic failure", func(t *testing.T) {
		api := &fakeMediaAPI{pages: map[int]client.MediaList{}, uploadErr: fmt.Errorf("connection reset")}
		l := newTestLibrary(api)
		require.NoError(t, l.Load(context.Background(), 1))

		err := l.Upload(context.Background(), []string{path})
		require.Error(t, err)
		assert.NotContains(t, err.Error(), "not authenticated")
		assert.Empty(t, l.Items())
	})
}

func TestDeleteLastItemOnLastPageStepsBack(t *testing.T) {
	api := &fakeMediaAPI{pages: map[int]client.MediaList{
		2: {Items: []client.MediaItem{remoteItem("b", 1, "2026-01-02")}, Total: 3, Page: 2, Limit: 1},
		3: {Items: []client.MediaItem{remoteItem("c", 1, "2026-01-03")}, Total: 3, Page: 3, Limit: 1},
	}}
	l := newTestLibrary(api)
	require.NoError(t, l.Load(context.Background(), 3))
	require.Equal(t, 3, l.Page())

	api.pages[2] = client.MediaList{Items: []client.MediaItem{remoteItem("b", 1, "2026-01-02")}, Total: 2, Page: 2, Limit: 1}
	require.NoError(t, l.Delete(context.Background(), "c", true))

	assert.Equal(t, []string{"c"}, api.deleted)
	assert.Equal(t, 2, l.Page(), "deleting the only item on the last page re-navigates to the previous page")
}

func TestDeleteRequiresConfirmationForRemoteItems(t *testing.T) {
	api := &fakeMediaAPI{pages: map[int]client.MediaList{
		1: {Items: []client.MediaItem{remoteItem("a", 1, "2026-01-01")}, Total: 1, Page: 1, Limit: DefaultLimit},
	}}
	l := newTestLibrary(api)
	require.NoError(t, l.Load(context.Background(), 1))

	require.Error(t, l.Delete(context.Background(), "a", false))
	assert.Empty(t, api.deleted)
}

func TestDeleteLocalItemSkipsServer(t *testing.T) {
	api := &fakeMediaAPI{pages: map[int]client.MediaList{}}
	l := newTestLibrary(api)
	require.NoError(t, l.Load(context.Background(), 1))

	l.items = []Item{{Local: &LocalItem{ID: "local-1", Filename: "staged.png"}}}
	calls := api.listCalls
	require.NoError(t, l.Delete(context.Background(), "local-1", false))
	assert.Empty(t, l.Items())
	assert.Empty(t, api.deleted, "local items never hit the server")
	assert.Equal(t, calls, api.listCalls)
}

func TestSetSortOrdersCurrentPageOnly(t *testing.T) {
	api := &fakeMediaAPI{pages: map[int]client.MediaList{
		1: {Items: []client.MediaItem{
			{ID: "1", Filename: "zebra.png", SizeKB: 10, UploadedAt: "2026-01-03"},
			{ID: "2", Filename: "apple.png", SizeKB: 30, UploadedAt: "2026-01-01"},
			{ID: "3", Filename: "mango.png", SizeKB: 20, UploadedAt: "2026-01-02"},
		}, Total: 3, Page: 1, Limit: DefaultLimit},
	}}
	l := newTestLibrary(api)
	require.NoError(t, l.Load(context.Background(), 1))
	calls := api.listCalls

	require.NoError(t, l.SetSort(SortName, Ascending))
	assert.Equal(t, "apple.png", l.Items()[0].Remote.Filename)
	assert.Equal(t, "zebra.png", l.Items()[2].Remote.Filename)

	require.NoError(t, l.SetSort(SortSize, Descending))
	assert.Equal(t, int64(30), l.Items()[0].Remote.SizeKB)
	assert.Equal(t, int64(10), l.Items()[2].Remote.SizeKB)

	require.Error(t, l.SetSort("color", Ascending))
	assert.Equal(t, calls, api.listCalls, "sorting never refetches")
}

func TestProbeRejectsNonImages(t *testing.T) {
	path := writeTempFile(t, "notes.txt", 64)
	_, err := Probe(path)
	require.Error(t, err)
}

func TestProbeReadsPNGHeader(t *testing.T) {
	// Smallest valid 1x1 grayscale PNG.
	png := []byte{
		0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a,
		0x00, 0x00, 0x00, 0x0d, 0x49, 0x48, 0x44, 0x52,
		0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
		0x08, 0x00, 0x00, 0x00, 0x00, 0x3a, 0x7e, 0x9b,
		0x55, 0x00, 0x00, 0x00, 0x0a, 0x49, 0x44, 0x41,
		0x54, 0x78, 0x9c, 0x63, 0x62, 0x00, 0x00, 0x00,
		0x06, 0x00, 0x03, 0x36, 0x37, 0x7c, 0xa8, 0x00,
		0x00, 0x00, 0x00, 0x49, 0x45, 0x4e, 0x44, 0xae,
		0x42, 0x60, 0x82,
	}
	path := filepath.Join(t.TempDir(), "dot.png")
	require.NoError(t, os.WriteFile(path, png, 0o644))

	info, err := Probe(path)
	require.NoError(t, err)
	assert.Equal(t, "png", info.Format)
	assert.Equal(t, "image/png", info.MimeType)
	assert.Equal(t, 1, info.Width)
	assert.Equal(t, 1, info.Height)
}
