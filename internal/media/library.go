// Package media implements the media library workflow: paginated
// listing, batch upload with optimistic local previews, and confirmed
// deletion with re-pagination.
package media

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/lumenworks/cmsctl/internal/client"
	"github.com/lumenworks/cmsctl/internal/ids"
)

// MaxUploadBytes is the per-file ceiling checked before any network call.
const MaxUploadBytes = 50 << 20

// DefaultLimit matches the backend's default page size.
const DefaultLimit = 24

// settleDelay gives the backend time to index freshly stored files
// before the post-upload refresh.
const settleDelay = 1500 * time.Millisecond

// MediaAPI is the server surface the library drives.
type MediaAPI interface {
	ListMedia(ctx context.Context, page, limit int) (client.MediaList, error)
	UploadMediaMulti(ctx context.Context, files []client.UploadFile) ([]client.MediaItem, error)
	DeleteMedia(ctx context.Context, id string) (client.DeleteResponse, error)
}

// LocalItem is an optimistic preview for a staged file the server has
// not confirmed yet. Its id is client-generated and never a server id.
type LocalItem struct {
	ID       string
	Path     string
	Filename string
	SizeKB   int64
	StagedAt time.Time
}

// Item is one library entry: exactly one of Local or Remote is set.
type Item struct {
	Local  *LocalItem
	Remote *client.MediaItem
}

func (it Item) filename() string {
	if it.Local != nil {
		return it.Local.Filename
	}
	return it.Remote.Filename
}

func (it Item) sizeKB() int64 {
	if it.Local != nil {
		return it.Local.SizeKB
	}
	return it.Remote.SizeKB
}

func (it Item) sortTime() string {
	if it.Local != nil {
		return it.Local.StagedAt.UTC().Format(time.RFC3339Nano)
	}
	return it.Remote.UploadedAt
}

type SortKey string

const (
	SortName SortKey = "name"
	SortDate SortKey = "date"
	SortSize SortKey = "size"
)

type SortOrder string

const (
	Ascending  SortOrder = "asc"
	Descending SortOrder = "desc"
)

// Library holds one page of media items plus pagination state. Sorting
// is applied to the current page only, never globally.
type Library struct {
	api   MediaAPI
	limit int

	page       int
	totalPages int
	total      int
	items      []Item

	sortKey   SortKey
	sortOrder SortOrder

	now    func() time.Time
	sleep  func(time.Duration)
	settle time.Duration
}

func NewLibrary(api MediaAPI) *Library {
	return &Library{
		api:        api,
		limit:      DefaultLimit,
		page:       1,
		totalPages: 1,
		sortKey:    SortDate,
		sortOrder:  Descending,
		now:        time.Now,
		sleep:      time.Sleep,
		settle:     settleDelay,
	}
}

func (l *Library) Items() []Item   { return l.items }
func (l *Library) Page() int       { return l.page }
func (l *Library) TotalPages() int { return l.totalPages }
func (l *Library) Total() int      { return l.total }

func (l *Library) HasNext() bool { return l.page < l.totalPages }
func (l *Library) HasPrev() bool { return l.page > 1 }

// Load fetches the given page. Out-of-range pages are a no-op: no
// request is made and the current view is untouched.
func (l *Library) Load(ctx context.Context, page int) error {
	if page < 1 || (l.totalPages > 0 && page > l.totalPages && l.items != nil) {
		return nil
	}
	list, err := l.api.ListMedia(ctx, page, l.limit)
	if err != nil {
		return fmt.Errorf("list media: %w", err)
	}

	l.page = page
	if list.Page > 0 {
		l.page = list.Page
	}
	l.total = list.Total
	l.totalPages = pagesFor(list, l.limit, l.page)

	l.items = make([]Item, 0, len(list.Items))
	for i := range list.Items {
		remote := list.Items[i]
		l.items = append(l.items, Item{Remote: &remote})
	}
	l.applySort()
	return nil
}

// pagesFor prefers the server-reported totals and falls back to
// inference from the batch size when the server omits them: a full page
// implies at least one more, a short page is the last.
func pagesFor(list client.MediaList, limit, page int) int {
	effLimit := list.Limit
	if effLimit <= 0 {
		effLimit = limit
	}
	if list.Total > 0 && effLimit > 0 {
		pages := (list.Total + effLimit - 1) / effLimit
		if pages < 1 {
			pages = 1
		}
		return pages
	}
	if len(list.Items) == effLimit && effLimit > 0 {
		return page + 1
	}
	return page
}

func (l *Library) NextPage(ctx context.Context) error {
	if !l.HasNext() {
		return nil
	}
	return l.Load(ctx, l.page+1)
}

func (l *Library) PrevPage(ctx context.Context) error {
	if !l.HasPrev() {
		return nil
	}
	return l.Load(ctx, l.page-1)
}

// SetSort re-sorts the current page in place. It never refetches.
func (l *Library) SetSort(key SortKey, order SortOrder) error {
	switch key {
	case SortName, SortDate, SortSize:
	default:
		return fmt.Errorf("unknown sort key %q", key)
	}
	switch order {
	case Ascending, Descending:
	default:
		return fmt.Errorf("unknown sort order %q", order)
	}
	l.sortKey = key
	l.sortOrder = order
	l.applySort()
	return nil
}

func (l *Library) applySort() {
	less := func(a, b Item) bool {
		switch l.sortKey {
		case SortName:
			return strings.ToLower(a.filename()) < strings.ToLower(b.filename())
		case SortSize:
			return a.sizeKB() < b.sizeKB()
		default:
			return a.sortTime() < b.sortTime()
		}
	}
	sort.SliceStable(l.items, func(i, j int) bool {
		if l.sortOrder == Descending {
			return less(l.items[j], l.items[i])
		}
		return less(l.items[i], l.items[j])
	})
}

// Upload stages and uploads a batch of files. Size validation is
// all-or-nothing: one oversized file aborts the whole batch before
// anything is staged or sent. Accepted files appear as local preview
// items until the server answers; the batch itself also succeeds or
// fails as a unit.
func (l *Library) Upload(ctx context.Context, paths []string) error {
	if len(paths) == 0 {
		return fmt.Errorf("no files selected")
	}

	type staged struct {
		path string
		name string
		size int64
	}
	batch := make([]staged, 0, len(paths))
	var oversized []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("stat %s: %w", path, err)
		}
		if info.Size() > MaxUploadBytes {
			oversized = append(oversized, info.Name())
		}
		batch = append(batch, staged{path: path, name: info.Name(), size: info.Size()})
	}
	if len(oversized) > 0 {
		return fmt.Errorf("upload aborted, files exceed the 50MB limit: %s", strings.Join(oversized, ", "))
	}

	locals := make([]string, 0, len(batch))
	for _, f := range batch {
		id, err := ids.New(l.now())
		if err != nil {
			return err
		}
		locals = append(locals, id)
		l.items = append([]Item{{Local: &LocalItem{
			ID:       id,
			Path:     f.path,
			Filename: f.name,
			SizeKB:   f.size / 1024,
			StagedAt: l.now(),
		}}}, l.items...)
	}

	files := make([]client.UploadFile, 0, len(batch))
	handles := make([]*os.File, 0, len(batch))
	defer func() {
		for _, h := range handles {
			h.Close()
		}
	}()
	for _, f := range batch {
		h, err := os.Open(f.path)
		if err != nil {
			l.dropLocals(locals)
			return fmt.Errorf("open %s: %w", f.path, err)
		}
		handles = append(handles, h)
		files = append(files, client.UploadFile{Filename: f.name, Reader: h})
	}

	_, err := l.api.UploadMediaMulti(ctx, files)
	l.dropLocals(locals)
	if err != nil {
		if errors.Is(err, client.ErrUnauthorized) {
			return fmt.Errorf("upload rejected, session is not authenticated: %w", err)
		}
		return fmt.Errorf("upload failed: %w", err)
	}

	l.sleep(l.settle)
	return l.Load(ctx, l.page)
}

func (l *Library) dropLocals(localIDs []string) {
	drop := make(map[string]struct{}, len(localIDs))
	for _, id := range localIDs {
		drop[id] = struct{}{}
	}
	kept := l.items[:0]
	for _, it := range l.items {
		if it.Local != nil {
			if _, gone := drop[it.Local.ID]; gone {
				continue
			}
		}
		kept = append(kept, it)
	}
	l.items = kept
}

// Delete removes one item. Local items are dropped immediately with no
// server call. Remote items require confirmation; after the server
// confirms, the view steps back a page when the deleted item was the
// last one on the last page.
func (l *Library) Delete(ctx context.Context, id string, confirmed bool) error {
	idx := -1
	for i, it := range l.items {
		if it.Local != nil && it.Local.ID == id {
			l.items = append(l.items[:i:i], l.items[i+1:]...)
			return nil
		}
		if it.Remote != nil && it.Remote.ID == id {
			idx = i
		}
	}
	if idx < 0 {
		return fmt.Errorf("media %s is not in the current view", id)
	}
	if !confirmed {
		return fmt.Errorf("deleting media requires confirmation")
	}
	if _, err := l.api.DeleteMedia(ctx, id); err != nil {
		return fmt.Errorf("delete media %s: %w", id, err)
	}

	remoteCount := 0
	for _, it := range l.items {
		if it.Remote != nil {
			remoteCount++
		}
	}
	next := l.page
	if remoteCount == 1 && l.page == l.totalPages && l.page > 1 {
		next = l.page - 1
		l.totalPages--
	}
	return l.Load(ctx, next)
}
