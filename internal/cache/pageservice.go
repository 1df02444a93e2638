// Package cache provides the short-lived read cache in front of the page
// endpoints. Reads within the TTL are served from memory; every mutation
// clears the whole cache before it runs so no stale read can follow a
// write in the same session.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/lumenworks/cmsctl/internal/client"
)

// DefaultTTL is how long a cached read stays fresh, measured from write
// time and checked lazily on read.
const DefaultTTL = 10 * time.Second

// PageAPI is the slice of the API client the cache wraps.
type PageAPI interface {
	ListPages(ctx context.Context, params client.ListPagesParams) (client.PageList, error)
	GetPage(ctx context.Context, id string) (client.Page, error)
	GetPageBySlug(ctx context.Context, slug string) (client.Page, error)
	CreatePage(ctx context.Context, create client.PageCreate) (client.Page, error)
	UpdatePage(ctx context.Context, id string, update client.PageUpdate) (client.Page, error)
	DeletePage(ctx context.Context, id string) (client.DeleteResponse, error)
}

// PageResult wraps slug lookups so a confirmed 404 is a normal outcome
// with a nil Page, distinct from a transport error, which propagates and
// is never cached.
type PageResult struct {
	Page    *client.Page `json:"page" yaml:"page"`
	Message string       `json:"message,omitempty" yaml:"message,omitempty"`
}

type entry struct {
	data      any
	timestamp time.Time
}

type PageService struct {
	api PageAPI
	ttl time.Duration
	now func() time.Time

	mu    sync.Mutex
	cache map[string]entry
}

func NewPageService(api PageAPI) *PageService {
	return &PageService{
		api:   api,
		ttl:   DefaultTTL,
		now:   time.Now,
		cache: make(map[string]entry),
	}
}

func (s *PageService) GetPages(ctx context.Context, params client.ListPagesParams) (client.PageList, error) {
	key, err := cacheKey("/admin/pages", params)
	if err != nil {
		return client.PageList{}, err
	}
	if cached, ok := s.lookup(key); ok {
		return cached.(client.PageList), nil
	}
	out, err := s.api.ListPages(ctx, params)
	if err != nil {
		return client.PageList{}, err
	}
	s.store(key, out)
	return out, nil
}

func (s *PageService) GetPage(ctx context.Context, id string) (client.Page, error) {
	key, err := cacheKey("/admin/pages/id", id)
	if err != nil {
		return client.Page{}, err
	}
	if cached, ok := s.lookup(key); ok {
		return cached.(client.Page), nil
	}
	out, err := s.api.GetPage(ctx, id)
	if err != nil {
		return client.Page{}, err
	}
	s.store(key, out)
	return out, nil
}

// GetPageBySlug caches confirmed absence: a 404 becomes a PageResult with
// a nil Page and is stored like any other read.
func (s *PageService) GetPageBySlug(ctx context.Context, slug string) (PageResult, error) {
	key, err := cacheKey("/admin/pages/slug", slug)
	if err != nil {
		return PageResult{}, err
	}
	if cached, ok := s.lookup(key); ok {
		return cached.(PageResult), nil
	}
	page, err := s.api.GetPageBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, client.ErrNotFound) {
			result := PageResult{Page: nil, Message: "Not found"}
			s.store(key, result)
			return result, nil
		}
		return PageResult{}, err
	}
	result := PageResult{Page: &page}
	s.store(key, result)
	return result, nil
}

func (s *PageService) CreatePage(ctx context.Context, create client.PageCreate) (client.Page, error) {
	s.Invalidate()
	return s.api.CreatePage(ctx, create)
}

func (s *PageService) UpdatePage(ctx context.Context, id string, update client.PageUpdate) (client.Page, error) {
	s.Invalidate()
	return s.api.UpdatePage(ctx, id, update)
}

func (s *PageService) DeletePage(ctx context.Context, id string) (client.DeleteResponse, error) {
	s.Invalidate()
	return s.api.DeletePage(ctx, id)
}

// Invalidate drops every cached entry. Mutations call it unconditionally
// before touching the network; selective invalidation is not worth the
// bookkeeping at a 10-second TTL.
func (s *PageService) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = make(map[string]entry)
}

func (s *PageService) lookup(key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.cache[key]
	if !ok {
		return nil, false
	}
	if s.now().Sub(e.timestamp) >= s.ttl {
		delete(s.cache, key)
		return nil, false
	}
	return e.data, true
}

func (s *PageService) store(key string, data any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache[key] = entry{data: data, timestamp: s.now()}
}

func cacheKey(endpoint string, params any) (string, error) {
	serialized, err := json.Marshal(params)
	if err != nil {
		return "", fmt.Errorf("serialize cache key params: %w", err)
	}
	return endpoint + ":" + string(serialized), nil
}
