package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

type ListPagesParams struct {
	Page   int    `json:"page,omitempty"`
	Limit  int    `json:"limit,omitempty"`
	Status string `json:"status,omitempty"`
	Search string `json:"search,omitempty"`
}

func (p ListPagesParams) values() url.Values {
	q := url.Values{}
	setPositive(q, "page", p.Page)
	setPositive(q, "limit", p.Limit)
	setNonEmpty(q, "status", p.Status)
	setNonEmpty(q, "search", p.Search)
	return q
}

type PageList struct {
	Items []Page `json:"items" yaml:"items"`
	Total int    `json:"total" yaml:"total"`
	Page  int    `json:"page" yaml:"page"`
	Limit int    `json:"limit" yaml:"limit"`
}

type pageEnvelope struct {
	Page Page `json:"page"`
}

// PageCreate is the page-creation payload.
type PageCreate struct {
	Title           string           `json:"title"`
	Slug            string           `json:"slug"`
	Excerpt         string           `json:"excerpt,omitempty"`
	MetaTitle       string           `json:"metaTitle,omitempty"`
	MetaDescription string           `json:"metaDescription,omitempty"`
	CanonicalURL    string           `json:"canonicalUrl,omitempty"`
	Status          string           `json:"status,omitempty"`
	Layout          []PageLayoutItem `json:"layout,omitempty"`
}

func (r PageCreate) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required),
		validation.Field(&r.Slug, validation.Required, validation.Match(slugPattern).Error("must be a lowercase URL-safe slug")),
		validation.Field(&r.Status, validation.In(StatusDraft, StatusPublished, StatusArchived)),
		validation.Field(&r.CanonicalURL, is.URL),
	)
}

// PageUpdate is a partial update: nil fields are not serialized and leave
// the server value untouched. A non-nil Layout replaces the layout
// wholesale.
type PageUpdate struct {
	Title           *string           `json:"title,omitempty"`
	Slug            *string           `json:"slug,omitempty"`
	Excerpt         *string           `json:"excerpt,omitempty"`
	MetaTitle       *string           `json:"metaTitle,omitempty"`
	MetaDescription *string           `json:"metaDescription,omitempty"`
	CanonicalURL    *string           `json:"canonicalUrl,omitempty"`
	Status          *string           `json:"status,omitempty"`
	PublishedAt     *string           `json:"publishedAt,omitempty"`
	Layout          *[]PageLayoutItem `json:"layout,omitempty"`
}

func (r PageUpdate) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.NilOrNotEmpty),
		validation.Field(&r.Slug, validation.NilOrNotEmpty, validation.By(optionalSlug)),
		validation.Field(&r.Status, validation.By(optionalStatus)),
	)
}

func optionalSlug(value any) error {
	s, _ := value.(*string)
	if s == nil {
		return nil
	}
	if !slugPattern.MatchString(*s) {
		return fmt.Errorf("must be a lowercase URL-safe slug")
	}
	return nil
}

func optionalStatus(value any) error {
	s, _ := value.(*string)
	if s == nil {
		return nil
	}
	switch *s {
	case StatusDraft, StatusPublished, StatusArchived:
		return nil
	}
	return fmt.Errorf("must be draft, published, or archived")
}

func (c *API) ListPages(ctx context.Context, params ListPagesParams) (PageList, error) {
	path := "/admin/pages" + encodeQuery(params.values())
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return PageList{}, err
	}
	var out PageList
	if err := c.do(req, &out); err != nil {
		return PageList{}, err
	}
	return out, nil
}

// GetPage fetches the page shell: layout entries carry moduleId and order
// only, without expanded module content.
func (c *API) GetPage(ctx context.Context, id string) (Page, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Page{}, fmt.Errorf("page id is required")
	}
	req, err := c.newRequest(ctx, http.MethodGet, "/admin/pages/"+url.PathEscape(id), nil)
	if err != nil {
		return Page{}, err
	}
	var out pageEnvelope
	if err := c.do(req, &out); err != nil {
		return Page{}, err
	}
	return out.Page, nil
}

// GetPageBySlug fetches the page with module content expanded into each
// layout entry.
func (c *API) GetPageBySlug(ctx context.Context, slug string) (Page, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return Page{}, fmt.Errorf("page slug is required")
	}
	req, err := c.newRequest(ctx, http.MethodGet, "/admin/pages/slug/"+url.PathEscape(slug), nil)
	if err != nil {
		return Page{}, err
	}
	var out pageEnvelope
	if err := c.do(req, &out); err != nil {
		return Page{}, err
	}
	return out.Page, nil
}

func (c *API) CreatePage(ctx context.Context, create PageCreate) (Page, error) {
	if err := create.Validate(); err != nil {
		return Page{}, fmt.Errorf("validate page: %w", err)
	}
	req, err := c.newJSONRequest(ctx, http.MethodPost, "/admin/pages", create)
	if err != nil {
		return Page{}, err
	}
	var out pageEnvelope
	if err := c.do(req, &out); err != nil {
		return Page{}, err
	}
	return out.Page, nil
}

func (c *API) UpdatePage(ctx context.Context, id string, update PageUpdate) (Page, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Page{}, fmt.Errorf("page id is required")
	}
	if err := update.Validate(); err != nil {
		return Page{}, fmt.Errorf("validate page update: %w", err)
	}
	req, err := c.newJSONRequest(ctx, http.MethodPut, "/admin/pages/"+url.PathEscape(id), update)
	if err != nil {
		return Page{}, err
	}
	var out pageEnvelope
	if err := c.do(req, &out); err != nil {
		return Page{}, err
	}
	return out.Page, nil
}

// DeletePage removes the page record. Modules referenced by its layout
// are independently owned and are not touched.
func (c *API) DeletePage(ctx context.Context, id string) (DeleteResponse, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return DeleteResponse{}, fmt.Errorf("page id is required")
	}
	req, err := c.newRequest(ctx, http.MethodDelete, "/admin/pages/"+url.PathEscape(id), nil)
	if err != nil {
		return DeleteResponse{}, err
	}
	var out DeleteResponse
	if err := c.do(req, &out); err != nil {
		return DeleteResponse{}, err
	}
	return out, nil
}
