package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

type ListStoriesParams struct {
	Page      int    `json:"page,omitempty"`
	Limit     int    `json:"limit,omitempty"`
	Status    string `json:"status,omitempty"`
	Search    string `json:"search,omitempty"`
	SortBy    string `json:"sortBy,omitempty"`
	SortOrder string `json:"sortOrder,omitempty"`
	Featured  *bool  `json:"featured,omitempty"`
}

func (p ListStoriesParams) values() url.Values {
	q := url.Values{}
	setPositive(q, "page", p.Page)
	setPositive(q, "limit", p.Limit)
	setNonEmpty(q, "status", p.Status)
	setNonEmpty(q, "search", p.Search)
	setNonEmpty(q, "sortBy", p.SortBy)
	setNonEmpty(q, "sortOrder", p.SortOrder)
	setBoolPtr(q, "featured", p.Featured)
	return q
}

type StoryList struct {
	Items []Story `json:"items" yaml:"items"`
	Total int     `json:"total" yaml:"total"`
	Page  int     `json:"page" yaml:"page"`
	Limit int     `json:"limit" yaml:"limit"`
}

type storyEnvelope struct {
	Story Story `json:"story"`
}

type StoryCreate struct {
	Title           string   `json:"title"`
	Slug            string   `json:"slug"`
	Body            string   `json:"body,omitempty"`
	Excerpt         string   `json:"excerpt,omitempty"`
	Tags            []string `json:"tags,omitempty"`
	Status          string   `json:"status,omitempty"`
	Featured        bool     `json:"featured,omitempty"`
	MetaTitle       string   `json:"metaTitle,omitempty"`
	MetaDescription string   `json:"metaDescription,omitempty"`
	CanonicalURL    string   `json:"canonicalUrl,omitempty"`
}

func (r StoryCreate) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required),
		validation.Field(&r.Slug, validation.Required, validation.Match(slugPattern).Error("must be a lowercase URL-safe slug")),
		validation.Field(&r.Status, validation.In(StatusDraft, StatusPublished, StatusArchived)),
		validation.Field(&r.CanonicalURL, is.URL),
	)
}

type StoryUpdate struct {
	Title           *string   `json:"title,omitempty"`
	Slug            *string   `json:"slug,omitempty"`
	Body            *string   `json:"body,omitempty"`
	Excerpt         *string   `json:"excerpt,omitempty"`
	Tags            *[]string `json:"tags,omitempty"`
	Status          *string   `json:"status,omitempty"`
	Featured        *bool     `json:"featured,omitempty"`
	MetaTitle       *string   `json:"metaTitle,omitempty"`
	MetaDescription *string   `json:"metaDescription,omitempty"`
	CanonicalURL    *string   `json:"canonicalUrl,omitempty"`
	PublishedAt     *string   `json:"publishedAt,omitempty"`
}

func (r StoryUpdate) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.NilOrNotEmpty),
		validation.Field(&r.Slug, validation.NilOrNotEmpty, validation.By(optionalSlug)),
		validation.Field(&r.Status, validation.By(optionalStatus)),
	)
}

func (c *API) ListStories(ctx context.Context, params ListStoriesParams) (StoryList, error) {
	path := "/admin/stories" + encodeQuery(params.values())
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return StoryList{}, err
	}
	var out StoryList
	if err := c.do(req, &out); err != nil {
		return StoryList{}, err
	}
	return out, nil
}

func (c *API) GetStory(ctx context.Context, id string) (Story, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Story{}, fmt.Errorf("story id is required")
	}
	req, err := c.newRequest(ctx, http.MethodGet, "/admin/stories/"+url.PathEscape(id), nil)
	if err != nil {
		return Story{}, err
	}
	var out storyEnvelope
	if err := c.do(req, &out); err != nil {
		return Story{}, err
	}
	return out.Story, nil
}

func (c *API) CreateStory(ctx context.Context, create StoryCreate) (Story, error) {
	if err := create.Validate(); err != nil {
		return Story{}, fmt.Errorf("validate story: %w", err)
	}
	req, err := c.newJSONRequest(ctx, http.MethodPost, "/admin/stories", create)
	if err != nil {
		return Story{}, err
	}
	var out storyEnvelope
	if err := c.do(req, &out); err != nil {
		return Story{}, err
	}
	return out.Story, nil
}

func (c *API) UpdateStory(ctx context.Context, id string, update StoryUpdate) (Story, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Story{}, fmt.Errorf("story id is required")
	}
	if err := update.Validate(); err != nil {
		return Story{}, fmt.Errorf("validate story update: %w", err)
	}
	req, err := c.newJSONRequest(ctx, http.MethodPut, "/admin/stories/"+url.PathEscape(id), update)
	if err != nil {
		return Story{}, err
	}
	var out storyEnvelope
	if err := c.do(req, &out); err != nil {
		return Story{}, err
	}
	return out.Story, nil
}

func (c *API) DeleteStory(ctx context.Context, id string) (DeleteResponse, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return DeleteResponse{}, fmt.Errorf("story id is required")
	}
	req, err := c.newRequest(ctx, http.MethodDelete, "/admin/stories/"+url.PathEscape(id), nil)
	if err != nil {
		return DeleteResponse{}, err
	}
	var out DeleteResponse
	if err := c.do(req, &out); err != nil {
		return DeleteResponse{}, err
	}
	return out, nil
}
