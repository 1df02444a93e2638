package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Blogs share the story shapes: the backend treats them as sibling
// publishable content types with identical CRUD conventions.

type BlogList struct {
	Items []Blog `json:"items" yaml:"items"`
	Total int    `json:"total" yaml:"total"`
	Page  int    `json:"page" yaml:"page"`
	Limit int    `json:"limit" yaml:"limit"`
}

type blogEnvelope struct {
	Blog Blog `json:"blog"`
}

func (c *API) ListBlogs(ctx context.Context, params ListStoriesParams) (BlogList, error) {
	path := "/admin/blogs" + encodeQuery(params.values())
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return BlogList{}, err
	}
	var out BlogList
	if err := c.do(req, &out); err != nil {
		return BlogList{}, err
	}
	return out, nil
}

func (c *API) GetBlog(ctx context.Context, id string) (Blog, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Blog{}, fmt.Errorf("blog id is required")
	}
	req, err := c.newRequest(ctx, http.MethodGet, "/admin/blogs/"+url.PathEscape(id), nil)
	if err != nil {
		return Blog{}, err
	}
	var out blogEnvelope
	if err := c.do(req, &out); err != nil {
		return Blog{}, err
	}
	return out.Blog, nil
}

func (c *API) GetBlogBySlug(ctx context.Context, slug string) (Blog, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return Blog{}, fmt.Errorf("blog slug is required")
	}
	req, err := c.newRequest(ctx, http.MethodGet, "/admin/blogs/slug/"+url.PathEscape(slug), nil)
	if err != nil {
		return Blog{}, err
	}
	var out blogEnvelope
	if err := c.do(req, &out); err != nil {
		return Blog{}, err
	}
	return out.Blog, nil
}

func (c *API) CreateBlog(ctx context.Context, create StoryCreate) (Blog, error) {
	if err := create.Validate(); err != nil {
		return Blog{}, fmt.Errorf("validate blog: %w", err)
	}
	req, err := c.newJSONRequest(ctx, http.MethodPost, "/admin/blogs", create)
	if err != nil {
		return Blog{}, err
	}
	var out blogEnvelope
	if err := c.do(req, &out); err != nil {
		return Blog{}, err
	}
	return out.Blog, nil
}

func (c *API) UpdateBlog(ctx context.Context, id string, update StoryUpdate) (Blog, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Blog{}, fmt.Errorf("blog id is required")
	}
	if err := update.Validate(); err != nil {
		return Blog{}, fmt.Errorf("validate blog update: %w", err)
	}
	req, err := c.newJSONRequest(ctx, http.MethodPut, "/admin/blogs/"+url.PathEscape(id), update)
	if err != nil {
		return Blog{}, err
	}
	var out blogEnvelope
	if err := c.do(req, &out); err != nil {
		return Blog{}, err
	}
	return out.Blog, nil
}

func (c *API) DeleteBlog(ctx context.Context, id string) (DeleteResponse, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return DeleteResponse{}, fmt.Errorf("blog id is required")
	}
	req, err := c.newRequest(ctx, http.MethodDelete, "/admin/blogs/"+url.PathEscape(id), nil)
	if err != nil {
		return DeleteResponse{}, err
	}
	var out DeleteResponse
	if err := c.do(req, &out); err != nil {
		return DeleteResponse{}, err
	}
	return out, nil
}
