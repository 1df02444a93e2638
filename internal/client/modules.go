package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// allModulesLimit is the page size used when a caller wants every module
// at once (the layout editor's module picker).
const allModulesLimit = 400

type ListModulesParams struct {
	Page   int    `json:"page,omitempty"`
	Limit  int    `json:"limit,omitempty"`
	Type   string `json:"type,omitempty"`
	Search string `json:"search,omitempty"`
}

func (p ListModulesParams) values() url.Values {
	q := url.Values{}
	setPositive(q, "page", p.Page)
	setPositive(q, "limit", p.Limit)
	setNonEmpty(q, "type", p.Type)
	setNonEmpty(q, "search", p.Search)
	return q
}

type ModuleList struct {
	Items []Module `json:"items" yaml:"items"`
	Total int      `json:"total" yaml:"total"`
	Page  int      `json:"page" yaml:"page"`
	Limit int      `json:"limit" yaml:"limit"`
}

type moduleEnvelope struct {
	Module Module `json:"module"`
}

type ModuleCreate struct {
	Type    string         `json:"type"`
	Title   string         `json:"title"`
	Content map[string]any `json:"content,omitempty"`
	Status  string         `json:"status,omitempty"`
}

func (r ModuleCreate) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Type, validation.Required),
		validation.Field(&r.Title, validation.Required),
		validation.Field(&r.Status, validation.In(StatusDraft, StatusPublished, StatusArchived)),
	)
}

type ModuleUpdate struct {
	Type    *string         `json:"type,omitempty"`
	Title   *string         `json:"title,omitempty"`
	Content *map[string]any `json:"content,omitempty"`
	Status  *string         `json:"status,omitempty"`
}

func (r ModuleUpdate) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Type, validation.NilOrNotEmpty),
		validation.Field(&r.Title, validation.NilOrNotEmpty),
		validation.Field(&r.Status, validation.By(optionalStatus)),
	)
}

func (c *API) ListModules(ctx context.Context, params ListModulesParams) (ModuleList, error) {
	path := "/admin/modules" + encodeQuery(params.values())
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return ModuleList{}, err
	}
	var out ModuleList
	if err := c.do(req, &out); err != nil {
		return ModuleList{}, err
	}
	return out, nil
}

// ListAllModules fetches one oversized page for pickers that need the
// whole module catalog.
func (c *API) ListAllModules(ctx context.Context) (ModuleList, error) {
	return c.ListModules(ctx, ListModulesParams{Limit: allModulesLimit})
}

func (c *API) GetModule(ctx context.Context, id string) (Module, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Module{}, fmt.Errorf("module id is required")
	}
	req, err := c.newRequest(ctx, http.MethodGet, "/admin/modules/"+url.PathEscape(id), nil)
	if err != nil {
		return Module{}, err
	}
	var out moduleEnvelope
	if err := c.do(req, &out); err != nil {
		return Module{}, err
	}
	return out.Module, nil
}

func (c *API) CreateModule(ctx context.Context, create ModuleCreate) (Module, error) {
	if err := create.Validate(); err != nil {
		return Module{}, fmt.Errorf("validate module: %w", err)
	}
	req, err := c.newJSONRequest(ctx, http.MethodPost, "/admin/modules", create)
	if err != nil {
		return Module{}, err
	}
	var out moduleEnvelope
	if err := c.do(req, &out); err != nil {
		return Module{}, err
	}
	return out.Module, nil
}

func (c *API) UpdateModule(ctx context.Context, id string, update ModuleUpdate) (Module, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Module{}, fmt.Errorf("module id is required")
	}
	if err := update.Validate(); err != nil {
		return Module{}, fmt.Errorf("validate module update: %w", err)
	}
	req, err := c.newJSONRequest(ctx, http.MethodPut, "/admin/modules/"+url.PathEscape(id), update)
	if err != nil {
		return Module{}, err
	}
	var out moduleEnvelope
	if err := c.do(req, &out); err != nil {
		return Module{}, err
	}
	return out.Module, nil
}

// CloneModule creates a new module with the source's type and a deep copy
// of its content under a new title. The new module always gets its own
// identifier; nothing links it back to the source.
func (c *API) CloneModule(ctx context.Context, id, newTitle string) (Module, error) {
	newTitle = strings.TrimSpace(newTitle)
	if newTitle == "" {
		return Module{}, fmt.Errorf("new module title is required")
	}
	src, err := c.GetModule(ctx, id)
	if err != nil {
		return Module{}, err
	}
	return c.CreateModule(ctx, ModuleCreate{
		Type:    src.Type,
		Title:   newTitle,
		Content: deepCopyObject(src.Content),
		Status:  StatusDraft,
	})
}

func deepCopyObject(obj map[string]any) map[string]any {
	if obj == nil {
		return nil
	}
	out := make(map[string]any, len(obj))
	for k, v := range obj {
		out[k] = deepCopyValue(v)
	}
	return out
}

func deepCopyValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return deepCopyObject(val)
	case []any:
		items := make([]any, len(val))
		for i, item := range val {
			items[i] = deepCopyValue(item)
		}
		return items
	default:
		return val
	}
}
