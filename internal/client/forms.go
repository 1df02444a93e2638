package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

type FormSubmissionList struct {
	Items []FormSubmission `json:"items" yaml:"items"`
	Total int              `json:"total" yaml:"total"`
	Page  int              `json:"page" yaml:"page"`
	Limit int              `json:"limit" yaml:"limit"`
}

type formSubmissionEnvelope struct {
	Submission FormSubmission `json:"submission"`
}

// FormSubmit is the public contact-form payload.
type FormSubmit struct {
	FormName string         `json:"formName"`
	Fields   map[string]any `json:"fields"`
}

func (r FormSubmit) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.FormName, validation.Required),
		validation.Field(&r.Fields, validation.Required),
	)
}

func (c *API) SubmitForm(ctx context.Context, submit FormSubmit) (FormSubmission, error) {
	if err := submit.Validate(); err != nil {
		return FormSubmission{}, fmt.Errorf("validate form submission: %w", err)
	}
	req, err := c.newJSONRequest(ctx, http.MethodPost, "/forms/submit", submit)
	if err != nil {
		return FormSubmission{}, err
	}
	var out formSubmissionEnvelope
	if err := c.do(req, &out); err != nil {
		return FormSubmission{}, err
	}
	return out.Submission, nil
}

func (c *API) ListFormSubmissions(ctx context.Context, page, limit int) (FormSubmissionList, error) {
	q := url.Values{}
	setPositive(q, "page", page)
	setPositive(q, "limit", limit)
	req, err := c.newRequest(ctx, http.MethodGet, "/forms"+encodeQuery(q), nil)
	if err != nil {
		return FormSubmissionList{}, err
	}
	var out FormSubmissionList
	if err := c.do(req, &out); err != nil {
		return FormSubmissionList{}, err
	}
	return out, nil
}

func (c *API) GetFormSubmission(ctx context.Context, id string) (FormSubmission, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return FormSubmission{}, fmt.Errorf("submission id is required")
	}
	req, err := c.newRequest(ctx, http.MethodGet, "/forms/"+url.PathEscape(id), nil)
	if err != nil {
		return FormSubmission{}, err
	}
	var out formSubmissionEnvelope
	if err := c.do(req, &out); err != nil {
		return FormSubmission{}, err
	}
	return out.Submission, nil
}

func (c *API) DeleteFormSubmission(ctx context.Context, id string) (DeleteResponse, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return DeleteResponse{}, fmt.Errorf("submission id is required")
	}
	req, err := c.newRequest(ctx, http.MethodDelete, "/forms/"+url.PathEscape(id), nil)
	if err != nil {
		return DeleteResponse{}, err
	}
	var out DeleteResponse
	if err := c.do(req, &out); err != nil {
		return DeleteResponse{}, err
	}
	return out, nil
}

// ExportFormSubmissions streams the CSV export into w.
func (c *API) ExportFormSubmissions(ctx context.Context, w io.Writer) (int64, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/forms-export", nil)
	if err != nil {
		return 0, err
	}
	body, err := c.doStream(req)
	if err != nil {
		return 0, err
	}
	defer body.Close()

	n, err := io.Copy(w, body)
	if err != nil {
		return n, fmt.Errorf("stream form export: %w", err)
	}
	return n, nil
}
