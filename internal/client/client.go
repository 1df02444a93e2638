// Package client is the typed JSON/HTTP client for the CMS backend. Each
// REST resource gets one file of request builders on top of the shared
// request/decode core in this file.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/lumenworks/cmsctl/internal/transport"
)

// defaultBaseURL is a placeholder host for tunneled transports; direct
// HTTP contexts always supply their real base URL.
const defaultBaseURL = "http://cms-backend"

var (
	// ErrNotFound marks a confirmed 404 so callers can branch on absence
	// instead of treating it as a transport failure.
	ErrNotFound = errors.New("resource not found")
	// ErrUnauthorized marks a 401/403 so upload flows can tell an
	// authentication failure apart from a generic one.
	ErrUnauthorized = errors.New("authentication required")
)

type API struct {
	transport transport.Transport
	baseURL   string
	token     string
}

func New(tr transport.Transport) *API {
	return &API{transport: tr, baseURL: defaultBaseURL}
}

// NewWithAuth builds a client against baseURL that attaches the bearer
// token to every request. An empty token leaves requests anonymous.
func NewWithAuth(tr transport.Transport, baseURL, token string) *API {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		base = defaultBaseURL
	}
	return &API{transport: tr, baseURL: base, token: strings.TrimSpace(token)}
}

func (c *API) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build request %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

// newJSONRequest serializes payload as the request body. Optional fields
// in payload structs are pointers, so unset keys are never serialized and
// partial updates cannot clobber server-side values.
func (c *API) newJSONRequest(ctx context.Context, method, path string, payload any) (*http.Request, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal %s %s payload: %w", method, path, err)
		}
		body = bytes.NewReader(data)
	}
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// do executes the request and decodes the JSON response into out. An
// empty 2xx body leaves out at its zero value rather than failing, since
// several mutation endpoints respond 204 with no payload.
func (c *API) do(req *http.Request, out any) error {
	resp, err := c.transport.Do(req.Context(), req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.String(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return mapAPIError(resp)
	}
	if out == nil {
		return nil
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read api response: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode api response: %w", err)
	}
	return nil
}

// doStream executes the request and returns the raw body for binary
// downloads (backup export, CSV export). The caller closes the body.
func (c *API) doStream(req *http.Request) (io.ReadCloser, error) {
	resp, err := c.transport.Do(req.Context(), req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL.String(), err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		defer resp.Body.Close()
		return nil, mapAPIError(resp)
	}
	return resp.Body, nil
}

type apiErrorPayload struct {
	Error   string   `json:"error"`
	Details []string `json:"details"`
}

func mapAPIError(resp *http.Response) error {
	payload := apiErrorPayload{}
	body, _ := io.ReadAll(resp.Body)
	if len(body) > 0 {
		_ = json.Unmarshal(body, &payload)
	}
	msg := strings.TrimSpace(payload.Error)
	if msg == "" {
		msg = strings.TrimSpace(string(body))
	}
	if msg == "" {
		msg = "request failed"
	}
	if len(payload.Details) > 0 {
		msg = msg + ": " + strings.Join(payload.Details, "; ")
	}

	switch resp.StatusCode {
	case http.StatusBadRequest:
		return fmt.Errorf("invalid request: %s", msg)
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %s", ErrUnauthorized, msg)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, msg)
	case http.StatusConflict:
		return fmt.Errorf("conflict: %s (retry after resolving concurrent changes)", msg)
	case http.StatusRequestEntityTooLarge:
		return fmt.Errorf("upload too large: %s", msg)
	case http.StatusServiceUnavailable:
		return fmt.Errorf("server unavailable: %s", msg)
	default:
		if resp.StatusCode >= 500 {
			return fmt.Errorf("server error (%d): %s", resp.StatusCode, msg)
		}
		return fmt.Errorf("request failed (%d): %s", resp.StatusCode, msg)
	}
}

// IsAborted reports whether err came from deliberate supersession
// (context cancellation) rather than a real failure; callers discard
// these instead of surfacing them.
func IsAborted(err error) bool {
	return errors.Is(err, context.Canceled)
}
