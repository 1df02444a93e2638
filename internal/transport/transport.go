package transport

import (
	"context"
	"net/http"
)

// Transport executes HTTP requests against the CMS backend over a chosen
// network path (direct HTTP or an SSH tunnel).
type Transport interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
	Close() error
}
