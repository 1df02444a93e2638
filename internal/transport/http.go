package transport

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// DefaultDialTimeout bounds connection establishment, not the request
// itself. Callers own request-level resiliency.
const DefaultDialTimeout = 10 * time.Second

// HTTPConfig configures a direct HTTP transport.
type HTTPConfig struct {
	DialTimeout time.Duration
	Logger      *zerolog.Logger
}

// HTTPTransport talks to the backend directly over HTTP. Every request is
// sent with HTTP caching disabled; freshness discipline lives in the page
// cache, not in intermediaries.
type HTTPTransport struct {
	client *http.Client
	logger zerolog.Logger
}

func NewHTTPTransport(cfg HTTPConfig) *HTTPTransport {
	timeout := cfg.DialTimeout
	if timeout <= 0 {
		timeout = DefaultDialTimeout
	}
	logger := zerolog.Nop()
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}
	return &HTTPTransport{
		client: &http.Client{
			Transport: &http.Transport{
				DialContext:       (&net.Dialer{Timeout: timeout}).DialContext,
				ForceAttemptHTTP2: true,
			},
		},
		logger: logger,
	}
}

func (t *HTTPTransport) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	req = req.WithContext(ctx)
	req.Header.Set("Cache-Control", "no-store")
	req.Header.Set("Pragma", "no-cache")

	start := time.Now()
	resp, err := t.client.Do(req)
	if err != nil {
		t.logger.Debug().
			Str("method", req.Method).
			Str("url", req.URL.String()).
			Dur("elapsed", time.Since(start)).
			Err(err).
			Msg("request failed")
		return nil, err
	}
	t.logger.Debug().
		Str("method", req.Method).
		Str("url", req.URL.String()).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("request completed")
	return resp, nil
}

func (t *HTTPTransport) Close() error {
	t.client.CloseIdleConnections()
	return nil
}
