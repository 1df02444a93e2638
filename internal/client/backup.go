package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/lumenworks/cmsctl/internal/transport"
)

// Import modes accepted by the backup endpoints.
const (
	ImportModeInsert  = "insert"
	ImportModeUpsert  = "upsert"
	ImportModeReplace = "replace"
)

// ImportResult summarizes a backup import.
type ImportResult struct {
	Inserted int      `json:"inserted" yaml:"inserted"`
	Updated  int      `json:"updated" yaml:"updated"`
	Skipped  int      `json:"skipped" yaml:"skipped"`
	Errors   []string `json:"errors,omitempty" yaml:"errors,omitempty"`
}

func validImportMode(mode string) error {
	switch mode {
	case ImportModeInsert, ImportModeUpsert, ImportModeReplace:
		return nil
	}
	return fmt.Errorf("invalid import mode %q (expected insert, upsert, or replace)", mode)
}

// ExportNDJSON streams the NDJSON export for the given collections into w
// and returns the byte count. An empty collections list exports everything.
func (c *API) ExportNDJSON(ctx context.Context, collections []string, w io.Writer) (int64, error) {
	q := url.Values{}
	if len(collections) > 0 {
		q.Set("collections", strings.Join(collections, ","))
	}
	req, err := c.newRequest(ctx, http.MethodGet, "/admin/backup/export"+encodeQuery(q), nil)
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
		return n, fmt.Errorf("stream backup export: %w", err)
	}
	return n, nil
}

// ImportNDJSON uploads an NDJSON dump. The multipart body is buffered
// first so the total size is known, then wrapped in a progress reader;
// the JSON client path cannot observe upload progress.
func (c *API) ImportNDJSON(ctx context.Context, mode string, file UploadFile, progress transport.ProgressFunc) (ImportResult, error) {
	if err := validImportMode(mode); err != nil {
		return ImportResult{}, err
	}
	return c.importMultipart(ctx, "/admin/backup/import?mode="+url.QueryEscape(mode), file, progress)
}

// ExportTar streams the binary full-dump archive into w.
func (c *API) ExportTar(ctx context.Context, w io.Writer) (int64, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/admin/backup/export-tar", nil)
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
		return n, fmt.Errorf("stream tar export: %w", err)
	}
	return n, nil
}

// ImportTar uploads a binary full-dump archive with progress reporting.
func (c *API) ImportTar(ctx context.Context, file UploadFile, progress transport.ProgressFunc) (ImportResult, error) {
	return c.importMultipart(ctx, "/admin/backup/import-tar", file, progress)
}

func (c *API) importMultipart(ctx context.Context, path string, file UploadFile, progress transport.ProgressFunc) (ImportResult, error) {
	body, contentType, err := multipartBody([]UploadFile{file})
	if err != nil {
		return ImportResult{}, err
	}
	buf, ok := body.(*bytes.Buffer)
	if !ok {
		return ImportResult{}, fmt.Errorf("internal: multipart body is not buffered")
	}
	total := int64(buf.Len())

	req, err := c.newRequest(ctx, http.MethodPost, path, transport.NewProgressReader(buf, total, progress))
	if err != nil {
		return ImportResult{}, err
	}
	req.Header.Set("Content-Type", contentType)
	req.ContentLength = total

	var out ImportResult
	if err := c.do(req, &out); err != nil {
		return ImportResult{}, err
	}
	return out, nil
}
