package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
)

type MediaList struct {
	Items []MediaItem `json:"items" yaml:"items"`
	Total int         `json:"total" yaml:"total"`
	Page  int         `json:"page" yaml:"page"`
	Limit int         `json:"limit" yaml:"limit"`
}

type mediaItemEnvelope struct {
	Item MediaItem `json:"item"`
}

type mediaItemsEnvelope struct {
	Items []MediaItem `json:"items"`
}

// UploadFile is one file in a multipart upload.
type UploadFile struct {
	Filename string
	Reader   io.Reader
}

func (c *API) ListMedia(ctx context.Context, page, limit int) (MediaList, error) {
	q := url.Values{}
	setPositive(q, "page", page)
	setPositive(q, "limit", limit)
	req, err := c.newRequest(ctx, http.MethodGet, "/admin/uploads/media"+encodeQuery(q), nil)
	if err != nil {
		return MediaList{}, err
	}
	var out MediaList
	if err := c.do(req, &out); err != nil {
		return MediaList{}, err
	}
	return out, nil
}

func (c *API) UploadMedia(ctx context.Context, file UploadFile) (MediaItem, error) {
	body, contentType, err := multipartBody([]UploadFile{file})
	if err != nil {
		return MediaItem{}, err
	}
	req, err := c.newRequest(ctx, http.MethodPost, "/admin/uploads/media", body)
	if err != nil {
		return MediaItem{}, err
	}
	req.Header.Set("Content-Type", contentType)

	var out mediaItemEnvelope
	if err := c.do(req, &out); err != nil {
		return MediaItem{}, err
	}
	return out.Item, nil
}

// UploadMediaMulti sends the whole batch in one request. Per-file retry
// does not exist in the backend contract; a failed batch fails as a unit.
func (c *API) UploadMediaMulti(ctx context.Context, files []UploadFile) ([]MediaItem, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("at least one file is required")
	}
	body, contentType, err := multipartBody(files)
	if err != nil {
		return nil, err
	}
	req, err := c.newRequest(ctx, http.MethodPost, "/admin/uploads/media/multi", body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)

	var out mediaItemsEnvelope
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

func (c *API) DeleteMedia(ctx context.Context, id string) (DeleteResponse, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return DeleteResponse{}, fmt.Errorf("media id is required")
	}
	req, err := c.newRequest(ctx, http.MethodDelete, "/admin/uploads/media/"+url.PathEscape(id), nil)
	if err != nil {
		return DeleteResponse{}, err
	}
	var out DeleteResponse
	if err := c.do(req, &out); err != nil {
		return DeleteResponse{}, err
	}
	return out, nil
}

func multipartBody(files []UploadFile) (io.Reader, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	for _, f := range files {
		name := strings.TrimSpace(f.Filename)
		if name == "" {
			return nil, "", fmt.Errorf("upload filename is required")
		}
		part, err := w.CreateFormFile("files", name)
		if err != nil {
			return nil, "", fmt.Errorf("create multipart field for %s: %w", name, err)
		}
		if _, err := io.Copy(part, f.Reader); err != nil {
			return nil, "", fmt.Errorf("read upload %s: %w", name, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("finalize multipart body: %w", err)
	}
	return buf, w.FormDataContentType(), nil
}
