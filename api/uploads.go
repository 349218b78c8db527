package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
)

type UploadResult struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
}

// UploadImage sends r as the "file" field of a multipart form.
func (c *Client) UploadImage(ctx context.Context, filename string, r io.Reader) (UploadResult, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return UploadResult{}, fmt.Errorf("api: build upload: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return UploadResult{}, fmt.Errorf("api: build upload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return UploadResult{}, fmt.Errorf("api: build upload: %w", err)
	}

	var out UploadResult
	err = c.AuthenticatedRequest(ctx, "/upload/image", RequestOptions{
		Method:      http.MethodPost,
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: mw.FormDataContentType(),
	}, &out)
	return out, err
}
