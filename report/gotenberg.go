package report

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

// ErrUnavailable indicates no PDF backend is configured.
var ErrUnavailable = errors.New("report: pdf renderer not configured")

// Renderer converts invoice HTML into PDF bytes through a Gotenberg
// instance. A nil Renderer reports ErrUnavailable on every call, so the
// API can run without the PDF sidecar.
type Renderer struct {
	baseURL string
	client  *http.Client
}

// NewRenderer constructs a Renderer for the given Gotenberg base URL.
// An empty URL yields a nil Renderer.
func NewRenderer(baseURL string) *Renderer {
	if baseURL == "" {
		return nil
	}
	return &Renderer{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// Healthy checks the Gotenberg health endpoint.
func (r *Renderer) Healthy(ctx context.Context) error {
	if r == nil {
		return ErrUnavailable
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("report: gotenberg returned status %d", resp.StatusCode)
	}
	return nil
}

// RenderPDF converts the HTML document through Gotenberg's chromium
// route and returns the PDF bytes.
func (r *Renderer) RenderPDF(ctx context.Context, html []byte) ([]byte, error) {
	if r == nil {
		return nil, ErrUnavailable
	}
	body := &bytes.Buffer{}
	form := multipart.NewWriter(body)
	part, err := form.CreateFormFile("files", "index.html")
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(html); err != nil {
		return nil, err
	}
	if err := form.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		r.baseURL+"/forms/chromium/convert/html", body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("report: render failed with status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
