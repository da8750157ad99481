// Package describeclient is a small Go client for the plat-describe API.
package describeclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/joeblew999/plat-describe/internal/api"
	"github.com/joeblew999/plat-describe/internal/describe"
	"github.com/joeblew999/plat-describe/internal/service"
)

// Error is a non-2xx API response.
type Error struct {
	Status int
	Title  string `json:"title"`
	Detail string `json:"detail"`
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%d %s: %s", e.Status, e.Title, e.Detail)
	}
	return fmt.Sprintf("%d %s", e.Status, e.Title)
}

// Client talks to one server.
type Client struct {
	baseURL string
	http    *http.Client
}

// New returns a client for baseURL using http.DefaultClient.
func New(baseURL string) *Client {
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: http.DefaultClient}
}

// WithHTTPClient returns a copy of c using hc.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	cp := *c
	cp.http = hc
	return &cp
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		apiErr := &Error{Status: resp.StatusCode}
		json.NewDecoder(resp.Body).Decode(apiErr)
		if apiErr.Title == "" {
			apiErr.Title = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// Health calls GET /health.
func (c *Client) Health(ctx context.Context) (api.HealthBody, error) {
	var out api.HealthBody
	err := c.do(ctx, http.MethodGet, "/health", nil, &out)
	return out, err
}

// Info calls GET /api/v1/info.
func (c *Client) Info(ctx context.Context) (api.InfoBody, error) {
	var out api.InfoBody
	err := c.do(ctx, http.MethodGet, "/api/v1/info", nil, &out)
	return out, err
}

// Describe calls POST /api/v1/describe.
func (c *Client) Describe(ctx context.Context, req api.DescribeRequest) (describe.Description, error) {
	var out describe.Description
	err := c.do(ctx, http.MethodPost, "/api/v1/describe", req, &out)
	return out, err
}

// Directions re-renders the targets of d for a new heading.
func (c *Client) Directions(ctx context.Context, d describe.Description, heading float64) (string, error) {
	in := map[string]any{"targets": d.Targets, "heading": heading}
	if d.Detail != "" {
		in["detail"] = d.Detail
	}
	if d.Targets == nil {
		in["targets"] = []describe.Target{}
	}
	var out api.DirectionsBody
	err := c.do(ctx, http.MethodPost, "/api/v1/directions", in, &out)
	return out.Text, err
}

// Tiles calls GET /api/v1/tiles.
func (c *Client) Tiles(ctx context.Context) ([]service.TileFile, error) {
	var out []service.TileFile
	err := c.do(ctx, http.MethodGet, "/api/v1/tiles", nil, &out)
	return out, err
}

// Reload calls POST /api/v1/tiles/reload.
func (c *Client) Reload(ctx context.Context) (service.ReloadResult, error) {
	var out service.ReloadResult
	err := c.do(ctx, http.MethodPost, "/api/v1/tiles/reload", nil, &out)
	return out, err
}
