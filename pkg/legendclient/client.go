// Package legendclient is a typed Go client for the plat-legend HTTP API.
//
// Methods mirror the server's operations one to one and return the raw
// response alongside the decoded body, so callers can inspect headers
// (Link relations, content types) without re-issuing requests.
package legendclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// Client talks to one plat-legend server.
type Client struct {
	baseURL string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient swaps the underlying HTTP client, e.g. for timeouts or
// test transports.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// New creates a client for the server at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// APIError is the problem-details body carried by error responses.
type APIError struct {
	Title  string        `json:"title,omitempty"`
	Status int           `json:"status,omitempty"`
	Detail string        `json:"detail,omitempty"`
	Errors []ErrorDetail `json:"errors,omitempty"`
}

// ErrorDetail locates one fault inside a rejected request.
type ErrorDetail struct {
	Message  string `json:"message,omitempty"`
	Location string `json:"location,omitempty"`
	Value    any    `json:"value,omitempty"`
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", e.Title, e.Detail)
	}
	return e.Title
}

// HealthBody reports liveness.
type HealthBody struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// InfoBody describes the running service.
type InfoBody struct {
	Name     string   `json:"name"`
	Version  string   `json:"version"`
	DataDir  string   `json:"data_dir"`
	DB       bool     `json:"db"`
	Features []string `json:"features"`
}

// Style mirrors the server's entry style shape.
type Style struct {
	Fill        string    `json:"fill,omitempty"`
	Stroke      string    `json:"stroke,omitempty"`
	StrokeWidth float64   `json:"strokeWidth,omitempty"`
	PointRadius float64   `json:"pointRadius,omitempty"`
	Opacity     float64   `json:"opacity,omitempty"`
	Dash        []float64 `json:"dash,omitempty"`
}

// LegendRow is a hand-authored legend row on a layer definition.
type LegendRow struct {
	Label string `json:"label"`
	Kind  string `json:"kind,omitempty"`
	Style *Style `json:"style,omitempty"`
}

// LayerConfig is a layer definition as stored in the catalog.
type LayerConfig struct {
	ID            string      `json:"id,omitempty"`
	Name          string      `json:"name"`
	File          string      `json:"file,omitempty"`
	Table         string      `json:"table,omitempty"`
	Category      string      `json:"category,omitempty"`
	LabelProperty string      `json:"labelProperty,omitempty"`
	GeomType      string      `json:"geomType,omitempty"`
	Visible       bool        `json:"visible"`
	Opacity       float64     `json:"opacity,omitempty"`
	MinResolution float64     `json:"minResolution,omitempty"`
	MaxResolution float64     `json:"maxResolution,omitempty"`
	Style         Style       `json:"style,omitempty"`
	Legend        []LegendRow `json:"legend,omitempty"`
	NoCollapse    bool        `json:"noCollapse,omitempty"`
}

// CreatedLayer is the response to a create.
type CreatedLayer struct {
	ID      string      `json:"id"`
	Layer   LayerConfig `json:"layer"`
	Message string      `json:"message"`
}

// MessageBody carries a human-readable result.
type MessageBody struct {
	Message string `json:"message"`
}

// LegendEntry is one row of a collected legend block.
type LegendEntry struct {
	Label string `json:"label"`
	Style *Style `json:"style,omitempty"`
	Kind  string `json:"kind,omitempty"`
}

// LegendBlock is one layer's legend contribution.
type LegendBlock struct {
	Title   string        `json:"title,omitempty"`
	Entries []LegendEntry `json:"entries"`
}

// LegendBody is a point-in-time legend collection.
type LegendBody struct {
	Resolution  float64       `json:"resolution"`
	Blocks      []LegendBlock `json:"blocks"`
	Collapsible bool          `json:"collapsible"`
	Defects     []string      `json:"defects,omitempty"`
}

// SourceFile describes a GeoJSON file in the sources directory.
type SourceFile struct {
	Name     string `json:"name"`
	Size     string `json:"size"`
	FileType string `json:"fileType"`
}

// PreviewFile describes an exported preview PNG.
type PreviewFile struct {
	Name string `json:"name"`
	Size string `json:"size"`
}

// Page is one window of a paginated listing.
type Page[T any] struct {
	Total  int `json:"total"`
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
	Data   []T `json:"data"`
}

// TablesBody lists the DuckDB tables available for table-derived legends.
type TablesBody struct {
	Tables []string `json:"tables"`
}

// Health checks server liveness.
func (c *Client) Health(ctx context.Context) (*http.Response, *HealthBody, error) {
	var body HealthBody
	resp, err := c.doJSON(ctx, http.MethodGet, "/health", nil, nil, &body)
	if err != nil {
		return resp, nil, err
	}
	return resp, &body, nil
}

// GetInfo fetches service metadata and feature flags.
func (c *Client) GetInfo(ctx context.Context) (*http.Response, *InfoBody, error) {
	var body InfoBody
	resp, err := c.doJSON(ctx, http.MethodGet, "/api/v1/info", nil, nil, &body)
	if err != nil {
		return resp, nil, err
	}
	return resp, &body, nil
}

// ListLayers returns the catalog in draw order.
func (c *Client) ListLayers(ctx context.Context) (*http.Response, []LayerConfig, error) {
	var body []LayerConfig
	resp, err := c.doJSON(ctx, http.MethodGet, "/api/v1/layers", nil, nil, &body)
	if err != nil {
		return resp, nil, err
	}
	return resp, body, nil
}

// CreateLayer appends a layer to the catalog.
func (c *Client) CreateLayer(ctx context.Context, layer LayerConfig) (*http.Response, *CreatedLayer, error) {
	var body CreatedLayer
	resp, err := c.doJSON(ctx, http.MethodPost, "/api/v1/layers", nil, layer, &body)
	if err != nil {
		return resp, nil, err
	}
	return resp, &body, nil
}

// GetLayer fetches one layer definition.
func (c *Client) GetLayer(ctx context.Context, id string) (*http.Response, *LayerConfig, error) {
	var body LayerConfig
	resp, err := c.doJSON(ctx, http.MethodGet, "/api/v1/layers/"+url.PathEscape(id), nil, nil, &body)
	if err != nil {
		return resp, nil, err
	}
	return resp, &body, nil
}

// UpdateLayer replaces a layer definition.
func (c *Client) UpdateLayer(ctx context.Context, id string, layer LayerConfig) (*http.Response, *LayerConfig, error) {
	var body LayerConfig
	resp, err := c.doJSON(ctx, http.MethodPut, "/api/v1/layers/"+url.PathEscape(id), nil, layer, &body)
	if err != nil {
		return resp, nil, err
	}
	return resp, &body, nil
}

// DeleteLayer removes a layer from the catalog.
func (c *Client) DeleteLayer(ctx context.Context, id string) (*http.Response, *MessageBody, error) {
	var body MessageBody
	resp, err := c.doJSON(ctx, http.MethodDelete, "/api/v1/layers/"+url.PathEscape(id), nil, nil, &body)
	if err != nil {
		return resp, nil, err
	}
	return resp, &body, nil
}

// MoveLayer repositions a layer in the draw order. Position 0 is the
// bottom of the stack.
func (c *Client) MoveLayer(ctx context.Context, id string, position int) (*http.Response, *MessageBody, error) {
	var body MessageBody
	in := struct {
		Position int `json:"position"`
	}{Position: position}
	resp, err := c.doJSON(ctx, http.MethodPost, "/api/v1/layers/"+url.PathEscape(id)+"/move", nil, in, &body)
	if err != nil {
		return resp, nil, err
	}
	return resp, &body, nil
}

// GetLegend collects the legend the catalog would produce at the given
// view resolution.
func (c *Client) GetLegend(ctx context.Context, resolution float64) (*http.Response, *LegendBody, error) {
	q := url.Values{}
	if resolution > 0 {
		q.Set("resolution", strconv.FormatFloat(resolution, 'f', -1, 64))
	}
	var body LegendBody
	resp, err := c.doJSON(ctx, http.MethodGet, "/api/v1/legend", q, nil, &body)
	if err != nil {
		return resp, nil, err
	}
	return resp, &body, nil
}

// LayerPreview renders one legend entry's preview icon and returns the
// PNG bytes. entry indexes the layer's legend rows; scale multiplies the
// base icon size (1-4).
func (c *Client) LayerPreview(ctx context.Context, id string, entry, scale int) (*http.Response, []byte, error) {
	q := url.Values{}
	if entry > 0 {
		q.Set("entry", strconv.Itoa(entry))
	}
	if scale > 1 {
		q.Set("scale", strconv.Itoa(scale))
	}
	return c.do(ctx, http.MethodGet, "/api/v1/layers/"+url.PathEscape(id)+"/preview", q, nil)
}

// ListSources lists the GeoJSON files available to file-backed layers.
func (c *Client) ListSources(ctx context.Context) (*http.Response, []SourceFile, error) {
	var body []SourceFile
	resp, err := c.doJSON(ctx, http.MethodGet, "/api/v1/sources", nil, nil, &body)
	if err != nil {
		return resp, nil, err
	}
	return resp, body, nil
}

// ListPreviews pages through the exported preview PNGs. limit 0 uses the
// server default.
func (c *Client) ListPreviews(ctx context.Context, offset, limit int) (*http.Response, *Page[PreviewFile], error) {
	q := url.Values{}
	if offset > 0 {
		q.Set("offset", strconv.Itoa(offset))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var body Page[PreviewFile]
	resp, err := c.doJSON(ctx, http.MethodGet, "/api/v1/previews", q, nil, &body)
	if err != nil {
		return resp, nil, err
	}
	return resp, &body, nil
}

// ListTables lists the DuckDB tables table-derived layers can bind to.
func (c *Client) ListTables(ctx context.Context) (*http.Response, *TablesBody, error) {
	var body TablesBody
	resp, err := c.doJSON(ctx, http.MethodGet, "/api/v1/tables", nil, nil, &body)
	if err != nil {
		return resp, nil, err
	}
	return resp, &body, nil
}

// do issues one request and returns the raw body. Responses with an
// error status decode into *APIError.
func (c *Client) do(ctx context.Context, method, path string, q url.Values, in any) (*http.Response, []byte, error) {
	var reqBody io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return nil, nil, err
		}
		reqBody = bytes.NewReader(buf)
	}
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return nil, nil, err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp, nil, err
	}
	if resp.StatusCode >= 400 {
		apiErr := &APIError{}
		_ = json.Unmarshal(data, apiErr)
		if apiErr.Status == 0 {
			apiErr.Status = resp.StatusCode
		}
		if apiErr.Title == "" {
			apiErr.Title = resp.Status
		}
		return resp, data, apiErr
	}
	return resp, data, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, q url.Values, in, out any) (*http.Response, error) {
	resp, data, err := c.do(ctx, method, path, q, in)
	if err != nil {
		return resp, err
	}
	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return resp, fmt.Errorf("decode %s %s: %w", method, path, err)
		}
	}
	return resp, nil
}
