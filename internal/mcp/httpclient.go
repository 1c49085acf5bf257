package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/meltforce/vizofit/internal/activity"
	"github.com/meltforce/vizofit/internal/intensity"
	"github.com/meltforce/vizofit/internal/models"
	"github.com/meltforce/vizofit/internal/session"
	"github.com/meltforce/vizofit/internal/storage"
)

// HTTPClient implements DataSource by calling the Vizofit REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but
// the library lives on the remote server (accessed over Tailscale).
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// Compile-time check: HTTPClient satisfies DataSource.
var _ DataSource = (*HTTPClient)(nil)

// NewHTTPClient creates an HTTPClient targeting the given base URL.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPClient) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("httpclient: create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("httpclient: read body: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return body, nil
	case http.StatusNotFound:
		return nil, fmt.Errorf("httpclient: %s: %w", path, storage.ErrNotFound)
	case http.StatusPaymentRequired:
		return nil, fmt.Errorf("httpclient: %s: %w", path, intensity.ErrUpgradeRequired)
	}
	return nil, fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, body)
}

func (c *HTTPClient) ListRoutines(ctx context.Context, query string) ([]models.SavedWorkout, error) {
	params := url.Values{}
	if query != "" {
		params.Set("q", query)
	}
	body, err := c.get(ctx, "/api/v1/routines", params)
	if err != nil {
		return nil, err
	}

	var list []models.SavedWorkout
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("httpclient: decode routines: %w", err)
	}
	return list, nil
}

func (c *HTTPClient) GetRoutine(ctx context.Context, id string, level int, system models.UnitSystem) (*session.Display, error) {
	params := url.Values{}
	params.Set("intensity", strconv.Itoa(level))
	if system != "" {
		params.Set("units", string(system))
	}
	body, err := c.get(ctx, "/api/v1/routines/"+url.PathEscape(id), params)
	if err != nil {
		return nil, err
	}

	var d session.Display
	if err := json.Unmarshal(body, &d); err != nil {
		return nil, fmt.Errorf("httpclient: decode routine: %w", err)
	}
	return &d, nil
}

func (c *HTTPClient) GetActivity(ctx context.Context, limit int) (*activity.Report, error) {
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	body, err := c.get(ctx, "/api/v1/activity", params)
	if err != nil {
		return nil, err
	}

	var r activity.Report
	if err := json.Unmarshal(body, &r); err != nil {
		return nil, fmt.Errorf("httpclient: decode activity: %w", err)
	}
	return &r, nil
}
