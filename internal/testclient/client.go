package testclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// TestClient talks to a running planet map server over HTTP.
type TestClient struct {
	Name    string
	baseURL string
	http    *http.Client
}

// Response is a fully read HTTP response.
type Response struct {
	Status      int
	ContentType string
	Header      http.Header
	Body        []byte
}

// JSON decodes the body as a flat object of strings.
func (r *Response) JSON() (map[string]string, error) {
	var out map[string]string
	if err := json.Unmarshal(r.Body, &out); err != nil {
		return nil, fmt.Errorf("decode %q: %w", truncate(string(r.Body), 80), err)
	}
	return out, nil
}

// NewTestClient creates a client for the server at address (host:port or a
// full http:// URL).
func NewTestClient(name string, address string) *TestClient {
	base := address
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "http://" + base
	}
	return &TestClient{
		Name:    name,
		baseURL: strings.TrimRight(base, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// Get fetches path relative to the server root.
func (c *TestClient) Get(path string) (*Response, error) {
	return c.do(http.MethodGet, path, "")
}

// Post sends body to path as JSON.
func (c *TestClient) Post(path, body string) (*Response, error) {
	return c.do(http.MethodPost, path, body)
}

// CreateWorld posts body to /new and returns the decoded world.
func (c *TestClient) CreateWorld(body string) (map[string]string, error) {
	resp, err := c.Post("/new", body)
	if err != nil {
		return nil, err
	}
	if resp.Status != http.StatusOK {
		return nil, fmt.Errorf("create world: status %d", resp.Status)
	}
	return resp.JSON()
}

// GetWorld looks up a world by its id segment.
func (c *TestClient) GetWorld(id string) (*Response, error) {
	return c.Get("/get/" + id)
}

// Tile fetches /tiles/{world}/{z}/{x}/{y}.
func (c *TestClient) Tile(world string, z uint32, x, y float64) (*Response, error) {
	return c.Get(fmt.Sprintf("/tiles/%s/%d/%g/%g", world, z, x, y))
}

func (c *TestClient) do(method, path, body string) (*Response, error) {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Name != "" {
		req.Header.Set("X-Request-ID", c.Name)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s %s: %w", method, path, err)
	}
	return &Response{
		Status:      resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Header:      resp.Header,
		Body:        data,
	}, nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
