// ABOUTME: Generic JSON CRUD client for one backend resource collection under <base>/api/<resource>.
// ABOUTME: Blocking, sequential requests with context; failures surface as errors and are never retried.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Resource names a backend collection.
type Resource string

const (
	Agents     Resource = "agents"
	Tools      Resource = "tools"
	Frameworks Resource = "frameworks"
	Swarms     Resource = "swarms"
)

// DefaultTimeout bounds a single request when no http.Client is supplied.
const DefaultTimeout = 30 * time.Second

// Option configures a Client.
type Option func(*options)

type options struct {
	httpClient *http.Client
	token      string
}

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// WithToken sends "Authorization: Bearer <token>" on every request.
func WithToken(token string) Option {
	return func(o *options) { o.token = token }
}

// WithTimeout sets the timeout of the default http.Client.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if o.httpClient == nil || o.httpClient == http.DefaultClient {
			o.httpClient = &http.Client{}
		}
		o.httpClient.Timeout = d
	}
}

// Client performs CRUD requests against one resource collection.
type Client struct {
	baseURL    string
	resource   Resource
	collection string
	httpClient *http.Client
	token      string
}

// New returns a client for resource on the backend at baseURL. A baseURL
// without a scheme ("127.0.0.1:5000") is treated as http.
func New(baseURL string, resource Resource, opts ...Option) *Client {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.httpClient == nil {
		o.httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	base := normalizeBaseURL(baseURL)
	return &Client{
		baseURL:    base,
		resource:   resource,
		collection: fmt.Sprintf("%s/api/%s", base, resource),
		httpClient: o.httpClient,
		token:      o.token,
	}
}

func normalizeBaseURL(u string) string {
	u = strings.TrimRight(strings.TrimSpace(u), "/")
	if !strings.Contains(u, "://") {
		u = "http://" + u
	}
	return u
}

// BaseURL returns the normalized backend root.
func (c *Client) BaseURL() string { return c.baseURL }

// Resource returns the collection this client talks to.
func (c *Client) Resource() Resource { return c.resource }

// Create POSTs rec and returns the stored record, including its id.
func (c *Client) Create(ctx context.Context, rec Record) (Record, error) {
	var out Record
	if err := c.do(ctx, http.MethodPost, c.collection, rec, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// List returns every record of the collection.
func (c *Client) List(ctx context.Context) ([]Record, error) {
	var out []Record
	if err := c.do(ctx, http.MethodGet, c.collection, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Get returns the record with the given id. An empty response body yields a
// nil record and no error.
func (c *Client) Get(ctx context.Context, id string) (Record, error) {
	var out Record
	if err := c.do(ctx, http.MethodGet, c.itemURL(id), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Update PUTs rec over the record with the given id.
func (c *Client) Update(ctx context.Context, id string, rec Record) (Record, error) {
	var out Record
	if err := c.do(ctx, http.MethodPut, c.itemURL(id), rec, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes the record with the given id.
func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, c.itemURL(id), nil, nil)
}

// itemURL escapes every segment after the collection; ids are opaque and
// may contain '/', '?' or '#'.
func (c *Client) itemURL(id string, sub ...string) string {
	parts := []string{c.collection, url.PathEscape(id)}
	for _, seg := range sub {
		parts = append(parts, url.PathEscape(seg))
	}
	return strings.Join(parts, "/")
}

// do sends one JSON request. A nil out discards the body; an empty body
// leaves out untouched.
func (c *Client) do(ctx context.Context, method, endpoint string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", c.resource, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, endpoint, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s response: %w", c.resource, err)
	}

	log.Debug().
		Str("method", method).
		Str("url", endpoint).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("api request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{
			Method:     method,
			URL:        endpoint,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(data)),
		}
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s response: %w", c.resource, err)
	}
	return nil
}
