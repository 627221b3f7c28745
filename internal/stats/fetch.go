package stats

import (
	"context"
	"io"
	"net/http"
	"time"
)

// DefaultTimeout bounds the fetch when the config does not set one.
const DefaultTimeout = 20 * time.Second

// Client fetches snapshots from a fixed stats URL.
type Client struct {
	url        string
	httpClient *http.Client
}

// NewClient creates a stats client for the given endpoint with the given
// connect+read timeout.
func NewClient(url string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Fetch issues a single GET to the stats endpoint and returns the validated
// snapshot. No retries: a failed exchange is a TransportError, a payload
// with a missing required key is a ValidationError.
func (c *Client) Fetch(ctx context.Context) (*Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, &TransportError{URL: c.url, Err: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{URL: c.url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &TransportError{URL: c.url, Status: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{URL: c.url, Err: err}
	}

	return Parse(body)
}
