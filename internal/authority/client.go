// Package authority is the verifier-side HTTP client for the Attesta
// authority's public redemption endpoint.
package authority

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	dErrors "attesta/pkg/domain-errors"
)

// Disclosure is the redemption verdict as served by the authority. Attributes
// are already purpose-filtered server-side; the client never sees more.
type Disclosure struct {
	Valid      bool              `json:"valid"`
	Purpose    string            `json:"purpose,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

const defaultTimeout = 10 * time.Second

// Client calls the authority over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

type Option func(*Client)

// WithHTTPClient injects a custom http.Client, e.g. with tighter timeouts.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// NewClient creates a Client against the authority at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Redeem exchanges a request identifier for its disclosure verdict. The
// identifier is sent as scanned; the authority decides whether it names a
// request. The request is built from ctx, so cancelling ctx aborts an
// in-flight redemption. Redemption is one-shot on the authority side; the
// client never retries.
func (c *Client) Redeem(ctx context.Context, requestID string) (*Disclosure, error) {
	endpoint := fmt.Sprintf("%s/api/verify/%s", c.baseURL, url.PathEscape(requestID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to build redemption request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeTimeout, "redemption aborted")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "authority unreachable")
	}
	defer resp.Body.Close()

	// The authority serves verdicts, valid or not, as 200; anything else is
	// a fault on one side or the other.
	if resp.StatusCode != http.StatusOK {
		return nil, dErrors.New(dErrors.CodeInternal,
			fmt.Sprintf("authority returned status %d", resp.StatusCode))
	}

	var disclosure Disclosure
	if err := json.NewDecoder(resp.Body).Decode(&disclosure); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "malformed authority response")
	}
	return &disclosure, nil
}
