package goproxy

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/mod/module"

	"github.com/agent-infra/tarko-agent-ui/pkg/domain/interfaces"
	"github.com/agent-infra/tarko-agent-ui/pkg/domain/types"
)

type client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures the proxy client
type Option func(*client)

// WithBaseURL points the client at a different proxy endpoint
func WithBaseURL(u string) Option {
	return func(c *client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *client) {
		c.httpClient = hc
	}
}

// New creates a Go module proxy client
func New(opts ...Option) interfaces.ModuleProxy {
	c := &client{
		baseURL:    types.DefaultProxyURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// VersionAvailable reports whether module@version is served by the proxy.
// A 404 or 410 means "not yet indexed" rather than an error, so polling
// callers can keep waiting.
func (c *client) VersionAvailable(ctx context.Context, mod, version string) (bool, error) {
	escaped, err := module.EscapePath(mod)
	if err != nil {
		return false, goerr.Wrap(err, "invalid module path", goerr.V("module", mod))
	}
	url := fmt.Sprintf("%s/%s/@v/%s.info", c.baseURL, escaped, version)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, goerr.Wrap(err, "failed to create request")
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, goerr.Wrap(err, "failed to query module proxy", goerr.V("url", url))
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound, http.StatusGone:
		return false, nil
	default:
		return false, goerr.New("unexpected status code from module proxy",
			goerr.V("status", resp.StatusCode),
			goerr.V("url", url),
		)
	}
}
