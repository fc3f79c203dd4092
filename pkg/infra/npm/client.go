package npm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/agent-infra/tarko-agent-ui/pkg/domain/interfaces"
	"github.com/agent-infra/tarko-agent-ui/pkg/domain/types"
)

type client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// Option configures the registry client
type Option func(*client)

// WithBaseURL points the client at a different registry endpoint
func WithBaseURL(u string) Option {
	return func(c *client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithToken sets a bearer token for private registries
func WithToken(token string) Option {
	return func(c *client) {
		c.token = token
	}
}

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *client) {
		c.httpClient = hc
	}
}

// New creates an npm registry client
func New(opts ...Option) interfaces.RegistryClient {
	c := &client{
		baseURL:    types.DefaultRegistryURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// packument is the subset of the registry metadata document we read
type packument struct {
	DistTags map[string]string           `json:"dist-tags"`
	Versions map[string]packumentVersion `json:"versions"`
}

type packumentVersion struct {
	Dist struct {
		Tarball string `json:"tarball"`
	} `json:"dist"`
}

// LatestVersion returns the version the "latest" dist-tag points at
func (c *client) LatestVersion(ctx context.Context, pkg string) (string, error) {
	doc, err := c.packument(ctx, pkg)
	if err != nil {
		return "", err
	}
	latest := doc.DistTags["latest"]
	if latest == "" {
		return "", goerr.Wrap(types.ErrRegistryLookup, "package has no latest dist-tag", goerr.V("package", pkg))
	}
	return latest, nil
}

// Download fetches the tarball of an exact published version
func (c *client) Download(ctx context.Context, pkg, version string) ([]byte, error) {
	doc, err := c.packument(ctx, pkg)
	if err != nil {
		return nil, err
	}
	ver, ok := doc.Versions[version]
	if !ok || ver.Dist.Tarball == "" {
		return nil, goerr.Wrap(types.ErrRegistryLookup, "version is not published",
			goerr.V("package", pkg), goerr.V("version", version))
	}

	data, err := c.get(ctx, ver.Dist.Tarball)
	if err != nil {
		return nil, goerr.Wrap(types.ErrRegistryLookup, "failed to download tarball",
			goerr.V("url", ver.Dist.Tarball), goerr.V("cause", err))
	}
	return data, nil
}

func (c *client) packument(ctx context.Context, pkg string) (*packument, error) {
	url := c.baseURL + "/" + escapeName(pkg)
	data, err := c.get(ctx, url)
	if err != nil {
		return nil, goerr.Wrap(types.ErrRegistryLookup, "failed to query registry",
			goerr.V("package", pkg), goerr.V("url", url), goerr.V("cause", err))
	}
	var doc packument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, goerr.Wrap(types.ErrRegistryLookup, "failed to parse registry response",
			goerr.V("package", pkg), goerr.V("cause", err))
	}
	return &doc, nil
}

func (c *client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create request")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code %d for %s", resp.StatusCode, url)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read response body")
	}
	return data, nil
}

// escapeName encodes a package name for use in a registry URL. Scoped
// names keep the "@" but escape the separating slash.
func escapeName(pkg string) string {
	return strings.ReplaceAll(pkg, "/", "%2F")
}
