package npm_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/agent-infra/tarko-agent-ui/pkg/domain/types"
	"github.com/agent-infra/tarko-agent-ui/pkg/infra/npm"
)

const testPackage = "@tarko/agent-ui-builder"

// newRegistryServer serves a minimal packument for testPackage plus its
// tarball endpoint.
func newRegistryServer(t *testing.T, tarball []byte) *httptest.Server {
	t.Helper()

	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/tarballs/") {
			w.Header().Set("Content-Type", "application/octet-stream")
			_, _ = w.Write(tarball)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{
			"dist-tags": {"latest": "0.3.0-beta.12"},
			"versions": {
				"0.3.0-beta.12": {"dist": {"tarball": "%s/tarballs/agent-ui-builder-0.3.0-beta.12.tgz"}},
				"0.3.0-beta.11": {"dist": {"tarball": "%s/tarballs/agent-ui-builder-0.3.0-beta.11.tgz"}}
			}
		}`, server.URL, server.URL)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestClient_LatestVersion(t *testing.T) {
	server := newRegistryServer(t, []byte("tarball-bytes"))
	client := npm.New(npm.WithBaseURL(server.URL))

	latest, err := client.LatestVersion(context.Background(), testPackage)
	gt.NoError(t, err)
	gt.Value(t, latest).Equal("0.3.0-beta.12")
}

func TestClient_LatestVersion_NoDistTag(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"dist-tags": {}, "versions": {}}`)
	}))
	defer server.Close()

	client := npm.New(npm.WithBaseURL(server.URL))

	_, err := client.LatestVersion(context.Background(), testPackage)
	gt.Error(t, err)
	gt.True(t, errors.Is(err, types.ErrRegistryLookup))
}

func TestClient_LatestVersion_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	client := npm.New(npm.WithBaseURL(server.URL))

	_, err := client.LatestVersion(context.Background(), testPackage)
	gt.Error(t, err)
	gt.True(t, errors.Is(err, types.ErrRegistryLookup))
}

func TestClient_Download(t *testing.T) {
	tarball := []byte("tarball-bytes")
	server := newRegistryServer(t, tarball)
	client := npm.New(npm.WithBaseURL(server.URL))

	data, err := client.Download(context.Background(), testPackage, "0.3.0-beta.12")
	gt.NoError(t, err)
	gt.Value(t, data).Equal(tarball)
}

func TestClient_Download_UnknownVersion(t *testing.T) {
	server := newRegistryServer(t, nil)
	client := npm.New(npm.WithBaseURL(server.URL))

	_, err := client.Download(context.Background(), testPackage, "9.9.9")
	gt.Error(t, err)
	gt.True(t, errors.Is(err, types.ErrRegistryLookup))
	gt.String(t, err.Error()).Contains("not published")
}

func TestClient_AuthToken(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		fmt.Fprint(w, `{"dist-tags": {"latest": "1.0.0"}, "versions": {}}`)
	}))
	defer server.Close()

	client := npm.New(npm.WithBaseURL(server.URL), npm.WithToken("npm-token-xyz"))

	_, err := client.LatestVersion(context.Background(), testPackage)
	gt.NoError(t, err)
	gt.Value(t, gotAuth).Equal("Bearer npm-token-xyz")
}

func TestClient_ScopedNameEscaping(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		fmt.Fprint(w, `{"dist-tags": {"latest": "1.0.0"}, "versions": {}}`)
	}))
	defer server.Close()

	client := npm.New(npm.WithBaseURL(server.URL))

	_, err := client.LatestVersion(context.Background(), testPackage)
	gt.NoError(t, err)
	gt.Value(t, gotPath).Equal("/@tarko%2Fagent-ui-builder")
}
