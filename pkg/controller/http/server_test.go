package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	controller "github.com/agent-infra/tarko-agent-ui/pkg/controller/http"
	"github.com/agent-infra/tarko-agent-ui/pkg/domain/model"
)

func newTestServer(t *testing.T, opts ...controller.Option) *controller.Server {
	t.Helper()
	ctx := context.Background()

	opts = append([]controller.Option{controller.WithAddr("localhost:0")}, opts...)
	server, err := controller.NewServer(ctx, opts...)
	if err != nil {
		t.Fatalf("Failed to create server: %v", err)
	}
	return server
}

// writeBundle sets up an on-disk bundle with an injectable index page.
func writeBundle(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	index := `<!DOCTYPE html>
<html>
  <head>
    <title>on-disk bundle marker</title>
  </head>
  <body><div id="root"></div></body>
</html>
`
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte(index), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "app.js"), []byte("console.log('ready');"), 0644); err != nil {
		t.Fatal(err)
	}
	stamp := `{"package":"@tarko/agent-ui-builder","version":"9.9.9","fetched_at":"2026-08-20T12:00:00Z"}`
	if err := os.WriteFile(filepath.Join(dir, "version.json"), []byte(stamp), 0644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestIndexEndpoint_Embedded(t *testing.T) {
	server := newTestServer(t,
		controller.WithBaseURL("http://localhost:8888"),
		controller.WithUIConfig(map[string]any{"title": "Demo"}),
	)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	server.Handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Status code = %v, want %v", w.Code, http.StatusOK)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q, want text/html", ct)
	}
	if cc := w.Header().Get("Cache-Control"); cc != "no-cache" {
		t.Errorf("Cache-Control = %q, want no-cache for the injected page", cc)
	}

	body := w.Body.String()
	if !strings.Contains(body, "Tarko Agent UI") {
		t.Error("Body should contain the embedded UI page")
	}
	if !strings.Contains(body, `window.AGENT_BASE_URL = "http://localhost:8888";`) {
		t.Error("Body should contain the injected base URL")
	}
	if !strings.Contains(body, `window.AGENT_WEB_UI_CONFIG = {"title":"Demo"};`) {
		t.Error("Body should contain the injected UI config")
	}
}

func TestIndexEndpoint_StaticDir(t *testing.T) {
	dir := writeBundle(t)
	server := newTestServer(t,
		controller.WithStaticDir(dir),
		controller.WithBaseURL("http://localhost:9999"),
	)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	server.Handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Status code = %v, want %v", w.Code, http.StatusOK)
	}

	body := w.Body.String()
	if !strings.Contains(body, "on-disk bundle marker") {
		t.Error("Body should come from the on-disk bundle")
	}
	if !strings.Contains(body, `window.AGENT_BASE_URL = "http://localhost:9999";`) {
		t.Error("Body should contain the injected base URL")
	}
}

func TestIndexEndpoint_FallbackToEmbedded(t *testing.T) {
	// An unusable directory falls back to the embedded bundle instead of
	// failing the server.
	server := newTestServer(t, controller.WithStaticDir(filepath.Join(t.TempDir(), "missing")))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	server.Handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Status code = %v, want %v", w.Code, http.StatusOK)
	}
	if !strings.Contains(w.Body.String(), "Tarko Agent UI") {
		t.Error("Body should contain the embedded UI page")
	}
}

func TestHealthEndpoint(t *testing.T) {
	server := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	server.Handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Status code = %v, want %v", w.Code, http.StatusOK)
	}

	var status model.HealthStatus
	if err := json.NewDecoder(w.Body).Decode(&status); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if status.Status != "healthy" {
		t.Errorf("Status = %v, want healthy", status.Status)
	}
	if status.Service != "tarko-agent-ui" {
		t.Errorf("Service = %v, want tarko-agent-ui", status.Service)
	}
	if status.Version == "" {
		t.Error("Version should not be empty")
	}
	if !status.Assets.Embedded {
		t.Error("Assets.Embedded should be true without a static dir")
	}
	if status.Assets.Version == "" {
		t.Error("Assets.Version should carry the bundle stamp")
	}
}

func TestHealthEndpoint_StaticDir(t *testing.T) {
	dir := writeBundle(t)
	server := newTestServer(t, controller.WithStaticDir(dir))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	server.Handler.ServeHTTP(w, req)

	var status model.HealthStatus
	if err := json.NewDecoder(w.Body).Decode(&status); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if status.Assets.Embedded {
		t.Error("Assets.Embedded should be false with a usable static dir")
	}
	if status.Assets.Dir != dir {
		t.Errorf("Assets.Dir = %q, want %q", status.Assets.Dir, dir)
	}
	if status.Assets.Version != "9.9.9" {
		t.Errorf("Assets.Version = %q, want 9.9.9", status.Assets.Version)
	}
}

func TestStaticEndpoint(t *testing.T) {
	dir := writeBundle(t)
	server := newTestServer(t, controller.WithStaticDir(dir))

	req := httptest.NewRequest(http.MethodGet, "/static/app.js", nil)
	w := httptest.NewRecorder()
	server.Handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Status code = %v, want %v", w.Code, http.StatusOK)
	}
	if got := w.Body.String(); got != "console.log('ready');" {
		t.Errorf("Body = %q, want the raw file", got)
	}
	if cc := w.Header().Get("Cache-Control"); !strings.Contains(cc, "immutable") {
		t.Errorf("Cache-Control = %q, want immutable for bundle files", cc)
	}

	req = httptest.NewRequest(http.MethodGet, "/static/missing.js", nil)
	w = httptest.NewRecorder()
	server.Handler.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Status code = %v, want %v", w.Code, http.StatusNotFound)
	}
}

func TestStaticEndpoint_Embedded(t *testing.T) {
	server := newTestServer(t)

	// Raw files come straight from the embedded bundle, no injection.
	req := httptest.NewRequest(http.MethodGet, "/static/version.json", nil)
	w := httptest.NewRecorder()
	server.Handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Status code = %v, want %v", w.Code, http.StatusOK)
	}
	if !strings.Contains(w.Body.String(), "@tarko/agent-ui-builder") {
		t.Error("Body should carry the embedded version stamp")
	}
}
