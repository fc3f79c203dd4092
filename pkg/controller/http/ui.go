package http

import (
	"context"
	"net/http"

	"github.com/m-mizutani/ctxlog"

	"github.com/agent-infra/tarko-agent-ui/pkg/webui"
)

// UIHandler serves the agent web UI. It prefers an on-disk bundle and
// falls back to the embedded one when the directory is absent or
// incomplete, so the server always has something to serve.
type UIHandler struct {
	staticDir string // resolved on-disk bundle, empty when embedded
	embedded  bool
	baseURL   string
	uiConfig  map[string]any
}

// NewUIHandler resolves the bundle source once at construction
func NewUIHandler(ctx context.Context, staticDir, baseURL string, uiConfig map[string]any) *UIHandler {
	h := &UIHandler{
		baseURL:  baseURL,
		uiConfig: uiConfig,
	}
	if staticDir != "" {
		resolved, err := webui.StaticDir(staticDir)
		if err == nil {
			h.staticDir = resolved
			return h
		}
		ctxlog.From(ctx).Warn("static directory not usable, serving embedded bundle",
			"dir", staticDir, "error", err)
	}
	h.embedded = true
	return h
}

// HandleIndex serves the UI entry point with the runtime environment
// injected
func (h *UIHandler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	html, err := webui.AgentUIHTML(h.staticDir, h.baseURL, h.uiConfig)
	if err != nil {
		writeError(w, r, err, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(html)); err != nil {
		ctxlog.From(r.Context()).Error("Failed to write index response", "error", err)
	}
}

// StaticHandler serves the raw bundle files
func (h *UIHandler) StaticHandler() http.Handler {
	if h.embedded {
		return http.FileServer(http.FS(webui.Static()))
	}
	return http.FileServer(http.Dir(h.staticDir))
}
