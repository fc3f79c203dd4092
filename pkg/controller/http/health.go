package http

import (
	"encoding/json"
	"net/http"

	"github.com/m-mizutani/ctxlog"

	"github.com/agent-infra/tarko-agent-ui/pkg/domain/model"
	"github.com/agent-infra/tarko-agent-ui/pkg/domain/types"
	"github.com/agent-infra/tarko-agent-ui/pkg/webui"
)

// HandleHealth handles health check requests
func (h *UIHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	stamp := webui.StaticVersion(h.staticDir)
	status := &model.HealthStatus{
		Status:  "healthy",
		Service: types.ServiceName,
		Version: webui.Version,
		Assets: model.AssetHealth{
			Available: true,
			Embedded:  h.embedded,
			Dir:       h.staticDir,
			Version:   stamp.Version,
		},
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(status); err != nil {
		ctxlog.From(r.Context()).Error("Failed to encode health response", "error", err)
	}
}
