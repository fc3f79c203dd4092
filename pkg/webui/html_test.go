package webui_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/agent-infra/tarko-agent-ui/pkg/domain/types"
	"github.com/agent-infra/tarko-agent-ui/pkg/webui"
)

func TestInjectEnv(t *testing.T) {
	tests := []struct {
		name string
		html string
	}{
		{
			name: "plain head tag",
			html: "<html><head><title>t</title></head><body></body></html>",
		},
		{
			name: "head tag with attributes",
			html: `<html><head lang="en" data-x="1"><title>t</title></head></html>`,
		},
		{
			name: "uppercase head tag",
			html: "<HTML><HEAD><TITLE>t</TITLE></HEAD></HTML>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := webui.InjectEnv(tt.html, "http://localhost:8888", map[string]any{"title": "Demo"})
			if err != nil {
				t.Fatalf("InjectEnv() unexpected error: %v", err)
			}

			if !strings.Contains(out, `window.AGENT_BASE_URL = "http://localhost:8888";`) {
				t.Errorf("base URL not injected:\n%s", out)
			}
			if !strings.Contains(out, `window.AGENT_WEB_UI_CONFIG = {"title":"Demo"};`) {
				t.Errorf("UI config not injected:\n%s", out)
			}

			// The script must land right after the opening head tag, before
			// any bundle script that reads the globals.
			scriptAt := strings.Index(out, "<script>")
			if scriptAt < 0 {
				t.Fatalf("no script tag injected:\n%s", out)
			}
			if !strings.Contains(strings.ToLower(out[:scriptAt]), "<head") {
				t.Errorf("script injected before the head tag:\n%s", out)
			}
			titleAt := strings.Index(strings.ToLower(out), "<title>")
			if titleAt >= 0 && scriptAt > titleAt {
				t.Errorf("script injected after existing head content:\n%s", out)
			}
		})
	}
}

func TestInjectEnv_NoHead(t *testing.T) {
	_, err := webui.InjectEnv("<html><body>no head here</body></html>", "", nil)
	if !errors.Is(err, types.ErrHeadNotFound) {
		t.Errorf("InjectEnv() error = %v, want ErrHeadNotFound", err)
	}
}

func TestInjectEnv_NilConfig(t *testing.T) {
	out, err := webui.InjectEnv("<head></head>", "http://x", nil)
	if err != nil {
		t.Fatalf("InjectEnv() unexpected error: %v", err)
	}
	if !strings.Contains(out, "window.AGENT_WEB_UI_CONFIG = {};") {
		t.Errorf("nil config should inject an empty object:\n%s", out)
	}
}

func TestAgentUIHTML(t *testing.T) {
	t.Run("embedded bundle", func(t *testing.T) {
		out, err := webui.AgentUIHTML("", "http://localhost:3000", nil)
		if err != nil {
			t.Fatalf("AgentUIHTML() unexpected error: %v", err)
		}
		if !strings.Contains(out, "window.AGENT_BASE_URL") {
			t.Error("embedded index.html was served without injection")
		}
	})

	t.Run("on-disk bundle", func(t *testing.T) {
		dir := t.TempDir()
		html := "<html><head></head><body>on disk</body></html>"
		if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte(html), 0644); err != nil {
			t.Fatal(err)
		}

		out, err := webui.AgentUIHTML(dir, "", map[string]any{})
		if err != nil {
			t.Fatalf("AgentUIHTML() unexpected error: %v", err)
		}
		if !strings.Contains(out, "on disk") {
			t.Error("on-disk index.html was not used")
		}
		if !strings.Contains(out, "window.AGENT_BASE_URL") {
			t.Error("on-disk index.html was served without injection")
		}
	})

	t.Run("unusable directory", func(t *testing.T) {
		_, err := webui.AgentUIHTML(filepath.Join(t.TempDir(), "absent"), "", nil)
		if !errors.Is(err, types.ErrFileNotFound) {
			t.Errorf("AgentUIHTML() error = %v, want ErrFileNotFound", err)
		}
	})
}
