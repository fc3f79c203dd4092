package webui

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/m-mizutani/goerr/v2"

	"github.com/agent-infra/tarko-agent-ui/pkg/domain/types"
)

// first opening head tag, attributes allowed
var headRe = regexp.MustCompile(`(?i)<head[^>]*>`)

// AgentUIHTML loads the bundle's index.html and injects the runtime
// environment into it. dir selects an on-disk bundle; the empty string
// selects the embedded one.
func AgentUIHTML(dir, baseURL string, uiConfig map[string]any) (string, error) {
	var data []byte
	if dir == "" {
		b, err := embeddedFS.ReadFile("static/index.html")
		if err != nil {
			return "", goerr.Wrap(types.ErrFileNotFound, "embedded bundle has no index.html")
		}
		data = b
	} else {
		resolved, err := StaticDir(dir)
		if err != nil {
			return "", err
		}
		b, err := os.ReadFile(filepath.Join(resolved, "index.html"))
		if err != nil {
			return "", goerr.Wrap(err, "failed to read index.html", goerr.V("dir", resolved))
		}
		data = b
	}
	return InjectEnv(string(data), baseURL, uiConfig)
}

// InjectEnv inserts a script defining window.AGENT_BASE_URL and
// window.AGENT_WEB_UI_CONFIG immediately after the first <head> tag.
func InjectEnv(html, baseURL string, uiConfig map[string]any) (string, error) {
	loc := headRe.FindStringIndex(html)
	if loc == nil {
		return "", goerr.Wrap(types.ErrHeadNotFound, "cannot inject runtime environment")
	}
	script, err := envScript(baseURL, uiConfig)
	if err != nil {
		return "", err
	}
	return html[:loc[1]] + script + html[loc[1]:], nil
}

func envScript(baseURL string, uiConfig map[string]any) (string, error) {
	if uiConfig == nil {
		uiConfig = map[string]any{}
	}
	cfg, err := json.Marshal(uiConfig)
	if err != nil {
		return "", goerr.Wrap(err, "failed to encode UI config")
	}
	base, err := json.Marshal(baseURL)
	if err != nil {
		return "", goerr.Wrap(err, "failed to encode base URL")
	}
	return fmt.Sprintf(`
    <script>
      window.AGENT_BASE_URL = %s;
      window.AGENT_WEB_UI_CONFIG = %s;
      console.log("AGENT_BASE_URL:", window.AGENT_BASE_URL);
    </script>`, base, cfg), nil
}
