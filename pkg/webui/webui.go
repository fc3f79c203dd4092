// Package webui exposes the redistributed @tarko/agent-ui-builder static
// bundle. The bundle under static/ is embedded into the module so imports
// work without any download; the release pipeline refreshes it from npm
// before each release.
package webui

import (
	"embed"
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/m-mizutani/goerr/v2"

	"github.com/agent-infra/tarko-agent-ui/pkg/domain/model"
	"github.com/agent-infra/tarko-agent-ui/pkg/domain/types"
)

//go:embed static
var embeddedFS embed.FS

// VersionStampFile is the name of the provenance stamp written next to
// the extracted bundle.
const VersionStampFile = "version.json"

// Static returns the embedded bundle filesystem, rooted at its content.
func Static() fs.FS {
	sub, err := fs.Sub(embeddedFS, "static")
	if err != nil {
		panic("embed: static sub-fs failed: " + err.Error())
	}
	return sub
}

// StaticDir verifies that dir holds a usable bundle (the directory exists
// and contains index.html) and returns its absolute path.
func StaticDir(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", goerr.Wrap(err, "failed to resolve static directory", goerr.V("dir", dir))
	}
	st, err := os.Stat(abs)
	if err != nil || !st.IsDir() {
		return "", goerr.Wrap(types.ErrFileNotFound,
			"static directory not found, run 'tarko-agent-ui fetch' to download the bundle",
			goerr.V("dir", abs))
	}
	if _, err := os.Stat(filepath.Join(abs, "index.html")); err != nil {
		return "", goerr.Wrap(types.ErrFileNotFound,
			"index.html missing from static directory, run 'tarko-agent-ui fetch' to download the bundle",
			goerr.V("dir", abs))
	}
	return abs, nil
}

// StaticVersion reports where the bundle in dir came from. It falls back
// to the embedded stamp when dir has none, and to "unknown" when neither
// is readable; it never fails.
func StaticVersion(dir string) model.AssetVersion {
	if dir != "" {
		if v, ok := readStamp(os.ReadFile(filepath.Join(dir, VersionStampFile))); ok {
			return v
		}
	}
	if v, ok := readStamp(embeddedFS.ReadFile("static/" + VersionStampFile)); ok {
		return v
	}
	return model.AssetVersion{Package: UpstreamPackage, Version: "unknown"}
}

func readStamp(data []byte, err error) (model.AssetVersion, bool) {
	if err != nil {
		return model.AssetVersion{}, false
	}
	var v model.AssetVersion
	if err := json.Unmarshal(data, &v); err != nil || v.Version == "" {
		return model.AssetVersion{}, false
	}
	return v, true
}
