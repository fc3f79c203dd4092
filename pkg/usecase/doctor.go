package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/agent-infra/tarko-agent-ui/pkg/domain/interfaces"
	"github.com/agent-infra/tarko-agent-ui/pkg/domain/model"
	"github.com/agent-infra/tarko-agent-ui/pkg/domain/types"
	"github.com/agent-infra/tarko-agent-ui/pkg/webui"
)

// Doctor validates the release tooling of a project before any release is
// attempted: required tools, the manifest, the rewrite targets, and a
// pinned dry run. It never talks to the registry and never mutates the
// repository.
type Doctor struct {
	root   string
	git    interfaces.GitClient
	runner interfaces.CommandRunner
}

// NewDoctor creates a doctor for the project at root
func NewDoctor(root string, gitClient interfaces.GitClient, runner interfaces.CommandRunner) *Doctor {
	return &Doctor{
		root:   root,
		git:    gitClient,
		runner: runner,
	}
}

// Run executes every check. The returned list always covers the checks
// that ran; a non-nil error means at least one of them failed.
func (d *Doctor) Run(ctx context.Context) ([]model.CheckResult, error) {
	logger := ctxlog.From(ctx)

	var checks []model.CheckResult
	add := func(name string, ok bool, detail string) {
		checks = append(checks, model.CheckResult{Name: name, OK: ok, Detail: detail})
		logger.Debug("doctor check", "name", name, "ok", ok, "detail", detail)
	}

	d.checkTool(ctx, add, "git available", "git --version")
	d.checkTool(ctx, add, "go available", "go version")

	m, err := model.LoadManifest(filepath.Join(d.root, types.ManifestFile))
	if err != nil {
		add("manifest", false, err.Error())
		return checks, goerr.New("doctor found problems", goerr.V("failed", failedNames(checks)))
	}
	add("manifest", true, fmt.Sprintf("%s %s", m.Name, m.Version))

	d.checkVersionTargets(add, m)
	d.checkAssetStamp(add, m)
	d.checkDryRun(ctx, add, m)

	if failed := failedNames(checks); len(failed) > 0 {
		return checks, goerr.New("doctor found problems", goerr.V("failed", failed))
	}
	return checks, nil
}

func (d *Doctor) checkTool(ctx context.Context, add func(string, bool, string), name, command string) {
	out, err := d.runner.Run(ctx, d.root, command)
	if err != nil {
		add(name, false, err.Error())
		return
	}
	add(name, true, firstLine(out))
}

// checkVersionTargets verifies every rewrite target exists and contains
// its pattern, exactly what the VERSION_FILES_UPDATED step will require.
func (d *Doctor) checkVersionTargets(add func(string, bool, string), m *model.Manifest) {
	for _, vf := range m.Release.VersionFiles {
		name := "version target " + vf.Path
		data, err := os.ReadFile(filepath.Join(d.root, vf.Path))
		if err != nil {
			add(name, false, "file not readable")
			continue
		}
		re, err := regexp.Compile(vf.Pattern)
		if err != nil {
			add(name, false, "invalid pattern: "+err.Error())
			continue
		}
		if !re.Match(data) {
			add(name, false, "pattern not found: "+vf.Pattern)
			continue
		}
		add(name, true, "")
	}
}

// checkAssetStamp compares the committed bundle's provenance stamp with
// the upstream version the manifest pins.
func (d *Doctor) checkAssetStamp(add func(string, bool, string), m *model.Manifest) {
	if m.Upstream.Version == "" {
		add("asset stamp", true, "no pinned upstream version")
		return
	}
	path := filepath.Join(d.root, m.Paths.StaticDir, webui.VersionStampFile)
	data, err := os.ReadFile(path)
	if err != nil {
		add("asset stamp", false, "missing "+path)
		return
	}
	var stamp model.AssetVersion
	if err := json.Unmarshal(data, &stamp); err != nil {
		add("asset stamp", false, "unreadable stamp: "+err.Error())
		return
	}
	sv, err := model.ParseVersion(stamp.Version)
	if err != nil {
		add("asset stamp", false, "invalid stamp version: "+stamp.Version)
		return
	}
	mv, err := model.ParseVersion(m.Upstream.Version)
	if err != nil {
		add("asset stamp", false, "invalid manifest upstream version: "+m.Upstream.Version)
		return
	}
	if sv != mv {
		add("asset stamp", false,
			fmt.Sprintf("bundle is %s but manifest pins %s", stamp.Version, m.Upstream.Version))
		return
	}
	add("asset stamp", true, stamp.Version)
}

// checkDryRun builds a release plan against the pinned upstream version,
// entirely offline, and verifies the plan output carries its markers.
func (d *Doctor) checkDryRun(ctx context.Context, add func(string, bool, string), m *model.Manifest) {
	if m.Upstream.Version == "" {
		add("dry run", false, "manifest has no pinned upstream version")
		return
	}

	var buf bytes.Buffer
	orch := NewOrchestrator(m, d.root, d.git,
		NewResolver(nil, m.Upstream.Package), nil, nil, nil,
		WithStdout(&buf))
	if _, err := orch.Run(ctx, model.ReleaseOptions{
		NPMVersion: m.Upstream.Version,
		DryRun:     true,
	}); err != nil {
		add("dry run", false, err.Error())
		return
	}

	out := buf.String()
	if !strings.Contains(out, "DRY RUN") || !strings.Contains(out, "No changes will be made.") {
		add("dry run", false, "plan output is missing its markers")
		return
	}
	add("dry run", true, "")
}

func failedNames(checks []model.CheckResult) []string {
	var out []string
	for _, c := range checks {
		if !c.OK {
			out = append(out, c.Name)
		}
	}
	return out
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
