package model

import (
	"os"
	"regexp"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"

	"github.com/agent-infra/tarko-agent-ui/pkg/domain/types"
)

// Manifest is the project description read from tarko.toml at the project
// root. Missing fields are filled by ApplyDefaults on load.
type Manifest struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
	Module  string `toml:"module"`

	Upstream UpstreamConfig `toml:"upstream"`
	Paths    PathsConfig    `toml:"paths"`
	Git      GitConfig      `toml:"git"`
	Commands CommandsConfig `toml:"commands"`
	Release  ReleaseConfig  `toml:"release"`
}

// UpstreamConfig pins the npm package the static bundle comes from.
// Version holds the compact normalized form of the bundled release.
type UpstreamConfig struct {
	Package string `toml:"package"`
	Version string `toml:"version"`
}

type PathsConfig struct {
	StaticDir string `toml:"static_dir"`
	DistDir   string `toml:"dist_dir"`
}

type GitConfig struct {
	BaseBranch string `toml:"base_branch"`
	Remote     string `toml:"remote"`
}

// CommandsConfig holds the shell commands run by the pipeline. Publish is
// opt-in: an empty command fails the PUBLISHED step unless publishing is
// skipped.
type CommandsConfig struct {
	Test    string `toml:"test"`
	Build   string `toml:"build"`
	Publish string `toml:"publish"`
}

type ReleaseConfig struct {
	VersionFiles []VersionFile `toml:"version_files"`
}

// VersionFile is one rewrite target of the VERSION_FILES_UPDATED step.
// Path is relative to the project root. Replace may reference the
// placeholders {version}, {tag}, {upstream} and {upstream_raw}, plus
// regexp group references such as ${1}. Only the first match is rewritten.
type VersionFile struct {
	Path    string `toml:"path"`
	Pattern string `toml:"pattern"`
	Replace string `toml:"replace"`
}

// LoadManifest reads, defaults and validates a manifest file.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read manifest", goerr.V("path", path))
	}
	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, goerr.Wrap(err, "failed to parse manifest", goerr.V("path", path))
	}
	m.ApplyDefaults()
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// ApplyDefaults fills every omitted field with its default.
func (m *Manifest) ApplyDefaults() {
	if m.Upstream.Package == "" {
		m.Upstream.Package = types.DefaultUpstreamPackage
	}
	if m.Paths.StaticDir == "" {
		m.Paths.StaticDir = "pkg/webui/static"
	}
	if m.Paths.DistDir == "" {
		m.Paths.DistDir = "dist"
	}
	if m.Git.BaseBranch == "" {
		m.Git.BaseBranch = "main"
	}
	if m.Git.Remote == "" {
		m.Git.Remote = "origin"
	}
	if m.Commands.Test == "" {
		m.Commands.Test = "go test ./..."
	}
	if m.Commands.Build == "" {
		m.Commands.Build = "go build -o dist/ ./..."
	}
	if len(m.Release.VersionFiles) == 0 {
		m.Release.VersionFiles = defaultVersionFiles()
	}
}

func defaultVersionFiles() []VersionFile {
	return []VersionFile{
		{
			Path:    types.ManifestFile,
			Pattern: `(?m)^version = "[^"]*"`,
			Replace: `version = "{version}"`,
		},
		{
			Path:    types.ManifestFile,
			Pattern: `(?s)(\[upstream\].*?version = ")[^"]*(")`,
			Replace: `${1}{upstream}${2}`,
		},
		{
			Path:    "pkg/webui/version.go",
			Pattern: `(?m)^(\tVersion\s+= ")[^"]*(")`,
			Replace: `${1}{version}${2}`,
		},
		{
			Path:    "pkg/webui/version.go",
			Pattern: `(?m)^(\tUpstreamVersion\s+= ")[^"]*(")`,
			Replace: `${1}{upstream}${2}`,
		},
	}
}

// Validate checks the fields a release run depends on.
func (m *Manifest) Validate() error {
	if m.Name == "" {
		return goerr.New("manifest: name is required")
	}
	if _, err := ParseVersion(m.Version); err != nil {
		return goerr.Wrap(err, "manifest: invalid version")
	}
	if m.Upstream.Version != "" {
		if _, err := ParseVersion(m.Upstream.Version); err != nil {
			return goerr.Wrap(err, "manifest: invalid upstream version")
		}
	}
	for _, vf := range m.Release.VersionFiles {
		if vf.Path == "" || vf.Pattern == "" || vf.Replace == "" {
			return goerr.New("manifest: version_files entries need path, pattern and replace",
				goerr.V("path", vf.Path))
		}
		if _, err := regexp.Compile(vf.Pattern); err != nil {
			return goerr.Wrap(err, "manifest: invalid version_files pattern", goerr.V("pattern", vf.Pattern))
		}
	}
	return nil
}
