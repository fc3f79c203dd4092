package usecase

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/agent-infra/tarko-agent-ui/pkg/domain/interfaces"
	"github.com/agent-infra/tarko-agent-ui/pkg/domain/model"
	"github.com/agent-infra/tarko-agent-ui/pkg/webui"
)

// npm publishes every file below a top-level "package/" directory; the
// web UI bundle lives in its static/ subdirectory.
const bundlePrefix = "package/static/"

// Fetcher downloads the upstream npm bundle and installs its static
// assets into the project's static directory.
type Fetcher struct {
	registry  interfaces.RegistryClient
	pkg       string
	staticDir string
}

// NewFetcher creates a fetcher installing into staticDir
func NewFetcher(registry interfaces.RegistryClient, pkg, staticDir string) *Fetcher {
	return &Fetcher{
		registry:  registry,
		pkg:       pkg,
		staticDir: staticDir,
	}
}

// Fetch retrieves the given upstream version, or the latest published
// version when version is empty. The static directory is replaced
// wholesale and a provenance stamp is written next to the assets.
func (f *Fetcher) Fetch(ctx context.Context, version string) (*model.FetchResult, error) {
	logger := ctxlog.From(ctx)

	raw := version
	if raw == "" {
		latest, err := f.registry.LatestVersion(ctx, f.pkg)
		if err != nil {
			return nil, err
		}
		raw = latest
	}

	data, err := f.registry.Download(ctx, f.pkg, raw)
	if err != nil {
		return nil, err
	}
	logger.Info("downloaded bundle tarball",
		"package", f.pkg,
		"version", raw,
		"size_bytes", len(data),
	)

	result, err := f.extract(data)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to extract bundle",
			goerr.V("package", f.pkg), goerr.V("version", raw))
	}
	result.Version = raw

	if err := f.writeStamp(raw); err != nil {
		return nil, err
	}

	logger.Info("installed static bundle",
		"dir", result.Dir,
		"file_count", len(result.Files),
		"total_size_bytes", result.Size,
	)
	return result, nil
}

// extract unpacks the package/static/ members of an npm tarball into the
// static directory, which is cleared first.
func (f *Fetcher) extract(data []byte) (*model.FetchResult, error) {
	if err := os.RemoveAll(f.staticDir); err != nil {
		return nil, goerr.Wrap(err, "failed to clear static directory", goerr.V("dir", f.staticDir))
	}
	if err := os.MkdirAll(f.staticDir, 0755); err != nil {
		return nil, goerr.Wrap(err, "failed to create static directory", goerr.V("dir", f.staticDir))
	}

	gz, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open gzip stream")
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	var files []string
	var totalSize int64

	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to read tar entry")
		}

		name := strings.TrimPrefix(hdr.Name, "./")
		rel := strings.TrimPrefix(name, bundlePrefix)
		if rel == name || rel == "" {
			continue
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(filepath.Join(f.staticDir, rel), 0755); err != nil {
				return nil, goerr.Wrap(err, "failed to create directory", goerr.V("file", rel))
			}
		case tar.TypeReg:
			if err := f.extractFile(rel, hdr.FileInfo().Mode(), tr); err != nil {
				return nil, goerr.Wrap(err, "failed to extract file", goerr.V("file", rel))
			}
			files = append(files, rel)
			totalSize += hdr.Size
		}
	}

	return &model.FetchResult{
		Dir:   f.staticDir,
		Files: files,
		Size:  totalSize,
	}, nil
}

// extractFile writes a single tarball member to the destination directory
func (f *Fetcher) extractFile(rel string, mode os.FileMode, r io.Reader) error {
	// Security check: prevent path traversal attacks
	destPath := filepath.Join(f.staticDir, rel)
	if !strings.HasPrefix(destPath, filepath.Clean(f.staticDir)+string(os.PathSeparator)) {
		return goerr.New("invalid file path detected", goerr.V("file", rel), goerr.V("dest", destPath))
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return err
	}

	destFile, err := os.OpenFile(destPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode.Perm())
	if err != nil {
		return err
	}
	defer destFile.Close()

	if _, err := io.Copy(destFile, r); err != nil {
		return err
	}
	return nil
}

func (f *Fetcher) writeStamp(version string) error {
	stamp := model.AssetVersion{
		Package:   f.pkg,
		Version:   version,
		FetchedAt: time.Now().UTC(),
	}
	data, err := json.MarshalIndent(stamp, "", "  ")
	if err != nil {
		return goerr.Wrap(err, "failed to encode version stamp")
	}
	path := filepath.Join(f.staticDir, webui.VersionStampFile)
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return goerr.Wrap(err, "failed to write version stamp", goerr.V("path", path))
	}
	return nil
}
