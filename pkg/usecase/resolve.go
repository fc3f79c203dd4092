package usecase

import (
	"context"
	"fmt"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/agent-infra/tarko-agent-ui/pkg/domain/interfaces"
	"github.com/agent-infra/tarko-agent-ui/pkg/domain/model"
)

// Resolver computes the next release version and pairs it with the
// upstream npm release it will bundle.
type Resolver struct {
	registry interfaces.RegistryClient
	pkg      string
}

// NewResolver creates a version resolver for the given npm package
func NewResolver(registry interfaces.RegistryClient, pkg string) *Resolver {
	return &Resolver{
		registry: registry,
		pkg:      pkg,
	}
}

// Resolve bumps current to the next patch version and resolves the
// upstream version. pinned selects the upstream version explicitly; when
// empty, the registry's latest dist-tag is used. A major.minor drift
// between local and upstream yields a warning, never an error.
func (r *Resolver) Resolve(ctx context.Context, current, pinned string) (*model.VersionPlan, error) {
	logger := ctxlog.From(ctx)

	cur, err := model.ParseVersion(current)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid current version")
	}

	raw := pinned
	if raw == "" {
		latest, err := r.registry.LatestVersion(ctx, r.pkg)
		if err != nil {
			return nil, err
		}
		raw = latest
		logger.Debug("resolved latest upstream version", "package", r.pkg, "version", raw)
	}

	up, err := model.ParseVersion(raw)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid upstream version")
	}

	vp := &model.VersionPlan{
		Current:     cur,
		Next:        cur.Bump(),
		UpstreamRaw: raw,
		Upstream:    up,
	}
	if !cur.SameMajorMinor(up) {
		vp.Warning = fmt.Sprintf("local version %s and upstream %s differ in major.minor", cur, raw)
		logger.Warn("version drift detected", "local", cur.String(), "upstream", raw)
	}

	logger.Info("resolved versions",
		"current", cur.String(),
		"next", vp.Next.String(),
		"upstream", raw,
		"upstream_normalized", up.String(),
	)
	return vp, nil
}
