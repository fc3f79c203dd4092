package interfaces

import "context"

// RegistryClient defines operations against the npm registry.
type RegistryClient interface {
	// LatestVersion returns the version the "latest" dist-tag points at.
	LatestVersion(ctx context.Context, pkg string) (string, error)

	// Download fetches the tarball of an exact published version.
	Download(ctx context.Context, pkg, version string) ([]byte, error)
}

// ModuleProxy checks release availability on a Go module proxy.
type ModuleProxy interface {
	// VersionAvailable reports whether module@version is served yet.
	// version is the tag form ("v0.3.3").
	VersionAvailable(ctx context.Context, module, version string) (bool, error)
}
