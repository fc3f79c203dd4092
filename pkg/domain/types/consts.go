package types

const (
	// ServiceName is used in logs and the health endpoint.
	ServiceName = "tarko-agent-ui"

	// DefaultUpstreamPackage is the npm package whose static bundle this
	// module redistributes.
	DefaultUpstreamPackage = "@tarko/agent-ui-builder"

	// DefaultRegistryURL is the npm registry queried for packuments and
	// tarballs.
	DefaultRegistryURL = "https://registry.npmjs.org"

	// DefaultProxyURL is the Go module proxy polled after a release.
	DefaultProxyURL = "https://proxy.golang.org"

	// ManifestFile is the project manifest looked up under the project root.
	ManifestFile = "tarko.toml"
)
