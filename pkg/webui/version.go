package webui

// Release coordinates of this module and of the npm bundle it
// redistributes. The release pipeline rewrites these values.
const (
	Version         = "0.3.2"
	UpstreamVersion = "0.3.0b11"
	UpstreamPackage = "@tarko/agent-ui-builder"
)
