package config

import (
	"github.com/agent-infra/tarko-agent-ui/pkg/domain/types"
	"github.com/urfave/cli/v3"
)

// Registry holds npm registry configuration
type Registry struct {
	URL   string
	Token string `masq:"secret"`
}

// Flags returns CLI flags for registry configuration
func (c *Registry) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "registry-url",
			Usage:       "npm registry base URL",
			Value:       types.DefaultRegistryURL,
			Destination: &c.URL,
			Sources:     cli.EnvVars("TARKO_REGISTRY_URL"),
		},
		&cli.StringFlag{
			Name:        "registry-token",
			Usage:       "npm registry auth token for private packages",
			Destination: &c.Token,
			Sources:     cli.EnvVars("TARKO_REGISTRY_TOKEN"),
		},
	}
}
