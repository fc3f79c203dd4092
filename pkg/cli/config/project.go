package config

import (
	"path/filepath"

	"github.com/agent-infra/tarko-agent-ui/pkg/domain/model"
	"github.com/agent-infra/tarko-agent-ui/pkg/domain/types"
	"github.com/urfave/cli/v3"
)

// Project holds project location configuration
type Project struct {
	Root string
}

// Flags returns CLI flags for project configuration
func (c *Project) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "root",
			Aliases:     []string{"C"},
			Usage:       "Project root directory",
			Value:       ".",
			Destination: &c.Root,
			Sources:     cli.EnvVars("TARKO_ROOT"),
		},
	}
}

// ManifestPath returns the path of the project manifest under the root
func (c *Project) ManifestPath() string {
	return filepath.Join(c.Root, types.ManifestFile)
}

// Load reads and validates the project manifest
func (c *Project) Load() (*model.Manifest, error) {
	return model.LoadManifest(c.ManifestPath())
}
