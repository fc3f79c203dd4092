package config

import (
	"github.com/agent-infra/tarko-agent-ui/pkg/domain/model"
	"github.com/urfave/cli/v3"
)

// Release holds release pipeline configuration
type Release struct {
	NPMVersion  string
	DryRun      bool
	SkipTests   bool
	SkipPublish bool
}

// Flags returns CLI flags for release configuration
func (c *Release) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "npm-version",
			Usage:       "Upstream npm version to bundle instead of the latest",
			Destination: &c.NPMVersion,
			Sources:     cli.EnvVars("TARKO_NPM_VERSION"),
		},
		&cli.BoolFlag{
			Name:        "dry-run",
			Usage:       "Print the release plan without changing anything",
			Destination: &c.DryRun,
		},
		&cli.BoolFlag{
			Name:        "skip-tests",
			Usage:       "Skip the test step",
			Destination: &c.SkipTests,
		},
		&cli.BoolFlag{
			Name:        "skip-publish",
			Usage:       "Skip the publish step",
			Destination: &c.SkipPublish,
		},
	}
}

// Options converts the configuration into release options
func (c *Release) Options() model.ReleaseOptions {
	return model.ReleaseOptions{
		NPMVersion:  c.NPMVersion,
		DryRun:      c.DryRun,
		SkipTests:   c.SkipTests,
		SkipPublish: c.SkipPublish,
	}
}
