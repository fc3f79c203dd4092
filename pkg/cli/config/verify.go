package config

import (
	"time"

	"github.com/agent-infra/tarko-agent-ui/pkg/domain/model"
	"github.com/agent-infra/tarko-agent-ui/pkg/domain/types"
	"github.com/urfave/cli/v3"
)

// Verify holds post-release verification configuration
type Verify struct {
	Version      string
	Package      string
	Quick        bool
	SkipWait     bool
	KeepEnv      bool
	ProxyURL     string
	PollInterval time.Duration
	MaxWait      time.Duration
}

// Flags returns CLI flags for verification configuration
func (c *Verify) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "version",
			Usage:       "Released version to verify (defaults to the manifest version)",
			Destination: &c.Version,
		},
		&cli.StringFlag{
			Name:        "package-name",
			Usage:       "Module path to verify (defaults to the manifest module)",
			Destination: &c.Package,
		},
		&cli.BoolFlag{
			Name:        "quick",
			Usage:       "Skip the embedded server smoke test",
			Destination: &c.Quick,
		},
		&cli.BoolFlag{
			Name:        "skip-wait",
			Usage:       "Do not wait for the version to appear on the module proxy",
			Destination: &c.SkipWait,
		},
		&cli.BoolFlag{
			Name:        "keep-env",
			Usage:       "Keep the disposable verification environment for inspection",
			Destination: &c.KeepEnv,
		},
		&cli.StringFlag{
			Name:        "proxy-url",
			Usage:       "Go module proxy base URL",
			Value:       types.DefaultProxyURL,
			Destination: &c.ProxyURL,
			Sources:     cli.EnvVars("TARKO_PROXY_URL"),
		},
		&cli.DurationFlag{
			Name:        "poll-interval",
			Usage:       "Interval between module proxy polls",
			Value:       10 * time.Second,
			Destination: &c.PollInterval,
		},
		&cli.DurationFlag{
			Name:        "max-wait",
			Usage:       "Maximum time to wait for the module proxy",
			Value:       5 * time.Minute,
			Destination: &c.MaxWait,
		},
	}
}

// Options converts the configuration into verification options
func (c *Verify) Options() model.VerifyOptions {
	return model.VerifyOptions{
		Version:      c.Version,
		Quick:        c.Quick,
		SkipWait:     c.SkipWait,
		KeepEnv:      c.KeepEnv,
		PollInterval: c.PollInterval,
		MaxWait:      c.MaxWait,
	}
}
