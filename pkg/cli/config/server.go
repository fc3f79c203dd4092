package config

import "github.com/urfave/cli/v3"

// Server holds UI server configuration
type Server struct {
	Addr      string
	StaticDir string
	BaseURL   string
	UIConfig  string
}

// Flags returns CLI flags for server configuration
func (c *Server) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "Server address",
			Value:       "localhost:8080",
			Destination: &c.Addr,
			Sources:     cli.EnvVars("TARKO_ADDR"),
		},
		&cli.StringFlag{
			Name:        "static-dir",
			Usage:       "Directory with the fetched web UI bundle (embedded bundle when empty)",
			Destination: &c.StaticDir,
			Sources:     cli.EnvVars("TARKO_STATIC_DIR"),
		},
		&cli.StringFlag{
			Name:        "base-url",
			Usage:       "Agent server base URL injected into the UI",
			Destination: &c.BaseURL,
			Sources:     cli.EnvVars("TARKO_BASE_URL"),
		},
		&cli.StringFlag{
			Name:        "ui-config",
			Usage:       "Web UI configuration as a JSON object",
			Value:       "{}",
			Destination: &c.UIConfig,
			Sources:     cli.EnvVars("TARKO_UI_CONFIG"),
		},
	}
}
