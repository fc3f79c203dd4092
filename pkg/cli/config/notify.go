package config

import "github.com/urfave/cli/v3"

// Notify holds release notification configuration
type Notify struct {
	SlackWebhookURL string `masq:"secret"`
}

// Flags returns CLI flags for notification configuration
func (c *Notify) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-webhook",
			Usage:       "Slack incoming webhook URL for release notifications",
			Destination: &c.SlackWebhookURL,
			Sources:     cli.EnvVars("TARKO_SLACK_WEBHOOK"),
		},
	}
}
