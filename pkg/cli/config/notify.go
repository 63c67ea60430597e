package config

import "github.com/urfave/cli/v3"

// Notify holds notification sink configuration
type Notify struct {
	WebhookURL string
}

// Flags returns CLI flags for notification configuration
func (c *Notify) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "notify-webhook-url",
			Usage:       "Slack incoming webhook URL for operational notifications (optional)",
			Destination: &c.WebhookURL,
			Sources:     cli.EnvVars("PICKET_NOTIFY_WEBHOOK_URL"),
		},
	}
}
