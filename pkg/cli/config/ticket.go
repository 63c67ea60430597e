package config

import (
	"time"

	"github.com/urfave/cli/v3"
)

// Ticket holds ticket store configuration
type Ticket struct {
	TTL           time.Duration
	SweepInterval time.Duration
	Dir           string
}

// Flags returns CLI flags for ticket store configuration
func (c *Ticket) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.DurationFlag{
			Name:        "ticket-ttl",
			Usage:       "How long a download ticket stays redeemable",
			Value:       15 * time.Minute,
			Destination: &c.TTL,
			Sources:     cli.EnvVars("PICKET_TICKET_TTL"),
		},
		&cli.DurationFlag{
			Name:        "sweep-interval",
			Usage:       "Interval between expired ticket sweeps",
			Value:       10 * time.Minute,
			Destination: &c.SweepInterval,
			Sources:     cli.EnvVars("PICKET_SWEEP_INTERVAL"),
		},
		&cli.StringFlag{
			Name:        "ticket-dir",
			Usage:       "Directory for archive files (defaults to the OS temp dir)",
			Destination: &c.Dir,
			Sources:     cli.EnvVars("PICKET_TICKET_DIR"),
		},
	}
}
