package config

import (
	"time"

	"github.com/urfave/cli/v3"
)

// Cache holds image set cache configuration
type Cache struct {
	Capacity int64
	TTL      time.Duration
}

// Flags returns CLI flags for cache configuration
func (c *Cache) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.Int64Flag{
			Name:        "cache-capacity",
			Usage:       "Maximum number of cached image sets",
			Value:       100,
			Destination: &c.Capacity,
			Sources:     cli.EnvVars("PICKET_CACHE_CAPACITY"),
		},
		&cli.DurationFlag{
			Name:        "cache-ttl",
			Usage:       "Lifetime of a cached image set (0 disables expiry)",
			Value:       time.Hour,
			Destination: &c.TTL,
			Sources:     cli.EnvVars("PICKET_CACHE_TTL"),
		},
	}
}
