package config

import (
	"time"

	"github.com/urfave/cli/v3"
)

// PhotoSite holds remote photo site configuration
type PhotoSite struct {
	BaseURL      string
	FetchTimeout time.Duration
	EnumCount    int64
}

// Flags returns CLI flags for photo site configuration
func (c *PhotoSite) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "site-base-url",
			Usage:       "Base URL of the photo site the QR codes point at",
			Value:       "https://livephoto.idolmaster-tours-w.bn-am.net",
			Destination: &c.BaseURL,
			Sources:     cli.EnvVars("PICKET_SITE_BASE_URL"),
		},
		&cli.DurationFlag{
			Name:        "fetch-timeout",
			Usage:       "Timeout for each outbound call to the photo site",
			Value:       10 * time.Second,
			Destination: &c.FetchTimeout,
			Sources:     cli.EnvVars("PICKET_FETCH_TIMEOUT"),
		},
		&cli.Int64Flag{
			Name:        "enum-count",
			Usage:       "Use fixed enumeration of N well-known names instead of index scraping (0 = scrape)",
			Value:       0,
			Destination: &c.EnumCount,
			Sources:     cli.EnvVars("PICKET_ENUM_COUNT"),
		},
	}
}
