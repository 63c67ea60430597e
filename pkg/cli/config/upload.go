package config

import "github.com/urfave/cli/v3"

// Upload holds upload validation configuration
type Upload struct {
	MaxItems     int64
	MaxItemBytes int64
	AllowedTypes []string
	Probe        bool
}

// Flags returns CLI flags for upload validation configuration
func (c *Upload) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.Int64Flag{
			Name:        "max-items",
			Usage:       "Maximum number of photos per request",
			Value:       10,
			Destination: &c.MaxItems,
			Sources:     cli.EnvVars("PICKET_MAX_ITEMS"),
		},
		&cli.Int64Flag{
			Name:        "max-item-bytes",
			Usage:       "Maximum size of one uploaded photo in bytes",
			Value:       25 << 20,
			Destination: &c.MaxItemBytes,
			Sources:     cli.EnvVars("PICKET_MAX_ITEM_BYTES"),
		},
		&cli.StringSliceFlag{
			Name:        "allowed-types",
			Usage:       "Accepted media types for uploads",
			Value:       []string{"image/jpeg", "image/png", "image/heic", "image/heif"},
			Destination: &c.AllowedTypes,
			Sources:     cli.EnvVars("PICKET_ALLOWED_TYPES"),
		},
		&cli.BoolFlag{
			Name:        "probe",
			Usage:       "Check that each QR target exists before accepting it",
			Value:       true,
			Destination: &c.Probe,
			Sources:     cli.EnvVars("PICKET_PROBE"),
		},
	}
}
