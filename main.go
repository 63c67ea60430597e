package main

import (
	"context"
	"os"

	"github.com/hy-sato/picket/pkg/cli"
)

func main() {
	if err := cli.Run(context.Background(), os.Args); err != nil {
		os.Exit(1)
	}
}
