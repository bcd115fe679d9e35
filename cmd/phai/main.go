package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
)

// Version is set via ldflags at build time.
var Version = "dev"

func main() {
	cmd := &cli.Command{
		Name:    "phai",
		Usage:   "Development task runner for the PhaserAI project",
		Version: Version,
		Commands: []*cli.Command{
			cdkCmd(),
			dbCmd(),
			layerCmd(),
			lockfileCmd(),
			checkCmd(),
			initCmd(),
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
