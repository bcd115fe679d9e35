package main

import (
	"context"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/phaserai/infra/cmd/phai/internal/cmdexec"
	"github.com/phaserai/infra/cmd/phai/internal/config"
	"github.com/phaserai/infra/cmd/phai/internal/lockfile"
)

func lockfileCmd() *cli.Command {
	return &cli.Command{
		Name:  "lockfile",
		Usage: "Diagnose and repair the frontend npm lockfile",
		Commands: []*cli.Command{
			{
				Name:   "check",
				Usage:  "Check the lockfile is in sync with package.json",
				Action: config.RunWithConfig(runLockfileCheck),
			},
			{
				Name:   "repair",
				Usage:  "Regenerate the lockfile and verify with a frozen install",
				Action: config.RunWithConfig(runLockfileRepair),
			},
		},
	}
}

func runLockfileCheck(ctx context.Context, cmd *cli.Command, cfg config.Config) error {
	return doLockfileCheck(ctx, cfg, os.Stdout)
}

func doLockfileCheck(ctx context.Context, cfg config.Config, output io.Writer) error {
	checker := lockfile.NewChecker(cfg, cmdexec.New(cfg), output)

	checks, err := checker.Check(ctx)
	for _, c := range checks {
		printCheck(output, c.Name, c.OK, c.Detail)
	}
	return err
}

func runLockfileRepair(ctx context.Context, cmd *cli.Command, cfg config.Config) error {
	output := os.Stdout
	checker := lockfile.NewChecker(cfg, cmdexec.New(cfg), output)
	return checker.Repair(ctx)
}
