package main

import (
	"context"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/phaserai/infra/cmd/phai/internal/config"
)

func diffCmd() *cli.Command {
	return &cli.Command{
		Name:      "diff",
		Usage:     "Show CDK stack differences",
		ArgsUsage: "[stack]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "all",
				Usage: "Diff all stacks",
			},
		},
		Action: config.RunWithConfig(runDiff),
	}
}

func runDiff(ctx context.Context, cmd *cli.Command, cfg config.Config) error {
	return doDiff(ctx, cfg, cdkCommandOptions{
		Stack:  cmd.Args().First(),
		All:    cmd.Bool("all"),
		Output: os.Stdout,
	})
}

func doDiff(ctx context.Context, cfg config.Config, opts cdkCommandOptions) error {
	project, err := loadCDKProject(cfg)
	if err != nil {
		return err
	}

	exec := project.Exec.WithOutput(opts.Output, opts.Output)

	args := profileArgs(project)
	args = append(args, stackSelectionArgs(project, opts.Stack, opts.All)...)

	return runCDKCommand(ctx, exec, "diff", args)
}
