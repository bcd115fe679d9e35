package main

import (
	"context"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/phaserai/infra/cmd/phai/internal/config"
)

func deployCmd() *cli.Command {
	return &cli.Command{
		Name:      "deploy",
		Usage:     "Deploy CDK stacks",
		ArgsUsage: "[stack]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "hotswap",
				Usage: "Enable CDK hotswap for faster iterations",
			},
			&cli.BoolFlag{
				Name:  "all",
				Usage: "Deploy all stacks",
			},
		},
		Action: config.RunWithConfig(runDeploy),
	}
}

type cdkCommandOptions struct {
	Stack   string
	All     bool
	Hotswap bool
	Output  io.Writer
}

func runDeploy(ctx context.Context, cmd *cli.Command, cfg config.Config) error {
	return doDeploy(ctx, cfg, cdkCommandOptions{
		Stack:   cmd.Args().First(),
		All:     cmd.Bool("all"),
		Hotswap: cmd.Bool("hotswap"),
		Output:  os.Stdout,
	})
}

func doDeploy(ctx context.Context, cfg config.Config, opts cdkCommandOptions) error {
	project, err := loadCDKProject(cfg)
	if err != nil {
		return err
	}

	exec := project.Exec.WithOutput(opts.Output, opts.Output)

	args := profileArgs(project)
	args = append(args, stackSelectionArgs(project, opts.Stack, opts.All)...)
	args = append(args, "--require-approval", "never")

	if opts.Hotswap {
		args = append(args, "--hotswap")
	}

	return runCDKCommand(ctx, exec, "deploy", args)
}
