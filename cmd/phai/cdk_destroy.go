package main

import (
	"context"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/phaserai/infra/cmd/phai/internal/config"
)

func destroyCmd() *cli.Command {
	return &cli.Command{
		Name:      "destroy",
		Usage:     "Destroy CDK stacks",
		ArgsUsage: "[stack]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "all",
				Usage: "Destroy all stacks",
			},
			&cli.BoolFlag{
				Name:  "force",
				Usage: "Skip confirmation prompts",
			},
		},
		Action: config.RunWithConfig(runDestroy),
	}
}

type cdkDestroyOptions struct {
	Stack  string
	All    bool
	Force  bool
	Output io.Writer
}

func runDestroy(ctx context.Context, cmd *cli.Command, cfg config.Config) error {
	return doDestroy(ctx, cfg, cdkDestroyOptions{
		Stack:  cmd.Args().First(),
		All:    cmd.Bool("all"),
		Force:  cmd.Bool("force"),
		Output: os.Stdout,
	})
}

func doDestroy(ctx context.Context, cfg config.Config, opts cdkDestroyOptions) error {
	project, err := loadCDKProject(cfg)
	if err != nil {
		return err
	}

	exec := project.Exec.WithOutput(opts.Output, opts.Output)

	args := profileArgs(project)
	args = append(args, stackSelectionArgs(project, opts.Stack, opts.All)...)

	if opts.Force {
		args = append(args, "--force")
	}

	return runCDKCommand(ctx, exec, "destroy", args)
}
