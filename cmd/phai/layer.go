package main

import (
	"context"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/phaserai/infra/cmd/phai/internal/cmdexec"
	"github.com/phaserai/infra/cmd/phai/internal/config"
	"github.com/phaserai/infra/cmd/phai/internal/layer"
)

func layerCmd() *cli.Command {
	return &cli.Command{
		Name:  "layer",
		Usage: "Build and verify the Lambda dependency layer",
		Commands: []*cli.Command{
			layerBuildCmd(),
			layerVerifyCmd(),
		},
	}
}

func layerBuildCmd() *cli.Command {
	return &cli.Command{
		Name:  "build",
		Usage: "Build the dependency layer zip with Docker",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "force",
				Usage: "Rebuild even when inputs are unchanged",
			},
		},
		Action: config.RunWithConfig(runLayerBuild),
	}
}

func runLayerBuild(ctx context.Context, cmd *cli.Command, cfg config.Config) error {
	return doLayerBuild(ctx, cfg, layerBuildOptions{
		Force:  cmd.Bool("force"),
		Output: os.Stdout,
	})
}

type layerBuildOptions struct {
	Force  bool
	Output io.Writer
}

func doLayerBuild(ctx context.Context, cfg config.Config, opts layerBuildOptions) error {
	exec := cmdexec.New(cfg).WithOutput(opts.Output, opts.Output)
	builder := layer.NewBuilder(cfg, exec, opts.Output)

	return builder.Build(ctx, layer.BuildOptions{Force: opts.Force})
}

func layerVerifyCmd() *cli.Command {
	return &cli.Command{
		Name:   "verify",
		Usage:  "Verify the layer zip is deployable",
		Action: config.RunWithConfig(runLayerVerify),
	}
}

func runLayerVerify(ctx context.Context, cmd *cli.Command, cfg config.Config) error {
	return doLayerVerify(cfg, os.Stdout)
}

func doLayerVerify(cfg config.Config, output io.Writer) error {
	builder := layer.NewBuilder(cfg, cmdexec.New(cfg), output)

	checks, err := builder.Verify()
	for _, c := range checks {
		printCheck(output, c.Name, c.OK, c.Detail)
	}
	return err
}

func printCheck(w io.Writer, name string, ok bool, detail string) {
	mark := "ok  "
	if !ok {
		mark = "FAIL"
	}
	if detail != "" {
		writeOutputf(w, "  %s  %s (%s)\n", mark, name, detail)
		return
	}
	writeOutputf(w, "  %s  %s\n", mark, name)
}
