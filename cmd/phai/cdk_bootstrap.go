package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/phaserai/infra/cmd/phai/internal/config"
)

func bootstrapCmd() *cli.Command {
	return &cli.Command{
		Name:   "bootstrap",
		Usage:  "Bootstrap the CDK toolkit in the AWS account",
		Action: config.RunWithConfig(runBootstrap),
	}
}

type bootstrapOptions struct {
	Output io.Writer
}

func runBootstrap(ctx context.Context, cmd *cli.Command, cfg config.Config) error {
	return doBootstrap(ctx, cfg, bootstrapOptions{
		Output: os.Stdout,
	})
}

func doBootstrap(ctx context.Context, cfg config.Config, opts bootstrapOptions) error {
	project, err := loadCDKProject(cfg)
	if err != nil {
		return err
	}

	exec := project.Exec.WithOutput(opts.Output, opts.Output)

	writeOutputf(opts.Output, "Verifying AWS access...\n")
	stsArgs := []string{"sts", "get-caller-identity"}
	if project.Profile != "" {
		stsArgs = append(stsArgs, "--profile", project.Profile)
	}
	if err := exec.Run(ctx, "aws", stsArgs...); err != nil {
		return err
	}

	writeOutputf(opts.Output, "Bootstrapping with qualifier %q...\n", project.Qualifier)

	args := profileArgs(project)
	args = append(args,
		"--qualifier", project.Qualifier,
		"--toolkit-stack-name", toolkitStackName(project.Qualifier),
	)

	if err := runCDKCommand(ctx, exec, "bootstrap", args); err != nil {
		return err
	}

	writeOutputf(opts.Output, "Bootstrap complete!\n")
	return nil
}

func writeOutputf(w io.Writer, format string, args ...any) {
	if w != nil {
		_, _ = fmt.Fprintf(w, format, args...)
	}
}
