package main

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/urfave/cli/v3"

	"github.com/phaserai/infra/cmd/phai/internal/config"
	"github.com/phaserai/infra/cmd/phai/internal/initwizard"
)

const contextPrefix = "phaserai-"

const defaultRequirements = `psycopg2-binary==2.9.9
regex==2024.5.15
`

const defaultLayerIgnore = `# Files listed here do not count as layer build inputs.
*.md
`

func initCmd() *cli.Command {
	return &cli.Command{
		Name:      "init",
		Usage:     "Initialize a PhaserAI project in a directory",
		ArgsUsage: "[directory]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "accessible",
				Usage: "Run the setup wizard in accessible (non-TUI) mode",
			},
		},
		Action: runInit,
	}
}

func runInit(ctx context.Context, cmd *cli.Command) error {
	dir := cmd.Args().First()
	if dir == "" {
		var err error
		dir, err = os.Getwd()
		if err != nil {
			return errors.Wrap(err, "failed to get current working directory")
		}
	}

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return errors.Wrap(err, "failed to get absolute path")
	}

	var runner initwizard.FormRunner = initwizard.NewInteractiveRunner()
	if cmd.Bool("accessible") {
		runner = initwizard.NewAccessibleRunner(os.Stdout, os.Stdin)
	}

	wizard := initwizard.New(initwizard.NewFormBuilder(), runner)
	result, err := wizard.Run(filepath.Base(absDir))
	if err != nil {
		return errors.Wrap(err, "setup wizard failed")
	}

	return doInit(InitOptions{
		Dir:    absDir,
		Result: result,
		Output: os.Stdout,
	})
}

type InitOptions struct {
	Dir    string
	Result initwizard.Result
	Output io.Writer
}

func doInit(opts InitOptions) error {
	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return errors.Wrap(err, "failed to create project directory")
	}

	settings := config.Default()
	if err := config.WriteToFile(opts.Dir, settings, config.NewWriter()); err != nil {
		return err
	}
	writeOutputf(opts.Output, "Wrote %s\n", config.FileName)

	if err := writeCDKJSON(opts.Dir, settings, opts.Result); err != nil {
		return err
	}
	writeOutputf(opts.Output, "Wrote cdk.json\n")

	if err := writeLayerScaffold(opts.Dir, settings); err != nil {
		return err
	}
	writeOutputf(opts.Output, "Wrote %s scaffold\n", settings.Layer.Dir)

	writeOutputf(opts.Output, "\nNext steps:\n")
	writeOutputf(opts.Output, "  phai cdk bootstrap\n")
	writeOutputf(opts.Output, "  phai layer build\n")
	writeOutputf(opts.Output, "  phai cdk deploy\n")

	return nil
}

func writeCDKJSON(dir string, settings config.Settings, result initwizard.Result) error {
	cdkContext := map[string]any{
		contextPrefix + "qualifier": result.Qualifier,
		contextPrefix + "region":    result.Region,
		contextPrefix + "db-name":   result.DatabaseName,
		contextPrefix + "api-stage": result.APIStage,
		contextPrefix + "layer-zip": settings.Layer.Output,
	}
	if result.DomainName != "" {
		cdkContext[contextPrefix+"domain-name"] = result.DomainName
	}

	cdkJSON := map[string]any{
		"app":     "go run ./cmd/phai-cdk",
		"context": cdkContext,
	}

	data, err := json.MarshalIndent(cdkJSON, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal cdk.json")
	}

	path := filepath.Join(dir, "cdk.json")
	if err := os.WriteFile(path, data, 0o644); err != nil { //nolint:gosec // config file needs to be readable
		return errors.Wrap(err, "failed to write cdk.json")
	}

	return nil
}

func writeLayerScaffold(dir string, settings config.Settings) error {
	layerDir := filepath.Join(dir, settings.Layer.Dir)
	if err := os.MkdirAll(layerDir, 0o755); err != nil {
		return errors.Wrap(err, "failed to create layer directory")
	}

	files := map[string]string{
		settings.Layer.Requirements: defaultRequirements,
		".layerignore":              defaultLayerIgnore,
	}

	for name, content := range files {
		path := filepath.Join(layerDir, name)
		if _, err := os.Stat(path); err == nil {
			continue
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil { //nolint:gosec // source file needs to be readable
			return errors.Wrapf(err, "failed to write %s", name)
		}
	}

	return nil
}
