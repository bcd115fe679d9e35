package config

import (
	"context"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"
)

type contextKey struct{}

// Config is the loaded project configuration together with the directory
// it was found in.
type Config struct {
	Settings   Settings
	ProjectDir string
}

// CDKJSONPath returns the path to cdk.json at the project root.
func (c Config) CDKJSONPath() string {
	return filepath.Join(c.ProjectDir, "cdk.json")
}

// CDKContextPath returns the path to cdk.context.json at the project root.
func (c Config) CDKContextPath() string {
	return filepath.Join(c.ProjectDir, "cdk.context.json")
}

// LayerDir returns the absolute path of the layer build directory.
func (c Config) LayerDir() string {
	return filepath.Join(c.ProjectDir, c.Settings.Layer.Dir)
}

// LayerOutputPath returns the absolute path of the layer zip.
func (c Config) LayerOutputPath() string {
	return filepath.Join(c.ProjectDir, c.Settings.Layer.Output)
}

// WebDir returns the absolute path of the frontend workspace.
func (c Config) WebDir() string {
	return filepath.Join(c.ProjectDir, c.Settings.Web.Dir)
}

func WithContext(ctx context.Context, cfg Config) context.Context {
	return context.WithValue(ctx, contextKey{}, cfg)
}

func FromContext(ctx context.Context) (Config, bool) {
	cfg, ok := ctx.Value(contextKey{}).(Config)
	return cfg, ok
}

var defaultFinder = NewFinder(NewLoader())

// Ensure returns config from context if present, otherwise loads it from
// disk by walking up from the working directory.
func Ensure(ctx context.Context) (context.Context, Config, error) {
	if cfg, ok := FromContext(ctx); ok {
		return ctx, cfg, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return ctx, Config{}, err
	}

	settings, projectDir, err := defaultFinder.Find(cwd)
	if err != nil {
		return ctx, Config{}, err
	}

	cfg := Config{Settings: settings, ProjectDir: projectDir}
	return WithContext(ctx, cfg), cfg, nil
}

// ActionFunc is a command action that receives the config.
type ActionFunc func(ctx context.Context, cmd *cli.Command, cfg Config) error

// RunWithConfig wraps an ActionFunc to lazily load config when the action
// runs, not when help is shown.
func RunWithConfig(fn ActionFunc) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		ctx, cfg, err := Ensure(ctx)
		if err != nil {
			return err
		}
		return fn(ctx, cmd, cfg)
	}
}
