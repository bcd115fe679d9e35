// Package config loads and locates the project configuration file.
package config

import (
	"bytes"
	"io"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-yaml"
)

const FileName = ".phaserai.yml"

// Settings is the content of the .phaserai.yml project file.
type Settings struct {
	Version string        `yaml:"version" validate:"required,oneof=1"`
	Layer   LayerSettings `yaml:"layer"`
	Web     WebSettings   `yaml:"web"`
}

// LayerSettings configures how the Lambda dependency layer is built.
type LayerSettings struct {
	// Dir holds the layer build inputs, relative to the project root.
	Dir string `yaml:"dir" validate:"required"`
	// Requirements is the pip requirements file, relative to Dir.
	Requirements string `yaml:"requirements" validate:"required"`
	// Output is the layer zip path, relative to the project root.
	Output string `yaml:"output" validate:"required"`
	// Python is the runtime version the layer targets.
	Python string `yaml:"python" validate:"required,oneof=3.12 3.13"`
	// Image is the Docker image used to build the wheels. It must match
	// the Lambda runtime, or compiled packages will fail to import.
	Image string `yaml:"image" validate:"required"`
}

// WebSettings locates the frontend workspace.
type WebSettings struct {
	Dir string `yaml:"dir" validate:"required"`
}

func Default() Settings {
	return Settings{
		Version: "1",
		Layer: LayerSettings{
			Dir:          "layer",
			Requirements: "requirements.txt",
			Output:       "layer/dependencies.zip",
			Python:       "3.12",
			Image:        "public.ecr.aws/sam/build-python3.12:latest",
		},
		Web: WebSettings{
			Dir: "web",
		},
	}
}

type Loader interface {
	Load(path string) (Settings, error)
}

type Writer interface {
	Write(w io.Writer, cfg Settings) error
}

type Finder interface {
	Find(startDir string) (cfg Settings, projectDir string, err error)
}

type yamlLoader struct {
	validate *validator.Validate
}

func NewLoader() Loader {
	return &yamlLoader{
		validate: validator.New(),
	}
}

func (l *yamlLoader) Load(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, errors.Wrap(err, "failed to read config file")
	}

	dec := yaml.NewDecoder(
		bytes.NewReader(data),
		yaml.Validator(l.validate),
		yaml.Strict(),
	)

	var cfg Settings
	if err := dec.Decode(&cfg); err != nil {
		return Settings{}, errors.Wrap(err, "failed to parse config file")
	}

	return cfg, nil
}

type yamlWriter struct{}

func NewWriter() Writer {
	return &yamlWriter{}
}

func (w *yamlWriter) Write(wr io.Writer, cfg Settings) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, "failed to marshal config")
	}

	if _, err := wr.Write(data); err != nil {
		return errors.Wrap(err, "failed to write config")
	}

	return nil
}

type finder struct {
	loader Loader
}

func NewFinder(loader Loader) Finder {
	return &finder{loader: loader}
}

func (f *finder) Find(startDir string) (Settings, string, error) {
	dir := startDir
	for {
		configPath := filepath.Join(dir, FileName)
		if _, err := os.Stat(configPath); err == nil {
			cfg, err := f.loader.Load(configPath)
			if err != nil {
				return Settings{}, "", err
			}
			return cfg, dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return Settings{}, "", errors.Newf(
				"config file %s not found (searched from %s to root)",
				FileName, startDir,
			)
		}
		dir = parent
	}
}

func WriteToFile(dir string, cfg Settings, w Writer) error {
	path := filepath.Join(dir, FileName)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return errors.Wrap(err, "failed to create config file")
	}
	defer f.Close()

	return w.Write(f, cfg)
}
