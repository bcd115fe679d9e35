package layer

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/phaserai/infra/cmd/phai/internal/dirhash"
)

// BuildOptions control a layer build.
type BuildOptions struct {
	// Force rebuilds even when the input hash is unchanged.
	Force bool
}

// Build produces the layer zip from the requirements file. Packages are
// installed inside a Docker image matching the Lambda runtime so compiled
// wheels link against the right libc, then the staging directory is zipped
// under a python/ root.
//
// When the input hash matches the previous build and the zip still exists
// the build is skipped.
func (b *Builder) Build(ctx context.Context, opts BuildOptions) error {
	layerDir := b.cfg.LayerDir()
	outputPath := b.cfg.LayerOutputPath()

	reqPath := filepath.Join(layerDir, b.cfg.Settings.Layer.Requirements)
	if _, err := os.Stat(reqPath); err != nil {
		return errors.Wrapf(err, "requirements file %s not found", reqPath)
	}

	hash, err := b.inputHash()
	if err != nil {
		return err
	}

	hashPath := filepath.Join(layerDir, hashFileName)
	if !opts.Force && b.upToDate(hashPath, outputPath, hash) {
		b.printf("Layer is up to date (hash %s), skipping build.\n", hash)
		b.printf("Use --force to rebuild anyway.\n")
		return nil
	}

	staging := filepath.Join(layerDir, stagingDir)
	if err := os.RemoveAll(staging); err != nil {
		return errors.Wrap(err, "failed to clean staging directory")
	}
	if err := os.MkdirAll(staging, 0o755); err != nil {
		return errors.Wrap(err, "failed to create staging directory")
	}

	b.printf("Installing dependencies with %s...\n", b.cfg.Settings.Layer.Image)
	if err := b.pipInstall(ctx, layerDir); err != nil {
		return err
	}

	b.printf("Packaging %s...\n", outputPath)
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return errors.Wrap(err, "failed to create output directory")
	}
	if err := zipStaging(staging, stagingDir, outputPath); err != nil {
		return err
	}

	if err := os.WriteFile(hashPath, []byte(hash+"\n"), 0o644); err != nil { //nolint:gosec // cache marker needs to be readable
		return errors.Wrap(err, "failed to write build hash")
	}

	info, err := os.Stat(outputPath)
	if err != nil {
		return errors.Wrap(err, "failed to stat layer zip")
	}
	b.printf("Layer built: %s (%.1f MB, hash %s)\n",
		outputPath, float64(info.Size())/(1024*1024), hash)

	return nil
}

// inputHash hashes the layer directory minus the build outputs, so only
// requirement changes trigger a rebuild.
func (b *Builder) inputHash() (string, error) {
	excludes := []string{stagingDir, hashFileName}

	if rel, err := filepath.Rel(b.cfg.LayerDir(), b.cfg.LayerOutputPath()); err == nil &&
		!strings.HasPrefix(rel, "..") {
		excludes = append(excludes, rel)
	}

	hash, err := dirhash.Hash(b.cfg.LayerDir(),
		dirhash.WithIgnoreFile(ignoreFileName),
		dirhash.WithExclude(excludes...),
	)
	if err != nil {
		return "", errors.Wrap(err, "failed to hash layer inputs")
	}
	return hash, nil
}

func (b *Builder) upToDate(hashPath, outputPath, hash string) bool {
	if _, err := os.Stat(outputPath); err != nil {
		return false
	}
	stored, err := os.ReadFile(hashPath)
	if err != nil {
		return false
	}
	return strings.TrimSpace(string(stored)) == hash
}

func (b *Builder) pipInstall(ctx context.Context, layerDir string) error {
	absDir, err := filepath.Abs(layerDir)
	if err != nil {
		return errors.Wrap(err, "failed to resolve layer directory")
	}

	return b.exec.Docker(ctx,
		"run", "--rm",
		"--platform", "linux/amd64",
		"-v", absDir+":/work",
		"-w", "/work",
		b.cfg.Settings.Layer.Image,
		"pip", "install",
		"-r", b.cfg.Settings.Layer.Requirements,
		"-t", stagingDir,
		"--upgrade",
		"--no-cache-dir",
	)
}
