// Package lockfile diagnoses and repairs the frontend's npm lockfile. A
// lockfile that is out of sync with package.json makes frozen installs
// (npm ci) fail in CI and during the web deploy.
package lockfile

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/phaserai/infra/cmd/phai/internal/cmdexec"
	"github.com/phaserai/infra/cmd/phai/internal/config"
)

const (
	manifestName = "package.json"
	lockName     = "package-lock.json"
)

// Check is one diagnostic result.
type Check struct {
	Name   string
	OK     bool
	Detail string
}

// Checker inspects and repairs the lockfile of the web workspace.
type Checker struct {
	cfg  config.Config
	exec cmdexec.Executor
	out  io.Writer
}

func NewChecker(cfg config.Config, exec cmdexec.Executor, out io.Writer) *Checker {
	return &Checker{cfg: cfg, exec: exec, out: out}
}

func (c *Checker) printf(format string, args ...any) {
	if c.out != nil {
		_, _ = fmt.Fprintf(c.out, format, args...)
	}
}

type manifest struct {
	Name            string            `json:"name"`
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
}

type lock struct {
	Name            string                     `json:"name"`
	LockfileVersion int                        `json:"lockfileVersion"`
	Packages        map[string]json.RawMessage `json:"packages"`
}

// Check diagnoses the lockfile without modifying anything. It returns the
// individual checks and an error when any of them failed.
func (c *Checker) Check(ctx context.Context) ([]Check, error) {
	webDir := c.cfg.WebDir()

	mf, checks, fatal := c.loadManifest(webDir)
	if fatal {
		return checks, errors.New("lockfile check failed")
	}

	lockData, err := os.ReadFile(filepath.Join(webDir, lockName))
	if err != nil {
		checks = append(checks, Check{
			Name:   "lockfile exists",
			Detail: "package-lock.json not found, run 'phai lockfile repair'",
		})
		return checks, errors.New("lockfile check failed")
	}
	checks = append(checks, Check{Name: "lockfile exists", OK: true})

	if bytes.Contains(lockData, []byte("<<<<<<<")) {
		checks = append(checks, Check{
			Name:   "no merge conflict markers",
			Detail: "resolve the conflict or run 'phai lockfile repair'",
		})
		return checks, errors.New("lockfile check failed")
	}
	checks = append(checks, Check{Name: "no merge conflict markers", OK: true})

	var lf lock
	if err := json.Unmarshal(lockData, &lf); err != nil {
		checks = append(checks, Check{Name: "lockfile parses", Detail: err.Error()})
		return checks, errors.New("lockfile check failed")
	}
	checks = append(checks, Check{Name: "lockfile parses", OK: true})

	checks = append(checks, Check{
		Name:   "lockfile version supported",
		OK:     lf.LockfileVersion >= 2,
		Detail: fmt.Sprintf("lockfileVersion %d, npm ci needs 2 or newer", lf.LockfileVersion),
	})

	checks = append(checks, c.syncChecks(mf, lf)...)

	for _, check := range checks {
		if !check.OK {
			return checks, errors.New("lockfile check failed")
		}
	}
	return checks, nil
}

func (c *Checker) loadManifest(webDir string) (manifest, []Check, bool) {
	data, err := os.ReadFile(filepath.Join(webDir, manifestName))
	if err != nil {
		return manifest{}, []Check{{
			Name:   "package.json exists",
			Detail: fmt.Sprintf("not found in %s", webDir),
		}}, true
	}

	var mf manifest
	if err := json.Unmarshal(data, &mf); err != nil {
		return manifest{}, []Check{
			{Name: "package.json exists", OK: true},
			{Name: "package.json parses", Detail: err.Error()},
		}, true
	}

	return mf, []Check{{Name: "package.json exists", OK: true}}, false
}

// syncChecks verifies that every declared dependency has an entry in the
// lockfile's packages map. Versions are resolved by npm, only presence is
// checked here.
func (c *Checker) syncChecks(mf manifest, lf lock) []Check {
	var missing []string
	for name := range mf.Dependencies {
		if _, ok := lf.Packages["node_modules/"+name]; !ok {
			missing = append(missing, name)
		}
	}
	for name := range mf.DevDependencies {
		if _, ok := lf.Packages["node_modules/"+name]; !ok {
			missing = append(missing, name)
		}
	}

	check := Check{Name: "lockfile covers declared dependencies", OK: len(missing) == 0}
	if len(missing) > 0 {
		check.Detail = fmt.Sprintf("missing from lock: %v, run 'phai lockfile repair'", missing)
	}
	return []Check{check}
}

// Repair regenerates the lockfile from package.json and proves the result
// with a frozen install. node_modules is removed first, a stale tree can
// make npm write a lock that does not match the registry.
func (c *Checker) Repair(ctx context.Context) error {
	webDir := c.cfg.WebDir()
	webExec := c.exec.InSubdir(c.cfg.Settings.Web.Dir).WithOutput(c.out, c.out)

	if _, err := os.Stat(filepath.Join(webDir, manifestName)); err != nil {
		return errors.Wrapf(err, "package.json not found in %s", webDir)
	}

	c.printf("Removing node_modules...\n")
	if err := os.RemoveAll(filepath.Join(webDir, "node_modules")); err != nil {
		return errors.Wrap(err, "failed to remove node_modules")
	}

	lockPath := filepath.Join(webDir, lockName)
	if data, err := os.ReadFile(lockPath); err == nil && bytes.Contains(data, []byte("<<<<<<<")) {
		c.printf("Removing conflicted lockfile...\n")
		if err := os.Remove(lockPath); err != nil {
			return errors.Wrap(err, "failed to remove conflicted lockfile")
		}
	}

	c.printf("Regenerating lockfile...\n")
	if err := webExec.Run(ctx, "npm", "install", "--package-lock-only"); err != nil {
		return errors.Wrap(err, "failed to regenerate lockfile")
	}

	c.printf("Verifying with a frozen install...\n")
	if err := webExec.Run(ctx, "npm", "ci"); err != nil {
		return errors.Wrap(err, "frozen install still fails after repair")
	}

	c.printf("Lockfile repaired.\n")
	return nil
}
