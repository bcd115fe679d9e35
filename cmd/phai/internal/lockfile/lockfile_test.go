package lockfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/phaserai/infra/cmd/phai/internal/cmdexec"
	"github.com/phaserai/infra/cmd/phai/internal/config"
)

func testChecker(t *testing.T) (*Checker, string) {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Config{Settings: config.Default(), ProjectDir: dir}
	webDir := cfg.WebDir()
	if err := os.MkdirAll(webDir, 0o755); err != nil {
		t.Fatal(err)
	}
	return NewChecker(cfg, cmdexec.New(cfg), nil), webDir
}

func writeWebFile(t *testing.T, webDir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(webDir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func findCheck(t *testing.T, checks []Check, name string) Check {
	t.Helper()
	for _, c := range checks {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("check %q not found in %+v", name, checks)
	return Check{}
}

const validManifest = `{
	"name": "phaserai-web",
	"dependencies": {"react": "^18.2.0"},
	"devDependencies": {"vite": "^5.0.0"}
}`

const validLock = `{
	"name": "phaserai-web",
	"lockfileVersion": 3,
	"packages": {
		"": {},
		"node_modules/react": {"version": "18.2.0"},
		"node_modules/vite": {"version": "5.0.0"}
	}
}`

func TestCheck(t *testing.T) {
	t.Parallel()

	t.Run("healthy workspace passes", func(t *testing.T) {
		t.Parallel()
		checker, webDir := testChecker(t)
		writeWebFile(t, webDir, "package.json", validManifest)
		writeWebFile(t, webDir, "package-lock.json", validLock)

		checks, err := checker.Check(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v (checks: %+v)", err, checks)
		}
		for _, c := range checks {
			if !c.OK {
				t.Errorf("check %q failed: %s", c.Name, c.Detail)
			}
		}
	})

	t.Run("missing package.json fails", func(t *testing.T) {
		t.Parallel()
		checker, _ := testChecker(t)

		checks, err := checker.Check(context.Background())
		if err == nil {
			t.Fatal("expected error, got nil")
		}
		if c := findCheck(t, checks, "package.json exists"); c.OK {
			t.Error("expected package.json check to fail")
		}
	})

	t.Run("missing lockfile fails", func(t *testing.T) {
		t.Parallel()
		checker, webDir := testChecker(t)
		writeWebFile(t, webDir, "package.json", validManifest)

		checks, err := checker.Check(context.Background())
		if err == nil {
			t.Fatal("expected error, got nil")
		}
		c := findCheck(t, checks, "lockfile exists")
		if c.OK {
			t.Error("expected lockfile check to fail")
		}
	})

	t.Run("merge conflict markers fail", func(t *testing.T) {
		t.Parallel()
		checker, webDir := testChecker(t)
		writeWebFile(t, webDir, "package.json", validManifest)
		writeWebFile(t, webDir, "package-lock.json",
			"<<<<<<< HEAD\n"+validLock+"\n=======\n{}\n>>>>>>> main\n")

		checks, err := checker.Check(context.Background())
		if err == nil {
			t.Fatal("expected error, got nil")
		}
		if c := findCheck(t, checks, "no merge conflict markers"); c.OK {
			t.Error("expected conflict marker check to fail")
		}
	})

	t.Run("lockfile version 1 is rejected", func(t *testing.T) {
		t.Parallel()
		checker, webDir := testChecker(t)
		writeWebFile(t, webDir, "package.json", `{"name": "phaserai-web"}`)
		writeWebFile(t, webDir, "package-lock.json",
			`{"name": "phaserai-web", "lockfileVersion": 1, "packages": {}}`)

		checks, err := checker.Check(context.Background())
		if err == nil {
			t.Fatal("expected error, got nil")
		}
		if c := findCheck(t, checks, "lockfile version supported"); c.OK {
			t.Error("expected version check to fail")
		}
	})

	t.Run("missing dependency entry fails", func(t *testing.T) {
		t.Parallel()
		checker, webDir := testChecker(t)
		writeWebFile(t, webDir, "package.json", validManifest)
		writeWebFile(t, webDir, "package-lock.json", `{
			"name": "phaserai-web",
			"lockfileVersion": 3,
			"packages": {"node_modules/react": {}}
		}`)

		checks, err := checker.Check(context.Background())
		if err == nil {
			t.Fatal("expected error, got nil")
		}
		c := findCheck(t, checks, "lockfile covers declared dependencies")
		if c.OK {
			t.Error("expected dependency coverage check to fail")
		}
	})

	t.Run("unparseable lockfile fails", func(t *testing.T) {
		t.Parallel()
		checker, webDir := testChecker(t)
		writeWebFile(t, webDir, "package.json", validManifest)
		writeWebFile(t, webDir, "package-lock.json", "{not json")

		checks, err := checker.Check(context.Background())
		if err == nil {
			t.Fatal("expected error, got nil")
		}
		if c := findCheck(t, checks, "lockfile parses"); c.OK {
			t.Error("expected parse check to fail")
		}
	})
}
