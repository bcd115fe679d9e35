package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/phaserai/infra/cmd/phai/internal/config"
)

func testProjectConfig(t *testing.T) config.Config {
	t.Helper()
	return config.Config{Settings: config.Default(), ProjectDir: t.TempDir()}
}

func writeProjectFile(t *testing.T, cfg config.Config, name, content string) {
	t.Helper()
	path := filepath.Join(cfg.ProjectDir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestGetCDKContext(t *testing.T) {
	t.Parallel()

	t.Run("merges nested context object", func(t *testing.T) {
		t.Parallel()
		cfg := testProjectConfig(t)
		writeProjectFile(t, cfg, "cdk.json", `{
			"app": "go run ./cmd/phai-cdk",
			"context": {
				"phaserai-qualifier": "phaserai",
				"phaserai-region": "eu-west-1"
			}
		}`)

		ctx, err := getCDKContext(cfg)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ctx["phaserai-qualifier"] != "phaserai" {
			t.Errorf("expected qualifier from nested context, got %v", ctx["phaserai-qualifier"])
		}
		if ctx["app"] != "go run ./cmd/phai-cdk" {
			t.Errorf("expected top-level keys to survive, got %v", ctx["app"])
		}
	})

	t.Run("cdk.context.json wins over cdk.json", func(t *testing.T) {
		t.Parallel()
		cfg := testProjectConfig(t)
		writeProjectFile(t, cfg, "cdk.json", `{
			"context": {"phaserai-qualifier": "old", "phaserai-region": "us-east-1"}
		}`)
		writeProjectFile(t, cfg, "cdk.context.json", `{"phaserai-qualifier": "new"}`)

		ctx, err := getCDKContext(cfg)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ctx["phaserai-qualifier"] != "new" {
			t.Errorf("expected cached context to win, got %v", ctx["phaserai-qualifier"])
		}
		if ctx["phaserai-region"] != "us-east-1" {
			t.Errorf("expected unshadowed keys to survive, got %v", ctx["phaserai-region"])
		}
	})

	t.Run("missing cdk.context.json is fine", func(t *testing.T) {
		t.Parallel()
		cfg := testProjectConfig(t)
		writeProjectFile(t, cfg, "cdk.json", `{"context": {"phaserai-qualifier": "phaserai"}}`)

		if _, err := getCDKContext(cfg); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("missing cdk.json fails", func(t *testing.T) {
		t.Parallel()
		cfg := testProjectConfig(t)

		if _, err := getCDKContext(cfg); err == nil {
			t.Fatal("expected error, got nil")
		}
	})
}

func TestDetectPrefix(t *testing.T) {
	t.Parallel()

	t.Run("finds the prefix", func(t *testing.T) {
		t.Parallel()
		prefix, err := detectPrefix(map[string]any{
			"app":                 "go run ./cmd/phai-cdk",
			"phaserai-qualifier":  "phaserai",
			"phaserai-region":     "us-east-1",
			"availability-zones:": []any{},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if prefix != "phaserai-" {
			t.Errorf("expected prefix %q, got %q", "phaserai-", prefix)
		}
	})

	t.Run("errors without a qualifier key", func(t *testing.T) {
		t.Parallel()
		if _, err := detectPrefix(map[string]any{"app": "x"}); err == nil {
			t.Fatal("expected error, got nil")
		}
	})
}

func TestLoadCDKProject(t *testing.T) {
	t.Parallel()

	t.Run("resolves qualifier and profile", func(t *testing.T) {
		t.Parallel()
		cfg := testProjectConfig(t)
		writeProjectFile(t, cfg, "cdk.json", `{
			"context": {"phaserai-qualifier": "phaserai"},
			"profile": "phaserai-admin"
		}`)

		p, err := loadCDKProject(cfg)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.Qualifier != "phaserai" {
			t.Errorf("expected qualifier %q, got %q", "phaserai", p.Qualifier)
		}
		if p.Profile != "phaserai-admin" {
			t.Errorf("expected profile %q, got %q", "phaserai-admin", p.Profile)
		}
	})

	t.Run("empty qualifier fails", func(t *testing.T) {
		t.Parallel()
		cfg := testProjectConfig(t)
		writeProjectFile(t, cfg, "cdk.json", `{"context": {"phaserai-qualifier": ""}}`)

		if _, err := loadCDKProject(cfg); err == nil {
			t.Fatal("expected error, got nil")
		}
	})
}

func TestStackSelectionArgs(t *testing.T) {
	t.Parallel()
	p := cdkProject{Qualifier: "phaserai"}

	for _, tt := range []struct {
		name  string
		ident string
		all   bool
		want  string
	}{
		{name: "named stack", ident: "Api", want: "phaseraiApi"},
		{name: "no ident selects all", ident: "", want: "--all"},
		{name: "all flag wins", ident: "Api", all: true, want: "--all"},
	} {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			args := stackSelectionArgs(p, tt.ident, tt.all)
			if len(args) != 1 || args[0] != tt.want {
				t.Errorf("expected [%s], got %v", tt.want, args)
			}
		})
	}
}

func TestToolkitStackName(t *testing.T) {
	t.Parallel()
	if got := toolkitStackName("phaserai"); got != "phaseraiBootstrap" {
		t.Errorf("expected %q, got %q", "phaseraiBootstrap", got)
	}
}

func TestProfileArgs(t *testing.T) {
	t.Parallel()
	if args := profileArgs(cdkProject{}); args != nil {
		t.Errorf("expected no args without a profile, got %v", args)
	}
	args := profileArgs(cdkProject{Profile: "dev"})
	if len(args) != 2 || args[0] != "--profile" || args[1] != "dev" {
		t.Errorf("unexpected args %v", args)
	}
}
