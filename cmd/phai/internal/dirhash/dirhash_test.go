package dirhash_test

import (
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/phaserai/infra/cmd/phai/internal/dirhash"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestHash_EmptyDirectory(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	hash, err := dirhash.Hash(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hash == "" {
		t.Error("expected non-empty hash for empty directory")
	}
}

func TestHash_TruncatesToTwelve(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeFile(t, dir, "requirements.txt", "psycopg2-binary==2.9.9")

	hash, err := dirhash.Hash(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(hash) != 12 {
		t.Errorf("expected 12 char hash, got %d: %s", len(hash), hash)
	}

	full, err := dirhash.Hash(dir, dirhash.WithTruncate(0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(full) != 64 {
		t.Errorf("expected full sha256 hex, got %d chars", len(full))
	}
}

func TestHash_Deterministic(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "a")
	writeFile(t, dir, "b.txt", "b")

	hash1, _ := dirhash.Hash(dir)
	hash2, _ := dirhash.Hash(dir)
	if hash1 != hash2 {
		t.Errorf("hashes not deterministic: %s, %s", hash1, hash2)
	}
}

func TestHash_ContentChange(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeFile(t, dir, "requirements.txt", "psycopg2-binary==2.9.9")

	hash1, _ := dirhash.Hash(dir)
	writeFile(t, dir, "requirements.txt", "psycopg2-binary==2.9.10")
	hash2, _ := dirhash.Hash(dir)

	if hash1 == hash2 {
		t.Error("hash should change when content changes")
	}
}

func TestHash_RenameChangesHash(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "same")

	hash1, _ := dirhash.Hash(dir)

	if err := os.Rename(filepath.Join(dir, "a.txt"), filepath.Join(dir, "b.txt")); err != nil {
		t.Fatal(err)
	}
	hash2, _ := dirhash.Hash(dir)

	if hash1 == hash2 {
		t.Error("hash should change when a file is renamed")
	}
}

func TestHash_ExcludeIgnoresBuildOutputs(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeFile(t, dir, "requirements.txt", "regex==2024.5.15")

	hash1, err := dirhash.Hash(dir, dirhash.WithExclude("python", "dependencies.zip"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	writeFile(t, dir, "python/regex/__init__.py", "")
	writeFile(t, dir, "dependencies.zip", "zipbytes")

	hash2, err := dirhash.Hash(dir, dirhash.WithExclude("python", "dependencies.zip"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if hash1 != hash2 {
		t.Error("excluded paths should not affect the hash")
	}
}

func TestHash_IgnoreFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeFile(t, dir, ".layerignore", "*.md\n")
	writeFile(t, dir, "requirements.txt", "regex==2024.5.15")

	hash1, err := dirhash.Hash(dir, dirhash.WithIgnoreFile(".layerignore"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	writeFile(t, dir, "NOTES.md", "scratch")

	hash2, err := dirhash.Hash(dir, dirhash.WithIgnoreFile(".layerignore"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if hash1 != hash2 {
		t.Error("ignored files should not affect the hash")
	}
}

func TestFiles(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeFile(t, dir, "b.txt", "b")
	writeFile(t, dir, "a.txt", "a")
	writeFile(t, dir, "sub/c.txt", "c")

	files, err := dirhash.Files(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"a.txt", "b.txt", "sub/c.txt"}
	if !slices.Equal(files, want) {
		t.Errorf("expected %v, got %v", want, files)
	}
}
