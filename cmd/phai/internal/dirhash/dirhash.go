// Package dirhash computes a content hash over a directory tree, used to
// decide whether the Lambda dependency layer needs a rebuild.
package dirhash

import (
	"bufio"
	"crypto/sha256"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/moby/patternmatcher"
)

// Option configures a hash computation.
type Option func(*hasher)

// WithIgnoreFile names a dockerignore-style file read from the directory
// root. A missing file means nothing is ignored.
func WithIgnoreFile(name string) Option {
	return func(h *hasher) { h.ignoreFile = name }
}

// WithExclude excludes exact relative paths on top of the ignore file.
// Build outputs that live inside the hashed directory go here, or the hash
// would change after every build.
func WithExclude(paths ...string) Option {
	return func(h *hasher) {
		for _, p := range paths {
			h.exclude[filepath.ToSlash(p)] = true
		}
	}
}

// WithTruncate limits the hex hash to n characters. Zero keeps the full
// sha256 hex digest.
func WithTruncate(n int) Option {
	return func(h *hasher) { h.truncate = n }
}

type hasher struct {
	ignoreFile string
	exclude    map[string]bool
	truncate   int
}

const defaultTruncate = 12

// Hash returns the content hash of dir. File paths and contents both feed
// the digest, so renames change the hash.
func Hash(dir string, opts ...Option) (string, error) {
	h := newHasher(opts)

	files, err := h.collect(dir)
	if err != nil {
		return "", err
	}

	digest := sha256.New()
	for _, relPath := range files {
		content, err := os.ReadFile(filepath.Join(dir, relPath))
		if err != nil {
			return "", errors.Wrapf(err, "failed to read %s", relPath)
		}

		digest.Write([]byte(relPath))
		digest.Write([]byte{0})
		digest.Write(content)
	}

	sum := fmt.Sprintf("%x", digest.Sum(nil))
	if h.truncate > 0 && len(sum) > h.truncate {
		sum = sum[:h.truncate]
	}
	return sum, nil
}

// Files returns the relative paths that Hash would include, sorted.
func Files(dir string, opts ...Option) ([]string, error) {
	return newHasher(opts).collect(dir)
}

func newHasher(opts []Option) *hasher {
	h := &hasher{
		exclude:  map[string]bool{},
		truncate: defaultTruncate,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *hasher) collect(dir string) ([]string, error) {
	matcher, err := h.loadPatterns(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	parentInfo := make(map[string]patternmatcher.MatchInfo)

	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		if relPath == "." {
			return nil
		}
		relPath = filepath.ToSlash(relPath)

		if h.exclude[relPath] {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		parent := filepath.Dir(relPath)
		var info patternmatcher.MatchInfo
		if parent != "." {
			info = parentInfo[parent]
		}

		matched, matchInfo, err := matcher.MatchesUsingParentResults(relPath, info)
		if err != nil {
			return errors.Wrapf(err, "pattern match failed for %s", relPath)
		}

		if d.IsDir() {
			parentInfo[relPath] = matchInfo
			if matched && !hasNegation(matcher) {
				return filepath.SkipDir
			}
			return nil
		}

		if matched {
			return nil
		}

		files = append(files, relPath)
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to walk directory")
	}

	sort.Strings(files)
	return files, nil
}

func (h *hasher) loadPatterns(dir string) (*patternmatcher.PatternMatcher, error) {
	if h.ignoreFile == "" {
		return patternmatcher.New(nil)
	}

	f, err := os.Open(filepath.Join(dir, h.ignoreFile))
	if err != nil {
		if os.IsNotExist(err) {
			return patternmatcher.New(nil)
		}
		return nil, errors.Wrapf(err, "failed to open %s", h.ignoreFile)
	}
	defer f.Close()

	var patterns []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", h.ignoreFile)
	}

	return patternmatcher.New(patterns)
}

func hasNegation(pm *patternmatcher.PatternMatcher) bool {
	for _, p := range pm.Patterns() {
		if p.Exclusion() {
			return true
		}
	}
	return false
}
