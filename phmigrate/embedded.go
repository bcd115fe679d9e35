package phmigrate

import (
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"fmt"
	"io/fs"
	"regexp"
	"sort"
	"strings"
)

//go:embed sql/*.sql
var migrationFS embed.FS

// Migration is one versioned schema change. The SQL runs inside a
// transaction managed by the runner, so files must not contain their own
// BEGIN/COMMIT statements.
type Migration struct {
	Version     string
	Description string
	SQL         string
}

// Checksum returns the hex-encoded sha256 of the migration SQL.
func (m Migration) Checksum() string {
	sum := sha256.Sum256([]byte(m.SQL))
	return hex.EncodeToString(sum[:])
}

// Filenames follow "<yyyymmdd>_<hhmmss>_<description>.sql".
var migrationFileRegex = regexp.MustCompile(`^(\d{8}_\d{6})_([a-z0-9_]+)\.sql$`)

// Embedded returns the embedded migration set in version order.
// It panics on malformed filenames: those are caught by the package tests,
// never at runtime.
func Embedded() []Migration {
	entries, err := fs.ReadDir(migrationFS, "sql")
	if err != nil {
		panic(fmt.Sprintf("failed to read embedded migrations: %v", err))
	}

	migrations := make([]Migration, 0, len(entries))
	for _, entry := range entries {
		match := migrationFileRegex.FindStringSubmatch(entry.Name())
		if match == nil {
			panic(fmt.Sprintf("malformed migration filename: %s", entry.Name()))
		}

		data, err := fs.ReadFile(migrationFS, "sql/"+entry.Name())
		if err != nil {
			panic(fmt.Sprintf("failed to read embedded migration %s: %v", entry.Name(), err))
		}

		migrations = append(migrations, Migration{
			Version:     match[1],
			Description: strings.ReplaceAll(match[2], "_", " "),
			SQL:         string(data),
		})
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})
	return migrations
}

// SetHash returns a stable hash over the embedded migration set. The CDK
// custom resource uses it to re-trigger the migration Lambda whenever a
// migration is added or changed.
func SetHash() string {
	hash := sha256.New()
	for _, m := range Embedded() {
		hash.Write([]byte(m.Version))
		hash.Write([]byte{0})
		hash.Write([]byte(m.Checksum()))
		hash.Write([]byte{0})
	}
	return hex.EncodeToString(hash.Sum(nil))[:16]
}
