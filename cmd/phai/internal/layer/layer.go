// Package layer builds and inspects the Lambda dependency layer that ships
// the compiled Python packages (psycopg2, regex) to the phonology function.
package layer

import (
	"fmt"
	"io"

	"github.com/phaserai/infra/cmd/phai/internal/cmdexec"
	"github.com/phaserai/infra/cmd/phai/internal/config"
)

const (
	// stagingDir is where pip installs packages inside the layer directory.
	// Lambda requires layer content for Python under a "python/" root.
	stagingDir = "python"

	// hashFileName records the input hash of the last successful build.
	hashFileName = ".build-hash"

	// ignoreFileName lists build inputs to leave out of the hash.
	ignoreFileName = ".layerignore"
)

// Builder builds and verifies the dependency layer zip.
type Builder struct {
	cfg  config.Config
	exec cmdexec.Executor
	out  io.Writer
}

func NewBuilder(cfg config.Config, exec cmdexec.Executor, out io.Writer) *Builder {
	return &Builder{cfg: cfg, exec: exec, out: out}
}

func (b *Builder) printf(format string, args ...any) {
	if b.out != nil {
		_, _ = fmt.Fprintf(b.out, format, args...)
	}
}
