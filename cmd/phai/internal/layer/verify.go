package layer

import (
	"archive/zip"
	"fmt"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
)

// Lambda rejects functions whose unzipped code plus layers exceed this.
const maxUnzippedBytes = 250 * 1024 * 1024

// Check is one verification result.
type Check struct {
	Name   string
	OK     bool
	Detail string
}

// Verify inspects the layer zip and reports whether it will work once
// attached to the phonology function. It returns the individual checks and
// an error when any of them failed.
func (b *Builder) Verify() ([]Check, error) {
	outputPath := b.cfg.LayerOutputPath()

	info, err := os.Stat(outputPath)
	if err != nil {
		return []Check{{
			Name:   "zip exists",
			Detail: fmt.Sprintf("%s not found, run 'phai layer build' first", outputPath),
		}}, errors.New("layer verification failed")
	}

	checks := []Check{{
		Name:   "zip exists",
		OK:     true,
		Detail: fmt.Sprintf("%s (%.1f MB)", outputPath, float64(info.Size())/(1024*1024)),
	}}

	r, err := zip.OpenReader(outputPath)
	if err != nil {
		checks = append(checks, Check{Name: "zip readable", Detail: err.Error()})
		return checks, errors.New("layer verification failed")
	}
	defer r.Close()
	checks = append(checks, Check{Name: "zip readable", OK: true})

	checks = append(checks, b.contentChecks(r)...)

	for _, c := range checks {
		if !c.OK {
			return checks, errors.New("layer verification failed")
		}
	}
	return checks, nil
}

func (b *Builder) contentChecks(r *zip.ReadCloser) []Check {
	var (
		underPython   = true
		hasPsycopg    bool
		hasRegex      bool
		hasCompiledSO bool
		unzipped      uint64
	)

	for _, f := range r.File {
		name := f.Name
		unzipped += f.UncompressedSize64

		if !strings.HasPrefix(name, stagingDir+"/") {
			underPython = false
		}
		if strings.HasPrefix(name, stagingDir+"/psycopg2/") {
			hasPsycopg = true
		}
		if strings.HasPrefix(name, stagingDir+"/regex/") {
			hasRegex = true
		}
		if strings.HasSuffix(name, ".so") {
			hasCompiledSO = true
		}
	}

	return []Check{
		{
			Name:   "entries under python/",
			OK:     underPython && len(r.File) > 0,
			Detail: "Lambda only adds python/ from a layer to sys.path",
		},
		{
			Name:   "psycopg2 present",
			OK:     hasPsycopg,
			Detail: "required by the phonology validation function",
		},
		{
			Name:   "regex present",
			OK:     hasRegex,
			Detail: "required for syllable pattern matching",
		},
		{
			Name:   "compiled extensions present",
			OK:     hasCompiledSO,
			Detail: "missing .so files mean pure-Python fallbacks were installed",
		},
		{
			Name: "unzipped size within limit",
			OK:   unzipped < maxUnzippedBytes,
			Detail: fmt.Sprintf("%.1f MB of %d MB",
				float64(unzipped)/(1024*1024), maxUnzippedBytes/(1024*1024)),
		},
	}
}
