package layer

import (
	"archive/zip"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/cockroachdb/errors"
)

// zipStaging writes the staging directory into a zip at outputPath, with
// every entry placed under the given prefix. Entries are sorted and carry
// no timestamps, so identical inputs produce identical archives.
func zipStaging(stagingDir, prefix, outputPath string) error {
	var files []string
	err := filepath.WalkDir(stagingDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(stagingDir, path)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return errors.Wrap(err, "failed to walk staging directory")
	}
	sort.Strings(files)

	out, err := os.Create(outputPath)
	if err != nil {
		return errors.Wrap(err, "failed to create layer zip")
	}

	w := zip.NewWriter(out)
	for _, rel := range files {
		if err := addZipEntry(w, stagingDir, prefix, rel); err != nil {
			out.Close()
			return err
		}
	}

	if err := w.Close(); err != nil {
		out.Close()
		return errors.Wrap(err, "failed to finalize layer zip")
	}

	return errors.Wrap(out.Close(), "failed to close layer zip")
}

func addZipEntry(w *zip.Writer, stagingDir, prefix, rel string) error {
	src := filepath.Join(stagingDir, filepath.FromSlash(rel))

	info, err := os.Stat(src)
	if err != nil {
		return errors.Wrapf(err, "failed to stat %s", rel)
	}

	header := &zip.FileHeader{
		Name:   prefix + "/" + rel,
		Method: zip.Deflate,
	}
	header.SetMode(info.Mode().Perm())

	entry, err := w.CreateHeader(header)
	if err != nil {
		return errors.Wrapf(err, "failed to create zip entry for %s", rel)
	}

	f, err := os.Open(src)
	if err != nil {
		return errors.Wrapf(err, "failed to open %s", rel)
	}
	defer f.Close()

	if _, err := io.Copy(entry, f); err != nil {
		return errors.Wrapf(err, "failed to write %s", rel)
	}
	return nil
}
