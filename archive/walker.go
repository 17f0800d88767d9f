// Package archive builds Walk abstraction on top of "archive/zip".
package archive

import (
	"archive/zip"
	"fmt"
	"path"
	"slices"
	"strings"

	"github.com/maruel/natural"
	"golang.org/x/text/encoding"
)

// WalkFunc is the type of the function called for each file in archive
// visited by Walk. The archive argument contains path to archive passed to
// Walk. The file argument is the zip.File structure for file in archive which
// satisfies match conditions. If an error is returned, processing stops.
type WalkFunc func(archive string, file *zip.File) error

// MatchFunc decides if file with given name (as stored in archive) should be
// visited.
type MatchFunc func(name string) bool

// Walk walks all regular files in the archive under prefix which satisfy
// match, in natural order of their names, calling walkFn for each item. Nil
// match accepts everything. Entries with path traversal components ("..") or
// absolute paths are rejected to prevent Zip Slip attacks.
func Walk(archive, prefix string, match MatchFunc, walkFn WalkFunc) error {
	r, err := zip.OpenReader(archive)
	if err != nil {
		return err
	}
	defer r.Close()

	files := make([]*zip.File, 0, len(r.File))
	for _, f := range r.File {
		name := f.FileHeader.Name
		if !isSafePath(name) {
			return fmt.Errorf("zip entry %q: unsafe path (absolute or contains path traversal)", name)
		}
		if f.FileInfo().IsDir() || !strings.HasPrefix(name, prefix) {
			continue
		}
		if match != nil && !match(name) {
			continue
		}
		files = append(files, f)
	}
	// central directory order is whatever archiver produced
	slices.SortStableFunc(files, func(a, b *zip.File) int {
		switch {
		case natural.Less(a.Name, b.Name):
			return -1
		case natural.Less(b.Name, a.Name):
			return 1
		}
		return 0
	})

	for _, f := range files {
		if err := walkFn(archive, f); err != nil {
			return err
		}
	}
	return nil
}

// DecodeName returns name of the file in archive. Since zip "standard" does
// not define file name encoding names not marked as UTF-8 are converted from
// cp when it is not nil.
func DecodeName(f *zip.File, cp encoding.Encoding) (string, error) {
	if cp == nil || !f.FileHeader.NonUTF8 {
		return f.FileHeader.Name, nil
	}
	n, err := cp.NewDecoder().String(f.FileHeader.Name)
	if err != nil {
		return f.FileHeader.Name, err
	}
	return n, nil
}

// isSafePath returns false for paths that could escape the extraction
// directory: absolute paths and those containing ".." components.
func isSafePath(name string) bool {
	if path.IsAbs(name) || strings.HasPrefix(name, `\`) {
		return false
	}
	return !slices.Contains(strings.Split(strings.ReplaceAll(name, `\`, "/"), "/"), "..")
}
