// Package localfs enumerates and reads local files for sync. It is the
// local side of the transfer boundary: the sync engine consumes the file
// records produced here and never touches the filesystem directly for
// uploads.
package localfs

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Separator joins the segments of a relative path in file records and
// human-readable remote paths. It matches the path style recorded in
// fingerprints written by other clients of the same service.
const Separator = "\\"

// timeLayout formats local file timestamps for fingerprints.
const timeLayout = "2006-01-02 15:04:05"

// File is one local file selected for sync.
type File struct {
	Path   string // absolute path on disk
	Name   string // base name, NFC-normalized
	RelDir string // directory relative to the sync root, Separator-joined; "" at the root
	Size   int64
	CTime  string // see note on List
	MTime  string
}

// RelPath returns the file's path relative to the sync root.
func (f File) RelPath() string {
	if f.RelDir == "" {
		return f.Name
	}

	return f.RelDir + Separator + f.Name
}

// List walks root and returns a record for every regular file found,
// ordered by walk order. Path segments are NFC-normalized so they can serve
// as stable remote lookup keys regardless of how the local filesystem
// reports composed characters.
//
// Creation time is not portably available in Go, so CTime carries the
// modification time as well; the fingerprint side channel preserves
// whatever value is recorded here.
func List(root string) ([]File, error) {
	root = filepath.Clean(root)

	var files []File

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		if d.IsDir() {
			return nil
		}

		if !d.Type().IsRegular() {
			return nil
		}

		info, infoErr := d.Info()
		if infoErr != nil {
			return fmt.Errorf("stat %s: %w", path, infoErr)
		}

		rel, relErr := filepath.Rel(root, filepath.Dir(path))
		if relErr != nil {
			return fmt.Errorf("relativizing %s: %w", path, relErr)
		}

		mtime := info.ModTime().Format(timeLayout)

		files = append(files, File{
			Path:   path,
			Name:   norm.NFC.String(d.Name()),
			RelDir: relDir(rel),
			Size:   info.Size(),
			CTime:  mtime,
			MTime:  mtime,
		})

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", root, err)
	}

	return files, nil
}

// relDir converts a filepath.Rel result into a Separator-joined,
// NFC-normalized relative directory.
func relDir(rel string) string {
	if rel == "." || rel == "" {
		return ""
	}

	segments := strings.Split(filepath.ToSlash(rel), "/")
	for i, seg := range segments {
		segments[i] = norm.NFC.String(seg)
	}

	return strings.Join(segments, Separator)
}

// Open returns a seekable reader for the file's content. The caller closes
// it; uploads seek back to the start when a timed-out attempt is retried.
func Open(path string) (io.ReadSeekCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}

	return f, nil
}
