// Package file implements the local filesystem side of the ETL job: finding
// the input files of a dataset and opening them for reading.
package file

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultExt is the suffix Discover matches when ext is empty.
const DefaultExt = ".json"

// DiscoveryError reports a dataset root that could not be walked.
type DiscoveryError struct {
	Root string
	Err  error
}

func (e *DiscoveryError) Error() string {
	return fmt.Sprintf("discover %s: %v", e.Root, e.Err)
}

func (e *DiscoveryError) Unwrap() error { return e.Err }

// Discover walks root recursively and returns the absolute paths of all
// regular files whose name ends in ext, sorted lexically. Names starting with
// "." are skipped. A symlink counts when it resolves to a regular file;
// symlinked directories are not descended into.
//
// An empty result is not an error. A missing or unreadable root, or any
// directory below it that cannot be listed, yields a *DiscoveryError.
func Discover(root, ext string) ([]string, error) {
	if ext == "" {
		ext = DefaultExt
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, &DiscoveryError{Root: root, Err: err}
	}

	var out []string
	err = filepath.WalkDir(abs, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, ext) {
			return nil
		}
		switch {
		case d.Type().IsRegular():
			out = append(out, path)
		case d.Type()&fs.ModeSymlink != 0:
			if fi, err := os.Stat(path); err == nil && fi.Mode().IsRegular() {
				out = append(out, path)
			}
		}
		return nil
	})
	if err != nil {
		return nil, &DiscoveryError{Root: root, Err: err}
	}

	sort.Strings(out)
	return out, nil
}
