// Package docroot exposes the served directory as a read-only
// billy.Filesystem shared by the HTTP, TFTP and NFS front ends.
package docroot

import (
	"os"
	"path/filepath"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
)

// New opens dir as the document root. Lookups that climb out with ".." or
// symlinks are kept inside dir by the bound OS filesystem.
func New(dir string) (billy.Filesystem, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	fi, err := os.Stat(abs)
	if err != nil {
		return nil, err
	}
	if !fi.IsDir() {
		return nil, &os.PathError{Op: "docroot", Path: abs, Err: os.ErrInvalid}
	}
	return ReadOnly(osfs.New(abs, osfs.WithBoundOS())), nil
}

// Probe opens name if it is an existing, readable, non-directory file. The
// caller owns the returned file.
func Probe(fs billy.Filesystem, name string) (billy.File, os.FileInfo, bool) {
	fi, err := fs.Stat(name)
	if err != nil || fi.IsDir() {
		return nil, nil, false
	}
	f, err := fs.Open(name)
	if err != nil {
		return nil, nil, false
	}
	return f, fi, true
}
