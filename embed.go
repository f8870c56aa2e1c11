// Package storefront provides the embedded catalog site templates and an
// overlay filesystem that checks local disk first, falling back to embedded.
package storefront

import (
	"embed"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

//go:embed web/templates/*.html
var rawTemplates embed.FS

// Templates is the embedded site templates filesystem with the
// "web/templates/" prefix stripped.
var Templates = mustSub(rawTemplates, "web/templates")

func mustSub(fsys fs.FS, dir string) fs.FS {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic(err)
	}
	return sub
}

// OverlayFS returns a filesystem that checks localDir on disk first,
// falling back to the embedded filesystem for files not found locally.
// Directories always come from embedded so listings stay complete.
// An empty localDir returns embedded unchanged.
func OverlayFS(localDir string, embedded fs.FS) fs.FS {
	if localDir == "" {
		return embedded
	}
	return overlayFS{localDir: localDir, embedded: embedded}
}

type overlayFS struct {
	localDir string
	embedded fs.FS
}

func (o overlayFS) Open(name string) (fs.File, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}
	local := filepath.Join(o.localDir, filepath.FromSlash(name))
	if info, err := os.Stat(local); err == nil && !info.IsDir() {
		return os.Open(local)
	} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	return o.embedded.Open(name)
}
