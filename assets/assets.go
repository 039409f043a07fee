// Package assets serves the static files of the display page from the
// embedded build, a local directory or an S3 bucket.
package assets

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path"
	"strings"
	"time"

	"github.com/spf13/afero"
)

var ErrNotFound = errors.New("asset not found")

type Asset struct {
	Name    string
	Data    []byte
	ModTime time.Time
}

// Source looks up a static file by its slash separated name.
type Source interface {
	Open(ctx context.Context, name string) (*Asset, error)
}

// FSSource reads assets from an afero filesystem.
type FSSource struct {
	fs afero.Fs
}

func NewFSSource(fsys afero.Fs) *FSSource {
	return &FSSource{fs: afero.NewReadOnlyFs(fsys)}
}

// NewEmbeddedSource serves an embedded filesystem, such as the assets compiled
// into the binary.
func NewEmbeddedSource(fsys fs.FS) *FSSource {
	return NewFSSource(afero.FromIOFS{FS: fsys})
}

// NewDirSource serves the files under dir.
func NewDirSource(dir string) (*FSSource, error) {
	osFs := afero.NewOsFs()
	isDir, err := afero.IsDir(osFs, dir)
	if err != nil {
		return nil, fmt.Errorf("unable to read assets directory, %s, %w", dir, err)
	}
	if !isDir {
		return nil, fmt.Errorf("assets path is not a directory: %s", dir)
	}
	return NewFSSource(afero.NewBasePathFs(osFs, dir)), nil
}

func (s *FSSource) Open(_ context.Context, name string) (*Asset, error) {
	info, err := s.fs.Stat(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, fmt.Errorf("unable to stat asset, %s, %w", name, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrNotFound, name)
	}

	data, err := afero.ReadFile(s.fs, name)
	if err != nil {
		return nil, fmt.Errorf("unable to read asset, %s, %w", name, err)
	}
	return &Asset{Name: name, Data: data, ModTime: info.ModTime()}, nil
}

// Chain tries each source in order and returns the first asset found.
type Chain []Source

func (c Chain) Open(ctx context.Context, name string) (*Asset, error) {
	for _, src := range c {
		a, err := src.Open(ctx, name)
		if err == nil {
			return a, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
}

// cleanName turns a request path into an asset name, rejecting anything that
// would escape the asset root.
func cleanName(urlPath string) (string, bool) {
	name := strings.TrimPrefix(path.Clean("/"+urlPath), "/")
	if name == "" || name == "." || !fs.ValidPath(name) {
		return "", false
	}
	return name, true
}

// Handler serves GET and HEAD requests for assets from src.
func Handler(src Source) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}

		name, ok := cleanName(r.URL.Path)
		if !ok {
			http.NotFound(w, r)
			return
		}

		a, err := src.Open(r.Context(), name)
		if errors.Is(err, ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		if err != nil {
			slog.Error("failed to load asset", "name", name, "error", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		http.ServeContent(w, r, path.Base(a.Name), a.ModTime, bytes.NewReader(a.Data))
	})
}
