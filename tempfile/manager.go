// Package tempfile manages the per-request temporary files handed to the
// compression engine. Every artifact gets a unique name so concurrent
// requests can share one directory without locking.
package tempfile

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

const (
	// Prefix marks files owned by the manager
	Prefix = "pdfc_"

	// DefaultDirPermissions for temp directory creation
	DefaultDirPermissions = 0o755

	filePermissions = 0o600
)

// Kind tags an artifact with its role in a compression run.
type Kind string

const (
	KindInput  Kind = "input"
	KindOutput Kind = "output"
)

// Artifact is one temporary file on disk.
type Artifact struct {
	Path string
	Kind Kind
}

// Manager creates and deletes artifacts under a single directory.
type Manager struct {
	fs  afero.Fs
	dir string
}

// NewManager creates dir if needed.
func NewManager(fsys afero.Fs, dir string) (*Manager, error) {
	if err := fsys.MkdirAll(dir, DefaultDirPermissions); err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}
	return &Manager{fs: fsys, dir: dir}, nil
}

// Dir returns the directory artifacts are created in.
func (m *Manager) Dir() string {
	return m.dir
}

// Create reserves a new empty file for kind. The name is never reused.
func (m *Manager) Create(kind Kind) (*Artifact, error) {
	path := filepath.Join(m.dir, fmt.Sprintf("%s%s_%s.pdf", Prefix, uuid.NewString(), kind))

	f, err := m.fs.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, filePermissions)
	if err != nil {
		return nil, err
	}
	if err := f.Close(); err != nil {
		_ = m.fs.Remove(path)
		return nil, err
	}

	return &Artifact{Path: path, Kind: kind}, nil
}

// Write replaces the artifact's content with everything read from r.
func (m *Manager) Write(a *Artifact, r io.Reader) (int64, error) {
	f, err := m.fs.OpenFile(a.Path, os.O_WRONLY|os.O_TRUNC, filePermissions)
	if err != nil {
		return 0, err
	}

	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return n, err
}

// ReadAll returns the artifact's full content.
func (m *Manager) ReadAll(a *Artifact) ([]byte, error) {
	return afero.ReadFile(m.fs, a.Path)
}

// Delete removes path. A path that is already gone is not an error.
func (m *Manager) Delete(path string) error {
	if err := m.fs.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// List returns the paths of all artifacts currently in the directory.
func (m *Manager) List() ([]string, error) {
	return afero.Glob(m.fs, filepath.Join(m.dir, Prefix+"*"))
}

// Sweep deletes artifacts left behind by an earlier process and returns how many went.
func (m *Manager) Sweep() (int, error) {
	paths, err := m.List()
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, path := range paths {
		if err := m.Delete(path); err != nil {
			return removed, fmt.Errorf("failed to remove %s: %w", path, err)
		}
		removed++
	}
	return removed, nil
}
