package core

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/spf13/afero"
)

const (
	ProfilePrefix     = "tmp-"
	UserDataDirName   = "user"
	ExtensionsDirName = "extensions"
)

// Profile is a per-run editor profile: a unique temporary directory holding
// the user data and extensions directories. It is removed at most once.
type Profile struct {
	fs  afero.Fs
	dir string

	once      sync.Once
	removeErr error
}

// NewProfile creates a uniquely named directory under parent.
func NewProfile(fs afero.Fs, parent, prefix string) (*Profile, error) {
	if err := fs.MkdirAll(parent, 0o755); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProfileCreate, err)
	}
	dir, err := afero.TempDir(fs, parent, prefix)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProfileCreate, err)
	}

	p := &Profile{fs: fs, dir: dir}
	for _, sub := range []string{p.UserDataDir(), p.ExtensionsDir()} {
		if err := fs.MkdirAll(sub, 0o755); err != nil {
			_ = p.Remove()
			return nil, fmt.Errorf("%w: %w", ErrProfileCreate, err)
		}
	}
	return p, nil
}

func (p *Profile) Dir() string {
	return p.dir
}

func (p *Profile) UserDataDir() string {
	return filepath.Join(p.dir, UserDataDirName)
}

func (p *Profile) ExtensionsDir() string {
	return filepath.Join(p.dir, ExtensionsDirName)
}

// LaunchArgs points the editor at this profile.
func (p *Profile) LaunchArgs() []string {
	return []string{
		"--user-data-dir", p.UserDataDir(),
		"--extensions-dir", p.ExtensionsDir(),
	}
}

// Remove deletes the profile recursively. Only the first call touches the
// filesystem; later calls return the first result.
func (p *Profile) Remove() error {
	p.once.Do(func() {
		p.removeErr = p.fs.RemoveAll(p.dir)
	})
	return p.removeErr
}
