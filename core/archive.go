package core

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// safeJoin resolves name under dest and rejects entries that would land
// outside of it.
func safeJoin(dest, name string) (string, error) {
	target := filepath.Join(dest, filepath.FromSlash(name))
	if !within(dest, target) {
		return "", fmt.Errorf("%w: %s", ErrUnsafeArchivePath, name)
	}
	return target, nil
}

func within(dest, path string) bool {
	root := filepath.Clean(dest)
	path = filepath.Clean(path)
	return path == root || strings.HasPrefix(path, root+string(os.PathSeparator))
}

// checkNoSymlink fails when any existing component of path below dest,
// path itself included, is a symbolic link. Extracted entries must never
// be written through a link created by an earlier entry.
func checkNoSymlink(fs afero.Fs, dest, path string) error {
	lstater, ok := fs.(afero.Lstater)
	if !ok {
		return nil
	}
	root := filepath.Clean(dest)
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." {
		return nil
	}
	cur := root
	for _, part := range strings.Split(rel, string(os.PathSeparator)) {
		cur = filepath.Join(cur, part)
		info, _, err := lstater.LstatIfPossible(cur)
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		if err != nil {
			return err
		}
		if info.Mode()&os.ModeSymlink != 0 {
			return fmt.Errorf("%w: %s is below a symlink", ErrUnsafeArchivePath, path)
		}
	}
	return nil
}

// extractZip unpacks the zip file at src into dest.
func extractZip(fs afero.Fs, src, dest string) error {
	f, err := fs.Open(src)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat archive: %w", err)
	}
	zr, err := zip.NewReader(f, info.Size())
	if err != nil {
		return fmt.Errorf("read zip: %w", err)
	}

	for _, zf := range zr.File {
		target, err := safeJoin(dest, zf.Name)
		if err != nil {
			return err
		}
		mode := zf.Mode()
		switch {
		case mode.IsDir():
			if err := mkdir(fs, dest, target); err != nil {
				return err
			}
		case mode&os.ModeSymlink != 0:
			if err := extractZipSymlink(fs, zf, dest, target); err != nil {
				return err
			}
		default:
			rc, err := zf.Open()
			if err != nil {
				return fmt.Errorf("open %s: %w", zf.Name, err)
			}
			err = writeFile(fs, dest, target, rc, mode.Perm())
			rc.Close()
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func extractZipSymlink(fs afero.Fs, zf *zip.File, dest, target string) error {
	rc, err := zf.Open()
	if err != nil {
		return fmt.Errorf("open %s: %w", zf.Name, err)
	}
	defer rc.Close()
	link, err := io.ReadAll(rc)
	if err != nil {
		return fmt.Errorf("read link %s: %w", zf.Name, err)
	}
	return symlink(fs, dest, string(link), target)
}

// extractTarGz unpacks the gzip-compressed tarball at src into dest.
func extractTarGz(fs afero.Fs, src, dest string) error {
	f, err := fs.Open(src)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("create gzip reader: %w", err)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read tar header: %w", err)
		}

		target, err := safeJoin(dest, hdr.Name)
		if err != nil {
			return err
		}
		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := mkdir(fs, dest, target); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := writeFile(fs, dest, target, tr, os.FileMode(hdr.Mode).Perm()); err != nil {
				return err
			}
		case tar.TypeSymlink:
			if err := symlink(fs, dest, hdr.Linkname, target); err != nil {
				return err
			}
		}
	}
}

func mkdir(fs afero.Fs, dest, target string) error {
	if err := checkNoSymlink(fs, dest, target); err != nil {
		return err
	}
	return fs.MkdirAll(target, 0o755)
}

func writeFile(fs afero.Fs, dest, target string, r io.Reader, perm os.FileMode) error {
	if err := checkNoSymlink(fs, dest, target); err != nil {
		return err
	}
	if err := fs.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	if perm == 0 {
		perm = 0o644
	}
	out, err := fs.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return fmt.Errorf("create %s: %w", target, err)
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return fmt.Errorf("write %s: %w", target, err)
	}
	if err := out.Close(); err != nil {
		return err
	}
	// OpenFile perms are subject to umask
	return fs.Chmod(target, perm)
}

// symlink creates a link when the filesystem supports it. Filesystems
// without link support skip the entry. Absolute link targets and targets
// resolving outside dest are rejected.
func symlink(fs afero.Fs, dest, oldname, newname string) error {
	resolved := filepath.Join(filepath.Dir(newname), filepath.FromSlash(oldname))
	if filepath.IsAbs(oldname) || strings.HasPrefix(oldname, "/") || !within(dest, resolved) {
		return fmt.Errorf("%w: %s -> %s", ErrUnsafeArchivePath, newname, oldname)
	}
	linker, ok := fs.(afero.Linker)
	if !ok {
		return nil
	}
	if err := checkNoSymlink(fs, dest, filepath.Dir(newname)); err != nil {
		return err
	}
	if err := fs.MkdirAll(filepath.Dir(newname), 0o755); err != nil {
		return err
	}
	_ = fs.Remove(newname)
	if err := linker.SymlinkIfPossible(oldname, newname); err != nil {
		return fmt.Errorf("symlink %s: %w", newname, err)
	}
	return nil
}
