// Package vfs provides workspace file operations: copying, moving, and
// deleting files or whole directory trees. Sources must exist and
// destinations must not; violations surface as ErrInvalidPath so callers
// can distinguish caller mistakes from real I/O failures.
package vfs

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// ErrInvalidPath reports an operation on a source that does not exist or
// a destination that already does.
var ErrInvalidPath = errors.New("invalid path")

// Copy duplicates src at dst. Regular files keep their permission bits
// and directories copy recursively. Parent directories of dst are
// created as needed.
func Copy(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidPath, src)
	}
	if _, err := os.Stat(dst); err == nil {
		return fmt.Errorf("%w: %s already exists", ErrInvalidPath, dst)
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(dst), err)
	}
	if info.IsDir() {
		return copyTree(src, dst)
	}
	return copyFile(src, dst, info.Mode().Perm())
}

// Move renames src to dst. When the rename fails, typically because src
// and dst live on different devices, it falls back to copy and delete.
func Move(src, dst string) error {
	if _, err := os.Stat(src); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidPath, src)
	}
	if _, err := os.Stat(dst); err == nil {
		return fmt.Errorf("%w: %s already exists", ErrInvalidPath, dst)
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(dst), err)
	}
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	if err := copyAny(src, dst); err != nil {
		return err
	}
	return removeAll(src)
}

// Delete removes the file or directory tree at path.
func Delete(path string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidPath, path)
	}
	return removeAll(path)
}

func copyAny(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("stat %s: %w", src, err)
	}
	if info.IsDir() {
		return copyTree(src, dst)
	}
	return copyFile(src, dst, info.Mode().Perm())
}

func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		info, err := d.Info()
		if err != nil {
			return err
		}
		if d.IsDir() {
			return os.MkdirAll(target, info.Mode().Perm())
		}
		return copyFile(path, target, info.Mode().Perm())
	})
}

func copyFile(src, dst string, perm fs.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy %s: %w", dst, err)
	}
	return out.Close()
}

func removeAll(path string) error {
	if err := os.RemoveAll(path); err != nil {
		return fmt.Errorf("delete %s: %w", path, err)
	}
	return nil
}
