package engine

import (
	"io"
	"os"
	"path/filepath"
)

// preserveSet normalizes the preserve list into a lookup of top-level entry
// names exempt from deletion and from being overwritten by a copy.
func preserveSet(preserve []string) map[string]bool {
	set := make(map[string]bool, len(preserve))
	for _, p := range preserve {
		p = filepath.Clean(p)
		if p == "" || p == "." {
			continue
		}
		// Only the first path component matters: preserved entries are
		// whole top-level files or directories.
		for dir := p; dir != "."; dir = filepath.Dir(dir) {
			p = dir
		}
		set[p] = true
	}
	return set
}

// clearTree deletes every top-level entry under root except preserved ones.
func clearTree(root string, preserved map[string]bool) error {
	entries, err := os.ReadDir(root)
	if err != nil {
		return &FileSystemError{Op: "read", Path: root, Err: err}
	}
	for _, entry := range entries {
		if preserved[entry.Name()] {
			continue
		}
		path := filepath.Join(root, entry.Name())
		if err := os.RemoveAll(path); err != nil {
			return &FileSystemError{Op: "remove", Path: path, Err: err}
		}
	}
	return nil
}

// copyTree copies every entry from src into dst, preserving file modes.
// Top-level entries named in preserved are skipped so a shipped .env or
// VCS directory cannot clobber the local one.
func copyTree(src, dst string, preserved map[string]bool) error {
	entries, err := os.ReadDir(src)
	if err != nil {
		return &FileSystemError{Op: "read", Path: src, Err: err}
	}
	for _, entry := range entries {
		if preserved[entry.Name()] {
			continue
		}
		from := filepath.Join(src, entry.Name())
		to := filepath.Join(dst, entry.Name())
		if err := copyPath(from, to); err != nil {
			return err
		}
	}
	return nil
}

func copyPath(src, dst string) error {
	info, err := os.Lstat(src)
	if err != nil {
		return &FileSystemError{Op: "stat", Path: src, Err: err}
	}

	if info.IsDir() {
		if err := os.MkdirAll(dst, info.Mode().Perm()); err != nil {
			return &FileSystemError{Op: "create", Path: dst, Err: err}
		}
		entries, err := os.ReadDir(src)
		if err != nil {
			return &FileSystemError{Op: "read", Path: src, Err: err}
		}
		for _, entry := range entries {
			if err := copyPath(filepath.Join(src, entry.Name()), filepath.Join(dst, entry.Name())); err != nil {
				return err
			}
		}
		return nil
	}

	return copyFile(src, dst, info.Mode().Perm())
}

func copyFile(src, dst string, mode os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return &FileSystemError{Op: "open", Path: src, Err: err}
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return &FileSystemError{Op: "create", Path: filepath.Dir(dst), Err: err}
	}
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return &FileSystemError{Op: "create", Path: dst, Err: err}
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(dst)
		return &FileSystemError{Op: "copy", Path: dst, Err: err}
	}
	if err := out.Close(); err != nil {
		return &FileSystemError{Op: "close", Path: dst, Err: err}
	}
	return nil
}
