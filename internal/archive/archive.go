// Package archive implements the zip codec used for release assets and
// rollback archives. Packing and unpacking preserve file modes and directory
// structure exactly.
package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Codec is the engine-facing handle for the zip functions.
type Codec struct{}

// Pack archives srcDir into a zip file at destPath, skipping the named
// top-level entries. The file is written to a temporary name and renamed on
// completion so a failed pack leaves no partial archive behind.
func (Codec) Pack(srcDir, destPath string, exclude ...string) error {
	return Pack(srcDir, destPath, exclude...)
}

// Unpack extracts the zip file at srcPath into destDir.
func (Codec) Unpack(srcPath, destDir string) error {
	return Unpack(srcPath, destDir)
}

// Pack archives srcDir into destPath. See Codec.Pack.
func Pack(srcDir, destPath string, exclude ...string) error {
	excluded := make(map[string]bool, len(exclude))
	for _, name := range exclude {
		excluded[filepath.Clean(name)] = true
	}

	tmp := destPath + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("creating archive: %w", err)
	}

	zw := zip.NewWriter(f)
	err = filepath.WalkDir(srcDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		if excluded[topComponent(rel)] {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		return addEntry(zw, path, filepath.ToSlash(rel), d)
	})

	if cerr := zw.Close(); err == nil {
		err = cerr
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("packing %s: %w", srcDir, err)
	}
	if err := os.Rename(tmp, destPath); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("committing archive: %w", err)
	}
	return nil
}

func addEntry(zw *zip.Writer, path, name string, d fs.DirEntry) error {
	info, err := d.Info()
	if err != nil {
		return err
	}

	hdr, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	hdr.Name = name
	if d.IsDir() {
		hdr.Name += "/"
		_, err = zw.CreateHeader(hdr)
		return err
	}
	hdr.Method = zip.Deflate

	w, err := zw.CreateHeader(hdr)
	if err != nil {
		return err
	}
	in, err := os.Open(path)
	if err != nil {
		return err
	}
	defer in.Close()
	_, err = io.Copy(w, in)
	return err
}

// Unpack extracts srcPath into destDir, creating it if needed. Entries that
// would escape destDir are rejected.
func Unpack(srcPath, destDir string) error {
	zr, err := zip.OpenReader(srcPath)
	if err != nil {
		return fmt.Errorf("opening archive %s: %w", srcPath, err)
	}
	defer zr.Close()

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", destDir, err)
	}

	for _, file := range zr.File {
		if err := extract(file, destDir); err != nil {
			return fmt.Errorf("unpacking %s: %w", file.Name, err)
		}
	}
	return nil
}

func extract(file *zip.File, destDir string) error {
	target, err := safeJoin(destDir, file.Name)
	if err != nil {
		return err
	}

	if file.FileInfo().IsDir() {
		return os.MkdirAll(target, file.Mode().Perm()|0o700)
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, file.Mode().Perm())
	if err != nil {
		return err
	}

	in, err := file.Open()
	if err != nil {
		_ = out.Close()
		return err
	}

	_, err = io.Copy(out, in)
	_ = in.Close()
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	return err
}

// safeJoin joins name onto dir, rejecting absolute names and traversal.
func safeJoin(dir, name string) (string, error) {
	if filepath.IsAbs(name) {
		return "", fmt.Errorf("absolute path in archive: %s", name)
	}
	target := filepath.Join(dir, filepath.FromSlash(name))
	if target != dir && !strings.HasPrefix(target, dir+string(os.PathSeparator)) {
		return "", fmt.Errorf("path escapes destination: %s", name)
	}
	return target, nil
}

func topComponent(rel string) string {
	for dir := rel; dir != "."; dir = filepath.Dir(dir) {
		rel = dir
	}
	return rel
}
