package archive

import (
	"archive/zip"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string, mode os.FileMode) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), mode))
}

func TestPackUnpackRoundTrip(t *testing.T) {
	src := t.TempDir()
	writeFile(t, filepath.Join(src, "appup.toml"), "version = \"1.0.0\"\n", 0o644)
	writeFile(t, filepath.Join(src, "bin", "run.sh"), "#!/bin/sh\n", 0o755)
	writeFile(t, filepath.Join(src, "lib", "deep", "mod.js"), "x\n", 0o644)

	archPath := filepath.Join(t.TempDir(), "out.zip")
	require.NoError(t, Pack(src, archPath))

	dest := t.TempDir()
	require.NoError(t, Unpack(archPath, dest))

	data, err := os.ReadFile(filepath.Join(dest, "appup.toml"))
	require.NoError(t, err)
	assert.Equal(t, "version = \"1.0.0\"\n", string(data))

	_, err = os.Stat(filepath.Join(dest, "lib", "deep", "mod.js"))
	require.NoError(t, err)

	if runtime.GOOS != "windows" {
		info, err := os.Stat(filepath.Join(dest, "bin", "run.sh"))
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o755), info.Mode().Perm(), "executable bit preserved")
	}
}

func TestPackExcludes(t *testing.T) {
	src := t.TempDir()
	writeFile(t, filepath.Join(src, "keep.txt"), "keep\n", 0o644)
	writeFile(t, filepath.Join(src, ".appup", "downloads", "cache.zip"), "x", 0o644)
	writeFile(t, filepath.Join(src, ".git", "HEAD"), "ref\n", 0o644)

	archPath := filepath.Join(t.TempDir(), "out.zip")
	require.NoError(t, Pack(src, archPath, ".appup", ".git"))

	dest := t.TempDir()
	require.NoError(t, Unpack(archPath, dest))

	_, err := os.Stat(filepath.Join(dest, "keep.txt"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dest, ".appup"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(dest, ".git"))
	assert.True(t, os.IsNotExist(err))
}

func TestPackLeavesNoPartialArchive(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "out.zip")
	err := Pack(filepath.Join(t.TempDir(), "does-not-exist"), dest)
	require.Error(t, err)
	_, statErr := os.Stat(dest)
	assert.True(t, os.IsNotExist(statErr))
}

func TestUnpackRejectsTraversal(t *testing.T) {
	archPath := filepath.Join(t.TempDir(), "evil.zip")
	f, err := os.Create(archPath)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	w, err := zw.Create("../escape.txt")
	require.NoError(t, err)
	_, err = w.Write([]byte("pwned"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	err = Unpack(archPath, t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "escapes")
}
