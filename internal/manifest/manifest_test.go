package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jjgreer/appup/internal/version"
)

func writeManifest(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, Filename)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `
name = "rocket"
version = "1.2.3"
minimum_version = "1.0.0"
`)

	m, err := LoadDir(dir)
	require.NoError(t, err)
	assert.Equal(t, "rocket", m.Name)
	assert.Equal(t, "1.2.3", m.Version.String())
	require.NotNil(t, m.MinimumVersion)
	assert.Equal(t, "1.0.0", m.MinimumVersion.String())
}

func TestLoadWithoutMinimum(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `version = "0.1.0"`)

	m, err := LoadDir(dir)
	require.NoError(t, err)
	assert.Nil(t, m.MinimumVersion)
	assert.True(t, m.Version.Satisfies(m.MinimumVersion))
}

func TestLoadMissingVersion(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `name = "rocket"`)

	_, err := LoadDir(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "version")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := LoadDir(t.TempDir())
	require.Error(t, err)
}

func TestLoadInvalidVersion(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `version = "latest"`)

	_, err := LoadDir(dir)
	require.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	min := version.MustParse("2.0.0")
	m := &Manifest{
		Name:           "rocket",
		Version:        version.MustParse("2.1.0"),
		MinimumVersion: &min,
	}

	path := filepath.Join(dir, Filename)
	require.NoError(t, m.Save(path))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, m.Name, got.Name)
	assert.True(t, m.Version.Equal(got.Version))
	require.NotNil(t, got.MinimumVersion)
	assert.True(t, min.Equal(*got.MinimumVersion))
}
