package engine

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jjgreer/appup/internal/backup"
	"github.com/jjgreer/appup/internal/config"
)

// bareEngine builds an engine around a temp root without going through the
// singleton registry, for exercising maintenance guards in isolation.
func bareEngine(t *testing.T) *Engine {
	t.Helper()
	root := t.TempDir()
	cfg := config.Default()
	cfg.Paths.ProjectRoot = root
	return &Engine{
		cfg:     cfg,
		root:    root,
		backups: backup.NewManager(filepath.Join(root, ".appup", "backups")),
		sm:      newStateMachine(),
	}
}

func TestClearDownloadsGuard(t *testing.T) {
	e := bareEngine(t)

	for _, op := range []Operation{OpDownloading, OpInstalling} {
		require.NoError(t, e.sm.begin(op))
		_, err := e.ClearDownloads()
		var conflict *StateConflictError
		require.ErrorAs(t, err, &conflict, "clear downloads during %s", op)
		assert.Equal(t, op, conflict.Active)
		e.sm.end()
	}

	// Allowed while checking, and on a missing cache directory.
	require.NoError(t, e.sm.begin(OpChecking))
	removed, err := e.ClearDownloads()
	require.NoError(t, err)
	assert.Zero(t, removed)
	e.sm.end()
}

func TestClearBackupsGuard(t *testing.T) {
	e := bareEngine(t)

	require.NoError(t, e.sm.begin(OpInstalling))
	_, err := e.ClearBackups()
	var conflict *StateConflictError
	require.ErrorAs(t, err, &conflict)
	e.sm.end()

	// Permitted during a download: backups are not involved in that path.
	require.NoError(t, e.sm.begin(OpDownloading))
	_, err = e.ClearBackups()
	require.NoError(t, err)
	e.sm.end()
}
