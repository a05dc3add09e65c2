package engine

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/jjgreer/appup/internal/version"
)

const rollbackPrefix = "appup-rollback-"

// RollbackInfo describes the stored rollback archive, if any.
type RollbackInfo struct {
	Available bool      `json:"available"`
	Version   string    `json:"version,omitempty"`
	Path      string    `json:"path,omitempty"`
	SizeBytes int64     `json:"size_bytes,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// RollbackResult reports a completed rollback.
type RollbackResult struct {
	RestoredVersion string `json:"restored_version"`
}

func (e *Engine) rollbackDir() string {
	return filepath.Join(e.stateDir(), "rollback")
}

func (e *Engine) rollbackPath(ver string) string {
	return filepath.Join(e.rollbackDir(), rollbackPrefix+ver+downloadExt)
}

// Rollback restores the project tree from the most recent rollback archive
// and consumes it: a second call reports ErrNoRollback.
func (e *Engine) Rollback(ctx context.Context) (*RollbackResult, error) {
	if err := e.sm.begin(OpInstalling); err != nil {
		return nil, err
	}
	defer e.sm.end()

	log := e.opLogger(ctx)
	restored, err := e.restore(ctx)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("component", "engine").
		Str("operation", "rollback").
		Str("restored", restored.String()).
		Msg("rollback complete, restart required")

	return &RollbackResult{RestoredVersion: restored.String()}, nil
}

// restore is the shared delete/extract/reinstall primitive used by Rollback
// and by the automatic recovery path inside Install. The caller owns the
// state machine.
func (e *Engine) restore(ctx context.Context) (version.Version, error) {
	arch := e.rollbackArchive()
	if arch == nil {
		return version.Version{}, ErrNoRollback
	}

	preserved := preserveSet(e.cfg.Install.Preserve)
	if err := clearTree(e.root, preserved); err != nil {
		return version.Version{}, err
	}
	if err := e.archiver.Unpack(arch.Path, e.root); err != nil {
		return version.Version{}, err
	}
	if err := e.deps.Install(ctx, e.root); err != nil {
		return version.Version{}, err
	}
	if err := os.Remove(arch.Path); err != nil {
		return version.Version{}, &FileSystemError{Op: "remove", Path: arch.Path, Err: err}
	}

	v, _ := version.Parse(arch.Version)
	return v, nil
}

// RollbackAvailable reports whether a rollback archive exists.
func (e *Engine) RollbackAvailable() bool {
	return e.rollbackArchive() != nil
}

// GetRollbackInfo inspects the rollback archive without mutating anything.
// It does not require the idle state.
func (e *Engine) GetRollbackInfo() RollbackInfo {
	arch := e.rollbackArchive()
	if arch == nil {
		return RollbackInfo{}
	}
	return *arch
}

// rollbackArchive scans the rollback directory for the current archive.
func (e *Engine) rollbackArchive() *RollbackInfo {
	entries, err := os.ReadDir(e.rollbackDir())
	if err != nil {
		return nil
	}

	var info *RollbackInfo
	for _, entry := range entries {
		v, ok := versionFromFilename(entry.Name(), rollbackPrefix)
		if !ok {
			continue
		}
		fi, err := entry.Info()
		if err != nil {
			continue
		}
		// At most one archive exists; prefer the newest if a stray older
		// file is present.
		if info == nil || fi.ModTime().After(info.CreatedAt) {
			info = &RollbackInfo{
				Available: true,
				Version:   v.String(),
				Path:      filepath.Join(e.rollbackDir(), entry.Name()),
				SizeBytes: fi.Size(),
				CreatedAt: fi.ModTime(),
			}
		}
	}
	return info
}

func (e *Engine) removeRollbackArchives(keep ...string) error {
	entries, err := os.ReadDir(e.rollbackDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return &FileSystemError{Op: "read", Path: e.rollbackDir(), Err: err}
	}
	for _, entry := range entries {
		path := filepath.Join(e.rollbackDir(), entry.Name())
		if slices.Contains(keep, path) {
			continue
		}
		if err := os.Remove(path); err != nil {
			return &FileSystemError{Op: "remove", Path: path, Err: err}
		}
	}
	return nil
}
