package engine

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/jjgreer/appup/internal/manifest"
)

// InstallResult reports a completed install transaction. The caller is
// responsible for restarting the process; the engine never re-executes
// in-memory code.
type InstallResult struct {
	PreviousVersion string `json:"previous_version"`
	NewVersion      string `json:"new_version"`
	BackupID        string `json:"backup_id"`
	RollbackPath    string `json:"rollback_path"`
}

// installTx records which steps of the install transaction have committed,
// so the recovery path knows exactly how far execution progressed.
type installTx struct {
	stagingDir  string
	backupID    string
	archivePath string
	backupDone  bool
	archiveDone bool
	treeDeleted bool
	treeCopied  bool
	depsDone    bool
}

// Install executes the clean-install transaction against the cached
// download: stage, sanity-check, back up, snapshot a rollback archive,
// destructively replace the tree, install dependencies. If anything fails
// after the destructive step has begun, the tree is automatically restored
// from the rollback archive and the original error is reported.
func (e *Engine) Install(ctx context.Context) (*InstallResult, error) {
	if err := e.sm.begin(OpInstalling); err != nil {
		return nil, err
	}
	defer e.sm.end()

	log := e.opLogger(ctx)

	rec, err := e.cachedDownload()
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrDownloadMissing
	}

	current, err := manifest.LoadDir(e.root)
	if err != nil {
		return nil, err
	}

	tx := &installTx{}
	res, err := e.runInstall(ctx, rec, current, tx)
	if tx.stagingDir != "" {
		_ = os.RemoveAll(tx.stagingDir)
	}
	if err == nil {
		return res, nil
	}

	if !tx.treeDeleted {
		// Nothing destructive happened; the tree is untouched. Pack commits
		// archives atomically, so any archive on disk is a previous
		// install's and stays valid.
		return nil, err
	}

	log.Warn().
		Str("component", "engine").
		Str("operation", "install").
		Err(err).
		Msg("install failed after destructive step, restoring from rollback archive")

	if _, rerr := e.restore(ctx); rerr != nil {
		return nil, fmt.Errorf("install failed: %w (automatic restore also failed: %v; the project tree is in an unknown state)", err, rerr)
	}

	log.Info().
		Str("component", "engine").
		Str("operation", "install").
		Str("restored", current.Version.String()).
		Msg("project tree restored after failed install")

	// The tree is back to its pre-install contents; the install itself is
	// still reported as failed with the original error.
	return nil, err
}

func (e *Engine) runInstall(ctx context.Context, rec *DownloadRecord, current *manifest.Manifest, tx *installTx) (*InstallResult, error) {
	log := e.opLogger(ctx)
	preserved := preserveSet(e.cfg.Install.Preserve)

	// Step 1: extract into an isolated staging directory, never directly
	// into the project root. Staging lives inside the state directory so it
	// survives the destructive step were anything to go wrong mid-copy.
	if err := os.MkdirAll(e.stateDir(), 0o755); err != nil {
		return nil, &FileSystemError{Op: "create", Path: e.stateDir(), Err: err}
	}
	staging, err := os.MkdirTemp(e.stateDir(), "staging-")
	if err != nil {
		return nil, &FileSystemError{Op: "create", Path: e.stateDir(), Err: err}
	}
	tx.stagingDir = staging
	if err := e.archiver.Unpack(rec.Path, staging); err != nil {
		return nil, err
	}

	// Step 2: sanity check against the manifest shipped inside the archive.
	// Release-notes metadata may be absent or stale; this gate runs before
	// anything destructive. A package without a manifest carries no
	// constraint; a malformed one aborts the install.
	staged, err := manifest.LoadDir(staging)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	if err == nil && !current.Version.Satisfies(staged.MinimumVersion) {
		return nil, &VersionMismatchError{
			Current: current.Version.String(),
			Minimum: staged.MinimumVersion.String(),
		}
	}

	// Step 3: back up the configured file list, tagged with the pre-update
	// version.
	backupRec, err := e.backups.Create(e.root, current.Version.String(), e.cfg.Install.Backup)
	if err != nil {
		return nil, err
	}
	tx.backupID = backupRec.ID
	tx.backupDone = true

	// Step 4: snapshot the whole tree into the rollback archive before any
	// destructive step. The previous install's archive is swept only once
	// the new one exists, so a failed pack leaves it usable.
	archPath := e.rollbackPath(current.Version.String())
	if err := os.MkdirAll(filepath.Dir(archPath), 0o755); err != nil {
		return nil, &FileSystemError{Op: "create", Path: filepath.Dir(archPath), Err: err}
	}
	tx.archivePath = archPath
	if err := e.archiver.Pack(e.root, archPath, e.cfg.Install.Preserve...); err != nil {
		return nil, err
	}
	tx.archiveDone = true
	if err := e.removeRollbackArchives(archPath); err != nil {
		return nil, err
	}

	// Step 5: destructive replace. treeDeleted commits before the first
	// removal so a failure anywhere past this line triggers recovery.
	tx.treeDeleted = true
	if err := clearTree(e.root, preserved); err != nil {
		return nil, err
	}
	if err := copyTree(staging, e.root, preserved); err != nil {
		return nil, err
	}
	tx.treeCopied = true

	// Step 6: dependency install against the new tree.
	if err := e.deps.Install(ctx, e.root); err != nil {
		return nil, err
	}
	tx.depsDone = true

	// Step 7: the download is consumed; staging is discarded by the caller.
	// The install itself is complete here, so a cleanup failure must not
	// reach the recovery path.
	if err := e.removeDownloads(); err != nil {
		log.Warn().
			Str("component", "engine").
			Str("operation", "install").
			Err(err).
			Msg("installed, but the consumed download could not be removed")
	}
	e.setPlan(nil)

	log.Info().
		Str("component", "engine").
		Str("operation", "install").
		Str("from", current.Version.String()).
		Str("to", rec.Version.String()).
		Msg("install complete, restart required")

	return &InstallResult{
		PreviousVersion: current.Version.String(),
		NewVersion:      rec.Version.String(),
		BackupID:        backupRec.ID,
		RollbackPath:    archPath,
	}, nil
}

// ClearBackups removes every backup directory and the rollback archive.
// This is irreversible: afterwards there is nothing left to roll back to.
// Rejected while an install is running.
func (e *Engine) ClearBackups() (int, error) {
	removed := 0
	err := e.sm.withGuard(func() error {
		n, err := e.backups.Clear()
		if err != nil {
			return err
		}
		removed = n
		return e.removeRollbackArchives()
	}, OpInstalling)
	return removed, err
}
