package engine

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jjgreer/appup/internal/version"
)

const (
	downloadPrefix = "appup-"
	downloadExt    = ".zip"
)

// DownloadRecord describes the single cached download. It is derived from
// the downloads directory, so it survives process restarts.
type DownloadRecord struct {
	Version      version.Version `json:"version"`
	Path         string          `json:"path"`
	SizeBytes    int64           `json:"size_bytes"`
	DownloadedAt time.Time       `json:"downloaded_at"`
}

// DownloadResult reports a completed download.
type DownloadResult struct {
	Version      string `json:"version"`
	Path         string `json:"path"`
	SizeBytes    int64  `json:"size_bytes"`
	IsLatest     bool   `json:"is_latest"`
	Intermediate bool   `json:"intermediate"`
}

func (e *Engine) downloadsDir() string {
	return filepath.Join(e.stateDir(), "downloads")
}

// Download fetches the current plan's target asset into the local cache,
// replacing any prior cached download. It requires a successful Check first.
func (e *Engine) Download(ctx context.Context) (*DownloadResult, error) {
	plan := e.currentPlan()
	if plan == nil {
		return nil, &ResolutionError{Reason: "no upgrade plan; run check first"}
	}
	if plan.target.AssetURL == "" {
		return nil, &ResolutionError{Reason: "release " + plan.Target.String() + " has no downloadable asset"}
	}

	if err := e.sm.begin(OpDownloading); err != nil {
		return nil, err
	}
	defer e.sm.end()

	log := e.opLogger(ctx)
	dir := e.downloadsDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, &FileSystemError{Op: "create", Path: dir, Err: err}
	}

	rc, _, err := e.source.FetchAsset(ctx, plan.target)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	final := filepath.Join(dir, downloadPrefix+plan.Target.String()+downloadExt)
	tmp := final + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, &FileSystemError{Op: "create", Path: tmp, Err: err}
	}

	written, err := io.Copy(f, rc)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(tmp)
		return nil, &NetworkError{Op: "download asset", Err: err}
	}

	// One cached download at a time: drop the previous one, then commit the
	// new file with an atomic rename.
	if err := e.removeDownloads(); err != nil {
		_ = os.Remove(tmp)
		return nil, err
	}
	if err := os.Rename(tmp, final); err != nil {
		_ = os.Remove(tmp)
		return nil, &FileSystemError{Op: "rename", Path: final, Err: err}
	}

	log.Info().
		Str("component", "engine").
		Str("operation", "download").
		Str("version", plan.Target.String()).
		Int64("size_bytes", written).
		Msg("asset downloaded")

	return &DownloadResult{
		Version:      plan.Target.String(),
		Path:         final,
		SizeBytes:    written,
		IsLatest:     plan.Target.Equal(plan.Latest),
		Intermediate: !plan.Target.Equal(plan.Latest),
	}, nil
}

// cachedDownload returns the download currently on disk, or nil.
func (e *Engine) cachedDownload() (*DownloadRecord, error) {
	entries, err := os.ReadDir(e.downloadsDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, &FileSystemError{Op: "read", Path: e.downloadsDir(), Err: err}
	}

	var rec *DownloadRecord
	for _, entry := range entries {
		v, ok := versionFromFilename(entry.Name(), downloadPrefix)
		if !ok {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		// At most one download should exist; prefer the newest if a stray
		// older file is present.
		if rec == nil || info.ModTime().After(rec.DownloadedAt) {
			rec = &DownloadRecord{
				Version:      v,
				Path:         filepath.Join(e.downloadsDir(), entry.Name()),
				SizeBytes:    info.Size(),
				DownloadedAt: info.ModTime(),
			}
		}
	}
	return rec, nil
}

// Downloads reports the cached downloads currently on disk.
func (e *Engine) Downloads() []DownloadRecord {
	rec, err := e.cachedDownload()
	if err != nil || rec == nil {
		return nil
	}
	return []DownloadRecord{*rec}
}

func (e *Engine) hasDownload(v version.Version) bool {
	rec, err := e.cachedDownload()
	return err == nil && rec != nil && rec.Version.Equal(v)
}

func (e *Engine) removeDownloads() error {
	entries, err := os.ReadDir(e.downloadsDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return &FileSystemError{Op: "read", Path: e.downloadsDir(), Err: err}
	}
	for _, entry := range entries {
		if _, ok := versionFromFilename(entry.Name(), downloadPrefix); !ok {
			continue
		}
		path := filepath.Join(e.downloadsDir(), entry.Name())
		if err := os.Remove(path); err != nil {
			return &FileSystemError{Op: "remove", Path: path, Err: err}
		}
	}
	return nil
}

// ClearDownloads deletes everything in the download cache and reports how
// many files were removed. Rejected while a download or install is running.
func (e *Engine) ClearDownloads() (int, error) {
	removed := 0
	err := e.sm.withGuard(func() error {
		entries, err := os.ReadDir(e.downloadsDir())
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return &FileSystemError{Op: "read", Path: e.downloadsDir(), Err: err}
		}
		for _, entry := range entries {
			path := filepath.Join(e.downloadsDir(), entry.Name())
			if err := os.RemoveAll(path); err != nil {
				return &FileSystemError{Op: "remove", Path: path, Err: err}
			}
			removed++
		}
		return nil
	}, OpDownloading, OpInstalling)
	return removed, err
}

// versionFromFilename parses "<prefix><version>.zip" names.
func versionFromFilename(name, prefix string) (version.Version, bool) {
	if !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, downloadExt) {
		return version.Version{}, false
	}
	raw := strings.TrimSuffix(strings.TrimPrefix(name, prefix), downloadExt)
	v, err := version.Parse(raw)
	if err != nil {
		return version.Version{}, false
	}
	return v, true
}
