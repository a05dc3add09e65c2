// Package backup manages timestamped backups of configured project files,
// created at the start of every install and kept until explicitly cleared.
package backup

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// recordFile is the metadata sidecar written into each backup directory.
const recordFile = "backup.json"

// Record describes one backup snapshot.
type Record struct {
	ID        string    `json:"id"`
	Version   string    `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	Files     []string  `json:"files"`
}

// Info summarizes a backup for listing.
type Info struct {
	ID        string    `json:"id"`
	Version   string    `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	Files     int       `json:"files"`
}

// Manager handles backup operations inside a single directory.
type Manager struct {
	dir string
}

// NewManager creates a backup manager rooted at dir.
func NewManager(dir string) *Manager {
	return &Manager{dir: dir}
}

// Dir returns the backup directory path.
func (m *Manager) Dir() string {
	return m.dir
}

// Create copies the given project-relative files into a new timestamped
// backup directory tagged with the project version. Listed files that do not
// exist are skipped.
func (m *Manager) Create(projectRoot, projectVersion string, files []string) (*Record, error) {
	now := time.Now()
	id := now.Format("2006-01-02-150405") + "-v" + projectVersion
	dir := filepath.Join(m.dir, id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating backup directory: %w", err)
	}

	rec := &Record{
		ID:        id,
		Version:   projectVersion,
		CreatedAt: now,
	}

	for _, rel := range files {
		src := filepath.Join(projectRoot, rel)
		if _, err := os.Stat(src); os.IsNotExist(err) {
			continue
		}
		if err := copyFile(src, filepath.Join(dir, rel)); err != nil {
			_ = os.RemoveAll(dir)
			return nil, fmt.Errorf("backing up %s: %w", rel, err)
		}
		rec.Files = append(rec.Files, rel)
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		_ = os.RemoveAll(dir)
		return nil, fmt.Errorf("encoding backup record: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, recordFile), append(data, '\n'), 0o644); err != nil {
		_ = os.RemoveAll(dir)
		return nil, fmt.Errorf("writing backup record: %w", err)
	}

	return rec, nil
}

// List returns all backups sorted by creation time, newest first.
func (m *Manager) List() ([]Info, error) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []Info{}, nil
		}
		return nil, fmt.Errorf("reading backup directory: %w", err)
	}

	var backups []Info
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		rec, err := m.load(filepath.Join(m.dir, entry.Name()))
		if err != nil {
			continue
		}
		backups = append(backups, Info{
			ID:        rec.ID,
			Version:   rec.Version,
			CreatedAt: rec.CreatedAt,
			Files:     len(rec.Files),
		})
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].CreatedAt.After(backups[j].CreatedAt)
	})
	return backups, nil
}

// Clear removes all backup directories and reports how many were removed.
func (m *Manager) Clear() (int, error) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("reading backup directory: %w", err)
	}

	removed := 0
	for _, entry := range entries {
		path := filepath.Join(m.dir, entry.Name())
		if err := os.RemoveAll(path); err != nil {
			return removed, fmt.Errorf("removing backup %s: %w", entry.Name(), err)
		}
		removed++
	}
	return removed, nil
}

func (m *Manager) load(dir string) (*Record, error) {
	data, err := os.ReadFile(filepath.Join(dir, recordFile))
	if err != nil {
		return nil, err
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("parsing backup record: %w", err)
	}
	return &rec, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	info, err := in.Stat()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	defer func() { _ = out.Close() }()

	if _, err := io.Copy(out, in); err != nil {
		_ = os.Remove(dst)
		return err
	}
	return nil
}
