// Package engine implements the update lifecycle: upgrade-path resolution,
// asset download, the transactional clean install, and rollback. It owns the
// project tree and its state directory exclusively; the release source,
// archive codec and dependency installer are narrow collaborator interfaces
// wired in at construction.
package engine

import (
	"context"
	"io"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jjgreer/appup/internal/backup"
	"github.com/jjgreer/appup/internal/config"
	"github.com/jjgreer/appup/internal/logging"
	"github.com/jjgreer/appup/internal/version"
)

// Release is a published version as reported by the release source.
type Release struct {
	Version     version.Version
	AssetName   string
	AssetURL    string
	Notes       string
	Prerelease  bool
	PublishedAt time.Time
}

// ReleaseSource lists releases and fetches their assets.
type ReleaseSource interface {
	// ListReleases returns all releases, newest first.
	ListReleases(ctx context.Context) ([]Release, error)
	// FetchAsset opens the release's asset for reading. Size is -1 when
	// unknown.
	FetchAsset(ctx context.Context, rel Release) (rc io.ReadCloser, size int64, err error)
}

// Archiver packs a directory into an archive and unpacks one back,
// preserving file modes and directory structure. Pack skips the named
// top-level entries.
type Archiver interface {
	Pack(srcDir, destPath string, exclude ...string) error
	Unpack(srcPath, destDir string) error
}

// DepInstaller runs the dependency install step against a working directory.
type DepInstaller interface {
	Install(ctx context.Context, dir string) error
}

// Engine is the update lifecycle facade. One instance per process; construct
// with New and release with Close.
type Engine struct {
	cfg      *config.Config
	root     string // absolute project root
	source   ReleaseSource
	archiver Archiver
	deps     DepInstaller
	backups  *backup.Manager
	log      zerolog.Logger
	sm       *stateMachine

	planMu sync.Mutex
	plan   *Plan
}

// The process-wide engine registry. The engine performs destructive
// filesystem replacement of the project tree; two instances would race on it.
var (
	registryMu sync.Mutex
	registered *Engine
)

// New constructs and registers the process-wide engine. It fails with a
// ConfigError when the configuration is invalid or an engine is already
// registered.
func New(cfg *config.Config, source ReleaseSource, archiver Archiver, deps DepInstaller, log zerolog.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, &ConfigError{Reason: err.Error()}
	}
	root, err := cfg.AbsProjectRoot()
	if err != nil {
		return nil, &ConfigError{Reason: err.Error()}
	}

	registryMu.Lock()
	defer registryMu.Unlock()
	if registered != nil {
		return nil, &ConfigError{Reason: "an update engine is already registered for this process"}
	}

	e := &Engine{
		cfg:      cfg,
		root:     root,
		source:   source,
		archiver: archiver,
		deps:     deps,
		backups:  backup.NewManager(filepath.Join(cfg.StateDirIn(root), "backups")),
		log:      log,
		sm:       newStateMachine(),
	}
	registered = e
	return e, nil
}

// Active returns the registered engine, or nil when none is registered.
func Active() *Engine {
	registryMu.Lock()
	defer registryMu.Unlock()
	return registered
}

// Close releases the engine's registry slot. It does not interrupt an
// operation in flight.
func (e *Engine) Close() {
	registryMu.Lock()
	defer registryMu.Unlock()
	if registered == e {
		registered = nil
	}
}

// State returns the current operation state.
func (e *Engine) State() Operation {
	return e.sm.state()
}

// Root returns the absolute project root the engine manages.
func (e *Engine) Root() string {
	return e.root
}

func (e *Engine) stateDir() string {
	return e.cfg.StateDirIn(e.root)
}

// opLogger prefers the context's logger, falling back to the engine's own.
func (e *Engine) opLogger(ctx context.Context) zerolog.Logger {
	if log := logging.FromContext(ctx); log.GetLevel() != zerolog.Disabled {
		return log
	}
	return e.log
}

func (e *Engine) currentPlan() *Plan {
	e.planMu.Lock()
	defer e.planMu.Unlock()
	return e.plan
}

func (e *Engine) setPlan(p *Plan) {
	e.planMu.Lock()
	defer e.planMu.Unlock()
	e.plan = p
}
