// Package config handles engine configuration: repository identity, project
// paths, and the install policy (backup list, preserve list, dependency
// installer command).
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/jjgreer/appup/internal/manifest"
)

// DefaultFilename is the configuration file looked up at the project root.
const DefaultFilename = "appup.config.toml"

// EnvToken names the environment variable consulted when no token is
// configured. Useful for private repositories in CI.
const EnvToken = "APPUP_GITHUB_TOKEN"

// Repository identifies where releases are published.
type Repository struct {
	Owner string `toml:"owner"`
	Repo  string `toml:"repo"`
	Token string `toml:"token,omitempty"`
}

// Paths locates the managed project tree and the engine's state directory.
type Paths struct {
	ProjectRoot string `toml:"project_root"`
	StateDir    string `toml:"state_dir"`
}

// Install controls the install transaction.
type Install struct {
	// Backup lists project-relative paths copied into a timestamped backup
	// directory before every install.
	Backup []string `toml:"backup"`
	// Preserve lists top-level entries never deleted during a clean install
	// or rollback. The state directory is always preserved.
	Preserve []string `toml:"preserve"`
	// Command is the dependency installer invocation, e.g. ["npm", "install"].
	// Empty means the dependency step is skipped.
	Command []string `toml:"command"`
}

// Config is the full engine configuration.
type Config struct {
	Repository Repository `toml:"repository"`
	Paths      Paths      `toml:"paths"`
	Install    Install    `toml:"install"`
}

// Default returns a configuration with all defaults applied and no
// repository identity.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads a configuration file and applies defaults for anything unset.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	cfg.applyDefaults()

	// Relative paths in the file are relative to the file's directory.
	if !filepath.IsAbs(cfg.Paths.ProjectRoot) {
		cfg.Paths.ProjectRoot = filepath.Join(filepath.Dir(path), cfg.Paths.ProjectRoot)
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Paths.ProjectRoot == "" {
		c.Paths.ProjectRoot = "."
	}
	if c.Paths.StateDir == "" {
		c.Paths.StateDir = ".appup"
	}
	if len(c.Install.Backup) == 0 {
		c.Install.Backup = []string{manifest.Filename}
	}
	if len(c.Install.Preserve) == 0 {
		c.Install.Preserve = []string{".env", ".git"}
	}
	// The state directory holds downloads, backups and the rollback archive;
	// deleting it mid-install would destroy the recovery path.
	if !contains(c.Install.Preserve, c.Paths.StateDir) {
		c.Install.Preserve = append(c.Install.Preserve, c.Paths.StateDir)
	}
	if c.Repository.Token == "" {
		c.Repository.Token = os.Getenv(EnvToken)
	}
}

// Validate checks that required fields are present.
func (c *Config) Validate() error {
	if c.Repository.Owner == "" {
		return fmt.Errorf("repository.owner is required")
	}
	if c.Repository.Repo == "" {
		return fmt.Errorf("repository.repo is required")
	}
	if filepath.IsAbs(c.Paths.StateDir) {
		return fmt.Errorf("paths.state_dir must be relative to the project root")
	}
	for _, p := range c.Install.Preserve {
		if p == "" || p == "." || p == ".." || filepath.IsAbs(p) {
			return fmt.Errorf("invalid preserve entry %q", p)
		}
	}
	return nil
}

// AbsProjectRoot returns the project root as an absolute path.
func (c *Config) AbsProjectRoot() (string, error) {
	return filepath.Abs(c.Paths.ProjectRoot)
}

// StateDirIn returns the state directory under the given project root.
func (c *Config) StateDirIn(root string) string {
	return filepath.Join(root, c.Paths.StateDir)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
