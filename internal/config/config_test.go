package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, ".", cfg.Paths.ProjectRoot)
	assert.Equal(t, ".appup", cfg.Paths.StateDir)
	assert.Equal(t, []string{"appup.toml"}, cfg.Install.Backup)
	assert.Contains(t, cfg.Install.Preserve, ".env")
	assert.Contains(t, cfg.Install.Preserve, ".git")
	assert.Contains(t, cfg.Install.Preserve, ".appup")
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultFilename)
	require.NoError(t, os.WriteFile(path, []byte(`
[repository]
owner = "acme"
repo = "rocket"

[paths]
state_dir = ".updates"

[install]
preserve = [".env.local", ".hg"]
command = ["npm", "install", "--omit=dev"]
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "acme", cfg.Repository.Owner)
	assert.Equal(t, "rocket", cfg.Repository.Repo)
	assert.Equal(t, []string{"npm", "install", "--omit=dev"}, cfg.Install.Command)
	// State dir is appended to a custom preserve list.
	assert.Contains(t, cfg.Install.Preserve, ".updates")
	assert.Contains(t, cfg.Install.Preserve, ".env.local")
	// Relative project root resolves against the config file's directory.
	assert.Equal(t, dir, cfg.Paths.ProjectRoot)
	require.NoError(t, cfg.Validate())
}

func TestLoadTokenFromEnv(t *testing.T) {
	t.Setenv(EnvToken, "ghp_test123")
	cfg := Default()
	assert.Equal(t, "ghp_test123", cfg.Repository.Token)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "missing owner",
			mutate:  func(c *Config) { c.Repository.Repo = "rocket" },
			wantErr: "repository.owner",
		},
		{
			name:    "missing repo",
			mutate:  func(c *Config) { c.Repository.Owner = "acme" },
			wantErr: "repository.repo",
		},
		{
			name: "absolute state dir",
			mutate: func(c *Config) {
				c.Repository.Owner = "acme"
				c.Repository.Repo = "rocket"
				c.Paths.StateDir = "/var/lib/appup"
			},
			wantErr: "state_dir",
		},
		{
			name: "absolute preserve entry",
			mutate: func(c *Config) {
				c.Repository.Owner = "acme"
				c.Repository.Repo = "rocket"
				c.Install.Preserve = append(c.Install.Preserve, "/etc")
			},
			wantErr: "preserve",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
