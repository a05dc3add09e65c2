package cmd

import (
	"context"
	"os"
	"path/filepath"

	"github.com/jjgreer/appup/internal/archive"
	"github.com/jjgreer/appup/internal/config"
	"github.com/jjgreer/appup/internal/deps"
	"github.com/jjgreer/appup/internal/engine"
	"github.com/jjgreer/appup/internal/github"
	"github.com/jjgreer/appup/internal/logging"
	"github.com/jjgreer/appup/internal/output"
)

// loadConfig resolves the configuration from --config, or the default file
// at the project root, or pure defaults when no file exists.
func loadConfig() (*config.Config, error) {
	if configPath != "" {
		cfg, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		return applyOverrides(cfg), nil
	}

	root := projectRoot
	if root == "" {
		root = "."
	}
	defaultPath := filepath.Join(root, config.DefaultFilename)
	if _, err := os.Stat(defaultPath); err == nil {
		cfg, err := config.Load(defaultPath)
		if err != nil {
			return nil, err
		}
		return applyOverrides(cfg), nil
	}

	return applyOverrides(config.Default()), nil
}

func applyOverrides(cfg *config.Config) *config.Config {
	if projectRoot != "" {
		cfg.Paths.ProjectRoot = projectRoot
	}
	return cfg
}

// newEngine wires the collaborators and constructs the process engine.
// The returned cleanup releases the engine's registry slot.
func newEngine() (*engine.Engine, context.Context, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, nil, err
	}

	level := "info"
	if verbose {
		level = "debug"
	}
	if quiet {
		level = "error"
	}
	log := logging.New(level, os.Stderr)
	ctx := logging.WithContext(context.Background(), log)

	source := github.NewClient(cfg.Repository.Owner, cfg.Repository.Repo)
	if cfg.Repository.Token != "" {
		source = source.WithToken(cfg.Repository.Token)
	}

	eng, err := engine.New(cfg, source, archive.Codec{}, deps.NewRunner(cfg.Install.Command), log)
	if err != nil {
		return nil, nil, nil, err
	}
	return eng, ctx, eng.Close, nil
}

func newOutputWriter() (*output.Writer, error) {
	format, err := output.ParseFormat(outputFormat)
	if err != nil {
		return nil, err
	}
	return output.NewWriter(os.Stdout, format), nil
}
