// Package deps runs the dependency install step as an external process
// against a working directory.
package deps

import (
	"context"
	"os/exec"
	"strings"

	"github.com/jjgreer/appup/internal/engine"
	"github.com/jjgreer/appup/internal/logging"
)

// Runner invokes a configured installer command, e.g. ["npm", "install"].
type Runner struct {
	command []string
}

// NewRunner creates a runner for the given command. An empty command makes
// Install a logged no-op.
func NewRunner(command []string) *Runner {
	return &Runner{command: command}
}

// Install runs the command in dir. Success is a zero exit status; anything
// else surfaces as a DependencyInstallError carrying the captured output.
func (r *Runner) Install(ctx context.Context, dir string) error {
	log := logging.FromContext(ctx)
	if len(r.command) == 0 {
		log.Debug().
			Str("component", "deps").
			Str("dir", dir).
			Msg("no installer command configured, skipping dependency step")
		return nil
	}

	cmd := exec.CommandContext(ctx, r.command[0], r.command[1:]...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		return &engine.DependencyInstallError{
			Command: strings.Join(r.command, " "),
			Output:  string(out),
			Err:     err,
		}
	}

	log.Debug().
		Str("component", "deps").
		Str("command", strings.Join(r.command, " ")).
		Str("dir", dir).
		Msg("dependency install complete")
	return nil
}
