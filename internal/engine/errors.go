package engine

import (
	"errors"
	"fmt"
)

// Sentinel errors for conditions that carry no parameters.
var (
	// ErrDownloadMissing is returned by Install when no cached download
	// exists to consume.
	ErrDownloadMissing = errors.New("no downloaded release available to install")

	// ErrNoRollback is returned by Rollback when no rollback archive exists.
	ErrNoRollback = errors.New("no rollback archive available")
)

// ConfigError reports invalid engine construction: missing repository
// identity, or a second engine instance in the same process.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "configuration error: " + e.Reason
}

// StateConflictError reports an operation attempted while another one is in
// progress.
type StateConflictError struct {
	Active Operation
}

func (e *StateConflictError) Error() string {
	return fmt.Sprintf("operation rejected: %s already in progress", e.Active)
}

// NetworkError reports a release-source communication failure. Status holds
// the upstream HTTP status when one was received, 0 otherwise.
type NetworkError struct {
	Op     string
	Status int
	Err    error
}

func (e *NetworkError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: upstream returned status %d", e.Op, e.Status)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ResolutionError reports that no safe upgrade target could be computed.
type ResolutionError struct {
	Reason  string
	Minimum string // the unmatched minimum version, when applicable
}

func (e *ResolutionError) Error() string {
	if e.Minimum != "" {
		return fmt.Sprintf("cannot resolve upgrade path: no release matches required intermediate version %s", e.Minimum)
	}
	return "cannot resolve upgrade path: " + e.Reason
}

// VersionMismatchError reports that the staged package's manifest declares a
// minimum version the current installation does not satisfy.
type VersionMismatchError struct {
	Current string
	Minimum string
}

func (e *VersionMismatchError) Error() string {
	return fmt.Sprintf("installed version %s does not satisfy the package's minimum version %s", e.Current, e.Minimum)
}

// FileSystemError reports a copy, delete or archive failure.
type FileSystemError struct {
	Op   string
	Path string
	Err  error
}

func (e *FileSystemError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FileSystemError) Unwrap() error { return e.Err }

// DependencyInstallError reports a failed dependency installer invocation,
// with the process's captured output.
type DependencyInstallError struct {
	Command string
	Output  string
	Err     error
}

func (e *DependencyInstallError) Error() string {
	return fmt.Sprintf("dependency install %q failed: %v", e.Command, e.Err)
}

func (e *DependencyInstallError) Unwrap() error { return e.Err }
