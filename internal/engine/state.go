package engine

import "sync"

// Operation identifies what the engine is currently doing.
type Operation string

const (
	OpIdle        Operation = "idle"
	OpChecking    Operation = "checking"
	OpDownloading Operation = "downloading"
	OpInstalling  Operation = "installing"
)

// stateMachine enforces mutual exclusion between lifecycle operations.
// begin is a single check-and-set: two operations racing to start cannot
// both observe idle.
type stateMachine struct {
	mu      sync.Mutex
	current Operation
}

func newStateMachine() *stateMachine {
	return &stateMachine{current: OpIdle}
}

// begin transitions idle → op, or fails naming the in-progress operation.
// There is no queueing; callers retry after the active operation completes.
func (m *stateMachine) begin(op Operation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current != OpIdle {
		return &StateConflictError{Active: m.current}
	}
	m.current = op
	return nil
}

// end returns the machine to idle. Deferred by every operation so that both
// success and failure leave the engine retryable.
func (m *stateMachine) end() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = OpIdle
}

func (m *stateMachine) state() Operation {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// withGuard runs fn while holding the state lock, unless the current
// operation is one of blocked. Maintenance operations use this: the work
// happens under the lock, so an operation cannot start mid-clear.
func (m *stateMachine) withGuard(fn func() error, blocked ...Operation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range blocked {
		if m.current == b {
			return &StateConflictError{Active: m.current}
		}
	}
	return fn()
}
