package jobs

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"whisper-batch/internal/domain"
)

// ErrRunActive is returned when starting while a run is in progress.
var ErrRunActive = errors.New("run already active")

// ErrNoActiveRun is returned when pause or stop is requested while idle.
var ErrNoActiveRun = errors.New("no active run")

// Manager tracks the single allowed run, its transitions and elapsed time.
type Manager struct {
	mu          sync.RWMutex
	current     domain.Run
	accumulated time.Duration
	startedAt   time.Time
	now         func() time.Time
}

// NewManager creates a manager in idle state.
func NewManager() *Manager {
	return NewManagerForTests(time.Now)
}

// NewManagerForTests creates a manager with an injected clock.
func NewManagerForTests(now func() time.Time) *Manager {
	return &Manager{
		current: domain.Run{Status: domain.RunStatusIdle},
		now:     now,
	}
}

// Start begins a new run and resets elapsed accounting.
func (m *Manager) Start(runID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if isActive(m.current.Status) {
		return ErrRunActive
	}

	m.current = domain.Run{ID: runID, Status: domain.RunStatusRunning}
	m.accumulated = 0
	m.startedAt = m.now()
	return nil
}

// Transition validates and applies state transitions for the current run.
// Pausing folds the running time into the accumulated total; resuming
// records a fresh reference.
func (m *Manager) Transition(status domain.RunStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current.ID == "" && status != domain.RunStatusIdle {
		return fmt.Errorf("cannot transition without an active run")
	}
	if status == m.current.Status {
		return nil
	}
	if !isValidTransition(m.current.Status, status) {
		return fmt.Errorf("invalid transition: %s -> %s", m.current.Status, status)
	}

	now := m.now()
	if m.current.Status == domain.RunStatusRunning {
		m.accumulated += now.Sub(m.startedAt)
	}
	if status == domain.RunStatusRunning {
		m.startedAt = now
	}

	m.current.Status = status
	return nil
}

// Current returns a snapshot of the current run.
func (m *Manager) Current() domain.Run {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Elapsed returns the active running time, excluding paused spans.
func (m *Manager) Elapsed() time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.current.Status == domain.RunStatusRunning {
		return m.accumulated + m.now().Sub(m.startedAt)
	}
	return m.accumulated
}

// Reset clears run metadata and returns the manager to idle.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = domain.Run{Status: domain.RunStatusIdle}
	m.accumulated = 0
	m.startedAt = time.Time{}
}

// IsActive reports whether a run is running or paused.
func (m *Manager) IsActive() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return isActive(m.current.Status)
}

// isActive checks if a status represents a live worker.
func isActive(status domain.RunStatus) bool {
	switch status {
	case domain.RunStatusRunning, domain.RunStatusPaused:
		return true
	default:
		return false
	}
}

// isValidTransition enforces the allowed run state machine edges.
func isValidTransition(from, to domain.RunStatus) bool {
	switch from {
	case domain.RunStatusIdle:
		return to == domain.RunStatusRunning
	case domain.RunStatusRunning:
		return to == domain.RunStatusPaused || to == domain.RunStatusStopped ||
			to == domain.RunStatusDrained || to == domain.RunStatusFailed
	case domain.RunStatusPaused:
		return to == domain.RunStatusRunning || to == domain.RunStatusStopped || to == domain.RunStatusFailed
	case domain.RunStatusStopped, domain.RunStatusDrained, domain.RunStatusFailed:
		return to == domain.RunStatusIdle
	default:
		return false
	}
}
