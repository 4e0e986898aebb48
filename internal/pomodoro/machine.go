// Package pomodoro implements the work/break timer state machine. Phase
// transitions are pure functions over State; Machine wraps them with a
// mutex, a wall clock, best-effort snapshot persistence and a registrable
// work-completion callback.
package pomodoro

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Store is the key-value persistence collaborator for timer snapshots.
// Absence is reported through the boolean, not an error.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// CompleteFunc is invoked after a work session completes naturally, with
// the total number of completed pomodoros. It runs while the machine lock
// is held and must not call back into the machine.
type CompleteFunc func(ctx context.Context, pomodorosCompleted int) error

// Machine is a single user's pomodoro timer. All state access is
// serialized behind an internal mutex; every state change is snapshotted
// to the store under a fixed key.
type Machine struct {
	mu         sync.Mutex
	state      State
	durations  Durations
	store      Store
	key        string
	logger     *zap.Logger
	onComplete CompleteFunc

	now func() time.Time
}

// NewMachine returns a paused work-phase machine persisting under key.
// Non-positive duration fields fall back to the defaults.
func NewMachine(durations Durations, store Store, key string, logger *zap.Logger) *Machine {
	d := durations.normalized()
	return &Machine{
		state:     initialState(d),
		durations: d,
		store:     store,
		key:       key,
		logger:    logger,
		now:       time.Now,
	}
}

// Load restores the machine from its persisted snapshot, replaying the
// wall-clock time elapsed since it was written. Missing or unreadable
// snapshots leave the machine in its initial state; stale ones are removed
// from the store. The store is best-effort, so failures are logged and
// never surfaced.
func (m *Machine) Load(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	raw, ok, err := m.store.Get(ctx, m.key)
	if err != nil {
		m.logger.Warn("read timer snapshot", zap.String("key", m.key), zap.Error(err))
		return
	}
	if !ok {
		return
	}

	var snap Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		m.logger.Warn("discarding unreadable timer snapshot", zap.String("key", m.key), zap.Error(err))
		return
	}

	state, fresh := reconcile(snap, m.now(), m.durations)
	if !fresh {
		if err := m.store.Remove(ctx, m.key); err != nil {
			m.logger.Warn("remove stale timer snapshot", zap.String("key", m.key), zap.Error(err))
		}
		return
	}
	m.state = state
}

// Register installs the work-completion callback, replacing any previous
// registration. At most one callback is registered at a time.
func (m *Machine) Register(fn CompleteFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onComplete = fn
}

// Unregister clears the work-completion callback.
func (m *Machine) Unregister() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onComplete = nil
}

// StartPause toggles between running and paused and returns the new state.
func (m *Machine) StartPause(ctx context.Context) State {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.state = startPause(m.state)
	m.persist(ctx)
	return m.state
}

// Skip abandons the current phase. A skipped work session is not counted,
// fires no callback and always leads to the short break; a skipped break
// leads back to work.
func (m *Machine) Skip(ctx context.Context) State {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.state = skipPhase(m.state, m.durations)
	m.persist(ctx)
	return m.state
}

// Reset restores the current phase to its full duration and pauses.
func (m *Machine) Reset(ctx context.Context) State {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.state = resetPhase(m.state, m.durations)
	m.persist(ctx)
	return m.state
}

// Tick advances the timer by one second and returns the new state. Ticks
// are no-ops while the timer is paused. The tick that exhausts a work
// phase awaits the completion callback before the break state becomes
// visible; callback errors are logged and never block the transition.
func (m *Machine) Tick(ctx context.Context) State {
	m.mu.Lock()
	defer m.mu.Unlock()

	next, completedWork := tick(m.state, m.durations)
	if next == m.state {
		return m.state
	}
	if completedWork && m.onComplete != nil {
		if err := m.onComplete(ctx, next.PomodorosCompleted); err != nil {
			m.logger.Error("work completion callback failed", zap.String("key", m.key), zap.Error(err))
		}
	}
	m.state = next
	m.persist(ctx)
	return m.state
}

// State returns a copy of the current timer state.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Run ticks the machine once a second until ctx is cancelled.
func (m *Machine) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Tick(ctx)
		}
	}
}

// persist writes the current state to the store. Storage here is
// best-effort: failures are logged, the backend records stay the durable
// source of truth.
func (m *Machine) persist(ctx context.Context) {
	snap := Snapshot{State: m.state, Timestamp: m.now().UnixMilli()}
	raw, err := json.Marshal(snap)
	if err != nil {
		m.logger.Error("marshal timer snapshot", zap.String("key", m.key), zap.Error(err))
		return
	}
	if err := m.store.Set(ctx, m.key, string(raw)); err != nil {
		m.logger.Warn("persist timer snapshot", zap.String("key", m.key), zap.Error(err))
	}
}

// SnapshotKey returns the settings key timer state is persisted under for
// the given user.
func SnapshotKey(userID uint) string {
	return fmt.Sprintf("timer_state:%d", userID)
}
