// Package engine is the top-level imperative surface the rest of the world
// drives: init, step, generate_batch, the live-mode decision hooks, and the
// read-only views. It owns exactly one factory.Factory and the bounded
// history buffer; everything else is delegated.
package engine

import (
	"sort"
	"time"

	"github.com/savegress/motorsim/internal/alerts"
	"github.com/savegress/motorsim/internal/config"
	"github.com/savegress/motorsim/internal/factory"
	"github.com/savegress/motorsim/pkg/records"
)

// Engine wraps a single factory and the live-mode decision state
// (paused/failed motor sets) that sits outside the factory's own ownership
// boundary — the factory knows nothing about "pending decisions", only the
// engine does.
type Engine struct {
	cfg *config.Config
	fac *factory.Factory

	history []records.Observation
	paused  map[int]bool
	failed  map[int]bool

	alertDispatcher *alerts.Dispatcher

	initialized bool
}

// New returns an uninitialized engine. Call Init before anything else.
func New() *Engine {
	return &Engine{}
}

// SetAlertDispatcher wires an alerts.Dispatcher that Step (on pause),
// MarkFailed, and Restore notify on motor state transitions;
// PerformMaintenance sends no alert. Nil is
// the default — alerting is entirely optional, and never required for the
// engine's own correctness.
func (e *Engine) SetAlertDispatcher(d *alerts.Dispatcher) {
	e.alertDispatcher = d
}

func (e *Engine) notify(alert alerts.MotorAlert) {
	if e.alertDispatcher == nil {
		return
	}
	e.alertDispatcher.Send(alert, time.Now())
}

// Init validates cfg and prepares the factory at tick 0. Config errors leave
// the engine uninitialized; the caller can still query Status.
func (e *Engine) Init(cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return &Error{Kind: KindConfig, Message: err.Error()}
	}
	e.cfg = cfg
	e.fac = factory.New(cfg.Base, cfg.Run)
	e.history = nil
	e.paused = make(map[int]bool)
	e.failed = make(map[int]bool)
	e.initialized = true
	return nil
}

func (e *Engine) requireInit() error {
	if !e.initialized {
		return ErrNotInitialized
	}
	return nil
}

func (e *Engine) requireMotor(motorID int) error {
	if e.fac.Motor(motorID) == nil {
		return ErrUnknownMotor
	}
	return nil
}

// InjectFailure forces motorID's hidden state into Critical immediately —
// a test hook, independent of the live-mode paused/failed bookkeeping.
func (e *Engine) InjectFailure(motorID int) error {
	if err := e.requireInit(); err != nil {
		return err
	}
	if err := e.requireMotor(motorID); err != nil {
		return err
	}
	e.fac.InjectFailure(motorID)
	return nil
}

// ResetMotor re-initializes motorID with a fresh life and clears any
// live-mode decision state pending for it — a test hook.
func (e *Engine) ResetMotor(motorID int) error {
	if err := e.requireInit(); err != nil {
		return err
	}
	if err := e.requireMotor(motorID); err != nil {
		return err
	}
	e.fac.ResetMotor(motorID)
	delete(e.paused, motorID)
	delete(e.failed, motorID)
	return nil
}

// PendingDecisions returns the sorted ids of motors paused pending a
// mark_failed or perform_maintenance decision.
func (e *Engine) PendingDecisions() []int {
	ids := make([]int, 0, len(e.paused))
	for id, isPaused := range e.paused {
		if isPaused && !e.failed[id] {
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)
	return ids
}

// FailedMotors returns the sorted ids of motors in the failed set.
func (e *Engine) FailedMotors() []int {
	ids := make([]int, 0, len(e.failed))
	for id, isFailed := range e.failed {
		if isFailed {
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)
	return ids
}

// History returns the retained record buffer, oldest first.
func (e *Engine) History() []records.Observation {
	return e.history
}

// HistoryTail returns the last n retained records, oldest first (fewer if
// the buffer holds less than n). Used by the read-only inspection surface
// so a dashboard poll never has to ship the full retained buffer.
func (e *Engine) HistoryTail(n int) []records.Observation {
	if n <= 0 || n >= len(e.history) {
		return e.history
	}
	return e.history[len(e.history)-n:]
}

// Status is a read-only snapshot of the engine's run-level state.
type Status struct {
	Initialized      bool
	Tick             int
	NumMotors        int
	Mode             config.Mode
	RunID            string
	PendingDecisions int
	FailedMotors     int
	HistoryLen       int
}

// Status returns a snapshot suitable for a dashboard or inspection endpoint.
func (e *Engine) Status() Status {
	if !e.initialized {
		return Status{}
	}
	return Status{
		Initialized:      true,
		Tick:             e.fac.Tick(),
		NumMotors:        e.fac.NumMotors(),
		Mode:             e.cfg.Run.Mode,
		RunID:            e.cfg.Run.RunID,
		PendingDecisions: len(e.PendingDecisions()),
		FailedMotors:     len(e.FailedMotors()),
		HistoryLen:       len(e.history),
	}
}

// appendHistory appends recs to the retained buffer and truncates the
// oldest prefix once it exceeds max_history * num_motors.
func (e *Engine) appendHistory(recs []records.Observation) {
	e.history = append(e.history, recs...)
	limit := e.cfg.Run.MaxHistory * e.fac.NumMotors()
	if limit <= 0 {
		return
	}
	if over := len(e.history) - limit; over > 0 {
		e.history = e.history[over:]
	}
}
