package engine

import (
	"github.com/savegress/motorsim/internal/alerts"
	"github.com/savegress/motorsim/internal/config"
	"github.com/savegress/motorsim/pkg/records"
)

// Step advances the factory up to n ticks in live mode. A motor crossing
// below alert_threshold is moved to the paused set on the very tick it
// crosses, and that tick's record — along with every subsequent tick's,
// until a decision resolves it — is withheld. A failed motor keeps
// physically advancing inside the factory (so its hidden state stays
// consistent for a later restore) but never contributes a record either,
// per the live-mode orchestrator's post-hoc filtering (SPEC_FULL.md §4.8).
func (e *Engine) Step(n int) ([]records.Observation, error) {
	if err := e.requireInit(); err != nil {
		return nil, err
	}
	if e.cfg.Run.Mode != config.ModeLive {
		return nil, &Error{Kind: KindPrecondition, Message: "engine: step is a live-mode operation"}
	}

	var out []records.Observation
	ids := e.fac.AllMotorIDs()

	for i := 0; i < n; i++ {
		recs := e.fac.Step(ids, true)

		for _, r := range recs {
			if err := checkFinite(r); err != nil {
				return out, err
			}
			if e.paused[r.MotorID] || e.failed[r.MotorID] {
				continue
			}
			if r.MotorHealth < e.cfg.Run.AlertThreshold {
				e.paused[r.MotorID] = true
				e.notify(alerts.MotorPaused(r.MotorID, r.Time))
			}
		}

		filtered := make([]records.Observation, 0, len(recs))
		for _, r := range recs {
			if e.paused[r.MotorID] || e.failed[r.MotorID] {
				continue
			}
			filtered = append(filtered, r)
		}

		e.appendHistory(filtered)
		out = append(out, filtered...)
	}

	return out, nil
}

// MarkFailed moves a pending motor from paused to failed. A failed motor
// stays silent (no records) until explicitly Restore'd.
func (e *Engine) MarkFailed(motorID int) error {
	if err := e.requireInit(); err != nil {
		return err
	}
	if !e.paused[motorID] || e.failed[motorID] {
		return &Error{Kind: KindPrecondition, Message: "engine: motor has no pending decision"}
	}
	e.failed[motorID] = true
	e.notify(alerts.MotorFailed(motorID, e.fac.Tick()))
	return nil
}

// PerformMaintenance resolves a pending motor by applying the alignment-class
// reset with a near-full health restore and resumes its record emission.
func (e *Engine) PerformMaintenance(motorID int) error {
	if err := e.requireInit(); err != nil {
		return err
	}
	if !e.paused[motorID] || e.failed[motorID] {
		return &Error{Kind: KindPrecondition, Message: "engine: motor has no pending decision"}
	}
	e.fac.PerformMaintenance(motorID)
	delete(e.paused, motorID)
	return nil
}

// Restore re-initializes a failed motor with fresh health, synchronised to
// the current global tick, and resumes its record emission.
func (e *Engine) Restore(motorID int) error {
	if err := e.requireInit(); err != nil {
		return err
	}
	if !e.failed[motorID] {
		return &Error{Kind: KindPrecondition, Message: "engine: motor is not in the failed set"}
	}
	e.fac.ResetMotor(motorID)
	delete(e.failed, motorID)
	delete(e.paused, motorID)
	e.notify(alerts.MotorRestored(motorID, e.fac.Tick()))
	return nil
}
