// Package factory owns the fleet, the shared global clock, the regime
// state, and the maintenance controller. Factory.step is the only operation
// that mutates shared state, and it runs to completion atomically — the
// engine is single-threaded and cooperative by design.
package factory

import (
	"github.com/savegress/motorsim/internal/config"
	"github.com/savegress/motorsim/internal/imperfections"
	"github.com/savegress/motorsim/internal/maintctl"
	"github.com/savegress/motorsim/internal/motor"
	"github.com/savegress/motorsim/internal/regime"
	"github.com/savegress/motorsim/internal/rng"
	"github.com/savegress/motorsim/pkg/records"
)

const (
	sensorTemperature = "temperature"
	sensorVibration   = "vibration"
	sensorCurrent     = "current"
	sensorRPM         = "rpm"
)

// Factory is the step engine. It exclusively owns every motor; all
// maintenance side effects run through factory-mediated calls so the
// maintenance event log stays the single source of truth.
type Factory struct {
	base config.BaseConfig
	run  config.RunConfig

	motors       []*motor.State
	motorSources []*rng.Source

	regimeCtrl      *regime.Controller
	maintCtrl       *maintctl.Controller
	imperfectionSim *imperfections.Simulator

	runSource *rng.Source
	tick      int
}

// New builds a fresh fleet of run.NumMotors motors at tick 0, each with its
// own deterministic RNG sub-stream keyed by motor id.
func New(base config.BaseConfig, run config.RunConfig) *Factory {
	runSource := rng.NewRunSource(run.Seed)

	f := &Factory{
		base:            base,
		run:             run,
		maintCtrl:       maintctl.NewController(),
		imperfectionSim: imperfections.NewSimulator(),
		runSource:       runSource,
		regimeCtrl:      regime.NewController(base.RegimeBaseDuration, runSource),
	}
	f.initMotors()
	return f
}

func (f *Factory) initMotors() {
	f.motors = make([]*motor.State, f.run.NumMotors)
	f.motorSources = make([]*rng.Source, f.run.NumMotors)
	for i := 0; i < f.run.NumMotors; i++ {
		sub := f.runSource.Sub(i)
		f.motorSources[i] = sub
		s := motor.NewlyInitialized(i, f.base, sub)
		motor.ApplyDegradationSpeed(s, f.run.DegradationSpeed)
		f.motors[i] = s
	}
}

// Reset restarts the factory clock at 0, clears history-adjacent state
// (maintenance log, imperfection state, regime), and reinitializes every
// motor with a fresh life. Used by batch mode's generate_until_all_cycles_completed.
func (f *Factory) Reset() {
	f.tick = 0
	f.maintCtrl = maintctl.NewController()
	f.imperfectionSim = imperfections.NewSimulator()
	f.regimeCtrl = regime.NewController(f.base.RegimeBaseDuration, f.runSource)
	f.initMotors()
}

// Tick returns the current global tick.
func (f *Factory) Tick() int {
	return f.tick
}

// NumMotors returns the fleet size.
func (f *Factory) NumMotors() int {
	return f.run.NumMotors
}

// Motor returns the live hidden state for motorID, or nil if out of range.
// Callers must not retain this pointer across a Step call's boundary in a
// way that escapes the factory — it is exposed for read-only inspection and
// for the live-mode orchestrator's pause/fail/restore bookkeeping only.
func (f *Factory) Motor(motorID int) *motor.State {
	if motorID < 0 || motorID >= len(f.motors) {
		return nil
	}
	return f.motors[motorID]
}

// MaintenanceEvents returns the full maintenance event log.
func (f *Factory) MaintenanceEvents() []maintctl.Event {
	return f.maintCtrl.Events()
}

// CycleCount returns how many automatic_maintenance events have fired for
// motorID.
func (f *Factory) CycleCount(motorID int) int {
	count := 0
	for _, e := range f.maintCtrl.Events() {
		if e.MotorID == motorID && e.Kind == maintctl.AutomaticMaint {
			count++
		}
	}
	return count
}

// ResetMotor re-initializes motorID with a fresh life, synchronised to the
// current tick, and clears its imperfection/maintenance-schedule state —
// the effect behind the live-mode restore(motor_id) and reset_motor(motor_id)
// test hooks.
func (f *Factory) ResetMotor(motorID int) {
	if motorID < 0 || motorID >= len(f.motors) {
		return
	}
	f.motors[motorID] = motor.NewlyInitialized(motorID, f.base, f.motorSources[motorID])
	motor.ApplyDegradationSpeed(f.motors[motorID], f.run.DegradationSpeed)
	f.maintCtrl.ClearSchedule(motorID)
	f.imperfectionSim.Reset(motorID)
}

// InjectFailure forces motorID into Critical health immediately — the
// engine.inject_failure(motor_id) test hook.
func (f *Factory) InjectFailure(motorID int) {
	s := f.Motor(motorID)
	if s == nil {
		return
	}
	s.MotorHealth = f.base.CriticalThreshold - 0.05
	if s.MotorHealth < 0 {
		s.MotorHealth = 0
	}
	s.HealthState = motor.HealthStateFor(s.MotorHealth, f.base.WarningThreshold, f.base.CriticalThreshold)
}

// PerformMaintenance applies an "alignment"-class reset to motorID,
// strengthened with a near-full health restore, per the live-mode decision
// API's contract (SPEC_FULL.md §4.5, §4.8).
func (f *Factory) PerformMaintenance(motorID int) maintctl.Event {
	s := f.Motor(motorID)
	event := f.maintCtrl.Apply(maintctl.Alignment, f.tick, s, f.base, f.motorSources[motorID])
	s.MotorHealth = 0.95
	s.HealthState = motor.HealthStateFor(s.MotorHealth, f.base.WarningThreshold, f.base.CriticalThreshold)
	event.PostHealth = s.MotorHealth
	return event
}

// Step executes exactly one global tick over the given set of active motor
// ids (liveMode controls which of the three maintenance triggers are live:
// reactive only fires in live mode, automatic-on-critical only in batch
// mode; scheduled fires in both). It returns one record per active motor.
func (f *Factory) Step(activeMotorIDs []int, liveMode bool) []records.Observation {
	f.regimeCtrl.Advance(f.runSource)
	currentRegime := f.regimeCtrl.Current()
	effects := regime.EffectsFor(currentRegime)
	effects.NoiseMultiplier *= f.run.NoiseLevel

	out := make([]records.Observation, 0, len(activeMotorIDs))
	for _, id := range activeMotorIDs {
		s := f.motors[id]
		source := f.motorSources[id]

		eventKind, fired := f.evaluateMaintenance(s, source, liveMode)
		maintenanceLabel := ""
		if fired {
			maintenanceLabel = string(eventKind)
		}

		savedLoad := s.LoadFactor
		s.LoadFactor = savedLoad * effects.LoadMultiplier * f.run.LoadFactor

		motor.Step(s, f.base.TimeStepMinutes, effects, f.base, f.base.WarningThreshold, f.base.CriticalThreshold, source)
		reading := motor.Observe(s, effects, f.base, source)

		s.LoadFactor = savedLoad

		f.advanceAndApplyImperfections(id, &reading, source)

		out = append(out, records.Observation{
			Time:                  f.tick,
			MotorID:               s.MotorID,
			CycleID:               s.CycleID,
			MotorHealth:           s.MotorHealth,
			HealthState:           string(s.HealthState),
			DegradationStage:      string(s.DegradationStage),
			Temperature:           reading.Temperature,
			Vibration:             reading.Vibration,
			Current:               reading.Current,
			RPM:                   reading.RPM,
			HoursSinceMaintenance: s.HoursSinceMaint,
			Regime:                string(currentRegime),
			MaintenanceEvent:      maintenanceLabel,
		})
	}

	f.tick++
	return out
}

// evaluateMaintenance checks the three triggers in priority order (reactive,
// scheduled, automatic-on-critical) and applies at most one per motor per
// tick, before the physics update runs.
func (f *Factory) evaluateMaintenance(s *motor.State, source *rng.Source, liveMode bool) (maintctl.Kind, bool) {
	if liveMode && maintctl.CheckReactive(s.MotorHealth, f.base, source) {
		f.maintCtrl.Apply(maintctl.BearingReplacement, f.tick, s, f.base, source)
		return maintctl.BearingReplacement, true
	}
	if maintctl.CheckScheduled(f.tick, f.base, source) {
		f.maintCtrl.Apply(maintctl.Lubrication, f.tick, s, f.base, source)
		return maintctl.Lubrication, true
	}
	if !liveMode {
		if s.HealthState == motor.HealthCritical && !f.maintCtrl.HasScheduled(s.MotorID) {
			f.maintCtrl.ScheduleAutomatic(s.MotorID, f.tick, f.base, source)
		}
		if f.maintCtrl.AutomaticDue(s.MotorID, f.tick, s.MotorHealth, f.base) {
			f.maintCtrl.Apply(maintctl.AutomaticMaint, f.tick, s, f.base, source)
			motor.ApplyDegradationSpeed(s, f.run.DegradationSpeed)
			return maintctl.AutomaticMaint, true
		}
	}
	return "", false
}

func (f *Factory) advanceAndApplyImperfections(motorID int, reading *motor.Reading, source *rng.Source) {
	f.imperfectionSim.Advance(motorID, sensorTemperature, f.base, source)
	f.imperfectionSim.Advance(motorID, sensorVibration, f.base, source)
	f.imperfectionSim.Advance(motorID, sensorCurrent, f.base, source)
	f.imperfectionSim.Advance(motorID, sensorRPM, f.base, source)

	if reading.Temperature != nil {
		reading.Temperature = f.imperfectionSim.Apply(motorID, sensorTemperature, *reading.Temperature, f.base, source)
	}
	if reading.Vibration != nil {
		reading.Vibration = f.imperfectionSim.Apply(motorID, sensorVibration, *reading.Vibration, f.base, source)
	}
	if reading.Current != nil {
		reading.Current = f.imperfectionSim.Apply(motorID, sensorCurrent, *reading.Current, f.base, source)
	}
	if reading.RPM != nil {
		reading.RPM = f.imperfectionSim.Apply(motorID, sensorRPM, *reading.RPM, f.base, source)
	}
}

// AllMotorIDs returns every motor id currently owned by the fleet, in order.
func (f *Factory) AllMotorIDs() []int {
	ids := make([]int, len(f.motors))
	for i := range f.motors {
		ids[i] = i
	}
	return ids
}

// ForceCloseCycle synthesizes the pair of records a motor owes when batch
// generation stops before it reaches its cycle target naturally: a final
// Critical record, then an automatic_maintenance record, each on its own
// tick. Used only by the batch orchestrator's force-close path.
func (f *Factory) ForceCloseCycle(motorID int) (critical, maint records.Observation) {
	s := f.motors[motorID]
	source := f.motorSources[motorID]

	s.MotorHealth = f.base.CriticalThreshold - 0.05
	if s.MotorHealth < 0 {
		s.MotorHealth = 0
	}
	s.HealthState = motor.HealthCritical
	s.DegradationStage = motor.Stage2Rapid

	currentRegime := f.regimeCtrl.Current()
	critical = records.Observation{
		Time:                  f.tick,
		MotorID:               s.MotorID,
		CycleID:               s.CycleID,
		MotorHealth:           s.MotorHealth,
		HealthState:           string(s.HealthState),
		DegradationStage:      string(s.DegradationStage),
		HoursSinceMaintenance: s.HoursSinceMaint,
		Regime:                string(currentRegime),
	}
	f.tick++

	event := f.maintCtrl.Apply(maintctl.AutomaticMaint, f.tick, s, f.base, source)
	motor.ApplyDegradationSpeed(s, f.run.DegradationSpeed)
	maint = records.Observation{
		Time:                  f.tick,
		MotorID:               s.MotorID,
		CycleID:               s.CycleID,
		MotorHealth:           s.MotorHealth,
		HealthState:           string(s.HealthState),
		DegradationStage:      string(s.DegradationStage),
		HoursSinceMaintenance: s.HoursSinceMaint,
		Regime:                string(currentRegime),
		MaintenanceEvent:      string(event.Kind),
	}
	f.tick++
	return critical, maint
}
