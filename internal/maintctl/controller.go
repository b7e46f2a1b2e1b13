// Package maintctl decides, per tick and per motor, whether a maintenance
// event occurs, and executes the side effects when one does. It never holds
// a reference to a motor: it receives state via parameters from the
// factory and only ever remembers motor_ids in its own scheduling map, per
// the one-directional ownership rule (factory -> motors, factory ->
// controller, controller -> ids).
package maintctl

import (
	"github.com/savegress/motorsim/internal/config"
	"github.com/savegress/motorsim/internal/motor"
	"github.com/savegress/motorsim/internal/rng"
)

// Kind is the closed set of maintenance event types.
type Kind string

const (
	BearingReplacement Kind = "bearing_replacement"
	Lubrication        Kind = "lubrication"
	Alignment          Kind = "alignment"
	AutomaticMaint     Kind = "automatic_maintenance"
)

// Event is an append-only record of one executed maintenance action.
type Event struct {
	Tick      int
	MotorID   int
	PreHealth float64
	PostHealth float64
	Kind      Kind
}

// Controller owns the automatic-maintenance schedule and the event log. It
// does not own motor state.
type Controller struct {
	scheduled map[int]int // motorID -> tick at which automatic maintenance is due
	events    []Event
}

// NewController returns an empty controller.
func NewController() *Controller {
	return &Controller{scheduled: make(map[int]int)}
}

// Events returns the full maintenance event log.
func (c *Controller) Events() []Event {
	return c.events
}

// MotorEventCount returns how many maintenance events of any kind have been
// recorded for motorID.
func (c *Controller) MotorEventCount(motorID int) int {
	n := 0
	for _, e := range c.events {
		if e.MotorID == motorID {
			n++
		}
	}
	return n
}

// ClearSchedule forgets a pending automatic-maintenance schedule for
// motorID, used when a motor is reset or restored outside the normal
// critical-entry path.
func (c *Controller) ClearSchedule(motorID int) {
	delete(c.scheduled, motorID)
}

// HasScheduled reports whether motorID already has an automatic
// maintenance pending.
func (c *Controller) HasScheduled(motorID int) bool {
	_, ok := c.scheduled[motorID]
	return ok
}

// ScheduleAutomatic schedules an automatic-maintenance event delay ticks
// ahead of tick, per the "automatic-on-critical" trigger. Called by the
// factory exactly once per critical entry, when no schedule already exists.
func (c *Controller) ScheduleAutomatic(motorID, tick int, base config.BaseConfig, source *rng.Source) {
	delay := source.UniformInt(base.AutoMaintenanceDelayMin, base.AutoMaintenanceDelayMax)
	c.scheduled[motorID] = tick + delay
}

// AutomaticDue reports whether motorID's scheduled automatic maintenance
// has reached its tick and the motor is still below the health threshold
// that confirms it.
func (c *Controller) AutomaticDue(motorID, tick int, motorHealth float64, base config.BaseConfig) bool {
	due, ok := c.scheduled[motorID]
	if !ok {
		return false
	}
	return tick >= due && motorHealth < base.AutoMaintenanceHealthThreshold
}

// CheckReactive evaluates the reactive trigger (live mode only): if health
// is below reactive_threshold, a coin flip at reactive_prob_per_step decides
// whether bearing_replacement fires this tick.
func CheckReactive(motorHealth float64, base config.BaseConfig, source *rng.Source) bool {
	if motorHealth >= base.ReactiveThreshold {
		return false
	}
	return source.Bool(base.ReactiveProbPerStep)
}

// CheckScheduled evaluates the scheduled trigger: within a small window
// around every scheduled_interval ticks, a coin flip decides whether
// lubrication fires.
func CheckScheduled(tick int, base config.BaseConfig, source *rng.Source) bool {
	if base.ScheduledInterval <= 0 {
		return false
	}
	if tick%base.ScheduledInterval >= base.ScheduledWindowTicks {
		return false
	}
	return source.Bool(base.ScheduledProb)
}

// Apply executes kind's side effects on s in place, appends the resulting
// Event to the log, and returns it. For AutomaticMaint, Apply also clears
// the motor's schedule and resamples its life through motor.ResampleLife,
// drawing from source (the factory passes the motor's own sub-stream);
// scaling the new stage durations by degradation_speed is left to the caller.
func (c *Controller) Apply(kind Kind, tick int, s *motor.State, base config.BaseConfig, source *rng.Source) Event {
	preHealth := s.MotorHealth

	switch kind {
	case BearingReplacement:
		s.MotorHealth = source.Uniform(0.75, 0.90)
		s.Misalignment *= 0.3
		s.FrictionCoeff = 1.1 * base.BaseFriction
	case Lubrication:
		s.MotorHealth = min1(s.MotorHealth + 0.10)
		s.FrictionCoeff *= 0.8
	case Alignment:
		s.Misalignment *= 0.5
		s.MotorHealth = min1(s.MotorHealth + 0.05)
	case AutomaticMaint:
		motor.ResampleLife(s, base, source)
		s.MotorHealth = source.Uniform(0.93, 0.95)
		s.HealthState = motor.HealthHealthy
		s.DegradationStage = motor.Stage0Healthy
		s.Misalignment *= 0.3
		s.FrictionCoeff = 1.1 * base.BaseFriction
		s.CycleID++
		delete(c.scheduled, s.MotorID)
	}

	event := Event{Tick: tick, MotorID: s.MotorID, PreHealth: preHealth, PostHealth: s.MotorHealth, Kind: kind}
	c.events = append(c.events, event)
	return event
}

func min1(v float64) float64 {
	if v > 1 {
		return 1
	}
	return v
}
