// Package imperfections implements the per-sensor stateful fault model
// layered on top of clean, already-noised readings: drift, flatline, and
// intermittent drop-out, with precedence intermittent -> flatline -> drift.
package imperfections

import (
	"github.com/savegress/motorsim/internal/config"
	"github.com/savegress/motorsim/internal/rng"
)

type sensorState struct {
	accumulatedBias float64
	biasDriftRate   float64

	isFlatlined       bool
	flatlineValue     float64
	flatlineCountdown int
	needsCapture      bool

	isIntermittent        bool
	intermittentCountdown int
}

// Simulator holds one sensorState per (motorID, sensor name).
type Simulator struct {
	states map[int]map[string]*sensorState
}

// NewSimulator returns an empty fault simulator.
func NewSimulator() *Simulator {
	return &Simulator{states: make(map[int]map[string]*sensorState)}
}

func (sim *Simulator) stateFor(motorID int, sensor string) *sensorState {
	perMotor, ok := sim.states[motorID]
	if !ok {
		perMotor = make(map[string]*sensorState)
		sim.states[motorID] = perMotor
	}
	st, ok := perMotor[sensor]
	if !ok {
		st = &sensorState{}
		perMotor[sensor] = st
	}
	return st
}

// Reset clears all fault state for a motor, called when a motor is reset by
// maintenance or restored from failure so stale faults don't leak across
// cycles.
func (sim *Simulator) Reset(motorID int) {
	delete(sim.states, motorID)
}

// Advance evolves the named sensor's fault state by one tick (onset rolls,
// countdown decrements, drift accrual). It runs unconditionally, whether or
// not this tick's clean reading already survived the plain per-channel drop
// gate in the observation kernel — a fault's life cycle doesn't pause just
// because one reading happened to be missing for an unrelated reason.
func (sim *Simulator) Advance(motorID int, sensor string, base config.BaseConfig, source *rng.Source) {
	sim.updateState(sim.stateFor(motorID, sensor), base, source)
}

// Apply layers the named sensor's current fault state onto value, for a
// tick whose clean reading is present. Precedence is intermittent-drop,
// then flatline, then drift: a dropped value preempts flatline and drift
// for that tick. Call Advance for this sensor before Apply in the same
// tick; Apply does not itself advance fault state.
func (sim *Simulator) Apply(motorID int, sensor string, value float64, base config.BaseConfig, source *rng.Source) *float64 {
	st := sim.stateFor(motorID, sensor)

	if st.isIntermittent {
		if source.Bool(base.IntermittentDropPct) {
			return nil
		}
	}
	if st.isFlatlined {
		if st.needsCapture {
			st.flatlineValue = value
			st.needsCapture = false
		}
		v := st.flatlineValue
		return &v
	}
	value += st.accumulatedBias
	return &value
}

func (sim *Simulator) updateState(st *sensorState, base config.BaseConfig, source *rng.Source) {
	if st.isIntermittent {
		st.intermittentCountdown--
		if st.intermittentCountdown <= 0 {
			st.isIntermittent = false
		}
	} else if source.Bool(base.IntermittentProb) {
		st.isIntermittent = true
		st.intermittentCountdown = source.UniformInt(base.IntermittentDurMin, base.IntermittentDurMax)
	}

	if st.isFlatlined {
		st.flatlineCountdown--
		if st.flatlineCountdown <= 0 {
			st.isFlatlined = false
		}
	} else if source.Bool(base.FlatlineStartProb) {
		st.isFlatlined = true
		st.flatlineCountdown = source.UniformInt(base.FlatlineDurationMin, base.FlatlineDurationMax)
		st.needsCapture = true
	}

	if st.biasDriftRate == 0 && source.Bool(base.DriftStartProb) {
		st.biasDriftRate = source.Uniform(base.DriftRateMin, base.DriftRateMax)
	}
	if st.biasDriftRate != 0 {
		st.accumulatedBias += st.biasDriftRate * source.Sign()
	}
}
