// Package motor holds the per-motor hidden state and the stateless kernels
// (degradation, observation) that mutate and read it. Nothing here touches
// the RNG's package-level state directly, and nothing here owns a motor
// long enough to become a second source of truth — the factory is the only
// owner (see internal/factory).
package motor

// HealthState is the categorical projection of MotorHealth through
// (WarningThreshold, CriticalThreshold).
type HealthState string

const (
	HealthHealthy  HealthState = "Healthy"
	HealthWarning  HealthState = "Warning"
	HealthCritical HealthState = "Critical"
)

// DegradationStage is the motor's position in its three-stage life.
type DegradationStage string

const (
	Stage0Healthy DegradationStage = "Stage0"
	Stage1Early   DegradationStage = "Stage1"
	Stage2Rapid   DegradationStage = "Stage2"
)

const healthWindowCapacity = 30

// healthWindow is a fixed-capacity ring buffer of recent MotorHealth values,
// newest last. Capacity is healthWindowCapacity (30) entries, which is more
// than the largest sensor window the observation kernel reads (currentWindow,
// 5 ticks).
type healthWindow struct {
	buf   [healthWindowCapacity]float64
	count int
	head  int
}

func newHealthWindow(initial float64) *healthWindow {
	w := &healthWindow{}
	w.push(initial)
	return w
}

func (w *healthWindow) push(v float64) {
	w.buf[w.head] = v
	w.head = (w.head + 1) % healthWindowCapacity
	if w.count < healthWindowCapacity {
		w.count++
	}
}

// Mean returns the arithmetic mean of the last n entries (n clamped to the
// number of entries actually held, minimum 1).
func (w *healthWindow) Mean(n int) float64 {
	if n > w.count {
		n = w.count
	}
	if n < 1 {
		n = 1
	}
	sum := 0.0
	idx := w.head
	for i := 0; i < n; i++ {
		idx = (idx - 1 + healthWindowCapacity) % healthWindowCapacity
		sum += w.buf[idx]
	}
	return sum / float64(n)
}

// State is the per-motor hidden state described by the spec's data model.
// Every field the spec's MotorHiddenState table names is present; CycleID
// is this implementation's addition (see SPEC_FULL.md §3, §9).
type State struct {
	MotorID int

	MotorHealth       float64
	HealthState       HealthState
	DegradationStage  DegradationStage
	LoadFactor        float64
	Misalignment      float64
	FrictionCoeff     float64
	HoursSinceMaint   float64
	TargetHoursToCrit float64

	Stage0DurationHours float64
	Stage1DurationHours float64
	Stage2DurationHours float64

	Stage1PowerExponent  float64
	Stage2ExpCoefficient float64

	SensorTemperatureBias float64
	SensorVibrationBias   float64
	ThermalTemperature    float64

	CycleID int

	window *healthWindow
}

// PushHealth appends the current MotorHealth to the trailing window. Call
// once per tick, after the degradation kernel has updated MotorHealth.
func (s *State) PushHealth() {
	if s.window == nil {
		s.window = newHealthWindow(s.MotorHealth)
		return
	}
	s.window.push(s.MotorHealth)
}

// EffectiveHealth returns the mean of the last windowSize entries of the
// health window (at least the current value).
func (s *State) EffectiveHealth(windowSize int) float64 {
	if s.window == nil {
		return s.MotorHealth
	}
	return s.window.Mean(windowSize)
}

// StageFor derives the degradation stage implied by hoursSinceMaint against
// the three stage durations. Exported so tests can check the "stage
// consistency" testable property independently of a full tick.
func StageFor(hoursSinceMaint, stage0, stage1 float64) DegradationStage {
	if hoursSinceMaint < stage0 {
		return Stage0Healthy
	}
	if hoursSinceMaint < stage0+stage1 {
		return Stage1Early
	}
	return Stage2Rapid
}

// HealthStateFor derives the categorical health state from motorHealth
// against the ordered pair (warningThreshold, criticalThreshold), with
// warningThreshold required to exceed criticalThreshold (enforced at config
// validation, not here).
func HealthStateFor(motorHealth, warningThreshold, criticalThreshold float64) HealthState {
	switch {
	case motorHealth >= warningThreshold:
		return HealthHealthy
	case motorHealth >= criticalThreshold:
		return HealthWarning
	default:
		return HealthCritical
	}
}
