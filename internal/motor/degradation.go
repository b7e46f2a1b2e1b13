package motor

import (
	"math"

	"github.com/savegress/motorsim/internal/config"
	"github.com/savegress/motorsim/internal/regime"
	"github.com/savegress/motorsim/internal/rng"
)

// NewlyInitialized samples a fresh life for motorID: total life, the three
// stage durations, and the Stage 1 power exponent. load_factor and
// misalignment are deterministic "personality" terms, not sampled — grounded
// in the original factory's per-index assignment (0.9+0.1*id load, 0.02*id
// misalignment), not randomized per motor.
func NewlyInitialized(motorID int, base config.BaseConfig, source *rng.Source) *State {
	s := &State{
		MotorID:      motorID,
		LoadFactor:   0.9 + 0.1*float64(motorID),
		Misalignment: 0.02 * float64(motorID),
	}
	ResampleLife(s, base, source)
	s.MotorHealth = base.Stage0BaseHealth
	s.HealthState = HealthHealthy
	s.DegradationStage = Stage0Healthy
	s.FrictionCoeff = base.BaseFriction
	s.ThermalTemperature = base.AmbientTemp
	s.PushHealth()
	return s
}

// ResampleLife draws a fresh target_hours_to_critical, the three stage
// durations, and the Stage 1 power exponent. When the drawn Stage 0 and
// Stage 1 fractions exceed the whole life, Stage 1 is shortened to the
// remainder and Stage 2 has zero length, so the durations always sum to the
// target. The durations are not scaled by degradation_speed here; callers
// apply ApplyDegradationSpeed afterwards.
func ResampleLife(s *State, base config.BaseConfig, source *rng.Source) {
	total := source.Uniform(base.MinHoursToCritical, base.MaxHoursToCritical)
	stage0Pct := source.Uniform(base.Stage0MinPct, base.Stage0MaxPct)
	stage1Pct := source.Uniform(base.Stage1MinPct, base.Stage1MaxPct)
	stage2Pct := 1 - stage0Pct - stage1Pct
	if stage2Pct < 0 {
		stage1Pct = 1 - stage0Pct
		stage2Pct = 0
	}

	s.TargetHoursToCrit = total
	s.Stage0DurationHours = total * stage0Pct
	s.Stage1DurationHours = total * stage1Pct
	s.Stage2DurationHours = total * stage2Pct
	s.Stage1PowerExponent = source.Uniform(base.Stage1PowerExpMin, base.Stage1PowerExpMax)
	s.Stage2ExpCoefficient = stage2ExpCoefficient(s.Stage2DurationHours)
	s.HoursSinceMaint = 0
}

// ApplyDegradationSpeed scales the three stage durations by the reciprocal
// of speed (speed > 1 means faster degradation, i.e. shorter stages).
func ApplyDegradationSpeed(s *State, speed float64) {
	if speed <= 0 {
		speed = 1
	}
	s.Stage0DurationHours /= speed
	s.Stage1DurationHours /= speed
	s.Stage2DurationHours /= speed
	s.TargetHoursToCrit = s.Stage0DurationHours + s.Stage1DurationHours + s.Stage2DurationHours
	s.Stage2ExpCoefficient = stage2ExpCoefficient(s.Stage2DurationHours)
}

// stage2ExpCoefficient computes c = ln(0.30) / stage2_duration. Recomputed
// every time stage2 duration changes (and again every tick in Step, per
// SPEC_FULL.md §4.2's resolution of the stored-vs-dynamic open question)
// rather than trusted from the stored field.
func stage2ExpCoefficient(stage2Duration float64) float64 {
	if stage2Duration <= 0 {
		return -0.1
	}
	return math.Log(0.30) / stage2Duration
}

// Step advances the motor's hidden state by one tick: recomputes stage,
// runs the degradation kernel for that stage, derives friction and thermal
// state, and pushes the new health onto the trailing window.
//
// effects carries the current regime's multiplier bundle. DegradationMultiplier
// scales the elapsed-hours step fed to the stage kernels (a Peak regime
// ages a motor faster); TempMultiplier scales the heat-generation term of
// the thermal update. LoadMultiplier is expected to already be folded into
// s.LoadFactor by the caller (save/restore around the step, per §4.6 of the
// spec this engine implements), so it is read here, not reapplied.
func Step(s *State, timeStepMinutes float64, effects regime.Effects, base config.BaseConfig, warningThreshold, criticalThreshold float64, source *rng.Source) {
	timeStepHours := timeStepMinutes / 60.0
	adjustedHours := timeStepHours * effects.DegradationMultiplier

	s.HoursSinceMaint += adjustedHours
	s.DegradationStage = StageFor(s.HoursSinceMaint, s.Stage0DurationHours, s.Stage1DurationHours)
	s.Stage2ExpCoefficient = stage2ExpCoefficient(s.Stage2DurationHours)

	switch s.DegradationStage {
	case Stage0Healthy:
		s.MotorHealth = stepStage0(s, adjustedHours, base, source)
	case Stage1Early:
		s.MotorHealth = stepStage1(s, base, source)
	default:
		s.MotorHealth = stepStage2(s, base, source)
	}

	s.FrictionCoeff = base.BaseFriction + base.KFriction*(1-s.MotorHealth)
	s.ThermalTemperature = s.ThermalTemperature +
		effects.TempMultiplier*base.Alpha*s.FrictionCoeff*s.LoadFactor -
		base.Beta*(s.ThermalTemperature-base.AmbientTemp)

	s.HealthState = HealthStateFor(s.MotorHealth, warningThreshold, criticalThreshold)
	s.PushHealth()
}

func stepStage0(s *State, timeStepHours float64, base config.BaseConfig, source *rng.Source) float64 {
	baseHealth := base.Stage0BaseHealth
	tinyDecay := 0.0
	if s.Stage0DurationHours > 0 {
		tinyDecay = 0.05 / s.Stage0DurationHours * timeStepHours
	}
	noise := source.Gaussian(0, base.Stage0NoiseStd*timeStepHours)

	newHealth := s.MotorHealth - tinyDecay + noise
	return clamp(newHealth, baseHealth-0.03, baseHealth+0.02)
}

func stepStage1(s *State, base config.BaseConfig, source *rng.Source) float64 {
	timeInStage := s.HoursSinceMaint - s.Stage0DurationHours
	const healthDropNeeded = 0.45
	const h0 = 0.95

	a := 0.0
	if s.Stage1DurationHours > 0 {
		a = healthDropNeeded / math.Pow(s.Stage1DurationHours, s.Stage1PowerExponent)
	}
	healthFromModel := h0 - a*math.Pow(math.Max(timeInStage, 0), s.Stage1PowerExponent)
	noise := source.Gaussian(0, 0.02)
	newHealth := healthFromModel + noise

	return math.Min(newHealth, s.MotorHealth)
}

func stepStage2(s *State, base config.BaseConfig, source *rng.Source) float64 {
	timeInStage := s.HoursSinceMaint - s.Stage0DurationHours - s.Stage1DurationHours
	const initialStage2Health = 0.50

	decay := 0.5 * math.Exp(s.Stage2ExpCoefficient*math.Max(timeInStage, 0))
	healthFromModel := initialStage2Health - decay
	noise := source.Gaussian(0, 0.01)
	newHealth := healthFromModel + noise

	newHealth = math.Min(newHealth, s.MotorHealth)
	return math.Max(0, newHealth)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
