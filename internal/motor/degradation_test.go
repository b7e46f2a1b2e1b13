package motor

import (
	"math"
	"testing"

	"github.com/savegress/motorsim/internal/config"
	"github.com/savegress/motorsim/internal/regime"
	"github.com/savegress/motorsim/internal/rng"
)

func testBaseConfig() config.BaseConfig {
	return config.DefaultBaseConfig()
}

func TestNewlyInitializedDurationsSumToTotal(t *testing.T) {
	base := testBaseConfig()
	source := rng.NewRunSource(1)

	for id := 0; id < 20; id++ {
		s := NewlyInitialized(id, base, source)
		sum := s.Stage0DurationHours + s.Stage1DurationHours + s.Stage2DurationHours
		if diff := math.Abs(sum - s.TargetHoursToCrit); diff > 1e-6 {
			t.Fatalf("motor %d: stage durations sum to %v, want %v", id, sum, s.TargetHoursToCrit)
		}
		if s.TargetHoursToCrit < base.MinHoursToCritical || s.TargetHoursToCrit > base.MaxHoursToCritical {
			t.Fatalf("motor %d: target hours %v outside configured range", id, s.TargetHoursToCrit)
		}
	}
}

func TestApplyDegradationSpeedScalesDurations(t *testing.T) {
	base := testBaseConfig()
	source := rng.NewRunSource(1)
	s := NewlyInitialized(0, base, source)

	before := s.TargetHoursToCrit
	ApplyDegradationSpeed(s, 2.0)

	if diff := math.Abs(s.TargetHoursToCrit - before/2); diff > 1e-6 {
		t.Fatalf("expected degradation_speed=2 to halve total life, got %v from %v", s.TargetHoursToCrit, before)
	}
	sum := s.Stage0DurationHours + s.Stage1DurationHours + s.Stage2DurationHours
	if diff := math.Abs(sum - s.TargetHoursToCrit); diff > 1e-6 {
		t.Fatalf("stage durations no longer sum to target after scaling: %v vs %v", sum, s.TargetHoursToCrit)
	}
}

func TestStage1IsMonotoneNonIncreasing(t *testing.T) {
	base := testBaseConfig()
	source := rng.NewRunSource(2)
	s := NewlyInitialized(0, base, source)
	s.HoursSinceMaint = s.Stage0DurationHours
	s.DegradationStage = Stage1Early
	s.MotorHealth = base.Stage0BaseHealth

	effects := regime.EffectsFor(regime.Normal)
	prev := s.MotorHealth
	for i := 0; i < 500; i++ {
		Step(s, base.TimeStepMinutes, effects, base, base.WarningThreshold, base.CriticalThreshold, source)
		if s.DegradationStage != Stage1Early {
			break
		}
		if s.MotorHealth > prev {
			t.Fatalf("tick %d: motor_health increased from %v to %v in Stage 1", i, prev, s.MotorHealth)
		}
		prev = s.MotorHealth
	}
}

func TestStage2IsMonotoneNonIncreasingAndBounded(t *testing.T) {
	base := testBaseConfig()
	source := rng.NewRunSource(3)
	s := NewlyInitialized(0, base, source)
	s.HoursSinceMaint = s.Stage0DurationHours + s.Stage1DurationHours
	s.DegradationStage = Stage2Rapid
	s.MotorHealth = 0.5

	effects := regime.EffectsFor(regime.Normal)
	prev := s.MotorHealth
	for i := 0; i < 2000; i++ {
		Step(s, base.TimeStepMinutes, effects, base, base.WarningThreshold, base.CriticalThreshold, source)
		if s.MotorHealth > prev {
			t.Fatalf("tick %d: motor_health increased from %v to %v in Stage 2", i, prev, s.MotorHealth)
		}
		if s.MotorHealth < 0 || s.MotorHealth > 1 {
			t.Fatalf("tick %d: motor_health %v outside [0,1]", i, s.MotorHealth)
		}
		prev = s.MotorHealth
	}
}

func TestStepKeepsStageConsistentWithElapsedHours(t *testing.T) {
	base := testBaseConfig()
	source := rng.NewRunSource(4)
	s := NewlyInitialized(0, base, source)
	effects := regime.EffectsFor(regime.Normal)

	for i := 0; i < 5000; i++ {
		Step(s, base.TimeStepMinutes, effects, base, base.WarningThreshold, base.CriticalThreshold, source)
		want := StageFor(s.HoursSinceMaint, s.Stage0DurationHours, s.Stage1DurationHours)
		if s.DegradationStage != want {
			t.Fatalf("tick %d: degradation_stage=%v inconsistent with hours_since_maint=%v (stage0=%v stage1=%v), want %v",
				i, s.DegradationStage, s.HoursSinceMaint, s.Stage0DurationHours, s.Stage1DurationHours, want)
		}
	}
}

func TestStepKeepsHealthInBounds(t *testing.T) {
	base := testBaseConfig()
	source := rng.NewRunSource(5)
	s := NewlyInitialized(0, base, source)
	effects := regime.EffectsFor(regime.Normal)

	for i := 0; i < 5000; i++ {
		Step(s, base.TimeStepMinutes, effects, base, base.WarningThreshold, base.CriticalThreshold, source)
		if s.MotorHealth < 0 || s.MotorHealth > 1 {
			t.Fatalf("tick %d: motor_health %v outside [0,1]", i, s.MotorHealth)
		}
	}
}

func TestStepDegradationMultiplierAccelerates(t *testing.T) {
	base := testBaseConfig()
	source1 := rng.NewRunSource(9)
	source2 := rng.NewRunSource(9)

	slow := NewlyInitialized(0, base, source1)
	fast := NewlyInitialized(0, base, source2)

	normal := regime.EffectsFor(regime.Normal)
	peak := regime.EffectsFor(regime.Peak)

	Step(slow, base.TimeStepMinutes, normal, base, base.WarningThreshold, base.CriticalThreshold, source1)
	Step(fast, base.TimeStepMinutes, peak, base, base.WarningThreshold, base.CriticalThreshold, source2)

	if fast.HoursSinceMaint <= slow.HoursSinceMaint {
		t.Fatalf("expected Peak regime's degradation multiplier to advance hours faster: fast=%v slow=%v",
			fast.HoursSinceMaint, slow.HoursSinceMaint)
	}
}
