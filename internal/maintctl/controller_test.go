package maintctl

import (
	"testing"

	"github.com/savegress/motorsim/internal/config"
	"github.com/savegress/motorsim/internal/motor"
	"github.com/savegress/motorsim/internal/rng"
)

func testBaseConfig() config.BaseConfig {
	return config.DefaultBaseConfig()
}

func TestCheckReactiveNeverFiresAboveThreshold(t *testing.T) {
	base := testBaseConfig()
	source := rng.NewRunSource(1)
	for i := 0; i < 100; i++ {
		if CheckReactive(base.ReactiveThreshold+0.01, base, source) {
			t.Fatal("expected reactive trigger to never fire above reactive_threshold")
		}
	}
}

func TestCheckReactiveFiresEventuallyBelowThreshold(t *testing.T) {
	base := testBaseConfig()
	source := rng.NewRunSource(1)
	fired := false
	for i := 0; i < 200; i++ {
		if CheckReactive(base.ReactiveThreshold-0.01, base, source) {
			fired = true
			break
		}
	}
	if !fired {
		t.Fatal("expected reactive trigger to fire at least once across 200 ticks below threshold")
	}
}

func TestCheckScheduledOnlyFiresInsideWindow(t *testing.T) {
	base := testBaseConfig()
	base.ScheduledProb = 1 // deterministic: fires whenever the window check passes

	source := rng.NewRunSource(1)
	for tick := 0; tick < base.ScheduledInterval; tick++ {
		got := CheckScheduled(tick, base, source)
		inWindow := tick%base.ScheduledInterval < base.ScheduledWindowTicks
		if got != inWindow {
			t.Fatalf("tick %d: CheckScheduled = %v, want %v (inWindow)", tick, got, inWindow)
		}
	}
}

func TestScheduleAutomaticAndAutomaticDue(t *testing.T) {
	base := testBaseConfig()
	base.AutoMaintenanceDelayMin = 5
	base.AutoMaintenanceDelayMax = 5
	source := rng.NewRunSource(1)

	c := NewController()
	if c.HasScheduled(0) {
		t.Fatal("expected no schedule before ScheduleAutomatic")
	}

	c.ScheduleAutomatic(0, 100, base, source)
	if !c.HasScheduled(0) {
		t.Fatal("expected a schedule after ScheduleAutomatic")
	}

	belowThreshold := base.AutoMaintenanceHealthThreshold - 0.01
	if c.AutomaticDue(0, 104, belowThreshold, base) {
		t.Fatal("expected automatic maintenance to not be due before its scheduled tick")
	}
	if !c.AutomaticDue(0, 105, belowThreshold, base) {
		t.Fatal("expected automatic maintenance to be due at its scheduled tick")
	}
	if c.AutomaticDue(0, 105, base.AutoMaintenanceHealthThreshold+0.01, base) {
		t.Fatal("expected automatic maintenance to require health still below threshold")
	}
}

func TestClearScheduleForgetsPendingSchedule(t *testing.T) {
	base := testBaseConfig()
	source := rng.NewRunSource(1)
	c := NewController()
	c.ScheduleAutomatic(0, 0, base, source)
	c.ClearSchedule(0)
	if c.HasScheduled(0) {
		t.Fatal("expected ClearSchedule to remove the pending schedule")
	}
}

func newTestMotorState() *motor.State {
	return &motor.State{
		MotorID:          1,
		MotorHealth:      0.2,
		HealthState:      motor.HealthCritical,
		DegradationStage: motor.Stage2Rapid,
		Misalignment:     1.0,
		FrictionCoeff:    0.2,
	}
}

func TestControllerApplyBearingReplacement(t *testing.T) {
	base := testBaseConfig()
	source := rng.NewRunSource(1)
	c := NewController()
	s := newTestMotorState()

	event := c.Apply(BearingReplacement, 10, s, base, source)

	if s.MotorHealth < 0.75 || s.MotorHealth > 0.90 {
		t.Fatalf("expected bearing replacement to set health in [0.75, 0.90], got %v", s.MotorHealth)
	}
	if s.Misalignment >= 1.0 {
		t.Fatalf("expected bearing replacement to reduce misalignment, got %v", s.Misalignment)
	}
	if event.Kind != BearingReplacement || event.MotorID != s.MotorID {
		t.Fatalf("unexpected event: %+v", event)
	}
	if c.MotorEventCount(s.MotorID) != 1 {
		t.Fatalf("expected 1 logged event, got %d", c.MotorEventCount(s.MotorID))
	}
}

func TestControllerApplyLubricationRaisesHealthByTenth(t *testing.T) {
	base := testBaseConfig()
	source := rng.NewRunSource(1)
	c := NewController()
	s := newTestMotorState()
	s.MotorHealth = 0.5

	c.Apply(Lubrication, 0, s, base, source)
	if diff := s.MotorHealth - 0.6; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("expected lubrication to add 0.10 health, got %v", s.MotorHealth)
	}
}

func TestControllerApplyLubricationClampsHealthAtOne(t *testing.T) {
	base := testBaseConfig()
	source := rng.NewRunSource(1)
	c := NewController()
	s := newTestMotorState()
	s.MotorHealth = 0.95

	c.Apply(Lubrication, 0, s, base, source)
	if s.MotorHealth != 1.0 {
		t.Fatalf("expected lubrication to clamp health at 1.0, got %v", s.MotorHealth)
	}
}

func TestControllerApplyAlignmentReducesMisalignment(t *testing.T) {
	base := testBaseConfig()
	source := rng.NewRunSource(1)
	c := NewController()
	s := newTestMotorState()

	c.Apply(Alignment, 0, s, base, source)
	if s.Misalignment != 0.5 {
		t.Fatalf("expected alignment to halve misalignment, got %v", s.Misalignment)
	}
}

func TestControllerApplyAutomaticMaintResetsLifeAndClearsSchedule(t *testing.T) {
	base := testBaseConfig()
	source := rng.NewRunSource(1)
	c := NewController()
	s := newTestMotorState()
	cycleBefore := s.CycleID

	c.ScheduleAutomatic(s.MotorID, 0, base, source)
	if !c.HasScheduled(s.MotorID) {
		t.Fatal("setup: expected a schedule before Apply")
	}

	c.Apply(AutomaticMaint, 0, s, base, source)

	if c.HasScheduled(s.MotorID) {
		t.Fatal("expected AutomaticMaint to clear its own schedule")
	}
	if s.HealthState != motor.HealthHealthy || s.DegradationStage != motor.Stage0Healthy {
		t.Fatalf("expected AutomaticMaint to reset to a healthy stage, got %v/%v", s.HealthState, s.DegradationStage)
	}
	if s.CycleID != cycleBefore+1 {
		t.Fatalf("expected AutomaticMaint to increment CycleID from %d, got %d", cycleBefore, s.CycleID)
	}
	if s.MotorHealth < 0.93 || s.MotorHealth > 0.95 {
		t.Fatalf("expected AutomaticMaint health in [0.93, 0.95], got %v", s.MotorHealth)
	}
}
