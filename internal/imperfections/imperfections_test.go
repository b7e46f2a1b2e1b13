package imperfections

import (
	"testing"

	"github.com/savegress/motorsim/internal/config"
	"github.com/savegress/motorsim/internal/rng"
)

func TestFlatlineHoldsConstantValueForItsDuration(t *testing.T) {
	base := config.DefaultBaseConfig()
	base.FlatlineStartProb = 1 // force onset on the very first Advance
	base.DriftStartProb = 0
	base.IntermittentProb = 0
	base.FlatlineDurationMin = 20
	base.FlatlineDurationMax = 20

	source := rng.NewRunSource(1)
	sim := NewSimulator()

	sim.Advance(0, "vibration", base, source)
	v := sim.Apply(0, "vibration", 1.23, base, source)
	if v == nil {
		t.Fatal("expected a captured flatline value, got a dropped reading")
	}
	captured := *v

	for i := 0; i < 19; i++ {
		sim.Advance(0, "vibration", base, source)
		got := sim.Apply(0, "vibration", 999.0, base, source)
		if got == nil || *got != captured {
			t.Fatalf("tick %d: expected flatlined value %v, got %v", i, captured, got)
		}
	}
}

func TestIntermittentDropPreemptsFlatlineAndDrift(t *testing.T) {
	base := config.DefaultBaseConfig()
	base.IntermittentProb = 1
	base.IntermittentDropPct = 1 // every reading in the window is dropped
	base.IntermittentDurMin = 5
	base.IntermittentDurMax = 5
	base.FlatlineStartProb = 1
	base.DriftStartProb = 0

	source := rng.NewRunSource(1)
	sim := NewSimulator()

	sim.Advance(0, "temperature", base, source)
	got := sim.Apply(0, "temperature", 50.0, base, source)
	if got != nil {
		t.Fatalf("expected intermittent-drop precedence to drop the reading, got %v", *got)
	}
}

func TestDriftAccumulatesSignedBias(t *testing.T) {
	base := config.DefaultBaseConfig()
	base.DriftStartProb = 1
	base.DriftRateMin = 1e-4
	base.DriftRateMax = 1e-4
	base.FlatlineStartProb = 0
	base.IntermittentProb = 0

	source := rng.NewRunSource(1)
	sim := NewSimulator()

	sim.Advance(0, "vibration", base, source)
	first := sim.Apply(0, "vibration", 1.0, base, source)
	if first == nil {
		t.Fatal("expected a value, got nil")
	}

	// The drift sign is re-rolled every tick, so an even number of further
	// ticks can cancel out exactly; an odd number of ±rate steps cannot.
	for i := 0; i < 11; i++ {
		sim.Advance(0, "vibration", base, source)
	}
	second := sim.Apply(0, "vibration", 1.0, base, source)
	if second == nil {
		t.Fatal("expected a value, got nil")
	}
	if *first == *second {
		t.Fatal("expected drift bias to change the reading after several ticks")
	}
}

func TestResetClearsFaultState(t *testing.T) {
	base := config.DefaultBaseConfig()
	base.FlatlineStartProb = 1
	base.FlatlineDurationMin = 50
	base.FlatlineDurationMax = 50

	source := rng.NewRunSource(1)
	sim := NewSimulator()
	sim.Advance(0, "current", base, source)
	sim.Apply(0, "current", 10, base, source)

	sim.Reset(0)

	base.FlatlineStartProb = 0
	sim.Advance(0, "current", base, source)
	got := sim.Apply(0, "current", 10, base, source)
	if got == nil || *got != 10 {
		t.Fatalf("expected reset motor to read a clean value, got %v", got)
	}
}
