package regime

import (
	"testing"

	"github.com/savegress/motorsim/internal/rng"
)

func TestNewControllerStartsNormal(t *testing.T) {
	c := NewController(100, rng.NewRunSource(1))
	if c.Current() != Normal {
		t.Fatalf("expected fleet to start in Normal, got %v", c.Current())
	}
}

func TestAdvanceEventuallyTransitions(t *testing.T) {
	c := NewController(10, rng.NewRunSource(1))
	source := rng.NewRunSource(1)

	changed := false
	last := c.Current()
	for i := 0; i < 500; i++ {
		c.Advance(source)
		if c.Current() != last {
			changed = true
			break
		}
	}
	if !changed {
		t.Fatal("expected regime to transition at least once within 500 ticks of a base duration of 10")
	}
}

func TestIdleNeverTransitionsDirectlyToPeak(t *testing.T) {
	weights := transitions[Idle]
	if weights[2] != 0 {
		t.Fatalf("expected Idle->Peak transition weight to be 0, got %v", weights[2])
	}
}

func TestEffectsForKnownRegimes(t *testing.T) {
	for _, name := range []Name{Idle, Normal, Peak} {
		e := EffectsFor(name)
		if e.LoadMultiplier <= 0 || e.NoiseMultiplier <= 0 || e.TempMultiplier <= 0 || e.DegradationMultiplier <= 0 {
			t.Fatalf("regime %v resolved to a non-positive multiplier: %+v", name, e)
		}
	}
	if EffectsFor(Peak).DegradationMultiplier <= EffectsFor(Idle).DegradationMultiplier {
		t.Fatal("expected Peak to degrade motors faster than Idle")
	}
}
