package engine

import (
	"testing"

	"github.com/savegress/motorsim/internal/config"
)

func newTestBatchConfig(numMotors, targetCycles int) *config.Config {
	return &config.Config{Base: config.DefaultBaseConfig(), Run: config.RunConfig{
		RunID:                   "test-batch",
		Seed:                    1,
		NumMotors:               numMotors,
		TargetMaintenanceCycles: targetCycles,
		DegradationSpeed:        50.0,
		LoadFactor:              1.0,
		NoiseLevel:              1.0,
		Mode:                    config.ModeBatch,
		MaxHistory:              1_000_000,
		MaxTicks:                2_000_000,
	}}
}

func TestGenerateBatchRejectsLiveModeEngine(t *testing.T) {
	e := New()
	cfg := newTestBatchConfig(1, 1)
	cfg.Run.Mode = config.ModeLive
	if err := e.Init(cfg); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if _, err := e.GenerateBatch(); err == nil {
		t.Fatal("expected GenerateBatch to reject a live-mode engine")
	}
}

func TestGenerateBatchHitsExactCycleCountPerMotor(t *testing.T) {
	e := New()
	cfg := newTestBatchConfig(3, 2)
	if err := e.Init(cfg); err != nil {
		t.Fatalf("Init: %v", err)
	}

	result, err := e.GenerateBatch()
	if err != nil {
		t.Fatalf("GenerateBatch: %v", err)
	}

	counts := map[int]int{}
	for _, r := range result.Records {
		if r.MaintenanceEvent == "automatic_maintenance" {
			counts[r.MotorID]++
		}
	}
	for id := 0; id < 3; id++ {
		if counts[id] != 2 {
			t.Fatalf("motor %d: got %d automatic_maintenance events, want 2 (reason=%v)", id, counts[id], result.Reason)
		}
	}
}

func TestGenerateBatchStopsAtMaxTicksAndForceCloses(t *testing.T) {
	e := New()
	cfg := newTestBatchConfig(1, 1000) // unreachable within the tiny tick budget
	cfg.Run.MaxTicks = 5
	cfg.Run.DegradationSpeed = 1.0
	if err := e.Init(cfg); err != nil {
		t.Fatalf("Init: %v", err)
	}

	result, err := e.GenerateBatch()
	if err != nil {
		t.Fatalf("GenerateBatch: %v", err)
	}
	if result.Reason != ReasonMaxTicks {
		t.Fatalf("expected ReasonMaxTicks, got %v", result.Reason)
	}

	count := 0
	for _, r := range result.Records {
		if r.MotorID == 0 && r.MaintenanceEvent == "automatic_maintenance" {
			count++
		}
	}
	if count != 1000 {
		t.Fatalf("expected the force-close path to still deliver the full target of 1000 cycles, got %d", count)
	}
}

func TestGenerateBatchIsDeterministicForTheSameSeed(t *testing.T) {
	cfg1 := newTestBatchConfig(2, 2)
	e1 := New()
	if err := e1.Init(cfg1); err != nil {
		t.Fatalf("Init: %v", err)
	}
	result1, err := e1.GenerateBatch()
	if err != nil {
		t.Fatalf("GenerateBatch: %v", err)
	}

	cfg2 := newTestBatchConfig(2, 2)
	e2 := New()
	if err := e2.Init(cfg2); err != nil {
		t.Fatalf("Init: %v", err)
	}
	result2, err := e2.GenerateBatch()
	if err != nil {
		t.Fatalf("GenerateBatch: %v", err)
	}

	if len(result1.Records) != len(result2.Records) {
		t.Fatalf("record counts differ across identically-seeded runs: %d vs %d", len(result1.Records), len(result2.Records))
	}
	for i := range result1.Records {
		a, b := result1.Records[i], result2.Records[i]
		if a.MotorHealth != b.MotorHealth || a.HealthState != b.HealthState || a.MaintenanceEvent != b.MaintenanceEvent {
			t.Fatalf("record %d differs across identically-seeded runs: %+v vs %+v", i, a, b)
		}
	}
}
