package engine

import (
	"github.com/savegress/motorsim/internal/config"
	"github.com/savegress/motorsim/internal/maintctl"
	"github.com/savegress/motorsim/pkg/records"
)

// Reason explains why batch generation stopped.
type Reason string

const (
	ReasonCompleted   Reason = "Completed"
	ReasonMaxTicks    Reason = "MaxTicks"
	ReasonMemoryGuard Reason = "MemoryGuard"
)

// BatchResult is generate_batch's return value: the accumulated records and
// the reason generation stopped. Exhaustion (MaxTicks, MemoryGuard) is
// non-fatal — the caller always gets back whatever was produced so far.
type BatchResult struct {
	Records []records.Observation
	Reason  Reason
}

// GenerateBatch resets the factory clock to 0 and drives it to the
// configured cycle target, per run.TargetMaintenanceCycles.
func (e *Engine) GenerateBatch() (*BatchResult, error) {
	if err := e.requireInit(); err != nil {
		return nil, err
	}
	if e.cfg.Run.Mode != config.ModeBatch {
		return nil, &Error{Kind: KindPrecondition, Message: "engine: generate_batch is a batch-mode operation"}
	}
	return e.generateUntilAllCyclesCompleted(e.cfg.Run.MaxTicks)
}

// generateUntilAllCyclesCompleted is the batch-mode driver: it advances the
// global clock tick-by-tick, counting each motor's automatic_maintenance
// events against the cycle target (a motor that has reached its target is
// no longer stepped and emits no further records), buffering records and periodically
// flushing them, until every motor reaches its target or a stop condition
// (max_ticks, the memory guard) fires. Motors that haven't reached target
// naturally when generation stops are force-closed so the cycle-count
// invariant still holds on the returned result.
func (e *Engine) generateUntilAllCyclesCompleted(maxTicks int) (*BatchResult, error) {
	e.fac.Reset()
	e.history = nil

	target := e.cfg.Run.TargetMaintenanceCycles
	ids := e.fac.AllMotorIDs()
	cycleCounts := make(map[int]int, len(ids))

	flushSize := e.cfg.Base.BatchFlushSize
	if flushSize <= 0 {
		flushSize = 50000
	}

	var all []records.Observation
	var batch []records.Observation
	reason := ReasonCompleted
	tick := 0

	for {
		if allMotorsAtTarget(ids, cycleCounts, target) {
			break
		}
		if maxTicks > 0 && tick >= maxTicks {
			reason = ReasonMaxTicks
			break
		}

		active := make([]int, 0, len(ids))
		for _, id := range ids {
			if cycleCounts[id] < target {
				active = append(active, id)
			}
		}
		recs := e.fac.Step(active, false)
		for _, r := range recs {
			if err := checkFinite(r); err != nil {
				return nil, err
			}
			if r.MaintenanceEvent == string(maintctl.AutomaticMaint) {
				cycleCounts[r.MotorID]++
			}
		}
		batch = append(batch, recs...)
		tick++

		if len(batch) >= flushSize {
			all = append(all, batch...)
			batch = nil
		}

		total := len(all) + len(batch)
		if e.cfg.Base.MaxRecords > 0 && total >= e.cfg.Base.MaxRecords {
			reason = ReasonMemoryGuard
			break
		}
		if e.cfg.Base.MaxMemoryMB > 0 {
			estMB := (total * e.cfg.Base.EstimatedBytesPerRecord) / (1024 * 1024)
			if estMB >= e.cfg.Base.MaxMemoryMB {
				reason = ReasonMemoryGuard
				break
			}
		}
	}
	all = append(all, batch...)

	if reason != ReasonCompleted {
		all = append(all, e.forceCloseRemaining(ids, cycleCounts, target)...)
	}

	e.appendHistory(all)
	return &BatchResult{Records: all, Reason: reason}, nil
}

func allMotorsAtTarget(ids []int, counts map[int]int, target int) bool {
	for _, id := range ids {
		if counts[id] < target {
			return false
		}
	}
	return true
}

// forceCloseRemaining synthesizes the {Critical record, automatic_maintenance
// record} pair for every cycle a motor still owes, so the returned result's
// per-motor automatic_maintenance count always equals target_maintenance_cycles.
func (e *Engine) forceCloseRemaining(ids []int, counts map[int]int, target int) []records.Observation {
	var out []records.Observation
	for _, id := range ids {
		for counts[id] < target {
			critical, maint := e.fac.ForceCloseCycle(id)
			out = append(out, critical, maint)
			counts[id]++
		}
	}
	return out
}
