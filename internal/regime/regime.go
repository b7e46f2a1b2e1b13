// Package regime implements the process-global operating-mode Markov chain
// that scales load, sensor noise, thermal heat generation, and degradation
// rate for every motor during a single tick.
package regime

import "github.com/savegress/motorsim/internal/rng"

// Name is the closed set of operating regimes.
type Name string

const (
	Idle   Name = "Idle"
	Normal Name = "Normal"
	Peak   Name = "Peak"
)

// Effects is the parameter bundle a regime resolves to for one tick.
type Effects struct {
	LoadMultiplier        float64
	NoiseMultiplier       float64
	TempMultiplier        float64
	DegradationMultiplier float64
}

var params = map[Name]Effects{
	Idle:   {LoadMultiplier: 0.3, NoiseMultiplier: 0.5, TempMultiplier: 0.2, DegradationMultiplier: 0.5},
	Normal: {LoadMultiplier: 1.0, NoiseMultiplier: 1.0, TempMultiplier: 1.0, DegradationMultiplier: 1.0},
	Peak:   {LoadMultiplier: 1.5, NoiseMultiplier: 1.4, TempMultiplier: 1.8, DegradationMultiplier: 1.6},
}

// transitions is the fixed 3x3 matrix rows (from) -> weights over
// [Idle, Normal, Peak].
var order = []Name{Idle, Normal, Peak}
var transitions = map[Name][]float64{
	Idle:   {0.7, 0.3, 0.0},
	Normal: {0.1, 0.7, 0.2},
	Peak:   {0.0, 0.8, 0.2},
}

// EffectsFor returns the parameter bundle for name.
func EffectsFor(name Name) Effects {
	return params[name]
}

// Controller tracks the current regime and its dwell counter.
type Controller struct {
	current      Name
	dwell        int
	dwellTarget  int
	baseDuration int
}

// NewController starts the fleet in Normal with a freshly jittered dwell
// target, grounded in factory.py's regime_timer/regime_duration init.
func NewController(baseDuration int, source *rng.Source) *Controller {
	c := &Controller{current: Normal, baseDuration: baseDuration}
	c.dwellTarget = c.jitteredDuration(source)
	return c
}

func (c *Controller) jitteredDuration(source *rng.Source) int {
	jitter := source.Uniform(0.8, 1.2)
	d := int(float64(c.baseDuration) * jitter)
	if d < 1 {
		d = 1
	}
	return d
}

// Current returns the active regime.
func (c *Controller) Current() Name {
	return c.current
}

// Advance increments the dwell counter and transitions the regime when the
// dwell target is reached, drawing the next regime from the fixed
// transition matrix.
func (c *Controller) Advance(source *rng.Source) {
	c.dwell++
	if c.dwell < c.dwellTarget {
		return
	}
	weights := transitions[c.current]
	idx := source.Choice(weights)
	c.current = order[idx]
	c.dwell = 0
	c.dwellTarget = c.jitteredDuration(source)
}
