package motor

import (
	"math"

	"github.com/savegress/motorsim/internal/config"
	"github.com/savegress/motorsim/internal/regime"
	"github.com/savegress/motorsim/internal/rng"
)

// Reading is a raw sensor observation before the imperfection layer runs.
// A nil pointer is a first-class missing value, not an error — dropped by
// the independent per-channel Bernoulli gate below.
type Reading struct {
	Temperature *float64
	Vibration   *float64
	Current     *float64
	RPM         *float64
}

const (
	vibrationWindow = 1
	currentWindow   = 5
)

// Observe runs the observation kernel: computes the four clean sensor
// values from the motor's hidden state, then layers drift bias, Gaussian
// noise, a vibration-only spike, and independent per-channel drop.
// The sensor imperfection layer (internal/imperfections) is applied by the
// caller afterward, since it is stateful per sensor per motor and lives
// outside this stateless kernel.
func Observe(s *State, effects regime.Effects, base config.BaseConfig, source *rng.Source) Reading {
	effHealthVib := s.EffectiveHealth(vibrationWindow)
	effHealthCurrent := s.EffectiveHealth(currentWindow)

	vibration := computeVibration(effHealthVib, s.Misalignment, base, effects, source)
	current := computeCurrent(effHealthCurrent, s.LoadFactor, base)
	rpm := base.NominalRPM * (1 - 0.05*s.Misalignment)
	temperature := s.ThermalTemperature + s.SensorTemperatureBias

	s.SensorTemperatureBias += base.TempDrift
	s.SensorVibrationBias += base.VibrationDrift
	temperature += s.SensorTemperatureBias
	vibration += s.SensorVibrationBias

	noiseMult := effects.NoiseMultiplier
	temperature = source.Gaussian(temperature, base.NoiseTemperature*noiseMult)
	vibration = source.Gaussian(vibration, base.NoiseVibration*noiseMult)
	current = source.Gaussian(current, base.NoiseCurrent*noiseMult)
	rpm = source.Gaussian(rpm, base.NoiseRPM*noiseMult)

	if source.Bool(base.SpikeProb) {
		vibration += base.VibrationSpike * source.Sign()
	}
	if vibration < 0 {
		vibration = 0
	}
	if current < 0 {
		current = 0
	}
	if rpm < 0 {
		rpm = 0
	}
	temperature = clampTemperature(temperature, base.AmbientTemp)

	reading := Reading{}
	if !source.Bool(base.DropProb) {
		reading.Temperature = &temperature
	}
	if !source.Bool(base.DropProb) {
		reading.Vibration = &vibration
	}
	if !source.Bool(base.DropProb) {
		reading.Current = &current
	}
	if !source.Bool(base.DropProb) {
		reading.RPM = &rpm
	}
	return reading
}

// clampTemperature bounds the reading to [ambient, ambient + 200]. BaseConfig
// has no critical-temperature option, so the upper bound is a fixed 200
// degrees above ambient; it is a defensive ceiling against config misuse and
// does not bind for in-range physics constants.
func clampTemperature(temperature, ambient float64) float64 {
	if temperature < ambient {
		return ambient
	}
	ceiling := ambient + 200
	if temperature > ceiling {
		return ceiling
	}
	return temperature
}

func computeVibration(effHealth, misalignment float64, base config.BaseConfig, effects regime.Effects, source *rng.Source) float64 {
	baseVib := base.VBase + base.KVHealth*(1-effHealth)*(1-effHealth) + base.KVAlign*misalignment

	numSamples := base.VibrationSampleDuration * base.VibrationSampleRate
	if numSamples <= 0 {
		numSamples = 1
	}
	sumSquares := 0.0
	for i := 0; i < numSamples; i++ {
		sample := source.Gaussian(baseVib, baseVib*0.05*effects.NoiseMultiplier)
		sumSquares += sample * sample
	}
	return math.Sqrt(sumSquares / float64(numSamples))
}

func computeCurrent(effHealth, load float64, base config.BaseConfig) float64 {
	return base.BaseCurrent * load * (1 + base.KCurrent*(1-effHealth))
}
