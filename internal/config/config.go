// Package config holds the engine's two layered immutable records: a
// BaseConfig (physics constants, noise levels, stage fractions, thresholds)
// and a RunConfig (motor count, target cycles, multipliers, mode, seed).
// Loading follows the platform's own config package: a YAML file loader
// with environment-variable expansion, and a parallel LoadFromEnv path
// that builds the same records straight from the process environment with
// hardcoded defaults.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Mode selects which orchestrator drives the factory.
type Mode string

const (
	ModeLive  Mode = "Live"
	ModeBatch Mode = "Batch"
)

// BaseConfig carries every physics constant, noise level, stage fraction,
// and threshold the kernels consult. It does not vary between runs of the
// same fleet design — RunConfig is what varies.
type BaseConfig struct {
	TimeStepMinutes         float64 `yaml:"time_step_minutes"`
	VibrationSampleDuration int     `yaml:"vibration_sample_duration"`
	VibrationSampleRate     int     `yaml:"vibration_sample_rate"`

	WarningThreshold  float64 `yaml:"warning_threshold"`
	CriticalThreshold float64 `yaml:"critical_threshold"`

	MinHoursToCritical float64 `yaml:"min_hours_to_critical"`
	MaxHoursToCritical float64 `yaml:"max_hours_to_critical"`

	Stage0MinPct float64 `yaml:"stage0_min_pct"`
	Stage0MaxPct float64 `yaml:"stage0_max_pct"`
	Stage1MinPct float64 `yaml:"stage1_min_pct"`
	Stage1MaxPct float64 `yaml:"stage1_max_pct"`

	Stage1PowerExpMin float64 `yaml:"stage1_power_exp_min"`
	Stage1PowerExpMax float64 `yaml:"stage1_power_exp_max"`

	Stage0BaseHealth float64 `yaml:"stage0_base_health"`
	Stage0NoiseStd   float64 `yaml:"stage0_noise_std"`

	BaseFriction float64 `yaml:"base_friction"`
	KFriction    float64 `yaml:"k_friction"`
	Alpha        float64 `yaml:"alpha"`
	Beta         float64 `yaml:"beta"`
	AmbientTemp  float64 `yaml:"ambient_temp"`

	VBase       float64 `yaml:"v_base"`
	KVHealth    float64 `yaml:"k_v_health"`
	KVAlign     float64 `yaml:"k_v_align"`
	BaseCurrent float64 `yaml:"base_current"`
	KCurrent    float64 `yaml:"k_current"`
	NominalRPM  float64 `yaml:"nominal_rpm"`

	NoiseTemperature float64 `yaml:"noise_temperature"`
	NoiseVibration   float64 `yaml:"noise_vibration"`
	NoiseCurrent     float64 `yaml:"noise_current"`
	NoiseRPM         float64 `yaml:"noise_rpm"`

	SpikeProb      float64 `yaml:"spike_prob"`
	VibrationSpike float64 `yaml:"vibration_spike"`
	DropProb       float64 `yaml:"drop_prob"`

	TempDrift      float64 `yaml:"temp_drift"`
	VibrationDrift float64 `yaml:"vibration_drift"`

	ReactiveThreshold    float64 `yaml:"reactive_threshold"`
	ReactiveProbPerStep  float64 `yaml:"reactive_prob_per_step"`
	ScheduledInterval    int     `yaml:"scheduled_interval"`
	ScheduledWindowTicks int     `yaml:"scheduled_window_ticks"`
	ScheduledProb        float64 `yaml:"scheduled_prob"`

	AutoMaintenanceDelayMin        int     `yaml:"auto_maintenance_delay_min"`
	AutoMaintenanceDelayMax        int     `yaml:"auto_maintenance_delay_max"`
	AutoMaintenanceHealthThreshold float64 `yaml:"auto_maintenance_health_threshold"`

	RegimeBaseDuration      int     `yaml:"regime_base_duration"`
	RegimeDurationJitterMin float64 `yaml:"regime_duration_jitter_min"`
	RegimeDurationJitterMax float64 `yaml:"regime_duration_jitter_max"`

	DriftStartProb      float64 `yaml:"drift_start_prob"`
	FlatlineStartProb   float64 `yaml:"flatline_start_prob"`
	IntermittentProb    float64 `yaml:"intermittent_prob"`
	DriftRateMin        float64 `yaml:"drift_rate_min"`
	DriftRateMax        float64 `yaml:"drift_rate_max"`
	FlatlineDurationMin int     `yaml:"flatline_duration_min"`
	FlatlineDurationMax int     `yaml:"flatline_duration_max"`
	IntermittentDurMin  int     `yaml:"intermittent_duration_min"`
	IntermittentDurMax  int     `yaml:"intermittent_duration_max"`
	IntermittentDropPct float64 `yaml:"intermittent_drop_pct"`

	BatchFlushSize          int     `yaml:"batch_flush_size"`
	MaxRecords              int     `yaml:"max_records"`
	MaxMemoryMB             int     `yaml:"max_memory_mb"`
	EstimatedBytesPerRecord int     `yaml:"estimated_bytes_per_record"`
	EstimatedRecordsPerCycle int    `yaml:"estimated_records_per_cycle"`
}

// DefaultBaseConfig mirrors original_source/simulator/config.py's
// DEFAULT_CONFIG plus the stage/threshold/maintenance/regime/imperfection
// defaults scattered across factory.py, maintenance.py, and
// sensor_imperfections.py.
func DefaultBaseConfig() BaseConfig {
	return BaseConfig{
		TimeStepMinutes:         5,
		VibrationSampleDuration: 20,
		VibrationSampleRate:     10,

		WarningThreshold:  0.7,
		CriticalThreshold: 0.4,

		MinHoursToCritical: 1000,
		MaxHoursToCritical: 3000,

		Stage0MinPct: 0.70,
		Stage0MaxPct: 0.85,
		Stage1MinPct: 0.12,
		Stage1MaxPct: 0.22,

		Stage1PowerExpMin: 1.5,
		Stage1PowerExpMax: 3.5,

		Stage0BaseHealth: 0.95,
		Stage0NoiseStd:   0.01,

		BaseFriction: 0.05,
		KFriction:    0.4,
		Alpha:        0.8,
		Beta:         0.1,
		AmbientTemp:  25.0,

		VBase:       0.5,
		KVHealth:    6.0,
		KVAlign:     3.0,
		BaseCurrent: 10.0,
		KCurrent:    1.2,
		NominalRPM:  1800,

		NoiseTemperature: 0.6,
		NoiseVibration:   0.15,
		NoiseCurrent:     0.4,
		NoiseRPM:         8.0,

		SpikeProb:      0.005,
		VibrationSpike: 3.0,
		DropProb:       0.01,

		TempDrift:      5e-4,
		VibrationDrift: 2e-4,

		ReactiveThreshold:    0.25,
		ReactiveProbPerStep:  0.15,
		ScheduledInterval:    500,
		ScheduledWindowTicks: 10,
		ScheduledProb:        0.10,

		AutoMaintenanceDelayMin:        1,
		AutoMaintenanceDelayMax:        288,
		AutoMaintenanceHealthThreshold: 0.30,

		RegimeBaseDuration:      100,
		RegimeDurationJitterMin: 0.8,
		RegimeDurationJitterMax: 1.2,

		DriftStartProb:      0.002,
		FlatlineStartProb:   0.0005,
		IntermittentProb:    0.001,
		DriftRateMin:        1e-4,
		DriftRateMax:        5e-4,
		FlatlineDurationMin: 10,
		FlatlineDurationMax: 50,
		IntermittentDurMin:  5,
		IntermittentDurMax:  20,
		IntermittentDropPct: 0.30,

		BatchFlushSize:           50000,
		MaxRecords:               2000000,
		MaxMemoryMB:              12000,
		EstimatedBytesPerRecord:  200,
		EstimatedRecordsPerCycle: 15000,
	}
}

// RunConfig is the per-run record: fleet size, cycle target, multipliers,
// mode, and seed. RunID and the seed are what make a run reproducible and
// traceable.
type RunConfig struct {
	RunID string `yaml:"run_id"`
	Seed  int64  `yaml:"seed"`

	NumMotors               int     `yaml:"num_motors"`
	TargetMaintenanceCycles int     `yaml:"target_maintenance_cycles"`
	DegradationSpeed        float64 `yaml:"degradation_speed"`
	LoadFactor              float64 `yaml:"load_factor"`
	NoiseLevel              float64 `yaml:"noise_level"`

	Mode Mode `yaml:"mode"`

	AutoMaintenanceEnabled bool    `yaml:"auto_maintenance_enabled"`
	AlertThreshold         float64 `yaml:"alert_threshold"`
	MaxHistory             int     `yaml:"max_history"`
	MaxTicks               int     `yaml:"max_ticks"`
}

// NotifyConfig names the optional outbound channels the alerts package
// dispatches state-transition notifications to. Any unset URL disables
// that channel; none are required.
type NotifyConfig struct {
	SlackWebhookURL   string            `yaml:"slack_webhook_url"`
	SlackChannel      string            `yaml:"slack_channel"`
	WebhookURL        string            `yaml:"webhook_url"`
	WebhookHeaders    map[string]string `yaml:"webhook_headers"`
	ConsoleEnabled    bool              `yaml:"console_enabled"`
}

// Config is the top-level document a YAML file or environment snapshot
// resolves to.
type Config struct {
	Base   BaseConfig   `yaml:"base"`
	Run    RunConfig    `yaml:"run"`
	Notify NotifyConfig `yaml:"notify"`
}

// Validate enforces the Config-kind invariants named in the error handling
// design: ordering of the two health thresholds, positivity of durations,
// non-negative probabilities, and a sane stage-fraction budget.
func (c *Config) Validate() error {
	b := c.Base
	switch {
	case b.WarningThreshold <= b.CriticalThreshold:
		return fmt.Errorf("warning_threshold (%v) must exceed critical_threshold (%v)", b.WarningThreshold, b.CriticalThreshold)
	case b.MinHoursToCritical <= 0 || b.MaxHoursToCritical <= b.MinHoursToCritical:
		return fmt.Errorf("invalid hours-to-critical range [%v, %v]", b.MinHoursToCritical, b.MaxHoursToCritical)
	case b.Stage0MinPct+b.Stage1MinPct >= 1:
		return fmt.Errorf("stage0_min_pct + stage1_min_pct (%v) must be < 1", b.Stage0MinPct+b.Stage1MinPct)
	case b.DropProb < 0 || b.SpikeProb < 0 || b.ReactiveProbPerStep < 0:
		return fmt.Errorf("probabilities must be non-negative")
	case c.Run.NumMotors <= 0:
		return fmt.Errorf("num_motors must be positive, got %d", c.Run.NumMotors)
	case c.Run.TargetMaintenanceCycles <= 0:
		return fmt.Errorf("target_maintenance_cycles must be positive, got %d", c.Run.TargetMaintenanceCycles)
	}
	return nil
}

// Load loads a Config from a YAML file, expanding environment variables
// first — the same two-step process the platform's own config.Load uses.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	expanded := os.ExpandEnv(string(data))

	cfg := Config{Base: DefaultBaseConfig(), Run: defaultRunConfig(), Notify: NotifyConfig{ConsoleEnabled: true}}
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, err
	}
	if cfg.Run.RunID == "" {
		cfg.Run.RunID = uuid.New().String()
	}
	return &cfg, nil
}

func defaultRunConfig() RunConfig {
	return RunConfig{
		NumMotors:               1,
		TargetMaintenanceCycles: 1,
		DegradationSpeed:        1.0,
		LoadFactor:              1.0,
		NoiseLevel:              1.0,
		Mode:                    ModeBatch,
		AutoMaintenanceEnabled:  true,
		AlertThreshold:          0.5,
		MaxHistory:              100000,
		MaxTicks:                2_000_000,
		Seed:                    time.Now().UnixNano(),
	}
}

// LoadFromEnv builds a Config straight from the process environment, with
// hardcoded defaults for anything unset — the platform's LoadFromEnv idiom.
func LoadFromEnv() *Config {
	base := DefaultBaseConfig()
	base.TimeStepMinutes = getEnvFloat("TIME_STEP_MINUTES", base.TimeStepMinutes)
	base.WarningThreshold = getEnvFloat("WARNING_THRESHOLD", base.WarningThreshold)
	base.CriticalThreshold = getEnvFloat("CRITICAL_THRESHOLD", base.CriticalThreshold)
	base.MinHoursToCritical = getEnvFloat("MIN_HOURS_TO_CRITICAL", base.MinHoursToCritical)
	base.MaxHoursToCritical = getEnvFloat("MAX_HOURS_TO_CRITICAL", base.MaxHoursToCritical)
	base.DropProb = getEnvFloat("DROP_PROB", base.DropProb)
	base.SpikeProb = getEnvFloat("SPIKE_PROB", base.SpikeProb)
	base.BatchFlushSize = getEnvInt("BATCH_FLUSH_SIZE", base.BatchFlushSize)
	base.MaxRecords = getEnvInt("MAX_RECORDS", base.MaxRecords)
	base.MaxMemoryMB = getEnvInt("MAX_MEMORY_MB", base.MaxMemoryMB)

	run := defaultRunConfig()
	run.NumMotors = getEnvInt("NUM_MOTORS", run.NumMotors)
	run.TargetMaintenanceCycles = getEnvInt("TARGET_MAINTENANCE_CYCLES", run.TargetMaintenanceCycles)
	run.DegradationSpeed = getEnvFloat("DEGRADATION_SPEED", run.DegradationSpeed)
	run.LoadFactor = getEnvFloat("LOAD_FACTOR", run.LoadFactor)
	run.NoiseLevel = getEnvFloat("NOISE_LEVEL", run.NoiseLevel)
	run.Mode = Mode(getEnv("MODE", string(run.Mode)))
	run.AlertThreshold = getEnvFloat("ALERT_THRESHOLD", run.AlertThreshold)
	run.MaxHistory = getEnvInt("MAX_HISTORY", run.MaxHistory)
	run.MaxTicks = getEnvInt("MAX_TICKS", run.MaxTicks)
	if seed := os.Getenv("SEED"); seed != "" {
		if parsed, err := strconv.ParseInt(seed, 10, 64); err == nil {
			run.Seed = parsed
		}
	}
	run.RunID = uuid.New().String()

	notify := NotifyConfig{
		SlackWebhookURL: getEnv("SLACK_WEBHOOK_URL", ""),
		SlackChannel:    getEnv("SLACK_CHANNEL", ""),
		WebhookURL:      getEnv("NOTIFY_WEBHOOK_URL", ""),
		ConsoleEnabled:  getEnv("NOTIFY_CONSOLE", "true") == "true",
	}

	return &Config{Base: base, Run: run, Notify: notify}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
