// Package records defines the engine's external observation record — the
// one value type that escapes the engine by value, never by reference.
package records

// Observation is one motor's reading for one tick. Field order matches the
// spec's CSV-stable schema: time, motor_id, cycle_id, motor_health,
// health_state, degradation_stage, temperature, vibration, current, rpm,
// hours_since_maintenance, regime, maintenance_event. A nil sensor pointer
// is a missing value, distinct from zero.
type Observation struct {
	Time                  int     `json:"time"`
	MotorID               int     `json:"motor_id"`
	CycleID               int     `json:"cycle_id"`
	MotorHealth           float64 `json:"motor_health"`
	HealthState           string  `json:"health_state"`
	DegradationStage      string  `json:"degradation_stage"`
	Temperature           *float64 `json:"temperature"`
	Vibration             *float64 `json:"vibration"`
	Current               *float64 `json:"current"`
	RPM                   *float64 `json:"rpm"`
	HoursSinceMaintenance float64 `json:"hours_since_maintenance"`
	Regime                string  `json:"regime"`
	MaintenanceEvent      string  `json:"maintenance_event,omitempty"`
}
