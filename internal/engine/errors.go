package engine

import (
	"fmt"
	"math"

	"github.com/savegress/motorsim/pkg/records"
)

// ErrorKind is the closed set of error categories the engine can raise,
// matching the error handling design: Precondition and Config errors are
// fatal to the current call; Exhaustion is non-fatal and carries a reason
// tag instead; Numeric is fatal and names the offending motor and field.
type ErrorKind string

const (
	KindPrecondition ErrorKind = "Precondition"
	KindConfig       ErrorKind = "Config"
	KindExhaustion   ErrorKind = "Exhaustion"
	KindNumeric      ErrorKind = "Numeric"
)

// Error is the engine's single custom error type, following the platform's
// per-package *Error{Code, Message} idiom (here Kind plays the role of
// Code).
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Sentinels for the common precondition violations, so callers can
// errors.Is against a stable value the way the platform's device registry
// exposes ErrDeviceNotFound/ErrGroupNotFound.
var (
	ErrNotInitialized = &Error{Kind: KindPrecondition, Message: "engine: step called before init"}
	ErrUnknownMotor   = &Error{Kind: KindPrecondition, Message: "engine: unknown motor id"}
)

func newNumericError(motorID int, field string, value float64) *Error {
	return &Error{Kind: KindNumeric, Message: fmt.Sprintf("engine: non-finite %s=%v for motor %d", field, value, motorID)}
}

func newConfigError(message string) *Error {
	return &Error{Kind: KindConfig, Message: message}
}

// checkFinite scans a freshly produced record for NaN/Inf in any
// hidden-state-derived numeric field. It names the offending motor and
// field per the error handling design's Numeric-error contract: these
// indicate a config bug (e.g. a degenerate stage duration), not a
// legitimate observation, so they are fatal rather than folded into the
// missing-value convention.
func checkFinite(r records.Observation) *Error {
	if !finite(r.MotorHealth) {
		return newNumericError(r.MotorID, "motor_health", r.MotorHealth)
	}
	if !finite(r.HoursSinceMaintenance) {
		return newNumericError(r.MotorID, "hours_since_maintenance", r.HoursSinceMaintenance)
	}
	if r.Temperature != nil && !finite(*r.Temperature) {
		return newNumericError(r.MotorID, "temperature", *r.Temperature)
	}
	if r.Vibration != nil && !finite(*r.Vibration) {
		return newNumericError(r.MotorID, "vibration", *r.Vibration)
	}
	if r.Current != nil && !finite(*r.Current) {
		return newNumericError(r.MotorID, "current", *r.Current)
	}
	if r.RPM != nil && !finite(*r.RPM) {
		return newNumericError(r.MotorID, "rpm", *r.RPM)
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
