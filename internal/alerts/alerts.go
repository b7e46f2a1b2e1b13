// Package alerts dispatches notifications for motor state transitions
// (health crossing a threshold, a motor entering the paused or failed set,
// a failed motor being restored). There is no alert for maintenance events.
// It mirrors the platform's own alerts engine
// but trades the rule-evaluation pipeline for the closed set of transitions
// the simulation engine already knows about, and dispatches synchronously
// rather than over a buffered channel — the simulation engine is
// single-threaded by design, and a notification queue would be one more
// place for nondeterminism to creep in.
package alerts

import (
	"fmt"
	"time"

	"github.com/savegress/motorsim/internal/config"
)

// Severity is the closed set of notification severities.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// MotorAlert is one notification about a motor's state.
type MotorAlert struct {
	MotorID   int
	Tick      int
	Severity  Severity
	Title     string
	Message   string
	CreatedAt time.Time
}

// Notifier delivers a MotorAlert to some external channel.
type Notifier interface {
	Name() string
	Notify(alert MotorAlert) error
}

// Dispatcher holds the configured notifiers and the small amount of
// cooldown state that keeps a flapping motor from paging the same channel
// every tick.
type Dispatcher struct {
	notifiers []Notifier
	lastSent  map[string]time.Time
	cooldown  time.Duration
}

// NewDispatcher builds a dispatcher with a fixed per-(motor,title) cooldown.
func NewDispatcher(cooldown time.Duration) *Dispatcher {
	return &Dispatcher{
		lastSent: make(map[string]time.Time),
		cooldown: cooldown,
	}
}

// NewDispatcherFromConfig wires a dispatcher from NotifyConfig, adding
// whichever notifiers are configured.
func NewDispatcherFromConfig(cfg config.NotifyConfig) *Dispatcher {
	d := NewDispatcher(30 * time.Second)
	if cfg.SlackWebhookURL != "" {
		d.Add(NewSlackNotifier(cfg.SlackWebhookURL, cfg.SlackChannel))
	}
	if cfg.WebhookURL != "" {
		d.Add(NewWebhookNotifier(cfg.WebhookURL, cfg.WebhookHeaders))
	}
	if cfg.ConsoleEnabled {
		d.Add(NewConsoleNotifier())
	}
	return d
}

// Add registers a notifier.
func (d *Dispatcher) Add(n Notifier) {
	d.notifiers = append(d.notifiers, n)
}

// Send dispatches alert to every registered notifier, skipping delivery if
// an alert with the same motor id and title fired within the cooldown
// window. Dispatch errors from individual notifiers are swallowed — a
// broken webhook must never interrupt the simulation.
func (d *Dispatcher) Send(alert MotorAlert, now time.Time) {
	key := fmt.Sprintf("%s:%d", alert.Title, alert.MotorID)
	if last, ok := d.lastSent[key]; ok && now.Sub(last) < d.cooldown {
		return
	}
	d.lastSent[key] = now

	for _, n := range d.notifiers {
		_ = n.Notify(alert)
	}
}

// Transition notification helpers. The engine's live mode sends
// MotorPaused, MotorFailed, and MotorRestored; no engine path sends
// HealthCrossed.

// HealthCrossed reports a motor crossing below a named threshold.
func HealthCrossed(motorID, tick int, health, threshold float64, label string) MotorAlert {
	return MotorAlert{
		MotorID:   motorID,
		Tick:      tick,
		Severity:  SeverityWarning,
		Title:     "health_threshold_crossed",
		Message:   fmt.Sprintf("%s threshold crossed: health=%.3f threshold=%.3f", label, health, threshold),
		CreatedAt: time.Now(),
	}
}

// MotorPaused reports a motor entering the live-mode paused set.
func MotorPaused(motorID, tick int) MotorAlert {
	return MotorAlert{
		MotorID: motorID, Tick: tick, Severity: SeverityWarning,
		Title: "motor_paused", Message: "motor paused pending a maintenance decision",
		CreatedAt: time.Now(),
	}
}

// MotorFailed reports a motor moving into the failed set.
func MotorFailed(motorID, tick int) MotorAlert {
	return MotorAlert{
		MotorID: motorID, Tick: tick, Severity: SeverityCritical,
		Title: "motor_failed", Message: "motor marked failed, awaiting restore",
		CreatedAt: time.Now(),
	}
}

// MotorRestored reports a failed motor being brought back into service.
func MotorRestored(motorID, tick int) MotorAlert {
	return MotorAlert{
		MotorID: motorID, Tick: tick, Severity: SeverityInfo,
		Title: "motor_restored", Message: "motor restored with fresh life",
		CreatedAt: time.Now(),
	}
}
