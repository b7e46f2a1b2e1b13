package alerts

import (
	"testing"
	"time"

	"github.com/savegress/motorsim/internal/config"
)

type recordingNotifier struct {
	name  string
	calls []MotorAlert
}

func (r *recordingNotifier) Name() string { return r.name }

func (r *recordingNotifier) Notify(alert MotorAlert) error {
	r.calls = append(r.calls, alert)
	return nil
}

func TestSendDeliversToEveryRegisteredNotifier(t *testing.T) {
	d := NewDispatcher(time.Minute)
	a := &recordingNotifier{name: "a"}
	b := &recordingNotifier{name: "b"}
	d.Add(a)
	d.Add(b)

	d.Send(MotorPaused(1, 10), time.Unix(0, 0))

	if len(a.calls) != 1 || len(b.calls) != 1 {
		t.Fatalf("expected both notifiers to receive the alert, got a=%d b=%d", len(a.calls), len(b.calls))
	}
}

func TestSendSuppressesRepeatsWithinCooldown(t *testing.T) {
	d := NewDispatcher(time.Minute)
	n := &recordingNotifier{name: "n"}
	d.Add(n)

	base := time.Unix(1000, 0)
	d.Send(MotorPaused(1, 10), base)
	d.Send(MotorPaused(1, 11), base.Add(30*time.Second))

	if len(n.calls) != 1 {
		t.Fatalf("expected the second alert within the cooldown window to be suppressed, got %d deliveries", len(n.calls))
	}
}

func TestSendFiresAgainAfterCooldownElapses(t *testing.T) {
	d := NewDispatcher(time.Minute)
	n := &recordingNotifier{name: "n"}
	d.Add(n)

	base := time.Unix(1000, 0)
	d.Send(MotorPaused(1, 10), base)
	d.Send(MotorPaused(1, 12), base.Add(61*time.Second))

	if len(n.calls) != 2 {
		t.Fatalf("expected a second delivery once the cooldown elapsed, got %d deliveries", len(n.calls))
	}
}

func TestCooldownKeyIsPerMotorAndTitle(t *testing.T) {
	d := NewDispatcher(time.Minute)
	n := &recordingNotifier{name: "n"}
	d.Add(n)

	base := time.Unix(1000, 0)
	d.Send(MotorPaused(1, 10), base)
	d.Send(MotorPaused(2, 10), base.Add(time.Second))
	d.Send(MotorFailed(1, 11), base.Add(2*time.Second))

	if len(n.calls) != 3 {
		t.Fatalf("expected a different motor id and a different title to bypass the cooldown, got %d deliveries", len(n.calls))
	}
}

func TestNewDispatcherFromConfigWiresOnlyConfiguredNotifiers(t *testing.T) {
	d := NewDispatcherFromConfig(config.NotifyConfig{})
	if len(d.notifiers) != 0 {
		t.Fatalf("expected no notifiers wired when nothing is configured, got %d", len(d.notifiers))
	}
}
