package alerts

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"
)

// SlackNotifier posts motor alerts to a Slack incoming webhook.
type SlackNotifier struct {
	webhookURL string
	channel    string
	client     *http.Client
}

// NewSlackNotifier returns a SlackNotifier bound to webhookURL.
func NewSlackNotifier(webhookURL, channel string) *SlackNotifier {
	return &SlackNotifier{
		webhookURL: webhookURL,
		channel:    channel,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

func (n *SlackNotifier) Name() string { return "slack" }

// Notify posts alert as a colored Slack attachment.
func (n *SlackNotifier) Notify(alert MotorAlert) error {
	if n.webhookURL == "" {
		return nil
	}

	payload := map[string]interface{}{
		"channel": n.channel,
		"attachments": []map[string]interface{}{
			{
				"color": slackColor(alert.Severity),
				"title": fmt.Sprintf("[%s] %s", alert.Severity, alert.Title),
				"text":  alert.Message,
				"fields": []map[string]interface{}{
					{"title": "Motor", "value": alert.MotorID, "short": true},
					{"title": "Tick", "value": alert.Tick, "short": true},
				},
				"footer": "motorsim",
				"ts":     alert.CreatedAt.Unix(),
			},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	resp, err := n.client.Post(n.webhookURL, "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("slack returned status %d", resp.StatusCode)
	}
	return nil
}

func slackColor(severity Severity) string {
	switch severity {
	case SeverityCritical:
		return "#FF0000"
	case SeverityWarning:
		return "#FFCC00"
	default:
		return "#36A64F"
	}
}

// WebhookNotifier posts a JSON envelope to an arbitrary HTTP endpoint.
type WebhookNotifier struct {
	url     string
	headers map[string]string
	client  *http.Client
}

// NewWebhookNotifier returns a WebhookNotifier bound to url.
func NewWebhookNotifier(url string, headers map[string]string) *WebhookNotifier {
	return &WebhookNotifier{
		url:     url,
		headers: headers,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (n *WebhookNotifier) Name() string { return "webhook" }

// WebhookPayload is the envelope posted to the configured webhook URL.
type WebhookPayload struct {
	EventType string     `json:"event_type"`
	Alert     MotorAlert `json:"alert"`
	Timestamp time.Time  `json:"timestamp"`
}

// Notify posts alert wrapped in a WebhookPayload.
func (n *WebhookNotifier) Notify(alert MotorAlert) error {
	if n.url == "" {
		return nil
	}

	body, err := json.Marshal(WebhookPayload{EventType: "motor_alert", Alert: alert, Timestamp: time.Now()})
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range n.headers {
		req.Header.Set(k, v)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

// ConsoleNotifier logs alerts with the standard logger. It is wired when
// NotifyConfig.ConsoleEnabled is set, which both config loaders default to
// true, whether or not other notifiers are configured.
type ConsoleNotifier struct{}

// NewConsoleNotifier returns a ConsoleNotifier.
func NewConsoleNotifier() *ConsoleNotifier { return &ConsoleNotifier{} }

func (n *ConsoleNotifier) Name() string { return "console" }

func (n *ConsoleNotifier) Notify(alert MotorAlert) error {
	log.Printf("[ALERT] [%s] motor=%d tick=%d %s: %s", alert.Severity, alert.MotorID, alert.Tick, alert.Title, alert.Message)
	return nil
}
