// Package alert defines the alert candidates the watchdog evaluates and the
// JSON payload delivered to the notification webhook.
package alert

import (
	"strings"
	"time"
)

// Priority is the operator-facing urgency of an alert.
type Priority string

const (
	PriorityCritical Priority = "Critical"
	PriorityWarning  Priority = "Warning"
	PriorityInfo     Priority = "Info"
)

// Kind identifies the event that produced an alert.
type Kind string

const (
	KindNewSafetyIncident Kind = "new_safety_incident"
	KindWaitTimeExceeded  Kind = "wait_time_exceeded"
	KindInventoryForecast Kind = "inventory_forecast"
)

// ForecastKey is the single dedup slot for vessel forecasts. One per terminal.
const ForecastKey = "inventory-tank-top-forecast"

// Action points the operator at the surface where the alert can be handled.
type Action struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// Alert is a candidate produced during a cycle. It is recomputed every cycle
// and gated by the dedup store before dispatch.
type Alert struct {
	Kind     Kind
	Key      string
	Priority Priority
	Headline string
	Insight  string
	Action   Action
	Data     any
}

// Payload is the webhook body.
type Payload struct {
	EventType   Kind     `json:"event_type"`
	AlertID     string   `json:"alert_id"`
	Priority    Priority `json:"priority"`
	Headline    string   `json:"headline"`
	Insight     string   `json:"insight"`
	Action      Action   `json:"action"`
	Data        any      `json:"data"`
	TriggeredAt string   `json:"triggered_at"`
}

// Payload stamps the alert with its dispatch time.
func (a Alert) Payload(triggeredAt time.Time) Payload {
	return Payload{
		EventType:   a.Kind,
		AlertID:     a.Key,
		Priority:    a.Priority,
		Headline:    a.Headline,
		Insight:     a.Insight,
		Action:      a.Action,
		Data:        a.Data,
		TriggeredAt: triggeredAt.UTC().Format(time.RFC3339Nano),
	}
}

// IncidentPriority maps a free-text severity to a priority.
func IncidentPriority(severity string) Priority {
	switch strings.ToUpper(strings.TrimSpace(severity)) {
	case "HIGH", "CRITICAL":
		return PriorityCritical
	case "MED", "WARNING":
		return PriorityWarning
	default:
		return PriorityInfo
	}
}

// WaitPriority maps a truck wait to a priority.
func WaitPriority(waitMinutes int) Priority {
	switch {
	case waitMinutes >= 90:
		return PriorityCritical
	case waitMinutes >= 60:
		return PriorityWarning
	default:
		return PriorityInfo
	}
}

// HoursToFullPriority maps a time-to-capacity forecast to a priority.
func HoursToFullPriority(hours float64) Priority {
	switch {
	case hours <= 2:
		return PriorityCritical
	case hours <= 6:
		return PriorityWarning
	default:
		return PriorityInfo
	}
}
