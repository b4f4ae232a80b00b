package watchdog

import (
	"fmt"
	"strings"

	"termwatch/internal/alert"
	"termwatch/internal/forecast"
	"termwatch/internal/snapshot"
)

const defaultIncidentInsight = "New safety incident requires immediate review."

// IncidentAlert builds the alert for a newly observed safety incident.
func IncidentAlert(inc snapshot.Incident) alert.Alert {
	severity := ""
	if inc.Severity != nil {
		severity = *inc.Severity
	}
	insight := defaultIncidentInsight
	if inc.Description != nil && *inc.Description != "" {
		insight = *inc.Description
	}

	return alert.Alert{
		Kind:     alert.KindNewSafetyIncident,
		Key:      "incident-" + inc.IncidentID,
		Priority: alert.IncidentPriority(severity),
		Headline: fmt.Sprintf("Safety Incident Raised: %s", inc.IncidentID),
		Insight:  insight,
		Action: alert.Action{
			Label: "Open Incident",
			URL:   "/hse/incidents/" + inc.IncidentID,
		},
		Data: inc,
	}
}

// WaitAlert builds the alert for a truck past the wait threshold.
func WaitAlert(w snapshot.OverdueWait) alert.Alert {
	return alert.Alert{
		Kind:     alert.KindWaitTimeExceeded,
		Key:      "truck-wait-" + w.TruckID,
		Priority: alert.WaitPriority(w.WaitMinutes),
		Headline: fmt.Sprintf("Queue Delay: Truck %s waiting %d minutes", w.TruckID, w.WaitMinutes),
		Insight: fmt.Sprintf(
			"Truck %s crossed the %d-minute wait threshold at Bay %s. "+
				"Re-sequence gantry allocation to prevent dispatch slippage.",
			w.TruckID, snapshot.OverdueWaitMinutes, w.BayID,
		),
		Action: alert.Action{
			Label: "Open Controller Console",
			URL:   "/controller/console",
		},
		Data: w,
	}
}

// Candidates assembles this cycle's alert batch in dispatch order: new
// incidents, overdue waits, then the vessel forecast.
func Candidates(snap snapshot.Snapshot, newIncidentIDs []string, params forecast.Params) []alert.Alert {
	var batch []alert.Alert

	byID := snap.IncidentByID()
	for _, id := range newIncidentIDs {
		inc, ok := byID[id]
		if !ok {
			continue
		}
		batch = append(batch, IncidentAlert(inc))
	}

	for _, w := range snap.OverdueWaits {
		w.TruckID = strings.TrimSpace(w.TruckID)
		if w.TruckID == "" {
			continue
		}
		batch = append(batch, WaitAlert(w))
	}

	if a, ok := forecast.Predict(snap.Inventory, params); ok {
		batch = append(batch, a)
	}

	return batch
}
