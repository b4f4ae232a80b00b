// Package snapshot assembles the per-cycle view of the terminal from the
// bay, compliance and incident record sources.
package snapshot

import (
	"math"
	"time"
)

// OverdueWaitMinutes is the wait after which a truck is reported as overdue.
const OverdueWaitMinutes = 45

// ComplianceView is the compliance data joined onto a bay's active truck.
type ComplianceView struct {
	TruckID             string     `json:"truck_id"`
	PESOExpiryDate      *time.Time `json:"peso_expiry_date"`
	SparkArrestorStatus *string    `json:"spark_arrestor_status"`
}

// BayView is a bay row joined with its truck's compliance record.
type BayView struct {
	BayID          string          `json:"bay_id"`
	Status         *string         `json:"status"`
	TruckID        *string         `json:"current_truck_id"`
	InventoryLevel *int64          `json:"lpg_inventory_level"`
	GateEntryTime  *time.Time      `json:"gate_entry_time"`
	WaitMinutes    *int            `json:"wait_time_minutes"` // nil when entry time is unknown
	Compliance     *ComplianceView `json:"truck_compliance"`
}

// Incident is a safety incident as seen in this cycle.
type Incident struct {
	IncidentID     string  `json:"incident_id"`
	Severity       *string `json:"severity"`
	Description    *string `json:"description"`
	ResolvedStatus *string `json:"resolved_status"`
}

// OverdueWait is a truck that has been waiting longer than OverdueWaitMinutes.
type OverdueWait struct {
	TruckID       string     `json:"truck_id"`
	BayID         string     `json:"bay_id"`
	WaitMinutes   int        `json:"wait_time_minutes"`
	GateEntryTime *time.Time `json:"gate_entry_time"`
	Status        *string    `json:"status"`
}

// Inventory summarizes the shared vessel.
type Inventory struct {
	LevelPercent      float64 `json:"lpg_level_percent"`
	RawLevel          int64   `json:"raw_lpg_level"`
	VesselCapacityKL  float64 `json:"horton_sphere_capacity_kl"`
	InboundTruckCount int     `json:"inbound_truck_count"`
	DischargeRateTPH  float64 `json:"truck_discharge_rate_tph"`
}

// Snapshot is the immutable result of one build. Treat it as a value: nothing
// downstream mutates its slices.
type Snapshot struct {
	GeneratedAt   time.Time     `json:"generated_at"`
	Bays          []BayView     `json:"terminal_ops"`
	Incidents     []Incident    `json:"safety_incidents"`
	OpenIncidents []Incident    `json:"open_safety_incidents"`
	OverdueWaits  []OverdueWait `json:"overdue_waits"`
	Inventory     Inventory     `json:"inventory"`
}

// IncidentByID indexes the snapshot's incidents.
func (s Snapshot) IncidentByID() map[string]Incident {
	m := make(map[string]Incident, len(s.Incidents))
	for _, i := range s.Incidents {
		m[i.IncidentID] = i
	}
	return m
}

// IncidentIDs returns the non-empty incident identifiers in snapshot order.
func (s Snapshot) IncidentIDs() []string {
	ids := make([]string, 0, len(s.Incidents))
	for _, i := range s.Incidents {
		if i.IncidentID != "" {
			ids = append(ids, i.IncidentID)
		}
	}
	return ids
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
