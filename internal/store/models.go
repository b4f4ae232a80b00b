// Package store contains the database layer for the terminal watchdog.
package store

import "time"

// BayRecord is one row of terminal_ops: a physical loading/unloading position.
// The source system overwrites rows in place; the watchdog only reads them.
type BayRecord struct {
	BayID          string
	Status         *string
	TruckID        *string
	InventoryLevel *int64 // percent when <= 100, absolute KL otherwise
	GateEntryTime  *time.Time
}

// ComplianceRecord is one row of truck_compliance, keyed by truck ID.
type ComplianceRecord struct {
	TruckID             string
	PESOExpiryDate      *time.Time
	SparkArrestorStatus *string
}

// IncidentRecord is one row of safety_incidents.
type IncidentRecord struct {
	IncidentID     string
	Severity       *string
	Description    *string
	ResolvedStatus *string
}
