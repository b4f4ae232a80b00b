package snapshot

import (
	"context"
	"fmt"
	"time"

	"termwatch/internal/store"
)

// Config holds the vessel and throughput parameters used while building.
type Config struct {
	VesselCapacityKL          float64
	FallbackDischargeRateTPH  float64
	InboundTruckCount         int
	ThroughputPerActiveBayTPH float64
}

// Builder produces Snapshots from a record source.
type Builder struct {
	source store.RecordSource
	config Config
}

// NewBuilder creates a Builder.
func NewBuilder(source store.RecordSource, config Config) *Builder {
	if config.ThroughputPerActiveBayTPH <= 0 {
		config.ThroughputPerActiveBayTPH = 6.0
	}
	return &Builder{source: source, config: config}
}

// Build reads all three record kinds and assembles a Snapshot as of now.
// Any read error aborts the build. Sources implementing
// store.ConsistentReader are read from a single point-in-time view.
func (b *Builder) Build(ctx context.Context, now time.Time) (Snapshot, error) {
	var r records

	read := func(src store.RecordSource) error { return r.load(ctx, src) }
	var err error
	if cr, ok := b.source.(store.ConsistentReader); ok {
		err = cr.ReadConsistent(ctx, read)
	} else {
		err = read(b.source)
	}
	if err != nil {
		return Snapshot{}, err
	}

	return Assemble(now, b.config, r.bays, r.compliance, r.incidents), nil
}

type records struct {
	bays       []store.BayRecord
	compliance []store.ComplianceRecord
	incidents  []store.IncidentRecord
}

func (r *records) load(ctx context.Context, src store.RecordSource) error {
	var err error
	if r.compliance, err = src.ListCompliance(ctx); err != nil {
		return fmt.Errorf("read compliance: %w", err)
	}
	if r.bays, err = src.ListBays(ctx); err != nil {
		return fmt.Errorf("read bays: %w", err)
	}
	if r.incidents, err = src.ListIncidents(ctx); err != nil {
		return fmt.Errorf("read incidents: %w", err)
	}
	return nil
}

// Assemble is the pure part of Build.
func Assemble(now time.Time, cfg Config, bays []store.BayRecord, compliance []store.ComplianceRecord, incidents []store.IncidentRecord) Snapshot {
	if cfg.ThroughputPerActiveBayTPH <= 0 {
		cfg.ThroughputPerActiveBayTPH = 6.0
	}

	byTruck := make(map[string]store.ComplianceRecord, len(compliance))
	for _, c := range compliance {
		byTruck[c.TruckID] = c
	}

	snap := Snapshot{
		GeneratedAt:   now.UTC(),
		Bays:          make([]BayView, 0, len(bays)),
		Incidents:     make([]Incident, 0, len(incidents)),
		OpenIncidents: []Incident{},
		OverdueWaits:  []OverdueWait{},
	}

	var (
		rawLevel int64
		seen     bool
	)
	for _, row := range bays {
		view := BayView{
			BayID:          row.BayID,
			Status:         row.Status,
			TruckID:        row.TruckID,
			InventoryLevel: row.InventoryLevel,
			GateEntryTime:  row.GateEntryTime,
		}

		wait, known := WaitMinutes(row.GateEntryTime, now)
		if known {
			w := wait
			view.WaitMinutes = &w
		}

		if row.InventoryLevel != nil && (!seen || *row.InventoryLevel > rawLevel) {
			rawLevel = *row.InventoryLevel
			seen = true
		}

		truckID := ""
		if row.TruckID != nil {
			truckID = *row.TruckID
		}
		if truckID != "" {
			cv := &ComplianceView{TruckID: truckID}
			if c, ok := byTruck[truckID]; ok {
				cv.PESOExpiryDate = c.PESOExpiryDate
				cv.SparkArrestorStatus = c.SparkArrestorStatus
			}
			view.Compliance = cv

			if known && wait > OverdueWaitMinutes {
				snap.OverdueWaits = append(snap.OverdueWaits, OverdueWait{
					TruckID:       truckID,
					BayID:         row.BayID,
					WaitMinutes:   wait,
					GateEntryTime: row.GateEntryTime,
					Status:        row.Status,
				})
			}
		}

		snap.Bays = append(snap.Bays, view)
	}

	for _, row := range incidents {
		inc := Incident{
			IncidentID:     row.IncidentID,
			Severity:       row.Severity,
			Description:    row.Description,
			ResolvedStatus: row.ResolvedStatus,
		}
		snap.Incidents = append(snap.Incidents, inc)
		if IsOpen(row.ResolvedStatus) {
			snap.OpenIncidents = append(snap.OpenIncidents, inc)
		}
	}

	snap.Inventory = Inventory{
		LevelPercent:      round2(NormalizeLevelPercent(rawLevel, cfg.VesselCapacityKL)),
		RawLevel:          rawLevel,
		VesselCapacityKL:  cfg.VesselCapacityKL,
		InboundTruckCount: cfg.InboundTruckCount,
		DischargeRateTPH:  round2(DischargeRate(bays, cfg.FallbackDischargeRateTPH, cfg.ThroughputPerActiveBayTPH)),
	}

	return snap
}
