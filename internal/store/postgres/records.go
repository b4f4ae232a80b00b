package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"termwatch/internal/store"
)

// reader runs the record queries against a pool or a transaction.
type reader struct {
	q store.DBTransaction
}

// ListBays returns every bay row.
func (s *Store) ListBays(ctx context.Context) ([]store.BayRecord, error) {
	return reader{s.db}.ListBays(ctx)
}

// ListCompliance returns every truck compliance row.
func (s *Store) ListCompliance(ctx context.Context) ([]store.ComplianceRecord, error) {
	return reader{s.db}.ListCompliance(ctx)
}

// ListIncidents returns every safety incident row.
func (s *Store) ListIncidents(ctx context.Context) ([]store.IncidentRecord, error) {
	return reader{s.db}.ListIncidents(ctx)
}

// ListIncidentIDs returns the identifiers of every safety incident.
func (s *Store) ListIncidentIDs(ctx context.Context) ([]string, error) {
	return reader{s.db}.ListIncidentIDs(ctx)
}

func (r reader) ListBays(ctx context.Context) ([]store.BayRecord, error) {
	query := `
		SELECT bay_id, status, current_truck_id, lpg_inventory_level, gate_entry_time
		FROM terminal_ops
		ORDER BY bay_id ASC
	`

	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list bays: %w", err)
	}
	defer rows.Close()

	var bays []store.BayRecord
	for rows.Next() {
		var (
			b       store.BayRecord
			status  sql.NullString
			truckID sql.NullString
			level   sql.NullInt64
			entry   sql.NullTime
		)
		if err := rows.Scan(&b.BayID, &status, &truckID, &level, &entry); err != nil {
			return nil, fmt.Errorf("scan bay: %w", err)
		}
		b.Status = nullString(status)
		b.TruckID = nullString(truckID)
		if level.Valid {
			v := level.Int64
			b.InventoryLevel = &v
		}
		if entry.Valid {
			t := entry.Time
			b.GateEntryTime = &t
		}
		bays = append(bays, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list bays rows: %w", err)
	}

	return bays, nil
}

func (r reader) ListCompliance(ctx context.Context) ([]store.ComplianceRecord, error) {
	query := `
		SELECT truck_id, peso_expiry_date, spark_arrestor_status
		FROM truck_compliance
	`

	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list compliance: %w", err)
	}
	defer rows.Close()

	var records []store.ComplianceRecord
	for rows.Next() {
		var (
			c      store.ComplianceRecord
			expiry sql.NullTime
			spark  sql.NullString
		)
		if err := rows.Scan(&c.TruckID, &expiry, &spark); err != nil {
			return nil, fmt.Errorf("scan compliance: %w", err)
		}
		if expiry.Valid {
			t := expiry.Time
			c.PESOExpiryDate = &t
		}
		c.SparkArrestorStatus = nullString(spark)
		records = append(records, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list compliance rows: %w", err)
	}

	return records, nil
}

func (r reader) ListIncidents(ctx context.Context) ([]store.IncidentRecord, error) {
	query := `
		SELECT incident_id, severity, description, resolved_status
		FROM safety_incidents
		ORDER BY incident_id ASC
	`

	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list incidents: %w", err)
	}
	defer rows.Close()

	var incidents []store.IncidentRecord
	for rows.Next() {
		var (
			i        store.IncidentRecord
			severity sql.NullString
			desc     sql.NullString
			resolved sql.NullString
		)
		if err := rows.Scan(&i.IncidentID, &severity, &desc, &resolved); err != nil {
			return nil, fmt.Errorf("scan incident: %w", err)
		}
		i.Severity = nullString(severity)
		i.Description = nullString(desc)
		i.ResolvedStatus = nullString(resolved)
		incidents = append(incidents, i)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list incidents rows: %w", err)
	}

	return incidents, nil
}

func (r reader) ListIncidentIDs(ctx context.Context) ([]string, error) {
	rows, err := r.q.QueryContext(ctx, "SELECT incident_id FROM safety_incidents")
	if err != nil {
		return nil, fmt.Errorf("list incident ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan incident id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list incident ids rows: %w", err)
	}

	return ids, nil
}

func nullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}
