package store

import (
	"context"
	"database/sql"
)

// DBTransaction defines the methods shared by *sql.DB and *sql.Tx
// This allows us to pass either a connection pool or an active transaction to the repository methods.
type DBTransaction interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// RecordSource is read-only access to the three record kinds the watchdog observes.
type RecordSource interface {
	// ListBays returns every terminal_ops row ordered by bay ID.
	ListBays(ctx context.Context) ([]BayRecord, error)

	// ListCompliance returns every truck_compliance row.
	ListCompliance(ctx context.Context) ([]ComplianceRecord, error)

	// ListIncidents returns every safety_incidents row ordered by incident ID.
	ListIncidents(ctx context.Context) ([]IncidentRecord, error)
}

// ConsistentReader is implemented by sources that can serve several lists
// from one point-in-time view.
type ConsistentReader interface {
	ReadConsistent(ctx context.Context, fn func(RecordSource) error) error
}

// IncidentIDLister returns only incident identifiers. Used to seed the
// known-incident baseline at startup without loading descriptions.
type IncidentIDLister interface {
	ListIncidentIDs(ctx context.Context) ([]string, error)
}

// Pinger reports database reachability for readiness probes.
type Pinger interface {
	Ping(ctx context.Context) error
}
