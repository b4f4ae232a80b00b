package watchdog

import (
	"context"
	"fmt"
	"sort"

	"termwatch/internal/dedup"
	"termwatch/internal/store"
)

// State is the process-lifetime memory of the watchdog. It is owned by the
// caller and handed to every cycle.
type State struct {
	known map[string]struct{}
	Dedup dedup.Store
}

// NewState creates a State whose baseline is knownIDs. Incidents in the
// baseline never raise a new-incident alert.
func NewState(knownIDs []string, d dedup.Store) *State {
	s := &State{known: make(map[string]struct{}, len(knownIDs)), Dedup: d}
	for _, id := range knownIDs {
		if id != "" {
			s.known[id] = struct{}{}
		}
	}
	return s
}

// SeedState reads the current incident IDs and builds the initial State.
func SeedState(ctx context.Context, lister store.IncidentIDLister, d dedup.Store) (*State, error) {
	ids, err := lister.ListIncidentIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("seed known incidents: %w", err)
	}
	return NewState(ids, d), nil
}

// DiffIncidents returns the IDs in current that were not known, sorted, and
// then replaces the known set with current. The replacement is unconditional:
// an incident counts as seen once observed, whether or not its alert is
// delivered.
func (s *State) DiffIncidents(current []string) []string {
	next := make(map[string]struct{}, len(current))
	var fresh []string
	for _, id := range current {
		if id == "" {
			continue
		}
		if _, dup := next[id]; dup {
			continue
		}
		next[id] = struct{}{}
		if _, ok := s.known[id]; !ok {
			fresh = append(fresh, id)
		}
	}
	sort.Strings(fresh)
	s.known = next
	return fresh
}

// KnownIncidents returns the known IDs in sorted order.
func (s *State) KnownIncidents() []string {
	ids := make([]string, 0, len(s.known))
	for id := range s.known {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
