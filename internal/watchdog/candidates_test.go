package watchdog

import (
	"testing"

	"termwatch/internal/alert"
	"termwatch/internal/snapshot"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCandidates_SkipsUnknownIncidentsAndBlankTrucks(t *testing.T) {
	snap := snapshot.Snapshot{
		Incidents: []snapshot.Incident{{IncidentID: "I1", Severity: ptr("high")}},
		OverdueWaits: []snapshot.OverdueWait{
			{TruckID: "  ", BayID: "B1", WaitMinutes: 80},
			{TruckID: " T7 ", BayID: "B2", WaitMinutes: 61},
		},
	}

	batch := Candidates(snap, []string{"I1", "GONE"}, defaultForecast)

	require.Len(t, batch, 2)
	assert.Equal(t, "incident-I1", batch[0].Key)
	assert.Equal(t, alert.PriorityCritical, batch[0].Priority)
	assert.Equal(t, "truck-wait-T7", batch[1].Key)
	assert.Equal(t, alert.PriorityWarning, batch[1].Priority)
	assert.Equal(t, "/controller/console", batch[1].Action.URL)
}

func TestCandidates_EmptySnapshot(t *testing.T) {
	assert.Empty(t, Candidates(snapshot.Snapshot{}, nil, defaultForecast))
}
