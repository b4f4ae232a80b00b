package snapshot

import (
	"context"
	"errors"
	"testing"
	"time"

	"termwatch/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	bays          []store.BayRecord
	compliance    []store.ComplianceRecord
	incidents     []store.IncidentRecord
	bayErr        error
	complianceErr error
	incidentErr   error
}

func (f *fakeSource) ListBays(ctx context.Context) ([]store.BayRecord, error) {
	return f.bays, f.bayErr
}

func (f *fakeSource) ListCompliance(ctx context.Context) ([]store.ComplianceRecord, error) {
	return f.compliance, f.complianceErr
}

func (f *fakeSource) ListIncidents(ctx context.Context) ([]store.IncidentRecord, error) {
	return f.incidents, f.incidentErr
}

func ptr[T any](v T) *T { return &v }

var testNow = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

var defaultConfig = Config{
	VesselCapacityKL:          10000,
	FallbackDischargeRateTPH:  6,
	InboundTruckCount:         10,
	ThroughputPerActiveBayTPH: 6,
}

func TestWaitMinutes(t *testing.T) {
	t.Run("unknown entry", func(t *testing.T) {
		_, ok := WaitMinutes(nil, testNow)
		assert.False(t, ok)
	})

	t.Run("future entry clamps to zero", func(t *testing.T) {
		for _, ahead := range []time.Duration{time.Second, 10 * time.Minute, 48 * time.Hour} {
			m, ok := WaitMinutes(ptr(testNow.Add(ahead)), testNow)
			assert.True(t, ok)
			assert.Equal(t, 0, m, "ahead by %v", ahead)
		}
	})

	t.Run("floors partial minutes", func(t *testing.T) {
		m, ok := WaitMinutes(ptr(testNow.Add(-(50*time.Minute + 59*time.Second))), testNow)
		assert.True(t, ok)
		assert.Equal(t, 50, m)
	})

	t.Run("timezone independent", func(t *testing.T) {
		ist := time.FixedZone("IST", 5*3600+1800)
		entry := testNow.Add(-90 * time.Minute).In(ist)
		m, _ := WaitMinutes(&entry, testNow)
		assert.Equal(t, 90, m)
	})
}

func TestNormalizeLevelPercent(t *testing.T) {
	for r := int64(0); r <= 100; r++ {
		assert.Equal(t, float64(r), NormalizeLevelPercent(r, 10000))
	}

	assert.InDelta(t, 92.0, NormalizeLevelPercent(9200, 10000), 1e-9)
	assert.InDelta(t, 1.01, NormalizeLevelPercent(101, 10000), 1e-9)
	assert.Equal(t, 100.0, NormalizeLevelPercent(12000, 10000))
	assert.Equal(t, 0.0, NormalizeLevelPercent(5000, 0))
	assert.Equal(t, 0.0, NormalizeLevelPercent(5000, -1))
	assert.Equal(t, 0.0, NormalizeLevelPercent(-5, 10000))
}

func TestDischargeRate(t *testing.T) {
	bays := func(statuses ...string) []store.BayRecord {
		out := make([]store.BayRecord, 0, len(statuses))
		for _, s := range statuses {
			out = append(out, store.BayRecord{Status: ptr(s)})
		}
		return out
	}

	assert.Equal(t, 6.0, DischargeRate(bays("IDLE", "WAITING"), 6, 6), "fallback when none active")
	assert.Equal(t, 0.0, DischargeRate(nil, -3, 6), "negative fallback clamps")
	assert.Equal(t, 6.0, DischargeRate(bays("discharging"), 6, 6))
	assert.Equal(t, 18.0, DischargeRate(bays("DISCHARGING", "Decanting", "loading", "IDLE"), 6, 6))
	assert.Equal(t, 10.0, DischargeRate(bays("ACTIVE"), 10, 6), "fallback floors estimate")
	assert.Equal(t, 16.0, DischargeRate(bays("ACTIVE", "ACTIVE"), 6, 8), "per-bay throughput configurable")
	assert.Equal(t, 6.0, DischargeRate([]store.BayRecord{{}}, 6, 6), "nil status is inactive")
}

func TestIsOpen(t *testing.T) {
	assert.True(t, IsOpen(nil))
	assert.True(t, IsOpen(ptr("")))
	assert.True(t, IsOpen(ptr("open")))
	assert.True(t, IsOpen(ptr("false")))
	for _, s := range []string{"resolved", "RESOLVED", " Closed ", "true", "1"} {
		assert.False(t, IsOpen(ptr(s)), s)
	}
}

func TestBuild_OverdueWaitScenario(t *testing.T) {
	src := &fakeSource{
		bays: []store.BayRecord{
			{BayID: "B1", Status: ptr("WAITING"), TruckID: ptr("T1"), GateEntryTime: ptr(testNow.Add(-50 * time.Minute))},
		},
	}

	snap, err := NewBuilder(src, defaultConfig).Build(context.Background(), testNow)
	require.NoError(t, err)

	require.Len(t, snap.OverdueWaits, 1)
	w := snap.OverdueWaits[0]
	assert.Equal(t, "T1", w.TruckID)
	assert.Equal(t, "B1", w.BayID)
	assert.Equal(t, 50, w.WaitMinutes)
	assert.Equal(t, "WAITING", *w.Status)
}

func TestBuild_OverdueWaitBoundaries(t *testing.T) {
	src := &fakeSource{
		bays: []store.BayRecord{
			{BayID: "B1", TruckID: ptr("T-45"), GateEntryTime: ptr(testNow.Add(-45 * time.Minute))},
			{BayID: "B2", TruckID: ptr("T-46"), GateEntryTime: ptr(testNow.Add(-46 * time.Minute))},
			{BayID: "B3", TruckID: ptr(""), GateEntryTime: ptr(testNow.Add(-3 * time.Hour))},
			{BayID: "B4", GateEntryTime: ptr(testNow.Add(-3 * time.Hour))},
			{BayID: "B5", TruckID: ptr("T-nil")},
		},
	}

	snap, err := NewBuilder(src, defaultConfig).Build(context.Background(), testNow)
	require.NoError(t, err)

	require.Len(t, snap.OverdueWaits, 1)
	assert.Equal(t, "T-46", snap.OverdueWaits[0].TruckID)
	assert.Nil(t, snap.Bays[4].WaitMinutes)
}

func TestBuild_ComplianceJoin(t *testing.T) {
	expiry := time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)
	src := &fakeSource{
		bays: []store.BayRecord{
			{BayID: "B1", TruckID: ptr("T1")},
			{BayID: "B2", TruckID: ptr("T2")},
			{BayID: "B3"},
		},
		compliance: []store.ComplianceRecord{
			{TruckID: "T1", PESOExpiryDate: &expiry, SparkArrestorStatus: ptr("FITTED")},
		},
	}

	snap, err := NewBuilder(src, defaultConfig).Build(context.Background(), testNow)
	require.NoError(t, err)
	require.Len(t, snap.Bays, 3)

	require.NotNil(t, snap.Bays[0].Compliance)
	assert.Equal(t, "FITTED", *snap.Bays[0].Compliance.SparkArrestorStatus)
	assert.Equal(t, expiry, *snap.Bays[0].Compliance.PESOExpiryDate)

	require.NotNil(t, snap.Bays[1].Compliance, "truck without compliance row still gets a view")
	assert.Equal(t, "T2", snap.Bays[1].Compliance.TruckID)
	assert.Nil(t, snap.Bays[1].Compliance.SparkArrestorStatus)

	assert.Nil(t, snap.Bays[2].Compliance)
}

func TestBuild_Inventory(t *testing.T) {
	src := &fakeSource{
		bays: []store.BayRecord{
			{BayID: "B1", Status: ptr("DISCHARGING"), InventoryLevel: ptr(int64(8000))},
			{BayID: "B2", Status: ptr("IDLE"), InventoryLevel: ptr(int64(9250))},
			{BayID: "B3", Status: ptr("decanting")},
		},
	}

	snap, err := NewBuilder(src, defaultConfig).Build(context.Background(), testNow)
	require.NoError(t, err)

	inv := snap.Inventory
	assert.Equal(t, int64(9250), inv.RawLevel, "max reading wins")
	assert.Equal(t, 92.5, inv.LevelPercent)
	assert.Equal(t, 12.0, inv.DischargeRateTPH)
	assert.Equal(t, 10000.0, inv.VesselCapacityKL)
	assert.Equal(t, 10, inv.InboundTruckCount)
}

func TestBuild_NoLevelsReported(t *testing.T) {
	src := &fakeSource{bays: []store.BayRecord{{BayID: "B1"}}}

	snap, err := NewBuilder(src, defaultConfig).Build(context.Background(), testNow)
	require.NoError(t, err)
	assert.Equal(t, int64(0), snap.Inventory.RawLevel)
	assert.Equal(t, 0.0, snap.Inventory.LevelPercent)
}

func TestBuild_OpenIncidents(t *testing.T) {
	src := &fakeSource{
		incidents: []store.IncidentRecord{
			{IncidentID: "I1", ResolvedStatus: ptr("open")},
			{IncidentID: "I2", ResolvedStatus: ptr("Resolved")},
			{IncidentID: "I3"},
			{IncidentID: "I4", ResolvedStatus: ptr("1")},
		},
	}

	snap, err := NewBuilder(src, defaultConfig).Build(context.Background(), testNow)
	require.NoError(t, err)

	assert.Len(t, snap.Incidents, 4)
	require.Len(t, snap.OpenIncidents, 2)
	assert.Equal(t, "I1", snap.OpenIncidents[0].IncidentID)
	assert.Equal(t, "I3", snap.OpenIncidents[1].IncidentID)
	assert.Equal(t, []string{"I1", "I2", "I3", "I4"}, snap.IncidentIDs())
}

func TestBuild_SourceErrorsAbort(t *testing.T) {
	boom := errors.New("db unavailable")

	for name, src := range map[string]*fakeSource{
		"compliance": {complianceErr: boom},
		"bays":       {bayErr: boom},
		"incidents":  {incidentErr: boom},
	} {
		t.Run(name, func(t *testing.T) {
			snap, err := NewBuilder(src, defaultConfig).Build(context.Background(), testNow)
			assert.ErrorIs(t, err, boom)
			assert.Empty(t, snap.Bays)
			assert.True(t, snap.GeneratedAt.IsZero())
		})
	}
}

func TestBuild_Deterministic(t *testing.T) {
	src := &fakeSource{
		bays: []store.BayRecord{
			{BayID: "B1", Status: ptr("ACTIVE"), TruckID: ptr("T1"), InventoryLevel: ptr(int64(90)), GateEntryTime: ptr(testNow.Add(-70 * time.Minute))},
		},
		incidents: []store.IncidentRecord{{IncidentID: "I1"}},
	}
	b := NewBuilder(src, defaultConfig)

	first, err := b.Build(context.Background(), testNow)
	require.NoError(t, err)
	second, err := b.Build(context.Background(), testNow)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

// consistentSource records whether reads went through ReadConsistent.
type consistentSource struct {
	fakeSource
	viewCalls int
	viewErr   error
}

func (c *consistentSource) ReadConsistent(ctx context.Context, fn func(store.RecordSource) error) error {
	c.viewCalls++
	if c.viewErr != nil {
		return c.viewErr
	}
	return fn(&c.fakeSource)
}

func TestBuild_UsesConsistentView(t *testing.T) {
	src := &consistentSource{fakeSource: fakeSource{
		bays:      []store.BayRecord{{BayID: "B1", InventoryLevel: ptr(int64(50))}},
		incidents: []store.IncidentRecord{{IncidentID: "I1"}},
	}}

	snap, err := NewBuilder(src, defaultConfig).Build(context.Background(), testNow)

	require.NoError(t, err)
	assert.Equal(t, 1, src.viewCalls)
	assert.Len(t, snap.Bays, 1)
	assert.Equal(t, []string{"I1"}, snap.IncidentIDs())
}

func TestBuild_ConsistentViewErrors(t *testing.T) {
	beginErr := errors.New("begin read transaction: too many connections")
	_, err := NewBuilder(&consistentSource{viewErr: beginErr}, defaultConfig).Build(context.Background(), testNow)
	assert.ErrorIs(t, err, beginErr)

	readErr := errors.New("relation does not exist")
	src := &consistentSource{fakeSource: fakeSource{incidentErr: readErr}}
	_, err = NewBuilder(src, defaultConfig).Build(context.Background(), testNow)
	assert.ErrorIs(t, err, readErr)
	assert.ErrorContains(t, err, "read incidents")
}
