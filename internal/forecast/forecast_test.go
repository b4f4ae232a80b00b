package forecast

import (
	"testing"

	"termwatch/internal/alert"
	"termwatch/internal/snapshot"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var defaultParams = Params{DischargeThresholdTPH: 12, AvgInboundTruckRateTPH: 1.25}

func inventory(level, discharge float64, trucks int) snapshot.Inventory {
	return snapshot.Inventory{
		LevelPercent:      level,
		VesselCapacityKL:  10000,
		InboundTruckCount: trucks,
		DischargeRateTPH:  discharge,
	}
}

func TestPredict_NinetyTwoPercentScenario(t *testing.T) {
	// 800 KL of headroom rising at 7.5 TPH.
	res, ok := Evaluate(inventory(92, 5, 10), defaultParams)
	require.True(t, ok)
	assert.InDelta(t, 12.5, res.InboundFillTPH, 1e-9)
	assert.InDelta(t, 7.5, res.NetRiseTPH, 1e-9)
	assert.InDelta(t, 800, res.RemainingKL, 1e-6)
	assert.InDelta(t, 106.667, res.HoursToFull, 1e-3)

	a, ok := Predict(inventory(92, 5, 10), defaultParams)
	require.True(t, ok)
	assert.Equal(t, alert.PriorityInfo, a.Priority)
	assert.Equal(t, alert.ForecastKey, a.Key)
	assert.Equal(t, alert.KindInventoryForecast, a.Kind)
	assert.Equal(t, "Inventory Alert: 106.7h to Tank Top", a.Headline)
	assert.Contains(t, a.Insight, "92.0%")
	assert.Contains(t, a.Insight, "5.0 TPH for 10 inbound truck(s)")
	assert.Equal(t, alert.Action{Label: "Increase Discharge Rate", URL: "/terminal/controls/pumps"}, a.Action)

	data, ok := a.Data.(Data)
	require.True(t, ok)
	assert.Equal(t, 106.67, data.HoursToTankTop)
	assert.Equal(t, 12.0, data.DischargeThresholdTPH)
}

func TestPredict_CriticalScenario(t *testing.T) {
	// 100 KL of headroom rising at 100 TPH.
	a, ok := Predict(inventory(99, 5, 84), defaultParams)
	require.True(t, ok)
	assert.Equal(t, alert.PriorityCritical, a.Priority)
	assert.Equal(t, "Inventory Alert: 1.0h to Tank Top", a.Headline)

	data, ok := a.Data.(Data)
	require.True(t, ok)
	assert.Equal(t, 1.0, data.HoursToTankTop)
}

func TestPredict_SilentAtOrBelowRiskLevel(t *testing.T) {
	for _, level := range []float64{0, 50, 80, 85} {
		for _, discharge := range []float64{0, 1, 5, 11.9} {
			for _, trucks := range []int{0, 10, 1000} {
				_, ok := Predict(inventory(level, discharge, trucks), defaultParams)
				assert.False(t, ok, "level=%v discharge=%v trucks=%d", level, discharge, trucks)
			}
		}
	}
}

func TestPredict_SilentWhenDischargeMeetsThreshold(t *testing.T) {
	for _, level := range []float64{86, 95, 100} {
		for _, discharge := range []float64{12, 12.01, 50} {
			_, ok := Predict(inventory(level, discharge, 1000), defaultParams)
			assert.False(t, ok, "level=%v discharge=%v", level, discharge)
		}
	}
}

func TestPredict_SilentWhenNotRising(t *testing.T) {
	// 4 trucks * 1.25 = 5 TPH inbound, equal to discharge.
	_, ok := Predict(inventory(95, 5, 4), defaultParams)
	assert.False(t, ok)

	_, ok = Predict(inventory(95, 5, 0), defaultParams)
	assert.False(t, ok)

	_, ok = Predict(inventory(95, 5, 10), Params{DischargeThresholdTPH: 12, AvgInboundTruckRateTPH: -2})
	assert.False(t, ok, "negative inbound rate clamps to zero")
}

func TestPredict_PriorityBands(t *testing.T) {
	// 10000KL vessel, discharge 5 TPH, 1.25 TPH per inbound truck.
	cases := []struct {
		inv  snapshot.Inventory
		want alert.Priority
	}{
		{snapshot.Inventory{LevelPercent: 100, VesselCapacityKL: 10000, InboundTruckCount: 10, DischargeRateTPH: 5}, alert.PriorityCritical},
		// remaining 100KL, net 100 -> 1h
		{snapshot.Inventory{LevelPercent: 99, VesselCapacityKL: 10000, InboundTruckCount: 84, DischargeRateTPH: 5}, alert.PriorityCritical},
		// remaining 100KL, net 20 -> 5h
		{snapshot.Inventory{LevelPercent: 99, VesselCapacityKL: 10000, InboundTruckCount: 20, DischargeRateTPH: 5}, alert.PriorityWarning},
		// remaining 100KL, net 10 -> 10h
		{snapshot.Inventory{LevelPercent: 99, VesselCapacityKL: 10000, InboundTruckCount: 12, DischargeRateTPH: 5}, alert.PriorityInfo},
	}
	for _, c := range cases {
		a, ok := Predict(c.inv, defaultParams)
		require.True(t, ok, "%+v", c.inv)
		assert.Equal(t, c.want, a.Priority, "%+v", c.inv)
	}
}

func TestPredict_DefaultCapacity(t *testing.T) {
	inv := inventory(92, 5, 10)
	inv.VesselCapacityKL = 0

	res, ok := Evaluate(inv, defaultParams)
	require.True(t, ok)
	assert.InDelta(t, 800, res.RemainingKL, 1e-6)
}
