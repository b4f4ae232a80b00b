// Package forecast predicts when the storage vessel will reach capacity.
package forecast

import (
	"fmt"
	"math"

	"termwatch/internal/alert"
	"termwatch/internal/snapshot"
)

const (
	// RiskLevelPercent is the fill level at or below which no forecast is made.
	RiskLevelPercent = 85.0

	defaultCapacityKL = 10000.0
)

// Params tunes the forecaster.
type Params struct {
	DischargeThresholdTPH  float64
	AvgInboundTruckRateTPH float64
}

// Result holds the numbers behind a forecast.
type Result struct {
	LevelPercent     float64
	DischargeRateTPH float64
	InboundFillTPH   float64
	NetRiseTPH       float64
	RemainingKL      float64
	HoursToFull      float64
}

// Evaluate runs the time-to-capacity model. ok is false when the vessel is
// not at risk.
func Evaluate(inv snapshot.Inventory, p Params) (res Result, ok bool) {
	res.LevelPercent = inv.LevelPercent
	res.DischargeRateTPH = inv.DischargeRateTPH

	if inv.LevelPercent <= RiskLevelPercent || inv.DischargeRateTPH >= p.DischargeThresholdTPH {
		return res, false
	}

	res.InboundFillTPH = math.Max(0, float64(inv.InboundTruckCount)*p.AvgInboundTruckRateTPH)
	res.NetRiseTPH = res.InboundFillTPH - inv.DischargeRateTPH
	if res.NetRiseTPH <= 0 {
		return res, false
	}

	capacity := inv.VesselCapacityKL
	if capacity <= 0 {
		capacity = defaultCapacityKL
	}
	current := inv.LevelPercent / 100 * capacity
	res.RemainingKL = math.Max(0, capacity-current)
	if res.RemainingKL > 0 {
		res.HoursToFull = res.RemainingKL / res.NetRiseTPH
	}

	return res, true
}

// Predict returns the vessel forecast alert, if any. It has no side effects.
func Predict(inv snapshot.Inventory, p Params) (alert.Alert, bool) {
	res, ok := Evaluate(inv, p)
	if !ok {
		return alert.Alert{}, false
	}

	return alert.Alert{
		Kind:     alert.KindInventoryForecast,
		Key:      alert.ForecastKey,
		Priority: alert.HoursToFullPriority(res.HoursToFull),
		Headline: fmt.Sprintf("Inventory Alert: %.1fh to Tank Top", res.HoursToFull),
		Insight: fmt.Sprintf(
			"Horton Spheres at %.1f%% and rising; discharge is %.1f TPH for %d inbound truck(s). "+
				"Increase decanting throughput to prevent gantry choke.",
			res.LevelPercent, res.DischargeRateTPH, inv.InboundTruckCount,
		),
		Action: alert.Action{
			Label: "Increase Discharge Rate",
			URL:   "/terminal/controls/pumps",
		},
		Data: Data{
			LevelPercent:          round2(res.LevelPercent),
			DischargeRateTPH:      round2(res.DischargeRateTPH),
			InboundTruckCount:     inv.InboundTruckCount,
			HoursToTankTop:        round2(res.HoursToFull),
			DischargeThresholdTPH: p.DischargeThresholdTPH,
		},
	}, true
}

// Data is the structured part of a forecast alert.
type Data struct {
	LevelPercent          float64 `json:"lpg_level_percent"`
	DischargeRateTPH      float64 `json:"truck_discharge_rate_tph"`
	InboundTruckCount     int     `json:"inbound_truck_count"`
	HoursToTankTop        float64 `json:"time_to_tank_top_hours"`
	DischargeThresholdTPH float64 `json:"discharge_threshold_tph"`
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
