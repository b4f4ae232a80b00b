// Package api contains shared JSON response structs.
// This package is shared between watchctl and the watchdog ops server.
package api

import "time"

// StatusResponse is the body of the probe endpoints.
type StatusResponse struct {
	Status string `json:"status"`
}

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// ForecastRequest is the input of a one-shot forecast.
type ForecastRequest struct {
	LevelPercent      float64 `json:"lpg_level_percent"`
	DischargeRateTPH  float64 `json:"truck_discharge_rate_tph"`
	InboundTruckCount int     `json:"inbound_truck_count"`
	VesselCapacityKL  float64 `json:"horton_sphere_capacity_kl"`
}

// ForecastResponse reports a one-shot forecast. Alert is nil when the vessel
// is not at risk.
type ForecastResponse struct {
	AtRisk      bool        `json:"at_risk"`
	HoursToFull *float64    `json:"time_to_tank_top_hours,omitempty"`
	Alert       interface{} `json:"alert,omitempty"`
	EvaluatedAt time.Time   `json:"evaluated_at"`
}
