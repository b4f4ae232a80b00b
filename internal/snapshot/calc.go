package snapshot

import (
	"math"
	"strings"
	"time"

	"termwatch/internal/store"
)

// activeStatuses are bay states that move product out of the vessel.
var activeStatuses = map[string]struct{}{
	"DISCHARGING": {},
	"DECANTING":   {},
	"LOADING":     {},
	"ACTIVE":      {},
}

// closedResolutions mark an incident as no longer open.
var closedResolutions = map[string]struct{}{
	"resolved": {},
	"closed":   {},
	"true":     {},
	"1":        {},
}

// WaitMinutes returns whole minutes since gate entry. ok is false when the
// entry time is unknown. An entry in the future yields zero.
func WaitMinutes(entry *time.Time, now time.Time) (minutes int, ok bool) {
	if entry == nil {
		return 0, false
	}
	elapsed := now.Sub(*entry)
	if elapsed < 0 {
		return 0, true
	}
	return int(elapsed / time.Minute), true
}

// NormalizeLevelPercent converts a raw vessel reading into a percentage.
// Readings up to 100 are already percentages; larger readings are absolute
// volumes against capacityKL.
func NormalizeLevelPercent(raw int64, capacityKL float64) float64 {
	if raw <= 0 {
		return 0
	}
	if raw <= 100 {
		return float64(raw)
	}
	if capacityKL <= 0 {
		return 0
	}
	return math.Min(100, float64(raw)/capacityKL*100)
}

// DischargeRate estimates vessel outflow from the number of bays in an active
// state. perActiveBay is the throughput of one active discharge path.
func DischargeRate(bays []store.BayRecord, fallbackTPH, perActiveBayTPH float64) float64 {
	active := 0
	for _, b := range bays {
		if b.Status == nil {
			continue
		}
		if _, ok := activeStatuses[strings.ToUpper(*b.Status)]; ok {
			active++
		}
	}
	if active == 0 {
		return math.Max(0, fallbackTPH)
	}
	return math.Max(fallbackTPH, float64(active)*perActiveBayTPH)
}

// IsOpen reports whether an incident's resolution status leaves it open.
func IsOpen(resolvedStatus *string) bool {
	if resolvedStatus == nil {
		return true
	}
	_, closed := closedResolutions[strings.ToLower(strings.TrimSpace(*resolvedStatus))]
	return !closed
}
