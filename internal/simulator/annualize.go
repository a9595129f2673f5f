package simulator

import (
	"math"
	"time"
)

const (
	daysPerYear = 365.25

	// minYears is about 3.65 days; shorter periods are not annualized.
	minYears = 0.01
)

// DaysHeld returns the number of whole days elapsed between from and to.
// Negative when to precedes from.
func DaysHeld(from, to time.Time) int {
	return int(math.Floor(to.Sub(from).Hours() / 24))
}

// Annualize converts a growth ratio (final value / amount invested) held from
// one date to another into a compound annual growth rate in percent.
func Annualize(ratio float64, from, to time.Time) Annualized {
	days := DaysHeld(from, to)
	if days <= 0 {
		return NotAnnualized
	}
	years := float64(days) / daysPerYear
	if years < minYears {
		return NotAnnualized
	}
	if ratio < 0 || math.IsNaN(ratio) || math.IsInf(ratio, 0) {
		return NotAnnualized
	}
	return AnnualizedRate((math.Pow(ratio, 1/years) - 1) * 100)
}
