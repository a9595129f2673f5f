// Package chart turns price histories into value-over-time series and renders
// them as SVG line charts or terminal sparklines.
package chart

import (
	"time"

	"github.com/newthinker/stocksim/internal/core"
)

// Point is one value of a series.
type Point struct {
	Time  time.Time
	Value float64
}

// Series is the value of an investment over time.
type Series struct {
	Label  string
	Points []Point
}

// Values returns the series values in order.
func (s Series) Values() []float64 {
	values := make([]float64, len(s.Points))
	for i, p := range s.Points {
		values[i] = p.Value
	}
	return values
}

// Last returns the final value, or zero for an empty series.
func (s Series) Last() float64 {
	if len(s.Points) == 0 {
		return 0
	}
	return s.Points[len(s.Points)-1].Value
}

// Normalize scales the closes of h so the first bar is worth amount: each
// point is close/firstClose*amount.
func Normalize(h *core.History, amount float64) (Series, error) {
	if !(amount > 0) {
		return Series{}, core.Errorf(core.ErrInvalidInput, "amount must be positive, got %v", amount)
	}

	var first float64
	s := Series{Label: h.Symbol}
	for _, bar := range h.Bars {
		if bar.Close <= 0 {
			continue
		}
		if first == 0 {
			first = bar.Close
		}
		s.Points = append(s.Points, Point{Time: bar.Time, Value: bar.Close / first * amount})
	}

	if len(s.Points) == 0 {
		return Series{}, core.Errorf(core.ErrDataUnavailable, "no prices for %s", h.Symbol)
	}
	return s, nil
}

// bounds returns the time and value extent of all series.
func bounds(series []Series) (tMin, tMax time.Time, vMin, vMax float64, ok bool) {
	for _, s := range series {
		for _, p := range s.Points {
			if !ok {
				tMin, tMax, vMin, vMax, ok = p.Time, p.Time, p.Value, p.Value, true
				continue
			}
			if p.Time.Before(tMin) {
				tMin = p.Time
			}
			if p.Time.After(tMax) {
				tMax = p.Time
			}
			vMin = min(vMin, p.Value)
			vMax = max(vMax, p.Value)
		}
	}
	return
}
