package chart

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/newthinker/stocksim/internal/core"
)

const (
	width        = 960
	height       = 480
	marginLeft   = 80
	marginRight  = 24
	marginTop    = 48
	marginBottom = 56
	yTicks       = 5
)

var palette = []string{"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd", "#8c564b", "#e377c2", "#7f7f7f"}

// WriteSVG renders series as a line chart with a date axis, a value axis and
// a legend.
func WriteSVG(w io.Writer, title string, series []Series) error {
	tMin, tMax, vMin, vMax, ok := bounds(series)
	if !ok {
		return core.Errorf(core.ErrEmptyResult, "nothing to plot")
	}
	if vMin == vMax {
		vMin, vMax = vMin-1, vMax+1
	}
	span := tMax.Sub(tMin)
	if span <= 0 {
		span = 24 * time.Hour
	}

	plotW := float64(width - marginLeft - marginRight)
	plotH := float64(height - marginTop - marginBottom)
	x := func(t time.Time) float64 {
		return marginLeft + float64(t.Sub(tMin))/float64(span)*plotW
	}
	y := func(v float64) float64 {
		return marginTop + (vMax-v)/(vMax-vMin)*plotH
	}

	var b bytes.Buffer
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" font-family="sans-serif" font-size="12">`+"\n",
		width, height, width, height)
	fmt.Fprintf(&b, `<rect width="%d" height="%d" fill="#ffffff"/>`+"\n", width, height)
	fmt.Fprintf(&b, `<text x="%d" y="28" font-size="16" text-anchor="middle">%s</text>`+"\n", width/2, escape(title))

	// Value grid
	for i := 0; i <= yTicks; i++ {
		v := vMin + (vMax-vMin)*float64(i)/yTicks
		py := y(v)
		fmt.Fprintf(&b, `<line x1="%d" y1="%.1f" x2="%d" y2="%.1f" stroke="#e0e0e0"/>`+"\n", marginLeft, py, width-marginRight, py)
		fmt.Fprintf(&b, `<text x="%d" y="%.1f" text-anchor="end" dominant-baseline="middle">$%.0f</text>`+"\n", marginLeft-8, py, v)
	}

	// Date axis, one label per quarter
	for _, t := range quarterTicks(tMin, tMax) {
		px := x(t)
		fmt.Fprintf(&b, `<line x1="%.1f" y1="%d" x2="%.1f" y2="%d" stroke="#e0e0e0"/>`+"\n", px, marginTop, px, height-marginBottom)
		fmt.Fprintf(&b, `<text x="%.1f" y="%d" text-anchor="middle">%s</text>`+"\n", px, height-marginBottom+20, t.Format("2006-01"))
	}
	fmt.Fprintf(&b, `<rect x="%d" y="%d" width="%.0f" height="%.0f" fill="none" stroke="#555555"/>`+"\n",
		marginLeft, marginTop, plotW, plotH)

	for i, s := range series {
		color := palette[i%len(palette)]
		coords := make([]string, len(s.Points))
		for j, p := range s.Points {
			coords[j] = fmt.Sprintf("%.1f,%.1f", x(p.Time), y(p.Value))
		}
		fmt.Fprintf(&b, `<polyline fill="none" stroke="%s" stroke-width="2" points="%s"/>`+"\n", color, strings.Join(coords, " "))

		ly := marginTop + 16 + i*18
		fmt.Fprintf(&b, `<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="%s" stroke-width="3"/>`+"\n",
			marginLeft+12, ly, marginLeft+32, ly, color)
		fmt.Fprintf(&b, `<text x="%d" y="%d" dominant-baseline="middle">%s</text>`+"\n", marginLeft+38, ly, escape(s.Label))
	}

	b.WriteString("</svg>\n")
	_, err := w.Write(b.Bytes())
	return err
}

// quarterTicks returns the first day of each quarter within [from, to].
func quarterTicks(from, to time.Time) []time.Time {
	y, m, _ := from.Date()
	q := time.Date(y, m-(m-1)%3, 1, 0, 0, 0, 0, time.UTC)
	if q.Before(from) {
		q = q.AddDate(0, 3, 0)
	}
	var ticks []time.Time
	for ; !q.After(to); q = q.AddDate(0, 3, 0) {
		ticks = append(ticks, q)
	}
	return ticks
}

func escape(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}
