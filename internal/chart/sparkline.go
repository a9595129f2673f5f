package chart

import "strings"

var sparkChars = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Sparkline renders values as a line of block characters at most width
// runes wide, sampling evenly when there are more values than columns.
func Sparkline(values []float64, width int) string {
	if len(values) == 0 || width <= 0 {
		return ""
	}
	values = sample(values, width)

	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = min(lo, v)
		hi = max(hi, v)
	}

	// If all values are the same, show a flat line
	if lo == hi {
		return strings.Repeat(string(sparkChars[3]), len(values))
	}

	var b strings.Builder
	for _, v := range values {
		index := int((v - lo) / (hi - lo) * float64(len(sparkChars)-1))
		index = max(0, min(index, len(sparkChars)-1))
		b.WriteRune(sparkChars[index])
	}
	return b.String()
}

// sample picks n evenly spaced values, always keeping the first and last.
func sample(values []float64, n int) []float64 {
	if len(values) <= n {
		return values
	}
	if n == 1 {
		return values[len(values)-1:]
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = values[i*(len(values)-1)/(n-1)]
	}
	return out
}
