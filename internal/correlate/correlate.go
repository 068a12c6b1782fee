// Package correlate derives percentage-change series from price columns and
// measures their Pearson correlation.
package correlate

import (
	"math"
)

// PercentageChanges returns period-over-period changes in percent. The result
// has len(series)-1 elements; a change from a zero price is reported as 0.
func PercentageChanges(series []float64) []float64 {
	if len(series) < 2 {
		return []float64{}
	}
	out := make([]float64, 0, len(series)-1)
	for i := 1; i < len(series); i++ {
		prev := series[i-1]
		if prev == 0 {
			out = append(out, 0)
			continue
		}
		out = append(out, (series[i]-prev)/prev*100)
	}
	return out
}

// Pearson returns the correlation coefficient of xs and ys in [-1, 1].
// It returns 0 for empty or mismatched inputs and for constant series.
func Pearson(xs, ys []float64) float64 {
	n := len(xs)
	if n == 0 || len(ys) != n {
		return 0
	}
	if constant(xs) || constant(ys) {
		return 0
	}
	meanX := mean(xs)
	meanY := mean(ys)

	var sumXY, sumXX, sumYY float64
	for i := 0; i < n; i++ {
		dx := xs[i] - meanX
		dy := ys[i] - meanY
		sumXY += dx * dy
		sumXX += dx * dx
		sumYY += dy * dy
	}
	if sumXX == 0 || sumYY == 0 {
		return 0
	}
	r := sumXY / math.Sqrt(sumXX*sumYY)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0
	}
	if r > 1 {
		return 1
	}
	if r < -1 {
		return -1
	}
	return r
}

// Truncate cuts both series to the shorter length. Timestamps are not
// consulted; element i of one series is paired with element i of the other.
func Truncate(a, b []float64) ([]float64, []float64) {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	return a[:n], b[:n]
}

func mean(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range v {
		sum += x
	}
	return sum / float64(len(v))
}

// constantTolerance is the relative spread below which a series counts as
// constant. Compounded prices leave changes like 10, 10, 9.999999999999995.
const constantTolerance = 1e-9

func constant(v []float64) bool {
	lo, hi := v[0], v[0]
	for _, x := range v[1:] {
		if x < lo {
			lo = x
		}
		if x > hi {
			hi = x
		}
	}
	spread := hi - lo
	if spread == 0 {
		return true
	}
	return spread <= constantTolerance*math.Max(math.Abs(lo), math.Abs(hi))
}
