// Package detect locates the price and symbol columns of a dataset.
package detect

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/KaramelBytes/pricecorr-cli/internal/dataset"
	"github.com/rs/zerolog/log"
)

// ErrNoPriceColumn signals that a dataset has no usable price column.
var ErrNoPriceColumn = errors.New("no detectable price column")

// PrimaryColumn is always tried first.
const PrimaryColumn = "Close"

// FallbackColumns are tried in order when Close is missing or empty.
var FallbackColumns = []string{"High", "Low", "Open", "Price", "Last"}

var symbolMarkers = []string{"symbol", "pair"}

// PriceColumn returns the column to analyze, spelled as in the dataset.
// A column qualifies only if it holds at least one nonzero numeric value.
//
// When cfg.TargetColumns is set they are tried first; with AutoDetectColumns
// off they are the only candidates.
func PriceColumn(ds *dataset.Dataset, cfg dataset.AnalysisConfiguration) (string, bool) {
	if ds.Len() == 0 {
		log.Debug().Str("component", "detect").Msg("no rows to detect a price column in")
		return "", false
	}
	cols := ds.Columns()
	log.Debug().Str("component", "detect").Str("dataset", ds.Name).Int("rows", ds.Len()).Strs("columns", cols).Msg("detecting price column")

	candidates := make([]string, 0, len(cfg.TargetColumns)+1+len(FallbackColumns))
	for _, t := range cfg.TargetColumns {
		if t = strings.TrimSpace(t); t != "" {
			candidates = append(candidates, t)
		}
	}
	if cfg.AutoDetectColumns || len(candidates) == 0 {
		candidates = append(candidates, PrimaryColumn)
		candidates = append(candidates, FallbackColumns...)
	}

	for _, want := range candidates {
		col, ok := match(cols, want)
		if !ok {
			continue
		}
		if vals := NumericValues(ds, col); len(vals) > 0 {
			log.Debug().Str("component", "detect").Str("column", col).Floats64("head", head(vals, 5)).Msg("price column found")
			return col, true
		}
	}
	return "", false
}

// NumericValues returns the nonzero finite numeric values of col. Text cells count
// when they parse as invariant floats.
func NumericValues(ds *dataset.Dataset, col string) []float64 {
	var out []float64
	for _, r := range ds.Rows {
		var f float64
		switch v := r.Value(col).(type) {
		case float64:
			f = v
		case string:
			p, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				continue
			}
			f = p
		default:
			continue
		}
		if f != 0 && !math.IsNaN(f) && !math.IsInf(f, 0) {
			out = append(out, f)
		}
	}
	return out
}

// SymbolColumn returns the first column whose name mentions a symbol or pair.
func SymbolColumn(ds *dataset.Dataset) (string, bool) {
	for _, c := range ds.Columns() {
		if isSymbolName(c) {
			return c, true
		}
	}
	return "", false
}

// Symbol returns the first non-empty text value found in a symbol or pair
// column of the first row.
func Symbol(ds *dataset.Dataset) (string, bool) {
	if ds.Len() == 0 {
		return "", false
	}
	first := ds.Rows[0]
	for _, c := range first.Keys() {
		if !isSymbolName(c) {
			continue
		}
		if s, ok := first.Text(c); ok && strings.TrimSpace(s) != "" {
			return s, true
		}
	}
	return "", false
}

func isSymbolName(col string) bool {
	lc := strings.ToLower(col)
	for _, m := range symbolMarkers {
		if strings.Contains(lc, m) {
			return true
		}
	}
	return false
}

func match(cols []string, want string) (string, bool) {
	for _, c := range cols {
		if strings.EqualFold(c, want) {
			return c, true
		}
	}
	return "", false
}

func head(v []float64, n int) []float64 {
	if len(v) < n {
		return v
	}
	return v[:n]
}
