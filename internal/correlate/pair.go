package correlate

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/KaramelBytes/pricecorr-cli/internal/dataset"
	"github.com/KaramelBytes/pricecorr-cli/internal/detect"
	"github.com/rs/zerolog/log"
)

// Correlation is one pair result. Value is the coefficient scaled to [-100, 100].
type Correlation struct {
	Key     string    `json:"key" yaml:"key"`
	Value   float64   `json:"value" yaml:"value"`
	Columns [2]string `json:"columns" yaml:"columns"`
	Samples int       `json:"samples" yaml:"samples"`
}

// Result holds correlations in insertion order with unique keys.
type Result []Correlation

// Add appends c, replacing an existing entry with the same key.
func (r Result) Add(c Correlation) Result {
	for i := range r {
		if r[i].Key == c.Key {
			r[i] = c
			return r
		}
	}
	return append(r, c)
}

// Values returns the correlation percentages in order.
func (r Result) Values() []float64 {
	out := make([]float64, len(r))
	for i, c := range r {
		out[i] = c.Value
	}
	return out
}

// Datasets correlates the percentage changes of the detected price columns
// of a and b. The result is empty when either side has fewer than two rows,
// no price column, or no overlapping changes.
func Datasets(a, b *dataset.Dataset, cfg dataset.AnalysisConfiguration) Result {
	res := Result{}
	if a.Len() < 2 || b.Len() < 2 {
		return res
	}
	col1, ok1 := detect.PriceColumn(a, cfg)
	col2, ok2 := detect.PriceColumn(b, cfg)
	if !ok1 || !ok2 {
		log.Debug().Str("component", "correlate").Bool("file1", ok1).Bool("file2", ok2).Msg("price column missing")
		return res
	}

	ch1 := PercentageChanges(Prices(a, col1))
	ch2 := PercentageChanges(Prices(b, col2))
	x, y := Truncate(ch1, ch2)
	if len(x) == 0 {
		return res
	}
	r := Pearson(x, y)
	return res.Add(Correlation{
		Key:     PairKey(a, b),
		Value:   r * 100,
		Columns: [2]string{col1, col2},
		Samples: len(x),
	})
}

// PairKey names a pair as "<left>-<right>" using detected symbols, falling
// back to dataset names and then to File1/File2.
func PairKey(a, b *dataset.Dataset) string {
	return fmt.Sprintf("%s-%s", label(a, "File1"), label(b, "File2"))
}

func label(ds *dataset.Dataset, fallback string) string {
	if s, ok := detect.Symbol(ds); ok {
		return s
	}
	if ds != nil && ds.Name != "" {
		return ds.Name
	}
	return fallback
}

// Prices extracts col as a price series. Numeric cells are used as is; text is
// cleaned of currency marks and retried digits-only; anything else is 0.
func Prices(ds *dataset.Dataset, col string) []float64 {
	out := make([]float64, 0, ds.Len())
	for _, r := range ds.Rows {
		out = append(out, price(r.Value(col)))
	}
	return out
}

func price(v any) float64 {
	f := rawPrice(v)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func rawPrice(v any) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case string:
		s := strings.Trim(strings.ReplaceAll(x, ",", "."), `$ "`)
		if s == "" {
			return 0
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
		clean := strings.Map(func(r rune) rune {
			if (r >= '0' && r <= '9') || r == '.' || r == '-' {
				return r
			}
			return -1
		}, s)
		if f, err := strconv.ParseFloat(clean, 64); err == nil {
			return f
		}
	}
	return 0
}
