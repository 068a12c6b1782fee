// Package analysis profiles loaded datasets for the inspect command.
package analysis

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/KaramelBytes/pricecorr-cli/internal/correlate"
	"github.com/KaramelBytes/pricecorr-cli/internal/dataset"
	"github.com/KaramelBytes/pricecorr-cli/internal/detect"
)

// Options controls profiling.
type Options struct {
	// SampleRows is how many leading rows to include in the report; 0 means none.
	SampleRows int
	// Outliers counts values with a robust z-score above OutlierThreshold.
	Outliers         bool
	OutlierThreshold float64
	// Configuration drives price column detection.
	Configuration dataset.AnalysisConfiguration
}

// DefaultOptions returns reasonable defaults for dataset profiling.
func DefaultOptions() Options {
	return Options{
		SampleRows:       5,
		Outliers:         true,
		OutlierThreshold: 3.5,
		Configuration:    dataset.DefaultConfiguration(),
	}
}

// Report is a markdown-friendly profile of one dataset.
type Report struct {
	Name         string          `json:"name" yaml:"name"`
	Format       string          `json:"format" yaml:"format"`
	Rows         int             `json:"rows" yaml:"rows"`
	Cols         []ColumnSummary `json:"columns" yaml:"columns"`
	PriceColumn  string          `json:"priceColumn,omitempty" yaml:"price_column,omitempty"`
	SymbolColumn string          `json:"symbolColumn,omitempty" yaml:"symbol_column,omitempty"`
	Symbol       string          `json:"symbol,omitempty" yaml:"symbol,omitempty"`
	// Changes summarizes the period-over-period percentage changes of the
	// price column.
	Changes  *NumSummary `json:"changes,omitempty" yaml:"changes,omitempty"`
	Samples  [][]string  `json:"samples,omitempty" yaml:"samples,omitempty"`
	Warnings []string    `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// ColumnSummary captures the stored kind and statistics of one column.
type ColumnSummary struct {
	Name       string `json:"name" yaml:"name"`
	Kind       string `json:"kind" yaml:"kind"` // numeric|date|text|empty
	NonNull    int    `json:"nonNull" yaml:"non_null"`
	Missing    int    `json:"missing" yaml:"missing"`
	Unique     int    `json:"unique,omitempty" yaml:"unique,omitempty"`
	NumSummary `yaml:",inline"`
	First      time.Time `json:"first,omitempty" yaml:"first,omitempty"`
	Last       time.Time `json:"last,omitempty" yaml:"last,omitempty"`
	// Outliers (robust Z via MAD)
	OutliersCount    int      `json:"outliers,omitempty" yaml:"outliers,omitempty"`
	OutlierThreshold float64  `json:"outlierThreshold,omitempty" yaml:"outlier_threshold,omitempty"`
	ExampleTexts     []string `json:"examples,omitempty" yaml:"examples,omitempty"`
}

// NumSummary holds numeric statistics.
type NumSummary struct {
	Count int     `json:"count,omitempty" yaml:"count,omitempty"`
	Min   float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max   float64 `json:"max,omitempty" yaml:"max,omitempty"`
	Mean  float64 `json:"mean,omitempty" yaml:"mean,omitempty"`
	Std   float64 `json:"std,omitempty" yaml:"std,omitempty"`
}

// Profile summarizes ds column by column and reports the price column the
// correlator would pick.
func Profile(ds *dataset.Dataset, opt Options) *Report {
	rep := &Report{Rows: ds.Len()}
	if ds == nil {
		return rep
	}
	rep.Name = ds.Name
	rep.Format = ds.Format
	cols := ds.Columns()
	rep.Cols = make([]ColumnSummary, 0, len(cols))
	for _, c := range cols {
		rep.Cols = append(rep.Cols, summarize(ds, c, opt))
	}
	for i := 0; i < ds.Len() && i < opt.SampleRows; i++ {
		row := make([]string, len(cols))
		for j, c := range cols {
			row[j] = cell(ds.Rows[i].Value(c))
		}
		rep.Samples = append(rep.Samples, row)
	}

	if col, ok := detect.PriceColumn(ds, opt.Configuration); ok {
		rep.PriceColumn = col
		changes := correlate.PercentageChanges(correlate.Prices(ds, col))
		if len(changes) > 0 {
			s := numeric(changes)
			rep.Changes = &s
		}
	} else {
		rep.Warnings = append(rep.Warnings, detect.ErrNoPriceColumn.Error())
	}
	if col, ok := detect.SymbolColumn(ds); ok {
		rep.SymbolColumn = col
	}
	if sym, ok := detect.Symbol(ds); ok {
		rep.Symbol = sym
	}
	if ds.Len() < 2 {
		rep.Warnings = append(rep.Warnings, "fewer than 2 rows; nothing to correlate")
	}
	return rep
}

func summarize(ds *dataset.Dataset, col string, opt Options) ColumnSummary {
	s := ColumnSummary{Name: col}
	var nums []float64
	var dates []time.Time
	texts := map[string]int{}
	for _, raw := range ds.Column(col) {
		switch v := raw.(type) {
		case nil:
			s.Missing++
			continue
		case float64:
			nums = append(nums, v)
		case time.Time:
			dates = append(dates, v)
		case string:
			texts[v]++
			if len(s.ExampleTexts) < 3 && strings.TrimSpace(v) != "" {
				s.ExampleTexts = append(s.ExampleTexts, v)
			}
		}
		s.NonNull++
	}
	ntext := s.NonNull - len(nums) - len(dates)
	switch {
	case s.NonNull == 0:
		s.Kind = "empty"
	case len(nums) >= len(dates) && len(nums) >= ntext:
		s.Kind = "numeric"
		s.NumSummary = numeric(nums)
		s.ExampleTexts = nil
		if opt.Outliers && len(nums) >= 8 {
			thr := opt.OutlierThreshold
			if thr <= 0 {
				thr = 3.5
			}
			s.OutliersCount = outliers(nums, thr)
			s.OutlierThreshold = thr
		}
	case len(dates) >= ntext:
		s.Kind = "date"
		sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
		s.First, s.Last = dates[0], dates[len(dates)-1]
		s.ExampleTexts = nil
	default:
		s.Kind = "text"
		s.Unique = len(texts)
	}
	return s
}

// numeric computes count, range, mean and sample standard deviation using
// Welford's update.
func numeric(vals []float64) NumSummary {
	s := NumSummary{Min: math.Inf(1), Max: math.Inf(-1)}
	var m2 float64
	for _, x := range vals {
		s.Count++
		if x < s.Min {
			s.Min = x
		}
		if x > s.Max {
			s.Max = x
		}
		delta := x - s.Mean
		s.Mean += delta / float64(s.Count)
		m2 += delta * (x - s.Mean)
	}
	if s.Count == 0 {
		return NumSummary{}
	}
	if s.Count > 1 {
		s.Std = math.Sqrt(m2 / float64(s.Count-1))
	}
	return s
}

func outliers(vals []float64, thr float64) int {
	median, mad := medianMAD(vals)
	if mad == 0 {
		return 0
	}
	var n int
	for _, v := range vals {
		if math.Abs(0.6745*(v-median)/mad) > thr {
			n++
		}
	}
	return n
}

func cell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case float64:
		return fmt.Sprintf("%g", x)
	case time.Time:
		return x.Format("2006-01-02")
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}

// Markdown renders a compact report for terminals and files.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if r.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", r.Name))
	}
	if r.Format != "" {
		b.WriteString(fmt.Sprintf("Format: %s\n", r.Format))
	}
	b.WriteString(fmt.Sprintf("Rows: %d\n", r.Rows))
	b.WriteString(fmt.Sprintf("Columns: %d\n", len(r.Cols)))
	if r.PriceColumn != "" {
		b.WriteString(fmt.Sprintf("Price column: %s\n", r.PriceColumn))
	}
	if r.SymbolColumn != "" {
		b.WriteString(fmt.Sprintf("Symbol column: %s\n", r.SymbolColumn))
	}
	if r.Symbol != "" {
		b.WriteString(fmt.Sprintf("Symbol: %s\n", r.Symbol))
	}
	b.WriteString("\n[SCHEMA]\n")
	for _, c := range r.Cols {
		total := c.NonNull + c.Missing
		missPct := 0.0
		if total > 0 {
			missPct = float64(c.Missing) * 100.0 / float64(total)
		}
		b.WriteString(fmt.Sprintf("- %s: %s (non-null %d, missing %.1f%%)", safeName(c.Name), c.Kind, c.NonNull, missPct))
		switch c.Kind {
		case "numeric":
			b.WriteString(fmt.Sprintf("; min %.4g, max %.4g, mean %.4g, std %.4g", c.Min, c.Max, c.Mean, c.Std))
			if c.OutlierThreshold > 0 {
				b.WriteString(fmt.Sprintf("; outliers: %d above |z|>%.1f", c.OutliersCount, c.OutlierThreshold))
			}
		case "date":
			b.WriteString(fmt.Sprintf("; %s to %s", c.First.Format("2006-01-02"), c.Last.Format("2006-01-02")))
		case "text":
			b.WriteString(fmt.Sprintf("; unique=%d", c.Unique))
			if len(c.ExampleTexts) > 0 {
				b.WriteString("; e.g., ")
				for i, ex := range c.ExampleTexts {
					if i > 0 {
						b.WriteString(" | ")
					}
					b.WriteString(safeVal(ex))
				}
			}
		}
		b.WriteString("\n")
	}
	if r.Changes != nil {
		b.WriteString("\n[PRICE CHANGES]\n")
		b.WriteString(fmt.Sprintf("- %d changes; mean %.4g%%, std %.4g%%, min %.4g%%, max %.4g%%\n",
			r.Changes.Count, r.Changes.Mean, r.Changes.Std, r.Changes.Min, r.Changes.Max))
	}
	if len(r.Samples) > 0 {
		b.WriteString("\n[HEAD AND SAMPLE ROWS]\n| ")
		for i, c := range r.Cols {
			if i > 0 {
				b.WriteString(" | ")
			}
			b.WriteString(safeName(c.Name))
		}
		b.WriteString(" |\n| ")
		for i := range r.Cols {
			if i > 0 {
				b.WriteString(" | ")
			}
			b.WriteString("---")
		}
		b.WriteString(" |\n")
		for _, row := range r.Samples {
			b.WriteString("| ")
			for i := range r.Cols {
				if i > 0 {
					b.WriteString(" | ")
				}
				val := ""
				if i < len(row) {
					val = row[i]
				}
				if len(val) > 80 {
					val = val[:77] + "..."
				}
				b.WriteString(safeVal(val))
			}
			b.WriteString(" |\n")
		}
	}
	if len(r.Warnings) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, w := range r.Warnings {
			b.WriteString("- ")
			b.WriteString(w)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return s
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }

// medianMAD computes median and MAD (median absolute deviation) of values.
func medianMAD(vals []float64) (median, mad float64) {
	if len(vals) == 0 {
		return 0, 0
	}
	cp := make([]float64, len(vals))
	copy(cp, vals)
	sort.Float64s(cp)
	median = quantile(cp, 0.5)
	dev := make([]float64, len(cp))
	for i, v := range cp {
		dev[i] = math.Abs(v - median)
	}
	sort.Float64s(dev)
	mad = quantile(dev, 0.5)
	return
}

func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}
