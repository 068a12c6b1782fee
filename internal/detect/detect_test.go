package detect

import (
	"math"
	"testing"

	"github.com/KaramelBytes/pricecorr-cli/internal/dataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// build creates a dataset from header names and row values.
func build(cols []string, rows ...[]any) *dataset.Dataset {
	ds := &dataset.Dataset{Name: "test"}
	for _, vals := range rows {
		r := dataset.NewRow()
		for i, c := range cols {
			if i < len(vals) {
				r.Add(c, vals[i])
			}
		}
		ds.Rows = append(ds.Rows, r)
	}
	return ds
}

func TestPriceColumnPrefersClose(t *testing.T) {
	ds := build([]string{"Open", "High", "close"}, []any{1.0, 2.0, 3.0}, []any{1.5, 2.5, 3.5})
	col, ok := PriceColumn(ds, dataset.DefaultConfiguration())
	require.True(t, ok)
	assert.Equal(t, "close", col, "returned as spelled in the dataset")
}

func TestPriceColumnFallbackOrder(t *testing.T) {
	ds := build([]string{"Last", "Open", "Low", "High"}, []any{1.0, 2.0, 3.0, 4.0})
	col, ok := PriceColumn(ds, dataset.DefaultConfiguration())
	require.True(t, ok)
	assert.Equal(t, "High", col)

	ds = build([]string{"Price", "Last"}, []any{1.0, 2.0})
	col, ok = PriceColumn(ds, dataset.DefaultConfiguration())
	require.True(t, ok)
	assert.Equal(t, "Price", col)
}

func TestPriceColumnSkipsAllZeroColumns(t *testing.T) {
	ds := build([]string{"Close", "Open"}, []any{0.0, 5.0}, []any{0.0, 6.0})
	col, ok := PriceColumn(ds, dataset.DefaultConfiguration())
	require.True(t, ok)
	assert.Equal(t, "Open", col)

	ds = build([]string{"Close"}, []any{"n/a"}, []any{"12.5"})
	col, ok = PriceColumn(ds, dataset.DefaultConfiguration())
	require.True(t, ok, "numeric strings qualify")
	assert.Equal(t, "Close", col)
}

func TestPriceColumnSkipsNonFiniteColumns(t *testing.T) {
	ds := build([]string{"Close", "High"}, []any{"NaN", 10.0}, []any{"Inf", 11.0}, []any{math.NaN(), 12.0})
	assert.Empty(t, NumericValues(ds, "Close"))
	col, ok := PriceColumn(ds, dataset.DefaultConfiguration())
	require.True(t, ok)
	assert.Equal(t, "High", col)
}

func TestPriceColumnNone(t *testing.T) {
	_, ok := PriceColumn(&dataset.Dataset{}, dataset.DefaultConfiguration())
	assert.False(t, ok)

	ds := build([]string{"Symbol", "Volume"}, []any{"BTC", 10.0})
	_, ok = PriceColumn(ds, dataset.DefaultConfiguration())
	assert.False(t, ok)
}

func TestPriceColumnTargets(t *testing.T) {
	ds := build([]string{"Close", "Mid"}, []any{1.0, 2.0})

	cfg := dataset.AnalysisConfiguration{TargetColumns: []string{"mid"}, AutoDetectColumns: true}
	col, ok := PriceColumn(ds, cfg)
	require.True(t, ok)
	assert.Equal(t, "Mid", col)

	cfg = dataset.AnalysisConfiguration{TargetColumns: []string{"Bid"}, AutoDetectColumns: true}
	col, ok = PriceColumn(ds, cfg)
	require.True(t, ok, "auto-detection still applies after targets")
	assert.Equal(t, "Close", col)

	cfg = dataset.AnalysisConfiguration{TargetColumns: []string{"Bid"}, AutoDetectColumns: false}
	_, ok = PriceColumn(ds, cfg)
	assert.False(t, ok, "only targets are tried when auto-detection is off")

	cfg = dataset.AnalysisConfiguration{AutoDetectColumns: false}
	col, ok = PriceColumn(ds, cfg)
	require.True(t, ok, "no targets means the default candidates")
	assert.Equal(t, "Close", col)
}

func TestNumericValues(t *testing.T) {
	ds := build([]string{"Close"}, []any{1.0}, []any{0.0}, []any{"2.5"}, []any{"abc"}, []any{nil})
	assert.Equal(t, []float64{1, 2.5}, NumericValues(ds, "close"))
}

func TestSymbol(t *testing.T) {
	ds := build([]string{"Date", "Trading Pair", "Close"}, []any{"2024-01-01", "ETHUSD", 1.0}, []any{"2024-01-02", "BTCUSD", 2.0})
	col, ok := SymbolColumn(ds)
	require.True(t, ok)
	assert.Equal(t, "Trading Pair", col)
	sym, ok := Symbol(ds)
	require.True(t, ok)
	assert.Equal(t, "ETHUSD", sym)

	ds = build([]string{"SYMBOL", "Close"}, []any{"  ", 1.0})
	_, ok = Symbol(ds)
	assert.False(t, ok, "blank symbols are ignored")

	ds = build([]string{"Close"}, []any{1.0})
	_, ok = SymbolColumn(ds)
	assert.False(t, ok)
	_, ok = Symbol(&dataset.Dataset{})
	assert.False(t, ok)
}
