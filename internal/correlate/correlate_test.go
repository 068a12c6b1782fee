package correlate

import (
	"math"
	"testing"

	"github.com/KaramelBytes/pricecorr-cli/internal/dataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPercentageChangesLength(t *testing.T) {
	for n := 0; n < 6; n++ {
		s := make([]float64, n)
		for i := range s {
			s[i] = float64(i + 1)
		}
		want := n - 1
		if want < 0 {
			want = 0
		}
		assert.Len(t, PercentageChanges(s), want, "len %d", n)
	}
	assert.NotNil(t, PercentageChanges(nil))
}

func TestPercentageChangesValues(t *testing.T) {
	assert.Equal(t, []float64{0}, PercentageChanges([]float64{0, 5}), "change from zero is 0")
	got := PercentageChanges([]float64{100, 110, 99})
	require.Len(t, got, 2)
	assert.InDelta(t, 10, got[0], 1e-9)
	assert.InDelta(t, -10, got[1], 1e-9)
}

func TestPearsonProperties(t *testing.T) {
	xs := []float64{1, 3, 2, 5, 4}
	ys := []float64{2, 1, 4, 3, 6}
	assert.Equal(t, Pearson(xs, ys), Pearson(ys, xs), "symmetric")
	assert.InDelta(t, 1, Pearson(xs, xs), 1e-12)

	neg := make([]float64, len(xs))
	for i, v := range xs {
		neg[i] = -v
	}
	assert.InDelta(t, -1, Pearson(xs, neg), 1e-12)

	r := Pearson(xs, ys)
	assert.True(t, r >= -1 && r <= 1)
}

func TestPearsonDegenerate(t *testing.T) {
	assert.Equal(t, 0.0, Pearson(nil, nil))
	assert.Equal(t, 0.0, Pearson([]float64{1, 2}, []float64{1, 2, 3}), "mismatched lengths")
	assert.Equal(t, 0.0, Pearson([]float64{4, 4, 4}, []float64{1, 2, 3}), "constant left")
	assert.Equal(t, 0.0, Pearson([]float64{1, 2, 3}, []float64{7, 7, 7}), "constant right")
	assert.Equal(t, 0.0, Pearson([]float64{5}, []float64{9}), "single sample")
	assert.Equal(t, 0.0, Pearson([]float64{1, math.NaN()}, []float64{1, 2}))
}

func TestTruncate(t *testing.T) {
	a, b := Truncate([]float64{1, 2, 3}, []float64{4, 5})
	assert.Equal(t, []float64{1, 2}, a)
	assert.Equal(t, []float64{4, 5}, b)
	a, b = Truncate(nil, []float64{1})
	assert.Empty(t, a)
	assert.Empty(t, b)
}

func series(name, symbol string, closes ...any) *dataset.Dataset {
	ds := &dataset.Dataset{Name: name}
	for _, c := range closes {
		r := dataset.NewRow()
		if symbol != "" {
			r.Add("Symbol", symbol)
		}
		r.Add("Close", c)
		ds.Rows = append(ds.Rows, r)
	}
	return ds
}

func TestDatasetsInverseMoves(t *testing.T) {
	a := series("a", "BTCUSD", 100.0, 110.0, 99.0, 108.9)
	b := series("b", "ETHUSD", 50.0, 45.0, 49.5, 44.55)
	res := Datasets(a, b, dataset.DefaultConfiguration())
	require.Len(t, res, 1)
	assert.Equal(t, "BTCUSD-ETHUSD", res[0].Key)
	assert.InDelta(t, -100, res[0].Value, 1e-6)
	assert.Equal(t, [2]string{"Close", "Close"}, res[0].Columns)
	assert.Equal(t, 3, res[0].Samples)
}

// Constant change series have zero variance and correlate as 0.
func TestDatasetsConstantChanges(t *testing.T) {
	a := series("a", "", 100.0, 110.0, 121.0)
	b := series("b", "", 50.0, 45.0, 40.5)
	res := Datasets(a, b, dataset.DefaultConfiguration())
	require.Len(t, res, 1)
	assert.Equal(t, "a-b", res[0].Key)
	assert.Equal(t, 0.0, res[0].Value)
}

// Compounded prices leave float noise in otherwise constant changes.
func TestDatasetsCompoundedConstantChanges(t *testing.T) {
	a := series("a", "", 100.0, 110.0, 121.0, 133.1)
	b := series("b", "", 50.0, 45.0, 40.5, 36.45)
	res := Datasets(a, b, dataset.DefaultConfiguration())
	require.Len(t, res, 1)
	assert.Equal(t, 0.0, res[0].Value)

	assert.False(t, constant([]float64{1e-12, 2e-12}), "small but varying")
	assert.True(t, constant([]float64{10, 10, 9.999999999999995}))
}

func TestDatasetsTruncatesToShorter(t *testing.T) {
	a := series("a", "", 1.0, 2.0, 4.0, 8.0, 4.0)
	b := series("b", "", 10.0, 20.0, 10.0)
	res := Datasets(a, b, dataset.DefaultConfiguration())
	require.Len(t, res, 1)
	assert.Equal(t, 2, res[0].Samples)
}

func TestDatasetsDegraded(t *testing.T) {
	one := series("one", "", 1.0)
	two := series("two", "", 1.0, 2.0)
	assert.Empty(t, Datasets(one, two, dataset.DefaultConfiguration()), "fewer than two rows")

	noPrice := &dataset.Dataset{}
	for i := 0; i < 3; i++ {
		r := dataset.NewRow()
		r.Add("Volume", float64(i))
		noPrice.Rows = append(noPrice.Rows, r)
	}
	assert.Empty(t, Datasets(noPrice, two, dataset.DefaultConfiguration()))
}

func TestPairKeyFallbacks(t *testing.T) {
	assert.Equal(t, "File1-File2", PairKey(&dataset.Dataset{}, nil))
	assert.Equal(t, "btc-File2", PairKey(&dataset.Dataset{Name: "btc"}, &dataset.Dataset{}))
	assert.Equal(t, "ETH-eth", PairKey(series("x", "ETH", 1.0), &dataset.Dataset{Name: "eth"}))
}

func TestPricesCleaning(t *testing.T) {
	ds := series("p", "", 12.5, "$1,5", `"42"`, "USD 7.25", "abc", nil)
	assert.Equal(t, []float64{12.5, 1.5, 42, 7.25, 0, 0}, Prices(ds, "close"))
}

func TestPricesNonFiniteAreZero(t *testing.T) {
	ds := series("a", "", "NaN", math.Inf(1), "12.5")
	assert.Equal(t, []float64{0, 0, 12.5}, Prices(ds, "Close"))
}

func TestResultAddReplaces(t *testing.T) {
	var r Result
	r = r.Add(Correlation{Key: "a", Value: 1})
	r = r.Add(Correlation{Key: "b", Value: 2})
	r = r.Add(Correlation{Key: "a", Value: 3})
	require.Len(t, r, 2)
	assert.Equal(t, []float64{3, 2}, r.Values())
}
