package dataset

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRowCaseInsensitiveLookup(t *testing.T) {
	r := NewRow()
	r.Add("Close", 101.5)
	r.Add("CLOSE", 99.0)

	assert.True(t, r.Has("close"))
	assert.Equal(t, []string{"Close"}, r.Keys(), "first spelling is kept")
	f, ok := r.Float("cLoSe")
	require.True(t, ok)
	assert.Equal(t, 99.0, f, "later value replaces the earlier one")
}

func TestRowInitializedState(t *testing.T) {
	r := NewRow()
	assert.False(t, r.Initialized())
	assert.Nil(t, r.Keys(), "uninitialized rows report no key set")

	r.Add("Volume", nil)
	assert.True(t, r.Initialized())
	assert.False(t, r.Has("Volume"))
	assert.Empty(t, r.Keys())

	r.Add("", 1)
	assert.Equal(t, 0, r.Len())
}

func TestRowNormalizesValues(t *testing.T) {
	day := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	r := NewRow()
	r.Add("a", 3)
	r.Add("b", float32(1.5))
	r.Add("c", "42.25")
	r.Add("d", "BTCUSD")
	r.Add("e", day)
	r.Add("f", uint8(7))
	r.Add("g", "NaN")

	for key, want := range map[string]float64{"a": 3, "b": 1.5, "c": 42.25, "f": 7} {
		got, ok := r.Float(key)
		require.True(t, ok, "column %s should be numeric", key)
		assert.Equal(t, want, got, key)
	}
	s, ok := r.Text("d")
	require.True(t, ok)
	assert.Equal(t, "BTCUSD", s)
	s, ok = r.Text("g")
	require.True(t, ok, "non-finite strings stay text")
	assert.Equal(t, "NaN", s)

	d, ok := r.Time("E")
	require.True(t, ok)
	assert.True(t, d.Equal(day))

	assert.Equal(t, []string{"a", "b", "c", "d", "e", "f", "g"}, r.Keys())
}

func TestKeysReturnsCopy(t *testing.T) {
	r := NewRow()
	r.Add("Open", 1.0)
	k := r.Keys()
	k[0] = "mutated"
	assert.Equal(t, []string{"Open"}, r.Keys())
}

func TestDatasetColumns(t *testing.T) {
	var empty *Dataset
	assert.Equal(t, 0, empty.Len())
	assert.Nil(t, empty.Columns())

	r1 := NewRow()
	r1.Add("Date", "x")
	r1.Add("Close", 1.0)
	r2 := NewRow()
	r2.Add("Close", 2.0)
	ds := &Dataset{Rows: []*Row{r1, r2}}

	assert.Equal(t, []string{"Date", "Close"}, ds.Columns())
	assert.Equal(t, []any{"x", nil}, ds.Column("date"))
	assert.Equal(t, []any{1.0, 2.0}, ds.Column("close"))
}

func TestFieldDefinitionValidate(t *testing.T) {
	assert.NoError(t, FieldDefinition{FieldName: "Close", DataType: "float"}.Validate())
	assert.NoError(t, FieldDefinition{FieldName: "Date", DataType: " Date "}.Validate())
	assert.Error(t, FieldDefinition{FieldName: "", DataType: "int"}.Validate())
	assert.Error(t, FieldDefinition{FieldName: "Close", DataType: "decimal"}.Validate())
}

func TestDefaultConfiguration(t *testing.T) {
	c := DefaultConfiguration()
	assert.True(t, c.AutoDetectColumns)
	assert.Empty(t, c.TargetColumns)
}
