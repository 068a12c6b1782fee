package dataset

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// Row is one record of a dataset: an insertion-ordered, case-insensitive mapping
// from column name to a typed cell. Cells hold float64, string or time.Time.
type Row struct {
	keys        []string
	values      map[string]any // keyed by lower-cased column name
	initialized bool
}

// NewRow returns an empty, uninitialized row.
func NewRow() *Row {
	return &Row{values: make(map[string]any)}
}

// Add stores value under key. Numeric kinds and numeric strings collapse to
// float64; nil stores nothing but still marks the row initialized.
func (r *Row) Add(key string, value any) {
	if key == "" {
		return
	}
	if r.values == nil {
		r.values = make(map[string]any)
	}
	if value != nil {
		lk := strings.ToLower(key)
		if _, ok := r.values[lk]; !ok {
			r.keys = append(r.keys, key)
		}
		r.values[lk] = normalize(value)
	}
	r.initialized = true
}

// Initialized reports whether Add has been called at least once.
func (r *Row) Initialized() bool { return r != nil && r.initialized }

// Keys returns column names in insertion order. An uninitialized row has no keys.
func (r *Row) Keys() []string {
	if !r.Initialized() {
		return nil
	}
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Has reports whether key holds a value.
func (r *Row) Has(key string) bool {
	if r == nil {
		return false
	}
	_, ok := r.values[strings.ToLower(key)]
	return ok
}

// Value returns the raw cell or nil when absent.
func (r *Row) Value(key string) any {
	if r == nil {
		return nil
	}
	return r.values[strings.ToLower(key)]
}

// Float returns the cell as float64 when it is numeric.
func (r *Row) Float(key string) (float64, bool) {
	f, ok := r.Value(key).(float64)
	return f, ok
}

// Text returns the cell as a string when it holds text.
func (r *Row) Text(key string) (string, bool) {
	s, ok := r.Value(key).(string)
	return s, ok
}

// Time returns the cell as a date when it holds one.
func (r *Row) Time(key string) (time.Time, bool) {
	t, ok := r.Value(key).(time.Time)
	return t, ok
}

// Len returns the number of stored cells.
func (r *Row) Len() int {
	if r == nil {
		return 0
	}
	return len(r.keys)
}

func normalize(v any) any {
	switch x := v.(type) {
	case float64:
		return x
	case time.Time:
		return x
	case *time.Time:
		if x == nil {
			return nil
		}
		return *x
	case string:
		if f, ok := parseInvariant(x); ok {
			return f
		}
		return x
	case float32, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		if f, err := cast.ToFloat64E(x); err == nil {
			return f
		}
	}
	if f, err := cast.ToFloat64E(v); err == nil {
		return f
	}
	return cast.ToString(v)
}

// parseInvariant parses s as a finite float using '.' as decimal separator.
func parseInvariant(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
