package loader

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/KaramelBytes/pricecorr-cli/internal/dataset"
	"github.com/KaramelBytes/pricecorr-cli/internal/infer"
	"github.com/spf13/cast"
)

// jsonFields lists the canonical record columns in row order. aliases are
// lower-cased property names accepted for each column.
var jsonFields = []struct {
	column  string
	aliases []string
	numeric bool
}{
	{"Start", []string{"start"}, false},
	{"End", []string{"end"}, false},
	{"Open", []string{"open"}, true},
	{"High", []string{"high"}, true},
	{"Low", []string{"low"}, true},
	{"Close", []string{"close"}, true},
	{"Volume", []string{"volume"}, true},
	{"Market Cap", []string{"market cap", "marketcap", "market_cap"}, true},
}

type jsonFormat struct{}

func (jsonFormat) Name() string { return "json" }

func (jsonFormat) CanLoad(ext string) bool { return ext == ".json" }

// Load expects an array of price records. Property names match
// case-insensitively; missing or unparsable numbers become 0.
func (jsonFormat) Load(in io.Reader, _ Options) (*dataset.Dataset, error) {
	dec := json.NewDecoder(in)
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedSchema, err)
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: expected an array of records, got %s", ErrUnsupportedSchema, jsonKind(raw))
	}

	ds := &dataset.Dataset{Rows: make([]*dataset.Row, 0, len(items))}
	matched := false
	for i, it := range items {
		obj, ok := it.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: record %d is %s, not an object", ErrUnsupportedSchema, i, jsonKind(it))
		}
		props := make(map[string]any, len(obj))
		for k, v := range obj {
			props[strings.ToLower(strings.TrimSpace(k))] = v
		}
		row := dataset.NewRow()
		for _, f := range jsonFields {
			v, found := lookup(props, f.aliases)
			if found {
				matched = true
			}
			if f.numeric {
				row.Add(f.column, toFloat(v))
				continue
			}
			if v != nil {
				row.Add(f.column, cast.ToString(v))
			} else {
				row.Add(f.column, nil)
			}
		}
		ds.Rows = append(ds.Rows, row)
	}
	if len(items) > 0 && !matched {
		return nil, fmt.Errorf("%w: no record has any of start, end, open, high, low, close, volume, market cap", ErrUnsupportedSchema)
	}
	return ds, nil
}

func lookup(props map[string]any, aliases []string) (any, bool) {
	for _, a := range aliases {
		if v, ok := props[a]; ok {
			return v, true
		}
	}
	return nil, false
}

func toFloat(v any) float64 {
	switch v.(type) {
	case nil, bool:
		return 0
	}
	if f, err := cast.ToFloat64E(v); err == nil {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return 0
		}
		return f
	}
	if s, ok := v.(string); ok {
		if f, ok := infer.ParseNumeric(s); ok {
			return f
		}
	}
	return 0
}

func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "an object"
	case []any:
		return "an array"
	case string:
		return "a string"
	case bool:
		return "a boolean"
	case json.Number:
		return "a number"
	default:
		return fmt.Sprintf("%T", v)
	}
}
