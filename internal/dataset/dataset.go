package dataset

import (
	"fmt"
	"strings"
)

// Dataset is the ordered sequence of rows loaded from one input file.
// Rows are not required to share every column.
type Dataset struct {
	// Name identifies the dataset in pair keys, usually the file base name.
	Name string
	// Format is the source format ("csv" or "json").
	Format string
	Rows   []*Row
}

// Len returns the number of rows.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Rows)
}

// Columns returns the column set of the first row.
func (d *Dataset) Columns() []string {
	if d.Len() == 0 {
		return nil
	}
	return d.Rows[0].Keys()
}

// Column returns the cells of one column in row order; missing cells are nil.
func (d *Dataset) Column(name string) []any {
	if d == nil {
		return nil
	}
	out := make([]any, len(d.Rows))
	for i, r := range d.Rows {
		out[i] = r.Value(name)
	}
	return out
}

// FieldDefinition is a user supplied type hint for one column.
type FieldDefinition struct {
	FieldName string `json:"fieldName" yaml:"field_name"`
	DataType  string `json:"dataType" yaml:"data_type"`
}

// Validate checks that the definition names a field and a known data type.
func (f FieldDefinition) Validate() error {
	if strings.TrimSpace(f.FieldName) == "" {
		return fmt.Errorf("field name is required")
	}
	switch strings.ToLower(strings.TrimSpace(f.DataType)) {
	case "int", "float", "date", "string":
		return nil
	default:
		return fmt.Errorf("field %q: data type must be one of int, float, date, string (got %q)", f.FieldName, f.DataType)
	}
}

// AnalysisConfiguration controls price column detection.
type AnalysisConfiguration struct {
	TargetColumns     []string `json:"targetColumns" yaml:"target_columns"`
	AutoDetectColumns bool     `json:"autoDetectColumns" yaml:"auto_detect_columns"`
}

// DefaultConfiguration returns the configuration used when none is supplied.
func DefaultConfiguration() AnalysisConfiguration {
	return AnalysisConfiguration{AutoDetectColumns: true}
}
