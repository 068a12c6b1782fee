package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/KaramelBytes/pricecorr-cli/internal/dataset"
	"github.com/KaramelBytes/pricecorr-cli/internal/infer"
)

type csvFormat struct{}

func (csvFormat) Name() string { return "csv" }

func (csvFormat) CanLoad(ext string) bool { return ext == ".csv" }

// Load reads a header row followed by records. Each column is classified once
// and every cell is converted to that kind; bad cells become zero values.
func (csvFormat) Load(in io.Reader, opt Options) (*dataset.Dataset, error) {
	r := csv.NewReader(in)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	r.LazyQuotes = true
	r.Comma = opt.Delimiter

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return &dataset.Dataset{}, nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var records [][]string
	for {
		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read row %d: %w", len(records)+1, err)
		}
		records = append(records, rec)
	}

	kinds := make([]infer.Kind, len(header))
	for i, h := range header {
		kinds[i] = opt.Classifier.Classify(h, samples(records, i, opt.SampleRows))
	}

	ds := &dataset.Dataset{Rows: make([]*dataset.Row, 0, len(records))}
	for _, rec := range records {
		row := dataset.NewRow()
		for i := 0; i < len(header) && i < len(rec); i++ {
			row.Add(header[i], infer.Convert(rec[i], kinds[i]))
		}
		ds.Rows = append(ds.Rows, row)
	}
	return ds, nil
}

func samples(records [][]string, col, limit int) []string {
	out := make([]string, 0, limit)
	for _, rec := range records {
		if len(out) >= limit {
			break
		}
		if col < len(rec) {
			out = append(out, rec[col])
		}
	}
	return out
}
