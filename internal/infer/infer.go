// Package infer decides the semantic type of a tabular column and converts
// raw cell text into that type.
package infer

import (
	"strings"

	"github.com/KaramelBytes/pricecorr-cli/internal/dataset"
)

// Kind is the inferred type of a column.
type Kind int

const (
	String Kind = iota
	Numeric
	Date
)

func (k Kind) String() string {
	switch k {
	case Numeric:
		return "numeric"
	case Date:
		return "date"
	default:
		return "string"
	}
}

// Classifier infers the kind of a column from its header and, optionally,
// a sample of its raw values.
type Classifier interface {
	Classify(header string, samples []string) Kind
}

// ClassifierFunc adapts a function to Classifier.
type ClassifierFunc func(header string, samples []string) Kind

func (f ClassifierFunc) Classify(header string, samples []string) Kind { return f(header, samples) }

var (
	exactDate    = []string{"date", "time", "timestamp"}
	exactNumeric = []string{"close", "price", "high", "low", "open"}
	partDate     = []string{"date", "time"}
	partNumeric  = []string{"volume", "price", "high", "low", "open", "close", "cap"}
)

// HeaderClassifier classifies purely by header name. Samples are ignored.
// Substring rules make it occasionally wrong ("Candidate" reads as a date).
type HeaderClassifier struct{}

func (HeaderClassifier) Classify(header string, _ []string) Kind { return ClassifyHeader(header) }

// ClassifyHeader applies the header-name rules: exact date names, exact price
// names, then date substrings, then numeric substrings, else string.
func ClassifyHeader(header string) Kind {
	h := strings.ToLower(strings.TrimSpace(header))
	if h == "" {
		return String
	}
	if oneOf(h, exactDate) {
		return Date
	}
	if oneOf(h, exactNumeric) {
		return Numeric
	}
	if containsAny(h, partDate) {
		return Date
	}
	if containsAny(h, partNumeric) {
		return Numeric
	}
	return String
}

// SampleClassifier picks the predominant parsed type among non-empty samples
// and falls back to Fallback (header rules when nil) when there are none.
type SampleClassifier struct {
	Fallback Classifier
}

func (c SampleClassifier) Classify(header string, samples []string) Kind {
	var num, dt, txt int
	for _, s := range samples {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, ok := ParseNumeric(s); ok {
			num++
			continue
		}
		if _, ok := ParseDate(s); ok {
			dt++
			continue
		}
		txt++
	}
	switch {
	case num > 0 && num >= dt && num >= txt:
		return Numeric
	case dt > 0 && dt >= txt:
		return Date
	case txt > 0:
		return String
	}
	if c.Fallback != nil {
		return c.Fallback.Classify(header, samples)
	}
	return ClassifyHeader(header)
}

// HintedClassifier applies user field definitions before delegating to Base.
type HintedClassifier struct {
	Base  Classifier
	hints map[string]Kind
}

// WithHints wraps base with the given field definitions. Invalid definitions
// are ignored. With no usable hints base is returned unchanged.
func WithHints(base Classifier, defs []dataset.FieldDefinition) Classifier {
	if base == nil {
		base = HeaderClassifier{}
	}
	hints := make(map[string]Kind)
	for _, d := range defs {
		if d.Validate() != nil {
			continue
		}
		hints[strings.ToLower(strings.TrimSpace(d.FieldName))] = KindOf(d.DataType)
	}
	if len(hints) == 0 {
		return base
	}
	return HintedClassifier{Base: base, hints: hints}
}

func (c HintedClassifier) Classify(header string, samples []string) Kind {
	if k, ok := c.hints[strings.ToLower(strings.TrimSpace(header))]; ok {
		return k
	}
	return c.Base.Classify(header, samples)
}

// KindOf maps a field definition data type to a Kind.
func KindOf(dataType string) Kind {
	switch strings.ToLower(strings.TrimSpace(dataType)) {
	case "int", "float":
		return Numeric
	case "date":
		return Date
	default:
		return String
	}
}

func oneOf(s string, set []string) bool {
	for _, v := range set {
		if s == v {
			return true
		}
	}
	return false
}

func containsAny(s string, parts []string) bool {
	for _, p := range parts {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}
