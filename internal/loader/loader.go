// Package loader parses uploaded CSV and JSON price files into datasets.
package loader

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/KaramelBytes/pricecorr-cli/internal/dataset"
	"github.com/KaramelBytes/pricecorr-cli/internal/infer"
	"github.com/rs/zerolog/log"
)

var (
	// ErrEmptyInput indicates a zero-length file.
	ErrEmptyInput = errors.New("file is empty")
	// ErrUnsupportedFormat indicates an extension other than .csv or .json.
	ErrUnsupportedFormat = errors.New("unsupported file type, please upload a CSV or JSON file")
	// ErrUnsupportedSchema indicates JSON that is not an array of price records.
	ErrUnsupportedSchema = errors.New("unsupported JSON schema")
)

// Options controls how a file is loaded.
type Options struct {
	// Name is stored on the resulting dataset.
	Name string
	// StagingDir holds the temporary copy of the input; empty means os.TempDir().
	StagingDir string
	// Classifier infers CSV column kinds. Defaults to header rules.
	Classifier infer.Classifier
	// SampleRows is how many values per column are offered to the classifier.
	SampleRows int
	// Delimiter for CSV; 0 means ','.
	Delimiter rune
}

// DefaultOptions returns the loader defaults.
func DefaultOptions() Options {
	return Options{
		Classifier: infer.HeaderClassifier{},
		SampleRows: 20,
		Delimiter:  ',',
	}
}

// Format is one supported input format.
type Format interface {
	Name() string
	CanLoad(ext string) bool
	Load(r io.Reader, opt Options) (*dataset.Dataset, error)
}

var registry []Format

// Register adds a format implementation to the registry.
func Register(f Format) {
	registry = append(registry, f)
}

func init() {
	Register(csvFormat{})
	Register(jsonFormat{})
}

// NormalizeExt lower-cases ext and ensures a leading dot.
func NormalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

// Lookup returns the format registered for ext.
func Lookup(ext string) (Format, error) {
	e := NormalizeExt(ext)
	for _, f := range registry {
		if f.CanLoad(e) {
			return f, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
}

// Supported reports whether ext has a registered format.
func Supported(ext string) bool {
	_, err := Lookup(ext)
	return err == nil
}

// Load stages data to a temporary file, parses it according to ext and
// removes the staged copy on every path. The extension is checked before
// emptiness.
func Load(data []byte, ext string, opt Options) (*dataset.Dataset, error) {
	f, err := Lookup(ext)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, ErrEmptyInput
	}
	applyDefaults(&opt)

	start := time.Now()
	path, err := stage(data, opt.StagingDir, NormalizeExt(ext))
	if err != nil {
		return nil, err
	}
	defer os.Remove(path)

	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open staged file: %w", err)
	}
	defer fh.Close()

	ds, err := f.Load(fh, opt)
	if err != nil {
		return nil, err
	}
	ds.Name = opt.Name
	ds.Format = f.Name()
	log.Debug().
		Str("component", "loader").
		Str("format", f.Name()).
		Str("name", ds.Name).
		Int("rows", ds.Len()).
		Strs("columns", ds.Columns()).
		Dur("elapsed", time.Since(start)).
		Msg("dataset loaded")
	return ds, nil
}

// LoadFile reads path and loads it using the path's extension. The dataset
// name defaults to the base name without extension.
func LoadFile(path string, opt Options) (*dataset.Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	if opt.Name == "" {
		opt.Name = BaseName(path)
	}
	return Load(data, filepath.Ext(path), opt)
}

// BaseName returns the file name of path without directory and extension.
func BaseName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func applyDefaults(opt *Options) {
	if opt.Classifier == nil {
		opt.Classifier = infer.HeaderClassifier{}
	}
	if opt.SampleRows <= 0 {
		opt.SampleRows = 20
	}
	if opt.Delimiter == 0 {
		opt.Delimiter = ','
	}
}

func stage(data []byte, dir, ext string) (string, error) {
	tmp, err := os.CreateTemp(dir, "pricecorr-*"+ext)
	if err != nil {
		return "", fmt.Errorf("create staging file: %w", err)
	}
	name := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		_ = os.Remove(name)
		return "", fmt.Errorf("write staging file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(name)
		return "", fmt.Errorf("close staging file: %w", err)
	}
	return name, nil
}
