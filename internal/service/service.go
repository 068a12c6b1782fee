// Package service runs one correlation analysis over two uploaded files.
package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/KaramelBytes/pricecorr-cli/internal/chart"
	"github.com/KaramelBytes/pricecorr-cli/internal/correlate"
	"github.com/KaramelBytes/pricecorr-cli/internal/dataset"
	"github.com/KaramelBytes/pricecorr-cli/internal/infer"
	"github.com/KaramelBytes/pricecorr-cli/internal/insight"
	"github.com/KaramelBytes/pricecorr-cli/internal/loader"
	"github.com/KaramelBytes/pricecorr-cli/internal/logging"
	"github.com/KaramelBytes/pricecorr-cli/internal/metrics"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// File is one uploaded input.
type File struct {
	// Name is the uploaded file name; it names the dataset in pair keys.
	Name string
	// Ext overrides the extension taken from Name.
	Ext  string
	Data []byte
}

// Extension returns Ext, or the extension of Name when Ext is empty.
func (f File) Extension() string {
	if f.Ext != "" {
		return loader.NormalizeExt(f.Ext)
	}
	return loader.NormalizeExt(filepath.Ext(f.Name))
}

// Request is the input of one analysis.
type Request struct {
	File1, File2             File
	File1Fields, File2Fields []dataset.FieldDefinition
	// Configuration defaults to auto-detection when nil.
	Configuration *dataset.AnalysisConfiguration
}

// Analysis is the outcome of one request.
type Analysis struct {
	ID           string           `json:"id"`
	Report       *insight.Report  `json:"report"`
	Correlations correlate.Result `json:"correlations"`
}

// Options configures an Analyzer.
type Options struct {
	StagingDir string
	// Renderer draws the chart; nil disables charts.
	Renderer chart.Renderer
	// Classifier infers CSV column kinds; nil means header rules.
	Classifier infer.Classifier
}

// Analyzer is stateless between requests and safe for concurrent use.
type Analyzer struct {
	opts   Options
	logger zerolog.Logger
}

// New creates an Analyzer.
func New(opts Options) *Analyzer {
	if opts.Renderer == nil {
		opts.Renderer = chart.NopRenderer{}
	}
	if opts.Classifier == nil {
		opts.Classifier = infer.HeaderClassifier{}
	}
	return &Analyzer{opts: opts, logger: logging.Component("analyzer")}
}

// Validate rejects requests the loader could never accept, before any parsing.
func Validate(req Request) error {
	for i, f := range []File{req.File1, req.File2} {
		if !loader.Supported(f.Extension()) {
			return fmt.Errorf("file%d: %w: %q", i+1, loader.ErrUnsupportedFormat, f.Extension())
		}
	}
	for i, f := range []File{req.File1, req.File2} {
		if len(f.Data) == 0 {
			return fmt.Errorf("file%d: %w", i+1, loader.ErrEmptyInput)
		}
	}
	return nil
}

// Analyze loads both files concurrently, correlates their price columns and
// summarizes the result. A missing price column yields a degraded report, not
// an error.
func (a *Analyzer) Analyze(ctx context.Context, req Request) (*Analysis, error) {
	id := uuid.NewString()
	logger := a.logger.With().Str("analysis_id", id).Logger()
	start := time.Now()

	if err := Validate(req); err != nil {
		metrics.Analyses.WithLabelValues(metrics.OutcomeError).Inc()
		return nil, err
	}

	var ds1, ds2 *dataset.Dataset
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		d, err := a.load(gctx, req.File1, "File1", req.File1Fields)
		if err != nil {
			return fmt.Errorf("file1: %w", err)
		}
		ds1 = d
		return nil
	})
	g.Go(func() error {
		d, err := a.load(gctx, req.File2, "File2", req.File2Fields)
		if err != nil {
			return fmt.Errorf("file2: %w", err)
		}
		ds2 = d
		return nil
	})
	if err := g.Wait(); err != nil {
		metrics.Analyses.WithLabelValues(metrics.OutcomeError).Inc()
		logger.Warn().Err(err).Msg("load failed")
		return nil, err
	}

	cfg := dataset.DefaultConfiguration()
	if req.Configuration != nil {
		cfg = *req.Configuration
	}
	results := correlate.Datasets(ds1, ds2, cfg)
	rep := insight.Summarize(results)
	if len(results) == 0 {
		metrics.Analyses.WithLabelValues(metrics.OutcomeDegraded).Inc()
		logger.Info().Int("rows1", ds1.Len()).Int("rows2", ds2.Len()).Msg("no correlatable price columns")
		return &Analysis{ID: id, Report: rep, Correlations: results}, nil
	}

	points := make([]chart.Point, len(results))
	for i, v := range results.Values() {
		points[i] = chart.Point{PairKey: results[i].Key, CorrelationPct: v}
		metrics.Correlation.Observe(v)
	}
	url, err := a.opts.Renderer.Render(ctx, points)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			metrics.Analyses.WithLabelValues(metrics.OutcomeError).Inc()
			return nil, err
		}
		logger.Warn().Err(err).Msg("chart rendering failed")
	}
	rep.GraphURL = url

	metrics.Analyses.WithLabelValues(metrics.OutcomeOK).Inc()
	for _, c := range results {
		logger.Info().
			Str("pair", c.Key).
			Float64("correlation", c.Value).
			Str("bucket", insight.Classify(c.Value).String()).
			Strs("columns", c.Columns[:]).
			Int("samples", c.Samples).
			Dur("elapsed", time.Since(start)).
			Msg("analysis complete")
	}
	return &Analysis{ID: id, Report: rep, Correlations: results}, nil
}

func (a *Analyzer) load(ctx context.Context, f File, fallback string, hints []dataset.FieldDefinition) (*dataset.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	name := fallback
	if f.Name != "" {
		name = loader.BaseName(f.Name)
	}
	opt := loader.DefaultOptions()
	opt.Name = name
	opt.StagingDir = a.opts.StagingDir
	opt.Classifier = infer.WithHints(a.opts.Classifier, hints)

	start := time.Now()
	ds, err := loader.Load(f.Data, f.Extension(), opt)
	if err != nil {
		return nil, err
	}
	metrics.ObserveLoad(ds.Format, start)
	return ds, nil
}
