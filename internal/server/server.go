// Package server exposes the analyzer over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/KaramelBytes/pricecorr-cli/internal/chart"
	"github.com/KaramelBytes/pricecorr-cli/internal/dataset"
	"github.com/KaramelBytes/pricecorr-cli/internal/loader"
	"github.com/KaramelBytes/pricecorr-cli/internal/logging"
	"github.com/KaramelBytes/pricecorr-cli/internal/metrics"
	"github.com/KaramelBytes/pricecorr-cli/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"
	"github.com/rs/zerolog"
)

// Version is reported by the health endpoint.
var Version = "dev"

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Error  string   `json:"error,omitempty"`
	Errors []string `json:"errors,omitempty"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
	Service   string    `json:"service"`
}

// Options configures the HTTP surface.
type Options struct {
	// GraphsDir is the directory whose graphs/ subfolder is served at /graphs.
	GraphsDir string
	// MaxUploadBytes caps the multipart body.
	MaxUploadBytes int64
}

// Server wires HTTP handlers to an analyzer.
type Server struct {
	analyzer *service.Analyzer
	opts     Options
	logger   zerolog.Logger
}

// New creates a Server.
func New(a *service.Analyzer, opts Options) *Server {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 32 << 20
	}
	return &Server{analyzer: a, opts: opts, logger: logging.Component("server")}
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{"X-Analysis-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", s.Health)
	r.Handle("/metrics", metrics.Handler())
	if s.opts.GraphsDir != "" {
		fs := http.FileServer(http.Dir(filepath.Join(s.opts.GraphsDir, "graphs")))
		r.Handle(chart.GraphsPath+"/*", http.StripPrefix(chart.GraphsPath+"/", fs))
	}
	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Post("/upload", s.Upload)
	})
	return r
}

// Health reports liveness.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   Version,
		Service:   "pricecorr",
	})
}

// Upload accepts two files as multipart fields File1 and File2, plus optional
// File1FieldsJson, File2FieldsJson and ConfigurationJson, and answers with the
// analysis report.
func (s *Server) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.opts.MaxUploadBytes); err != nil {
		badRequest(w, r, fmt.Sprintf("invalid multipart form: %v", err))
		return
	}

	var problems []string
	f1, err := formFile(r, "File1")
	if err != nil {
		problems = append(problems, err.Error())
	}
	f2, err := formFile(r, "File2")
	if err != nil {
		problems = append(problems, err.Error())
	}
	if len(problems) > 0 {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Errors: problems})
		return
	}
	if !loader.Supported(f1.Extension()) || !loader.Supported(f2.Extension()) {
		badRequest(w, r, "Only CSV and JSON files are allowed.")
		return
	}

	req := service.Request{File1: f1, File2: f2}
	if req.File1Fields, err = fieldsValue(r, "File1FieldsJson"); err != nil {
		badRequest(w, r, err.Error())
		return
	}
	if req.File2Fields, err = fieldsValue(r, "File2FieldsJson"); err != nil {
		badRequest(w, r, err.Error())
		return
	}
	if req.Configuration, err = configValue(r, "ConfigurationJson"); err != nil {
		badRequest(w, r, err.Error())
		return
	}

	res, err := s.analyzer.Analyze(r.Context(), req)
	if err != nil {
		s.logger.Warn().Err(err).Str("request_id", middleware.GetReqID(r.Context())).Msg("analysis failed")
		if isClientError(err) {
			badRequest(w, r, err.Error())
			return
		}
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, ErrorResponse{Error: "An error occurred: " + err.Error()})
		return
	}
	w.Header().Set("X-Analysis-ID", res.ID)
	render.JSON(w, r, res.Report)
}

func isClientError(err error) bool {
	return errors.Is(err, loader.ErrEmptyInput) ||
		errors.Is(err, loader.ErrUnsupportedFormat) ||
		errors.Is(err, loader.ErrUnsupportedSchema)
}

func badRequest(w http.ResponseWriter, r *http.Request, msg string) {
	render.Status(r, http.StatusBadRequest)
	render.JSON(w, r, ErrorResponse{Error: msg})
}

func formFile(r *http.Request, field string) (service.File, error) {
	fh, hdr, err := r.FormFile(field)
	if err != nil {
		return service.File{}, fmt.Errorf("%s is required.", field)
	}
	defer fh.Close()
	data, err := io.ReadAll(fh)
	if err != nil {
		return service.File{}, fmt.Errorf("%s could not be read: %v", field, err)
	}
	return service.File{Name: hdr.Filename, Data: data}, nil
}

func fieldsValue(r *http.Request, field string) ([]dataset.FieldDefinition, error) {
	raw := strings.TrimSpace(r.FormValue(field))
	if raw == "" {
		return nil, nil
	}
	var defs []dataset.FieldDefinition
	if err := json.Unmarshal([]byte(raw), &defs); err != nil {
		return nil, fmt.Errorf("%s: invalid JSON: %v", field, err)
	}
	for _, d := range defs {
		if err := d.Validate(); err != nil {
			return nil, fmt.Errorf("%s: %v", field, err)
		}
	}
	return defs, nil
}

func configValue(r *http.Request, field string) (*dataset.AnalysisConfiguration, error) {
	raw := strings.TrimSpace(r.FormValue(field))
	if raw == "" {
		return nil, nil
	}
	cfg := dataset.DefaultConfiguration()
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		return nil, fmt.Errorf("%s: invalid JSON: %v", field, err)
	}
	return &cfg, nil
}

// ListenAndServe serves h on addr until ctx is cancelled, then shuts down
// gracefully within 30 seconds.
func ListenAndServe(ctx context.Context, addr string, h http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}
	logger := logging.Component("server")
	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", addr).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	logger.Info().Msg("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
