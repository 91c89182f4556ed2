package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/KaramelBytes/eda-cli/internal/analysis"
	"github.com/KaramelBytes/eda-cli/internal/table"
)

const (
	// RequestIDHeader carries the request id on every response.
	RequestIDHeader = "X-Request-ID"

	uploadField          = "file"
	defaultMaxUploadSize = 32 << 20
)

// Options configures a Handler.
type Options struct {
	// Defaults are the thresholds used when a request does not override them.
	Defaults analysis.Options
	// Load controls CSV parsing of uploads.
	Load table.Options
	// MaxUploadBytes caps the request body; 32 MiB when zero.
	MaxUploadBytes int64
	Logger         *slog.Logger
}

// Handler serves the quality API.
type Handler struct {
	mux       *http.ServeMux
	defaults  atomic.Pointer[analysis.Options]
	load      table.Options
	maxUpload int64
	metrics   *metrics
	log       *slog.Logger
}

// New creates a Handler and registers all routes.
func New(opt Options) *Handler {
	h := &Handler{
		mux:       http.NewServeMux(),
		load:      opt.Load,
		maxUpload: opt.MaxUploadBytes,
		metrics:   newMetrics(),
		log:       opt.Logger,
	}
	if h.maxUpload <= 0 {
		h.maxUpload = defaultMaxUploadSize
	}
	if h.log == nil {
		h.log = slog.Default()
	}
	h.SetDefaults(opt.Defaults)

	h.mux.HandleFunc("/health", h.health)
	h.mux.HandleFunc("/quality-from-csv", h.qualityFromCSV)
	h.mux.HandleFunc("/quality-flags-from-csv", h.qualityFlagsFromCSV)
	h.mux.HandleFunc("/metrics", h.serveMetrics)
	return h
}

// SetDefaults replaces the default thresholds. Safe for concurrent use.
func (h *Handler) SetDefaults(o analysis.Options) {
	h.defaults.Store(&o)
}

// Defaults returns the thresholds currently in effect.
func (h *Handler) Defaults() analysis.Options {
	return *h.defaults.Load()
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := r.Header.Get(RequestIDHeader)
	if id == "" {
		id = uuid.NewString()
	}
	w.Header().Set(RequestIDHeader, id)

	sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
	start := time.Now()
	h.mux.ServeHTTP(sw, r)
	elapsed := time.Since(start)

	h.metrics.observe(routeLabel(r.URL.Path), sw.code, elapsed)
	h.log.Info("request",
		"request_id", id,
		"method", r.Method,
		"path", r.URL.Path,
		"status", sw.code,
		"duration_ms", elapsed.Milliseconds(),
	)
}

// --- route handlers ---------------------------------------------------------

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	jsonResp(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// qualityFromCSV returns the dataset summary of an uploaded CSV.
func (h *Handler) qualityFromCSV(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	start := time.Now()
	tbl, err := h.readUpload(w, r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	jsonResp(w, http.StatusOK, SummaryResponse{
		Summary:         analysis.Summarize(tbl),
		DurationSeconds: seconds(time.Since(start)),
	})
}

// qualityFlagsFromCSV returns quality flags of an uploaded CSV.
func (h *Handler) qualityFlagsFromCSV(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	start := time.Now()
	opt, err := h.thresholds(r)
	if err != nil {
		jsonErr(w, http.StatusBadRequest, err.Error())
		return
	}
	tbl, err := h.readUpload(w, r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	jsonResp(w, http.StatusOK, FlagsResponse{
		Flags:           analysis.ComputeQualityFlags(tbl, opt),
		DurationSeconds: seconds(time.Since(start)),
	})
}

func (h *Handler) serveMetrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	w.Header().Set("Content-Type", string(metricsFormat))
	w.WriteHeader(http.StatusOK)
	if err := h.metrics.write(w); err != nil {
		h.log.Error("metrics: encode failed", "err", err)
	}
}

// --- helpers ----------------------------------------------------------------

// thresholds applies query overrides to the current defaults.
func (h *Handler) thresholds(r *http.Request) (analysis.Options, error) {
	opt := h.Defaults()
	q := r.URL.Query()
	if v := q.Get("min_missing_share"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return opt, fmt.Errorf("invalid min_missing_share: %q", v)
		}
		opt.MinMissingShare = f
	}
	if v := q.Get("high_cardinality_threshold"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return opt, fmt.Errorf("invalid high_cardinality_threshold: %q", v)
		}
		opt.HighCardinalityThreshold = n
	}
	if err := opt.Validate(); err != nil {
		return opt, err
	}
	return opt, nil
}

// uploadError is a request problem reported to the client with its status.
type uploadError struct {
	code int
	msg  string
}

func (e *uploadError) Error() string { return e.msg }

// readUpload parses the multipart "file" field into a table.
func (h *Handler) readUpload(w http.ResponseWriter, r *http.Request) (*table.Table, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return nil, &uploadError{code: http.StatusRequestEntityTooLarge, msg: fmt.Sprintf("upload exceeds %d bytes", tooBig.Limit)}
		}
		return nil, &uploadError{code: http.StatusBadRequest, msg: "expected a multipart form upload"}
	}
	file, header, err := r.FormFile(uploadField)
	if err != nil {
		return nil, &uploadError{code: http.StatusBadRequest, msg: fmt.Sprintf("missing upload field %q", uploadField)}
	}
	defer file.Close()

	tbl, err := table.ReadCSV(file, header.Filename, h.load)
	if err != nil {
		var pe *table.ParseError
		switch {
		case errors.Is(err, table.ErrEmptyData):
			return nil, &uploadError{code: http.StatusBadRequest, msg: "Uploaded CSV is empty"}
		case errors.As(err, &pe):
			return nil, &uploadError{code: http.StatusBadRequest, msg: "CSV parsing error: " + pe.Error()}
		}
		return nil, err
	}
	h.metrics.addRows(tbl.NumRows())
	return tbl, nil
}

// fail writes client errors as-is and hides everything else behind a 500.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	var ue *uploadError
	if errors.As(err, &ue) {
		jsonErr(w, ue.code, ue.msg)
		return
	}
	h.log.Error("request failed", "path", r.URL.Path, "request_id", w.Header().Get(RequestIDHeader), "err", err)
	jsonErr(w, http.StatusInternalServerError, "internal error")
}

// seconds rounds d to milliseconds.
func seconds(d time.Duration) float64 {
	return math.Round(d.Seconds()*1000) / 1000
}

func jsonResp(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func jsonErr(w http.ResponseWriter, code int, msg string) {
	jsonResp(w, code, errorResponse{Detail: msg})
}

// statusWriter records the status code written by a handler.
type statusWriter struct {
	http.ResponseWriter
	code int
}

func (s *statusWriter) WriteHeader(code int) {
	s.code = code
	s.ResponseWriter.WriteHeader(code)
}
