// Package server exposes the loan calculator over a JSON HTTP API.
package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/iwvelando/emi-calculator/internal/calculator"
	"github.com/iwvelando/emi-calculator/pkg/comparison"
	"github.com/iwvelando/emi-calculator/pkg/constants"
	"github.com/iwvelando/emi-calculator/pkg/format"
	"github.com/iwvelando/emi-calculator/pkg/loans"
	"github.com/iwvelando/emi-calculator/pkg/output"
	"github.com/iwvelando/emi-calculator/pkg/validation"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const requestTimeout = 30 * time.Second

type handler struct {
	logger      *zap.Logger
	calc        *calculator.Calculator
	builder     *loans.ScheduleBuilder
	maxBodySize int64
	version     string
}

// NewHandler constructs the HTTP handler that serves the calculator API.
// Metrics are registered with reg; a nil reg gets a private registry.
func NewHandler(logger *zap.Logger, cfg *Config, version string, reg *prometheus.Registry) http.Handler {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return NewHandlerWithLimiter(logger, cfg, version, reg, NewRateLimiter(cfg.RateLimit, logger))
}

// NewHandlerWithLimiter is NewHandler with a caller-owned rate limiter, so
// the caller can run its cleanup loop.
func NewHandlerWithLimiter(logger *zap.Logger, cfg *Config, version string, reg *prometheus.Registry, limiter *RateLimiter) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	if limiter == nil {
		limiter = NewRateLimiter(cfg.RateLimit, logger)
	}

	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{
		logger:      logger,
		calc:        calculator.New(logger, calculator.NewMetrics(reg)),
		builder:     loans.NewScheduleBuilder(logger),
		maxBodySize: cfg.BodySizeBytes(),
		version:     trimmedVersion,
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(requestLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(requestTimeout))
	router.Use(newHTTPMetrics(reg).middleware)
	router.Use(limiter.Middleware)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	metricsPath := cfg.MetricsPath
	if metricsPath == "" {
		metricsPath = constants.DefaultMetricsPath
	}
	router.Handle(metricsPath, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	router.Route("/api", func(r chi.Router) {
		r.Get("/version", h.handleVersion)
		r.Get("/currencies", h.handleCurrencies)
		r.Post("/emi", h.handleEMI)
		r.Post("/schedule", h.handleSchedule)
		r.Post("/compare", h.handleCompare)
		r.Post("/calculate", h.handleCalculate)
		r.Post("/report", h.handleReport)
	})

	return router
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

func (h *handler) handleCurrencies(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]any{
		"default":    constants.DefaultCurrency,
		"currencies": format.Currencies,
	})
}

func (h *handler) handleEMI(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleEMI"

	var req termsRequest
	if !h.decode(w, r, &req, op) {
		return
	}

	result, err := req.terms().EMI()
	if err != nil {
		h.respondCalculationError(w, err, op)
		return
	}
	h.writeJSON(w, http.StatusOK, newResultDTO(result))
}

func (h *handler) handleSchedule(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleSchedule"

	var req termsRequest
	if !h.decode(w, r, &req, op) {
		return
	}

	result, schedule, err := h.builder.Build(req.terms())
	if err != nil {
		h.respondCalculationError(w, err, op)
		return
	}
	h.writeJSON(w, http.StatusOK, scheduleResponse{
		Result:   newResultDTO(result),
		Schedule: newScheduleDTO(schedule, nil),
	})
}

func (h *handler) handleCompare(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleCompare"

	var req compareRequest
	if !h.decode(w, r, &req, op) {
		return
	}

	// Invalid rates, the primary included, are dropped rather than rejected.
	terms := loans.Terms{Principal: req.Principal, AnnualRatePercent: req.PrimaryRate, TermMonths: req.TermMonths}
	if err := terms.ValidatePrincipalAndTerm(); err != nil {
		h.respondCalculationError(w, err, op)
		return
	}

	scenarios := comparison.Compare(terms, req.PrimaryRate, req.ExtraRates)
	dropped := comparison.Dropped(comparison.CandidateRates(req.PrimaryRate, req.ExtraRates), scenarios)
	h.writeJSON(w, http.StatusOK, compareResponse{
		Scenarios: newScenarioDTOs(scenarios),
		Dropped:   dropped,
	})
}

func (h *handler) handleCalculate(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleCalculate"

	var in calculator.Inputs
	if !h.decode(w, r, &in, op) {
		return
	}

	calc, err := h.calc.Calculate(in)
	if err != nil {
		h.respondCalculationError(w, err, op)
		return
	}
	h.writeJSON(w, http.StatusOK, newCalculationResponse(calc))
}

func (h *handler) handleReport(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleReport"

	reportFormat := strings.TrimSpace(r.URL.Query().Get("format"))
	if reportFormat == "" {
		reportFormat = constants.OutputFormatMarkdown
	}
	if err := validation.ValidateOutputFormat(reportFormat); err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	var in calculator.Inputs
	if !h.decode(w, r, &in, op) {
		return
	}

	calc, err := h.calc.Calculate(in)
	if err != nil {
		h.respondCalculationError(w, err, op)
		return
	}

	var buf bytes.Buffer
	if err := output.Write(&buf, reportFormat, calc); err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, fmt.Sprintf("failed to render report: %v", err), op)
		return
	}

	w.Header().Set("Content-Type", reportContentTypes[reportFormat])
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logger.Error("failed to write report", zap.String("op", op), zap.Error(err))
	}
}

var reportContentTypes = map[string]string{
	constants.OutputFormatPretty:   "text/plain; charset=utf-8",
	constants.OutputFormatCSV:      "text/csv; charset=utf-8",
	constants.OutputFormatMarkdown: "text/markdown; charset=utf-8",
	constants.OutputFormatHTML:     "text/html; charset=utf-8",
}

// decode reads a JSON body into dst, responding with 413 or 400 on failure.
func (h *handler) decode(w http.ResponseWriter, r *http.Request, dst any, op string) bool {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondErrorWithOp(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request body exceeds limit of %d bytes", h.maxBodySize), op)
			return false
		}
		if errors.Is(err, io.EOF) {
			h.respondErrorWithOp(w, http.StatusBadRequest, "request body is empty", op)
			return false
		}
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to decode request: %v", err), op)
		return false
	}
	return true
}

func (h *handler) respondCalculationError(w http.ResponseWriter, err error, op string) {
	if errors.Is(err, loans.ErrInvalidTerms) {
		h.respondErrorWithOp(w, http.StatusUnprocessableEntity, err.Error(), op)
		return
	}
	h.respondErrorWithOp(w, http.StatusInternalServerError, err.Error(), op)
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, status int, msg string, op string) {
	level := h.logger.Warn
	if status >= http.StatusInternalServerError {
		level = h.logger.Error
	}
	level("calculation request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}

func newCalculationID() string {
	return uuid.NewString()
}
