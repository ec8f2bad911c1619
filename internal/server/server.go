// Package server exposes the calculators, calculation history, assistant and
// predictors as a JSON API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/iwvelando/fincalc/internal/assistant"
	"github.com/iwvelando/fincalc/internal/calculators"
	"github.com/iwvelando/fincalc/internal/history"
	"github.com/iwvelando/fincalc/internal/predict"
	"github.com/iwvelando/fincalc/pkg/constants"
	"go.uber.org/zap"
)

// UserIDHeader carries the caller's identity. Requests without it are
// calculated but not recorded.
const UserIDHeader = constants.UserHeader

// Options wires the handler's collaborators. Nil collaborators disable the
// routes that need them.
type Options struct {
	Registry    *calculators.Registry
	Recorder    *history.Recorder
	Assistant   *assistant.Client
	Loans       *predict.LoanClient
	Property    *predict.PropertyPredictor
	MaxBodySize int64
	RecentLimit int
	Version     string
}

type handler struct {
	logger      *zap.Logger
	registry    *calculators.Registry
	recorder    *history.Recorder
	assistant   *assistant.Client
	loans       *predict.LoanClient
	property    *predict.PropertyPredictor
	maxBodySize int64
	recentLimit int
	version     string
}

// NewHandler constructs the HTTP handler that serves the API.
func NewHandler(logger *zap.Logger, opts Options) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Registry == nil {
		opts.Registry = calculators.NewRegistry(calculators.Options{})
	}
	if opts.MaxBodySize <= 0 {
		opts.MaxBodySize = constants.DefaultMaxBodySizeBytes
	}
	if opts.RecentLimit <= 0 {
		opts.RecentLimit = constants.DefaultRecentLimit
	}

	trimmedVersion := strings.TrimSpace(opts.Version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{
		logger:      logger,
		registry:    opts.Registry,
		recorder:    opts.Recorder,
		assistant:   opts.Assistant,
		loans:       opts.Loans,
		property:    opts.Property,
		maxBodySize: opts.MaxBodySize,
		recentLimit: opts.RecentLimit,
		version:     trimmedVersion,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(h.logRequests)

	r.Route("/api", func(r chi.Router) {
		r.Get("/version", h.handleVersion)
		r.Get("/calculators", h.handleCatalog)
		r.Post("/calculators/{type}", h.handleCalculate)
		r.Get("/history", h.handleHistory)
		r.Delete("/history/{id}", h.handleDeleteHistory)
		r.Post("/assistant", h.handleAssistant)
		r.Post("/predict/loan", h.handlePredictLoan)
		r.Post("/predict/property", h.handlePredictProperty)
	})

	return r
}

func (h *handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		h.logger.Debug("request served",
			zap.String("op", "server.logRequests"),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.String("requestID", middleware.GetReqID(r.Context())),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

type calculateResponse struct {
	*calculators.Outcome
	Recorded bool `json:"recorded"`
}

type historyResponse struct {
	Records []history.Record    `json:"records"`
	Summary []history.TypeCount `json:"summary"`
}

type assistantRequest struct {
	History []assistant.Message `json:"history"`
	Query   string              `json:"query"`
}

type loanPredictionResponse struct {
	predict.LoanPrediction
	Status   string `json:"status"`
	Recorded bool   `json:"recorded"`
}

type propertyPredictionResponse struct {
	predict.PropertyEstimate
	Recorded bool `json:"recorded"`
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

func (h *handler) handleCatalog(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"calculators": h.registry.Catalog(),
	})
}

func (h *handler) handleCalculate(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleCalculate"
	calculatorType := chi.URLParam(r, "type")

	var params calculators.Params
	if !h.decodeBody(w, r, &params, op) {
		return
	}

	outcome, err := h.registry.Calculate(calculatorType, params)
	if err != nil {
		switch {
		case errors.Is(err, calculators.ErrUnknownCalculator):
			h.respondErrorWithOp(w, http.StatusNotFound, err.Error(), op)
		case errors.Is(err, calculators.ErrInvalidInput):
			h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		default:
			h.respondErrorWithOp(w, http.StatusInternalServerError, fmt.Sprintf("failed to calculate: %v", err), op)
		}
		return
	}

	if !queryBool(r, "schedule") {
		outcome.Schedule = nil
	}
	if !queryBoolDefault(r, "analytics", true) {
		outcome.Analytics = nil
	}

	recorded := h.recorder.Record(userID(r), outcome.Type, outcome.Description, outcome.Data)
	h.logger.Info("calculation computed",
		zap.String("op", op),
		zap.String("calculator", outcome.Type),
		zap.Bool("recorded", recorded),
	)

	h.writeJSON(w, http.StatusOK, calculateResponse{Outcome: outcome, Recorded: recorded})
}

func (h *handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleHistory"
	store, user, ok := h.historyAccess(w, r, op)
	if !ok {
		return
	}

	limit := h.recentLimit
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("invalid limit %q", raw), op)
			return
		}
		limit = parsed
	}

	records, err := store.Recent(r.Context(), user, limit)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, fmt.Sprintf("failed to load history: %v", err), op)
		return
	}
	if records == nil {
		records = []history.Record{}
	}

	h.writeJSON(w, http.StatusOK, historyResponse{Records: records, Summary: history.CountByType(records)})
}

func (h *handler) handleDeleteHistory(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleDeleteHistory"
	store, user, ok := h.historyAccess(w, r, op)
	if !ok {
		return
	}

	if err := store.Delete(r.Context(), user, chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, history.ErrNotFound) {
			h.respondErrorWithOp(w, http.StatusNotFound, err.Error(), op)
			return
		}
		h.respondErrorWithOp(w, http.StatusInternalServerError, fmt.Sprintf("failed to delete record: %v", err), op)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) historyAccess(w http.ResponseWriter, r *http.Request, op string) (history.Store, string, bool) {
	if h.recorder == nil || h.recorder.Store() == nil {
		h.respondErrorWithOp(w, http.StatusServiceUnavailable, "history is not configured", op)
		return nil, "", false
	}
	user := userID(r)
	if user == "" {
		h.respondErrorWithOp(w, http.StatusUnauthorized, fmt.Sprintf("%s header is required", UserIDHeader), op)
		return nil, "", false
	}
	return h.recorder.Store(), user, true
}

func (h *handler) handleAssistant(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleAssistant"

	var req assistantRequest
	if !h.decodeBody(w, r, &req, op) {
		return
	}

	if h.assistant == nil {
		if strings.TrimSpace(req.Query) == "" {
			h.respondErrorWithOp(w, http.StatusBadRequest, assistant.ErrEmptyQuery.Error(), op)
			return
		}
		h.writeJSON(w, http.StatusOK, assistant.Reply{Text: assistant.FallbackSuggestion(req.Query), Fallback: true})
		return
	}

	reply, err := h.assistant.Recommend(r.Context(), req.History, req.Query)
	if err != nil {
		if errors.Is(err, assistant.ErrEmptyQuery) {
			h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
			return
		}
		h.respondErrorWithOp(w, http.StatusInternalServerError, err.Error(), op)
		return
	}
	h.writeJSON(w, http.StatusOK, reply)
}

func (h *handler) handlePredictLoan(w http.ResponseWriter, r *http.Request) {
	const op = "server.handlePredictLoan"
	if h.loans == nil {
		h.respondErrorWithOp(w, http.StatusServiceUnavailable, "loan predictor is not configured", op)
		return
	}

	var app predict.LoanApplication
	if !h.decodeBody(w, r, &app, op) {
		return
	}

	prediction, err := h.loans.Predict(r.Context(), app)
	if err != nil {
		h.respondPredictError(w, err, op)
		return
	}

	recorded := h.recorder.Record(userID(r), predict.TypeLoanPrediction, prediction.Description(), prediction.HistoryData(app))
	h.writeJSON(w, http.StatusOK, loanPredictionResponse{
		LoanPrediction: prediction,
		Status:         prediction.Status(),
		Recorded:       recorded,
	})
}

func (h *handler) handlePredictProperty(w http.ResponseWriter, r *http.Request) {
	const op = "server.handlePredictProperty"
	if h.property == nil {
		h.respondErrorWithOp(w, http.StatusServiceUnavailable, "property predictor is not configured", op)
		return
	}

	var query predict.PropertyQuery
	if !h.decodeBody(w, r, &query, op) {
		return
	}

	estimate, err := h.property.Predict(r.Context(), query)
	if err != nil {
		h.respondPredictError(w, err, op)
		return
	}

	recorded := h.recorder.Record(userID(r), predict.TypePropertyPrediction, estimate.Description(query.Years), estimate.HistoryData(query))
	h.writeJSON(w, http.StatusOK, propertyPredictionResponse{PropertyEstimate: estimate, Recorded: recorded})
}

func (h *handler) respondPredictError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, predict.ErrInvalidInput):
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
	case errors.Is(err, predict.ErrUnavailable), errors.Is(err, predict.ErrInvalidResponse),
		errors.Is(err, context.DeadlineExceeded):
		h.respondErrorWithOp(w, http.StatusBadGateway, err.Error(), op)
	default:
		h.respondErrorWithOp(w, http.StatusInternalServerError, err.Error(), op)
	}
}

// decodeBody reads a JSON body no larger than the configured limit.
func (h *handler) decodeBody(w http.ResponseWriter, r *http.Request, out interface{}, op string) bool {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)
	decoder := json.NewDecoder(r.Body)
	decoder.UseNumber()
	if err := decoder.Decode(out); err != nil {
		var maxBytesErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxBytesErr):
			h.respondErrorWithOp(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request body exceeds limit of %d bytes", h.maxBodySize), op)
		case errors.Is(err, io.EOF):
			h.respondErrorWithOp(w, http.StatusBadRequest, "request body is empty", op)
		default:
			h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to decode request: %v", err), op)
		}
		return false
	}
	return true
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, status int, msg string, op string) {
	level := h.logger.Warn
	if status >= http.StatusInternalServerError {
		level = h.logger.Error
	}
	level("request failed",
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

func userID(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(UserIDHeader))
}

func queryBool(r *http.Request, key string) bool {
	return queryBoolDefault(r, key, false)
}

func queryBoolDefault(r *http.Request, key string, fallback bool) bool {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return parsed
}
