package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	metricsprom "github.com/slok/go-http-metrics/metrics/prometheus"
	httpmetrics "github.com/slok/go-http-metrics/middleware"
	httpmetricsstd "github.com/slok/go-http-metrics/middleware/std"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/callsight/insights-server/internal/pipeline"
	"github.com/callsight/insights-server/internal/service"
)

const (
	defaultCacheDuration  = 10 * time.Minute
	defaultRequestTimeout = 10 * time.Second
)

type cacheKeyPrefix string

const (
	cacheKeyDashboard cacheKeyPrefix = "http:call_dashboard"
	cacheKeyCall      cacheKeyPrefix = "http:call"
	cacheKeyCallList  cacheKeyPrefix = "http:call_list"
	cacheKeyInsights  cacheKeyPrefix = "http:call_insights"
	cacheKeyTrend     cacheKeyPrefix = "http:sentiment_trend"
)

type Handlers struct {
	analytics AnalyticsService
	cache     Cacher
	logger    *zap.Logger
	sfGroup   singleflight.Group
	cacheTTL  time.Duration
}

// NewHandlers initializes the HTTP handlers.
func NewHandlers(analytics AnalyticsService, cache Cacher, logger *zap.Logger, ttl time.Duration) *Handlers {
	if analytics == nil {
		panic("nil AnalyticsService provided to NewHandlers")
	}
	if ttl <= 0 {
		ttl = defaultCacheDuration
	}
	return &Handlers{
		analytics: analytics,
		cache:     cache,
		logger:    logger.Named("http-handler"),
		cacheTTL:  ttl,
	}
}

// Routes builds the full handler chain: mux, request logging and per-route
// prometheus metrics. Call it once per process; the metrics recorder
// registers collectors on the default registry.
func (h *Handlers) Routes() http.Handler {
	mdlw := httpmetrics.New(httpmetrics.Config{
		Recorder: metricsprom.NewRecorder(metricsprom.Config{}),
	})

	return RequestLogger(h.logger)(httpmetricsstd.Handler("", mdlw, h.router()))
}

func (h *Handlers) router() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/calls", h.getCalls)
	mux.HandleFunc("POST /api/calls", h.ingestCall)
	mux.HandleFunc("GET /api/calls/{id}", h.getCall)
	mux.HandleFunc("POST /api/insights", h.addInsight)
	mux.HandleFunc("GET /api/insights/{call_id}", h.callInsights)
	mux.HandleFunc("GET /api/analytics/sentiment-trend", h.sentimentTrend)

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.Handle("GET /metrics", promhttp.Handler())

	return mux
}

func normalizeKey(prefix cacheKeyPrefix, parts ...string) string {
	return string(prefix) + ":" + strings.Join(parts, ":")
}

// getCalls serves both the per-phone dashboard view (stats over the filtered
// records) and the paged listing, depending on whether a phone key is given.
func (h *Handlers) getCalls(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if phone := q.Get("phone"); phone != "" {
		h.callDashboard(w, r, phone)
		return
	}
	h.listCalls(w, r)
}

func (h *Handlers) callDashboard(w http.ResponseWriter, r *http.Request, phone string) {
	q := r.URL.Query()

	status, err := pipeline.ParseStatusFilter(q.Get("status"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	band, err := pipeline.ParseBandFilter(q.Get("sentiment"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	criteria := pipeline.Criteria{
		Search: q.Get("search"),
		Status: status,
		Band:   band,
	}

	ctx, cancel := context.WithTimeout(r.Context(), defaultRequestTimeout)
	defer cancel()

	key := normalizeKey(cacheKeyDashboard, phone, criteria.Search, string(status), string(band))

	dashboard, err := FindAndCache(ctx, h.cache, &h.sfGroup, key, h.cacheTTL, h.logger, func(fetchCtx context.Context) (service.CallDashboard, error) {
		return h.analytics.CallStats(fetchCtx, phone, criteria)
	})
	if err != nil {
		h.handleError(ctx, w, "CallDashboard", err)
		return
	}

	writeJSON(w, http.StatusOK, dashboard)
}

func (h *Handlers) listCalls(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit, err := intParam(q.Get("limit"), 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, "limit must be an integer")
		return
	}
	offset, err := intParam(q.Get("skip"), 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, "skip must be an integer")
		return
	}
	callType := q.Get("call_type")

	ctx, cancel := context.WithTimeout(r.Context(), defaultRequestTimeout)
	defer cancel()

	key := normalizeKey(cacheKeyCallList, strconv.Itoa(limit), strconv.Itoa(offset), callType)

	calls, err := FindAndCache(ctx, h.cache, &h.sfGroup, key, h.cacheTTL, h.logger, func(fetchCtx context.Context) ([]pipeline.CallRecord, error) {
		return h.analytics.ListCalls(fetchCtx, limit, offset, callType)
	})
	if err != nil {
		h.handleError(ctx, w, "ListCalls", err)
		return
	}

	writeJSON(w, http.StatusOK, calls)
}

func (h *Handlers) getCall(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	ctx, cancel := context.WithTimeout(r.Context(), defaultRequestTimeout)
	defer cancel()

	key := normalizeKey(cacheKeyCall, id)

	record, err := FindAndCache(ctx, h.cache, &h.sfGroup, key, h.cacheTTL, h.logger, func(fetchCtx context.Context) (pipeline.CallRecord, error) {
		return h.analytics.GetCall(fetchCtx, id)
	})
	if err != nil {
		h.handleError(ctx, w, "GetCall", err)
		return
	}

	writeJSON(w, http.StatusOK, record)
}

func (h *Handlers) ingestCall(w http.ResponseWriter, r *http.Request) {
	var in service.NewCall
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "malformed call payload: "+err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), defaultRequestTimeout)
	defer cancel()

	record, err := h.analytics.IngestCall(ctx, in)
	if err != nil {
		h.handleError(ctx, w, "IngestCall", err)
		return
	}

	writeJSON(w, http.StatusCreated, record)
}

func (h *Handlers) addInsight(w http.ResponseWriter, r *http.Request) {
	var in service.NewInsight
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "malformed insight payload: "+err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), defaultRequestTimeout)
	defer cancel()

	insight, err := h.analytics.AddInsight(ctx, in)
	if err != nil {
		h.handleError(ctx, w, "AddInsight", err)
		return
	}

	writeJSON(w, http.StatusCreated, insight)
}

func (h *Handlers) callInsights(w http.ResponseWriter, r *http.Request) {
	callID := r.PathValue("call_id")

	ctx, cancel := context.WithTimeout(r.Context(), defaultRequestTimeout)
	defer cancel()

	key := normalizeKey(cacheKeyInsights, callID)

	insights, err := FindAndCache(ctx, h.cache, &h.sfGroup, key, h.cacheTTL, h.logger, func(fetchCtx context.Context) ([]service.Insight, error) {
		return h.analytics.CallInsights(fetchCtx, callID)
	})
	if err != nil {
		h.handleError(ctx, w, "CallInsights", err)
		return
	}

	writeJSON(w, http.StatusOK, insights)
}

func (h *Handlers) sentimentTrend(w http.ResponseWriter, r *http.Request) {
	days, err := intParam(r.URL.Query().Get("days"), 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, "days must be an integer")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), defaultRequestTimeout)
	defer cancel()

	key := normalizeKey(cacheKeyTrend, strconv.Itoa(days))

	trend, err := FindAndCache(ctx, h.cache, &h.sfGroup, key, h.cacheTTL, h.logger, func(fetchCtx context.Context) (service.SentimentTrend, error) {
		return h.analytics.SentimentTrend(fetchCtx, days)
	})
	if err != nil {
		h.handleError(ctx, w, "SentimentTrend", err)
		return
	}

	writeJSON(w, http.StatusOK, trend)
}

func (h *Handlers) handleError(ctx context.Context, w http.ResponseWriter, op string, err error) {
	switch ctx.Err() {
	case context.Canceled:
		h.logger.Warn("request canceled", zap.String("op", op))
		writeError(w, http.StatusServiceUnavailable, "request canceled")
		return
	case context.DeadlineExceeded:
		h.logger.Warn("request timeout", zap.String("op", op))
		writeError(w, http.StatusGatewayTimeout, "request timed out")
		return
	}

	switch {
	case errors.Is(err, service.ErrNoCalls):
		h.logger.Info("no calls found", zap.String("op", op))
		writeError(w, http.StatusNotFound, "no calls found")
	case errors.Is(err, service.ErrInvalidRecord):
		h.logger.Info("invalid record rejected", zap.String("op", op), zap.Error(err))
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrStorageFailure):
		h.logger.Error("storage failure", zap.String("op", op), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "database error")
	default:
		h.logger.Error("unexpected error", zap.String("op", op), zap.Error(err))
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("%s failed", op))
	}
}

func intParam(raw string, fallback int) (int, error) {
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
