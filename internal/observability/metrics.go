package observability

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/yungbote/winnie-backend/internal/platform/envutil"
	"github.com/yungbote/winnie-backend/internal/platform/logger"
)

type Metrics struct {
	apiRequests *CounterVec
	apiLatency  *HistogramVec
	apiInflight *Gauge

	llmRequests *CounterVec
	llmLatency  *HistogramVec
	llmTokens   *CounterVec

	mealPlans       *CounterVec
	researchLookups *CounterVec
	chatReplies     *CounterVec

	vectorOps     *CounterVec
	vectorLatency *HistogramVec

	redisUp   *Gauge
	redisPing *Gauge
}

var (
	initOnce sync.Once
	instance *Metrics
)

func Enabled() bool {
	return envutil.Bool("METRICS_ENABLED", false)
}

// Current returns the process-wide collector, or nil when metrics are off.
// Every method is safe on a nil receiver.
func Current() *Metrics {
	return instance
}

func Init(log *logger.Logger) *Metrics {
	if !Enabled() {
		return nil
	}
	initOnce.Do(func() {
		instance = newMetrics()
		if log != nil {
			log.Info("metrics initialized")
		}
	})
	return instance
}

func newMetrics() *Metrics {
	return &Metrics{
		apiRequests: NewCounterVec("winnie_api_requests_total", "Total API requests by method/route/status.", []string{"method", "route", "status"}),
		apiLatency: NewHistogramVec(
			"winnie_api_request_duration_seconds",
			"API request latency in seconds by method/route.",
			[]string{"method", "route"},
			[]float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		),
		apiInflight: NewGauge("winnie_api_inflight_requests", "In-flight API requests."),
		llmRequests: NewCounterVec("winnie_llm_requests_total", "LLM requests by model/endpoint/status.", []string{"model", "endpoint", "status"}),
		llmLatency: NewHistogramVec(
			"winnie_llm_request_duration_seconds",
			"LLM request latency in seconds by model/endpoint.",
			[]string{"model", "endpoint"},
			[]float64{0.25, 0.5, 1, 2, 5, 8, 12, 20, 30},
		),
		llmTokens:       NewCounterVec("winnie_llm_tokens_total", "LLM tokens by model/direction.", []string{"model", "direction"}),
		mealPlans:       NewCounterVec("winnie_meal_plans_total", "Meal plans produced by kind/outcome.", []string{"kind", "outcome"}),
		researchLookups: NewCounterVec("winnie_research_lookups_total", "Research context lookups by result.", []string{"result"}),
		chatReplies:     NewCounterVec("winnie_chat_replies_total", "Chat replies by source.", []string{"source"}),
		vectorOps:       NewCounterVec("winnie_vector_store_operations_total", "Vector store operations by operation/status.", []string{"operation", "status"}),
		vectorLatency: NewHistogramVec(
			"winnie_vector_store_operation_duration_seconds",
			"Vector store latency in seconds by operation.",
			[]string{"operation"},
			[]float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		),
		redisUp:   NewGauge("winnie_redis_up", "1 when the research cache answered the last ping."),
		redisPing: NewGauge("winnie_redis_ping_seconds", "Latency of the last research cache ping."),
	}
}

func (m *Metrics) StartServer(ctx context.Context, log *logger.Logger, addr string) {
	if m == nil {
		return
	}
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           http.HandlerFunc(m.WriteHTTP),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = srv.Shutdown(shutdownCtx)
		cancel()
	}()
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed && log != nil {
			log.Error("metrics server failed", "error", err, "addr", addr)
		}
	}()
}

func (m *Metrics) WriteHTTP(w http.ResponseWriter, r *http.Request) {
	if m == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	var buf bytes.Buffer
	if err := m.WritePrometheus(&buf); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	_, _ = w.Write(buf.Bytes())
}

func (m *Metrics) WritePrometheus(w io.Writer) error {
	if m == nil {
		return nil
	}
	writers := []interface{ WritePrometheus(io.Writer) error }{
		m.apiRequests, m.apiLatency, m.apiInflight,
		m.llmRequests, m.llmLatency, m.llmTokens,
		m.mealPlans, m.researchLookups, m.chatReplies,
		m.vectorOps, m.vectorLatency,
		m.redisUp, m.redisPing,
	}
	for _, wr := range writers {
		if err := wr.WritePrometheus(w); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	if method == "" {
		method = "UNKNOWN"
	}
	m.apiRequests.Inc(method, route, status)
	m.apiLatency.Observe(dur.Seconds(), method, route)
}

func (m *Metrics) ApiInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Add(1)
}

func (m *Metrics) ApiInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Add(-1)
}

func (m *Metrics) ObserveLLMRequest(model, endpoint, status string, dur time.Duration, inputTokens, outputTokens int) {
	if m == nil {
		return
	}
	m.llmRequests.Inc(model, endpoint, status)
	m.llmLatency.Observe(dur.Seconds(), model, endpoint)
	if inputTokens > 0 {
		m.llmTokens.Add(float64(inputTokens), model, "input")
	}
	if outputTokens > 0 {
		m.llmTokens.Add(float64(outputTokens), model, "output")
	}
}

// ObserveMealPlan counts a finished meal plan request. kind is daily, weekly,
// monthly or adaptive; outcome is generated, repaired or fallback.
func (m *Metrics) ObserveMealPlan(kind, outcome string) {
	if m == nil {
		return
	}
	m.mealPlans.Inc(kind, outcome)
}

func (m *Metrics) ObserveResearch(result string) {
	if m == nil {
		return
	}
	m.researchLookups.Inc(result)
}

func (m *Metrics) ObserveChat(source string) {
	if m == nil {
		return
	}
	m.chatReplies.Inc(source)
}

func (m *Metrics) ObserveVectorStoreOperation(operation, status string, dur time.Duration) {
	if m == nil {
		return
	}
	m.vectorOps.Inc(operation, status)
	m.vectorLatency.Observe(dur.Seconds(), operation)
}

// StartRedisCollector pings the research cache on an interval.
func (m *Metrics) StartRedisCollector(ctx context.Context, log *logger.Logger, rdb redis.UniversalClient) {
	if m == nil || rdb == nil {
		return
	}
	interval := envutil.Seconds("METRICS_SCRAPE_INTERVAL_SECONDS", 15*time.Second)
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				start := time.Now()
				if err := rdb.Ping(ctx).Err(); err != nil {
					m.redisUp.Set(0)
					if log != nil {
						log.Warn("metrics: redis ping failed", "error", err)
					}
					continue
				}
				m.redisUp.Set(1)
				m.redisPing.Set(time.Since(start).Seconds())
			}
		}
	}()
}
