// Package metrics exposes the daemon's refresh activity to Prometheus.
package metrics

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/penwyp/go-claude-usage/internal/core/model"
	"github.com/penwyp/go-claude-usage/internal/util"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	FetchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "claude_usage_fetches_total",
			Help: "Refresh cycles by outcome",
		},
		[]string{"outcome"},
	)

	FetchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "claude_usage_fetch_duration_seconds",
			Help:    "Duration of the claude /usage invocation including parsing",
			Buckets: []float64{.5, 1, 2, 5, 10, 20, 30, 45},
		},
	)

	SkippedRefreshes = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "claude_usage_refreshes_skipped_total",
			Help: "Refresh triggers ignored because a fetch was already in flight",
		},
	)

	UsagePercent = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "claude_usage_percent",
			Help: "Last reported usage percentage per category",
		},
		[]string{"category"},
	)

	ResetTimestamp = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "claude_usage_reset_timestamp_seconds",
			Help: "Resolved reset time per category as a Unix timestamp",
		},
		[]string{"category"},
	)

	LastSuccess = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "claude_usage_last_success_timestamp_seconds",
			Help: "Unix time of the last successful refresh",
		},
	)
)

func init() {
	prometheus.MustRegister(
		FetchesTotal,
		FetchDuration,
		SkippedRefreshes,
		UsagePercent,
		ResetTimestamp,
		LastSuccess,
	)
}

// Outcome labels for FetchesTotal
const (
	OutcomeSuccess   = "success"
	OutcomeNotFound  = "not_found"
	OutcomeTimeout   = "timeout"
	OutcomeExecError = "exec_error"
	OutcomeParse     = "parse_error"
	OutcomeStore     = "store_error"
	OutcomeCanceled  = "canceled"
)

// Recorder feeds refresh results into the package collectors
type Recorder struct{}

// NewRecorder returns a recorder backed by the default registry
func NewRecorder() *Recorder {
	return &Recorder{}
}

// FetchCompleted records one finished cycle
func (Recorder) FetchCompleted(outcome string, duration time.Duration, snapshot *model.UsageSnapshot) {
	FetchesTotal.WithLabelValues(outcome).Inc()
	FetchDuration.Observe(duration.Seconds())
	if snapshot == nil {
		return
	}

	LastSuccess.Set(float64(snapshot.LastUpdated.Unix()))
	for _, c := range model.Categories {
		metric := snapshot.Metric(c)
		UsagePercent.WithLabelValues(string(c)).Set(float64(metric.Percentage))
		if metric.ResetDate != nil {
			ResetTimestamp.WithLabelValues(string(c)).Set(float64(metric.ResetDate.Unix()))
		} else {
			ResetTimestamp.DeleteLabelValues(string(c))
		}
	}
}

// RefreshSkipped records a trigger dropped by the single-flight guard
func (Recorder) RefreshSkipped() {
	SkippedRefreshes.Inc()
}

// Server is the metrics HTTP server
type Server struct {
	server   *http.Server
	listener net.Listener
}

// NewServer creates a new metrics server
func NewServer(addr string) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	return &Server{
		server: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Start binds the address and serves in the background
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return err
	}
	s.listener = ln
	util.LogInfo("Starting metrics server", util.F("addr", ln.Addr().String()))

	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			util.LogErrorf("Metrics server on %s stopped: %v", ln.Addr(), err)
		}
	}()
	return nil
}

// Addr returns the bound address once started
func (s *Server) Addr() string {
	if s.listener == nil {
		return s.server.Addr
	}
	return s.listener.Addr().String()
}

// Stop shuts the server down
func (s *Server) Stop(ctx context.Context) error {
	util.LogInfo("Stopping metrics server")
	return s.server.Shutdown(ctx)
}
