package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	Cycles = promauto.NewCounter(prometheus.CounterOpts{
		Name: "loctrack_cycles_total",
		Help: "Total tracking cycles run",
	})
	ResolveFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "loctrack_resolve_failures_total",
		Help: "Cycles skipped because both geolocation paths failed",
	})
	ValidationFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "loctrack_validation_failures_total",
		Help: "Cycles skipped because the resolved fix was invalid",
	})
	RemoteWrites = promauto.NewCounter(prometheus.CounterOpts{
		Name: "loctrack_remote_writes_total",
		Help: "Fixes written directly to the remote store",
	})
	RemoteWriteFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "loctrack_remote_write_fallbacks_total",
		Help: "Direct remote writes that failed and fell back to the local buffer",
	})
	LocalWrites = promauto.NewCounter(prometheus.CounterOpts{
		Name: "loctrack_local_writes_total",
		Help: "Fixes buffered locally (offline routing or remote fallback)",
	})
	LocalWriteErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "loctrack_local_write_errors_total",
		Help: "Local buffer writes that failed",
	})
	SyncedRecords = promauto.NewCounter(prometheus.CounterOpts{
		Name: "loctrack_synced_records_total",
		Help: "Buffered records confirmed in the remote store",
	})
	SyncFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "loctrack_sync_failures_total",
		Help: "Drain passes halted by a remote write failure",
	})
	CycleDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "loctrack_cycle_duration_seconds",
		Help:    "Wall time of one tracking cycle",
		Buckets: prometheus.DefBuckets,
	})
)

func ObserveCycleDuration(start time.Time) {
	CycleDuration.Observe(time.Since(start).Seconds())
}

// StartMetricsServer serves /metrics and /healthz on addr. Blocks; run in a
// goroutine.
func StartMetricsServer(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return srv.ListenAndServe()
}
