package metrics

import (
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Zuo-Peng/wa-chat-analyzer/internal/logging"
)

var (
	LinesRead = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "wca_lines_read_total",
		Help: "Physical transcript lines read",
	})
	RecordsParsed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "wca_records_parsed_total",
		Help: "Lines accepted as chat records",
	})
	LinesSkipped = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "wca_lines_skipped_total",
		Help: "Lines dropped while building the chat table, by reason",
	}, []string{"reason"})
	UnknownTimestamps = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "wca_unknown_timestamps_total",
		Help: "Records kept with an unparsable timestamp",
	})
	LoadDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "wca_load_duration_seconds",
		Help:    "Transcript load and build duration",
		Buckets: prometheus.DefBuckets,
	})
	LoadErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "wca_load_errors_total",
		Help: "Transcript loads that failed",
	})
	TranscriptsIndexed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "wca_index_transcripts_total",
		Help: "Transcripts visited by the indexer, by outcome",
	}, []string{"outcome"})
)

func init() {
	prometheus.MustRegister(LinesRead, RecordsParsed, LinesSkipped, UnknownTimestamps, LoadDuration, LoadErrors, TranscriptsIndexed)
}

// StartServer binds addr and serves /metrics on it in the background.
// Empty addr is a no-op. Bind errors are logged and returned; later serve
// errors are logged.
func StartServer(addr string) error {
	if addr == "" {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		logging.L().Error().Err(err).Str("addr", addr).Msg("metrics server")
		return fmt.Errorf("metrics: %w", err)
	}
	go func() {
		if err := http.Serve(ln, mux); err != nil {
			logging.L().Error().Err(err).Str("addr", addr).Msg("metrics server")
		}
	}()
	return nil
}

func ObserveLoad(start time.Time) {
	LoadDuration.Observe(time.Since(start).Seconds())
}

// IncSkipped counts n skipped lines for reason.
func IncSkipped(reason string, n int) {
	if n <= 0 {
		return
	}
	LinesSkipped.WithLabelValues(reason).Add(float64(n))
}
