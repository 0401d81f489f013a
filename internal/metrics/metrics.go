package metrics

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// LedgerMetrics groups the counters exported by the indexer.
type LedgerMetrics struct {
	eventsApplied    *prometheus.CounterVec
	eventsSkipped    *prometheus.CounterVec
	eventsFailed     *prometheus.CounterVec
	resolverOutcomes *prometheus.CounterVec
	decodeErrors     prometheus.Counter
	lastBlock        prometheus.Gauge
}

var (
	ledgerOnce     sync.Once
	ledgerRegistry *LedgerMetrics
)

// Ledger returns the process-wide metrics, registering them on first use.
func Ledger() *LedgerMetrics {
	ledgerOnce.Do(func() {
		ledgerRegistry = &LedgerMetrics{
			eventsApplied: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "stake_ledger_events_applied_total",
				Help: "Count of events applied to the ledger by event name.",
			}, []string{"event"}),
			eventsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "stake_ledger_events_skipped_total",
				Help: "Count of redelivered events skipped by event name.",
			}, []string{"event"}),
			eventsFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "stake_ledger_events_failed_total",
				Help: "Count of events whose application failed by event name.",
			}, []string{"event"}),
			resolverOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "stake_ledger_users_data_calls_total",
				Help: "Outcomes of versioned usersData calls by family and result.",
			}, []string{"family", "result"}),
			decodeErrors: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "stake_ledger_decode_errors_total",
				Help: "Number of logs that failed to decode.",
			}),
			lastBlock: prometheus.NewGauge(prometheus.GaugeOpts{
				Name: "stake_ledger_last_block",
				Help: "Last block fully processed.",
			}),
		}
		prometheus.MustRegister(
			ledgerRegistry.eventsApplied,
			ledgerRegistry.eventsSkipped,
			ledgerRegistry.eventsFailed,
			ledgerRegistry.resolverOutcomes,
			ledgerRegistry.decodeErrors,
			ledgerRegistry.lastBlock,
		)
	})
	return ledgerRegistry
}

func (m *LedgerMetrics) ObserveApplied(event string) {
	if m == nil {
		return
	}
	m.eventsApplied.WithLabelValues(labelOrUnknown(event)).Inc()
}

func (m *LedgerMetrics) ObserveSkipped(event string) {
	if m == nil {
		return
	}
	m.eventsSkipped.WithLabelValues(labelOrUnknown(event)).Inc()
}

func (m *LedgerMetrics) ObserveFailed(event string) {
	if m == nil {
		return
	}
	m.eventsFailed.WithLabelValues(labelOrUnknown(event)).Inc()
}

func (m *LedgerMetrics) ObserveResolver(family, result string) {
	if m == nil {
		return
	}
	m.resolverOutcomes.WithLabelValues(labelOrUnknown(family), labelOrUnknown(result)).Inc()
}

func (m *LedgerMetrics) IncDecodeError() {
	if m == nil {
		return
	}
	m.decodeErrors.Inc()
}

func (m *LedgerMetrics) SetLastBlock(block uint64) {
	if m == nil {
		return
	}
	m.lastBlock.Set(float64(block))
}

// Serve exposes the default registry on addr until ctx is cancelled.
func Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func labelOrUnknown(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
