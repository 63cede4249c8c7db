// Package observability holds the radar's Prometheus instrumentation.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "alpha_radar"

// Metrics collects the radar's operational counters and gauges.
type Metrics struct {
	MessagesProcessed prometheus.Counter
	MentionsRecorded  *prometheus.CounterVec
	AlertsSent        prometheus.Counter
	AlertsSuppressed  prometheus.Counter
	TrendingTokens    *prometheus.GaugeVec
	CooldownEntries   prometheus.Gauge
	ScanDuration      prometheus.Histogram
	MentionsPurged    prometheus.Counter
}

// New registers the radar metrics on the default registry.
func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith registers the radar metrics on reg. Tests pass a fresh registry
// so packages can build metrics independently.
func NewWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		MessagesProcessed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_processed_total",
			Help:      "Chat messages received from the gateway and scanned for contracts.",
		}),
		MentionsRecorded: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mentions_recorded_total",
			Help:      "Contract mentions written to storage, by chain and outcome.",
		}, []string{"chain", "result"}),
		AlertsSent: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_sent_total",
			Help:      "Trending alerts delivered to the self chat.",
		}),
		AlertsSuppressed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_suppressed_total",
			Help:      "Trending candidates suppressed by the cooldown gate.",
		}),
		TrendingTokens: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "trending_tokens",
			Help:      "Candidates produced by the most recent trending scan, by chain.",
		}, []string{"chain"}),
		CooldownEntries: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cooldown_entries",
			Help:      "Contracts currently inside their alert cooldown.",
		}),
		ScanDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "scan_duration_seconds",
			Help:      "Wall time of one trending scan including liquidity lookups.",
			Buckets:   prometheus.DefBuckets,
		}),
		MentionsPurged: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mentions_purged_total",
			Help:      "Mentions deleted by the retention loop.",
		}),
	}
}
