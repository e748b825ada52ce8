package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "avrentals_http_requests_total",
		Help: "Total HTTP requests by method, path and status",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "avrentals_http_request_duration_seconds",
		Help:    "HTTP request latency by method and path",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})
)

// Translation pipeline metrics
var (
	MemoryCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "avrentals_translation_memory_cache_hits_total",
		Help: "Lookups served from the in-process translation cache",
	})

	MemoryCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "avrentals_translation_memory_cache_misses_total",
		Help: "Lookups that missed the in-process translation cache",
	})

	StoreHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "avrentals_translation_store_hits_total",
		Help: "Lookups served from the durable translation store",
	})

	StoreMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "avrentals_translation_store_misses_total",
		Help: "Lookups that missed the durable translation store",
	})

	TranslationsServedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "avrentals_translations_served_total",
		Help: "Translations returned to callers by resolution source",
	}, []string{"source"}) // "memory", "store", "provider", "fallback", "passthrough"

	UsageUpdatesDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "avrentals_translation_usage_updates_dropped_total",
		Help: "Hit-count updates dropped because the recorder queue was full",
	})
)

// Provider metrics
var (
	ProviderRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "avrentals_provider_requests_total",
		Help: "Provider batch calls by model",
	}, []string{"model"})

	ProviderErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "avrentals_provider_errors_total",
		Help: "Provider failures by reason",
	}, []string{"reason"}) // "network", "throttled", "api", "parse", "empty"

	ProviderLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "avrentals_provider_latency_seconds",
		Help:    "Provider batch call latency",
		Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30},
	})

	CredentialCooldownsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "avrentals_credential_cooldowns_total",
		Help: "Times a provider credential was forced into cooldown",
	})

	ChunksDegradedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "avrentals_translation_chunks_degraded_total",
		Help: "Dispatch chunks that fell back to source text",
	})
)

// Gauges refreshed from the database
var (
	TranslationRecords = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "avrentals_translation_records",
		Help: "Rows in the translations table",
	})

	TranslationRecordsByStatus = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "avrentals_translation_records_by_status",
		Help: "Rows in the translations table by status",
	}, []string{"status"})

	TranslationRecordsByLang = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "avrentals_translation_records_by_lang",
		Help: "Rows in the translations table by target language",
	}, []string{"lang"})
)
