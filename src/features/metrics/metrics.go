package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Service owns the Prometheus registry and the collectors the lyric
// pipeline reports into.
type Service struct {
	registry *prometheus.Registry

	providerFetches  *prometheus.CounterVec
	cacheLookups     *prometheus.CounterVec
	negativeShortcut prometheus.Counter
	translations     *prometheus.CounterVec
	resolveDuration  prometheus.Histogram
	lineChanges      prometheus.Counter
}

// NewService creates the metrics service and registers all collectors.
func NewService() *Service {
	registry := prometheus.NewRegistry()

	s := &Service{
		registry: registry,
		providerFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lyricsync",
			Name:      "provider_fetches_total",
			Help:      "Lyric provider fetches by provider and outcome.",
		}, []string{"provider", "outcome"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lyricsync",
			Name:      "cache_lookups_total",
			Help:      "Bundle cache lookups by result.",
		}, []string{"result"}),
		negativeShortcut: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "lyricsync",
			Name:      "negative_cache_short_circuits_total",
			Help:      "Resolutions answered from the negative cache without any network call.",
		}),
		translations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lyricsync",
			Name:      "translation_calls_total",
			Help:      "Translation/romanization adapter calls by mode and outcome.",
		}, []string{"mode", "outcome"}),
		resolveDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "lyricsync",
			Name:      "resolve_duration_seconds",
			Help:      "Wall time of lyric resolutions.",
			Buckets:   prometheus.DefBuckets,
		}),
		lineChanges: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "lyricsync",
			Name:      "line_changes_total",
			Help:      "Current-line index changes emitted by the synchronizer.",
		}),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		s.providerFetches,
		s.cacheLookups,
		s.negativeShortcut,
		s.translations,
		s.resolveDuration,
		s.lineChanges,
	)
	return s
}

// Handler returns the /metrics HTTP handler for this registry.
func (s *Service) Handler() http.Handler {
	return promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})
}

// Fetch outcomes.
const (
	OutcomeOK       = "ok"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

// RecordFetch counts one provider fetch.
func (s *Service) RecordFetch(provider, outcome string) {
	s.providerFetches.WithLabelValues(provider, outcome).Inc()
}

// RecordCacheLookup counts one bundle cache lookup ("hit" or "miss").
func (s *Service) RecordCacheLookup(result string) {
	s.cacheLookups.WithLabelValues(result).Inc()
}

// RecordNegativeShortCircuit counts a resolve answered by the negative cache.
func (s *Service) RecordNegativeShortCircuit() {
	s.negativeShortcut.Inc()
}

// RecordTranslation counts one adapter call ("translate"/"romanize").
func (s *Service) RecordTranslation(mode, outcome string) {
	s.translations.WithLabelValues(mode, outcome).Inc()
}

// ObserveResolve records the duration of one resolution.
func (s *Service) ObserveResolve(d time.Duration) {
	s.resolveDuration.Observe(d.Seconds())
}

// RecordLineChange counts one current-line change.
func (s *Service) RecordLineChange() {
	s.lineChanges.Inc()
}
