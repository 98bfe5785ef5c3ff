// Package metrics exposes Prometheus counters for playback, generation and
// slideshow image lookups.
package metrics

import (
	"errors"
	"net/http"
	"time"

	"briefcast/coordinator"
	"briefcast/types"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics is a coordinator hook that records into its own registry.
type Metrics struct {
	registry *prometheus.Registry

	tracksPlayed       prometheus.Counter
	tracksCompleted    prometheus.Counter
	audioCache         *prometheus.CounterVec
	generations        *prometheus.CounterVec
	generationDuration prometheus.Histogram
	imageLookups       *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		tracksPlayed: prometheus.NewCounter(
			prometheus.CounterOpts{Name: "briefcast_tracks_played_total", Help: "Tracks started"},
		),
		tracksCompleted: prometheus.NewCounter(
			prometheus.CounterOpts{Name: "briefcast_tracks_completed_total", Help: "Tracks played to the end"},
		),
		audioCache: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "briefcast_audio_cache_total", Help: "Track starts by audio cache result"},
			[]string{"result"},
		),
		generations: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "briefcast_generations_total", Help: "Finished generations by result"},
			[]string{"result"},
		),
		generationDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "briefcast_generation_duration_seconds",
				Help:    "Time from request to audio",
				Buckets: []float64{1, 5, 10, 20, 30, 45, 60, 90},
			},
		),
		imageLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "briefcast_image_lookups_total", Help: "Slideshow image lookups by result"},
			[]string{"result"},
		),
	}
	m.registry.MustRegister(
		m.tracksPlayed, m.tracksCompleted, m.audioCache,
		m.generations, m.generationDuration, m.imageLookups,
		prometheus.NewGoCollector(),
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) TrackStarted(_ types.Track, cached bool) {
	m.tracksPlayed.Inc()
	result := "miss"
	if cached {
		result = "hit"
	}
	m.audioCache.WithLabelValues(result).Inc()
}

func (m *Metrics) TrackEnded(types.Track) {
	m.tracksCompleted.Inc()
}

func (m *Metrics) GenerationFinished(_ types.GenerationState, took time.Duration, err error) {
	switch {
	case err == nil:
		m.generations.WithLabelValues("success").Inc()
		m.generationDuration.Observe(took.Seconds())
	case errors.Is(err, coordinator.ErrGenerationTimeout):
		m.generations.WithLabelValues("timeout").Inc()
	case errors.Is(err, coordinator.ErrGenerationCancelled):
		m.generations.WithLabelValues("cancelled").Inc()
	default:
		m.generations.WithLabelValues("error").Inc()
	}
}

// ImageLookup counts a slideshow lookup result.
func (m *Metrics) ImageLookup(result string) {
	m.imageLookups.WithLabelValues(result).Inc()
}
