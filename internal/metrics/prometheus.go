package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the service's prometheus collectors.
type Metrics struct {
	Searches         *prometheus.CounterVec
	SearchDuration   *prometheus.HistogramVec
	ItinerariesFound prometheus.Histogram
	CacheHits        prometheus.Counter
	CacheMisses      prometheus.Counter
	FlightsIngested  *prometheus.CounterVec
	FlightsSkipped   *prometheus.CounterVec
	ErrorsCount      *prometheus.CounterVec
	GraphLocations   prometheus.Gauge
	GraphFlights     prometheus.Gauge
}

// NewMetrics registers every collector on reg.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Searches: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_total",
			Help:      "The total number of searches by kind",
		}, []string{"kind"}),
		SearchDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_duration_seconds",
			Help:      "Time taken to answer a search",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind"}),
		ItinerariesFound: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "itineraries_found",
			Help:      "Number of itineraries returned per search",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}),
		CacheHits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_hits_total",
			Help:      "Itinerary searches answered from cache",
		}),
		CacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_misses_total",
			Help:      "Itinerary searches computed from the graph",
		}),
		FlightsIngested: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "flights_ingested_total",
			Help:      "The total number of flights added to the graph by source",
		}, []string{"source"}),
		FlightsSkipped: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "flights_skipped_total",
			Help:      "Replayed flights ignored because the graph already holds them",
		}, []string{"source"}),
		ErrorsCount: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "The total number of errors",
		}, []string{"operation"}),
		GraphLocations: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "graph_locations",
			Help:      "Locations currently known to the flight graph",
		}),
		GraphFlights: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "graph_flights",
			Help:      "Flights currently held by the flight graph",
		}),
	}
}
