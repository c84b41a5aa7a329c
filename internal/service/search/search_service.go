package search

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Domenick1991/airroutes/internal/domain"
	"github.com/Domenick1991/airroutes/internal/graph"
	"github.com/Domenick1991/airroutes/internal/logger"
	"github.com/Domenick1991/airroutes/internal/metrics"
)

type SearchUseCase interface {
	DirectFlights(ctx context.Context, q Query) ([]*domain.Flight, error)
	Itineraries(ctx context.Context, q Query, order domain.SortOrder) ([]domain.Itinerary, error)
	AddFlights(ctx context.Context, source string, flights []*domain.Flight) (int, error)
	Stats(ctx context.Context) Stats
}

// ResultCache stores itinerary lists. A miss is reported as nil, nil.
type ResultCache interface {
	GetItineraries(ctx context.Context, key string) ([]domain.Itinerary, error)
	SetItineraries(ctx context.Context, key string, itineraries []domain.Itinerary) error
}

type Query struct {
	Date        domain.Date
	Origin      string
	Destination string
}

// cacheKey ties a result to the graph version it was computed from, so any
// ingestion implicitly invalidates older entries.
func (q Query) cacheKey(version uint64, order domain.SortOrder) string {
	sort := string(order)
	if sort == "" {
		sort = "none"
	}
	return fmt.Sprintf("%d:%s:%s:%s:%s", version, q.Date, q.Origin, q.Destination, sort)
}

type Stats struct {
	Locations        int    `json:"locations"`
	Flights          int    `json:"flights"`
	Version          uint64 `json:"version"`
	MaxConnectionGap string `json:"max_connection_gap"`
}

// SearchService owns the flight graph. Searches share a read lock; adding
// flights takes the write lock and bumps the graph version.
type SearchService struct {
	mu      sync.RWMutex
	graph   *graph.FlightGraph
	version uint64
	keys    map[string]struct{}
	cache   ResultCache
	metrics *metrics.Metrics
	log     logger.Logger
}

func NewSearchService(g *graph.FlightGraph, cache ResultCache, m *metrics.Metrics, log logger.Logger) *SearchService {
	s := &SearchService{graph: g, keys: make(map[string]struct{}), cache: cache, metrics: m, log: log}
	s.updateGauges()
	return s
}

func (s *SearchService) DirectFlights(ctx context.Context, q Query) ([]*domain.Flight, error) {
	start := time.Now()
	s.metrics.Searches.WithLabelValues("direct").Inc()

	s.mu.RLock()
	flights, err := s.graph.DirectFlights(q.Date, q.Origin, q.Destination)
	s.mu.RUnlock()

	s.metrics.SearchDuration.WithLabelValues("direct").Observe(time.Since(start).Seconds())
	if err != nil {
		s.metrics.ErrorsCount.WithLabelValues("direct").Inc()
		return nil, err
	}
	return flights, nil
}

func (s *SearchService) Itineraries(ctx context.Context, q Query, order domain.SortOrder) ([]domain.Itinerary, error) {
	start := time.Now()
	kind := "itineraries"
	if order != domain.SortNone {
		kind = "itineraries_by_" + string(order)
	}
	s.metrics.Searches.WithLabelValues(kind).Inc()
	defer func() {
		s.metrics.SearchDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
	}()

	if s.cache != nil {
		s.mu.RLock()
		key := q.cacheKey(s.version, order)
		s.mu.RUnlock()

		cached, err := s.cache.GetItineraries(ctx, key)
		if err != nil {
			s.log.Warn("itinerary cache read failed", "key", key, "error", err)
		} else if cached != nil {
			s.metrics.CacheHits.Inc()
			return cached, nil
		}
		s.metrics.CacheMisses.Inc()
	}

	s.mu.RLock()
	version := s.version
	found, err := s.graph.FindItinerariesSorted(q.Date, q.Origin, q.Destination, order)
	s.mu.RUnlock()
	if err != nil {
		s.metrics.ErrorsCount.WithLabelValues(kind).Inc()
		return nil, err
	}

	s.metrics.ItinerariesFound.Observe(float64(len(found)))
	s.log.Debug("itinerary search",
		"date", q.Date.String(), "origin", q.Origin, "destination", q.Destination,
		"order", kind, "found", len(found), "elapsed", time.Since(start))

	if s.cache != nil {
		key := q.cacheKey(version, order)
		if err := s.cache.SetItineraries(ctx, key, found); err != nil {
			s.log.Warn("itinerary cache write failed", "key", key, "error", err)
		}
	}
	return found, nil
}

// AddFlights inserts flights into the graph in order. It stops at the first
// rejected flight and reports how many were added before it.
func (s *SearchService) AddFlights(ctx context.Context, source string, flights []*domain.Flight) (int, error) {
	return s.add(source, flights, false)
}

// AddUnseenFlights is AddFlights for sources that may replay records the
// graph already holds: a flight whose Key was added before is skipped and
// not counted.
func (s *SearchService) AddUnseenFlights(ctx context.Context, source string, flights []*domain.Flight) (int, error) {
	return s.add(source, flights, true)
}

func (s *SearchService) add(source string, flights []*domain.Flight, skipSeen bool) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	added, skipped := 0, 0
	defer func() {
		if skipped > 0 {
			s.metrics.FlightsSkipped.WithLabelValues(source).Add(float64(skipped))
			s.log.Debug("skipped known flights", "source", source, "skipped", skipped)
		}
	}()

	for _, f := range flights {
		if skipSeen && f != nil {
			if _, ok := s.keys[f.Key()]; ok {
				skipped++
				continue
			}
		}
		if err := s.graph.AddFlight(f); err != nil {
			s.metrics.ErrorsCount.WithLabelValues("add_flight").Inc()
			s.finishAdd(source, added)
			return added, err
		}
		s.keys[f.Key()] = struct{}{}
		added++
	}
	s.finishAdd(source, added)
	return added, nil
}

func (s *SearchService) finishAdd(source string, added int) {
	if added == 0 {
		return
	}
	s.version++
	s.metrics.FlightsIngested.WithLabelValues(source).Add(float64(added))
	s.updateGauges()
}

func (s *SearchService) updateGauges() {
	s.metrics.GraphLocations.Set(float64(s.graph.NodeCount()))
	s.metrics.GraphFlights.Set(float64(s.graph.FlightCount()))
}

func (s *SearchService) Stats(ctx context.Context) Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Stats{
		Locations:        s.graph.NodeCount(),
		Flights:          s.graph.FlightCount(),
		Version:          s.version,
		MaxConnectionGap: domain.FormatDuration(s.graph.MaxConnectionGap()),
	}
}

var _ SearchUseCase = (*SearchService)(nil)
