package search

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Domenick1991/airroutes/internal/domain"
	"github.com/Domenick1991/airroutes/internal/graph"
	"github.com/Domenick1991/airroutes/internal/logger"
	"github.com/Domenick1991/airroutes/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockResultCache struct {
	mock.Mock
}

func (m *MockResultCache) GetItineraries(ctx context.Context, key string) ([]domain.Itinerary, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Itinerary), args.Error(1)
}

func (m *MockResultCache) SetItineraries(ctx context.Context, key string, itineraries []domain.Itinerary) error {
	args := m.Called(ctx, key, itineraries)
	return args.Error(0)
}

var may10 = domain.Date{Year: 2015, Month: time.May, Day: 10}

func flight(t *testing.T, number, dep, arr, origin, dest, price string) *domain.Flight {
	t.Helper()
	f, err := domain.ParseFlight(number, dep, arr, "air", origin, dest, price)
	require.NoError(t, err)
	return f
}

func newTestService(t *testing.T, cache ResultCache) (*SearchService, *metrics.Metrics) {
	t.Helper()
	m := metrics.NewMetrics("test", prometheus.NewRegistry())
	svc := NewSearchService(graph.New(), cache, m, logger.NewNop())

	_, err := svc.AddFlights(context.Background(), "test", []*domain.Flight{
		flight(t, "direct", "2015-05-10 08:00", "2015-05-10 18:00", "Toronto", "Venice", "1299.00"),
		flight(t, "leg1", "2015-05-10 07:00", "2015-05-10 12:00", "Toronto", "Paris", "650.50"),
		flight(t, "leg2", "2015-05-10 14:00", "2015-05-10 16:00", "Paris", "Venice", "120.25"),
	})
	require.NoError(t, err)
	return svc, m
}

func TestSearchService_Itineraries_NoCache(t *testing.T) {
	svc, m := newTestService(t, nil)
	q := Query{Date: may10, Origin: "Toronto", Destination: "Venice"}

	its, err := svc.Itineraries(context.Background(), q, domain.SortNone)

	require.NoError(t, err)
	require.Len(t, its, 2)
	assert.Equal(t, "direct", its[0].Legs()[0].Number())
	assert.Equal(t, 0.0, testutil.ToFloat64(m.CacheMisses))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.CacheHits))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Searches.WithLabelValues("itineraries")))
}

func TestSearchService_Itineraries_SortedByCost(t *testing.T) {
	svc, _ := newTestService(t, nil)
	q := Query{Date: may10, Origin: "Toronto", Destination: "Venice"}

	its, err := svc.Itineraries(context.Background(), q, domain.SortByCost)

	require.NoError(t, err)
	require.Len(t, its, 2)
	assert.Equal(t, "770.75", its[0].TotalPrice().StringFixed(2))
	assert.Equal(t, "1299.00", its[1].TotalPrice().StringFixed(2))
}

func TestSearchService_Itineraries_CacheMiss(t *testing.T) {
	mockCache := &MockResultCache{}
	svc, m := newTestService(t, mockCache)
	ctx := context.Background()
	q := Query{Date: may10, Origin: "Toronto", Destination: "Venice"}

	mockCache.On("GetItineraries", ctx, "1:2015-05-10:Toronto:Venice:time").Return(nil, nil).Once()
	mockCache.On("SetItineraries", ctx, "1:2015-05-10:Toronto:Venice:time", mock.AnythingOfType("[]domain.Itinerary")).Return(nil).Once()

	its, err := svc.Itineraries(ctx, q, domain.SortByTime)

	require.NoError(t, err)
	assert.Len(t, its, 2)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheMisses))
	mockCache.AssertExpectations(t)
}

func TestSearchService_Itineraries_CacheHit(t *testing.T) {
	mockCache := &MockResultCache{}
	svc, m := newTestService(t, mockCache)
	ctx := context.Background()
	q := Query{Date: may10, Origin: "Toronto", Destination: "Venice"}

	cached, err := domain.NewItinerary([]*domain.Flight{
		flight(t, "cached", "2015-05-10 08:00", "2015-05-10 09:00", "Toronto", "Venice", "1"),
	})
	require.NoError(t, err)
	mockCache.On("GetItineraries", ctx, "1:2015-05-10:Toronto:Venice:none").Return([]domain.Itinerary{cached}, nil).Once()

	its, err := svc.Itineraries(ctx, q, domain.SortNone)

	require.NoError(t, err)
	require.Len(t, its, 1)
	assert.Equal(t, "cached", its[0].Legs()[0].Number())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheHits))
	mockCache.AssertNotCalled(t, "SetItineraries")
}

func TestSearchService_Itineraries_CacheErrorFallsBack(t *testing.T) {
	mockCache := &MockResultCache{}
	svc, _ := newTestService(t, mockCache)
	ctx := context.Background()
	q := Query{Date: may10, Origin: "Toronto", Destination: "Venice"}

	mockCache.On("GetItineraries", ctx, mock.Anything).Return(nil, errors.New("cache error")).Once()
	mockCache.On("SetItineraries", ctx, mock.Anything, mock.Anything).Return(errors.New("cache error")).Once()

	its, err := svc.Itineraries(ctx, q, domain.SortNone)

	require.NoError(t, err)
	assert.Len(t, its, 2)
	mockCache.AssertExpectations(t)
}

func TestSearchService_AddFlightsBumpsVersion(t *testing.T) {
	mockCache := &MockResultCache{}
	svc, m := newTestService(t, mockCache)
	ctx := context.Background()
	q := Query{Date: may10, Origin: "Toronto", Destination: "Venice"}

	n, err := svc.AddFlights(ctx, "kafka", []*domain.Flight{
		flight(t, "late", "2015-05-10 20:00", "2015-05-10 23:00", "Toronto", "Venice", "99"),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	mockCache.On("GetItineraries", ctx, "2:2015-05-10:Toronto:Venice:none").Return(nil, nil).Once()
	mockCache.On("SetItineraries", ctx, "2:2015-05-10:Toronto:Venice:none", mock.Anything).Return(nil).Once()

	its, err := svc.Itineraries(ctx, q, domain.SortNone)

	require.NoError(t, err)
	assert.Len(t, its, 3)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FlightsIngested.WithLabelValues("kafka")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.GraphFlights))
	mockCache.AssertExpectations(t)
}

func TestSearchService_AddFlightsStopsAtNil(t *testing.T) {
	svc, _ := newTestService(t, nil)

	n, err := svc.AddFlights(context.Background(), "test", []*domain.Flight{
		flight(t, "ok", "2015-05-10 20:00", "2015-05-10 23:00", "A", "B", "1"),
		nil,
	})

	assert.ErrorIs(t, err, domain.ErrInvalidFlight)
	assert.Equal(t, 1, n)
	assert.Equal(t, uint64(2), svc.Stats(context.Background()).Version)
}

func TestSearchService_AddUnseenFlightsSkipsReplays(t *testing.T) {
	svc, m := newTestService(t, nil)
	ctx := context.Background()
	q := Query{Date: may10, Origin: "Toronto", Destination: "Venice"}

	replay := []*domain.Flight{
		flight(t, "direct", "2015-05-10 08:00", "2015-05-10 18:00", "Toronto", "Venice", "1299.00"),
		flight(t, "leg1", "2015-05-10 07:00", "2015-05-10 12:00", "Toronto", "Paris", "650.50"),
		flight(t, "leg2", "2015-05-10 14:00", "2015-05-10 16:00", "Paris", "Venice", "120.25"),
		flight(t, "new", "2015-05-10 20:00", "2015-05-10 23:00", "Toronto", "Venice", "99"),
		flight(t, "new", "2015-05-10 20:00", "2015-05-10 23:00", "Toronto", "Venice", "99"),
	}

	n, err := svc.AddUnseenFlights(ctx, "kafka", replay)

	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 4, svc.Stats(ctx).Flights)
	assert.Equal(t, 4.0, testutil.ToFloat64(m.FlightsSkipped.WithLabelValues("kafka")))

	its, err := svc.Itineraries(ctx, q, domain.SortNone)
	require.NoError(t, err)
	assert.Len(t, its, 3)
}

func TestSearchService_AddUnseenFlightsOnlyReplays(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()

	n, err := svc.AddUnseenFlights(ctx, "kafka", []*domain.Flight{
		flight(t, "leg1", "2015-05-10 07:00", "2015-05-10 12:00", "Toronto", "Paris", "650.50"),
	})

	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, uint64(1), svc.Stats(ctx).Version)
}

func TestSearchService_AddFlightsKeepsDuplicates(t *testing.T) {
	svc, _ := newTestService(t, nil)

	n, err := svc.AddFlights(context.Background(), "api", []*domain.Flight{
		flight(t, "leg1", "2015-05-10 07:00", "2015-05-10 12:00", "Toronto", "Paris", "650.50"),
	})

	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 4, svc.Stats(context.Background()).Flights)
}

func TestSearchService_Errors(t *testing.T) {
	svc, m := newTestService(t, nil)
	ctx := context.Background()

	_, err := svc.Itineraries(ctx, Query{Date: may10, Origin: "Paris", Destination: "Paris"}, domain.SortNone)
	assert.ErrorIs(t, err, domain.ErrDegenerateQuery)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ErrorsCount.WithLabelValues("itineraries")))

	_, err = svc.DirectFlights(ctx, Query{Date: may10, Origin: "Paris", Destination: "Paris"})
	assert.ErrorIs(t, err, domain.ErrDegenerateQuery)
}

func TestSearchService_DirectFlights(t *testing.T) {
	svc, _ := newTestService(t, nil)

	flights, err := svc.DirectFlights(context.Background(), Query{Date: may10, Origin: "Toronto", Destination: "Paris"})

	require.NoError(t, err)
	require.Len(t, flights, 1)
	assert.Equal(t, "leg1", flights[0].Number())
}

func TestSearchService_Stats(t *testing.T) {
	svc, _ := newTestService(t, nil)

	stats := svc.Stats(context.Background())

	assert.Equal(t, Stats{Locations: 3, Flights: 3, Version: 1, MaxConnectionGap: "06:00"}, stats)
}
