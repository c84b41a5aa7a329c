package bootstrap

import (
	"context"
	"errors"
	"testing"

	"github.com/Domenick1991/airroutes/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockFlightLister struct {
	mock.Mock
}

func (m *MockFlightLister) List(ctx context.Context) ([]*domain.Flight, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Flight), args.Error(1)
}

const testFlightsFile = "../ingest/testdata/flights.csv"

func TestInitialFlights_PostgresWinsOverFile(t *testing.T) {
	ctx := context.Background()
	stored, err := domain.ParseFlight("AC100", "2015-05-10 08:00", "2015-05-10 18:00", "Air Canada", "Toronto", "Venice", "1299.00")
	require.NoError(t, err)

	repo := &MockFlightLister{}
	repo.On("List", ctx).Return([]*domain.Flight{stored}, nil).Once()

	source, flights, err := InitialFlights(ctx, repo, testFlightsFile)

	require.NoError(t, err)
	assert.Equal(t, SourcePostgres, source)
	require.Len(t, flights, 1)
	assert.Equal(t, "AC100", flights[0].Number())
	repo.AssertExpectations(t)
}

func TestInitialFlights_FileWithoutDatabase(t *testing.T) {
	source, flights, err := InitialFlights(context.Background(), nil, testFlightsFile)

	require.NoError(t, err)
	assert.Equal(t, SourceFile, source)
	assert.Len(t, flights, 9)
}

func TestInitialFlights_NothingConfigured(t *testing.T) {
	source, flights, err := InitialFlights(context.Background(), nil, "")

	require.NoError(t, err)
	assert.Empty(t, source)
	assert.Empty(t, flights)
}

func TestInitialFlights_Errors(t *testing.T) {
	ctx := context.Background()
	repo := &MockFlightLister{}
	repo.On("List", ctx).Return(nil, errors.New("connection refused")).Once()

	_, _, err := InitialFlights(ctx, repo, testFlightsFile)
	assert.ErrorContains(t, err, "list stored flights")

	_, _, err = InitialFlights(ctx, nil, "testdata/missing.csv")
	assert.ErrorContains(t, err, "read flights file")
}
