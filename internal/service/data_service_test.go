package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"biorreator-telemetry/internal/catalog"
	"biorreator-telemetry/internal/models"
)

type fakeRepo struct {
	lastQuery string
	series    []models.TimeSeriesRow
	values    []models.LatestValue
	calls     int
}

func (r *fakeRepo) TimeSeriesRows(_ context.Context, query string) ([]models.TimeSeriesRow, error) {
	r.lastQuery = query
	r.calls++
	return r.series, nil
}

func (r *fakeRepo) LatestValues(_ context.Context, query string) ([]models.LatestValue, error) {
	r.lastQuery = query
	r.calls++
	return r.values, nil
}

type fakeCache struct {
	fail bool
	sets int
}

func (c *fakeCache) Get(_ context.Context, query string, dest any) (bool, error) {
	if c.fail {
		return false, errors.New("redis down")
	}
	return false, nil
}

func (c *fakeCache) Set(_ context.Context, query string, value any) error {
	if c.fail {
		return errors.New("redis down")
	}
	c.sets++
	return nil
}

var testNow = func() time.Time {
	return time.Date(2025, time.August, 31, 12, 0, 0, 0, time.UTC)
}

var testTable = catalog.SensorTable("s3://bucket/data/")

func TestGetTimeSeriesBuildsFilteredQuery(t *testing.T) {
	repo := &fakeRepo{series: []models.TimeSeriesRow{{Equipment: "25080001"}}}
	svc := NewDataService(repo, nil, testTable, testNow)

	rows, err := svc.GetTimeSeries(context.Background(), "25080001,25080002")
	require.NoError(t, err)

	assert.Len(t, rows, 1)
	assert.Contains(t, repo.lastQuery, "equipment IN ('25080001', '25080002')")
	assert.Contains(t, repo.lastQuery, "timestamp '2025-08-26 12:00:00'")
}

func TestGetTimeSeriesRejectsEmptyFilter(t *testing.T) {
	svc := NewDataService(&fakeRepo{}, nil, testTable, testNow)

	_, err := svc.GetTimeSeries(context.Background(), " , ")
	require.Error(t, err)

	var apiErr models.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, models.ErrorCodeValidationFailed, apiErr.Code)
}

func TestGetLatestValuesRejectsUnknownMetric(t *testing.T) {
	svc := NewDataService(&fakeRepo{}, nil, testTable, testNow)

	_, err := svc.GetLatestValues(context.Background(), "25080001", "pressure")
	require.Error(t, err)

	var apiErr models.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, models.ErrorCodeValidationFailed, apiErr.Code)
}

func TestGetLatestValuesStoresInCache(t *testing.T) {
	repo := &fakeRepo{values: []models.LatestValue{{Equipment: "25080001", Value: 7.3}}}
	resultCache := &fakeCache{}
	svc := NewDataService(repo, resultCache, testTable, testNow)

	values, err := svc.GetLatestValues(context.Background(), "25080001", "ph")
	require.NoError(t, err)

	assert.Equal(t, 7.3, values[0].Value)
	assert.Equal(t, 1, resultCache.sets)
}

func TestCacheFailureDegradesToDirectQuery(t *testing.T) {
	repo := &fakeRepo{values: []models.LatestValue{{Equipment: "25080001", Value: 7.3}}}
	svc := NewDataService(repo, &fakeCache{fail: true}, testTable, testNow)

	values, err := svc.GetLatestValues(context.Background(), "25080001", "ph")
	require.NoError(t, err)
	assert.Len(t, values, 1)
	assert.Equal(t, 1, repo.calls)
}
