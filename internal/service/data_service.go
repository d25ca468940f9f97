// Package service orchestrates the dashboard read path: validate parameters,
// build the SQL with an injected clock, consult the cache, fall through to
// the query engine.
package service

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"biorreator-telemetry/internal/cache"
	"biorreator-telemetry/internal/catalog"
	"biorreator-telemetry/internal/models"
	"biorreator-telemetry/internal/queries"
	"biorreator-telemetry/internal/repository"
)

// ResultCache is what the service needs from the cache layer. Nil is a valid
// cache (caching disabled).
type ResultCache interface {
	Get(ctx context.Context, query string, dest any) (bool, error)
	Set(ctx context.Context, query string, value any) error
}

var _ ResultCache = (*cache.QueryCache)(nil)

// DataService handles the business logic for the telemetry read queries.
type DataService struct {
	repo  repository.Repository
	cache ResultCache
	table catalog.Table
	now   func() time.Time
}

// NewDataService creates a DataService. resultCache may be nil; a nil clock
// defaults to UTC now.
func NewDataService(repo repository.Repository, resultCache ResultCache, table catalog.Table, now func() time.Time) *DataService {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &DataService{repo: repo, cache: resultCache, table: table, now: now}
}

// GetTimeSeries returns all readings in the lookback window for the equipment
// in the comma-separated filter.
func (s *DataService) GetTimeSeries(ctx context.Context, equipmentFilter string) ([]models.TimeSeriesRow, error) {
	ids, err := queries.ParseEquipmentFilter(equipmentFilter)
	if err != nil {
		return nil, models.NewAPIError(models.ErrorCodeValidationFailed, err.Error(), nil, http.StatusBadRequest)
	}
	query, err := queries.TimeSeries(s.table, s.now(), ids)
	if err != nil {
		return nil, models.NewAPIError(models.ErrorCodeValidationFailed, err.Error(), nil, http.StatusBadRequest)
	}

	var cached []models.TimeSeriesRow
	if s.cacheGet(ctx, query, &cached) {
		return cached, nil
	}

	rows, err := s.repo.TimeSeriesRows(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying time series: %w", err)
	}
	s.cacheSet(ctx, query, rows)
	return rows, nil
}

// GetLatestValues returns, per equipment in the filter, the most recent
// non-null value of the requested metric.
func (s *DataService) GetLatestValues(ctx context.Context, equipmentFilter, metric string) ([]models.LatestValue, error) {
	ids, err := queries.ParseEquipmentFilter(equipmentFilter)
	if err != nil {
		return nil, models.NewAPIError(models.ErrorCodeValidationFailed, err.Error(), nil, http.StatusBadRequest)
	}
	query, err := queries.LatestValue(s.table, s.now(), ids, metric)
	if err != nil {
		return nil, models.NewAPIError(models.ErrorCodeValidationFailed, err.Error(), nil, http.StatusBadRequest)
	}

	var cached []models.LatestValue
	if s.cacheGet(ctx, query, &cached) {
		return cached, nil
	}

	values, err := s.repo.LatestValues(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying latest values: %w", err)
	}
	s.cacheSet(ctx, query, values)
	return values, nil
}

// cacheGet is best-effort: cache trouble degrades to a direct query.
func (s *DataService) cacheGet(ctx context.Context, query string, dest any) bool {
	if s.cache == nil {
		return false
	}
	hit, err := s.cache.Get(ctx, query, dest)
	if err != nil {
		log.Printf("Query cache read failed, querying directly: %v", err)
		return false
	}
	return hit
}

func (s *DataService) cacheSet(ctx context.Context, query string, value any) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, query, value); err != nil {
		log.Printf("Query cache write failed: %v", err)
	}
}
