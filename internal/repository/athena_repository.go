// Package repository executes the built queries through Athena and decodes
// the result sets into typed rows.
package repository

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/athena"
	athenatypes "github.com/aws/aws-sdk-go-v2/service/athena/types"

	"biorreator-telemetry/internal/catalog"
	"biorreator-telemetry/internal/models"
)

// AthenaClient is the slice of the Athena API the repository needs, so tests
// can substitute a fake.
type AthenaClient interface {
	StartQueryExecution(ctx context.Context, params *athena.StartQueryExecutionInput, optFns ...func(*athena.Options)) (*athena.StartQueryExecutionOutput, error)
	GetQueryExecution(ctx context.Context, params *athena.GetQueryExecutionInput, optFns ...func(*athena.Options)) (*athena.GetQueryExecutionOutput, error)
	GetQueryResults(ctx context.Context, params *athena.GetQueryResultsInput, optFns ...func(*athena.Options)) (*athena.GetQueryResultsOutput, error)
}

var _ AthenaClient = (*athena.Client)(nil)

// Repository is the read-path contract the query service depends on.
type Repository interface {
	TimeSeriesRows(ctx context.Context, query string) ([]models.TimeSeriesRow, error)
	LatestValues(ctx context.Context, query string) ([]models.LatestValue, error)
}

// AthenaRepository runs queries in a workgroup and polls them to completion.
type AthenaRepository struct {
	client         AthenaClient
	table          catalog.Table
	workgroup      string
	outputLocation string
	pollInterval   time.Duration
}

// NewAthenaRepository creates an AthenaRepository.
func NewAthenaRepository(client AthenaClient, table catalog.Table, workgroup, outputLocation string) *AthenaRepository {
	return &AthenaRepository{
		client:         client,
		table:          table,
		workgroup:      workgroup,
		outputLocation: outputLocation,
		pollInterval:   500 * time.Millisecond,
	}
}

// run starts a query, waits for a terminal state and returns all result rows
// with the header row stripped.
func (r *AthenaRepository) run(ctx context.Context, query string) ([]athenatypes.Row, error) {
	start, err := r.client.StartQueryExecution(ctx, &athena.StartQueryExecutionInput{
		QueryString: aws.String(query),
		WorkGroup:   aws.String(r.workgroup),
		QueryExecutionContext: &athenatypes.QueryExecutionContext{
			Database: aws.String(r.table.Database),
		},
		ResultConfiguration: &athenatypes.ResultConfiguration{
			OutputLocation: aws.String(r.outputLocation),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("starting query execution: %w", err)
	}
	executionID := aws.ToString(start.QueryExecutionId)

	if err := r.waitForCompletion(ctx, executionID); err != nil {
		return nil, err
	}
	return r.fetchRows(ctx, executionID)
}

func (r *AthenaRepository) waitForCompletion(ctx context.Context, executionID string) error {
	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()

	for {
		out, err := r.client.GetQueryExecution(ctx, &athena.GetQueryExecutionInput{
			QueryExecutionId: aws.String(executionID),
		})
		if err != nil {
			return fmt.Errorf("polling query %s: %w", executionID, err)
		}

		status := out.QueryExecution.Status
		switch status.State {
		case athenatypes.QueryExecutionStateSucceeded:
			return nil
		case athenatypes.QueryExecutionStateFailed, athenatypes.QueryExecutionStateCancelled:
			reason := "no reason reported"
			if status.StateChangeReason != nil {
				reason = *status.StateChangeReason
			}
			return fmt.Errorf("query %s finished %s: %s", executionID, status.State, reason)
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("waiting for query %s: %w", executionID, ctx.Err())
		case <-ticker.C:
		}
	}
}

func (r *AthenaRepository) fetchRows(ctx context.Context, executionID string) ([]athenatypes.Row, error) {
	var rows []athenatypes.Row
	var nextToken *string
	firstPage := true

	for {
		out, err := r.client.GetQueryResults(ctx, &athena.GetQueryResultsInput{
			QueryExecutionId: aws.String(executionID),
			NextToken:        nextToken,
		})
		if err != nil {
			return nil, fmt.Errorf("fetching results for query %s: %w", executionID, err)
		}

		page := out.ResultSet.Rows
		if firstPage && len(page) > 0 {
			// The first row of the first page is the column header.
			page = page[1:]
			firstPage = false
		}
		rows = append(rows, page...)

		if out.NextToken == nil {
			return rows, nil
		}
		nextToken = out.NextToken
	}
}

// TimeSeriesRows runs the time-series query and decodes its six columns.
func (r *AthenaRepository) TimeSeriesRows(ctx context.Context, query string) ([]models.TimeSeriesRow, error) {
	rows, err := r.run(ctx, query)
	if err != nil {
		return nil, err
	}

	result := make([]models.TimeSeriesRow, 0, len(rows))
	for _, row := range rows {
		if len(row.Data) < 6 {
			log.Printf("Skipping short result row with %d columns", len(row.Data))
			continue
		}
		ts, err := parseResultTime(datumString(row.Data[0]))
		if err != nil {
			// The query excludes null timestamps; anything unparseable
			// here is a malformed result row, skip it.
			log.Printf("Skipping row with unparseable time: %v", err)
			continue
		}
		result = append(result, models.TimeSeriesRow{
			Time:        ts,
			Equipment:   datumString(row.Data[1]),
			PH:          datumFloat(row.Data[2]),
			RPM:         datumInt(row.Data[3]),
			TCD:         datumFloat(row.Data[4]),
			Temperatura: datumFloat(row.Data[5]),
		})
	}
	return result, nil
}

// LatestValues runs the stat query and decodes (equipment, value) pairs.
func (r *AthenaRepository) LatestValues(ctx context.Context, query string) ([]models.LatestValue, error) {
	rows, err := r.run(ctx, query)
	if err != nil {
		return nil, err
	}

	result := make([]models.LatestValue, 0, len(rows))
	for _, row := range rows {
		if len(row.Data) < 2 {
			continue
		}
		value := datumFloat(row.Data[1])
		if value == nil {
			// The query filters nulls; treat a null here defensively.
			continue
		}
		result = append(result, models.LatestValue{
			Equipment: datumString(row.Data[0]),
			Value:     *value,
		})
	}
	return result, nil
}

func datumString(d athenatypes.Datum) string {
	return aws.ToString(d.VarCharValue)
}

func datumFloat(d athenatypes.Datum) *float64 {
	if d.VarCharValue == nil {
		return nil
	}
	f, err := strconv.ParseFloat(*d.VarCharValue, 64)
	if err != nil {
		return nil
	}
	return &f
}

func datumInt(d athenatypes.Datum) *int64 {
	if d.VarCharValue == nil {
		return nil
	}
	i, err := strconv.ParseInt(*d.VarCharValue, 10, 64)
	if err != nil {
		return nil
	}
	return &i
}

// parseResultTime handles both timestamp renderings Athena produces,
// with and without milliseconds.
func parseResultTime(s string) (time.Time, error) {
	if ts, err := time.Parse("2006-01-02 15:04:05.000", s); err == nil {
		return ts, nil
	}
	return time.Parse(models.TimestampLayout, s)
}
