// Package queries builds the parameterized Athena SQL the dashboard runs
// against the sensor table. Current time is an explicit parameter everywhere
// so query construction stays deterministic.
package queries

import (
	"fmt"
	"strings"
	"time"

	"biorreator-telemetry/internal/catalog"
	"biorreator-telemetry/internal/partition"
)

const (
	// TimeSeriesLookbackDays bounds the partitions the time-series query
	// scans, absorbing ingestion delay. Records delayed past it are
	// silently missed, an accepted staleness trade-off.
	TimeSeriesLookbackDays = 5

	// TimeSeriesBound is the rolling window applied after the timestamp
	// cast, relative to the injected now.
	TimeSeriesBound = 120 * time.Hour

	// LatestValueLookbackDays bounds the stat query's partition scan.
	LatestValueLookbackDays = 2

	// dateParseFormat is the Presto format matching models.TimestampLayout.
	dateParseFormat = "%Y-%m-%d %H:%i:%s"

	// boundLiteralLayout renders a time as an Athena timestamp literal.
	boundLiteralLayout = "2006-01-02 15:04:05"
)

// ParseEquipmentFilter splits the caller-supplied comma-separated equipment
// list. Empty entries are dropped; an empty result is an error because an
// unfiltered scan is never intended by the dashboard.
func ParseEquipmentFilter(filter string) ([]string, error) {
	var ids []string
	for _, part := range strings.Split(filter, ",") {
		if id := strings.TrimSpace(part); id != "" {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("equipment filter %q contains no equipment ids", filter)
	}
	return ids, nil
}

// equipmentIn renders the IN clause with each id single-quoted and
// quote-escaped. The API is the templating layer here, so it sanitizes.
func equipmentIn(ids []string) string {
	quoted := make([]string, len(ids))
	for i, id := range ids {
		quoted[i] = "'" + strings.ReplaceAll(id, "'", "''") + "'"
	}
	return "equipment IN (" + strings.Join(quoted, ", ") + ")"
}

// partitionPredicate renders the pruning predicate for the given tuples.
func partitionPredicate(keys []partition.Key) string {
	clauses := make([]string, len(keys))
	for i, key := range keys {
		clauses[i] = fmt.Sprintf("(year = '%s' AND month = '%s' AND day = '%s')",
			key.Year, key.Month, key.Day)
	}
	return "(" + strings.Join(clauses, " OR ") + ")"
}

func castTimestamp() string {
	return fmt.Sprintf("date_parse(timestamp, '%s')", dateParseFormat)
}

// TimeSeries builds the dashboard time-series query: all readings for the
// given equipment within the partition lookback, null timestamps excluded,
// trailing 120-hour bound applied after the cast. No ordering is imposed;
// the visualization decides.
func TimeSeries(table catalog.Table, now time.Time, equipmentIDs []string) (string, error) {
	if len(equipmentIDs) == 0 {
		return "", fmt.Errorf("at least one equipment id is required")
	}
	bound := now.Add(-TimeSeriesBound).UTC().Format(boundLiteralLayout)

	sql := fmt.Sprintf(`SELECT %[1]s AS time,
       equipment, ph, rpm, tcd, temperatura
FROM %[2]s
WHERE %[3]s
  AND %[4]s
  AND timestamp IS NOT NULL
  AND %[1]s >= timestamp '%[5]s'`,
		castTimestamp(),
		table.QualifiedName(),
		partitionPredicate(partition.Window(now, TimeSeriesLookbackDays)),
		equipmentIn(equipmentIDs),
		bound,
	)
	return sql, nil
}

// LatestValue builds the per-equipment latest-value stat query: rank rows per
// equipment by timestamp descending, keep rank 1, null metric values and null
// timestamps excluded. When two readings share an identical timestamp the
// winner is arbitrary; the source defines no secondary key.
func LatestValue(table catalog.Table, now time.Time, equipmentIDs []string, metric string) (string, error) {
	if len(equipmentIDs) == 0 {
		return "", fmt.Errorf("at least one equipment id is required")
	}
	if !table.HasMetric(metric) {
		return "", fmt.Errorf("unknown metric %q, expected one of %s",
			metric, strings.Join(table.MetricColumns(), ", "))
	}

	sql := fmt.Sprintf(`SELECT equipment, value
FROM (
    SELECT equipment,
           %[1]s AS value,
           row_number() OVER (PARTITION BY equipment ORDER BY %[2]s DESC) AS rn
    FROM %[3]s
    WHERE %[4]s
      AND %[5]s
      AND timestamp IS NOT NULL
      AND %[1]s IS NOT NULL
)
WHERE rn = 1`,
		metric,
		castTimestamp(),
		table.QualifiedName(),
		partitionPredicate(partition.Window(now, LatestValueLookbackDays)),
		equipmentIn(equipmentIDs),
	)
	return sql, nil
}
