// Package livefeed mirrors normalized readings to InfluxDB so operators get
// a near-real-time view; the partitioned store remains the system of record
// and tolerates up to the query lookback of ingestion delay.
package livefeed

import (
	"context"
	"fmt"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"

	"biorreator-telemetry/internal/models"
)

// Feed writes sensor readings as InfluxDB points.
type Feed struct {
	client influxdb2.Client
	org    string
	bucket string
}

// New creates a Feed against the given InfluxDB instance.
func New(url, token, org, bucket string) *Feed {
	return &Feed{
		client: influxdb2.NewClient(url, token),
		org:    org,
		bucket: bucket,
	}
}

// WriteReading writes one reading as a point tagged by equipment. Only
// non-null metrics become fields; a reading with no metrics is skipped.
func (f *Feed) WriteReading(ctx context.Context, reading models.SensorReading) error {
	fields := make(map[string]interface{})
	if reading.PH != nil {
		fields["ph"] = *reading.PH
	}
	if reading.RPM != nil {
		fields["rpm"] = *reading.RPM
	}
	if reading.TCD != nil {
		fields["tcd"] = *reading.TCD
	}
	if reading.Temperatura != nil {
		fields["temperatura"] = *reading.Temperatura
	}
	if len(fields) == 0 {
		return nil
	}

	ts, err := time.Parse(models.TimestampLayout, reading.Timestamp)
	if err != nil {
		ts = time.Now().UTC()
	}

	point := influxdb2.NewPoint(
		"sensor_data",
		map[string]string{"equipment": reading.Equipment},
		fields,
		ts,
	)

	writeAPI := f.client.WriteAPIBlocking(f.org, f.bucket)
	if err := writeAPI.WritePoint(ctx, point); err != nil {
		return fmt.Errorf("writing point to InfluxDB: %w", err)
	}
	return nil
}

// Close releases the underlying client.
func (f *Feed) Close() {
	f.client.Close()
}
