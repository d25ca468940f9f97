// Package catalog holds the data-catalog contract for the sensor table:
// column names, types and partition scheme. Every reader must match it
// exactly or partition pruning resolves nothing.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/glue"
	gluetypes "github.com/aws/aws-sdk-go-v2/service/glue/types"

	"biorreator-telemetry/internal/models"
	"biorreator-telemetry/internal/partition"
)

// Column is one catalog column.
type Column struct {
	Name string
	Type string
}

// Table describes one catalog table and where its files live.
type Table struct {
	Database      string
	Name          string
	Location      string
	Columns       []Column
	PartitionKeys []Column
}

// SensorTable returns the descriptor for the bioreactor readings table.
// Column order matches what the transform emits.
func SensorTable(location string) Table {
	return Table{
		Database: "biorreator_db",
		Name:     "sensor_data",
		Location: location,
		Columns: []Column{
			{Name: "ph", Type: "double"},
			{Name: "rpm", Type: "int"},
			{Name: "tcd", Type: "double"},
			{Name: "temperatura", Type: "double"},
			{Name: "timestamp", Type: "string"},
			{Name: "equipment", Type: "string"},
		},
		PartitionKeys: []Column{
			{Name: "year", Type: "string"},
			{Name: "month", Type: "string"},
			{Name: "day", Type: "string"},
		},
	}
}

// QualifiedName returns the quoted database.table reference for SQL.
func (t Table) QualifiedName() string {
	return fmt.Sprintf(`"%s"."%s"`, t.Database, t.Name)
}

// HasMetric reports whether name is a numeric metric column of the table.
func (t Table) HasMetric(name string) bool {
	for _, col := range t.Columns {
		if col.Name == name && (col.Type == "double" || col.Type == "int") {
			return true
		}
	}
	return false
}

// MetricColumns lists the numeric metric columns, in schema order.
func (t Table) MetricColumns() []string {
	var names []string
	for _, col := range t.Columns {
		if col.Type == "double" || col.Type == "int" {
			names = append(names, col.Name)
		}
	}
	return names
}

// Conforms checks a normalized reading against the table contract: the
// timestamp must parse with the catalog layout and the partition keys must
// match its calendar date, or scans will never find the record.
func (t Table) Conforms(r models.SensorReading) error {
	if r.Equipment == "" {
		return errors.New("equipment is required")
	}
	ts, err := time.Parse(models.TimestampLayout, r.Timestamp)
	if err != nil {
		return fmt.Errorf("timestamp %q does not match catalog layout: %w", r.Timestamp, err)
	}
	key := partition.Keys(ts)
	if r.PartitionYear != key.Year || r.PartitionMonth != key.Month || r.PartitionDay != key.Day {
		return fmt.Errorf("partition keys %s/%s/%s do not match timestamp date %s/%s/%s",
			r.PartitionYear, r.PartitionMonth, r.PartitionDay, key.Year, key.Month, key.Day)
	}
	return nil
}

// TableInput renders the descriptor for catalog registration. Records are
// stored as JSON lines, so the table uses the OpenX JSON SerDe.
func (t Table) TableInput() *gluetypes.TableInput {
	columns := make([]gluetypes.Column, 0, len(t.Columns))
	for _, col := range t.Columns {
		columns = append(columns, gluetypes.Column{
			Name: aws.String(col.Name),
			Type: aws.String(col.Type),
		})
	}
	partitionKeys := make([]gluetypes.Column, 0, len(t.PartitionKeys))
	for _, col := range t.PartitionKeys {
		partitionKeys = append(partitionKeys, gluetypes.Column{
			Name: aws.String(col.Name),
			Type: aws.String(col.Type),
		})
	}

	return &gluetypes.TableInput{
		Name:          aws.String(t.Name),
		TableType:     aws.String("EXTERNAL_TABLE"),
		PartitionKeys: partitionKeys,
		StorageDescriptor: &gluetypes.StorageDescriptor{
			Columns:      columns,
			Location:     aws.String(t.Location),
			InputFormat:  aws.String("org.apache.hadoop.mapred.TextInputFormat"),
			OutputFormat: aws.String("org.apache.hadoop.hive.ql.io.HiveIgnoreKeyTextOutputFormat"),
			SerdeInfo: &gluetypes.SerDeInfo{
				SerializationLibrary: aws.String("org.openx.data.jsonserde.JsonSerDe"),
			},
		},
	}
}

// GlueClient is the slice of the Glue API the catalog needs.
type GlueClient interface {
	CreateTable(ctx context.Context, params *glue.CreateTableInput, optFns ...func(*glue.Options)) (*glue.CreateTableOutput, error)
	UpdateTable(ctx context.Context, params *glue.UpdateTableInput, optFns ...func(*glue.Options)) (*glue.UpdateTableOutput, error)
}

// Register creates the table in the catalog, or updates it in place when it
// already exists, so the descriptor here stays the single source of truth.
func Register(ctx context.Context, client GlueClient, t Table) error {
	input := t.TableInput()
	_, err := client.CreateTable(ctx, &glue.CreateTableInput{
		DatabaseName: aws.String(t.Database),
		TableInput:   input,
	})
	if err == nil {
		log.Printf("Catalog table %s.%s created", t.Database, t.Name)
		return nil
	}

	var exists *gluetypes.AlreadyExistsException
	if !errors.As(err, &exists) {
		return fmt.Errorf("creating catalog table %s.%s: %w", t.Database, t.Name, err)
	}

	_, err = client.UpdateTable(ctx, &glue.UpdateTableInput{
		DatabaseName: aws.String(t.Database),
		TableInput:   input,
	})
	if err != nil {
		return fmt.Errorf("updating catalog table %s.%s: %w", t.Database, t.Name, err)
	}
	log.Printf("Catalog table %s.%s updated", t.Database, t.Name)
	return nil
}
