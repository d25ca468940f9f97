package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/glue"
	gluetypes "github.com/aws/aws-sdk-go-v2/service/glue/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"biorreator-telemetry/internal/models"
)

func ptr(v float64) *float64 { return &v }

func validReading() models.SensorReading {
	return models.SensorReading{
		PH:             ptr(7.1),
		Timestamp:      "2025-08-31 10:00:00",
		Equipment:      "25080001",
		PartitionYear:  "2025",
		PartitionMonth: "08",
		PartitionDay:   "31",
		PartitionHour:  "10",
	}
}

func TestConforms(t *testing.T) {
	table := SensorTable("s3://biorreator-data-tcc/data/")

	assert.NoError(t, table.Conforms(validReading()))
}

func TestConformsRejectsPartitionMismatch(t *testing.T) {
	table := SensorTable("s3://biorreator-data-tcc/data/")
	reading := validReading()
	reading.PartitionDay = "30"

	assert.Error(t, table.Conforms(reading))
}

func TestConformsRejectsBadTimestampLayout(t *testing.T) {
	table := SensorTable("s3://biorreator-data-tcc/data/")
	reading := validReading()
	reading.Timestamp = "2025-08-31T10:00:00Z"

	assert.Error(t, table.Conforms(reading))
}

func TestConformsRejectsMissingEquipment(t *testing.T) {
	table := SensorTable("s3://biorreator-data-tcc/data/")
	reading := validReading()
	reading.Equipment = ""

	assert.Error(t, table.Conforms(reading))
}

func TestMetricColumns(t *testing.T) {
	table := SensorTable("s3://biorreator-data-tcc/data/")

	assert.Equal(t, []string{"ph", "rpm", "tcd", "temperatura"}, table.MetricColumns())
	assert.True(t, table.HasMetric("ph"))
	assert.False(t, table.HasMetric("timestamp"))
	assert.False(t, table.HasMetric("year"))
}

func TestTableInput(t *testing.T) {
	table := SensorTable("s3://biorreator-data-tcc/data/")

	input := table.TableInput()

	require.NotNil(t, input.StorageDescriptor)
	require.Len(t, input.StorageDescriptor.Columns, 6)
	assert.Equal(t, "ph", *input.StorageDescriptor.Columns[0].Name)
	assert.Equal(t, "equipment", *input.StorageDescriptor.Columns[5].Name)
	assert.Equal(t, "s3://biorreator-data-tcc/data/", *input.StorageDescriptor.Location)
	require.Len(t, input.PartitionKeys, 3)
	assert.Equal(t, "year", *input.PartitionKeys[0].Name)
	assert.Equal(t, "org.openx.data.jsonserde.JsonSerDe",
		*input.StorageDescriptor.SerdeInfo.SerializationLibrary)
}

type fakeGlue struct {
	createErr error
	creates   int
	updates   int
}

func (g *fakeGlue) CreateTable(_ context.Context, _ *glue.CreateTableInput, _ ...func(*glue.Options)) (*glue.CreateTableOutput, error) {
	g.creates++
	return &glue.CreateTableOutput{}, g.createErr
}

func (g *fakeGlue) UpdateTable(_ context.Context, _ *glue.UpdateTableInput, _ ...func(*glue.Options)) (*glue.UpdateTableOutput, error) {
	g.updates++
	return &glue.UpdateTableOutput{}, nil
}

func TestRegisterCreates(t *testing.T) {
	client := &fakeGlue{}

	err := Register(context.Background(), client, SensorTable("s3://bucket/data/"))

	require.NoError(t, err)
	assert.Equal(t, 1, client.creates)
	assert.Equal(t, 0, client.updates)
}

func TestRegisterFallsBackToUpdate(t *testing.T) {
	client := &fakeGlue{createErr: &gluetypes.AlreadyExistsException{}}

	err := Register(context.Background(), client, SensorTable("s3://bucket/data/"))

	require.NoError(t, err)
	assert.Equal(t, 1, client.updates)
}

func TestRegisterPropagatesOtherErrors(t *testing.T) {
	client := &fakeGlue{createErr: errors.New("access denied")}

	err := Register(context.Background(), client, SensorTable("s3://bucket/data/"))

	assert.Error(t, err)
	assert.Equal(t, 0, client.updates)
}
