package transform

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"biorreator-telemetry/internal/models"
)

type fakeMirror struct {
	readings []models.SensorReading
	fail     bool
}

func (m *fakeMirror) WriteReading(_ context.Context, r models.SensorReading) error {
	if m.fail {
		return errors.New("influx unreachable")
	}
	m.readings = append(m.readings, r)
	return nil
}

func TestHandleMixedBatch(t *testing.T) {
	handler := NewFirehoseHandler(NewNormalizer(testClock), nil)
	event := events.KinesisFirehoseEvent{
		Records: []events.KinesisFirehoseEventRecord{
			{
				RecordID: "rec-1",
				Data:     []byte(`{"d": {"pH": [7.3]}, "ts": "2025-08-31 11:00:00", "equipment": "25080001"}`),
			},
			{
				RecordID: "rec-2",
				Data:     []byte(`�garbage`),
			},
		},
	}

	response, err := handler.Handle(context.Background(), event)
	require.NoError(t, err)
	require.Len(t, response.Records, 2)

	good := response.Records[0]
	assert.Equal(t, "rec-1", good.RecordID)
	assert.Equal(t, events.KinesisFirehoseTransformedStateOk, good.Result)
	assert.Equal(t, map[string]string{
		"year": "2025", "month": "08", "day": "31", "hour": "11",
	}, good.Metadata.PartitionKeys)
	assert.Equal(t, byte('\n'), good.Data[len(good.Data)-1])

	var reading models.SensorReading
	require.NoError(t, json.Unmarshal(good.Data, &reading))
	require.NotNil(t, reading.PH)
	assert.Equal(t, 7.3, *reading.PH)
	assert.Equal(t, "25080001", reading.Equipment)

	bad := response.Records[1]
	assert.Equal(t, "rec-2", bad.RecordID)
	assert.Equal(t, events.KinesisFirehoseTransformedStateProcessingFailed, bad.Result)
}

func TestHandleMirrorsNormalizedReadings(t *testing.T) {
	mirror := &fakeMirror{}
	handler := NewFirehoseHandler(NewNormalizer(testClock), mirror)
	event := events.KinesisFirehoseEvent{
		Records: []events.KinesisFirehoseEventRecord{
			{
				RecordID: "rec-1",
				Data:     []byte(`{"d": {"tcd": [2.2]}, "ts": "2025-08-31 11:00:00", "equipment": "25080001"}`),
			},
		},
	}

	_, err := handler.Handle(context.Background(), event)
	require.NoError(t, err)
	require.Len(t, mirror.readings, 1)
	assert.Equal(t, "25080001", mirror.readings[0].Equipment)
}

func TestHandleMirrorFailureDoesNotFailRecord(t *testing.T) {
	handler := NewFirehoseHandler(NewNormalizer(testClock), &fakeMirror{fail: true})
	event := events.KinesisFirehoseEvent{
		Records: []events.KinesisFirehoseEventRecord{
			{
				RecordID: "rec-1",
				Data:     []byte(`{"d": {}, "ts": "2025-08-31 11:00:00", "equipment": "25080001"}`),
			},
		},
	}

	response, err := handler.Handle(context.Background(), event)
	require.NoError(t, err)
	assert.Equal(t, events.KinesisFirehoseTransformedStateOk, response.Records[0].Result)
}
