package transform

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testClock = func() time.Time {
	return time.Date(2025, time.August, 31, 15, 30, 0, 0, time.UTC)
}

func TestNormalizeArrayWrappedValues(t *testing.T) {
	payload := []byte(`{
		"d": {"pH": [7.1], "rpm": [120], "tcd": [3.4], "temperatura": [36.5]},
		"ts": "2025-08-31 10:00:00",
		"equipment": "25080001"
	}`)

	reading, err := NewNormalizer(testClock).Normalize(payload)
	require.NoError(t, err)

	require.NotNil(t, reading.PH)
	assert.Equal(t, 7.1, *reading.PH)
	require.NotNil(t, reading.RPM)
	assert.Equal(t, int64(120), *reading.RPM)
	require.NotNil(t, reading.TCD)
	assert.Equal(t, 3.4, *reading.TCD)
	require.NotNil(t, reading.Temperatura)
	assert.Equal(t, 36.5, *reading.Temperatura)
	assert.Equal(t, "25080001", reading.Equipment)
	assert.Equal(t, "2025-08-31 10:00:00", reading.Timestamp)
	assert.Equal(t, "2025", reading.PartitionYear)
	assert.Equal(t, "08", reading.PartitionMonth)
	assert.Equal(t, "31", reading.PartitionDay)
	assert.Equal(t, "10", reading.PartitionHour)
}

func TestNormalizeScalarValuesAndLowercasePH(t *testing.T) {
	payload := []byte(`{
		"d": {"ph": 6.8, "rpm": 90},
		"ts": "2025-08-31 10:00:00",
		"equipment": "25080002"
	}`)

	reading, err := NewNormalizer(testClock).Normalize(payload)
	require.NoError(t, err)

	require.NotNil(t, reading.PH)
	assert.Equal(t, 6.8, *reading.PH)
	require.NotNil(t, reading.RPM)
	assert.Equal(t, int64(90), *reading.RPM)
	assert.Nil(t, reading.TCD)
	assert.Nil(t, reading.Temperatura)
}

func TestNormalizeNullAndEmptyArrays(t *testing.T) {
	payload := []byte(`{
		"d": {"pH": [null], "rpm": [], "tcd": null},
		"ts": "2025-08-31 10:00:00",
		"equipment": "25080001"
	}`)

	reading, err := NewNormalizer(testClock).Normalize(payload)
	require.NoError(t, err)

	assert.Nil(t, reading.PH)
	assert.Nil(t, reading.RPM)
	assert.Nil(t, reading.TCD)
}

func TestNormalizeCoercionFailureNullsAllMetrics(t *testing.T) {
	payload := []byte(`{
		"d": {"pH": [7.1], "rpm": ["not-a-number"], "tcd": [3.4]},
		"ts": "2025-08-31 10:00:00",
		"equipment": "25080001"
	}`)

	reading, err := NewNormalizer(testClock).Normalize(payload)
	require.NoError(t, err)

	assert.Nil(t, reading.PH)
	assert.Nil(t, reading.RPM)
	assert.Nil(t, reading.TCD)
	assert.Equal(t, "25080001", reading.Equipment)
	assert.Equal(t, "2025-08-31 10:00:00", reading.Timestamp)
}

func TestNormalizeBadTimestampFallsBackToClock(t *testing.T) {
	payload := []byte(`{
		"d": {"pH": [7.0]},
		"ts": "31/08/2025 10:00",
		"equipment": "25080001"
	}`)

	reading, err := NewNormalizer(testClock).Normalize(payload)
	require.NoError(t, err)

	assert.Equal(t, "2025-08-31 15:30:00", reading.Timestamp)
	assert.Equal(t, "2025", reading.PartitionYear)
	assert.Equal(t, "08", reading.PartitionMonth)
	assert.Equal(t, "31", reading.PartitionDay)
	assert.Equal(t, "15", reading.PartitionHour)
}

func TestNormalizeInvalidJSON(t *testing.T) {
	_, err := NewNormalizer(testClock).Normalize([]byte("not json"))
	assert.Error(t, err)
}

func TestEquipmentIDResolutionOrder(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    string
	}{
		{
			name:    "explicit field wins",
			payload: `{"d": {}, "ts": "2025-08-31 10:00:00", "equipment": "25080001", "topic": "PRO/99/data"}`,
			want:    "25080001",
		},
		{
			name:    "numeric equipment id",
			payload: `{"d": {}, "ts": "2025-08-31 10:00:00", "equipment": 25080001}`,
			want:    "25080001",
		},
		{
			name:    "topic second segment",
			payload: `{"d": {}, "ts": "2025-08-31 10:00:00", "topic": "PRO/25080002/data"}`,
			want:    "25080002",
		},
		{
			name:    "deviceId fallback",
			payload: `{"d": {}, "ts": "2025-08-31 10:00:00", "deviceId": "dev-7"}`,
			want:    "dev-7",
		},
		{
			name:    "nothing found",
			payload: `{"d": {}, "ts": "2025-08-31 10:00:00"}`,
			want:    "UNKNOWN",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			reading, err := NewNormalizer(testClock).Normalize([]byte(tc.payload))
			require.NoError(t, err)
			assert.Equal(t, tc.want, reading.Equipment)
		})
	}
}
