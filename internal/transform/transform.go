// Package transform normalizes raw bioreactor payloads into catalog-shaped
// records for the delivery stream.
package transform

import (
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"biorreator-telemetry/internal/models"
	"biorreator-telemetry/internal/partition"
)

// Normalizer turns decoded sensor payloads into SensorReadings. The clock is
// injected so timestamp fallbacks stay deterministic in tests.
type Normalizer struct {
	clock func() time.Time
}

// NewNormalizer creates a Normalizer. A nil clock defaults to UTC now.
func NewNormalizer(clock func() time.Time) *Normalizer {
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}
	return &Normalizer{clock: clock}
}

// Normalize decodes one raw payload and produces the normalized record with
// explicit field types and partition keys. A payload that is not valid JSON
// fails; a payload whose sensor fields cannot be coerced normalizes to null
// metrics instead, so one bad sensor never drops the sample.
func (n *Normalizer) Normalize(payload []byte) (models.SensorReading, error) {
	var env models.RawEnvelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return models.SensorReading{}, fmt.Errorf("decoding payload: %w", err)
	}

	equipment := extractEquipmentID(env)

	ts := env.TS
	parsed, err := time.Parse(models.TimestampLayout, ts)
	if err != nil {
		now := n.clock()
		if ts != "" {
			log.Printf("Error parsing timestamp %q, using current time: %v", ts, err)
		}
		ts = now.Format(models.TimestampLayout)
		parsed = now
	}

	key := partition.Keys(parsed)
	reading := models.SensorReading{
		Timestamp:      ts,
		Equipment:      equipment,
		PartitionYear:  key.Year,
		PartitionMonth: key.Month,
		PartitionDay:   key.Day,
		PartitionHour:  partition.HourKey(parsed),
	}

	ph, err1 := floatField(env.D, "pH", "ph")
	rpm, err2 := intField(env.D, "rpm")
	tcd, err3 := floatField(env.D, "tcd")
	temp, err4 := floatField(env.D, "temperatura")
	for _, err := range []error{err1, err2, err3, err4} {
		if err != nil {
			// Source behavior: a coercion failure nulls every metric
			// rather than failing the record.
			log.Printf("Error transforming sensor data for equipment %s: %v", equipment, err)
			return reading, nil
		}
	}
	reading.PH = ph
	reading.RPM = rpm
	reading.TCD = tcd
	reading.Temperatura = temp

	return reading, nil
}

// extractEquipmentID resolves the equipment id from the payload: explicit
// field first, then the second topic segment, then the device id.
func extractEquipmentID(env models.RawEnvelope) string {
	if id := stringify(env.Equipment); id != "" {
		return id
	}
	if parts := strings.Split(env.Topic, "/"); env.Topic != "" && len(parts) >= 2 {
		return parts[1]
	}
	if id := stringify(env.DeviceID); id != "" {
		return id
	}
	log.Println("No equipment ID found, using UNKNOWN")
	return "UNKNOWN"
}

func stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		// JSON numbers decode as float64; equipment ids are integral.
		return strconv.FormatInt(int64(val), 10)
	default:
		return fmt.Sprintf("%v", val)
	}
}

// unwrap peels the HMI's single-element array wrapping off a sensor value.
// Returns nil when the field is absent, null, or an empty array.
func unwrap(d map[string]any, keys ...string) any {
	for _, key := range keys {
		v, ok := d[key]
		if !ok {
			continue
		}
		if arr, isArr := v.([]any); isArr {
			if len(arr) == 0 || arr[0] == nil {
				return nil
			}
			return arr[0]
		}
		return v
	}
	return nil
}

func floatField(d map[string]any, keys ...string) (*float64, error) {
	v := unwrap(d, keys...)
	if v == nil {
		return nil, nil
	}
	switch val := v.(type) {
	case float64:
		return &val, nil
	case string:
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", keys[0], err)
		}
		return &f, nil
	default:
		return nil, fmt.Errorf("field %s: cannot coerce %T to float", keys[0], v)
	}
}

func intField(d map[string]any, keys ...string) (*int64, error) {
	v := unwrap(d, keys...)
	if v == nil {
		return nil, nil
	}
	switch val := v.(type) {
	case float64:
		i := int64(val)
		return &i, nil
	case string:
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", keys[0], err)
		}
		i := int64(f)
		return &i, nil
	default:
		return nil, fmt.Errorf("field %s: cannot coerce %T to int", keys[0], v)
	}
}
