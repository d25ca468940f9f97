package models

// TimestampLayout is the wire format the HMI uses for the "ts" field and the
// catalog uses for the timestamp column.
const TimestampLayout = "2006-01-02 15:04:05"

// SensorReading is one normalized bioreactor sample, fields in the catalog's
// column order. Metric fields are pointers so a missing or null sensor value
// survives as JSON null instead of a zero.
type SensorReading struct {
	PH          *float64 `json:"ph"`
	RPM         *int64   `json:"rpm"`
	TCD         *float64 `json:"tcd"`
	Temperatura *float64 `json:"temperatura"`
	Timestamp   string   `json:"timestamp"`
	Equipment   string   `json:"equipment"`

	// Dynamic partitioning keys, derived from Timestamp. The hour key is
	// consumed by the delivery stream only and is not a catalog partition.
	PartitionYear  string `json:"partition_year"`
	PartitionMonth string `json:"partition_month"`
	PartitionDay   string `json:"partition_day"`
	PartitionHour  string `json:"partition_hour"`
}

// RawEnvelope is the decoded MQTT payload as delivered by the broker rule.
// The HMI sends sensor values either as scalars or as single-element arrays,
// and the equipment id can live in one of three places, so the loosely typed
// fields are resolved by the transform layer.
type RawEnvelope struct {
	D         map[string]any `json:"d"`
	TS        string         `json:"ts"`
	Equipment any            `json:"equipment"`
	Topic     string         `json:"topic"`
	DeviceID  any            `json:"deviceId"`
}
