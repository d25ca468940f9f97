package models

import "time"

// TimeSeriesRow is one row of the dashboard time-series query:
// (time, equipment, ph, rpm, tcd, temperatura).
type TimeSeriesRow struct {
	Time        time.Time `json:"time"`
	Equipment   string    `json:"equipment"`
	PH          *float64  `json:"ph"`
	RPM         *int64    `json:"rpm"`
	TCD         *float64  `json:"tcd"`
	Temperatura *float64  `json:"temperatura"`
}

// LatestValue is the scalar the stat query returns for one equipment: the
// most recent non-null reading of the requested metric.
type LatestValue struct {
	Equipment string  `json:"equipment"`
	Value     float64 `json:"value"`
}
