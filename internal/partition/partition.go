// Package partition derives the zero-padded date partition keys shared by the
// ingestion transform, the catalog and the read queries, so the key format
// cannot drift between them.
package partition

import (
	"fmt"
	"time"
)

// Key is one (year, month, day) partition tuple as stored in the catalog:
// zero-padded decimal strings.
type Key struct {
	Year  string
	Month string
	Day   string
}

// Keys returns the partition tuple for the calendar date of t.
func Keys(t time.Time) Key {
	return Key{
		Year:  fmt.Sprintf("%04d", t.Year()),
		Month: fmt.Sprintf("%02d", int(t.Month())),
		Day:   fmt.Sprintf("%02d", t.Day()),
	}
}

// HourKey returns the zero-padded hour used by the delivery stream's dynamic
// partitioning. It is not a catalog partition key.
func HourKey(t time.Time) string {
	return fmt.Sprintf("%02d", t.Hour())
}

// Window returns the partition tuples for the calendar date of now plus the
// previous lookback days, newest first. The lookback exists to absorb
// ingestion delay; readings delayed past it fall outside every scanned
// partition and are silently missed.
func Window(now time.Time, lookbackDays int) []Key {
	keys := make([]Key, 0, lookbackDays+1)
	for i := 0; i <= lookbackDays; i++ {
		keys = append(keys, Keys(now.AddDate(0, 0, -i)))
	}
	return keys
}
