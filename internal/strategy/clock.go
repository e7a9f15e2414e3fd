package strategy

import (
	"strings"
	"time"

	"github.com/rxtech-lab/argo-backtest/pkg/errors"
)

var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
}

// clockReading is a timestamp reduced to comparable integers.
type clockReading struct {
	// minutes since the Unix epoch
	epochMinutes int64
	// minutes since midnight, in the timestamp's own clock
	minuteOfDay int
}

// readClock parses a tick timestamp. ok is false when no layout matches.
func readClock(timestamp string) (clockReading, bool) {
	timestamp = strings.TrimSpace(timestamp)

	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, timestamp)
		if err != nil {
			continue
		}

		return clockReading{
			epochMinutes: t.Unix() / 60,
			minuteOfDay:  t.Hour()*60 + t.Minute(),
		}, true
	}

	return clockReading{}, false
}

// parseSessionTime parses "HH:MM" into minutes since midnight.
func parseSessionTime(component, parameter, value string) (int, error) {
	t, err := time.Parse("15:04", value)
	if err != nil {
		return 0, errors.NewInvalidParameterError(component, parameter, "must be a time of day formatted as HH:MM", value)
	}

	return t.Hour()*60 + t.Minute(), nil
}

// tradingDay returns the date prefix of a timestamp, or "" when it has none.
func tradingDay(timestamp string) string {
	if len(timestamp) < len("2006-01-02") {
		return ""
	}

	return timestamp[:len("2006-01-02")]
}
