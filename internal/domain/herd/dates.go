package herd

import (
	"time"

	"tambo-herd/pkg/errors"
)

// DateUnavailable is the sentinel shown when a stored date is missing or could
// not be parsed. Formatting one bad birthdate must never abort rendering the
// rest of the herd.
const DateUnavailable = "unavailable"

// timestampLayouts are the accepted wire formats, datetime first. Health and
// timing logic that needs hours requires one of the first two.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04",
	"2006-01-02",
	"02/01/2006",
}

// ParseTimestamp parses a date or date+time string. Unparseable input yields
// an InvalidTimestamp error; it is never coerced to now or to the epoch.
func ParseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.NewInvalidTimestampError("unparseable timestamp: " + s)
}

// FormatDate renders a date for display, degrading to the sentinel for zero
// values instead of failing.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return DateUnavailable
	}
	return t.Format("02/01")
}

// FormatFullDate renders a full date, with the same degradation.
func FormatFullDate(t time.Time) string {
	if t.IsZero() {
		return DateUnavailable
	}
	return t.Format("2006-01-02")
}
