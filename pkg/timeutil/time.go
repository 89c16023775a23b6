package timeutil

import "time"

// ISO8601 is the layout Wompi accepts for checkout expiration dates
const ISO8601 = "2006-01-02T15:04:05Z07:00"

// Now returns the current time in UTC
// Always use this instead of time.Now() to ensure timezone consistency
func Now() time.Time {
	return time.Now().UTC()
}

// FormatISO8601 renders t in UTC with second precision, e.g. 2023-12-31T23:59:59Z
func FormatISO8601(t time.Time) string {
	return t.UTC().Truncate(time.Second).Format(ISO8601)
}

// ParseISO8601 parses an ISO-8601 timestamp and returns it in UTC
func ParseISO8601(value string) (time.Time, error) {
	t, err := time.Parse(ISO8601, value)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// FromUnix converts an event timestamp (unix seconds) to UTC
func FromUnix(seconds int64) time.Time {
	return time.Unix(seconds, 0).UTC()
}
