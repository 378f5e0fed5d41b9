package stringutil

import "time"

const timestampFormat = "2006-01-02 15:04:05"

// FormatTimestamp returns the time formatted for output records.
func FormatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(timestampFormat)
}

// ParseTimestamp parses a timestamp produced by FormatTimestamp.
func ParseTimestamp(val string) (time.Time, error) {
	if val == "" {
		return time.Time{}, nil
	}
	return time.ParseInLocation(timestampFormat, val, time.Local)
}

// TruncString returns the string truncated to max bytes.
func TruncString(val string, max int) string {
	if len(val) > max {
		return val[:max]
	}
	return val
}
