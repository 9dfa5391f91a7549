package analytics

import (
	"math"
	"sort"
	"strings"
	"time"
)

// MaxRangeDays caps the span of any dashboard or search date range.
const MaxRangeDays = 90

// DefaultRange is used when the caller sends no dates at all.
const DefaultRange = 24 * time.Hour

// ValidateDateRange normalizes a user supplied date range:
// zero values default to the last 24 hours, future dates clamp to now,
// swapped bounds are reordered and the span is capped at MaxRangeDays.
func ValidateDateRange(start, end time.Time, now time.Time) (time.Time, time.Time) {
	if end.IsZero() || end.After(now) {
		end = now
	}
	if start.IsZero() {
		start = end.Add(-DefaultRange)
	}
	if start.After(now) {
		start = now
	}
	if start.After(end) {
		start, end = end, start
	}
	if end.Sub(start) > MaxRangeDays*24*time.Hour {
		start = end.Add(-MaxRangeDays * 24 * time.Hour)
	}
	return start, end
}

// Percentage returns part/total as a percentage, 0 when total is 0.
func Percentage(part, total int64) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}

// RatePerMinute returns count divided by the elapsed window in minutes.
// Windows shorter than one minute count as one minute.
func RatePerMinute(count int64, window time.Duration) float64 {
	minutes := window.Minutes()
	if minutes < 1 {
		minutes = 1
	}
	return float64(count) / minutes
}

// Percentile returns the p-th percentile (0 < p <= 1) of values.
// The input does not need to be sorted. The element at index
// ceil(n*p)-1, clamped into [0, n-1], is returned; 0 for empty input.
func Percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	idx := int(math.Ceil(float64(len(sorted))*p)) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

// ParseException splits an exception string into a type and a message on the
// first ": " separator. Strings without a separator come back with type
// "Unknown" and the whole input as the message.
func ParseException(raw string) (excType, message string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "Unknown", ""
	}
	if idx := strings.Index(raw, ": "); idx > 0 {
		return raw[:idx], strings.TrimSpace(raw[idx+2:])
	}
	return "Unknown", raw
}

// FirstLine returns the first line of a multi-line string, trimmed.
func FirstLine(s string) string {
	if idx := strings.IndexAny(s, "\r\n"); idx >= 0 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}

var csvSanitizer = strings.NewReplacer("\r", " ", "\n", " ", "\t", " ")

// EscapeCSV renders a field safe for CSV output: the value is always quoted,
// embedded quotes are doubled and newlines/tabs become spaces.
func EscapeCSV(field string) string {
	field = csvSanitizer.Replace(field)
	field = strings.ReplaceAll(field, `"`, `""`)
	return `"` + field + `"`
}

// TruncateToHour drops minutes and smaller units, keeping the location.
func TruncateToHour(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, t.Location())
}
