package exporter

import (
	"strconv"
	"time"
)

// TimeLayout is the ISO-8601 layout used for every exported timestamp
const TimeLayout = time.RFC3339Nano

// formatInt formats an int64 value for CSV output
func formatInt(i int64) string {
	return strconv.FormatInt(i, 10)
}

// formatBool formats a boolean value for CSV output
func formatBool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

// formatOptional renders an absent value as an empty cell
func formatOptional(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// formatTime renders a timestamp in TimeLayout, an absent one as an empty cell
func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(TimeLayout)
}
