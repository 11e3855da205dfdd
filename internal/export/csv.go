package export

import (
	"strconv"
	"strings"
	"time"

	"sensordash/internal/history"
)

const (
	header = "Timestamp,Temperature,Humidity"

	// Millisecond ISO-8601, always UTC
	timestampLayout = "2006-01-02T15:04:05.000Z"
)

// Serialize renders a series as delimited text. The numeric fields keep
// whatever precision the series carries; no rounding happens here. An
// empty series yields an empty string without a header.
func Serialize(points []history.Point) string {
	if len(points) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(header)
	b.WriteByte('\n')

	for _, p := range points {
		b.WriteString(time.UnixMilli(p.TimestampMs).UTC().Format(timestampLayout))
		b.WriteByte(',')
		b.WriteString(formatValue(p.TemperatureC))
		b.WriteByte(',')
		b.WriteString(formatValue(p.HumidityPct))
		b.WriteByte('\n')
	}

	return b.String()
}

// Filename returns the download name for an export performed at t.
func Filename(t time.Time) string {
	return "iot_data_" + t.UTC().Format(timestampLayout) + ".csv"
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
