package subtitles

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FormatTimestamp renders seconds as HH:MM:SS,mmm. Milliseconds are truncated.
// Negative inputs clamp to zero.
func FormatTimestamp(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	// The epsilon keeps values such as 2.3 (2.2999...) from losing a millisecond.
	total := int64(math.Floor(seconds*1000 + 1e-6))
	ms := total % 1000
	totalSeconds := total / 1000
	h := totalSeconds / 3600
	m := (totalSeconds % 3600) / 60
	s := totalSeconds % 60
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}

// ParseTimestamp parses H:MM:SS,mmm (or with '.' as the decimal separator)
// into seconds.
func ParseTimestamp(value string) (float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("empty timestamp")
	}
	normalized := strings.ReplaceAll(value, ",", ".")
	hms := strings.Split(normalized, ":")
	if len(hms) != 3 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hours, errH := strconv.Atoi(hms[0])
	minutes, errM := strconv.Atoi(hms[1])
	secs, errS := strconv.ParseFloat(hms[2], 64)
	if errH != nil || errM != nil || errS != nil || hours < 0 || minutes < 0 || minutes > 59 || secs < 0 || secs >= 60 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	millis := int64(hours)*3_600_000 + int64(minutes)*60_000 + int64(math.Round(secs*1000))
	return float64(millis) / 1000, nil
}
