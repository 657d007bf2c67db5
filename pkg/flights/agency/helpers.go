package agency

import (
	"strconv"
	"strings"
	"time"
)

// Iranian booking APIs return local timestamps, usually with the +03:30
// offset but sometimes without any zone designator.
var isoLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// parseISOTime parses the timestamp formats seen across booking APIs.
// Returns the zero time when the value is empty or unparsable; the
// normalizer rejects such listings.
func parseISOTime(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}

// parseClockDuration parses "HH:MM:SS" (or "HH:MM") into minutes.
// Returns 0 when unparsable.
func parseClockDuration(value string) int {
	parts := strings.Split(value, ":")
	if len(parts) < 2 {
		return 0
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0
	}
	return hours*60 + minutes
}

// cityCode widens a 3-letter IATA code to the city-wide form some APIs
// expect (e.g. THR -> THRALL).
func cityCode(code string) string {
	code = strings.ToUpper(code)
	if len(code) == 3 && !strings.HasSuffix(code, "ALL") {
		return code + "ALL"
	}
	return code
}
