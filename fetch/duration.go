package fetch

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
)

const zeroDuration = "00:00:00"

var isoDurationRE = regexp.MustCompile(`^P(?:(\d+)W)?(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+(?:[.,]\d+)?)S)?)?$`)

// FormatDuration converts an ISO 8601 duration as returned by the Data API
// (PT2H15M30S, P1DT3M, ...) into HH:MM:SS. Hours are not wrapped at 24.
// Anything it cannot parse, including year and month designators, yields
// 00:00:00.
func FormatDuration(iso string) string {
	m := isoDurationRE.FindStringSubmatch(iso)
	if m == nil {
		return zeroDuration
	}
	// "P" and "P1DT" match the expression but are not valid durations
	if m[1] == "" && m[2] == "" && m[3] == "" && m[4] == "" && m[5] == "" {
		return zeroDuration
	}
	if iso[len(iso)-1] == 'T' {
		return zeroDuration
	}

	var total int64
	for i, mult := range []int64{7 * 24 * 3600, 24 * 3600, 3600, 60} {
		if m[i+1] == "" {
			continue
		}
		v, err := strconv.ParseInt(m[i+1], 10, 64)
		if err != nil || v > (math.MaxInt64-total)/mult {
			return zeroDuration
		}
		total += v * mult
	}
	if m[5] != "" {
		secs, err := strconv.ParseFloat(normalizeDecimal(m[5]), 64)
		// float64(MaxInt64) rounds up to 2^63, so >= keeps the conversion in range
		if err != nil || secs >= float64(math.MaxInt64-total) {
			return zeroDuration
		}
		total += int64(secs)
	}

	return fmt.Sprintf("%02d:%02d:%02d", total/3600, total%3600/60, total%60)
}

func normalizeDecimal(s string) string {
	b := []byte(s)
	for i := range b {
		if b[i] == ',' {
			b[i] = '.'
		}
	}
	return string(b)
}
