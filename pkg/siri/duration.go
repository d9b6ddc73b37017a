package siri

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// The feed encodes schedule deviation as an ISO 8601 style duration with
// fixed unit approximations rather than calendar semantics: a year is always
// 365 days and a month 30 days. Delays never realistically exceed a few
// hours, but the approximation is the documented contract of the feed.
var delayPattern = regexp.MustCompile(`(-)?P(\d+Y)?(\d+M)?(\d+D)?T(\d+H)?(\d+M)?(\d+(\.\d+)?S)?`)

const (
	millisPerSecond = 1000
	millisPerMinute = 60 * millisPerSecond
	millisPerHour   = 60 * millisPerMinute
	millisPerDay    = 24 * millisPerHour
	millisPerMonth  = 30 * millisPerDay
	millisPerYear   = 365 * millisPerDay
)

// ParseError means a delay string had no recognisable duration structure.
// The offending record is dropped; the rest of the batch is unaffected.
type ParseError struct {
	Input string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid duration format %q", e.Input)
}

// ParseDelay converts a signed duration string like "-PT2M15S" into signed
// milliseconds. Absent components contribute zero; a leading "-" negates the
// whole value.
func ParseDelay(s string) (int64, error) {
	match := delayPattern.FindStringSubmatch(s)
	if match == nil {
		return 0, &ParseError{Input: s}
	}

	negative := match[1] != ""

	years := componentValue(match[2])
	months := componentValue(match[3])
	days := componentValue(match[4])
	hours := componentValue(match[5])
	minutes := componentValue(match[6])
	seconds := componentValue(match[7])

	milliseconds := int64(years*millisPerYear) +
		int64(months*millisPerMonth) +
		int64(days*millisPerDay) +
		int64(hours*millisPerHour) +
		int64(minutes*millisPerMinute) +
		int64(seconds*millisPerSecond)

	if negative {
		return -milliseconds, nil
	}
	return milliseconds, nil
}

// componentValue parses a matched component like "5Y" or "2.5S", returning 0
// for an absent component.
func componentValue(component string) float64 {
	if component == "" {
		return 0
	}

	n, err := strconv.ParseFloat(strings.TrimRight(component, "YMDHS"), 64)
	if err != nil {
		return 0
	}

	return n
}
