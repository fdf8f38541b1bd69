// Package pipeline implements the report stages: table preparation,
// campaign keyword analysis, the join/aggregation step and impact scoring.
// Every stage returns new values and leaves its inputs untouched.
package pipeline

import (
	"regexp"
	"strconv"
)

// durationPattern matches an H:MM:SS prefix; trailing text such as
// fractional seconds is ignored.
var durationPattern = regexp.MustCompile(`^(\d+):(\d+):(\d+)`)

// DurationSeconds converts an H:MM:SS value to whole seconds. Non-strings,
// non-matching text and out-of-range numbers yield 0.
func DurationSeconds(v interface{}) int {
	s, ok := v.(string)
	if !ok {
		return 0
	}

	m := durationPattern.FindStringSubmatch(s)
	if m == nil {
		return 0
	}

	parts := make([]int, 3)
	for i := range parts {
		n, err := strconv.Atoi(m[i+1])
		if err != nil {
			return 0
		}
		parts[i] = n
	}
	return parts[0]*3600 + parts[1]*60 + parts[2]
}
