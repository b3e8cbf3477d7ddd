package bench

import (
	"regexp"
	"strconv"
)

// timingPattern matches the elapsed-time marker printed by the benchmarked
// program, e.g. "Ran in (1.250) seconds". The capture group holds the
// seconds value.
var timingPattern = regexp.MustCompile(`Ran in \((\d+\.\d+)\) seconds`)

// ParseElapsed extracts the reported elapsed seconds from a trial's captured
// output. Only the first occurrence of the timing marker is used. Returns
// false when the output contains no timing marker.
func ParseElapsed(output string) (float64, bool) {
	match := timingPattern.FindStringSubmatch(output)
	if match == nil {
		return 0, false
	}

	seconds, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return 0, false
	}

	return seconds, true
}
