package speech

import (
	"regexp"
	"strings"
)

var digitRunRe = regexp.MustCompile(`\d{2,}`)

// minPreferredRun is the shortest run treated as a real order id before
// falling back to two digit runs.
const minPreferredRun = 3

// ExtractOrderID returns a candidate order id from a raw transcript.
// The second result is false when no digit run of two or more digits exists.
// The candidate is not checked against the catalog.
func ExtractOrderID(transcript string) (string, bool) {
	if strings.TrimSpace(transcript) == "" {
		return "", false
	}

	runs := digitRunRe.FindAllString(Normalize(transcript), -1)
	if len(runs) == 0 {
		return "", false
	}

	for _, r := range runs {
		if len(r) >= minPreferredRun {
			return r, true
		}
	}
	return runs[0], true
}
