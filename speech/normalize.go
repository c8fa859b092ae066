// Package speech turns noisy speech-to-text transcripts into order ids and
// caller intents.
package speech

import (
	"regexp"
	"strings"
)

// spokenDigits is hand tuned for what speech recognition returns when a
// caller reads digits aloud. Homophones are included on purpose.
var spokenDigits = map[string]string{
	"ZERO": "0", "OH": "0", "O": "0",
	"ONE": "1",
	"TWO": "2", "TO": "2", "TOO": "2",
	"THREE": "3",
	"FOUR": "4", "FOR": "4",
	"FIVE": "5",
	"SIX": "6",
	"SEVEN": "7",
	"EIGHT": "8", "ATE": "8",
	"NINE": "9",
}

var (
	spokenDigitRe = regexp.MustCompile(`\b(?:ZERO|OH|O|ONE|TWO|TOO|TO|THREE|FOUR|FOR|FIVE|SIX|SEVEN|EIGHT|ATE|NINE)\b`)
	nonDigitRe    = regexp.MustCompile(`[^0-9]+`)
	spacedDigitRe = regexp.MustCompile(`\d(?:\s+\d)+`)
	whitespaceRe  = regexp.MustCompile(`\s+`)
)

// Normalize reduces a transcript to digits and single spaces.
// "Order one two, 3" becomes "123".
func Normalize(transcript string) string {
	t := strings.ToUpper(strings.TrimSpace(transcript))

	t = spokenDigitRe.ReplaceAllStringFunc(t, func(word string) string {
		return spokenDigits[word]
	})

	t = strings.TrimSpace(nonDigitRe.ReplaceAllString(t, " "))

	return spacedDigitRe.ReplaceAllStringFunc(t, func(seq string) string {
		return whitespaceRe.ReplaceAllString(seq, "")
	})
}
