package speech

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

var digitWords = []string{"zero", "one", "two", "three", "four", "five", "six", "seven", "eight", "nine"}

func spokenForm(id string) string {
	words := make([]string, 0, len(id))
	for _, r := range id {
		words = append(words, digitWords[r-'0'])
	}
	return strings.Join(words, " ")
}

func TestExtractOrderIDSpokenDigits(t *testing.T) {
	for _, id := range []string{"123", "789", "4056", "100"} {
		got, ok := ExtractOrderID(spokenForm(id))
		assert.True(t, ok, id)
		assert.Equal(t, id, got)
	}
}

func TestExtractOrderID(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		want   string
		wantOK bool
	}{
		{"empty", "", "", false},
		{"blank", "   ", "", false},
		{"no digits", "hello there", "", false},
		{"single digit", "number 5", "", false},
		{"spaced digits", "order number 7 8 9 please", "789", true},
		{"two digit fallback", "it is 42", "42", true},
		{"homophones", "one to three", "123", true},
		{"mixed", "my order is 1 two 3", "123", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractOrderID(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractOrderIDShortNoise(t *testing.T) {
	got, ok := ExtractOrderID("the 2nd one")
	if ok {
		assert.Less(t, len(got), 3)
	}
	assert.NotEqual(t, "123", got)
	assert.NotEqual(t, "789", got)
}
