package speech

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"one two three", "123"},
		{"  Seven Eight Nine  ", "789"},
		{"1, 2 3.", "123"},
		{"oh ate too", "082"},
		{"zero for nine", "049"},
		{"order number 7 8 9 please", "789"},
		{"hello there", ""},
		{"", ""},
		{"the 2nd one", "21"},
		{"someone", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalizeWholeWordsOnly(t *testing.T) {
	// "TONE", "OFTEN" and "NONE" contain number words but are not numbers.
	assert.Equal(t, "", Normalize("tone often none"))
}
