package speech

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	c := NewClassifier()

	tests := []struct {
		in   string
		has  []Intent
		lack []Intent
	}{
		{"yes please", []Intent{Affirmative}, []Intent{Negative}},
		{"Okay", []Intent{Affirmative}, nil},
		{"no", []Intent{Negative}, []Intent{Affirmative}},
		{"nope, not now", []Intent{Negative}, nil},
		{"I don't know", nil, []Intent{Negative, Affirmative}},
		{"I do not know", nil, []Intent{Negative}},
		{"I'm not sure", nil, []Intent{Affirmative}},
		{"I want to return it", []Intent{WantsReturn}, []Intent{WantsKeep}},
		{"please send   back the parcel", []Intent{WantsReturn}, nil},
		{"keep it", []Intent{WantsKeep}, []Intent{WantsReturn}},
		{"I'll keep the order", []Intent{WantsKeep}, nil},
		{"I don't want to keep it", nil, []Intent{WantsKeep}},
		{"I do not want to keep it", nil, []Intent{WantsKeep}},
		{"I do   not\twant to keep it", nil, []Intent{WantsKeep}},
		{"I dont keep things like that", nil, []Intent{WantsKeep}},
		{"let me talk to a human", []Intent{WantsTransfer}, nil},
		{"get me a supervisor", []Intent{WantsTransfer}, nil},
		{"not interested", []Intent{Decline}, nil},
		{"returns", nil, []Intent{WantsReturn}},
		{"knowledge", nil, []Intent{Negative}},
		{"humane society", nil, []Intent{WantsTransfer}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := c.Classify(tt.in)
			for _, i := range tt.has {
				assert.True(t, got.Has(i), "expected %s in %v", i, got.Names())
			}
			for _, i := range tt.lack {
				assert.False(t, got.Has(i), "unexpected %s in %v", i, got.Names())
			}
		})
	}
}

func TestClassifyNone(t *testing.T) {
	c := NewClassifier()

	for _, in := range []string{"", "   ", "banana", "what was that"} {
		got := c.Classify(in)
		assert.True(t, got.IsNone(), in)
		assert.Equal(t, []string{"none"}, got.Names())
	}
}

func TestClassifyMultipleIntents(t *testing.T) {
	c := NewClassifier()

	got := c.Classify("yes, transfer me to an agent")
	assert.True(t, got.Has(Affirmative))
	assert.True(t, got.Has(WantsTransfer))
	assert.Equal(t, []string{"affirmative", "wants_transfer"}, got.Names())
}

func TestClassifyCurlyApostrophe(t *testing.T) {
	c := NewClassifier()
	assert.False(t, c.Classify("I don’t want to keep it").Has(WantsKeep))
}

func TestCustomRules(t *testing.T) {
	c := NewClassifierWithRules([]Rule{{Affirmative, []string{"SI", "OUI"}}}, nil)
	assert.True(t, c.Classify("oui").Has(Affirmative))
	assert.False(t, c.Classify("yes").Has(Affirmative))
}
