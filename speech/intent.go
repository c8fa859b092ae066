package speech

import (
	"regexp"
	"strings"
)

// Intent is one classification result
type Intent uint8

const (
	Affirmative Intent = 1 << iota
	Negative
	Decline
	WantsReturn
	WantsKeep
	WantsTransfer
)

// None is the empty intent set: the caller was unclear
const None Intents = 0

var intentNames = map[Intent]string{
	Affirmative:   "affirmative",
	Negative:      "negative",
	Decline:       "decline",
	WantsReturn:   "wants_return",
	WantsKeep:     "wants_keep",
	WantsTransfer: "wants_transfer",
}

func (i Intent) String() string {
	if n, ok := intentNames[i]; ok {
		return n
	}
	return "unknown"
}

// Intents is a set of intents asserted by one transcript
type Intents uint8

// Has reports whether i is in the set
func (s Intents) Has(i Intent) bool {
	return s&Intents(i) != 0
}

// IsNone reports whether nothing was recognized
func (s Intents) IsNone() bool {
	return s == None
}

// Names lists the intents in the set, for logging
func (s Intents) Names() []string {
	if s.IsNone() {
		return []string{"none"}
	}
	var names []string
	for _, i := range []Intent{Affirmative, Negative, Decline, WantsReturn, WantsKeep, WantsTransfer} {
		if s.Has(i) {
			names = append(names, i.String())
		}
	}
	return names
}

// Rule asserts an intent when any of its phrases appears as whole words
type Rule struct {
	Intent  Intent
	Phrases []string
}

// Guard removes an intent when its pattern matches
type Guard struct {
	Intent  Intent
	Pattern string
}

// DefaultRules is the phrase table for caller intents. Phrases are upper
// case; words inside a phrase match across any run of whitespace.
var DefaultRules = []Rule{
	{Affirmative, []string{"YES", "YEAH", "YEP", "OKAY", "OK", "SURE", "ACCEPT", "APPLY", "TAKE"}},
	// Generic "don't" / "do not" is left out: "I don't know" is not a no.
	{Negative, []string{"NO", "NOPE", "NAH", "NOT NOW", "STOP", "CANCEL"}},
	{Decline, []string{"NOT INTERESTED", "DECLINE", "PASS", "REFUND", "RETURN ANYWAY"}},
	{WantsReturn, []string{"RETURN", "REFUND", "SEND BACK", "CANCEL ORDER", "EXCHANGE"}},
	{WantsKeep, []string{"KEEP"}},
	{WantsTransfer, []string{
		"TRANSFER", "AGENT", "REPRESENTATIVE", "HUMAN", "LIVE PERSON", "SOMEONE",
		"SUPERVISOR", "MANAGER", "TALK TO", "SPEAK TO",
	}},
}

// DefaultGuards suppress intents contradicted by a negation elsewhere in the
// same utterance.
var DefaultGuards = []Guard{
	{WantsKeep, `\b(?:DON'T|DONT|DO\s+NOT|NOT)\b.*\bKEEP\b`},
	{Affirmative, `\bNOT\s+(?:SURE|OK|OKAY)\b`},
}

type compiledRule struct {
	intent Intent
	re     *regexp.Regexp
}

// Classifier maps raw transcripts to intent sets
type Classifier struct {
	rules  []compiledRule
	guards []compiledRule
}

// NewClassifier compiles the default rule table
func NewClassifier() *Classifier {
	return NewClassifierWithRules(DefaultRules, DefaultGuards)
}

// NewClassifierWithRules compiles a custom rule table. It panics on an
// invalid guard pattern, like regexp.MustCompile.
func NewClassifierWithRules(rules []Rule, guards []Guard) *Classifier {
	c := &Classifier{}
	for _, r := range rules {
		c.rules = append(c.rules, compiledRule{intent: r.Intent, re: phraseRegexp(r.Phrases)})
	}
	for _, g := range guards {
		c.guards = append(c.guards, compiledRule{intent: g.Intent, re: regexp.MustCompile(g.Pattern)})
	}
	return c
}

func phraseRegexp(phrases []string) *regexp.Regexp {
	alts := make([]string, 0, len(phrases))
	for _, p := range phrases {
		words := strings.Fields(p)
		for i, w := range words {
			words[i] = regexp.QuoteMeta(w)
		}
		alts = append(alts, strings.Join(words, `\s+`))
	}
	return regexp.MustCompile(`\b(?:` + strings.Join(alts, "|") + `)\b`)
}

// Classify returns every intent asserted by the transcript. It works on the
// raw words, not the digit normalized form.
func (c *Classifier) Classify(transcript string) Intents {
	t := canonical(transcript)
	if t == "" {
		return None
	}

	var set Intents
	for _, r := range c.rules {
		if r.re.MatchString(t) {
			set |= Intents(r.intent)
		}
	}
	for _, g := range c.guards {
		if set.Has(g.intent) && g.re.MatchString(t) {
			set &^= Intents(g.intent)
		}
	}
	return set
}

func canonical(transcript string) string {
	t := strings.ReplaceAll(transcript, "’", "'")
	return strings.ToUpper(strings.TrimSpace(t))
}
