package messages

// Disposition is how a call ended
type Disposition string

const (
	DispositionOfferAccepted   Disposition = "offer_accepted"
	DispositionKept            Disposition = "kept"
	DispositionTransferred     Disposition = "transferred"
	DispositionReturnConfirmed Disposition = "return_confirmed"
	DispositionGoodbye         Disposition = "goodbye"
)

// Reason explains why a turn produced its action. Used in logs and metrics.
type Reason string

const (
	ReasonMatched     Reason = "matched"
	ReasonAmbiguous   Reason = "ambiguous"
	ReasonNotFound    Reason = "not_found"
	ReasonParseFailed Reason = "parse_failed"
	ReasonEmpty       Reason = "empty"
	ReasonTransfer    Reason = "transfer"
	ReasonReplayed    Reason = "replayed"
	ReasonStale       Reason = "stale"
	ReasonStart       Reason = "start"
)

// Action is what the transport should do next: either speak and hang up,
// or speak and listen for the caller's reply.
type Action struct {
	Speak        string      `json:"speak"`
	Hangup       bool        `json:"hangup,omitempty"`
	ExpectSpeech bool        `json:"expectSpeechNext,omitempty"`
	NextStage    string      `json:"nextStageHint,omitempty"`
	Hints        []string    `json:"vocabularyHints,omitempty"`
	Disposition  Disposition `json:"disposition,omitempty"`
	Reason       Reason      `json:"reason,omitempty"`
	Turn         int         `json:"turn,omitempty"` // turn number the reply must carry
}

// NewPrompt creates a continue action
func NewPrompt(speak, nextStage string, hints ...string) *Action {
	return &Action{
		Speak:        speak,
		ExpectSpeech: true,
		NextStage:    nextStage,
		Hints:        hints,
	}
}

// NewHangup creates a terminal action
func NewHangup(speak string, disposition Disposition) *Action {
	return &Action{
		Speak:       speak,
		Hangup:      true,
		Disposition: disposition,
	}
}

// Terminal reports whether the call ends after this action
func (a *Action) Terminal() bool {
	return a.Hangup
}
