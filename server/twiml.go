package server

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/twilio/twilio-go/twiml"

	"github.com/room4-2/OrderDesk/messages"
)

// TwiML renders engine actions as Twilio voice markup
type TwiML struct {
	Voice      string
	Language   string
	GatherPath string
}

// Render turns an action into a TwiML document
func (t TwiML) Render(a *messages.Action) ([]byte, error) {
	say := &twiml.VoiceSay{Voice: t.Voice, Language: t.Language, Message: a.Speak}

	var verbs []twiml.Element
	if a.Hangup {
		verbs = []twiml.Element{say, &twiml.VoiceHangup{}}
	} else {
		verbs = []twiml.Element{&twiml.VoiceGather{
			Input:               "speech",
			Action:              t.gatherURL(a),
			Method:              "POST",
			Language:            t.Language,
			SpeechTimeout:       "auto",
			ActionOnEmptyResult: "true",
			Hints:               strings.Join(a.Hints, ", "),
			InnerElements:       []twiml.Element{say},
		}}
	}

	doc, err := twiml.Voice(verbs)
	if err != nil {
		return nil, fmt.Errorf("failed to render twiml: %w", err)
	}
	return []byte(doc), nil
}

func (t TwiML) gatherURL(a *messages.Action) string {
	q := url.Values{}
	if a.NextStage != "" {
		q.Set("stage", a.NextStage)
	}
	if a.Turn > 0 {
		q.Set("turn", strconv.Itoa(a.Turn))
	}
	if len(q) == 0 {
		return t.GatherPath
	}
	return t.GatherPath + "?" + q.Encode()
}
