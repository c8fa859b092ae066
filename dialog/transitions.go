package dialog

import (
	"github.com/room4-2/OrderDesk/messages"
	"github.com/room4-2/OrderDesk/session"
	"github.com/room4-2/OrderDesk/speech"
)

// step applies one transcript to the session at the given stage.
// A transfer request wins over every stage.
func (e *Engine) step(s *session.Session, stage session.Stage, transcript string, intents speech.Intents) *messages.Action {
	if transcript != "" && intents.Has(speech.WantsTransfer) {
		s.Stage = session.StageDone
		return withReason(messages.NewHangup(sayTransfer, messages.DispositionTransferred), messages.ReasonTransfer)
	}

	s.Stage = stage
	if transcript == "" {
		return emptyPrompt(stage)
	}

	switch stage {
	case session.StageVerifyOrder:
		return e.verifyOrder(s, transcript)
	case session.StageAfterDelivery:
		return e.afterDelivery(s, intents)
	case session.StageRetentionOffer:
		return e.retentionOffer(s, intents)
	case session.StageHumanOffer:
		return humanOffer(s, intents)
	case session.StageReturnConfirm:
		return returnConfirm(s, intents)
	default:
		s.Stage = session.StageDone
		return withReason(messages.NewHangup(sayGoodbye, messages.DispositionGoodbye), messages.ReasonMatched)
	}
}

func (e *Engine) verifyOrder(s *session.Session, transcript string) *messages.Action {
	id, ok := speech.ExtractOrderID(transcript)
	if !ok {
		return reprompt(session.StageVerifyOrder, promptVerifyParseFailed, messages.ReasonParseFailed, hintsDigits)
	}

	order, found := e.catalog.Lookup(id)
	if !found {
		return reprompt(session.StageVerifyOrder, promptVerifyNotFound, messages.ReasonNotFound, hintsDigits)
	}

	s.Order = &order
	s.Stage = session.StageAfterDelivery
	return matched(session.StageAfterDelivery, deliveryStatus(order), hintsReturnKeep)
}

func (e *Engine) afterDelivery(s *session.Session, intents speech.Intents) *messages.Action {
	switch {
	case intents.Has(speech.WantsReturn):
		s.Stage = session.StageRetentionOffer
		s.OfferIndex = 0
		return matched(session.StageRetentionOffer,
			promptRetentionIntro+" "+offerPrompt(e.offers.At(s.OfferIndex)), hintsYesNo)
	case intents.Has(speech.WantsKeep):
		s.Stage = session.StageDone
		return withReason(messages.NewHangup(sayKeepDelivery, messages.DispositionKept), messages.ReasonMatched)
	default:
		// never assume "keep" from silence or noise
		return reprompt(session.StageAfterDelivery, promptAfterDeliveryBad, messages.ReasonAmbiguous, hintsReturnKeep)
	}
}

func (e *Engine) retentionOffer(s *session.Session, intents speech.Intents) *messages.Action {
	accept, reject := answer(intents, speech.Negative, speech.Decline)
	switch {
	case accept:
		s.Stage = session.StageDone
		return withReason(messages.NewHangup(offerAccepted(e.offers.At(s.OfferIndex)), messages.DispositionOfferAccepted),
			messages.ReasonMatched)
	case reject:
		if e.offers.IsLast(s.OfferIndex % e.offers.Len()) {
			s.Stage = session.StageHumanOffer
			return matched(session.StageHumanOffer, promptHumanOffer, hintsYesNo)
		}
		s.OfferIndex++
		return matched(session.StageRetentionOffer,
			promptRetentionNext+" "+offerPrompt(e.offers.At(s.OfferIndex)), hintsYesNo)
	default:
		return reprompt(session.StageRetentionOffer, promptRetentionUnclear, messages.ReasonAmbiguous, hintsYesNo)
	}
}

func humanOffer(s *session.Session, intents speech.Intents) *messages.Action {
	yes, no := answer(intents, speech.Negative)
	switch {
	case yes:
		// transfer is a terminal disposition; no real handoff happens here
		s.Stage = session.StageDone
		return withReason(messages.NewHangup(sayTransfer, messages.DispositionTransferred), messages.ReasonMatched)
	case no:
		s.Stage = session.StageReturnConfirm
		return matched(session.StageReturnConfirm, promptReturnConfirm, hintsYesNo)
	default:
		return reprompt(session.StageHumanOffer, promptHumanUnclear, messages.ReasonAmbiguous, hintsYesNo)
	}
}

func returnConfirm(s *session.Session, intents speech.Intents) *messages.Action {
	yes, no := answer(intents, speech.Negative)
	switch {
	case yes:
		s.Stage = session.StageDone
		return withReason(messages.NewHangup(sayReturnConfirmed, messages.DispositionReturnConfirmed), messages.ReasonMatched)
	case no:
		s.Stage = session.StageDone
		return withReason(messages.NewHangup(sayReturnDeclined, messages.DispositionKept), messages.ReasonMatched)
	default:
		return reprompt(session.StageReturnConfirm, promptReturnConfirmUnclear, messages.ReasonAmbiguous, hintsYesNo)
	}
}

// answer reads a yes/no reply. A reply that says both ("no, I don't want
// to take it") is neither, so the caller is asked again.
func answer(intents speech.Intents, negatives ...speech.Intent) (yes, no bool) {
	yes = intents.Has(speech.Affirmative)
	for _, n := range negatives {
		no = no || intents.Has(n)
	}
	if yes && no {
		return false, false
	}
	return yes, no
}

// emptyPrompt re-asks when nothing was recognized. The wording differs from
// the ambiguity prompts so callers know they were not heard at all.
func emptyPrompt(stage session.Stage) *messages.Action {
	switch stage {
	case session.StageVerifyOrder:
		return reprompt(stage, promptVerifyEmpty, messages.ReasonEmpty, hintsDigits)
	case session.StageAfterDelivery:
		return reprompt(stage, promptReturnOrKeep, messages.ReasonEmpty, hintsReturnKeep)
	case session.StageRetentionOffer:
		return reprompt(stage, promptRetentionEmpty, messages.ReasonEmpty, hintsYesNo)
	case session.StageHumanOffer:
		return reprompt(stage, promptHumanEmpty, messages.ReasonEmpty, hintsYesNo)
	case session.StageReturnConfirm:
		return reprompt(stage, promptReturnConfirm, messages.ReasonEmpty, hintsYesNo)
	default:
		return withReason(messages.NewHangup(sayGoodbye, messages.DispositionGoodbye), messages.ReasonEmpty)
	}
}

func matched(next session.Stage, speak string, hints []string) *messages.Action {
	return withReason(messages.NewPrompt(speak, next.String(), hints...), messages.ReasonMatched)
}

func reprompt(stage session.Stage, speak string, reason messages.Reason, hints []string) *messages.Action {
	return withReason(messages.NewPrompt(speak, stage.String(), hints...), reason)
}

func withReason(a *messages.Action, reason messages.Reason) *messages.Action {
	a.Reason = reason
	return a
}
