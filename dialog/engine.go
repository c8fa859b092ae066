// Package dialog runs the per-call conversation: it reads one caller
// transcript, moves the call's stage and decides what to say next.
package dialog

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/room4-2/OrderDesk/catalog"
	"github.com/room4-2/OrderDesk/messages"
	"github.com/room4-2/OrderDesk/session"
	"github.com/room4-2/OrderDesk/speech"
)

// Turn is one inbound speech result for a call
type Turn struct {
	CallID         string
	Transcript     string
	RequestedStage string // stage hint echoed back by the transport, may be empty
	Seq            int    // turn number echoed back by the transport, 0 if unknown
}

// Engine is the conversation state machine. It holds no call state of its
// own; every turn reads and writes the session store.
type Engine struct {
	catalog    *catalog.Catalog
	offers     *catalog.Offers
	classifier *speech.Classifier
	store      *session.Store
	logger     *zap.Logger

	// OnEvent is called after every call start, turn and call end
	OnEvent func(ev messages.Event)
}

// NewEngine wires the engine to its collaborators
func NewEngine(cat *catalog.Catalog, offers *catalog.Offers, classifier *speech.Classifier, store *session.Store, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		catalog:    cat,
		offers:     offers,
		classifier: classifier,
		store:      store,
		logger:     logger,
	}
}

// Start begins a call. A known call id restarts its dialog.
func (e *Engine) Start(ctx context.Context, callID string) *messages.Action {
	var action *messages.Action
	s, created := e.store.Update(ctx, callID, func(s *session.Session) {
		s.Reset()
		action = messages.NewPrompt(promptGreeting, session.StageVerifyOrder.String(), hintsDigits...)
		action.Reason = messages.ReasonStart
		action.Turn = s.Turns + 1
		s.LastAction = cloneAction(action)
	})

	e.logger.Info("call started", zap.String("call_id", callID), zap.Bool("new_session", created))
	e.emit(messages.Event{
		Type:   messages.TypeCallStart,
		CallID: callID,
		Stage:  s.Stage.String(),
		Action: action,
	})
	return action
}

// Handle processes one caller turn. It never fails: anything it cannot
// understand becomes a re-prompt at the same stage.
func (e *Engine) Handle(ctx context.Context, turn Turn) *messages.Action {
	turnID := uuid.NewString()
	transcript := strings.TrimSpace(turn.Transcript)
	intents := e.classifier.Classify(transcript)

	var (
		action *messages.Action
		stage  session.Stage
	)
	s, created := e.store.Update(ctx, turn.CallID, func(s *session.Session) {
		if turn.Seq > 0 && turn.Seq <= s.Turns && s.LastAction != nil {
			// redelivered turns never mutate; turns older than the latest
			// are stale and hear the current prompt
			stage = s.Stage
			action = cloneAction(s.LastAction)
			action.Reason = messages.ReasonReplayed
			if turn.Seq < s.Turns {
				action.Reason = messages.ReasonStale
			}
			return
		}

		stage = e.effectiveStage(s, turn.RequestedStage)
		action = e.step(s, stage, transcript, intents)

		s.Turns++
		if !action.Hangup {
			action.Turn = s.Turns + 1
		}
		s.LastAction = cloneAction(action)
	})

	fields := []zap.Field{
		zap.String("call_id", turn.CallID),
		zap.String("turn_id", turnID),
		zap.String("stage", stage.String()),
		zap.String("next_stage", s.Stage.String()),
		zap.String("reason", string(action.Reason)),
		zap.Strings("intents", intents.Names()),
		zap.Int("offer_index", s.OfferIndex),
		zap.Int("turn", s.Turns),
	}
	if created {
		fields = append(fields, zap.Bool("unknown_call", true))
	}
	if action.Disposition != "" {
		fields = append(fields, zap.String("disposition", string(action.Disposition)))
	}
	e.logger.Info("turn handled", fields...)

	e.emit(messages.Event{
		Type:       messages.TypeTurn,
		ID:         turnID,
		CallID:     turn.CallID,
		Stage:      stage.String(),
		Transcript: transcript,
		Intents:    intents.Names(),
		Action:     action,
	})
	return action
}

// End drops the call's session. Unknown calls are ignored.
func (e *Engine) End(ctx context.Context, callID string) {
	if !e.store.Delete(ctx, callID) {
		e.logger.Debug("call end for unknown call", zap.String("call_id", callID))
		return
	}
	e.logger.Info("call ended", zap.String("call_id", callID))
	e.emit(messages.Event{Type: messages.TypeCallEnd, CallID: callID})
}

// Evicted reports sessions removed by idle cleanup
func (e *Engine) Evicted(callIDs []string) {
	for _, id := range callIDs {
		e.emit(messages.Event{Type: messages.TypeEvicted, CallID: id})
	}
}

// effectiveStage picks the requested stage when it is valid, else the
// stored one. Stages past verification need a verified order.
func (e *Engine) effectiveStage(s *session.Session, requested string) session.Stage {
	stage := s.Stage
	if st, ok := session.ParseStage(requested); ok {
		stage = st
	}
	if stage == "" {
		stage = session.StageVerifyOrder
	}
	if stage != session.StageVerifyOrder && stage != session.StageDone && s.Order == nil {
		e.logger.Warn("stage requires a verified order, restarting verification",
			zap.String("call_id", s.CallID),
			zap.String("stage", stage.String()))
		stage = session.StageVerifyOrder
	}
	return stage
}

func (e *Engine) emit(ev messages.Event) {
	if e.OnEvent == nil {
		return
	}
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	ev.Time = time.Now().UTC()
	e.OnEvent(ev)
}

func cloneAction(a *messages.Action) *messages.Action {
	c := *a
	c.Hints = append([]string(nil), a.Hints...)
	return &c
}
