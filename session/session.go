package session

import (
	"time"

	"github.com/room4-2/OrderDesk/catalog"
	"github.com/room4-2/OrderDesk/messages"
)

// Session is the dialog state of one active call.
// Order is set once the caller's order id is verified.
type Session struct {
	CallID     string         `json:"callId"`
	Stage      Stage          `json:"stage"`
	OfferIndex int            `json:"offerIndex"`
	Order      *catalog.Order `json:"order,omitempty"`

	// Turns counts processed caller turns. LastAction is replayed when
	// the transport redelivers a turn that was already handled.
	Turns      int              `json:"turns"`
	LastAction *messages.Action `json:"lastAction,omitempty"`

	CreatedAt    time.Time `json:"createdAt"`
	LastActivity time.Time `json:"lastActivity"`
}

func newSession(callID string, now time.Time) Session {
	return Session{
		CallID:       callID,
		Stage:        StageVerifyOrder,
		CreatedAt:    now,
		LastActivity: now,
	}
}

// Reset returns the session to the start of the dialog, keeping its identity
func (s *Session) Reset() {
	s.Stage = StageVerifyOrder
	s.OfferIndex = 0
	s.Order = nil
	s.Turns = 0
	s.LastAction = nil
}
