package messages

import "time"

// Event types for the monitor feed
const (
	TypeCallStart = "call_start"
	TypeTurn      = "turn"
	TypeCallEnd   = "call_end"
	TypeEvicted   = "evicted"
)

// Event is published to monitor clients for every call event
type Event struct {
	Type       string    `json:"type"`
	ID         string    `json:"id"`
	CallID     string    `json:"callId"`
	Stage      string    `json:"stage,omitempty"`
	Transcript string    `json:"transcript,omitempty"`
	Intents    []string  `json:"intents,omitempty"`
	Action     *Action   `json:"action,omitempty"`
	Time       time.Time `json:"time"`
}

// StatusPayload is served by the health endpoint
type StatusPayload struct {
	Status   string `json:"status"`
	Server   string `json:"server"`
	Sessions int    `json:"sessions"`
	Monitors int    `json:"monitors"`
}
