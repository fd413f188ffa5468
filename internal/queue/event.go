// Package queue defines message payloads exchanged over the message broker.
package queue

// Event types published to the waitlist.events queue.
const (
	EventJoined   = "entry.joined"
	EventServed   = "entry.served"
	EventReturned = "entry.returned"
	EventRemoved  = "entry.removed"
)

// EntryEvent is published whenever an entry joins the queue or a
// staff action changes its state. It carries enough for downstream
// consumers to log or trigger notifications without querying the
// primary database. Contact fields are included because the consumer
// side is trusted infrastructure; the event never reaches viewers.
type EntryEvent struct {
	Type    string `json:"type"`
	EntryID string `json:"entry_id"`
	Name    string `json:"name"`
	Notify  string `json:"notify,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty"`
	Actor   string `json:"actor,omitempty"` // staff email for staff actions
	At      string `json:"at"`              // RFC3339 UTC
}
