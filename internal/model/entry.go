package model

import "time"

// Entry statuses as stored in the `queue_entries.status` column.
// Removal is not a status: removed entries are deleted outright.
const (
	StatusWaiting = "waiting"
	StatusServed  = "served"
	StatusReturn  = "return"
)

// NotifyPreference values accepted on admission.  The preference is
// recorded so operators know how the entrant wants to be reached;
// delivery itself happens outside this service.
const (
	NotifySMS   = "sms"
	NotifyEmail = "email"
	NotifyBoth  = "both"
)

// QueueEntry is the authoritative record for one entrant, as stored
// in the `queue_entries` table.  It carries the full contact data and
// must never be exposed to non-staff callers.
//
// Fields:
//  ID        – opaque identifier, assigned at creation, immutable.
//  Seq       – auto-increment tiebreaker; orders entries whose
//              created_at stamps coincide.
//  Name      – entrant display name, required.
//  Phone     – contact phone (nullable).
//  Email     – contact email, lowercased (nullable).
//  Notify    – chosen notification preference (sms, email, both).
//  Status    – current state (waiting, served, return).
//  CreatedAt – server-assigned creation stamp; the sole ordering key
//              for the waiting set.
//  ServedAt  – set once, when the entry transitions to served.
//  ReturnAt  – set once, when the entry transitions to return.
type QueueEntry struct {
	ID        string     // queue_entries.id
	Seq       uint64     // queue_entries.seq
	Name      string     // queue_entries.name
	Phone     *string    // queue_entries.phone (nullable)
	Email     *string    // queue_entries.email (nullable)
	Notify    string     // queue_entries.notify
	Status    string     // queue_entries.status
	CreatedAt time.Time  // queue_entries.created_at
	ServedAt  *time.Time // queue_entries.served_at (nullable)
	ReturnAt  *time.Time // queue_entries.return_at (nullable)
}

// CanTransition reports whether an entry may move from one status to
// another.  Serving is allowed from waiting and from return; marking
// a no-show is only allowed from waiting.  Nothing leaves served.
func CanTransition(from, to string) bool {
	switch to {
	case StatusServed:
		return from == StatusWaiting || from == StatusReturn
	case StatusReturn:
		return from == StatusWaiting
	}
	return false
}

// TimestampColumn returns the column that records when an entry
// entered the given status, or "" when no stamp applies.
func TimestampColumn(status string) string {
	switch status {
	case StatusServed:
		return "served_at"
	case StatusReturn:
		return "return_at"
	}
	return ""
}
