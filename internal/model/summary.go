package model

import "time"

// PublicSummary is the redacted mirror of a QueueEntry, stored in the
// `queue_public` table under the same id.  It exists so anonymous
// viewers can watch the queue without the service ever reading the
// authoritative table on their behalf.  It must never carry phone or
// email.
//
// Fields:
//  ID        – same identifier as the authoritative entry.
//  Name      – entrant display name ("" when a self-heal write could
//              not recover it).
//  Status    – mirrored state (waiting, served, return).
//  CreatedAt – mirror-local creation stamp.  Assigned fresh when the
//              mirror row is written, not copied from the
//              authoritative record, so a heal never depends on a
//              field that may not be visible yet.
//  ServedAt  – mirrored served stamp (nullable).
//  ReturnAt  – mirrored return stamp (nullable).
type PublicSummary struct {
	ID        string     // queue_public.id
	Name      string     // queue_public.name
	Status    string     // queue_public.status
	CreatedAt time.Time  // queue_public.created_at
	ServedAt  *time.Time // queue_public.served_at (nullable)
	ReturnAt  *time.Time // queue_public.return_at (nullable)
}
