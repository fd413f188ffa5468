package service

import (
	"context"
	"log"
)

// MirrorStore is the slice of the mirror repository the synchronizer
// writes through.
type MirrorStore interface {
	UpdateStatus(ctx context.Context, id, status string) (int64, error)
	Insert(ctx context.Context, id, name, status string) error
	Delete(ctx context.Context, id string) error
}

// MirrorSynchronizer propagates every authoritative change to the
// public mirror. The two tables are never atomically consistent; the
// synchronizer accepts a bounded inconsistency window and repairs a
// missing mirror row with a self-heal insert instead of requiring a
// cross-table transaction. Mirror failures never propagate to the
// caller: the authoritative write has already succeeded, and an
// out-of-date mirror row is repaired by the next write for the same
// id or by a manual sweep.
type MirrorSynchronizer struct {
	Mirror MirrorStore
}

// NewMirrorSynchronizer returns a synchronizer over the given store.
func NewMirrorSynchronizer(m MirrorStore) *MirrorSynchronizer {
	return &MirrorSynchronizer{Mirror: m}
}

// Sync brings the mirror row for id to the given status. It tries an
// update in place first; when the row is missing it inserts a fresh
// one with the minimal safe field set. name may be "" when the
// caller no longer has it; the healed row then shows an empty name
// until the next full write.
func (s *MirrorSynchronizer) Sync(ctx context.Context, id, name, status string) {
	n, err := s.Mirror.UpdateStatus(ctx, id, status)
	if err == nil && n > 0 {
		return
	}
	if err != nil {
		log.Printf("mirror: update %s -> %s failed: %v; healing", id, status, err)
	}
	if err := s.Mirror.Insert(ctx, id, name, status); err != nil {
		log.Printf("mirror: heal insert %s -> %s failed: %v", id, status, err)
	}
}

// Drop removes the mirror row after the authoritative row was
// deleted. Best-effort: a failure is logged and swallowed, the
// orphaned row is harmless.
func (s *MirrorSynchronizer) Drop(ctx context.Context, id string) {
	if err := s.Mirror.Delete(ctx, id); err != nil {
		log.Printf("mirror: delete %s failed: %v", id, err)
	}
}
