package service

import (
	"context"
	"time"

	"github.com/iliyamo/live-waitlist/internal/model"
	q "github.com/iliyamo/live-waitlist/internal/queue"
	"github.com/iliyamo/live-waitlist/internal/repository"
)

// EntryCreator is the slice of the authoritative repository admission
// writes through.
type EntryCreator interface {
	Create(ctx context.Context, n repository.NewEntry) (model.QueueEntry, error)
}

// JoinRequest is one admission attempt: the submitted fields plus the
// session access code.
type JoinRequest struct {
	Entry repository.NewEntry
	Code  string
}

// JoinResult reports a successful admission. Position is the 1-based
// rank in the waiting set; Pending is true when the rank could not be
// resolved within the retry budget and will show up in the live view
// shortly.
type JoinResult struct {
	Entry    model.QueueEntry
	Position int
	Pending  bool
}

// Admission runs the entrant-facing join flow: gate, authoritative
// create, mirror write, event, position.
type Admission struct {
	Gate     *AccessGate
	Entries  EntryCreator
	Mirror   *MirrorSynchronizer
	Position *PositionResolver
	Feed     ChangeFeed
	Events   EventSink
}

// Join admits one entrant. Order matters: the gate decides before any
// write, the authoritative create decides success, and everything
// after it (mirror, event, feed, position) must not fail the join.
func (a *Admission) Join(ctx context.Context, req JoinRequest) (JoinResult, error) {
	ok, err := a.Gate.Admit(ctx, req.Code)
	if err != nil {
		return JoinResult{}, err
	}
	if !ok {
		return JoinResult{}, ErrAccessDenied
	}

	entry, err := a.Entries.Create(ctx, req.Entry)
	if err != nil {
		return JoinResult{}, err
	}

	a.Mirror.Sync(ctx, entry.ID, entry.Name, entry.Status)

	if a.Events != nil {
		ev := q.EntryEvent{
			Type:    q.EventJoined,
			EntryID: entry.ID,
			Name:    entry.Name,
			Notify:  entry.Notify,
			At:      time.Now().UTC().Format(time.RFC3339),
		}
		if entry.Phone != nil {
			ev.Phone = *entry.Phone
		}
		if entry.Email != nil {
			ev.Email = *entry.Email
		}
		a.Events(ev)
	}
	if a.Feed != nil {
		a.Feed.Notify()
	}

	pos, found := a.Position.Resolve(ctx, entry.ID)
	if !found {
		return JoinResult{Entry: entry, Pending: true}, nil
	}
	return JoinResult{Entry: entry, Position: pos}, nil
}
