package service

import (
	"context"
	"time"

	"github.com/iliyamo/live-waitlist/internal/model"
	q "github.com/iliyamo/live-waitlist/internal/queue"
	"github.com/iliyamo/live-waitlist/internal/repository"
)

// EntryStore is the slice of the authoritative repository the staff
// actions mutate.
type EntryStore interface {
	Get(ctx context.Context, id string) (model.QueueEntry, error)
	UpdateStatus(ctx context.Context, id, next string) (model.QueueEntry, error)
	Delete(ctx context.Context, id string) error
}

// AdminChecker tests allowlist membership for a caller email.
type AdminChecker interface {
	IsAdmin(ctx context.Context, email string) (bool, error)
}

// ChangeFeed receives a poke after every authoritative or mirror
// write so live projections re-render.
type ChangeFeed interface {
	Notify()
}

// EventSink accepts a broker event. Wired to the rabbitmq publisher
// in production; nil disables publishing.
type EventSink func(q.EntryEvent)

// AdminActionExecutor applies staff transitions: serve, mark as
// no-show, remove. Every call re-checks the allowlist, so staff access
// can be revoked between actions, so the answer is never cached from
// session start. Each action is a two-step sequence: the
// authoritative write decides success, the mirror step is best-effort.
type AdminActionExecutor struct {
	Admins AdminChecker
	Entries EntryStore
	Mirror *MirrorSynchronizer
	Feed   ChangeFeed
	Events EventSink
}

// Serve moves an entry to served. Allowed from waiting and return.
func (a *AdminActionExecutor) Serve(ctx context.Context, actorEmail, id string) error {
	return a.transition(ctx, actorEmail, id, model.StatusServed, q.EventServed)
}

// MarkReturn moves a waiting entry to the return (no-show) set.
func (a *AdminActionExecutor) MarkReturn(ctx context.Context, actorEmail, id string) error {
	return a.transition(ctx, actorEmail, id, model.StatusReturn, q.EventReturned)
}

func (a *AdminActionExecutor) transition(ctx context.Context, actorEmail, id, next, eventType string) error {
	if err := a.authorize(ctx, actorEmail); err != nil {
		return err
	}
	entry, err := a.Entries.UpdateStatus(ctx, id, next)
	if err != nil {
		return err
	}
	a.Mirror.Sync(ctx, entry.ID, entry.Name, entry.Status)
	a.emit(eventType, entry, actorEmail)
	a.poke()
	return nil
}

// Remove deletes an entry outright, from any state. The entry row
// goes first, then the mirror row; a failed mirror delete is logged
// inside the synchronizer and not reported here.
func (a *AdminActionExecutor) Remove(ctx context.Context, actorEmail, id string) error {
	if err := a.authorize(ctx, actorEmail); err != nil {
		return err
	}
	entry, err := a.Entries.Get(ctx, id)
	if err != nil && err != repository.ErrNotFound {
		return err
	}
	if err := a.Entries.Delete(ctx, id); err != nil {
		return err
	}
	a.Mirror.Drop(ctx, id)
	a.emit(q.EventRemoved, model.QueueEntry{ID: id, Name: entry.Name}, actorEmail)
	a.poke()
	return nil
}

func (a *AdminActionExecutor) authorize(ctx context.Context, email string) error {
	ok, err := a.Admins.IsAdmin(ctx, email)
	if err != nil {
		return err
	}
	if !ok {
		return repository.ErrForbidden
	}
	return nil
}

func (a *AdminActionExecutor) emit(eventType string, e model.QueueEntry, actor string) {
	if a.Events == nil {
		return
	}
	a.Events(q.EntryEvent{
		Type:    eventType,
		EntryID: e.ID,
		Name:    e.Name,
		Actor:   actor,
		At:      time.Now().UTC().Format(time.RFC3339),
	})
}

func (a *AdminActionExecutor) poke() {
	if a.Feed != nil {
		a.Feed.Notify()
	}
}
