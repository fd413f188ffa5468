package service

import (
	"context"
	"errors"
	"testing"

	"github.com/iliyamo/live-waitlist/internal/model"
	q "github.com/iliyamo/live-waitlist/internal/queue"
	"github.com/iliyamo/live-waitlist/internal/repository"
)

type fakeEntryStore struct {
	entries   map[string]model.QueueEntry
	updateErr error

	updated []string
	deleted []string
}

func (f *fakeEntryStore) Get(ctx context.Context, id string) (model.QueueEntry, error) {
	e, ok := f.entries[id]
	if !ok {
		return model.QueueEntry{}, repository.ErrNotFound
	}
	return e, nil
}

func (f *fakeEntryStore) UpdateStatus(ctx context.Context, id, next string) (model.QueueEntry, error) {
	if f.updateErr != nil {
		return model.QueueEntry{}, f.updateErr
	}
	e, ok := f.entries[id]
	if !ok {
		return model.QueueEntry{}, repository.ErrNotFound
	}
	if !model.CanTransition(e.Status, next) {
		return model.QueueEntry{}, repository.ErrInvalidTransition
	}
	e.Status = next
	f.entries[id] = e
	f.updated = append(f.updated, id+":"+next)
	return e, nil
}

func (f *fakeEntryStore) Delete(ctx context.Context, id string) error {
	delete(f.entries, id)
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeAdmins struct {
	allowed map[string]bool
	err     error
}

func (f *fakeAdmins) IsAdmin(ctx context.Context, email string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.allowed[email], nil
}

type fakeFeed struct{ pokes int }

func (f *fakeFeed) Notify() { f.pokes++ }

func newExecutor(entries *fakeEntryStore, admins *fakeAdmins) (*AdminActionExecutor, *fakeMirrorStore, *fakeFeed, *[]q.EntryEvent) {
	mirror := &fakeMirrorStore{updateN: 1}
	feed := &fakeFeed{}
	var events []q.EntryEvent
	ex := &AdminActionExecutor{
		Admins:  admins,
		Entries: entries,
		Mirror:  NewMirrorSynchronizer(mirror),
		Feed:    feed,
		Events:  func(ev q.EntryEvent) { events = append(events, ev) },
	}
	return ex, mirror, feed, &events
}

func TestServeHappyPath(t *testing.T) {
	entries := &fakeEntryStore{entries: map[string]model.QueueEntry{
		"e1": {ID: "e1", Name: "Dana", Status: model.StatusWaiting},
	}}
	ex, mirror, feed, events := newExecutor(entries, &fakeAdmins{allowed: map[string]bool{"host@example.com": true}})

	if err := ex.Serve(context.Background(), "host@example.com", "e1"); err != nil {
		t.Fatalf("Serve: %v", err)
	}
	if entries.entries["e1"].Status != model.StatusServed {
		t.Errorf("status = %q, want served", entries.entries["e1"].Status)
	}
	if len(mirror.updates) != 1 || mirror.updates[0] != "e1:served" {
		t.Errorf("mirror updates = %v", mirror.updates)
	}
	if feed.pokes != 1 {
		t.Errorf("pokes = %d, want 1", feed.pokes)
	}
	if len(*events) != 1 || (*events)[0].Type != q.EventServed || (*events)[0].Actor != "host@example.com" {
		t.Errorf("events = %+v", *events)
	}
}

func TestServeFromReturnAllowed(t *testing.T) {
	entries := &fakeEntryStore{entries: map[string]model.QueueEntry{
		"e1": {ID: "e1", Name: "Dana", Status: model.StatusReturn},
	}}
	ex, _, _, _ := newExecutor(entries, &fakeAdmins{allowed: map[string]bool{"host@example.com": true}})

	if err := ex.Serve(context.Background(), "host@example.com", "e1"); err != nil {
		t.Fatalf("Serve from return: %v", err)
	}
}

func TestMarkReturnOnlyFromWaiting(t *testing.T) {
	entries := &fakeEntryStore{entries: map[string]model.QueueEntry{
		"e1": {ID: "e1", Name: "Dana", Status: model.StatusServed},
	}}
	ex, mirror, feed, _ := newExecutor(entries, &fakeAdmins{allowed: map[string]bool{"host@example.com": true}})

	err := ex.MarkReturn(context.Background(), "host@example.com", "e1")
	if !errors.Is(err, repository.ErrInvalidTransition) {
		t.Fatalf("err = %v, want ErrInvalidTransition", err)
	}
	if len(mirror.updates) != 0 || feed.pokes != 0 {
		t.Error("failed transition must not touch the mirror or the feed")
	}
}

func TestActionsRecheckAllowlistEveryCall(t *testing.T) {
	entries := &fakeEntryStore{entries: map[string]model.QueueEntry{
		"e1": {ID: "e1", Name: "Dana", Status: model.StatusWaiting},
		"e2": {ID: "e2", Name: "Lee", Status: model.StatusWaiting},
	}}
	admins := &fakeAdmins{allowed: map[string]bool{"host@example.com": true}}
	ex, _, _, _ := newExecutor(entries, admins)

	if err := ex.Serve(context.Background(), "host@example.com", "e1"); err != nil {
		t.Fatalf("first action: %v", err)
	}

	// Revoked between actions: the next call must be refused even
	// though the first one succeeded in the same session.
	admins.allowed["host@example.com"] = false

	err := ex.Serve(context.Background(), "host@example.com", "e2")
	if !errors.Is(err, repository.ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden after revocation", err)
	}
	if entries.entries["e2"].Status != model.StatusWaiting {
		t.Error("revoked caller still mutated the entry")
	}
}

func TestActionsDenyNonAdmin(t *testing.T) {
	entries := &fakeEntryStore{entries: map[string]model.QueueEntry{
		"e1": {ID: "e1", Name: "Dana", Status: model.StatusWaiting},
	}}
	ex, mirror, _, events := newExecutor(entries, &fakeAdmins{allowed: map[string]bool{}})

	for name, fn := range map[string]func(context.Context, string, string) error{
		"serve":  ex.Serve,
		"return": ex.MarkReturn,
		"remove": ex.Remove,
	} {
		if err := fn(context.Background(), "guest@example.com", "e1"); !errors.Is(err, repository.ErrForbidden) {
			t.Errorf("%s: err = %v, want ErrForbidden", name, err)
		}
	}
	if len(entries.updated)+len(entries.deleted)+len(mirror.updates)+len(mirror.deletes) != 0 {
		t.Error("denied caller reached a store")
	}
	if len(*events) != 0 {
		t.Error("denied caller emitted events")
	}
}

func TestAllowlistLookupErrorBlocksAction(t *testing.T) {
	entries := &fakeEntryStore{entries: map[string]model.QueueEntry{
		"e1": {ID: "e1", Name: "Dana", Status: model.StatusWaiting},
	}}
	ex, _, _, _ := newExecutor(entries, &fakeAdmins{err: errors.New("timeout")})

	if err := ex.Serve(context.Background(), "host@example.com", "e1"); err == nil {
		t.Fatal("action succeeded while the allowlist was unreadable")
	}
	if entries.entries["e1"].Status != model.StatusWaiting {
		t.Error("entry mutated despite allowlist failure")
	}
}

func TestRemoveDeletesBothRows(t *testing.T) {
	entries := &fakeEntryStore{entries: map[string]model.QueueEntry{
		"e1": {ID: "e1", Name: "Dana", Status: model.StatusServed},
	}}
	ex, mirror, feed, events := newExecutor(entries, &fakeAdmins{allowed: map[string]bool{"host@example.com": true}})

	if err := ex.Remove(context.Background(), "host@example.com", "e1"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if len(entries.deleted) != 1 || entries.deleted[0] != "e1" {
		t.Errorf("entry deletes = %v", entries.deleted)
	}
	if len(mirror.deletes) != 1 || mirror.deletes[0] != "e1" {
		t.Errorf("mirror deletes = %v", mirror.deletes)
	}
	if feed.pokes != 1 {
		t.Errorf("pokes = %d", feed.pokes)
	}
	if len(*events) != 1 || (*events)[0].Type != q.EventRemoved {
		t.Errorf("events = %+v", *events)
	}
}

func TestRemoveMissingEntryStillCleansMirror(t *testing.T) {
	entries := &fakeEntryStore{entries: map[string]model.QueueEntry{}}
	ex, mirror, _, _ := newExecutor(entries, &fakeAdmins{allowed: map[string]bool{"host@example.com": true}})

	if err := ex.Remove(context.Background(), "host@example.com", "gone"); err != nil {
		t.Fatalf("Remove of missing entry: %v", err)
	}
	if len(mirror.deletes) != 1 {
		t.Errorf("mirror deletes = %v, want the orphan swept", mirror.deletes)
	}
}
