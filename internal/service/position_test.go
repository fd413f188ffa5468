package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/iliyamo/live-waitlist/internal/model"
)

// fakeLister returns one scripted result per call, repeating the last
// one when the script runs out.
type fakeLister struct {
	results [][]model.QueueEntry
	errs    []error
	calls   int
}

func (f *fakeLister) ListByStatus(ctx context.Context, status string) ([]model.QueueEntry, error) {
	i := f.calls
	f.calls++
	if i >= len(f.results) {
		i = len(f.results) - 1
	}
	var err error
	if i < len(f.errs) {
		err = f.errs[i]
	}
	return f.results[i], err
}

func waiting(ids ...string) []model.QueueEntry {
	out := make([]model.QueueEntry, 0, len(ids))
	for _, id := range ids {
		out = append(out, model.QueueEntry{ID: id, Status: model.StatusWaiting})
	}
	return out
}

func TestResolveFirstAttempt(t *testing.T) {
	p := &PositionResolver{
		Entries: &fakeLister{results: [][]model.QueueEntry{waiting("a", "b", "c")}},
		Delay:   time.Millisecond,
	}
	pos, found := p.Resolve(context.Background(), "b")
	if !found || pos != 2 {
		t.Fatalf("Resolve = (%d, %v), want (2, true)", pos, found)
	}
}

func TestResolveVisibleAfterRetries(t *testing.T) {
	lister := &fakeLister{results: [][]model.QueueEntry{
		waiting("a"),
		waiting("a"),
		waiting("a", "b"),
	}}
	p := &PositionResolver{Entries: lister, Delay: time.Millisecond}

	pos, found := p.Resolve(context.Background(), "b")
	if !found || pos != 2 {
		t.Fatalf("Resolve = (%d, %v), want (2, true)", pos, found)
	}
	if lister.calls != 3 {
		t.Fatalf("calls = %d, want 3", lister.calls)
	}
}

func TestResolveExhaustsBudget(t *testing.T) {
	lister := &fakeLister{results: [][]model.QueueEntry{waiting("a")}}
	p := &PositionResolver{Entries: lister, Attempts: 3, Delay: time.Millisecond}

	pos, found := p.Resolve(context.Background(), "missing")
	if found || pos != 0 {
		t.Fatalf("Resolve = (%d, %v), want (0, false)", pos, found)
	}
	if lister.calls != 3 {
		t.Fatalf("calls = %d, want 3", lister.calls)
	}
}

func TestResolveKeepsRetryingPastErrors(t *testing.T) {
	lister := &fakeLister{
		results: [][]model.QueueEntry{nil, waiting("x", "y")},
		errs:    []error{errors.New("driver: bad connection")},
	}
	p := &PositionResolver{Entries: lister, Delay: time.Millisecond}

	pos, found := p.Resolve(context.Background(), "y")
	if !found || pos != 2 {
		t.Fatalf("Resolve = (%d, %v), want (2, true)", pos, found)
	}
}

func TestResolveStopsOnContextCancel(t *testing.T) {
	lister := &fakeLister{results: [][]model.QueueEntry{waiting("a")}}
	p := &PositionResolver{Entries: lister, Delay: time.Hour}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	pos, found := p.Resolve(ctx, "missing")
	if found || pos != 0 {
		t.Fatalf("Resolve = (%d, %v), want (0, false)", pos, found)
	}
	if time.Since(start) > time.Second {
		t.Fatal("Resolve did not honor the cancelled context")
	}
}
