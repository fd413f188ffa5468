package live

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/iliyamo/live-waitlist/internal/model"
)

// EntrySource reads the authoritative table, ordered by creation
// stamp ascending. Only the admin projection touches it.
type EntrySource interface {
	ListByStatus(ctx context.Context, status string) ([]model.QueueEntry, error)
}

// MirrorSource reads the public mirror, ordered the same way.
type MirrorSource interface {
	ListByStatus(ctx context.Context, status string) ([]model.PublicSummary, error)
}

// Row is one rendered queue line. Contact fields and action controls
// are present only in admin frames; the public shape carries name and
// creation stamp alone.
type Row struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	Phone     string    `json:"phone,omitempty"`
	Email     string    `json:"email,omitempty"`
	Actions   []string  `json:"actions,omitempty"`
}

// Frame is a full replacement of one result set. Clients replace
// whatever they held for the set; nothing is diffed.
type Frame struct {
	Set  string `json:"set"` // "waiting" or "return"
	Rows []Row  `json:"rows"`
}

// Projector renders the two role views. The admin view reads the
// authoritative table and includes the return set; the public view
// reads only the mirror and has no return set at all, so a non-admin
// connection cannot receive return-state rows because the projector
// never queries them for that topic.
type Projector struct {
	Entries EntrySource
	Mirror  MirrorSource
	Feed    *Feed
	Hub     *Hub
}

// AdminFrames renders the privileged projection: waiting and return
// sets from the authoritative store, full rows.
func (p *Projector) AdminFrames(ctx context.Context) ([]Frame, error) {
	waiting, err := p.Entries.ListByStatus(ctx, model.StatusWaiting)
	if err != nil {
		return nil, err
	}
	returned, err := p.Entries.ListByStatus(ctx, model.StatusReturn)
	if err != nil {
		return nil, err
	}
	return []Frame{
		{Set: model.StatusWaiting, Rows: adminRows(waiting, []string{"serve", "return", "remove"})},
		{Set: model.StatusReturn, Rows: adminRows(returned, []string{"serve", "remove"})},
	}, nil
}

// PublicFrames renders the redacted projection: the waiting set from
// the mirror, names and stamps only.
func (p *Projector) PublicFrames(ctx context.Context) ([]Frame, error) {
	waiting, err := p.Mirror.ListByStatus(ctx, model.StatusWaiting)
	if err != nil {
		return nil, err
	}
	rows := make([]Row, 0, len(waiting))
	for _, s := range waiting {
		rows = append(rows, Row{ID: s.ID, Name: s.Name, CreatedAt: s.CreatedAt})
	}
	return []Frame{{Set: model.StatusWaiting, Rows: rows}}, nil
}

func adminRows(entries []model.QueueEntry, actions []string) []Row {
	rows := make([]Row, 0, len(entries))
	for _, e := range entries {
		r := Row{ID: e.ID, Name: e.Name, CreatedAt: e.CreatedAt, Actions: actions}
		if e.Phone != nil {
			r.Phone = *e.Phone
		}
		if e.Email != nil {
			r.Email = *e.Email
		}
		rows = append(rows, r)
	}
	return rows
}

// FramesFor returns the projection for a topic.
func (p *Projector) FramesFor(ctx context.Context, topic string) ([]Frame, error) {
	if topic == TopicAdmin {
		return p.AdminFrames(ctx)
	}
	return p.PublicFrames(ctx)
}

// Run re-projects on every feed poke and broadcasts each view to its
// topic until ctx is done. A projection error leaves the last good
// frames on every client's screen; the error is only logged.
func (p *Projector) Run(ctx context.Context) {
	pokes, cancel := p.Feed.Subscribe()
	defer cancel()
	for {
		select {
		case <-ctx.Done():
			return
		case <-pokes:
			p.publish(ctx, TopicAdmin)
			p.publish(ctx, TopicPublic)
		}
	}
}

func (p *Projector) publish(ctx context.Context, topic string) {
	qctx, qcancel := context.WithTimeout(ctx, 5*time.Second)
	defer qcancel()
	frames, err := p.FramesFor(qctx, topic)
	if err != nil {
		log.Printf("live: project %s failed: %v", topic, err)
		return
	}
	for _, f := range frames {
		msg, err := json.Marshal(f)
		if err != nil {
			log.Printf("live: marshal frame failed: %v", err)
			continue
		}
		p.Hub.Broadcast(topic, msg)
	}
}

// SendSnapshot pushes the current projection for the client's topic
// to that client alone; used right after connect and after a role
// switch.
func (p *Projector) SendSnapshot(ctx context.Context, c *Client) {
	frames, err := p.FramesFor(ctx, c.Topic())
	if err != nil {
		log.Printf("live: snapshot failed: %v", err)
		return
	}
	for _, f := range frames {
		msg, err := json.Marshal(f)
		if err != nil {
			continue
		}
		p.Hub.Send(c, msg)
	}
}
