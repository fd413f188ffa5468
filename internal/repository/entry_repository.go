package repository

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/iliyamo/live-waitlist/internal/model"
)

// EntryRepo provides CRUD operations over the authoritative
// `queue_entries` table. It is the single writer-of-record for
// entries; the public mirror is maintained separately and never
// written from here. Creation stamps are assigned by the database
// (NOW(6)) so ordering does not depend on application clocks, and
// the auto-increment seq column breaks the rare exact-stamp tie.
type EntryRepo struct {
	DB *sql.DB
}

// NewEntryRepo returns a new EntryRepo bound to the given database.
func NewEntryRepo(db *sql.DB) *EntryRepo { return &EntryRepo{DB: db} }

// NewEntry carries the submitted fields for one admission. Phone and
// Email are optional at the schema level; which of them must be
// present depends on the chosen notify preference.
type NewEntry struct {
	Name   string
	Phone  *string
	Email  *string
	Notify string
}

// Validate checks the submission before any write. The wrapped
// messages are safe to return verbatim to the submitter.
func (n *NewEntry) Validate() error {
	if strings.TrimSpace(n.Name) == "" {
		return fmt.Errorf("%w: please enter your name", ErrValidation)
	}
	phone := n.Phone != nil && strings.TrimSpace(*n.Phone) != ""
	email := n.Email != nil && strings.TrimSpace(*n.Email) != ""
	switch n.Notify {
	case model.NotifySMS:
		if !phone {
			return fmt.Errorf("%w: add a phone number for SMS", ErrValidation)
		}
	case model.NotifyEmail:
		if !email {
			return fmt.Errorf("%w: add an email address", ErrValidation)
		}
	case model.NotifyBoth:
		if !phone && !email {
			return fmt.Errorf("%w: add at least one contact method", ErrValidation)
		}
	case "":
		return fmt.Errorf("%w: please choose a notification method", ErrValidation)
	default:
		return fmt.Errorf("%w: unknown notification method", ErrValidation)
	}
	return nil
}

// Create validates the submission, inserts it with status waiting and
// a server-assigned creation stamp, and returns the stored entry. The
// row is queried back after the insert so the caller sees the stamps
// the database actually assigned.
func (r *EntryRepo) Create(ctx context.Context, n NewEntry) (model.QueueEntry, error) {
	if err := n.Validate(); err != nil {
		return model.QueueEntry{}, err
	}
	id, err := newEntryID()
	if err != nil {
		return model.QueueEntry{}, err
	}
	name := strings.TrimSpace(n.Name)
	var phone, email interface{}
	if n.Phone != nil && strings.TrimSpace(*n.Phone) != "" {
		phone = strings.TrimSpace(*n.Phone)
	}
	if n.Email != nil && strings.TrimSpace(*n.Email) != "" {
		email = strings.ToLower(strings.TrimSpace(*n.Email))
	}

	const q = `INSERT INTO queue_entries (id, name, phone, email, notify, status, created_at)
               VALUES (?, ?, ?, ?, ?, 'waiting', NOW(6))`
	if _, err := r.DB.ExecContext(ctx, q, id, name, phone, email, n.Notify); err != nil {
		return model.QueueEntry{}, err
	}
	return r.Get(ctx, id)
}

// Get fetches one entry by id. Returns ErrNotFound when the id does
// not exist.
func (r *EntryRepo) Get(ctx context.Context, id string) (model.QueueEntry, error) {
	const q = `SELECT id, seq, name, phone, email, notify, status, created_at, served_at, return_at
               FROM queue_entries WHERE id = ? LIMIT 1`
	e, err := scanEntry(r.DB.QueryRowContext(ctx, q, id))
	if err == sql.ErrNoRows {
		return model.QueueEntry{}, ErrNotFound
	}
	return e, err
}

// UpdateStatus moves an entry to the next status and stamps the
// matching timestamp column exactly once. The transition guard lives
// in the WHERE clause, so a concurrent competing update cannot slip
// an entry along a missing edge. On zero affected rows the entry is
// re-read to distinguish ErrNotFound from ErrInvalidTransition.
func (r *EntryRepo) UpdateStatus(ctx context.Context, id, next string) (model.QueueEntry, error) {
	var res sql.Result
	var err error
	switch next {
	case model.StatusServed:
		res, err = r.DB.ExecContext(ctx,
			`UPDATE queue_entries SET status='served', served_at=NOW(6)
             WHERE id=? AND status IN ('waiting','return')`, id)
	case model.StatusReturn:
		res, err = r.DB.ExecContext(ctx,
			`UPDATE queue_entries SET status='return', return_at=NOW(6)
             WHERE id=? AND status='waiting'`, id)
	default:
		return model.QueueEntry{}, ErrInvalidTransition
	}
	if err != nil {
		return model.QueueEntry{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := r.Get(ctx, id); err != nil {
			return model.QueueEntry{}, err
		}
		return model.QueueEntry{}, ErrInvalidTransition
	}
	return r.Get(ctx, id)
}

// Delete removes an entry. Deleting an id that does not exist is not
// an error; removal is idempotent.
func (r *EntryRepo) Delete(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM queue_entries WHERE id = ?`, id)
	return err
}

// ListByStatus returns all entries in the given status ordered by
// creation stamp ascending, seq breaking ties. For status waiting
// this is the queue itself.
func (r *EntryRepo) ListByStatus(ctx context.Context, status string) ([]model.QueueEntry, error) {
	const q = `SELECT id, seq, name, phone, email, notify, status, created_at, served_at, return_at
               FROM queue_entries WHERE status = ? ORDER BY created_at ASC, seq ASC`
	rows, err := r.DB.QueryContext(ctx, q, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.QueueEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEntry(row rowScanner) (model.QueueEntry, error) {
	var (
		e             model.QueueEntry
		phone, email  sql.NullString
		served, ret   sql.NullTime
	)
	err := row.Scan(&e.ID, &e.Seq, &e.Name, &phone, &email, &e.Notify, &e.Status,
		&e.CreatedAt, &served, &ret)
	if err != nil {
		return model.QueueEntry{}, err
	}
	if phone.Valid {
		v := phone.String
		e.Phone = &v
	}
	if email.Valid {
		v := email.String
		e.Email = &v
	}
	if served.Valid {
		v := served.Time
		e.ServedAt = &v
	}
	if ret.Valid {
		v := ret.Time
		e.ReturnAt = &v
	}
	return e, nil
}

// newEntryID returns a 32-character hex identifier from secure random
// bytes. Ids are opaque; ordering always comes from created_at.
func newEntryID() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
