package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/live-waitlist/internal/model"
)

// MirrorRepo provides access to the `queue_public` table, the
// redacted copy of the queue that anonymous viewers read. Only the
// mirror synchronizer writes here; every other component treats the
// table as read-only. Rows never carry phone or email.
type MirrorRepo struct {
	DB *sql.DB
}

// NewMirrorRepo returns a new MirrorRepo bound to the given database.
func NewMirrorRepo(db *sql.DB) *MirrorRepo { return &MirrorRepo{DB: db} }

// Statements used by UpdateStatus. COALESCE keeps the first stamp: a
// repeated sync of a row already in the target status matches again
// (clientFoundRows) but leaves the visible timestamps untouched.
const (
	updateMirrorServed = `UPDATE queue_public SET status=?, served_at=COALESCE(served_at, NOW(6)) WHERE id=?`
	updateMirrorReturn = `UPDATE queue_public SET status=?, return_at=COALESCE(return_at, NOW(6)) WHERE id=?`
	updateMirrorPlain  = `UPDATE queue_public SET status=? WHERE id=?`
)

// UpdateStatus updates an existing mirror row in place, stamping the
// timestamp column that matches the new status. It returns the number
// of affected rows so the caller can fall back to Insert when the row
// is missing.
func (r *MirrorRepo) UpdateStatus(ctx context.Context, id, status string) (int64, error) {
	var res sql.Result
	var err error
	switch model.TimestampColumn(status) {
	case "served_at":
		res, err = r.DB.ExecContext(ctx, updateMirrorServed, status, id)
	case "return_at":
		res, err = r.DB.ExecContext(ctx, updateMirrorReturn, status, id)
	default:
		res, err = r.DB.ExecContext(ctx, updateMirrorPlain, status, id)
	}
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Insert writes a fresh mirror row with the minimal safe field set.
// The creation stamp is assigned here, not copied from the
// authoritative record, so a healing write never depends on a field
// that may not be visible yet.
func (r *MirrorRepo) Insert(ctx context.Context, id, name, status string) error {
	switch model.TimestampColumn(status) {
	case "served_at":
		_, err := r.DB.ExecContext(ctx,
			`INSERT INTO queue_public (id, name, status, created_at, served_at)
             VALUES (?, ?, ?, NOW(6), NOW(6))`, id, name, status)
		return err
	case "return_at":
		_, err := r.DB.ExecContext(ctx,
			`INSERT INTO queue_public (id, name, status, created_at, return_at)
             VALUES (?, ?, ?, NOW(6), NOW(6))`, id, name, status)
		return err
	}
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO queue_public (id, name, status, created_at)
         VALUES (?, ?, ?, NOW(6))`, id, name, status)
	return err
}

// Delete removes a mirror row. Idempotent; a missing row is fine.
func (r *MirrorRepo) Delete(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM queue_public WHERE id = ?`, id)
	return err
}

// Get fetches one mirror row by id. Returns ErrNotFound when absent.
func (r *MirrorRepo) Get(ctx context.Context, id string) (model.PublicSummary, error) {
	const q = `SELECT id, name, status, created_at, served_at, return_at
               FROM queue_public WHERE id = ? LIMIT 1`
	s, err := scanSummary(r.DB.QueryRowContext(ctx, q, id))
	if err == sql.ErrNoRows {
		return model.PublicSummary{}, ErrNotFound
	}
	return s, err
}

// ListByStatus returns mirror rows in the given status ordered by
// creation stamp ascending.
func (r *MirrorRepo) ListByStatus(ctx context.Context, status string) ([]model.PublicSummary, error) {
	const q = `SELECT id, name, status, created_at, served_at, return_at
               FROM queue_public WHERE status = ? ORDER BY created_at ASC, id ASC`
	rows, err := r.DB.QueryContext(ctx, q, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.PublicSummary
	for rows.Next() {
		s, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func scanSummary(row rowScanner) (model.PublicSummary, error) {
	var (
		s           model.PublicSummary
		served, ret sql.NullTime
	)
	if err := row.Scan(&s.ID, &s.Name, &s.Status, &s.CreatedAt, &served, &ret); err != nil {
		return model.PublicSummary{}, err
	}
	if served.Valid {
		v := served.Time
		s.ServedAt = &v
	}
	if ret.Valid {
		v := ret.Time
		s.ReturnAt = &v
	}
	return s, nil
}
