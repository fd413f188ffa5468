package repository

import (
	"context"
	"database/sql"
	"strings"
)

// AdminRepo queries the `admin_emails` allowlist. A row's existence
// alone grants staff privileges; there are no other attributes.
// Callers must re-check membership on every staff action rather than
// caching the answer, since access can be revoked between actions.
type AdminRepo struct {
	DB *sql.DB
}

// NewAdminRepo returns a new AdminRepo bound to the given database.
func NewAdminRepo(db *sql.DB) *AdminRepo { return &AdminRepo{DB: db} }

// IsAdmin reports whether the given email is on the allowlist.
// Emails are stored lowercased; the lookup normalizes accordingly.
// An empty email is never an admin.
func (r *AdminRepo) IsAdmin(ctx context.Context, email string) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return false, nil
	}
	var one int
	err := r.DB.QueryRowContext(ctx,
		`SELECT 1 FROM admin_emails WHERE email = ? LIMIT 1`, email).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Add puts an email on the allowlist. Idempotent.
func (r *AdminRepo) Add(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	_, err := r.DB.ExecContext(ctx,
		`INSERT IGNORE INTO admin_emails (email) VALUES (?)`, email)
	return err
}

// Remove takes an email off the allowlist. Idempotent.
func (r *AdminRepo) Remove(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	_, err := r.DB.ExecContext(ctx,
		`DELETE FROM admin_emails WHERE email = ?`, email)
	return err
}
