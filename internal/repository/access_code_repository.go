package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/redis/go-redis/v9"
)

// AccessCodeRepo stores the single current event access code. MySQL
// holds the authoritative value in a one-row table; Redis acts as a
// short-lived read-through cache so the join endpoint does not hit
// the database on every admission attempt. The cache is optional:
// with a nil client every read goes straight to MySQL.
type AccessCodeRepo struct {
	DB  *sql.DB
	RDB *redis.Client
}

const (
	accessCodeCacheKey = "waitlist:access_code"
	accessCodeCacheTTL = 30 * time.Second
)

// NewAccessCodeRepo returns a new AccessCodeRepo. rdb may be nil.
func NewAccessCodeRepo(db *sql.DB, rdb *redis.Client) *AccessCodeRepo {
	return &AccessCodeRepo{DB: db, RDB: rdb}
}

// Current returns the active code, or "" when none has been set.
// Cache errors are ignored and the read falls through to MySQL; a
// MySQL error is returned so the gate can fail closed.
func (r *AccessCodeRepo) Current(ctx context.Context) (string, error) {
	if r.RDB != nil {
		if v, err := r.RDB.Get(ctx, accessCodeCacheKey).Result(); err == nil {
			return v, nil
		}
	}
	var code string
	err := r.DB.QueryRowContext(ctx,
		`SELECT code FROM event_access_code WHERE id = 1 LIMIT 1`).Scan(&code)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	if r.RDB != nil {
		_ = r.RDB.Set(ctx, accessCodeCacheKey, code, accessCodeCacheTTL).Err()
	}
	return code, nil
}

// Set replaces the active code and invalidates the cache. The upsert
// keeps the table at exactly one row.
func (r *AccessCodeRepo) Set(ctx context.Context, code string) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO event_access_code (id, code, updated_at) VALUES (1, ?, NOW(6))
         ON DUPLICATE KEY UPDATE code = VALUES(code), updated_at = NOW(6)`, code)
	if err != nil {
		return err
	}
	if r.RDB != nil {
		_ = r.RDB.Del(ctx, accessCodeCacheKey).Err()
	}
	return nil
}
