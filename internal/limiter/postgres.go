package limiter

import (
	"context"
	"crypto/sha256"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PG is a PostgreSQL-backed fixed-window limiter.
type PG struct {
	pool    pgxQuerier
	window  time.Duration
	maxHits int
	now     func() time.Time
}

type pgxQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// NewPG constructs a PostgreSQL-backed limiter allowing maxHits creates per window.
func NewPG(pool *pgxpool.Pool, window time.Duration, maxHits int) *PG {
	return NewPGWithQuerier(pool, window, maxHits)
}

// NewPGWithQuerier constructs a limiter over any querier.
func NewPGWithQuerier(q pgxQuerier, window time.Duration, maxHits int) *PG {
	return &PG{pool: q, window: window, maxHits: maxHits, now: time.Now}
}

// HashClient returns a stable hash for a client address to avoid storing raw addresses.
func HashClient(addr string) []byte {
	h := sha256.Sum256([]byte(addr))
	return h[:]
}

// Allow counts one attempt for client and reports whether it fits the current window.
func (l *PG) Allow(ctx context.Context, client string) (bool, time.Duration, error) {
	const q = `
INSERT INTO share_limiter (client_hash, hits, window_start)
VALUES ($1, 1, now())
ON CONFLICT (client_hash) DO UPDATE
SET
  hits = CASE WHEN now() - share_limiter.window_start > $2::double precision * interval '1 second'
              THEN 1 ELSE share_limiter.hits + 1 END,
  window_start = CASE WHEN now() - share_limiter.window_start > $2::double precision * interval '1 second'
              THEN now() ELSE share_limiter.window_start END
RETURNING hits, window_start`
	var (
		hits        int
		windowStart time.Time
	)
	if err := l.pool.QueryRow(ctx, q, HashClient(client), l.window.Seconds()).Scan(&hits, &windowStart); err != nil {
		return false, 0, err
	}
	if hits <= l.maxHits {
		return true, 0, nil
	}
	retry := windowStart.Add(l.window).Sub(l.now())
	if retry < 0 {
		retry = 0
	}
	return false, retry, nil
}
