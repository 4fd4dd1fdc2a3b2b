package store

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// TemplateCache persists raw catalog files between runs. Entries are scoped
// to one catalog source and expire after ttl; a zero ttl never expires.
type TemplateCache struct {
	db     *DB
	source string
	ttl    time.Duration
	now    func() time.Time
}

// NewTemplateCache creates a cache for the catalog source at the given location.
func NewTemplateCache(db *DB, source string, ttl time.Duration) *TemplateCache {
	return &TemplateCache{db: db, source: source, ttl: ttl, now: time.Now}
}

// Get returns a cached file if it is present and fresh.
func (c *TemplateCache) Get(ctx context.Context, path string) ([]byte, bool) {
	var data []byte
	var fetchedAt int64
	err := c.db.sql.QueryRowContext(ctx,
		`SELECT data, fetched_at FROM template_cache WHERE source = ? AND path = ?`,
		c.source, path,
	).Scan(&data, &fetchedAt)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			c.db.log.Warn().Err(err).Str("path", path).Msg("template cache read failed")
		}
		return nil, false
	}

	if c.ttl > 0 && c.now().Sub(time.Unix(fetchedAt, 0)) > c.ttl {
		c.db.log.Debug().Str("path", path).Msg("template cache entry expired")
		return nil, false
	}
	return data, true
}

// Put stores or replaces a cached file.
func (c *TemplateCache) Put(ctx context.Context, path string, data []byte) error {
	_, err := c.db.sql.ExecContext(ctx,
		`INSERT INTO template_cache (source, path, data, fetched_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(source, path) DO UPDATE SET
		   data = excluded.data,
		   fetched_at = excluded.fetched_at`,
		c.source, path, data, c.now().Unix(),
	)
	return err
}

// Clear drops every entry for this cache's source.
func (c *TemplateCache) Clear(ctx context.Context) error {
	res, err := c.db.sql.ExecContext(ctx, `DELETE FROM template_cache WHERE source = ?`, c.source)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	c.db.log.Info().Str("source", c.source).Int64("entries", n).Msg("template cache cleared")
	return nil
}

// Len returns the number of entries stored for this cache's source,
// including expired ones.
func (c *TemplateCache) Len(ctx context.Context) (int, error) {
	var n int
	err := c.db.sql.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM template_cache WHERE source = ?`, c.source,
	).Scan(&n)
	return n, err
}
