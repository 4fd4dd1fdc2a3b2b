package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soyeahso/agentwiz/internal/catalog"
	"github.com/soyeahso/agentwiz/internal/logging"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	log := logging.New(nil, "silent")
	db, err := Open(Options{}, log)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

// --- DB/Migration tests ---

func TestOpen_InMemory(t *testing.T) {
	db := testDB(t)
	assert.NotNil(t, db)
	assert.NotNil(t, db.SQL())
}

func TestOpen_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "agentwiz.db")
	db, err := Open(Options{Path: path}, logging.New(nil, "silent"))
	require.NoError(t, err)
	require.NoError(t, db.Close())

	// reopening applies no new migrations
	db, err = Open(Options{Path: path}, logging.New(nil, "silent"))
	require.NoError(t, err)
	defer db.Close()

	var count int
	require.NoError(t, db.sql.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count))
	assert.Equal(t, len(migrations), count)
}

func TestOpen_PragmasOnEveryConnection(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "agentwiz.db")
	db, err := Open(Options{Path: path, BusyTimeout: 2 * time.Second}, logging.New(nil, "silent"))
	require.NoError(t, err)
	defer db.Close()

	// Hold two connections at once so the pool cannot hand out the same one.
	first, err := db.SQL().Conn(ctx)
	require.NoError(t, err)
	defer first.Close()
	second, err := db.SQL().Conn(ctx)
	require.NoError(t, err)
	defer second.Close()

	for _, conn := range []*sql.Conn{first, second} {
		var timeout int
		require.NoError(t, conn.QueryRowContext(ctx, "PRAGMA busy_timeout").Scan(&timeout))
		assert.Equal(t, 2000, timeout)

		var mode string
		require.NoError(t, conn.QueryRowContext(ctx, "PRAGMA journal_mode").Scan(&mode))
		assert.Equal(t, "wal", mode)
	}
}

func TestOptions_DSN(t *testing.T) {
	tests := []struct {
		name   string
		opts   Options
		memory bool
		want   string
	}{
		{"zero value", Options{}, true, ":memory:?_pragma=busy_timeout%285000%29"},
		{"explicit memory", Options{Path: ":memory:", BusyTimeout: time.Second}, true, ":memory:?_pragma=busy_timeout%281000%29"},
		{"file", Options{Path: "/data/agentwiz.db"}, false,
			"/data/agentwiz.db?_pragma=busy_timeout%285000%29&_pragma=journal_mode%28WAL%29"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.memory, tt.opts.memory())
			assert.Equal(t, tt.want, tt.opts.dsn())
		})
	}
}

func TestMigrations_Idempotent(t *testing.T) {
	db := testDB(t)

	// Running migrate again should be a no-op
	err := db.migrate()
	require.NoError(t, err)

	var count int
	err = db.sql.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, len(migrations), count)
}

func TestSchema_TablesExist(t *testing.T) {
	db := testDB(t)

	tables := []string{"template_cache", "agent_documents"}
	for _, table := range tables {
		var name string
		err := db.sql.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		require.NoError(t, err, "table %s should exist", table)
		assert.Equal(t, table, name)
	}
}

// --- Template cache tests ---

var _ catalog.Cache = (*TemplateCache)(nil)

func TestTemplateCache_PutGet(t *testing.T) {
	ctx := context.Background()
	c := NewTemplateCache(testDB(t), "https://example.com/lib", time.Hour)

	_, ok := c.Get(ctx, "catalog-index.json")
	assert.False(t, ok)

	require.NoError(t, c.Put(ctx, "catalog-index.json", []byte(`{"version":"1"}`)))
	data, ok := c.Get(ctx, "catalog-index.json")
	require.True(t, ok)
	assert.Equal(t, `{"version":"1"}`, string(data))

	require.NoError(t, c.Put(ctx, "catalog-index.json", []byte(`{"version":"2"}`)))
	data, _ = c.Get(ctx, "catalog-index.json")
	assert.Equal(t, `{"version":"2"}`, string(data))

	n, err := c.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestTemplateCache_Expiry(t *testing.T) {
	ctx := context.Background()
	c := NewTemplateCache(testDB(t), "dir:/srv", 10*time.Minute)
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	require.NoError(t, c.Put(ctx, "tools/a.yaml", []byte("a: 1")))

	now = now.Add(9 * time.Minute)
	_, ok := c.Get(ctx, "tools/a.yaml")
	assert.True(t, ok)

	now = now.Add(2 * time.Minute)
	_, ok = c.Get(ctx, "tools/a.yaml")
	assert.False(t, ok, "entry older than ttl is a miss")
}

func TestTemplateCache_ZeroTTLNeverExpires(t *testing.T) {
	ctx := context.Background()
	c := NewTemplateCache(testDB(t), "dir:/srv", 0)
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	require.NoError(t, c.Put(ctx, "x.yaml", []byte("x")))
	now = now.Add(24 * 365 * time.Hour)
	_, ok := c.Get(ctx, "x.yaml")
	assert.True(t, ok)
}

func TestTemplateCache_ClearIsScopedToSource(t *testing.T) {
	ctx := context.Background()
	db := testDB(t)
	a := NewTemplateCache(db, "source-a", time.Hour)
	b := NewTemplateCache(db, "source-b", time.Hour)

	require.NoError(t, a.Put(ctx, "index.json", []byte("a")))
	require.NoError(t, b.Put(ctx, "index.json", []byte("b")))

	data, _ := b.Get(ctx, "index.json")
	assert.Equal(t, "b", string(data))

	require.NoError(t, a.Clear(ctx))
	_, ok := a.Get(ctx, "index.json")
	assert.False(t, ok)
	_, ok = b.Get(ctx, "index.json")
	assert.True(t, ok)
}

// --- Document store tests ---

func TestDocumentStore_SaveGet(t *testing.T) {
	ctx := context.Background()
	ds := NewDocumentStore(testDB(t))

	rec, err := ds.Save(ctx, DocumentRecord{AgentName: "invoice-bot", Namespace: "finance", YAML: "kind: Agent\n"})
	require.NoError(t, err)
	assert.NotEmpty(t, rec.ID)
	assert.False(t, rec.CreatedAt.IsZero())

	got, err := ds.Get(ctx, rec.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "invoice-bot", got.AgentName)
	assert.Equal(t, "finance", got.Namespace)
	assert.Equal(t, "kind: Agent\n", got.YAML)
	assert.WithinDuration(t, rec.CreatedAt, got.CreatedAt, time.Second)
}

func TestDocumentStore_GetNotFound(t *testing.T) {
	ds := NewDocumentStore(testDB(t))
	got, err := ds.Get(context.Background(), "nonexistent")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestDocumentStore_SaveReplaces(t *testing.T) {
	ctx := context.Background()
	ds := NewDocumentStore(testDB(t))

	_, err := ds.Save(ctx, DocumentRecord{ID: "s1", AgentName: "bot", YAML: "v1"})
	require.NoError(t, err)
	_, err = ds.Save(ctx, DocumentRecord{ID: "s1", AgentName: "bot", YAML: "v2"})
	require.NoError(t, err)

	got, err := ds.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "v2", got.YAML)

	all, err := ds.List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestDocumentStore_ListNewestFirst(t *testing.T) {
	ctx := context.Background()
	ds := NewDocumentStore(testDB(t))
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, name := range []string{"first", "second", "third"} {
		_, err := ds.Save(ctx, DocumentRecord{
			AgentName: name,
			YAML:      "kind: Agent",
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		})
		require.NoError(t, err)
	}

	recs, err := ds.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "third", recs[0].AgentName)
	assert.Equal(t, "second", recs[1].AgentName)
	assert.Empty(t, recs[0].YAML, "list omits bodies")
}

func TestDocumentStore_Delete(t *testing.T) {
	ctx := context.Background()
	ds := NewDocumentStore(testDB(t))

	rec, err := ds.Save(ctx, DocumentRecord{AgentName: "bot", YAML: "x"})
	require.NoError(t, err)

	removed, err := ds.Delete(ctx, rec.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = ds.Delete(ctx, rec.ID)
	require.NoError(t, err)
	assert.False(t, removed)
}
