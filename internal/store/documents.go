package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// DocumentRecord is an assembled agent document kept for later retrieval.
type DocumentRecord struct {
	ID        string    `json:"id"`
	AgentName string    `json:"agentName"`
	Namespace string    `json:"namespace"`
	YAML      string    `json:"yaml,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// DocumentStore records the documents produced by completed wizard sessions.
type DocumentStore struct {
	db *DB
}

// NewDocumentStore creates a document store using the given database.
func NewDocumentStore(db *DB) *DocumentStore {
	return &DocumentStore{db: db}
}

// Save inserts a document. An empty ID gets a fresh UUID; saving an
// existing ID replaces the stored YAML.
func (s *DocumentStore) Save(ctx context.Context, rec DocumentRecord) (*DocumentRecord, error) {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	rec.CreatedAt = rec.CreatedAt.UTC()

	_, err := s.db.sql.ExecContext(ctx,
		`INSERT INTO agent_documents (id, agent_name, namespace, yaml, created_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   agent_name = excluded.agent_name,
		   namespace = excluded.namespace,
		   yaml = excluded.yaml`,
		rec.ID, rec.AgentName, rec.Namespace, rec.YAML, rec.CreatedAt.Format(time.DateTime),
	)
	if err != nil {
		return nil, err
	}
	s.db.log.Debug().Str("id", rec.ID).Str("agent", rec.AgentName).Msg("document saved")
	return &rec, nil
}

// Get returns a document by ID, or nil if not found.
func (s *DocumentStore) Get(ctx context.Context, id string) (*DocumentRecord, error) {
	var rec DocumentRecord
	var createdAt string
	err := s.db.sql.QueryRowContext(ctx,
		`SELECT id, agent_name, namespace, yaml, created_at FROM agent_documents WHERE id = ?`, id,
	).Scan(&rec.ID, &rec.AgentName, &rec.Namespace, &rec.YAML, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	rec.CreatedAt, _ = time.Parse(time.DateTime, createdAt)
	return &rec, nil
}

// List returns the most recent documents without their YAML bodies,
// newest first. A non-positive limit returns all of them.
func (s *DocumentStore) List(ctx context.Context, limit int) ([]DocumentRecord, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.sql.QueryContext(ctx,
		`SELECT id, agent_name, namespace, created_at FROM agent_documents
		 ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []DocumentRecord
	for rows.Next() {
		var rec DocumentRecord
		var createdAt string
		if err := rows.Scan(&rec.ID, &rec.AgentName, &rec.Namespace, &createdAt); err != nil {
			return nil, err
		}
		rec.CreatedAt, _ = time.Parse(time.DateTime, createdAt)
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// Delete removes a document. It reports whether a row was removed.
func (s *DocumentStore) Delete(ctx context.Context, id string) (bool, error) {
	res, err := s.db.sql.ExecContext(ctx, `DELETE FROM agent_documents WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}
