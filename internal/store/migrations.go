package store

// migration represents a single schema migration.
type migration struct {
	Version int
	Name    string
	SQL     string
}

// migrations is the ordered list of all schema migrations.
var migrations = []migration{
	{
		Version: 1,
		Name:    "create template cache",
		SQL: `
			CREATE TABLE template_cache (
				source      TEXT NOT NULL,
				path        TEXT NOT NULL,
				data        BLOB NOT NULL,
				fetched_at  INTEGER NOT NULL,
				PRIMARY KEY (source, path)
			);
		`,
	},
	{
		Version: 2,
		Name:    "create agent documents",
		SQL: `
			CREATE TABLE agent_documents (
				id          TEXT PRIMARY KEY,
				agent_name  TEXT NOT NULL,
				namespace   TEXT NOT NULL DEFAULT '',
				yaml        TEXT NOT NULL,
				created_at  TEXT NOT NULL DEFAULT (datetime('now'))
			);

			CREATE INDEX idx_agent_documents_name ON agent_documents (agent_name, created_at);
		`,
	},
}
