// Package app wires configuration into the long-lived pieces a command
// needs: the catalog loader and its cache, the local database, lifecycle
// hooks and the conversation assistant.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/soyeahso/agentwiz/internal/assistant"
	"github.com/soyeahso/agentwiz/internal/catalog"
	"github.com/soyeahso/agentwiz/internal/config"
	"github.com/soyeahso/agentwiz/internal/crd"
	"github.com/soyeahso/agentwiz/internal/hooks"
	"github.com/soyeahso/agentwiz/internal/logging"
	"github.com/soyeahso/agentwiz/internal/store"
	"github.com/soyeahso/agentwiz/internal/wizard"
)

// Runtime holds everything built from one Config.
type Runtime struct {
	Config config.Config
	Paths  config.Paths
	Log    *logging.Logger

	Source    catalog.Source
	Loader    *catalog.Loader
	Hooks     *hooks.Manager
	Documents *store.DocumentStore

	db *store.DB
}

// Open builds a Runtime. The database is opened under paths unless
// cfg.Store.Path overrides it.
func Open(paths config.Paths, cfg config.Config, log *logging.Logger) (*Runtime, error) {
	if issues := config.Validate(&cfg); len(issues) > 0 {
		for _, issue := range issues {
			log.Error().Str("path", issue.Path).Msg(issue.Message)
		}
		return nil, fmt.Errorf("config validation failed with %d issue(s)", len(issues))
	}

	src, err := NewSource(cfg.Catalog)
	if err != nil {
		return nil, err
	}

	if err := paths.EnsureDirs(); err != nil {
		return nil, fmt.Errorf("creating directories: %w", err)
	}
	db, err := store.Open(store.Options{Path: paths.Database(cfg.Store)}, log)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	var cache catalog.Cache
	switch cfg.Catalog.Cache {
	case "sqlite":
		ttl := time.Duration(cfg.Catalog.CacheTTLMinutes) * time.Minute
		cache = store.NewTemplateCache(db, src.Location(), ttl)
	case "memory":
		cache = catalog.NewMemoryCache()
	}

	hookMgr := hooks.NewManager(log)
	if n := hooks.RegisterCommands(hookMgr, cfg.Hooks); n > 0 {
		log.Debug().Int("hooks", n).Msg("command hooks registered")
	}

	r := &Runtime{
		Config: cfg,
		Paths:  paths,
		Log:    log,
		Source: src,
		Loader: catalog.NewLoader(src, cache, log, catalog.LoaderOptions{
			IndexFile: cfg.Catalog.IndexFile,
		}),
		Hooks:     hookMgr,
		Documents: store.NewDocumentStore(db),
		db:        db,
	}
	log.Debug().
		Str("source", src.Location()).
		Str("cache", cfg.Catalog.Cache).
		Msg("runtime ready")
	return r, nil
}

// NewSource builds the catalog source named by cfg.Source.
func NewSource(cfg config.CatalogConfig) (catalog.Source, error) {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	switch cfg.Source {
	case "dir":
		return catalog.NewDirSource(cfg.Dir), nil
	case "http":
		return catalog.NewHTTPSource(cfg.BaseURL, timeout), nil
	case "github", "":
		return catalog.NewHTTPSource(catalog.GitHubRawURL(cfg.Owner, cfg.Repo, cfg.Branch), timeout), nil
	default:
		return nil, &config.ConfigError{Message: fmt.Sprintf("unknown catalog source %q", cfg.Source)}
	}
}

// Assistant returns the conversation assistant selected by configuration.
func (r *Runtime) Assistant() assistant.Assistant {
	return assistant.FromConfig(r.Config.Assistant, r.Log)
}

// DocumentOptions returns the assembler options from the document section.
func (r *Runtime) DocumentOptions() crd.Options {
	d := r.Config.Document
	return crd.Options{
		Namespace:    d.Namespace,
		Environment:  d.Environment,
		Organization: d.Organization,
		Team:         d.Team,
		User:         d.User,
	}
}

// NewWizard starts a session configured from the runtime. A nil assistant
// selects the configured one.
func (r *Runtime) NewWizard(a assistant.Assistant) *wizard.Wizard {
	if a == nil {
		a = r.Assistant()
	}
	return wizard.New(r.Log, wizard.Options{
		Assistant:     a,
		Hooks:         r.Hooks,
		AcceptPhrases: r.Config.Wizard.AcceptPhrases,
		StrictNames:   r.Config.Wizard.Strict(),
		Document:      r.DocumentOptions(),
	})
}

// Record saves the session's document to the history, keyed by session id.
func (r *Runtime) Record(ctx context.Context, w *wizard.Wizard) (*store.DocumentRecord, error) {
	doc := w.Document()
	if doc == nil {
		return nil, fmt.Errorf("session %s has no document", w.ID())
	}
	out, err := doc.YAML()
	if err != nil {
		return nil, fmt.Errorf("encoding document: %w", err)
	}
	rec, err := r.Documents.Save(ctx, store.DocumentRecord{
		ID:        w.ID(),
		AgentName: doc.Name,
		Namespace: doc.Namespace,
		YAML:      string(out),
		CreatedAt: doc.CreationTimestamp.Time,
	})
	if err != nil {
		return nil, fmt.Errorf("saving document: %w", err)
	}
	return rec, nil
}

// Close waits for pending hooks and closes the database.
func (r *Runtime) Close() error {
	r.Hooks.Wait()
	return r.db.Close()
}
