package catalog

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/soyeahso/agentwiz/internal/domain"
	"github.com/soyeahso/agentwiz/internal/logging"
)

const defaultConcurrency = 8

// Loader fetches the catalog index and every component template from a
// Source, consulting a Cache first.
type Loader struct {
	source      Source
	cache       Cache
	indexFile   string
	concurrency int
	log         *logging.Logger
}

// LoaderOptions tunes a Loader. Zero values select defaults.
type LoaderOptions struct {
	IndexFile   string
	Concurrency int
}

// NewLoader creates a loader. A nil cache disables caching.
func NewLoader(src Source, cache Cache, log *logging.Logger, opts LoaderOptions) *Loader {
	if cache == nil {
		cache = NopCache{}
	}
	if opts.IndexFile == "" {
		opts.IndexFile = DefaultIndexFile
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = defaultConcurrency
	}
	return &Loader{
		source:      src,
		cache:       cache,
		indexFile:   opts.IndexFile,
		concurrency: opts.Concurrency,
		log:         log.Sub("catalog"),
	}
}

// Load reads the index, then resolves every component's template file in
// a second concurrent pass. Any failure is reported as CatalogUnavailable.
func (l *Loader) Load(ctx context.Context) (*Catalog, error) {
	l.log.Debug().Str("source", l.source.Location()).Str("index", l.indexFile).Msg("loading catalog")

	data, err := l.fetch(ctx, l.indexFile)
	if err != nil {
		return nil, domain.Wrap(domain.CatalogUnavailable, "loadCatalog", err)
	}

	cat, err := ParseIndex(data)
	if err != nil {
		return nil, domain.Wrap(domain.CatalogUnavailable, "loadCatalog", err)
	}

	if err := l.loadTemplates(ctx, cat); err != nil {
		return nil, domain.Wrap(domain.CatalogUnavailable, "loadCatalog", err)
	}

	l.log.Info().
		Str("version", cat.Version).
		Int("servers", len(cat.Components.MCPServers)).
		Int("tools", len(cat.Components.Tools)).
		Int("knowledgeBases", len(cat.Components.KnowledgeBases)).
		Int("llmProfiles", len(cat.Components.LLMProfiles)).
		Int("personas", len(cat.Components.Personas)).
		Msg("catalog loaded")

	return cat, nil
}

// Refresh drops cached files and loads the catalog again.
func (l *Loader) Refresh(ctx context.Context) (*Catalog, error) {
	if err := l.cache.Clear(ctx); err != nil {
		l.log.Warn().Err(err).Msg("failed to clear catalog cache")
	}
	return l.Load(ctx)
}

// ClearCache drops cached files without reloading.
func (l *Loader) ClearCache(ctx context.Context) error {
	return l.cache.Clear(ctx)
}

// ParseIndex decodes a catalog index document (JSON or YAML).
func ParseIndex(data []byte) (*Catalog, error) {
	var cat Catalog
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("parsing catalog index: %w", err)
	}
	if cat.Version == "" && cat.Count(domain.KindPersona)+cat.Count(domain.KindTool)+cat.Count(domain.KindServer)+
		cat.Count(domain.KindLLMProfile)+cat.Count(domain.KindKnowledgeBase) == 0 {
		return nil, fmt.Errorf("parsing catalog index: no version and no components")
	}
	return &cat, nil
}

func (l *Loader) loadTemplates(ctx context.Context, cat *Catalog) error {
	records := make([]*domain.Component, 0, 32)
	for i := range cat.Components.MCPServers {
		records = append(records, &cat.Components.MCPServers[i].Component)
	}
	for i := range cat.Components.Tools {
		records = append(records, &cat.Components.Tools[i].Component)
	}
	for i := range cat.Components.KnowledgeBases {
		records = append(records, &cat.Components.KnowledgeBases[i].Component)
	}
	for i := range cat.Components.LLMProfiles {
		records = append(records, &cat.Components.LLMProfiles[i].Component)
	}
	for i := range cat.Components.Personas {
		records = append(records, &cat.Components.Personas[i].Component)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.concurrency)
	for _, rec := range records {
		if rec.File == "" || !rec.Template.IsZero() {
			continue
		}
		g.Go(func() error {
			data, err := l.fetch(gctx, rec.File)
			if err != nil {
				return fmt.Errorf("template for %s: %w", rec.ID, err)
			}
			tpl, err := domain.ParseTemplate(data)
			if err != nil {
				return fmt.Errorf("template for %s (%s): %w", rec.ID, rec.File, err)
			}
			rec.Template = tpl
			return nil
		})
	}
	return g.Wait()
}

func (l *Loader) fetch(ctx context.Context, path string) ([]byte, error) {
	if data, ok := l.cache.Get(ctx, path); ok {
		l.log.Debug().Str("path", path).Msg("cache hit")
		return data, nil
	}
	data, err := l.source.Fetch(ctx, path)
	if err != nil {
		return nil, err
	}
	if err := l.cache.Put(ctx, path, data); err != nil {
		l.log.Warn().Err(err).Str("path", path).Msg("failed to cache catalog file")
	}
	return data, nil
}
