package wizard

import (
	"context"
	"strings"

	"github.com/soyeahso/agentwiz/internal/assistant"
	"github.com/soyeahso/agentwiz/internal/catalog"
	"github.com/soyeahso/agentwiz/internal/crd"
	"github.com/soyeahso/agentwiz/internal/domain"
	"github.com/soyeahso/agentwiz/internal/hooks"
)

// Start loads the catalog and moves from welcome to identity. A failed load
// leaves the session at welcome so Start can be retried.
func (w *Wizard) Start(ctx context.Context, loader Loader) error {
	const op = "start"
	if err := w.expect(op, domain.StepWelcome); err != nil {
		return err
	}

	bctx, cancel := w.bind(ctx)
	cat, err := loader.Load(bctx)
	cancel()
	if err := w.discarded(op); err != nil {
		return err
	}
	if err != nil {
		w.log.Error().Err(err).Msg("catalog load failed")
		if domain.KindOf(err) == "" {
			err = domain.Wrap(domain.CatalogUnavailable, op, err)
		}
		return err
	}
	if cat == nil {
		return domain.Errorf(domain.CatalogUnavailable, op, "no catalog")
	}

	w.cat = cat
	w.emit(hooks.EventCatalogLoaded, map[string]any{
		"version":    cat.Version,
		"tools":      len(cat.Components.Tools),
		"personas":   len(cat.Components.Personas),
		"mcpServers": len(cat.Components.MCPServers),
	})
	w.advance(domain.StepIdentity)
	w.say(ctx, assistant.WelcomePrompt())
	return nil
}

// SetIdentity sets one identity field. Fields are set once each, in the
// order agentName, displayName, goal; setting the goal moves to persona.
func (w *Wizard) SetIdentity(ctx context.Context, field, value string) error {
	const op = "setIdentity"
	if err := w.expect(op, domain.StepIdentity); err != nil {
		return err
	}

	value = strings.TrimSpace(value)
	if value == "" {
		return domain.Errorf(domain.InvalidState, op, "%s must not be empty", field)
	}
	if !isIdentityField(field) {
		return domain.Errorf(domain.InvalidState, op, "unknown identity field %q", field)
	}
	if w.sel.IdentityValue(field) != "" {
		return domain.Errorf(domain.InvalidState, op, "%s is already set", field)
	}
	if next := w.sel.NextIdentityField(); field != next {
		return domain.Errorf(domain.InvalidState, op, "%s must be set before %s", next, field)
	}
	if field == domain.FieldAgentName && w.opts.StrictNames {
		if err := crd.ValidateName(value); err != nil {
			return domain.Wrap(domain.InvalidState, op, err)
		}
	}

	w.record(RoleUser, value)
	switch field {
	case domain.FieldAgentName:
		w.sel.AgentName = value
	case domain.FieldDisplayName:
		w.sel.DisplayName = value
	case domain.FieldGoal:
		w.sel.Goal = value
	}

	if w.sel.NextIdentityField() == "" {
		w.advance(domain.StepPersona)
	}
	w.say(ctx, assistant.IdentityPrompt(field, value))
	return nil
}

// SubmitIdentity sets the next unset identity field.
func (w *Wizard) SubmitIdentity(ctx context.Context, value string) error {
	if err := w.expect("submitIdentity", domain.StepIdentity); err != nil {
		return err
	}
	return w.SetIdentity(ctx, w.sel.NextIdentityField(), value)
}

// NextIdentityField returns the identity field SubmitIdentity will set, or
// "" outside the identity step.
func (w *Wizard) NextIdentityField() string {
	if w.step != domain.StepIdentity {
		return ""
	}
	return w.sel.NextIdentityField()
}

// ChoosePersona selects the persona by id or URN and moves to llm.
func (w *Wizard) ChoosePersona(ctx context.Context, ref string) error {
	const op = "choosePersona"
	if err := w.expect(op, domain.StepPersona); err != nil {
		return err
	}
	p, ok := w.cat.Persona(ref)
	if !ok {
		return domain.Errorf(domain.NotFound, op, "persona %q not in catalog", ref)
	}

	w.record(RoleUser, p.DisplayName)
	w.sel.Persona = &p
	w.advance(domain.StepLLM)
	w.say(ctx, assistant.PersonaPrompt(p))
	return nil
}

// ChooseLLMProfile selects the LLM profile by id or URN and moves to tools.
func (w *Wizard) ChooseLLMProfile(ctx context.Context, ref string) error {
	const op = "chooseLLMProfile"
	if err := w.expect(op, domain.StepLLM); err != nil {
		return err
	}
	l, ok := w.cat.LLMProfile(ref)
	if !ok {
		return domain.Errorf(domain.NotFound, op, "llm profile %q not in catalog", ref)
	}

	w.record(RoleUser, l.DisplayName)
	w.sel.LLMProfile = &l
	w.advance(domain.StepTools)
	w.say(ctx, assistant.LLMProfilePrompt(l))
	return nil
}

// ChooseTools replaces the tool selection, recomputes the required MCP
// servers, and moves to knowledge-bases. At least one tool is required.
func (w *Wizard) ChooseTools(ctx context.Context, refs []string) error {
	const op = "chooseTools"
	if err := w.expect(op, domain.StepTools); err != nil {
		return err
	}
	if len(refs) == 0 {
		return domain.Errorf(domain.InvalidState, op, "at least one tool is required")
	}
	tools, err := w.cat.Tools(refs)
	if err != nil {
		return err
	}
	tools = catalog.DedupeTools(tools)
	w.cat.SortTools(tools)

	w.record(RoleUser, names(tools, func(t domain.Tool) string { return t.DisplayName }))
	w.sel.Tools = tools
	w.sel.AutoIncludedServers = catalog.ResolveRequiredServers(tools, w.cat.Components.MCPServers)
	w.log.Debug().
		Int("tools", len(tools)).
		Int("servers", len(w.sel.AutoIncludedServers)).
		Msg("tools selected")

	w.advance(domain.StepKnowledgeBases)
	w.say(ctx, assistant.ToolsPrompt(tools, len(w.sel.AutoIncludedServers)))
	return nil
}

// ChooseKnowledgeBases replaces the knowledge base selection, which may be
// empty, and moves to content-generation.
func (w *Wizard) ChooseKnowledgeBases(_ context.Context, refs []string) error {
	const op = "chooseKnowledgeBases"
	if err := w.expect(op, domain.StepKnowledgeBases); err != nil {
		return err
	}
	kbs, err := w.cat.KnowledgeBases(refs)
	if err != nil {
		return err
	}
	kbs = catalog.DedupeKnowledgeBases(kbs)
	w.cat.SortKnowledgeBases(kbs)

	if len(kbs) == 0 {
		w.record(RoleUser, "(no knowledge bases)")
		w.sel.KnowledgeBases = nil
	} else {
		w.record(RoleUser, names(kbs, func(k domain.KnowledgeBase) string { return k.DisplayName }))
		w.sel.KnowledgeBases = kbs
	}
	w.advance(domain.StepContentGeneration)
	return nil
}

func isIdentityField(field string) bool {
	for _, f := range domain.IdentityFields {
		if f == field {
			return true
		}
	}
	return false
}

func names[T any](items []T, name func(T) string) string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = name(it)
	}
	return strings.Join(out, ", ")
}
