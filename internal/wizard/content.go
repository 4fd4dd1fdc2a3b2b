package wizard

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/soyeahso/agentwiz/internal/assistant"
	"github.com/soyeahso/agentwiz/internal/crd"
	"github.com/soyeahso/agentwiz/internal/domain"
	"github.com/soyeahso/agentwiz/internal/hooks"
)

const (
	noticeGenerated = "I've generated your agent's backstory and system prompt.\n\n" +
		"Review them below. You can ask me to refine them:\n" +
		"- \"Add more emphasis on data security\"\n" +
		"- \"Make the tone more formal\"\n" +
		"- \"Include HIPAA compliance guidelines\"\n\n" +
		"Or type \"looks good\" when you're ready to proceed."
	noticeTemplate = "No language model is configured, so the backstory and system prompt below come from templates.\n\n" +
		"Review them and type \"looks good\" to proceed to the final preview."
	noticeFallback = "I couldn't generate the content, so the backstory and system prompt below come from templates.\n\n" +
		"Review them and type \"looks good\" to proceed, or ask for changes."
	noticeRefined = "I've refined the content based on your feedback. Check the updated backstory and system prompt below.\n\n" +
		"Need more changes? Just let me know! Otherwise, type \"looks good\" to proceed."
	noticeRefineFailed = "I encountered an error refining the content. Please try again or type \"looks good\" to proceed with current content."
	noticeNoRefine     = "Refinements need a language model, which is not configured. Type \"looks good\" to proceed with current content."
)

// GenerateContent writes the backstory and system prompt. Both are
// generated concurrently and committed together. When generation fails the
// template pair is committed instead and a GenerationFailed error is
// returned as a notice; the session can still proceed.
func (w *Wizard) GenerateContent(ctx context.Context) error {
	const op = "generateContent"
	if err := w.expect(op, domain.StepContentGeneration); err != nil {
		return err
	}

	c := assistant.ContextFrom(w.sel, w.step)
	a := w.opts.Assistant
	backstory, prompt, genErr := w.pair(ctx, func(ctx context.Context, kind assistant.Kind) (string, error) {
		return a.Generate(ctx, kind, c)
	})
	if err := w.discarded(op); err != nil {
		return err
	}
	if genErr != nil && ctx.Err() != nil {
		return ctx.Err()
	}

	if genErr == nil {
		w.commit(backstory, prompt)
		w.emit(hooks.EventContentGenerated, map[string]any{"live": a.Live()})
		if a.Live() {
			w.record(RoleAssistant, noticeGenerated)
		} else {
			w.record(RoleAssistant, noticeTemplate)
		}
		return nil
	}

	w.log.Warn().Err(genErr).Msg("content generation failed, using templates")
	backstory, prompt, err := w.pair(ctx, func(ctx context.Context, kind assistant.Kind) (string, error) {
		return assistant.Fallback{}.Generate(ctx, kind, c)
	})
	if err != nil {
		return domain.Wrap(domain.GenerationFailed, op, err)
	}
	w.commit(backstory, prompt)
	w.emit(hooks.EventGenerationFallback, map[string]any{"error": genErr.Error()})
	w.record(RoleAssistant, noticeFallback)
	return domain.Wrap(domain.GenerationFailed, op, genErr)
}

// Respond handles free text in the content-generation step. Accepting text
// assembles the document and moves to preview; anything else refines both
// generated fields together. A failed refinement keeps the previous pair.
func (w *Wizard) Respond(ctx context.Context, text string) error {
	const op = "respond"
	if err := w.expect(op, domain.StepContentGeneration); err != nil {
		return err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.Errorf(domain.InvalidState, op, "empty response")
	}
	if !w.sel.HasContent() {
		return domain.Errorf(domain.InvalidState, op, "content has not been generated")
	}

	w.record(RoleUser, text)
	if w.IsAccept(text) {
		if err := w.assemble(op); err != nil {
			return err
		}
		w.advance(domain.StepPreview)
		w.say(ctx, assistant.CompletePrompt(w.sel.DisplayName, w.sel.Goal))
		return nil
	}

	a := w.opts.Assistant
	if !a.Live() {
		w.record(RoleAssistant, noticeNoRefine)
		return nil
	}

	c := assistant.ContextFrom(w.sel, w.step)
	current := map[assistant.Kind]string{
		assistant.KindBackstory:    w.sel.Backstory,
		assistant.KindSystemPrompt: w.sel.SystemPrompt,
	}
	backstory, prompt, err := w.pair(ctx, func(ctx context.Context, kind assistant.Kind) (string, error) {
		return a.Refine(ctx, kind, current[kind], text, c)
	})
	if err := w.discarded(op); err != nil {
		return err
	}
	if err != nil {
		w.log.Warn().Err(err).Msg("refinement failed, keeping previous content")
		w.record(RoleAssistant, noticeRefineFailed)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return domain.Wrap(domain.GenerationFailed, op, err)
	}

	w.commit(backstory, prompt)
	w.emit(hooks.EventContentGenerated, map[string]any{"live": true, "refined": true})
	w.record(RoleAssistant, noticeRefined)
	return nil
}

// Regenerate assembles the document again from the current selection,
// replacing the previous one. Only the timestamps change.
func (w *Wizard) Regenerate(_ context.Context) error {
	const op = "regenerate"
	if err := w.expect(op, domain.StepPreview); err != nil {
		return err
	}
	return w.assemble(op)
}

// Finish completes the session.
func (w *Wizard) Finish(_ context.Context) error {
	const op = "finish"
	if err := w.expect(op, domain.StepPreview); err != nil {
		return err
	}
	w.advance(domain.StepComplete)
	w.log.Info().Str("agent", w.sel.AgentName).Msg("session completed")
	w.emit(hooks.EventSessionCompleted, map[string]any{"agentName": w.sel.AgentName})
	return nil
}

func (w *Wizard) assemble(op string) error {
	opts := w.opts.Document
	opts.Now = w.opts.Now()

	doc, err := crd.Assemble(w.sel, opts)
	if err != nil {
		w.log.Error().Err(err).Str("op", op).Msg("assembly failed")
		return err
	}
	w.doc = doc

	data := map[string]any{
		"agentName": doc.Name,
		"namespace": doc.Namespace,
	}
	if out, err := doc.YAML(); err == nil {
		data["yaml"] = string(out)
	}
	w.log.Info().
		Str("agent", doc.Name).
		Int("tools", len(w.sel.Tools)).
		Int("servers", len(w.sel.AutoIncludedServers)).
		Int("knowledgeBases", len(w.sel.KnowledgeBases)).
		Msg("document assembled")
	w.emit(hooks.EventDocumentAssembled, data)
	return nil
}

// commit writes both generated fields at once.
func (w *Wizard) commit(backstory, prompt string) {
	w.sel.Backstory = backstory
	w.sel.SystemPrompt = prompt
}

// pair runs fn for both content kinds concurrently. Either both results
// are returned or an error is.
func (w *Wizard) pair(ctx context.Context, fn func(context.Context, assistant.Kind) (string, error)) (string, string, error) {
	ctx, cancel := w.bind(ctx)
	defer cancel()

	var backstory, prompt string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		backstory, err = fn(gctx, assistant.KindBackstory)
		return err
	})
	g.Go(func() error {
		var err error
		prompt, err = fn(gctx, assistant.KindSystemPrompt)
		return err
	})
	if err := g.Wait(); err != nil {
		return "", "", err
	}
	return backstory, prompt, nil
}
