// Package wizard implements the step state machine of an agent-building
// session. A Wizard owns one Selection, accepts the selection operation that
// belongs to the current step, and assembles the Agent document once the
// generated content is accepted.
//
// A Wizard is driven by a single goroutine. Abandon is the exception and
// may be called from any goroutine.
package wizard

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/soyeahso/agentwiz/internal/assistant"
	"github.com/soyeahso/agentwiz/internal/catalog"
	"github.com/soyeahso/agentwiz/internal/config"
	"github.com/soyeahso/agentwiz/internal/crd"
	"github.com/soyeahso/agentwiz/internal/domain"
	"github.com/soyeahso/agentwiz/internal/hooks"
	"github.com/soyeahso/agentwiz/internal/logging"
)

// ErrAbandoned is wrapped by every operation on an abandoned session.
var ErrAbandoned = errors.New("session abandoned")

// Loader supplies the catalog a session starts from.
type Loader interface {
	Load(ctx context.Context) (*catalog.Catalog, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(ctx context.Context) (*catalog.Catalog, error)

func (f LoaderFunc) Load(ctx context.Context) (*catalog.Catalog, error) { return f(ctx) }

// Static returns a Loader for an already loaded catalog.
func Static(cat *catalog.Catalog) Loader {
	return LoaderFunc(func(context.Context) (*catalog.Catalog, error) { return cat, nil })
}

// Options configures a Wizard. Zero values select defaults.
type Options struct {
	// Assistant writes replies and content. Nil means assistant.Fallback.
	Assistant assistant.Assistant
	// Hooks receives lifecycle events. Nil disables them.
	Hooks *hooks.Manager

	AcceptPhrases []string
	// StrictNames requires agentName to be a DNS-1123 subdomain.
	StrictNames bool
	Document    crd.Options

	SessionID string
	Now       func() time.Time
}

// Role identifies the author of a transcript turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message of the session transcript.
type Turn struct {
	Role    Role        `json:"role"`
	Content string      `json:"content"`
	Step    domain.Step `json:"step"`
}

// Transition records a step change.
type Transition struct {
	From domain.Step `json:"from"`
	To   domain.Step `json:"to"`
	At   time.Time   `json:"at"`
}

// Wizard is one agent-building session.
type Wizard struct {
	id   string
	opts Options
	log  *logging.Logger

	cat *catalog.Catalog
	sel domain.Selection
	doc *crd.Document

	// mu guards step for readers outside the driving goroutine.
	mu   sync.Mutex
	step domain.Step

	history    []Transition
	transcript []Turn

	ctx       context.Context
	cancel    context.CancelFunc
	abandoned atomic.Bool
}

// New creates a session at the welcome step.
func New(log *logging.Logger, opts Options) *Wizard {
	if opts.Assistant == nil {
		opts.Assistant = assistant.Fallback{}
	}
	if len(opts.AcceptPhrases) == 0 {
		opts.AcceptPhrases = config.DefaultAcceptPhrases
	}
	if opts.SessionID == "" {
		opts.SessionID = uuid.New().String()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &Wizard{
		id:     opts.SessionID,
		opts:   opts,
		log:    log.Sub("wizard").With("session", opts.SessionID),
		step:   domain.StepWelcome,
		ctx:    ctx,
		cancel: cancel,
	}
	w.log.Debug().Bool("live", opts.Assistant.Live()).Msg("session created")
	return w
}

// ID returns the session id.
func (w *Wizard) ID() string { return w.id }

// Step returns the current step.
func (w *Wizard) Step() domain.Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.step
}

// Catalog returns the loaded catalog, or nil before Start succeeds.
func (w *Wizard) Catalog() *catalog.Catalog { return w.cat }

// Snapshot returns a copy of the current selection.
func (w *Wizard) Snapshot() domain.Selection { return w.sel.Clone() }

// Document returns the assembled document, or nil before preview.
func (w *Wizard) Document() *crd.Document { return w.doc }

// History returns the step transitions so far.
func (w *Wizard) History() []Transition { return slices.Clone(w.history) }

// Transcript returns the conversation so far.
func (w *Wizard) Transcript() []Turn { return slices.Clone(w.transcript) }

// Abandoned reports whether Abandon was called.
func (w *Wizard) Abandoned() bool { return w.abandoned.Load() }

// Live reports whether the session's assistant is backed by a language model.
func (w *Wizard) Live() bool { return w.opts.Assistant.Live() }

// IsAccept reports whether text accepts the generated content.
func (w *Wizard) IsAccept(text string) bool {
	return IsAccept(text, w.opts.AcceptPhrases)
}

// AcceptPhrase returns a phrase that IsAccept recognizes.
func (w *Wizard) AcceptPhrase() string { return w.opts.AcceptPhrases[0] }

// IsAccept reports whether text contains any of the phrases, ignoring case.
func IsAccept(text string, phrases []string) bool {
	lower := strings.ToLower(text)
	for _, p := range phrases {
		if p != "" && strings.Contains(lower, strings.ToLower(p)) {
			return true
		}
	}
	return false
}

// Abandon ends the session. In-flight calls are canceled and their results
// are discarded. Abandoning a completed session does nothing.
func (w *Wizard) Abandon() {
	w.mu.Lock()
	step := w.step
	if step == domain.StepComplete || !w.abandoned.CompareAndSwap(false, true) {
		w.mu.Unlock()
		return
	}
	w.mu.Unlock()

	w.cancel()
	w.log.Info().Str("step", step.String()).Msg("session abandoned")
	w.emit(hooks.EventSessionAbandoned, map[string]any{"step": step.String()})
}

// Close releases the session's resources.
func (w *Wizard) Close() {
	w.cancel()
}

// expect guards an operation to the step that accepts it.
func (w *Wizard) expect(op string, step domain.Step) error {
	if w.abandoned.Load() {
		return domain.Wrap(domain.InvalidState, op, ErrAbandoned)
	}
	if w.step != step {
		return domain.Errorf(domain.InvalidState, op, "not accepted in step %s (expects %s)", w.step, step)
	}
	return nil
}

// bind derives a context that is canceled when either ctx ends or the
// session is abandoned.
func (w *Wizard) bind(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(w.ctx, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

// discarded reports whether a result that arrived after an await must be
// dropped.
func (w *Wizard) discarded(op string) error {
	if w.abandoned.Load() {
		w.log.Debug().Str("op", op).Msg("discarding result of abandoned session")
		return domain.Wrap(domain.InvalidState, op, ErrAbandoned)
	}
	return nil
}

func (w *Wizard) advance(to domain.Step) {
	w.mu.Lock()
	from := w.step
	w.step = to
	w.mu.Unlock()

	w.history = append(w.history, Transition{From: from, To: to, At: w.opts.Now()})
	w.log.Debug().Str("from", from.String()).Str("to", to.String()).Msg("step changed")
	w.emit(hooks.EventStepChanged, map[string]any{"from": from.String(), "to": to.String()})
}

func (w *Wizard) record(role Role, content string) {
	w.transcript = append(w.transcript, Turn{Role: role, Content: content, Step: w.step})
}

// say asks the assistant for a step reply and records it. A failed reply
// is replaced by the prompt's fallback text.
func (w *Wizard) say(ctx context.Context, p assistant.Prompt) {
	ctx, cancel := w.bind(ctx)
	defer cancel()

	text, err := w.opts.Assistant.Reply(ctx, p, assistant.ContextFrom(w.sel, w.step))
	if w.abandoned.Load() {
		return
	}
	if err != nil || text == "" {
		if err != nil {
			w.log.Warn().Err(err).Msg("assistant reply failed, using fallback text")
		}
		text = p.Fallback
	}
	w.record(RoleAssistant, text)
}

func (w *Wizard) emit(event string, data map[string]any) {
	if w.opts.Hooks == nil {
		return
	}
	w.opts.Hooks.EmitAsync(context.Background(), hooks.Payload{Event: event, Session: w.id, Data: data})
}
