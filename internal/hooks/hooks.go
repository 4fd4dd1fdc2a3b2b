// Package hooks dispatches wizard lifecycle events to in-process handlers
// and to shell commands configured by the user.
package hooks

import (
	"context"
	"slices"
	"sync"

	"github.com/soyeahso/agentwiz/internal/logging"
)

// Event names for the hook system.
const (
	EventCatalogLoaded      = "catalog_loaded"
	EventStepChanged        = "step_changed"
	EventContentGenerated   = "content_generated"
	EventGenerationFallback = "generation_fallback"
	EventDocumentAssembled  = "document_assembled"
	EventSessionCompleted   = "session_completed"
	EventSessionAbandoned   = "session_abandoned"
)

// AllEvents lists all known hook event names.
var AllEvents = []string{
	EventCatalogLoaded,
	EventStepChanged,
	EventContentGenerated,
	EventGenerationFallback,
	EventDocumentAssembled,
	EventSessionCompleted,
	EventSessionAbandoned,
}

// Payload carries event data to hook handlers.
type Payload struct {
	Event   string         `json:"event"`
	Session string         `json:"session,omitempty"`
	Data    map[string]any `json:"data,omitempty"`
}

// Handler is a function that handles a hook event.
// Returning an error logs the failure but does not stop processing.
type Handler func(ctx context.Context, p Payload) error

// Manager manages hook registrations and dispatches events.
type Manager struct {
	mu       sync.RWMutex
	handlers map[string][]namedHandler
	pending  sync.WaitGroup
	log      *logging.Logger
}

type namedHandler struct {
	name    string
	handler Handler
}

// NewManager creates a hook manager.
func NewManager(log *logging.Logger) *Manager {
	return &Manager{
		handlers: make(map[string][]namedHandler),
		log:      log.Sub("hooks"),
	}
}

// On registers a handler for the given event.
// The name identifies the handler for logging and debugging.
func (m *Manager) On(event, name string, handler Handler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[event] = append(m.handlers[event], namedHandler{name: name, handler: handler})
	m.log.Debug().Str("event", event).Str("handler", name).Msg("hook registered")
}

// Off removes all handlers with the given name from the event.
func (m *Manager) Off(event, name string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.handlers[event] = slices.DeleteFunc(slices.Clone(m.handlers[event]), func(h namedHandler) bool {
		return h.name == name
	})
}

func (m *Manager) snapshot(event string) []namedHandler {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.handlers[event])
}

// Emit dispatches an event to all registered handlers synchronously.
// Handlers are called in registration order. Errors are logged but do not
// prevent subsequent handlers from running.
func (m *Manager) Emit(ctx context.Context, p Payload) {
	for _, h := range m.snapshot(p.Event) {
		m.run(ctx, h, p)
	}
}

// EmitAsync dispatches an event to all registered handlers concurrently and
// returns immediately. Use Wait to block until they finish.
func (m *Manager) EmitAsync(ctx context.Context, p Payload) {
	// Detached so a handler outlives the wizard call that triggered it.
	ctx = context.WithoutCancel(ctx)
	for _, h := range m.snapshot(p.Event) {
		m.pending.Add(1)
		go func() {
			defer m.pending.Done()
			m.run(ctx, h, p)
		}()
	}
}

// Wait blocks until every handler started by EmitAsync has returned.
func (m *Manager) Wait() {
	m.pending.Wait()
}

func (m *Manager) run(ctx context.Context, h namedHandler, p Payload) {
	if err := h.handler(ctx, p); err != nil {
		m.log.Warn().
			Err(err).
			Str("event", p.Event).
			Str("handler", h.name).
			Msg("hook handler error")
	}
}

// Count returns the number of handlers registered for an event.
func (m *Manager) Count(event string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.handlers[event])
}

// Events returns the sorted list of events that have at least one handler registered.
func (m *Manager) Events() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	events := make([]string, 0, len(m.handlers))
	for event, handlers := range m.handlers {
		if len(handlers) > 0 {
			events = append(events, event)
		}
	}
	slices.Sort(events)
	return events
}
