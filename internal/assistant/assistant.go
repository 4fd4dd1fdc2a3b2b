// Package assistant produces the conversational text of a wizard session:
// step replies, generated backstories and system prompts, and refinements.
package assistant

import (
	"context"
	"strings"

	"github.com/soyeahso/agentwiz/internal/domain"
)

// Kind selects which generated field a call produces.
type Kind string

const (
	KindBackstory    Kind = "backstory"
	KindSystemPrompt Kind = "systemPrompt"
)

func (k Kind) String() string { return string(k) }

// Prompt is an instruction for a step reply together with the text to show
// when no language model is available or the call fails.
type Prompt struct {
	Instruction string
	Fallback    string
}

// Context is what the assistant knows about the session when it replies.
type Context struct {
	AgentName      string
	DisplayName    string
	Goal           string
	Persona        *domain.Persona
	Tools          []domain.Tool
	KnowledgeBases []domain.KnowledgeBase
	Step           domain.Step
}

// ContextFrom builds a Context from a selection at the given step.
func ContextFrom(sel domain.Selection, step domain.Step) Context {
	return Context{
		AgentName:      sel.AgentName,
		DisplayName:    sel.DisplayName,
		Goal:           sel.Goal,
		Persona:        sel.Persona,
		Tools:          sel.Tools,
		KnowledgeBases: sel.KnowledgeBases,
		Step:           step,
	}
}

// Summary renders the context block sent alongside every reply request.
func (c Context) Summary() string {
	var parts []string
	if c.AgentName != "" {
		parts = append(parts, "Agent Name: "+c.AgentName)
	}
	if c.DisplayName != "" {
		parts = append(parts, "Display Name: "+c.DisplayName)
	}
	if c.Goal != "" {
		parts = append(parts, "Goal: "+c.Goal)
	}
	if c.Persona != nil {
		parts = append(parts, "Persona: "+c.Persona.DisplayName)
	}
	if len(c.Tools) > 0 {
		parts = append(parts, "Selected Tools: "+displayNames(c.Tools, func(t domain.Tool) string { return t.DisplayName }))
	}
	if len(c.KnowledgeBases) > 0 {
		parts = append(parts, "Knowledge Bases: "+displayNames(c.KnowledgeBases, func(k domain.KnowledgeBase) string { return k.DisplayName }))
	}
	if c.Step != "" {
		parts = append(parts, "Current Step: "+c.Step.String())
	}
	if len(parts) == 0 {
		return "No context available yet"
	}
	return strings.Join(parts, "\n")
}

// Assistant is the conversational collaborator of the wizard.
type Assistant interface {
	// Reply answers a step instruction. Callers show p.Fallback on error.
	Reply(ctx context.Context, p Prompt, c Context) (string, error)

	// Generate writes a backstory or system prompt from the selection.
	Generate(ctx context.Context, kind Kind, c Context) (string, error)

	// Refine rewrites current according to free-text feedback.
	Refine(ctx context.Context, kind Kind, current, feedback string, c Context) (string, error)

	// Live reports whether a language model backs the assistant.
	Live() bool
}

func displayNames[T any](items []T, name func(T) string) string {
	names := make([]string, len(items))
	for i, it := range items {
		names[i] = name(it)
	}
	return strings.Join(names, ", ")
}
