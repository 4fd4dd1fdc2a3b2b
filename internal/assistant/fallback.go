package assistant

import (
	"context"
	"fmt"
	"strings"

	"github.com/soyeahso/agentwiz/internal/domain"
)

// Fallback is the assistant used without a language model. Every answer is
// derived from the session context alone.
type Fallback struct{}

// Reply returns the prompt's fallback text.
func (Fallback) Reply(_ context.Context, p Prompt, _ Context) (string, error) {
	return p.Fallback, nil
}

// Generate fills the fixed backstory or system prompt template.
func (Fallback) Generate(_ context.Context, kind Kind, c Context) (string, error) {
	if c.Persona == nil {
		return "", domain.Errorf(domain.GenerationFailed, "generate", "no persona selected")
	}
	switch kind {
	case KindBackstory:
		return FallbackBackstory(*c.Persona, c.Goal), nil
	case KindSystemPrompt:
		return FallbackSystemPrompt(*c.Persona, c.Goal), nil
	}
	return "", domain.Errorf(domain.GenerationFailed, "generate", "unknown content kind %q", kind)
}

// Refine returns current unchanged.
func (Fallback) Refine(_ context.Context, _ Kind, current, _ string, _ Context) (string, error) {
	return current, nil
}

func (Fallback) Live() bool { return false }

// FallbackBackstory is the template backstory for a persona and goal.
func FallbackBackstory(p domain.Persona, goal string) string {
	return fmt.Sprintf(
		"I am an experienced %s with expertise in %s. My communication style is %s, and I specialize in helping teams achieve their goals through %s.",
		strings.ToLower(p.DisplayName), strings.ToLower(p.Domain), strings.ToLower(p.Tone), strings.ToLower(goal),
	)
}

// FallbackSystemPrompt is the template system prompt for a persona and goal.
func FallbackSystemPrompt(p domain.Persona, goal string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are a %s responsible for %s\n\n", p.AgentType(), goal)
	b.WriteString("Your primary responsibilities include:\n")
	b.WriteString("- Execute tasks aligned with the defined goal\n")
	fmt.Fprintf(&b, "- Maintain %s communication style\n", p.TemplateTone())
	b.WriteString("- Leverage available tools and knowledge bases effectively\n\n")
	fmt.Fprintf(&b, "Focus areas: %s", strings.Join(p.Topics(), ", "))
	return b.String()
}
