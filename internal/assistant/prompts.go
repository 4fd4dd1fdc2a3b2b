package assistant

import (
	"fmt"
	"strings"

	"github.com/soyeahso/agentwiz/internal/domain"
)

// wizardSystemPrompt is the persona of the assistant itself.
const wizardSystemPrompt = `You are an AI assistant helping developers build Kubernetes Agent Custom Resource Definitions (CRDs). Your role is to guide them through a conversational wizard that collects information and helps them select components.

Your personality:
- Friendly, helpful, and encouraging
- Clear and concise
- Technical but accessible

Your responsibilities:
1. Guide users through defining their agent (name, display name, goal)
2. Help them understand and select personas, LLM profiles, tools, and knowledge bases
3. Explain technical concepts when needed
4. Generate high-quality backstories and system prompts based on their selections
5. Provide helpful suggestions and best practices

When guiding users:
- Ask one question at a time
- Provide examples when helpful
- Acknowledge their input positively
- Explain what comes next in the process
- Be encouraging about their progress

Remember: You're building a Kubernetes Agent CRD, so all advice should be relevant to agentic AI systems, tools integration, and enterprise deployment.`

const (
	backstoryWriter = "You are an expert at writing compelling agent backstories."
	promptWriter    = "You are an expert at writing effective AI system prompts for enterprise agents."
	refiner         = "You are an expert at refining and improving agent configurations based on user feedback."
)

// WelcomePrompt opens a session.
func WelcomePrompt() Prompt {
	return Prompt{
		Instruction: "Start a friendly, welcoming conversation with the user to help them build an Agent CRD. Introduce yourself as the Agent Builder Wizard assistant, explain that you'll guide them through creating a Kubernetes Agent configuration, and ask for their agent's name with examples.",
		Fallback:    "Welcome to the Agent Builder Wizard! Let's create your agent.\n\nWhat would you like to name your agent? (e.g., 'patient-care-coordinator')",
	}
}

// IdentityPrompt follows an identity answer and asks for the next field.
func IdentityPrompt(field, value string) Prompt {
	switch field {
	case domain.FieldAgentName:
		return Prompt{
			Instruction: fmt.Sprintf("User wants to name their agent: %q. Ask for a human-friendly display name with an example.", value),
			Fallback:    "Great name! What display name should people see? (e.g., 'Patient Care Coordinator')",
		}
	case domain.FieldDisplayName:
		return Prompt{
			Instruction: fmt.Sprintf("User set display name as: %q. Now ask them to describe the agent's primary goal in one sentence.", value),
			Fallback:    "Thanks! In one sentence, what is the agent's primary goal?",
		}
	default:
		return Prompt{
			Instruction: fmt.Sprintf("User set goal as: %q. Now guide them to select a persona from the available options. Be encouraging about their progress.", value),
			Fallback:    "That's a clear goal. Next, pick the persona that fits your agent best.",
		}
	}
}

// PersonaPrompt acknowledges a persona and introduces LLM profiles.
func PersonaPrompt(p domain.Persona) Prompt {
	return Prompt{
		Instruction: fmt.Sprintf("The user selected the %q persona (%s). Acknowledge their choice positively and guide them to select an LLM profile. Explain briefly what LLM profiles control (thinking style, precision vs creativity).", p.DisplayName, p.Description),
		Fallback:    fmt.Sprintf("%s it is. Now choose an LLM profile; it controls the thinking style, from precise to creative.", p.DisplayName),
	}
}

// LLMProfilePrompt acknowledges a profile and introduces tools.
func LLMProfilePrompt(l domain.LLMProfile) Prompt {
	return Prompt{
		Instruction: fmt.Sprintf("The user selected %q (temperature: %g). Acknowledge their choice and explain they can now select tools (agent capabilities). Mention they can select multiple and that required servers will be auto-included.", l.DisplayName, l.Temperature),
		Fallback:    fmt.Sprintf("%s selected. Now choose one or more tools; the MCP servers they need are included automatically.", l.DisplayName),
	}
}

// ToolsPrompt acknowledges the tool set and introduces knowledge bases.
func ToolsPrompt(tools []domain.Tool, servers int) Prompt {
	names := displayNames(tools, func(t domain.Tool) string { return t.DisplayName })
	return Prompt{
		Instruction: fmt.Sprintf("The user selected %d tools: %s. The system automatically included %d required MCP server(s). Acknowledge this positively and explain knowledge bases (RAG sources for context). Ask if they want to add any knowledge bases (optional).", len(tools), names, servers),
		Fallback:    fmt.Sprintf("%d tool(s) selected and %d MCP server(s) included automatically. Add knowledge bases if the agent needs retrieval (optional).", len(tools), servers),
	}
}

// CompletePrompt congratulates the user once the document exists.
func CompletePrompt(displayName, goal string) Prompt {
	return Prompt{
		Instruction: fmt.Sprintf("The agent configuration is complete! Congratulate the user on completing the wizard. Mention that their agent %q with goal %q is ready. Encourage them to download or deploy the YAML.", displayName, goal),
		Fallback:    fmt.Sprintf("Your agent %q is ready. Goal: %s. Save or deploy the YAML below.", displayName, goal),
	}
}

func backstoryRequest(c Context) string {
	var p domain.Persona
	if c.Persona != nil {
		p = *c.Persona
	}
	tools := displayNames(c.Tools, func(t domain.Tool) string { return t.DisplayName })
	if tools == "" {
		tools = "None"
	}

	return fmt.Sprintf(`Generate a compelling backstory for an AI agent with the following details:

**Goal**: %s
**Persona**: %s (%s)
**Domain**: %s
**Tone**: %s
**Available Tools**: %s

Create a 2-3 sentence backstory that:
1. Establishes the agent's expertise and experience
2. Reflects the persona's tone and domain
3. Mentions how it achieves the stated goal
4. Sounds professional and credible

Write in first person ("I am..."). Be specific and confident.`,
		c.Goal, p.DisplayName, p.Description, p.Domain, p.Tone, tools)
}

func systemPromptRequest(c Context) string {
	var p domain.Persona
	if c.Persona != nil {
		p = *c.Persona
	}
	tools := describe(c.Tools, "No tools configured", func(t domain.Tool) (string, string) {
		return t.DisplayName, or(t.Description, "Tool for agent tasks")
	})
	kbs := describe(c.KnowledgeBases, "No knowledge bases configured", func(k domain.KnowledgeBase) (string, string) {
		return k.DisplayName, or(k.Description, "Knowledge source")
	})
	topics := or(strings.Join(p.Topics(), ", "), "general tasks")
	tone := p.TemplateTone()

	return fmt.Sprintf(`Generate a comprehensive system prompt for an AI agent with these specifications:

**Primary Goal**: %s
**Agent Type**: %s
**Communication Tone**: %s
**Focus Areas**: %s

**Available Tools**:
%s

**Available Knowledge Bases**:
%s

Create a structured system prompt with these sections:
1. **ROLE & RESPONSIBILITIES** - What the agent does and why it exists
2. **CORE CAPABILITIES** - Key functions and how to use available tools
3. **COMMUNICATION GUIDELINES** - How to interact (tone, style, clarity)
4. **BEST PRACTICES** - Important rules, safety measures, and quality standards
5. **KNOWLEDGE UTILIZATION** - How to use knowledge bases effectively (if applicable)

Make it:
- Specific and actionable
- Professional but accessible
- Include concrete examples where helpful
- Emphasize the tone: %s
- 200-300 words total

Write in second person ("You are..."). Be direct and clear.`,
		c.Goal, p.AgentType(), tone, topics, tools, kbs, tone)
}

func refineRequest(kind Kind, current, feedback string, c Context) string {
	persona := ""
	if c.Persona != nil {
		persona = c.Persona.DisplayName
	}
	return fmt.Sprintf(`The user wants to refine the agent's %[1]s. Here's what we have:

**Current %[1]s**:
%[2]s

**User's feedback**:
%[3]s

**Context**:
- Goal: %[4]s
- Persona: %[5]s

Please update the %[1]s based on the user's feedback while maintaining the overall structure and quality. Keep the same length and format.`,
		kind, current, feedback, c.Goal, persona)
}

func describe[T any](items []T, empty string, line func(T) (string, string)) string {
	if len(items) == 0 {
		return empty
	}
	lines := make([]string, len(items))
	for i, it := range items {
		name, desc := line(it)
		lines[i] = fmt.Sprintf("- %s: %s", name, desc)
	}
	return strings.Join(lines, "\n")
}

func or(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
