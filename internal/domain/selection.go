package domain

import "slices"

// Identity field names accepted by the wizard's identity step, in the order
// they must be set.
const (
	FieldAgentName   = "agentName"
	FieldDisplayName = "displayName"
	FieldGoal        = "goal"
)

// IdentityFields lists the identity fields in entry order.
var IdentityFields = []string{FieldAgentName, FieldDisplayName, FieldGoal}

// Selection is everything the user has chosen in a session plus the
// generated free text. It is owned by a single wizard session.
type Selection struct {
	AgentName   string `json:"agentName,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
	Goal        string `json:"goal,omitempty"`

	Persona    *Persona    `json:"persona,omitempty"`
	LLMProfile *LLMProfile `json:"llmProfile,omitempty"`

	Tools          []Tool          `json:"tools,omitempty"`
	KnowledgeBases []KnowledgeBase `json:"knowledgeBases,omitempty"`

	// AutoIncludedServers is derived from Tools and never set directly.
	AutoIncludedServers []Server `json:"autoIncludedServers,omitempty"`

	Backstory    string `json:"backstory,omitempty"`
	SystemPrompt string `json:"systemPrompt,omitempty"`
}

// IdentityValue returns the value of an identity field.
func (s Selection) IdentityValue(field string) string {
	switch field {
	case FieldAgentName:
		return s.AgentName
	case FieldDisplayName:
		return s.DisplayName
	case FieldGoal:
		return s.Goal
	}
	return ""
}

// NextIdentityField returns the first unset identity field, or "" when all
// are set.
func (s Selection) NextIdentityField() string {
	for _, f := range IdentityFields {
		if s.IdentityValue(f) == "" {
			return f
		}
	}
	return ""
}

// HasContent reports whether both generated fields are present.
func (s Selection) HasContent() bool {
	return s.Backstory != "" && s.SystemPrompt != ""
}

// Clone returns a copy that shares no slices or pointers with s.
// Template nodes are shared; they are treated as read-only.
func (s Selection) Clone() Selection {
	out := s
	if s.Persona != nil {
		p := *s.Persona
		out.Persona = &p
	}
	if s.LLMProfile != nil {
		l := *s.LLMProfile
		out.LLMProfile = &l
	}
	out.Tools = slices.Clone(s.Tools)
	out.KnowledgeBases = slices.Clone(s.KnowledgeBases)
	out.AutoIncludedServers = slices.Clone(s.AutoIncludedServers)
	return out
}
