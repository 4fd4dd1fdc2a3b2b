package domain

// ComponentKind names one of the five catalog collections.
type ComponentKind string

const (
	KindServer        ComponentKind = "mcpServers"
	KindTool          ComponentKind = "tools"
	KindKnowledgeBase ComponentKind = "knowledgeBases"
	KindLLMProfile    ComponentKind = "llmProfiles"
	KindPersona       ComponentKind = "personas"
)

// ComponentKinds lists the collections in catalog index order.
var ComponentKinds = []ComponentKind{KindServer, KindTool, KindKnowledgeBase, KindLLMProfile, KindPersona}

// Valid reports whether k names one of the five collections.
func (k ComponentKind) Valid() bool {
	for _, kind := range ComponentKinds {
		if kind == k {
			return true
		}
	}
	return false
}

// Component holds the fields shared by every catalog record.
type Component struct {
	ID          string   `yaml:"id" json:"id"`
	File        string   `yaml:"file" json:"file"`
	URN         string   `yaml:"urn,omitempty" json:"urn,omitempty"`
	DisplayName string   `yaml:"displayName" json:"displayName"`
	Category    string   `yaml:"category,omitempty" json:"category,omitempty"`
	Tags        []string `yaml:"tags,omitempty" json:"tags,omitempty"`
	Description string   `yaml:"description,omitempty" json:"description,omitempty"`

	// Template is populated by the catalog's second resolution pass.
	Template Template `yaml:"template,omitempty" json:"-"`
}

// Key returns the identity used for uniqueness: the URN, or the id for
// records that carry no URN.
func (c Component) Key() string {
	if c.URN != "" {
		return c.URN
	}
	return c.ID
}

// Matches reports whether ref names this record by id or URN.
func (c Component) Matches(ref string) bool {
	return ref != "" && (c.ID == ref || c.URN == ref)
}

// Server is an MCP server record. Its whole template is the document entry.
type Server struct {
	Component `yaml:",inline"`
}

// Body returns the server's template verbatim.
func (s Server) Body() Template { return s.Template }

// Tool is a capability exposed by an MCP server.
type Tool struct {
	Component       `yaml:",inline"`
	DependsOnServer string `yaml:"dependsOnServer,omitempty" json:"dependsOnServer,omitempty"`
}

// Body returns the nested tool template, not the catalog envelope.
func (t Tool) Body() Template { return t.Template.Get("toolTemplate") }

// KnowledgeBase is a retrieval source.
type KnowledgeBase struct {
	Component `yaml:",inline"`
	Type      string `yaml:"type,omitempty" json:"type,omitempty"`
}

func (k KnowledgeBase) Body() Template { return k.Template.Get("kbTemplate") }

// LLMProfile is a model configuration.
type LLMProfile struct {
	Component   `yaml:",inline"`
	Temperature float64 `yaml:"temperature,omitempty" json:"temperature,omitempty"`
	UseCase     string  `yaml:"useCase,omitempty" json:"useCase,omitempty"`
}

func (l LLMProfile) Body() Template { return l.Template.Get("llmTemplate") }

// Persona describes the agent's role, tone and topics.
type Persona struct {
	Component `yaml:",inline"`
	Domain    string `yaml:"domain,omitempty" json:"domain,omitempty"`
	Tone      string `yaml:"tone,omitempty" json:"tone,omitempty"`
}

func (p Persona) Body() Template { return p.Template.Get("personaTemplate") }

// AgentType returns the persona template's declared agent type, or "".
func (p Persona) AgentType() string { return p.Body().String("agentType") }

// Topics returns the persona template's focus topics.
func (p Persona) Topics() []string { return p.Body().Strings("topics") }

// TemplateTone prefers the tone declared in the template over the index tone.
func (p Persona) TemplateTone() string {
	if t := p.Body().String("tone"); t != "" {
		return t
	}
	return p.Tone
}
