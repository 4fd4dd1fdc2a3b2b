package catalog

import (
	"github.com/soyeahso/agentwiz/internal/domain"
)

// Statistics mirrors the counts published in the catalog index.
type Statistics struct {
	TotalComponents int `yaml:"totalComponents" json:"totalComponents"`
	MCPServers      int `yaml:"mcpServers" json:"mcpServers"`
	Tools           int `yaml:"tools" json:"tools"`
	KnowledgeBases  int `yaml:"knowledgeBases" json:"knowledgeBases"`
	LLMProfiles     int `yaml:"llmProfiles" json:"llmProfiles"`
	Personas        int `yaml:"personas" json:"personas"`
}

// Components groups the five record collections in declaration order.
type Components struct {
	MCPServers     []domain.Server        `yaml:"mcpServers" json:"mcpServers"`
	Tools          []domain.Tool          `yaml:"tools" json:"tools"`
	KnowledgeBases []domain.KnowledgeBase `yaml:"knowledgeBases" json:"knowledgeBases"`
	LLMProfiles    []domain.LLMProfile    `yaml:"llmProfiles" json:"llmProfiles"`
	Personas       []domain.Persona       `yaml:"personas" json:"personas"`
}

// Catalog is a fully loaded component catalog. It is read-only once built
// and safe to share between sessions.
type Catalog struct {
	Version     string     `yaml:"version" json:"version"`
	LastUpdated string     `yaml:"lastUpdated" json:"lastUpdated"`
	Description string     `yaml:"description" json:"description"`
	Components  Components `yaml:"components" json:"components"`
	Statistics  Statistics `yaml:"statistics" json:"statistics"`
}

// Persona looks up a persona by id or URN.
func (c *Catalog) Persona(ref string) (domain.Persona, bool) {
	return find(c.Components.Personas, ref, func(p domain.Persona) domain.Component { return p.Component })
}

// LLMProfile looks up an LLM profile by id or URN.
func (c *Catalog) LLMProfile(ref string) (domain.LLMProfile, bool) {
	return find(c.Components.LLMProfiles, ref, func(l domain.LLMProfile) domain.Component { return l.Component })
}

// Tool looks up a tool by id or URN.
func (c *Catalog) Tool(ref string) (domain.Tool, bool) {
	return find(c.Components.Tools, ref, func(t domain.Tool) domain.Component { return t.Component })
}

// KnowledgeBase looks up a knowledge base by id or URN.
func (c *Catalog) KnowledgeBase(ref string) (domain.KnowledgeBase, bool) {
	return find(c.Components.KnowledgeBases, ref, func(k domain.KnowledgeBase) domain.Component { return k.Component })
}

// Server looks up a server by URN or id.
func (c *Catalog) Server(ref string) (domain.Server, bool) {
	return find(c.Components.MCPServers, ref, func(s domain.Server) domain.Component { return s.Component })
}

// Tools resolves every ref to a tool. The first unknown ref is reported
// as NotFound.
func (c *Catalog) Tools(refs []string) ([]domain.Tool, error) {
	out := make([]domain.Tool, 0, len(refs))
	for _, ref := range refs {
		t, ok := c.Tool(ref)
		if !ok {
			return nil, domain.Errorf(domain.NotFound, "chooseTools", "tool %q not in catalog", ref)
		}
		out = append(out, t)
	}
	return out, nil
}

// KnowledgeBases resolves every ref to a knowledge base.
func (c *Catalog) KnowledgeBases(refs []string) ([]domain.KnowledgeBase, error) {
	out := make([]domain.KnowledgeBase, 0, len(refs))
	for _, ref := range refs {
		k, ok := c.KnowledgeBase(ref)
		if !ok {
			return nil, domain.Errorf(domain.NotFound, "chooseKnowledgeBases", "knowledge base %q not in catalog", ref)
		}
		out = append(out, k)
	}
	return out, nil
}

// Count returns the number of records of a kind.
func (c *Catalog) Count(kind domain.ComponentKind) int {
	switch kind {
	case domain.KindServer:
		return len(c.Components.MCPServers)
	case domain.KindTool:
		return len(c.Components.Tools)
	case domain.KindKnowledgeBase:
		return len(c.Components.KnowledgeBases)
	case domain.KindLLMProfile:
		return len(c.Components.LLMProfiles)
	case domain.KindPersona:
		return len(c.Components.Personas)
	}
	return 0
}

// Records returns the shared record fields of every component of a kind,
// in declaration order.
func (c *Catalog) Records(kind domain.ComponentKind) []domain.Component {
	var out []domain.Component
	switch kind {
	case domain.KindServer:
		for _, s := range c.Components.MCPServers {
			out = append(out, s.Component)
		}
	case domain.KindTool:
		for _, t := range c.Components.Tools {
			out = append(out, t.Component)
		}
	case domain.KindKnowledgeBase:
		for _, k := range c.Components.KnowledgeBases {
			out = append(out, k.Component)
		}
	case domain.KindLLMProfile:
		for _, l := range c.Components.LLMProfiles {
			out = append(out, l.Component)
		}
	case domain.KindPersona:
		for _, p := range c.Components.Personas {
			out = append(out, p.Component)
		}
	}
	return out
}

func (c *Catalog) toolIndex(key string) int {
	for i, t := range c.Components.Tools {
		if t.Key() == key {
			return i
		}
	}
	return -1
}

// SortTools orders tools by catalog declaration order.
func (c *Catalog) SortTools(tools []domain.Tool) {
	sortByIndex(tools, func(t domain.Tool) int { return c.toolIndex(t.Key()) })
}

// SortKnowledgeBases orders knowledge bases by catalog declaration order.
func (c *Catalog) SortKnowledgeBases(kbs []domain.KnowledgeBase) {
	sortByIndex(kbs, func(k domain.KnowledgeBase) int {
		for i, x := range c.Components.KnowledgeBases {
			if x.Key() == k.Key() {
				return i
			}
		}
		return -1
	})
}

func find[T any](items []T, ref string, comp func(T) domain.Component) (T, bool) {
	for _, item := range items {
		if comp(item).Matches(ref) {
			return item, true
		}
	}
	var zero T
	return zero, false
}
