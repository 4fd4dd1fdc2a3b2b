package catalog

import (
	"fmt"

	"github.com/soyeahso/agentwiz/internal/domain"
)

// Issue is a catalog data-integrity problem.
type Issue struct {
	Kind    domain.ComponentKind `json:"kind"`
	ID      string               `json:"id"`
	Message string               `json:"message"`
}

func (i Issue) String() string {
	return fmt.Sprintf("%s/%s: %s", i.Kind, i.ID, i.Message)
}

// Check reports integrity problems: tools whose dependsOnServer names no
// known server, duplicate ids or URNs within a kind, and servers, tools or
// knowledge bases without a URN.
func Check(c *Catalog) []Issue {
	var issues []Issue

	for _, kind := range domain.ComponentKinds {
		ids := make(map[string]bool)
		urns := make(map[string]bool)
		for _, rec := range c.Records(kind) {
			if rec.ID == "" {
				issues = append(issues, Issue{Kind: kind, ID: rec.DisplayName, Message: "missing id"})
			} else if ids[rec.ID] {
				issues = append(issues, Issue{Kind: kind, ID: rec.ID, Message: "duplicate id"})
			}
			ids[rec.ID] = true

			if rec.URN == "" {
				if kind == domain.KindServer || kind == domain.KindTool || kind == domain.KindKnowledgeBase {
					issues = append(issues, Issue{Kind: kind, ID: rec.ID, Message: "missing urn"})
				}
				continue
			}
			if urns[rec.URN] {
				issues = append(issues, Issue{Kind: kind, ID: rec.ID, Message: fmt.Sprintf("duplicate urn %q", rec.URN)})
			}
			urns[rec.URN] = true
		}
	}

	servers := make(map[string]bool, len(c.Components.MCPServers))
	for _, s := range c.Components.MCPServers {
		servers[s.URN] = true
	}
	for _, t := range c.Components.Tools {
		if t.DependsOnServer != "" && !servers[t.DependsOnServer] {
			issues = append(issues, Issue{
				Kind:    domain.KindTool,
				ID:      t.ID,
				Message: fmt.Sprintf("dependsOnServer %q does not match any server", t.DependsOnServer),
			})
		}
	}

	return issues
}
