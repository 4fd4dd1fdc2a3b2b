package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/soyeahso/agentwiz/internal/assistant"
	"github.com/soyeahso/agentwiz/internal/catalog"
	"github.com/soyeahso/agentwiz/internal/domain"
	"github.com/soyeahso/agentwiz/internal/wizard"
)

func listComponentsTool() mcp.Tool {
	kinds := make([]string, len(domain.ComponentKinds))
	for i, k := range domain.ComponentKinds {
		kinds[i] = string(k)
	}
	return mcp.NewTool("list_components",
		mcp.WithDescription("List the components of the agent catalog. Without a kind, every kind is listed."),
		mcp.WithString("kind",
			mcp.Description("Component kind"),
			mcp.Enum(kinds...),
		),
	)
}

func resolveServersTool() mcp.Tool {
	return mcp.NewTool("resolve_servers",
		mcp.WithDescription("Return the MCP servers required by a set of tools, in catalog order."),
		mcp.WithString("tool_ids",
			mcp.Required(),
			mcp.Description("Comma-separated tool ids or URNs"),
		),
	)
}

func assembleAgentTool() mcp.Tool {
	return mcp.NewTool("assemble_agent",
		mcp.WithDescription("Build an Agent resource from catalog selections and return it as YAML. "+
			"Backstory and system prompt are written from the persona unless given."),
		mcp.WithString("agent_name", mcp.Required(), mcp.Description("metadata.name of the agent (DNS-1123, e.g. billing-bot)")),
		mcp.WithString("display_name", mcp.Required(), mcp.Description("Human readable agent name")),
		mcp.WithString("goal", mcp.Required(), mcp.Description("What the agent is for")),
		mcp.WithString("persona", mcp.Required(), mcp.Description("Persona id or URN")),
		mcp.WithString("llm_profile", mcp.Required(), mcp.Description("LLM profile id or URN")),
		mcp.WithString("tool_ids", mcp.Required(), mcp.Description("Comma-separated tool ids or URNs")),
		mcp.WithString("knowledge_base_ids", mcp.Description("Comma-separated knowledge base ids or URNs")),
		mcp.WithString("backstory", mcp.Description("Backstory text to use as is")),
		mcp.WithString("system_prompt", mcp.Description("System prompt text to use as is")),
	)
}

func refreshCatalogTool() mcp.Tool {
	return mcp.NewTool("refresh_catalog",
		mcp.WithDescription("Drop cached catalog files and load the catalog again."),
	)
}

type componentInfo struct {
	Kind        domain.ComponentKind `json:"kind"`
	ID          string               `json:"id"`
	URN         string               `json:"urn,omitempty"`
	DisplayName string               `json:"displayName"`
	Category    string               `json:"category,omitempty"`
	Description string               `json:"description,omitempty"`
}

// ListComponents handles list_components.
func (s *Server) ListComponents(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	kinds := domain.ComponentKinds
	if k, _ := req.Params.Arguments["kind"].(string); k != "" {
		kind := domain.ComponentKind(k)
		if !kind.Valid() {
			return mcp.NewToolResultError(fmt.Sprintf("unknown kind %q", k)), nil
		}
		kinds = []domain.ComponentKind{kind}
	}

	cat, err := s.Catalog(ctx)
	if err != nil {
		return toolError(err), nil
	}

	out := []componentInfo{}
	for _, kind := range kinds {
		for _, r := range cat.Records(kind) {
			out = append(out, componentInfo{
				Kind:        kind,
				ID:          r.ID,
				URN:         r.URN,
				DisplayName: r.DisplayName,
				Category:    r.Category,
				Description: r.Description,
			})
		}
	}
	return jsonResult(out)
}

type serverInfo struct {
	URN         string `json:"urn"`
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
}

// ResolveServers handles resolve_servers.
func (s *Server) ResolveServers(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	refs := splitRefs(req.Params.Arguments["tool_ids"])
	if len(refs) == 0 {
		return mcp.NewToolResultError("tool_ids is required"), nil
	}

	cat, err := s.Catalog(ctx)
	if err != nil {
		return toolError(err), nil
	}
	tools, err := cat.Tools(refs)
	if err != nil {
		return toolError(err), nil
	}

	out := []serverInfo{}
	for _, srv := range catalog.ResolveRequiredServers(tools, cat.Components.MCPServers) {
		out = append(out, serverInfo{URN: srv.URN, ID: srv.ID, DisplayName: srv.DisplayName})
	}
	return jsonResult(out)
}

// AssembleAgent handles assemble_agent by running a whole wizard session.
func (s *Server) AssembleAgent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.Params.Arguments
	str := func(name string) string {
		v, _ := args[name].(string)
		return strings.TrimSpace(v)
	}
	for _, name := range []string{"agent_name", "display_name", "goal", "persona", "llm_profile"} {
		if str(name) == "" {
			return mcp.NewToolResultError(name + " is required"), nil
		}
	}

	cat, err := s.Catalog(ctx)
	if err != nil {
		return toolError(err), nil
	}

	w := s.opts.NewSession(preset{backstory: str("backstory"), systemPrompt: str("system_prompt")})
	defer w.Close()

	steps := []func() error{
		func() error { return w.Start(ctx, wizard.Static(cat)) },
		func() error { return w.SetIdentity(ctx, domain.FieldAgentName, str("agent_name")) },
		func() error { return w.SetIdentity(ctx, domain.FieldDisplayName, str("display_name")) },
		func() error { return w.SetIdentity(ctx, domain.FieldGoal, str("goal")) },
		func() error { return w.ChoosePersona(ctx, str("persona")) },
		func() error { return w.ChooseLLMProfile(ctx, str("llm_profile")) },
		func() error { return w.ChooseTools(ctx, splitRefs(args["tool_ids"])) },
		func() error { return w.ChooseKnowledgeBases(ctx, splitRefs(args["knowledge_base_ids"])) },
		func() error { return w.GenerateContent(ctx) },
		func() error { return w.Respond(ctx, w.AcceptPhrase()) },
		func() error { return w.Finish(ctx) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			w.Abandon()
			return toolError(err), nil
		}
	}

	if s.opts.Record != nil {
		if _, err := s.opts.Record(ctx, w); err != nil {
			s.log.Warn().Err(err).Msg("failed to record document")
		}
	}

	data, err := w.Document().YAML()
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("agent", w.Snapshot().AgentName).Msg("agent assembled")
	return mcp.NewToolResultText(string(data)), nil
}

// RefreshCatalog handles refresh_catalog.
func (s *Server) RefreshCatalog(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cat, err := s.Reload(ctx)
	if err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("catalog %s loaded: %d components",
		cat.Version, cat.Statistics.TotalComponents)), nil
}

// preset is the template assistant with caller-supplied content taking
// precedence.
type preset struct {
	assistant.Fallback
	backstory    string
	systemPrompt string
}

func (p preset) Generate(ctx context.Context, kind assistant.Kind, c assistant.Context) (string, error) {
	switch {
	case kind == assistant.KindBackstory && p.backstory != "":
		return p.backstory, nil
	case kind == assistant.KindSystemPrompt && p.systemPrompt != "":
		return p.systemPrompt, nil
	}
	return p.Fallback.Generate(ctx, kind, c)
}

// splitRefs accepts a comma-separated string or a JSON array of strings.
func splitRefs(v any) []string {
	var parts []string
	switch val := v.(type) {
	case string:
		parts = strings.Split(val, ",")
	case []any:
		for _, item := range val {
			if s, ok := item.(string); ok {
				parts = append(parts, s)
			}
		}
	}
	var refs []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			refs = append(refs, p)
		}
	}
	return refs
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(data)), nil
}
