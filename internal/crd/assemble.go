// Package crd assembles the Agent custom resource from a completed selection.
package crd

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/validation"

	"github.com/soyeahso/agentwiz/internal/domain"
)

const (
	APIVersion    = "agents.enterprise.com/v1alpha9"
	Kind          = "Agent"
	SchemaVersion = "v1alpha9"
	AgentVersion  = "1.0.0"

	// DefaultRole is used when the persona declares no agent type.
	DefaultRole = "Agent"

	PhasePending       = "Pending"
	ConditionReady     = "Ready"
	ReasonAgentCreated = "AgentCreated"
	MessageCreated     = "Agent has been created and is pending deployment"
)

// Options carries the environment-specific values stamped into every
// document.
type Options struct {
	// Now is the generation time. Zero means time.Now().
	Now time.Time

	Namespace    string
	Environment  string
	Organization string
	Team         string
	User         string
}

// DefaultOptions returns the placeholder ownership and placement values.
func DefaultOptions() Options {
	return Options{
		Namespace:    "agent-workspace",
		Environment:  "dev",
		Organization: "Enterprise",
		Team:         "Agent Development",
		User:         "agent-builder",
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Now.IsZero() {
		o.Now = time.Now()
	}
	if o.Namespace == "" {
		o.Namespace = d.Namespace
	}
	if o.Environment == "" {
		o.Environment = d.Environment
	}
	if o.Organization == "" {
		o.Organization = d.Organization
	}
	if o.Team == "" {
		o.Team = d.Team
	}
	if o.User == "" {
		o.User = d.User
	}
	return o
}

// AgentURN returns the identity URN for an agent name.
func AgentURN(name string) string {
	return fmt.Sprintf("urn:enterprise:agent:%s:v1", name)
}

// ValidateName checks that name is usable as metadata.name.
func ValidateName(name string) error {
	if errs := validation.IsDNS1123Subdomain(name); len(errs) > 0 {
		return fmt.Errorf("invalid agent name %q: %s", name, strings.Join(errs, "; "))
	}
	return nil
}

// Assemble builds the document for sel. Persona and LLM profile must be
// set. Assemble performs no I/O and, for a fixed Options.Now, returns
// identical output for identical input.
func Assemble(sel domain.Selection, opts Options) (*Document, error) {
	var missing []string
	if sel.Persona == nil {
		missing = append(missing, "persona")
	}
	if sel.LLMProfile == nil {
		missing = append(missing, "llm profile")
	}
	if len(missing) > 0 {
		return nil, domain.Errorf(domain.IncompleteSelection, "assemble", "%s not selected", strings.Join(missing, " and "))
	}

	opts = opts.withDefaults()
	now := metav1.NewTime(opts.Now.UTC().Truncate(time.Second))

	doc := &Document{
		TypeMeta: metav1.TypeMeta{APIVersion: APIVersion, Kind: Kind},
		ObjectMeta: metav1.ObjectMeta{
			Name:              sel.AgentName,
			Namespace:         opts.Namespace,
			CreationTimestamp: now,
		},
		Status: Status{
			Phase: PhasePending,
			Conditions: []metav1.Condition{{
				Type:               ConditionReady,
				Status:             metav1.ConditionUnknown,
				LastTransitionTime: now,
				Reason:             ReasonAgentCreated,
				Message:            MessageCreated,
			}},
		},
	}

	spec, err := buildSpec(sel, opts, timestamp(now))
	if err != nil {
		return nil, fmt.Errorf("building spec: %w", err)
	}

	root := newBlock().
		str("apiVersion", doc.APIVersion).
		str("kind", doc.Kind).
		child("metadata", func(m *block) {
			m.str("name", doc.Name).str("namespace", doc.Namespace)
		}).
		set("spec", spec).
		set("status", statusNode(doc.Status))

	doc.root = root.node
	return doc, nil
}

func buildSpec(sel domain.Selection, opts Options, stamp string) (*yaml.Node, error) {
	behavior, err := encodeNode(DefaultBehavior())
	if err != nil {
		return nil, err
	}
	security, err := encodeNode(DefaultSecurity())
	if err != nil {
		return nil, err
	}
	ops, err := encodeNode(DefaultOps())
	if err != nil {
		return nil, err
	}
	telemetry, err := encodeNode(DefaultTelemetry())
	if err != nil {
		return nil, err
	}

	persona := sel.Persona.Body()
	llm := sel.LLMProfile.Body()
	hasKBs := len(sel.KnowledgeBases) > 0

	role := sel.Persona.AgentType()
	if role == "" {
		role = DefaultRole
	}

	spec := newBlock().
		str("schemaVersion", SchemaVersion).
		child("identity", func(b *block) {
			b.str("urn", AgentURN(sel.AgentName)).
				str("displayName", sel.DisplayName).
				str("version", AgentVersion).
				str("createdAt", stamp).
				str("updatedAt", stamp)
		}).
		child("context", func(b *block) {
			b.str("environment", opts.Environment).str("lifecycle", opts.Environment)
		}).
		child("ownership", func(b *block) {
			b.str("organization", opts.Organization).str("team", opts.Team).str("user", opts.User)
		}).
		str("role", role).
		str("goal", sel.Goal).
		str("backstory", sel.Backstory).
		str("systemPrompt", sel.SystemPrompt).
		setIf(!persona.IsZero(), "persona", persona.Node).
		setIf(!llm.IsZero(), "llm", llm.Node).
		setIf(len(sel.AutoIncludedServers) > 0, "mcpServers", func() *yaml.Node {
			return entries(sel.AutoIncludedServers, serverEntry)
		}).
		setIf(len(sel.Tools) > 0, "tools", func() *yaml.Node {
			return entries(sel.Tools, toolEntry)
		}).
		setIf(hasKBs, "knowledgeBases", func() *yaml.Node {
			return entries(sel.KnowledgeBases, knowledgeBaseEntry)
		}).
		set("behavior", behavior)

	if hasKBs {
		rag, err := encodeNode(DefaultRAG())
		if err != nil {
			return nil, err
		}
		spec.set("rag", rag)
	}

	spec.set("security", security).
		set("ops", ops).
		set("telemetry", telemetry)

	return spec.node, nil
}

func entries[T any](items []T, entry func(T) *yaml.Node) *yaml.Node {
	out := make([]*yaml.Node, len(items))
	for i, item := range items {
		out[i] = entry(item)
	}
	return seqNode(out)
}

// Entries for components whose template could not be resolved fall back to
// a stub carrying the record's identity, so the entry count always matches
// the selection.

func serverEntry(s domain.Server) *yaml.Node {
	if body := s.Body(); !body.IsZero() {
		return body.Node()
	}
	return newBlock().child("identity", func(b *block) {
		b.str("urn", s.URN).str("displayName", s.DisplayName)
	}).node
}

func toolEntry(t domain.Tool) *yaml.Node {
	if body := t.Body(); !body.IsZero() {
		return body.Node()
	}
	b := newBlock().
		child("identity", func(b *block) { b.str("urn", t.URN) }).
		str("name", t.ID)
	if t.DependsOnServer != "" {
		b.child("mcp", func(m *block) {
			m.child("serverRef", func(r *block) { r.str("urn", t.DependsOnServer) })
		})
	}
	return b.node
}

func knowledgeBaseEntry(k domain.KnowledgeBase) *yaml.Node {
	if body := k.Body(); !body.IsZero() {
		return body.Node()
	}
	b := newBlock().child("identity", func(b *block) {
		b.str("urn", k.URN).str("name", k.ID)
	})
	if k.Type != "" {
		b.str("type", k.Type)
	}
	return b.node
}

func statusNode(s Status) *yaml.Node {
	conds := make([]*yaml.Node, len(s.Conditions))
	for i, c := range s.Conditions {
		conds[i] = newBlock().
			str("type", c.Type).
			str("status", string(c.Status)).
			str("lastTransitionTime", timestamp(c.LastTransitionTime)).
			str("reason", c.Reason).
			str("message", c.Message).
			node
	}
	return newBlock().
		str("phase", s.Phase).
		set("conditions", seqNode(conds)).
		node
}

func timestamp(t metav1.Time) string {
	return t.UTC().Format(time.RFC3339)
}
