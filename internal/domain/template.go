package domain

import (
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Template is a component's structured template body. It keeps the parsed
// YAML node so that key order is preserved when the body is copied into an
// assembled document.
type Template struct {
	node *yaml.Node
}

// ParseTemplate parses a YAML (or JSON) template file. An empty document
// yields the zero Template.
func ParseTemplate(data []byte) (Template, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Template{}, fmt.Errorf("parsing template: %w", err)
	}
	return TemplateFromNode(&doc), nil
}

// TemplateFromNode wraps an already-decoded node. Document nodes are unwrapped.
func TemplateFromNode(n *yaml.Node) Template {
	if n == nil {
		return Template{}
	}
	if n.Kind == yaml.DocumentNode {
		if len(n.Content) == 0 {
			return Template{}
		}
		n = n.Content[0]
	}
	if n.Kind == 0 || (n.Kind == yaml.ScalarNode && n.Tag == "!!null") {
		return Template{}
	}
	return Template{node: n}
}

// IsZero reports whether the template is absent. yaml.v3 honours this for
// omitempty fields.
func (t Template) IsZero() bool { return t.node == nil }

// Get returns the value under key when the template is a mapping.
func (t Template) Get(key string) Template {
	if t.node == nil {
		return Template{}
	}
	n := resolveAlias(t.node)
	if n.Kind != yaml.MappingNode {
		return Template{}
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return TemplateFromNode(resolveAlias(n.Content[i+1]))
		}
	}
	return Template{}
}

// Lookup walks a path of mapping keys.
func (t Template) Lookup(path ...string) Template {
	cur := t
	for _, key := range path {
		cur = cur.Get(key)
		if cur.IsZero() {
			return Template{}
		}
	}
	return cur
}

// String returns the scalar at path, or "" if absent or not a scalar.
func (t Template) String(path ...string) string {
	v := t.Lookup(path...)
	if v.node == nil || v.node.Kind != yaml.ScalarNode {
		return ""
	}
	return v.node.Value
}

// Float returns the numeric scalar at path.
func (t Template) Float(path ...string) (float64, bool) {
	s := t.String(path...)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// Strings returns the scalar items of the sequence at path.
func (t Template) Strings(path ...string) []string {
	v := t.Lookup(path...)
	if v.node == nil || v.node.Kind != yaml.SequenceNode {
		return nil
	}
	out := make([]string, 0, len(v.node.Content))
	for _, item := range v.node.Content {
		item = resolveAlias(item)
		if item.Kind == yaml.ScalarNode {
			out = append(out, item.Value)
		}
	}
	return out
}

// Len returns the number of items in a sequence or keys in a mapping.
func (t Template) Len() int {
	if t.node == nil {
		return 0
	}
	n := resolveAlias(t.node)
	switch n.Kind {
	case yaml.SequenceNode:
		return len(n.Content)
	case yaml.MappingNode:
		return len(n.Content) / 2
	}
	return 0
}

// Index returns the i-th item of a sequence.
func (t Template) Index(i int) Template {
	if t.node == nil {
		return Template{}
	}
	n := resolveAlias(t.node)
	if n.Kind != yaml.SequenceNode || i < 0 || i >= len(n.Content) {
		return Template{}
	}
	return TemplateFromNode(resolveAlias(n.Content[i]))
}

// Keys returns mapping keys in document order.
func (t Template) Keys() []string {
	if t.node == nil {
		return nil
	}
	n := resolveAlias(t.node)
	if n.Kind != yaml.MappingNode {
		return nil
	}
	keys := make([]string, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		keys = append(keys, n.Content[i].Value)
	}
	return keys
}

// Decode decodes the template into v.
func (t Template) Decode(v any) error {
	if t.node == nil {
		return nil
	}
	return t.node.Decode(v)
}

// Node returns a deep copy of the template with aliases expanded and anchors
// stripped, safe to splice into another document.
func (t Template) Node() *yaml.Node {
	if t.node == nil {
		return nil
	}
	return cloneNode(t.node)
}

// MarshalYAML implements yaml.Marshaler.
func (t Template) MarshalYAML() (any, error) {
	if t.node == nil {
		return nil, nil
	}
	return t.Node(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler so templates can be inlined in
// catalog index entries.
func (t *Template) UnmarshalYAML(value *yaml.Node) error {
	*t = TemplateFromNode(cloneNode(value))
	return nil
}

func resolveAlias(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

func cloneNode(n *yaml.Node) *yaml.Node {
	n = resolveAlias(n)
	if n == nil {
		return nil
	}
	out := &yaml.Node{
		Kind:  n.Kind,
		Style: n.Style,
		Tag:   n.Tag,
		Value: n.Value,
	}
	if len(n.Content) > 0 {
		out.Content = make([]*yaml.Node, len(n.Content))
		for i, c := range n.Content {
			out.Content[i] = cloneNode(c)
		}
	}
	return out
}
