package crd

import (
	"strings"

	"gopkg.in/yaml.v3"
)

// block is an ordered YAML mapping under construction. Keys appear in the
// order they are set.
type block struct {
	node *yaml.Node
}

func newBlock() *block {
	return &block{node: &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}}
}

func (b *block) set(key string, value *yaml.Node) *block {
	b.node.Content = append(b.node.Content, strNode(key), value)
	return b
}

func (b *block) str(key, value string) *block {
	return b.set(key, strNode(value))
}

// setIf appends key only when ok holds. The value is built lazily.
func (b *block) setIf(ok bool, key string, value func() *yaml.Node) *block {
	if ok {
		b.set(key, value())
	}
	return b
}

func (b *block) child(key string, fill func(*block)) *block {
	c := newBlock()
	fill(c)
	return b.set(key, c.node)
}

func strNode(s string) *yaml.Node {
	n := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
	if strings.Contains(s, "\n") {
		n.Style = yaml.LiteralStyle
	}
	return n
}

func seqNode(items []*yaml.Node) *yaml.Node {
	return &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq", Content: items}
}

// encodeNode converts a typed value into a node, keeping struct field order.
func encodeNode(v any) (*yaml.Node, error) {
	var n yaml.Node
	if err := n.Encode(v); err != nil {
		return nil, err
	}
	return &n, nil
}
