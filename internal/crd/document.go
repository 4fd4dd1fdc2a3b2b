package crd

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/soyeahso/agentwiz/internal/domain"
)

// Status is the initial lifecycle envelope of an assembled agent.
type Status struct {
	Phase      string
	Conditions []metav1.Condition
}

// Document is an assembled Agent resource. It is immutable once built.
type Document struct {
	metav1.TypeMeta
	metav1.ObjectMeta
	Status Status

	root *yaml.Node
}

// YAML renders the document with two-space indentation, no anchors and
// multi-line strings as literal blocks.
func (d *Document) YAML() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(d.root); err != nil {
		return nil, fmt.Errorf("encoding document: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoding document: %w", err)
	}
	return buf.Bytes(), nil
}

// Lookup returns the value at a path of mapping keys, e.g.
// Lookup("spec", "role").
func (d *Document) Lookup(path ...string) domain.Template {
	return domain.TemplateFromNode(d.root).Lookup(path...)
}

// Has reports whether the path exists.
func (d *Document) Has(path ...string) bool {
	return !d.Lookup(path...).IsZero()
}

// Node returns a copy of the document tree.
func (d *Document) Node() *yaml.Node {
	return domain.TemplateFromNode(d.root).Node()
}

// MarshalYAML implements yaml.Marshaler.
func (d *Document) MarshalYAML() (any, error) {
	return d.Node(), nil
}
