// Package mvar implements the values of the mutable variables of SLAX.
//
// A mutable variable is paired with a shadow variable that owns every node
// ever given to it. Nodes assigned or appended are copied in the container
// of the shadow so that the nodes of older values stay valid.
package mvar

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/midbel/slax/xml"
)

const (
	svarPrefix  = "slax-"
	TextElement = "text"
	Container   = "mvar-container"
)

var ErrUnsupported = errors.New("unsupported")

// Mode controls how node sets are stored in a variable.
type Mode int8

const (
	Default Mode = iota
	// NoMember would flatten the node sets given to a variable. It is not
	// supported.
	NoMember
)

// SvarName gives the name of the shadow variable of a mutable variable.
// The prefix of a qualified name is kept.
func SvarName(name string) string {
	if space, local, ok := strings.Cut(name, ":"); ok {
		return space + ":" + svarPrefix + local
	}
	return svarPrefix + name
}

// Value is either a scalar or a node set.
type Value struct {
	text  string
	nodes []xml.Node
	set   bool
}

func Scalar(str string) Value {
	return Value{text: str}
}

func NodeSet(nodes ...xml.Node) Value {
	return Value{
		nodes: nodes,
		set:   true,
	}
}

func (v Value) IsScalar() bool {
	return !v.set
}

func (v Value) Nodes() []xml.Node {
	return v.nodes
}

func (v Value) Len() int {
	if v.IsScalar() {
		return 1
	}
	return len(v.nodes)
}

// String gives the string value: the text of a scalar or the values of
// the nodes of a node set joined together.
func (v Value) String() string {
	if v.IsScalar() {
		return v.text
	}
	var str strings.Builder
	for _, n := range v.nodes {
		str.WriteString(n.Value())
	}
	return str.String()
}

// Shadow is the shadow variable of a mutable variable.
type Shadow struct {
	Name      string
	container *xml.Element
}

func NewShadow(name string) *Shadow {
	return &Shadow{
		Name: name,
	}
}

// Container gives the element holding the copies of the nodes. It is
// created on first use.
func (s *Shadow) Container() *xml.Element {
	if s.container == nil {
		s.container = xml.NewElement(xml.LocalName(Container))
	}
	return s.container
}

// Len gives the number of nodes owned by the shadow.
func (s *Shadow) Len() int {
	if s.container == nil {
		return 0
	}
	return len(s.container.Nodes)
}

// copy adds a copy of the node to the container. A document stands for a
// result tree fragment and its children are copied instead.
func (s *Shadow) copy(node xml.Node) []xml.Node {
	if doc, ok := node.(*xml.Document); ok {
		var list []xml.Node
		for _, n := range doc.Nodes {
			list = append(list, s.copy(n)...)
		}
		return list
	}
	c, ok := node.(xml.Cloner)
	if !ok {
		return nil
	}
	other := c.Clone()
	s.Container().Append(other)
	return []xml.Node{other}
}

func (s *Shadow) copyAll(nodes []xml.Node) []xml.Node {
	var list []xml.Node
	for _, n := range nodes {
		list = append(list, s.copy(n)...)
	}
	return list
}

// Variable is a mutable variable.
type Variable struct {
	Name   string
	Shadow *Shadow
	Mode

	value Value
}

func NewVariable(name string) *Variable {
	return &Variable{
		Name:   name,
		Shadow: NewShadow(SvarName(name)),
	}
}

func (v *Variable) Value() Value {
	return v.value
}

// Set replaces the value of the variable. The nodes of a node set are
// copied into the shadow.
func (v *Variable) Set(value Value) error {
	if err := v.check(value); err != nil {
		return err
	}
	if !value.IsScalar() {
		value = NodeSet(v.Shadow.copyAll(value.nodes)...)
	}
	v.value = value
	return nil
}

// Append adds a value to the variable:
//
//   - scalar to scalar: the strings are concatenated
//   - node set to scalar: the scalar is discarded and the variable becomes a node set
//   - scalar to node set: the scalar is wrapped in a text element and appended
//   - node set to node set: the nodes are appended
func (v *Variable) Append(value Value) error {
	if err := v.check(value); err != nil {
		return err
	}
	switch {
	case v.value.IsScalar() && value.IsScalar():
		v.value = Scalar(v.value.text + value.text)
	case v.value.IsScalar():
		v.value = NodeSet(v.Shadow.copyAll(value.nodes)...)
	case value.IsScalar():
		var nodes []xml.Node
		if value.text != "" {
			el := xml.NewElement(xml.LocalName(TextElement))
			el.Append(xml.NewText(value.text))
			nodes = v.Shadow.copy(el)
		}
		v.value = NodeSet(slices.Concat(v.value.nodes, nodes)...)
	default:
		nodes := v.Shadow.copyAll(value.nodes)
		v.value = NodeSet(slices.Concat(v.value.nodes, nodes)...)
	}
	return nil
}

func (v *Variable) check(value Value) error {
	if v.Mode == NoMember && !value.IsScalar() {
		return fmt.Errorf("%s: node set without member: %w", v.Name, ErrUnsupported)
	}
	return nil
}

// Init gives the value of a mutable variable initialized from the content
// of its shadow. The value is an empty node set when the shadow does not
// hold anything.
func Init(name string, shadow *Shadow) (*Variable, error) {
	if shadow == nil {
		return nil, fmt.Errorf("%s: missing shadow variable", name)
	}
	if want := SvarName(name); shadow.Name != want {
		return nil, fmt.Errorf("%s: shadow variable should be %s (got %s)", name, want, shadow.Name)
	}
	v := Variable{
		Name:   name,
		Shadow: shadow,
		value:  NodeSet(),
	}
	if shadow.container != nil {
		v.value = NodeSet(slices.Clone(shadow.container.Nodes)...)
	}
	return &v, nil
}
