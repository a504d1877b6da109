package xml

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

type NodeType int8

const (
	TypeDocument NodeType = 1 << iota
	TypeElement
	TypeComment
	TypeAttribute
	TypeInstruction
	TypeText
)

func (n NodeType) String() string {
	switch n {
	default:
		return "<>"
	case TypeDocument:
		return "document"
	case TypeElement:
		return "element"
	case TypeComment:
		return "comment"
	case TypeAttribute:
		return "attribute"
	case TypeInstruction:
		return "pi"
	case TypeText:
		return "text"
	}
}

type Cloner interface {
	Clone() Node
}

type Node interface {
	Type() NodeType
	LocalName() string
	QualifiedName() string
	Leaf() bool
	Position() int
	Parent() Node
	Value() string

	setParent(Node)
	setPosition(int)
}

type NS struct {
	Prefix string
	Uri    string
}

func (n NS) Default() bool {
	return n.Prefix == ""
}

var ErrElement = errors.New("element expected")

type Document struct {
	Version  string
	Encoding string

	Nodes []Node
}

func NewDocument(root Node) *Document {
	doc := EmptyDocument()
	doc.attach(root)
	return doc
}

func EmptyDocument() *Document {
	doc := Document{
		Version:  SupportedVersion,
		Encoding: SupportedEncoding,
	}
	return &doc
}

func (d *Document) Append(node Node) {
	d.attach(node)
}

func (d *Document) Root() Node {
	for i := range d.Nodes {
		if d.Nodes[i].Type() == TypeElement {
			return d.Nodes[i]
		}
	}
	return nil
}

func (d *Document) Namespaces() []NS {
	el, ok := d.Root().(*Element)
	if !ok {
		return nil
	}
	return el.Namespaces()
}

func (d *Document) Type() NodeType {
	return TypeDocument
}

func (d *Document) LocalName() string {
	return ""
}

func (d *Document) QualifiedName() string {
	return ""
}

func (d *Document) Leaf() bool {
	return false
}

func (d *Document) Position() int {
	return 0
}

func (d *Document) Parent() Node {
	return nil
}

func (d *Document) Value() string {
	return ""
}

func (d *Document) attach(node Node) {
	node.setParent(d)
	node.setPosition(len(d.Nodes))
	d.Nodes = append(d.Nodes, node)
}

func (d *Document) setParent(_ Node) {}

func (d *Document) setPosition(_ int) {}

type QName struct {
	Uri   string
	Space string
	Name  string
}

func ParseName(name string) (QName, error) {
	var (
		qn QName
		ok bool
	)
	qn.Space, qn.Name, ok = strings.Cut(name, ":")
	if !ok {
		qn.Name, qn.Space = qn.Space, ""
	}
	if ok && (qn.Space == "" || qn.Name == "") {
		return qn, fmt.Errorf("%s: invalid qualified name", name)
	}
	return qn, nil
}

func ExpandedName(name, space, uri string) QName {
	return QName{
		Name:  name,
		Space: space,
		Uri:   uri,
	}
}

func LocalName(name string) QName {
	return ExpandedName(name, "", "")
}

func QualifiedName(name, space string) QName {
	return ExpandedName(name, space, "")
}

func (q QName) Equal(other QName) bool {
	return q.Uri == other.Uri && q.Name == other.Name
}

func (q QName) LocalName() string {
	return q.Name
}

func (q QName) ExpandedName() string {
	if q.Uri == "" {
		return q.LocalName()
	}
	return fmt.Sprintf("{%s}%s", q.Uri, q.Name)
}

func (q QName) QualifiedName() string {
	if q.Space == "" {
		return q.LocalName()
	}
	return fmt.Sprintf("%s:%s", q.Space, q.Name)
}

type Attribute struct {
	QName
	Datum string

	parent   Node
	position int
}

func NewAttribute(name QName, value string) Attribute {
	return Attribute{
		QName: name,
		Datum: value,
	}
}

func (_ *Attribute) Type() NodeType {
	return TypeAttribute
}

func (_ *Attribute) Leaf() bool {
	return true
}

func (a *Attribute) Position() int {
	return a.position
}

func (a *Attribute) Parent() Node {
	return a.parent
}

func (a *Attribute) Value() string {
	return a.Datum
}

func (a *Attribute) IsNamespace() bool {
	return a.Name == AttrXmlNS || a.Space == AttrXmlNS
}

func (a *Attribute) setParent(node Node) {
	a.parent = node
}

func (a *Attribute) setPosition(pos int) {
	a.position = pos
}

type Element struct {
	QName
	Attrs []Attribute
	Nodes []Node

	parent   Node
	position int
}

func NewElement(name QName) *Element {
	return &Element{
		QName: name,
	}
}

// Namespaces returns the namespaces declared on the element itself.
func (e *Element) Namespaces() []NS {
	var ns []NS
	for _, a := range e.Attrs {
		if !a.IsNamespace() {
			continue
		}
		n := NS{
			Prefix: a.Name,
			Uri:    a.Value(),
		}
		if n.Prefix == AttrXmlNS {
			n.Prefix = ""
		}
		ns = append(ns, n)
	}
	return ns
}

// Elements returns the element children, skipping text and comments.
func (e *Element) Elements() []*Element {
	var list []*Element
	for _, n := range e.Nodes {
		if el, ok := n.(*Element); ok {
			list = append(list, el)
		}
	}
	return list
}

func (e *Element) Clone() Node {
	c := &Element{
		QName: e.QName,
		Attrs: slices.Clone(e.Attrs),
	}
	for i := range c.Attrs {
		c.Attrs[i].setParent(c)
	}
	for i := range e.Nodes {
		if x, ok := e.Nodes[i].(Cloner); ok {
			c.Append(x.Clone())
		}
	}
	return c
}

func (e *Element) RemoveNode(at int) error {
	if at < 0 || at >= len(e.Nodes) {
		return fmt.Errorf("%s: removing node with bad index (%d - %d)", e.QualifiedName(), at, len(e.Nodes))
	}
	e.Nodes[at].setParent(nil)
	e.Nodes = slices.Delete(e.Nodes, at, at+1)
	e.reindex(at)
	return nil
}

func (e *Element) InsertNode(at int, node Node) error {
	return e.InsertNodes(at, []Node{node})
}

// InsertNodes inserts nodes before the child at the given index. An index
// equals to the number of children appends the nodes.
func (e *Element) InsertNodes(at int, nodes []Node) error {
	if at < 0 || at > len(e.Nodes) {
		return fmt.Errorf("%s: inserting nodes with bad index (%d - %d)", e.QualifiedName(), at, len(e.Nodes))
	}
	e.Nodes = slices.Insert(e.Nodes, at, nodes...)
	for i := range nodes {
		nodes[i].setParent(e)
	}
	e.reindex(at)
	return nil
}

func (_ *Element) Type() NodeType {
	return TypeElement
}

func (e *Element) Leaf() bool {
	for i := range e.Nodes {
		if e.Nodes[i].Type() == TypeElement {
			return false
		}
	}
	return true
}

func (e *Element) Value() string {
	var parts []string
	for _, n := range e.Nodes {
		if n.Type() == TypeComment {
			continue
		}
		parts = append(parts, n.Value())
	}
	return strings.Join(parts, "")
}

func (e *Element) Append(node Node) {
	if a, ok := node.(*Attribute); ok {
		e.SetAttribute(*a)
		return
	}
	node.setParent(e)
	node.setPosition(len(e.Nodes))
	e.Nodes = append(e.Nodes, node)
}

func (e *Element) NextSibling() Node {
	return sibling(e, 1)
}

func (e *Element) PrevSibling() Node {
	return sibling(e, -1)
}

func (e *Element) Len() int {
	return len(e.Nodes)
}

func (e *Element) Position() int {
	return e.position
}

func (e *Element) Parent() Node {
	return e.parent
}

// AttributeValue returns the value of the named attribute and whether the
// attribute was present.
func (e *Element) AttributeValue(name string) (string, bool) {
	ix := slices.IndexFunc(e.Attrs, func(a Attribute) bool {
		return a.QualifiedName() == name
	})
	if ix < 0 {
		return "", false
	}
	return e.Attrs[ix].Value(), true
}

func (e *Element) SetAttribute(attr Attribute) error {
	ix := slices.IndexFunc(e.Attrs, func(a Attribute) bool {
		return a.QualifiedName() == attr.QualifiedName()
	})
	attr.setParent(e)
	if ix < 0 {
		attr.setPosition(len(e.Attrs))
		e.Attrs = append(e.Attrs, attr)
	} else {
		attr.setPosition(ix)
		e.Attrs[ix] = attr
	}
	return nil
}

func (e *Element) setPosition(pos int) {
	e.position = pos
}

func (e *Element) setParent(parent Node) {
	e.parent = parent
}

func (e *Element) reindex(from int) {
	for i := from; i < len(e.Nodes); i++ {
		e.Nodes[i].setPosition(i)
	}
}

func sibling(node Node, dir int) Node {
	var list []Node
	switch p := node.Parent().(type) {
	case *Element:
		list = p.Nodes
	case *Document:
		list = p.Nodes
	default:
		return nil
	}
	pos := node.Position() + dir
	if pos < 0 || pos >= len(list) {
		return nil
	}
	return list[pos]
}

type Instruction struct {
	QName
	Attrs []Attribute

	parent   Node
	position int
}

func NewInstruction(name QName) *Instruction {
	return &Instruction{
		QName: name,
	}
}

func (_ *Instruction) Type() NodeType {
	return TypeInstruction
}

func (i *Instruction) Leaf() bool {
	return true
}

func (i *Instruction) Value() string {
	return ""
}

func (i *Instruction) Position() int {
	return i.position
}

func (i *Instruction) Parent() Node {
	return i.parent
}

func (i *Instruction) setPosition(pos int) {
	i.position = pos
}

func (i *Instruction) setParent(parent Node) {
	i.parent = parent
}

type Text struct {
	Content string

	parent   Node
	position int
}

func NewText(text string) *Text {
	return &Text{
		Content: text,
	}
}

func (t *Text) Clone() Node {
	return NewText(t.Content)
}

// Blank reports whether the text is only made of whitespaces.
func (t *Text) Blank() bool {
	return strings.TrimSpace(t.Content) == ""
}

func (_ *Text) Type() NodeType {
	return TypeText
}

func (t *Text) LocalName() string {
	return ""
}

func (t *Text) QualifiedName() string {
	return ""
}

func (t *Text) Leaf() bool {
	return true
}

func (t *Text) Value() string {
	return t.Content
}

func (t *Text) Position() int {
	return t.position
}

func (t *Text) Parent() Node {
	return t.parent
}

func (t *Text) setPosition(pos int) {
	t.position = pos
}

func (t *Text) setParent(parent Node) {
	t.parent = parent
}

type Comment struct {
	Content string

	parent   Node
	position int
}

func NewComment(comment string) *Comment {
	return &Comment{
		Content: comment,
	}
}

func (c *Comment) Clone() Node {
	return NewComment(c.Content)
}

func (_ *Comment) Type() NodeType {
	return TypeComment
}

func (c *Comment) LocalName() string {
	return ""
}

func (c *Comment) QualifiedName() string {
	return ""
}

func (c *Comment) Leaf() bool {
	return true
}

func (c *Comment) Value() string {
	return c.Content
}

func (c *Comment) Position() int {
	return c.position
}

func (c *Comment) Parent() Node {
	return c.parent
}

func (c *Comment) setPosition(pos int) {
	c.position = pos
}

func (c *Comment) setParent(parent Node) {
	c.parent = parent
}
