package slax

import (
	"fmt"
	"slices"
	"strings"

	"github.com/midbel/slax/environ"
	"github.com/midbel/slax/xml"
)

type AttrStyle int8

const (
	StyleLiteral AttrStyle = iota
	StyleXPath
	StyleAvt
)

type deferred struct {
	anchor *xml.Element
	node   xml.Node
}

// Builder creates the XSLT document produced by the parser. It keeps the
// stack of the elements currently open, the namespaces and variables in
// scope and the nodes waiting to be inserted before an element under
// construction.
type Builder struct {
	doc   *xml.Document
	root  *xml.Element
	stack []*xml.Element

	globals    environ.Environ[string]
	namespaces environ.Environ[string]
	variables  environ.Environ[bool]
	queue      []deferred

	segs      *Segments
	ternaries int
	dots      int
	temps     int

	Tracer
}

func NewBuilder() *Builder {
	root := xml.NewElement(xslName(xslStylesheet))
	root.SetAttribute(xml.NewAttribute(xml.QualifiedName(xslPrefix, xml.AttrXmlNS), XslUri))
	root.SetAttribute(xml.NewAttribute(xml.LocalName(attrVersion), "1.0"))

	b := Builder{
		doc:       xml.NewDocument(root),
		root:      root,
		globals:   environ.Empty[string](),
		variables: environ.Empty[bool](),
		segs:      NewSegments(),
		Tracer:    discardTracer{},
	}
	b.globals.Define(xslPrefix, XslUri)
	b.namespaces = b.globals
	return &b
}

// Document flushes the nodes still waiting for insertion and returns the
// document.
func (b *Builder) Document() *xml.Document {
	b.flush(func(_ deferred) bool {
		return true
	})
	return b.doc
}

func (b *Builder) Root() *xml.Element {
	return b.root
}

func (b *Builder) Segments() *Segments {
	return b.segs
}

// Current gives the element currently open. It is nil at the top level of
// the stylesheet.
func (b *Builder) Current() *xml.Element {
	if n := len(b.stack); n > 0 {
		return b.stack[n-1]
	}
	return nil
}

func (b *Builder) Depth() int {
	return len(b.stack)
}

func (b *Builder) scope() *xml.Element {
	if curr := b.Current(); curr != nil {
		return curr
	}
	return b.root
}

// Open creates an element from a name given in the source and makes it the
// current element. A prefix declared by the attributes of the element is
// resolved later by Resolve.
func (b *Builder) Open(ident string) (*xml.Element, error) {
	qn, err := xml.ParseName(ident)
	if err != nil {
		return nil, err
	}
	qn.Uri, _ = b.namespaces.Resolve(qn.Space)
	return b.openElement(xml.NewElement(qn)), nil
}

// Resolve gives its namespace to the current element once its attributes
// are known.
func (b *Builder) Resolve() error {
	el := b.Current()
	if el == nil {
		return nil
	}
	uri, err := b.namespaces.Resolve(el.Space)
	if err != nil && el.Space != "" {
		return fmt.Errorf("%s: %w", el.Space, ErrNamespace)
	}
	el.Uri = uri
	return nil
}

func (b *Builder) OpenXsl(name string) *xml.Element {
	return b.openElement(xml.NewElement(xslName(name)))
}

func (b *Builder) OpenFunc(name string) *xml.Element {
	b.UseFuncNS()
	el := xml.NewElement(xml.ExpandedName(name, funcPrefix, FuncUri))
	return b.openElement(el)
}

func (b *Builder) OpenSlax(name string) *xml.Element {
	b.UseSlaxNS()
	el := xml.NewElement(xml.ExpandedName(name, slaxPrefix, SlaxUri))
	return b.openElement(el)
}

// Reopen makes an element already closed the current element again.
func (b *Builder) Reopen(el *xml.Element) {
	b.push(el)
}

func (b *Builder) openElement(el *xml.Element) *xml.Element {
	b.attach(el)
	b.push(el)
	return el
}

func (b *Builder) push(el *xml.Element) {
	b.Enter(el.QualifiedName())
	b.stack = append(b.stack, el)
	b.namespaces = environ.Enclosed[string](b.namespaces)
	b.variables = environ.Enclosed[bool](b.variables)
}

// Close terminates the current element. Nodes deferred while the element
// was built are inserted before it.
func (b *Builder) Close() *xml.Element {
	n := len(b.stack)
	if n == 0 {
		return nil
	}
	el := b.stack[n-1]
	b.stack = b.stack[:n-1]
	b.namespaces = environ.Leave(b.namespaces)
	b.variables = environ.Leave(b.variables)
	b.flush(func(d deferred) bool {
		return d.anchor == el
	})
	b.Leave(el.QualifiedName())
	return el
}

func (b *Builder) AddChild(node xml.Node) {
	b.attach(node)
}

func (b *Builder) attach(node xml.Node) {
	parent := b.scope()
	b.flush(func(d deferred) bool {
		return d.anchor.Parent() == parent
	})
	parent.Append(node)
}

// Defer queues a node that must be inserted before the element currently
// built. Elements that can not hold a variable are skipped and the node
// lands before their closest ancestor that can.
func (b *Builder) Defer(node xml.Node) {
	anchor := b.Current()
	for anchor != nil {
		parent, ok := anchor.Parent().(*xml.Element)
		if !ok {
			break
		}
		if isXsl(anchor, xslSort) || isXsl(parent, xslChoose, xslCallTemplate, xslApplyTemplates) {
			anchor = parent
			continue
		}
		break
	}
	if anchor == nil || anchor == b.root {
		b.root.Append(node)
		return
	}
	d := deferred{
		anchor: anchor,
		node:   node,
	}
	b.queue = append(b.queue, d)
}

func (b *Builder) flush(accept func(deferred) bool) {
	if len(b.queue) == 0 {
		return
	}
	var rest []deferred
	for _, d := range b.queue {
		if !accept(d) {
			rest = append(rest, d)
			continue
		}
		parent, ok := d.anchor.Parent().(*xml.Element)
		if !ok {
			continue
		}
		parent.InsertNode(d.anchor.Position(), d.node)
	}
	b.queue = rest
}

// SetAttribute sets an attribute on the current element with a value used
// as is.
func (b *Builder) SetAttribute(name, value string) {
	el := b.scope()
	el.SetAttribute(xml.NewAttribute(attributeName(name), value))
}

// ExtendAttribute adds a word to a space separated list of values. Words
// already present are not added twice.
func (b *Builder) ExtendAttribute(el *xml.Element, name, word string) {
	value, _ := el.AttributeValue(name)
	words := strings.Fields(value)
	if slices.Contains(words, word) {
		return
	}
	words = append(words, word)
	el.SetAttribute(xml.NewAttribute(attributeName(name), strings.Join(words, " ")))
}

// AddAttribute sets an attribute on the current element from an
// expression. The expression is lowered once the element that holds the
// attribute is open.
func (b *Builder) AddAttribute(name string, expr Expr, style AttrStyle) {
	b.AddSegments(name, b.Lower(expr), style)
}

// AddSegments sets an attribute on the current element from a list of
// segments.
func (b *Builder) AddSegments(name string, seg int, style AttrStyle) {
	var value string
	switch style {
	case StyleLiteral:
		if v, ok := b.segs.AsValue(seg); ok {
			value = v
		} else {
			value = b.segs.String(seg)
		}
	case StyleXPath:
		value = b.segs.String(seg)
	case StyleAvt:
		value = b.avt(seg)
	}
	b.SetAttribute(name, value)
}

// avt renders the segments as an attribute value template. Literal
// operands of a concatenation are kept as text.
func (b *Builder) avt(seg int) string {
	if v, ok := b.segs.AsValue(seg); ok {
		return escapeBraces(v)
	}
	if b.segs.Kind(seg) != concatCall {
		return "{" + b.segs.String(seg) + "}"
	}
	var str strings.Builder
	for _, a := range b.segs.Args(seg) {
		from, to := a[0], a[1]
		if b.segs.Kind(from) == Quoted && b.segs.Next(from) == to {
			str.WriteString(escapeBraces(b.segs.Text(from)))
			continue
		}
		str.WriteString("{")
		str.WriteString(b.segs.stringRange(from, to))
		str.WriteString("}")
	}
	return str.String()
}

func escapeBraces(str string) string {
	str = strings.ReplaceAll(str, "{", "{{")
	return strings.ReplaceAll(str, "}", "}}")
}

func attributeName(name string) xml.QName {
	space, local, ok := strings.Cut(name, ":")
	if !ok {
		return xml.LocalName(name)
	}
	return xml.QualifiedName(local, space)
}

// AddText adds a text to the current element. Texts that would not survive
// whitespace stripping are wrapped in xsl:text.
func (b *Builder) AddText(text string, doe bool) {
	if !doe && !needTextElement(text) {
		b.attach(xml.NewText(text))
		return
	}
	el := xml.NewElement(xslName(xslText))
	if doe {
		el.SetAttribute(xml.NewAttribute(xml.LocalName(attrDoe), "yes"))
	}
	if text != "" {
		el.Append(xml.NewText(text))
	}
	b.attach(el)
}

func needTextElement(text string) bool {
	if text == "" {
		return true
	}
	first, last := text[0], text[len(text)-1]
	return isBlank(first) || isBlank(last)
}

// AddValue adds the value of an expression to the current element: a text
// for a literal and xsl:value-of for everything else.
func (b *Builder) AddValue(expr Expr, doe bool) {
	if !isConstant(expr) {
		b.OpenXsl(xslValueOf)
		b.AddAttribute(attrSelect, expr, StyleXPath)
	} else {
		seg := b.Lower(expr)
		if v, ok := b.segs.AsValue(seg); ok {
			b.AddText(v, doe)
			return
		}
		b.OpenXsl(xslValueOf)
		b.AddSegments(attrSelect, seg, StyleXPath)
	}
	if doe {
		b.SetAttribute(attrDoe, "yes")
	}
	b.Close()
}

// AddComment adds a comment to the current element. A comment found while
// building a sort goes to the parent of the sort.
func (b *Builder) AddComment(text string) {
	el := b.scope()
	if isXsl(el, xslSort) {
		if p, ok := el.Parent().(*xml.Element); ok {
			p.Append(xml.NewComment(text))
			return
		}
	}
	b.attach(xml.NewComment(text))
}

// DeclareNS declares a namespace on the current element, or on the
// stylesheet at the top level.
func (b *Builder) DeclareNS(prefix, uri string) {
	el := b.scope()
	b.declareOn(el, prefix, uri)
	b.namespaces.Define(prefix, uri)
}

func (b *Builder) declareOn(el *xml.Element, prefix, uri string) {
	qn := xml.LocalName(xml.AttrXmlNS)
	if prefix != "" {
		qn = xml.QualifiedName(prefix, xml.AttrXmlNS)
	}
	el.SetAttribute(xml.NewAttribute(qn, uri))
}

// declareGlobal declares a namespace on the stylesheet. The namespace is
// visible everywhere.
func (b *Builder) declareGlobal(prefix, uri string, extension bool) {
	if v, ok := b.root.AttributeValue(xml.AttrXmlNS + ":" + prefix); ok && v == uri {
		return
	}
	b.declareOn(b.root, prefix, uri)
	if extension {
		b.ExtendAttribute(b.root, attrExtPrefixes, prefix)
	}
	b.globals.Define(prefix, uri)
}

func (b *Builder) UseSlaxNS() {
	b.declareGlobal(slaxPrefix, SlaxUri, true)
}

func (b *Builder) UseFuncNS() {
	b.declareGlobal(funcPrefix, FuncUri, true)
}

func (b *Builder) UseExtNS() {
	b.declareGlobal(extPrefix, ExtUri, false)
}

// DefineVar registers a variable in the scope of the current element.
// Mutable variables can be the target of set and append.
func (b *Builder) DefineVar(ident string, mutable bool) {
	b.variables.Define(ident, mutable)
}

// CheckMutable verifies that a variable can be modified.
func (b *Builder) CheckMutable(ident string) error {
	mutable, err := b.variables.Resolve(ident)
	if err != nil {
		return fmt.Errorf("%s: %w", ident, ErrUndefined)
	}
	if !mutable {
		return fmt.Errorf("%s: %w", ident, ErrImmutable)
	}
	return nil
}

func (b *Builder) nextTernary() string {
	b.ternaries++
	return fmt.Sprintf("%s%d", ternaryPrefix, b.ternaries)
}

func (b *Builder) nextDot() string {
	b.dots++
	return fmt.Sprintf("%s%d", dotPrefix, b.dots)
}

func (b *Builder) nextTemp(ident string) string {
	b.temps++
	return fmt.Sprintf("%s%s%d", ident, tempInfix, b.temps)
}
