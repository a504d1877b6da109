package xml

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/midbel/slax/environ"
)

const MaxDepth = 512

const (
	SupportedVersion  = "1.0"
	SupportedEncoding = "UTF-8"
)

const AttrXmlNS = "xmlns"

type ParseError struct {
	Position
	Element string
	Message string
}

func createParseError(elem, msg string, pos Position) error {
	return ParseError{
		Position: pos,
		Element:  elem,
		Message:  msg,
	}
}

func (p ParseError) Error() string {
	return fmt.Sprintf("%d:%d: %s: %s", p.Line, p.Column, p.Element, p.Message)
}

type Parser struct {
	scan *Scanner
	curr Token
	peek Token

	depth int

	TrimSpace  bool
	KeepEmpty  bool
	OmitProlog bool
	StrictNS   bool
	MaxDepth   int

	namespaces environ.Environ[string]
}

func NewParser(r io.Reader) *Parser {
	p := Parser{
		scan:       Scan(r),
		TrimSpace:  true,
		MaxDepth:   MaxDepth,
		namespaces: environ.Empty[string](),
	}
	p.namespaces.Define("xml", "http://www.w3.org/XML/1998/namespace")
	p.next()
	p.next()
	return &p
}

func ParseString(xml string) (*Document, error) {
	return ParseReader(strings.NewReader(xml))
}

func ParseReader(r io.Reader) (*Document, error) {
	p := NewParser(r)
	p.OmitProlog = true
	return p.Parse()
}

func (p *Parser) Parse() (*Document, error) {
	prolog, err := p.parseProlog()
	if err != nil {
		return nil, err
	}
	doc := EmptyDocument()
	if prolog != nil {
		ix := slices.IndexFunc(prolog.Attrs, func(a Attribute) bool {
			return a.LocalName() == "encoding"
		})
		if ix >= 0 {
			doc.Encoding = prolog.Attrs[ix].Value()
		}
	}
	for !p.done() {
		node, err := p.parseNode()
		if err != nil {
			return nil, err
		}
		if node == nil {
			continue
		}
		switch node.Type() {
		case TypeComment, TypeElement, TypeInstruction:
		case TypeText:
			if strings.TrimSpace(node.Value()) == "" {
				continue
			}
			return nil, p.createError("document", "text outside of root element")
		default:
			return nil, p.createError("document", "invalid node type")
		}
		if node.Type() == TypeElement && doc.Root() != nil {
			return nil, p.createError("document", "multiple root elements")
		}
		doc.attach(node)
	}
	if doc.Root() == nil {
		return nil, p.createError("document", "missing root element")
	}
	return doc, nil
}

func (p *Parser) parseProlog() (*Instruction, error) {
	for p.is(Literal) && strings.TrimSpace(p.curr.Literal) == "" {
		p.next()
	}
	if !p.is(ProcInstTag) {
		if !p.OmitProlog {
			return nil, p.createError("document", "xml prolog missing")
		}
		return nil, nil
	}
	node, err := p.parsePI()
	if err != nil {
		return nil, err
	}
	pi, ok := node.(*Instruction)
	if !ok || pi.Name != "xml" {
		return nil, p.createError("document", "expected xml prolog")
	}
	ok = slices.ContainsFunc(pi.Attrs, func(a Attribute) bool {
		return a.LocalName() == "version" && a.Value() == SupportedVersion
	})
	if !ok {
		return nil, p.createError("document", "xml version not supported")
	}
	ix := slices.IndexFunc(pi.Attrs, func(a Attribute) bool {
		return a.LocalName() == "encoding"
	})
	if ix >= 0 && strings.ToUpper(pi.Attrs[ix].Value()) != SupportedEncoding {
		return nil, p.createError("document", "xml encoding not supported")
	}
	return pi, nil
}

func (p *Parser) parseNode() (Node, error) {
	p.enter()
	defer p.leave()
	if p.depth >= p.MaxDepth {
		return nil, p.createError("document", "maximum depth reached")
	}
	switch p.curr.Type {
	case OpenTag:
		return p.parseElement()
	case CommentTag:
		return p.parseComment()
	case ProcInstTag:
		return p.parsePI()
	case Cdata:
		return p.parseCharData()
	case Literal:
		return p.parseLiteral()
	default:
		return nil, p.createError("document", "unsupported element type")
	}
}

func (p *Parser) parseElement() (Node, error) {
	p.namespaces = environ.Enclosed[string](p.namespaces)
	defer func() {
		u, ok := p.namespaces.(interface {
			Unwrap() environ.Environ[string]
		})
		if !ok {
			return
		}
		p.namespaces = u.Unwrap()
	}()
	p.next()
	var (
		elem Element
		err  error
	)
	if p.is(Namespace) {
		elem.Space = p.getCurrentLiteral()
		p.next()
	}
	if !p.is(Name) {
		return nil, p.createError("element", "name is missing")
	}
	elem.Name = p.getCurrentLiteral()
	p.next()

	elem.Attrs, err = p.parseAttributes(&elem, func() bool {
		return p.is(EndTag) || p.is(EmptyElemTag)
	})
	if err != nil {
		return nil, err
	}
	if elem.Uri, err = p.isDefined(elem.QName); err != nil {
		return nil, err
	}
	for i := range elem.Attrs {
		if elem.Attrs[i].Space == "" || elem.Attrs[i].IsNamespace() {
			continue
		}
		if elem.Attrs[i].Uri, err = p.isDefined(elem.Attrs[i].QName); err != nil {
			return nil, err
		}
	}

	switch p.curr.Type {
	case EmptyElemTag:
		p.next()
		return &elem, nil
	case EndTag:
		p.next()
		for !p.done() && !p.is(CloseTag) {
			child, err := p.parseNode()
			if err != nil {
				return nil, err
			}
			if child != nil {
				elem.Append(child)
			}
		}
		if !p.is(CloseTag) {
			return nil, p.createError("element", "closing element is missing")
		}
		p.next()
		return &elem, p.parseCloseElement(elem)
	default:
		return nil, p.createError("element", "end of element expected")
	}
}

func (p *Parser) parseCloseElement(elem Element) error {
	if elem.Space != "" && !p.is(Namespace) {
		return p.createError("element", "closing element without namespace")
	}
	if p.is(Namespace) {
		if elem.Space != p.getCurrentLiteral() {
			return p.createError("element", "namespace mismatched with opening element")
		}
		p.next()
	}
	if !p.is(Name) {
		return p.createError("element", "name is missing")
	}
	if p.getCurrentLiteral() != elem.Name {
		return p.createError("element", "name mismatched with opening element")
	}
	p.next()
	if !p.is(EndTag) {
		return p.createError("element", "end of element expected")
	}
	p.next()
	return nil
}

func (p *Parser) parsePI() (Node, error) {
	p.next()
	if !p.is(Name) {
		return nil, p.createError("processing instruction", "name is missing")
	}
	var elem Instruction
	elem.Name = p.getCurrentLiteral()
	p.next()
	var err error
	elem.Attrs, err = p.parseAttributes(&elem, func() bool {
		return p.is(ProcInstTag)
	})
	if err != nil {
		return nil, err
	}
	if !p.is(ProcInstTag) {
		return nil, p.createError("processing instruction", "end of element expected")
	}
	p.next()
	return &elem, nil
}

func (p *Parser) parseAttributes(parent Node, done func() bool) ([]Attribute, error) {
	var attrs []Attribute
	for i := 0; !p.done() && !done(); i++ {
		attr, err := p.parseAttr()
		if err != nil {
			return nil, err
		}
		ok := slices.ContainsFunc(attrs, func(a Attribute) bool {
			return attr.QualifiedName() == a.QualifiedName()
		})
		if ok {
			return nil, p.createError("attribute", "attribute is already defined")
		}
		attr.setParent(parent)
		attr.setPosition(i)
		attrs = append(attrs, attr)
	}
	return attrs, nil
}

func (p *Parser) parseAttr() (Attribute, error) {
	var attr Attribute
	if p.is(Namespace) {
		attr.Space = p.getCurrentLiteral()
		p.next()
	}
	if !p.is(Attr) {
		return attr, p.createError("attribute", "name is expected")
	}
	attr.Name = p.getCurrentLiteral()
	p.next()
	if !p.is(Literal) {
		return attr, p.createError("attribute", "value is missing")
	}
	attr.Datum = p.getCurrentLiteral()
	p.next()
	if attr.Name == AttrXmlNS && attr.Space == "" {
		p.defineNS("", attr.Datum)
	} else if attr.Space == AttrXmlNS {
		p.defineNS(attr.Name, attr.Datum)
	}
	return attr, nil
}

func (p *Parser) parseComment() (Node, error) {
	defer p.next()
	node := Comment{
		Content: p.getCurrentLiteral(),
	}
	return &node, nil
}

func (p *Parser) parseCharData() (Node, error) {
	defer p.next()
	text := Text{
		Content: p.getCurrentLiteral(),
	}
	return &text, nil
}

func (p *Parser) parseLiteral() (Node, error) {
	text := Text{
		Content: p.getCurrentLiteral(),
	}
	if p.TrimSpace {
		text.Content = strings.TrimSpace(text.Content)
	}
	p.next()
	if !p.KeepEmpty && text.Content == "" {
		return nil, nil
	}
	return &text, nil
}

func (p *Parser) isDefined(qn QName) (string, error) {
	if qn.Name == AttrXmlNS || qn.Space == AttrXmlNS {
		return "", nil
	}
	uri, err := p.namespaces.Resolve(qn.Space)
	if err != nil && p.StrictNS {
		return "", p.createError("namespace", fmt.Sprintf("%s: namespace is not defined", qn.Space))
	}
	return uri, nil
}

func (p *Parser) defineNS(ident, uri string) {
	p.namespaces.Define(ident, uri)
}

func (p *Parser) getCurrentLiteral() string {
	return p.curr.Literal
}

func (p *Parser) createError(elem, msg string) error {
	return createParseError(elem, msg, p.curr.Position)
}

func (p *Parser) is(kind rune) bool {
	return p.curr.Type == kind
}

func (p *Parser) done() bool {
	return p.is(EOF)
}

func (p *Parser) enter() {
	p.depth++
}

func (p *Parser) leave() {
	p.depth--
}

func (p *Parser) next() {
	p.curr = p.peek
	p.peek = p.scan.Scan()
}
