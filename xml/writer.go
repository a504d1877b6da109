package xml

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

type WriterOptions uint64

const (
	OptionCompact WriterOptions = 1 << iota
	OptionNoNamespace
	OptionNoComment
	OptionNoProlog
)

func (w WriterOptions) Compact() bool {
	return w&OptionCompact > 0
}

func (w WriterOptions) NoNamespace() bool {
	return w&OptionNoNamespace > 0
}

func (w WriterOptions) NoComment() bool {
	return w&OptionNoComment > 0
}

func (w WriterOptions) NoProlog() bool {
	return w&OptionNoProlog > 0
}

type Writer struct {
	writer  *bufio.Writer
	written bool

	Indent string
	WriterOptions
}

func WriteNode(node Node) string {
	var buf bytes.Buffer

	ws := NewWriter(&buf)
	ws.WriterOptions |= OptionCompact
	ws.writeNode(node, -1)
	ws.writer.Flush()
	return buf.String()
}

func WriteDocument(doc *Document, options WriterOptions) (string, error) {
	var buf bytes.Buffer

	ws := NewWriter(&buf)
	ws.WriterOptions = options
	err := ws.Write(doc)
	return buf.String(), err
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{
		writer: bufio.NewWriter(w),
		Indent: "  ",
	}
}

func (w *Writer) Write(doc *Document) error {
	if err := w.writeProlog(doc); err != nil {
		return err
	}
	for _, n := range doc.Nodes {
		if err := w.writeNode(n, -1); err != nil {
			return err
		}
	}
	if !w.Compact() {
		w.writer.WriteRune('\n')
	}
	return w.writer.Flush()
}

func (w *Writer) writeNode(node Node, depth int) error {
	switch node := node.(type) {
	case *Document:
		return w.writeNode(node.Root(), depth)
	case *Element:
		return w.writeElement(node, depth+1)
	case *Text:
		return w.writeLiteral(node, depth+1)
	case *Instruction:
		return w.writeInstruction(node, depth+1)
	case *Comment:
		return w.writeComment(node, depth+1)
	default:
		return fmt.Errorf("node: unknown type (%T)", node)
	}
}

func (w *Writer) writeElement(node *Element, depth int) error {
	if depth > 0 || w.wrote() {
		w.writeNL()
	}
	prefix := w.getIndent(depth)
	if prefix != "" {
		w.writer.WriteString(prefix)
	}
	w.writer.WriteRune(langle)
	w.writeName(node.QName)
	if err := w.writeAttributes(node.Attrs); err != nil {
		return err
	}
	if len(node.Nodes) == 0 {
		w.writer.WriteRune(slash)
		w.writer.WriteRune(rangle)
		return nil
	}
	w.writer.WriteRune(rangle)
	for _, n := range node.Nodes {
		if err := w.writeNode(n, depth); err != nil {
			return err
		}
	}
	if _, ok := node.Nodes[len(node.Nodes)-1].(*Text); !ok {
		w.writeNL()
		w.writer.WriteString(prefix)
	}
	w.writer.WriteRune(langle)
	w.writer.WriteRune(slash)
	w.writeName(node.QName)
	w.writer.WriteRune(rangle)
	return nil
}

func (w *Writer) writeName(name QName) {
	if w.NoNamespace() {
		w.writer.WriteString(name.LocalName())
	} else {
		w.writer.WriteString(name.QualifiedName())
	}
}

func (w *Writer) writeLiteral(node *Text, _ int) error {
	_, err := w.writer.WriteString(escapeText(node.Content, false))
	return err
}

func (w *Writer) writeComment(node *Comment, depth int) error {
	if w.NoComment() {
		return nil
	}
	if depth > 0 || w.wrote() {
		w.writeNL()
	}
	w.writer.WriteString(w.getIndent(depth))
	w.writer.WriteRune(langle)
	w.writer.WriteRune(bang)
	w.writer.WriteRune(dash)
	w.writer.WriteRune(dash)
	w.writer.WriteString(node.Content)
	w.writer.WriteRune(dash)
	w.writer.WriteRune(dash)
	w.writer.WriteRune(rangle)
	return nil
}

func (w *Writer) writeInstruction(node *Instruction, depth int) error {
	if depth > 0 || w.wrote() {
		w.writeNL()
	}
	w.writer.WriteString(w.getIndent(depth))
	w.writer.WriteRune(langle)
	w.writer.WriteRune(question)
	w.writer.WriteString(node.Name)
	if err := w.writeAttributes(node.Attrs); err != nil {
		return err
	}
	w.writer.WriteRune(question)
	w.writer.WriteRune(rangle)
	return nil
}

func (w *Writer) writeProlog(doc *Document) error {
	if w.NoProlog() {
		return nil
	}
	encoding := doc.Encoding
	if encoding == "" {
		encoding = SupportedEncoding
	}
	prolog := NewInstruction(LocalName("xml"))
	prolog.Attrs = []Attribute{
		NewAttribute(LocalName("version"), SupportedVersion),
		NewAttribute(LocalName("encoding"), encoding),
	}
	return w.writeInstruction(prolog, 0)
}

func (w *Writer) writeAttributes(attrs []Attribute) error {
	for _, a := range attrs {
		if w.NoNamespace() && a.IsNamespace() {
			continue
		}
		w.writer.WriteRune(' ')
		w.writeName(a.QName)
		w.writer.WriteRune(equal)
		w.writer.WriteRune(quote)
		w.writer.WriteString(escapeText(a.Value(), true))
		w.writer.WriteRune(quote)
	}
	return nil
}

func (w *Writer) writeNL() {
	if w.Compact() {
		return
	}
	w.writer.WriteRune('\n')
}

func (w *Writer) wrote() bool {
	defer func() {
		w.written = true
	}()
	return w.written
}

func (w *Writer) getIndent(depth int) string {
	if w.Compact() || depth <= 0 {
		return ""
	}
	return strings.Repeat(w.Indent, depth)
}

func escapeText(str string, attr bool) string {
	var buf bytes.Buffer
	for i := 0; i < len(str); {
		r, z := utf8.DecodeRuneInString(str[i:])
		i += z

		switch r {
		case '<':
			buf.WriteString("&lt;")
		case '>':
			buf.WriteString("&gt;")
		case '&':
			buf.WriteString("&amp;")
		case '"':
			if attr {
				buf.WriteString("&quot;")
			} else {
				buf.WriteRune(r)
			}
		case '\n':
			if attr {
				buf.WriteString("&#10;")
			} else {
				buf.WriteRune(r)
			}
		default:
			buf.WriteRune(r)
		}
	}
	return buf.String()
}
