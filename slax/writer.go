package slax

import (
	"bufio"
	"bytes"
	"io"
	"slices"
	"strings"

	"github.com/midbel/slax/xml"
)

const (
	errorSentinel = "<<<<slax error>>>>"
	writerHeader  = "/* Machine Crafted with Care (tm) by slaxWriter */"
	baseVersion   = "1.0"
)

type blankState int8

const (
	blankZero blankState = iota
	blankDecls
	blankPast
)

// Writer turns a XSLT document back into a SLAX script. The elements
// created for the constructs of SLAX that XSLT does not have are
// recognized and written with their original syntax. An expression that
// can not be parsed is replaced by a marker and counted as an error.
type Writer struct {
	writer *bufio.Writer

	Version string
	Indent  string
	Tracer

	level  int
	depth  int
	errors int
	state  blankState

	ternaries map[string]ternary
	skip      map[*xml.Element]bool
	statement map[string]func(*xml.Element)
}

// WriteDocument writes a document as a SLAX script and returns it with the
// number of expressions that could not be written.
func WriteDocument(doc *xml.Document, version string) (string, int, error) {
	var buf bytes.Buffer

	ws := NewWriter(&buf)
	if version != "" {
		ws.Version = version
	}
	n, err := ws.Write(doc)
	return buf.String(), n, err
}

func NewWriter(w io.Writer) *Writer {
	ws := Writer{
		writer:  bufio.NewWriter(w),
		Version: DefaultVersion,
		Indent:  "    ",
		Tracer:  discardTracer{},
	}
	ws.setupStatements()
	return &ws
}

// Write writes the document and returns the number of errors found.
func (w *Writer) Write(doc *xml.Document) (int, error) {
	w.reset()
	root, ok := doc.Root().(*xml.Element)
	if !ok {
		return 0, w.writer.Flush()
	}
	if !w.legacy() {
		w.scanTernaries(root)
	}
	w.writer.WriteString(writerHeader)
	w.writer.WriteString("\n")

	version := w.Version
	if w.legacy() {
		version = baseVersion
	}
	w.line("version " + version + ";")
	w.writer.WriteString("\n")

	if !isXsl(root, xslStylesheet, xslTransform) {
		w.open("match /")
		w.writeElement(root, "")
		w.close()
		return w.errors, w.writer.Flush()
	}
	if w.writeNamespaces(root) {
		w.writer.WriteString("\n")
	}
	w.writeNodes(root.Nodes, true)
	return w.errors, w.writer.Flush()
}

func (w *Writer) reset() {
	w.level = 0
	w.depth = 0
	w.errors = 0
	w.state = blankZero
	w.ternaries = make(map[string]ternary)
	w.skip = make(map[*xml.Element]bool)
}

// legacy reports whether the script targets the first version of SLAX
// that has none of the constructs needing a rewrite.
func (w *Writer) legacy() bool {
	return w.Version == baseVersion
}

func (w *Writer) setupStatements() {
	w.statement = map[string]func(*xml.Element){
		xslApplyImports:   w.writeApplyImports,
		xslAttribute:      w.writeNamed,
		xslChoose:         w.writeChoose,
		xslComment:        w.writeComment,
		xslCopy:           w.writeCopy,
		xslCopyOf:         w.writeCopyOf,
		xslElement:        w.writeNamed,
		xslFallback:       w.writeFallback,
		xslForEach:        w.writeForEach,
		xslIf:             w.writeIf,
		xslImport:         w.writeImport,
		xslInclude:        w.writeImport,
		xslKey:            w.writeKey,
		xslMessage:        w.writeMessage,
		xslNumber:         w.writeNumber,
		xslOutput:         w.writeOutput,
		xslParam:          w.writeDeclare,
		xslPreserveSpace:  w.writeSpace,
		xslProcessing:     w.writeInstruction,
		xslSort:           w.writeSort,
		xslStripSpace:     w.writeSpace,
		xslTemplate:       w.writeTemplate,
		xslText:           w.writeText,
		xslValueOf:        w.writeValueOf,
		xslVariable:       w.writeDeclare,
		xslWithParam:      w.writeWith,
		xslApplyTemplates: w.writeApplyStatement,
		xslCallTemplate:   w.writeCallStatement,
	}
}

func (w *Writer) writeNamespaces(root *xml.Element) bool {
	var (
		exts = attrWords(root, attrExtPrefixes)
		excs = attrWords(root, attrExcPrefixes)
		done bool
	)
	for _, ns := range root.Namespaces() {
		switch ns.Uri {
		case XslUri, FuncUri:
			continue
		case SlaxUri, ExtUri:
			if !w.legacy() {
				continue
			}
		}
		done = true
		if ns.Default() {
			w.line("ns " + quoteSlax(ns.Uri) + ";")
			continue
		}
		var str strings.Builder
		str.WriteString("ns ")
		str.WriteString(ns.Prefix)
		if slices.Contains(exts, ns.Prefix) {
			str.WriteString(" extension")
		}
		if slices.Contains(excs, ns.Prefix) {
			str.WriteString(" exclude")
		}
		str.WriteString(" = ")
		str.WriteString(quoteSlax(ns.Uri))
		str.WriteString(";")
		w.line(str.String())
	}
	return done
}

func attrWords(el *xml.Element, name string) []string {
	value, _ := el.AttributeValue(name)
	return strings.Fields(value)
}

// writeNodes writes a list of nodes. Each element is first checked for
// the patterns created by for, mvar and ":=".
func (w *Writer) writeNodes(nodes []xml.Node, top bool) {
	// a comment stays attached to the element following it
	var remark bool
	for i := 0; i < len(nodes); i++ {
		switch n := nodes[i].(type) {
		case *xml.Comment:
			if top && isHeader(n) {
				continue
			}
			if top && !remark {
				w.separate(w.nextDeclaration(nodes, i))
			}
			remark = true
			w.writeRemark(n)
		case *xml.Text:
			if !top && !n.Blank() {
				w.line(quoteSlax(n.Content) + ";")
			}
		case *xml.Element:
			if w.skip[n] {
				continue
			}
			if top && !remark {
				w.separate(isDeclaration(n))
			}
			remark = false
			if next, ok := w.writePattern(nodes, i); ok {
				i = next
				continue
			}
			w.writeElement(n, "")
		}
	}
}

// isHeader reports whether a comment is the header written by a previous
// run of the writer.
func isHeader(c *xml.Comment) bool {
	text := strings.TrimSpace(c.Content)
	return "/* "+text+" */" == writerHeader
}

// separate writes a blank line between the declarations and the
// templates of the stylesheet.
func (w *Writer) separate(decl bool) {
	switch {
	case decl && w.state == blankPast:
		w.writer.WriteString("\n")
	case !decl && w.state != blankZero:
		w.writer.WriteString("\n")
	}
	if decl {
		w.state = blankDecls
	} else {
		w.state = blankPast
	}
}

// nextDeclaration reports whether the element following a comment is a
// declaration. A comment is separated like the element it precedes.
func (w *Writer) nextDeclaration(nodes []xml.Node, pos int) bool {
	for i := pos + 1; i < len(nodes); i++ {
		if el, ok := nodes[i].(*xml.Element); ok && !w.skip[el] {
			return isDeclaration(el)
		}
	}
	return true
}

func isDeclaration(el *xml.Element) bool {
	return !isXsl(el, xslTemplate) && !isFunc(el, funcFunction)
}

func (w *Writer) writePattern(nodes []xml.Node, pos int) (int, bool) {
	if w.legacy() {
		return pos, false
	}
	if loop, next, ok := w.detectFor(nodes, pos); ok {
		w.writeFor(loop)
		return next, true
	}
	if mv, next, ok := w.detectMvar(nodes, pos); ok {
		w.writeValue("mvar $"+mv.ident, " = ", mv.value)
		return next, true
	}
	if ident, temp, next, ok := w.detectNodeSet(nodes, pos); ok {
		w.writeValue("var $"+ident, " := ", temp)
		return next, true
	}
	return pos, false
}

// writeElement writes an element. head is written before the element on
// its first line when the element is the value of a statement.
func (w *Writer) writeElement(el *xml.Element, head string) {
	w.depth++
	defer func() {
		w.depth--
	}()
	if w.depth > MaxDepth {
		w.failed(el.QualifiedName(), ErrDepth)
		w.line(errorSentinel)
		return
	}
	w.Enter(el.QualifiedName())
	defer w.Leave(el.QualifiedName())

	switch {
	case el.Uri == XslUri:
		if fn, ok := w.statement[el.Name]; ok && head == "" && w.accept(el) {
			fn(el)
			return
		}
		switch el.Name {
		case xslCallTemplate:
			w.writeCall(el, head)
			return
		case xslApplyTemplates:
			w.writeApply(el, head)
			return
		}
	case isFunc(el, funcFunction):
		w.writeFunction(el)
		return
	case isFunc(el, funcResult):
		w.writeResult(el)
		return
	case isSlax(el, slaxSetVariable), isSlax(el, slaxAppendVariable):
		if !w.legacy() {
			w.writeSetVar(el)
			return
		}
	}
	w.writeLiteral(el, head)
}

// accept reports whether a statement of SLAX exists for the element in
// the version written.
func (w *Writer) accept(el *xml.Element) bool {
	if !w.legacy() {
		return true
	}
	return el.Name != xslAttribute && el.Name != xslElement
}

// writeLiteral writes an element with the syntax of literal result
// elements. Its attributes are attribute value templates unless it comes
// from one of the namespaces used by XSLT and SLAX.
func (w *Writer) writeLiteral(el *xml.Element, head string) {
	var (
		str  strings.Builder
		sets string
		raw  = el.Uri == XslUri || el.Uri == SlaxUri || el.Uri == FuncUri
	)
	str.WriteString(head)
	str.WriteString("<")
	str.WriteString(el.QualifiedName())
	for _, a := range el.Attrs {
		if !raw && isUseSets(a) {
			sets = a.Value()
			continue
		}
		str.WriteString(" ")
		str.WriteString(a.QualifiedName())
		str.WriteString(" = ")
		if raw || a.IsNamespace() {
			str.WriteString(quoteSlax(a.Value()))
		} else {
			str.WriteString(w.avt(a.Value()))
		}
	}
	str.WriteString(">")

	nodes := w.meaningful(el.Nodes)
	if len(el.Namespaces()) == 0 && sets == "" && len(nodes) <= 1 {
		if len(nodes) == 0 {
			w.line(str.String() + ";")
			return
		}
		if value, ok := w.inlineContent(nodes[0]); ok {
			w.line(str.String() + " " + value + ";")
			return
		}
		if child, ok := nodes[0].(*xml.Element); ok && isLiteral(child) {
			str.WriteString(" ")
			w.writeElement(child, str.String())
			return
		}
	}
	w.open(str.String())
	if sets != "" {
		w.line("use-attribute-sets " + sets + ";")
	}
	w.writeNodes(el.Nodes, false)
	w.close()
}

func isUseSets(a xml.Attribute) bool {
	if a.Name != attrUseSets {
		return false
	}
	return a.Uri == XslUri || a.Space == xslPrefix
}

func isLiteral(el *xml.Element) bool {
	return el.Uri != XslUri && el.Uri != SlaxUri && el.Uri != FuncUri
}

// meaningful filters the nodes that are written: blank texts and the
// variables of ternary expressions are not.
func (w *Writer) meaningful(nodes []xml.Node) []xml.Node {
	var list []xml.Node
	for _, n := range nodes {
		switch n := n.(type) {
		case *xml.Text:
			if n.Blank() {
				continue
			}
		case *xml.Element:
			if w.skip[n] {
				continue
			}
		}
		list = append(list, n)
	}
	return list
}

// inlineContent gives the expression written after a statement when its
// content is a single text or a single xsl:value-of.
func (w *Writer) inlineContent(node xml.Node) (string, bool) {
	switch n := node.(type) {
	case *xml.Text:
		return quoteSlax(n.Content), true
	case *xml.Element:
		if !isXsl(n, xslValueOf) || !hasOnly(n, attrSelect) || len(n.Nodes) > 0 {
			break
		}
		sel, ok := n.AttributeValue(attrSelect)
		if !ok {
			break
		}
		return w.xpath(sel), true
	}
	return "", false
}

// inlineValue reports whether a node can be given as the value of a
// statement without a block.
func inlineValue(node xml.Node) bool {
	el, ok := node.(*xml.Element)
	if !ok {
		return false
	}
	return isLiteral(el) || isXsl(el, xslCallTemplate, xslApplyTemplates)
}

// writeValue writes a statement whose value is the select attribute of an
// element or its content.
func (w *Writer) writeValue(decl, sep string, el *xml.Element) {
	var (
		nodes   = w.meaningful(el.Nodes)
		sel, ok = el.AttributeValue(attrSelect)
	)
	switch {
	case ok && len(nodes) == 0:
		w.line(decl + sep + w.xpath(sel) + ";")
	case len(nodes) == 0:
		w.line(decl + ";")
	case len(nodes) == 1 && inlineValue(nodes[0]):
		w.writeElement(nodes[0].(*xml.Element), decl+sep)
	default:
		w.writeBlock(decl+strings.TrimRight(sep, " "), el.Nodes)
	}
}

// writeContent writes a statement whose expression becomes the content of
// the element.
func (w *Writer) writeContent(decl string, el *xml.Element) {
	nodes := w.meaningful(el.Nodes)
	if len(nodes) == 1 {
		if value, ok := w.inlineContent(nodes[0]); ok {
			w.line(decl + " " + value + ";")
			return
		}
		if inlineValue(nodes[0]) {
			w.writeElement(nodes[0].(*xml.Element), decl+" ")
			return
		}
	}
	w.writeBlock(decl, el.Nodes)
}

func (w *Writer) writeBlock(decl string, nodes []xml.Node) {
	w.open(decl)
	w.writeNodes(nodes, false)
	w.close()
}

func (w *Writer) writeImport(el *xml.Element) {
	href, _ := el.AttributeValue(attrHref)
	w.line(el.Name + " " + quoteSlax(href) + ";")
}

func (w *Writer) writeSpace(el *xml.Element) {
	list, _ := el.AttributeValue(attrElements)
	w.line(el.Name + " " + strings.Join(strings.Fields(list), " ") + ";")
}

func (w *Writer) writeOutput(el *xml.Element) {
	decl := kwOutputMethod
	if method, ok := el.AttributeValue(attrMethod); ok {
		decl += " " + method
	}
	var options []string
	for _, name := range outputAttributes {
		if value, ok := el.AttributeValue(name); ok {
			options = append(options, name+" "+quoteSlax(value)+";")
		}
	}
	if len(options) == 0 {
		w.line(decl + ";")
		return
	}
	w.open(decl)
	for _, o := range options {
		w.line(o)
	}
	w.close()
}

func (w *Writer) writeKey(el *xml.Element) {
	name, _ := el.AttributeValue(attrName)
	w.open(kwKey + " " + name)
	if match, ok := el.AttributeValue(attrMatch); ok {
		w.line(kwMatch + " " + w.xpath(match) + ";")
	}
	if use, ok := el.AttributeValue(attrUse); ok {
		w.line(kwValue + " " + w.xpath(use) + ";")
	}
	w.close()
}

// writeDeclare writes var and param. A variable whose value is converted
// to a node set is written with ":=".
func (w *Writer) writeDeclare(el *xml.Element) {
	kind := kwVar
	if el.Name == xslParam {
		kind = kwParam
	}
	name, _ := el.AttributeValue(attrName)
	decl := kind + " $" + name
	if kind == kwVar && !w.legacy() {
		if expr, ok := w.nodeSet(el); ok {
			w.line(decl + " := " + expr + ";")
			return
		}
	}
	w.writeValue(decl, " = ", el)
}

func (w *Writer) nodeSet(el *xml.Element) (string, bool) {
	sel, ok := el.AttributeValue(attrSelect)
	if !ok || len(w.meaningful(el.Nodes)) > 0 || !strings.HasPrefix(sel, nodeSetFunc+"(") {
		return "", false
	}
	expr, err := ParseExpr(sel)
	if err != nil {
		return "", false
	}
	c, ok := expr.(call)
	if !ok || c.ident != nodeSetFunc || len(c.args) != 1 {
		return "", false
	}
	return w.print(c.args[0], false), true
}

func (w *Writer) writeTemplate(el *xml.Element) {
	var (
		str   strings.Builder
		nodes = el.Nodes
	)
	match, hasMatch := el.AttributeValue(attrMatch)
	if name, ok := el.AttributeValue(attrName); ok {
		str.WriteString(kwTemplate)
		str.WriteString(" ")
		str.WriteString(name)
		var params string
		params, nodes = w.params(el.Nodes)
		if params != "" {
			str.WriteString("(")
			str.WriteString(params)
			str.WriteString(")")
		}
		if hasMatch {
			str.WriteString(" ")
			str.WriteString(kwMatch)
			str.WriteString(" ")
			str.WriteString(w.xpath(match))
		}
	} else {
		str.WriteString(kwMatch)
		str.WriteString(" ")
		str.WriteString(w.xpath(match))
	}
	w.open(str.String())
	if mode, ok := el.AttributeValue(attrMode); ok {
		w.line(kwMode + " " + quoteSlax(mode) + ";")
	}
	if priority, ok := el.AttributeValue(attrPriority); ok {
		w.line(kwPriority + " " + priority + ";")
	}
	w.writeNodes(nodes, false)
	w.close()
}

func (w *Writer) writeFunction(el *xml.Element) {
	name, _ := el.AttributeValue(attrName)
	params, nodes := w.params(el.Nodes)
	w.open(kwFunction + " " + name + "(" + params + ")")
	w.writeNodes(nodes, false)
	w.close()
}

// params gives the parameters written in the header of a template or a
// function and the nodes left for the body. Only the leading xsl:param
// without content are taken.
func (w *Writer) params(nodes []xml.Node) (string, []xml.Node) {
	var (
		list []string
		rest = nodes
	)
	for i, n := range nodes {
		if t, ok := n.(*xml.Text); ok && t.Blank() {
			continue
		}
		el, ok := n.(*xml.Element)
		if !ok || !isXsl(el, xslParam) || !hasOnly(el, attrName, attrSelect) || len(w.meaningful(el.Nodes)) > 0 {
			break
		}
		name, _ := el.AttributeValue(attrName)
		param := "$" + name
		if sel, ok := el.AttributeValue(attrSelect); ok {
			param += " = " + w.xpath(sel)
		}
		list = append(list, param)
		rest = nodes[i+1:]
	}
	return strings.Join(list, ", "), rest
}

func (w *Writer) writeResult(el *xml.Element) {
	w.writeValue(kwResult, " ", el)
}

func (w *Writer) writeSetVar(el *xml.Element) {
	name, _ := el.AttributeValue(attrName)
	if isSlax(el, slaxAppendVariable) {
		w.writeValue(kwAppend+" $"+name, " += ", el)
		return
	}
	w.writeValue(kwSet+" $"+name, " = ", el)
}

func (w *Writer) writeWith(el *xml.Element) {
	name, _ := el.AttributeValue(attrName)
	sel, ok := el.AttributeValue(attrSelect)
	if ok && sel == "$"+name && len(w.meaningful(el.Nodes)) == 0 {
		w.line(kwWith + " $" + name + ";")
		return
	}
	w.writeValue(kwWith+" $"+name, " = ", el)
}

func (w *Writer) writeValueOf(el *xml.Element) {
	sel, _ := el.AttributeValue(attrSelect)
	kw := kwExpr
	if doe, _ := el.AttributeValue(attrDoe); doe == "yes" {
		kw = kwUexpr
	}
	w.line(kw + " " + w.xpath(sel) + ";")
}

func (w *Writer) writeText(el *xml.Element) {
	var str strings.Builder
	for _, n := range el.Nodes {
		if t, ok := n.(*xml.Text); ok {
			str.WriteString(t.Content)
		}
	}
	text := quoteSlax(str.String())
	if doe, _ := el.AttributeValue(attrDoe); doe == "yes" {
		text = kwUexpr + " " + text
	}
	w.line(text + ";")
}

func (w *Writer) writeCopyOf(el *xml.Element) {
	sel, _ := el.AttributeValue(attrSelect)
	w.line(kwCopyOf + " " + w.xpath(sel) + ";")
}

func (w *Writer) writeCopy(el *xml.Element) {
	sets, _ := el.AttributeValue(attrUseSets)
	if sets == "" && len(w.meaningful(el.Nodes)) == 0 {
		w.line(kwCopyNode + ";")
		return
	}
	w.open(kwCopyNode)
	if sets != "" {
		w.line(kwUseAttrSets + " " + sets + ";")
	}
	w.writeNodes(el.Nodes, false)
	w.close()
}

func (w *Writer) writeApplyImports(_ *xml.Element) {
	w.line(kwApplyImports + ";")
}

func (w *Writer) writeApplyStatement(el *xml.Element) {
	w.writeApply(el, "")
}

func (w *Writer) writeApply(el *xml.Element, head string) {
	decl := head + kwApplyTemplates
	if sel, ok := el.AttributeValue(attrSelect); ok {
		decl += " " + w.xpath(sel)
	}
	mode, hasMode := el.AttributeValue(attrMode)
	if !hasMode && len(w.meaningful(el.Nodes)) == 0 {
		w.line(decl + ";")
		return
	}
	w.open(decl)
	if hasMode {
		w.line(kwMode + " " + quoteSlax(mode) + ";")
	}
	w.writeNodes(el.Nodes, false)
	w.close()
}

func (w *Writer) writeCallStatement(el *xml.Element) {
	w.writeCall(el, "")
}

// writeCall writes a call to a named template. The parameters with a
// select attribute are given as arguments, the others go in a block.
func (w *Writer) writeCall(el *xml.Element, head string) {
	var (
		args []string
		rest []xml.Node
		name string
	)
	name, _ = el.AttributeValue(attrName)
	for _, n := range w.meaningful(el.Nodes) {
		p, ok := n.(*xml.Element)
		if ok && len(rest) == 0 && isXsl(p, xslWithParam) && hasOnly(p, attrName, attrSelect) && len(w.meaningful(p.Nodes)) == 0 {
			ident, _ := p.AttributeValue(attrName)
			if sel, ok := p.AttributeValue(attrSelect); ok {
				arg := "$" + ident
				if sel != arg {
					arg += " = " + w.xpath(sel)
				}
				args = append(args, arg)
				continue
			}
		}
		rest = append(rest, n)
	}
	decl := head + kwCall + " " + name
	if len(args) > 0 {
		decl += "(" + strings.Join(args, ", ") + ")"
	}
	if len(rest) == 0 {
		w.line(decl + ";")
		return
	}
	w.writeBlock(decl, rest)
}

func (w *Writer) writeIf(el *xml.Element) {
	test, _ := el.AttributeValue(attrTest)
	w.writeBlock(kwIf+" ("+w.xpath(test)+")", el.Nodes)
}

// writeChoose writes xsl:choose as a chain of if and else. A xsl:choose
// that does not start with xsl:when or holds something else than its
// branches is written as is.
func (w *Writer) writeChoose(el *xml.Element) {
	list, ok := children(el)
	if !ok || len(list) == 0 || !isXsl(list[0], xslWhen) {
		w.writeLiteral(el, "")
		return
	}
	for i, b := range list {
		last := i == len(list)-1
		if !isXsl(b, xslWhen) && !(last && isXsl(b, xslOtherwise)) {
			w.writeLiteral(el, "")
			return
		}
	}
	for i, b := range list {
		var decl string
		if isXsl(b, xslWhen) {
			test, _ := b.AttributeValue(attrTest)
			decl = kwIf + " (" + w.xpath(test) + ")"
		}
		switch {
		case i == 0:
			w.open(decl)
		case decl == "":
			w.reopen(kwElse)
		default:
			w.reopen(kwElse + " " + decl)
		}
		w.writeNodes(b.Nodes, false)
	}
	w.close()
}

func (w *Writer) writeForEach(el *xml.Element) {
	sel, _ := el.AttributeValue(attrSelect)
	w.writeBlock(kwForEach+" ("+w.xpath(sel)+")", el.Nodes)
}

func (w *Writer) writeFor(loop forLoop) {
	w.open(kwFor + " $" + loop.ident + " (" + w.xpath(loop.expr) + ")")
	for _, s := range loop.sorts {
		w.writeSort(s)
	}
	w.writeNodes(loop.body.Nodes, false)
	w.close()
}

func (w *Writer) writeSort(el *xml.Element) {
	decl := kwSort
	if sel, ok := el.AttributeValue(attrSelect); ok {
		decl += " " + w.xpath(sel)
	}
	w.writeOptions(decl, el, sortAttributes, nil)
}

func (w *Writer) writeNumber(el *xml.Element) {
	decl := kwNumber
	if value, ok := el.AttributeValue(attrValue); ok {
		decl += " " + w.xpath(value)
	}
	w.writeOptions(decl, el, numberAttributes, []string{kwCount, kwFrom})
}

// writeOptions writes the attributes of sort and number as the statements
// of a block.
func (w *Writer) writeOptions(decl string, el *xml.Element, words, patterns []string) {
	var options []string
	for _, word := range words {
		value, ok := el.AttributeValue(statementAttr(word))
		if !ok {
			continue
		}
		if slices.Contains(patterns, word) {
			value = w.xpath(value)
		} else {
			value = w.avt(value)
		}
		options = append(options, attrStatement(statementAttr(word))+" "+value+";")
	}
	if len(options) == 0 {
		w.line(decl + ";")
		return
	}
	w.open(decl)
	for _, o := range options {
		w.line(o)
	}
	w.close()
}

func (w *Writer) writeMessage(el *xml.Element) {
	kw := kwMessage
	if term, _ := el.AttributeValue(attrTerminate); term == "yes" {
		kw = kwTerminate
	}
	w.writeContent(kw, el)
}

func (w *Writer) writeComment(el *xml.Element) {
	w.writeContent(kwComment, el)
}

// writeNamed writes xsl:attribute and xsl:element. Their name is an
// attribute value template.
func (w *Writer) writeNamed(el *xml.Element) {
	if !hasOnly(el, attrName) {
		w.writeLiteral(el, "")
		return
	}
	name, _ := el.AttributeValue(attrName)
	decl := el.Name + " " + w.avt(name)
	if len(w.meaningful(el.Nodes)) == 0 {
		w.line(decl + ";")
		return
	}
	w.writeBlock(decl, el.Nodes)
}

func (w *Writer) writeInstruction(el *xml.Element) {
	name, _ := el.AttributeValue(attrName)
	decl := kwProcessing + " " + w.avt(name)
	nodes := w.meaningful(el.Nodes)
	if len(nodes) == 0 {
		w.line(decl + ";")
		return
	}
	if len(nodes) == 1 {
		if value, ok := w.inlineContent(nodes[0]); ok {
			w.line(decl + " " + value + ";")
			return
		}
	}
	w.writeBlock(decl, el.Nodes)
}

func (w *Writer) writeFallback(el *xml.Element) {
	w.writeBlock(kwFallback, el.Nodes)
}

// writeRemark writes a comment. Each line of the comment is written in
// turn; a comment end found in the text is broken.
func (w *Writer) writeRemark(c *xml.Comment) {
	text := strings.ReplaceAll(c.Content, "*/", "* /")
	lines := strings.Split(text, "\n")
	for i := 0; i < len(lines); i++ {
		var str strings.Builder
		if i == 0 {
			str.WriteString("/*")
		} else {
			str.WriteString(" ")
		}
		str.WriteString(lines[i])
		if i == len(lines)-1 {
			str.WriteString("*/")
		}
		w.line(str.String())
	}
}

func (w *Writer) xpath(str string) string {
	expr, err := ParseExpr(str)
	if err != nil {
		return w.failed("expression", err)
	}
	return w.print(expr, false)
}

func (w *Writer) print(expr Expr, attr bool) string {
	p := printer{
		ternaries: w.ternaries,
		attr:      attr,
	}
	p.print(expr, powLowest)
	return p.String()
}

func (w *Writer) avt(str string) string {
	value, err := formatAVT(str, w.ternaries)
	if err != nil {
		return w.failed("avt", err)
	}
	return value
}

func (w *Writer) failed(ctx string, err error) string {
	w.errors++
	w.Error(ctx, err)
	return errorSentinel
}

func (w *Writer) line(str string) {
	for i := 0; i < w.level; i++ {
		w.writer.WriteString(w.Indent)
	}
	w.writer.WriteString(str)
	w.writer.WriteString("\n")
}

func (w *Writer) open(str string) {
	w.line(str + " {")
	w.level++
}

func (w *Writer) reopen(str string) {
	w.level--
	w.line("} " + str + " {")
	w.level++
}

func (w *Writer) close() {
	w.level--
	w.line("}")
}
