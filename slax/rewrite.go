package slax

import (
	"strings"

	"github.com/midbel/slax/xml"
)

// Lower converts an expression into a list of segments. SLAX only
// operators are rewritten into their XPath equivalent: ternary expressions
// are replaced by a reference to a generated variable and concatenations
// become a single call to concat.
func (b *Builder) Lower(expr Expr) int {
	s := b.segs
	switch e := expr.(type) {
	case literal:
		return s.Quote(e.value, e.quote)
	case number:
		return s.Create(Number, e.value)
	case variable:
		return s.Create(Variable, "$"+e.ident)
	case name:
		return s.Create(nameKind(e.ident), e.ident)
	case attr:
		at := s.Create(opAt, "@")
		return s.Link(at, s.Create(nameKind(e.ident), e.ident))
	case axis:
		head := s.Create(AxisName, e.kind)
		s.Link(head, s.Create(opAxis, "::"))
		return s.Link(head, b.Lower(e.next))
	case call:
		return b.lowerCall(e.ident, e.args)
	case group:
		if _, ok := e.expr.(ternary); ok {
			return b.Lower(e.expr)
		}
		head := s.Create(begGrp, "(")
		s.Link(head, b.Lower(e.expr))
		return s.Link(head, s.Create(endGrp, ")"))
	case binary:
		switch e.op {
		case "_":
			return s.Concat(b.lowerOperand(e.left), b.lowerOperand(e.right))
		case "...":
			b.UseSlaxNS()
			return b.lowerCall(buildSequence, []Expr{e.left, e.right})
		}
		head := b.Lower(e.left)
		s.Link(head, s.Create(operatorKind(e.op), e.op))
		return s.Link(head, b.Lower(e.right))
	case unary:
		if e.op == "!" {
			return b.lowerCall("not", []Expr{e.expr})
		}
		head := s.Create(opSub, "-")
		s.list[head].flags |= segUnary
		return s.Link(head, b.Lower(e.expr))
	case root:
		kind := opSlash
		if e.op == "//" {
			kind = opDescendant
		}
		head := s.Create(kind, e.op)
		if e.next == nil {
			return head
		}
		return s.Link(head, b.Lower(e.next))
	case step:
		kind := opSlash
		if e.op == "//" {
			kind = opDescendant
		}
		head := b.Lower(e.curr)
		s.Link(head, s.Create(kind, e.op))
		return s.Link(head, b.Lower(e.next))
	case filter:
		head := b.Lower(e.expr)
		s.Link(head, s.Create(begPred, "["))
		s.Link(head, b.Lower(e.pred))
		return s.Link(head, s.Create(endPred, "]"))
	case ternary:
		return b.lowerTernary(e)
	default:
		return nilSeg
	}
}

// lowerOperand lowers an operand of the concatenation operator. The
// operand becomes an argument of concat so its parentheses are useless.
func (b *Builder) lowerOperand(expr Expr) int {
	for {
		g, ok := expr.(group)
		if !ok {
			break
		}
		expr = g.expr
	}
	return b.Lower(expr)
}

func (b *Builder) lowerCall(ident string, args []Expr) int {
	s := b.segs
	head := s.Create(FuncName, ident)
	s.Link(head, s.Create(begGrp, "("))
	for i := range args {
		if i > 0 {
			s.Link(head, s.Create(opComma, ","))
		}
		s.Link(head, b.Lower(args[i]))
	}
	return s.Link(head, s.Create(endGrp, ")"))
}

func nameKind(ident string) rune {
	switch ident {
	case ".":
		return opDot
	case "..":
		return opParent
	case "*":
		return opStar
	default:
		return Bare
	}
}

func operatorKind(op string) rune {
	switch op {
	case "and", "or", "div", "mod":
		return Keyword
	case "=":
		return opEqual
	case "!=":
		return opNe
	case "<":
		return opLt
	case "<=":
		return opLe
	case ">":
		return opGt
	case ">=":
		return opGe
	case "+":
		return opAdd
	case "-":
		return opSub
	case "*":
		return opMul
	case "|":
		return opUnion
	default:
		return Bare
	}
}

// isConstant reports whether the expression is only made of literals and
// can be folded into one literal.
func isConstant(expr Expr) bool {
	switch e := expr.(type) {
	case literal:
		return true
	case group:
		return isConstant(e.expr)
	case binary:
		return e.op == "_" && isConstant(e.left) && isConstant(e.right)
	default:
		return false
	}
}

func (b *Builder) lowerTernary(expr ternary) int {
	var (
		cond = b.Lower(expr.cond)
		then = nilSeg
		alt  int
	)
	if expr.then != nil {
		then = b.Lower(expr.then)
	}
	alt = b.Lower(expr.alt)
	return b.expandTernary(b.segs.Ternary(cond, then, alt))
}

// expandTernary creates the variable computing the value of a ternary
// expression and returns the reference to the variable that replaces the
// expression.
func (b *Builder) expandTernary(head int) int {
	cond, then, alt, ok := b.segs.ternaryParts(head)
	if !ok {
		return head
	}
	b.UseSlaxNS()

	ident := b.nextTernary()
	if then == "" {
		cv := newXsl(xslVariable, attrName, ident+ternaryCond, attrSelect, cond)
		b.Defer(cv)
		cond = "$" + ident + ternaryCond
		then = cond
	}
	var (
		vr     = newXsl(xslVariable, attrName, ident)
		choose = newXsl(xslChoose)
		when   = newXsl(xslWhen, attrTest, cond)
		other  = newXsl(xslOtherwise)
	)
	when.Append(newXsl(xslCopyOf, attrSelect, then))
	other.Append(newXsl(xslCopyOf, attrSelect, alt))
	choose.Append(when)
	choose.Append(other)
	vr.Append(choose)
	b.Defer(vr)

	s := b.segs
	ref := s.Create(FuncName, ternaryValue)
	s.Link(ref, s.Create(begGrp, "("))
	s.Link(ref, s.Create(Variable, "$"+ident))
	return s.Link(ref, s.Create(endGrp, ")"))
}

// OpenFor lowers a for loop. The context node is saved in a variable
// before iterating and restored for the body of the loop.
func (b *Builder) OpenFor(ident string, expr Expr) {
	dot := b.nextDot()
	b.AddChild(newXsl(xslVariable, attrName, dot, attrSelect, "."))

	b.OpenXsl(xslForEach)
	b.AddAttribute(attrSelect, expr, StyleXPath)
	b.AddChild(newXsl(xslVariable, attrName, ident, attrSelect, "."))
	b.DefineVar(ident, false)

	b.OpenXsl(xslForEach)
	b.SetAttribute(attrSelect, "$"+dot)
}

func (b *Builder) CloseFor() {
	b.Close()
	b.Close()
}

// OpenSort opens a xsl:sort. A sort written in the body of a for loop is
// moved to the loop over the values, after the sorts already there.
func (b *Builder) OpenSort() *xml.Element {
	curr := b.Current()
	if !isForBody(curr) {
		return b.OpenXsl(xslSort)
	}
	outer := curr.Parent().(*xml.Element)
	var pos int
	for pos < len(outer.Nodes) {
		el, ok := outer.Nodes[pos].(*xml.Element)
		if !ok || !isXsl(el, xslSort) {
			break
		}
		pos++
	}
	el := xml.NewElement(xslName(xslSort))
	outer.InsertNode(pos, el)
	b.push(el)
	return el
}

func isForBody(el *xml.Element) bool {
	if !isXsl(el, xslForEach) {
		return false
	}
	sel, _ := el.AttributeValue(attrSelect)
	if !strings.HasPrefix(sel, "$"+dotPrefix) {
		return false
	}
	outer, ok := el.Parent().(*xml.Element)
	return ok && isXsl(outer, xslForEach)
}

// AddMvar creates a mutable variable initialized by an expression. The
// shadow variable is inserted before the variable once it is complete.
func (b *Builder) AddMvar(ident string, expr Expr) {
	svar := svarName(ident)
	vr := b.OpenXsl(xslVariable)
	b.SetAttribute(attrName, ident)
	if expr != nil {
		b.AddAttribute(attrSelect, expr, StyleXPath)
	}
	b.SetAttribute(attrMutable, "yes")
	b.SetAttribute(attrSvarName, svar)
	b.Close()

	shadow := newXsl(xslVariable, attrName, svar, attrMvarName, ident)
	if parent, ok := vr.Parent().(*xml.Element); ok {
		parent.InsertNode(vr.Position(), shadow)
	}
	b.DefineVar(ident, true)
}

// OpenMvar starts a mutable variable whose initial value is given by a
// block. The content of the block goes into the shadow variable.
func (b *Builder) OpenMvar(ident string) *xml.Element {
	el := b.OpenXsl(xslVariable)
	b.SetAttribute(attrName, svarName(ident))
	b.SetAttribute(attrMvarName, ident)
	return el
}

func (b *Builder) CloseMvar(ident string) {
	b.Close()
	b.UseSlaxNS()

	svar := svarName(ident)
	init := mvarInit + "(" + quoteXPath(ident) + ", " + quoteXPath(svar) + ", $" + svar + ")"
	vr := newXsl(xslVariable, attrName, ident, attrSelect, init, attrMutable, "yes", attrSvarName, svar)
	b.AddChild(vr)
	b.DefineVar(ident, true)
}

// OpenSetVar opens the element used by set and append on a mutable
// variable.
func (b *Builder) OpenSetVar(ident string, appending bool) (*xml.Element, error) {
	if err := b.CheckMutable(ident); err != nil {
		return nil, err
	}
	name := slaxSetVariable
	if appending {
		name = slaxAppendVariable
	}
	el := b.OpenSlax(name)
	b.SetAttribute(attrName, ident)
	b.SetAttribute(attrSvarName, svarName(ident))
	return el, nil
}

// AddNodeSet creates a variable holding the node set of an expression
// instead of a result tree fragment.
func (b *Builder) AddNodeSet(ident string, expr Expr) {
	b.UseExtNS()
	b.OpenXsl(xslVariable)
	b.SetAttribute(attrName, ident)

	s := b.segs
	head := s.Create(FuncName, nodeSetFunc)
	s.Link(head, s.Create(begGrp, "("))
	s.Link(head, b.Lower(expr))
	s.Link(head, s.Create(endGrp, ")"))
	b.AddSegments(attrSelect, head, StyleXPath)
	b.Close()
	b.DefineVar(ident, false)
}

// OpenNodeSet starts the temporary variable holding the content of a block
// assigned with ":=".
func (b *Builder) OpenNodeSet(ident string) string {
	temp := b.nextTemp(ident)
	b.OpenXsl(xslVariable)
	b.SetAttribute(attrName, temp)
	return temp
}

func (b *Builder) CloseNodeSet(ident, temp string) {
	b.Close()
	b.UseExtNS()
	sel := nodeSetFunc + "($" + temp + ")"
	b.AddChild(newXsl(xslVariable, attrName, ident, attrSelect, sel))
	b.DefineVar(ident, false)
}

// CheckIf turns a xsl:choose with a single xsl:when into a xsl:if.
func (b *Builder) CheckIf(choose *xml.Element) {
	var (
		when  *xml.Element
		count int
	)
	for _, el := range choose.Elements() {
		count++
		if isXsl(el, xslWhen) {
			when = el
		}
	}
	if count != 1 || when == nil {
		return
	}
	test, _ := when.AttributeValue(attrTest)
	choose.QName = xslName(xslIf)
	choose.SetAttribute(xml.NewAttribute(xml.LocalName(attrTest), test))

	pos := when.Position()
	nodes := when.Nodes
	when.Nodes = nil
	choose.RemoveNode(pos)
	choose.InsertNodes(pos, nodes)
}

// newXsl creates a XSLT element with its attributes given as pairs of name
// and value.
func newXsl(name string, attrs ...string) *xml.Element {
	el := xml.NewElement(xslName(name))
	for i := 0; i+1 < len(attrs); i += 2 {
		el.SetAttribute(xml.NewAttribute(xml.LocalName(attrs[i]), attrs[i+1]))
	}
	return el
}
