package slax

import (
	"strings"

	"github.com/midbel/slax/xml"
)

// scanTernaries looks for the variables created for ternary expressions
// and registers the expressions they compute. A variable is not written
// when all its references are slax:value calls, the only form the printer
// replaces.
func (w *Writer) scanTernaries(root *xml.Element) {
	var (
		found = make(map[string][]*xml.Element)
		exprs = make(map[string]ternary)
		refs  []string
		stack = []*xml.Element{root}
	)
	for len(stack) > 0 {
		n := len(stack) - 1
		el := stack[n]
		stack = stack[:n]

		if ident, expr, nodes, ok := detectTernary(el); ok {
			found[ident] = nodes
			exprs[ident] = expr
		}
		for _, a := range el.Attrs {
			refs = append(refs, a.Value())
		}
		for i := len(el.Nodes) - 1; i >= 0; i-- {
			if c, ok := el.Nodes[i].(*xml.Element); ok {
				stack = append(stack, c)
			}
		}
	}
	for ident, nodes := range found {
		if !onlyValueRefs(ident, refs) {
			continue
		}
		w.ternaries[ident] = exprs[ident]
		for _, el := range nodes {
			w.skip[el] = true
		}
	}
}

// onlyValueRefs reports whether the variable is referenced at least once
// and always as the argument of slax:value.
func onlyValueRefs(ident string, values []string) bool {
	var (
		ref   = "$" + ident
		call  = ternaryValue + "(" + ref + ")"
		total int
		calls int
	)
	for _, str := range values {
		for i := 0; ; {
			x := strings.Index(str[i:], ref)
			if x < 0 {
				break
			}
			i += x + len(ref)
			if i < len(str) && isVar(str[i]) {
				continue
			}
			total++
		}
		calls += strings.Count(str, call)
	}
	return total > 0 && total == calls
}

// detectTernary recognizes a ternary variable and gives the nodes created
// for it: the variable itself and the variable of its condition if any.
func detectTernary(el *xml.Element) (string, ternary, []*xml.Element, bool) {
	var expr ternary
	if !isXsl(el, xslVariable) || !hasOnly(el, attrName) {
		return "", expr, nil, false
	}
	ident, _ := el.AttributeValue(attrName)
	if !strings.HasPrefix(ident, ternaryPrefix) || strings.HasSuffix(ident, ternaryCond) {
		return "", expr, nil, false
	}
	list, ok := children(el)
	if !ok || len(list) != 1 || !isXsl(list[0], xslChoose) {
		return "", expr, nil, false
	}
	branches, ok := children(list[0])
	if !ok || len(branches) != 2 || !isXsl(branches[0], xslWhen) || !isXsl(branches[1], xslOtherwise) {
		return "", expr, nil, false
	}
	test, ok := branches[0].AttributeValue(attrTest)
	if !ok {
		return "", expr, nil, false
	}
	then, ok := copyOf(branches[0])
	if !ok {
		return "", expr, nil, false
	}
	alt, ok := copyOf(branches[1])
	if !ok {
		return "", expr, nil, false
	}

	var (
		nodes = []*xml.Element{el}
		err   error
	)
	if ref := "$" + ident + ternaryCond; test == ref && then == ref {
		cv := previousVariable(el, ident+ternaryCond)
		if cv == nil || !hasOnly(cv, attrName, attrSelect) {
			return "", expr, nil, false
		}
		test, _ = cv.AttributeValue(attrSelect)
		nodes = append(nodes, cv)
	} else if expr.then, err = ParseExpr(then); err != nil {
		return "", expr, nil, false
	}
	if expr.cond, err = ParseExpr(test); err != nil {
		return "", expr, nil, false
	}
	if expr.alt, err = ParseExpr(alt); err != nil {
		return "", expr, nil, false
	}
	return ident, expr, nodes, true
}

// copyOf gives the expression of the only xsl:copy-of of an element.
func copyOf(el *xml.Element) (string, bool) {
	list, ok := children(el)
	if !ok || len(list) != 1 || !isXsl(list[0], xslCopyOf) || !hasOnly(list[0], attrSelect) {
		return "", false
	}
	return list[0].AttributeValue(attrSelect)
}

func previousVariable(el *xml.Element, ident string) *xml.Element {
	parent, ok := el.Parent().(*xml.Element)
	if !ok {
		return nil
	}
	for i := el.Position() - 1; i >= 0; i-- {
		prev, ok := parent.Nodes[i].(*xml.Element)
		if !ok {
			continue
		}
		if name, _ := prev.AttributeValue(attrName); isXsl(prev, xslVariable) && name == ident {
			return prev
		}
	}
	return nil
}

// children returns the elements of an element. It fails when the element
// has a comment or a text that is not blank.
func children(el *xml.Element) ([]*xml.Element, bool) {
	var list []*xml.Element
	for _, n := range el.Nodes {
		switch n := n.(type) {
		case *xml.Element:
			list = append(list, n)
		case *xml.Text:
			if !n.Blank() {
				return nil, false
			}
		default:
			return nil, false
		}
	}
	return list, true
}

// hasOnly reports whether the element has no other attributes than the
// given ones. Namespace declarations are not allowed either.
func hasOnly(el *xml.Element, names ...string) bool {
	for _, a := range el.Attrs {
		if a.IsNamespace() || a.Space != "" {
			return false
		}
		found := false
		for _, n := range names {
			if a.Name == n {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// nextElement gives the index of the first element after pos. Blank texts
// and the variables of ternary expressions are skipped.
func (w *Writer) nextElement(nodes []xml.Node, pos int) (*xml.Element, int) {
	for i := pos + 1; i < len(nodes); i++ {
		switch n := nodes[i].(type) {
		case *xml.Text:
			if !n.Blank() {
				return nil, -1
			}
		case *xml.Element:
			if w.skip[n] {
				continue
			}
			return n, i
		default:
			return nil, -1
		}
	}
	return nil, -1
}

type forLoop struct {
	ident string
	expr  string
	sorts []*xml.Element
	body  *xml.Element
}

// detectFor recognizes the elements created by a for loop: a variable
// saving the context node, a xsl:for-each over the values holding the
// loop variable and a xsl:for-each restoring the context node. Nothing
// else is accepted.
func (w *Writer) detectFor(nodes []xml.Node, pos int) (forLoop, int, bool) {
	var loop forLoop
	dot, ok := nodes[pos].(*xml.Element)
	if !ok || !isXsl(dot, xslVariable) || !hasOnly(dot, attrName, attrSelect) || len(dot.Nodes) > 0 {
		return loop, pos, false
	}
	ident, _ := dot.AttributeValue(attrName)
	if sel, _ := dot.AttributeValue(attrSelect); sel != "." || !strings.HasPrefix(ident, dotPrefix) {
		return loop, pos, false
	}
	outer, next := w.nextElement(nodes, pos)
	if outer == nil || !isXsl(outer, xslForEach) || !hasOnly(outer, attrSelect) {
		return loop, pos, false
	}
	loop.expr, _ = outer.AttributeValue(attrSelect)

	list, ok := children(outer)
	if !ok {
		return loop, pos, false
	}
	var i int
	for i < len(list) && isXsl(list[i], xslSort) {
		loop.sorts = append(loop.sorts, list[i])
		i++
	}
	if len(list)-i != 2 {
		return loop, pos, false
	}
	vr, inner := list[i], list[i+1]
	if !isXsl(vr, xslVariable) || !hasOnly(vr, attrName, attrSelect) || len(vr.Nodes) > 0 {
		return loop, pos, false
	}
	if sel, _ := vr.AttributeValue(attrSelect); sel != "." {
		return loop, pos, false
	}
	loop.ident, _ = vr.AttributeValue(attrName)

	if !isXsl(inner, xslForEach) || !hasOnly(inner, attrSelect) {
		return loop, pos, false
	}
	if sel, _ := inner.AttributeValue(attrSelect); sel != "$"+ident {
		return loop, pos, false
	}
	loop.body = inner
	return loop, next, true
}

type mutable struct {
	ident string
	value *xml.Element
}

// detectMvar recognizes a mutable variable: its shadow variable followed
// by the variable itself. The value comes from the shadow when it was
// given by a block.
func (w *Writer) detectMvar(nodes []xml.Node, pos int) (mutable, int, bool) {
	var mv mutable
	shadow, ok := nodes[pos].(*xml.Element)
	if !ok || !isXsl(shadow, xslVariable) || !hasOnly(shadow, attrName, attrMvarName) {
		return mv, pos, false
	}
	mv.ident, _ = shadow.AttributeValue(attrMvarName)
	svar := svarName(mv.ident)
	if name, _ := shadow.AttributeValue(attrName); name != svar {
		return mv, pos, false
	}
	vr, next := w.nextElement(nodes, pos)
	if vr == nil || !isXsl(vr, xslVariable) || !hasOnly(vr, attrName, attrSelect, attrMutable, attrSvarName) {
		return mv, pos, false
	}
	name, _ := vr.AttributeValue(attrName)
	sv, _ := vr.AttributeValue(attrSvarName)
	mut, _ := vr.AttributeValue(attrMutable)
	if name != mv.ident || sv != svar || mut != "yes" {
		return mv, pos, false
	}
	sel, _ := vr.AttributeValue(attrSelect)
	if sel == mvarInitCall(mv.ident) && len(vr.Nodes) == 0 {
		mv.value = shadow
		return mv, next, true
	}
	if list, ok := children(shadow); !ok || len(list) > 0 {
		return mv, pos, false
	}
	mv.value = vr
	return mv, next, true
}

func mvarInitCall(ident string) string {
	svar := svarName(ident)
	return mvarInit + "(" + quoteXPath(ident) + ", " + quoteXPath(svar) + ", $" + svar + ")"
}

// detectNodeSet recognizes a variable assigned with ":=" from a block: a
// temporary variable holding the block and the variable converting it to
// a node set.
func (w *Writer) detectNodeSet(nodes []xml.Node, pos int) (string, *xml.Element, int, bool) {
	temp, ok := nodes[pos].(*xml.Element)
	if !ok || !isXsl(temp, xslVariable) || !hasOnly(temp, attrName) {
		return "", nil, pos, false
	}
	name, _ := temp.AttributeValue(attrName)
	ix := strings.LastIndex(name, tempInfix)
	if ix <= 0 || !isNumber(name[ix+len(tempInfix):]) {
		return "", nil, pos, false
	}
	ident := name[:ix]
	vr, next := w.nextElement(nodes, pos)
	if vr == nil || !isXsl(vr, xslVariable) || !hasOnly(vr, attrName, attrSelect) || len(vr.Nodes) > 0 {
		return "", nil, pos, false
	}
	other, _ := vr.AttributeValue(attrName)
	sel, _ := vr.AttributeValue(attrSelect)
	if other != ident || sel != nodeSetFunc+"($"+name+")" {
		return "", nil, pos, false
	}
	return ident, temp, next, true
}

func isNumber(str string) bool {
	if str == "" {
		return false
	}
	for i := 0; i < len(str); i++ {
		if !isDigit(str[i]) {
			return false
		}
	}
	return true
}
