package slax

import (
	"strings"
)

// printer writes an expression back with the operators of SLAX. Calls to
// concat become chains of "_" and references to the variables created for
// ternary expressions are replaced by the ternary expression itself.
type printer struct {
	str       strings.Builder
	ternaries map[string]ternary

	attr     bool
	nesting  int
	noConcat bool
}

func (p *printer) String() string {
	return p.str.String()
}

func (p *printer) print(expr Expr, ctx int) {
	switch e := expr.(type) {
	case literal:
		p.str.WriteString(quoteSlax(e.value))
	case number:
		p.str.WriteString(e.value)
	case variable:
		p.str.WriteString("$")
		p.str.WriteString(e.ident)
	case name:
		p.str.WriteString(e.ident)
	case attr:
		p.str.WriteString("@")
		p.str.WriteString(e.ident)
	case axis:
		p.str.WriteString(e.kind)
		p.str.WriteString("::")
		p.print(e.next, powStep+1)
	case call:
		p.printCall(e, ctx)
	case group:
		p.nested(func() {
			p.str.WriteString("(")
			p.print(e.expr, powLowest)
			p.str.WriteString(")")
		})
	case binary:
		p.printBinary(e, ctx)
	case unary:
		p.str.WriteString(e.op)
		p.print(e.expr, powPrefix)
	case root:
		p.str.WriteString(e.op)
		if e.next != nil {
			p.print(e.next, powStep+1)
		}
	case step:
		p.print(e.curr, powStep)
		p.str.WriteString(e.op)
		p.print(e.next, powStep+1)
	case filter:
		p.print(e.expr, powPred)
		p.nested(func() {
			p.str.WriteString("[")
			p.print(e.pred, powLowest)
			p.str.WriteString("]")
		})
	case ternary:
		p.printTernary(e, ctx)
	}
}

func (p *printer) printBinary(expr binary, ctx int) {
	pow := opBindings[expr.op]
	paren := pow < ctx
	if p.attr && p.nesting == 0 && (expr.op == ">" || expr.op == ">=") {
		paren = true
	}
	write := func() {
		p.print(expr.left, pow)
		p.str.WriteString(" ")
		p.str.WriteString(slaxOperator(expr.op))
		p.str.WriteString(" ")
		p.print(expr.right, pow+1)
	}
	if !paren {
		write()
		return
	}
	p.nested(func() {
		p.str.WriteString("(")
		write()
		p.str.WriteString(")")
	})
}

func (p *printer) printTernary(expr ternary, ctx int) {
	write := func() {
		p.print(expr.cond, powTernary+1)
		if expr.then == nil {
			p.str.WriteString(" ?: ")
		} else {
			p.str.WriteString(" ? ")
			p.print(expr.then, powTernary+1)
			p.str.WriteString(" : ")
		}
		p.print(expr.alt, powLowest)
	}
	if ctx <= powTernary {
		write()
		return
	}
	p.nested(func() {
		p.str.WriteString("(")
		write()
		p.str.WriteString(")")
	})
}

func (p *printer) printCall(expr call, ctx int) {
	if t, ok := p.lookup(expr); ok {
		p.printTernary(t, ctx)
		return
	}
	switch {
	case expr.ident == "concat" && p.unfold(expr, ctx):
		p.printConcat(expr, ctx)
		return
	case expr.ident == buildSequence && len(expr.args) == 2 && ctx <= powSequence && !p.noConcat:
		p.print(expr.args[0], powSequence)
		p.str.WriteString(" ... ")
		p.print(expr.args[1], powSequence+1)
		return
	}
	p.nested(func() {
		p.str.WriteString(expr.ident)
		p.str.WriteString("(")
		for i := range expr.args {
			if i > 0 {
				p.str.WriteString(", ")
			}
			p.print(expr.args[i], powLowest)
		}
		p.str.WriteString(")")
	})
}

// unfold reports whether a call to concat can be written with "_". Two
// literals next to each other would be folded when parsed again.
func (p *printer) unfold(expr call, ctx int) bool {
	if len(expr.args) < 2 || ctx > powAdd || p.noConcat {
		return false
	}
	for i := 1; i < len(expr.args); i++ {
		_, ok1 := expr.args[i-1].(literal)
		_, ok2 := expr.args[i].(literal)
		if ok1 && ok2 {
			return false
		}
	}
	return true
}

func (p *printer) printConcat(expr call, ctx int) {
	p.noConcat = true
	defer func() {
		p.noConcat = false
	}()
	for i := range expr.args {
		pow := powAdd
		if i > 0 {
			p.str.WriteString(" _ ")
			pow++
		}
		p.print(expr.args[i], pow)
	}
}

// lookup gives the ternary expression referenced by a call to
// slax:value.
func (p *printer) lookup(expr call) (ternary, bool) {
	if expr.ident != ternaryValue || len(expr.args) != 1 || p.ternaries == nil {
		return ternary{}, false
	}
	v, ok := expr.args[0].(variable)
	if !ok {
		return ternary{}, false
	}
	t, ok := p.ternaries[v.ident]
	return t, ok
}

// nested runs fn as if it was written inside parentheses: the operators
// of fn can not end an attribute and concat can be unfolded again.
func (p *printer) nested(fn func()) {
	noConcat := p.noConcat
	p.nesting++
	p.noConcat = false
	defer func() {
		p.nesting--
		p.noConcat = noConcat
	}()
	fn()
}

func slaxOperator(op string) string {
	switch op {
	case "=":
		return "=="
	case "and":
		return "&&"
	case "or":
		return "||"
	default:
		return op
	}
}

// quoteSlax returns a literal usable in a SLAX script. Characters that
// can not appear as is are escaped.
func quoteSlax(str string) string {
	quote := byte(dquote)
	if strings.IndexByte(str, dquote) >= 0 && strings.IndexByte(str, squote) < 0 {
		quote = squote
	}
	var buf strings.Builder
	buf.WriteByte(quote)
	for i := 0; i < len(str); i++ {
		switch c := str[i]; c {
		case backslash:
			buf.WriteString(`\\`)
		case nl:
			buf.WriteString(`\n`)
		case cr:
			buf.WriteString(`\r`)
		case tab:
			buf.WriteString(`\t`)
		case quote:
			buf.WriteByte(backslash)
			buf.WriteByte(c)
		default:
			buf.WriteByte(c)
		}
	}
	buf.WriteByte(quote)
	return buf.String()
}
