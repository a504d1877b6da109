package slax

import (
	"fmt"
	"io"
	"strings"
)

type Expr interface {
	precedence() int
}

type literal struct {
	value string
	quote byte
}

func (_ literal) precedence() int {
	return powPrimary
}

type number struct {
	value string
}

func (_ number) precedence() int {
	return powPrimary
}

type variable struct {
	ident string
}

func (_ variable) precedence() int {
	return powPrimary
}

// name is a name test. It is also used for the abbreviated steps "." and
// "..", and for the wildcards.
type name struct {
	ident string
}

func (_ name) precedence() int {
	return powPrimary
}

type attr struct {
	ident string
}

func (_ attr) precedence() int {
	return powPrimary
}

type axis struct {
	kind string
	next Expr
}

func (_ axis) precedence() int {
	return powPrimary
}

type call struct {
	ident string
	args  []Expr
}

func (_ call) precedence() int {
	return powPrimary
}

type group struct {
	expr Expr
}

func (_ group) precedence() int {
	return powPrimary
}

type binary struct {
	left  Expr
	right Expr
	op    string
}

func (b binary) precedence() int {
	return opBindings[b.op]
}

type unary struct {
	op   string
	expr Expr
}

func (_ unary) precedence() int {
	return powPrefix
}

type root struct {
	op   string
	next Expr
}

func (_ root) precedence() int {
	return powStep
}

type step struct {
	curr Expr
	next Expr
	op   string
}

func (_ step) precedence() int {
	return powStep
}

type filter struct {
	expr Expr
	pred Expr
}

func (_ filter) precedence() int {
	return powPred
}

// ternary is the conditional expression. then is nil for "cond ?: alt".
type ternary struct {
	cond Expr
	then Expr
	alt  Expr
}

func (_ ternary) precedence() int {
	return powTernary
}

const (
	powLowest = iota
	powTernary
	powSequence
	powOr
	powAnd
	powEq
	powCmp
	powAdd
	powMul
	powPrefix
	powUnion
	powStep
	powPred
	powPrimary
)

var opBindings = map[string]int{
	"...": powSequence,
	"or":  powOr,
	"and": powAnd,
	"=":   powEq,
	"!=":  powEq,
	"<":   powCmp,
	"<=":  powCmp,
	">":   powCmp,
	">=":  powCmp,
	"+":   powAdd,
	"-":   powAdd,
	"_":   powAdd,
	"*":   powMul,
	"div": powMul,
	"mod": powMul,
	"|":   powUnion,
	"/":   powStep,
	"//":  powStep,
}

// binaryOp gives the XPath operator of the token when it can be used as an
// infix operator.
func binaryOp(tok Token) (string, bool) {
	switch tok.Type {
	case opOr:
		return "or", true
	case opAnd:
		return "and", true
	case opEq, opEqual:
		return "=", true
	case opNe:
		return "!=", true
	case opLt:
		return "<", true
	case opLe:
		return "<=", true
	case opGt:
		return ">", true
	case opGe:
		return ">=", true
	case opAdd:
		return "+", true
	case opSub:
		return "-", true
	case opConcat:
		return "_", true
	case opMul:
		return "*", true
	case opUnion:
		return "|", true
	case opEllipsis:
		return "...", true
	case Keyword:
		switch tok.Literal {
		case kwAnd, kwOr, kwDiv, kwMod:
			return tok.Literal, true
		}
	}
	return "", false
}

func (p *Parser) setupExpr() {
	p.infix = map[rune]func(Expr) (Expr, error){
		opOr:         p.parseBinary,
		opAnd:        p.parseBinary,
		opEq:         p.parseBinary,
		opEqual:      p.parseBinary,
		opNe:         p.parseBinary,
		opLt:         p.parseBinary,
		opLe:         p.parseBinary,
		opGt:         p.parseBinary,
		opGe:         p.parseBinary,
		opAdd:        p.parseBinary,
		opSub:        p.parseBinary,
		opConcat:     p.parseBinary,
		opMul:        p.parseBinary,
		opUnion:      p.parseBinary,
		opEllipsis:   p.parseBinary,
		Keyword:      p.parseBinary,
		opSlash:      p.parseStep,
		opDescendant: p.parseStep,
		begPred:      p.parseFilter,
		opQuestion:   p.parseTernary,
	}
	p.prefix = map[rune]func() (Expr, error){
		Quoted:       p.parseLiteral,
		Number:       p.parseNumber,
		Variable:     p.parseVariable,
		Bare:         p.parseName,
		Keyword:      p.parseName,
		opStar:       p.parseName,
		opDot:        p.parseName,
		opParent:     p.parseName,
		FuncName:     p.parseCall,
		AxisName:     p.parseAxis,
		opAt:         p.parseAttr,
		begGrp:       p.parseGroup,
		opSub:        p.parseUnary,
		opNot:        p.parseUnary,
		opSlash:      p.parseRoot,
		opDescendant: p.parseRoot,
	}
}

func (p *Parser) parseExpr(pow int) (Expr, error) {
	fn, ok := p.prefix[p.curr.Type]
	if !ok {
		return nil, p.unexpected("expression")
	}
	left, err := fn()
	if err != nil {
		return nil, err
	}
	for !p.done() && pow < p.power() {
		fn, ok := p.infix[p.curr.Type]
		if !ok {
			break
		}
		if left, err = fn(left); err != nil {
			return nil, err
		}
	}
	return left, nil
}

// power gives the binding power of the current token used as an infix
// operator.
func (p *Parser) power() int {
	switch p.curr.Type {
	case opSlash, opDescendant:
		return powStep
	case begPred:
		return powPred
	case opQuestion:
		return powTernary
	case opGt:
		if p.attrValue && p.nesting == 0 {
			return powLowest
		}
	}
	op, ok := binaryOp(p.curr)
	if !ok {
		return powLowest
	}
	return opBindings[op]
}

func (p *Parser) parseBinary(left Expr) (Expr, error) {
	op, ok := binaryOp(p.curr)
	if !ok {
		return nil, p.unexpected("operator")
	}
	pow := opBindings[op]
	p.next()
	right, err := p.parseExpr(pow)
	if err != nil {
		return nil, err
	}
	expr := binary{
		left:  left,
		right: right,
		op:    op,
	}
	return expr, nil
}

func (p *Parser) parseStep(left Expr) (Expr, error) {
	op := p.curr.Literal
	p.next()
	next, err := p.parseExpr(powStep)
	if err != nil {
		return nil, err
	}
	expr := step{
		curr: left,
		next: next,
		op:   op,
	}
	return expr, nil
}

func (p *Parser) parseFilter(left Expr) (Expr, error) {
	p.enterNesting()
	defer p.leaveNesting()

	p.next()
	pred, err := p.parseExpr(powLowest)
	if err != nil {
		return nil, err
	}
	if !p.is(endPred) {
		return nil, p.unexpected("predicate")
	}
	p.next()
	expr := filter{
		expr: left,
		pred: pred,
	}
	return expr, nil
}

func (p *Parser) parseTernary(left Expr) (Expr, error) {
	p.next()
	expr := ternary{
		cond: left,
	}
	if !p.is(opColon) {
		then, err := p.parseExpr(powTernary)
		if err != nil {
			return nil, err
		}
		expr.then = then
		if !p.is(opColon) {
			return nil, p.unexpected("ternary")
		}
	}
	p.next()
	alt, err := p.parseExpr(powLowest)
	if err != nil {
		return nil, err
	}
	expr.alt = alt
	return expr, nil
}

func (p *Parser) parseLiteral() (Expr, error) {
	defer p.next()
	expr := literal{
		value: p.curr.Literal,
		quote: p.curr.Quote,
	}
	return expr, nil
}

func (p *Parser) parseNumber() (Expr, error) {
	defer p.next()
	return number{value: p.curr.Literal}, nil
}

func (p *Parser) parseVariable() (Expr, error) {
	defer p.next()
	if p.curr.Literal == "" {
		return nil, p.unexpected("variable")
	}
	return variable{ident: p.curr.Literal}, nil
}

func (p *Parser) parseName() (Expr, error) {
	defer p.next()
	return name{ident: p.curr.Literal}, nil
}

func (p *Parser) parseAttr() (Expr, error) {
	p.next()
	switch p.curr.Type {
	case Bare, Keyword, opStar, opMul:
	default:
		return nil, p.unexpected("attribute")
	}
	defer p.next()
	return attr{ident: p.curr.Literal}, nil
}

func (p *Parser) parseAxis() (Expr, error) {
	kind := p.curr.Literal
	if !isAxisName(kind) {
		return nil, p.errorf("%s: unknown axis", kind)
	}
	p.next()
	if !p.is(opAxis) {
		return nil, p.unexpected("axis")
	}
	p.next()
	next, err := p.parseExpr(powStep)
	if err != nil {
		return nil, err
	}
	expr := axis{
		kind: kind,
		next: next,
	}
	return expr, nil
}

func (p *Parser) parseCall() (Expr, error) {
	p.enterNesting()
	defer p.leaveNesting()

	expr := call{
		ident: p.curr.Literal,
	}
	p.next()
	if !p.is(begGrp) {
		return nil, p.unexpected("call")
	}
	p.next()
	for !p.done() && !p.is(endGrp) {
		arg, err := p.parseExpr(powLowest)
		if err != nil {
			return nil, err
		}
		expr.args = append(expr.args, arg)
		switch {
		case p.is(opComma):
			p.next()
			if p.is(endGrp) {
				return nil, p.unexpected("call")
			}
		case p.is(endGrp):
		default:
			return nil, p.unexpected("call")
		}
	}
	if !p.is(endGrp) {
		return nil, p.unexpected("call")
	}
	p.next()
	return expr, nil
}

func (p *Parser) parseGroup() (Expr, error) {
	p.enterNesting()
	defer p.leaveNesting()

	p.next()
	inner, err := p.parseExpr(powLowest)
	if err != nil {
		return nil, err
	}
	if !p.is(endGrp) {
		return nil, p.unexpected("group")
	}
	p.next()
	return group{expr: inner}, nil
}

func (p *Parser) parseUnary() (Expr, error) {
	op := p.curr.Literal
	p.next()
	next, err := p.parseExpr(powPrefix)
	if err != nil {
		return nil, err
	}
	expr := unary{
		op:   op,
		expr: next,
	}
	return expr, nil
}

func (p *Parser) parseRoot() (Expr, error) {
	expr := root{
		op: p.curr.Literal,
	}
	p.next()
	switch p.curr.Type {
	case Bare, Keyword, opStar, opAt, AxisName, FuncName, opDot, opParent:
		next, err := p.parseExpr(powStep)
		if err != nil {
			return nil, err
		}
		expr.next = next
	default:
		if expr.op == "//" {
			return nil, p.unexpected("path")
		}
	}
	return expr, nil
}

func (p *Parser) enterNesting() {
	p.nesting++
}

func (p *Parser) leaveNesting() {
	p.nesting--
}

// ParseExpr parses an XPath expression as found in the attributes of an
// XSLT document.
func ParseExpr(str string) (Expr, error) {
	p := NewParser(strings.NewReader(str), WithFlags(Strict|NoSlaxKeywords))
	return p.ParseExpr()
}

// ParseExpr parses a whole input as one expression.
func (p *Parser) ParseExpr() (Expr, error) {
	if p.err != nil {
		return nil, p.err
	}
	expr, err := p.parseExpr(powLowest)
	if err != nil {
		return nil, err
	}
	if !p.done() {
		return nil, p.unexpected("expression")
	}
	return expr, nil
}

// debugExpr writes the tree of an expression in a form usable in tests.
func debugExpr(w io.Writer, expr Expr) {
	switch v := expr.(type) {
	case literal:
		fmt.Fprintf(w, "literal(%s)", v.value)
	case number:
		fmt.Fprintf(w, "number(%s)", v.value)
	case variable:
		fmt.Fprintf(w, "variable(%s)", v.ident)
	case name:
		fmt.Fprintf(w, "name(%s)", v.ident)
	case attr:
		fmt.Fprintf(w, "attr(%s)", v.ident)
	case axis:
		fmt.Fprintf(w, "axis(%s, ", v.kind)
		debugExpr(w, v.next)
		io.WriteString(w, ")")
	case call:
		fmt.Fprintf(w, "call(%s", v.ident)
		for _, a := range v.args {
			io.WriteString(w, ", ")
			debugExpr(w, a)
		}
		io.WriteString(w, ")")
	case group:
		io.WriteString(w, "group(")
		debugExpr(w, v.expr)
		io.WriteString(w, ")")
	case binary:
		fmt.Fprintf(w, "binary(%s, ", v.op)
		debugExpr(w, v.left)
		io.WriteString(w, ", ")
		debugExpr(w, v.right)
		io.WriteString(w, ")")
	case unary:
		fmt.Fprintf(w, "unary(%s, ", v.op)
		debugExpr(w, v.expr)
		io.WriteString(w, ")")
	case root:
		fmt.Fprintf(w, "root(%s", v.op)
		if v.next != nil {
			io.WriteString(w, ", ")
			debugExpr(w, v.next)
		}
		io.WriteString(w, ")")
	case step:
		fmt.Fprintf(w, "step(%s, ", v.op)
		debugExpr(w, v.curr)
		io.WriteString(w, ", ")
		debugExpr(w, v.next)
		io.WriteString(w, ")")
	case filter:
		io.WriteString(w, "filter(")
		debugExpr(w, v.expr)
		io.WriteString(w, ", ")
		debugExpr(w, v.pred)
		io.WriteString(w, ")")
	case ternary:
		io.WriteString(w, "ternary(")
		debugExpr(w, v.cond)
		io.WriteString(w, ", ")
		if v.then != nil {
			debugExpr(w, v.then)
		}
		io.WriteString(w, ", ")
		debugExpr(w, v.alt)
		io.WriteString(w, ")")
	default:
		io.WriteString(w, "?")
	}
}
