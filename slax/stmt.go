package slax

import (
	"strings"

	"github.com/midbel/slax/xml"
)

// holder tells how a statement taking a value builds its element. expr is
// used when the value is an expression. open and close surround the value
// when it is a block, an element or a call.
type holder struct {
	expr  func(Expr) error
	open  func() error
	close func()
}

func nop() {}

func (p *Parser) setupStmts() {
	p.stmts = map[string]func() error{
		kwAppend:         p.parseSetVar,
		kwApplyImports:   p.parseApplyImports,
		kwApplyTemplates: p.parseApplyTemplates,
		kwAttribute:      p.parseNamed,
		kwCall:           p.parseCallTemplate,
		kwComment:        p.parseComment,
		kwCopyNode:       p.parseCopyNode,
		kwCopyOf:         p.parseCopyOf,
		kwElement:        p.parseNamed,
		kwExpr:           p.parseExprStmt,
		kwUexpr:          p.parseExprStmt,
		kwFallback:       p.parseFallback,
		kwFor:            p.parseFor,
		kwForEach:        p.parseForEach,
		kwIf:             p.parseIf,
		kwMessage:        p.parseMessage,
		kwTerminate:      p.parseMessage,
		kwMode:           p.parseMode,
		kwPriority:       p.parsePriority,
		kwMvar:           p.parseMvar,
		kwNs:             p.parseNamespace,
		kwNumber:         p.parseXslNumber,
		kwParam:          p.parseParam,
		kwProcessing:     p.parseInstruction,
		kwResult:         p.parseResult,
		kwSet:            p.parseSetVar,
		kwSort:           p.parseSort,
		kwUseAttrSets:    p.parseAttrSets,
		kwVar:            p.parseVar,
		kwWith:           p.parseWith,
	}
}

func (p *Parser) parseStatement() error {
	switch p.curr.Type {
	case opLt:
		return p.parseElement(nop)
	case Quoted:
		return p.parseText()
	case opSemi:
		p.boundary()
		return nil
	case Keyword:
		if fn, ok := p.stmts[p.curr.Literal]; ok {
			return fn()
		}
	}
	return p.unknown("statement")
}

// parseValue parses the value given to a statement: a block, an element, a
// call to a template, apply-templates or an expression ending the
// statement.
func (p *Parser) parseValue(ctx string, h holder) error {
	switch {
	case p.is(begBlock):
		if err := h.open(); err != nil {
			return err
		}
		p.boundary()
		if err := p.parseBlock(); err != nil {
			return err
		}
		if !p.is(endBlock) {
			return p.unexpected(ctx)
		}
		h.close()
		p.boundary()
		return nil
	case p.is(opLt):
		if err := h.open(); err != nil {
			return err
		}
		return p.parseElement(h.close)
	case p.isKeyword(kwCall):
		if err := h.open(); err != nil {
			return err
		}
		return p.parseTemplateCall(h.close)
	case p.isKeyword(kwApplyTemplates):
		if err := h.open(); err != nil {
			return err
		}
		return p.parseApply(h.close)
	default:
		expr, err := p.parseExpr(powLowest)
		if err != nil {
			return err
		}
		if !p.is(opSemi) {
			return p.unexpected(ctx)
		}
		if err := h.expr(expr); err != nil {
			return err
		}
		p.boundary()
		return nil
	}
}

// parseElement parses a literal result element. done is called once the
// element is closed, before moving to the next statement.
func (p *Parser) parseElement(done func()) error {
	p.nextWith(NoSlaxKeywords)
	if !p.is(Bare) {
		return p.unexpected("element")
	}
	el, err := p.builder.Open(p.curr.Literal)
	if err != nil {
		return p.wrap(err)
	}
	style := StyleAvt
	if el.Uri == XslUri || el.Uri == SlaxUri || el.Uri == FuncUri {
		style = StyleLiteral
	}
	p.next()
	for p.isWord() {
		if err := p.parseAttribute(style); err != nil {
			return err
		}
	}
	if !p.is(opGt) {
		return p.unexpected("element")
	}
	if err := p.builder.Resolve(); err != nil {
		return p.wrap(err)
	}
	p.next()

	closing := func() {
		p.builder.Close()
		done()
	}
	switch {
	case p.is(opSemi):
	case p.is(begBlock):
		p.boundary()
		if err := p.parseBlock(); err != nil {
			return err
		}
		if !p.is(endBlock) {
			return p.unexpected("element")
		}
	case p.is(opLt):
		return p.parseElement(closing)
	default:
		expr, err := p.parseExpr(powLowest)
		if err != nil {
			return err
		}
		if !p.is(opSemi) {
			return p.unexpected("element")
		}
		p.builder.AddValue(expr, false)
	}
	closing()
	p.boundary()
	return nil
}

func (p *Parser) parseAttribute(style AttrStyle) error {
	ident := p.curr.Literal
	p.next()
	if !p.is(opEqual) {
		return p.unexpected("attribute")
	}
	p.next()

	p.attrValue = true
	expr, err := p.parseExpr(powLowest)
	p.attrValue = false
	if err != nil {
		return err
	}
	if ident == xml.AttrXmlNS || strings.HasPrefix(ident, xml.AttrXmlNS+":") {
		lit, ok := expr.(literal)
		if !ok {
			return p.errorf("%s: namespace uri should be a literal", ident)
		}
		_, prefix, _ := strings.Cut(ident, ":")
		p.builder.DeclareNS(prefix, lit.value)
		return nil
	}
	p.builder.AddAttribute(ident, expr, style)
	return nil
}

func (p *Parser) parseText() error {
	p.lex.Disable(NoSlaxKeywords)
	expr, err := p.parseExpr(powLowest)
	if err != nil {
		return err
	}
	if !p.is(opSemi) {
		return p.unexpected("text")
	}
	p.builder.AddValue(expr, false)
	p.boundary()
	return nil
}

func (p *Parser) parseExprStmt() error {
	doe := p.curr.Literal == kwUexpr
	p.next()
	expr, err := p.parseExpr(powLowest)
	if err != nil {
		return err
	}
	if !p.is(opSemi) {
		return p.unexpected(kwExpr)
	}
	p.builder.AddValue(expr, doe)
	p.boundary()
	return nil
}

func (p *Parser) parseVar() error {
	return p.parseDeclare(xslVariable)
}

func (p *Parser) parseParam() error {
	return p.parseDeclare(xslParam)
}

// parseDeclare parses var and param statements.
func (p *Parser) parseDeclare(kind string) error {
	p.next()
	if !p.is(Variable) {
		return p.unexpected(kind)
	}
	ident := p.curr.Literal
	p.next()

	var (
		b    = p.builder
		open = func() error {
			b.OpenXsl(kind)
			b.SetAttribute(attrName, ident)
			return nil
		}
		closing = func() {
			b.Close()
			b.DefineVar(ident, false)
		}
	)
	switch {
	case p.is(opSemi):
		open()
		closing()
		p.boundary()
		return nil
	case p.is(opEqual):
		p.next()
		h := holder{
			expr: func(expr Expr) error {
				open()
				b.AddAttribute(attrSelect, expr, StyleXPath)
				closing()
				return nil
			},
			open:  open,
			close: closing,
		}
		return p.parseValue(kind, h)
	case p.is(opAssign) && kind == xslVariable:
		p.next()
		return p.parseNodeSet(ident)
	default:
		return p.unexpected(kind)
	}
}

// parseNodeSet parses the value of a variable assigned with ":=".
func (p *Parser) parseNodeSet(ident string) error {
	var (
		b    = p.builder
		temp string
	)
	h := holder{
		expr: func(expr Expr) error {
			b.AddNodeSet(ident, expr)
			return nil
		},
		open: func() error {
			temp = b.OpenNodeSet(ident)
			return nil
		},
		close: func() {
			b.CloseNodeSet(ident, temp)
		},
	}
	return p.parseValue(kwVar, h)
}

func (p *Parser) parseMvar() error {
	p.next()
	if !p.is(Variable) {
		return p.unexpected(kwMvar)
	}
	ident := p.curr.Literal
	p.next()

	b := p.builder
	switch {
	case p.is(opSemi):
		b.AddMvar(ident, nil)
		p.boundary()
		return nil
	case p.is(opEqual):
		p.next()
		h := holder{
			expr: func(expr Expr) error {
				b.AddMvar(ident, expr)
				return nil
			},
			open: func() error {
				b.OpenMvar(ident)
				return nil
			},
			close: func() {
				b.CloseMvar(ident)
			},
		}
		return p.parseValue(kwMvar, h)
	default:
		return p.unexpected(kwMvar)
	}
}

// parseSetVar parses set and append. The target should be a mutable
// variable in scope.
func (p *Parser) parseSetVar() error {
	var (
		ctx       = p.curr.Literal
		appending = ctx == kwAppend
	)
	p.next()
	if !p.is(Variable) {
		return p.unexpected(ctx)
	}
	ident := p.curr.Literal
	if err := p.builder.CheckMutable(ident); err != nil {
		return p.wrap(err)
	}
	p.next()
	switch {
	case p.is(opEqual):
	case p.is(opAppend) && appending:
	default:
		return p.unexpected(ctx)
	}
	p.next()

	b := p.builder
	open := func() error {
		_, err := b.OpenSetVar(ident, appending)
		if err != nil {
			return p.wrap(err)
		}
		return nil
	}
	h := holder{
		expr: func(expr Expr) error {
			if err := open(); err != nil {
				return err
			}
			b.AddAttribute(attrSelect, expr, StyleXPath)
			b.Close()
			return nil
		},
		open: open,
		close: func() {
			b.Close()
		},
	}
	return p.parseValue(ctx, h)
}

func (p *Parser) parseWith() error {
	p.next()
	if !p.is(Variable) {
		return p.unexpected(kwWith)
	}
	ident := p.curr.Literal
	p.next()

	b := p.builder
	open := func() error {
		b.OpenXsl(xslWithParam)
		b.SetAttribute(attrName, ident)
		return nil
	}
	switch {
	case p.is(opSemi):
		open()
		b.SetAttribute(attrSelect, "$"+ident)
		b.Close()
		p.boundary()
		return nil
	case p.is(opEqual):
		p.next()
		return p.parseValue(kwWith, p.simpleHolder(open, attrSelect))
	default:
		return p.unexpected(kwWith)
	}
}

// simpleHolder creates a holder for statements whose expression form sets
// an attribute of the element created by open.
func (p *Parser) simpleHolder(open func() error, attr string) holder {
	b := p.builder
	return holder{
		expr: func(expr Expr) error {
			if err := open(); err != nil {
				return err
			}
			b.AddAttribute(attr, expr, StyleXPath)
			b.Close()
			return nil
		},
		open: open,
		close: func() {
			b.Close()
		},
	}
}

// contentHolder creates a holder for statements whose expression form
// becomes the content of the element created by open.
func (p *Parser) contentHolder(open func() error) holder {
	b := p.builder
	return holder{
		expr: func(expr Expr) error {
			if err := open(); err != nil {
				return err
			}
			b.AddValue(expr, false)
			b.Close()
			return nil
		},
		open: open,
		close: func() {
			b.Close()
		},
	}
}

func (p *Parser) parseResult() error {
	p.next()
	open := func() error {
		p.builder.OpenFunc(funcResult)
		return nil
	}
	return p.parseValue(kwResult, p.simpleHolder(open, attrSelect))
}

func (p *Parser) parseMessage() error {
	terminate := p.curr.Literal == kwTerminate
	p.next()
	open := func() error {
		p.builder.OpenXsl(xslMessage)
		if terminate {
			p.builder.SetAttribute(attrTerminate, "yes")
		}
		return nil
	}
	return p.parseValue(kwMessage, p.contentHolder(open))
}

func (p *Parser) parseComment() error {
	p.next()
	open := func() error {
		p.builder.OpenXsl(xslComment)
		return nil
	}
	return p.parseValue(kwComment, p.contentHolder(open))
}

// parseNamed parses attribute and element whose name is given by an
// expression.
func (p *Parser) parseNamed() error {
	kind := p.curr.Literal
	p.next()
	expr, err := p.parseExpr(powLowest)
	if err != nil {
		return err
	}
	p.builder.OpenXsl(kind)
	p.builder.AddAttribute(attrName, expr, StyleAvt)
	if p.is(opSemi) {
		p.builder.Close()
		p.boundary()
		return nil
	}
	return p.parseBody(kind)
}

func (p *Parser) parseInstruction() error {
	p.next()
	expr, err := p.parseExpr(powLowest)
	if err != nil {
		return err
	}
	p.builder.OpenXsl(xslProcessing)
	p.builder.AddAttribute(attrName, expr, StyleAvt)
	switch {
	case p.is(opSemi):
	case p.is(begBlock):
		return p.parseBody(kwProcessing)
	default:
		value, err := p.parseExpr(powLowest)
		if err != nil {
			return err
		}
		if !p.is(opSemi) {
			return p.unexpected(kwProcessing)
		}
		p.builder.AddValue(value, false)
	}
	p.builder.Close()
	p.boundary()
	return nil
}

func (p *Parser) parseCopyOf() error {
	p.next()
	expr, err := p.parseExpr(powLowest)
	if err != nil {
		return err
	}
	if !p.is(opSemi) {
		return p.unexpected(kwCopyOf)
	}
	p.builder.OpenXsl(xslCopyOf)
	p.builder.AddAttribute(attrSelect, expr, StyleXPath)
	p.builder.Close()
	p.boundary()
	return nil
}

func (p *Parser) parseCopyNode() error {
	p.next()
	p.builder.OpenXsl(xslCopy)
	if p.is(opSemi) {
		p.builder.Close()
		p.boundary()
		return nil
	}
	return p.parseBody(kwCopyNode)
}

func (p *Parser) parseFallback() error {
	p.next()
	p.builder.OpenXsl(xslFallback)
	return p.parseBody(kwFallback)
}

func (p *Parser) parseApplyImports() error {
	p.next()
	if !p.is(opSemi) {
		return p.unexpected(kwApplyImports)
	}
	p.builder.OpenXsl(xslApplyImports)
	p.builder.Close()
	p.boundary()
	return nil
}

func (p *Parser) parseApplyTemplates() error {
	return p.parseApply(nop)
}

// parseApply parses apply-templates. done is called once the element is
// closed.
func (p *Parser) parseApply(done func()) error {
	p.next()
	p.builder.OpenXsl(xslApplyTemplates)
	if !p.is(opSemi) && !p.is(begBlock) {
		expr, err := p.parseExpr(powLowest)
		if err != nil {
			return err
		}
		p.builder.AddAttribute(attrSelect, expr, StyleXPath)
	}
	return p.finishCall(kwApplyTemplates, done)
}

func (p *Parser) parseCallTemplate() error {
	return p.parseTemplateCall(nop)
}

// parseTemplateCall parses a call to a named template. Arguments given between
// parentheses become xsl:with-param. An argument without value passes the
// variable of the same name.
func (p *Parser) parseTemplateCall(done func()) error {
	p.next()
	if !p.is(FuncName) && !p.is(Bare) {
		return p.unexpected(kwCall)
	}
	b := p.builder
	b.OpenXsl(xslCallTemplate)
	b.SetAttribute(attrName, p.curr.Literal)
	p.lex.Enable(NoXPathKeywords)
	p.next()
	if p.is(begGrp) {
		if err := p.parseArgs(); err != nil {
			return err
		}
	}
	return p.finishCall(kwCall, done)
}

func (p *Parser) parseArgs() error {
	p.enterNesting()
	defer p.leaveNesting()

	b := p.builder
	p.next()
	for !p.done() && !p.is(endGrp) {
		if !p.is(Variable) {
			return p.unexpected(kwCall)
		}
		ident := p.curr.Literal
		p.next()

		b.OpenXsl(xslWithParam)
		b.SetAttribute(attrName, ident)
		if p.is(opEqual) {
			p.next()
			expr, err := p.parseExpr(powLowest)
			if err != nil {
				return err
			}
			b.AddAttribute(attrSelect, expr, StyleXPath)
		} else {
			b.SetAttribute(attrSelect, "$"+ident)
		}
		b.Close()

		switch {
		case p.is(opComma):
			p.next()
			if p.is(endGrp) {
				return p.unexpected(kwCall)
			}
		case p.is(endGrp):
		default:
			return p.unexpected(kwCall)
		}
	}
	if !p.is(endGrp) {
		return p.unexpected(kwCall)
	}
	p.next()
	return nil
}

// finishCall parses the end of call and apply-templates: a semicolon or a
// block with parameters, sorts and mode.
func (p *Parser) finishCall(ctx string, done func()) error {
	switch {
	case p.is(opSemi):
	case p.is(begBlock):
		p.boundary()
		if err := p.parseBlock(); err != nil {
			return err
		}
		if !p.is(endBlock) {
			return p.unexpected(ctx)
		}
	default:
		return p.unexpected(ctx)
	}
	p.builder.Close()
	done()
	p.boundary()
	return nil
}

// parseCondition parses an expression written between parentheses after
// if, for-each and for.
func (p *Parser) parseCondition(ctx string) (Expr, error) {
	if !p.is(begGrp) {
		return nil, p.unexpected(ctx)
	}
	p.enterNesting()
	p.next()
	expr, err := p.parseExpr(powLowest)
	p.leaveNesting()
	if err != nil {
		return nil, err
	}
	if !p.is(endGrp) {
		return nil, p.unexpected(ctx)
	}
	p.next()
	return expr, nil
}

// parseIf parses if statements with their else if and else branches. The
// xsl:choose built is turned into a xsl:if when there is no else branch.
func (p *Parser) parseIf() error {
	b := p.builder
	choose := b.OpenXsl(xslChoose)
	for {
		p.next()
		cond, err := p.parseCondition(kwIf)
		if err != nil {
			return err
		}
		b.OpenXsl(xslWhen)
		b.AddAttribute(attrTest, cond, StyleXPath)
		if err := p.parseBranch(choose, true); err != nil {
			return err
		}
		if !p.isKeyword(kwElse) {
			break
		}
		p.next()
		if p.isKeyword(kwIf) {
			continue
		}
		b.OpenXsl(xslOtherwise)
		if err := p.parseBranch(choose, false); err != nil {
			return err
		}
		break
	}
	b.CheckIf(choose)
	return nil
}

// parseBranch parses the block of a branch of an if statement. The choose
// is closed before moving past the block and opened again when an else
// follows.
func (p *Parser) parseBranch(choose *xml.Element, more bool) error {
	if !p.is(begBlock) {
		return p.unexpected(kwIf)
	}
	p.boundary()
	if err := p.parseBlock(); err != nil {
		return err
	}
	if !p.is(endBlock) {
		return p.unexpected(kwIf)
	}
	p.builder.Close()
	p.builder.Close()
	p.boundary()
	if more && p.isKeyword(kwElse) {
		p.builder.Reopen(choose)
	}
	return nil
}

func (p *Parser) parseForEach() error {
	p.next()
	expr, err := p.parseCondition(kwForEach)
	if err != nil {
		return err
	}
	p.builder.OpenXsl(xslForEach)
	p.builder.AddAttribute(attrSelect, expr, StyleXPath)
	return p.parseBody(kwForEach)
}

func (p *Parser) parseFor() error {
	p.next()
	if !p.is(Variable) {
		return p.unexpected(kwFor)
	}
	ident := p.curr.Literal
	p.next()
	expr, err := p.parseCondition(kwFor)
	if err != nil {
		return err
	}
	if !p.is(begBlock) {
		return p.unexpected(kwFor)
	}
	p.builder.OpenFor(ident, expr)
	p.boundary()
	if err := p.parseBlock(); err != nil {
		return err
	}
	if !p.is(endBlock) {
		return p.unexpected(kwFor)
	}
	p.builder.CloseFor()
	p.boundary()
	return nil
}

func (p *Parser) parseSort() error {
	p.next()
	var (
		expr Expr
		err  error
	)
	if !p.is(opSemi) && !p.is(begBlock) {
		if expr, err = p.parseExpr(powLowest); err != nil {
			return err
		}
	}
	p.builder.OpenSort()
	if expr != nil {
		p.builder.AddAttribute(attrSelect, expr, StyleXPath)
	}
	return p.parseOptions(kwSort, sortAttributes, nil)
}

func (p *Parser) parseXslNumber() error {
	p.next()
	p.builder.OpenXsl(xslNumber)
	if !p.is(opSemi) && !p.is(begBlock) {
		expr, err := p.parseExpr(powLowest)
		if err != nil {
			return err
		}
		p.builder.AddAttribute(attrValue, expr, StyleXPath)
	}
	return p.parseOptions(kwNumber, numberAttributes, []string{kwCount, kwFrom})
}

// parseOptions parses the block of sort and number where each statement
// sets an attribute of the element. Attributes listed in patterns hold
// patterns, the others are attribute value templates.
func (p *Parser) parseOptions(ctx string, words, patterns []string) error {
	if p.is(opSemi) {
		p.builder.Close()
		p.boundary()
		return nil
	}
	if !p.is(begBlock) {
		return p.unexpected(ctx)
	}
	p.boundary()
	for !p.done() && !p.is(endBlock) {
		word := p.curr.Literal
		if !p.isWord() || !isOption(words, word) {
			return p.unknownIn(ctx, words)
		}
		p.nextWith(NoSlaxKeywords)
		expr, err := p.parseExpr(powLowest)
		if err != nil {
			return err
		}
		if !p.is(opSemi) {
			return p.unexpected(word)
		}
		style := StyleAvt
		if isOption(patterns, word) {
			style = StyleXPath
		}
		p.builder.AddAttribute(statementAttr(word), expr, style)
		p.boundary()
	}
	return p.closeBlock(ctx)
}

func isOption(words []string, word string) bool {
	for _, w := range words {
		if w == word || statementAttr(w) == word {
			return true
		}
	}
	return false
}

// parseMode sets the mode of the enclosing template or apply-templates.
func (p *Parser) parseMode() error {
	p.next()
	switch p.curr.Type {
	case Quoted, Bare:
	default:
		return p.unexpected(kwMode)
	}
	p.builder.SetAttribute(attrMode, p.curr.Literal)
	p.next()
	return p.endStatement(kwMode)
}

func (p *Parser) parsePriority() error {
	p.next()
	var sign string
	if p.is(opSub) {
		sign = "-"
		p.next()
	}
	if !p.is(Number) {
		return p.unexpected(kwPriority)
	}
	p.builder.SetAttribute(attrPriority, sign+p.curr.Literal)
	p.next()
	return p.endStatement(kwPriority)
}

func (p *Parser) parseAttrSets() error {
	p.next()
	var list []string
	for p.is(Bare) {
		list = append(list, p.curr.Literal)
		p.next()
	}
	if len(list) == 0 {
		return p.unexpected(kwUseAttrSets)
	}
	name := attrUseSets
	if curr := p.builder.Current(); curr != nil && curr.Uri != XslUri {
		name = xslPrefix + ":" + attrUseSets
	}
	p.builder.SetAttribute(name, strings.Join(list, " "))
	return p.endStatement(kwUseAttrSets)
}
