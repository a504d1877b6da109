package slax

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/midbel/distance"
	"github.com/midbel/slax/xml"
)

const (
	DefaultVersion = "1.2"
	MaxDepth       = 512
)

var versions = []string{
	"1.0",
	"1.1",
	"1.2",
	"1.3",
}

// Parser reads a SLAX script and builds the equivalent XSLT stylesheet.
// A Parser is used for one input only.
type Parser struct {
	lex  *Lexer
	curr Token
	err  error

	builder *Builder
	version string

	attrValue bool
	nesting   int

	prefix map[rune]func() (Expr, error)
	infix  map[rune]func(Expr) (Expr, error)

	decls map[string]func() error
	stmts map[string]func() error

	Tracer
}

func NewParser(r io.Reader, options ...LexOption) *Parser {
	p := Parser{
		lex:     NewLexer(r, options...),
		builder: NewBuilder(),
		version: DefaultVersion,
		Tracer:  discardTracer{},
	}
	p.lex.OnComment(func(text string, _ Position) {
		p.builder.AddComment(text)
	})
	p.setupExpr()
	p.setupDecls()
	p.setupStmts()
	p.next()
	return &p
}

// Parse reads the script from the reader and returns the stylesheet.
func Parse(r io.Reader, options ...LexOption) (*xml.Document, error) {
	return NewParser(r, options...).Parse()
}

func ParseString(str string, options ...LexOption) (*xml.Document, error) {
	return Parse(strings.NewReader(str), options...)
}

func ParseFile(file string) (*xml.Document, error) {
	r, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return Parse(r, WithFile(file))
}

// Version gives the version declared by the script.
func (p *Parser) Version() string {
	return p.version
}

func (p *Parser) Segments() *Segments {
	return p.builder.Segments()
}

func (p *Parser) Parse() (*xml.Document, error) {
	p.builder.Tracer = p.Tracer
	for !p.done() {
		if err := p.parseDeclaration(); err != nil {
			p.Error("declaration", err)
			return nil, err
		}
	}
	if p.err != nil {
		p.Error("declaration", p.err)
		return nil, p.err
	}
	return p.builder.Document(), nil
}

func (p *Parser) setupDecls() {
	p.decls = map[string]func() error{
		kwVersion:       p.parseVersion,
		kwNs:            p.parseNamespace,
		kwImport:        p.parseImport,
		kwInclude:       p.parseImport,
		kwStripSpace:    p.parseSpace,
		kwPreserveSpace: p.parseSpace,
		kwOutputMethod:  p.parseOutput,
		kwKey:           p.parseKey,
		kwParam:         p.parseParam,
		kwVar:           p.parseVar,
		kwMvar:          p.parseMvar,
		kwMatch:         p.parseMatch,
		kwTemplate:      p.parseTemplate,
		kwFunction:      p.parseFunction,
	}
}

func (p *Parser) parseDeclaration() error {
	if p.is(opLt) {
		return p.parseElement(nop)
	}
	if !p.is(Keyword) {
		return p.unknown("declaration")
	}
	fn, ok := p.decls[p.curr.Literal]
	if !ok {
		return p.unknown("declaration")
	}
	return fn()
}

func (p *Parser) parseVersion() error {
	p.next()
	if !p.is(Number) {
		return p.unexpected("version")
	}
	if !slices.Contains(versions, p.curr.Literal) {
		return p.errorf("%s: unsupported version", p.curr.Literal)
	}
	p.version = p.curr.Literal
	p.next()
	return p.endStatement("version")
}

func (p *Parser) parseNamespace() error {
	p.next()
	var (
		prefix    string
		extension bool
		exclude   bool
	)
	if p.is(Bare) {
		prefix = p.curr.Literal
		p.next()
		for {
			if p.curr.isWord(kwExtension) {
				extension = true
			} else if p.curr.isWord(kwExclude) {
				exclude = true
			} else {
				break
			}
			p.next()
		}
		if !p.is(opEqual) {
			return p.unexpected("ns")
		}
		p.next()
	}
	if !p.is(Quoted) {
		return p.unexpected("ns")
	}
	uri := p.curr.Literal
	p.next()
	if !p.is(opSemi) {
		return p.unexpected("ns")
	}
	p.builder.DeclareNS(prefix, uri)
	if extension && prefix != "" {
		p.builder.ExtendAttribute(p.builder.Root(), attrExtPrefixes, prefix)
	}
	if exclude && prefix != "" {
		p.builder.ExtendAttribute(p.builder.Root(), attrExcPrefixes, prefix)
	}
	p.boundary()
	return nil
}

func (p *Parser) parseImport() error {
	name := p.curr.Literal
	p.next()
	if !p.is(Quoted) {
		return p.unexpected(name)
	}
	p.builder.OpenXsl(name)
	p.builder.SetAttribute(attrHref, p.curr.Literal)
	p.builder.Close()
	p.next()
	return p.endStatement(name)
}

func (p *Parser) parseSpace() error {
	name := p.curr.Literal
	p.next()
	var list []string
	for !p.done() && !p.is(opSemi) {
		switch p.curr.Type {
		case Bare, opStar, opMul:
			list = append(list, p.curr.Literal)
		default:
			return p.unexpected(name)
		}
		p.next()
	}
	if len(list) == 0 {
		return p.unexpected(name)
	}
	p.builder.OpenXsl(name)
	p.builder.SetAttribute(attrElements, strings.Join(list, " "))
	p.builder.Close()
	return p.endStatement(name)
}

func (p *Parser) parseOutput() error {
	p.next()
	p.builder.OpenXsl(xslOutput)
	if p.is(Bare) {
		p.builder.SetAttribute(attrMethod, p.curr.Literal)
		p.next()
	}
	if p.is(opSemi) {
		p.builder.Close()
		p.boundary()
		return nil
	}
	if !p.is(begBlock) {
		return p.unexpected(kwOutputMethod)
	}
	p.boundary()
	for !p.done() && !p.is(endBlock) {
		word := p.curr.Literal
		if !p.isWord() || (!slices.Contains(outputAttributes, word) && word != attrMethod) {
			return p.unknownIn(kwOutputMethod, outputAttributes)
		}
		p.next()
		var list []string
		for !p.done() && !p.is(opSemi) {
			switch p.curr.Type {
			case Quoted, Bare, Number:
				list = append(list, p.curr.Literal)
			default:
				return p.unexpected(word)
			}
			p.next()
		}
		if !p.is(opSemi) {
			return p.unexpected(word)
		}
		p.builder.SetAttribute(word, strings.Join(list, " "))
		p.boundary()
	}
	return p.closeBlock(kwOutputMethod)
}

func (p *Parser) parseKey() error {
	p.next()
	if !p.is(Bare) {
		return p.unexpected(kwKey)
	}
	p.builder.OpenXsl(xslKey)
	p.builder.SetAttribute(attrName, p.curr.Literal)
	p.next()
	if !p.is(begBlock) {
		return p.unexpected(kwKey)
	}
	p.boundary()
	for !p.done() && !p.is(endBlock) {
		var attr string
		switch {
		case p.curr.isWord(kwMatch):
			attr = attrMatch
		case p.curr.isWord(kwValue):
			attr = attrUse
		default:
			return p.unknownIn(kwKey, []string{kwMatch, kwValue})
		}
		p.next()
		expr, err := p.parseExpr(powLowest)
		if err != nil {
			return err
		}
		if !p.is(opSemi) {
			return p.unexpected(kwKey)
		}
		p.builder.AddAttribute(attr, expr, StyleXPath)
		p.boundary()
	}
	return p.closeBlock(kwKey)
}

func (p *Parser) parseMatch() error {
	p.next()
	pattern, err := p.parseExpr(powLowest)
	if err != nil {
		return err
	}
	if !p.is(begBlock) {
		return p.unexpected(kwMatch)
	}
	p.builder.OpenXsl(xslTemplate)
	p.builder.AddAttribute(attrMatch, pattern, StyleXPath)
	return p.parseBody(kwMatch)
}

func (p *Parser) parseTemplate() error {
	p.next()
	if !p.is(Bare) && !p.is(FuncName) {
		return p.unexpected(kwTemplate)
	}
	p.builder.OpenXsl(xslTemplate)
	p.builder.SetAttribute(attrName, p.curr.Literal)
	p.next()
	if p.is(begGrp) {
		if err := p.parseParams(); err != nil {
			return err
		}
	}
	if p.curr.isWord(kwMatch) {
		p.next()
		pattern, err := p.parseExpr(powLowest)
		if err != nil {
			return err
		}
		p.builder.AddAttribute(attrMatch, pattern, StyleXPath)
	}
	if !p.is(begBlock) {
		return p.unexpected(kwTemplate)
	}
	return p.parseBody(kwTemplate)
}

func (p *Parser) parseFunction() error {
	p.next()
	if !p.is(Bare) && !p.is(FuncName) {
		return p.unexpected(kwFunction)
	}
	p.builder.OpenFunc(funcFunction)
	p.builder.SetAttribute(attrName, p.curr.Literal)
	p.lex.Enable(NoXPathKeywords)
	p.next()
	if p.is(begGrp) {
		if err := p.parseParams(); err != nil {
			return err
		}
	}
	if !p.is(begBlock) {
		return p.unexpected(kwFunction)
	}
	return p.parseBody(kwFunction)
}

// parseParams parses the list of parameters of a template or a function.
// Each parameter becomes a xsl:param of the element currently open.
func (p *Parser) parseParams() error {
	p.enterNesting()
	defer p.leaveNesting()

	p.next()
	for !p.done() && !p.is(endGrp) {
		if !p.is(Variable) {
			return p.unexpected("parameters")
		}
		ident := p.curr.Literal
		p.next()

		p.builder.OpenXsl(xslParam)
		p.builder.SetAttribute(attrName, ident)
		if p.is(opEqual) {
			p.next()
			expr, err := p.parseExpr(powLowest)
			if err != nil {
				return err
			}
			p.builder.AddAttribute(attrSelect, expr, StyleXPath)
		}
		p.builder.Close()
		p.builder.DefineVar(ident, false)

		switch {
		case p.is(opComma):
			p.next()
			if p.is(endGrp) {
				return p.unexpected("parameters")
			}
		case p.is(endGrp):
		default:
			return p.unexpected("parameters")
		}
	}
	if !p.is(endGrp) {
		return p.unexpected("parameters")
	}
	p.next()
	return nil
}

// parseBody parses the statements of a block whose element is already
// open, closes the element and moves past the block.
func (p *Parser) parseBody(ctx string) error {
	if !p.is(begBlock) {
		return p.unexpected(ctx)
	}
	p.boundary()
	if err := p.parseBlock(); err != nil {
		return err
	}
	return p.closeBlock(ctx)
}

func (p *Parser) parseBlock() error {
	for !p.done() && !p.is(endBlock) {
		if err := p.parseStatement(); err != nil {
			return err
		}
		if p.builder.Depth() > MaxDepth {
			return p.errorf("%w", ErrDepth)
		}
	}
	return nil
}

func (p *Parser) closeBlock(ctx string) error {
	if !p.is(endBlock) {
		return p.unexpected(ctx)
	}
	p.builder.Close()
	p.boundary()
	return nil
}

// endStatement checks that the current token ends the statement and moves
// to the next statement.
func (p *Parser) endStatement(ctx string) error {
	if !p.is(opSemi) {
		return p.unexpected(ctx)
	}
	p.boundary()
	return nil
}

// next moves to the next token. A lexical error is kept and turns the
// current token into the end of the input.
func (p *Parser) next() {
	if p.err != nil {
		p.curr = Token{Type: EOF}
		return
	}
	tok, err := p.lex.Lex()
	if err != nil {
		p.err = err
		tok = Token{
			Type:     EOF,
			Position: tok.Position,
		}
	}
	p.curr = tok
}

// boundary moves past a token ending a statement. Every keyword is
// recognized again from the next token.
func (p *Parser) boundary() {
	p.lex.Reset()
	p.next()
}

// nextWith moves to the next token with some keyword families turned off
// until the end of the statement.
func (p *Parser) nextWith(flags LexFlags) {
	p.lex.Disable(flags)
	p.next()
}

func (p *Parser) is(kind rune) bool {
	return p.curr.Type == kind
}

func (p *Parser) isWord() bool {
	return p.is(Bare) || p.is(Keyword)
}

func (p *Parser) isKeyword(word string) bool {
	return p.is(Keyword) && p.curr.Literal == word
}

func (p *Parser) done() bool {
	return p.is(EOF)
}

func (p *Parser) unexpected(ctx string) error {
	if p.err != nil {
		return p.err
	}
	msg := "unexpected end of input"
	if !p.done() {
		msg = fmt.Sprintf("unexpected token %s", p.curr)
	}
	return p.errorf("%s: %s", ctx, msg)
}

// unknown reports a word that does not start a statement. Close matches
// among the statement keywords are suggested.
func (p *Parser) unknown(ctx string) error {
	return p.unknownIn(ctx, statements)
}

func (p *Parser) unknownIn(ctx string, words []string) error {
	if p.err != nil {
		return p.err
	}
	if !p.isWord() {
		return p.unexpected(ctx)
	}
	err := p.errorf("%s: unknown statement %s", ctx, p.curr.Literal).(ParseError)
	err.Others = distance.Levenshtein(p.curr.Literal, words)
	return err
}

func (p *Parser) errorf(format string, args ...any) error {
	err := fmt.Errorf(format, args...)
	return p.wrap(err)
}

// wrap attaches the position of the current token to an error.
func (p *Parser) wrap(err error) error {
	if _, ok := err.(ParseError); ok {
		return err
	}
	return ParseError{
		File:     p.lex.File(),
		Token:    p.curr,
		Message:  err.Error(),
		Position: p.curr.Position,
		err:      err,
	}
}
