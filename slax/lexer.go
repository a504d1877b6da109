package slax

import (
	"bytes"
	"errors"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"
)

const DefaultChunkSize = 4096

const (
	squote     = '\''
	dquote     = '"'
	dollar     = '$'
	backslash  = '\\'
	nl         = '\n'
	cr         = '\r'
	tab        = '\t'
	space      = ' '
	underscore = '_'
	colon      = ':'
	star       = '*'
	slash      = '/'
	pound      = '#'
	bang       = '!'
	lparen     = '('
	dot        = '.'
)

const defaultName = "#default"

// CommentFunc receives the text of a comment found at a statement boundary.
type CommentFunc func(text string, pos Position)

type LexOption func(*Lexer)

// WithChunkSize sets the number of bytes read from the underlying reader
// each time the buffer is refilled.
func WithChunkSize(size int) LexOption {
	return func(lex *Lexer) {
		if size > 0 {
			lex.chunk = size
		}
	}
}

func WithFlags(flags LexFlags) LexOption {
	return func(lex *Lexer) {
		lex.flags |= flags
	}
}

func WithFile(file string) LexOption {
	return func(lex *Lexer) {
		lex.file = file
	}
}

func WithComments(fn CommentFunc) LexOption {
	return func(lex *Lexer) {
		lex.comment = fn
	}
}

type Lexer struct {
	input io.Reader
	file  string

	buf   []byte
	start int
	cur   int
	size  int
	chunk int
	eof   bool
	init  bool

	Position
	flags   LexFlags
	pending LexFlags
	last    rune
	word    string
	err     error

	comment CommentFunc
}

func NewLexer(r io.Reader, options ...LexOption) *Lexer {
	lex := Lexer{
		input: r,
		chunk: DefaultChunkSize,
		last:  EOF,
	}
	lex.Line = 1
	for _, o := range options {
		o(&lex)
	}
	return &lex
}

func (l *Lexer) File() string {
	return l.file
}

func (l *Lexer) Flags() LexFlags {
	return l.flags | l.pending
}

// Disable turns off the given keyword families from the next token until
// the next call to Reset.
func (l *Lexer) Disable(flags LexFlags) {
	l.flags |= flags
}

// Enable turns on again keyword families disabled by Disable or by the
// previous keyword.
func (l *Lexer) Enable(flags LexFlags) {
	l.flags &^= flags
	l.pending &^= flags
}

// Reset re-enables all keyword families. It is called at statement
// boundaries.
func (l *Lexer) Reset() {
	l.flags &^= NoKeywords
	l.pending &^= NoKeywords
}

func (l *Lexer) OnComment(fn CommentFunc) {
	l.comment = fn
}

func (l *Lexer) Lex() (Token, error) {
	if !l.init {
		l.init = true
		l.skipShebang()
	}
	l.flags |= l.pending
	l.pending = 0

	if err := l.skipComments(); err != nil {
		return l.token(Invalid, ""), err
	}
	l.start = l.cur
	if l.atEnd(0) {
		if l.err != nil {
			return l.token(Invalid, ""), l.errorf(l.Position, l.err.Error())
		}
		return l.token(EOF, ""), nil
	}
	tok, err := l.lex()
	if err != nil {
		return tok, err
	}
	if l.cur == l.start {
		// no progress: skip the offending byte
		l.advance(1)
		tok.Type = Invalid
		tok.Literal = string(l.buf[l.start:l.cur])
	}
	l.last, l.word = tok.Type, tok.Literal
	if tok.Type == Keyword {
		l.pending |= disables[tok.Literal]
	}
	return tok, nil
}

func (l *Lexer) lex() (Token, error) {
	var (
		pos = l.Position
		c1  = l.at(0)
		c2  = l.at(1)
		c3  = l.at(2)
	)
	if isDigit(c1) || (c1 == dot && isDigit(c2)) {
		return l.lexNumber(pos), nil
	}
	if kind, ok := tripleWide[string([]byte{c1, c2, c3})]; ok && c3 != 0 {
		l.advance(3)
		return l.operator(kind, pos), nil
	}
	if kind, ok := doubleWide[string([]byte{c1, c2})]; ok && c2 != 0 {
		l.advance(2)
		return l.operator(kind, pos), nil
	}
	if kind, ok := singleWide[c1]; ok {
		switch kind {
		case opMul:
			l.advance(1)
			if !operandEnd(l.last) {
				kind = opStar
			}
			return l.operator(kind, pos), nil
		case opConcat:
			if isBare(c2) {
				return l.lexWord(pos)
			}
		}
		l.advance(1)
		return l.operator(kind, pos), nil
	}
	switch {
	case c1 == squote || c1 == dquote:
		return l.lexQuoted(pos)
	case c1 == dollar:
		return l.lexVariable(pos), nil
	default:
		return l.lexWord(pos)
	}
}

func (l *Lexer) operator(kind rune, pos Position) Token {
	tok := Token{
		Literal:  operators[kind],
		Type:     kind,
		Position: pos,
	}
	return tok
}

func (l *Lexer) lexQuoted(pos Position) (Token, error) {
	var (
		quote = l.at(0)
		str   strings.Builder
		tok   = Token{
			Type:     Quoted,
			Quote:    quote,
			Position: pos,
		}
	)
	l.advance(1)
	for {
		if l.atEnd(0) {
			return tok, l.errorf(pos, "unterminated literal")
		}
		c := l.at(0)
		if c == quote {
			l.advance(1)
			break
		}
		if c == backslash && !l.strict() {
			r, n, err := l.escape()
			if err != nil {
				return tok, l.errorf(l.Position, err.Error())
			}
			str.WriteRune(r)
			l.advance(n)
			continue
		}
		str.WriteByte(c)
		l.advance(1)
	}
	tok.Literal = str.String()
	return tok, nil
}

var errEscape = errors.New("invalid escape sequence")

// escape decodes the escape sequence starting at the current position and
// returns the decoded rune with the number of bytes consumed.
func (l *Lexer) escape() (rune, int, error) {
	switch c := l.at(1); c {
	case 'n':
		return nl, 2, nil
	case 'r':
		return cr, 2, nil
	case 't':
		return tab, 2, nil
	case 'x':
		r, err := l.hex(2, 2)
		return r, 4, err
	case 'u':
		switch l.at(2) {
		case '+':
			r, err := l.hex(3, 4)
			return r, 7, err
		case '-':
			r, err := l.hex(3, 6)
			return r, 9, err
		default:
			return 0, 0, errEscape
		}
	case 0:
		if l.atEnd(1) {
			return 0, 0, errEscape
		}
		return 0, 2, nil
	default:
		if c >= utf8.RuneSelf {
			return backslash, 1, nil
		}
		return rune(c), 2, nil
	}
}

func (l *Lexer) hex(offset, count int) (rune, error) {
	var digits []byte
	for i := 0; i < count; i++ {
		digits = append(digits, l.at(offset+i))
	}
	n, err := strconv.ParseUint(string(digits), 16, 32)
	if err != nil || !utf8.ValidRune(rune(n)) {
		return 0, errEscape
	}
	return rune(n), nil
}

func (l *Lexer) lexVariable(pos Position) Token {
	l.advance(1)
	i := 0
	for isVar(l.at(i)) {
		i++
	}
	tok := Token{
		Literal:  l.text(l.cur, l.cur+i),
		Type:     Variable,
		Position: pos,
	}
	l.advance(i)
	return tok
}

func (l *Lexer) lexNumber(pos Position) Token {
	i := 0
	for isDigit(l.at(i)) {
		i++
	}
	if l.at(i) == dot && isDigit(l.at(i+1)) {
		i++
		for isDigit(l.at(i)) {
			i++
		}
	}
	if c := l.at(i); c == 'e' || c == 'E' {
		j := i + 1
		if s := l.at(j); s == '+' || s == '-' {
			j++
		}
		if isDigit(l.at(j)) {
			for isDigit(l.at(j)) {
				j++
			}
			i = j
		}
	}
	tok := Token{
		Literal:  l.text(l.cur, l.cur+i),
		Type:     Number,
		Position: pos,
	}
	l.advance(i)
	return tok
}

func (l *Lexer) lexWord(pos Position) (Token, error) {
	tok := Token{
		Type:     Bare,
		Position: pos,
	}
	if l.at(0) == pound && l.matchWord(defaultName) {
		tok.Literal = defaultName
		l.advance(len(defaultName))
		return tok, nil
	}
	i := 0
	for {
		c := l.at(i)
		if c == colon && l.at(i+1) == colon {
			break
		}
		if isBare(c) {
			i++
			continue
		}
		if c == star && i > 0 && l.at(i-1) == colon {
			i++
			continue
		}
		break
	}
	tok.Literal = l.text(l.cur, l.cur+i)
	l.advance(i)

	if tok.Literal == "" {
		return tok, nil
	}
	if l.at(0) == colon && l.at(1) == colon {
		tok.Type = AxisName
		return tok, nil
	}
	paren := l.peekParen()
	if flags, ok := keywords[tok.Literal]; ok {
		if kind, ok := l.keyword(tok.Literal, flags, paren); ok {
			tok.Type = kind
			return tok, nil
		}
	}
	// template names look like function names
	if paren && !(l.last == Keyword && l.word == kwTemplate) {
		tok.Type = FuncName
	}
	return tok, nil
}

// keyword decides whether a word found in the keyword table is returned as
// a keyword and with which token kind.
func (l *Lexer) keyword(word string, flags kwFlags, paren bool) (rune, bool) {
	if flags&kwXPath != 0 {
		if l.flags&NoXPathKeywords != 0 || !operandEnd(l.last) {
			return Bare, false
		}
		return Keyword, true
	}
	if flags&kwJSON != 0 {
		return Keyword, l.flags&JSONKeywords != 0
	}
	if flags&kwNodeTest != 0 && paren {
		return FuncName, true
	}
	if flags&kwSlax == 0 {
		return Bare, false
	}
	if l.flags&NoSlaxKeywords == 0 && !l.strict() {
		return Keyword, true
	}
	if l.promote(word) {
		return Keyword, true
	}
	return Bare, false
}

// promote reports whether a statement keyword used as the value of an
// assignment should still be returned as a keyword.
func (l *Lexer) promote(word string) bool {
	if word != kwCall && word != kwApplyTemplates {
		return false
	}
	if l.strict() || (l.last != opEqual && l.last != opAssign) {
		return false
	}
	i := 0
	for isBlank(l.at(i)) {
		i++
	}
	c := l.at(i)
	return c == lparen || c == ';' || c == underscore || isBare(c)
}

func (l *Lexer) peekParen() bool {
	i := 0
	for isBlank(l.at(i)) {
		i++
	}
	return l.at(i) == lparen
}

func (l *Lexer) matchWord(word string) bool {
	for i := 0; i < len(word); i++ {
		if l.at(i) != word[i] {
			return false
		}
	}
	return !isBare(l.at(len(word)))
}

func (l *Lexer) skipShebang() {
	if l.at(0) != pound || l.at(1) != bang {
		return
	}
	for !l.atEnd(0) && l.at(0) != nl {
		l.advance(1)
	}
}

func (l *Lexer) skipComments() error {
	for {
		for isBlank(l.at(0)) {
			l.advance(1)
		}
		if !l.commentAllowed() {
			return nil
		}
		switch {
		case l.at(0) == slash && l.at(1) == star:
			if err := l.blockComment(); err != nil {
				return err
			}
		case l.at(0) == slash && l.at(1) == slash && l.flags&LineComments != 0:
			l.lineComment()
		default:
			return nil
		}
	}
}

func (l *Lexer) commentAllowed() bool {
	return l.flags&NoSlaxKeywords == 0 && !l.strict()
}

func (l *Lexer) blockComment() error {
	pos := l.Position
	l.start = l.cur
	l.advance(2)
	for {
		if l.atEnd(0) {
			return l.errorf(pos, "unterminated comment")
		}
		if l.at(0) == star && l.at(1) == slash {
			break
		}
		l.advance(1)
	}
	text := l.text(l.start+2, l.cur)
	l.advance(2)
	l.emitComment(text, pos)
	return nil
}

func (l *Lexer) lineComment() {
	pos := l.Position
	l.start = l.cur
	l.advance(2)
	for !l.atEnd(0) && l.at(0) != nl {
		l.advance(1)
	}
	l.emitComment(l.text(l.start+2, l.cur), pos)
}

func (l *Lexer) emitComment(text string, pos Position) {
	if l.comment == nil {
		return
	}
	text = trimComment(text)
	if text == "" {
		return
	}
	l.comment(text, pos)
}

// trimComment removes the blanks around the text of a comment without
// crossing a newline, removes the leading blanks of continuation lines and
// surrounds the result with one space.
func trimComment(text string) string {
	text = strings.TrimLeft(text, " \t\r")
	text = strings.TrimRight(text, " \t\r")
	if text == "" {
		return ""
	}
	lines := strings.Split(text, "\n")
	for i := 1; i < len(lines); i++ {
		lines[i] = strings.TrimLeft(lines[i], " \t")
	}
	return " " + strings.Join(lines, "\n") + " "
}

func (l *Lexer) token(kind rune, lit string) Token {
	return Token{
		Literal:  lit,
		Type:     kind,
		Position: l.Position,
	}
}

func (l *Lexer) errorf(pos Position, msg string) error {
	return LexError{
		File:     l.file,
		Position: pos,
		Message:  msg,
	}
}

func (l *Lexer) strict() bool {
	return l.flags&Strict != 0
}

func (l *Lexer) text(from, to int) string {
	return string(l.buf[from:to])
}

// at returns the byte found at offset from the current position, reading
// more input when needed. It returns 0 past the end of the input.
func (l *Lexer) at(offset int) byte {
	for l.cur+offset >= l.size {
		if !l.fill() {
			return 0
		}
	}
	return l.buf[l.cur+offset]
}

func (l *Lexer) atEnd(offset int) bool {
	l.at(offset)
	return l.cur+offset >= l.size
}

func (l *Lexer) advance(n int) {
	for i := 0; i < n && l.cur < l.size; i++ {
		if l.buf[l.cur] == nl {
			l.Line++
			l.Column = 0
		} else {
			l.Column++
		}
		l.cur++
	}
}

// fill reads one more chunk of input. Bytes before the start of the
// current token are discarded when they make enough room, otherwise the
// buffer grows.
func (l *Lexer) fill() bool {
	if l.eof {
		return false
	}
	if len(l.buf)-l.size < l.chunk {
		if fudge := l.chunk / 8; l.start > fudge && len(l.buf)-l.size+l.start >= l.chunk {
			n := copy(l.buf, l.buf[l.start:l.size])
			l.cur -= l.start
			l.size = n
			l.start = 0
		} else {
			buf := make([]byte, len(l.buf)+l.chunk)
			copy(buf, l.buf[:l.size])
			l.buf = buf
		}
	}
	for {
		n, err := l.input.Read(l.buf[l.size : l.size+l.chunk])
		l.size += n
		if err != nil {
			if !errors.Is(err, io.EOF) {
				l.err = err
			}
			l.eof = true
			return n > 0
		}
		if n > 0 {
			return true
		}
	}
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isBlank(c byte) bool {
	return c == space || c == tab || c == nl || c == cr
}

func isBare(c byte) bool {
	return isLetter(c) || isDigit(c) || c == colon || c == underscore || c == dot || c == '-' || c >= 0x80
}

func isVar(c byte) bool {
	return isLetter(c) || isDigit(c) || c == colon || c == underscore || c == dot || c == '-' || c >= 0x80
}

// ScanAll returns all the tokens of the input. It stops at the first error.
func ScanAll(r io.Reader, options ...LexOption) ([]Token, error) {
	var (
		lex  = NewLexer(r, options...)
		list []Token
	)
	for {
		tok, err := lex.Lex()
		if err != nil {
			return list, err
		}
		if tok.Type == EOF {
			break
		}
		list = append(list, tok)
	}
	return list, nil
}

func ScanString(str string, options ...LexOption) ([]Token, error) {
	return ScanAll(bytes.NewReader([]byte(str)), options...)
}
