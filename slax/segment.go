package slax

import (
	"strings"
)

const nilSeg = -1

type segFlags uint8

const (
	segQuoted segFlags = 1 << iota
	segBraces
	segSingleQ
	segDoubleQ
	segConcat
	segUnary
)

type segment struct {
	kind  rune
	text  string
	flags segFlags

	next   int
	concat int
}

// Segments owns every segment built while parsing a document. A segment
// list is identified by the index of its first segment. The concat link
// of a segment never owns anything and only points forward in the same
// list.
type Segments struct {
	list []segment
}

func NewSegments() *Segments {
	return &Segments{}
}

func (s *Segments) Create(kind rune, text string) int {
	seg := segment{
		kind:   kind,
		text:   text,
		next:   nilSeg,
		concat: nilSeg,
	}
	s.list = append(s.list, seg)
	return len(s.list) - 1
}

// Quote creates a quoted literal segment remembering the quote used in the
// source.
func (s *Segments) Quote(text string, quote byte) int {
	ix := s.Create(Quoted, text)
	s.list[ix].flags |= segQuoted
	if quote == squote {
		s.list[ix].flags |= segSingleQ
	} else {
		s.list[ix].flags |= segDoubleQ
	}
	return ix
}

func (s *Segments) Len(ix int) int {
	var n int
	for ; ix != nilSeg; ix = s.list[ix].next {
		n++
	}
	return n
}

func (s *Segments) Tail(ix int) int {
	if ix == nilSeg {
		return nilSeg
	}
	for s.list[ix].next != nilSeg {
		ix = s.list[ix].next
	}
	return ix
}

// Link appends the list starting at other at the end of the list starting
// at ix and returns the head of the resulting list.
func (s *Segments) Link(ix, other int) int {
	if ix == nilSeg {
		return other
	}
	if other == nilSeg {
		return ix
	}
	tail := s.Tail(ix)
	s.list[tail].next = other
	return ix
}

func (s *Segments) Kind(ix int) rune {
	if ix == nilSeg {
		return EOF
	}
	return s.list[ix].kind
}

func (s *Segments) Text(ix int) string {
	if ix == nilSeg {
		return ""
	}
	return s.list[ix].text
}

func (s *Segments) Next(ix int) int {
	if ix == nilSeg {
		return nilSeg
	}
	return s.list[ix].next
}

// IsSimple reports whether the list is made of one segment of the given
// kind.
func (s *Segments) IsSimple(ix int, kind rune) bool {
	if ix == nilSeg {
		return false
	}
	seg := s.list[ix]
	return seg.next == nilSeg && seg.kind == kind
}

// AsValue gives the text of a list made of one quoted literal.
func (s *Segments) AsValue(ix int) (string, bool) {
	if !s.IsSimple(ix, Quoted) {
		return "", false
	}
	return s.list[ix].text, true
}

func (s *Segments) sameQuote(ix, other int) bool {
	var (
		mask = segSingleQ | segDoubleQ
		f1   = s.list[ix].flags & mask
		f2   = s.list[other].flags & mask
	)
	return f1 == f2
}

// Concat joins two operands of the concatenation operator. Two literals
// using the same quote are folded into one literal. A left operand built
// by a previous call to Concat is extended with the right operand instead
// of being nested in a new call.
func (s *Segments) Concat(left, right int) int {
	if left == nilSeg {
		return right
	}
	if right == nilSeg {
		return left
	}
	if s.IsSimple(left, Quoted) && s.IsSimple(right, Quoted) && s.sameQuote(left, right) {
		s.list[left].text += s.list[right].text
		return left
	}
	if s.list[left].kind == concatCall && s.list[left].concat != nilSeg {
		end := s.list[left].concat
		s.list[end].kind = opComma
		s.list[end].text = ","
		last := s.Create(endGrp, ")")
		s.Link(right, last)
		s.list[end].next = right
		s.list[left].concat = last
		return left
	}
	var (
		head  = s.Create(concatCall, "concat")
		open  = s.Create(begGrp, "(")
		comma = s.Create(opComma, ",")
		last  = s.Create(endGrp, ")")
	)
	s.list[head].flags |= segConcat
	s.list[head].next = open
	s.list[open].next = left
	s.Link(left, comma)
	s.list[comma].next = right
	s.Link(right, last)
	s.list[head].concat = last
	return head
}

// Ternary threads the three operands of a conditional expression between
// marker segments. The markers are chained through their concat link:
// test, question, colon and end. then is nilSeg for the "cond ?: else"
// form.
func (s *Segments) Ternary(cond, then, alt int) int {
	var (
		test     = s.Create(ternaryTest, "")
		question = s.Create(ternaryQuestion, "?")
		colon    = s.Create(ternaryColon, ":")
		end      = s.Create(ternaryEnd, "")
	)
	s.list[test].concat = question
	s.list[question].concat = colon
	s.list[colon].concat = end

	s.list[test].next = cond
	s.Link(cond, question)
	s.list[question].next = then
	if then == nilSeg {
		s.list[question].next = colon
	} else {
		s.Link(then, colon)
	}
	s.list[colon].next = alt
	s.Link(alt, end)
	return test
}

// ternaryParts gives back the operands threaded by Ternary as strings.
// then is empty for the short form.
func (s *Segments) ternaryParts(ix int) (string, string, string, bool) {
	if s.Kind(ix) != ternaryTest {
		return "", "", "", false
	}
	var (
		question = s.list[ix].concat
		colon    = s.list[question].concat
		end      = s.list[colon].concat
	)
	cond := s.stringRange(s.list[ix].next, question)
	then := s.stringRange(s.list[question].next, colon)
	alt := s.stringRange(s.list[colon].next, end)
	return cond, then, alt, true
}

// Args splits a call list into the lists of segments of its arguments.
// Each argument is returned as a pair of indexes: its first segment and
// the segment following its last one.
func (s *Segments) Args(ix int) [][2]int {
	if ix == nilSeg {
		return nil
	}
	open := s.list[ix].next
	if s.Kind(open) != begGrp {
		return nil
	}
	var (
		args  [][2]int
		depth int
		start = s.list[open].next
	)
	for i := start; i != nilSeg; i = s.list[i].next {
		switch s.list[i].kind {
		case begGrp, begPred:
			depth++
		case endPred:
			depth--
		case endGrp:
			if depth == 0 {
				if start != i {
					args = append(args, [2]int{start, i})
				}
				return args
			}
			depth--
		case opComma:
			if depth == 0 {
				args = append(args, [2]int{start, i})
				start = s.list[i].next
			}
		}
	}
	return args
}

func (s *Segments) String(ix int) string {
	return s.stringRange(ix, nilSeg)
}

func (s *Segments) stringRange(from, to int) string {
	var (
		str  strings.Builder
		prev = nilSeg
	)
	for i := from; i != nilSeg && i != to; i = s.list[i].next {
		seg := s.list[i]
		if prev != nilSeg && s.needSpace(prev, i) {
			str.WriteByte(space)
		}
		switch seg.kind {
		case Quoted:
			str.WriteString(quoteXPath(seg.text))
		case ternaryTest, ternaryEnd:
		default:
			str.WriteString(seg.text)
		}
		prev = i
	}
	return str.String()
}

func (s *Segments) needSpace(prev, curr int) bool {
	var (
		p = s.list[prev]
		c = s.list[curr]
	)
	if p.flags&segUnary != 0 {
		return false
	}
	switch p.kind {
	case begGrp, begPred, opAt, opAxis, ternaryTest:
		return false
	case opSlash, opDescendant:
		return false
	}
	switch c.kind {
	case endGrp, endPred, opComma, begPred, opAxis, ternaryEnd:
		return false
	case opSlash, opDescendant:
		return !operandEnd(p.kind) && p.kind != AxisName
	case begGrp:
		return p.kind != FuncName && p.kind != concatCall
	}
	return true
}

// quoteXPath returns a literal usable in an XPath expression. A text
// containing both kinds of quotes is split into a call to concat.
func quoteXPath(str string) string {
	if !strings.ContainsRune(str, dquote) {
		return string(dquote) + str + string(dquote)
	}
	if !strings.ContainsRune(str, squote) {
		return string(squote) + str + string(squote)
	}
	var (
		parts []string
		rest  = str
	)
	for rest != "" {
		ix := strings.IndexByte(rest, dquote)
		if ix < 0 {
			parts = append(parts, string(dquote)+rest+string(dquote))
			break
		}
		if ix > 0 {
			parts = append(parts, string(dquote)+rest[:ix]+string(dquote))
		}
		parts = append(parts, string(squote)+string(dquote)+string(squote))
		rest = rest[ix+1:]
	}
	return "concat(" + strings.Join(parts, ", ") + ")"
}
