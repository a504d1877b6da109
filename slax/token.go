package slax

import (
	"fmt"
)

type Position struct {
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

const (
	EOF rune = -(1 + iota)
	Bare
	FuncName
	AxisName
	Quoted
	Variable
	Number
	Keyword
	Invalid
)

const (
	opAssign rune = -(iota + 1000)
	opAnd
	opAxis
	opEq
	opParent
	opDescendant
	opOr
	opGe
	opLe
	opNe
	opAppend
	opEllipsis
	opAt
	endBlock
	endPred
	opComma
	endGrp
	opDot
	opSemi
	opEqual
	opGt
	opLt
	opSub
	begBlock
	begPred
	begGrp
	opAdd
	opSlash
	opMul
	opStar
	opConcat
	opUnion
	opQuestion
	opColon
	opNot
)

// synthetic kinds used only in segment lists.
const (
	ternaryTest rune = -(iota + 2000)
	ternaryQuestion
	ternaryColon
	ternaryEnd
	concatCall
)

type Token struct {
	Literal string
	Type    rune
	Quote   byte
	Position
}

func (t Token) String() string {
	var prefix string
	switch t.Type {
	case EOF:
		return "<eof>"
	case Invalid:
		prefix = "invalid"
	case Bare:
		prefix = "name"
	case FuncName:
		prefix = "function"
	case AxisName:
		prefix = "axis"
	case Quoted:
		prefix = "literal"
	case Variable:
		return fmt.Sprintf("<variable($%s)>", t.Literal)
	case Number:
		prefix = "number"
	case Keyword:
		prefix = "keyword"
	default:
		if s, ok := operators[t.Type]; ok {
			return fmt.Sprintf("<punct(%s)>", s)
		}
		prefix = "unknown"
	}
	return fmt.Sprintf("<%s(%s)>", prefix, t.Literal)
}

func (t Token) isWord(str string) bool {
	return (t.Type == Bare || t.Type == Keyword) && t.Literal == str
}

var operators = map[rune]string{
	opAssign:     ":=",
	opAnd:        "&&",
	opAxis:       "::",
	opEq:         "==",
	opParent:     "..",
	opDescendant: "//",
	opOr:         "||",
	opGe:         ">=",
	opLe:         "<=",
	opNe:         "!=",
	opAppend:     "+=",
	opEllipsis:   "...",
	opAt:         "@",
	endBlock:     "}",
	endPred:      "]",
	opComma:      ",",
	endGrp:       ")",
	opDot:        ".",
	opSemi:       ";",
	opEqual:      "=",
	opGt:         ">",
	opLt:         "<",
	opSub:        "-",
	begBlock:     "{",
	begPred:      "[",
	begGrp:       "(",
	opAdd:        "+",
	opSlash:      "/",
	opMul:        "*",
	opStar:       "*",
	opConcat:     "_",
	opUnion:      "|",
	opQuestion:   "?",
	opColon:      ":",
	opNot:        "!",
}

var (
	tripleWide = map[string]rune{
		"...": opEllipsis,
	}
	doubleWide = map[string]rune{
		":=": opAssign,
		"&&": opAnd,
		"::": opAxis,
		"==": opEq,
		"..": opParent,
		"//": opDescendant,
		"||": opOr,
		">=": opGe,
		"<=": opLe,
		"!=": opNe,
		"+=": opAppend,
	}
	singleWide = map[byte]rune{
		'@': opAt,
		'}': endBlock,
		']': endPred,
		',': opComma,
		')': endGrp,
		'.': opDot,
		';': opSemi,
		'=': opEqual,
		'>': opGt,
		'<': opLt,
		'-': opSub,
		'{': begBlock,
		'[': begPred,
		'(': begGrp,
		'+': opAdd,
		'/': opSlash,
		'*': opMul,
		'_': opConcat,
		'|': opUnion,
		'?': opQuestion,
		':': opColon,
		'!': opNot,
	}
)

// operandEnd reports whether a token of the given kind can end an operand,
// in which case the next token is expected to be an operator.
func operandEnd(kind rune) bool {
	switch kind {
	case Bare, Number, Quoted, Variable, endGrp, endPred, opDot, opParent, opStar:
		return true
	default:
		return false
	}
}
