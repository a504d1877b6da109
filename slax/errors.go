package slax

import (
	"errors"
	"fmt"
	"strings"

	"github.com/midbel/slax/mvar"
)

var (
	ErrImmutable   = errors.New("immutable variable")
	ErrUndefined   = errors.New("invalid variable")
	ErrUnsupported = mvar.ErrUnsupported
	ErrDepth       = errors.New("maximum depth reached")
	ErrSyntax      = errors.New("syntax error")
	ErrNamespace   = errors.New("undefined namespace prefix")
)

type LexError struct {
	File    string
	Message string
	Position
}

func (e LexError) Error() string {
	if e.File == "" {
		return fmt.Sprintf("%d: %s", e.Line, e.Message)
	}
	return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Message)
}

type ParseError struct {
	File    string
	Token   Token
	Message string
	Others  []string
	Position

	err error
}

func (e ParseError) Error() string {
	var str strings.Builder
	if e.File != "" {
		str.WriteString(e.File)
		str.WriteString(":")
	}
	fmt.Fprintf(&str, "%d: %s", e.Line, e.Message)
	if e.Token.Type != EOF && e.Token.Literal != "" {
		fmt.Fprintf(&str, " (near %q)", e.Token.Literal)
	}
	if len(e.Others) > 0 {
		fmt.Fprintf(&str, ", did you mean %s?", strings.Join(e.Others, ", "))
	}
	return str.String()
}

func (e ParseError) Unwrap() error {
	return e.err
}

// Is reports every parse error as a syntax error.
func (e ParseError) Is(target error) bool {
	return target == ErrSyntax
}
