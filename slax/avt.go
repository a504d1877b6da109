package slax

import (
	"fmt"
	"strings"
)

type avtPart struct {
	text string
	expr bool
}

// parseAVT splits an attribute value template into its texts and its
// expressions. Doubled braces stand for a literal brace.
func parseAVT(str string) ([]avtPart, error) {
	var (
		parts []avtPart
		text  strings.Builder
	)
	flush := func() {
		if text.Len() > 0 {
			parts = append(parts, avtPart{text: text.String()})
			text.Reset()
		}
	}
	for i := 0; i < len(str); i++ {
		c := str[i]
		switch {
		case c == '{' && i+1 < len(str) && str[i+1] == '{':
			text.WriteByte(c)
			i++
		case c == '}' && i+1 < len(str) && str[i+1] == '}':
			text.WriteByte(c)
			i++
		case c == '}':
			return nil, fmt.Errorf("%s: unbalanced brace at %d", str, i)
		case c == '{':
			end, err := avtExpr(str, i+1)
			if err != nil {
				return nil, err
			}
			flush()
			expr := strings.TrimSpace(str[i+1 : end])
			if expr == "" {
				return nil, fmt.Errorf("%s: empty expression at %d", str, i)
			}
			parts = append(parts, avtPart{text: expr, expr: true})
			i = end
		default:
			text.WriteByte(c)
		}
	}
	flush()
	if len(parts) == 0 {
		parts = append(parts, avtPart{})
	}
	return parts, nil
}

// avtExpr gives the offset of the brace closing an expression starting at
// pos. Braces inside string literals are skipped.
func avtExpr(str string, pos int) (int, error) {
	var quote byte
	for i := pos; i < len(str); i++ {
		c := str[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == squote || c == dquote:
			quote = c
		case c == '}':
			return i, nil
		}
	}
	return 0, fmt.Errorf("%s: unterminated expression", str)
}

// formatAVT writes an attribute value template as a SLAX expression. The
// texts become literals joined to the expressions with "_".
func formatAVT(str string, ternaries map[string]ternary) (string, error) {
	parts, err := parseAVT(str)
	if err != nil {
		return "", err
	}
	p := printer{
		ternaries: ternaries,
		attr:      true,
		noConcat:  len(parts) > 1,
	}
	for i, pt := range parts {
		if i > 0 {
			p.str.WriteString(" _ ")
		}
		if !pt.expr {
			p.str.WriteString(quoteSlax(pt.text))
			continue
		}
		expr, err := ParseExpr(pt.text)
		if err != nil {
			return "", err
		}
		pow := powLowest
		switch {
		case len(parts) == 1:
		case i == 0:
			pow = powAdd
		default:
			pow = powAdd + 1
		}
		p.print(expr, pow)
	}
	return p.String(), nil
}
