package slax

import (
	"strings"
	"testing"
)

func TestParseExpr(t *testing.T) {
	data := []struct {
		Input string
		Want  string
	}{
		{
			Input: "1 + 2 * 3",
			Want:  "binary(+, number(1), binary(*, number(2), number(3)))",
		},
		{
			Input: "(1 + 2) * 3",
			Want:  "binary(*, group(binary(+, number(1), number(2))), number(3))",
		},
		{
			Input: `$a _ "b" _ $c`,
			Want:  "binary(_, binary(_, variable(a), literal(b)), variable(c))",
		},
		{
			Input: "$a ? 1 : 2",
			Want:  "ternary(variable(a), number(1), number(2))",
		},
		{
			Input: "$a ?: 2",
			Want:  "ternary(variable(a), , number(2))",
		},
		{
			Input: "a/b[1]",
			Want:  "step(/, name(a), filter(name(b), number(1)))",
		},
		{
			Input: "//item",
			Want:  "root(//, name(item))",
		},
		{
			Input: "$x = 1 or $y != 2 and $z",
			Want:  "binary(or, binary(=, variable(x), number(1)), binary(and, binary(!=, variable(y), number(2)), variable(z)))",
		},
		{
			Input: "count(item) div 2",
			Want:  "binary(div, call(count, name(item)), number(2))",
		},
		{
			Input: "-$x",
			Want:  "unary(-, variable(x))",
		},
		{
			Input: "1 ... 10",
			Want:  "binary(..., number(1), number(10))",
		},
	}
	for _, d := range data {
		expr, err := ParseExpr(d.Input)
		if err != nil {
			t.Errorf("%s: unexpected error: %s", d.Input, err)
			continue
		}
		var str strings.Builder
		debugExpr(&str, expr)
		if got := str.String(); got != d.Want {
			t.Errorf("%s: tree mismatched", d.Input)
			t.Logf("want: %s", d.Want)
			t.Logf("got : %s", got)
		}
	}
}

func TestPrintExpr(t *testing.T) {
	ternaries := map[string]ternary{
		"slax-ternary-1": {
			cond: variable{ident: "a"},
			then: literal{value: "y"},
			alt:  literal{value: "n"},
		},
	}
	data := []struct {
		Input string
		Want  string
	}{
		{
			Input: `concat($a, "-", $b)`,
			Want:  `$a _ "-" _ $b`,
		},
		{
			Input: `concat("a", "b")`,
			Want:  `concat("a", "b")`,
		},
		{
			Input: `$a = 1 and not($b)`,
			Want:  `$a == 1 && not($b)`,
		},
		{
			Input: `concat($a, "x") = "ax"`,
			Want:  `$a _ "x" == "ax"`,
		},
		{
			Input: `concat($a, "x") * 2`,
			Want:  `concat($a, "x") * 2`,
		},
		{
			Input: `slax:build-sequence(1, 5)`,
			Want:  `1 ... 5`,
		},
		{
			Input: `(1 + 2) * 3`,
			Want:  `(1 + 2) * 3`,
		},
		{
			Input: `slax:value($slax-ternary-1)`,
			Want:  `$a ? "y" : "n"`,
		},
		{
			Input: `concat("v=", slax:value($slax-ternary-1))`,
			Want:  `"v=" _ ($a ? "y" : "n")`,
		},
		{
			Input: `'say "hi"'`,
			Want:  `'say "hi"'`,
		},
	}
	for _, d := range data {
		expr, err := ParseExpr(d.Input)
		if err != nil {
			t.Errorf("%s: unexpected error: %s", d.Input, err)
			continue
		}
		p := printer{
			ternaries: ternaries,
		}
		p.print(expr, powLowest)
		if got := p.String(); got != d.Want {
			t.Errorf("%s: expression mismatched", d.Input)
			t.Logf("want: %s", d.Want)
			t.Logf("got : %s", got)
		}
	}
}

func TestFormatAVT(t *testing.T) {
	data := []struct {
		Input string
		Want  string
		Fail  bool
	}{
		{
			Input: "plain",
			Want:  `"plain"`,
		},
		{
			Input: "{$x}",
			Want:  "$x",
		},
		{
			Input: "a{$b}c",
			Want:  `"a" _ $b _ "c"`,
		},
		{
			Input: "{{x}}",
			Want:  `"{x}"`,
		},
		{
			Input: "{$a > 1}",
			Want:  "($a > 1)",
		},
		{
			Input: `{concat("}", $a)}`,
			Want:  `"}" _ $a`,
		},
		{
			Input: "a}b",
			Fail:  true,
		},
		{
			Input: "{}",
			Fail:  true,
		},
		{
			Input: "{$x",
			Fail:  true,
		},
	}
	for _, d := range data {
		got, err := formatAVT(d.Input, nil)
		if d.Fail {
			if err == nil {
				t.Errorf("%s: expected error but got none", d.Input)
			}
			continue
		}
		if err != nil {
			t.Errorf("%s: unexpected error: %s", d.Input, err)
			continue
		}
		if got != d.Want {
			t.Errorf("%s: value mismatched", d.Input)
			t.Logf("want: %s", d.Want)
			t.Logf("got : %s", got)
		}
	}
}
