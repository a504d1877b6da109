package slax_test

import (
	"strings"
	"testing"

	"github.com/midbel/slax/slax"
)

func TestLexerTokens(t *testing.T) {
	data := []struct {
		Input string
		Want  []string
	}{
		{
			Input: `var $x = 1 _ "+" _ 2;`,
			Want: []string{
				"<keyword(var)>",
				"<variable($x)>",
				"<punct(=)>",
				"<number(1)>",
				"<punct(_)>",
				"<literal(+)>",
				"<punct(_)>",
				"<number(2)>",
				"<punct(;)>",
			},
		},
		{
			Input: `match / { apply-templates; }`,
			Want: []string{
				"<keyword(match)>",
				"<punct(/)>",
				"<punct({)>",
				"<name(apply-templates)>",
				"<punct(;)>",
				"<punct(})>",
			},
		},
		{
			Input: `var $x = match;`,
			Want: []string{
				"<keyword(var)>",
				"<variable($x)>",
				"<punct(=)>",
				"<name(match)>",
				"<punct(;)>",
			},
		},
		{
			Input: `$a div 2 mod 3`,
			Want: []string{
				"<variable($a)>",
				"<keyword(div)>",
				"<number(2)>",
				"<keyword(mod)>",
				"<number(3)>",
			},
		},
		{
			Input: `div/and`,
			Want: []string{
				"<name(div)>",
				"<punct(/)>",
				"<name(and)>",
			},
		},
		{
			Input: `count(item) + comment() * 2`,
			Want: []string{
				"<function(count)>",
				"<punct(()>",
				"<name(item)>",
				"<punct())>",
				"<punct(+)>",
				"<function(comment)>",
				"<punct(()>",
				"<punct())>",
				"<punct(*)>",
				"<number(2)>",
			},
		},
		{
			Input: `child::para[@type = "x"]//*`,
			Want: []string{
				"<axis(child)>",
				"<punct(::)>",
				"<name(para)>",
				"<punct([)>",
				"<punct(@)>",
				"<name(type)>",
				"<punct(=)>",
				"<literal(x)>",
				"<punct(])>",
				"<punct(//)>",
				"<punct(*)>",
			},
		},
		{
			Input: `1 ... 10 || .5e2`,
			Want: []string{
				"<number(1)>",
				"<punct(...)>",
				"<number(10)>",
				"<punct(||)>",
				"<number(.5e2)>",
			},
		},
		{
			Input: "#!/usr/bin/slaxproc\n/* header */ version 1.2;",
			Want: []string{
				"<keyword(version)>",
				"<number(1.2)>",
				"<punct(;)>",
			},
		},
	}
	for _, d := range data {
		for _, size := range []int{1, 3, slax.DefaultChunkSize} {
			list, err := slax.ScanString(d.Input, slax.WithChunkSize(size))
			if err != nil {
				t.Errorf("%s: unexpected error: %s", d.Input, err)
				continue
			}
			got := make([]string, 0, len(list))
			for _, tok := range list {
				got = append(got, tok.String())
			}
			if strings.Join(got, " ") != strings.Join(d.Want, " ") {
				t.Errorf("%s: tokens mismatched (chunk: %d)", d.Input, size)
				t.Logf("want: %s", d.Want)
				t.Logf("got : %s", got)
			}
		}
	}
}

func TestLexerPromote(t *testing.T) {
	data := []struct {
		Input string
		Flags slax.LexFlags
		Want  []string
	}{
		{
			Input: `var $x = call foo();`,
			Want: []string{
				"<keyword(var)>",
				"<variable($x)>",
				"<punct(=)>",
				"<keyword(call)>",
				"<function(foo)>",
				"<punct(()>",
				"<punct())>",
				"<punct(;)>",
			},
		},
		{
			Input: `var $x = apply-templates;`,
			Want: []string{
				"<keyword(var)>",
				"<variable($x)>",
				"<punct(=)>",
				"<keyword(apply-templates)>",
				"<punct(;)>",
			},
		},
		{
			Input: `var $x := call f();`,
			Want: []string{
				"<keyword(var)>",
				"<variable($x)>",
				"<punct(:=)>",
				"<keyword(call)>",
				"<function(f)>",
				"<punct(()>",
				"<punct())>",
				"<punct(;)>",
			},
		},
		{
			Input: `var $x = call foo();`,
			Flags: slax.Strict,
			Want: []string{
				"<name(var)>",
				"<variable($x)>",
				"<punct(=)>",
				"<name(call)>",
				"<function(foo)>",
				"<punct(()>",
				"<punct())>",
				"<punct(;)>",
			},
		},
	}
	for _, d := range data {
		for _, size := range []int{1, slax.DefaultChunkSize} {
			list, err := slax.ScanString(d.Input, slax.WithFlags(d.Flags), slax.WithChunkSize(size))
			if err != nil {
				t.Errorf("%s: unexpected error: %s", d.Input, err)
				continue
			}
			got := make([]string, 0, len(list))
			for _, tok := range list {
				got = append(got, tok.String())
			}
			if strings.Join(got, " ") != strings.Join(d.Want, " ") {
				t.Errorf("%s: tokens mismatched (chunk: %d)", d.Input, size)
				t.Logf("want: %s", d.Want)
				t.Logf("got : %s", got)
			}
		}
	}
}

func TestLexerLiteral(t *testing.T) {
	data := []struct {
		Input string
		Want  string
		Flags slax.LexFlags
	}{
		{
			Input: `"a\nb"`,
			Want:  "a\nb",
		},
		{
			Input: `'\x41\x42'`,
			Want:  "AB",
		},
		{
			Input: `"caf\u+00e9"`,
			Want:  "café",
		},
		{
			Input: `"\u-01F600"`,
			Want:  "\U0001F600",
		},
		{
			Input: `"say \"hi\""`,
			Want:  `say "hi"`,
		},
		{
			Input: `"a\nb"`,
			Want:  `a\nb`,
			Flags: slax.Strict,
		},
		{
			Input: `'{"x"}'`,
			Want:  `{"x"}`,
		},
	}
	for _, d := range data {
		list, err := slax.ScanString(d.Input, slax.WithFlags(d.Flags))
		if err != nil {
			t.Errorf("%s: unexpected error: %s", d.Input, err)
			continue
		}
		if len(list) != 1 {
			t.Errorf("%s: expected 1 token, got %d", d.Input, len(list))
			continue
		}
		if got := list[0].Literal; got != d.Want {
			t.Errorf("%s: literal mismatched", d.Input)
			t.Logf("want: %q", d.Want)
			t.Logf("got : %q", got)
		}
	}
}

func TestLexerError(t *testing.T) {
	data := []struct {
		Input string
		Want  string
	}{
		{
			Input: `var $x = "abc;`,
			Want:  "unterminated literal",
		},
		{
			Input: `/* never closed`,
			Want:  "unterminated comment",
		},
		{
			Input: `"\xZZ"`,
			Want:  "invalid escape sequence",
		},
	}
	for _, d := range data {
		_, err := slax.ScanString(d.Input, slax.WithChunkSize(2))
		if err == nil {
			t.Errorf("%s: expected error but got none", d.Input)
			continue
		}
		if !strings.Contains(err.Error(), d.Want) {
			t.Errorf("%s: unexpected error message: %s", d.Input, err)
		}
	}
}

func TestLexerComments(t *testing.T) {
	const str = `
/* first
   comment */
version 1.2;
// line comment
match / {
	/* inner */
}
`
	var got []string
	fn := func(text string, _ slax.Position) {
		got = append(got, text)
	}
	lex := slax.NewLexer(strings.NewReader(str), slax.WithComments(fn), slax.WithFlags(slax.LineComments))
	for {
		tok, err := lex.Lex()
		if err != nil {
			t.Errorf("unexpected error: %s", err)
			return
		}
		if tok.Type == slax.EOF {
			break
		}
		if tok.Type != slax.Quoted && (tok.Literal == ";" || tok.Literal == "{") {
			lex.Reset()
		}
	}
	want := []string{" first\ncomment ", " line comment ", " inner "}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("comments mismatched")
		t.Logf("want: %q", want)
		t.Logf("got : %q", got)
	}
}
