package slax_test

import (
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/midbel/slax/slax"
	"github.com/midbel/slax/xml"
)

func TestParseSelect(t *testing.T) {
	data := []struct {
		Input string
		Ident string
		Want  string
	}{
		{
			Input: `var $x = 1 _ "+" _ 2;`,
			Ident: "x",
			Want:  `concat(1, "+", 2)`,
		},
		{
			Input: `var $x = "a" _ "b";`,
			Ident: "x",
			Want:  `"ab"`,
		},
		{
			Input: `var $x = "a" _ 'b';`,
			Ident: "x",
			Want:  `concat("a", "b")`,
		},
		{
			Input: `var $x = $a _ "-" _ $b _ "-" _ $c;`,
			Ident: "x",
			Want:  `concat($a, "-", $b, "-", $c)`,
		},
		{
			Input: `var $x = $a == 1 && $b != 2;`,
			Ident: "x",
			Want:  `$a = 1 and $b != 2`,
		},
		{
			Input: `var $x = !$a;`,
			Ident: "x",
			Want:  `not($a)`,
		},
		{
			Input: `var $x = 1 ... 3;`,
			Ident: "x",
			Want:  `slax:build-sequence(1, 3)`,
		},
		{
			Input: `var $x = item[@id = "a"]/name;`,
			Ident: "x",
			Want:  `item[@id = "a"]/name`,
		},
		{
			Input: `var $x = $a ? "y" : "n";`,
			Ident: "x",
			Want:  `slax:value($slax-ternary-1)`,
		},
		{
			Input: `var $x := item;`,
			Ident: "x",
			Want:  `slax-ext:node-set(item)`,
		},
	}
	for _, d := range data {
		doc, err := slax.ParseString(d.Input)
		if err != nil {
			t.Errorf("%s: unexpected error: %s", d.Input, err)
			continue
		}
		el := findVariable(doc, d.Ident)
		if el == nil {
			t.Errorf("%s: variable %s not found", d.Input, d.Ident)
			continue
		}
		got, _ := el.AttributeValue("select")
		if got != d.Want {
			t.Errorf("%s: select mismatched", d.Input)
			t.Logf("want: %s", d.Want)
			t.Logf("got : %s", got)
		}
	}
}

func TestParseCallAndNumber(t *testing.T) {
	const str = `
match / {
	number position();
	call t($a = 1);
	var $x = call t();
}
`
	doc, err := slax.ParseString(str)
	if err != nil {
		t.Errorf("unexpected error: %s", err)
		return
	}
	var names []string
	walk(root(doc), func(el *xml.Element) {
		names = append(names, el.QualifiedName())
	})
	want := []string{
		"xsl:stylesheet",
		"xsl:template",
		"xsl:number",
		"xsl:call-template",
		"xsl:with-param",
		"xsl:variable",
		"xsl:call-template",
	}
	if !slices.Equal(names, want) {
		t.Errorf("elements mismatched")
		t.Logf("want: %s", want)
		t.Logf("got : %s", names)
		return
	}
	list := root(doc).Elements()[0].Elements()
	if value, _ := list[0].AttributeValue("value"); value != "position()" {
		t.Errorf("number value mismatched: %q", value)
	}
	if name, _ := list[1].AttributeValue("name"); name != "t" {
		t.Errorf("template name mismatched: %q", name)
	}
}

func TestParseTernary(t *testing.T) {
	data := []struct {
		Input string
		Want  []string
	}{
		{
			Input: `var $x = $a ? "y" : "n";`,
			Want:  []string{"slax-ternary-1", "x"},
		},
		{
			Input: `var $x = $a ?: "n";`,
			Want:  []string{"slax-ternary-1-cond", "slax-ternary-1", "x"},
		},
		{
			Input: `var $x = $a ? 1 : 2; var $y = $b ? 3 : 4;`,
			Want:  []string{"slax-ternary-1", "x", "slax-ternary-2", "y"},
		},
		{
			Input: `match / { if ($a) { <out> $b ? 1 : 2; } }`,
			Want:  []string{"slax-ternary-1"},
		},
	}
	for _, d := range data {
		doc, err := slax.ParseString(d.Input)
		if err != nil {
			t.Errorf("%s: unexpected error: %s", d.Input, err)
			continue
		}
		var got []string
		walk(root(doc), func(el *xml.Element) {
			if el.QualifiedName() != "xsl:variable" {
				return
			}
			name, _ := el.AttributeValue("name")
			got = append(got, name)
		})
		if !slices.Equal(got, d.Want) {
			t.Errorf("%s: variables mismatched", d.Input)
			t.Logf("want: %s", d.Want)
			t.Logf("got : %s", got)
		}
	}
}

func TestParseTernaryPlacement(t *testing.T) {
	const str = `match / { if ($a ? $b : $c) { expr 1; } }`

	doc, err := slax.ParseString(str)
	if err != nil {
		t.Errorf("unexpected error: %s", err)
		return
	}
	tpl := root(doc).Elements()[0]
	list := tpl.Elements()
	if len(list) != 2 {
		t.Errorf("template: expected 2 elements, got %d", len(list))
		return
	}
	if list[0].QualifiedName() != "xsl:variable" || list[1].QualifiedName() != "xsl:if" {
		t.Errorf("variable should be inserted before xsl:if, got %s and %s", list[0].QualifiedName(), list[1].QualifiedName())
	}
}

func TestParseFor(t *testing.T) {
	const str = `
match / {
	for $i (item) {
		sort @name;
		expr $i;
	}
}
`
	doc, err := slax.ParseString(str)
	if err != nil {
		t.Errorf("unexpected error: %s", err)
		return
	}
	var names []string
	walk(root(doc), func(el *xml.Element) {
		names = append(names, el.QualifiedName())
	})
	want := []string{
		"xsl:stylesheet",
		"xsl:template",
		"xsl:variable",
		"xsl:for-each",
		"xsl:sort",
		"xsl:variable",
		"xsl:for-each",
		"xsl:value-of",
	}
	if !slices.Equal(names, want) {
		t.Errorf("elements mismatched")
		t.Logf("want: %s", want)
		t.Logf("got : %s", names)
	}
}

func TestParseMvar(t *testing.T) {
	const str = `
match / {
	mvar $count = 0;
	append $count += 1;
	mvar $nodes = {
		<a>;
	}
}
`
	doc, err := slax.ParseString(str)
	if err != nil {
		t.Errorf("unexpected error: %s", err)
		return
	}
	data := []struct {
		Ident string
		Attr  string
		Want  string
	}{
		{
			Ident: "slax-count",
			Attr:  "mvarname",
			Want:  "count",
		},
		{
			Ident: "count",
			Attr:  "svarname",
			Want:  "slax-count",
		},
		{
			Ident: "count",
			Attr:  "mutable",
			Want:  "yes",
		},
		{
			Ident: "nodes",
			Attr:  "select",
			Want:  `slax:mvar-init("nodes", "slax-nodes", $slax-nodes)`,
		},
	}
	for _, d := range data {
		el := findVariable(doc, d.Ident)
		if el == nil {
			t.Errorf("%s: variable not found", d.Ident)
			continue
		}
		got, _ := el.AttributeValue(d.Attr)
		if got != d.Want {
			t.Errorf("%s: %s mismatched", d.Ident, d.Attr)
			t.Logf("want: %s", d.Want)
			t.Logf("got : %s", got)
		}
	}
	var found bool
	walk(root(doc), func(el *xml.Element) {
		found = found || el.QualifiedName() == "slax:append-to-variable"
	})
	if !found {
		t.Errorf("slax:append-to-variable not found")
	}
}

func TestParseErrors(t *testing.T) {
	data := []struct {
		Input string
		Err   error
	}{
		{
			Input: `match / { var $x = 1; set $x = 2; }`,
			Err:   slax.ErrImmutable,
		},
		{
			Input: `match / { set $y = 2; }`,
			Err:   slax.ErrUndefined,
		},
		{
			Input: `match / { mvar $x = 1; } match /item { append $x += 1; }`,
			Err:   slax.ErrUndefined,
		},
		{
			Input: `match / { <foo:bar>; }`,
			Err:   slax.ErrNamespace,
		},
		{
			Input: `version 2.0;`,
			Err:   slax.ErrSyntax,
		},
		{
			Input: `match / { expr 1 }`,
			Err:   slax.ErrSyntax,
		},
	}
	for _, d := range data {
		_, err := slax.ParseString(d.Input)
		if err == nil {
			t.Errorf("%s: expected error but got none", d.Input)
			continue
		}
		if !errors.Is(err, d.Err) {
			t.Errorf("%s: unexpected error: %s", d.Input, err)
		}
	}
}

func TestParseUnknownStatement(t *testing.T) {
	_, err := slax.ParseString(`match / { aply-templates; }`)
	if err == nil {
		t.Errorf("expected error but got none")
		return
	}
	var perr slax.ParseError
	if !errors.As(err, &perr) {
		t.Errorf("expected parse error, got %T", err)
		return
	}
	if !strings.Contains(perr.Message, "unknown statement") {
		t.Errorf("unexpected message: %s", perr.Message)
	}
	if !slices.Contains(perr.Others, "apply-templates") {
		t.Errorf("apply-templates not suggested: %s", perr.Others)
	}
}

func TestParseNamespaceOnElement(t *testing.T) {
	const str = `match / { <foo:bar xmlns:foo = "urn:foo">; }`

	doc, err := slax.ParseString(str)
	if err != nil {
		t.Errorf("unexpected error: %s", err)
		return
	}
	var uri string
	walk(root(doc), func(el *xml.Element) {
		if el.QualifiedName() == "foo:bar" {
			uri = el.Uri
		}
	})
	if uri != "urn:foo" {
		t.Errorf("namespace not resolved: %q", uri)
	}
}

func root(doc *xml.Document) *xml.Element {
	el, _ := doc.Root().(*xml.Element)
	return el
}

func walk(el *xml.Element, fn func(*xml.Element)) {
	if el == nil {
		return
	}
	fn(el)
	for _, c := range el.Elements() {
		walk(c, fn)
	}
}

func findVariable(doc *xml.Document, ident string) *xml.Element {
	var found *xml.Element
	walk(root(doc), func(el *xml.Element) {
		if found != nil || el.QualifiedName() != "xsl:variable" {
			return
		}
		if name, _ := el.AttributeValue("name"); name == ident {
			found = el
		}
	})
	return found
}
