package slax_test

import (
	"strings"
	"testing"

	"github.com/midbel/slax/slax"
	"github.com/midbel/slax/xml"
)

const header = "/* Machine Crafted with Care (tm) by slaxWriter */\nversion 1.2;\n\n"

func TestWriteScript(t *testing.T) {
	data := []struct {
		Input string
		Want  string
	}{
		{
			Input: `var $x = 1 _ "+" _ 2;`,
			Want:  `var $x = 1 _ "+" _ 2;`,
		},
		{
			Input: `var $x = $a ? "y" : "n";`,
			Want:  `var $x = $a ? "y" : "n";`,
		},
		{
			Input: `var $x = $a ?: "n";`,
			Want:  `var $x = $a ?: "n";`,
		},
		{
			Input: `var $x := item;`,
			Want:  `var $x := item;`,
		},
		{
			Input: `match / { for $i (item) { expr $i; } }`,
			Want: strings.Join([]string{
				"match / {",
				"    for $i (item) {",
				"        expr $i;",
				"    }",
				"}",
			}, "\n"),
		},
		{
			Input: `match / { mvar $count = 0; set $count = $count + 1; }`,
			Want: strings.Join([]string{
				"match / {",
				"    mvar $count = 0;",
				"    set $count = $count + 1;",
				"}",
			}, "\n"),
		},
		{
			Input: `match / { if ($a) { expr 1; } else { expr 2; } }`,
			Want: strings.Join([]string{
				"match / {",
				"    if ($a) {",
				"        expr 1;",
				"    } else {",
				"        expr 2;",
				"    }",
				"}",
			}, "\n"),
		},
		{
			Input: `template t($a, $b = 1) { call u($a, $c = 2); }`,
			Want: strings.Join([]string{
				"template t($a, $b = 1) {",
				"    call u($a, $c = 2);",
				"}",
			}, "\n"),
		},
		{
			Input: `ns foo = "urn:foo"; var $x = 1; match / { expr $x; }`,
			Want: strings.Join([]string{
				`ns foo = "urn:foo";`,
				``,
				`var $x = 1;`,
				``,
				`match / {`,
				`    expr $x;`,
				`}`,
			}, "\n"),
		},
		{
			Input: `var $x = 1; /* note */ match / { expr $x; }`,
			Want: strings.Join([]string{
				`var $x = 1;`,
				``,
				`/* note */`,
				`match / {`,
				`    expr $x;`,
				`}`,
			}, "\n"),
		},
		{
			Input: `match / { <a href = "x" _ $y>; }`,
			Want: strings.Join([]string{
				`match / {`,
				`    <a href = "x" _ $y>;`,
				`}`,
			}, "\n"),
		},
	}
	for _, d := range data {
		doc, err := slax.ParseString(d.Input)
		if err != nil {
			t.Errorf("%s: fail to parse script: %s", d.Input, err)
			continue
		}
		got, count, err := slax.WriteDocument(doc, "")
		if err != nil {
			t.Errorf("%s: error writing document: %s", d.Input, err)
			continue
		}
		if count != 0 {
			t.Errorf("%s: unexpected error count: %d", d.Input, count)
		}
		want := header + d.Want + "\n"
		if got != want {
			t.Errorf("%s: result mismatched", d.Input)
			t.Logf("want: %s", want)
			t.Logf("got : %s", got)
		}
	}
}

func TestWriteStylesheet(t *testing.T) {
	const prolog = `<?xml version="1.0" encoding="UTF-8"?>`

	data := []struct {
		Input  string
		Want   string
		Errors int
	}{
		{
			Input: `<xsl:stylesheet xmlns:xsl="http://www.w3.org/1999/XSL/Transform" version="1.0"><xsl:template match="/"><xsl:variable name="slax-dot-1" select="."/><xsl:for-each select="item"><xsl:variable name="i" select="."/><xsl:value-of select="$i"/><xsl:for-each select="$slax-dot-1"><xsl:value-of select="$i"/></xsl:for-each></xsl:for-each></xsl:template></xsl:stylesheet>`,
			Want: strings.Join([]string{
				"match / {",
				"    var $slax-dot-1 = .;",
				"    for-each (item) {",
				"        var $i = .;",
				"        expr $i;",
				"        for-each ($slax-dot-1) {",
				"            expr $i;",
				"        }",
				"    }",
				"}",
			}, "\n"),
		},
		{
			Input: `<xsl:stylesheet xmlns:xsl="http://www.w3.org/1999/XSL/Transform" version="1.0"><xsl:template match="/"><xsl:value-of select="1 +"/><xsl:value-of select="2"/></xsl:template></xsl:stylesheet>`,
			Want: strings.Join([]string{
				"match / {",
				"    expr <<<<slax error>>>>;",
				"    expr 2;",
				"}",
			}, "\n"),
			Errors: 1,
		},
		{
			Input: `<xsl:stylesheet xmlns:xsl="http://www.w3.org/1999/XSL/Transform" version="1.0"><xsl:template match="/"><out title="a{$b}c" id="{{x}}"/></xsl:template></xsl:stylesheet>`,
			Want: strings.Join([]string{
				"match / {",
				`    <out title = "a" _ $b _ "c" id = "{x}">;`,
				"}",
			}, "\n"),
		},
		{
			Input: `<xsl:stylesheet xmlns:xsl="http://www.w3.org/1999/XSL/Transform" version="1.0"><xsl:template match="/"><out title="a}b"/></xsl:template></xsl:stylesheet>`,
			Want: strings.Join([]string{
				"match / {",
				`    <out title = <<<<slax error>>>>>;`,
				"}",
			}, "\n"),
			Errors: 1,
		},
		{
			Input: `<root><a>text</a></root>`,
			Want: strings.Join([]string{
				"match / {",
				`    <root> <a> "text";`,
				"}",
			}, "\n"),
		},
	}
	for _, d := range data {
		doc, err := xml.ParseString(prolog + d.Input)
		if err != nil {
			t.Errorf("fail to parse input document: %s", err)
			continue
		}
		got, count, err := slax.WriteDocument(doc, "")
		if err != nil {
			t.Errorf("error writing document: %s", err)
			continue
		}
		if count != d.Errors {
			t.Errorf("error count mismatched: want %d, got %d", d.Errors, count)
		}
		want := header + d.Want + "\n"
		if got != want {
			t.Errorf("result mismatched")
			t.Logf("want: %s", want)
			t.Logf("got : %s", got)
		}
	}
}

func TestWriteLegacy(t *testing.T) {
	doc, err := slax.ParseString(`var $x = $a ? 1 : 2;`)
	if err != nil {
		t.Errorf("fail to parse script: %s", err)
		return
	}
	got, _, err := slax.WriteDocument(doc, "1.0")
	if err != nil {
		t.Errorf("error writing document: %s", err)
		return
	}
	for _, str := range []string{"version 1.0;", "var $slax-ternary-1 = {", "var $x = slax:value($slax-ternary-1);"} {
		if !strings.Contains(got, str) {
			t.Errorf("%q not found in result", str)
			t.Logf("got: %s", got)
		}
	}
}

func TestWriteTernaryReference(t *testing.T) {
	const (
		prolog = `<?xml version="1.0" encoding="UTF-8"?>`
		choose = `<xsl:variable name="slax-ternary-7"><xsl:choose><xsl:when test="$a"><xsl:copy-of select="$b"/></xsl:when><xsl:otherwise><xsl:copy-of select="$c"/></xsl:otherwise></xsl:choose></xsl:variable>`
	)
	data := []struct {
		Body string
		Want []string
		Not  []string
	}{
		{
			Body: choose + `<xsl:value-of select="$slax-ternary-7"/>`,
			Want: []string{"var $slax-ternary-7 = {", "if ($a) {", "expr $slax-ternary-7;"},
		},
		{
			Body: choose + `<xsl:value-of select="slax:value($slax-ternary-7)"/><xsl:value-of select="$slax-ternary-7"/>`,
			Want: []string{"var $slax-ternary-7 = {", "expr $slax-ternary-7;"},
		},
		{
			Body: choose + `<xsl:value-of select="slax:value($slax-ternary-7)"/>`,
			Want: []string{`expr $a ? $b : $c;`},
			Not:  []string{"var $slax-ternary-7"},
		},
		{
			Body: choose,
			Want: []string{"var $slax-ternary-7 = {"},
		},
	}
	for _, d := range data {
		str := prolog + `<xsl:stylesheet xmlns:xsl="http://www.w3.org/1999/XSL/Transform" xmlns:slax="http://xml.libslax.org/slax" version="1.0"><xsl:template match="/">` + d.Body + `</xsl:template></xsl:stylesheet>`
		doc, err := xml.ParseString(str)
		if err != nil {
			t.Errorf("fail to parse input document: %s", err)
			continue
		}
		got, count, err := slax.WriteDocument(doc, "")
		if err != nil {
			t.Errorf("error writing document: %s", err)
			continue
		}
		if count != 0 {
			t.Errorf("unexpected error count: %d", count)
		}
		for _, w := range d.Want {
			if !strings.Contains(got, w) {
				t.Errorf("%q not found in result", w)
				t.Logf("got: %s", got)
			}
		}
		for _, w := range d.Not {
			if strings.Contains(got, w) {
				t.Errorf("%q should not be written", w)
				t.Logf("got: %s", got)
			}
		}
	}
}

func TestRoundTrip(t *testing.T) {
	scripts := []string{
		`var $x = 1 _ "+" _ 2;`,
		`var $x = $a ? "y" : "n"; var $y = $b ?: 0;`,
		`match / { for $i (item) { sort @name; expr $i; } }`,
		`match / { mvar $count = 0; append $count += 1; expr $count; }`,
		`match / { mvar $nodes = { <a>; } }`,
		`match / { var $set := { <a>; <b>; } copy-of $set; }`,
		`match / { if ($a) { expr 1; } else if ($b) { expr 2; } else { expr 3; } }`,
		`template t($a, $b = 1) { param $c; call u($a, $c = 2); }`,
		`match / { <out id = "x" _ $y> { <inner> "text"; } }`,
		`/* comment */ match item { apply-templates { mode "sub"; } }`,
	}
	for _, str := range scripts {
		first, err := compileAndWrite(str)
		if err != nil {
			t.Errorf("%s: %s", str, err)
			continue
		}
		second, err := compileAndWrite(first)
		if err != nil {
			t.Errorf("%s: second pass: %s", str, err)
			continue
		}
		if first != second {
			t.Errorf("%s: round trip mismatched", str)
			t.Logf("want: %s", first)
			t.Logf("got : %s", second)
		}
	}
}

func compileAndWrite(str string) (string, error) {
	doc, err := slax.ParseString(str)
	if err != nil {
		return "", err
	}
	out, _, err := slax.WriteDocument(doc, "")
	return out, err
}
