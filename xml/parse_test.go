package xml_test

import (
	"strings"
	"testing"

	"github.com/midbel/slax/xml"
)

const prolog = `<?xml version="1.0" encoding="UTF-8"?>`

func TestParseInvalidDocument(t *testing.T) {
	data := []struct {
		Xml        string
		Cause      string
		OmitProlog bool
	}{
		{
			Xml:   ``,
			Cause: "document without root element",
		},
		{
			Xml:        `<root></root>`,
			Cause:      "document without prolog",
			OmitProlog: true,
		},
		{
			Xml:   `<root empty-attr></root>`,
			Cause: "attribute without value",
		},
		{
			Xml:   `<root id="id-1" id="id-2"></root>`,
			Cause: "duplicate attribute",
		},
		{
			Xml:   `<root><child></root>`,
			Cause: "mismatched closing element",
		},
		{
			Xml:   `<root/><root/>`,
			Cause: "multiple root elements",
		},
		{
			Xml:   `<root attr="value></root>`,
			Cause: "unterminated attribute value",
		},
	}
	for _, d := range data {
		if !d.OmitProlog {
			d.Xml = prolog + d.Xml
		}
		str := strings.NewReader(d.Xml)
		_, err := xml.NewParser(str).Parse()
		if err == nil {
			t.Errorf("%s: invalid document parsed properly!", d.Cause)
		}
	}
}

func TestParseStylesheet(t *testing.T) {
	const doc = `<?xml version="1.0"?>
<xsl:stylesheet version="1.0" xmlns:xsl="http://www.w3.org/1999/XSL/Transform">
  <!-- top -->
  <xsl:variable name='x' select="concat(1, &quot;+&quot;, 2)"/>
  <xsl:template match="/">
    <out><![CDATA[a < b]]></out>
  </xsl:template>
</xsl:stylesheet>`

	p := xml.NewParser(strings.NewReader(doc))
	p.TrimSpace = false
	res, err := p.Parse()
	if err != nil {
		t.Fatalf("fail to parse stylesheet: %s", err)
	}
	root, ok := res.Root().(*xml.Element)
	if !ok {
		t.Fatalf("root element expected")
	}
	if root.Uri != "http://www.w3.org/1999/XSL/Transform" {
		t.Errorf("namespace of root not resolved: %q", root.Uri)
	}
	els := root.Elements()
	if len(els) != 2 {
		t.Fatalf("expected 2 elements, got %d", len(els))
	}
	sel, ok := els[0].AttributeValue("select")
	if !ok {
		t.Fatalf("select attribute missing")
	}
	if want := `concat(1, "+", 2)`; sel != want {
		t.Errorf("select value mismatched")
		t.Logf("want: %s", want)
		t.Logf("got : %s", sel)
	}
	if name, _ := els[0].AttributeValue("name"); name != "x" {
		t.Errorf("name with single quote not parsed: %q", name)
	}
	out := els[1].Elements()
	if len(out) != 1 || out[0].Value() != "a < b" {
		t.Errorf("cdata section not kept as text")
	}
}

func TestElementSiblings(t *testing.T) {
	root := xml.NewElement(xml.LocalName("root"))
	for _, n := range []string{"a", "b", "c"} {
		root.Append(xml.NewElement(xml.LocalName(n)))
	}
	b := root.Nodes[1].(*xml.Element)
	if prev := b.PrevSibling(); prev == nil || prev.LocalName() != "a" {
		t.Errorf("previous sibling of b should be a")
	}
	if next := b.NextSibling(); next == nil || next.LocalName() != "c" {
		t.Errorf("next sibling of b should be c")
	}
	if err := root.InsertNode(1, xml.NewComment(" c ")); err != nil {
		t.Fatalf("fail to insert node: %s", err)
	}
	if b.Position() != 2 {
		t.Errorf("position not updated after insert: %d", b.Position())
	}
	if err := root.RemoveNode(0); err != nil {
		t.Fatalf("fail to remove node: %s", err)
	}
	if prev := b.PrevSibling(); prev == nil || prev.Type() != xml.TypeComment {
		t.Errorf("previous sibling of b should be the comment")
	}
}
