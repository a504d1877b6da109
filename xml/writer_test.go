package xml_test

import (
	"strings"
	"testing"

	"github.com/midbel/slax/xml"
)

func TestWriterWrite(t *testing.T) {
	const str = `<?xml version="1.0" encoding="UTF-8"?><test:root id="1" xmlns:test="urn:test"><test:a attr="text">text</test:a><test:a attr="self"/></test:root>`

	doc, err := xml.ParseString(str)
	if err != nil {
		t.Errorf("fail to parse input document: %s", err)
		return
	}

	data := []struct {
		Want    string
		Options xml.WriterOptions
	}{
		{
			Want:    `<test:root id="1" xmlns:test="urn:test"><test:a attr="text">text</test:a><test:a attr="self"/></test:root>`,
			Options: xml.OptionCompact | xml.OptionNoProlog,
		},
		{
			Want:    `<?xml version="1.0" encoding="UTF-8"?><test:root id="1" xmlns:test="urn:test"><test:a attr="text">text</test:a><test:a attr="self"/></test:root>`,
			Options: xml.OptionCompact,
		},
		{
			Want: strings.Join([]string{
				`<?xml version="1.0" encoding="UTF-8"?>`,
				`<test:root id="1" xmlns:test="urn:test">`,
				`  <test:a attr="text">text</test:a>`,
				`  <test:a attr="self"/>`,
				`</test:root>`,
				``,
			}, "\n"),
		},
		{
			Want: strings.Join([]string{
				`<root id="1">`,
				`  <a attr="text">text</a>`,
				`  <a attr="self"/>`,
				`</root>`,
				``,
			}, "\n"),
			Options: xml.OptionNoNamespace | xml.OptionNoProlog,
		},
	}

	for _, d := range data {
		got, err := xml.WriteDocument(doc, d.Options)
		if err != nil {
			t.Errorf("error writing document: %s", err)
			return
		}
		if got != d.Want {
			t.Errorf("result mismatched")
			t.Logf("want: %s", d.Want)
			t.Logf("got : %s", got)
		}
	}
}

func TestWriteNodeEscape(t *testing.T) {
	el := xml.NewElement(xml.QualifiedName("value-of", "xsl"))
	el.SetAttribute(xml.NewAttribute(xml.LocalName("select"), `$a < "b" & c`))
	el.Append(xml.NewText("1 > 0"))

	want := `<xsl:value-of select="$a &lt; &quot;b&quot; &amp; c">1 &gt; 0</xsl:value-of>`
	if got := xml.WriteNode(el); got != want {
		t.Errorf("escaped node mismatched")
		t.Logf("want: %s", want)
		t.Logf("got : %s", got)
	}
}
