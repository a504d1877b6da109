package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/midbel/cli"
	"github.com/midbel/slax/slax"
	"github.com/midbel/slax/xml"
	g "maragu.dev/gomponents"
	h "maragu.dev/gomponents/html"
)

var reportCmd = cli.Command{
	Name:    "report",
	Summary: "build an HTML report of the round trip of SLAX scripts",
	Handler: &ReportCmd{},
}

type ReportCmd struct {
	OutFile string
	Title   string
	ParserOptions
}

// roundTrip holds the result of a script compiled into a stylesheet and
// written back as a script.
type roundTrip struct {
	File   string
	Source string
	Xslt   string
	Slax   string
	Errors int
	Err    error
}

func (r roundTrip) Stable() bool {
	return r.Err == nil && r.Errors == 0 && r.Slax != "" && sameScript(r.Slax)
}

func (c *ReportCmd) Run(args []string) error {
	set := flag.NewFlagSet("report", flag.ContinueOnError)
	set.StringVar(&c.OutFile, "o", "", "write the report to the given file")
	set.StringVar(&c.Title, "t", "slaxproc report", "title of the report")
	set.BoolVar(&c.Strict, "strict", false, "keep backslashes of literals as is")
	if err := set.Parse(args); err != nil {
		return err
	}
	files, err := expandFiles(set.Args())
	if err != nil {
		return err
	}
	var list []roundTrip
	for _, f := range files {
		list = append(list, c.roundTrip(f))
	}
	w, err := createFile(c.OutFile)
	if err != nil {
		return err
	}
	defer w.Close()
	return renderReport(c.Title, list).Render(w)
}

func (c *ReportCmd) roundTrip(file string) roundTrip {
	rt := roundTrip{
		File: file,
	}
	buf, err := os.ReadFile(file)
	if err != nil {
		rt.Err = err
		return rt
	}
	rt.Source = string(buf)

	doc, err := slax.ParseString(rt.Source, c.lexOptions(file)...)
	if err != nil {
		rt.Err = err
		return rt
	}
	if rt.Xslt, err = xml.WriteDocument(doc, 0); err != nil {
		rt.Err = err
		return rt
	}
	rt.Slax, rt.Errors, rt.Err = slax.WriteDocument(doc, "")
	return rt
}

// sameScript reports whether the written script, once compiled and written
// again, gives the same result.
func sameScript(written string) bool {
	doc, err := slax.ParseString(written)
	if err != nil {
		return false
	}
	again, _, err := slax.WriteDocument(doc, "")
	return err == nil && again == written
}

func renderReport(title string, list []roundTrip) g.Node {
	return h.Doctype(
		h.HTML(
			h.Lang("en"),
			h.Head(
				h.Meta(h.Charset("utf-8")),
				h.TitleEl(g.Text(title)),
				h.StyleEl(g.Raw(reportStyle)),
			),
			h.Body(
				h.H1(g.Text(title)),
				renderSummary(list),
				g.Map(list, renderFile),
			),
		),
	)
}

func renderSummary(list []roundTrip) g.Node {
	row := func(r roundTrip) g.Node {
		status := "stable"
		switch {
		case r.Err != nil:
			status = "error"
		case r.Errors > 0:
			status = fmt.Sprintf("%d error(s)", r.Errors)
		case !r.Stable():
			status = "unstable"
		}
		return h.Tr(
			h.Td(h.A(h.Href("#"+anchor(r.File)), g.Text(r.File))),
			h.Td(h.Class(status), g.Text(status)),
		)
	}
	return h.Table(
		h.THead(h.Tr(h.Th(g.Text("script")), h.Th(g.Text("status")))),
		h.TBody(g.Map(list, row)),
	)
}

func renderFile(r roundTrip) g.Node {
	return h.Section(
		h.ID(anchor(r.File)),
		h.H2(g.Text(r.File)),
		g.If(r.Err != nil, h.P(h.Class("error"), g.Textf("%v", r.Err))),
		h.Div(
			h.Class("panes"),
			renderPane("source", r.Source),
			renderPane("xslt", r.Xslt),
			renderPane("slax", r.Slax),
		),
	)
}

func renderPane(name, content string) g.Node {
	return h.Div(
		h.Class("pane"),
		h.H3(g.Text(name)),
		h.Pre(h.Code(g.Text(content))),
	)
}

func anchor(file string) string {
	return "file-" + filepath.ToSlash(file)
}

const reportStyle = `
body { font-family: sans-serif; margin: 2em; }
table { border-collapse: collapse; }
td, th { padding: .2em 1em; text-align: left; }
.panes { display: flex; gap: 1em; }
.pane { flex: 1; overflow: auto; }
pre { background: #f4f4f4; padding: .5em; }
.error { color: #c00; }
.unstable { color: #c60; }
.stable { color: #080; }
`
