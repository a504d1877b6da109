package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/midbel/slax/slax"
	"github.com/midbel/slax/xml"
)

const (
	slaxExt = ".slax"
	xslExt  = ".xsl"
)

type ParserOptions struct {
	Trace  bool
	Strict bool
}

func (o ParserOptions) lexOptions(file string) []slax.LexOption {
	options := []slax.LexOption{
		slax.WithFile(file),
	}
	if o.Strict {
		options = append(options, slax.WithFlags(slax.Strict))
	}
	return options
}

type WriterOptions struct {
	Compact   bool
	NoComment bool
}

func parseScript(file string, options ParserOptions) (*xml.Document, error) {
	r, err := openFile(file)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	p := slax.NewParser(r, options.lexOptions(file)...)
	if options.Trace {
		p.Tracer = slax.TraceStderr()
	}
	return p.Parse()
}

func parseStylesheet(file string) (*xml.Document, error) {
	r, err := openFile(file)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	p := xml.NewParser(r)
	p.OmitProlog = true
	return p.Parse()
}

func writeStylesheet(doc *xml.Document, file string, options WriterOptions) error {
	if doc == nil {
		return fmt.Errorf("no document to be written")
	}
	w, err := createFile(file)
	if err != nil {
		return err
	}
	defer w.Close()

	ws := xml.NewWriter(w)
	if options.Compact {
		ws.WriterOptions |= xml.OptionCompact
	}
	if options.NoComment {
		ws.WriterOptions |= xml.OptionNoComment
	}
	return ws.Write(doc)
}

// writeScript writes the document as a SLAX script and returns the number
// of expressions the writer failed to convert.
func writeScript(doc *xml.Document, file, version string, trace bool) (int, error) {
	w, err := createFile(file)
	if err != nil {
		return 0, err
	}
	defer w.Close()

	ws := slax.NewWriter(w)
	if version != "" {
		ws.Version = version
	}
	if trace {
		ws.Tracer = slax.TraceStderr()
	}
	return ws.Write(doc)
}

func openFile(file string) (io.ReadCloser, error) {
	if file == "" || file == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(file)
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error {
	return nil
}

func createFile(file string) (io.WriteCloser, error) {
	if file == "" || file == "-" {
		return nopWriteCloser{os.Stdout}, nil
	}
	if dir := filepath.Dir(file); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return os.Create(file)
}

func replaceExt(file, ext string) string {
	file = filepath.Base(file)
	return strings.TrimSuffix(file, filepath.Ext(file)) + ext
}

func slaxPath() []string {
	var list []string
	for _, dir := range filepath.SplitList(os.Getenv("SLAXPATH")) {
		if dir = strings.TrimSpace(dir); dir != "" {
			list = append(list, dir)
		}
	}
	return list
}

// expandFiles replaces each directory of the list by the scripts it
// contains.
func expandFiles(files []string) ([]string, error) {
	var list []string
	for _, f := range files {
		s, err := os.Stat(f)
		if err != nil || !s.IsDir() {
			list = append(list, f)
			continue
		}
		es, err := os.ReadDir(f)
		if err != nil {
			return nil, err
		}
		for _, e := range es {
			if e.IsDir() || filepath.Ext(e.Name()) != slaxExt {
				continue
			}
			list = append(list, filepath.Join(f, e.Name()))
		}
	}
	return list, nil
}
