package main

import (
	"flag"

	"github.com/midbel/cli"
)

var formatCmd = cli.Command{
	Name:    "format",
	Summary: "rewrite SLAX script in its canonical form",
	Handler: &FormatCmd{},
}

type FormatCmd struct {
	OutFile string
	Version string
	ParserOptions
}

func (f *FormatCmd) Run(args []string) error {
	set := flag.NewFlagSet("format", flag.ContinueOnError)
	set.StringVar(&f.OutFile, "o", "", "write the script to the given file")
	set.StringVar(&f.Version, "v", "", "version of SLAX of the script")
	set.BoolVar(&f.Strict, "strict", false, "keep backslashes of literals as is")
	set.BoolVar(&f.Trace, "trace", false, "trace the parser")

	if err := set.Parse(args); err != nil {
		return err
	}
	doc, err := parseScript(set.Arg(0), f.ParserOptions)
	if err != nil {
		return err
	}
	count, err := writeScript(doc, f.OutFile, f.Version, false)
	if err == nil && count > 0 {
		err = errFail
	}
	return err
}
