package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/midbel/cli"
)

var decompileCmd = cli.Command{
	Name:    "decompile",
	Summary: "write XSLT stylesheet as SLAX script",
	Handler: &DecompileCmd{},
}

type DecompileCmd struct {
	OutFile string
	Version string
	Trace   bool
}

func (c *DecompileCmd) Run(args []string) error {
	set := flag.NewFlagSet("decompile", flag.ContinueOnError)
	set.StringVar(&c.OutFile, "o", "", "write the script to the given file")
	set.StringVar(&c.Version, "v", "", "version of SLAX of the script")
	set.BoolVar(&c.Trace, "trace", false, "trace the writer")

	if err := set.Parse(args); err != nil {
		return err
	}
	doc, err := parseStylesheet(set.Arg(0))
	if err != nil {
		return err
	}
	count, err := writeScript(doc, c.OutFile, c.Version, c.Trace)
	if err != nil {
		return err
	}
	if count > 0 {
		fmt.Fprintf(os.Stderr, "%d expression(s) could not be converted\n", count)
		return errFail
	}
	return nil
}
