package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/midbel/cli"
)

var errFail = errors.New("fail")

var (
	summary = "slaxproc converts stylesheets between SLAX and XSLT"
	help    = `slaxproc compiles SLAX scripts into XSLT stylesheets and writes
XSLT stylesheets back as SLAX scripts.

Directories listed in SLAXPATH (separated by the system list separator)
are searched when checking imported and included files.`
)

func main() {
	var (
		set  = cli.NewFlagSet("slaxproc")
		root = prepare()
	)
	root.SetSummary(summary)
	root.SetHelp(help)
	if err := set.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			root.Help()
			os.Exit(2)
		}
	}
	err := root.Execute(set.Args())
	if err != nil {
		if s, ok := err.(cli.SuggestionError); ok && len(s.Others) > 0 {
			fmt.Fprintln(os.Stderr, "similar command(s)")
			for _, n := range s.Others {
				fmt.Fprintln(os.Stderr, "-", n)
			}
		}
		if !errors.Is(err, errFail) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func prepare() *cli.CommandTrie {
	root := cli.New()
	root.Register([]string{"compile"}, &compileCmd)
	root.Register([]string{"decompile"}, &decompileCmd)
	root.Register([]string{"format"}, &formatCmd)
	root.Register([]string{"check"}, &checkCmd)
	root.Register([]string{"play"}, &playCmd)
	root.Register([]string{"report"}, &reportCmd)

	return root
}
