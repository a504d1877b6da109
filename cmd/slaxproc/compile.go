package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync/atomic"

	"github.com/midbel/cli"
	"golang.org/x/sync/errgroup"
)

var compileCmd = cli.Command{
	Name:    "compile",
	Summary: "compile SLAX scripts into XSLT stylesheets",
	Handler: &CompileCmd{},
}

type CompileCmd struct {
	OutFile string
	OutDir  string
	Jobs    int
	Quiet   bool
	ParserOptions
	WriterOptions
}

func (c *CompileCmd) Run(args []string) error {
	set := flag.NewFlagSet("compile", flag.ContinueOnError)
	set.StringVar(&c.OutFile, "o", "", "write the stylesheet to the given file")
	set.StringVar(&c.OutDir, "d", "", "directory where stylesheets are written when compiling several scripts")
	set.IntVar(&c.Jobs, "j", runtime.NumCPU(), "number of scripts compiled in parallel")
	set.BoolVar(&c.Quiet, "q", false, "don't show progress")
	set.BoolVar(&c.Compact, "compact", false, "write compact output")
	set.BoolVar(&c.NoComment, "no-comment", false, "don't write comments of the scripts")
	set.BoolVar(&c.Strict, "strict", false, "keep backslashes of literals as is")
	set.BoolVar(&c.Trace, "trace", false, "trace the parser")

	if err := set.Parse(args); err != nil {
		return err
	}
	if set.NArg() <= 1 && c.OutDir == "" {
		return c.compile(set.Arg(0), c.OutFile)
	}
	files, err := expandFiles(set.Args())
	if err != nil {
		return err
	}
	return c.compileAll(files)
}

func (c *CompileCmd) compile(file, out string) error {
	doc, err := parseScript(file, c.ParserOptions)
	if err != nil {
		return err
	}
	return writeStylesheet(doc, out, c.WriterOptions)
}

func (c *CompileCmd) compileAll(files []string) error {
	var (
		grp, ctx = errgroup.WithContext(context.Background())
		done     atomic.Int64
		spin     *Spinner
	)
	if !c.Quiet && isTerminal(os.Stderr) {
		spin = NewSpinner()
		spin.SetMessage(fmt.Sprintf("compiling %d scripts", len(files)))
		spin.Start()
		defer spin.Stop()
	}
	grp.SetLimit(max(c.Jobs, 1))
	for _, file := range files {
		grp.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			dir := c.OutDir
			if dir == "" {
				dir = filepath.Dir(file)
			}
			out := filepath.Join(dir, replaceExt(file, xslExt))
			if err := c.compile(file, out); err != nil {
				return fmt.Errorf("%s: %w", file, err)
			}
			n := done.Add(1)
			if spin != nil {
				spin.SetMessage(fmt.Sprintf("compiling %d/%d scripts", n, len(files)))
			}
			return nil
		})
	}
	return grp.Wait()
}
