package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/midbel/cli"
	"github.com/midbel/slax/slax"
	"github.com/midbel/slax/xml"
)

var checkCmd = cli.Command{
	Name:    "check",
	Summary: "check syntax of SLAX scripts and the files they import",
	Handler: &CheckCmd{},
}

type CheckCmd struct {
	FailFast bool
	ParserOptions
}

func (c *CheckCmd) Run(args []string) error {
	set := flag.NewFlagSet("check", flag.ContinueOnError)
	set.BoolVar(&c.FailFast, "fail-fast", false, "stop checking files as soon as first error is encountered")
	set.BoolVar(&c.Strict, "strict", false, "keep backslashes of literals as is")
	if err := set.Parse(args); err != nil {
		return err
	}
	files, err := expandFiles(set.Args())
	if err != nil {
		return err
	}
	var (
		paths = slaxPath()
		fail  bool
	)
	for _, file := range files {
		err := c.check(file, paths)
		if err == nil {
			fmt.Fprintf(os.Stdout, "%s: script is valid", file)
			fmt.Fprintln(os.Stdout)
			continue
		}
		var perr slax.ParseError
		if errors.As(err, &perr) && len(perr.Others) > 0 {
			fmt.Fprintf(os.Stderr, "%s: did you mean %s?", perr, perr.Others[0])
			fmt.Fprintln(os.Stderr)
		} else {
			fmt.Fprintf(os.Stderr, "%s: %s", file, err)
			fmt.Fprintln(os.Stderr)
		}
		if c.FailFast {
			return errFail
		}
		fail = true
	}
	if fail {
		return errFail
	}
	return nil
}

func (c *CheckCmd) check(file string, paths []string) error {
	doc, err := parseScript(file, c.ParserOptions)
	if err != nil {
		return err
	}
	root, ok := doc.Root().(*xml.Element)
	if !ok {
		return nil
	}
	dirs := append([]string{filepath.Dir(file)}, paths...)
	for _, el := range root.Elements() {
		name := el.QualifiedName()
		if name != "xsl:import" && name != "xsl:include" {
			continue
		}
		href, _ := el.AttributeValue("href")
		if _, err := locate(href, dirs); err != nil {
			return err
		}
	}
	return nil
}

func locate(href string, dirs []string) (string, error) {
	if filepath.IsAbs(href) {
		if _, err := os.Stat(href); err != nil {
			return "", err
		}
		return href, nil
	}
	for _, dir := range dirs {
		file := filepath.Join(dir, href)
		if _, err := os.Stat(file); err == nil {
			return file, nil
		}
	}
	return "", fmt.Errorf("%s: file not found", href)
}
