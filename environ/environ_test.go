package environ_test

import (
	"errors"
	"slices"
	"testing"

	"github.com/midbel/slax/environ"
)

func TestResolve(t *testing.T) {
	root := environ.Empty[string]()
	root.Define("xsl", "http://www.w3.org/1999/XSL/Transform")
	root.Define("", "urn:default")

	child := environ.Enclosed(root)
	child.Define("", "urn:inner")

	data := []struct {
		Env   environ.Environ[string]
		Ident string
		Want  string
		Fail  bool
	}{
		{
			Env:   child,
			Ident: "xsl",
			Want:  "http://www.w3.org/1999/XSL/Transform",
		},
		{
			Env:   child,
			Ident: "",
			Want:  "urn:inner",
		},
		{
			Env:   root,
			Ident: "",
			Want:  "urn:default",
		},
		{
			Env:   child,
			Ident: "slax",
			Fail:  true,
		},
	}
	for _, d := range data {
		got, err := d.Env.Resolve(d.Ident)
		if d.Fail {
			if !errors.Is(err, environ.ErrDefined) {
				t.Errorf("%s: expected undefined error, got %v", d.Ident, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("%s: unexpected error: %s", d.Ident, err)
			continue
		}
		if got != d.Want {
			t.Errorf("%s: value mismatched", d.Ident)
			t.Logf("want: %s", d.Want)
			t.Logf("got : %s", got)
		}
	}
}

func TestLeave(t *testing.T) {
	root := environ.Empty[bool]()
	root.Define("x", true)

	child := environ.Enclosed(root)
	child.Define("y", true)

	if names := child.Names(); !slices.Equal(names, []string{"y"}) {
		t.Errorf("unexpected names in inner scope: %v", names)
	}
	back := environ.Leave(child)
	if _, err := back.Resolve("y"); err == nil {
		t.Errorf("y should not be visible after leaving the inner scope")
	}
	if _, err := back.Resolve("x"); err != nil {
		t.Errorf("x should still be visible: %s", err)
	}
	if environ.Leave(back) != back {
		t.Errorf("leaving the outermost scope should return the same scope")
	}
}
