package mvar_test

import (
	"errors"
	"testing"

	"github.com/midbel/slax/mvar"
	"github.com/midbel/slax/xml"
)

func element(name, text string) *xml.Element {
	el := xml.NewElement(xml.LocalName(name))
	if text != "" {
		el.Append(xml.NewText(text))
	}
	return el
}

func TestSvarName(t *testing.T) {
	data := []struct {
		Name string
		Want string
	}{
		{
			Name: "count",
			Want: "slax-count",
		},
		{
			Name: "my:count",
			Want: "my:slax-count",
		},
	}
	for _, d := range data {
		got := mvar.SvarName(d.Name)
		if got != d.Want {
			t.Errorf("%s: shadow name mismatched", d.Name)
			t.Logf("want: %s", d.Want)
			t.Logf("got : %s", got)
		}
	}
}

func TestAppend(t *testing.T) {
	data := []struct {
		Name   string
		Init   mvar.Value
		Value  mvar.Value
		Scalar bool
		Want   string
		Len    int
	}{
		{
			Name:   "scalar+scalar",
			Init:   mvar.Scalar("foo"),
			Value:  mvar.Scalar("bar"),
			Scalar: true,
			Want:   "foobar",
			Len:    1,
		},
		{
			Name:  "scalar+nodeset",
			Init:  mvar.Scalar("foo"),
			Value: mvar.NodeSet(element("a", "bar")),
			Want:  "bar",
			Len:   1,
		},
		{
			Name:  "nodeset+scalar",
			Init:  mvar.NodeSet(element("a", "foo")),
			Value: mvar.Scalar("bar"),
			Want:  "foobar",
			Len:   2,
		},
		{
			Name:  "nodeset+nodeset",
			Init:  mvar.NodeSet(element("a", "foo")),
			Value: mvar.NodeSet(element("b", "bar"), element("c", "baz")),
			Want:  "foobarbaz",
			Len:   3,
		},
		{
			Name:  "nodeset+empty",
			Init:  mvar.NodeSet(element("a", "foo")),
			Value: mvar.Scalar(""),
			Want:  "foo",
			Len:   1,
		},
	}
	for _, d := range data {
		v := mvar.NewVariable("x")
		if err := v.Set(d.Init); err != nil {
			t.Errorf("%s: unexpected error setting variable: %s", d.Name, err)
			continue
		}
		if err := v.Append(d.Value); err != nil {
			t.Errorf("%s: unexpected error appending value: %s", d.Name, err)
			continue
		}
		got := v.Value()
		if got.IsScalar() != d.Scalar {
			t.Errorf("%s: scalar mismatched: want %t, got %t", d.Name, d.Scalar, got.IsScalar())
		}
		if got.String() != d.Want {
			t.Errorf("%s: value mismatched", d.Name)
			t.Logf("want: %s", d.Want)
			t.Logf("got : %s", got.String())
		}
		if got.Len() != d.Len {
			t.Errorf("%s: length mismatched: want %d, got %d", d.Name, d.Len, got.Len())
		}
	}
}

func TestSetCopy(t *testing.T) {
	var (
		v  = mvar.NewVariable("x")
		el = element("item", "first")
	)
	if err := v.Set(mvar.NodeSet(el)); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	el.Nodes[0].(*xml.Text).Content = "changed"
	if got := v.Value().String(); got != "first" {
		t.Errorf("value shares nodes with its source: %s", got)
	}
	if err := v.Set(mvar.NodeSet(element("item", "second"))); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if got := v.Shadow.Len(); got != 2 {
		t.Errorf("shadow should keep every node: want 2, got %d", got)
	}
	if got := v.Value().String(); got != "second" {
		t.Errorf("value mismatched: want second, got %s", got)
	}
}

func TestInit(t *testing.T) {
	v := mvar.NewVariable("x")
	if err := v.Set(mvar.NodeSet(element("a", "foo"), element("b", "bar"))); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	other, err := mvar.Init("x", v.Shadow)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if got := other.Value().String(); got != "foobar" {
		t.Errorf("value mismatched: want foobar, got %s", got)
	}

	empty, err := mvar.Init("y", mvar.NewShadow("slax-y"))
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if empty.Value().IsScalar() || empty.Value().Len() != 0 {
		t.Errorf("empty shadow should give an empty node set")
	}
	if _, err := mvar.Init("z", mvar.NewShadow("slax-y")); err == nil {
		t.Errorf("expected error for mismatched shadow")
	}
}

func TestNoMember(t *testing.T) {
	v := mvar.NewVariable("x")
	v.Mode = mvar.NoMember
	if err := v.Set(mvar.Scalar("foo")); err != nil {
		t.Errorf("scalar should be accepted: %s", err)
	}
	err := v.Append(mvar.NodeSet(element("a", "foo")))
	if !errors.Is(err, mvar.ErrUnsupported) {
		t.Errorf("expected unsupported error, got %v", err)
	}
}
