package slax_test

import (
	"testing"

	"github.com/midbel/slax/slax"
)

func TestSegmentsConcat(t *testing.T) {
	data := []struct {
		Name  string
		Build func(*slax.Segments) int
		Want  string
		Args  int
	}{
		{
			Name: "fold",
			Build: func(s *slax.Segments) int {
				return s.Concat(s.Quote("a", '"'), s.Quote("b", '"'))
			},
			Want: `"ab"`,
		},
		{
			Name: "quotes",
			Build: func(s *slax.Segments) int {
				return s.Concat(s.Quote("a", '"'), s.Quote("b", '\''))
			},
			Want: `concat("a", "b")`,
			Args: 2,
		},
		{
			Name: "thread",
			Build: func(s *slax.Segments) int {
				left := s.Concat(s.Create(slax.Variable, "$x"), s.Quote("-", '"'))
				return s.Concat(left, s.Create(slax.Number, "1"))
			},
			Want: `concat($x, "-", 1)`,
			Args: 3,
		},
		{
			Name: "fold-then-thread",
			Build: func(s *slax.Segments) int {
				left := s.Concat(s.Quote("a", '"'), s.Quote("b", '"'))
				left = s.Concat(left, s.Create(slax.Variable, "$x"))
				return s.Concat(left, s.Quote("c", '"'))
			},
			Want: `concat("ab", $x, "c")`,
			Args: 3,
		},
		{
			Name: "quote-mix",
			Build: func(s *slax.Segments) int {
				return s.Quote(`say "hi"`, '\'')
			},
			Want: `'say "hi"'`,
		},
		{
			Name: "both-quotes",
			Build: func(s *slax.Segments) int {
				return s.Quote(`it's "x"`, '"')
			},
			Want: `concat("it's ", '"', "x", '"')`,
		},
	}
	for _, d := range data {
		s := slax.NewSegments()
		ix := d.Build(s)
		if got := s.String(ix); got != d.Want {
			t.Errorf("%s: segments mismatched", d.Name)
			t.Logf("want: %s", d.Want)
			t.Logf("got : %s", got)
		}
		if d.Args == 0 {
			continue
		}
		if got := len(s.Args(ix)); got != d.Args {
			t.Errorf("%s: arguments mismatched: want %d, got %d", d.Name, d.Args, got)
		}
	}
}
