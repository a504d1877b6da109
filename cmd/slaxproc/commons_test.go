package main

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

func TestReplaceExt(t *testing.T) {
	data := []struct {
		File string
		Want string
	}{
		{
			File: "scripts/main.slax",
			Want: "main.xsl",
		},
		{
			File: "main",
			Want: "main.xsl",
		},
	}
	for _, d := range data {
		if got := replaceExt(d.File, xslExt); got != d.Want {
			t.Errorf("%s: file mismatched: want %s, got %s", d.File, d.Want, got)
		}
	}
}

func TestExpandFiles(t *testing.T) {
	dir := t.TempDir()
	for _, f := range []string{"a.slax", "b.slax", "c.xsl"} {
		if err := os.WriteFile(filepath.Join(dir, f), nil, 0o644); err != nil {
			t.Fatalf("fail to create %s: %s", f, err)
		}
	}
	got, err := expandFiles([]string{dir, "other.slax"})
	if err != nil {
		t.Errorf("unexpected error: %s", err)
		return
	}
	want := []string{
		filepath.Join(dir, "a.slax"),
		filepath.Join(dir, "b.slax"),
		"other.slax",
	}
	if !slices.Equal(got, want) {
		t.Errorf("files mismatched")
		t.Logf("want: %s", want)
		t.Logf("got : %s", got)
	}
}

func TestCheckImports(t *testing.T) {
	var (
		dir  = t.TempDir()
		lib  = t.TempDir()
		file = filepath.Join(dir, "main.slax")
	)
	if err := os.WriteFile(filepath.Join(lib, "common.xsl"), nil, 0o644); err != nil {
		t.Fatalf("fail to create library: %s", err)
	}
	script := `import "common.xsl"; match / { expr 1; }`
	if err := os.WriteFile(file, []byte(script), 0o644); err != nil {
		t.Fatalf("fail to create script: %s", err)
	}
	var cmd CheckCmd
	if err := cmd.check(file, nil); err == nil {
		t.Errorf("expected error when import can not be found")
	}
	if err := cmd.check(file, []string{lib}); err != nil {
		t.Errorf("unexpected error: %s", err)
	}
}

func TestCompileScript(t *testing.T) {
	const script = `var $x = $a _ "-" _ $b;`

	str, err := compileScript(script, viewXslt)
	if err != nil {
		t.Errorf("unexpected error: %s", err)
		return
	}
	if !strings.Contains(str, `select="concat($a, &quot;-&quot;, $b)"`) && !strings.Contains(str, `concat($a, "-", $b)`) {
		t.Errorf("concat not found in stylesheet")
		t.Logf("got: %s", str)
	}
	str, err = compileScript(script, viewSlax)
	if err != nil {
		t.Errorf("unexpected error: %s", err)
		return
	}
	if !strings.Contains(str, script) {
		t.Errorf("script not found in output")
		t.Logf("got: %s", str)
	}
	if _, err := compileScript(`var $x = ;`, viewXslt); err == nil {
		t.Errorf("expected error but got none")
	}
}

func TestReportRoundTrip(t *testing.T) {
	file := filepath.Join(t.TempDir(), "main.slax")
	if err := os.WriteFile(file, []byte(`match / { expr 1; }`), 0o644); err != nil {
		t.Fatalf("fail to create script: %s", err)
	}
	var cmd ReportCmd
	rt := cmd.roundTrip(file)
	if rt.Err != nil {
		t.Errorf("unexpected error: %s", rt.Err)
		return
	}
	if !rt.Stable() {
		t.Errorf("round trip should be stable")
		t.Logf("got: %s", rt.Slax)
	}
	var buf strings.Builder
	if err := renderReport("report", []roundTrip{rt}).Render(&buf); err != nil {
		t.Errorf("fail to render report: %s", err)
		return
	}
	if !strings.Contains(buf.String(), "xsl:template") {
		t.Errorf("stylesheet not found in report")
	}
}
