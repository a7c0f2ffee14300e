package dss

import (
	"strings"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func TestWriteNormalForm(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tyse.dsketch")
	defer teardown()
	//
	doc, diag := Parse(exampleSketch, LenientMode)
	if err := diag.Err(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := Write(doc, nil)
	for _, want := range []string{
		"family Example",
		"suffix VF",
		"path masters",
		"    weight wght 100:400:900",
		"        Regular > 84 @elidable",
		"    italic ital binary",
		"        Upright @elidable",
		"    Example-Thin          [Thin, Upright]",
		"    Example-Regular       [Regular, Upright] @base",
		`    dollar > .rvrn (wght >= Regular) "currency"`,
		"instances auto",
	} {
		if !strings.Contains(out, want+"\n") {
			t.Errorf("output misses line %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "400 Regular") {
		t.Error("standard label must not carry its redundant user value")
	}
	if strings.Contains(out, ".0") {
		t.Errorf("numbers must not carry a trailing .0:\n%s", out)
	}
}

func TestWriteIdempotent(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tyse.dsketch")
	defer teardown()
	//
	doc, diag := Parse(exampleSketch, LenientMode)
	if err := diag.Err(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	first := Write(doc, nil)
	doc2, diag2 := Parse(first, LenientMode)
	if err := diag2.Err(); err != nil {
		t.Fatalf("re-parsing writer output failed: %v\n%s", err, first)
	}
	second := Write(doc2, nil)
	if first != second {
		t.Errorf("writer output is not a fixed point:\n--- first ---\n%s--- second ---\n%s", first, second)
	}
}

func TestWriteSynthesizedLabelNumericForm(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tyse.dsketch")
	defer teardown()
	//
	doc, diag := Parse(`
axes
    optical opsz 8:12:72
        8 > 8
        12 > 12
        72 > 72
sources
    A [12] @base
`, LenientMode)
	if err := diag.Err(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := Write(doc, nil)
	if !strings.Contains(out, "        8 > 8\n") {
		t.Errorf("synthesized labels must render as plain numbers:\n%s", out)
	}
	if strings.Contains(out, "opsz8") {
		t.Errorf("internal label names must not leak into output:\n%s", out)
	}
}

func TestWriteSparseSourcesWithHiddenAxes(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tyse.dsketch")
	defer teardown()
	//
	doc, diag := Parse(paramSketch, LenientMode)
	if err := diag.Err(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := Write(doc, nil)
	if !strings.Contains(out, "axes hidden") {
		t.Errorf("hidden axes section missing:\n%s", out)
	}
	// the base sits at the defaults and needs no coordinates at all
	if !strings.Contains(out, "Param-Regular @base") {
		t.Errorf("default source must be written without coordinates:\n%s", out)
	}
	if !strings.Contains(out, "XOPQ=260") {
		t.Errorf("off-default hidden coordinate missing:\n%s", out)
	}
}

func TestWriteExplicitInstances(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tyse.dsketch")
	defer teardown()
	//
	doc, diag := Parse(`
axes
    weight wght 100:400:900
        Thin > 20
        Regular > 84
        Black > 200
sources
    A [Thin]
    B [Regular] @base
    C [Black]
instances
    Thin       [Thin]
    Semi Black [150]
`, LenientMode)
	if err := diag.Err(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := Write(doc, nil)
	if !strings.Contains(out, "    Thin       [Thin]\n") {
		t.Errorf("instance names must be column aligned:\n%s", out)
	}
	if !strings.Contains(out, "    Semi Black [150]\n") {
		t.Errorf("off-mapping instance keeps its numeric coordinate:\n%s", out)
	}
}
