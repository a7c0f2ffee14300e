package dss

import (
	"strings"
	"testing"

	"github.com/npillmayer/dsketch"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/require"
)

const exampleSketch = `
# a small two-axis family
family Example
suffix VF
path masters

axes
    weight wght 100:400:900
        Thin > 20
        Regular > 84 @elidable
        Black > 200
    italic ital binary
        Upright @elidable
        Italic

sources
    Example-Thin          [Thin, Upright]
    Example-Regular       [Regular, Upright] @base
    Example-Black         [Black, Upright]
    Example-ThinItalic    [Thin, Italic]
    Example-RegularItalic [Regular, Italic]
    Example-BlackItalic   [Black, Italic]

rules
    dollar > .rvrn (wght >= Regular) "currency"

instances auto
`

func TestParseExample(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tyse.dsketch")
	defer teardown()
	//
	doc, diag := Parse(exampleSketch, LenientMode)
	require.NotNil(t, doc)
	require.NoError(t, diag.Err())
	require.Empty(t, diag.Warnings(), "expected a clean document")

	require.Equal(t, "Example", doc.Family)
	require.Equal(t, "VF", doc.Suffix)
	require.Equal(t, "masters", doc.Path)

	require.Len(t, doc.Axes, 2)
	wght := doc.Axis("wght")
	require.NotNil(t, wght)
	require.Equal(t, "weight", wght.Name)
	require.Equal(t, 100.0, wght.Minimum)
	require.Equal(t, 400.0, wght.Default)
	require.Equal(t, 900.0, wght.Maximum)
	require.Len(t, wght.Mappings, 3)
	reg, ok := wght.MappingFor("Regular")
	require.True(t, ok)
	require.Equal(t, 400.0, reg.UserValue, "standard label resolves through user space")
	require.Equal(t, 84.0, reg.DesignValue)
	require.True(t, reg.Elidable)

	ital := doc.Axis("ital")
	require.NotNil(t, ital)
	require.True(t, ital.Discrete)
	up, ok := ital.MappingFor("Upright")
	require.True(t, ok)
	require.Equal(t, 0.0, up.DesignValue)
	require.True(t, up.Elidable)

	require.Len(t, doc.Sources, 6)
	base := doc.BaseSource()
	require.NotNil(t, base)
	require.Equal(t, "Example-Regular", base.Name)
	require.Equal(t, "Example-Regular.ufo", base.Filename)
	require.Equal(t, map[string]float64{"wght": 84, "ital": 0}, base.Location)

	require.Len(t, doc.Rules, 1)
	rule := doc.Rules[0]
	require.Equal(t, "currency", rule.Name)
	require.Equal(t, [][2]string{{"dollar", "dollar.rvrn"}}, rule.Substitutions)
	require.Len(t, rule.Conditions, 1)
	require.Equal(t, "wght", rule.Conditions[0].Axis)
	require.NotNil(t, rule.Conditions[0].Min)
	require.Equal(t, 84.0, *rule.Conditions[0].Min, "condition bound is a design value")
	require.Nil(t, rule.Conditions[0].Max)

	require.Equal(t, dsketch.InstancesAuto, doc.InstanceMode)
}

func TestParseLabelRange(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tyse.dsketch")
	defer teardown()
	//
	doc, diag := Parse(`
axes
    weight wght Thin:Regular:Black
sources
    A [400]
`, LenientMode)
	if err := diag.Err(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ax := doc.Axis("wght")
	if ax.Minimum != 100 || ax.Default != 400 || ax.Maximum != 900 {
		t.Errorf("label range resolved to %g:%g:%g, want 100:400:900", ax.Minimum, ax.Default, ax.Maximum)
	}
}

func TestParseNamedSourceCoordinates(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tyse.dsketch")
	defer teardown()
	//
	doc, diag := Parse(`
axes
    weight wght 100:400:900
        Thin > 100
        Regular > 400
        Black > 900
    italic ital binary
        Upright
        Italic
sources
    Example-Thin   wght=Thin
    Example-Italic wght=Regular, ital=Italic
    Example-Base   @base
`, LenientMode)
	if err := diag.Err(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	thin := doc.Sources[0]
	if thin.Location["wght"] != 100 || thin.Location["ital"] != 0 {
		t.Errorf("named coordinates wrong: %v", thin.Location)
	}
	italic := doc.Sources[1]
	if italic.Location["ital"] != 1 {
		t.Errorf("discrete label coordinate wrong: %v", italic.Location)
	}
	base := doc.Sources[2]
	if !base.IsBase || base.Location["wght"] != 400 {
		t.Errorf("plain source must sit at defaults: %v", base.Location)
	}
}

func TestParseTypoSuggestions(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tyse.dsketch")
	defer teardown()
	//
	_, diag := Parse(`
axs
    weight wght 100:400:900
`, LenientMode)
	found := false
	for _, d := range diag.Warnings() {
		if d.Suggestion == "axes" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a suggestion for 'axs', got %v", diag.List)
	}
}

func TestParseMappingLabelTypo(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tyse.dsketch")
	defer teardown()
	//
	doc, diag := Parse(`
axes
    weight wght 100:400:900
        Regulr > 400
sources
    A [Regulr] @base
`, LenientMode)
	found := false
	for _, d := range diag.Warnings() {
		if d.Suggestion == "Regular" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a suggestion for 'Regulr', got %v", diag.List)
	}
	// the custom label is still accepted, identity user value
	m, ok := doc.Axis("wght").MappingFor("Regulr")
	if !ok || m.UserValue != 400 {
		t.Errorf("custom label not kept: %v %v", m, ok)
	}
}

func TestParseDuplicateLabelAcrossAxes(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tyse.dsketch")
	defer teardown()
	//
	_, diag := Parse(`
axes
    weight wght 100:400:900
        Regular > 400
    width wdth 50:100:200
        100 Regular > 100
sources
    A [Regular, 100] @base
`, LenientMode)
	err := diag.Err()
	if err == nil || !strings.Contains(err.Error(), "duplicate label") {
		t.Errorf("duplicate label must be fatal in lenient mode too, got %v", err)
	}
}

func TestParseOutOfRangeMapping(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tyse.dsketch")
	defer teardown()
	//
	_, diag := Parse(`
axes
    weight wght 100:400:900
        950 Heavy2 > 950
sources
    A [400] @base
`, LenientMode)
	err := diag.Err()
	if err == nil || !strings.Contains(err.Error(), "outside axis range") {
		t.Errorf("out-of-range mapping must be fatal, got %v", err)
	}
}

func TestParseStrictHaltsEarly(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tyse.dsketch")
	defer teardown()
	//
	doc, diag := Parse(`
axs
    weight wght 100:400:900
`, StrictMode)
	if doc != nil {
		t.Error("strict mode must return a nil document on the first finding")
	}
	if len(diag.List) != 1 {
		t.Errorf("strict mode must halt at the first finding, got %d", len(diag.List))
	}
}

func TestParseMissingSectionsStructural(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tyse.dsketch")
	defer teardown()
	//
	_, diag := Parse("family Nothing\n", LenientMode)
	errs := diag.Errors()
	if len(errs) != 2 {
		t.Fatalf("expected missing axes and missing sources, got %v", diag.List)
	}
	for _, d := range errs {
		if d.Severity != dsketch.SeverityStructural {
			t.Errorf("missing section must be structural, got %v", d)
		}
	}
}

func TestParseBaseAutoDetection(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tyse.dsketch")
	defer teardown()
	//
	doc, diag := Parse(`
axes
    weight wght 100:400:900
        Thin > 100
        Regular > 400
        Black > 900
sources
    A [Thin]
    B [Regular]
    C [Black]
`, LenientMode)
	if err := diag.Err(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	base := doc.BaseSource()
	if base == nil || base.Name != "B" {
		t.Errorf("expected B auto-detected as base, got %v", base)
	}
	found := false
	for _, d := range diag.Warnings() {
		if strings.Contains(d.Message, "auto-detected base") {
			found = true
		}
	}
	if !found {
		t.Error("auto-detection must be reported as an advisory")
	}
}

func TestParseMultipleBasesStructural(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tyse.dsketch")
	defer teardown()
	//
	_, diag := Parse(`
axes
    weight wght 100:400:900
        Regular > 400
sources
    A [Regular] @base
    B [Regular] @base
`, LenientMode)
	err := diag.Err()
	if err == nil || !strings.Contains(err.Error(), "multiple base sources") {
		t.Errorf("expected multiple-base structural error, got %v", err)
	}
}

func TestParseExtremesAdvisory(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tyse.dsketch")
	defer teardown()
	//
	_, diag := Parse(`
axes
    weight wght 100:400:900
        Thin > 100
        Regular > 400
        Black > 900
sources
    A [Thin]
    B [Regular] @base
`, LenientMode)
	found := false
	for _, d := range diag.Warnings() {
		if strings.Contains(d.Message, "maximum mapping") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected an advisory about the uncovered Black extreme, got %v", diag.List)
	}
}

func TestParseSourceWithLayerAndPath(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tyse.dsketch")
	defer teardown()
	//
	doc, diag := Parse(`
axes
    weight wght 100:400:900
        Regular > 400
sources
    masters/Example-Display.ufo [Regular] @layer="Display Light" @base
`, LenientMode)
	if err := diag.Err(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	src := doc.Sources[0]
	if src.Name != "Example-Display" {
		t.Errorf("name = %q", src.Name)
	}
	if src.Filename != "masters/Example-Display.ufo" {
		t.Errorf("filename = %q", src.Filename)
	}
	if src.Layer != "Display Light" {
		t.Errorf("layer = %q", src.Layer)
	}
}

func TestParseSkipEntries(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tyse.dsketch")
	defer teardown()
	//
	doc, diag := Parse(`
axes
    weight wght 100:400:900
        Regular > 400
sources
    A [Regular] @base
instances auto
    skip Bold Upright
`, LenientMode)
	if err := diag.Err(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.SkipList) != 1 || doc.SkipList[0] != "Bold Upright" {
		t.Errorf("skip list = %v", doc.SkipList)
	}
}
