package rules

import (
	"testing"

	"github.com/npillmayer/dsketch"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func TestClassifyPattern(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tyse.dsketch")
	defer teardown()
	//
	cases := []struct {
		pattern string
		kind    PatternKind
	}{
		{"dollar", PatternExact},
		{"*", PatternUniversal},
		{"dollar*", PatternWildcard},
		{"*Heavy", PatternWildcard},
		{"dollar cent", PatternWildcard},
	}
	for _, c := range cases {
		if got := ClassifyPattern(c.pattern); got != c.kind {
			t.Errorf("ClassifyPattern(%q) = %v, want %v", c.pattern, got, c.kind)
		}
	}
}

func TestMatchesPattern(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tyse.dsketch")
	defer teardown()
	//
	cases := []struct {
		glyph, pattern string
		match          bool
	}{
		{"dollar", "dollar", true},
		{"dollar.rvrn", "dollar", false},
		{"dollar.rvrn", "dollar*", true},
		{"cent", "dollar*", false},
		{"a.alt", "*alt", true},
		{"a.salt", "a.*alt", true},
		{"b.salt", "a.*alt", false},
		{"ab", "abc*cba", false},
	}
	for _, c := range cases {
		if got := MatchesPattern(c.glyph, c.pattern); got != c.match {
			t.Errorf("MatchesPattern(%q, %q) = %v, want %v", c.glyph, c.pattern, got, c.match)
		}
	}
}

func TestResolveUniversal(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tyse.dsketch")
	defer teardown()
	//
	glyphs := NewGlyphSet("cent", "cent.rvrn", "dollar")
	rule := &dsketch.Rule{Pattern: "*", Target: ".rvrn"}
	diag := dsketch.NewDiagnostics(dsketch.Lenient)
	subs := Resolve(rule, glyphs, diag)
	// dollar has no .rvrn variant and cent.rvrn is already one; only cent
	// gets substituted, and silently so for the universal pattern
	want := [][2]string{{"cent", "cent.rvrn"}}
	if len(subs) != 1 || subs[0] != want[0] {
		t.Errorf("Resolve(*) = %v, want %v", subs, want)
	}
	if len(diag.List) != 0 {
		t.Errorf("universal pattern must not warn about uncovered glyphs, got %v", diag.List)
	}
}

func TestResolveWildcardMissingTarget(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tyse.dsketch")
	defer teardown()
	//
	glyphs := NewGlyphSet("dollar", "dollar.rvrn", "dollarinverted")
	rule := &dsketch.Rule{Name: "currency", Pattern: "dollar*", Target: ".rvrn"}
	diag := dsketch.NewDiagnostics(dsketch.Lenient)
	subs := Resolve(rule, glyphs, diag)
	if len(subs) != 1 || subs[0] != [2]string{"dollar", "dollar.rvrn"} {
		t.Errorf("Resolve(dollar*) = %v", subs)
	}
	if len(diag.Warnings()) != 1 {
		t.Errorf("missing target for an explicit wildcard must warn, got %v", diag.List)
	}
}

func TestResolveExplicitSubstitutions(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tyse.dsketch")
	defer teardown()
	//
	glyphs := NewGlyphSet("cent", "cent.rvrn")
	rule := &dsketch.Rule{Substitutions: [][2]string{
		{"cent", "cent.rvrn"},
		{"dollar", "dollar.rvrn"},
	}}
	diag := dsketch.NewDiagnostics(dsketch.Lenient)
	subs := Resolve(rule, glyphs, diag)
	if len(subs) != 1 || subs[0] != [2]string{"cent", "cent.rvrn"} {
		t.Errorf("Resolve = %v", subs)
	}
	if len(diag.Warnings()) != 1 {
		t.Errorf("dropped substitution must warn, got %v", diag.List)
	}
}

func TestResolveAllDropsEmptyRules(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tyse.dsketch")
	defer teardown()
	//
	doc := &dsketch.Document{Rules: []*dsketch.Rule{
		{Name: "good", Pattern: "cent*", Target: ".rvrn"},
		{Name: "hopeless", Pattern: "yen*", Target: ".rvrn"},
	}}
	glyphs := NewGlyphSet("cent", "cent.rvrn")
	diag := dsketch.NewDiagnostics(dsketch.Lenient)
	ResolveAll(doc, glyphs, diag)
	if len(doc.Rules) != 1 || doc.Rules[0].Name != "good" {
		t.Errorf("rules after resolution: %v", doc.Rules)
	}
}

func TestParseConditionsDesignBounds(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tyse.dsketch")
	defer teardown()
	//
	doc := &dsketch.Document{Axes: []*dsketch.Axis{{
		Name: "weight", Tag: "wght", Minimum: 100, Default: 400, Maximum: 900,
		Mappings: []dsketch.Mapping{
			{Label: "Thin", UserValue: 100, DesignValue: 20},
			{Label: "Regular", UserValue: 400, DesignValue: 84},
			{Label: "Black", UserValue: 900, DesignValue: 200},
		},
	}}}

	diag := dsketch.NewDiagnostics(dsketch.Lenient)
	conds := ParseConditions("wght >= Regular", doc, diag, 1)
	if len(conds) != 1 || conds[0].Min == nil || *conds[0].Min != 84 {
		t.Errorf("label comparand must resolve to its design value, got %v", conds)
	}

	// 400 is a valid user value but lies outside the design-space range
	diag = dsketch.NewDiagnostics(dsketch.Lenient)
	conds = ParseConditions("wght >= 400", doc, diag, 1)
	if len(conds) != 0 || diag.Err() == nil {
		t.Errorf("bound outside the design range must be rejected, got %v / %v", conds, diag.List)
	}

	diag = dsketch.NewDiagnostics(dsketch.Lenient)
	conds = ParseConditions("20 <= wght <= 200 && wght >= Thin", doc, diag, 1)
	if len(conds) != 2 {
		t.Fatalf("expected two conditions, got %v", conds)
	}
	if *conds[0].Min != 20 || *conds[0].Max != 200 {
		t.Errorf("range condition = %v", conds[0])
	}
}

func TestCompressSubstitutions(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tyse.dsketch")
	defer teardown()
	//
	glyphs := NewGlyphSet("uni0024", "uni0025", "uni0024.rvrn", "uni0025.rvrn", "cent")
	subs := [][2]string{
		{"uni0024", "uni0024.rvrn"},
		{"uni0025", "uni0025.rvrn"},
	}
	pattern, suffix, ok := CompressSubstitutions(subs, glyphs)
	if !ok || pattern != "uni*" || suffix != ".rvrn" {
		t.Errorf("compress = %q %q %v, want uni* .rvrn true", pattern, suffix, ok)
	}
}

func TestCompressRejectsOverMatch(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tyse.dsketch")
	defer teardown()
	//
	// uni0026 exists but is not part of the substitution list, so a uni*
	// wildcard would over-match and the explicit list must survive
	glyphs := NewGlyphSet("uni0024", "uni0025", "uni0026", "uni0024.rvrn", "uni0025.rvrn")
	subs := [][2]string{
		{"uni0024", "uni0024.rvrn"},
		{"uni0025", "uni0025.rvrn"},
	}
	pattern, suffix, ok := CompressSubstitutions(subs, glyphs)
	if !ok || pattern != "uni0024 uni0025" || suffix != ".rvrn" {
		t.Errorf("compress = %q %q %v, want explicit list", pattern, suffix, ok)
	}
}

func TestCompressMixedSuffixesFails(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tyse.dsketch")
	defer teardown()
	//
	subs := [][2]string{
		{"cent", "cent.rvrn"},
		{"dollar", "dollar.salt"},
	}
	if _, _, ok := CompressSubstitutions(subs, nil); ok {
		t.Error("substitutions with different suffixes must not compress")
	}
}
