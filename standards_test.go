package dsketch

import (
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func TestVocabForAxis(t *testing.T) {
	tests := []struct {
		axis  Axis
		vocab Vocab
	}{
		{Axis{Tag: "wght", Name: "weight"}, VocabWeight},
		{Axis{Tag: "wdth", Name: "width"}, VocabWidth},
		{Axis{Tag: "GRAD", Name: "Weight"}, VocabWeight},
		{Axis{Tag: "ital", Name: "italic"}, VocabNone},
		{Axis{Tag: "XOPQ", Name: "XOPQ"}, VocabNone},
	}
	for _, tt := range tests {
		if v := VocabForAxis(&tt.axis); v != tt.vocab {
			t.Errorf("VocabForAxis(%s/%s) = %v, want %v", tt.axis.Name, tt.axis.Tag, v, tt.vocab)
		}
	}
}

func TestStdUserValue(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tyse.dsketch")
	defer teardown()
	//
	tests := []struct {
		vocab Vocab
		label string
		value float64
		ok    bool
	}{
		{VocabWeight, "Thin", 100, true},
		{VocabWeight, "Regular", 400, true},
		{VocabWeight, "Black", 900, true},
		{VocabWeight, "Heavy", 900, true}, // alias
		{VocabWeight, "Book", 400, true},  // alias
		{VocabWidth, "Condensed", 75, true},
		{VocabWidth, "SemiExpanded", 112.5, true},
		{VocabWidth, "Extended", 125, true}, // alias
		{VocabWeight, "Chunky", 0, false},
		{VocabNone, "Regular", 0, false},
	}
	for _, tt := range tests {
		v, ok := StdUserValue(tt.vocab, tt.label)
		if ok != tt.ok || v != tt.value {
			t.Errorf("StdUserValue(%v, %q) = %g, %v; want %g, %v", tt.vocab, tt.label, v, ok, tt.value, tt.ok)
		}
	}
}

func TestStdLabelIsCanonical(t *testing.T) {
	if label, ok := StdLabel(VocabWeight, 400); !ok || label != "Regular" {
		t.Errorf("StdLabel(weight, 400) = %q, %v; want Regular", label, ok)
	}
	if label, ok := StdLabel(VocabWeight, 900); !ok || label != "Black" {
		t.Errorf("StdLabel(weight, 900) = %q, %v; want Black, not the Heavy alias", label, ok)
	}
	if _, ok := StdLabel(VocabWeight, 431); ok {
		t.Error("StdLabel(weight, 431) should not resolve")
	}
}

func TestDiscreteTables(t *testing.T) {
	if v, ok := DiscreteValue("ital", "Italic"); !ok || v != 1 {
		t.Errorf("DiscreteValue(ital, Italic) = %g, %v", v, ok)
	}
	if v, ok := DiscreteValue("ital", "Roman"); !ok || v != 0 {
		t.Errorf("DiscreteValue(ital, Roman) = %g, %v", v, ok)
	}
	if v, ok := DiscreteValue("slnt", "Oblique"); !ok || v != 1 {
		t.Errorf("DiscreteValue(slnt, Oblique) = %g, %v", v, ok)
	}
	if _, ok := DiscreteValue("wght", "Italic"); ok {
		t.Error("wght must not carry a discrete table")
	}
	if label, ok := DiscreteLabel("ital", 0); !ok || label != "Upright" {
		t.Errorf("DiscreteLabel(ital, 0) = %q, %v; want the preferred label Upright", label, ok)
	}
}

func TestSuggest(t *testing.T) {
	candidates := []string{"family", "suffix", "axes", "sources", "instances"}
	if corr, ok := Suggest("axs", candidates); !ok || corr != "axes" {
		t.Errorf("Suggest(axs) = %q, %v; want axes", corr, ok)
	}
	if corr, ok := Suggest("sorces", candidates); !ok || corr != "sources" {
		t.Errorf("Suggest(sorces) = %q, %v; want sources", corr, ok)
	}
	if _, ok := Suggest("axes", candidates); ok {
		t.Error("exact match must not yield a suggestion")
	}
	if _, ok := Suggest("completely-off", candidates); ok {
		t.Error("distant word must not yield a suggestion")
	}
}

func TestEditDistance(t *testing.T) {
	tests := []struct {
		a, b string
		d    int
	}{
		{"", "", 0},
		{"axes", "axes", 0},
		{"axs", "axes", 1},
		{"wgth", "wght", 2},
		{"kitten", "sitting", 3},
	}
	for _, tt := range tests {
		if d := EditDistance(tt.a, tt.b); d != tt.d {
			t.Errorf("EditDistance(%q, %q) = %d, want %d", tt.a, tt.b, d, tt.d)
		}
	}
}
