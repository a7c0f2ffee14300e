package dsketch

import (
	"strings"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func TestSeverityString(t *testing.T) {
	tests := []struct {
		severity Severity
		expected string
	}{
		{SeverityStructural, "STRUCTURAL"},
		{SeveritySemantic, "SEMANTIC"},
		{SeverityAdvisory, "ADVISORY"},
		{Severity(999), "UNKNOWN"},
	}
	for _, tt := range tests {
		if s := tt.severity.String(); s != tt.expected {
			t.Errorf("Severity(%d).String() = %q, want %q", tt.severity, s, tt.expected)
		}
	}
}

func TestDiagnosticError(t *testing.T) {
	d := Diagnostic{
		Severity:   SeverityAdvisory,
		Line:       7,
		Message:    `unknown keyword "axs"`,
		Suggestion: "axes",
	}
	msg := d.Error()
	if !strings.Contains(msg, "[ADVISORY]") || !strings.Contains(msg, "line 7") {
		t.Errorf("missing severity or line in %q", msg)
	}
	if !strings.Contains(msg, `did you mean "axes"?`) {
		t.Errorf("missing suggestion in %q", msg)
	}
}

func TestAddKeepsPercentInArguments(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tyse.dsketch")
	defer teardown()
	//
	diag := NewDiagnostics(Lenient)
	diag.Add(SeverityAdvisory, 4, "glyph %q has no variant", "percent%sign")
	diag.Add(SeveritySemantic, 5, "label %q unknown", "50%Width")
	for _, d := range diag.List {
		if strings.Contains(d.Error(), "MISSING") || strings.Contains(d.Error(), "%!") {
			t.Errorf("percent in argument garbled the message: %q", d.Error())
		}
	}
	if !strings.Contains(diag.List[0].Error(), `"percent%sign"`) {
		t.Errorf("argument lost: %q", diag.List[0].Error())
	}
}

func TestLenientPolicyCollectsAdvisories(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tyse.dsketch")
	defer teardown()
	//
	diag := NewDiagnostics(Lenient)
	diag.Add(SeverityAdvisory, 1, "first advisory")
	diag.Add(SeverityAdvisory, 2, "second advisory")
	if diag.Aborted() {
		t.Error("advisories must not abort lenient processing")
	}
	if diag.Err() != nil {
		t.Errorf("Err() = %v, want nil", diag.Err())
	}
	diag.Add(SeveritySemantic, 3, "semantic finding")
	if !diag.Aborted() {
		t.Error("semantic finding must abort lenient processing")
	}
	if err := diag.Err(); err == nil || !strings.Contains(err.Error(), "semantic finding") {
		t.Errorf("Err() = %v, want the semantic finding", err)
	}
	if len(diag.Warnings()) != 2 || len(diag.Errors()) != 1 {
		t.Errorf("got %d warnings, %d errors", len(diag.Warnings()), len(diag.Errors()))
	}
}

func TestStrictPolicyAbortsOnAdvisory(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tyse.dsketch")
	defer teardown()
	//
	diag := NewDiagnostics(Strict)
	diag.Add(SeverityAdvisory, 1, "an advisory")
	if !diag.Aborted() {
		t.Error("strict policy must abort on advisories")
	}
	if diag.Err() == nil {
		t.Error("strict policy must surface advisories through Err()")
	}
}
