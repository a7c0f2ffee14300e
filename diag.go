package dsketch

import (
	"fmt"
	"strings"
)

// Severity classifies a diagnostic raised while building a document.
type Severity int

const (
	// SeverityStructural marks errors that leave no usable document behind:
	// missing required sections, no or multiple base sources, non-identifier
	// tokens. Fatal in every processing mode.
	SeverityStructural Severity = iota
	// SeveritySemantic marks resolution failures inside an otherwise
	// well-formed document: out-of-range mappings, duplicate labels across
	// axes, rules referencing undeclared axes. Fatal in every processing mode.
	SeveritySemantic
	// SeverityAdvisory marks findings a caller may choose to ignore: typo
	// suggestions, unused skip rules, missing wildcard targets. Fatal only
	// under a strict policy.
	SeverityAdvisory
)

// String returns a human-readable representation of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityStructural:
		return "STRUCTURAL"
	case SeveritySemantic:
		return "SEMANTIC"
	case SeverityAdvisory:
		return "ADVISORY"
	default:
		return "UNKNOWN"
	}
}

// Diagnostic is one finding, tagged with severity, the source line it was
// raised for (0 if unknown) and an optional ranked correction suggestion.
type Diagnostic struct {
	Severity   Severity
	Line       int
	Message    string
	Suggestion string // "did you mean …" candidate, empty if none
}

// Error implements the error interface.
func (d Diagnostic) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s]", d.Severity)
	if d.Line > 0 {
		fmt.Fprintf(&b, " line %d:", d.Line)
	}
	b.WriteString(" ")
	b.WriteString(d.Message)
	if d.Suggestion != "" {
		fmt.Fprintf(&b, " (did you mean %q?)", d.Suggestion)
	}
	return b.String()
}

// Policy decides per severity whether a diagnostic aborts processing.
type Policy func(Severity) bool

// Strict aborts on every severity, including advisories.
func Strict(Severity) bool { return true }

// Lenient aborts on structural and semantic findings only; advisories are
// collected and the (best-effort) document is still returned.
func Lenient(s Severity) bool { return s != SeverityAdvisory }

// Diagnostics collects findings during a document build. The zero value is not
// usable; construct with NewDiagnostics.
type Diagnostics struct {
	List    []Diagnostic
	policy  Policy
	aborted bool
}

// NewDiagnostics creates a collector with the given abort policy. A nil policy
// defaults to Lenient.
func NewDiagnostics(policy Policy) *Diagnostics {
	if policy == nil {
		policy = Lenient
	}
	return &Diagnostics{policy: policy}
}

// Add records a diagnostic. If the active policy classifies its severity as
// fatal, the collector switches into the aborted state.
func (diag *Diagnostics) Add(sev Severity, line int, format string, args ...interface{}) {
	diag.AddSuggest(sev, line, "", format, args...)
}

// AddSuggest records a diagnostic carrying a correction suggestion.
func (diag *Diagnostics) AddSuggest(sev Severity, line int, suggestion string, format string, args ...interface{}) {
	d := Diagnostic{
		Severity:   sev,
		Line:       line,
		Message:    fmt.Sprintf(format, args...),
		Suggestion: suggestion,
	}
	diag.List = append(diag.List, d)
	if diag.policy(sev) {
		diag.aborted = true
	}
	switch sev {
	case SeverityAdvisory:
		tracer().Infof("%s", d.Error())
	default:
		tracer().Errorf("%s", d.Error())
	}
}

// Aborted reports whether a fatal diagnostic (per policy) has been recorded.
// Parsers poll this to halt at the first fatal finding in strict mode.
func (diag *Diagnostics) Aborted() bool {
	return diag.aborted
}

// Err returns the first fatal diagnostic as an error, or nil.
func (diag *Diagnostics) Err() error {
	for _, d := range diag.List {
		if diag.policy(d.Severity) {
			return d
		}
	}
	return nil
}

// Warnings returns the advisory findings.
func (diag *Diagnostics) Warnings() []Diagnostic {
	var w []Diagnostic
	for _, d := range diag.List {
		if d.Severity == SeverityAdvisory {
			w = append(w, d)
		}
	}
	return w
}

// Errors returns the structural and semantic findings.
func (diag *Diagnostics) Errors() []Diagnostic {
	var e []Diagnostic
	for _, d := range diag.List {
		if d.Severity != SeverityAdvisory {
			e = append(e, d)
		}
	}
	return e
}
