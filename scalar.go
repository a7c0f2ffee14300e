package dsketch

import (
	"fmt"
	"strconv"
)

// ScalarRef is a value from the sketch grammar that is either a numeric
// literal or a label still to be resolved against an axis's mapping table (or
// the standard tables). The grammar allows labels nearly everywhere a number
// is expected; resolution happens exactly once during the build phase, after
// which the rest of the pipeline only sees floats.
type ScalarRef struct {
	label   string
	value   float64
	isLabel bool
}

// Lit wraps a numeric literal.
func Lit(v float64) ScalarRef {
	return ScalarRef{value: v}
}

// LabelRef wraps an unresolved label.
func LabelRef(label string) ScalarRef {
	return ScalarRef{label: label, isLabel: true}
}

// ParseScalar classifies a token as literal or label.
func ParseScalar(tok string) ScalarRef {
	if v, err := strconv.ParseFloat(tok, 64); err == nil {
		return Lit(v)
	}
	return LabelRef(tok)
}

// IsLabel reports whether the ref still needs label resolution.
func (s ScalarRef) IsLabel() bool { return s.isLabel }

// Label returns the unresolved label ("" for literals).
func (s ScalarRef) Label() string { return s.label }

// Resolve maps the ref to a float, consulting lookup for labels. Literals
// resolve to themselves.
func (s ScalarRef) Resolve(lookup func(label string) (float64, bool)) (float64, error) {
	if !s.isLabel {
		return s.value, nil
	}
	if v, ok := lookup(s.label); ok {
		return v, nil
	}
	return 0, fmt.Errorf("unresolved label %q", s.label)
}

func (s ScalarRef) String() string {
	if s.isLabel {
		return s.label
	}
	return strconv.FormatFloat(s.value, 'g', -1, 64)
}
