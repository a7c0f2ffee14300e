package rules

import (
	"strconv"
	"strings"

	"github.com/npillmayer/dsketch"
)

// ParseConditions parses a rule condition expression into a conjunction of
// design-space conditions. Supported forms, combined with `&&`:
//
//	wght >= 480
//	wght <= Light
//	wght == 500
//	400 <= wght <= 700
//
// Comparands are numeric literals or axis labels; labels resolve to the
// mapping's design value of the referenced axis, never to its user value.
// Every resulting bound is validated against the axis's derived design-space
// extent (the min/max over its mapping design values): a bound outside that
// extent is a semantic error regardless of the axis's user-space range.
func ParseConditions(expr string, doc *dsketch.Document, diag *dsketch.Diagnostics, lineno int) []dsketch.Condition {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil
	}
	var conds []dsketch.Condition
	for _, part := range strings.Split(expr, "&&") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		cond, ok := parseComparison(part, doc, diag, lineno)
		if ok {
			conds = append(conds, cond)
		}
	}
	return conds
}

func parseComparison(part string, doc *dsketch.Document, diag *dsketch.Diagnostics, lineno int) (dsketch.Condition, bool) {
	toks := strings.Fields(part)
	switch {
	case len(toks) == 5 && toks[1] == "<=" && toks[3] == "<=":
		// range form: min <= axis <= max
		ax := doc.Axis(toks[2])
		if ax == nil {
			diag.Add(dsketch.SeveritySemantic, lineno, "rule condition references undeclared axis %q", toks[2])
			return dsketch.Condition{}, false
		}
		min, ok1 := resolveComparand(toks[0], ax, diag, lineno)
		max, ok2 := resolveComparand(toks[4], ax, diag, lineno)
		if !ok1 || !ok2 {
			return dsketch.Condition{}, false
		}
		cond := dsketch.Condition{Axis: ax.Tag, Min: &min, Max: &max}
		return cond, validateBounds(cond, ax, diag, lineno)
	case len(toks) == 3:
		ax := doc.Axis(toks[0])
		if ax == nil {
			diag.Add(dsketch.SeveritySemantic, lineno, "rule condition references undeclared axis %q", toks[0])
			return dsketch.Condition{}, false
		}
		val, ok := resolveComparand(toks[2], ax, diag, lineno)
		if !ok {
			return dsketch.Condition{}, false
		}
		cond := dsketch.Condition{Axis: ax.Tag}
		switch toks[1] {
		case ">=":
			cond.Min = &val
		case "<=":
			cond.Max = &val
		case "==":
			v2 := val
			cond.Min, cond.Max = &val, &v2
		default:
			diag.Add(dsketch.SeverityAdvisory, lineno, "unsupported condition operator %q", toks[1])
			return dsketch.Condition{}, false
		}
		return cond, validateBounds(cond, ax, diag, lineno)
	}
	diag.Add(dsketch.SeverityAdvisory, lineno, "cannot parse rule condition %q", part)
	return dsketch.Condition{}, false
}

// resolveComparand maps a condition comparand to a design-space value.
func resolveComparand(tok string, ax *dsketch.Axis, diag *dsketch.Diagnostics, lineno int) (float64, bool) {
	if v, err := strconv.ParseFloat(tok, 64); err == nil {
		return v, true
	}
	if m, ok := ax.MappingFor(tok); ok {
		return m.DesignValue, true
	}
	diag.Add(dsketch.SeveritySemantic, lineno,
		"condition value %q is not a number and no mapping on axis %q carries that label", tok, ax.Tag)
	return 0, false
}

func validateBounds(cond dsketch.Condition, ax *dsketch.Axis, diag *dsketch.Diagnostics, lineno int) bool {
	lo, hi := ax.DesignBounds()
	check := func(v float64) bool {
		if v < lo || v > hi {
			diag.Add(dsketch.SeveritySemantic, lineno,
				"condition bound %g outside design-space range [%g, %g] of axis %q", v, lo, hi, ax.Tag)
			return false
		}
		return true
	}
	ok := true
	if cond.Min != nil {
		ok = check(*cond.Min) && ok
	}
	if cond.Max != nil {
		ok = check(*cond.Max) && ok
	}
	if cond.Min != nil && cond.Max != nil && *cond.Min > *cond.Max {
		diag.Add(dsketch.SeverityAdvisory, lineno,
			"inverted condition range [%g, %g] on axis %q", *cond.Min, *cond.Max, ax.Tag)
		ok = false
	}
	return ok
}
