package rules

import (
	"sort"
	"strings"

	"github.com/npillmayer/dsketch"
)

// Resolve expands a rule's pattern against a glyph set into concrete
// substitutions. Behavior per pattern kind:
//
//   - exact: the single (glyph, target) pair, provided the target exists;
//   - wildcard/list: every glyph matching any token;
//   - universal '*': every glyph of the set.
//
// A substitution is only emitted when the computed target glyph exists in the
// set. Missing targets are skipped with an advisory; a universal rule is
// expected to cover only the glyphs that actually have variant forms. Glyphs
// already carrying the target suffix are skipped silently.
func Resolve(rule *dsketch.Rule, glyphs GlyphSet, diag *dsketch.Diagnostics) [][2]string {
	if rule.Pattern == "" {
		// explicit substitutions: validate targets only
		var subs [][2]string
		for _, sub := range rule.Substitutions {
			if !glyphs[sub[1]] {
				diag.Add(dsketch.SeverityAdvisory, 0,
					"rule %q: target glyph %q not found in sources, substitution %s > %s dropped",
					rule.Name, sub[1], sub[0], sub[1])
				continue
			}
			subs = append(subs, sub)
		}
		sortSubs(subs)
		return subs
	}

	var names []string
	switch ClassifyPattern(rule.Pattern) {
	case PatternUniversal:
		for g := range glyphs {
			names = append(names, g)
		}
		sort.Strings(names)
	default:
		names = FindMatching(strings.Fields(rule.Pattern), glyphs)
	}

	appendSuffix := strings.HasPrefix(rule.Target, ".")
	var subs [][2]string
	for _, g := range names {
		var target string
		if appendSuffix {
			if strings.HasSuffix(g, rule.Target) {
				continue // already the variant glyph
			}
			target = g + rule.Target
		} else {
			target = rule.Target
		}
		if !glyphs[target] {
			if ClassifyPattern(rule.Pattern) != PatternUniversal {
				diag.Add(dsketch.SeverityAdvisory, 0,
					"rule %q: target glyph %q not found in sources, substitution %s > %s dropped",
					rule.Name, target, g, target)
			} else {
				tracer().Debugf("rule %q: no %q variant for glyph %q", rule.Name, rule.Target, g)
			}
			continue
		}
		subs = append(subs, [2]string{g, target})
	}
	sortSubs(subs)
	return subs
}

// ResolveAll expands every rule of a document in place, filling the
// Substitutions of wildcard rules. Rules with no surviving substitution are
// reported and removed.
func ResolveAll(doc *dsketch.Document, glyphs GlyphSet, diag *dsketch.Diagnostics) {
	kept := doc.Rules[:0]
	for _, rule := range doc.Rules {
		rule.Substitutions = Resolve(rule, glyphs, diag)
		if len(rule.Substitutions) == 0 {
			diag.Add(dsketch.SeverityAdvisory, 0, "rule %q has no valid substitutions and was dropped", rule.Name)
			continue
		}
		kept = append(kept, rule)
	}
	doc.Rules = kept
}

func sortSubs(subs [][2]string) {
	sort.Slice(subs, func(i, j int) bool { return subs[i][0] < subs[j][0] })
}
