package rules

import (
	"sort"
	"strings"
)

// PatternKind classifies a rule pattern.
type PatternKind int

const (
	PatternExact     PatternKind = iota // single bare glyph name
	PatternWildcard                     // contains '*' or lists several tokens
	PatternUniversal                    // a bare '*'
)

// ClassifyPattern determines how a pattern string expands.
func ClassifyPattern(pattern string) PatternKind {
	pattern = strings.TrimSpace(pattern)
	if pattern == "*" {
		return PatternUniversal
	}
	if strings.Contains(pattern, "*") || len(strings.Fields(pattern)) > 1 {
		return PatternWildcard
	}
	return PatternExact
}

// MatchesPattern reports whether a glyph name matches one wildcard token.
// Supported forms: exact, prefix (dollar*), suffix (*Heavy), and
// prefix+suffix (a.*alt).
func MatchesPattern(glyph, pattern string) bool {
	if !strings.Contains(pattern, "*") {
		return glyph == pattern
	}
	switch {
	case strings.HasSuffix(pattern, "*") && strings.Count(pattern, "*") == 1:
		return strings.HasPrefix(glyph, pattern[:len(pattern)-1])
	case strings.HasPrefix(pattern, "*") && strings.Count(pattern, "*") == 1:
		return strings.HasSuffix(glyph, pattern[1:])
	default:
		prefix, suffix, _ := strings.Cut(pattern, "*")
		return strings.HasPrefix(glyph, prefix) && strings.HasSuffix(glyph, suffix) &&
			len(glyph) >= len(prefix)+len(suffix)
	}
}

// FindMatching returns all glyphs of the set matching any of the pattern
// tokens, sorted for deterministic output.
func FindMatching(patterns []string, glyphs GlyphSet) []string {
	var matched []string
	for g := range glyphs {
		for _, p := range patterns {
			if MatchesPattern(g, p) {
				matched = append(matched, g)
				break
			}
		}
	}
	sort.Strings(matched)
	return matched
}
