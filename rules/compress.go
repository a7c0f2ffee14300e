package rules

import (
	"sort"
	"strings"
)

// minPrefixLen is the shortest prefix a wildcard compression may use. Shorter
// prefixes over-match too easily to be worth the notation.
const minPrefixLen = 3

// CompressSubstitutions attempts to fold a list of concrete substitutions
// back into wildcard form for serialization. It succeeds only when
//
//  1. all substitutions share one suffix transformation (from, from+".sfx"),
//  2. the resulting pattern list, expanded against the glyph set, matches
//     exactly the original source glyphs and nothing more.
//
// When the glyph set is nil the over-match check is impossible; the explicit
// glyph list joined by spaces is returned instead of a wildcard. Returns
// (pattern, targetSuffix, true) on success.
func CompressSubstitutions(subs [][2]string, glyphs GlyphSet) (string, string, bool) {
	if len(subs) < 2 {
		return "", "", false
	}
	suffix, ok := commonSuffix(subs)
	if !ok {
		return "", "", false
	}
	from := make([]string, len(subs))
	for i, sub := range subs {
		from[i] = sub[0]
	}
	patterns := prefixPatterns(from)
	hasWildcard := false
	for _, p := range patterns {
		if strings.Contains(p, "*") {
			hasWildcard = true
			break
		}
	}
	if hasWildcard {
		if glyphs == nil {
			return strings.Join(from, " "), suffix, true
		}
		expanded := FindMatching(patterns, glyphs)
		// resolution skips glyphs already carrying the suffix, mirror that
		kept := expanded[:0]
		for _, g := range expanded {
			if !strings.HasSuffix(g, suffix) {
				kept = append(kept, g)
			}
		}
		if !sameNames(kept, from) {
			// wildcard would over-match; fall back to the explicit list
			return strings.Join(from, " "), suffix, true
		}
	}
	return strings.Join(patterns, " "), suffix, true
}

// commonSuffix reports the shared ".suffix" transformation of a substitution
// list, if there is one.
func commonSuffix(subs [][2]string) (string, bool) {
	suffix := ""
	for _, sub := range subs {
		if !strings.HasPrefix(sub[1], sub[0]+".") {
			return "", false
		}
		s := sub[1][len(sub[0]):]
		if suffix == "" {
			suffix = s
		} else if suffix != s {
			return "", false
		}
	}
	return suffix, suffix != ""
}

// prefixPatterns groups glyph names under shared prefixes of at least
// minPrefixLen characters and emits `prefix*` tokens for groups of two or
// more; leftovers stay as explicit names.
func prefixPatterns(names []string) []string {
	sorted := append([]string(nil), names...)
	sort.Strings(sorted)

	// best (longest covering) prefix per group of neighbors
	groups := map[string][]string{}
	for _, name := range sorted {
		for plen := minPrefixLen; plen <= len(name); plen++ {
			prefix := name[:plen]
			var matching []string
			for _, other := range sorted {
				if strings.HasPrefix(other, prefix) {
					matching = append(matching, other)
				}
			}
			if len(matching) > 1 {
				if cur, ok := groups[prefix]; !ok || len(matching) > len(cur) {
					groups[prefix] = matching
				}
			}
		}
	}

	prefixes := make([]string, 0, len(groups))
	for p := range groups {
		prefixes = append(prefixes, p)
	}
	// prefer large groups, then short prefixes
	sort.Slice(prefixes, func(i, j int) bool {
		if len(groups[prefixes[i]]) != len(groups[prefixes[j]]) {
			return len(groups[prefixes[i]]) > len(groups[prefixes[j]])
		}
		return prefixes[i] < prefixes[j]
	})

	used := map[string]bool{}
	var patterns []string
	for _, prefix := range prefixes {
		overlap := false
		for _, g := range groups[prefix] {
			if used[g] {
				overlap = true
				break
			}
		}
		if overlap {
			continue
		}
		patterns = append(patterns, prefix+"*")
		for _, g := range groups[prefix] {
			used[g] = true
		}
	}
	for _, name := range sorted {
		if !used[name] {
			patterns = append(patterns, name)
		}
	}
	sort.Strings(patterns)
	return patterns
}

func sameNames(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	bs := append([]string(nil), b...)
	sort.Strings(bs)
	for i := range a {
		if a[i] != bs[i] {
			return false
		}
	}
	return true
}
