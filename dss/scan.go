package dss

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// line is one logical line of a sketch file: comment stripped, whitespace
// normalized, indentation recorded. Blank and comment-only lines are dropped
// by the scanner.
type line struct {
	no     int    // 1-based line number in the input
	indent int    // count of leading spaces (tabs expand to 4)
	text   string // trimmed content, internal runs of whitespace collapsed
}

func (ln line) fields() []string {
	return strings.Fields(ln.text)
}

// scan splits sketch text into logical lines. Input is normalized to NFC
// first so that label comparison and typo detection operate on stable rune
// sequences regardless of how the editor encoded combining marks.
func scan(text string) []line {
	text = norm.NFC.String(text)
	var lines []line
	for no, raw := range strings.Split(text, "\n") {
		content := stripComment(raw)
		trimmed := strings.TrimSpace(content)
		if trimmed == "" {
			continue
		}
		lines = append(lines, line{
			no:     no + 1,
			indent: indentOf(content),
			text:   normalizeSpace(trimmed),
		})
	}
	return lines
}

// stripComment removes a trailing # comment, honoring double quotes so that
// rule names and display names may contain '#'.
func stripComment(raw string) string {
	inQuote := false
	for i, r := range raw {
		switch r {
		case '"':
			inQuote = !inQuote
		case '#':
			if !inQuote {
				return raw[:i]
			}
		}
	}
	return raw
}

func indentOf(s string) int {
	n := 0
	for _, r := range s {
		switch r {
		case ' ':
			n++
		case '\t':
			n += 4
		default:
			return n
		}
	}
	return n
}

// normalizeSpace collapses internal whitespace runs to single spaces, leaving
// quoted segments untouched.
func normalizeSpace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inQuote := false
	space := false
	for _, r := range s {
		if r == '"' {
			inQuote = !inQuote
		}
		if !inQuote && (r == ' ' || r == '\t') {
			space = true
			continue
		}
		if space {
			b.WriteByte(' ')
			space = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

// splitQuoted splits on spaces but keeps double-quoted runs as single tokens
// (quotes removed). `a "b c" d` yields [a, b c, d].
func splitQuoted(s string) []string {
	var toks []string
	var b strings.Builder
	inQuote := false
	flush := func() {
		if b.Len() > 0 {
			toks = append(toks, b.String())
			b.Reset()
		}
	}
	for _, r := range s {
		switch {
		case r == '"':
			inQuote = !inQuote
		case r == ' ' && !inQuote:
			flush()
		default:
			b.WriteRune(r)
		}
	}
	flush()
	return toks
}

// takeQuoted extracts the first double-quoted run from a line, returning the
// quoted content and the line with the run removed.
func takeQuoted(s string) (quoted string, rest string, ok bool) {
	start := strings.IndexByte(s, '"')
	if start < 0 {
		return "", s, false
	}
	end := strings.IndexByte(s[start+1:], '"')
	if end < 0 {
		return "", s, false
	}
	quoted = s[start+1 : start+1+end]
	rest = strings.TrimSpace(strings.TrimSpace(s[:start]) + " " + strings.TrimSpace(s[start+2+end:]))
	return quoted, rest, true
}

// bracketMismatch checks a line for coordinate brackets of the wrong kind or
// unbalanced brackets. It returns a description of the problem, or "".
func bracketMismatch(s string) string {
	counts := map[byte]int{}
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '[', ']', '(', ')', '{', '}':
			counts[s[i]]++
		}
	}
	var issues []string
	if counts['{'] > 0 && strings.Contains(s, ",") {
		issues = append(issues, "use [] for coordinates, not {}")
	}
	if counts['['] != counts[']'] {
		issues = append(issues, "unbalanced square brackets")
	}
	if counts['('] != counts[')'] {
		issues = append(issues, "unbalanced parentheses")
	}
	if counts['{'] != counts['}'] {
		issues = append(issues, "unbalanced curly brackets")
	}
	return strings.Join(issues, "; ")
}
