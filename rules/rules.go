/*
Package rules resolves glyph substitution rules of a design-space sketch.

A rule line names a pattern (an exact glyph, a glyph list, a prefix wildcard,
or the universal wildcard `*`), a target (a suffix to append or a replacement
glyph), and a condition over design-space coordinates:

	dollar* cent* > .rvrn (wght >= Medium) "currency"

Resolution expands the pattern against the glyph set of the document's
sources and validates that every computed target glyph actually exists. The
reverse path compresses concrete substitution lists back into wildcard form
when the compression provably matches the same glyph set and nothing else.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package rules

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'tyse.dsketch'
func tracer() tracing.Trace {
	return tracing.Select("tyse.dsketch")
}

// GlyphSet is the set of glyph names available in a font source.
type GlyphSet map[string]bool

// NewGlyphSet builds a set from a name list.
func NewGlyphSet(names ...string) GlyphSet {
	gs := make(GlyphSet, len(names))
	for _, n := range names {
		gs[n] = true
	}
	return gs
}

// GlyphProvider hands out the glyph names contained in a source file. It is a
// collaborator owned by the host (UFO reading, font parsing); the resolver
// only consumes the resulting sets.
type GlyphProvider interface {
	GlyphNames(filename string) (GlyphSet, error)
}
