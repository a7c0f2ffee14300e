/*
Package dss parses and writes the design-space sketch notation.

The notation is a line-oriented, indentation-structured shorthand for
designspace documents. A small file describes what takes several hundred lines
of XML:

	family Super Font
	path masters

	axes
	    wght Thin:Regular:Black
	        Thin > 26
	        Regular > 94 @elidable
	        Black > 218
	    ital discrete
	        Upright @elidable
	        Italic

	sources [wght, ital]
	    SuperFont-Regular [Regular, Upright] @base
	    SuperFont-Black   [Black, Upright]

	instances auto

Parsing is a single pass over logical lines (package-internal scanner),
followed by a finalization phase that checks structural invariants and infers
hidden axes from the avar2 tables. Diagnostics accumulate in a
dsketch.Diagnostics collector; see there for the severity taxonomy.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package dss

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'tyse.dsketch'
func tracer() tracing.Trace {
	return tracing.Select("tyse.dsketch")
}

// Mode selects how the parser reacts to diagnostics.
type Mode int

const (
	// StrictMode halts at the first diagnostic of any severity.
	StrictMode Mode = iota
	// LenientMode processes the entire document and returns a best-effort
	// Document together with the full diagnostic list. Structural and
	// semantic findings still render the result unusable (Diagnostics.Err
	// is non-nil); the caller decides whether to proceed.
	LenientMode
)
