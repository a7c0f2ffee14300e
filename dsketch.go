/*
Package dsketch is a bidirectional translator between a compact, hand-editable
text notation for variable-font design spaces ("sketch" files) and the verbose
designspace document model.

There is a certain confusion with the nomenclature of design spaces. We will
stick to the following definitions:

▪︎ "User space" is the externally visible coordinate system of an axis, i.e.
the weight value an application would request ("give me weight 700").

▪︎ "Design space" is the internal interpolation coordinate system, i.e. where
the source data actually lives. A weight of 700 in user space may interpolate
at 174 in design space.

▪︎ A "mapping" is one labeled user↔design coordinate pair on an axis
("700 Bold > 174").

▪︎ A "source" (called "master" by some tools) is a concrete interpolation
point backed by a font file on disk.

The root package holds the document model shared by the parser (package dss),
the instance generator (package instancing), the rule resolver (package rules)
and the designspace XML codec (package designspace). A Document is built once
by a parser, validated, and only read afterwards; it carries no locks and may
be used from multiple goroutines once construction has finished.

# Status

Sketch notation, instance generation, avar2 tables (matrix and linear layout)
and wildcard rules are supported. Variable-font `lib` payloads are not.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package dsketch

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'tyse.dsketch'
func tracer() tracing.Trace {
	return tracing.Select("tyse.dsketch")
}
