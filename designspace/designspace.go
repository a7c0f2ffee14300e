/*
Package designspace reads and writes designspace documents, the XML format
variable-font tooling exchanges design spaces in. The package targets format
version 5, including

  ▪︎ per-axis style labels with elidable flags,
  ▪︎ discrete axes carrying a values list instead of a range,
  ▪︎ hidden axes, and
  ▪︎ the axis mappings table feeding the avar version 2 font table.

Locations are serialized in design space, the axis mappings input side in
user space, matching how variable-font compilers consume the document.

# Status

Work in progress, but stable.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package designspace

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'tyse.dsketch'.
func tracer() tracing.Trace {
	return tracing.Select("tyse.dsketch")
}

// Format is the designspace version written by Encode.
const Format = "5.0"
