package dss

import (
	"strconv"
	"strings"
)

// formatNumber renders a design or user value the way sketch files write
// them: integers without a decimal point, everything else with the shortest
// round-tripping representation.
func formatNumber(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if strings.HasSuffix(s, ".0") {
		s = strings.TrimSuffix(s, ".0")
	}
	return s
}
