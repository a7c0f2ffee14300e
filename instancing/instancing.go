/*
Package instancing derives named instances from a design-space document.

With automatic instancing the cartesian product of all visible axis labels is
enumerated, style names are built by concatenating the labels in axis order,
and labels flagged as elidable are dropped from the names. Axes without
mappings contribute synthesized labels built from their extremes, their
default, and any avar2 input points touching them.

# Status

Work in progress, but stable.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package instancing

import (
	"sort"
	"strconv"
	"strings"

	"github.com/npillmayer/dsketch"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'tyse.dsketch'.
func tracer() tracing.Trace {
	return tracing.Select("tyse.dsketch")
}

// Generate produces the instance list for a document according to its
// instance mode. Explicit instances are completed in place (family name,
// PostScript name, filename), automatic mode enumerates the label
// combinations, off yields nil.
func Generate(doc *dsketch.Document, diag *dsketch.Diagnostics) []*dsketch.Instance {
	switch doc.InstanceMode {
	case dsketch.InstancesOff:
		return nil
	case dsketch.InstancesExplicit:
		for _, inst := range doc.Instances {
			complete(doc, inst)
		}
		return doc.Instances
	}
	return generateAuto(doc, diag)
}

// label is one selectable point on an axis during enumeration.
type label struct {
	axis     *dsketch.Axis
	text     string
	design   float64
	elidable bool
}

func generateAuto(doc *dsketch.Document, diag *dsketch.Diagnostics) []*dsketch.Instance {
	var axes [][]label
	for _, ax := range doc.OrderedAxes() {
		if ax.Hidden {
			continue
		}
		labels := axisLabels(doc, ax)
		if len(labels) == 0 {
			continue
		}
		axes = append(axes, labels)
	}
	if len(axes) == 0 {
		return nil
	}
	skips := newSkipSet(doc, axes, diag)

	var instances []*dsketch.Instance
	combo := make([]label, len(axes))
	var walk func(depth int)
	walk = func(depth int) {
		if depth == len(axes) {
			if inst := build(doc, combo, skips); inst != nil {
				instances = append(instances, inst)
			}
			return
		}
		for _, l := range axes[depth] {
			combo[depth] = l
			walk(depth + 1)
		}
	}
	walk(0)

	skips.reportUnused(diag)
	tracer().Infof("generated %d instances", len(instances))
	return instances
}

// axisLabels returns the selectable labels of an axis. Mapped axes use their
// mappings; unmapped axes get labels synthesized from min, default, max and
// the avar2 input points on the axis, with the default marked elidable.
func axisLabels(doc *dsketch.Document, ax *dsketch.Axis) []label {
	if len(ax.Mappings) > 0 {
		labels := make([]label, len(ax.Mappings))
		for i, m := range ax.Mappings {
			labels[i] = label{axis: ax, text: m.Label, design: m.DesignValue, elidable: m.Elidable}
		}
		return labels
	}
	values := []float64{ax.Minimum, ax.Default, ax.Maximum}
	for _, m := range doc.Avar2Maps {
		for _, d := range m.Input {
			if d.Axis == ax.Tag {
				values = append(values, d.Value)
			}
		}
	}
	sort.Float64s(values)
	var labels []label
	for i, v := range values {
		if i > 0 && v == values[i-1] {
			continue
		}
		labels = append(labels, label{
			axis:     ax,
			text:     ax.Tag + formatValue(v),
			design:   ax.DesignValue(v),
			elidable: v == ax.Default,
		})
	}
	return labels
}

// build realizes one combination as an instance, or nil if skipped.
func build(doc *dsketch.Document, combo []label, skips *skipSet) *dsketch.Instance {
	styleName := strings.Join(elide(combo), " ")
	if skips.matches(styleName) {
		return nil
	}
	inst := &dsketch.Instance{
		StyleName: styleName,
		Location:  make(map[string]float64, len(combo)),
	}
	for _, l := range combo {
		inst.Location[l.axis.Tag] = l.design
	}
	complete(doc, inst)
	return inst
}

// elide drops elidable labels from a combination, keeping weight labels
// until last and never emptying the name. "Regular Upright" with both labels
// elidable reduces to "Regular", not to "".
func elide(combo []label) []string {
	keep := make([]bool, len(combo))
	remaining := len(combo)
	for i := range combo {
		keep[i] = true
	}
	drop := func(weightPass bool) {
		for i, l := range combo {
			if !keep[i] || !l.elidable {
				continue
			}
			isWeight := dsketch.VocabForAxis(l.axis) == dsketch.VocabWeight
			if isWeight != weightPass {
				continue
			}
			if remaining == 1 {
				return
			}
			keep[i] = false
			remaining--
		}
	}
	drop(false)
	drop(true)
	var names []string
	for i, l := range combo {
		if keep[i] {
			names = append(names, l.text)
		}
	}
	return names
}

// complete fills the derived fields of an instance.
func complete(doc *dsketch.Document, inst *dsketch.Instance) {
	if inst.FamilyName == "" {
		inst.FamilyName = strings.TrimSpace(doc.Family + " " + doc.Suffix)
	}
	if inst.PostScriptName == "" {
		inst.PostScriptName = postScriptName(inst.FamilyName, inst.StyleName)
	}
	if inst.Filename == "" {
		inst.Filename = "instances/" + inst.PostScriptName + ".ufo"
	}
}

// postScriptName builds Family-Style with all spaces removed.
func postScriptName(family, style string) string {
	f := strings.ReplaceAll(family, " ", "")
	s := strings.ReplaceAll(style, " ", "")
	if s == "" {
		return f
	}
	return f + "-" + s
}

// ---------------------------------------------------------------------------
// skip handling

type skipSet struct {
	entries map[string]bool // entry -> used
}

// newSkipSet validates the document's skip list against the known labels.
// A skip entry containing a label no axis declares can never match and is a
// semantic error.
func newSkipSet(doc *dsketch.Document, axes [][]label, diag *dsketch.Diagnostics) *skipSet {
	known := map[string]bool{}
	var candidates []string
	for _, labels := range axes {
		for _, l := range labels {
			known[l.text] = true
			candidates = append(candidates, l.text)
		}
	}
	sorted := append([]string{}, candidates...)
	sort.Strings(sorted)
	available := strings.Join(sorted, ", ")
	s := &skipSet{entries: map[string]bool{}}
	for _, entry := range doc.SkipList {
		valid := true
		for _, tok := range strings.Fields(entry) {
			if known[tok] {
				continue
			}
			valid = false
			if corr, ok := dsketch.Suggest(tok, candidates); ok {
				diag.AddSuggest(dsketch.SeveritySemantic, 0, corr,
					"skip entry %q uses unknown label %q, available labels: %s", entry, tok, available)
			} else {
				diag.Add(dsketch.SeveritySemantic, 0,
					"skip entry %q uses unknown label %q, available labels: %s", entry, tok, available)
			}
		}
		if valid {
			s.entries[entry] = false
		}
	}
	return s
}

func (s *skipSet) matches(name string) bool {
	if _, ok := s.entries[name]; !ok {
		return false
	}
	s.entries[name] = true
	return true
}

// reportUnused raises an advisory for each skip entry that matched no
// generated style name.
func (s *skipSet) reportUnused(diag *dsketch.Diagnostics) {
	var unused []string
	for entry, used := range s.entries {
		if !used {
			unused = append(unused, entry)
		}
	}
	sort.Strings(unused)
	for _, entry := range unused {
		diag.Add(dsketch.SeverityAdvisory, 0, "skip entry %q matches no generated instance", entry)
	}
}

func formatValue(v float64) string {
	return strings.TrimSuffix(strconv.FormatFloat(v, 'f', -1, 64), ".0")
}
