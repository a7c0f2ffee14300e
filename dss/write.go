package dss

import (
	"fmt"
	"os"
	"strings"

	"github.com/npillmayer/dsketch"
	"github.com/npillmayer/dsketch/rules"
)

// Layout selects the notation used for the avar2 section.
type Layout int

const (
	LayoutAuto   Layout = iota // matrix when hidden axes exist, linear otherwise
	LayoutMatrix               // input points crossed with output columns
	LayoutLinear               // one full mapping per line
)

// WriterOptions tunes Write. The zero value selects the defaults.
type WriterOptions struct {
	Layout Layout
	// VarThreshold is the minimum number of identical avar2 output values
	// needed before the value is hoisted into a named variable. 0 selects the
	// default of 3, a negative value disables extraction.
	VarThreshold int
	// Glyphs, when non-nil, lets the writer compress enumerated rule
	// substitutions back into wildcard patterns.
	Glyphs rules.GlyphSet
}

func (opts *WriterOptions) varThreshold() int {
	switch {
	case opts == nil || opts.VarThreshold == 0:
		return 3
	case opts.VarThreshold < 0:
		return 0
	}
	return opts.VarThreshold
}

// Write serializes a document into sketch notation. The output is the
// document's normal form: standard labels replace their numeric values,
// redundant user-value prefixes are dropped, and columns are aligned.
func Write(doc *dsketch.Document, opts *WriterOptions) string {
	if opts == nil {
		opts = &WriterOptions{}
	}
	w := &writer{doc: doc, opts: opts}
	w.header()
	w.axes(doc.Axes, false)
	w.axes(doc.HiddenAxes, true)
	w.sources()
	w.rules()
	w.instances()
	w.avar2()
	return w.b.String()
}

// WriteFile serializes a document to a sketch file.
func WriteFile(filename string, doc *dsketch.Document, opts *WriterOptions) error {
	return os.WriteFile(filename, []byte(Write(doc, opts)), 0644)
}

type writer struct {
	b    strings.Builder
	doc  *dsketch.Document
	opts *WriterOptions
}

func (w *writer) line(indent int, format string, args ...interface{}) {
	w.b.WriteString(strings.Repeat(" ", indent))
	fmt.Fprintf(&w.b, format, args...)
	w.b.WriteString("\n")
}

func (w *writer) blank() {
	w.b.WriteString("\n")
}

func (w *writer) header() {
	if w.doc.Family != "" {
		if strings.ContainsAny(w.doc.Family, " \t") {
			w.line(0, "family %q", w.doc.Family)
		} else {
			w.line(0, "family %s", w.doc.Family)
		}
	}
	if w.doc.Suffix != "" {
		w.line(0, "suffix %s", w.doc.Suffix)
	}
	if w.doc.Path != "" {
		w.line(0, "path %s", w.doc.Path)
	}
	if w.b.Len() > 0 {
		w.blank()
	}
}

// ---------------------------------------------------------------------------
// axes

func (w *writer) axes(axes []*dsketch.Axis, hidden bool) {
	if len(axes) == 0 {
		return
	}
	if hidden {
		w.line(0, "axes hidden")
	} else {
		w.line(0, "axes")
	}
	for _, ax := range axes {
		w.axisDef(ax)
		for _, m := range ax.Mappings {
			w.line(8, "%s", w.mappingLine(ax, m))
		}
	}
	w.blank()
}

func (w *writer) axisDef(ax *dsketch.Axis) {
	var parts []string
	if ax.DisplayName != "" && !strings.EqualFold(ax.DisplayName, ax.Name) {
		parts = append(parts, fmt.Sprintf("%q", ax.DisplayName))
	}
	if strings.EqualFold(ax.Name, ax.Tag) {
		// parametric axes named after their tag use the shortened form
		parts = append(parts, ax.Tag, w.axisRange(ax))
	} else {
		parts = append(parts, ax.Name, ax.Tag, w.axisRange(ax))
	}
	w.line(4, "%s", strings.Join(parts, " "))
}

func (w *writer) axisRange(ax *dsketch.Axis) string {
	if ax.Discrete && ax.Minimum == 0 && ax.Default == 0 && ax.Maximum == 1 {
		return "binary"
	}
	r := fmt.Sprintf("%s:%s:%s",
		formatNumber(ax.Minimum), formatNumber(ax.Default), formatNumber(ax.Maximum))
	if ax.Discrete {
		r += ":discrete"
	}
	return r
}

// mappingLine renders one mapping in its shortest lossless form. A standard
// label whose table value matches the user value needs no numeric prefix; a
// discrete label with identical user and design value collapses to the bare
// label.
func (w *writer) mappingLine(ax *dsketch.Axis, m dsketch.Mapping) string {
	var s string
	switch {
	case ax.Discrete && m.UserValue == m.DesignValue && discreteMatches(ax.Tag, m.Label, m.UserValue):
		s = m.Label
	case stdMatches(ax, m.Label, m.UserValue):
		s = fmt.Sprintf("%s > %s", m.Label, formatNumber(m.DesignValue))
	case m.Label == ax.Tag+formatNumber(m.UserValue):
		// synthesized label, keep the numeric form
		s = fmt.Sprintf("%s > %s", formatNumber(m.UserValue), formatNumber(m.DesignValue))
	default:
		s = fmt.Sprintf("%s %s > %s", formatNumber(m.UserValue), m.Label, formatNumber(m.DesignValue))
	}
	if m.Elidable {
		s += " @elidable"
	}
	return s
}

func stdMatches(ax *dsketch.Axis, label string, user float64) bool {
	u, ok := dsketch.StdUserValue(dsketch.VocabForAxis(ax), label)
	return ok && u == user
}

func discreteMatches(tag, label string, value float64) bool {
	v, ok := dsketch.DiscreteValue(tag, label)
	return ok && v == value
}

// ---------------------------------------------------------------------------
// sources

func (w *writer) sources() {
	if len(w.doc.Sources) == 0 {
		return
	}
	ordered := w.doc.OrderedAxes()
	declared := w.doc.AllAxes()
	sameOrder := len(ordered) == len(declared)
	for i := range ordered {
		if !sameOrder || ordered[i] != declared[i] {
			sameOrder = false
			break
		}
	}
	if sameOrder {
		w.line(0, "sources")
	} else {
		tags := make([]string, len(ordered))
		for i, ax := range ordered {
			tags[i] = ax.Tag
		}
		w.line(0, "sources [%s]", strings.Join(tags, ", "))
	}

	sparse := len(w.doc.HiddenAxes) > 0
	nameWidth := 0
	for _, src := range w.doc.Sources {
		if n := len(w.sourceName(src)); n > nameWidth {
			nameWidth = n
		}
	}
	for _, src := range w.doc.Sources {
		var coords string
		if sparse {
			coords = w.namedCoords(src)
		} else {
			coords = w.positionalCoords(src, ordered)
		}
		s := strings.TrimRight(fmt.Sprintf("%-*s %s", nameWidth, w.sourceName(src), coords), " ")
		if src.Layer != "" {
			s += fmt.Sprintf(" @layer=%q", src.Layer)
		}
		if src.IsBase {
			s += " @base"
		}
		w.line(4, "%s", s)
	}
	w.blank()
}

func (w *writer) sourceName(src *dsketch.Source) string {
	name := src.Name
	if src.Filename != "" && src.Filename != src.Name+".ufo" {
		name = src.Filename
	}
	if strings.ContainsAny(name, " \t") {
		return fmt.Sprintf("%q", name)
	}
	return name
}

func (w *writer) positionalCoords(src *dsketch.Source, axes []*dsketch.Axis) string {
	parts := make([]string, len(axes))
	for i, ax := range axes {
		parts[i] = w.designToken(ax, src.Location[ax.Tag])
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// namedCoords writes only the coordinates that differ from the axis default,
// keeping source lines readable in parametric setups with many hidden axes.
func (w *writer) namedCoords(src *dsketch.Source) string {
	var parts []string
	for _, ax := range w.doc.OrderedAllAxes() {
		coord, ok := src.Location[ax.Tag]
		if !ok || coord == ax.DefaultDesign() {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s=%s", ax.Tag, w.designToken(ax, coord)))
	}
	return strings.Join(parts, ", ")
}

// synthesizedLabel recognizes labels the parser invented for numeric-only
// mappings. They stay internal, tokens render the plain number instead.
func synthesizedLabel(ax *dsketch.Axis, m dsketch.Mapping) bool {
	return m.Label == ax.Tag+formatNumber(m.UserValue)
}

// designToken prefers the mapping label over the raw design number.
func (w *writer) designToken(ax *dsketch.Axis, design float64) string {
	for _, m := range ax.Mappings {
		if m.DesignValue == design {
			if synthesizedLabel(ax, m) {
				break
			}
			return m.Label
		}
	}
	if ax.Discrete {
		if label, ok := dsketch.DiscreteLabel(ax.Tag, design); ok {
			return label
		}
	}
	return formatNumber(design)
}

// userToken prefers a mapping or standard label over the raw user number.
func (w *writer) userToken(ax *dsketch.Axis, user float64) string {
	for _, m := range ax.Mappings {
		if m.UserValue == user && !synthesizedLabel(ax, m) {
			return m.Label
		}
	}
	if label, ok := dsketch.StdLabel(dsketch.VocabForAxis(ax), user); ok {
		return label
	}
	if ax.Discrete {
		if label, ok := dsketch.DiscreteLabel(ax.Tag, user); ok {
			return label
		}
	}
	return formatNumber(user)
}

// ---------------------------------------------------------------------------
// rules

func (w *writer) rules() {
	if len(w.doc.Rules) == 0 {
		return
	}
	w.line(0, "rules")
	for _, rule := range w.doc.Rules {
		w.ruleLine(rule)
	}
	w.blank()
}

func (w *writer) ruleLine(rule *dsketch.Rule) {
	suffix := w.ruleSuffix(rule)
	if rule.Pattern != "" {
		w.line(4, "%s > %s%s", rule.Pattern, rule.Target, suffix)
		return
	}
	// try to recover a wildcard pattern from enumerated substitutions
	if w.opts.Glyphs != nil && len(rule.Substitutions) > 1 {
		if pattern, target, ok := rules.CompressSubstitutions(rule.Substitutions, w.opts.Glyphs); ok {
			w.line(4, "%s > %s%s", pattern, target, suffix)
			return
		}
	}
	for _, sub := range rule.Substitutions {
		to := sub[1]
		if trimmed := strings.TrimPrefix(to, sub[0]); trimmed != to && strings.HasPrefix(trimmed, ".") {
			to = trimmed
		}
		w.line(4, "%s > %s%s", sub[0], to, suffix)
	}
}

func (w *writer) ruleSuffix(rule *dsketch.Rule) string {
	var s string
	if len(rule.Conditions) > 0 {
		parts := make([]string, len(rule.Conditions))
		for i, c := range rule.Conditions {
			parts[i] = w.conditionString(c)
		}
		s += fmt.Sprintf(" (%s)", strings.Join(parts, " && "))
	}
	if rule.Name != "" {
		s += fmt.Sprintf(" %q", rule.Name)
	}
	return s
}

// conditionString renders a condition with labels where the bound sits on a
// mapping of the axis.
func (w *writer) conditionString(c dsketch.Condition) string {
	ax := w.doc.Axis(c.Axis)
	bound := func(v float64) string {
		if ax != nil {
			return w.designToken(ax, v)
		}
		return formatNumber(v)
	}
	switch {
	case c.Min != nil && c.Max != nil:
		if *c.Min == *c.Max {
			return fmt.Sprintf("%s == %s", c.Axis, bound(*c.Min))
		}
		return fmt.Sprintf("%s %s %s", bound(*c.Min), c.Axis, bound(*c.Max))
	case c.Min != nil:
		return fmt.Sprintf("%s >= %s", c.Axis, bound(*c.Min))
	case c.Max != nil:
		return fmt.Sprintf("%s <= %s", c.Axis, bound(*c.Max))
	}
	return c.Axis
}

// ---------------------------------------------------------------------------
// instances

func (w *writer) instances() {
	switch w.doc.InstanceMode {
	case dsketch.InstancesOff:
		w.line(0, "instances off")
		w.blank()
	case dsketch.InstancesAuto:
		w.line(0, "instances auto")
		for _, entry := range w.doc.SkipList {
			w.line(4, "skip %s", entry)
		}
		w.blank()
	case dsketch.InstancesExplicit:
		if len(w.doc.Instances) == 0 {
			return
		}
		w.line(0, "instances")
		var visible []*dsketch.Axis
		for _, ax := range w.doc.OrderedAxes() {
			if !ax.Hidden {
				visible = append(visible, ax)
			}
		}
		nameWidth := 0
		for _, inst := range w.doc.Instances {
			if len(inst.StyleName) > nameWidth {
				nameWidth = len(inst.StyleName)
			}
		}
		for _, inst := range w.doc.Instances {
			parts := make([]string, len(visible))
			for i, ax := range visible {
				parts[i] = w.designToken(ax, inst.Location[ax.Tag])
			}
			w.line(4, "%-*s [%s]", nameWidth, inst.StyleName, strings.Join(parts, ", "))
		}
		w.blank()
	}
}

// ---------------------------------------------------------------------------
// avar2

func (w *writer) avar2() {
	if len(w.doc.Avar2Maps) == 0 {
		return
	}
	vars := w.collectVars()
	if len(vars.ordered) > 0 {
		w.line(0, "avar2 vars")
		nameWidth := 0
		for _, v := range vars.ordered {
			if len(v.Name) > nameWidth {
				nameWidth = len(v.Name)
			}
		}
		for _, v := range vars.ordered {
			w.line(4, "$%-*s = %s", nameWidth, v.Name, formatNumber(v.Value))
		}
		w.blank()
	}
	layout := w.opts.Layout
	if layout == LayoutAuto {
		if len(w.doc.HiddenAxes) > 0 {
			layout = LayoutMatrix
		} else {
			layout = LayoutLinear
		}
	}
	if layout == LayoutMatrix {
		w.avar2Matrix(vars)
	} else {
		w.avar2Linear(vars)
	}
}

type varTable struct {
	ordered []dsketch.Avar2Var
	byValue map[float64]string
}

// collectVars merges the document's declared variables with values extracted
// from repeated matrix cells. Extraction never shadows a declared variable.
func (w *writer) collectVars() varTable {
	vars := varTable{byValue: map[float64]string{}}
	taken := map[string]bool{}
	for _, v := range w.doc.Avar2Vars {
		vars.ordered = append(vars.ordered, v)
		taken[v.Name] = true
		if _, have := vars.byValue[v.Value]; !have {
			vars.byValue[v.Value] = v.Name
		}
	}
	threshold := w.opts.varThreshold()
	if threshold == 0 {
		return vars
	}
	counts := map[float64]int{}
	var order []float64
	for _, m := range w.doc.Avar2Maps {
		for _, d := range m.Output {
			if _, seen := counts[d.Value]; !seen {
				order = append(order, d.Value)
			}
			counts[d.Value]++
		}
	}
	for _, value := range order {
		if counts[value] < threshold {
			continue
		}
		if _, have := vars.byValue[value]; have {
			continue
		}
		name := varName(value)
		if taken[name] {
			continue
		}
		taken[name] = true
		vars.byValue[value] = name
		vars.ordered = append(vars.ordered, dsketch.Avar2Var{Name: name, Value: value})
	}
	return vars
}

// varName derives an identifier from a numeric value, v84 for 84,
// vm10 for -10, v12_5 for 12.5.
func varName(value float64) string {
	s := formatNumber(value)
	s = strings.ReplaceAll(s, "-", "m")
	s = strings.ReplaceAll(s, ".", "_")
	return "v" + s
}

func (w *writer) inputString(m *dsketch.Avar2Mapping) string {
	parts := make([]string, len(m.Input))
	for i, d := range m.Input {
		token := formatNumber(d.Value)
		if ax := w.doc.Axis(d.Axis); ax != nil {
			token = w.userToken(ax, d.Value)
		}
		parts[i] = fmt.Sprintf("%s=%s", d.Axis, token)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func (w *writer) outputToken(d dsketch.Avar2Dim, vars varTable) string {
	if name, ok := vars.byValue[d.Value]; ok {
		return "$" + name
	}
	return formatNumber(d.Value)
}

func (w *writer) avar2Linear(vars varTable) {
	w.line(0, "avar2")
	inWidth := 0
	lefts := make([]string, len(w.doc.Avar2Maps))
	for i, m := range w.doc.Avar2Maps {
		left := w.inputString(m)
		if m.Name != "" {
			left = fmt.Sprintf("%q %s", m.Name, left)
		}
		lefts[i] = left
		if len(left) > inWidth {
			inWidth = len(left)
		}
	}
	for i, m := range w.doc.Avar2Maps {
		parts := make([]string, len(m.Output))
		for j, d := range m.Output {
			parts[j] = fmt.Sprintf("%s=%s", d.Axis, w.outputToken(d, vars))
		}
		w.line(4, "%-*s > %s", inWidth, lefts[i], strings.Join(parts, ", "))
	}
	w.blank()
}

// avar2Matrix writes the mappings as a table, output axes as columns. Cells
// without a value for their column get a dash.
func (w *writer) avar2Matrix(vars varTable) {
	var cols []string
	seen := map[string]bool{}
	for _, m := range w.doc.Avar2Maps {
		for _, d := range m.Output {
			if !seen[d.Axis] {
				seen[d.Axis] = true
				cols = append(cols, d.Axis)
			}
		}
	}
	rows := make([][]string, len(w.doc.Avar2Maps))
	inWidth := len("outputs")
	for i, m := range w.doc.Avar2Maps {
		left := w.inputString(m)
		if m.Name != "" {
			left = fmt.Sprintf("%q %s", m.Name, left)
		}
		if len(left) > inWidth {
			inWidth = len(left)
		}
		row := make([]string, len(cols))
		for j, col := range cols {
			row[j] = "-"
			for _, d := range m.Output {
				if d.Axis == col {
					row[j] = w.outputToken(d, vars)
					break
				}
			}
		}
		rows[i] = row
	}
	widths := make([]int, len(cols))
	for j, col := range cols {
		widths[j] = len(col)
		for _, row := range rows {
			if len(row[j]) > widths[j] {
				widths[j] = len(row[j])
			}
		}
	}
	w.line(0, "avar2 matrix")
	var b strings.Builder
	fmt.Fprintf(&b, "%-*s", inWidth, "outputs")
	for j, col := range cols {
		fmt.Fprintf(&b, "  %*s", widths[j], col)
	}
	w.line(4, "%s", b.String())
	for i := range rows {
		b.Reset()
		left := w.inputString(w.doc.Avar2Maps[i])
		if w.doc.Avar2Maps[i].Name != "" {
			left = fmt.Sprintf("%q %s", w.doc.Avar2Maps[i].Name, left)
		}
		fmt.Fprintf(&b, "%-*s", inWidth, left)
		for j := range cols {
			fmt.Fprintf(&b, "  %*s", widths[j], rows[i][j])
		}
		w.line(4, "%s", b.String())
	}
	w.blank()
}
