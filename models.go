package dsketch

import (
	"fmt"
	"strings"
)

// Axis is one interpolation dimension of a design space. Minimum, Default and
// Maximum are user-space values; the design-space extent of an axis is derived
// from its mappings (see DesignBounds).
type Axis struct {
	Name        string    // long name ("weight"), may equal the tag for custom axes
	Tag         string    // registered 4-letter tag ("wght") or uppercase custom tag
	DisplayName string    // optional quoted display name from the sketch file
	Minimum     float64   // user space
	Default     float64   // user space
	Maximum     float64   // user space
	Discrete    bool      // discrete 0/1 axis (italic and friends)
	Hidden      bool      // not exposed to end users, driven via avar2 only
	Mappings    []Mapping // ordered as declared
}

// Mapping is one labeled point on an axis: a user-space value, the design-space
// value it interpolates at, and a style-name fragment. Labels are unique across
// all axes of a document; the parser rejects documents violating this.
type Mapping struct {
	Label       string
	UserValue   float64
	DesignValue float64
	Elidable    bool // label is dropped from generated instance names when redundant
}

// DesignValue converts a user-space value to design space through the axis
// mappings. Values without a mapping pass through unchanged.
func (ax *Axis) DesignValue(user float64) float64 {
	for _, m := range ax.Mappings {
		if m.UserValue == user {
			return m.DesignValue
		}
	}
	return user
}

// UserValue converts a design-space value back to user space.
func (ax *Axis) UserValue(design float64) float64 {
	for _, m := range ax.Mappings {
		if m.DesignValue == design {
			return m.UserValue
		}
	}
	return design
}

// DefaultDesign is the design-space coordinate of the axis default.
func (ax *Axis) DefaultDesign() float64 {
	return ax.DesignValue(ax.Default)
}

// MappingFor returns the mapping carrying the given label.
func (ax *Axis) MappingFor(label string) (Mapping, bool) {
	for _, m := range ax.Mappings {
		if m.Label == label {
			return m, true
		}
	}
	return Mapping{}, false
}

// LabelForDesign returns the label of the mapping sitting at a design-space
// coordinate, if any.
func (ax *Axis) LabelForDesign(design float64) (string, bool) {
	for _, m := range ax.Mappings {
		if m.DesignValue == design {
			return m.Label, true
		}
	}
	return "", false
}

// DesignBounds is the derived design-space extent of the axis: the min/max over
// all mapping design values. Axes without mappings fall back to their
// user-space extent (identity mapping). Rule conditions are validated against
// these bounds, never against the user-space Minimum/Maximum.
func (ax *Axis) DesignBounds() (min float64, max float64) {
	if len(ax.Mappings) == 0 {
		return ax.Minimum, ax.Maximum
	}
	min, max = ax.Mappings[0].DesignValue, ax.Mappings[0].DesignValue
	for _, m := range ax.Mappings[1:] {
		if m.DesignValue < min {
			min = m.DesignValue
		}
		if m.DesignValue > max {
			max = m.DesignValue
		}
	}
	return min, max
}

// Matches reports whether ref names this axis, by tag or by name
// (case-insensitive for names, exact for tags).
func (ax *Axis) Matches(ref string) bool {
	return ref == ax.Tag || strings.EqualFold(ref, ax.Name) ||
		(ax.DisplayName != "" && strings.EqualFold(ref, ax.DisplayName))
}

// Source is one interpolation master backed by a font file. Location is a
// design-space coordinate vector keyed by axis tag.
type Source struct {
	Name     string
	Filename string
	Location map[string]float64
	Layer    string // named sub-layer inside the backing file, "" for default
	IsBase   bool   // exactly one source per document carries the base flag
}

// Condition is one comparison of a rule condition set, in design-space
// coordinates. A nil bound is open.
type Condition struct {
	Axis string // axis tag
	Min  *float64
	Max  *float64
}

func (c Condition) String() string {
	switch {
	case c.Min != nil && c.Max != nil && *c.Min == *c.Max:
		return fmt.Sprintf("%s == %g", c.Axis, *c.Min)
	case c.Min != nil && c.Max != nil:
		return fmt.Sprintf("%g <= %s <= %g", *c.Min, c.Axis, *c.Max)
	case c.Min != nil:
		return fmt.Sprintf("%s >= %g", c.Axis, *c.Min)
	case c.Max != nil:
		return fmt.Sprintf("%s <= %g", c.Axis, *c.Max)
	}
	return c.Axis
}

// Rule is a glyph substitution active in a region of the design space.
// Either Pattern/Target describe an unexpanded wildcard form, or
// Substitutions holds concrete (from, to) pairs; after resolution against a
// glyph set both are populated.
type Rule struct {
	Name          string
	Pattern       string // "dollar* cent*", "*", or "" when Substitutions are explicit
	Target        string // ".suffix" to append, or a full replacement name
	Substitutions [][2]string
	Conditions    []Condition // conjunction
}

// Instance is one named point of the design space, explicit or generated.
// Location is a design-space vector keyed by axis tag, visible axes only.
type Instance struct {
	FamilyName     string
	StyleName      string
	PostScriptName string
	Filename       string
	Location       map[string]float64
}

// Avar2Dim is one (axis, value) component of an avar2 mapping row.
type Avar2Dim struct {
	Axis  string // axis tag
	Value float64
}

// Avar2Mapping is one row of the non-linear axis dependency table: when the
// user-space input location is reached, the design-space output location is
// blended in. Input values are user space, output values design space.
type Avar2Mapping struct {
	Name   string
	Input  []Avar2Dim
	Output []Avar2Dim
}

// OutputValue returns the output component for an axis tag.
func (m *Avar2Mapping) OutputValue(tag string) (float64, bool) {
	for _, d := range m.Output {
		if d.Axis == tag {
			return d.Value, true
		}
	}
	return 0, false
}

// Avar2Var is a named reusable design-space scalar referenced as $name in
// avar2 outputs.
type Avar2Var struct {
	Name  string
	Value float64
}

// InstanceMode selects how the instances section of a document is populated.
type InstanceMode int

const (
	InstancesExplicit InstanceMode = iota // instances listed in the document
	InstancesAuto                         // generated combinatorially
	InstancesOff                          // no instances wanted
)

func (m InstanceMode) String() string {
	switch m {
	case InstancesExplicit:
		return "explicit"
	case InstancesAuto:
		return "auto"
	case InstancesOff:
		return "off"
	}
	return "unknown"
}

// Document is the aggregate root of a parsed design-space sketch. It is built
// once by a parser, then only read.
type Document struct {
	Family       string // may be empty; resolvable from the base source's metadata
	Suffix       string
	Path         string // common directory prefix for source filenames
	Axes         []*Axis
	HiddenAxes   []*Axis
	AxisOrder    []string // tags; explicit from a `sources [a, b]` header, else declared order
	Sources      []*Source
	Rules        []*Rule
	InstanceMode InstanceMode
	SkipList     []string // final style names to skip during generation
	Instances    []*Instance
	Avar2Vars    []Avar2Var
	Avar2Maps    []*Avar2Mapping
}

// Axis finds an axis by tag or name among visible and hidden axes.
func (doc *Document) Axis(ref string) *Axis {
	for _, ax := range doc.Axes {
		if ax.Matches(ref) {
			return ax
		}
	}
	for _, ax := range doc.HiddenAxes {
		if ax.Matches(ref) {
			return ax
		}
	}
	return nil
}

// AllAxes returns visible axes followed by hidden ones.
func (doc *Document) AllAxes() []*Axis {
	all := make([]*Axis, 0, len(doc.Axes)+len(doc.HiddenAxes))
	all = append(all, doc.Axes...)
	all = append(all, doc.HiddenAxes...)
	return all
}

// BaseSource returns the source flagged @base, or nil.
func (doc *Document) BaseSource() *Source {
	for _, src := range doc.Sources {
		if src.IsBase {
			return src
		}
	}
	return nil
}

// DefaultLocation is the design-space location of the document default: every
// axis at its default, mapped through the axis mappings.
func (doc *Document) DefaultLocation() map[string]float64 {
	loc := make(map[string]float64, len(doc.Axes)+len(doc.HiddenAxes))
	for _, ax := range doc.AllAxes() {
		loc[ax.Tag] = ax.DefaultDesign()
	}
	return loc
}

// Avar2Var looks up a variable by name.
func (doc *Document) Avar2Var(name string) (float64, bool) {
	for _, v := range doc.Avar2Vars {
		if v.Name == name {
			return v.Value, true
		}
	}
	return 0, false
}

// OrderedAxes returns the visible axes in instance-generation order: the
// explicit source axis order when one was declared, otherwise declaration
// order. Hidden axes never participate.
func (doc *Document) OrderedAxes() []*Axis {
	if len(doc.AxisOrder) == 0 {
		return doc.Axes
	}
	ordered := make([]*Axis, 0, len(doc.Axes))
	for _, tag := range doc.AxisOrder {
		for _, ax := range doc.Axes {
			if ax.Matches(tag) {
				ordered = append(ordered, ax)
				break
			}
		}
	}
	// axes missing from the explicit order keep their declared position at the end
	for _, ax := range doc.Axes {
		found := false
		for _, o := range ordered {
			if o == ax {
				found = true
				break
			}
		}
		if !found {
			ordered = append(ordered, ax)
		}
	}
	return ordered
}

// OrderedAllAxes returns the visible axes in generation order followed by the
// hidden axes. Source locations are keyed in this order.
func (doc *Document) OrderedAllAxes() []*Axis {
	ordered := doc.OrderedAxes()
	all := make([]*Axis, 0, len(ordered)+len(doc.HiddenAxes))
	all = append(all, ordered...)
	return append(all, doc.HiddenAxes...)
}

// InferHiddenAxes classifies axes by their avar2 membership: an axis appearing
// only in avar2 outputs is hidden, everything else is visible. Axes explicitly
// flagged hidden stay hidden. The document's axis lists are rearranged
// accordingly, preserving relative order.
func (doc *Document) InferHiddenAxes() {
	if len(doc.Avar2Maps) == 0 {
		return
	}
	inputs := make(map[string]bool)
	outputs := make(map[string]bool)
	for _, m := range doc.Avar2Maps {
		for _, d := range m.Input {
			inputs[d.Axis] = true
		}
		for _, d := range m.Output {
			outputs[d.Axis] = true
		}
	}
	var visible, hidden []*Axis
	for _, ax := range doc.AllAxes() {
		outputOnly := outputs[ax.Tag] && !inputs[ax.Tag]
		ax.Hidden = ax.Hidden || outputOnly
		if ax.Hidden {
			hidden = append(hidden, ax)
		} else {
			visible = append(visible, ax)
		}
	}
	doc.Axes, doc.HiddenAxes = visible, hidden
}
