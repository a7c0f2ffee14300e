package designspace

import (
	"encoding/xml"
	"os"
	"path"

	"github.com/npillmayer/dsketch"
)

// Encode serializes a document as designspace XML. Wildcard rules must have
// been resolved into concrete substitutions beforehand (see package rules);
// unresolved rules are dropped with a trace warning, since the designspace
// format has no pattern notation.
func Encode(doc *dsketch.Document) ([]byte, error) {
	ds := &xsDesignspace{Format: Format}
	for _, ax := range doc.OrderedAllAxes() {
		ds.Axes.Axes = append(ds.Axes.Axes, encodeAxis(ax))
	}
	ds.Axes.Mappings = encodeMappings(doc)
	ds.Rules = encodeRules(doc)
	for _, src := range doc.Sources {
		ds.Sources.Sources = append(ds.Sources.Sources, encodeSource(doc, src))
	}
	if len(doc.Instances) > 0 {
		insts := &xsInstances{}
		for _, inst := range doc.Instances {
			insts.Instances = append(insts.Instances, encodeInstance(doc, inst))
		}
		ds.Instances = insts
	}
	data, err := xml.MarshalIndent(ds, "", "  ")
	if err != nil {
		return nil, err
	}
	out := append([]byte(xml.Header), data...)
	return append(out, '\n'), nil
}

// EncodeFile writes a document as a designspace file.
func EncodeFile(filename string, doc *dsketch.Document) error {
	data, err := Encode(doc)
	if err != nil {
		return err
	}
	return os.WriteFile(filename, data, 0644)
}

func encodeAxis(ax *dsketch.Axis) xsAxis {
	x := xsAxis{
		Name:    ax.Name,
		Tag:     ax.Tag,
		Default: ax.Default,
	}
	if ax.Discrete {
		x.Values = discreteValues(ax)
	} else {
		min, max := ax.Minimum, ax.Maximum
		x.Minimum, x.Maximum = &min, &max
	}
	if ax.Hidden {
		x.Hidden = "1"
	}
	if ax.DisplayName != "" {
		x.LabelName = []xsLabelName{{Lang: "en", Name: ax.DisplayName}}
	}
	nontrivial := false
	for _, m := range ax.Mappings {
		if m.UserValue != m.DesignValue {
			nontrivial = true
			break
		}
	}
	if nontrivial {
		for _, m := range ax.Mappings {
			x.Maps = append(x.Maps, xsMap{Input: m.UserValue, Output: m.DesignValue})
		}
	}
	if len(ax.Mappings) > 0 {
		labels := &xsLabels{}
		for _, m := range ax.Mappings {
			l := xsLabel{UserValue: m.UserValue, Name: m.Label}
			if m.Elidable {
				l.Elidable = "true"
			}
			labels.Labels = append(labels.Labels, l)
		}
		x.Labels = labels
	}
	return x
}

// discreteValues lists a discrete axis's valid stops, mapping user values if
// declared, the 0/1 pair otherwise.
func discreteValues(ax *dsketch.Axis) string {
	if len(ax.Mappings) == 0 {
		return formatFloat(ax.Minimum) + " " + formatFloat(ax.Maximum)
	}
	var s string
	seen := map[float64]bool{}
	for _, m := range ax.Mappings {
		if seen[m.UserValue] {
			continue
		}
		seen[m.UserValue] = true
		if s != "" {
			s += " "
		}
		s += formatFloat(m.UserValue)
	}
	return s
}

func encodeMappings(doc *dsketch.Document) *xsMappings {
	if len(doc.Avar2Maps) == 0 {
		return nil
	}
	ms := &xsMappings{}
	for _, m := range doc.Avar2Maps {
		x := xsMapping{Description: m.Name}
		for _, d := range m.Input {
			x.Input.Dimensions = append(x.Input.Dimensions, dimension(doc, d.Axis, d.Value))
		}
		for _, d := range m.Output {
			x.Output.Dimensions = append(x.Output.Dimensions, dimension(doc, d.Axis, d.Value))
		}
		ms.Mappings = append(ms.Mappings, x)
	}
	return ms
}

func encodeRules(doc *dsketch.Document) *xsRules {
	if len(doc.Rules) == 0 {
		return nil
	}
	rs := &xsRules{}
	for i, rule := range doc.Rules {
		if len(rule.Substitutions) == 0 {
			tracer().Infof("rule %q has no resolved substitutions, dropped from designspace output",
				ruleName(rule, i))
			continue
		}
		x := xsRule{Name: ruleName(rule, i)}
		if len(rule.Conditions) > 0 {
			set := xsConditionSet{}
			for _, c := range rule.Conditions {
				cond := xsCondition{Name: axisName(doc, c.Axis)}
				cond.Minimum, cond.Maximum = c.Min, c.Max
				set.Conditions = append(set.Conditions, cond)
			}
			x.ConditionSets = []xsConditionSet{set}
		}
		for _, sub := range rule.Substitutions {
			x.Subs = append(x.Subs, xsSub{Name: sub[0], With: sub[1]})
		}
		rs.Rules = append(rs.Rules, x)
	}
	if len(rs.Rules) == 0 {
		return nil
	}
	return rs
}

func ruleName(rule *dsketch.Rule, index int) string {
	if rule.Name != "" {
		return rule.Name
	}
	return "rule" + formatFloat(float64(index+1))
}

func encodeSource(doc *dsketch.Document, src *dsketch.Source) xsSource {
	x := xsSource{
		Filename:   path.Join(doc.Path, src.Filename),
		Name:       src.Name,
		FamilyName: doc.Family,
		Layer:      src.Layer,
	}
	for _, ax := range doc.OrderedAllAxes() {
		if coord, ok := src.Location[ax.Tag]; ok {
			x.Location.Dimensions = append(x.Location.Dimensions, xsDimension{Name: ax.Name, XValue: coord})
		}
	}
	if src.IsBase {
		x.Info = &xsCopy{Copy: "1"}
		x.Lib = &xsCopy{Copy: "1"}
	}
	return x
}

func encodeInstance(doc *dsketch.Document, inst *dsketch.Instance) xsInstance {
	x := xsInstance{
		Name:           inst.FamilyName + " " + inst.StyleName,
		FamilyName:     inst.FamilyName,
		StyleName:      inst.StyleName,
		PostScriptName: inst.PostScriptName,
		Filename:       inst.Filename,
	}
	for _, ax := range doc.OrderedAxes() {
		if coord, ok := inst.Location[ax.Tag]; ok {
			x.Location.Dimensions = append(x.Location.Dimensions, xsDimension{Name: ax.Name, XValue: coord})
		}
	}
	return x
}

// dimension builds a location component, addressing the axis by long name.
func dimension(doc *dsketch.Document, tag string, value float64) xsDimension {
	return xsDimension{Name: axisName(doc, tag), XValue: value}
}

func axisName(doc *dsketch.Document, tag string) string {
	if ax := doc.Axis(tag); ax != nil {
		return ax.Name
	}
	return tag
}
