package designspace

import (
	"encoding/xml"
	"os"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/npillmayer/dsketch"
)

// Decode parses designspace XML into a document. Filenames sharing a common
// directory are factored into the document's path prefix, and sources whose
// info is flagged for copying become the base source.
func Decode(data []byte) (*dsketch.Document, error) {
	var ds xsDesignspace
	if err := xml.Unmarshal(data, &ds); err != nil {
		return nil, err
	}
	doc := &dsketch.Document{}
	names := map[string]string{} // axis long name -> tag
	for _, x := range ds.Axes.Axes {
		ax := decodeAxis(x)
		names[ax.Name] = ax.Tag
		if ax.Hidden {
			doc.HiddenAxes = append(doc.HiddenAxes, ax)
		} else {
			doc.Axes = append(doc.Axes, ax)
		}
	}
	decodeMappings(doc, ds.Axes.Mappings, names)
	decodeRules(doc, ds.Rules, names)
	decodeSources(doc, ds.Sources.Sources, names)
	if ds.Instances != nil && len(ds.Instances.Instances) > 0 {
		doc.InstanceMode = dsketch.InstancesExplicit
		for _, x := range ds.Instances.Instances {
			doc.Instances = append(doc.Instances, decodeInstance(doc, x, names))
		}
	} else {
		doc.InstanceMode = dsketch.InstancesOff
	}
	factorPath(doc)
	tracer().Debugf("decoded designspace: %d axes, %d sources, %d instances",
		len(doc.AllAxes()), len(doc.Sources), len(doc.Instances))
	return doc, nil
}

// DecodeFile reads and parses a designspace file.
func DecodeFile(filename string) (*dsketch.Document, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

func decodeAxis(x xsAxis) *dsketch.Axis {
	ax := &dsketch.Axis{
		Name:    x.Name,
		Tag:     x.Tag,
		Default: x.Default,
		Hidden:  isTrue(x.Hidden),
	}
	if x.Values != "" {
		ax.Discrete = true
		var values []float64
		for _, tok := range strings.Fields(x.Values) {
			if v, err := strconv.ParseFloat(tok, 64); err == nil {
				values = append(values, v)
			}
		}
		if len(values) > 0 {
			sort.Float64s(values)
			ax.Minimum, ax.Maximum = values[0], values[len(values)-1]
		}
	} else {
		if x.Minimum != nil {
			ax.Minimum = *x.Minimum
		}
		if x.Maximum != nil {
			ax.Maximum = *x.Maximum
		}
	}
	for _, ln := range x.LabelName {
		if ln.Lang == "en" || ax.DisplayName == "" {
			ax.DisplayName = strings.TrimSpace(ln.Name)
		}
	}
	maps := append([]xsMap(nil), x.Maps...)
	sort.Slice(maps, func(i, j int) bool { return maps[i].Input < maps[j].Input })

	covered := map[float64]bool{}
	if x.Labels != nil {
		for _, l := range x.Labels.Labels {
			ax.Mappings = append(ax.Mappings, dsketch.Mapping{
				Label:       l.Name,
				UserValue:   l.UserValue,
				DesignValue: interpolate(maps, l.UserValue),
				Elidable:    isTrue(l.Elidable),
			})
			covered[l.UserValue] = true
		}
	}
	// map breakpoints without a label still matter for the design-space
	// geometry, keep them as unnamed numeric mappings
	for _, m := range maps {
		if covered[m.Input] {
			continue
		}
		ax.Mappings = append(ax.Mappings, dsketch.Mapping{
			Label:       ax.Tag + formatFloat(m.Input),
			UserValue:   m.Input,
			DesignValue: m.Output,
		})
	}
	sort.SliceStable(ax.Mappings, func(i, j int) bool {
		return ax.Mappings[i].UserValue < ax.Mappings[j].UserValue
	})
	return ax
}

// interpolate maps a user value through the axis map breakpoints, piecewise
// linear with clamping at both ends, the way avar consumes them.
func interpolate(maps []xsMap, user float64) float64 {
	if len(maps) == 0 {
		return user
	}
	if user <= maps[0].Input {
		return maps[0].Output
	}
	for i := 1; i < len(maps); i++ {
		lo, hi := maps[i-1], maps[i]
		if user > hi.Input {
			continue
		}
		if hi.Input == lo.Input {
			return hi.Output
		}
		t := (user - lo.Input) / (hi.Input - lo.Input)
		return lo.Output + t*(hi.Output-lo.Output)
	}
	return maps[len(maps)-1].Output
}

func decodeMappings(doc *dsketch.Document, ms *xsMappings, names map[string]string) {
	if ms == nil {
		return
	}
	for _, x := range ms.Mappings {
		m := &dsketch.Avar2Mapping{Name: x.Description}
		for _, d := range x.Input.Dimensions {
			m.Input = append(m.Input, dsketch.Avar2Dim{Axis: tagFor(names, d.Name), Value: d.XValue})
		}
		for _, d := range x.Output.Dimensions {
			m.Output = append(m.Output, dsketch.Avar2Dim{Axis: tagFor(names, d.Name), Value: d.XValue})
		}
		doc.Avar2Maps = append(doc.Avar2Maps, m)
	}
}

func decodeRules(doc *dsketch.Document, rs *xsRules, names map[string]string) {
	if rs == nil {
		return
	}
	for _, x := range rs.Rules {
		rule := &dsketch.Rule{Name: x.Name}
		for _, set := range x.ConditionSets {
			for _, c := range set.Conditions {
				rule.Conditions = append(rule.Conditions, dsketch.Condition{
					Axis: tagFor(names, c.Name),
					Min:  c.Minimum,
					Max:  c.Maximum,
				})
			}
		}
		for _, sub := range x.Subs {
			rule.Substitutions = append(rule.Substitutions, [2]string{sub.Name, sub.With})
		}
		doc.Rules = append(doc.Rules, rule)
	}
}

func decodeSources(doc *dsketch.Document, xs []xsSource, names map[string]string) {
	for _, x := range xs {
		src := &dsketch.Source{
			Filename: x.Filename,
			Name:     x.Name,
			Layer:    x.Layer,
			Location: decodeLocation(x.Location, names),
			IsBase:   (x.Info != nil && isTrue(x.Info.Copy)) || (x.Lib != nil && isTrue(x.Lib.Copy)),
		}
		if src.Name == "" {
			base := path.Base(x.Filename)
			src.Name = strings.TrimSuffix(strings.TrimSuffix(base, ".ufoz"), ".ufo")
		}
		if doc.Family == "" && x.FamilyName != "" {
			doc.Family = x.FamilyName
		}
		doc.Sources = append(doc.Sources, src)
	}
}

func decodeInstance(doc *dsketch.Document, x xsInstance, names map[string]string) *dsketch.Instance {
	inst := &dsketch.Instance{
		FamilyName:     x.FamilyName,
		StyleName:      x.StyleName,
		PostScriptName: x.PostScriptName,
		Filename:       x.Filename,
		Location:       decodeLocation(x.Location, names),
	}
	// hidden axes never appear in instance locations
	for _, ax := range doc.HiddenAxes {
		delete(inst.Location, ax.Tag)
	}
	return inst
}

func decodeLocation(loc xsLocation, names map[string]string) map[string]float64 {
	m := make(map[string]float64, len(loc.Dimensions))
	for _, d := range loc.Dimensions {
		m[tagFor(names, d.Name)] = d.XValue
	}
	return m
}

// factorPath hoists the directory all source filenames share into the
// document path, so regenerated sketch files stay short.
func factorPath(doc *dsketch.Document) {
	if len(doc.Sources) == 0 {
		return
	}
	dir := path.Dir(doc.Sources[0].Filename)
	for _, src := range doc.Sources[1:] {
		if path.Dir(src.Filename) != dir {
			return
		}
	}
	if dir == "." || dir == "/" {
		return
	}
	doc.Path = dir
	for _, src := range doc.Sources {
		src.Filename = path.Base(src.Filename)
	}
}

func tagFor(names map[string]string, name string) string {
	if tag, ok := names[name]; ok {
		return tag
	}
	return name
}

func isTrue(attr string) bool {
	switch strings.ToLower(attr) {
	case "1", "true", "yes":
		return true
	}
	return false
}

func formatFloat(v float64) string {
	return strings.TrimSuffix(strconv.FormatFloat(v, 'f', -1, 64), ".0")
}
