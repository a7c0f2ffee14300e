package dss

import (
	"math"
	"os"
	"path"
	"regexp"
	"strconv"
	"strings"

	"github.com/npillmayer/dsketch"
	"github.com/npillmayer/dsketch/rules"
)

// section is the parser's current block context.
type section int

const (
	secNone section = iota
	secAxes
	secAxesHidden
	secSources
	secRules
	secInstances
	secAvar2
	secAvar2Vars
	secAvar2Matrix
)

// sectionKeywords is the candidate set for top-level typo correction.
var sectionKeywords = []string{
	"family", "suffix", "path", "axes", "sources", "rules", "instances", "avar2",
}

// registeredTags maps the registered axis tags to their long names.
var registeredTags = map[string]string{
	"ital": "italic",
	"opsz": "optical",
	"slnt": "slant",
	"wdth": "width",
	"wght": "weight",
}

// nameToTag is the reverse direction, for axis lines giving only a long name.
var nameToTag = map[string]string{
	"italic":  "ital",
	"optical": "opsz",
	"slant":   "slnt",
	"weight":  "wght",
	"width":   "wdth",
}

type parser struct {
	mode    Mode
	doc     *dsketch.Document
	diag    *dsketch.Diagnostics
	sec     section
	curAxis *dsketch.Axis
	labels  map[string]string // mapping label -> axis tag, for cross-axis uniqueness
	sawAxes bool
	sawSrcs bool

	matrixCols []string // avar2 matrix column tags, nil until the header row
}

// Parse builds a Document from sketch text. In StrictMode the first
// diagnostic of any severity halts processing and a nil document is returned;
// in LenientMode the entire text is processed and the best-effort document is
// returned together with all diagnostics (structural and semantic findings
// still make Diagnostics.Err non-nil).
func Parse(text string, mode Mode) (*dsketch.Document, *dsketch.Diagnostics) {
	var policy dsketch.Policy
	if mode == StrictMode {
		policy = dsketch.Strict
	} else {
		policy = dsketch.Lenient
	}
	p := &parser{
		mode:   mode,
		doc:    &dsketch.Document{},
		diag:   dsketch.NewDiagnostics(policy),
		labels: make(map[string]string),
	}
	for _, ln := range scan(text) {
		p.parseLine(ln)
		if p.mode == StrictMode && p.diag.Aborted() {
			return nil, p.diag
		}
	}
	p.finalize()
	if p.mode == StrictMode && p.diag.Aborted() {
		return nil, p.diag
	}
	return p.doc, p.diag
}

// ParseFile reads and parses a sketch file.
func ParseFile(filename string, mode Mode) (*dsketch.Document, *dsketch.Diagnostics, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, nil, err
	}
	doc, diag := Parse(string(data), mode)
	return doc, diag, nil
}

func (p *parser) parseLine(ln line) {
	if ln.indent == 0 {
		p.parseTopLevel(ln)
		return
	}
	switch p.sec {
	case secAxes, secAxesHidden:
		p.parseAxisOrMapping(ln)
	case secSources:
		p.parseSource(ln)
	case secRules:
		p.parseRule(ln)
	case secInstances:
		p.parseInstanceLine(ln)
	case secAvar2:
		p.parseAvar2Linear(ln)
	case secAvar2Vars:
		p.parseAvar2Var(ln)
	case secAvar2Matrix:
		p.parseAvar2Matrix(ln)
	default:
		p.diag.Add(dsketch.SeverityAdvisory, ln.no, "content line outside any section: %q", ln.text)
	}
}

func (p *parser) parseTopLevel(ln line) {
	fields := ln.fields()
	keyword := fields[0]
	switch keyword {
	case "family":
		p.doc.Family = unquote(strings.TrimSpace(strings.TrimPrefix(ln.text, "family")))
		if p.doc.Family == "" {
			p.diag.Add(dsketch.SeverityAdvisory, ln.no, "empty value for keyword %q", keyword)
		}
	case "suffix":
		p.doc.Suffix = strings.TrimSpace(strings.TrimPrefix(ln.text, "suffix"))
		if p.doc.Suffix == "" {
			p.diag.Add(dsketch.SeverityAdvisory, ln.no, "empty value for keyword %q", keyword)
		}
	case "path":
		p.doc.Path = strings.TrimSpace(strings.TrimPrefix(ln.text, "path"))
		if p.doc.Path == "" {
			p.diag.Add(dsketch.SeverityAdvisory, ln.no, "empty value for keyword %q", keyword)
		}
	case "axes":
		p.sawAxes = true
		p.curAxis = nil
		if len(fields) > 1 && fields[1] == "hidden" {
			p.sec = secAxesHidden
		} else {
			p.sec = secAxes
		}
	case "sources", "masters":
		p.sawSrcs = true
		p.sec = secSources
		if i := strings.IndexByte(ln.text, '['); i >= 0 {
			j := strings.IndexByte(ln.text, ']')
			if j < i {
				p.diag.Add(dsketch.SeverityAdvisory, ln.no, "malformed axis order header: %q", ln.text)
				return
			}
			for _, ref := range strings.Split(ln.text[i+1:j], ",") {
				ref = strings.TrimSpace(ref)
				if ref == "" {
					continue
				}
				if ax := p.doc.Axis(ref); ax != nil {
					p.doc.AxisOrder = append(p.doc.AxisOrder, ax.Tag)
				} else {
					p.diag.Add(dsketch.SeveritySemantic, ln.no, "axis order references undeclared axis %q", ref)
				}
			}
		}
	case "rules":
		p.sec = secRules
	case "instances":
		p.sec = secInstances
		switch {
		case len(fields) > 1 && fields[1] == "auto":
			p.doc.InstanceMode = dsketch.InstancesAuto
		case len(fields) > 1 && fields[1] == "off":
			p.doc.InstanceMode = dsketch.InstancesOff
		default:
			p.doc.InstanceMode = dsketch.InstancesExplicit
		}
	case "avar2":
		switch {
		case len(fields) > 1 && fields[1] == "vars":
			p.sec = secAvar2Vars
		case len(fields) > 1 && fields[1] == "matrix":
			p.sec = secAvar2Matrix
			p.matrixCols = nil
		default:
			p.sec = secAvar2
		}
	default:
		p.unknownKeyword(ln, keyword)
	}
}

func (p *parser) unknownKeyword(ln line, keyword string) {
	if corr, ok := dsketch.Suggest(strings.ToLower(keyword), sectionKeywords); ok {
		p.diag.AddSuggest(dsketch.SeverityAdvisory, ln.no, corr, "unknown keyword %q", keyword)
		return
	}
	if !isIdentifier(keyword) {
		p.diag.Add(dsketch.SeverityStructural, ln.no, "non-identifier keyword %q", keyword)
		return
	}
	p.diag.Add(dsketch.SeverityAdvisory, ln.no, "unknown keyword %q ignored", keyword)
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', c == '_':
		case '0' <= c && c <= '9', c == '-':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}

// ---------------------------------------------------------------------------
// axes section

// parseAxisOrMapping decides between an axis definition and a mapping line.
// Mapping lines carry '>' (or are a bare discrete label); everything else is
// expected to be an axis definition.
func (p *parser) parseAxisOrMapping(ln line) {
	if strings.Contains(ln.text, ">") {
		p.parseMapping(ln)
		return
	}
	display, rest, _ := takeQuoted(ln.text)
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		p.diag.Add(dsketch.SeverityAdvisory, ln.no, "empty axis line")
		return
	}
	if len(fields) == 1 && p.curAxis != nil && !looksLikeRange(fields[0]) {
		// bare label on a discrete axis
		p.parseMapping(ln)
		return
	}
	if len(fields) == 2 && p.curAxis != nil && p.curAxis.Discrete &&
		strings.HasPrefix(fields[1], "@") {
		p.parseMapping(ln)
		return
	}
	p.parseAxisDef(ln, fields, display)
}

func looksLikeRange(tok string) bool {
	return strings.ContainsAny(tok, ":") || tok == "discrete" || tok == "binary" ||
		isNumeric(tok)
}

func isNumeric(tok string) bool {
	_, err := strconv.ParseFloat(tok, 64)
	return err == nil
}

func (p *parser) parseAxisDef(ln line, fields []string, display string) {
	var name, tag, rangeTok string
	switch {
	case len(fields) >= 3 && isTagToken(fields[1]):
		// full form: name tag range
		name, tag, rangeTok = fields[0], fields[1], fields[2]
	case isTagToken(fields[0]):
		// shortened form: tag [range]
		tag = fields[0]
		if long, ok := registeredTags[tag]; ok {
			name = long
		} else {
			name = strings.ToUpper(tag)
		}
		if len(fields) > 1 {
			rangeTok = fields[1]
		}
	default:
		// legacy form: name [range], tag inferred
		name = fields[0]
		if t, ok := nameToTag[strings.ToLower(name)]; ok {
			tag = t
		} else {
			tag = inferCustomTag(name)
		}
		if len(fields) > 1 {
			rangeTok = fields[1]
		}
		p.suggestAxisTypo(ln, fields[0])
	}

	ax := &dsketch.Axis{Name: name, Tag: tag, DisplayName: display, Hidden: p.sec == secAxesHidden}
	if ax.DisplayName != "" && strings.EqualFold(ax.DisplayName, ax.Name) {
		ax.DisplayName = "" // redundant, keep the document normal form small
	}
	p.parseAxisRange(ln, ax, rangeTok)

	if p.sec == secAxesHidden {
		p.doc.HiddenAxes = append(p.doc.HiddenAxes, ax)
	} else {
		p.doc.Axes = append(p.doc.Axes, ax)
	}
	p.curAxis = ax
}

// isTagToken recognizes registered tags and custom 4-letter uppercase tags.
func isTagToken(tok string) bool {
	if _, ok := registeredTags[tok]; ok {
		return true
	}
	if len(tok) != 4 {
		return false
	}
	for i := 0; i < len(tok); i++ {
		if tok[i] < 'A' || tok[i] > 'Z' {
			return false
		}
	}
	return true
}

func inferCustomTag(name string) string {
	tag := strings.ToUpper(name)
	if len(tag) > 4 {
		tag = tag[:4]
	}
	for len(tag) < 4 {
		tag += "X"
	}
	return tag
}

// suggestAxisTypo raises an advisory when an axis token is a near miss of a
// registered tag or long name.
func (p *parser) suggestAxisTypo(ln line, tok string) {
	candidates := make([]string, 0, 2*len(registeredTags))
	for tag, long := range registeredTags {
		candidates = append(candidates, tag, long)
	}
	if corr, ok := dsketch.Suggest(strings.ToLower(tok), candidates); ok {
		p.diag.AddSuggest(dsketch.SeverityAdvisory, ln.no, corr, "unknown axis %q", tok)
	}
}

// parseAxisRange fills min/default/max from a range token. Forms:
// `100:400:900`, `100:900` (default = min), a single value, `discrete`,
// `binary`, and `0:0:1:discrete`. Parts of a triple may be standard style
// labels for weight/width axes.
func (p *parser) parseAxisRange(ln line, ax *dsketch.Axis, tok string) {
	switch tok {
	case "discrete", "binary":
		ax.Minimum, ax.Default, ax.Maximum = 0, 0, 1
		ax.Discrete = true
		return
	case "":
		return
	}
	parts := strings.Split(tok, ":")
	if last := parts[len(parts)-1]; last == "discrete" {
		ax.Discrete = true
		parts = parts[:len(parts)-1]
	}
	vals := make([]float64, 0, 3)
	for _, part := range parts {
		if part == "" {
			p.diag.Add(dsketch.SeverityAdvisory, ln.no, "empty value in axis range %q", tok)
			return
		}
		v, ok := p.resolveRangePart(ln, ax, part)
		if !ok {
			return
		}
		vals = append(vals, v)
	}
	switch len(vals) {
	case 1:
		ax.Minimum, ax.Default, ax.Maximum = vals[0], vals[0], vals[0]
	case 2:
		ax.Minimum, ax.Default, ax.Maximum = vals[0], vals[0], vals[1]
	case 3:
		ax.Minimum, ax.Default, ax.Maximum = vals[0], vals[1], vals[2]
	default:
		p.diag.Add(dsketch.SeverityAdvisory, ln.no, "axis range %q has %d parts, expected min:default:max", tok, len(vals))
		return
	}
	if !(ax.Minimum <= ax.Default && ax.Default <= ax.Maximum) {
		p.diag.Add(dsketch.SeverityAdvisory, ln.no,
			"inverted axis range: need min <= default <= max, got %g:%g:%g", ax.Minimum, ax.Default, ax.Maximum)
	}
}

func (p *parser) resolveRangePart(ln line, ax *dsketch.Axis, part string) (float64, bool) {
	ref := dsketch.ParseScalar(part)
	v, err := ref.Resolve(func(label string) (float64, bool) {
		return dsketch.StdUserValue(dsketch.VocabForAxis(ax), label)
	})
	if err != nil {
		if corr, ok := dsketch.Suggest(part, dsketch.StdLabels(dsketch.VocabForAxis(ax))); ok {
			p.diag.AddSuggest(dsketch.SeverityAdvisory, ln.no, corr, "unknown label %q in axis range", part)
		} else {
			p.diag.Add(dsketch.SeverityAdvisory, ln.no, "malformed axis range value %q", part)
		}
		return 0, false
	}
	return v, true
}

// ---------------------------------------------------------------------------
// mapping lines

func (p *parser) parseMapping(ln line) {
	if p.curAxis == nil {
		p.diag.Add(dsketch.SeverityAdvisory, ln.no, "mapping line before any axis definition: %q", ln.text)
		return
	}
	ax := p.curAxis
	text := ln.text
	elidable := strings.Contains(text, "@elidable")
	if elidable {
		text = strings.TrimSpace(strings.ReplaceAll(text, "@elidable", ""))
	}

	var m dsketch.Mapping
	m.Elidable = elidable
	if left, right, hasArrow := strings.Cut(text, ">"); hasArrow {
		design, err := strconv.ParseFloat(strings.TrimSpace(right), 64)
		if err != nil {
			p.diag.Add(dsketch.SeverityAdvisory, ln.no, "malformed design value %q", strings.TrimSpace(right))
			return
		}
		m.DesignValue = design
		fields := strings.Fields(left)
		if len(fields) == 0 {
			p.diag.Add(dsketch.SeverityAdvisory, ln.no, "mapping without label or value: %q", ln.text)
			return
		}
		if isNumeric(fields[0]) {
			// explicit numeric prefix wins over any standard table
			m.UserValue, _ = strconv.ParseFloat(fields[0], 64)
			m.Label = strings.Join(fields[1:], " ")
			if m.Label == "" {
				m.Label = p.synthesizeLabel(ax, m.UserValue)
			}
		} else {
			m.Label = strings.Join(fields, " ")
			m.UserValue = p.resolveLabelUserValue(ln, ax, m.Label, design)
		}
	} else {
		// bare label: only valid on discrete axes
		if !ax.Discrete {
			p.diag.Add(dsketch.SeverityAdvisory, ln.no,
				"bare label %q only allowed on discrete axes", text)
			return
		}
		m.Label = strings.TrimSpace(text)
		v, ok := dsketch.DiscreteValue(ax.Tag, m.Label)
		if !ok {
			if u, stdOK := dsketch.StdUserValue(dsketch.VocabForAxis(ax), m.Label); stdOK {
				v, ok = u, true
			}
		}
		if !ok {
			candidates := dsketch.DiscreteLabels(ax.Tag)
			if corr, sugOK := dsketch.Suggest(m.Label, candidates); sugOK {
				p.diag.AddSuggest(dsketch.SeveritySemantic, ln.no, corr, "unknown discrete axis label %q", m.Label)
			} else {
				p.diag.Add(dsketch.SeveritySemantic, ln.no, "unknown discrete axis label %q", m.Label)
			}
			return
		}
		m.UserValue, m.DesignValue = v, v
	}

	if m.UserValue < ax.Minimum || m.UserValue > ax.Maximum {
		p.diag.Add(dsketch.SeveritySemantic, ln.no,
			"mapping %q user value %g outside axis range [%g, %g]", m.Label, m.UserValue, ax.Minimum, ax.Maximum)
		return
	}
	if other, dup := p.labels[m.Label]; dup {
		p.diag.Add(dsketch.SeveritySemantic, ln.no,
			"duplicate label %q: already used on axis %q (labels are unique across all axes)", m.Label, other)
		return
	}
	p.labels[m.Label] = ax.Tag
	ax.Mappings = append(ax.Mappings, m)
}

// resolveLabelUserValue implements the resolution order for label-only
// mappings: known standard label first, identity with the design value as the
// fallback. A near-miss of the restricted standard vocabulary yields a typo
// advisory but the label is still accepted as custom.
func (p *parser) resolveLabelUserValue(ln line, ax *dsketch.Axis, label string, design float64) float64 {
	if u, ok := dsketch.StdUserValue(dsketch.VocabForAxis(ax), label); ok {
		return u
	}
	if v, ok := dsketch.DiscreteValue(ax.Tag, label); ok {
		return v
	}
	if corr, ok := dsketch.Suggest(label, p.candidateLabels(ax)); ok {
		p.diag.AddSuggest(dsketch.SeverityAdvisory, ln.no, corr, "unknown mapping label %q", label)
	}
	return design
}

// candidateLabels is the typo-correction vocabulary for a mapping label on a
// given axis. With both a weight-like and a width-like axis in the document,
// each is restricted to its own vocabulary; with only one of the two present,
// both vocabularies are accepted.
func (p *parser) candidateLabels(ax *dsketch.Axis) []string {
	v := dsketch.VocabForAxis(ax)
	hasWeight, hasWidth := false, false
	for _, a := range p.doc.AllAxes() {
		switch dsketch.VocabForAxis(a) {
		case dsketch.VocabWeight:
			hasWeight = true
		case dsketch.VocabWidth:
			hasWidth = true
		}
	}
	if hasWeight && hasWidth {
		return dsketch.StdLabels(v)
	}
	return append(dsketch.StdLabels(dsketch.VocabWeight), dsketch.StdLabels(dsketch.VocabWidth)...)
}

func (p *parser) synthesizeLabel(ax *dsketch.Axis, user float64) string {
	if label, ok := dsketch.StdLabel(dsketch.VocabForAxis(ax), user); ok {
		return label
	}
	return ax.Tag + formatNumber(user)
}

// ---------------------------------------------------------------------------
// sources section

func (p *parser) parseSource(ln line) {
	text := ln.text
	src := &dsketch.Source{Location: map[string]float64{}}

	if strings.Contains(text, "@base") {
		src.IsBase = true
		text = strings.TrimSpace(strings.ReplaceAll(text, "@base", ""))
	}
	if i := strings.Index(text, "@layer="); i >= 0 {
		rest := text[i+len("@layer="):]
		if strings.HasPrefix(rest, `"`) {
			layer, remainder, ok := takeQuoted(rest)
			if !ok {
				p.diag.Add(dsketch.SeverityAdvisory, ln.no, "unterminated layer name in %q", ln.text)
				return
			}
			src.Layer = layer
			text = strings.TrimSpace(text[:i] + " " + remainder)
		} else {
			layer, remainder, _ := strings.Cut(rest, " ")
			src.Layer = layer
			text = strings.TrimSpace(text[:i] + " " + remainder)
		}
	}
	if issue := bracketMismatch(text); issue != "" {
		p.diag.Add(dsketch.SeverityAdvisory, ln.no, "%s in source line %q", issue, ln.text)
	}

	switch {
	case strings.Contains(text, "["):
		p.parsePositionalSource(ln, src, text)
	case strings.Contains(text, "="):
		p.parseNamedSource(ln, src, text)
	default:
		// all axes at their defaults
		src.Name = unquote(strings.TrimSpace(text))
		p.fillDefaults(src)
	}
	if src.Name == "" {
		p.diag.Add(dsketch.SeverityAdvisory, ln.no, "source without a name: %q", ln.text)
		return
	}
	src.Name, src.Filename = splitSourceName(src.Name)
	p.doc.Sources = append(p.doc.Sources, src)
}

// splitSourceName derives the filename from a source name that may carry a
// directory prefix or an explicit .ufo/.ufoz extension.
func splitSourceName(name string) (string, string) {
	filename := name
	switch {
	case strings.HasSuffix(name, ".ufoz"), strings.HasSuffix(name, ".ufo"):
		// keep as is
	default:
		filename = name + ".ufo"
	}
	base := path.Base(filename)
	stem := strings.TrimSuffix(strings.TrimSuffix(base, ".ufoz"), ".ufo")
	return stem, filename
}

func (p *parser) positionalAxes() []*dsketch.Axis {
	if len(p.doc.AxisOrder) > 0 {
		axes := make([]*dsketch.Axis, 0, len(p.doc.AxisOrder))
		for _, tag := range p.doc.AxisOrder {
			if ax := p.doc.Axis(tag); ax != nil {
				axes = append(axes, ax)
			}
		}
		return axes
	}
	return p.doc.AllAxes()
}

func (p *parser) parsePositionalSource(ln line, src *dsketch.Source, text string) {
	i, j := strings.IndexByte(text, '['), strings.IndexByte(text, ']')
	if j < i {
		p.diag.Add(dsketch.SeverityAdvisory, ln.no, "malformed coordinates in %q", ln.text)
		return
	}
	src.Name = unquote(strings.TrimSpace(text[:i]))
	coords := strings.Split(text[i+1:j], ",")
	axes := p.positionalAxes()
	if len(coords) != len(axes) {
		p.diag.Add(dsketch.SeverityAdvisory, ln.no,
			"source %q has %d coordinates, expected %d", src.Name, len(coords), len(axes))
	}
	p.fillDefaults(src)
	for idx, ax := range axes {
		if idx < len(coords) {
			if v, ok := p.resolveCoord(ln, ax, strings.TrimSpace(coords[idx])); ok {
				src.Location[ax.Tag] = v
			}
		}
	}
}

func (p *parser) parseNamedSource(ln line, src *dsketch.Source, text string) {
	// name is everything before the first token containing '='
	fields := strings.Fields(text)
	nameEnd := len(fields)
	for idx, f := range fields {
		if strings.Contains(f, "=") {
			nameEnd = idx
			break
		}
	}
	src.Name = unquote(strings.Join(fields[:nameEnd], " "))
	pairs := strings.Split(strings.Join(fields[nameEnd:], " "), ",")
	p.fillDefaults(src)
	for _, pair := range pairs {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		ref, val, ok := strings.Cut(pair, "=")
		if !ok {
			p.diag.Add(dsketch.SeverityAdvisory, ln.no, "malformed coordinate %q", pair)
			continue
		}
		ax := p.doc.Axis(strings.TrimSpace(ref))
		if ax == nil {
			p.diag.Add(dsketch.SeveritySemantic, ln.no, "source coordinate references undeclared axis %q", ref)
			continue
		}
		if v, ok := p.resolveCoord(ln, ax, strings.TrimSpace(val)); ok {
			src.Location[ax.Tag] = v
		}
	}
}

func (p *parser) fillDefaults(src *dsketch.Source) {
	for _, ax := range p.doc.AllAxes() {
		src.Location[ax.Tag] = ax.DefaultDesign()
	}
}

// resolveCoord maps a coordinate token to a design-space value. Numeric
// tokens are design values; labels resolve through the axis mappings, the
// standard tables, or the discrete label tables.
func (p *parser) resolveCoord(ln line, ax *dsketch.Axis, tok string) (float64, bool) {
	if tok == "" {
		p.diag.Add(dsketch.SeverityAdvisory, ln.no, "empty coordinate value for axis %q", ax.Tag)
		return 0, false
	}
	if v, err := strconv.ParseFloat(tok, 64); err == nil {
		return v, true
	}
	if m, ok := ax.MappingFor(tok); ok {
		return m.DesignValue, true
	}
	if u, ok := dsketch.StdUserValue(dsketch.VocabForAxis(ax), tok); ok {
		return ax.DesignValue(u), true
	}
	if v, ok := dsketch.DiscreteValue(ax.Tag, tok); ok {
		return v, true
	}
	var candidates []string
	for _, m := range ax.Mappings {
		candidates = append(candidates, m.Label)
	}
	candidates = append(candidates, p.candidateLabels(ax)...)
	if corr, ok := dsketch.Suggest(tok, candidates); ok {
		p.diag.AddSuggest(dsketch.SeveritySemantic, ln.no, corr,
			"cannot resolve coordinate %q on axis %q", tok, ax.Tag)
	} else {
		p.diag.Add(dsketch.SeveritySemantic, ln.no,
			"cannot resolve coordinate %q on axis %q", tok, ax.Tag)
	}
	return 0, false
}

// ---------------------------------------------------------------------------
// rules section

var ruleLineRe = regexp.MustCompile(`^(.+?)\s*>\s*([^(]+?)(?:\s*\(([^)]*)\))?(?:\s*"([^"]*)")?\s*$`)

func (p *parser) parseRule(ln line) {
	if !strings.Contains(ln.text, ">") {
		p.diag.Add(dsketch.SeverityAdvisory, ln.no, "rule missing '>' separator: %q", ln.text)
		return
	}
	if issue := bracketMismatch(ln.text); issue != "" {
		p.diag.Add(dsketch.SeverityAdvisory, ln.no, "%s in rule line %q", issue, ln.text)
	}
	m := ruleLineRe.FindStringSubmatch(ln.text)
	if m == nil {
		p.diag.Add(dsketch.SeverityAdvisory, ln.no, `cannot parse rule %q, expected: pattern > target (condition) "name"`, ln.text)
		return
	}
	pattern, target, condExpr, name := strings.TrimSpace(m[1]), strings.TrimSpace(m[2]), m[3], m[4]
	if pattern == "" || target == "" {
		p.diag.Add(dsketch.SeverityAdvisory, ln.no, "rule missing pattern or target: %q", ln.text)
		return
	}
	rule := &dsketch.Rule{Name: name}
	rule.Conditions = rules.ParseConditions(condExpr, p.doc, p.diag, ln.no)
	if rules.ClassifyPattern(pattern) == rules.PatternExact {
		to := target
		if strings.HasPrefix(target, ".") {
			to = pattern + target
		}
		rule.Substitutions = [][2]string{{pattern, to}}
	} else {
		rule.Pattern, rule.Target = pattern, target
	}
	p.doc.Rules = append(p.doc.Rules, rule)
}

// ---------------------------------------------------------------------------
// instances section

func (p *parser) parseInstanceLine(ln line) {
	if p.doc.InstanceMode == dsketch.InstancesAuto {
		entry := strings.TrimSpace(strings.TrimPrefix(ln.text, "skip "))
		if entry == "" {
			p.diag.Add(dsketch.SeverityAdvisory, ln.no, "empty skip entry")
			return
		}
		p.doc.SkipList = append(p.doc.SkipList, entry)
		return
	}
	if p.doc.InstanceMode == dsketch.InstancesOff {
		p.diag.Add(dsketch.SeverityAdvisory, ln.no, "instance line under 'instances off': %q", ln.text)
		return
	}
	i, j := strings.IndexByte(ln.text, '['), strings.IndexByte(ln.text, ']')
	if i < 0 || j < i {
		p.diag.Add(dsketch.SeverityAdvisory, ln.no, "malformed instance line %q", ln.text)
		return
	}
	inst := &dsketch.Instance{
		StyleName: unquote(strings.TrimSpace(ln.text[:i])),
		Location:  map[string]float64{},
	}
	for _, ax := range p.doc.Axes {
		inst.Location[ax.Tag] = ax.DefaultDesign()
	}
	axes := p.positionalAxes()
	coords := strings.Split(ln.text[i+1:j], ",")
	for idx, ax := range axes {
		if ax.Hidden || idx >= len(coords) {
			continue
		}
		if v, ok := p.resolveCoord(ln, ax, strings.TrimSpace(coords[idx])); ok {
			inst.Location[ax.Tag] = v
		}
	}
	p.doc.Instances = append(p.doc.Instances, inst)
}

// ---------------------------------------------------------------------------
// finalization

const coordEps = 0.01 // tolerance when comparing design coordinates

func (p *parser) finalize() {
	if !p.sawAxes || len(p.doc.AllAxes()) == 0 {
		p.diag.Add(dsketch.SeverityStructural, 0, "missing axes section")
	}
	if !p.sawSrcs || len(p.doc.Sources) == 0 {
		p.diag.Add(dsketch.SeverityStructural, 0, "missing sources section")
	}
	if p.diag.Aborted() && p.mode == StrictMode {
		return
	}
	p.doc.InferHiddenAxes()
	p.checkBaseSource()
	p.checkSourceConsistency()
	p.checkElidables()
}

// checkBaseSource enforces the exactly-one-base invariant, auto-detecting the
// source sitting at the default location when no @base flag is present.
func (p *parser) checkBaseSource() {
	var bases []*dsketch.Source
	for _, src := range p.doc.Sources {
		if src.IsBase {
			bases = append(bases, src)
		}
	}
	switch len(bases) {
	case 1:
		return
	case 0:
		want := p.doc.DefaultLocation()
		for _, src := range p.doc.Sources {
			if locationsMatch(src.Location, want) {
				src.IsBase = true
				p.diag.Add(dsketch.SeverityAdvisory, 0,
					"auto-detected base source %q (matches default coordinates)", src.Name)
				return
			}
		}
		if len(p.doc.Sources) > 0 {
			p.diag.Add(dsketch.SeverityStructural, 0,
				"no base source: no @base flag and no source matches the default coordinates")
		}
	default:
		names := make([]string, len(bases))
		for i, src := range bases {
			names[i] = src.Name
		}
		p.diag.Add(dsketch.SeverityStructural, 0,
			"multiple base sources (%s), only one @base allowed", strings.Join(names, ", "))
	}
}

func locationsMatch(a, b map[string]float64) bool {
	if len(a) != len(b) {
		return false
	}
	for tag, av := range a {
		bv, ok := b[tag]
		if !ok || math.Abs(av-bv) > coordEps {
			return false
		}
	}
	return true
}

// checkSourceConsistency raises advisories when source coordinates do not sit
// on any mapping of their axis, and when an axis's extreme design values are
// not covered by a source.
func (p *parser) checkSourceConsistency() {
	for _, src := range p.doc.Sources {
		for _, ax := range p.doc.AllAxes() {
			if len(ax.Mappings) == 0 {
				continue
			}
			coord, ok := src.Location[ax.Tag]
			if !ok {
				continue
			}
			if _, ok := ax.LabelForDesign(coord); ok {
				continue
			}
			closest := ax.Mappings[0]
			for _, m := range ax.Mappings[1:] {
				if math.Abs(m.DesignValue-coord) < math.Abs(closest.DesignValue-coord) {
					closest = m
				}
			}
			p.diag.Add(dsketch.SeverityAdvisory, 0,
				"source %q coordinate %g on axis %q matches no mapping, closest is %q at %g",
				src.Name, coord, ax.Tag, closest.Label, closest.DesignValue)
		}
	}
	for _, ax := range p.doc.AllAxes() {
		if len(ax.Mappings) == 0 {
			continue
		}
		lo, hi := ax.DesignBounds()
		p.checkExtreme(ax, lo, "minimum")
		if hi != lo {
			p.checkExtreme(ax, hi, "maximum")
		}
	}
}

func (p *parser) checkExtreme(ax *dsketch.Axis, design float64, which string) {
	for _, src := range p.doc.Sources {
		if coord, ok := src.Location[ax.Tag]; ok && math.Abs(coord-design) <= coordEps {
			return
		}
	}
	label, _ := ax.LabelForDesign(design)
	p.diag.Add(dsketch.SeverityAdvisory, 0,
		"no source at the %s mapping %q (%g) of axis %q; interpolation needs sources at the extremes",
		which, label, design, ax.Tag)
}

func (p *parser) checkElidables() {
	for _, ax := range p.doc.Axes {
		if len(ax.Mappings) == 0 {
			continue
		}
		elidable := false
		for _, m := range ax.Mappings {
			if m.Elidable {
				elidable = true
				break
			}
		}
		if !elidable {
			p.diag.Add(dsketch.SeverityAdvisory, 0,
				"axis %q has no @elidable mapping; generated instance names will always carry a %s label",
				ax.Tag, ax.Name)
		}
	}
}
