package dss

import (
	"strconv"
	"strings"

	"github.com/npillmayer/dsketch"
)

// The avar2 sections describe the non-linear axis dependency table. Two
// notations exist for the same data. The linear layout lists one mapping per
// line,
//
//	["Black"] [wght=Black] > XOPQ=260, YOPQ=50
//
// while the matrix layout crosses input points with output axes,
//
//	avar2 matrix
//	    outputs            XOPQ  YOPQ  XTRA
//	    [wght=Thin]          27    25   295
//	    [wght=Black]        $xb     -   220
//
// Variables declared under `avar2 vars` may replace any output value.

// parseAvar2Var handles `$name = value` lines.
func (p *parser) parseAvar2Var(ln line) {
	name, value, ok := strings.Cut(ln.text, "=")
	name = strings.TrimSpace(name)
	if !ok || !strings.HasPrefix(name, "$") {
		p.diag.Add(dsketch.SeverityAdvisory, ln.no, "cannot parse variable definition %q, expected $name = value", ln.text)
		return
	}
	name = strings.TrimPrefix(name, "$")
	if !isIdentifier(name) {
		p.diag.Add(dsketch.SeverityStructural, ln.no, "non-identifier variable name %q", name)
		return
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		p.diag.Add(dsketch.SeverityAdvisory, ln.no, "malformed variable value %q", strings.TrimSpace(value))
		return
	}
	if _, dup := p.doc.Avar2Var(name); dup {
		p.diag.Add(dsketch.SeveritySemantic, ln.no, "variable $%s defined twice", name)
		return
	}
	p.doc.Avar2Vars = append(p.doc.Avar2Vars, dsketch.Avar2Var{Name: name, Value: v})
}

// parseAvar2Linear handles one mapping row of the linear layout:
// an optional quoted name, a bracketed user-space input location, '>', and a
// comma list of design-space outputs.
func (p *parser) parseAvar2Linear(ln line) {
	name, rest, _ := takeQuoted(ln.text)
	left, right, ok := strings.Cut(rest, ">")
	if !ok {
		p.diag.Add(dsketch.SeverityAdvisory, ln.no, "mapping missing '>' separator: %q", ln.text)
		return
	}
	m := &dsketch.Avar2Mapping{Name: name}
	i, j := strings.IndexByte(left, '['), strings.IndexByte(left, ']')
	if i < 0 || j < i {
		p.diag.Add(dsketch.SeverityAdvisory, ln.no, "mapping input not bracketed: %q", ln.text)
		return
	}
	if !p.parseAvar2Input(ln, m, left[i+1:j]) {
		return
	}
	for _, pair := range strings.Split(right, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		ref, val, ok := strings.Cut(pair, "=")
		if !ok {
			p.diag.Add(dsketch.SeverityAdvisory, ln.no, "malformed output %q, expected tag=value", pair)
			continue
		}
		ax := p.doc.Axis(strings.TrimSpace(ref))
		if ax == nil {
			p.diag.Add(dsketch.SeveritySemantic, ln.no, "mapping output references undeclared axis %q", strings.TrimSpace(ref))
			continue
		}
		if v, ok := p.resolveAvar2Output(ln, ax, strings.TrimSpace(val)); ok {
			m.Output = append(m.Output, dsketch.Avar2Dim{Axis: ax.Tag, Value: v})
		}
	}
	if len(m.Output) == 0 {
		p.diag.Add(dsketch.SeverityAdvisory, ln.no, "mapping with empty output dropped: %q", ln.text)
		return
	}
	p.doc.Avar2Maps = append(p.doc.Avar2Maps, m)
}

// parseAvar2Input fills the user-space input dimensions from the contents of
// the input bracket, `tag=point, tag=point, ...`.
func (p *parser) parseAvar2Input(ln line, m *dsketch.Avar2Mapping, inner string) bool {
	for _, pair := range strings.Split(inner, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		ref, val, ok := strings.Cut(pair, "=")
		if !ok {
			p.diag.Add(dsketch.SeverityAdvisory, ln.no, "malformed input %q, expected tag=point", pair)
			return false
		}
		ax := p.doc.Axis(strings.TrimSpace(ref))
		if ax == nil {
			p.diag.Add(dsketch.SeveritySemantic, ln.no, "mapping input references undeclared axis %q", strings.TrimSpace(ref))
			return false
		}
		v, ok := p.resolveUserPoint(ln, ax, strings.TrimSpace(val))
		if !ok {
			return false
		}
		m.Input = append(m.Input, dsketch.Avar2Dim{Axis: ax.Tag, Value: v})
	}
	if len(m.Input) == 0 {
		p.diag.Add(dsketch.SeverityAdvisory, ln.no, "mapping with empty input dropped: %q", ln.text)
		return false
	}
	return true
}

// resolveUserPoint maps an input token to a user-space value. Unlike source
// coordinates, avar2 inputs live in user space, as the avar2 table is
// consulted before any axis mapping is applied.
func (p *parser) resolveUserPoint(ln line, ax *dsketch.Axis, tok string) (float64, bool) {
	if v, err := strconv.ParseFloat(tok, 64); err == nil {
		return v, true
	}
	if m, ok := ax.MappingFor(tok); ok {
		return m.UserValue, true
	}
	if u, ok := dsketch.StdUserValue(dsketch.VocabForAxis(ax), tok); ok {
		return u, true
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
			"cannot resolve input point %q on axis %q", tok, ax.Tag)
	} else {
		p.diag.Add(dsketch.SeveritySemantic, ln.no,
			"cannot resolve input point %q on axis %q", tok, ax.Tag)
	}
	return 0, false
}

// resolveAvar2Output maps an output token to a design-space value. `$` stands
// for the axis default, `$name` for a declared variable.
func (p *parser) resolveAvar2Output(ln line, ax *dsketch.Axis, tok string) (float64, bool) {
	switch {
	case tok == "$":
		return ax.DefaultDesign(), true
	case strings.HasPrefix(tok, "$"):
		name := strings.TrimPrefix(tok, "$")
		if v, ok := p.doc.Avar2Var(name); ok {
			return v, true
		}
		p.diag.Add(dsketch.SeveritySemantic, ln.no, "undefined variable $%s", name)
		return 0, false
	}
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		p.diag.Add(dsketch.SeverityAdvisory, ln.no, "malformed output value %q on axis %q", tok, ax.Tag)
		return 0, false
	}
	return v, true
}

// parseAvar2Matrix handles the matrix layout. The first content line is the
// header naming the output columns; every further line is one input point
// followed by a cell per column. A `-` cell leaves that output unset.
func (p *parser) parseAvar2Matrix(ln line) {
	fields := ln.fields()
	if p.matrixCols == nil {
		if len(fields) < 2 || fields[0] != "outputs" {
			p.diag.Add(dsketch.SeverityStructural, ln.no,
				"matrix must start with an 'outputs' header row, got %q", ln.text)
			return
		}
		p.matrixCols = make([]string, 0, len(fields)-1)
		for _, ref := range fields[1:] {
			ax := p.doc.Axis(ref)
			if ax == nil {
				p.diag.Add(dsketch.SeveritySemantic, ln.no, "matrix column references undeclared axis %q", ref)
				p.matrixCols = append(p.matrixCols, ref)
				continue
			}
			p.matrixCols = append(p.matrixCols, ax.Tag)
		}
		return
	}
	name, rest, _ := takeQuoted(ln.text)
	i, j := strings.IndexByte(rest, '['), strings.IndexByte(rest, ']')
	if i < 0 || j < i {
		p.diag.Add(dsketch.SeverityAdvisory, ln.no, "matrix row input not bracketed: %q", ln.text)
		return
	}
	m := &dsketch.Avar2Mapping{Name: name}
	if !p.parseAvar2Input(ln, m, rest[i+1:j]) {
		return
	}
	cells := strings.Fields(rest[j+1:])
	if len(cells) != len(p.matrixCols) {
		p.diag.Add(dsketch.SeverityAdvisory, ln.no,
			"matrix row has %d cells, header declares %d columns", len(cells), len(p.matrixCols))
	}
	for idx, cell := range cells {
		if idx >= len(p.matrixCols) {
			break
		}
		if cell == "-" {
			continue
		}
		ax := p.doc.Axis(p.matrixCols[idx])
		if ax == nil {
			continue
		}
		if v, ok := p.resolveAvar2Output(ln, ax, cell); ok {
			m.Output = append(m.Output, dsketch.Avar2Dim{Axis: ax.Tag, Value: v})
		}
	}
	if len(m.Output) == 0 {
		p.diag.Add(dsketch.SeverityAdvisory, ln.no, "matrix row with no output values dropped: %q", ln.text)
		return
	}
	p.doc.Avar2Maps = append(p.doc.Avar2Maps, m)
}
