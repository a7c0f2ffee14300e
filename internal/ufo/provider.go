package ufo

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/npillmayer/dsketch"
	"github.com/npillmayer/dsketch/rules"
	"golang.org/x/image/font/sfnt"
)

// Provider hands glyph inventories to the rule resolver. Filenames are
// resolved against Root, results are cached per file.
type Provider struct {
	Root  string
	cache map[string]rules.GlyphSet
}

func NewProvider(root string) *Provider {
	return &Provider{Root: root, cache: map[string]rules.GlyphSet{}}
}

// GlyphNames implements rules.GlyphProvider.
func (p *Provider) GlyphNames(filename string) (rules.GlyphSet, error) {
	if set, ok := p.cache[filename]; ok {
		return set, nil
	}
	if !isUFO(filename) {
		return nil, fmt.Errorf("glyph inventories need a UFO source, got %s", filename)
	}
	font, err := Open(filepath.Join(p.Root, filename))
	if err != nil {
		return nil, err
	}
	names, err := font.AllGlyphNames()
	if err != nil {
		return nil, err
	}
	set := rules.NewGlyphSet(names...)
	p.cache[filename] = set
	return set, nil
}

func isUFO(filename string) bool {
	return strings.HasSuffix(filename, ".ufo") || strings.HasSuffix(filename, ".ufoz")
}

// FamilyMetadata returns family and style name of a font file, from
// fontinfo.plist for UFO packages and from the naming table for binary
// fonts.
func FamilyMetadata(filename string) (family string, style string, err error) {
	if isUFO(filename) {
		font, err := Open(filename)
		if err != nil {
			return "", "", err
		}
		return font.Info()
	}
	data, err := os.ReadFile(filename)
	if err != nil {
		return "", "", err
	}
	f, err := sfnt.Parse(data)
	if err != nil {
		return "", "", fmt.Errorf("cannot parse font %s: %w", filename, err)
	}
	var buf sfnt.Buffer
	family, err = f.Name(&buf, sfnt.NameIDFamily)
	if err != nil {
		return "", "", err
	}
	style, err = f.Name(&buf, sfnt.NameIDSubfamily)
	if err != nil {
		return family, "", err
	}
	return family, style, nil
}

// ResolveFamily fills in the document's family name from the base source's
// font metadata when the sketch does not name one. Filenames resolve against
// root and the document path. Detection failures are traced and leave the
// document untouched.
func ResolveFamily(root string, doc *dsketch.Document) {
	if doc.Family != "" {
		return
	}
	base := doc.BaseSource()
	if base == nil {
		return
	}
	family, _, err := FamilyMetadata(filepath.Join(root, doc.Path, base.Filename))
	if err != nil {
		tracer().Debugf("family detection: %v", err)
		return
	}
	if family != "" {
		doc.Family = family
		tracer().Infof("family %q detected from %s", family, base.Filename)
	}
}

// Report lists the findings for one source file.
type Report struct {
	Filename string
	Errors   []string
	Warnings []string
}

func (r *Report) errorf(format string, args ...interface{}) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *Report) warnf(format string, args ...interface{}) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Validate checks every source of a document against the UFO packages on
// disk: the package must exist and be well-formed, referenced layers must
// exist, and the family name should match the document's.
func Validate(root string, doc *dsketch.Document) []Report {
	reports := make([]Report, 0, len(doc.Sources))
	for _, src := range doc.Sources {
		r := Report{Filename: src.Filename}
		validateSource(root, doc, src, &r)
		reports = append(reports, r)
	}
	return reports
}

func validateSource(root string, doc *dsketch.Document, src *dsketch.Source, r *Report) {
	if !isUFO(src.Filename) {
		r.errorf("source %q is not a UFO package", src.Filename)
		return
	}
	font, err := Open(filepath.Join(root, doc.Path, src.Filename))
	if err != nil {
		r.errorf("%v", err)
		return
	}
	if src.Layer != "" {
		layers, err := font.Layers()
		if err != nil {
			r.errorf("%v", err)
			return
		}
		found := false
		for _, l := range layers {
			if l == src.Layer {
				found = true
				break
			}
		}
		if !found {
			r.errorf("layer %q not found, package has %s", src.Layer, strings.Join(layers, ", "))
		}
	}
	names, err := font.GlyphNames(src.Layer)
	if err != nil {
		r.errorf("%v", err)
		return
	}
	if len(names) == 0 {
		r.warnf("no glyphs in layer %q", src.Layer)
	}
	family, _, err := font.Info()
	if err != nil {
		r.warnf("cannot read fontinfo.plist: %v", err)
		return
	}
	if doc.Family != "" && family != "" && family != doc.Family {
		r.warnf("family name %q does not match document family %q", family, doc.Family)
	}
	tracer().Debugf("validated %s: %d glyphs", src.Filename, len(names))
}
