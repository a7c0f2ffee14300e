// Package ufo reads the parts of UFO font packages a design-space conversion
// needs: font info metadata, layers, and glyph name inventories. Both
// directory packages (.ufo) and zipped packages (.ufoz) are supported.
package ufo

import (
	"archive/zip"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/npillmayer/schuko/tracing"
	"howett.net/plist"
)

// tracer traces with key 'tyse.dsketch'.
func tracer() tracing.Trace {
	return tracing.Select("tyse.dsketch")
}

// Font is an opened UFO package.
type Font struct {
	Path string
	fsys fs.FS
}

// Open opens a UFO package, directory or zipped. The package must at least
// carry a metainfo.plist.
func Open(fontpath string) (*Font, error) {
	var fsys fs.FS
	if strings.HasSuffix(fontpath, ".ufoz") {
		r, err := zip.OpenReader(fontpath)
		if err != nil {
			return nil, fmt.Errorf("cannot open UFO archive %s: %w", fontpath, err)
		}
		fsys = zipRoot(&r.Reader)
	} else {
		info, err := os.Stat(fontpath)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("%s is not a UFO package directory", fontpath)
		}
		fsys = os.DirFS(fontpath)
	}
	f := &Font{Path: fontpath, fsys: fsys}
	if _, err := fs.Stat(fsys, "metainfo.plist"); err != nil {
		return nil, fmt.Errorf("%s has no metainfo.plist, not a UFO package", fontpath)
	}
	return f, nil
}

// zipRoot unwraps archives whose entries sit below a single top directory,
// the way most .ufoz files are packed.
func zipRoot(r *zip.Reader) fs.FS {
	if len(r.File) == 0 {
		return r
	}
	first := r.File[0].Name
	i := strings.IndexByte(first, '/')
	if i <= 0 {
		return r
	}
	prefix := first[:i+1]
	for _, f := range r.File {
		if !strings.HasPrefix(f.Name, prefix) {
			return r
		}
	}
	sub, err := fs.Sub(r, strings.TrimSuffix(prefix, "/"))
	if err != nil {
		return r
	}
	return sub
}

func (f *Font) unmarshalPlist(name string, out interface{}) error {
	data, err := fs.ReadFile(f.fsys, name)
	if err != nil {
		return err
	}
	if _, err := plist.Unmarshal(data, out); err != nil {
		return fmt.Errorf("cannot parse %s of %s: %w", name, f.Path, err)
	}
	return nil
}

type fontInfo struct {
	FamilyName string `plist:"familyName"`
	StyleName  string `plist:"styleName"`
}

// Info returns the family and style name from fontinfo.plist. Both may be
// empty for incomplete packages.
func (f *Font) Info() (family string, style string, err error) {
	var info fontInfo
	if err := f.unmarshalPlist("fontinfo.plist", &info); err != nil {
		return "", "", err
	}
	return info.FamilyName, info.StyleName, nil
}

// Layers returns the layer names from layercontents.plist, in declared
// order. UFOs without the file have the single default layer.
func (f *Font) Layers() ([]string, error) {
	var entries [][]string
	if err := f.unmarshalPlist("layercontents.plist", &entries); err != nil {
		if _, statErr := fs.Stat(f.fsys, "layercontents.plist"); statErr != nil {
			return []string{"public.default"}, nil
		}
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if len(e) > 0 {
			names = append(names, e[0])
		}
	}
	return names, nil
}

// layerDir resolves a layer name to its glyphs directory. The empty name
// selects the default layer.
func (f *Font) layerDir(layer string) (string, error) {
	if layer == "" {
		return "glyphs", nil
	}
	var entries [][]string
	if err := f.unmarshalPlist("layercontents.plist", &entries); err != nil {
		return "", fmt.Errorf("%s has layers but no layercontents.plist: %w", f.Path, err)
	}
	for _, e := range entries {
		if len(e) >= 2 && e[0] == layer {
			return e[1], nil
		}
	}
	return "", fmt.Errorf("%s has no layer %q", f.Path, layer)
}

// GlyphNames returns the sorted glyph inventory of a layer, default layer for
// the empty name.
func (f *Font) GlyphNames(layer string) ([]string, error) {
	dir, err := f.layerDir(layer)
	if err != nil {
		return nil, err
	}
	var contents map[string]string
	if err := f.unmarshalPlist(path.Join(dir, "contents.plist"), &contents); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(contents))
	for name := range contents {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// AllGlyphNames returns the union of the glyph inventories of every layer.
func (f *Font) AllGlyphNames() ([]string, error) {
	layers, err := f.Layers()
	if err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	for _, layer := range layers {
		dir := "glyphs"
		if layer != "public.default" {
			if dir, err = f.layerDir(layer); err != nil {
				tracer().Infof("skipping layer %q of %s: %v", layer, f.Path, err)
				continue
			}
		}
		var contents map[string]string
		if err := f.unmarshalPlist(path.Join(dir, "contents.plist"), &contents); err != nil {
			tracer().Infof("skipping layer %q of %s: %v", layer, f.Path, err)
			continue
		}
		for name := range contents {
			seen[name] = true
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
