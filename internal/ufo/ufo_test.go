package ufo

import (
	"archive/zip"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/npillmayer/dsketch"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

const metainfoPlist = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
	<key>creator</key><string>com.example.test</string>
	<key>formatVersion</key><integer>3</integer>
</dict>
</plist>
`

const fontinfoPlist = `<?xml version="1.0" encoding="UTF-8"?>
<plist version="1.0">
<dict>
	<key>familyName</key><string>Example</string>
	<key>styleName</key><string>Regular</string>
</dict>
</plist>
`

const layercontentsPlist = `<?xml version="1.0" encoding="UTF-8"?>
<plist version="1.0">
<array>
	<array><string>public.default</string><string>glyphs</string></array>
	<array><string>Display</string><string>glyphs.display</string></array>
</array>
</plist>
`

const defaultContentsPlist = `<?xml version="1.0" encoding="UTF-8"?>
<plist version="1.0">
<dict>
	<key>cent</key><string>cent.glif</string>
	<key>dollar</key><string>dollar.glif</string>
	<key>dollar.rvrn</key><string>dollar.rvrn.glif</string>
</dict>
</plist>
`

const displayContentsPlist = `<?xml version="1.0" encoding="UTF-8"?>
<plist version="1.0">
<dict>
	<key>yen</key><string>yen.glif</string>
</dict>
</plist>
`

// writeTestUFO lays out a minimal UFO package inside dir and returns its path.
func writeTestUFO(t *testing.T, dir, name string) string {
	t.Helper()
	root := filepath.Join(dir, name)
	files := map[string]string{
		"metainfo.plist":                metainfoPlist,
		"fontinfo.plist":                fontinfoPlist,
		"layercontents.plist":           layercontentsPlist,
		"glyphs/contents.plist":         defaultContentsPlist,
		"glyphs.display/contents.plist": displayContentsPlist,
	}
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func TestOpenAndRead(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tyse.dsketch")
	defer teardown()
	//
	root := writeTestUFO(t, t.TempDir(), "Example-Regular.ufo")
	font, err := Open(root)
	if err != nil {
		t.Fatal(err)
	}
	family, style, err := font.Info()
	if err != nil {
		t.Fatal(err)
	}
	if family != "Example" || style != "Regular" {
		t.Errorf("info = %q / %q", family, style)
	}
	layers, err := font.Layers()
	if err != nil {
		t.Fatal(err)
	}
	if len(layers) != 2 || layers[0] != "public.default" || layers[1] != "Display" {
		t.Errorf("layers = %v", layers)
	}
	names, err := font.GlyphNames("")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"cent", "dollar", "dollar.rvrn"}
	if len(names) != len(want) {
		t.Fatalf("glyphs = %v", names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("glyph %d = %q, want %q", i, names[i], want[i])
		}
	}
	display, err := font.GlyphNames("Display")
	if err != nil {
		t.Fatal(err)
	}
	if len(display) != 1 || display[0] != "yen" {
		t.Errorf("display layer glyphs = %v", display)
	}
	all, err := font.AllGlyphNames()
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 4 {
		t.Errorf("union over layers = %v", all)
	}
}

func TestOpenRejectsNonUFO(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tyse.dsketch")
	defer teardown()
	//
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "NotAFont.ufo"), 0755); err != nil {
		t.Fatal(err)
	}
	_, err := Open(filepath.Join(dir, "NotAFont.ufo"))
	if err == nil || !strings.Contains(err.Error(), "metainfo.plist") {
		t.Errorf("directory without metainfo.plist must be rejected, got %v", err)
	}
}

func TestOpenZippedUFO(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tyse.dsketch")
	defer teardown()
	//
	dir := t.TempDir()
	archive := filepath.Join(dir, "Example-Regular.ufoz")
	f, err := os.Create(archive)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(f)
	// entries below a single top directory, as tools pack them
	entries := map[string]string{
		"Example-Regular.ufo/metainfo.plist":        metainfoPlist,
		"Example-Regular.ufo/fontinfo.plist":        fontinfoPlist,
		"Example-Regular.ufo/glyphs/contents.plist": defaultContentsPlist,
	}
	for name, content := range entries {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	font, err := Open(archive)
	if err != nil {
		t.Fatal(err)
	}
	family, _, err := font.Info()
	if err != nil {
		t.Fatal(err)
	}
	if family != "Example" {
		t.Errorf("family = %q", family)
	}
	names, err := font.GlyphNames("")
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 3 {
		t.Errorf("glyphs = %v", names)
	}
}

func TestGlyphNamesUnknownLayer(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tyse.dsketch")
	defer teardown()
	//
	root := writeTestUFO(t, t.TempDir(), "Example-Regular.ufo")
	font, err := Open(root)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := font.GlyphNames("Webdings"); err == nil {
		t.Error("unknown layer must be an error")
	}
}

func TestProvider(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tyse.dsketch")
	defer teardown()
	//
	dir := t.TempDir()
	writeTestUFO(t, dir, "Example-Regular.ufo")
	p := NewProvider(dir)
	set, err := p.GlyphNames("Example-Regular.ufo")
	if err != nil {
		t.Fatal(err)
	}
	if !set["dollar"] || !set["yen"] {
		t.Errorf("glyph set = %v", set)
	}
	if _, err := p.GlyphNames("Example-Regular.ttf"); err == nil {
		t.Error("binary fonts have no glyph name inventory here")
	}
}

func TestValidate(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tyse.dsketch")
	defer teardown()
	//
	dir := t.TempDir()
	writeTestUFO(t, dir, "Example-Regular.ufo")
	doc := &dsketch.Document{
		Family: "Mismatch",
		Sources: []*dsketch.Source{
			{Name: "Example-Regular", Filename: "Example-Regular.ufo"},
			{Name: "Example-Bold", Filename: "Example-Bold.ufo"},
		},
	}
	reports := Validate(dir, doc)
	if len(reports) != 2 {
		t.Fatalf("reports = %v", reports)
	}
	if len(reports[0].Errors) != 0 {
		t.Errorf("existing package must not error: %v", reports[0].Errors)
	}
	mismatch := false
	for _, w := range reports[0].Warnings {
		if strings.Contains(w, "does not match") {
			mismatch = true
		}
	}
	if !mismatch {
		t.Errorf("family mismatch must warn, got %v", reports[0].Warnings)
	}
	if len(reports[1].Errors) == 0 {
		t.Error("missing package must error")
	}
}

func TestResolveFamilyFromBaseSource(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tyse.dsketch")
	defer teardown()
	//
	dir := t.TempDir()
	writeTestUFO(t, filepath.Join(dir, "masters"), "Example-Regular.ufo")
	doc := &dsketch.Document{
		Path: "masters",
		Sources: []*dsketch.Source{
			{Name: "Example-Regular", Filename: "Example-Regular.ufo", IsBase: true},
		},
	}
	ResolveFamily(dir, doc)
	if doc.Family != "Example" {
		t.Errorf("family = %q, want Example", doc.Family)
	}
	doc.Family = "Keep"
	ResolveFamily(dir, doc)
	if doc.Family != "Keep" {
		t.Errorf("an explicit family must win, got %q", doc.Family)
	}
	nobase := &dsketch.Document{
		Path:    "masters",
		Sources: []*dsketch.Source{{Filename: "Example-Regular.ufo"}},
	}
	ResolveFamily(dir, nobase)
	if nobase.Family != "" {
		t.Errorf("without a base source family must stay empty, got %q", nobase.Family)
	}
}
