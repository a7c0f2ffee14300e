package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/npillmayer/dsketch"
	"github.com/npillmayer/dsketch/designspace"
	"github.com/npillmayer/dsketch/dss"
	"github.com/npillmayer/dsketch/instancing"
	"github.com/npillmayer/dsketch/internal/ufo"
	"github.com/npillmayer/dsketch/rules"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	outputFile   string
	strictMode   bool
	noValidation bool
	matrixLayout bool
	linearLayout bool
	noVars       bool
	varThreshold int
	labelsFile   string
)

var convertCmd = &cobra.Command{
	Use:   "convert <file>",
	Short: "Convert between sketch and designspace documents",
	Long: `Convert translates a sketch file into a designspace document or, for
a .designspace input, back into sketch notation. The direction is detected
from the input extension.`,
	Args: cobra.ExactArgs(1),
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().StringVarP(&outputFile, "output", "o", "", "output file (default: input with swapped extension)")
	convertCmd.Flags().BoolVar(&strictMode, "strict", false, "halt on the first finding, advisories included")
	convertCmd.Flags().BoolVar(&noValidation, "no-validation", false, "skip checking source fonts on disk")
	convertCmd.Flags().BoolVar(&matrixLayout, "matrix", false, "write the avar2 section in matrix layout")
	convertCmd.Flags().BoolVar(&linearLayout, "linear", false, "write the avar2 section in linear layout")
	convertCmd.Flags().BoolVar(&noVars, "novars", false, "disable variable extraction for avar2 output values")
	convertCmd.Flags().IntVar(&varThreshold, "vars", 3, "repetitions needed to extract an avar2 variable, 0 disables")
	convertCmd.Flags().StringVar(&labelsFile, "labels", "", "YAML file overriding the standard label tables")
	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	input := args[0]
	closeLog := redirectLog(input)
	defer closeLog()
	if labelsFile != "" {
		if err := dsketch.SetStandardsOverride(labelsFile); err != nil {
			return err
		}
	}
	if strings.HasSuffix(input, ".designspace") {
		return convertToSketch(input)
	}
	return convertToDesignspace(input)
}

func convertToDesignspace(input string) error {
	mode := dss.LenientMode
	if strictMode {
		mode = dss.StrictMode
	}
	doc, diag, err := dss.ParseFile(input, mode)
	if err != nil {
		return err
	}
	if doc == nil {
		printDiagnostics(diag)
		return fmt.Errorf("%s has errors, no output written", input)
	}

	root := filepath.Dir(input)
	ufo.ResolveFamily(root, doc)
	if !noValidation {
		printReports(ufo.Validate(root, doc))
	}
	if glyphs := loadGlyphs(root, doc); glyphs != nil {
		rules.ResolveAll(doc, glyphs, diag)
	} else if hasWildcards(doc) {
		pterm.Info.Println("source fonts unavailable, wildcard rules stay unresolved")
	}
	doc.Instances = instancing.Generate(doc, diag)
	printDiagnostics(diag)
	if diag.Err() != nil {
		return fmt.Errorf("%s has errors, no output written", input)
	}

	out := outputFile
	if out == "" {
		out = swapExt(input, ".designspace")
	}
	if err := designspace.EncodeFile(out, doc); err != nil {
		return err
	}
	pterm.Success.Printf("wrote %s (%d instances)\n", out, len(doc.Instances))
	return nil
}

func convertToSketch(input string) error {
	doc, err := designspace.DecodeFile(input)
	if err != nil {
		return err
	}
	doc.InferHiddenAxes()
	opts := &dss.WriterOptions{}
	switch {
	case matrixLayout:
		opts.Layout = dss.LayoutMatrix
	case linearLayout:
		opts.Layout = dss.LayoutLinear
	}
	opts.VarThreshold = effectiveVarThreshold(noVars, varThreshold)
	opts.Glyphs = loadGlyphs(filepath.Dir(input), doc)

	out := outputFile
	if out == "" {
		out = swapExt(input, ".dss")
	}
	if err := dss.WriteFile(out, doc, opts); err != nil {
		return err
	}
	pterm.Success.Printf("wrote %s\n", out)
	return nil
}

// loadGlyphs fetches the base source's glyph inventory, nil if the fonts are
// not on disk. Rule resolution degrades gracefully without it.
func loadGlyphs(root string, doc *dsketch.Document) rules.GlyphSet {
	base := doc.BaseSource()
	if base == nil {
		return nil
	}
	provider := ufo.NewProvider(filepath.Join(root, doc.Path))
	glyphs, err := provider.GlyphNames(base.Filename)
	if err != nil {
		tracer().Infof("no glyph inventory: %v", err)
		return nil
	}
	return glyphs
}

// effectiveVarThreshold maps the command line flags onto writer semantics.
// --novars and --vars 0 both switch variable extraction off.
func effectiveVarThreshold(off bool, n int) int {
	if off || n <= 0 {
		return -1
	}
	return n
}

func hasWildcards(doc *dsketch.Document) bool {
	for _, rule := range doc.Rules {
		if rule.Pattern != "" {
			return true
		}
	}
	return false
}

func swapExt(input, ext string) string {
	return strings.TrimSuffix(input, filepath.Ext(input)) + ext
}

func printDiagnostics(diag *dsketch.Diagnostics) {
	for _, d := range diag.Errors() {
		pterm.Error.Println(d.Error())
	}
	for _, d := range diag.Warnings() {
		pterm.Warning.Println(d.Error())
	}
}

func printReports(reports []ufo.Report) {
	for _, r := range reports {
		for _, e := range r.Errors {
			pterm.Error.Printf("%s: %s\n", r.Filename, e)
		}
		for _, w := range r.Warnings {
			pterm.Warning.Printf("%s: %s\n", r.Filename, w)
		}
	}
}
