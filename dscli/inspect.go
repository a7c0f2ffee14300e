package main

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/npillmayer/dsketch"
	"github.com/npillmayer/dsketch/designspace"
	"github.com/npillmayer/dsketch/dss"
	"github.com/npillmayer/dsketch/instancing"
	"github.com/npillmayer/dsketch/internal/ufo"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Interactively browse a design-space document",
	Long: `Inspect loads a sketch or designspace file and starts an interactive
prompt for browsing its axes, sources, rules, instances and avar2 mappings.`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

// Intp is our interpreter object
type Intp struct {
	doc  *dsketch.Document
	diag *dsketch.Diagnostics
	repl *readline.Instance
}

func runInspect(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	input := args[0]
	intp := &Intp{}
	var err error
	if strings.HasSuffix(input, ".designspace") {
		intp.doc, err = designspace.DecodeFile(input)
		if err != nil {
			return err
		}
		intp.doc.InferHiddenAxes()
		intp.diag = dsketch.NewDiagnostics(dsketch.Lenient)
	} else {
		intp.doc, intp.diag, err = dss.ParseFile(input, dss.LenientMode)
		if err != nil {
			return err
		}
		if intp.doc == nil {
			printDiagnostics(intp.diag)
			return fmt.Errorf("%s has errors", input)
		}
	}
	ufo.ResolveFamily(filepath.Dir(input), intp.doc)
	pterm.Info.Printf("loaded %s\n", input)
	pterm.Info.Println("Quit with <ctrl>D")
	intp.repl, err = readline.New("dsketch > ")
	if err != nil {
		return err
	}
	intp.REPL()
	return nil
}

// REPL starts interactive mode.
func (intp *Intp) REPL() {
	for {
		line, err := intp.repl.Readline()
		if err != nil { // io.EOF
			break
		}
		if line = strings.TrimSpace(line); line == "" {
			continue
		}
		if quit := intp.execute(line); quit {
			break
		}
	}
	pterm.Info.Println("Good bye!")
}

func (intp *Intp) execute(line string) bool {
	cmd := strings.Fields(line)[0]
	switch strings.ToLower(cmd) {
	case "quit", "exit":
		return true
	case "axes":
		intp.printAxes()
	case "sources", "masters":
		intp.printSources()
	case "rules":
		intp.printRules()
	case "instances":
		intp.printInstances()
	case "avar2":
		intp.printAvar2()
	case "report":
		printDiagnostics(intp.diag)
	case "write":
		pterm.Println(dss.Write(intp.doc, nil))
	case "help":
		intp.help()
	default:
		pterm.Error.Printf("unknown command %q, try help\n", cmd)
	}
	return false
}

func (intp *Intp) help() {
	pterm.Println(`
	axes       list axes with their ranges and mappings
	sources    list interpolation sources and their coordinates
	rules      list substitution rules
	instances  list instances, generating them if the document says 'auto'
	avar2      list avar2 variables and mappings
	report     show the diagnostics collected while loading
	write      print the document in sketch notation
	quit       leave (also <ctrl>D)
	`)
}

func (intp *Intp) printAxes() {
	data := [][]string{{"Name", "Tag", "Range", "Flags", "Mappings"}}
	for _, ax := range intp.doc.OrderedAxes() {
		var flags []string
		if ax.Hidden {
			flags = append(flags, "hidden")
		}
		if ax.Discrete {
			flags = append(flags, "discrete")
		}
		var labels []string
		for _, m := range ax.Mappings {
			labels = append(labels, fmt.Sprintf("%s %s>%s", m.Label, num(m.UserValue), num(m.DesignValue)))
		}
		data = append(data, []string{
			ax.Name, ax.Tag,
			fmt.Sprintf("%s:%s:%s", num(ax.Minimum), num(ax.Default), num(ax.Maximum)),
			strings.Join(flags, ","),
			strings.Join(labels, ", "),
		})
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func (intp *Intp) printSources() {
	data := [][]string{{"Name", "File", "Location", "Flags"}}
	for _, src := range intp.doc.Sources {
		var flags []string
		if src.IsBase {
			flags = append(flags, "base")
		}
		if src.Layer != "" {
			flags = append(flags, "layer="+src.Layer)
		}
		data = append(data, []string{src.Name, src.Filename, location(src.Location), strings.Join(flags, ",")})
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func (intp *Intp) printRules() {
	if len(intp.doc.Rules) == 0 {
		pterm.Println("no rules")
		return
	}
	for _, rule := range intp.doc.Rules {
		var conds []string
		for _, c := range rule.Conditions {
			conds = append(conds, c.String())
		}
		head := rule.Name
		if head == "" {
			head = "(unnamed)"
		}
		if rule.Pattern != "" {
			pterm.Printf("%s: %s > %s (%s)\n", head, rule.Pattern, rule.Target, strings.Join(conds, " && "))
		} else {
			pterm.Printf("%s: %d substitutions (%s)\n", head, len(rule.Substitutions), strings.Join(conds, " && "))
		}
		for _, sub := range rule.Substitutions {
			pterm.Printf("    %s > %s\n", sub[0], sub[1])
		}
	}
}

func (intp *Intp) printInstances() {
	instances := intp.doc.Instances
	if intp.doc.InstanceMode == dsketch.InstancesAuto && len(instances) == 0 {
		instances = instancing.Generate(intp.doc, intp.diag)
	}
	if len(instances) == 0 {
		pterm.Println("no instances")
		return
	}
	data := [][]string{{"Style", "PostScript", "Location"}}
	for _, inst := range instances {
		data = append(data, []string{inst.StyleName, inst.PostScriptName, location(inst.Location)})
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func (intp *Intp) printAvar2() {
	if len(intp.doc.Avar2Vars) > 0 {
		for _, v := range intp.doc.Avar2Vars {
			pterm.Printf("$%s = %s\n", v.Name, num(v.Value))
		}
	}
	if len(intp.doc.Avar2Maps) == 0 {
		pterm.Println("no avar2 mappings")
		return
	}
	data := [][]string{{"Name", "Input (user)", "Output (design)"}}
	for _, m := range intp.doc.Avar2Maps {
		data = append(data, []string{m.Name, dims(m.Input), dims(m.Output)})
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func dims(ds []dsketch.Avar2Dim) string {
	parts := make([]string, len(ds))
	for i, d := range ds {
		parts[i] = fmt.Sprintf("%s=%s", d.Axis, num(d.Value))
	}
	return strings.Join(parts, ", ")
}

func location(loc map[string]float64) string {
	tags := make([]string, 0, len(loc))
	for tag := range loc {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	parts := make([]string, len(tags))
	for i, tag := range tags {
		parts[i] = fmt.Sprintf("%s=%s", tag, num(loc[tag]))
	}
	return strings.Join(parts, ", ")
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
