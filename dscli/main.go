package main

import (
	"fmt"
	"os"

	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/npillmayer/schuko/tracing/trace2go"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// tracer traces with key 'tyse.dsketch'
func tracer() tracing.Trace {
	return tracing.Select("tyse.dsketch")
}

var traceLevel string

var rootCmd = &cobra.Command{
	Use:   "dsketch",
	Short: "Sketch variable-font design spaces in a compact notation",
	Long: `dsketch translates between sketch files, a compact notation for
variable-font design spaces, and designspace XML documents. The translation
works in both directions and is detected from the input file's extension.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		switch traceLevel {
		case "Debug":
			tracer().SetTraceLevel(tracing.LevelDebug)
		case "Info":
			tracer().SetTraceLevel(tracing.LevelInfo)
		case "Error":
			tracer().SetTraceLevel(tracing.LevelError)
		default:
			pterm.Error.Printf("invalid trace level %q, using Error\n", traceLevel)
			tracer().SetTraceLevel(tracing.LevelError)
		}
	},
}

func main() {
	initDisplay()

	// set up logging
	tracing.RegisterTraceAdapter("go", gologadapter.GetAdapter(), false)
	conf := testconfig.Conf{
		"tracing.adapter":    "go",
		"trace.tyse.dsketch": "Error",
	}
	if err := trace2go.ConfigureRoot(conf, "trace", trace2go.ReplaceTracers(true)); err != nil {
		fmt.Println("error configuring tracing")
		os.Exit(1)
	}
	tracing.SetTraceSelector(trace2go.Selector())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&traceLevel, "trace", "Error", "Trace level [Debug|Info|Error]")
}

// We use pterm for moderately fancy output.
func initDisplay() {
	pterm.EnableDebugMessages()
	pterm.Info.Prefix = pterm.Prefix{
		Text:  " !  ",
		Style: pterm.NewStyle(pterm.BgCyan, pterm.FgBlack),
	}
	pterm.Error.Prefix = pterm.Prefix{
		Text:  " Error",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}
}
