package main

import (
	"strconv"

	"github.com/npillmayer/dsketch"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var labelsCmd = &cobra.Command{
	Use:   "labels",
	Short: "Show the standard style-label tables",
	Long: `Labels prints the built-in weight and width vocabularies and the
discrete axis labels, after merging a --labels override file if given.`,
	RunE: runLabels,
}

func init() {
	labelsCmd.Flags().StringVar(&labelsFile, "labels", "", "YAML file overriding the standard label tables")
	rootCmd.AddCommand(labelsCmd)
}

func runLabels(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	if labelsFile != "" {
		if err := dsketch.SetStandardsOverride(labelsFile); err != nil {
			return err
		}
	}
	printVocab("Weight", dsketch.VocabWeight)
	printVocab("Width", dsketch.VocabWidth)
	printDiscrete("ital")
	printDiscrete("slnt")
	return nil
}

func printVocab(title string, v dsketch.Vocab) {
	pterm.Info.Println(title)
	data := [][]string{{"Label", "User value"}}
	for _, label := range dsketch.StdLabels(v) {
		value, _ := dsketch.StdUserValue(v, label)
		data = append(data, []string{label, strconv.FormatFloat(value, 'f', -1, 64)})
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func printDiscrete(tag string) {
	pterm.Info.Println("Discrete axis " + tag)
	data := [][]string{{"Label", "Value"}}
	for _, label := range dsketch.DiscreteLabels(tag) {
		value, _ := dsketch.DiscreteValue(tag, label)
		data = append(data, []string{label, strconv.FormatFloat(value, 'f', -1, 64)})
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}
