package dsketch

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Vocab selects one of the built-in label vocabularies. Only the two
// registered axis kinds with industry-standard style names carry one.
type Vocab int

const (
	VocabNone Vocab = iota
	VocabWeight
	VocabWidth
)

func (v Vocab) String() string {
	switch v {
	case VocabWeight:
		return "weight"
	case VocabWidth:
		return "width"
	}
	return "none"
}

// VocabForAxis returns the vocabulary an axis resolves its labels against.
func VocabForAxis(ax *Axis) Vocab {
	switch ax.Tag {
	case "wght":
		return VocabWeight
	case "wdth":
		return VocabWidth
	}
	switch {
	case strings.EqualFold(ax.Name, "weight"):
		return VocabWeight
	case strings.EqualFold(ax.Name, "width"):
		return VocabWidth
	}
	return VocabNone
}

// stdTables is the merged, immutable lookup structure for standard style
// labels. It is built once at first use (or explicitly via LoadStandards) and
// never mutated afterwards, so concurrent pipelines may share it freely.
type stdTables struct {
	vocab    map[Vocab]map[string]float64 // label -> user value
	aliases  map[Vocab]map[string]string  // alias -> canonical label
	ordered  map[Vocab][]string           // canonical labels, ascending user value
	discrete map[string]map[float64][]string
}

var (
	stdOnce     sync.Once
	stdInstance *stdTables
	stdOverride string // path of an override file, set before first use
	stdMu       sync.Mutex
)

// builtinStandards returns the hardcoded tables: OS/2-aligned weight names,
// usWidthClass-aligned width names, and the discrete italic/slant labels.
func builtinStandards() *stdTables {
	t := &stdTables{
		vocab: map[Vocab]map[string]float64{
			VocabWeight: {
				"Thin":       100,
				"ExtraLight": 200,
				"Light":      300,
				"Regular":    400,
				"Medium":     500,
				"SemiBold":   600,
				"Bold":       700,
				"ExtraBold":  800,
				"Black":      900,
			},
			VocabWidth: {
				"UltraCondensed": 50,
				"ExtraCondensed": 62.5,
				"Condensed":      75,
				"SemiCondensed":  87.5,
				"Normal":         100,
				"SemiExpanded":   112.5,
				"Expanded":       125,
				"ExtraExpanded":  150,
				"UltraExpanded":  200,
			},
		},
		aliases: map[Vocab]map[string]string{
			VocabWeight: {
				"Hairline":   "Thin",
				"UltraLight": "ExtraLight",
				"Book":       "Regular",
				"DemiBold":   "SemiBold",
				"UltraBold":  "ExtraBold",
				"Heavy":      "Black",
			},
			VocabWidth: {
				"Compressed": "Condensed",
				"Extended":   "Expanded",
				"Wide":       "ExtraExpanded",
			},
		},
		discrete: map[string]map[float64][]string{
			"ital": {
				0: {"Upright", "Roman", "Normal"},
				1: {"Italic"},
			},
			"slnt": {
				0: {"Upright", "Normal"},
				1: {"Slanted", "Oblique"},
			},
		},
	}
	return t
}

// overrideFile mirrors the YAML layout of a user-editable label table:
//
//	weight:
//	  Buch: {alias_of: Regular}
//	  Fett: {user_space: 700}
//	width:
//	  Schmal: {user_space: 75}
type overrideFile struct {
	Weight map[string]overrideEntry `yaml:"weight"`
	Width  map[string]overrideEntry `yaml:"width"`
}

type overrideEntry struct {
	UserSpace *float64 `yaml:"user_space"`
	AliasOf   string   `yaml:"alias_of"`
}

// SetStandardsOverride registers a YAML override file to be merged into the
// standard tables. Must be called before the tables are first consulted;
// calling it later returns an error instead of mutating shared state.
func SetStandardsOverride(path string) error {
	stdMu.Lock()
	defer stdMu.Unlock()
	if stdInstance != nil {
		return fmt.Errorf("standard tables already loaded, override %q ignored", path)
	}
	stdOverride = path
	return nil
}

func standards() *stdTables {
	stdOnce.Do(func() {
		t := builtinStandards()
		if stdOverride != "" {
			if err := t.merge(stdOverride); err != nil {
				tracer().Errorf("standard label override: %v", err)
			} else {
				tracer().Infof("merged standard label override from %s", stdOverride)
			}
		}
		t.buildOrdered()
		stdMu.Lock()
		stdInstance = t
		stdMu.Unlock()
	})
	return stdInstance
}

func (t *stdTables) merge(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var ov overrideFile
	if err := yaml.Unmarshal(data, &ov); err != nil {
		return fmt.Errorf("cannot parse %s: %w", path, err)
	}
	t.mergeVocab(VocabWeight, ov.Weight)
	t.mergeVocab(VocabWidth, ov.Width)
	return nil
}

func (t *stdTables) mergeVocab(v Vocab, entries map[string]overrideEntry) {
	for label, e := range entries {
		switch {
		case e.AliasOf != "":
			t.aliases[v][label] = e.AliasOf
		case e.UserSpace != nil:
			t.vocab[v][label] = *e.UserSpace
		}
	}
}

func (t *stdTables) buildOrdered() {
	t.ordered = make(map[Vocab][]string, len(t.vocab))
	for v, m := range t.vocab {
		labels := make([]string, 0, len(m))
		for label := range m {
			labels = append(labels, label)
		}
		sort.Slice(labels, func(i, j int) bool {
			if m[labels[i]] != m[labels[j]] {
				return m[labels[i]] < m[labels[j]]
			}
			return labels[i] < labels[j]
		})
		t.ordered[v] = labels
	}
}

func (t *stdTables) canonical(v Vocab, label string) string {
	if target, ok := t.aliases[v][label]; ok {
		return target
	}
	return label
}

// StdUserValue resolves a standard style label to its user-space value.
// Aliases resolve through their canonical label.
func StdUserValue(v Vocab, label string) (float64, bool) {
	if v == VocabNone {
		return 0, false
	}
	t := standards()
	val, ok := t.vocab[v][t.canonical(v, label)]
	return val, ok
}

// StdLabel returns the canonical label for a user-space value, if one exists.
func StdLabel(v Vocab, user float64) (string, bool) {
	if v == VocabNone {
		return "", false
	}
	t := standards()
	for _, label := range t.ordered[v] {
		if t.vocab[v][label] == user {
			return label, true
		}
	}
	return "", false
}

// StdLabels returns all labels (canonical and aliases) of a vocabulary, for
// use as a typo-correction candidate set.
func StdLabels(v Vocab) []string {
	if v == VocabNone {
		return nil
	}
	t := standards()
	labels := append([]string(nil), t.ordered[v]...)
	aliases := make([]string, 0, len(t.aliases[v]))
	for a := range t.aliases[v] {
		aliases = append(aliases, a)
	}
	sort.Strings(aliases)
	return append(labels, aliases...)
}

// DiscreteValue resolves a discrete-axis label ("Italic", "Upright") to its
// axis value.
func DiscreteValue(tag string, label string) (float64, bool) {
	byValue, ok := standards().discrete[tag]
	if !ok {
		return 0, false
	}
	for value, labels := range byValue {
		for _, l := range labels {
			if l == label {
				return value, true
			}
		}
	}
	return 0, false
}

// DiscreteLabel returns the preferred label for a discrete axis value.
func DiscreteLabel(tag string, value float64) (string, bool) {
	byValue, ok := standards().discrete[tag]
	if !ok {
		return "", false
	}
	labels, ok := byValue[value]
	if !ok || len(labels) == 0 {
		return "", false
	}
	return labels[0], true
}

// DiscreteLabels returns all labels of a discrete axis vocabulary.
func DiscreteLabels(tag string) []string {
	byValue, ok := standards().discrete[tag]
	if !ok {
		return nil
	}
	values := make([]float64, 0, len(byValue))
	for v := range byValue {
		values = append(values, v)
	}
	sort.Float64s(values)
	var labels []string
	for _, v := range values {
		labels = append(labels, byValue[v]...)
	}
	return labels
}
