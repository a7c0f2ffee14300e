package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// keepLogs is how many conversion logs are retained per input file.
const keepLogs = 5

// redirectLog routes tracing into a per-conversion log file next to the
// input, logs/dssketch_<name>_<timestamp>.log, and prunes older runs. The
// returned function restores tracing to stderr.
func redirectLog(input string) func() {
	dir := filepath.Join(filepath.Dir(input), "logs")
	if err := os.MkdirAll(dir, 0755); err != nil {
		tracer().Infof("cannot create log directory: %v", err)
		return func() {}
	}
	stem := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	name := fmt.Sprintf("dssketch_%s_%s.log", stem, time.Now().Format("20060102-150405"))
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		tracer().Infof("cannot create log file: %v", err)
		return func() {}
	}
	tracer().SetOutput(f)
	pruneLogs(dir, stem)
	return func() {
		tracer().SetOutput(os.Stderr)
		f.Close()
	}
}

// pruneLogs deletes all but the newest conversion logs of one input file.
func pruneLogs(dir, stem string) {
	matches, err := filepath.Glob(filepath.Join(dir, "dssketch_"+stem+"_*.log"))
	if err != nil || len(matches) <= keepLogs {
		return
	}
	sort.Strings(matches) // timestamps sort chronologically
	for _, old := range matches[:len(matches)-keepLogs] {
		if err := os.Remove(old); err != nil {
			tracer().Infof("cannot remove old log %s: %v", old, err)
		}
	}
}
