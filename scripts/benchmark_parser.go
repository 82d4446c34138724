// Command benchmark_parser turns `go test -bench` output into a markdown
// report, optionally comparing it against a baseline run.
//
//	go test -bench . -benchmem ./... > new.txt
//	go run ./scripts -input new.txt -baseline old.txt -output BENCH.md
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// BenchmarkResult represents a parsed benchmark result.
type BenchmarkResult struct {
	Name        string
	Operation   string
	Case        string
	Iterations  int
	NsPerOp     float64
	MBPerSec    float64
	BytesPerOp  int64
	AllocsPerOp int64
}

// ComparisonResult pairs a benchmark with its baseline run, if any.
type ComparisonResult struct {
	Operation    string
	Case         string
	Current      BenchmarkResult
	Baseline     BenchmarkResult
	Speedup      float64
	HasBaseline  bool
	BaselineOnly bool
}

var (
	inputFile = flag.String(
		"input",
		"",
		"Input file with benchmark output (stdin if not specified)",
	)
	baselineFile = flag.String("baseline", "", "Benchmark output to compare against")
	outputFile   = flag.String("output", "", "Output markdown file (stdout if not specified)")
	quiet        = flag.Bool("quiet", false, "Suppress progress output")
)

// benchmarkRegex matches lines such as
// BenchmarkOpen/dict-8    10000    12450 ns/op    85.2 MB/s    4096 B/op    8 allocs/op
var benchmarkRegex = regexp.MustCompile(
	`^(Benchmark\S+)\s+(\d+)\s+([\d.]+)\s+ns/op(?:\s+([\d.]+)\s+MB/s)?(?:\s+(\d+)\s+B/op)?(?:\s+(\d+)\s+allocs/op)?`,
)

func main() {
	flag.Parse()

	current, err := readResults(*inputFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading input: %v\n", err)
		os.Exit(1)
	}
	if !*quiet {
		fmt.Fprintf(os.Stderr, "Parsed %d benchmark results\n", len(current))
	}

	var baseline []BenchmarkResult
	if *baselineFile != "" {
		if baseline, err = readResults(*baselineFile); err != nil {
			fmt.Fprintf(os.Stderr, "Error reading baseline: %v\n", err)
			os.Exit(1)
		}
	}

	comparisons := generateComparisons(current, baseline)
	report := generateMarkdownReport(comparisons, time.Now())

	if *outputFile == "" {
		fmt.Fprint(os.Stdout, report)
		return
	}
	if err := os.WriteFile(*outputFile, []byte(report), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing output file: %v\n", err)
		os.Exit(1)
	}
	if !*quiet {
		fmt.Fprintf(os.Stderr, "Report written to %s\n", *outputFile)
	}
}

func readResults(path string) ([]BenchmarkResult, error) {
	if path == "" {
		return parseBenchmarks(os.Stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parseBenchmarks(f), nil
}

func parseBenchmarks(r io.Reader) []BenchmarkResult {
	var results []BenchmarkResult
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		line := scanner.Text()

		// Lines from `go test -json` carry the text in Output
		var testEvent map[string]any
		if err := json.Unmarshal([]byte(line), &testEvent); err == nil {
			if output, ok := testEvent["Output"].(string); ok {
				line = output
			}
		}

		matches := benchmarkRegex.FindStringSubmatch(strings.TrimSpace(line))
		if matches == nil {
			continue
		}

		res := BenchmarkResult{Name: matches[1]}
		res.Iterations, _ = strconv.Atoi(matches[2])
		res.NsPerOp, _ = strconv.ParseFloat(matches[3], 64)
		if matches[4] != "" {
			res.MBPerSec, _ = strconv.ParseFloat(matches[4], 64)
		}
		if matches[5] != "" {
			res.BytesPerOp, _ = strconv.ParseInt(matches[5], 10, 64)
		}
		if matches[6] != "" {
			res.AllocsPerOp, _ = strconv.ParseInt(matches[6], 10, 64)
		}
		res.Operation, res.Case = splitName(res.Name)
		results = append(results, res)
	}

	return results
}

// splitName splits Benchmark<Operation>/<case>-<procs> into operation and case.
func splitName(name string) (string, string) {
	name = strings.TrimPrefix(name, "Benchmark")
	if i := strings.LastIndex(name, "-"); i > 0 {
		if _, err := strconv.Atoi(name[i+1:]); err == nil {
			name = name[:i]
		}
	}
	op, c, _ := strings.Cut(name, "/")
	return op, c
}

func generateComparisons(current, baseline []BenchmarkResult) []ComparisonResult {
	type key struct {
		operation string
		cas       string
	}

	base := make(map[key]BenchmarkResult, len(baseline))
	for _, b := range baseline {
		base[key{b.Operation, b.Case}] = b
	}

	var comparisons []ComparisonResult
	seen := make(map[key]bool, len(current))
	for _, c := range current {
		k := key{c.Operation, c.Case}
		seen[k] = true
		comp := ComparisonResult{Operation: c.Operation, Case: c.Case, Current: c}
		if b, ok := base[k]; ok && c.NsPerOp > 0 {
			comp.Baseline = b
			comp.HasBaseline = true
			comp.Speedup = b.NsPerOp / c.NsPerOp
		}
		comparisons = append(comparisons, comp)
	}
	for k, b := range base {
		if !seen[k] {
			comparisons = append(comparisons, ComparisonResult{
				Operation: k.operation, Case: k.cas, Baseline: b, BaselineOnly: true,
			})
		}
	}

	sort.Slice(comparisons, func(i, j int) bool {
		if comparisons[i].Operation != comparisons[j].Operation {
			return comparisons[i].Operation < comparisons[j].Operation
		}
		return comparisons[i].Case < comparisons[j].Case
	})

	return comparisons
}

func generateMarkdownReport(comparisons []ComparisonResult, now time.Time) string {
	var sb strings.Builder

	sb.WriteString("# Benchmark Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", now.Format("2006-01-02 15:04:05")))

	faster, slower, compared := 0, 0, 0
	totalSpeedup := 0.0
	for _, comp := range comparisons {
		if !comp.HasBaseline {
			continue
		}
		compared++
		totalSpeedup += comp.Speedup
		if comp.Speedup > 1.0 {
			faster++
		} else if comp.Speedup < 1.0 {
			slower++
		}
	}

	sb.WriteString("## Summary\n\n")
	sb.WriteString(fmt.Sprintf("- **Total benchmarks**: %d\n", len(comparisons)))
	if compared > 0 {
		sb.WriteString(fmt.Sprintf("- **Compared with baseline**: %d\n", compared))
		sb.WriteString(fmt.Sprintf("  - faster: %d, slower: %d\n", faster, slower))
		sb.WriteString(fmt.Sprintf("  - Average speedup: **%.2fx**\n", totalSpeedup/float64(compared)))
	}
	sb.WriteString("\n")

	sb.WriteString("## Detailed Results\n\n")
	sb.WriteString("| Operation | Case | ns/op | MB/s | Memory (B/op) | Allocs | vs baseline |\n")
	sb.WriteString("|-----------|------|-------|------|---------------|--------|-------------|\n")

	hasBaseline := anyBaseline(comparisons)
	for _, comp := range comparisons {
		if comp.BaselineOnly {
			sb.WriteString(fmt.Sprintf("| %s | %s | *removed* | | | | %s ns/op |\n",
				comp.Operation, comp.Case, formatNumber(comp.Baseline.NsPerOp)))
			continue
		}
		vs := ""
		if hasBaseline {
			vs = "*new*"
		}
		if comp.HasBaseline {
			indicator := "✓"
			if comp.Speedup < 1.0 {
				indicator = "✗"
			}
			vs = fmt.Sprintf("%.2fx %s", comp.Speedup, indicator)
		}
		mbs := ""
		if comp.Current.MBPerSec > 0 {
			mbs = fmt.Sprintf("%.1f", comp.Current.MBPerSec)
		}
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s | %s | %s |\n",
			comp.Operation,
			comp.Case,
			formatNumber(comp.Current.NsPerOp),
			mbs,
			formatBytes(comp.Current.BytesPerOp),
			formatNumber(float64(comp.Current.AllocsPerOp)),
			vs,
		))
	}

	sb.WriteString("\n## Notes\n\n")
	sb.WriteString("- **Speedup > 1.0**: faster than the baseline ✓\n")
	sb.WriteString("- **Speedup < 1.0**: slower than the baseline ✗\n")
	sb.WriteString("- **Memory** and **Allocs**: lower is better\n")

	return sb.String()
}

func anyBaseline(comparisons []ComparisonResult) bool {
	for _, c := range comparisons {
		if c.HasBaseline || c.BaselineOnly {
			return true
		}
	}
	return false
}

func formatNumber(n float64) string {
	if n >= 1000000 {
		return fmt.Sprintf("%.2fM", n/1000000)
	} else if n >= 1000 {
		return fmt.Sprintf("%.1fK", n/1000)
	}
	return fmt.Sprintf("%.0f", n)
}

func formatBytes(b int64) string {
	if b >= 1024*1024 {
		return fmt.Sprintf("%.2fMB", float64(b)/(1024*1024))
	} else if b >= 1024 {
		return fmt.Sprintf("%.1fKB", float64(b)/1024)
	}
	return fmt.Sprintf("%dB", b)
}
