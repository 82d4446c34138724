package main

import (
	"strings"
	"testing"
	"time"
)

const sampleRun = `goos: linux
BenchmarkOpen/dict-8         	 1000000	      1052 ns/op	 1204.50 MB/s	     320 B/op	       4 allocs/op
BenchmarkMarshal/actors-8    	    2000	    612345 ns/op	  204800 B/op	    1500 allocs/op
{"Action":"output","Output":"BenchmarkDecompress/literal-8 \t 5000\t 2000 ns/op\n"}
PASS
`

func TestParseBenchmarks(t *testing.T) {
	results := parseBenchmarks(strings.NewReader(sampleRun))
	if len(results) != 3 {
		t.Fatalf("parsed %d results, want 3", len(results))
	}
	open := results[0]
	if open.Operation != "Open" || open.Case != "dict" {
		t.Errorf("name split = %q/%q", open.Operation, open.Case)
	}
	if open.NsPerOp != 1052 || open.MBPerSec != 1204.5 || open.BytesPerOp != 320 || open.AllocsPerOp != 4 {
		t.Errorf("metrics = %+v", open)
	}
	if results[2].Operation != "Decompress" || results[2].NsPerOp != 2000 {
		t.Errorf("json line = %+v", results[2])
	}
}

func TestGenerateComparisons(t *testing.T) {
	current := parseBenchmarks(strings.NewReader(sampleRun))
	baseline := parseBenchmarks(strings.NewReader(
		"BenchmarkOpen/dict-8 100 2104 ns/op\nBenchmarkLookup/deep-8 100 50 ns/op\n"))

	comps := generateComparisons(current, baseline)
	if len(comps) != 4 {
		t.Fatalf("got %d comparisons, want 4", len(comps))
	}
	var open, lookup *ComparisonResult
	for i := range comps {
		switch comps[i].Operation {
		case "Open":
			open = &comps[i]
		case "Lookup":
			lookup = &comps[i]
		}
	}
	if open == nil || !open.HasBaseline || open.Speedup != 2 {
		t.Errorf("open comparison = %+v", open)
	}
	if lookup == nil || !lookup.BaselineOnly {
		t.Errorf("lookup comparison = %+v", lookup)
	}

	report := generateMarkdownReport(comps, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))
	for _, want := range []string{"Generated: 2026-01-02 03:04:05", "| Open | dict | 1.1K | 1204.5 | 320B | 4 | 2.00x ✓ |", "*removed*"} {
		if !strings.Contains(report, want) {
			t.Errorf("report missing %q\n%s", want, report)
		}
	}
}

func TestSplitName(t *testing.T) {
	for name, want := range map[string][2]string{
		"BenchmarkOpen/dict-8": {"Open", "dict"},
		"BenchmarkMarshal-16":  {"Marshal", ""},
		"BenchmarkA/b/c-4":     {"A", "b/c"},
		"BenchmarkNoProcs/x-y": {"NoProcs", "x-y"},
	} {
		op, c := splitName(name)
		if op != want[0] || c != want[1] {
			t.Errorf("splitName(%q) = %q, %q", name, op, c)
		}
	}
}
