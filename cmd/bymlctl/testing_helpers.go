package main

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/joshuapare/bymlkit/byml/builder"
	"github.com/joshuapare/bymlkit/internal/testutil"
)

// resetFlags restores every global and per-command flag to its default.
func resetFlags() {
	verbose, quiet, jsonOut = false, false, false
	member, dictPack = "", ""
	dumpFormat, dumpDepth, dumpShiftJIS = "text", 0, false
	getShowType = false
	convertBigEndian, convertVersion, convertShiftJIS = false, 2, false
}

// sampleDocument writes a small actor document to dir and returns its path.
func sampleDocument(t *testing.T, dir, name string) (string, []byte) {
	t.Helper()
	actor := builder.NewDict().
		SetString("name", "Enemy_Bokoblin").
		SetI32("hp", 13).
		SetArray("tags", builder.NewArray().PushString("enemy").PushString("small"))
	root := builder.NewDict().
		SetArray("Actors", builder.NewArray().PushDict(actor)).
		SetU32("Hash", 0xDEADBEEF)
	data, err := builder.Marshal(builder.DictNode(root), builder.DefaultOptions())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return testutil.WriteFile(t, dir, name, data), data
}

// captureOutput captures stdout while running a function
func captureOutput(t *testing.T, fn func() error) (string, error) {
	t.Helper()

	origStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	os.Stdout = w

	fnErr := fn()

	w.Close()
	os.Stdout = origStdout

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r); err != nil {
		t.Fatalf("failed to read output: %v", err)
	}
	return buf.String(), fnErr
}

// assertJSON checks that output is valid JSON
func assertJSON(t *testing.T, output string) {
	t.Helper()
	var result any
	if err := json.Unmarshal([]byte(output), &result); err != nil {
		t.Errorf("invalid JSON output: %v\nOutput: %s", err, output)
	}
}

// assertContains checks that output contains all expected strings
func assertContains(t *testing.T, output string, expected []string) {
	t.Helper()
	for _, want := range expected {
		if !strings.Contains(output, want) {
			t.Errorf("output missing expected string %q\nGot: %s", want, output)
		}
	}
}
