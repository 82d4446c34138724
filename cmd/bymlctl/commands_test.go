package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/joshuapare/bymlkit/internal/testutil"
	"github.com/joshuapare/bymlkit/pkg/types"
)

func TestInfoCommand(t *testing.T) {
	dir := t.TempDir()
	plain, data := sampleDocument(t, dir, "actors.byml")
	packed := testutil.WriteFile(t, dir, "actors.byml.szs", testutil.Yaz0Stored(data))

	tests := []struct {
		name        string
		path        string
		json        bool
		wantContain []string
	}{
		{
			name:        "plain",
			path:        plain,
			wantContain: []string{"Byte order: little", "Version: 2", "Root: Dictionary (2 entries)", "Compression: none"},
		},
		{
			name:        "yaz0",
			path:        packed,
			wantContain: []string{"Compression: yaz0", "Root: Dictionary"},
		},
		{
			name:        "json",
			path:        plain,
			json:        true,
			wantContain: []string{`"endian": "little"`, `"root": "Dictionary"`},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetFlags()
			jsonOut = tt.json
			output, err := captureOutput(t, func() error { return runInfo([]string{tt.path}) })
			if err != nil {
				t.Fatalf("runInfo() error = %v", err)
			}
			if tt.json {
				assertJSON(t, output)
			}
			assertContains(t, output, tt.wantContain)
		})
	}
}

func TestDumpCommand(t *testing.T) {
	dir := t.TempDir()
	path, _ := sampleDocument(t, dir, "actors.byml")
	// Root array whose only element points back at the root.
	cyclic := testutil.WriteFile(t, dir, "cyclic.byml", []byte{
		'Y', 'B', 0x02, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x10, 0x00, 0x00, 0x00,
		0xC0, 0x01, 0x00, 0x00, 0xC0, 0x00, 0x00, 0x00, 0x10, 0x00, 0x00, 0x00,
	})

	tests := []struct {
		name           string
		path           string
		format         string
		depth          int
		wantErr        bool
		wantErrIs      error
		wantContain    []string
		wantNotContain []string
	}{
		{
			name:        "text",
			format:      "text",
			wantContain: []string{"Dictionary{2}", "  Actors: Array[1]", `      name: String("Enemy_Bokoblin")`, "Hash: U32(3735928559)"},
		},
		{
			name:           "text depth",
			format:         "text",
			depth:          2,
			wantContain:    []string{"Actors: Array[1]"},
			wantNotContain: []string{"name:"},
		},
		{
			name:        "json",
			format:      "json",
			wantContain: []string{`"name": "Enemy_Bokoblin"`, `"Hash": 3735928559`},
		},
		{
			name:        "yaml",
			format:      "yaml",
			wantContain: []string{"Hash: !u 0xdeadbeef", "name: Enemy_Bokoblin", "hp: 13"},
		},
		{
			name:    "unknown format",
			format:  "xml",
			wantErr: true,
		},
		{
			name:      "text cyclic",
			path:      cyclic,
			format:    "text",
			wantErr:   true,
			wantErrIs: types.ErrCorrupt,
		},
		{
			name:      "yaml cyclic",
			path:      cyclic,
			format:    "yaml",
			wantErr:   true,
			wantErrIs: types.ErrCorrupt,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetFlags()
			dumpFormat = tt.format
			dumpDepth = tt.depth
			p := tt.path
			if p == "" {
				p = path
			}
			output, err := captureOutput(t, func() error { return runDump([]string{p}) })
			if (err != nil) != tt.wantErr {
				t.Fatalf("runDump() error = %v, wantErr %v\nOutput: %s", err, tt.wantErr, output)
			}
			if tt.wantErrIs != nil && !errors.Is(err, tt.wantErrIs) {
				t.Errorf("runDump() error = %v, want %v", err, tt.wantErrIs)
			}
			if tt.format == "json" {
				assertJSON(t, output)
			}
			assertContains(t, output, tt.wantContain)
			for _, s := range tt.wantNotContain {
				if strings.Contains(output, s) {
					t.Errorf("output contains unwanted string %q\nGot: %s", s, output)
				}
			}
		})
	}
}

func TestGetCommand(t *testing.T) {
	path, _ := sampleDocument(t, t.TempDir(), "actors.byml")

	tests := []struct {
		name        string
		lookup      string
		showType    bool
		json        bool
		wantErr     bool
		wantContain []string
	}{
		{name: "string", lookup: "Actors/0/name", wantContain: []string{"Enemy_Bokoblin"}},
		{name: "with type", lookup: "Actors/0/hp", showType: true, wantContain: []string{"13 (I32)"}},
		{name: "container", lookup: "Actors/0/tags", wantContain: []string{"Array[2]"}},
		{name: "json", lookup: "Actors/0/tags", json: true, wantContain: []string{`"type": "Array"`, `"small"`}},
		{name: "missing key", lookup: "Actors/0/nope", wantErr: true},
		{name: "missing index", lookup: "Actors/5", wantErr: true},
		{name: "through scalar", lookup: "Hash/0", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetFlags()
			getShowType = tt.showType
			jsonOut = tt.json
			output, err := captureOutput(t, func() error { return runGet([]string{path, tt.lookup}) })
			if (err != nil) != tt.wantErr {
				t.Fatalf("runGet() error = %v, wantErr %v\nOutput: %s", err, tt.wantErr, output)
			}
			if tt.json && !tt.wantErr {
				assertJSON(t, output)
			}
			assertContains(t, output, tt.wantContain)
		})
	}
}

func TestVerifyCommand(t *testing.T) {
	dir := t.TempDir()
	good, data := sampleDocument(t, dir, "good.byml")

	resetFlags()
	output, err := captureOutput(t, func() error { return runVerify([]string{good}) })
	if err != nil {
		t.Fatalf("runVerify() error = %v", err)
	}
	assertContains(t, output, []string{"is valid"})

	bad := append([]byte(nil), data...)
	copy(bad, "XX")
	badPath := testutil.WriteFile(t, dir, "bad.byml", bad)
	if _, err := captureOutput(t, func() error { return runVerify([]string{badPath}) }); err == nil {
		t.Fatal("expected an error for a bad magic")
	}

	cyclic := testutil.WriteFile(t, dir, "cyclic.byml", []byte{
		'Y', 'B', 0x02, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x10, 0x00, 0x00, 0x00,
		0xC0, 0x01, 0x00, 0x00, 0xC0, 0x00, 0x00, 0x00, 0x10, 0x00, 0x00, 0x00,
	})
	_, err = captureOutput(t, func() error { return runVerify([]string{cyclic}) })
	if !errors.Is(err, types.ErrCorrupt) {
		t.Errorf("runVerify() on a self-referencing array: error = %v, want %v", err, types.ErrCorrupt)
	}
}

func TestConvertRoundTrip(t *testing.T) {
	dir := t.TempDir()
	src, data := sampleDocument(t, dir, "actors.byml")
	yml := filepath.Join(dir, "actors.yml")
	back := filepath.Join(dir, "back.byml")

	resetFlags()
	if _, err := captureOutput(t, func() error { return runConvert([]string{src, yml}) }); err != nil {
		t.Fatalf("byml to yaml: %v", err)
	}
	text, err := os.ReadFile(yml)
	if err != nil {
		t.Fatal(err)
	}
	assertContains(t, string(text), []string{"Actors:", "Hash: !u 0xdeadbeef"})

	if _, err := captureOutput(t, func() error { return runConvert([]string{yml, back}) }); err != nil {
		t.Fatalf("yaml to byml: %v", err)
	}
	got, err := os.ReadFile(back)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("round trip changed the document\nwant % x\ngot  % x", data, got)
	}

	resetFlags()
	convertBigEndian = true
	convertVersion = 3
	if _, err := captureOutput(t, func() error { return runConvert([]string{yml, back}) }); err != nil {
		t.Fatalf("yaml to big-endian byml: %v", err)
	}
	got, err = os.ReadFile(back)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(got, []byte{'B', 'Y', 0x00, 0x03}) {
		t.Errorf("header = % x, want big-endian v3", got[:4])
	}
}

func TestYaz0Command(t *testing.T) {
	dir := t.TempDir()
	want := bytes.Repeat([]byte("SARC"), 9)
	in := testutil.WriteFile(t, dir, "x.szs", testutil.Yaz0Stored(want))
	out := filepath.Join(dir, "x.sarc")

	resetFlags()
	if _, err := captureOutput(t, func() error { return runYaz0([]string{in, out}) }); err != nil {
		t.Fatalf("runYaz0() error = %v", err)
	}
	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, want) {
		t.Errorf("decompressed = %q, want %q", got, want)
	}

	plain := testutil.WriteFile(t, dir, "plain.bin", want)
	if _, err := captureOutput(t, func() error { return runYaz0([]string{plain, out}) }); err == nil {
		t.Error("expected an error for a non-Yaz0 input")
	}
}

func TestSarcCommands(t *testing.T) {
	dir := t.TempDir()
	_, doc := sampleDocument(t, dir, "actors.byml")
	pack := testutil.SARC(t, types.BigEndian,
		testutil.File{Name: "Actor/Bokoblin.byml", Data: doc},
		testutil.File{Name: "Misc/readme.txt", Data: []byte("hello")},
	)
	archive := testutil.WriteFile(t, dir, "Actor.pack.szs", testutil.Yaz0Stored(pack))

	resetFlags()
	output, err := captureOutput(t, func() error { return runSarcLs([]string{archive}) })
	if err != nil {
		t.Fatalf("runSarcLs() error = %v", err)
	}
	assertContains(t, output, []string{"2 files (big)", "Actor/Bokoblin.byml", "Misc/readme.txt"})

	jsonOut = true
	output, err = captureOutput(t, func() error { return runSarcLs([]string{archive}) })
	if err != nil {
		t.Fatalf("runSarcLs() json error = %v", err)
	}
	assertJSON(t, output)

	resetFlags()
	member = "Actor/Bokoblin.byml"
	output, err = captureOutput(t, func() error { return runGet([]string{archive, "Actors/0/name"}) })
	if err != nil {
		t.Fatalf("runGet() with --member error = %v", err)
	}
	assertContains(t, output, []string{"Enemy_Bokoblin"})

	resetFlags()
	dest := filepath.Join(dir, "out")
	if _, err := captureOutput(t, func() error { return runSarcExtract([]string{archive, dest}) }); err != nil {
		t.Fatalf("runSarcExtract() error = %v", err)
	}
	got, err := os.ReadFile(filepath.Join(dest, "Misc", "readme.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "hello" {
		t.Errorf("extracted readme = %q", got)
	}
}
