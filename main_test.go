package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gotama/pkg/rom"
	"gotama/pkg/state"
)

const demoSource = `
.ORG 0x100
	LD A, 5
	LD B, 3
	HALT
`

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func assembleDemo(t *testing.T, format string) string {
	t.Helper()
	dir := t.TempDir()
	src := filepath.Join(dir, "demo.s")
	if err := os.WriteFile(src, []byte(demoSource), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := runCmd(t, "asm", src, "--format", format); err != nil {
		t.Fatalf("asm: %v", err)
	}
	return filepath.Join(dir, "demo.b")
}

func TestAsmAndInfo(t *testing.T) {
	img := assembleDemo(t, "padded")

	out, err := runCmd(t, "info", img)
	if err != nil {
		t.Fatalf("info: %v", err)
	}
	want := "518 bytes, padded-16-le-12, 259 words"
	if !strings.Contains(out, want) {
		t.Errorf("info: got %q, want it to contain %q", out, want)
	}
}

func TestDisasm(t *testing.T) {
	img := assembleDemo(t, "padded")

	out, err := runCmd(t, "disasm", img)
	if err != nil {
		t.Fatalf("disasm: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 259 {
		t.Fatalf("disasm: got %d lines, want 259", len(lines))
	}
	if !strings.HasPrefix(lines[0x100], "0100  E05  LD A,") {
		t.Errorf("line 0x100: got %q", lines[0x100])
	}
}

func TestRun(t *testing.T) {
	img := assembleDemo(t, "padded")

	out, err := runCmd(t, "run", img, "-n", "2")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out, "ran 2 ticks: PC=0x0102") || !strings.Contains(out, "A=0x5 B=0x3") {
		t.Errorf("run: got %q", out)
	}
	if strings.Contains(out, "paused") {
		t.Errorf("run should not pause: %q", out)
	}
}

func TestRunBreakpoint(t *testing.T) {
	img := assembleDemo(t, "padded")

	out, err := runCmd(t, "run", img, "--break", "0x101")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out, "ran 1 ticks: PC=0x0101") || !strings.Contains(out, "paused: breakpoint") {
		t.Errorf("run: got %q", out)
	}

	if _, err := runCmd(t, "run", img, "--break", "nowhere"); err == nil {
		t.Errorf("bad breakpoint should fail")
	}
}

func TestPack(t *testing.T) {
	img := assembleDemo(t, "padded")
	packed := filepath.Join(t.TempDir(), "packed.b")

	if _, err := runCmd(t, "pack", img, "-o", packed); err != nil {
		t.Fatalf("pack: %v", err)
	}

	a, err := rom.Load(img)
	if err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(packed)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) != 390 {
		t.Errorf("packed size: got %d, want 390", len(data))
	}
	b, err := rom.Unpack12(data)
	if err != nil {
		t.Fatal(err)
	}
	for i, w := range a {
		if b[i] != w {
			t.Fatalf("word %d: got %03X, want %03X", i, b[i], w)
		}
	}

	if _, err := runCmd(t, "pack", img); err == nil {
		t.Errorf("pack without --out should fail")
	}
	if _, err := runCmd(t, "pack", img, "-o", packed, "--format", "nibbles"); err == nil {
		t.Errorf("unknown format should fail")
	}
}

func TestStateDump(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pet.state")
	snap := &state.Snapshot{PC: 0x123, A: 7, Memory: make([]byte, state.MemorySize)}
	if err := (state.File{Path: path}).Save(snap); err != nil {
		t.Fatal(err)
	}

	out, err := runCmd(t, "state", path)
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	if !strings.Contains(out, `"pc": 291`) || !strings.Contains(out, `"a": 7`) {
		t.Errorf("state: got %q", out)
	}
}

func TestDefaultOutputPath(t *testing.T) {
	tests := map[string]string{
		"pet.s":       "pet.b",
		"dir/pet.asm": "dir/pet.b",
		"noext":       "noext.b",
	}
	for in, want := range tests {
		if got := defaultOutputPath(in); got != want {
			t.Errorf("defaultOutputPath(%q): got %q, want %q", in, got, want)
		}
	}
}
