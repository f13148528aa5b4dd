package main

import (
	"bytes"
	"context"
	"errors"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gotama/pkg/config"
	"gotama/pkg/rom"
)

// captureLog redirects the standard logger for the length of the test.
func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := log.Writer()
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(prev) })
	return &buf
}

// notTTY returns a regular file standing in for stdin and stdout.
func notTTY(t *testing.T) *os.File {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "stdio")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { f.Close() })
	return f
}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunIgnoresMalformedState(t *testing.T) {
	logs := captureLog(t)
	dir := t.TempDir()
	image := writeFile(t, dir, "zero.b", rom.Pack16(make([]uint16, 4096)))
	statePath := writeFile(t, dir, "pet.state", []byte("not a snapshot"))

	cfg := config.Default()
	cfg.ROM = image
	cfg.StatePath = statePath
	tty := notTTY(t)

	err := run(context.Background(), cfg, tty, tty)
	if !errors.Is(err, errNotTerminal) {
		t.Fatalf("run: got %v, want %v", err, errNotTerminal)
	}
	if strings.Contains(logs.String(), "loaded state") {
		t.Errorf("malformed state should be skipped, log: %q", logs.String())
	}

	// The engine slot must be free again for the next run.
	err = run(context.Background(), cfg, tty, tty)
	if !errors.Is(err, errNotTerminal) {
		t.Errorf("second run: got %v, want %v", err, errNotTerminal)
	}
}

func TestRunBadImage(t *testing.T) {
	captureLog(t)
	cfg := config.Default()
	cfg.ROM = writeFile(t, t.TempDir(), "short.b", []byte{1, 2, 3, 4, 5})
	tty := notTTY(t)

	err := run(context.Background(), cfg, tty, tty)
	if !errors.Is(err, rom.ErrInvalidLength) {
		t.Errorf("run: got %v, want ErrInvalidLength", err)
	}
}

func TestConsoleExitCodes(t *testing.T) {
	dir := t.TempDir()
	bad := writeFile(t, dir, "short.b", []byte{1, 2, 3, 4, 5})
	tty := notTTY(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"bad image", []string{bad}, "invalid rom length"},
		{"missing image", []string{filepath.Join(dir, "missing.b")}, "no such file"},
		{"bad speed", []string{"--speed=0", bad}, "speed must be a positive number"},
		{"too many args", []string{bad, bad}, "accepts at most 1 arg"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			logs := captureLog(t)
			if code := console(context.Background(), tc.args, tty, tty); code != 1 {
				t.Errorf("exit code: got %d, want 1", code)
			}
			if !strings.Contains(logs.String(), tc.want) {
				t.Errorf("log: got %q, want it to contain %q", logs.String(), tc.want)
			}
		})
	}
}
