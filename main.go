// Command gotama is the toolbox around the emulator: it assembles and
// inspects program images, runs them without a screen and dumps state
// files.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"gotama/pkg/asm"
	"gotama/pkg/cpu"
	"gotama/pkg/engine"
	"gotama/pkg/peripherals"
	"gotama/pkg/rom"
	"gotama/pkg/state"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "gotama:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "gotama",
		Short:         "E0C6S46 program image tools",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newAsmCmd(),
		newDisasmCmd(),
		newInfoCmd(),
		newPackCmd(),
		newRunCmd(),
		newStateCmd(),
	)
	return root
}

// imageFormat selects the on-disk encoding written by asm and pack.
type imageFormat string

func (f *imageFormat) Set(v string) error {
	switch v {
	case "packed", "padded":
		*f = imageFormat(v)
		return nil
	}
	return fmt.Errorf("unknown format %q (want packed or padded)", v)
}

func (f *imageFormat) String() string { return string(*f) }
func (f *imageFormat) Type() string   { return "format" }

func (f imageFormat) encode(words []uint16) []byte {
	if f == "padded" {
		return rom.Pack16(words)
	}
	return rom.Pack12(words)
}

func newAsmCmd() *cobra.Command {
	var out string
	format := imageFormat("packed")

	cmd := &cobra.Command{
		Use:   "asm <source>",
		Short: "Assemble a source file into a program image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read source: %w", err)
			}
			words, _, err := asm.Assemble(string(source))
			if err != nil {
				return fmt.Errorf("assembly failed: %w", err)
			}

			if out == "" {
				out = defaultOutputPath(args[0])
			}
			data := format.encode(words)
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("write image: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "assembled %d words (%d bytes, %s) -> %s\n", len(words), len(data), format, out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output image path (default: input with .b extension)")
	cmd.Flags().Var(&format, "format", "image encoding: packed or padded")
	return cmd
}

func defaultOutputPath(inPath string) string {
	ext := filepath.Ext(inPath)
	return strings.TrimSuffix(inPath, ext) + ".b"
}

func newDisasmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "disasm <image>",
		Short: "Disassemble a program image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			words, err := rom.Load(args[0])
			if err != nil {
				return err
			}
			return disassemble(cmd.OutOrStdout(), words)
		},
	}
}

func disassemble(w io.Writer, words []uint16) error {
	for addr, op := range words {
		if _, err := fmt.Fprintf(w, "%04X  %03X  %s\n", addr, op, cpu.Disassemble(op)); err != nil {
			return err
		}
	}
	return nil
}

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <image>",
		Short: "Show the size and detected encoding of a program image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read image: %w", err)
			}
			enc, err := rom.Detect(data)
			if err != nil {
				return err
			}
			words, err := rom.Decode(data)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d bytes, %s, %d words\n", args[0], len(data), enc, len(words))
			return nil
		},
	}
}

func newPackCmd() *cobra.Command {
	var out string
	format := imageFormat("packed")

	cmd := &cobra.Command{
		Use:   "pack <image>",
		Short: "Re-encode a program image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if out == "" {
				return errors.New("--out is required")
			}
			words, err := rom.Load(args[0])
			if err != nil {
				return err
			}
			data := format.encode(words)
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("write image: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "packed %d words (%d bytes, %s) -> %s\n", len(words), len(data), format, out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output image path")
	cmd.Flags().Var(&format, "format", "image encoding: packed or padded")
	return cmd
}

func newRunCmd() *cobra.Command {
	var (
		ticks  int
		breaks []string
	)

	cmd := &cobra.Command{
		Use:   "run <image>",
		Short: "Run a program image without a screen and print the registers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bps, err := parseBreakpoints(breaks)
			if err != nil {
				return err
			}
			words, err := rom.Load(args[0])
			if err != nil {
				return err
			}

			eng, err := engine.NewWithOptions(words, peripherals.NewBridge(), engine.Options{Breakpoints: bps})
			if err != nil {
				return err
			}
			defer eng.Release()

			ran := 0
			for ran < ticks && !eng.Paused() {
				eng.Tick()
				ran++
			}

			w := cmd.OutOrStdout()
			v, _ := eng.CurrentView()
			fmt.Fprintf(w, "ran %d ticks: PC=0x%04X X=0x%03X Y=0x%03X A=0x%X B=0x%X NP=0x%02X SP=0x%02X\n",
				ran, v.PC, v.X, v.Y, v.A, v.B, v.NP, v.SP)
			if eng.Paused() {
				fmt.Fprintf(w, "paused: %v\n", eng.Err())
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&ticks, "ticks", "n", 1000, "number of instructions to run")
	cmd.Flags().StringSliceVarP(&breaks, "break", "b", nil, "breakpoint address, repeatable")
	return cmd
}

func parseBreakpoints(vals []string) ([]uint16, error) {
	bps := make([]uint16, 0, len(vals))
	for _, v := range vals {
		n, err := strconv.ParseUint(v, 0, 13)
		if err != nil {
			return nil, fmt.Errorf("breakpoint %q: %w", v, err)
		}
		bps = append(bps, uint16(n))
	}
	return bps, nil
}

func newStateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "state <file>",
		Short: "Dump a saved state file as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := state.File{Path: args[0]}.Load()
			if err != nil {
				return err
			}
			return state.WriteJSON(cmd.OutOrStdout(), snap)
		},
	}
}
