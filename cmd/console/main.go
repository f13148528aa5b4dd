// Command console plays a Tamagotchi program image in the terminal.
package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"gotama/pkg/audio"
	"gotama/pkg/config"
	"gotama/pkg/display"
	"gotama/pkg/engine"
	"gotama/pkg/input"
	"gotama/pkg/peripherals"
	"gotama/pkg/scheduler"
	"gotama/pkg/state"
	"gotama/pkg/utils"
)

const screenshotScale = 8

var errNotTerminal = errors.New("stdin is not a terminal")

func main() {
	log.SetFlags(0)
	log.SetPrefix("gotama: ")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := console(ctx, os.Args[1:], os.Stdin, os.Stdout)
	stop()
	os.Exit(code)
}

// console runs the command line and returns the process exit code.
func console(ctx context.Context, args []string, stdin, stdout *os.File) int {
	cfg := config.Default()
	cmd := &cobra.Command{
		Use:           "console [rom]",
		Short:         "Play a Tamagotchi program image in the terminal",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				cfg.ROM = args[0]
			}
			return run(cmd.Context(), cfg, stdin, stdout)
		},
	}
	cfg.BindFlags(cmd.Flags())
	cmd.SetArgs(args)

	if err := cmd.ExecuteContext(ctx); err != nil {
		log.Print(err)
		return 1
	}
	return 0
}

func run(ctx context.Context, cfg config.Config, stdin, stdout *os.File) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	bridge := peripherals.NewBridge()
	eng, err := engine.LoadFile(cfg.ROM, bridge)
	if err != nil {
		return fmt.Errorf("load %s: %w", cfg.ROM, err)
	}
	defer eng.Release()

	// A missing or unreadable state file means a fresh start.
	store := state.File{Path: cfg.StatePath}
	if snap, err := store.Load(); err == nil {
		eng.LoadSnapshot(snap)
		log.Printf("loaded state from %s", store)
	}

	if cfg.StatsView != "" {
		stopStats := utils.LaunchStatsView(cfg.StatsView)
		defer stopStats()
		log.Printf("stats server available at http://%s%s", cfg.StatsView, utils.StatsViewPath)
	}

	if cfg.Sound {
		spk, err := audio.NewSpeaker(bridge)
		if err != nil {
			log.Printf("sound disabled: %v", err)
		} else {
			defer spk.Close()
		}
	}

	// Lines logged while the terminal is raw are held back until it is
	// restored.
	var notes bytes.Buffer
	loop := &scheduler.Loop{
		Engine:  eng,
		Pacer:   scheduler.NewPacer(cfg.Speed),
		Input:   input.NewTerminal(stdin),
		Keybind: cfg.Keybind,
		Screen:  bridge,
		Store:   store,
		Log:     log.New(&notes, log.Prefix(), 0),
		Hold:    cfg.Hold,
	}

	if cfg.WAV != "" {
		rec, err := audio.NewRecorder(cfg.WAV, bridge)
		if err != nil {
			log.Printf("recording disabled: %v", err)
		} else {
			defer func() {
				if err := rec.Close(); err != nil {
					log.Print(err)
				}
			}()
			loop.Audio = rec
		}
	}

	err = play(ctx, loop, cfg.Headless, stdin, stdout)
	log.Writer().Write(notes.Bytes())

	if cfg.Screenshot != "" {
		img := display.Image(bridge.LCD(), bridge.Icons(), screenshotScale)
		if err := display.SavePNG(cfg.Screenshot, img); err != nil {
			log.Print(err)
		} else {
			log.Printf("wrote screenshot to %s", cfg.Screenshot)
		}
	}
	return err
}

// play takes over the terminal for the length of the loop. Headless runs
// keep raw input but draw nothing.
func play(ctx context.Context, loop *scheduler.Loop, headless bool, stdin, stdout *os.File) error {
	if !display.IsTerminal(stdin) {
		return errNotTerminal
	}

	if headless {
		restore, err := display.EnterRaw(stdin)
		if err != nil {
			return err
		}
		defer restore()
		return loop.Run(ctx)
	}

	t, err := display.OpenTerminal(stdin, stdout)
	if err != nil {
		return err
	}
	defer t.Close()
	loop.Renderer = t
	return loop.Run(ctx)
}
