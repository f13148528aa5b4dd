// Command desktop plays a Tamagotchi program image in a window, with real
// key press and release.
package main

import (
	"fmt"
	"image/color"
	"log"
	"os"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/spf13/cobra"
	"golang.org/x/image/font/basicfont"

	"gotama/pkg/audio"
	"gotama/pkg/config"
	"gotama/pkg/cpu"
	"gotama/pkg/display"
	"gotama/pkg/engine"
	"gotama/pkg/input"
	"gotama/pkg/peripherals"
	"gotama/pkg/scheduler"
	"gotama/pkg/state"
	"gotama/pkg/utils"
)

const (
	pixelScale = 10
	labelBand  = 16

	screenWidth  = cpu.LCDWidth * pixelScale
	screenHeight = (cpu.LCDHeight+4)*pixelScale + 2*labelBand

	autosaveInterval = time.Minute
)

type Game struct {
	eng    *engine.Engine
	bridge *peripherals.Bridge
	pacer  *scheduler.Pacer
	keys   map[ebiten.Key]cpu.Button
	store  state.File

	recorder  *audio.Recorder
	lastAudio time.Time
	lastSave  time.Time

	lcdImg *ebiten.Image // reused 32x20 native canvas
}

func (g *Game) Update() error {
	if ebiten.IsWindowBeingClosed() || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	now := time.Now()
	for n := g.pacer.Advance(now); n > 0; n-- {
		g.eng.TickMany(g.pacer.LogicBatch)
	}

	for k, b := range g.keys {
		if inpututil.IsKeyJustPressed(k) {
			g.eng.SetButton(b, true)
		}
		if inpututil.IsKeyJustReleased(k) {
			g.eng.SetButton(b, false)
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF12) {
		g.screenshot(now)
	}

	g.eng.TickMany(g.pacer.FrameBatch)

	if g.recorder != nil {
		if err := g.recorder.Advance(now.Sub(g.lastAudio)); err != nil {
			log.Printf("recording stopped: %v", err)
			g.recorder = nil
		}
		g.lastAudio = now
	}

	if now.Sub(g.lastSave) >= autosaveInterval {
		g.save()
		g.lastSave = now
	}
	return nil
}

func (g *Game) screenshot(now time.Time) {
	path := fmt.Sprintf("gotama-%s.png", now.Format("20060102-150405"))
	img := display.Image(g.bridge.LCD(), g.bridge.Icons(), pixelScale)
	if err := display.SavePNG(path, img); err != nil {
		log.Print(err)
		return
	}
	log.Printf("wrote screenshot to %s", path)
}

func (g *Game) save() {
	snap := g.eng.SaveSnapshot()
	if snap == nil {
		return
	}
	if err := g.store.Save(snap); err != nil {
		log.Printf("failed to write state to %s: %v", g.store, err)
	}
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(display.LCDBackground)

	if g.lcdImg == nil {
		g.lcdImg = ebiten.NewImage(cpu.LCDWidth, cpu.LCDHeight+4)
	}
	icons := g.bridge.Icons()
	g.lcdImg.WritePixels(display.Image(g.bridge.LCD(), icons, 1).Pix)

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(pixelScale, pixelScale)
	op.GeoM.Translate(0, labelBand)
	screen.DrawImage(g.lcdImg, op)

	drawLabels(screen, icons)
}

var labelFace = text.NewGoXFace(basicfont.Face7x13)

// drawLabels names the icons in a band above and below the LCD, dark when
// the icon is lit.
func drawLabels(screen *ebiten.Image, icons peripherals.Icons) {
	for i, name := range display.IconNames {
		var c color.Color = display.LCDIconOff
		if icons[i] {
			c = display.LCDPixel
		}
		w, h := text.Measure(name, labelFace, 0)

		op := &text.DrawOptions{}
		op.GeoM.Translate(labelOrigin(i, w, h))
		op.ColorScale.ScaleWithColor(c)
		text.Draw(screen, name, labelFace, op)
	}
}

// labelOrigin centres a w x h label for icon i in its quarter of the top
// band (icons 0-3) or the bottom band (icons 4-7).
func labelOrigin(i int, w, h float64) (x, y float64) {
	cell := float64(screenWidth / 4)
	x = float64(i%4)*cell + (cell-w)/2
	y = (labelBand - h) / 2
	if i >= 4 {
		y += screenHeight - labelBand
	}
	return x, y
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screenWidth, screenHeight
}

// keyBindings maps the window keys for a keybind. Letters and digits are
// supported; space taps the screen.
func keyBindings(kb input.Keybind) map[ebiten.Key]cpu.Button {
	keys := map[ebiten.Key]cpu.Button{ebiten.KeySpace: cpu.ButtonTap}
	for r, b := range map[rune]cpu.Button{
		kb.Left:   cpu.ButtonLeft,
		kb.Middle: cpu.ButtonMiddle,
		kb.Right:  cpu.ButtonRight,
	} {
		if k, ok := keyFor(r); ok {
			keys[k] = b
		}
	}
	return keys
}

func keyFor(r rune) (ebiten.Key, bool) {
	for k := ebiten.Key(0); k <= ebiten.KeyMax; k++ {
		name := k.String()
		if strings.EqualFold(name, string(r)) || name == "Digit"+string(r) {
			return k, true
		}
	}
	return 0, false
}

func main() {
	log.SetFlags(0)
	log.SetPrefix("gotama: ")

	cfg := config.Default()
	cmd := &cobra.Command{
		Use:           "desktop [rom]",
		Short:         "Play a Tamagotchi program image in a window",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				cfg.ROM = args[0]
			}
			return run(cfg)
		},
	}
	cfg.BindFlags(cmd.Flags())

	if err := cmd.Execute(); err != nil {
		log.Print(err)
		os.Exit(1)
	}
}

func run(cfg config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	bridge := peripherals.NewBridge()
	eng, err := engine.LoadFile(cfg.ROM, bridge)
	if err != nil {
		return fmt.Errorf("load %s: %w", cfg.ROM, err)
	}
	defer eng.Release()

	store := state.File{Path: cfg.StatePath}
	if snap, err := store.Load(); err == nil {
		eng.LoadSnapshot(snap)
		log.Printf("loaded state from %s", store)
	}

	if cfg.StatsView != "" {
		stopStats := utils.LaunchStatsView(cfg.StatsView)
		defer stopStats()
	}

	if cfg.Sound {
		spk, err := audio.NewSpeaker(bridge)
		if err != nil {
			log.Printf("sound disabled: %v", err)
		} else {
			defer spk.Close()
		}
	}

	now := time.Now()
	game := &Game{
		eng:       eng,
		bridge:    bridge,
		pacer:     scheduler.NewPacer(cfg.Speed),
		keys:      keyBindings(cfg.Keybind),
		store:     store,
		lastAudio: now,
		lastSave:  now,
	}
	game.pacer.Reset(now)

	if cfg.WAV != "" {
		rec, err := audio.NewRecorder(cfg.WAV, bridge)
		if err != nil {
			log.Printf("recording disabled: %v", err)
		} else {
			defer rec.Close()
			game.recorder = rec
		}
	}

	ebiten.SetWindowSize(screenWidth*2, screenHeight*2)
	ebiten.SetWindowTitle("gotama")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowClosingHandled(true)

	runErr := ebiten.RunGame(game)

	if snap := eng.SaveSnapshot(); snap != nil {
		if err := store.Save(snap); err != nil {
			log.Printf("failed to write state to %s: %v", store, err)
		} else {
			log.Printf("saved state to %s", store)
		}
	}
	if cfg.Screenshot != "" {
		if err := display.SavePNG(cfg.Screenshot, display.Image(bridge.LCD(), bridge.Icons(), pixelScale)); err != nil {
			log.Print(err)
		}
	}
	return runErr
}
