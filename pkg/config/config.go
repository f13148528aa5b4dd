// Package config holds the settings shared by the front-ends and binds them
// to command line flags.
package config

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/spf13/pflag"

	"gotama/pkg/input"
	"gotama/pkg/utils"
)

const (
	DefaultROM       = "roms/tama.b"
	DefaultStatePath = "gotama.state"
	DefaultHold      = 150 * time.Millisecond
)

var (
	ErrInvalidSpeed = errors.New("speed must be a positive number")
	ErrNoROM        = errors.New("no program image given")
	ErrNoStatePath  = errors.New("state path is empty")
)

type Config struct {
	ROM     string
	Keybind input.Keybind
	// Speed scales emulated time against real time.
	Speed    float64
	Headless bool

	StatePath string
	// Hold is how long a terminal key press keeps its button down.
	Hold time.Duration

	Sound bool
	// WAV, Screenshot and StatsView are off when empty.
	WAV        string
	Screenshot string
	StatsView  string
}

func Default() Config {
	return Config{
		ROM:       DefaultROM,
		Keybind:   input.DefaultKeybind(),
		Speed:     1.0,
		StatePath: DefaultStatePath,
		Hold:      DefaultHold,
	}
}

// BindFlags registers every setting on fs. Defaults are the current field
// values.
func (c *Config) BindFlags(fs *pflag.FlagSet) {
	fs.Var(&c.Keybind, "keybind", "button keys as A=<key>,B=<key>,C=<key>")
	fs.Var((*speedValue)(&c.Speed), "speed", "emulation speed multiplier")
	fs.BoolVar(&c.Headless, "headless", c.Headless, "run without drawing the screen")
	fs.StringVar(&c.StatePath, "state", c.StatePath, "state file loaded at start and saved on exit")
	fs.DurationVar(&c.Hold, "hold", c.Hold, "how long a key press holds its button")
	fs.BoolVar(&c.Sound, "sound", c.Sound, "play the buzzer")
	fs.StringVar(&c.WAV, "wav", c.WAV, "record the buzzer to a WAV file")
	fs.StringVar(&c.Screenshot, "screenshot", c.Screenshot, "write a PNG of the final screen on exit")
	fs.StringVar(&c.StatsView, "statsview", c.StatsView, "serve runtime charts on this address")
	fs.Lookup("statsview").NoOptDefVal = utils.StatsViewAddr
}

func (c *Config) Validate() error {
	if c.ROM == "" {
		return ErrNoROM
	}
	if !validSpeed(c.Speed) {
		return fmt.Errorf("%w: %v", ErrInvalidSpeed, c.Speed)
	}
	if c.StatePath == "" {
		return ErrNoStatePath
	}
	if c.Hold < 0 {
		return fmt.Errorf("hold must not be negative: %v", c.Hold)
	}
	return nil
}

func validSpeed(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

// speedValue rejects non-positive speeds at parse time.
type speedValue float64

func (s *speedValue) Set(v string) error {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidSpeed, v)
	}
	if !validSpeed(f) {
		return fmt.Errorf("%w: %q", ErrInvalidSpeed, v)
	}
	*s = speedValue(f)
	return nil
}

func (s *speedValue) String() string {
	return strconv.FormatFloat(float64(*s), 'g', -1, 64)
}

func (s *speedValue) Type() string {
	return "float"
}
