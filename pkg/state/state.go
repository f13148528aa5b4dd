// Package state is the persisted form of a core's register, timer,
// interrupt and memory state.
package state

import (
	"bytes"
	"encoding/gob"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"gotama/pkg/cpu"
	"gotama/pkg/utils"
)

const (
	// InterruptSlots and MemorySize are what a complete snapshot holds.
	// Shorter snapshots still restore; see engine.LoadSnapshot.
	InterruptSlots = cpu.InterruptSlots
	MemorySize     = cpu.MemBufferSize
)

type Interrupt struct {
	FactorFlag uint8 `json:"factor_flag"`
	Mask       uint8 `json:"mask"`
	Triggered  bool  `json:"triggered"`
	Vector     uint8 `json:"vector"`
}

// Snapshot is an owned copy of cpu.State.
type Snapshot struct {
	PC    uint16 `json:"pc"`
	X     uint16 `json:"x"`
	Y     uint16 `json:"y"`
	A     uint8  `json:"a"`
	B     uint8  `json:"b"`
	NP    uint8  `json:"np"`
	SP    uint8  `json:"sp"`
	Flags uint8  `json:"flags"`

	TickCounter              uint32 `json:"tick_counter"`
	ClockTimer2HzTimestamp   uint32 `json:"clk_timer_2hz_timestamp"`
	ClockTimer4HzTimestamp   uint32 `json:"clk_timer_4hz_timestamp"`
	ClockTimer8HzTimestamp   uint32 `json:"clk_timer_8hz_timestamp"`
	ClockTimer16HzTimestamp  uint32 `json:"clk_timer_16hz_timestamp"`
	ClockTimer32HzTimestamp  uint32 `json:"clk_timer_32hz_timestamp"`
	ClockTimer64HzTimestamp  uint32 `json:"clk_timer_64hz_timestamp"`
	ClockTimer128HzTimestamp uint32 `json:"clk_timer_128hz_timestamp"`
	ClockTimer256HzTimestamp uint32 `json:"clk_timer_256hz_timestamp"`

	ProgTimerTimestamp uint32 `json:"prog_timer_timestamp"`
	ProgTimerEnabled   bool   `json:"prog_timer_enabled"`
	ProgTimerData      uint8  `json:"prog_timer_data"`
	ProgTimerReload    uint8  `json:"prog_timer_rld"`

	CallDepth uint32 `json:"call_depth"`

	Interrupts []Interrupt `json:"interrupts"`
	Halted     bool        `json:"cpu_halted"`
	Memory     []byte      `json:"memory"`
}

// Encode writes s in the binary state file format.
func Encode(w io.Writer, s *Snapshot) error {
	if err := gob.NewEncoder(w).Encode(s); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return nil
}

func Decode(r io.Reader) (*Snapshot, error) {
	var s Snapshot
	if err := gob.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &s, nil
}

// WriteJSON writes s as indented JSON, memory as base64.
func WriteJSON(w io.Writer, s *Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	return nil
}

// ErrNoState is returned by Load when the state file does not exist.
var ErrNoState = errors.New("no saved state")

// File stores one snapshot at Path.
type File struct {
	Path string
}

func (f File) Load() (*Snapshot, error) {
	data, err := os.ReadFile(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w at %s", ErrNoState, f.Path)
	}
	if err != nil {
		return nil, fmt.Errorf("read state %s: %w", f.Path, err)
	}

	s, err := Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("state %s: %w", f.Path, err)
	}
	return s, nil
}

// Save replaces the file atomically.
func (f File) Save(s *Snapshot) error {
	var buf bytes.Buffer
	if err := Encode(&buf, s); err != nil {
		return err
	}
	if err := utils.WriteFileAtomic(f.Path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	return nil
}

func (f File) String() string {
	return f.Path
}
