package engine_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gotama/pkg/asm"
	"gotama/pkg/cpu"
	"gotama/pkg/engine"
	"gotama/pkg/peripherals"
	"gotama/pkg/rom"
	"gotama/pkg/state"
)

// busyProgram keeps changing registers, RAM and the LCD.
const busyProgram = `
.ORG 0x100
	LD A, 4
	LD SPH, A
	LD A, 0
	LD SPL, A
	LD Y, 0x20
loop:
	ADD A, 1
	LDPY MY, 5
	LD B, A
	LD X, 0x00
	LD A, 0xE
	LD XP, A
	LD A, B
	LD MX, A
	LD XP, MY
	JP loop
`

func start(t *testing.T, src string, bridge *peripherals.Bridge) *engine.Engine {
	t.Helper()
	words, _, err := asm.Assemble(src)
	require.NoError(t, err)

	e, err := engine.New(words, bridge)
	require.NoError(t, err)
	t.Cleanup(e.Release)
	return e
}

func TestZeroImageSteps(t *testing.T) {
	e, err := engine.New(make([]uint16, 4096), peripherals.NewBridge())
	require.NoError(t, err)
	defer e.Release()

	e.TickMany(64)

	view, ok := e.CurrentView()
	require.True(t, ok)
	assert.False(t, e.Paused())
	assert.NoError(t, e.Err())
	assert.Equal(t, uint16(0x100), view.PC, "JP 0x00 loops on page 1")
	assert.NotZero(t, view.TickCounter)
}

func TestSnapshotFidelity(t *testing.T) {
	e := start(t, busyProgram, peripherals.NewBridge())

	e.TickMany(40)
	saved := e.SaveSnapshot()
	require.NotNil(t, saved)
	before, _ := e.CurrentView()

	e.TickMany(97)
	after, _ := e.CurrentView()
	require.NotEqual(t, before, after)

	e.LoadSnapshot(saved)
	restored, ok := e.CurrentView()
	require.True(t, ok)
	assert.Equal(t, before, restored)
	assert.Equal(t, saved, e.SaveSnapshot(), "every field must round trip")
}

func TestSnapshotIsACopy(t *testing.T) {
	e := start(t, busyProgram, peripherals.NewBridge())
	e.TickMany(10)

	s := e.SaveSnapshot()
	mem := append([]byte(nil), s.Memory...)
	e.TickMany(50)

	assert.Equal(t, mem, s.Memory)
}

func TestLoadSnapshotTruncates(t *testing.T) {
	e := start(t, busyProgram, peripherals.NewBridge())
	e.TickMany(200)
	full := e.SaveSnapshot()

	short := *full
	short.Memory = []byte{0xAB, 0xCD}
	short.Interrupts = []state.Interrupt{{FactorFlag: 0x3, Mask: 0x1, Vector: 0x0C}}
	e.LoadSnapshot(&short)

	got := e.SaveSnapshot()
	assert.Len(t, got.Memory, state.MemorySize)
	assert.Equal(t, []byte{0xAB, 0xCD}, got.Memory[:2])
	assert.Equal(t, full.Memory[2:], got.Memory[2:])

	assert.Len(t, got.Interrupts, state.InterruptSlots)
	assert.Equal(t, short.Interrupts[0], got.Interrupts[0])
	assert.Equal(t, full.Interrupts[1:], got.Interrupts[1:])
}

func TestLoadSnapshotOversizedMemory(t *testing.T) {
	e := start(t, busyProgram, peripherals.NewBridge())
	s := e.SaveSnapshot()
	s.Memory = make([]byte, state.MemorySize+100)
	for i := range s.Memory {
		s.Memory[i] = 0x11
	}

	e.LoadSnapshot(s)
	got := e.SaveSnapshot()
	assert.Len(t, got.Memory, state.MemorySize)
	assert.Equal(t, s.Memory[:state.MemorySize], got.Memory)
}

func TestLoadSnapshotRedrawsBridge(t *testing.T) {
	bridge := peripherals.NewBridge()
	e := start(t, busyProgram, bridge)
	e.TickMany(300)
	saved := e.SaveSnapshot()
	lcd := bridge.LCD()
	require.NotEqual(t, peripherals.Matrix{}, lcd)
	e.Release()

	fresh := peripherals.NewBridge()
	e2 := start(t, busyProgram, fresh)
	require.Equal(t, peripherals.Matrix{}, fresh.LCD())

	e2.LoadSnapshot(saved)
	assert.Equal(t, lcd, fresh.LCD())
}

func TestSetButton(t *testing.T) {
	e := start(t, ".ORG 0x100\nloop: JP loop\n", peripherals.NewBridge())

	e.SetButton(cpu.ButtonMiddle, true)
	s := e.SaveSnapshot()
	assert.Equal(t, uint8(0x2), s.Interrupts[cpu.IntK00K03].FactorFlag)
}

func TestReleaseIsIdempotent(t *testing.T) {
	e, err := engine.New(make([]uint16, 4096), peripherals.NewBridge())
	require.NoError(t, err)

	e.Release()
	e.Release()

	e.Tick()
	e.SetButton(cpu.ButtonLeft, true)
	e.LoadSnapshot(&state.Snapshot{})
	assert.Nil(t, e.SaveSnapshot())
	_, ok := e.CurrentView()
	assert.False(t, ok)
	assert.False(t, e.Paused())
}

func TestOneLiveEngine(t *testing.T) {
	words := make([]uint16, 4096)
	first, err := engine.New(words, peripherals.NewBridge())
	require.NoError(t, err)

	_, err = engine.New(words, peripherals.NewBridge())
	assert.ErrorIs(t, err, engine.ErrEngineBusy)

	first.Release()
	second, err := engine.New(words, peripherals.NewBridge())
	require.NoError(t, err)
	second.Release()
}

func TestInitFailure(t *testing.T) {
	_, err := engine.New(nil, peripherals.NewBridge())
	assert.ErrorIs(t, err, engine.ErrInitFailed)
	assert.ErrorIs(t, err, cpu.ErrEmptyProgram)

	_, err = engine.New(make([]uint16, 16), nil)
	assert.ErrorIs(t, err, engine.ErrInitFailed)

	// A failed init must not hold the engine slot.
	e, err := engine.New(make([]uint16, 16), peripherals.NewBridge())
	require.NoError(t, err)
	e.Release()
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	good := filepath.Join(dir, "tama.b")
	require.NoError(t, os.WriteFile(good, rom.Pack16(make([]uint16, 4096)), 0o644))
	e, err := engine.LoadFile(good, peripherals.NewBridge())
	require.NoError(t, err)
	e.TickMany(16)
	e.Release()

	bad := filepath.Join(dir, "bad.b")
	require.NoError(t, os.WriteFile(bad, []byte{1, 2, 3, 4, 5}, 0o644))
	_, err = engine.LoadFile(bad, peripherals.NewBridge())
	assert.ErrorIs(t, err, rom.ErrInvalidLength)

	_, err = engine.LoadFile(filepath.Join(dir, "missing.b"), peripherals.NewBridge())
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestBreakpoints(t *testing.T) {
	words, _, err := asm.Assemble(".ORG 0x100\nNOP5\nNOP5\nNOP5\nloop: JP loop\n")
	require.NoError(t, err)

	e, err := engine.NewWithOptions(words, peripherals.NewBridge(), engine.Options{Breakpoints: []uint16{0x102}})
	require.NoError(t, err)
	defer e.Release()

	e.TickMany(10)
	require.True(t, e.Paused())
	assert.ErrorIs(t, e.Err(), cpu.ErrBreakpoint)
	view, _ := e.CurrentView()
	assert.Equal(t, uint16(0x102), view.PC)

	e.Resume()
	e.TickMany(2)
	assert.False(t, e.Paused())
	view, _ = e.CurrentView()
	assert.Equal(t, uint16(0x103), view.PC)
}
