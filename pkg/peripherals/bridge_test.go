package peripherals

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatrixBounds(t *testing.T) {
	b := NewBridge()

	b.SetLCDMatrix(31, 15, true)
	b.SetLCDMatrix(0, 0, true)
	b.SetLCDMatrix(32, 0, true)
	b.SetLCDMatrix(0, 16, true)
	b.SetLCDMatrix(255, 255, true)

	lcd := b.LCD()
	assert.True(t, lcd[15][31])
	assert.True(t, lcd[0][0])

	on := 0
	for y := range lcd {
		for x := range lcd[y] {
			if lcd[y][x] {
				on++
			}
		}
	}
	assert.Equal(t, 2, on, "out of range writes must be ignored")
}

func TestIconBounds(t *testing.T) {
	b := NewBridge()

	b.SetLCDIcon(7, true)
	b.SetLCDIcon(8, true)
	b.SetLCDIcon(200, true)

	assert.Equal(t, Icons{7: true}, b.Icons())
}

func TestLCDReturnsCopy(t *testing.T) {
	b := NewBridge()
	lcd := b.LCD()
	lcd[3][3] = true

	assert.False(t, b.LCD()[3][3])
}

func TestAudio(t *testing.T) {
	b := NewBridge()
	b.SetFrequency(40960)
	b.PlayFrequency(true)

	dHz, playing := b.Audio()
	assert.Equal(t, uint32(40960), dHz)
	assert.True(t, playing)
	assert.Equal(t, uint32(40960), b.Frequency())
	assert.True(t, b.Playing())
}

func TestInstallResets(t *testing.T) {
	b := NewBridge()
	b.SetLCDMatrix(1, 1, true)
	b.SetLCDIcon(1, true)
	b.SetFrequency(100)
	b.PlayFrequency(true)

	b.Install()

	assert.Equal(t, Matrix{}, b.LCD())
	assert.Equal(t, Icons{}, b.Icons())
	dHz, playing := b.Audio()
	assert.Zero(t, dHz)
	assert.False(t, playing)
}

func TestTimestamp(t *testing.T) {
	now := time.Unix(1000, 0)
	b := &Bridge{Now: func() time.Time { return now }}
	b.Install()

	now = now.Add(1500 * time.Microsecond)
	assert.Equal(t, uint32(1500), b.Timestamp())

	now = now.Add(100 * time.Hour)
	assert.Equal(t, uint32(math.MaxUint32), b.Timestamp(), "timestamp saturates")

	now = time.Unix(0, 0)
	assert.Zero(t, b.Timestamp())
}

func TestNoOpHooks(t *testing.T) {
	b := NewBridge()
	b.SetLCDMatrix(2, 2, true)

	b.Halt()
	b.Log(0, "ignored %d", 1)
	b.SleepUntil(math.MaxUint32)
	b.UpdateScreen()

	require.Zero(t, b.Handler())
	assert.False(t, b.IsLogEnabled(0))
	assert.True(t, b.LCD()[2][2])
}

func TestConcurrentAccess(t *testing.T) {
	b := NewBridge()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 1000; i++ {
			b.Audio()
			b.LCD()
		}
	}()
	for i := 0; i < 1000; i++ {
		b.SetLCDMatrix(uint8(i%32), uint8(i%16), i%2 == 0)
		b.SetFrequency(uint32(i))
	}
	<-done
}
