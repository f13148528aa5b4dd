// Package audio turns the buzzer state into sound.
package audio

import (
	"encoding/binary"
	"math"
)

const SampleRate = 44100

// DefaultVolume keeps the square wave well below full scale.
const DefaultVolume = 0.2

// Buzzer reports the buzzer frequency in tenths of a hertz and whether it
// is sounding. peripherals.Bridge implements it.
type Buzzer interface {
	Audio() (dHz uint32, playing bool)
}

// Tone renders a Buzzer as a mono square wave.
type Tone struct {
	Volume float32

	src   Buzzer
	rate  int
	phase float64
}

func NewTone(src Buzzer, rate int) *Tone {
	return &Tone{Volume: DefaultVolume, src: src, rate: rate}
}

// Fill writes len(buf) samples using the buzzer state at the time of the
// call.
func (t *Tone) Fill(buf []float32) {
	dHz, playing := t.src.Audio()
	if !playing || dHz == 0 || t.rate <= 0 {
		t.phase = 0
		for i := range buf {
			buf[i] = 0
		}
		return
	}

	step := float64(dHz) / 10 / float64(t.rate)
	for i := range buf {
		if t.phase < 0.5 {
			buf[i] = t.Volume
		} else {
			buf[i] = -t.Volume
		}
		t.phase += step
		t.phase -= math.Floor(t.phase)
	}
}

// Read implements io.Reader with float32 little-endian samples for oto.
func (t *Tone) Read(p []byte) (int, error) {
	n := len(p) / 4
	samples := make([]float32, n)
	t.Fill(samples)
	for i, s := range samples {
		binary.LittleEndian.PutUint32(p[i*4:], math.Float32bits(s))
	}
	return n * 4, nil
}
