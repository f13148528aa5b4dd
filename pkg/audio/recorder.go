package audio

import (
	"fmt"
	"math"
	"os"
	"time"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const bitDepth = 16

// Recorder writes a Buzzer to a 16-bit mono WAV file as emulated time
// advances.
type Recorder struct {
	f     *os.File
	enc   *wav.Encoder
	tone  *Tone
	buf   *goaudio.IntBuffer
	float []float32
	// fractional sample carried between Advance calls
	carry float64
}

func NewRecorder(path string, src Buzzer) (*Recorder, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create wav: %w", err)
	}

	return &Recorder{
		f:    f,
		enc:  wav.NewEncoder(f, SampleRate, bitDepth, 1, 1),
		tone: NewTone(src, SampleRate),
		buf: &goaudio.IntBuffer{
			Format:         &goaudio.Format{NumChannels: 1, SampleRate: SampleRate},
			SourceBitDepth: bitDepth,
		},
	}, nil
}

// Advance appends d worth of samples at the current buzzer state.
func (r *Recorder) Advance(d time.Duration) error {
	if r.enc == nil || d <= 0 {
		return nil
	}

	exact := d.Seconds()*SampleRate + r.carry
	n := int(exact)
	r.carry = exact - float64(n)
	if n == 0 {
		return nil
	}

	if cap(r.float) < n {
		r.float = make([]float32, n)
		r.buf.Data = make([]int, n)
	}
	r.float = r.float[:n]
	r.buf.Data = r.buf.Data[:n]

	r.tone.Fill(r.float)
	for i, s := range r.float {
		r.buf.Data[i] = int(math.Round(float64(s) * math.MaxInt16))
	}
	if err := r.enc.Write(r.buf); err != nil {
		return fmt.Errorf("write wav: %w", err)
	}
	return nil
}

// Close finalizes the WAV header. It is safe to call more than once.
func (r *Recorder) Close() error {
	if r.enc == nil {
		return nil
	}
	encErr := r.enc.Close()
	r.enc = nil
	if err := r.f.Close(); err != nil {
		return fmt.Errorf("close wav: %w", err)
	}
	if encErr != nil {
		return fmt.Errorf("finish wav: %w", encErr)
	}
	return nil
}
