package audio

import (
	"fmt"

	"github.com/ebitengine/oto/v3"
)

// Speaker plays a Buzzer through the system audio device. oto pulls samples
// from its own goroutine.
type Speaker struct {
	ctx    *oto.Context
	player *oto.Player
}

func NewSpeaker(src Buzzer) (*Speaker, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   SampleRate,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
	})
	if err != nil {
		return nil, fmt.Errorf("open audio device: %w", err)
	}
	<-ready

	player := ctx.NewPlayer(NewTone(src, SampleRate))
	player.Play()
	return &Speaker{ctx: ctx, player: player}, nil
}

func (s *Speaker) Close() error {
	if s.player == nil {
		return nil
	}
	err := s.player.Close()
	s.player = nil
	return err
}
