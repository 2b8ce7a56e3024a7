package audio

import (
	"io"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/generators"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
	"github.com/m-mizutani/goerr/v2"
)

// Player owns the output device. The speaker is initialized lazily on the
// first sound and kept at that sample rate; later streams with a different
// rate are resampled.
type Player struct {
	mu       sync.Mutex
	baseRate beep.SampleRate
	ready    bool
}

func NewPlayer() *Player { return &Player{} }

func (p *Player) ensure(rate beep.SampleRate) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ready {
		return nil
	}
	if err := speaker.Init(rate, rate.N(time.Second/10)); err != nil {
		return goerr.Wrap(err, "failed to open speaker")
	}
	p.baseRate = rate
	p.ready = true
	return nil
}

// PlayMP3 decodes and plays the stream, blocking until playback finishes.
func (p *Player) PlayMP3(rc io.ReadCloser) error {
	streamer, format, err := mp3.Decode(rc)
	if err != nil {
		return goerr.Wrap(err, "failed to decode mp3")
	}
	defer streamer.Close()

	if err := p.ensure(format.SampleRate); err != nil {
		return err
	}

	var s beep.Streamer = streamer
	if format.SampleRate != p.baseRate {
		s = beep.Resample(4, format.SampleRate, p.baseRate, streamer)
	}

	done := make(chan struct{})
	speaker.Play(beep.Seq(s, beep.Callback(func() { close(done) })))
	<-done
	return nil
}

// Tone plays a sine beep, blocking for its duration. Used as the listening
// cue before the microphone opens.
func (p *Player) Tone(freq float64, dur time.Duration) error {
	const rate = beep.SampleRate(22050)

	if err := p.ensure(rate); err != nil {
		return err
	}

	tone, err := generators.SinTone(p.baseRate, int(freq))
	if err != nil {
		return goerr.Wrap(err, "failed to generate tone")
	}

	done := make(chan struct{})
	speaker.Play(beep.Seq(
		beep.Take(p.baseRate.N(dur), tone),
		beep.Callback(func() { close(done) }),
	))
	<-done
	return nil
}

// Stop drops everything queued on the speaker.
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ready {
		speaker.Clear()
	}
}
