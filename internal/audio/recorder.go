package audio

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/gordonklaus/portaudio"
	"github.com/m-mizutani/goerr/v2"
)

const (
	SampleRate = 16000
	frameSize  = 320 // 20ms at 16kHz
)

// Recorder captures microphone audio with RMS endpointing: recording starts
// on the first loud frame and stops after a run of silence.
type Recorder struct {
	SilenceThreshold float64       // RMS below this counts as silence
	SilenceDuration  time.Duration // trailing silence that ends the utterance
	MaxDuration      time.Duration // hard cap per utterance
	ListenTimeout    time.Duration // give up if speech never starts
}

func NewRecorder() *Recorder {
	return &Recorder{
		SilenceThreshold: 0.015,
		SilenceDuration:  1200 * time.Millisecond,
		MaxDuration:      10 * time.Second,
		ListenTimeout:    10 * time.Second,
	}
}

func (r *Recorder) Init() error {
	return portaudio.Initialize()
}

func (r *Recorder) Close() {
	portaudio.Terminate()
}

// ErrNoSpeech is returned when the listen timeout passes without any speech.
var ErrNoSpeech = goerr.New("no speech detected")

// RecordAuto blocks until an utterance is captured and returns 16kHz mono
// float32 samples covering the speech plus its trailing silence.
func (r *Recorder) RecordAuto() ([]float32, error) {
	buf := make([]float32, frameSize)
	out := make([]float32, 0, SampleRate*3)

	stream, err := portaudio.OpenDefaultStream(1, 0, SampleRate, len(buf), buf)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open input stream")
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return nil, goerr.Wrap(err, "failed to start input stream")
	}
	defer stream.Stop()

	frameDur := 20 * time.Millisecond
	silenceFramesNeeded := int(r.SilenceDuration / frameDur)
	maxFrames := int(r.MaxDuration / frameDur)
	listenFrames := int(r.ListenTimeout / frameDur)

	var (
		speaking      bool
		silenceFrames int
		idleFrames    int
	)

	for i := 0; i < maxFrames+listenFrames; i++ {
		if err := stream.Read(); err != nil {
			return nil, goerr.Wrap(err, "input stream read failed")
		}

		rms := frameRMS(buf)

		if rms > r.SilenceThreshold {
			speaking = true
			silenceFrames = 0
			out = append(out, buf...)
			continue
		}

		if !speaking {
			idleFrames++
			if idleFrames >= listenFrames {
				return nil, ErrNoSpeech
			}
			continue
		}

		silenceFrames++
		out = append(out, buf...)
		if silenceFrames >= silenceFramesNeeded {
			break
		}
		if len(out) >= maxFrames*frameSize {
			break
		}
	}

	if !speaking {
		return nil, ErrNoSpeech
	}
	return out, nil
}

func frameRMS(f []float32) float64 {
	var s float64
	for _, x := range f {
		s += float64(x * x)
	}
	return math.Sqrt(s / float64(len(f)))
}

// SaveWAV dumps samples as 16-bit mono PCM, used when recording retention is
// enabled for debugging transcription issues.
func SaveWAV(dir string, samples []float32) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", goerr.Wrap(err, "failed to create recordings dir")
	}

	path := filepath.Join(dir, fmt.Sprintf("utterance_%s.wav", time.Now().Format("20060102_150405")))
	f, err := os.Create(path)
	if err != nil {
		return "", goerr.Wrap(err, "failed to create wav file")
	}
	defer f.Close()

	enc := wav.NewEncoder(f, SampleRate, 16, 1, 1)

	ints := make([]int, len(samples))
	for i, s := range samples {
		v := int(s * math.MaxInt16)
		if v > math.MaxInt16 {
			v = math.MaxInt16
		}
		if v < math.MinInt16 {
			v = math.MinInt16
		}
		ints[i] = v
	}

	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: SampleRate},
		Data:           ints,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		return "", goerr.Wrap(err, "failed to write wav data")
	}
	if err := enc.Close(); err != nil {
		return "", goerr.Wrap(err, "failed to finalize wav file")
	}
	return path, nil
}
