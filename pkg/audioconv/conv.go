// Package audioconv decodes audio files into the mono 16kHz float32 PCM the
// transcriber expects. WAV, MP3, Ogg Vorbis and Ogg Opus are supported,
// which covers what voice memo apps and messengers typically produce.
package audioconv

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
	"github.com/m-mizutani/goerr/v2"
	popus "github.com/pekim/opus"
)

const targetRate = 16000

// DecodeFile reads the file and returns mono 16kHz samples. The format is
// picked by extension, falling back to magic-byte sniffing.
func DecodeFile(path string) ([]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open audio file")
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		return postprocess(decodeWAV(f))
	case ".mp3":
		return postprocess(decodeMP3(f))
	case ".ogg", ".oga":
		return decodeOgg(f)
	}

	br := bufio.NewReader(f)
	magic, _ := br.Peek(4)
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, goerr.Wrap(err, "seek failed")
	}
	switch string(magic) {
	case "RIFF":
		return postprocess(decodeWAV(f))
	case "OggS":
		return decodeOgg(f)
	default:
		return nil, goerr.New("unsupported audio format", goerr.V("path", path))
	}
}

// decodeOgg tries Vorbis first, then Opus. Both live in the same container
// so the extension alone cannot tell them apart.
func decodeOgg(f *os.File) ([]float32, error) {
	if samples, rate, channels, err := decodeVorbis(f); err == nil {
		return postprocess(samples, rate, channels, nil)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, goerr.Wrap(err, "seek failed")
	}
	samples, rate, channels, err := decodeOpus(f)
	if err != nil {
		return nil, goerr.Wrap(err, "ogg stream is neither vorbis nor opus")
	}
	return postprocess(samples, rate, channels, nil)
}

// postprocess downmixes to mono and resamples to the target rate.
func postprocess(samples []float32, rate, channels int, err error) ([]float32, error) {
	if err != nil {
		return nil, err
	}
	if len(samples) == 0 {
		return nil, goerr.New("audio file contains no samples")
	}
	if channels > 1 {
		samples = downmix(samples, channels)
	}
	if rate != targetRate {
		samples = resample(samples, rate, targetRate)
	}
	return samples, nil
}

func decodeWAV(r io.ReadSeeker) ([]float32, int, int, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, 0, 0, goerr.New("not a valid wav file")
	}

	pb, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, 0, goerr.Wrap(err, "failed to read wav data")
	}
	if pb == nil || len(pb.Data) == 0 {
		return nil, 0, 0, goerr.New("empty wav file")
	}

	depth := int(dec.BitDepth)
	if depth == 0 {
		depth = 16
	}

	rate, channels := 44100, 1
	if pb.Format != nil {
		if pb.Format.SampleRate > 0 {
			rate = pb.Format.SampleRate
		}
		if pb.Format.NumChannels > 0 {
			channels = pb.Format.NumChannels
		}
	}

	samples := make([]float32, len(pb.Data))
	scale := 1.0 / float64(int64(1)<<(depth-1))
	for i, v := range pb.Data {
		samples[i] = float32(clamp(float64(v)*scale, -1, 1))
	}
	return samples, rate, channels, nil
}

func decodeMP3(r io.Reader) ([]float32, int, int, error) {
	dec, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, 0, 0, goerr.Wrap(err, "failed to decode mp3")
	}

	var raw bytes.Buffer
	if _, err := io.Copy(&raw, dec); err != nil {
		return nil, 0, 0, goerr.Wrap(err, "failed to read mp3 data")
	}

	ints := make([]int16, raw.Len()/2)
	if err := binary.Read(bytes.NewReader(raw.Bytes()), binary.LittleEndian, &ints); err != nil {
		return nil, 0, 0, goerr.Wrap(err, "failed to parse mp3 pcm")
	}

	rate := dec.SampleRate()
	if rate <= 0 {
		rate = 44100
	}
	// go-mp3 always emits interleaved stereo
	return int16ToFloat32(ints), rate, 2, nil
}

func decodeVorbis(r io.Reader) ([]float32, int, int, error) {
	pcm, format, err := oggvorbis.ReadAll(r)
	if err != nil {
		return nil, 0, 0, err
	}
	if format == nil || format.Channels <= 0 || format.SampleRate <= 0 {
		return nil, 0, 0, goerr.New("invalid vorbis stream")
	}
	return pcm, format.SampleRate, format.Channels, nil
}

func decodeOpus(rs io.ReadSeeker) ([]float32, int, int, error) {
	dec, err := popus.NewDecoder(rs)
	if err != nil {
		return nil, 0, 0, err
	}
	defer dec.Destroy()

	channels := dec.ChannelCount()
	if channels <= 0 {
		channels = 1
	}

	var (
		samples []float32
		buf     = make([]int16, 48000*channels/2)
	)
	for {
		n, err := dec.Read(buf)
		if n > 0 {
			samples = append(samples, int16ToFloat32(buf[:n*channels])...)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, 0, 0, goerr.Wrap(err, "failed to read opus stream")
		}
	}

	// opus always decodes at 48k
	return samples, 48000, channels, nil
}

func int16ToFloat32(data []int16) []float32 {
	out := make([]float32, len(data))
	const scale = 1.0 / 32768.0
	for i, v := range data {
		out[i] = float32(float64(v) * scale)
	}
	return out
}

func downmix(in []float32, channels int) []float32 {
	frames := len(in) / channels
	out := make([]float32, frames)
	for i := 0; i < frames; i++ {
		var sum float64
		for c := 0; c < channels; c++ {
			sum += float64(in[i*channels+c])
		}
		out[i] = float32(sum / float64(channels))
	}
	return out
}

func resample(in []float32, inRate, outRate int) []float32 {
	if inRate == outRate || len(in) == 0 {
		return in
	}
	ratio := float64(outRate) / float64(inRate)
	n := int(math.Ceil(float64(len(in)) * ratio))
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		src := float64(i) / ratio
		i0 := int(math.Floor(src))
		if i0 >= len(in) {
			out[i] = in[len(in)-1]
			continue
		}
		i1 := i0 + 1
		if i1 >= len(in) {
			out[i] = in[i0]
			continue
		}
		a := float32(src - float64(i0))
		out[i] = in[i0]*(1-a) + in[i1]*a
	}
	return out
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
