package audioconv

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/m-mizutani/gt"
)

func TestDownmix(t *testing.T) {
	stereo := []float32{1, 0, 0.5, 0.5, -1, 1}
	mono := downmix(stereo, 2)

	gt.A(t, mono).Length(3)
	gt.V(t, mono[0]).Equal(0.5)
	gt.V(t, mono[1]).Equal(0.5)
	gt.V(t, mono[2]).Equal(0)
}

func TestResample(t *testing.T) {
	in := make([]float32, 32000)
	out := resample(in, 32000, 16000)
	gt.V(t, len(out)).Equal(16000)

	same := resample(in, 16000, 16000)
	gt.V(t, len(same)).Equal(len(in))
}

func TestInt16ToFloat32(t *testing.T) {
	out := int16ToFloat32([]int16{0, 16384, -32768})
	gt.V(t, out[0]).Equal(0)
	gt.True(t, math.Abs(float64(out[1])-0.5) < 0.001)
	gt.V(t, out[2]).Equal(-1)
}

func TestDecodeFileWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tone.wav")
	writeTestWAV(t, path, 8000, 1, 800)

	samples, err := DecodeFile(path)
	gt.NoError(t, err)
	// 800 samples at 8kHz resampled to 16kHz
	gt.True(t, len(samples) >= 1599 && len(samples) <= 1601)
}

func TestDecodeFileUnknown(t *testing.T) {
	path := filepath.Join(t.TempDir(), "noise.bin")
	gt.NoError(t, os.WriteFile(path, []byte("not audio data"), 0o644))

	_, err := DecodeFile(path)
	gt.Error(t, err)
}

func writeTestWAV(t *testing.T, path string, rate, channels, frames int) {
	t.Helper()

	f, err := os.Create(path)
	gt.NoError(t, err)
	defer f.Close()

	enc := wav.NewEncoder(f, rate, 16, channels, 1)
	data := make([]int, frames*channels)
	for i := range data {
		data[i] = int(10000 * math.Sin(float64(i)/10))
	}
	gt.NoError(t, enc.Write(&audio.IntBuffer{
		Format:         &audio.Format{NumChannels: channels, SampleRate: rate},
		Data:           data,
		SourceBitDepth: 16,
	}))
	gt.NoError(t, enc.Close())
}
