// SPDX-License-Identifier: EPL-2.0

package buffer

import (
	"bytes"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/ik5/audgraph/audio"
	"github.com/ik5/audgraph/formats/wav"
)

// writeTestWAV writes a stereo ramp: left counts up, right is constant.
func writeTestWAV(t *testing.T, sampleRate, frames int) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "ramp.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	left := make([]float32, frames)
	right := make([]float32, frames)
	for i := range frames {
		left[i] = float32(i) / float32(frames)
		right[i] = -0.5
	}

	if err := wav.Encode(f, sampleRate, 16, [][]float32{left, right}); err != nil {
		t.Fatalf("wav.Encode() error = %v", err)
	}

	return path
}

func TestLoad(t *testing.T) {
	t.Parallel()

	path := writeTestWAV(t, 8000, 800)

	b, err := Load(path, LoadOptions{})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if b.Channels() != 2 || b.Frames() != 800 || b.SampleRate() != 8000 {
		t.Fatalf("Load() = %d ch %d frames %d Hz, want 2 ch 800 frames 8000 Hz",
			b.Channels(), b.Frames(), b.SampleRate())
	}
	if b.Duration() != 0.1 {
		t.Errorf("Duration() = %v, want 0.1", b.Duration())
	}

	for _, f := range []int{0, 100, 799} {
		want := float64(f) / 800
		if got := b.At(0, float64(f)); math.Abs(float64(got)-want) > 1e-3 {
			t.Errorf("left[%d] = %v, want %v", f, got, want)
		}
		if got := b.At(1, float64(f)); math.Abs(float64(got)+0.5) > 1e-3 {
			t.Errorf("right[%d] = %v, want -0.5", f, got)
		}
	}
}

func TestLoad_Conversion(t *testing.T) {
	t.Parallel()

	path := writeTestWAV(t, 8000, 800)

	b, err := Load(path, LoadOptions{SampleRate: 16000, Channels: 1})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if b.Channels() != 1 || b.SampleRate() != 16000 {
		t.Fatalf("Load() = %d ch %d Hz, want 1 ch 16000 Hz", b.Channels(), b.SampleRate())
	}
	if b.Frames() != 1600 {
		t.Errorf("Frames() = %d, want 1600", b.Frames())
	}

	// mono is the mean of the ramp and -0.5
	if got := b.At(0, 800); math.Abs(float64(got)-(0.5-0.5)/2) > 0.01 {
		t.Errorf("mono[800] = %v, want ≈0", got)
	}
}

func TestLoad_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	junk := filepath.Join(dir, "junk.wav")
	if err := os.WriteFile(junk, []byte("not audio at all"), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		path string
		also error
	}{
		{"missing file", filepath.Join(dir, "missing.wav"), os.ErrNotExist},
		{"unknown extension", filepath.Join(dir, "loop.flac"), audio.ErrUnknownFormat},
		{"malformed", junk, wav.ErrNotWavFile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Load(tt.path, LoadOptions{})
			if !errors.Is(err, ErrLoad) {
				t.Errorf("Load() error = %v, want ErrLoad", err)
			}
			if !errors.Is(err, tt.also) {
				t.Errorf("Load() error = %v, want it to wrap %v", err, tt.also)
			}
		})
	}
}

func TestDecode(t *testing.T) {
	t.Parallel()

	data, err := os.ReadFile(writeTestWAV(t, 8000, 10))
	if err != nil {
		t.Fatal(err)
	}

	b, err := Decode(bytes.NewReader(data), ".WAV", LoadOptions{})
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if b.Frames() != 10 {
		t.Errorf("Frames() = %d, want 10", b.Frames())
	}

	if _, err := Decode(bytes.NewReader(data), "flac", LoadOptions{}); !errors.Is(err, audio.ErrUnknownFormat) {
		t.Errorf("Decode(flac) error = %v, want ErrUnknownFormat", err)
	}
}

func TestDefaultRegistry(t *testing.T) {
	t.Parallel()

	for _, ext := range []string{"wav", "aiff", "aif", "mp3", "ogg"} {
		if _, ok := DefaultRegistry().Get(ext); !ok {
			t.Errorf("DefaultRegistry() has no decoder for %q", ext)
		}
	}
}
