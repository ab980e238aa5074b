// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"io"
	"math"
	"testing"
)

func drain(t *testing.T, src Source) []float32 {
	t.Helper()

	buf := make([]float32, 1024*src.Channels())
	var samples []float32
	for {
		n, err := src.ReadSamples(buf)
		samples = append(samples, buf[:n]...)
		if err == io.EOF {
			return samples
		}
		if err != nil {
			t.Fatalf("ReadSamples() error = %v", err)
		}
	}
}

func TestResampler_Metadata(t *testing.T) {
	t.Parallel()

	resampler := NewResampler(newSilentSource(44100, 2, 1000), 8000)

	if resampler.SampleRate() != 8000 {
		t.Errorf("SampleRate() = %d, want 8000", resampler.SampleRate())
	}
	if resampler.Channels() != 2 {
		t.Errorf("Channels() = %d, want 2", resampler.Channels())
	}
}

func TestResampler_Lengths(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		from, to int
		frames   int
		want     int
	}{
		{"same rate", 8000, 8000, 8000, 8000},
		{"downsample", 44100, 8000, 44100, 8000},
		{"upsample", 8000, 48000, 8000, 48000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			samples := drain(t, NewResampler(newSineSource(tt.from, 1, tt.frames, 440), tt.to))
			if diff := len(samples) - tt.want; diff < -2 || diff > 2 {
				t.Errorf("got %d samples, want ≈%d", len(samples), tt.want)
			}
			for i, s := range samples {
				if s < -1.5 || s > 1.5 {
					t.Fatalf("samples[%d] = %v, outside [-1.5, 1.5]", i, s)
				}
			}
		})
	}
}

func TestResampler_SameRateIsIdentity(t *testing.T) {
	t.Parallel()

	src := newMockSource(8000, 1, 16, func(s int, _ int) float32 { return float32(s) / 16 })
	samples := drain(t, NewResampler(src, 8000))

	if len(samples) != 16 {
		t.Fatalf("got %d samples, want 16", len(samples))
	}
	for i, s := range samples {
		if math.Abs(float64(s)-float64(i)/16) > 1e-6 {
			t.Errorf("samples[%d] = %v, want %v", i, s, float64(i)/16)
		}
	}
}

func TestResampler_Errors(t *testing.T) {
	t.Parallel()

	resampler := NewResampler(newSilentSource(8000, 2, 10), 16000)
	if _, err := resampler.ReadSamples(make([]float32, 3)); !errors.Is(err, ErrInvalidDstSize) {
		t.Errorf("ReadSamples(3) error = %v, want ErrInvalidDstSize", err)
	}

	broken := &failingSource{mockSource: *newSilentSource(8000, 1, 100)}
	resampler = NewResampler(broken, 8000)
	if _, err := resampler.ReadSamples(make([]float32, 10)); !errors.Is(err, errSourceBroken) {
		t.Errorf("ReadSamples() error = %v, want errSourceBroken", err)
	}
}

func TestResampler_EmptySource(t *testing.T) {
	t.Parallel()

	n, err := NewResampler(newSilentSource(8000, 1, 0), 16000).ReadSamples(make([]float32, 8))
	if n != 0 || err != io.EOF {
		t.Errorf("ReadSamples() = (%d, %v), want (0, EOF)", n, err)
	}
}

func BenchmarkResampler_Downsample(b *testing.B) {
	src := newSineSource(44100, 2, 44100, 440)
	buf := make([]float32, 4096)

	b.ReportAllocs()

	for b.Loop() {
		src.Reset()
		resampler := NewResampler(src, 8000)
		for {
			if _, err := resampler.ReadSamples(buf); err != nil {
				break
			}
		}
	}
}
