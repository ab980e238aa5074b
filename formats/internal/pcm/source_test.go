// SPDX-License-Identifier: EPL-2.0

package pcm

import (
	"errors"
	"io"
	"math"
	"testing"

	goaudio "github.com/go-audio/audio"
	"github.com/ik5/audgraph/audio"
)

// mockReader hands out samples the way the go-audio decoders do, reporting
// io.EOF together with the final chunk.
type mockReader struct {
	samples []int
	offset  int
	err     error
}

func (m *mockReader) Format() *goaudio.Format {
	return &goaudio.Format{NumChannels: 1, SampleRate: 44100}
}

func (m *mockReader) PCMBuffer(buf *goaudio.IntBuffer) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	if m.offset >= len(m.samples) {
		return 0, io.EOF
	}

	n := copy(buf.Data, m.samples[m.offset:])
	m.offset += n

	if m.offset >= len(m.samples) {
		return n, io.EOF
	}
	return n, nil
}

func newSource(t testing.TB, layout Layout, samples ...int) *Source {
	t.Helper()

	src, err := NewSource(&mockReader{samples: samples}, layout)
	if err != nil {
		t.Fatalf("NewSource() error = %v", err)
	}
	return src
}

func TestNewSource_Layout(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		layout Layout
		want   error
	}{
		{"16-bit stereo", Layout{Channels: 2, BitDepth: 16}, nil},
		{"12-bit", Layout{Channels: 1, BitDepth: 12}, ErrBitDepth},
		{"zero depth", Layout{Channels: 1}, ErrBitDepth},
		{"no channels", Layout{BitDepth: 24}, audio.ErrInvalidChannels},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := NewSource(&mockReader{}, tt.layout)
			if !errors.Is(err, tt.want) {
				t.Errorf("NewSource() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestSource_ReadSamples(t *testing.T) {
	t.Parallel()

	src := newSource(t, Layout{SampleRate: 44100, Channels: 2, BitDepth: 16, Frames: 2}, 0, 16384, -16384, 32767)

	if src.SampleRate() != 44100 || src.Channels() != 2 || src.Frames() != 2 {
		t.Fatalf("metadata = %d Hz %d ch %d frames", src.SampleRate(), src.Channels(), src.Frames())
	}

	dst := make([]float32, 4)
	n, err := src.ReadSamples(dst)
	if n != 4 {
		t.Fatalf("ReadSamples() n = %d, want 4", n)
	}
	if err != io.EOF {
		t.Errorf("ReadSamples() error = %v, want io.EOF with the last samples", err)
	}

	want := []float32{0, 0.5, -0.5, 32767.0 / 32768.0}
	for i := range want {
		if dst[i] != want[i] {
			t.Errorf("dst[%d] = %v, want %v", i, dst[i], want[i])
		}
	}

	if n, err := src.ReadSamples(dst); n != 0 || err != io.EOF {
		t.Errorf("ReadSamples() after end = (%d, %v), want (0, EOF)", n, err)
	}
}

func TestSource_ShortReadIsEOF(t *testing.T) {
	t.Parallel()

	src, err := NewSource(&shortReader{}, Layout{Channels: 1, BitDepth: 16})
	if err != nil {
		t.Fatal(err)
	}

	n, err := src.ReadSamples(make([]float32, 8))
	if n != 3 || err != io.EOF {
		t.Errorf("ReadSamples() = (%d, %v), want (3, EOF)", n, err)
	}
}

// shortReader returns fewer samples than asked without an error.
type shortReader struct{ mockReader }

func (s *shortReader) PCMBuffer(buf *goaudio.IntBuffer) (int, error) {
	return copy(buf.Data, []int{1, 2, 3}), nil
}

func TestSource_MultipleReads(t *testing.T) {
	t.Parallel()

	samples := make([]int, 100)
	for i := range samples {
		samples[i] = i * 100
	}
	src := newSource(t, Layout{Channels: 1, BitDepth: 16}, samples...)

	dst := make([]float32, 30)
	total := 0
	for {
		n, err := src.ReadSamples(dst)
		total += n
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("ReadSamples() error = %v", err)
		}
	}

	if total != 100 {
		t.Errorf("read %d samples, want 100", total)
	}
}

func TestSource_Errors(t *testing.T) {
	t.Parallel()

	broken := errors.New("disk on fire")
	src, err := NewSource(&mockReader{err: broken}, Layout{Channels: 1, BitDepth: 16})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := src.ReadSamples(make([]float32, 4)); !errors.Is(err, broken) {
		t.Errorf("ReadSamples() error = %v, want %v", err, broken)
	}
	if n, err := src.ReadSamples(nil); n != 0 || err != nil {
		t.Errorf("ReadSamples(nil) = (%d, %v), want (0, nil)", n, err)
	}
}

func TestSource_BitDepthNormalization(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		bitDepth  int
		unsigned8 bool
		raw       int
		want      float32
	}{
		{"8-bit signed max", 8, false, 127, 127.0 / 128},
		{"8-bit signed min", 8, false, -128, -1},
		{"8-bit unsigned max", 8, true, 255, 127.0 / 128},
		{"8-bit unsigned mid", 8, true, 128, 0},
		{"8-bit unsigned min", 8, true, 0, -1},
		{"16-bit min", 16, true, -32768, -1},
		{"24-bit", 24, false, 4194304, 0.5},
		{"32-bit", 32, false, -1073741824, -0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			src := newSource(t, Layout{Channels: 1, BitDepth: tt.bitDepth, Unsigned8: tt.unsigned8}, tt.raw)

			dst := make([]float32, 1)
			if n, _ := src.ReadSamples(dst); n != 1 {
				t.Fatalf("ReadSamples() n = %d, want 1", n)
			}
			if math.Abs(float64(dst[0]-tt.want)) > 1e-6 {
				t.Errorf("ReadSamples() = %v, want %v", dst[0], tt.want)
			}
		})
	}
}

func TestSource_FramesSizesPlanar(t *testing.T) {
	t.Parallel()

	src := newSource(t, Layout{Channels: 2, BitDepth: 24, Frames: 3}, 1<<22, -(1 << 22), 0, 0, 1<<21, 1<<21)

	planar, err := audio.ReadPlanar(src, 2)
	if err != nil {
		t.Fatalf("ReadPlanar() error = %v", err)
	}
	if cap(planar[0]) != 3 || len(planar[1]) != 3 {
		t.Errorf("planar cap/len = %d/%d, want 3/3", cap(planar[0]), len(planar[1]))
	}
	if planar[0][0] != 0.5 || planar[1][0] != -0.5 || planar[1][2] != 0.25 {
		t.Errorf("planar = %v", planar)
	}
}

func TestSource_ReadDoesNotAllocate(t *testing.T) {
	samples := make([]int, 1<<16)
	src := newSource(t, Layout{Channels: 2, BitDepth: 16}, samples...)
	dst := make([]float32, 512)

	if _, err := src.ReadSamples(dst); err != nil {
		t.Fatal(err)
	}

	allocs := testing.AllocsPerRun(50, func() {
		_, _ = src.ReadSamples(dst)
	})
	if allocs != 0 {
		t.Errorf("ReadSamples() allocates %v times per call", allocs)
	}
}

func BenchmarkSource_ReadSamples(b *testing.B) {
	samples := make([]int, 44100*2)
	buf := make([]float32, 4096)

	b.ReportAllocs()

	for b.Loop() {
		src := newSource(b, Layout{Channels: 2, BitDepth: 16}, samples...)
		for {
			if _, err := src.ReadSamples(buf); err != nil {
				break
			}
		}
	}
}
