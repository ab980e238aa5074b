// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/ik5/audgraph/audio"
)

// mockOggVorbisReader simulates the oggvorbis.Reader for testing
type mockOggVorbisReader struct {
	sampleRate int
	channels   int
	samples    []float32
	offset     int
	err        error
}

func (m *mockOggVorbisReader) SampleRate() int { return m.sampleRate }
func (m *mockOggVorbisReader) Channels() int   { return m.channels }

func (m *mockOggVorbisReader) Read(buf []float32) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	if m.offset >= len(m.samples) {
		return 0, io.EOF
	}

	n := copy(buf, m.samples[m.offset:])
	n -= n % m.channels
	m.offset += n

	return n, nil
}

func newMockSource(channels int, samples []float32) *source {
	return &source{
		dec:        &mockOggVorbisReader{sampleRate: 48000, channels: channels, samples: samples},
		sampleRate: 48000,
		channels:   channels,
		frames:     int64(len(samples) / channels),
	}
}

func TestDecoder_InvalidInput(t *testing.T) {
	t.Parallel()

	for _, data := range [][]byte{[]byte("This is not Ogg data"), nil} {
		if _, err := (Decoder{}).Decode(bytes.NewReader(data)); err == nil {
			t.Errorf("Decode(%q) error = nil, want error", data)
		}
	}
}

func TestSource_ReadSamples(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		channels int
		samples  []float32
		dstLen   int
		want     int
	}{
		{"mono", 1, []float32{0.1, 0.2, 0.3}, 8, 3},
		{"stereo", 2, []float32{0.1, -0.1, 0.2, -0.2}, 4, 4},
		{"stereo odd dst", 2, []float32{0.1, -0.1, 0.2, -0.2}, 3, 2},
		{"5.1", 6, make([]float32, 12), 12, 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			src := newMockSource(tt.channels, tt.samples)
			dst := make([]float32, tt.dstLen)

			n, err := src.ReadSamples(dst)
			if err != nil {
				t.Fatalf("ReadSamples() error = %v", err)
			}
			if n != tt.want {
				t.Fatalf("ReadSamples() n = %d, want %d", n, tt.want)
			}
			for i := range n {
				if dst[i] != tt.samples[i] {
					t.Errorf("dst[%d] = %v, want %v", i, dst[i], tt.samples[i])
				}
			}
		})
	}
}

func TestSource_Frames(t *testing.T) {
	t.Parallel()

	samples := []float32{0.1, -0.1, 0.2, -0.2, 0.3, -0.3}
	src := newMockSource(2, samples)
	if got := audio.Frames(src); got != 3 {
		t.Fatalf("Frames() = %d, want 3", got)
	}

	planar, err := audio.ReadPlanar(src, 0)
	if err != nil {
		t.Fatalf("ReadPlanar() error = %v", err)
	}
	if cap(planar[0]) != 3 {
		t.Errorf("cap(planar[0]) = %d, want 3", cap(planar[0]))
	}
	if planar[0][2] != 0.3 || planar[1][2] != -0.3 {
		t.Errorf("planar = %v", planar)
	}
}

func TestSource_ReadSamples_EOF(t *testing.T) {
	t.Parallel()

	src := newMockSource(2, []float32{0.5, 0.5})
	dst := make([]float32, 4)

	if n, _ := src.ReadSamples(dst); n != 2 {
		t.Fatalf("ReadSamples() n = %d, want 2", n)
	}
	if n, err := src.ReadSamples(dst); n != 0 || err != io.EOF {
		t.Errorf("ReadSamples() after end = (%d, %v), want (0, EOF)", n, err)
	}
}

func TestSource_ReadSamples_Error(t *testing.T) {
	t.Parallel()

	src := newMockSource(1, nil)
	src.dec.(*mockOggVorbisReader).err = io.ErrUnexpectedEOF

	if _, err := src.ReadSamples(make([]float32, 4)); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("ReadSamples() error = %v, want io.ErrUnexpectedEOF", err)
	}
}

func BenchmarkSource_ReadSamples(b *testing.B) {
	samples := make([]float32, 48000*2)
	buf := make([]float32, 4096)

	b.ReportAllocs()

	for b.Loop() {
		src := newMockSource(2, samples)
		for {
			if _, err := src.ReadSamples(buf); err != nil {
				break
			}
		}
	}
}
