// SPDX-License-Identifier: EPL-2.0

// Package pcm streams integer PCM from the go-audio container decoders as
// normalized float32.
package pcm

import (
	"errors"
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	"github.com/ik5/audgraph/audio"
	"github.com/ik5/audgraph/utils"
)

var ErrBitDepth = errors.New("bit depth must be 8, 16, 24 or 32")

// IntReader is the part of wav.Decoder and aiff.Decoder a Source reads from.
type IntReader interface {
	Format() *goaudio.Format
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
}

// Layout describes the samples behind an IntReader.
type Layout struct {
	SampleRate int
	Channels   int
	BitDepth   int
	// Unsigned8 marks 8-bit data stored with a 128 offset, as WAV does.
	Unsigned8 bool
	// Frames is the length from the container header, negative if unknown.
	Frames int64
}

// Source adapts an IntReader to audio.Source.
type Source struct {
	dec    IntReader
	layout Layout
	buf    goaudio.IntBuffer
}

// Check reports whether a Source can convert samples of this layout.
func (l Layout) Check() error {
	switch l.BitDepth {
	case 8, 16, 24, 32:
	default:
		return fmt.Errorf("%w: got %d", ErrBitDepth, l.BitDepth)
	}
	if l.Channels <= 0 {
		return audio.ErrInvalidChannels
	}

	return nil
}

// NewSource checks the layout and wraps dec.
func NewSource(dec IntReader, layout Layout) (*Source, error) {
	if err := layout.Check(); err != nil {
		return nil, err
	}

	return &Source{
		dec:    dec,
		layout: layout,
		buf: goaudio.IntBuffer{
			Format:         dec.Format(),
			SourceBitDepth: layout.BitDepth,
		},
	}, nil
}

func (s *Source) SampleRate() int { return s.layout.SampleRate }
func (s *Source) Channels() int   { return s.layout.Channels }
func (s *Source) Frames() int64   { return s.layout.Frames }
func (s *Source) Close() error    { return nil }

// ReadSamples converts the next len(dst) integers. A short read from the
// container is the end of the data chunk and is reported with io.EOF.
func (s *Source) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}

	if cap(s.buf.Data) < len(dst) {
		s.buf.Data = make([]int, len(dst))
	}
	s.buf.Data = s.buf.Data[:len(dst)]

	n, err := s.dec.PCMBuffer(&s.buf)
	if err != nil && err != io.EOF {
		return s.convert(dst, n), fmt.Errorf("%w", err)
	}

	n = s.convert(dst, n)
	if n < len(dst) || err == io.EOF {
		return n, io.EOF
	}

	return n, nil
}

func (s *Source) convert(dst []float32, n int) int {
	depth := s.layout.BitDepth
	offset := 0
	if depth == 8 && s.layout.Unsigned8 {
		offset = 128
	}

	for i, v := range s.buf.Data[:n] {
		dst[i] = utils.IntToFloat32(v-offset, depth)
	}

	return n
}
