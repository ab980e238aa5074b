// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/ik5/audgraph/utils"
)

// Writer encodes float32 samples in [-1, 1] to integer PCM WAV.
// The header sizes are patched on Close, so the target must be seekable.
type Writer struct {
	enc      *wav.Encoder
	channels int
	bitDepth int
	buf      *goaudio.IntBuffer
	frames   int
	closed   bool
}

// NewWriter starts a WAV stream on ws. bitDepth is one of 8, 16, 24 or 32.
func NewWriter(ws io.WriteSeeker, sampleRate, channels, bitDepth int) (*Writer, error) {
	if channels <= 0 {
		return nil, ErrInvalidChannels
	}

	switch bitDepth {
	case 8, 16, 24, 32:
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, bitDepth)
	}

	return &Writer{
		enc:      wav.NewEncoder(ws, sampleRate, bitDepth, channels, wavFormatPCM),
		channels: channels,
		bitDepth: bitDepth,
		buf: &goaudio.IntBuffer{
			Format:         &goaudio.Format{NumChannels: channels, SampleRate: sampleRate},
			SourceBitDepth: bitDepth,
		},
	}, nil
}

// Write appends interleaved samples. len(samples) must be a multiple of the
// channel count.
func (w *Writer) Write(samples []float32) error {
	if w.closed {
		return ErrWriterClosed
	}
	if len(samples)%w.channels != 0 {
		return fmt.Errorf("%d samples for %d channels: %w", len(samples), w.channels, ErrInvalidChannels)
	}

	if cap(w.buf.Data) < len(samples) {
		w.buf.Data = make([]int, len(samples))
	}
	w.buf.Data = w.buf.Data[:len(samples)]

	for i, v := range samples {
		pcm := utils.Float32ToInt(v, w.bitDepth)
		if w.bitDepth == 8 {
			pcm += 128
		}
		w.buf.Data[i] = pcm
	}

	if err := w.enc.Write(w.buf); err != nil {
		return fmt.Errorf("encoding wav: %w", err)
	}
	w.frames += len(samples) / w.channels

	return nil
}

// WritePlanar interleaves one slice per channel and writes it. Channels
// shorter than the first are padded with silence.
func (w *Writer) WritePlanar(planar [][]float32) error {
	if len(planar) != w.channels {
		return fmt.Errorf("%d planes for %d channels: %w", len(planar), w.channels, ErrInvalidChannels)
	}

	frames := len(planar[0])
	interleaved := make([]float32, frames*w.channels)
	for c, plane := range planar {
		for f := range min(frames, len(plane)) {
			interleaved[f*w.channels+c] = plane[f]
		}
	}

	return w.Write(interleaved)
}

// Frames returns the number of frames written so far.
func (w *Writer) Frames() int { return w.frames }

// Close finalizes the header. The underlying writer is not closed.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	if err := w.enc.Close(); err != nil {
		return fmt.Errorf("finalizing wav: %w", err)
	}

	return nil
}

// Encode writes planar samples as a complete WAV file.
func Encode(ws io.WriteSeeker, sampleRate, bitDepth int, planar [][]float32) error {
	w, err := NewWriter(ws, sampleRate, len(planar), bitDepth)
	if err != nil {
		return err
	}

	if err := w.WritePlanar(planar); err != nil {
		return err
	}

	return w.Close()
}
