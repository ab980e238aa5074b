// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"bytes"
	"fmt"
	"io"

	"github.com/go-audio/wav"
	"github.com/ik5/audgraph/audio"
	"github.com/ik5/audgraph/formats/internal/pcm"
)

// wavFormatPCM is the WAVE_FORMAT_PCM tag of the fmt chunk.
const wavFormatPCM = 1

type Decoder struct{}

// Decode parses the fmt chunk of r and forwards to the data chunk, so the
// returned source knows its length.
func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	// go-audio needs to seek between chunks
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("reading wav data: %w", err)
		}
		rs = bytes.NewReader(data)
	}

	dec := wav.NewDecoder(rs)
	if !dec.IsValidFile() {
		return nil, ErrNotWavFile
	}

	dec.ReadInfo()
	if dec.Err() != nil {
		return nil, fmt.Errorf("reading wav header: %w", dec.Err())
	}

	if dec.WavAudioFormat != wavFormatPCM {
		return nil, ErrUnsupportedEncoding
	}
	if dec.NumChans == 0 {
		return nil, ErrInvalidChannels
	}

	layout := pcm.Layout{
		SampleRate: int(dec.SampleRate),
		Channels:   int(dec.NumChans),
		BitDepth:   int(dec.BitDepth),
		Unsigned8:  true,
	}

	if err := layout.Check(); err != nil {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, dec.BitDepth)
	}

	if err := dec.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("locating wav data: %w", err)
	}
	layout.Frames = pcmFrames(dec.PCMLen(), layout.Channels, layout.BitDepth)

	src, err := pcm.NewSource(dec, layout)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	return src, nil
}

// pcmFrames converts the data chunk size to frames. The size is only read
// once the decoder reaches the data chunk, so zero means unknown.
func pcmFrames(size int64, channels, bitDepth int) int64 {
	frameSize := int64(channels * bitDepth / 8)
	if size <= 0 || frameSize <= 0 {
		return -1
	}

	return size / frameSize
}
