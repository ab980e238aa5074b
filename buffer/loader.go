// SPDX-License-Identifier: EPL-2.0

package buffer

import (
	"fmt"
	"io"
	"os"

	"github.com/ik5/audgraph/audio"
	"github.com/ik5/audgraph/formats/aiff"
	"github.com/ik5/audgraph/formats/mp3"
	"github.com/ik5/audgraph/formats/vorbis"
	"github.com/ik5/audgraph/formats/wav"
)

// LoadOptions controls how a sound file becomes a Buffer.
type LoadOptions struct {
	// SampleRate resamples the file when non-zero and different.
	SampleRate int
	// Channels up or down-mixes the file when non-zero and different.
	Channels int
	// Registry overrides the decoders from DefaultRegistry.
	Registry *audio.Registry
}

// DefaultRegistry returns a registry with every bundled decoder, keyed by
// the usual file extensions.
func DefaultRegistry() *audio.Registry {
	r := audio.NewRegistry()
	r.Register("wav", wav.Decoder{})
	r.Register("wave", wav.Decoder{})
	r.Register("aif", aiff.Decoder{})
	r.Register("aiff", aiff.Decoder{})
	r.Register("mp3", mp3.Decoder{})
	r.Register("ogg", vorbis.Decoder{})
	r.Register("oga", vorbis.Decoder{})

	return r
}

func (o LoadOptions) registry() *audio.Registry {
	if o.Registry != nil {
		return o.Registry
	}
	return DefaultRegistry()
}

// Load reads the sound file at path into memory. The decoder is chosen by
// file extension. Every failure wraps ErrLoad.
func Load(path string, opts LoadOptions) (*Buffer, error) {
	dec, err := opts.registry().ForPath(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrLoad, path, err)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}
	defer f.Close()

	b, err := decode(f, dec, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrLoad, path, err)
	}

	return b, nil
}

// Decode is Load for an already open stream; format is a registry key such
// as "wav" or ".ogg".
func Decode(r io.Reader, format string, opts LoadOptions) (*Buffer, error) {
	dec, ok := opts.registry().Get(format)
	if !ok {
		return nil, fmt.Errorf("%w: %q: %w", ErrLoad, format, audio.ErrUnknownFormat)
	}

	b, err := decode(r, dec, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}

	return b, nil
}

func decode(r io.Reader, dec audio.Decoder, opts LoadOptions) (*Buffer, error) {
	src, err := dec.Decode(r)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	if opts.SampleRate > 0 && opts.SampleRate != src.SampleRate() {
		src = audio.NewResampler(src, opts.SampleRate)
	}

	if opts.Channels > 0 && opts.Channels != src.Channels() {
		mixed, err := audio.NewChannelMixer(src, opts.Channels)
		if err != nil {
			return nil, err
		}
		src = mixed
	}

	planar, err := audio.ReadPlanar(src, 0)
	if err != nil {
		return nil, err
	}

	b, err := FromPlanar(planar, src.SampleRate())
	if err != nil {
		return nil, fmt.Errorf("no audio frames: %w", err)
	}

	return b, nil
}
