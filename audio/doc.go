// SPDX-License-Identifier: EPL-2.0

// Package audio provides the streaming primitives shared by decoders, the
// buffer loader and the audio backends.
//
// A Source yields interleaved float32 samples in [-1, 1]:
//
//	type Source interface {
//	    SampleRate() int
//	    Channels() int
//	    ReadSamples(dst []float32) (int, error)
//	    Close() error
//	}
//
// ReadSamples returns the number of float32 values written, not frames, and
// io.EOF once the stream is drained.
//
// Sources chain. A Resampler converts the sample rate with cubic
// interpolation, and a ChannelMixer changes the channel count:
//
//	src := audio.NewResampler(decoded, 48000)
//	stereo, err := audio.NewChannelMixer(src, 2)
//
// Sources that read a container header implement Sized. Frames asks any
// Source for its length and gets -1 when it is unknown. Resampler and
// ChannelMixer pass the answer through, scaled to their output, and
// ReadPlanar uses it to allocate each channel once:
//
//	planar, err := audio.ReadPlanar(stereo, 0)
//
// ReadPlanar drains a Source into one slice per channel, which is the layout
// sample buffers use.
//
// Decoders are looked up by file extension through a Registry:
//
//	registry := audio.NewRegistry()
//	registry.Register("wav", wav.Decoder{})
//	decoder, err := registry.ForPath("loop.wav")
package audio
