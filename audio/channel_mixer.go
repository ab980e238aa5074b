// SPDX-License-Identifier: EPL-2.0

package audio

import "fmt"

// ChannelMixer converts an interleaved source to a different channel count.
//
// Down-mixing averages every source channel c into output channel c % dst,
// so stereo to mono is the mean of left and right. Up-mixing repeats source
// channels cyclically, so mono to stereo duplicates the signal. The same rule
// is used by the graph when a node reads an input of a different width.
type ChannelMixer struct {
	src      Source
	channels int
	tmp      []float32
	counts   []float32
}

func NewChannelMixer(src Source, channels int) (*ChannelMixer, error) {
	if channels <= 0 || src.Channels() <= 0 {
		return nil, ErrInvalidChannels
	}

	m := &ChannelMixer{
		src:      src,
		channels: channels,
		tmp:      make([]float32, 4096),
		counts:   make([]float32, channels),
	}

	// number of source channels folded into each output channel
	for c := range src.Channels() {
		m.counts[c%channels]++
	}

	return m, nil
}

func (m *ChannelMixer) SampleRate() int { return m.src.SampleRate() }
func (m *ChannelMixer) Channels() int   { return m.channels }
func (m *ChannelMixer) Frames() int64   { return Frames(m.src) }

func (m *ChannelMixer) Close() error {
	if err := m.src.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}

	return nil
}

func (m *ChannelMixer) ReadSamples(dst []float32) (int, error) {
	if len(dst)%m.channels != 0 {
		return 0, ErrInvalidDstSize
	}
	if len(dst) == 0 {
		return 0, nil
	}

	srcChannels := m.src.Channels()
	if srcChannels == m.channels {
		return m.src.ReadSamples(dst)
	}

	frames := len(dst) / m.channels
	needed := frames * srcChannels
	if cap(m.tmp) < needed {
		m.tmp = make([]float32, needed)
	}
	m.tmp = m.tmp[:needed]

	n, err := m.src.ReadSamples(m.tmp)
	if n == 0 {
		return 0, err
	}
	got := n / srcChannels

	for f := range got {
		in := m.tmp[f*srcChannels : (f+1)*srcChannels]
		out := dst[f*m.channels : (f+1)*m.channels]

		if srcChannels < m.channels {
			for c := range out {
				out[c] = in[c%srcChannels]
			}
			continue
		}

		for c := range out {
			out[c] = 0
		}
		for c, v := range in {
			out[c%m.channels] += v
		}
		for c := range out {
			out[c] /= m.counts[c]
		}
	}

	return got * m.channels, err
}
