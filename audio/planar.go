// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"
)

// ReadPlanar drains src and returns its samples de-interleaved, one slice per
// channel. chunkFrames controls the read size; values <= 0 use 4096.
func ReadPlanar(src Source, chunkFrames int) ([][]float32, error) {
	channels := src.Channels()
	if channels <= 0 {
		return nil, ErrInvalidChannels
	}
	if chunkFrames <= 0 {
		chunkFrames = 4096
	}

	planar := make([][]float32, channels)
	if n := Frames(src); n > 0 {
		for c := range planar {
			planar[c] = make([]float32, 0, n)
		}
	}
	buf := make([]float32, chunkFrames*channels)
	// a partial frame left over from a source that returned an odd count
	var carry []float32

	for {
		n, err := src.ReadSamples(buf)
		if n > 0 {
			data := buf[:n]
			if len(carry) > 0 {
				data = append(carry, data...)
				carry = nil
			}

			frames := len(data) / channels
			for f := range frames {
				for c := range channels {
					planar[c] = append(planar[c], data[f*channels+c])
				}
			}
			if rest := data[frames*channels:]; len(rest) > 0 {
				carry = append([]float32(nil), rest...)
			}
		}

		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w", err)
		}
		if n == 0 {
			// a source that returns (0, nil) forever would spin; treat it as the end
			break
		}
	}

	return planar, nil
}
