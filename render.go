// SPDX-License-Identifier: EPL-2.0

package audgraph

import (
	"errors"
	"fmt"
	"io"

	"github.com/ik5/audgraph/buffer"
	"github.com/ik5/audgraph/formats/wav"
	"github.com/ik5/audgraph/graph"
)

var ErrNegativeFrames = errors.New("frame count must not be negative")

// LoadBuffer reads a sound file into a buffer at the graph's sample rate,
// keeping the file's channel count.
//
// Example:
//
//	b, err := audgraph.LoadBuffer(g, "break.wav")
//	if err != nil {
//	    return err
//	}
//	player, err := nodes.NewSampler(g, b, graph.Value(1), true)
func LoadBuffer(g *graph.Graph, path string) (*buffer.Buffer, error) {
	return buffer.Load(path, buffer.LoadOptions{SampleRate: g.Config().SampleRate})
}

// Render computes frames of output offline and returns one slice per output
// channel. The graph must not be running.
func Render(g *graph.Graph, frames int) ([][]float32, error) {
	if err := checkOffline(g, frames); err != nil {
		return nil, err
	}

	out := make([][]float32, g.Config().OutputChannels)
	for ch := range out {
		out[ch] = make([]float32, frames)
	}
	g.Render(out, frames)

	return out, nil
}

// RenderWAV renders frames of output offline into a PCM WAV stream of the
// given bit depth, one block at a time. The header is finalized before
// returning; ws itself is left open.
func RenderWAV(ws io.WriteSeeker, g *graph.Graph, frames, bitDepth int) error {
	if err := checkOffline(g, frames); err != nil {
		return err
	}

	cfg := g.Config()
	w, err := wav.NewWriter(ws, cfg.SampleRate, cfg.OutputChannels, bitDepth)
	if err != nil {
		return fmt.Errorf("render wav: %w", err)
	}

	block := make([][]float32, cfg.OutputChannels)
	views := make([][]float32, cfg.OutputChannels)
	for ch := range block {
		block[ch] = make([]float32, cfg.BlockSize)
	}

	for pos := 0; pos < frames; {
		n := min(frames-pos, cfg.BlockSize)
		g.Render(block, n)

		for ch := range block {
			views[ch] = block[ch][:n]
		}
		if err := w.WritePlanar(views); err != nil {
			return fmt.Errorf("render wav at frame %d: %w", pos, err)
		}
		pos += n
	}

	return w.Close()
}

func checkOffline(g *graph.Graph, frames int) error {
	if frames < 0 {
		return fmt.Errorf("%w: %d", ErrNegativeFrames, frames)
	}
	if g.Running() {
		return graph.ErrAlreadyRunning
	}

	return nil
}
