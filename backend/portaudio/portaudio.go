// SPDX-License-Identifier: EPL-2.0

// Package portaudio drives a graph from a github.com/gordonklaus/portaudio
// callback stream on the default devices. When the graph has input
// channels the stream is duplex and captured audio reaches the graph
// through a ring buffer.
package portaudio

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	pa "github.com/gordonklaus/portaudio"
	"github.com/ik5/audgraph/graph"
	"github.com/ik5/audgraph/internal/ring"
)

var ErrNotInitialized = errors.New("portaudio backend not initialized")

// DefaultInputBlocks is the capture ring size, in blocks.
const DefaultInputBlocks = 4

const xrunFlags = pa.InputUnderflow | pa.InputOverflow | pa.OutputUnderflow | pa.OutputOverflow

// Config configures a Backend.
type Config struct {
	// InputBlocks sizes the capture ring.
	// Default: DefaultInputBlocks
	InputBlocks int
}

type stream interface {
	Start() error
	Stop() error
	Close() error
}

type driver struct {
	initialize func() error
	terminate  func() error
	open       func(in, out int, rate float64, frames int, callback any) (stream, error)
}

var defaultDriver = driver{
	initialize: pa.Initialize,
	terminate:  pa.Terminate,
	open: func(in, out int, rate float64, frames int, callback any) (stream, error) {
		return pa.OpenDefaultStream(in, out, rate, frames, callback)
	},
}

// Backend is a graph.Backend and graph.InputSource.
type Backend struct {
	cfg Config
	drv driver

	bc          graph.BackendConfig
	initialized bool
	in          *ring.Ring
	render      graph.RenderFunc
	stream      stream
	xruns       atomic.Uint64
	once        sync.Once
}

func New(cfg Config) *Backend {
	if cfg.InputBlocks <= 0 {
		cfg.InputBlocks = DefaultInputBlocks
	}

	return &Backend{cfg: cfg, drv: defaultDriver}
}

func (b *Backend) Init(cfg graph.BackendConfig) error {
	if err := b.drv.initialize(); err != nil {
		return fmt.Errorf("initialize portaudio: %w", err)
	}

	b.bc = cfg
	b.initialized = true
	if cfg.InputChannels > 0 {
		b.in = ring.New(cfg.InputChannels, b.cfg.InputBlocks*cfg.BlockSize)
	}

	return nil
}

func (b *Backend) Start(render graph.RenderFunc) error {
	if !b.initialized {
		return ErrNotInitialized
	}
	b.render = render

	var callback any = b.playback
	if b.in != nil {
		callback = b.duplex
	}

	s, err := b.drv.open(b.bc.InputChannels, b.bc.OutputChannels, float64(b.bc.SampleRate), b.bc.BlockSize, callback)
	if err != nil {
		return fmt.Errorf("open stream: %w", err)
	}
	if err := s.Start(); err != nil {
		_ = s.Close()
		return fmt.Errorf("start stream: %w", err)
	}
	b.stream = s

	return nil
}

func (b *Backend) playback(out [][]float32, _ pa.StreamCallbackTimeInfo, flags pa.StreamCallbackFlags) {
	if flags&xrunFlags != 0 {
		b.xruns.Add(1)
	}
	if len(out) > 0 {
		b.render(out, len(out[0]))
	}
}

func (b *Backend) duplex(in, out [][]float32, info pa.StreamCallbackTimeInfo, flags pa.StreamCallbackFlags) {
	if len(in) > 0 {
		b.in.Write(in, len(in[0]))
	}
	b.playback(out, info, flags)
}

// ReadInput hands the graph the captured frames.
func (b *Backend) ReadInput(dst [][]float32, frames int) int {
	if b.in == nil {
		return 0
	}

	return b.in.Read(dst, frames)
}

// Xruns counts callbacks that reported an underflow or overflow.
func (b *Backend) Xruns() uint64 { return b.xruns.Load() }

func (b *Backend) Close() error {
	var err error
	b.once.Do(func() {
		if b.stream != nil {
			err = errors.Join(b.stream.Stop(), b.stream.Close())
		}
		if b.initialized {
			err = errors.Join(err, b.drv.terminate())
		}
	})

	return err
}
