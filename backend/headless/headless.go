// SPDX-License-Identifier: EPL-2.0

// Package headless drives a graph without audio hardware, either paced by
// a ticker at the real-time block rate or as fast as possible.
package headless

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ik5/audgraph/graph"
)

var ErrAlreadyStarted = errors.New("headless backend already started")

// Config configures a Backend. The zero value renders as fast as possible
// until closed.
type Config struct {
	// Realtime paces rendering at one block per block duration.
	Realtime bool

	// Frames stops rendering after this many frames. 0 means no limit.
	Frames uint64

	// Sink receives every rendered block. The slices are reused.
	Sink func(out [][]float32, frames int)

	// Input, when set, feeds the graph's captured input.
	Input graph.InputSource
}

// Backend is a graph.Backend that renders on its own goroutine. Err is
// closed once Frames frames have been rendered.
type Backend struct {
	cfg      Config
	bc       graph.BackendConfig
	out      [][]float32
	rendered atomic.Uint64

	errc    chan error
	done    chan struct{}
	started bool
	once    sync.Once
	wg      sync.WaitGroup
}

func New(cfg Config) *Backend {
	return &Backend{
		cfg:  cfg,
		errc: make(chan error, 1),
		done: make(chan struct{}),
	}
}

func (b *Backend) Init(cfg graph.BackendConfig) error {
	b.bc = cfg
	b.out = make([][]float32, cfg.OutputChannels)
	for ch := range b.out {
		b.out[ch] = make([]float32, cfg.BlockSize)
	}

	return nil
}

func (b *Backend) Start(render graph.RenderFunc) error {
	if b.started {
		return ErrAlreadyStarted
	}
	b.started = true

	b.wg.Go(func() { b.run(render) })

	return nil
}

func (b *Backend) run(render graph.RenderFunc) {
	var tick <-chan time.Time
	if b.cfg.Realtime {
		period := time.Duration(float64(b.bc.BlockSize) / float64(b.bc.SampleRate) * float64(time.Second))
		ticker := time.NewTicker(period)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		if tick != nil {
			select {
			case <-b.done:
				return
			case <-tick:
			}
		} else {
			select {
			case <-b.done:
				return
			default:
			}
		}

		frames := b.bc.BlockSize
		if b.cfg.Frames > 0 {
			left := b.cfg.Frames - b.rendered.Load()
			frames = int(min(uint64(frames), left))
		}

		render(b.out, frames)
		if b.cfg.Sink != nil {
			b.cfg.Sink(b.out, frames)
		}

		if n := b.rendered.Add(uint64(frames)); b.cfg.Frames > 0 && n >= b.cfg.Frames {
			close(b.errc)
			return
		}
	}
}

// Close stops rendering and waits for the render goroutine to return.
func (b *Backend) Close() error {
	b.once.Do(func() { close(b.done) })
	b.wg.Wait()

	return nil
}

func (b *Backend) Err() <-chan error { return b.errc }

// Rendered is the number of frames rendered so far.
func (b *Backend) Rendered() uint64 { return b.rendered.Load() }

func (b *Backend) ReadInput(dst [][]float32, frames int) int {
	if b.cfg.Input == nil {
		return 0
	}

	return b.cfg.Input.ReadInput(dst, frames)
}
