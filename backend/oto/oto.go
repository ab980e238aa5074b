// SPDX-License-Identifier: EPL-2.0

// Package oto plays a graph through github.com/ebitengine/oto/v3.
//
// oto supports mono and stereo output only and a single context per
// process. The context is created by the first Init and reused, suspended
// between runs, by later backends with the same format.
package oto

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"sync"
	"time"

	gooto "github.com/ebitengine/oto/v3"
	"github.com/ik5/audgraph/graph"
)

var (
	ErrUnsupportedChannels = errors.New("oto supports 1 or 2 output channels")
	ErrContextInUse        = errors.New("oto context already open with another format")
	ErrNotInitialized      = errors.New("oto backend not initialized")
)

const bytesPerSample = 4

// Config configures a Backend.
type Config struct {
	// BufferSize is the device buffer duration. 0 uses the driver default.
	BufferSize time.Duration

	// PollInterval is how often player errors are checked.
	// Default: 100ms
	PollInterval time.Duration
}

type player interface {
	Play()
	Close() error
	Err() error
}

type audioContext interface {
	NewPlayer(r io.Reader) player
	Suspend() error
	Resume() error
}

type otoContext struct {
	*gooto.Context
}

func (c otoContext) NewPlayer(r io.Reader) player { return c.Context.NewPlayer(r) }

type contextKey struct {
	rate, channels int
	buffer         time.Duration
}

var shared struct {
	sync.Mutex
	ctx audioContext
	key contextKey
}

func openContext(key contextKey) (audioContext, error) {
	shared.Lock()
	defer shared.Unlock()

	if shared.ctx != nil {
		if shared.key != key {
			return nil, ErrContextInUse
		}
		if err := shared.ctx.Resume(); err != nil {
			return nil, fmt.Errorf("resume oto context: %w", err)
		}
		return shared.ctx, nil
	}

	ctx, ready, err := gooto.NewContext(&gooto.NewContextOptions{
		SampleRate:   key.rate,
		ChannelCount: key.channels,
		Format:       gooto.FormatFloat32LE,
		BufferSize:   key.buffer,
	})
	if err != nil {
		return nil, fmt.Errorf("create oto context: %w", err)
	}
	<-ready

	shared.ctx = otoContext{ctx}
	shared.key = key

	return shared.ctx, nil
}

// Backend is a graph.Backend pulling blocks from the graph whenever oto
// reads more audio.
type Backend struct {
	cfg  Config
	open func(contextKey) (audioContext, error)

	bc     graph.BackendConfig
	ctx    audioContext
	player player
	render graph.RenderFunc
	out    [][]float32

	errc chan error
	done chan struct{}
	once sync.Once
	wg   sync.WaitGroup
}

func New(cfg Config) *Backend {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 100 * time.Millisecond
	}

	return &Backend{
		cfg:  cfg,
		open: openContext,
		errc: make(chan error, 1),
		done: make(chan struct{}),
	}
}

func (b *Backend) Init(cfg graph.BackendConfig) error {
	if cfg.OutputChannels < 1 || cfg.OutputChannels > 2 {
		return fmt.Errorf("%w: got %d", ErrUnsupportedChannels, cfg.OutputChannels)
	}

	ctx, err := b.open(contextKey{
		rate:     cfg.SampleRate,
		channels: cfg.OutputChannels,
		buffer:   b.cfg.BufferSize,
	})
	if err != nil {
		return err
	}

	b.bc = cfg
	b.ctx = ctx
	b.out = make([][]float32, cfg.OutputChannels)
	for ch := range b.out {
		b.out[ch] = make([]float32, cfg.BlockSize)
	}

	return nil
}

func (b *Backend) Start(render graph.RenderFunc) error {
	if b.ctx == nil {
		return ErrNotInitialized
	}

	b.render = render
	b.player = b.ctx.NewPlayer(b)
	b.player.Play()

	b.wg.Go(b.watch)

	return nil
}

// Read renders as many whole frames as fit in p, one block at a time, and
// interleaves them as little-endian float32.
func (b *Backend) Read(p []byte) (int, error) {
	channels := len(b.out)
	frameBytes := channels * bytesPerSample
	frames := len(p) / frameBytes

	for pos := 0; pos < frames; {
		n := min(frames-pos, b.bc.BlockSize)
		b.render(b.out, n)

		dst := p[pos*frameBytes:]
		for i := range n {
			for ch, src := range b.out {
				off := (i*channels + ch) * bytesPerSample
				binary.LittleEndian.PutUint32(dst[off:], math.Float32bits(src[i]))
			}
		}
		pos += n
	}

	return frames * frameBytes, nil
}

// watch reports the first player error on Err.
func (b *Backend) watch() {
	ticker := time.NewTicker(b.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-b.done:
			return
		case <-ticker.C:
			if err := b.player.Err(); err != nil {
				b.errc <- err
				return
			}
		}
	}
}

func (b *Backend) Err() <-chan error { return b.errc }

// Close stops playback and suspends the shared context.
func (b *Backend) Close() error {
	var err error
	b.once.Do(func() {
		close(b.done)
		b.wg.Wait()

		if b.player != nil {
			err = b.player.Close()
		}
		if b.ctx != nil {
			err = errors.Join(err, b.ctx.Suspend())
		}
	})

	return err
}
