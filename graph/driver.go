// SPDX-License-Identifier: EPL-2.0

package graph

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
)

// BackendConfig is passed to Backend.Init.
type BackendConfig struct {
	SampleRate     int
	BlockSize      int
	OutputChannels int
	InputChannels  int
}

// RenderFunc computes frames of planar output.
type RenderFunc func(out [][]float32, frames int)

// Backend drives rendering. After Start it calls the RenderFunc once per
// block, from a single goroutine, until Close.
type Backend interface {
	Init(cfg BackendConfig) error
	Start(render RenderFunc) error
	Close() error
}

// ErrorReporter is implemented by backends that can fail or finish on
// their own. The graph stops when the channel yields a value or is closed.
type ErrorReporter interface {
	Err() <-chan error
}

// InputSource is implemented by backends that capture audio. ReadInput
// fills up to frames samples per channel and returns how many were
// available; the rest of the block reads as silence.
type InputSource interface {
	ReadInput(dst [][]float32, frames int) int
}

// Start validates the reachable nodes, initializes the backend and starts
// rendering. It returns once the backend is running; use Wait to block
// until the graph stops.
func (g *Graph) Start(ctx context.Context, b Backend) error {
	g.mu.Lock()
	if g.running {
		g.mu.Unlock()
		return ErrAlreadyRunning
	}
	g.negotiate()
	g.reorder()
	for _, n := range g.order {
		if name, missing := n.missingBuffer(); missing {
			g.mu.Unlock()
			return fmt.Errorf("%w: %q on %s", ErrMissingBuffer, name, n.name)
		}
	}
	g.mu.Unlock()

	err := b.Init(BackendConfig{
		SampleRate:     g.cfg.SampleRate,
		BlockSize:      g.cfg.BlockSize,
		OutputChannels: g.cfg.OutputChannels,
		InputChannels:  g.cfg.InputChannels,
	})
	if err != nil {
		return fmt.Errorf("init backend: %w", err)
	}

	cctx, cancel := context.WithCancel(ctx)
	grp, gctx := errgroup.WithContext(cctx)

	g.mu.Lock()
	g.running = true
	g.stop = make(chan struct{})
	g.cancel = cancel
	g.grp = grp
	g.input, _ = b.(InputSource)
	g.mu.Unlock()

	if err := b.Start(g.Render); err != nil {
		cancel()
		g.finishStop()
		_ = b.Close()
		return fmt.Errorf("start backend: %w", err)
	}

	g.log.Info("graph started",
		"sample_rate", g.cfg.SampleRate,
		"block_size", g.cfg.BlockSize,
		"output_channels", g.cfg.OutputChannels,
	)

	grp.Go(func() error {
		g.monitor(gctx)
		return nil
	})

	if r, ok := b.(ErrorReporter); ok {
		grp.Go(func() error {
			select {
			case err, ok := <-r.Err():
				if ok && err != nil {
					g.log.Error("backend failed", "error", err)
					return fmt.Errorf("backend: %w", err)
				}
				cancel()
			case <-gctx.Done():
			}
			return nil
		})
	}

	grp.Go(func() error {
		<-gctx.Done()
		err := b.Close()
		g.finishStop()
		g.log.Info("graph stopped", "clock", g.Clock(), "dropouts", g.Dropouts())
		if err != nil {
			return fmt.Errorf("close backend: %w", err)
		}
		return nil
	})

	return nil
}

// Stop asks the graph to stop. It does not wait; use Wait for that.
func (g *Graph) Stop() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.running {
		return ErrGraphNotRunning
	}
	g.cancel()

	return nil
}

// Wait blocks until the graph stops and returns the first backend error.
func (g *Graph) Wait() error {
	g.mu.Lock()
	grp := g.grp
	g.mu.Unlock()

	if grp == nil {
		return ErrGraphNotRunning
	}

	err := grp.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}

	return err
}

func (g *Graph) finishStop() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.running {
		return
	}
	g.running = false
	g.input = nil
	g.drainEdits()
	close(g.stop)
}

// monitor logs dropouts and render-side reports from outside the render
// goroutine.
func (g *Graph) monitor(ctx context.Context) {
	ticker := time.NewTicker(g.cfg.MonitorInterval)
	defer ticker.Stop()

	last := g.dropouts.Load()
	for {
		select {
		case <-ctx.Done():
			g.flushReports()
			return
		case <-ticker.C:
			if d := g.dropouts.Load(); d > last {
				g.log.Warn("render missed deadline", "dropouts", d-last, "total", d)
				last = d
			}
			g.flushReports()
		}
	}
}

func (g *Graph) flushReports() {
	for {
		select {
		case r := <-g.reports:
			g.log.Warn("node rendered silence", "node", r.node, "error", ErrMissingBuffer, "buffer", r.buffer)
		default:
			return
		}
	}
}
