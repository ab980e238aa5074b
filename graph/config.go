// SPDX-License-Identifier: EPL-2.0

package graph

import (
	"fmt"
	"log/slog"
	"time"
)

// Config holds the engine settings fixed for the lifetime of a Graph.
type Config struct {
	// SampleRate in Hz.
	// Default: 44100
	SampleRate int

	// BlockSize is the number of frames rendered per block.
	// Default: 256
	BlockSize int

	// OutputChannels is the width of the output bus.
	// Default: 2
	OutputChannels int

	// InputChannels is the capture width requested from duplex backends.
	// Default: 0 (no input)
	InputChannels int

	// MaxChannels caps every negotiated channel count.
	// Default: 32
	MaxChannels int

	// EditQueueSize bounds topology edits waiting for the next block.
	// Default: 64
	EditQueueSize int

	// TriggerQueueSize bounds triggers waiting for the next block.
	// Default: 256
	TriggerQueueSize int

	// MonitorInterval is how often dropouts and render reports are logged
	// while running.
	// Default: 250ms
	MonitorInterval time.Duration

	// Logger receives control-context events. Nil uses slog.Default().
	Logger *slog.Logger
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		SampleRate:       44100,
		BlockSize:        256,
		OutputChannels:   2,
		InputChannels:    0,
		MaxChannels:      32,
		EditQueueSize:    64,
		TriggerQueueSize: 256,
		MonitorInterval:  250 * time.Millisecond,
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("%w: sample_rate must be positive, got %d", ErrInvalidConfig, c.SampleRate)
	}
	if c.BlockSize <= 0 {
		return fmt.Errorf("%w: block_size must be positive, got %d", ErrInvalidConfig, c.BlockSize)
	}
	if c.MaxChannels <= 0 {
		return fmt.Errorf("%w: max_channels must be positive, got %d", ErrInvalidConfig, c.MaxChannels)
	}
	if c.OutputChannels <= 0 || c.OutputChannels > c.MaxChannels {
		return fmt.Errorf("%w: output_channels must be in [1, %d], got %d", ErrInvalidConfig, c.MaxChannels, c.OutputChannels)
	}
	if c.InputChannels < 0 || c.InputChannels > c.MaxChannels {
		return fmt.Errorf("%w: input_channels must be in [0, %d], got %d", ErrInvalidConfig, c.MaxChannels, c.InputChannels)
	}
	if c.EditQueueSize <= 0 {
		return fmt.Errorf("%w: edit_queue_size must be positive, got %d", ErrInvalidConfig, c.EditQueueSize)
	}
	if c.TriggerQueueSize <= 0 {
		return fmt.Errorf("%w: trigger_queue_size must be positive, got %d", ErrInvalidConfig, c.TriggerQueueSize)
	}
	if c.MonitorInterval <= 0 {
		return fmt.Errorf("%w: monitor_interval must be positive, got %v", ErrInvalidConfig, c.MonitorInterval)
	}

	return nil
}

// BlockDuration is the real-time deadline of one block.
func (c *Config) BlockDuration() time.Duration {
	return time.Duration(float64(c.BlockSize) / float64(c.SampleRate) * float64(time.Second))
}
