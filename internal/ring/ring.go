// SPDX-License-Identifier: EPL-2.0

// Package ring is a single-producer single-consumer ring of planar float32
// frames. One goroutine may Write while another Reads without locking.
package ring

import "sync/atomic"

// Ring holds up to Cap frames of every channel.
type Ring struct {
	data [][]float32
	mask uint64

	// Frame counters. Only the writer stores w and only the reader stores r.
	w atomic.Uint64
	r atomic.Uint64
}

// New returns a ring for channels channels. The capacity is rounded up to
// a power of two.
func New(channels, capacity int) *Ring {
	size := 1
	for size < capacity {
		size <<= 1
	}

	data := make([][]float32, channels)
	for ch := range data {
		data[ch] = make([]float32, size)
	}

	return &Ring{data: data, mask: uint64(size - 1)}
}

func (r *Ring) Channels() int { return len(r.data) }
func (r *Ring) Cap() int      { return int(r.mask + 1) }

// Len is the number of frames waiting to be read.
func (r *Ring) Len() int {
	return int(r.w.Load() - r.r.Load())
}

// Write copies up to frames frames of src and returns how many fit. Frames
// that do not fit are dropped. Channels missing from src are written as
// silence.
func (r *Ring) Write(src [][]float32, frames int) int {
	w := r.w.Load()
	n := min(frames, r.Cap()-int(w-r.r.Load()))
	if n <= 0 {
		return 0
	}

	for ch, dst := range r.data {
		var in []float32
		if ch < len(src) {
			in = src[ch]
		}
		for i := range n {
			var v float32
			if in != nil {
				v = in[i]
			}
			dst[(w+uint64(i))&r.mask] = v
		}
	}
	r.w.Store(w + uint64(n))

	return n
}

// Read moves up to frames frames into dst and returns how many were
// available. Channels of dst beyond the ring's are left untouched.
func (r *Ring) Read(dst [][]float32, frames int) int {
	rd := r.r.Load()
	n := min(frames, int(r.w.Load()-rd))
	if n <= 0 {
		return 0
	}

	for ch, out := range dst {
		if ch >= len(r.data) {
			break
		}
		src := r.data[ch]
		for i := range n {
			out[i] = src[(rd+uint64(i))&r.mask]
		}
	}
	r.r.Store(rd + uint64(n))

	return n
}

// Discard drops up to frames unread frames, for readers that fell behind.
func (r *Ring) Discard(frames int) int {
	rd := r.r.Load()
	n := min(frames, int(r.w.Load()-rd))
	if n <= 0 {
		return 0
	}
	r.r.Store(rd + uint64(n))

	return n
}
