// SPDX-License-Identifier: EPL-2.0

// Package wav decodes and encodes integer PCM WAV files using
// github.com/go-audio/wav.
//
// The Decoder accepts 8, 16, 24 and 32-bit PCM with any channel count and
// yields float32 samples in [-1, 1]:
//
//	file, _ := os.Open("loop.wav")
//	source, err := wav.Decoder{}.Decode(file)
//
// Readers that cannot seek are buffered in memory first.
//
// Writer goes the other way, taking float32 blocks and clamping them to the
// chosen bit depth. The header is patched on Close, so the destination must
// be an io.WriteSeeker:
//
//	out, _ := os.Create("render.wav")
//	w, err := wav.NewWriter(out, 48000, 2, 16)
//	err = w.Write(interleaved)
//	err = w.Close()
//
// Encode is the one-shot form for planar data.
package wav
