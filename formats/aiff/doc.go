// SPDX-License-Identifier: EPL-2.0

// Package aiff decodes AIFF files into audio.Source streams for the buffer
// loader.
//
// Decoding goes through github.com/go-audio/aiff. Signed big-endian PCM at
// 8, 16, 24 and 32 bits is accepted with any channel count. The source knows
// its frame count from the COMM chunk, so audio.Frames can size a buffer
// before the samples are read.
//
// go-audio seeks between chunks; readers without Seek are read into memory
// first.
package aiff
