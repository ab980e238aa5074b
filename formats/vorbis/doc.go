// SPDX-License-Identifier: EPL-2.0

// Package vorbis decodes Ogg Vorbis streams with github.com/jfreymuth/oggvorbis.
//
// Samples are already float32 and pass through unchanged. Reads are trimmed
// to whole frames. When the input can seek, the total length is taken from
// the last granule position and exposed through audio.Frames.
package vorbis
