// SPDX-License-Identifier: EPL-2.0

// Package mp3 decodes MP3 files with github.com/hajimehoshi/go-mp3.
//
// go-mp3 always yields 16-bit stereo, whatever the file holds, so mono
// material comes out with both channels equal. Put an audio.ChannelMixer in
// front to fold it back. The frame count is known only for seekable input.
package mp3
