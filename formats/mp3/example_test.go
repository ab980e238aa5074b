// SPDX-License-Identifier: EPL-2.0

package mp3_test

import (
	"fmt"
	"log"
	"os"

	"github.com/ik5/audgraph/audio"
	"github.com/ik5/audgraph/formats/mp3"
)

// ExampleDecoder_Decode folds an MP3 to mono at the graph rate and reads it
// into planar channels ready for buffer.FromPlanar.
func ExampleDecoder_Decode() {
	f, err := os.Open("loop.mp3")
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()

	src, err := mp3.Decoder{}.Decode(f)
	if err != nil {
		log.Fatal(err)
	}

	mono, err := audio.NewChannelMixer(audio.NewResampler(src, 48000), 1)
	if err != nil {
		log.Fatal(err)
	}

	planar, err := audio.ReadPlanar(mono, 0)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("%d of %d frames\n", len(planar[0]), audio.Frames(mono))
}
