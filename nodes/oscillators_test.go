// SPDX-License-Identifier: EPL-2.0

package nodes

import (
	"testing"

	"github.com/ik5/audgraph/graph"
)

func TestSine(t *testing.T) {
	t.Parallel()

	g := newGraph(t)
	osc, err := NewSine(g, graph.Value(441)) // 100 frame period
	if err != nil {
		t.Fatalf("NewSine() error = %v", err)
	}

	out := render(t, g, osc, 200)[0]

	for _, c := range []struct {
		frame int
		want  float32
	}{{0, 0}, {25, 1}, {50, 0}, {75, -1}, {125, 1}} {
		if !near(out[c.frame], c.want, 1e-4) {
			t.Errorf("frame %d = %v, want %v", c.frame, out[c.frame], c.want)
		}
	}
}

func TestSine_DefaultFrequency(t *testing.T) {
	t.Parallel()

	g := newGraph(t)
	osc, _ := NewSine(g, nil)

	out := render(t, g, osc, 101)[0]

	// 440 Hz reaches its first peak a quarter period in.
	peak := 44100.0 / 440 / 4
	if out[int(peak)] < 0.99 {
		t.Errorf("frame %d = %v, want close to 1", int(peak), out[int(peak)])
	}
}

func TestTriangle(t *testing.T) {
	t.Parallel()

	g := newGraph(t)
	osc, _ := NewTriangle(g, graph.Value(441))
	_ = osc.TriggerAt(graph.DefaultTrigger, 1, 130)

	out := render(t, g, osc, 200)[0]

	for _, c := range []struct {
		frame int
		want  float32
	}{{0, -1}, {25, 0}, {50, 1}, {75, 0}, {100, -1}, {130, -1}, {155, 0}} {
		if !near(out[c.frame], c.want, 1e-4) {
			t.Errorf("frame %d = %v, want %v", c.frame, out[c.frame], c.want)
		}
	}
}

func TestOscillator_TracksInputChannels(t *testing.T) {
	t.Parallel()

	g := newGraph(t, func(c *graph.Config) { c.OutputChannels = 2 })
	freq, _ := g.Multiplex(graph.Value(441), graph.Value(882))
	osc, _ := NewSine(g, freq)

	out := render(t, g, osc, 64)

	if got := osc.NumOutputChannels(); got != 2 {
		t.Fatalf("NumOutputChannels() = %d, want 2", got)
	}
	if !near(out[0][25], 1, 1e-4) {
		t.Errorf("left frame 25 = %v, want 1", out[0][25])
	}
	if !near(out[1][25], 0, 1e-4) {
		t.Errorf("right frame 25 = %v, want 0", out[1][25])
	}
}

func TestImpulse(t *testing.T) {
	t.Parallel()

	g := newGraph(t)
	clock, _ := NewImpulse(g, graph.Value(100))

	out := render(t, g, clock, 1000)[0]

	var fired []int
	for i, v := range out {
		switch v {
		case 1:
			fired = append(fired, i)
		case 0:
		default:
			t.Fatalf("frame %d = %v, want 0 or 1", i, v)
		}
	}

	want := []int{0, 441, 882}
	if len(fired) != len(want) {
		t.Fatalf("fired at %v, want %v", fired, want)
	}
	for i := range want {
		if fired[i] != want[i] {
			t.Errorf("fired at %v, want %v", fired, want)
			break
		}
	}
}

func TestImpulse_TriggerResets(t *testing.T) {
	t.Parallel()

	g := newGraph(t)
	clock, _ := NewImpulse(g, graph.Value(100))
	_ = clock.TriggerAt(graph.DefaultTrigger, 1, 200)

	out := render(t, g, clock, 700)[0]

	for _, i := range []int{0, 200, 641} {
		if out[i] != 1 {
			t.Errorf("frame %d = %v, want 1", i, out[i])
		}
	}
	if out[441] != 0 {
		t.Errorf("frame 441 = %v, want 0 after reset", out[441])
	}
}
