// SPDX-License-Identifier: EPL-2.0

package nodes

import (
	"testing"

	"github.com/ik5/audgraph/graph"
)

func TestASR_WorkedExample(t *testing.T) {
	t.Parallel()

	g := newGraph(t, func(c *graph.Config) { c.BlockSize = 512 })
	env, err := NewASR(g, graph.Value(0.01), graph.Value(0), graph.Value(0.1), nil)
	if err != nil {
		t.Fatalf("NewASR() error = %v", err)
	}
	if err := env.Trigger(graph.DefaultTrigger, 1); err != nil {
		t.Fatalf("Trigger() error = %v", err)
	}

	out := render(t, g, env, 6000)[0]

	checks := []struct {
		frame int
		want  float32
		tol   float32
	}{
		{0, 0, 0},
		{220, 220.0 / 441, 1e-5},
		{441, 1, 0},
		{2646, 0.5, 1e-4},
		{4851, 0, 1e-6},
		{4852, 0, 0},
		{5999, 0, 0},
	}
	for _, c := range checks {
		if !near(out[c.frame], c.want, c.tol) {
			t.Errorf("frame %d = %v, want %v", c.frame, out[c.frame], c.want)
		}
	}

	for i := 442; i < 4851; i++ {
		if out[i] > out[i-1] {
			t.Fatalf("release rises at frame %d: %v > %v", i, out[i], out[i-1])
		}
	}

	if got := ASRState(property(t, env, "state")); got != ASRIdle {
		t.Errorf("state = %v, want %v", got, ASRIdle)
	}
}

func TestASR_IdleUntilTriggered(t *testing.T) {
	t.Parallel()

	g := newGraph(t)
	env, _ := NewASR(g, nil, nil, nil, nil)

	out := render(t, g, env, 256)[0]
	for i, v := range out {
		if v != 0 {
			t.Fatalf("frame %d = %v, want 0 before any trigger", i, v)
		}
	}
}

func TestASR_RetriggerResetsPhase(t *testing.T) {
	t.Parallel()

	g := newGraph(t, func(c *graph.Config) { c.BlockSize = 256 })
	env, _ := NewASR(g, graph.Value(0.01), graph.Value(1), graph.Value(0.1), nil)
	_ = env.Trigger(graph.DefaultTrigger, 1)
	_ = env.TriggerAt(graph.DefaultTrigger, 1, 1000)

	out := render(t, g, env, 2000)[0]

	if out[999] != 1 {
		t.Errorf("frame 999 = %v, want sustain 1", out[999])
	}
	if out[1000] != 0 {
		t.Errorf("frame 1000 = %v, want 0 after retrigger", out[1000])
	}
	if !near(out[1000+220], 220.0/441, 1e-5) {
		t.Errorf("frame 1220 = %v, want attack ramp", out[1220])
	}
	if got := ASRState(property(t, env, "state")); got != ASRSustain {
		t.Errorf("state = %v, want %v", got, ASRSustain)
	}
}

func TestASR_ZeroDurations(t *testing.T) {
	t.Parallel()

	g := newGraph(t)
	env, _ := NewASR(g, graph.Value(0), graph.Value(0.001), graph.Value(0), nil)
	_ = env.Trigger(graph.DefaultTrigger, 1)

	out := render(t, g, env, 128)[0]

	if out[0] != 1 {
		t.Errorf("frame 0 = %v, want 1 with zero attack", out[0])
	}
	if out[100] != 0 {
		t.Errorf("frame 100 = %v, want 0 with zero release", out[100])
	}
}

func TestASR_ClockEdges(t *testing.T) {
	t.Parallel()

	g := newGraph(t, func(c *graph.Config) { c.BlockSize = 128 })
	clock, _ := NewImpulse(g, graph.Value(100)) // every 441 frames
	env, _ := NewASR(g, graph.Value(0.001), graph.Value(0), graph.Value(0.001), clock)

	out := render(t, g, env, 1000)[0]

	for _, start := range []int{0, 441, 882} {
		if out[start] != 0 {
			t.Errorf("frame %d = %v, want 0 at restart", start, out[start])
		}
		if !near(out[start+44], 1, 0.03) {
			t.Errorf("frame %d = %v, want peak", start+44, out[start+44])
		}
	}
	if out[300] != 0 {
		t.Errorf("frame 300 = %v, want idle between edges", out[300])
	}
}

func TestASRState_String(t *testing.T) {
	t.Parallel()

	want := map[ASRState]string{
		ASRIdle:    "idle",
		ASRAttack:  "attack",
		ASRSustain: "sustain",
		ASRRelease: "release",
	}
	for s, name := range want {
		if s.String() != name {
			t.Errorf("%d.String() = %q, want %q", s, s.String(), name)
		}
	}
}
