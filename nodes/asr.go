// SPDX-License-Identifier: EPL-2.0

package nodes

import (
	"github.com/ik5/audgraph/graph"
	"github.com/ik5/audgraph/utils"
)

// ASRState is the stage of an ASR envelope.
type ASRState int

const (
	ASRIdle ASRState = iota
	ASRAttack
	ASRSustain
	ASRRelease
)

func (s ASRState) String() string {
	switch s {
	case ASRAttack:
		return "attack"
	case ASRSustain:
		return "sustain"
	case ASRRelease:
		return "release"
	default:
		return "idle"
	}
}

const (
	asrClock = iota
	asrAttack
	asrSustain
	asrRelease
)

const asrStateProperty = 0

type asr struct {
	edge    graph.EdgeDetector
	state   ASRState
	elapsed uint64
}

func (a *asr) restart() {
	a.state = ASRAttack
	a.elapsed = 0
}

func (a *asr) Trigger(*graph.Context, int, float32) {
	a.restart()
}

func (a *asr) Process(c *graph.Context, out [][]float32, frames int) {
	clock := c.Input(asrClock)[0]
	sr := c.SampleRate()

	for i := range frames {
		if a.edge.Rising(clock[i]) {
			a.restart()
		}

		var v float64
		if a.state != ASRIdle {
			// Durations are sampled every frame so they may change while
			// the envelope runs.
			attack := max(float64(c.InputValue(asrAttack, i)), 0)
			sustain := max(float64(c.InputValue(asrSustain, i)), 0)
			release := max(float64(c.InputValue(asrRelease, i)), 0)
			phase := float64(a.elapsed) / sr

			switch {
			case phase < attack:
				a.state = ASRAttack
				v = phase / attack
			case phase <= attack+sustain:
				a.state = ASRSustain
				v = 1
			case phase < attack+sustain+release:
				a.state = ASRRelease
				v = 1 - (phase-attack-sustain)/release
			default:
				a.state = ASRIdle
			}
			a.elapsed++
		}

		fillFrame(out, i, utils.Sanitize(float32(v)))
	}

	c.SetProperty(asrStateProperty, graph.Float(float32(a.state)))
}

// NewASR creates an attack/sustain/release envelope with durations in
// seconds. It starts idle, outputting 0, and runs once per trigger or rising
// edge on clock. Nil signals use a clock of 0 and durations of 0.01, 0.5 and
// 0.1 seconds.
//
// The "state" property holds the ASRState at the end of the last block.
func NewASR(g *graph.Graph, attack, sustain, release, clock graph.Signal) (graph.Node, error) {
	def := graph.Def{
		Name: "asr",
		Inputs: []graph.Input{
			{Name: "clock"},
			{Name: "attack", Default: 0.01},
			{Name: "sustain", Default: 0.5},
			{Name: "release", Default: 0.1},
		},
		Properties: []graph.PropertySlot{{Name: "state", Initial: graph.Float(float32(ASRIdle))}},
		Triggers:   []string{graph.DefaultTrigger},
		Channels:   mono(),
	}

	return create(g, def, &asr{},
		binding{"clock", clock},
		binding{"attack", attack},
		binding{"sustain", sustain},
		binding{"release", release},
	)
}
