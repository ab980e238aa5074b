// SPDX-License-Identifier: EPL-2.0

// Package audgraph is a real-time audio engine built from a graph of
// processing nodes.
//
// A graph.Graph owns nodes created from a graph.Def and a graph.Processor.
// Nodes read other nodes, or plain graph.Value constants, through named
// inputs, and the nodes added with AddOutput are summed into the output
// bus. Every block the graph negotiates channel counts, orders the
// reachable nodes, applies queued triggers at their exact frame and runs
// each node once.
//
// # Building a Graph
//
//	g, _ := graph.New(graph.DefaultConfig())
//	osc, _ := nodes.NewSine(g, graph.Value(220))
//	env, _ := nodes.NewASR(g, graph.Value(0.01), graph.Value(0.2), graph.Value(0.5), nil)
//	voice, _ := osc.Mul(env)
//	_ = g.AddOutput(voice)
//
// # Playing It
//
// A graph.Backend pulls blocks from the graph. The backend subpackages
// wrap oto and PortAudio, and headless renders without hardware:
//
//	if err := g.Start(ctx, oto.New(oto.Config{})); err != nil {
//	    return err
//	}
//	_ = env.Trigger(graph.DefaultTrigger, 1)
//	err := g.Wait()
//
// Topology edits, property writes and triggers are safe while the graph
// runs; they take effect at the next block boundary.
//
// # Offline Rendering
//
// Render and RenderWAV run a stopped graph as fast as possible:
//
//	out, _ := os.Create("voice.wav")
//	err := audgraph.RenderWAV(out, g, 44100, 16)
//
// # Subpackages
//
//   - graph: the engine, node handles, triggers and the backend contract
//   - nodes: oscillators, envelopes, sampler, granulator, panning, analysis
//   - buffer: in-memory sample tables, envelopes and sound file loading
//   - analysis: feature extractors addressed by plugin identifiers
//   - midimap: MIDI notes and controllers routed to triggers and inputs
//   - audio and formats: streaming decoders, resampling and channel mixing
package audgraph
