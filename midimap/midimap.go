// SPDX-License-Identifier: EPL-2.0

// Package midimap routes MIDI messages to a graph: notes fire node
// triggers and control changes set node inputs.
//
// A Mapper's Listener plugs straight into gomidi's ListenTo:
//
//	m := midimap.New(nil)
//	m.MapNote(0, midimap.Any, midimap.NoteBinding{Node: env})
//	stop, err := midi.ListenTo(in, m.Listener())
package midimap

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ik5/audgraph/graph"
	"gitlab.com/gomidi/midi/v2"
)

// Any matches every channel, key or controller.
const Any = -1

// NoteBinding fires triggers on a node. Note on fires On with the velocity
// scaled to [0, 1]; note off fires Off with 0.
type NoteBinding struct {
	Node graph.Node

	// On defaults to graph.DefaultTrigger.
	On string

	// Off is not fired when empty.
	Off string
}

// CCBinding sets a node input to a constant mapped linearly from the
// controller value: 0 gives Min and 127 gives Max.
type CCBinding struct {
	Node     graph.Node
	Input    string
	Min, Max float32
}

type noteRoute struct {
	channel, key int
	b            NoteBinding
}

type ccRoute struct {
	channel, controller int
	b                   CCBinding
}

// Mapper is safe for concurrent use.
type Mapper struct {
	mu    sync.RWMutex
	notes []noteRoute
	ccs   []ccRoute
	log   *slog.Logger
}

// New returns an empty Mapper logging to logger, or slog.Default() when
// nil.
func New(logger *slog.Logger) *Mapper {
	if logger == nil {
		logger = slog.Default()
	}

	return &Mapper{log: logger}
}

func (m *Mapper) MapNote(channel, key int, b NoteBinding) {
	if b.On == "" {
		b.On = graph.DefaultTrigger
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.notes = append(m.notes, noteRoute{channel: channel, key: key, b: b})
}

func (m *Mapper) MapCC(channel, controller int, b CCBinding) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ccs = append(m.ccs, ccRoute{channel: channel, controller: controller, b: b})
}

// Unmap removes every route to n.
func (m *Mapper) Unmap(n graph.Node) {
	m.mu.Lock()
	defer m.mu.Unlock()

	notes := m.notes[:0]
	for _, r := range m.notes {
		if r.b.Node.ID() != n.ID() || r.b.Node.Graph() != n.Graph() {
			notes = append(notes, r)
		}
	}
	m.notes = notes

	ccs := m.ccs[:0]
	for _, r := range m.ccs {
		if r.b.Node.ID() != n.ID() || r.b.Node.Graph() != n.Graph() {
			ccs = append(ccs, r)
		}
	}
	m.ccs = ccs
}

func matches(want int, got uint8) bool {
	return want == Any || want == int(got)
}

// Handle applies msg to every matching route. Messages other than notes
// and control changes are ignored.
func (m *Mapper) Handle(msg midi.Message) error {
	var ch, key, vel, cc, val uint8

	m.mu.RLock()
	defer m.mu.RUnlock()

	var errs []error
	switch {
	case msg.GetNoteStart(&ch, &key, &vel):
		for _, r := range m.notes {
			if !matches(r.channel, ch) || !matches(r.key, key) {
				continue
			}
			if err := r.b.Node.Trigger(r.b.On, float32(vel)/127); err != nil {
				errs = append(errs, fmt.Errorf("note on %d/%d: %w", ch, key, err))
			}
		}

	case msg.GetNoteEnd(&ch, &key):
		for _, r := range m.notes {
			if r.b.Off == "" || !matches(r.channel, ch) || !matches(r.key, key) {
				continue
			}
			if err := r.b.Node.Trigger(r.b.Off, 0); err != nil {
				errs = append(errs, fmt.Errorf("note off %d/%d: %w", ch, key, err))
			}
		}

	case msg.GetControlChange(&ch, &cc, &val):
		for _, r := range m.ccs {
			if !matches(r.channel, ch) || !matches(r.controller, cc) {
				continue
			}
			v := r.b.Min + (r.b.Max-r.b.Min)*float32(val)/127
			if err := r.b.Node.SetInput(r.b.Input, graph.Value(v)); err != nil {
				errs = append(errs, fmt.Errorf("control change %d/%d: %w", ch, cc, err))
			}
		}
	}

	return errors.Join(errs...)
}

// Listener returns a callback for midi.ListenTo. Routing errors are logged
// and otherwise ignored.
func (m *Mapper) Listener() func(msg midi.Message, timestampms int32) {
	return func(msg midi.Message, timestampms int32) {
		if err := m.Handle(msg); err != nil {
			m.log.Warn("midi routing failed", "msg", msg.String(), "timestamp_ms", timestampms, "error", err)
			return
		}
		m.log.Debug("midi message", "msg", msg.String())
	}
}
