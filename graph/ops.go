// SPDX-License-Identifier: EPL-2.0

package graph

// Op is a binary arithmetic operator.
type Op int

const (
	OpAdd Op = iota
	OpSub
	OpMul
	OpDiv
)

func (o Op) String() string {
	switch o {
	case OpAdd:
		return "add"
	case OpSub:
		return "sub"
	case OpMul:
		return "mul"
	case OpDiv:
		return "div"
	default:
		return "op"
	}
}

func constantDef(v float32) Def {
	return Def{
		Name:       "constant",
		Properties: []PropertySlot{{Name: "value", Initial: Float(v)}},
		Channels:   Track(),
	}
}

type constant struct{}

func (constant) Process(c *Context, out [][]float32, frames int) {
	v := c.Property(0).Float
	for _, ch := range out {
		for i := range ch[:frames] {
			ch[i] = v
		}
	}
}

// Constant creates a node that outputs v on every frame. Its "value"
// property can be changed later.
func (g *Graph) Constant(v float32) (Node, error) {
	return g.NewNode(constantDef(v), constant{})
}

type binary struct {
	op Op
}

func (b binary) Process(c *Context, out [][]float32, frames int) {
	a, x := c.Input(0), c.Input(1)
	for ch, dst := range out {
		l, r := a[ch%len(a)], x[ch%len(x)]
		switch b.op {
		case OpAdd:
			for i := range dst[:frames] {
				dst[i] = l[i] + r[i]
			}
		case OpSub:
			for i := range dst[:frames] {
				dst[i] = l[i] - r[i]
			}
		case OpMul:
			for i := range dst[:frames] {
				dst[i] = l[i] * r[i]
			}
		case OpDiv:
			for i := range dst[:frames] {
				if r[i] == 0 {
					dst[i] = 0
					continue
				}
				dst[i] = l[i] / r[i]
			}
		}
	}
}

// Binary creates a node computing a op b per frame and channel. Division by
// zero yields 0. Neither operand is modified.
func (g *Graph) Binary(op Op, a, b Signal) (Node, error) {
	n, err := g.NewNode(Def{
		Name:     op.String(),
		Inputs:   []Input{{Name: "a"}, {Name: "b"}},
		Channels: Track(),
	}, binary{op: op})
	if err != nil {
		return Node{}, err
	}

	err = n.SetInput("a", a)
	if err == nil {
		err = n.SetInput("b", b)
	}
	if err != nil {
		_ = g.Remove(n)
		return Node{}, err
	}

	return n, nil
}

type multiplex struct{}

func (multiplex) Process(c *Context, out [][]float32, frames int) {
	ch := 0
	for i := range c.NumInputs() {
		for _, src := range c.Input(i) {
			if ch == len(out) {
				return
			}
			copy(out[ch][:frames], src)
			ch++
		}
	}
	for ; ch < len(out); ch++ {
		clear(out[ch][:frames])
	}
}

// Multiplex creates a node whose channels are the concatenation of its
// inputs, in the order they were added. More inputs can be appended with
// AddInput.
func (g *Graph) Multiplex(inputs ...Signal) (Node, error) {
	n, err := g.NewNode(Def{Name: "multiplex", Variadic: true, Multiplex: true}, multiplex{})
	if err != nil {
		return Node{}, err
	}

	for _, s := range inputs {
		if _, err := n.AddInput("", s); err != nil {
			_ = g.Remove(n)
			return Node{}, err
		}
	}

	return n, nil
}

// EdgeDetector finds rising edges in a clock signal sampled once per frame.
type EdgeDetector struct {
	prev float32
}

// Rising reports whether v crosses from non-positive to positive.
func (e *EdgeDetector) Rising(v float32) bool {
	rising := e.prev <= 0 && v > 0
	e.prev = v

	return rising
}

func (e *EdgeDetector) Reset() { e.prev = 0 }
