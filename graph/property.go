// SPDX-License-Identifier: EPL-2.0

package graph

import (
	"fmt"
	"slices"
	"strconv"
)

// PropertyKind tells which field of a Property is meaningful.
type PropertyKind int

const (
	PropertyFloat PropertyKind = iota
	PropertyString
	PropertyArray
)

// Property is a static, non-block-rate node value.
type Property struct {
	Kind   PropertyKind
	Float  float32
	String string
	Array  []float32
}

func Float(v float32) Property { return Property{Kind: PropertyFloat, Float: v} }

func String(s string) Property { return Property{Kind: PropertyString, String: s} }

// Array copies v into a float array property.
func Array(v ...float32) Property {
	return Property{Kind: PropertyArray, Array: slices.Clone(v)}
}

func (p Property) clone() Property {
	if p.Kind == PropertyArray {
		p.Array = slices.Clone(p.Array)
	}
	return p
}

func (p Property) GoString() string {
	switch p.Kind {
	case PropertyString:
		return "graph.String(" + strconv.Quote(p.String) + ")"
	case PropertyArray:
		return fmt.Sprintf("graph.Array(%v)", p.Array)
	default:
		return fmt.Sprintf("graph.Float(%v)", p.Float)
	}
}
