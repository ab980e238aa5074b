// SPDX-License-Identifier: EPL-2.0

package utils

import (
	"math"
	"testing"
)

func TestLerp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		a, b, x, want float32
	}{
		{1, 3, 0.5, 2},
		{1, 3, 0, 1},
		{1, 3, 1, 3},
		{-1, 1, 0.25, -0.5},
	}

	for _, tt := range tests {
		if got := Lerp(tt.a, tt.b, tt.x); got != tt.want {
			t.Errorf("Lerp(%v, %v, %v) = %v, want %v", tt.a, tt.b, tt.x, got, tt.want)
		}
	}
}

func TestCubicInterpolate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		y0, y1, y2, y3 float32
		x              float32
		want           float32
	}{
		{"passes through y1", 0.3, -0.2, 0.9, 0.1, 0, -0.2},
		{"passes through y2", 0.3, -0.2, 0.9, 0.1, 1, 0.9},
		{"symmetric peak", 0, 1, 1, 0, 0.5, 1.125},
		{"silence", 0, 0, 0, 0, 0.5, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := CubicInterpolate(tt.y0, tt.y1, tt.y2, tt.y3, tt.x)
			if math.Abs(float64(got-tt.want)) > 1e-6 {
				t.Errorf("CubicInterpolate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCubicInterpolate_MatchesLerpOnRamps(t *testing.T) {
	t.Parallel()

	for i := range 9 {
		x := float32(i) / 8
		cubic := CubicInterpolate(-0.75, -0.25, 0.25, 0.75, x)
		linear := Lerp(-0.25, 0.25, x)
		if math.Abs(float64(cubic-linear)) > 1e-6 {
			t.Errorf("x=%v: cubic %v, linear %v", x, cubic, linear)
		}
	}
}

func BenchmarkCubicInterpolate(b *testing.B) {
	var result float32

	b.ReportAllocs()

	for b.Loop() {
		result = CubicInterpolate(0.5, 1.0, 0.8, 0.3, 0.5)
	}

	_ = result
}
