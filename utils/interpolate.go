// SPDX-License-Identifier: EPL-2.0

package utils

// Lerp interpolates between a and b at x in [0, 1].
func Lerp(a, b, x float32) float32 {
	return a + (b-a)*x
}

// CubicInterpolate evaluates the Catmull-Rom spline through y0..y3 at x in
// [0, 1] between y1 and y2. The curve passes through every sample and
// reproduces straight lines exactly.
func CubicInterpolate(y0, y1, y2, y3, x float32) float32 {
	c1 := 0.5 * (y2 - y0)
	c2 := y0 - 2.5*y1 + 2*y2 - 0.5*y3
	c3 := 0.5*(y3-y0) + 1.5*(y1-y2)

	return ((c3*x+c2)*x+c1)*x + y1
}
