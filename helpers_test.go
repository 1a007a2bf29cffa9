// helpers_test.go - Shared float-tolerance and GroupSet test helpers

package looper

import "math"

// maxFloat32ForTest avoids every test importing "math" just to spell
// math.MaxFloat32.
const maxFloat32ForTest = float32(math.MaxFloat32)

func withinTolerance(got, want, tol float32) bool {
	d := got - want
	if d < 0 {
		d = -d
	}
	return d <= tol
}

func makeGroupSet(indices ...int) GroupSet {
	var g GroupSet
	for _, i := range indices {
		g.Add(i)
	}
	return g
}
