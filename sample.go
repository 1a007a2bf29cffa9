// sample.go - Sample type and the overflow-guard limiter

// License: GPLv3 or later

package looper

import "math"

// MaxSampleValue is the limiter post-condition bound: after limit(), no
// sample magnitude exceeds 0.9 * the float32 maximum.
var MaxSampleValue = float32(0.9) * math.MaxFloat32

// limit applies the naive overflow guard used throughout the engine: values
// whose magnitude exceeds 0.9 of the float32 maximum are scaled down by 0.9.
// This matches the original engine's observable behavior; a soft-clip
// (tanh-based) limiter was left as commented-out code in the source this was
// ported from and is not implemented here.
func limit(x float32) float32 {
	if x > MaxSampleValue || x < -MaxSampleValue {
		return x * 0.9
	}
	return x
}
