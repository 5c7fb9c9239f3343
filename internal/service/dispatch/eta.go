package dispatch

import "math/rand/v2"

// RandomETA draws a uniform number of minutes from [lo, hi].
type RandomETA struct {
	lo, hi int
}

// NewRandomETA returns an ETAFactory for the inclusive range. Invalid bounds fall back to 3..10.
func NewRandomETA(lo, hi int) RandomETA {
	if lo <= 0 || hi < lo {
		lo, hi = 3, 10
	}
	return RandomETA{lo: lo, hi: hi}
}

// Minutes returns the next ETA.
func (r RandomETA) Minutes() int {
	return r.lo + rand.IntN(r.hi-r.lo+1)
}

// FixedETA always returns the same number of minutes.
type FixedETA int

// Minutes returns f.
func (f FixedETA) Minutes() int { return int(f) }
