package game

// RNG is the engine's linear congruential generator.
// Its whole state is one int32, so it round-trips through save data.
type RNG struct {
	state int32
}

// NewRNG creates a generator with the given seed.
func NewRNG(seed int32) *RNG {
	return &RNG{state: seed}
}

// Next returns the next value in [0, 32767].
func (r *RNG) Next() int32 {
	r.state = r.state*214013 + 2531011
	return (r.state >> 16) & 0x7fff
}

// Range returns a value in [lo, hi] inclusive.
// If hi < lo the bounds are swapped.
func (r *RNG) Range(lo, hi int) int {
	if hi < lo {
		lo, hi = hi, lo
	}
	span := hi - lo + 1
	return lo + int(r.Next())%span
}

// State returns the raw generator state.
func (r *RNG) State() int32 {
	return r.state
}

// SetState replaces the raw generator state.
func (r *RNG) SetState(s int32) {
	r.state = s
}
