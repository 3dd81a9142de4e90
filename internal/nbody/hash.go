package nbody

// Hash is a fixed 32-bit avalanche integer hash. Equal inputs always give
// equal outputs, on every platform and in every backend.
func Hash(a uint32) uint32 {
	a = (a + 0x7ed55d16) + (a << 12)
	a = (a ^ 0xc761c23c) ^ (a >> 19)
	a = (a + 0x165667b1) + (a << 5)
	a = (a + 0xd3a2646c) ^ (a << 9)
	a = (a + 0xfd7046c5) + (a << 3)
	a = (a ^ 0xb55a4f09) ^ (a >> 16)
	return a
}

// Seed derives the generator seed for body i under a time tag.
func Seed(i int, timeTag uint32) uint32 {
	return Hash(uint32(i) ^ Hash(timeTag))
}

const (
	lcgMultiplier = 48271
	lcgModulus    = 1<<31 - 1
)

// minstd is the Park-Miller minimal standard generator.
type minstd struct {
	x uint32
}

func newMinstd(seed uint32) minstd {
	x := seed % lcgModulus
	if x == 0 {
		x = 1
	}
	return minstd{x: x}
}

// next returns a value in [1, lcgModulus-1].
func (r *minstd) next() uint32 {
	r.x = uint32(uint64(r.x) * lcgMultiplier % lcgModulus)
	return r.x
}

// uniform maps the next draw onto [lo, hi].
func (r *minstd) uniform(lo, hi float32) float32 {
	u := float64(r.next()-1) / float64(lcgModulus-2)
	return lo + (hi-lo)*float32(u)
}
