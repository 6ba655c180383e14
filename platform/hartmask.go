package platform

// HartMask is a bit set over dense hart ids, one bit per hart. It can
// describe at most the first 64 harts, matching the wire header field.
type HartMask uint64

// MaxMaskHarts is the number of hart ids a HartMask can describe.
const MaxMaskHarts = 64

// MaskOf builds a mask with the given hart ids set. Ids beyond the mask's
// range are ignored.
func MaskOf(ids ...uint32) HartMask {
	var m HartMask
	for _, id := range ids {
		if id < MaxMaskHarts {
			m |= 1 << id
		}
	}
	return m
}

// Has reports whether the bit for hartID is set. Ids beyond the mask's range
// report false rather than wrapping the shift.
func (m HartMask) Has(hartID uint32) bool {
	if hartID >= MaxMaskHarts {
		return false
	}
	return m&(1<<hartID) != 0
}

// Count returns the number of set bits.
func (m HartMask) Count() int {
	n := 0
	for m != 0 {
		m &= m - 1
		n++
	}
	return n
}
