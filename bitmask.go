package shirushi

// bitmask256 is the component signature of an archetype. Bit n is set when
// the component with id n is part of the signature.
type bitmask256 [4]uint64

// set enables the bit for the given component id.
func (m *bitmask256) set(bit uint8) {
	m[bit>>6] |= uint64(1) << uint64(bit&63)
}

// unset clears the bit for the given component id.
func (m *bitmask256) unset(bit uint8) {
	m[bit>>6] &= ^(uint64(1) << uint64(bit&63))
}

// has reports whether the bit for the given component id is set.
func (m bitmask256) has(bit uint8) bool {
	return m[bit>>6]&(uint64(1)<<uint64(bit&63)) != 0
}

// or returns the union of both signatures.
func (m bitmask256) or(other bitmask256) bitmask256 {
	return bitmask256{m[0] | other[0], m[1] | other[1], m[2] | other[2], m[3] | other[3]}
}

// contains checks that every bit of sub is also set in m. Filters use it to
// decide whether an archetype carries all the queried components.
func (m bitmask256) contains(sub bitmask256) bool {
	return (m[0]&sub[0]) == sub[0] &&
		(m[1]&sub[1]) == sub[1] &&
		(m[2]&sub[2]) == sub[2] &&
		(m[3]&sub[3]) == sub[3]
}
