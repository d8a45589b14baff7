// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package magic matches fixed byte patterns in boot sectors.
package magic

// Magic is a byte pattern at a fixed offset of a sector.
type Magic struct {
	// Value to look for.
	Value []byte

	// Mask selects the bits of Value which are compared, nil compares every bit.
	//
	// If set, Mask must be as long as Value.
	Mask []byte

	// Offset of the value in the sector.
	Offset int
}

// End returns the offset of the first byte after the pattern.
func (m *Magic) End() int {
	return m.Offset + len(m.Value)
}

// Matches returns true if the pattern is found at its offset in the buffer.
//
// Buffers too short to hold the pattern never match.
func (m *Magic) Matches(buf []byte) bool {
	if m.Offset < 0 || len(buf) < m.End() {
		return false
	}

	field := buf[m.Offset:m.End()]

	for i, b := range m.Value {
		mask := byte(0xff)
		if m.Mask != nil {
			mask = m.Mask[i]
		}

		if field[i]&mask != b&mask {
			return false
		}
	}

	return true
}

// Set is a list of alternative patterns.
type Set []*Magic

// Matches returns true if any of the patterns matches.
func (set Set) Matches(buf []byte) bool {
	_, ok := set.First(buf)

	return ok
}

// First returns the first pattern which matches.
func (set Set) First(buf []byte) (*Magic, bool) {
	for _, m := range set {
		if m.Matches(buf) {
			return m, true
		}
	}

	return nil, false
}
