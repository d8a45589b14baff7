// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package bootsector

import (
	"bytes"
	"fmt"
)

// Range is a half-open byte range [Start, End) within a sector.
type Range struct {
	Start, End int
}

// String implements fmt.Stringer.
func (r Range) String() string {
	return fmt.Sprintf("[0x%03x,0x%03x)", r.Start, r.End)
}

// Valid returns true if the range is non-empty and lies within a sector.
func (r Range) Valid() bool {
	return r.Start >= 0 && r.Start < r.End && r.End <= Size
}

// Complement returns the ranges of the sector not covered by excluded.
//
// Excluded ranges must be sorted and must not overlap.
func Complement(excluded ...Range) []Range {
	var (
		result []Range
		pos    int
	)

	for _, r := range excluded {
		if r.Start > pos {
			result = append(result, Range{Start: pos, End: r.Start})
		}

		pos = max(pos, r.End)
	}

	if pos < Size {
		result = append(result, Range{Start: pos, End: Size})
	}

	return result
}

// EqualIn returns true if a and b are equal in all of the ranges.
func EqualIn(a, b *Sector, ranges []Range) bool {
	for _, r := range ranges {
		if !bytes.Equal(a[r.Start:r.End], b[r.Start:r.End]) {
			return false
		}
	}

	return true
}

// CopyIn copies src into dst in all of the ranges.
func CopyIn(dst, src *Sector, ranges []Range) {
	for _, r := range ranges {
		copy(dst[r.Start:r.End], src[r.Start:r.End])
	}
}
