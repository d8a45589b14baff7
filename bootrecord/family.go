// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package bootrecord

import (
	"github.com/siderolabs/go-bootrecord/bootsector"
	"github.com/siderolabs/go-bootrecord/internal/magic"
)

// Family is a loose structural classification of a boot sector.
//
// Families only improve diagnostics, they never affect write decisions.
type Family int

// Boot record families.
const (
	FamilyUnknown Family = iota
	FamilyFAT
	FamilyLILO
	FamilyMBR
)

// String implements fmt.Stringer.
func (f Family) String() string {
	switch f {
	case FamilyFAT:
		return "FAT"
	case FamilyLILO:
		return "LILO"
	case FamilyMBR:
		return "MBR"
	default:
		return "unknown"
	}
}

// families in the order they are tried.
var families = []Family{FamilyFAT, FamilyLILO, FamilyMBR}

var (
	// short (0xeb) or near (0xe9) jump
	x86Jump = magic.Magic{
		Offset: 0,
		Value:  []byte{0xe9},
		Mask:   []byte{0xfd},
	}

	fatTypeString = magic.Set{
		{Offset: bootsector.FAT16TypeOffset, Value: []byte("FAT")},
		{Offset: bootsector.FAT32TypeOffset, Value: []byte("FAT32")},
	}

	liloMagic = magic.Magic{
		Offset: 6,
		Value:  []byte("LILO"),
	}
)

// ResemblesFamily checks the structural markers of a family.
//
// Variable fields (labels, serials, partition entries contents) are never looked at.
func ResemblesFamily(s *bootsector.Sector, family Family) bool {
	if !s.HasX86Signature() {
		return false
	}

	switch family {
	case FamilyFAT:
		return fatShaped(s)
	case FamilyLILO:
		return liloMagic.Matches(s[:])
	case FamilyMBR:
		return !fatShaped(s) && partitionTableShaped(s)
	default:
		return false
	}
}

func fatShaped(s *bootsector.Sector) bool {
	if !x86Jump.Matches(s[:]) || !fatTypeString.Matches(s[:]) {
		return false
	}

	return bootsector.ValidSectorSize(s.BytesPerSector())
}

func partitionTableShaped(s *bootsector.Sector) bool {
	for idx := range bootsector.PartitionEntries {
		if status := s.PartitionEntry(idx)[0]; status != 0x00 && status != 0x80 {
			return false
		}
	}

	return true
}
