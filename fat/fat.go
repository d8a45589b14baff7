// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package fat recognizes FAT12/FAT16/FAT32 filesystem signatures in boot sectors.
package fat

import (
	"github.com/siderolabs/go-bootrecord/bootsector"
	"github.com/siderolabs/go-bootrecord/internal/magic"
)

// Type is a FAT filesystem variant.
type Type int

// FAT variants.
const (
	FAT12 Type = iota + 12
	FAT16
	FAT32
)

// Types lists all variants.
var Types = []Type{FAT12, FAT16, FAT32}

// String implements fmt.Stringer.
func (t Type) String() string {
	switch t {
	case FAT12:
		return "FAT12"
	case FAT16:
		return "FAT16"
	case FAT32:
		return "FAT32"
	default:
		return "FAT?"
	}
}

// Oracle tells whether a boot sector carries a filesystem signature.
type Oracle interface {
	IsFAT12(*bootsector.Sector) bool
	IsFAT16(*bootsector.Sector) bool
	IsFAT32(*bootsector.Sector) bool
}

var (
	fat12Magic = magic.Magic{
		Offset: bootsector.FAT16TypeOffset,
		Value:  []byte("FAT12"),
	}

	fat16Magic = magic.Magic{
		Offset: bootsector.FAT16TypeOffset,
		Value:  []byte("FAT16"),
	}

	fat32Magic = magic.Magic{
		Offset: bootsector.FAT32TypeOffset,
		Value:  []byte("FAT32"),
	}
)

// Signatures is the default Oracle, it checks the filesystem type string of the extended BPB.
type Signatures struct{}

// IsFAT12 implements Oracle.
func (Signatures) IsFAT12(s *bootsector.Sector) bool { return fat12Magic.Matches(s[:]) }

// IsFAT16 implements Oracle.
func (Signatures) IsFAT16(s *bootsector.Sector) bool { return fat16Magic.Matches(s[:]) }

// IsFAT32 implements Oracle.
func (Signatures) IsFAT32(s *bootsector.Sector) bool { return fat32Magic.Matches(s[:]) }

// Is asks the oracle about a single variant.
func Is(o Oracle, t Type, s *bootsector.Sector) bool {
	switch t {
	case FAT12:
		return o.IsFAT12(s)
	case FAT16:
		return o.IsFAT16(s)
	case FAT32:
		return o.IsFAT32(s)
	default:
		return false
	}
}

// Detect returns every variant whose signature the sector carries.
//
// The signatures are weak, more than one can match.
func Detect(o Oracle, s *bootsector.Sector) []Type {
	var result []Type

	for _, t := range Types {
		if Is(o, t, s) {
			result = append(result, t)
		}
	}

	return result
}
