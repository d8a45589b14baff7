// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package bootsector provides the 512-byte boot sector buffer and its well-known offsets.
package bootsector

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Size of a boot sector in bytes.
const Size = 512

// Well-known boot sector offsets.
const (
	OEMNameOffset = 0x03
	OEMNameLength = 8

	// BIOS parameter block, shared by FAT12/16/32.
	BPBOffset           = 0x0B
	HiddenSectorsOffset = 0x1C

	// FAT12/16 extended BPB.
	FAT16DriveNumberOffset = 0x24
	FAT16LabelOffset       = 0x2B
	FAT16TypeOffset        = 0x36
	FAT16BPBEnd            = 0x3E

	// FAT32 extended BPB.
	FAT32DriveNumberOffset = 0x40
	FAT32LabelOffset       = 0x47
	FAT32TypeOffset        = 0x52
	FAT32BPBEnd            = 0x5A

	LabelLength = 11

	// Master boot record.
	DiskIDOffset         = 0x1B8
	PartitionTableOffset = 0x1BE
	PartitionEntrySize   = 16
	PartitionEntries     = 4

	SignatureOffset = 0x1FE
)

// Signature is the x86 boot signature, stored as 0x55 0xAA.
const Signature = 0xAA55

// Sector is a boot sector.
//
// Sector is a value type, functions in this module never modify a Sector they are given.
type Sector [Size]byte

// Read the first sector of r.
func Read(r io.ReaderAt) (Sector, error) {
	var s Sector

	if _, err := io.ReadFull(io.NewSectionReader(r, 0, Size), s[:]); err != nil {
		return s, fmt.Errorf("error reading boot sector: %w", err)
	}

	return s, nil
}

// FromBytes copies a boot sector from buf.
func FromBytes(buf []byte) (Sector, error) {
	var s Sector

	if len(buf) < Size {
		return s, fmt.Errorf("boot sector too short: %d < %d", len(buf), Size)
	}

	copy(s[:], buf)

	return s, nil
}

// HasX86Signature returns true if the sector ends with the 0x55 0xAA boot signature.
func (s *Sector) HasX86Signature() bool {
	return binary.LittleEndian.Uint16(s[SignatureOffset:]) == Signature
}

// BytesPerSector returns the BPB bytes per sector field.
func (s *Sector) BytesPerSector() uint16 {
	return binary.LittleEndian.Uint16(s[BPBOffset:])
}

// ValidSectorSize returns true for the sector sizes a FAT BPB may declare.
func ValidSectorSize[T uint16 | uint32 | uint64](size T) bool {
	return size >= 512 && size <= 4096 && size&(size-1) == 0
}

// HiddenSectors returns the BPB hidden sectors count.
func (s *Sector) HiddenSectors() uint32 {
	return binary.LittleEndian.Uint32(s[HiddenSectorsOffset:])
}

// PartitionEntry returns the raw idx'th MBR partition table entry.
func (s *Sector) PartitionEntry(idx int) []byte {
	if idx < 0 || idx >= PartitionEntries {
		panic("invalid partition table index")
	}

	off := PartitionTableOffset + idx*PartitionEntrySize

	return s[off : off+PartitionEntrySize : off+PartitionEntrySize]
}
