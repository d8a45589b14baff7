// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package bootrecord

import (
	"fmt"

	"github.com/siderolabs/go-bootrecord/bootsector"
	"github.com/siderolabs/go-bootrecord/classify"
	"github.com/siderolabs/go-bootrecord/fat"
)

// Kind is a boot record variant this module knows how to recognize and check.
type Kind int

// Boot record kinds.
//
// The declaration order is the auto-selection priority order.
const (
	KindNone Kind = iota
	KindAuto
	MbrWindows2000
	MbrWin95B
	MbrDos
	MbrSyslinux
	MbrZero
	Fat12Floppy
	Fat16Partition
	Fat32DosPartition
	Fat32NtPartition

	numKinds
)

type kindInfo struct {
	id          string
	description string
	flag        string
	target      string // where the record is supposed to be written

	family   Family
	class    classify.Class
	fs       fat.Type // zero if no filesystem is required
	excluded []bootsector.Range
}

var (
	mbrExcluded   = []bootsector.Range{{Start: bootsector.DiskIDOffset, End: bootsector.SignatureOffset}}
	fat16Excluded = []bootsector.Range{{Start: bootsector.BPBOffset, End: bootsector.FAT16BPBEnd}}
	fat32Excluded = []bootsector.Range{{Start: bootsector.BPBOffset, End: bootsector.FAT32BPBEnd}}
)

const hardDisk = "hard disk device"

var kinds = [numKinds]kindInfo{
	MbrWindows2000: {
		id:          "mbr-2000",
		description: "Windows 2000/XP/2003 master boot record",
		flag:        "-m",
		target:      hardDisk,
		family:      FamilyMBR,
		class:       classify.WholeDisk,
		excluded:    mbrExcluded,
	},
	MbrWin95B: {
		id:          "mbr-95b",
		description: "Windows 95B/98/98SE/ME master boot record",
		flag:        "-9",
		target:      hardDisk,
		family:      FamilyMBR,
		class:       classify.WholeDisk,
		excluded:    mbrExcluded,
	},
	MbrDos: {
		id:          "mbr-dos",
		description: "DOS/Windows NT master boot record",
		flag:        "-d",
		target:      hardDisk,
		family:      FamilyMBR,
		class:       classify.WholeDisk,
		excluded:    mbrExcluded,
	},
	MbrSyslinux: {
		id:          "mbr-syslinux",
		description: "public domain syslinux master boot record",
		flag:        "-s",
		target:      hardDisk,
		family:      FamilyMBR,
		class:       classify.WholeDisk,
		excluded:    mbrExcluded,
	},
	MbrZero: {
		id:          "mbr-zero",
		description: "empty (zeroed) master boot record",
		flag:        "-z",
		target:      hardDisk,
		family:      FamilyMBR,
		class:       classify.WholeDisk,
		excluded:    mbrExcluded,
	},
	Fat12Floppy: {
		id:          "fat12",
		description: "FAT12 boot record",
		flag:        "-1",
		target:      "floppy",
		family:      FamilyFAT,
		class:       classify.Floppy,
		fs:          fat.FAT12,
		excluded:    fat16Excluded,
	},
	Fat16Partition: {
		id:          "fat16",
		description: "FAT16 boot record",
		flag:        "-6",
		target:      "FAT16 partition",
		family:      FamilyFAT,
		class:       classify.Partition,
		fs:          fat.FAT16,
		excluded:    fat16Excluded,
	},
	Fat32DosPartition: {
		id:          "fat32-dos",
		description: "FAT32 DOS boot record",
		flag:        "-3",
		target:      "FAT32 partition",
		family:      FamilyFAT,
		class:       classify.Partition,
		fs:          fat.FAT32,
		excluded:    fat32Excluded,
	},
	Fat32NtPartition: {
		id:          "fat32-nt",
		description: "FAT32 NT boot record",
		flag:        "-2",
		target:      "FAT32 partition",
		family:      FamilyFAT,
		class:       classify.Partition,
		fs:          fat.FAT32,
		excluded:    fat32Excluded,
	},
}

// Kinds returns the writable kinds in priority order (KindNone and KindAuto excluded).
func Kinds() []Kind {
	result := make([]Kind, 0, numKinds-MbrWindows2000)

	for k := MbrWindows2000; k < numKinds; k++ {
		result = append(result, k)
	}

	return result
}

// ParseKind returns the kind with the given id.
func ParseKind(id string) (Kind, error) {
	switch id {
	case "none":
		return KindNone, nil
	case "auto":
		return KindAuto, nil
	}

	for _, k := range Kinds() {
		if kinds[k].id == id {
			return k, nil
		}
	}

	return KindNone, fmt.Errorf("unknown boot record kind %q", id)
}

// Valid returns true for the writable kinds.
func (k Kind) Valid() bool {
	return k >= MbrWindows2000 && k < numKinds
}

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch {
	case k == KindNone:
		return "none"
	case k == KindAuto:
		return "auto"
	case k.Valid():
		return kinds[k].id
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Description returns a human readable description.
func (k Kind) Description() string {
	if !k.Valid() {
		return k.String()
	}

	return kinds[k].description
}

// Flag returns the command line switch which writes this kind.
func (k Kind) Flag() string {
	if !k.Valid() {
		return ""
	}

	return kinds[k].flag
}

// Family returns the family the kind belongs to.
func (k Kind) Family() Family {
	if !k.Valid() {
		return FamilyUnknown
	}

	return kinds[k].family
}

// RequiredClass returns the device class the kind may be written to.
func (k Kind) RequiredClass() classify.Class {
	if !k.Valid() {
		return classify.Unclassifiable
	}

	return kinds[k].class
}

// RequiredFilesystem returns the filesystem signature the kind requires, if any.
func (k Kind) RequiredFilesystem() (fat.Type, bool) {
	if !k.Valid() || kinds[k].fs == 0 {
		return 0, false
	}

	return kinds[k].fs, true
}

// ExcludedRanges returns the ranges which are expected to differ between installations
// and are never compared.
func (k Kind) ExcludedRanges() []bootsector.Range {
	if !k.Valid() {
		return nil
	}

	return kinds[k].excluded
}

// ComparedRanges returns the ranges compared for an exact template match.
func (k Kind) ComparedRanges() []bootsector.Range {
	return bootsector.Complement(k.ExcludedRanges()...)
}
