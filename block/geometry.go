// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package block

// FloppyGeometry is the drive geometry reported by the floppy driver.
type FloppyGeometry struct {
	Sectors         uint32 // total sectors
	SectorsPerTrack uint32
	Heads           uint32
	Tracks          uint32
}

// DiskGeometry is the (legacy CHS) geometry reported by a disk driver.
type DiskGeometry struct {
	Heads     uint8
	Sectors   uint8
	Cylinders uint16

	// StartSector is the offset of the device on the whole disk, zero for whole disks.
	StartSector uint64
}
