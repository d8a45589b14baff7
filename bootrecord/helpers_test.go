// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package bootrecord_test

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/siderolabs/go-bootrecord/block"
	"github.com/siderolabs/go-bootrecord/bootrecord"
	"github.com/siderolabs/go-bootrecord/bootsector"
	"github.com/siderolabs/go-bootrecord/classify"
)

type fakeDevice struct {
	name  string
	class classify.Class
	start uint64
}

func (d *fakeDevice) Name() string { return d.name }

func (d *fakeDevice) GetSectorCount() (uint64, error) {
	if d.class == classify.Unclassifiable {
		return 0, unix.ENOTTY
	}

	return 2048 * 1024, nil
}

func (d *fakeDevice) GetFloppyGeometry() (block.FloppyGeometry, error) {
	if d.class != classify.Floppy {
		return block.FloppyGeometry{}, unix.EINVAL
	}

	return block.FloppyGeometry{Sectors: 2880, SectorsPerTrack: 18, Heads: 2, Tracks: 80}, nil
}

func (d *fakeDevice) GetDiskGeometry() (block.DiskGeometry, error) {
	switch d.class {
	case classify.Partition:
		return block.DiskGeometry{Heads: 255, Sectors: 63, StartSector: d.start}, nil
	case classify.WholeDisk, classify.Floppy:
		return block.DiskGeometry{Heads: 255, Sectors: 63}, nil
	default:
		return block.DiskGeometry{}, unix.ENOTTY
	}
}

func (d *fakeDevice) GetSize() (uint64, error) {
	return 1 << 30, nil
}

var (
	wholeDisk = &fakeDevice{name: "/dev/sda", class: classify.WholeDisk}
	partition = &fakeDevice{name: "/dev/sda1", class: classify.Partition, start: 2048}
	floppy    = &fakeDevice{name: "/dev/fd0", class: classify.Floppy}
	imageFile = &fakeDevice{name: "disk.img", class: classify.Unclassifiable}
)

// fatSector builds a FAT boot sector with a boot code pattern seeded by code.
func fatSector(fsType string, code byte, label string) bootsector.Sector {
	var s bootsector.Sector

	copy(s[0:], []byte{0xeb, 0x3c, 0x90})
	copy(s[bootsector.OEMNameOffset:], "MSWIN4.1")
	binary.LittleEndian.PutUint16(s[bootsector.BPBOffset:], 512)
	s[0x0d] = 4 // sectors per cluster
	binary.LittleEndian.PutUint16(s[0x0e:], 1)
	s[0x10] = 2 // FATs
	s[0x15] = 0xf8

	labelOffset, typeOffset, codeStart := bootsector.FAT16LabelOffset, bootsector.FAT16TypeOffset, bootsector.FAT16BPBEnd

	if fsType == "FAT32" {
		labelOffset, typeOffset, codeStart = bootsector.FAT32LabelOffset, bootsector.FAT32TypeOffset, bootsector.FAT32BPBEnd
		s[1] = 0x58
	}

	copy(s[labelOffset:], padLabel(label))
	copy(s[typeOffset:], fsType+"   ")

	for off := codeStart; off < bootsector.SignatureOffset; off++ {
		s[off] = code + byte(off)
	}

	s[510], s[511] = 0x55, 0xaa

	return s
}

// mbrSector builds a master boot record with a boot code pattern seeded by code.
func mbrSector(code byte) bootsector.Sector {
	var s bootsector.Sector

	for off := range bootsector.DiskIDOffset {
		s[off] = code ^ byte(off)
	}

	s[510], s[511] = 0x55, 0xaa

	return s
}

func padLabel(label string) string {
	for len(label) < bootsector.LabelLength {
		label += " "
	}

	return label
}

func withPartitionTable(s bootsector.Sector) bootsector.Sector {
	binary.LittleEndian.PutUint32(s[bootsector.DiskIDOffset:], 0xdeadbeef)

	entry := s.PartitionEntry(0)
	entry[0] = 0x80
	entry[4] = 0x0c
	binary.LittleEndian.PutUint32(entry[8:], 2048)
	binary.LittleEndian.PutUint32(entry[12:], 1<<20)

	return s
}

func templateImages() map[bootrecord.Kind]bootsector.Sector {
	return map[bootrecord.Kind]bootsector.Sector{
		bootrecord.MbrWindows2000:    mbrSector(0x20),
		bootrecord.MbrWin95B:         mbrSector(0x95),
		bootrecord.MbrDos:            mbrSector(0xd0),
		bootrecord.MbrSyslinux:       mbrSector(0x51),
		bootrecord.MbrZero:           {510: 0x55, 511: 0xaa},
		bootrecord.Fat12Floppy:       fatSector("FAT12", 0x12, "NO NAME"),
		bootrecord.Fat16Partition:    fatSector("FAT16", 0x16, "NO NAME"),
		bootrecord.Fat32DosPartition: fatSector("FAT32", 0x32, "NO NAME"),
		bootrecord.Fat32NtPartition:  fatSector("FAT32", 0x42, "NO NAME"),
	}
}

func testCatalogue(t *testing.T) bootrecord.Templates {
	t.Helper()

	catalogue := bootrecord.Templates{}

	for kind, image := range templateImages() {
		tmpl, err := bootrecord.NewTemplate(kind, image)
		require.NoError(t, err)

		catalogue.Add(tmpl)
	}

	return catalogue
}
