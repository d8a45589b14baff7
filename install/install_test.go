// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package install_test

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/siderolabs/go-bootrecord/block"
	"github.com/siderolabs/go-bootrecord/bootrecord"
	"github.com/siderolabs/go-bootrecord/bootsector"
	"github.com/siderolabs/go-bootrecord/install"
)

func fatSector(fsType string, code byte, label string) bootsector.Sector {
	var s bootsector.Sector

	copy(s[0:], []byte{0xeb, 0x3c, 0x90})
	copy(s[bootsector.OEMNameOffset:], "MSWIN4.1")
	binary.LittleEndian.PutUint16(s[bootsector.BPBOffset:], 512)
	s[0x0d] = 8

	labelOffset, typeOffset, codeStart := bootsector.FAT16LabelOffset, bootsector.FAT16TypeOffset, bootsector.FAT16BPBEnd

	if fsType == "FAT32" {
		labelOffset, typeOffset, codeStart = bootsector.FAT32LabelOffset, bootsector.FAT32TypeOffset, bootsector.FAT32BPBEnd
		s[1] = 0x58
	}

	copy(s[labelOffset:], label)
	copy(s[typeOffset:], fsType+"   ")

	for off := codeStart; off < bootsector.SignatureOffset; off++ {
		s[off] = code + byte(off)
	}

	s[510], s[511] = 0x55, 0xaa

	return s
}

func mbrSector(code byte) bootsector.Sector {
	var s bootsector.Sector

	for off := range bootsector.DiskIDOffset {
		s[off] = code ^ byte(off)
	}

	s[510], s[511] = 0x55, 0xaa

	return s
}

func template(t *testing.T, kind bootrecord.Kind, image bootsector.Sector) *bootrecord.Template {
	t.Helper()

	tmpl, err := bootrecord.NewTemplate(kind, image)
	require.NoError(t, err)

	return tmpl
}

// openImage creates a disk image starting with the sector and opens it for writing.
func openImage(t *testing.T, s bootsector.Sector) *block.Device {
	t.Helper()

	path := filepath.Join(t.TempDir(), "disk.img")

	f, err := os.Create(path)
	require.NoError(t, err)

	_, err = f.Write(s[:])
	require.NoError(t, err)

	require.NoError(t, f.Truncate(1024*1024))
	require.NoError(t, f.Close())

	dev, err := block.NewFromPath(path, block.OpenForWrite())
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, dev.Close())
	})

	return dev
}

func readBack(t *testing.T, dev *block.Device) bootsector.Sector {
	t.Helper()

	s, err := bootsector.Read(dev)
	require.NoError(t, err)

	return s
}

func TestInstallFAT(t *testing.T) {
	for _, test := range []struct {
		name string

		kind      bootrecord.Kind
		fsType    string
		keepLabel bool

		expectedLabel string
	}{
		{
			name:          "fat16 keep label",
			kind:          bootrecord.Fat16Partition,
			fsType:        "FAT16",
			keepLabel:     true,
			expectedLabel: "DATA",
		},
		{
			name:          "fat16 wipe label",
			kind:          bootrecord.Fat16Partition,
			fsType:        "FAT16",
			expectedLabel: "NO NAME",
		},
		{
			name:          "fat32 wipe label",
			kind:          bootrecord.Fat32NtPartition,
			fsType:        "FAT32",
			expectedLabel: "NO NAME",
		},
		{
			name:          "fat32 keep label",
			kind:          bootrecord.Fat32DosPartition,
			fsType:        "FAT32",
			keepLabel:     true,
			expectedLabel: "DATA",
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			current := fatSector(test.fsType, 0x00, "DATA       ")
			binary.LittleEndian.PutUint32(current[bootsector.HiddenSectorsOffset:], 63)

			dev := openImage(t, current)

			tmpl := template(t, test.kind, fatSector(test.fsType, 0x77, "NO NAME    "))

			w := install.NewWriter(install.WithLogger(zaptest.NewLogger(t)), install.WithKeepLabel(test.keepLabel))

			require.NoError(t, w.Install(dev, tmpl))

			written := readBack(t, dev)

			assert.True(t, tmpl.Matches(&written))
			assert.Equal(t, uint32(63), written.HiddenSectors())

			labelOffset := bootsector.FAT16LabelOffset
			if test.fsType == "FAT32" {
				labelOffset = bootsector.FAT32LabelOffset
			}

			assert.Equal(t, test.expectedLabel, written.Label(labelOffset))
		})
	}
}

func TestInstallMBRKeepsPartitionTable(t *testing.T) {
	current := mbrSector(0x11)
	binary.LittleEndian.PutUint32(current[bootsector.DiskIDOffset:], 0xcafebabe)
	current.PartitionEntry(0)[0] = 0x80
	current.PartitionEntry(0)[4] = 0x83

	dev := openImage(t, current)

	w := install.NewWriter(install.WithLogger(zaptest.NewLogger(t)))

	tmpl := template(t, bootrecord.MbrDos, mbrSector(0xd0))

	require.NoError(t, w.Install(dev, tmpl))

	written := readBack(t, dev)

	assert.True(t, tmpl.Matches(&written))
	assert.Equal(t, current[bootsector.DiskIDOffset:bootsector.SignatureOffset], written[bootsector.DiskIDOffset:bootsector.SignatureOffset])
	assert.True(t, written.HasX86Signature())

	// the rest of the image is untouched
	buf := make([]byte, bootsector.Size)
	_, err := dev.ReadAt(buf, bootsector.Size)
	require.NoError(t, err)
	assert.Equal(t, make([]byte, bootsector.Size), buf)
}

func TestInstallZeroMBR(t *testing.T) {
	current := mbrSector(0x11)
	current.PartitionEntry(1)[0] = 0x80

	dev := openImage(t, current)

	tmpl := template(t, bootrecord.MbrZero, bootsector.Sector{510: 0x55, 511: 0xaa})

	require.NoError(t, install.NewWriter().Install(dev, tmpl))

	written := readBack(t, dev)

	assert.Equal(t, make([]byte, bootsector.DiskIDOffset), written[:bootsector.DiskIDOffset])
	assert.Equal(t, byte(0x80), written.PartitionEntry(1)[0])
}

func TestInstallUnknownKind(t *testing.T) {
	dev := openImage(t, mbrSector(0x11))

	err := install.NewWriter().Install(dev, &bootrecord.Template{Kind: bootrecord.KindAuto})
	require.ErrorIs(t, err, bootrecord.ErrUnknownKind)

	assert.Equal(t, mbrSector(0x11), readBack(t, dev))
}

func TestInstallShortImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "short.img")
	require.NoError(t, os.WriteFile(path, make([]byte, 100), 0o644))

	dev, err := block.NewFromPath(path, block.OpenForWrite())
	require.NoError(t, err)

	t.Cleanup(func() { dev.Close() }) //nolint:errcheck

	require.Error(t, install.NewWriter().Install(dev, template(t, bootrecord.MbrDos, mbrSector(0xd0))))
}

type readOnlyDevice struct {
	*block.Device
}

func (readOnlyDevice) IsReadOnly() (bool, error) {
	return true, nil
}

func TestInstallReadOnly(t *testing.T) {
	dev := openImage(t, mbrSector(0x11))

	err := install.NewWriter().Install(readOnlyDevice{dev}, template(t, bootrecord.MbrDos, mbrSector(0xd0)))
	require.ErrorIs(t, err, install.ErrReadOnly)

	assert.Equal(t, mbrSector(0x11), readBack(t, dev))
}

// partitionDevice reports a partition start sector for a disk image.
type partitionDevice struct {
	*block.Device

	start uint64
}

func (d partitionDevice) GetDiskGeometry() (block.DiskGeometry, error) {
	return block.DiskGeometry{Heads: 255, Sectors: 63, StartSector: d.start}, nil
}

func TestWritePartitionInfo(t *testing.T) {
	for _, test := range []struct {
		name          string
		fsType        string
		driveIDOffset int
	}{
		{
			name:          "fat16",
			fsType:        "FAT16",
			driveIDOffset: bootsector.FAT16DriveNumberOffset,
		},
		{
			name:          "fat32",
			fsType:        "FAT32",
			driveIDOffset: bootsector.FAT32DriveNumberOffset,
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			current := fatSector(test.fsType, 0x00, "DATA       ")
			dev := openImage(t, current)

			w := install.NewWriter(install.WithLogger(zaptest.NewLogger(t)))

			require.NoError(t, w.WritePartitionInfo(partitionDevice{Device: dev, start: 2048}))

			written := readBack(t, dev)

			assert.Equal(t, uint32(2048), written.HiddenSectors())
			assert.Equal(t, byte(install.DriveID), written[test.driveIDOffset])

			// only the two fields differ
			written[test.driveIDOffset] = current[test.driveIDOffset]
			binary.LittleEndian.PutUint32(written[bootsector.HiddenSectorsOffset:], 0)
			assert.Equal(t, current, written)
		})
	}
}

func TestWritePartitionInfoWithoutPartition(t *testing.T) {
	current := fatSector("FAT16", 0x00, "DATA       ")
	dev := openImage(t, current)

	// disk images answer no geometry query
	err := install.NewWriter().WritePartitionInfo(dev)
	require.ErrorIs(t, err, install.ErrNoPartitionStart)

	assert.Equal(t, current, readBack(t, dev))
}

func TestWritePartitionInfoOverflow(t *testing.T) {
	dev := openImage(t, fatSector("FAT32", 0x00, "DATA       "))

	err := install.NewWriter().WritePartitionInfo(partitionDevice{Device: dev, start: 1 << 33})
	require.Error(t, err)
}

func TestWritePartitionInfoWholeDisk(t *testing.T) {
	current := mbrSector(0x33)
	dev := openImage(t, current)

	// whole disks answer HDIO_GETGEO with a zero start sector
	err := install.NewWriter().WritePartitionInfo(partitionDevice{Device: dev, start: 0})
	require.ErrorIs(t, err, install.ErrNoPartitionStart)

	assert.Equal(t, current, readBack(t, dev))
}

// sectorSizeDevice reports a logical sector size for a disk image.
type sectorSizeDevice struct {
	*block.Device

	size uint
}

func (d sectorSizeDevice) GetSectorSize() uint {
	return d.size
}

func TestInstallSectorSize(t *testing.T) {
	current := mbrSector(0x11)
	dev := openImage(t, current)

	w := install.NewWriter()
	tmpl := template(t, bootrecord.MbrDos, mbrSector(0xd0))

	err := w.Install(sectorSizeDevice{Device: dev, size: 4096}, tmpl)
	require.ErrorIs(t, err, install.ErrSectorSize)

	assert.Equal(t, current, readBack(t, dev))

	require.NoError(t, w.Install(sectorSizeDevice{Device: dev, size: 512}, tmpl))
	written := readBack(t, dev)
	assert.True(t, tmpl.Matches(&written))
}
