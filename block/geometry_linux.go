// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package block

import (
	"runtime"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Linux headers constants.
//
// Hardcoded here to avoid CGo dependency.
const (
	blkGetSize = 0x1260 // BLKGETSIZE
	hdioGetGeo = 0x0301 // HDIO_GETGEO

	iocRead      = 2
	iocDirShift  = 30
	iocSizeShift = 16
	iocTypeShift = 8
)

// struct floppy_struct from linux/fd.h.
type floppyStruct struct {
	Size    uint32
	Sect    uint32
	Head    uint32
	Track   uint32
	Stretch uint32
	Gap     uint8
	Rate    uint8
	Spec1   uint8
	FmtGap  uint8
	Name    uintptr
}

// struct hd_geometry from linux/hdreg.h.
type hdGeometry struct {
	Heads     uint8
	Sectors   uint8
	Cylinders uint16
	Start     uintptr
}

// FDGETPRM is _IOR(2, 0x04, struct floppy_struct), the size part depends on the pointer width.
var fdGetPrm = uintptr(iocRead<<iocDirShift | unsafe.Sizeof(floppyStruct{})<<iocSizeShift | 2<<iocTypeShift | 0x04)

// GetSectorCount returns the device size in 512-byte sectors (BLKGETSIZE).
//
// The call fails for anything but a block device.
func (d *Device) GetSectorCount() (uint64, error) {
	var sectors uint

	_, _, errno := unix.Syscall(unix.SYS_IOCTL, d.f.Fd(), blkGetSize, uintptr(unsafe.Pointer(&sectors)))
	runtime.KeepAlive(d)

	if errno != 0 {
		return 0, errno
	}

	return uint64(sectors), nil
}

// GetFloppyGeometry returns the floppy drive parameters (FDGETPRM).
//
// The call fails unless the device is driven by the floppy driver.
func (d *Device) GetFloppyGeometry() (FloppyGeometry, error) {
	var fs floppyStruct

	_, _, errno := unix.Syscall(unix.SYS_IOCTL, d.f.Fd(), fdGetPrm, uintptr(unsafe.Pointer(&fs)))
	runtime.KeepAlive(d)

	if errno != 0 {
		return FloppyGeometry{}, errno
	}

	return FloppyGeometry{
		Sectors:         fs.Size,
		SectorsPerTrack: fs.Sect,
		Heads:           fs.Head,
		Tracks:          fs.Track,
	}, nil
}

// GetDiskGeometry returns the disk geometry (HDIO_GETGEO).
//
// For partitions StartSector holds the partition offset on the whole disk.
func (d *Device) GetDiskGeometry() (DiskGeometry, error) {
	var geo hdGeometry

	_, _, errno := unix.Syscall(unix.SYS_IOCTL, d.f.Fd(), hdioGetGeo, uintptr(unsafe.Pointer(&geo)))
	runtime.KeepAlive(d)

	if errno != 0 {
		return DiskGeometry{}, errno
	}

	return DiskGeometry{
		Heads:       geo.Heads,
		Sectors:     geo.Sectors,
		Cylinders:   geo.Cylinders,
		StartSector: uint64(geo.Start),
	}, nil
}
