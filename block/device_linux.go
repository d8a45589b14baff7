// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package block

import (
	"errors"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
)

// NewFromPath returns a new Device from the specified path.
func NewFromPath(path string, opts ...Option) (*Device, error) {
	options := applyOptions(opts...)

	flags := os.O_RDONLY | unix.O_CLOEXEC | unix.O_NONBLOCK
	if options.Flags&os.O_RDWR != 0 {
		flags = os.O_RDWR | unix.O_CLOEXEC
	}

	f, err := os.OpenFile(path, flags, 0)
	if err != nil {
		return nil, err
	}

	return &Device{
		f:         f,
		ownedFile: true,
	}, nil
}

// GetSize returns blockdevice size in bytes.
//
// For regular files (disk images) the file size is returned.
func (d *Device) GetSize() (uint64, error) {
	var devsize uint64
	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, d.f.Fd(), unix.BLKGETSIZE64, uintptr(unsafe.Pointer(&devsize))); errno != 0 {
		st, err := d.f.Stat()
		if err != nil {
			return 0, err
		}

		if !st.Mode().IsRegular() {
			return 0, errno
		}

		return uint64(st.Size()), nil
	}

	return devsize, nil
}

// GetSectorSize returns blockdevice sector size in bytes.
func (d *Device) GetSectorSize() uint {
	var size uint

	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, d.f.Fd(), uintptr(unix.BLKSSZGET), uintptr(unsafe.Pointer(&size))); errno != 0 {
		return DefaultBlockSize
	}

	if size == 0 || size&(size-1) != 0 {
		return DefaultBlockSize
	}

	return size
}

// IsReadOnly returns true if the blockdevice is read-only.
//
// Regular files are never reported as read-only, opening them for writing fails instead.
func (d *Device) IsReadOnly() (bool, error) {
	var flags int
	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, d.f.Fd(), unix.BLKROGET, uintptr(unsafe.Pointer(&flags))); errno != 0 {
		if errors.Is(errno, unix.ENOTTY) {
			return false, nil
		}

		return false, errno
	}

	return flags != 0, nil
}

// TryLock takes an advisory lock on the device, failing with EWOULDBLOCK if it is held elsewhere.
func (d *Device) TryLock(exclusive bool) error {
	flag := unix.LOCK_NB
	if exclusive {
		flag |= unix.LOCK_EX
	} else {
		flag |= unix.LOCK_SH
	}

	for {
		if err := unix.Flock(int(d.f.Fd()), flag); !errors.Is(err, unix.EINTR) {
			return err
		}
	}
}

// Unlock releases any lock.
func (d *Device) Unlock() error {
	for {
		if err := unix.Flock(int(d.f.Fd()), unix.LOCK_UN); !errors.Is(err, unix.EINTR) {
			return err
		}
	}
}
