// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

//go:build !linux

package block

import (
	"errors"
	"fmt"
	"os"
)

// NewFromPath returns a new Device from the specified path.
func NewFromPath(path string, opts ...Option) (*Device, error) {
	options := applyOptions(opts...)

	flags := os.O_RDONLY
	if options.Flags&os.O_RDWR != 0 {
		flags = os.O_RDWR
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

// GetSize returns the file size in bytes.
//
// Only regular files (disk images) are supported.
func (d *Device) GetSize() (uint64, error) {
	st, err := d.f.Stat()
	if err != nil {
		return 0, err
	}

	if !st.Mode().IsRegular() {
		return 0, fmt.Errorf("unsupported file type %s: %w", st.Mode().Type(), errors.ErrUnsupported)
	}

	return uint64(st.Size()), nil
}

// GetSectorSize returns the default sector size.
func (d *Device) GetSectorSize() uint {
	return DefaultBlockSize
}

// IsReadOnly always returns false.
func (d *Device) IsReadOnly() (bool, error) {
	return false, nil
}

// GetSectorCount is not implemented.
func (d *Device) GetSectorCount() (uint64, error) {
	return 0, errors.ErrUnsupported
}

// GetFloppyGeometry is not implemented.
func (d *Device) GetFloppyGeometry() (FloppyGeometry, error) {
	return FloppyGeometry{}, errors.ErrUnsupported
}

// GetDiskGeometry is not implemented.
func (d *Device) GetDiskGeometry() (DiskGeometry, error) {
	return DiskGeometry{}, errors.ErrUnsupported
}

// TryLock is a no-op, advisory locking is only implemented on linux.
func (d *Device) TryLock(bool) error {
	return nil
}

// Unlock is a no-op.
func (d *Device) Unlock() error {
	return nil
}
