// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package block provides support for operations on blockdevices and disk images.
package block

import (
	"io"
	"os"
)

// Device wraps blockdevice operations.
type Device struct {
	f *os.File

	ownedFile bool
}

// NewFromFile returns a new Device from the specified file.
//
// The file is not closed by Device.Close.
func NewFromFile(f *os.File) *Device {
	return &Device{f: f}
}

// DefaultBlockSize is the default block size in bytes.
const DefaultBlockSize = 512

// Name returns the path the device was opened with.
func (d *Device) Name() string {
	return d.f.Name()
}

// File returns the underlying file.
func (d *Device) File() *os.File {
	return d.f
}

// ReadAt implements io.ReaderAt.
func (d *Device) ReadAt(p []byte, off int64) (int, error) {
	return d.f.ReadAt(p, off)
}

// WriteAt implements io.WriterAt.
func (d *Device) WriteAt(p []byte, off int64) (int, error) {
	return d.f.WriteAt(p, off)
}

// Sync flushes written data to the device.
func (d *Device) Sync() error {
	return d.f.Sync()
}

// Close the device.
//
// The underlying file is closed only if it was opened by NewFromPath.
func (d *Device) Close() error {
	if !d.ownedFile {
		return nil
	}

	return d.f.Close()
}

var (
	_ io.ReaderAt = (*Device)(nil)
	_ io.WriterAt = (*Device)(nil)
)
