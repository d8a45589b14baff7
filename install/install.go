// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package install writes boot record templates onto devices.
package install

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"go.uber.org/zap"

	"github.com/siderolabs/go-bootrecord/bootrecord"
	"github.com/siderolabs/go-bootrecord/bootsector"
	"github.com/siderolabs/go-bootrecord/classify"
	"github.com/siderolabs/go-bootrecord/fat"
)

// WipedLabel is the volume label of a freshly formatted FAT filesystem.
const WipedLabel = "NO NAME    "

// DriveID is the BIOS drive number of the first hard disk.
const DriveID = 0x80

// Errors.
var (
	ErrReadOnly         = errors.New("device is read-only")
	ErrNoPartitionStart = errors.New("partition start sector is not available")
	ErrSectorSize       = errors.New("unsupported logical sector size")
)

// Device is the target of a write.
//
// If the device also implements Sync, TryLock/Unlock, IsReadOnly or GetSectorSize
// (as *block.Device does), those are used.
type Device interface {
	io.ReaderAt
	io.WriterAt
	Name() string
}

// PartitionDevice is a Device which answers the geometry queries.
type PartitionDevice interface {
	Device
	classify.Querier
}

type syncer interface {
	Sync() error
}

type locker interface {
	TryLock(exclusive bool) error
	Unlock() error
}

type sectorSizer interface {
	GetSectorSize() uint
}

type readOnlyReporter interface {
	IsReadOnly() (bool, error)
}

// Writer writes boot records.
type Writer struct {
	opts Options
}

// NewWriter creates a new Writer.
func NewWriter(opts ...Option) *Writer {
	return &Writer{
		opts: applyOptions(opts...),
	}
}

// Compose the sector which results from writing tmpl over current.
//
// Only the compared ranges of the template kind are taken from the template,
// the partition table (MBR) or BPB (FAT) of the current sector are kept.
func (w *Writer) Compose(current *bootsector.Sector, tmpl *bootrecord.Template) bootsector.Sector {
	result := *current

	bootsector.CopyIn(&result, &tmpl.Image, tmpl.Kind.ComparedRanges())

	if fsType, ok := tmpl.Kind.RequiredFilesystem(); ok && !w.opts.KeepLabel {
		copy(result[labelOffset(fsType):], WipedLabel)
	}

	return result
}

// Install writes the template onto the device.
func (w *Writer) Install(dev Device, tmpl *bootrecord.Template) error {
	if !tmpl.Kind.Valid() {
		return fmt.Errorf("%s: %w", tmpl.Kind, bootrecord.ErrUnknownKind)
	}

	return w.update(dev, func(current *bootsector.Sector) (bootsector.Sector, error) {
		result := w.Compose(current, tmpl)

		w.opts.Logger.Info("writing boot record",
			zap.String("device", dev.Name()),
			zap.Stringer("kind", tmpl.Kind),
			zap.Bool("keep_label", w.opts.KeepLabel),
		)

		return result, nil
	})
}

// WritePartitionInfo records the partition start sector (hidden sectors) and the drive id in the FAT BPB.
//
// Devices without a nonzero partition start sector are refused.
// The drive id field is located by the filesystem found on the device.
func (w *Writer) WritePartitionInfo(dev PartitionDevice) error {
	// whole disks report start sector zero, only real partitions have one
	start := classify.PartitionStartSector(dev).ValueOr(0)
	if start == 0 {
		return fmt.Errorf("%s: %w", dev.Name(), ErrNoPartitionStart)
	}

	if start > math.MaxUint32 {
		return fmt.Errorf("%s: partition start sector %d does not fit into the boot sector", dev.Name(), start)
	}

	return w.update(dev, func(current *bootsector.Sector) (bootsector.Sector, error) {
		result := *current

		binary.LittleEndian.PutUint32(result[bootsector.HiddenSectorsOffset:], uint32(start))

		driveIDOffset := bootsector.FAT16DriveNumberOffset
		if fat.Is(w.opts.Oracle, fat.FAT32, current) {
			driveIDOffset = bootsector.FAT32DriveNumberOffset
		}

		result[driveIDOffset] = DriveID

		w.opts.Logger.Info("writing partition info",
			zap.String("device", dev.Name()),
			zap.Uint64("hidden_sectors", start),
			zap.Int("drive_id_offset", driveIDOffset),
		)

		return result, nil
	})
}

// update performs read-modify-write of the boot sector under an exclusive lock.
func (w *Writer) update(dev Device, modify func(*bootsector.Sector) (bootsector.Sector, error)) error {
	if ro, ok := dev.(readOnlyReporter); ok {
		readOnly, err := ro.IsReadOnly()
		if err != nil {
			return fmt.Errorf("error checking %s: %w", dev.Name(), err)
		}

		if readOnly {
			return fmt.Errorf("%s: %w", dev.Name(), ErrReadOnly)
		}
	}

	if sz, ok := dev.(sectorSizer); ok {
		if size := sz.GetSectorSize(); size != bootsector.Size {
			return fmt.Errorf("%s: %w %d", dev.Name(), ErrSectorSize, size)
		}
	}

	if l, ok := dev.(locker); ok {
		if err := l.TryLock(true); err != nil {
			return fmt.Errorf("error locking %s: %w", dev.Name(), err)
		}

		defer l.Unlock() //nolint:errcheck
	}

	current, err := bootsector.Read(dev)
	if err != nil {
		return err
	}

	result, err := modify(&current)
	if err != nil {
		return err
	}

	if _, err = dev.WriteAt(result[:], 0); err != nil {
		return fmt.Errorf("error writing boot sector to %s: %w", dev.Name(), err)
	}

	if s, ok := dev.(syncer); ok {
		if err = s.Sync(); err != nil {
			return fmt.Errorf("error syncing %s: %w", dev.Name(), err)
		}
	}

	return nil
}

func labelOffset(fsType fat.Type) int {
	if fsType == fat.FAT32 {
		return bootsector.FAT32LabelOffset
	}

	return bootsector.FAT16LabelOffset
}
