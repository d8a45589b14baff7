// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package classify derives the kind of medium a device handle addresses from its geometry queries.
package classify

import (
	"github.com/siderolabs/gen/optional"

	"github.com/siderolabs/go-bootrecord/block"
)

// Class of a device.
type Class int

// Device classes.
//
// Classes are mutually exclusive, every device has exactly one of them.
const (
	Unclassifiable Class = iota
	WholeDisk
	Floppy
	Partition
)

// String implements fmt.Stringer.
func (c Class) String() string {
	switch c {
	case Unclassifiable:
		return "unclassifiable"
	case WholeDisk:
		return "whole disk"
	case Floppy:
		return "floppy"
	case Partition:
		return "partition"
	default:
		return "invalid"
	}
}

// Querier is a device handle which answers the geometry queries.
//
// *block.Device implements Querier.
type Querier interface {
	Name() string
	GetSectorCount() (uint64, error)
	GetFloppyGeometry() (block.FloppyGeometry, error)
	GetDiskGeometry() (block.DiskGeometry, error)
}

var _ Querier = (*block.Device)(nil)

// Facts are the results of the geometry queries.
//
// Failed queries are not errors: the lack of a capability is what identifies the device class.
type Facts struct {
	SectorCountErr    error
	FloppyGeometryErr error
	DiskGeometryErr   error

	SectorCount uint64
	StartSector uint64
}

// SectorCountOk is true if the block size query succeeded.
func (f Facts) SectorCountOk() bool { return f.SectorCountErr == nil }

// FloppyGeometryOk is true if the floppy geometry query succeeded.
func (f Facts) FloppyGeometryOk() bool { return f.FloppyGeometryErr == nil }

// DiskGeometryOk is true if the disk geometry query succeeded.
func (f Facts) DiskGeometryOk() bool { return f.DiskGeometryErr == nil }

// Probe runs the block size, floppy geometry and disk geometry queries in that order.
//
// Results are never cached, every call queries the device again.
func Probe(q Querier) Facts {
	var facts Facts

	facts.SectorCount, facts.SectorCountErr = q.GetSectorCount()
	_, facts.FloppyGeometryErr = q.GetFloppyGeometry()

	geo, err := q.GetDiskGeometry()
	if err == nil {
		facts.StartSector = geo.StartSector
	}

	facts.DiskGeometryErr = err

	return facts
}

// Class derives the device class from the facts.
//
// A successful floppy query wins over everything else, then a nonzero start sector
// marks a partition, then any successful size or geometry query marks a whole disk.
func (f Facts) Class() Class {
	switch {
	case f.FloppyGeometryOk():
		return Floppy
	case f.DiskGeometryOk() && f.StartSector > 0:
		return Partition
	case f.DiskGeometryOk() || f.SectorCountOk():
		return WholeDisk
	default:
		return Unclassifiable
	}
}

// Classify the device.
func Classify(q Querier) Class {
	return Probe(q).Class()
}

// PartitionStartSector returns the partition offset reported by the disk geometry query.
//
// Whole disks report a start sector of zero.
func PartitionStartSector(q Querier) optional.Optional[uint64] {
	geo, err := q.GetDiskGeometry()
	if err != nil {
		return optional.None[uint64]()
	}

	return optional.Some(geo.StartSector)
}
