// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package bootrecord

import (
	"fmt"
	"strings"

	"github.com/siderolabs/gen/xslices"
	"github.com/siderolabs/go-pointer"
	"go.uber.org/zap"

	"github.com/siderolabs/go-bootrecord/bootsector"
	"github.com/siderolabs/go-bootrecord/classify"
	"github.com/siderolabs/go-bootrecord/fat"
)

// Report describes what is currently installed on a device.
type Report struct { //nolint:govet
	Device string
	Class  classify.Class

	// Size of the device in bytes, zero if unknown.
	Size uint64

	// Filesystems lists every filesystem signature found.
	Filesystems []fat.Type

	// BootSignature is false if the sector has no x86 boot signature,
	// in that case nothing else was inspected.
	BootSignature bool

	// Exact is the kind whose template matched exactly.
	Exact *Kind

	// Family is set if no template matched.
	Family Family

	OEMName string
	Label   string
}

type sizer interface {
	GetSize() (uint64, error)
}

// Describe reports the filesystem signatures and the boot record found on the device.
func (i *Inspector) Describe(q classify.Querier, s *bootsector.Sector) Report {
	report := Report{
		Device:      q.Name(),
		Class:       i.Classify(q),
		Filesystems: fat.Detect(i.opts.Oracle, s),
	}

	if sz, ok := q.(sizer); ok {
		if size, err := sz.GetSize(); err == nil {
			report.Size = size
		}
	}

	if len(report.Filesystems) > 0 {
		report.OEMName = s.OEMName()

		if fat.Is(i.opts.Oracle, fat.FAT32, s) {
			report.Label = s.Label(bootsector.FAT32LabelOffset)
		} else {
			report.Label = s.Label(bootsector.FAT16LabelOffset)
		}
	}

	report.BootSignature = HasX86BootSignature(s)
	if !report.BootSignature {
		return report
	}

	if kind := i.RecognizeCurrent(s); kind.IsPresent() {
		report.Exact = pointer.To(kind.ValueOr(KindNone))
	} else {
		report.Family = Resemblance(s)
	}

	i.opts.Logger.Debug("described boot sector",
		zap.String("device", report.Device),
		zap.Stringers("filesystems", report.Filesystems),
		zap.Bool("exact", report.Exact != nil),
		zap.Stringer("family", report.Family),
	)

	return report
}

// Lines renders the report as human readable text.
func (r *Report) Lines() []string {
	var lines []string

	for _, fsType := range r.Filesystems {
		lines = append(lines, fmt.Sprintf("%s has a %s file system.", r.Device, fsType))
	}

	if !r.BootSignature {
		return append(lines, fmt.Sprintf("%s has no x86 boot sector", r.Device))
	}

	lines = append(lines, fmt.Sprintf("%s has an x86 boot sector,", r.Device))

	if r.Exact != nil {
		info := kinds[*r.Exact]

		return append(lines,
			fmt.Sprintf("it is exactly the kind of %s this program", info.description),
			fmt.Sprintf("would create with the switch %s on a %s.", info.flag, info.target),
		)
	}

	switch r.Family {
	case FamilyFAT:
		// the family spans FAT12 floppies and FAT16/FAT32 partitions
		lines = append(lines,
			"it seems to be a FAT boot record, but it differs from what this",
			fmt.Sprintf("program would create with the switch %s on a FAT floppy or partition.", familyFlags(FamilyFAT)),
		)
	case FamilyLILO:
		lines = append(lines,
			"it seems to be a LILO boot record, please use lilo to",
			"create such boot records.",
		)
	case FamilyMBR:
		lines = append(lines,
			"it seems to be a master boot record, but it differs from what this",
			fmt.Sprintf("program would create with the switch %s on a %s.", familyFlags(FamilyMBR), hardDisk),
		)
	default:
		lines = append(lines, "it is an unknown boot record")
	}

	return lines
}

// String implements fmt.Stringer.
func (r *Report) String() string {
	return strings.Join(r.Lines(), "\n")
}

func familyFlags(family Family) string {
	flags := xslices.Map(
		xslices.Filter(Kinds(), func(k Kind) bool { return k.Family() == family }),
		Kind.Flag,
	)

	if len(flags) < 2 {
		return strings.Join(flags, "")
	}

	return strings.Join(flags[:len(flags)-1], ", ") + " or " + flags[len(flags)-1]
}
