// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package bootrecord

import (
	"github.com/siderolabs/gen/optional"

	"github.com/siderolabs/go-bootrecord/bootsector"
)

// recognitionOrder tries the filesystem boot records first, they compare more bytes.
var recognitionOrder = []Kind{
	Fat12Floppy,
	Fat16Partition,
	Fat32DosPartition,
	Fat32NtPartition,
	MbrDos,
	MbrWin95B,
	MbrWindows2000,
	MbrSyslinux,
	MbrZero,
}

// HasX86BootSignature returns true if the sector carries the 0x55 0xAA boot signature.
func HasX86BootSignature(s *bootsector.Sector) bool {
	return s.HasX86Signature()
}

// MatchesTemplateExactly compares the sector against the canonical template of the kind.
//
// Kinds without a template in the catalogue never match.
func (i *Inspector) MatchesTemplateExactly(s *bootsector.Sector, kind Kind) bool {
	tmpl, ok := i.opts.Catalogue.Template(kind)
	if !ok {
		return false
	}

	return tmpl.Matches(s)
}

// RecognizeCurrent returns the kind whose template the sector matches exactly.
//
// Sectors without a boot signature are never recognized.
func (i *Inspector) RecognizeCurrent(s *bootsector.Sector) optional.Optional[Kind] {
	if !HasX86BootSignature(s) {
		return optional.None[Kind]()
	}

	for _, kind := range recognitionOrder {
		if i.MatchesTemplateExactly(s, kind) {
			return optional.Some(kind)
		}
	}

	return optional.None[Kind]()
}

// Resemblance returns the first family the sector structurally resembles.
func Resemblance(s *bootsector.Sector) Family {
	for _, family := range families {
		if ResemblesFamily(s, family) {
			return family
		}
	}

	return FamilyUnknown
}
