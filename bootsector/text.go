// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package bootsector

import (
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// DecodeText decodes a fixed-width, space padded DOS text field (code page 437).
func DecodeText(field []byte) string {
	decoded, err := charmap.CodePage437.NewDecoder().Bytes(field)
	if err != nil {
		return ""
	}

	return strings.TrimRight(string(decoded), " \x00")
}

// OEMName returns the OEM name field.
func (s *Sector) OEMName() string {
	return DecodeText(s[OEMNameOffset : OEMNameOffset+OEMNameLength])
}

// Label returns the volume label stored at the given label offset.
func (s *Sector) Label(offset int) string {
	return DecodeText(s[offset : offset+LabelLength])
}
