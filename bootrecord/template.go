// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package bootrecord

import (
	"fmt"

	"github.com/siderolabs/go-bootrecord/bootsector"
)

// Template is the canonical image of a boot record kind.
type Template struct {
	Image bootsector.Sector
	Kind  Kind
}

// NewTemplate validates the kind and wraps the image.
func NewTemplate(kind Kind, image bootsector.Sector) (*Template, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("template for %s: %w", kind, ErrUnknownKind)
	}

	return &Template{
		Image: image,
		Kind:  kind,
	}, nil
}

// Matches returns true if the sector equals the template in every compared byte.
//
// There is no partial matching: a single differing byte outside of the excluded ranges is a mismatch.
func (t *Template) Matches(s *bootsector.Sector) bool {
	return bootsector.EqualIn(&t.Image, s, t.Kind.ComparedRanges())
}

// Catalogue provides templates by kind.
type Catalogue interface {
	Template(Kind) (*Template, bool)
}

// Templates is a Catalogue backed by a map.
type Templates map[Kind]*Template

// Template implements Catalogue.
func (t Templates) Template(kind Kind) (*Template, bool) {
	tmpl, ok := t[kind]

	return tmpl, ok
}

// Add a template replacing any previous template of the same kind.
func (t Templates) Add(tmpl *Template) {
	t[tmpl.Kind] = tmpl
}
