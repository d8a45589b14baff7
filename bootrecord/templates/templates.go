// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package templates loads canonical boot record images.
//
// Template images are stored as raw sectors named after the kind id
// (e.g. "fat32-nt.bin"), optionally zstd compressed ("fat32-nt.bin.zst").
package templates

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/siderolabs/go-bootrecord/bootrecord"
	"github.com/siderolabs/go-bootrecord/bootsector"
)

// File name suffixes.
const (
	RawSuffix        = ".bin"
	CompressedSuffix = ".bin.zst"
)

// Builtin returns the templates which need no external image.
func Builtin() bootrecord.Templates {
	var zero bootsector.Sector

	zero[bootsector.SignatureOffset] = 0x55
	zero[bootsector.SignatureOffset+1] = 0xaa

	return bootrecord.Templates{
		bootrecord.MbrZero: &bootrecord.Template{
			Kind:  bootrecord.MbrZero,
			Image: zero,
		},
	}
}

// Read a template image.
//
// Images longer than a sector (e.g. multi-sector FAT32 boot records) are accepted,
// only the first sector is used.
func Read(r io.Reader, kind bootrecord.Kind, compressed bool) (*bootrecord.Template, error) {
	if compressed {
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}

		defer zr.Close()

		r = zr
	}

	var image bootsector.Sector

	if _, err := io.ReadFull(r, image[:]); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("template %s is shorter than a sector", kind)
		}

		return nil, fmt.Errorf("error reading template %s: %w", kind, err)
	}

	return bootrecord.NewTemplate(kind, image)
}

// LoadFile loads a single template, the kind is derived from the file name.
func LoadFile(path string) (*bootrecord.Template, error) {
	kind, compressed, ok, err := parseName(filepath.Base(path))
	if err != nil {
		return nil, err
	}

	if !ok {
		return nil, fmt.Errorf("%q is not a template file name", path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	defer f.Close() //nolint:errcheck

	return Read(f, kind, compressed)
}

// LoadDir loads every template found in dir.
//
// Files which do not look like templates are ignored.
func LoadDir(dir string) (bootrecord.Templates, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	result := bootrecord.Templates{}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		_, _, ok, err := parseName(entry.Name())
		if err != nil {
			return nil, err
		}

		if !ok {
			continue
		}

		tmpl, err := LoadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}

		result.Add(tmpl)
	}

	return result, nil
}

// Merge catalogues, later ones win.
func Merge(catalogues ...bootrecord.Templates) bootrecord.Templates {
	result := bootrecord.Templates{}

	for _, catalogue := range catalogues {
		for _, tmpl := range catalogue {
			result.Add(tmpl)
		}
	}

	return result
}

// Write a template image to w, compressing it if requested.
func Write(w io.Writer, tmpl *bootrecord.Template, compressed bool) error {
	if !compressed {
		_, err := w.Write(tmpl.Image[:])

		return err
	}

	zw, err := zstd.NewWriter(w)
	if err != nil {
		return err
	}

	if _, err = zw.Write(tmpl.Image[:]); err != nil {
		zw.Close() //nolint:errcheck

		return err
	}

	return zw.Close()
}

// FileName returns the canonical file name of a template.
func FileName(kind bootrecord.Kind, compressed bool) string {
	if compressed {
		return kind.String() + CompressedSuffix
	}

	return kind.String() + RawSuffix
}

func parseName(name string) (kind bootrecord.Kind, compressed, ok bool, err error) {
	var id string

	switch {
	case strings.HasSuffix(name, CompressedSuffix):
		id, compressed = strings.TrimSuffix(name, CompressedSuffix), true
	case strings.HasSuffix(name, RawSuffix):
		id = strings.TrimSuffix(name, RawSuffix)
	default:
		return bootrecord.KindNone, false, false, nil
	}

	kind, err = bootrecord.ParseKind(id)
	if err != nil {
		return bootrecord.KindNone, false, false, fmt.Errorf("template %q: %w", name, err)
	}

	if !kind.Valid() {
		return bootrecord.KindNone, false, false, fmt.Errorf("template %q: %w", name, bootrecord.ErrUnknownKind)
	}

	return kind, compressed, true, nil
}
