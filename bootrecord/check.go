// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package bootrecord

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/siderolabs/go-bootrecord/bootsector"
	"github.com/siderolabs/go-bootrecord/classify"
	"github.com/siderolabs/go-bootrecord/fat"
)

// Diagnostic is the verdict of a sanity check.
type Diagnostic struct {
	// Err wraps one of ErrDeviceClassMismatch, ErrFilesystemSignatureMismatch or ErrUnknownKind.
	Err error

	Reason  string
	Class   classify.Class
	Allowed bool
}

// Check decides whether a boot record of the requested kind may be written to the device.
//
// Vetoed writes are reported, never corrected: Check does not suggest another kind.
func (i *Inspector) Check(q classify.Querier, s *bootsector.Sector, kind Kind) Diagnostic {
	facts := classify.Probe(q)
	i.logFacts(q, facts)

	diag := i.evaluate(q.Name(), facts.Class(), s, kind)

	i.opts.Logger.Debug("sanity check",
		zap.String("device", q.Name()),
		zap.Stringer("kind", kind),
		zap.Bool("allowed", diag.Allowed),
		zap.String("reason", diag.Reason),
	)

	return diag
}

// evaluate the policy of the kind against an already classified device.
func (i *Inspector) evaluate(name string, class classify.Class, s *bootsector.Sector, kind Kind) Diagnostic {
	if !kind.Valid() {
		return Diagnostic{
			Class:  class,
			Reason: "internal error, unknown boot record",
			Err:    fmt.Errorf("%s: %w", kind, ErrUnknownKind),
		}
	}

	required := kind.RequiredClass()

	if class != required {
		return Diagnostic{
			Class:  class,
			Reason: fmt.Sprintf("%s %s,\n%s", name, classMismatch(required, class), forceHint(kind)),
			Err:    fmt.Errorf("%s is a %s device, %s requires a %s device: %w", name, class, kind, required, ErrDeviceClassMismatch),
		}
	}

	if fsType, ok := kind.RequiredFilesystem(); ok && !fat.Is(i.opts.Oracle, fsType, s) {
		return Diagnostic{
			Class:  class,
			Reason: fmt.Sprintf("%s does not seem to have a %s file system,\n%s", name, fsType, forceHint(kind)),
			Err:    fmt.Errorf("%s has no %s signature: %w", name, fsType, ErrFilesystemSignatureMismatch),
		}
	}

	return Diagnostic{
		Class:   class,
		Reason:  fmt.Sprintf("%s is a %s device suitable for a %s", name, class, subject(kind)),
		Allowed: true,
	}
}

func classMismatch(required, observed classify.Class) string {
	switch required {
	case classify.WholeDisk:
		switch observed {
		case classify.Floppy:
			return "seems to be a floppy disk device"
		case classify.Partition:
			return "seems to be a disk partition device"
		default:
			return "does not seem to be a disk device"
		}
	case classify.Floppy:
		return "does not seem to be a floppy disk device"
	case classify.Partition:
		return "does not seem to be a disk partition device"
	default:
		return "does not seem to be a supported device"
	}
}

// subject is what the force hint names, all master boot records share one.
func subject(kind Kind) string {
	if kind.Family() == FamilyMBR {
		return "master boot record"
	}

	return kind.Description()
}

func forceHint(kind Kind) string {
	return "use the switch -f to force writing of a " + subject(kind)
}
