// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package bootrecord

import (
	"github.com/siderolabs/gen/optional"
	"go.uber.org/zap"

	"github.com/siderolabs/go-bootrecord/bootsector"
	"github.com/siderolabs/go-bootrecord/classify"
)

// AutoSelect returns the first kind, in declaration order, which passes the sanity check.
//
// All master boot records share the same policy, so a whole disk always gets MbrWindows2000.
func (i *Inspector) AutoSelect(q classify.Querier, s *bootsector.Sector) optional.Optional[Kind] {
	facts := classify.Probe(q)
	i.logFacts(q, facts)

	class := facts.Class()

	for _, kind := range Kinds() {
		diag := i.evaluate(q.Name(), class, s, kind)
		if !diag.Allowed {
			continue
		}

		i.opts.Logger.Debug("auto-selected boot record",
			zap.String("device", q.Name()),
			zap.Stringer("kind", kind),
			zap.Stringer("class", class),
		)

		return optional.Some(kind)
	}

	i.opts.Logger.Debug("no boot record kind is suitable",
		zap.String("device", q.Name()),
		zap.Stringer("class", class),
	)

	return optional.None[Kind]()
}
