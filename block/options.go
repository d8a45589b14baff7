// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package block

import "os"

// Options for NewFromPath.
type Options struct {
	Flags int
}

// Option is a functional option for NewFromPath.
type Option func(*Options)

// OpenForWrite opens the device for reading and writing.
func OpenForWrite() Option {
	return func(o *Options) {
		o.Flags |= os.O_RDWR
	}
}

func applyOptions(opts ...Option) Options {
	var o Options

	for _, opt := range opts {
		opt(&o)
	}

	return o
}
