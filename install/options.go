// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package install

import (
	"go.uber.org/zap"

	"github.com/siderolabs/go-bootrecord/fat"
)

// Options for the Writer.
type Options struct {
	Logger *zap.Logger
	Oracle fat.Oracle

	KeepLabel bool
}

// Option is a functional option for NewWriter.
type Option func(*Options)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// WithOracle sets the filesystem oracle used to locate the drive id field.
func WithOracle(oracle fat.Oracle) Option {
	return func(o *Options) {
		o.Oracle = oracle
	}
}

// WithKeepLabel controls whether the volume label survives a FAT boot record write.
//
// Labels are kept by default.
func WithKeepLabel(keep bool) Option {
	return func(o *Options) {
		o.KeepLabel = keep
	}
}

func applyOptions(opts ...Option) Options {
	o := Options{
		Logger:    zap.NewNop(),
		Oracle:    fat.Signatures{},
		KeepLabel: true,
	}

	for _, opt := range opts {
		opt(&o)
	}

	return o
}
