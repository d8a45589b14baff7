// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package bootrecord identifies boot records and decides whether writing a boot record
// of a given kind to a device is sane.
package bootrecord

import (
	"errors"

	"go.uber.org/zap"

	"github.com/siderolabs/go-bootrecord/classify"
	"github.com/siderolabs/go-bootrecord/fat"
)

// Common errors.
var (
	ErrDeviceClassMismatch         = errors.New("device class mismatch")
	ErrFilesystemSignatureMismatch = errors.New("filesystem signature mismatch")
	ErrUnknownKind                 = errors.New("unknown boot record kind")
)

// Options configure the Inspector.
type Options struct {
	// Logger to use for logging.
	Logger *zap.Logger
	// Catalogue of canonical templates used for exact matching.
	Catalogue Catalogue
	// Oracle for filesystem signatures.
	Oracle fat.Oracle
}

// Option is an option for the Inspector.
type Option func(*Options)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// WithCatalogue sets the template catalogue.
func WithCatalogue(catalogue Catalogue) Option {
	return func(o *Options) {
		o.Catalogue = catalogue
	}
}

// WithOracle replaces the filesystem signature oracle.
func WithOracle(oracle fat.Oracle) Option {
	return func(o *Options) {
		o.Oracle = oracle
	}
}

func applyOptions(opts ...Option) Options {
	o := Options{
		Logger:    zap.NewNop(),
		Catalogue: Templates{},
		Oracle:    fat.Signatures{},
	}

	for _, opt := range opts {
		opt(&o)
	}

	return o
}

// Inspector classifies devices, recognizes boot records and checks write requests.
//
// Inspector keeps no state between calls, device facts are queried on every call.
type Inspector struct {
	opts Options
}

// NewInspector creates an Inspector.
func NewInspector(opts ...Option) *Inspector {
	return &Inspector{
		opts: applyOptions(opts...),
	}
}

// Classify the device.
func (i *Inspector) Classify(q classify.Querier) classify.Class {
	facts := classify.Probe(q)
	i.logFacts(q, facts)

	return facts.Class()
}

func (i *Inspector) logFacts(q classify.Querier, facts classify.Facts) {
	i.opts.Logger.Debug("probed device geometry",
		zap.String("device", q.Name()),
		zap.NamedError("block_size_query", facts.SectorCountErr),
		zap.NamedError("floppy_geometry_query", facts.FloppyGeometryErr),
		zap.NamedError("disk_geometry_query", facts.DiskGeometryErr),
		zap.Uint64("start_sector", facts.StartSector),
		zap.Stringer("class", facts.Class()),
	)
}
