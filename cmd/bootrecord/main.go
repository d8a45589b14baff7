// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package main implements the bootrecord CLI.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/siderolabs/go-bootrecord/block"
	"github.com/siderolabs/go-bootrecord/bootrecord"
	"github.com/siderolabs/go-bootrecord/bootrecord/templates"
	"github.com/siderolabs/go-bootrecord/bootsector"
	"github.com/siderolabs/go-bootrecord/install"
)

// TemplatesEnv is the environment variable holding the default template directory.
const TemplatesEnv = "BOOTRECORD_TEMPLATES"

var version = "dev"

// longFlags are the long switches of the kinds, the short ones come from Kind.Flag.
var longFlags = map[bootrecord.Kind]string{
	bootrecord.MbrWindows2000:    "mbr",
	bootrecord.MbrWin95B:         "mbr95b",
	bootrecord.MbrDos:            "mbrdos",
	bootrecord.MbrSyslinux:       "mbrsyslinux",
	bootrecord.MbrZero:           "mbrzero",
	bootrecord.Fat12Floppy:       "fat12",
	bootrecord.Fat16Partition:    "fat16",
	bootrecord.Fat32DosPartition: "fat32",
	bootrecord.Fat32NtPartition:  "fat32nt",
}

type options struct {
	templates string

	auto      bool
	force     bool
	wipeLabel bool
	partition bool
	version   bool
	debug     bool
}

func main() {
	debug := false

	for _, arg := range os.Args[1:] {
		if arg == "--debug" {
			debug = true
		}
	}

	logger, err := newLogger(debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error creating logger: %s\n", err)
		os.Exit(1)
	}

	code := run(logger, os.Args[1:], os.Stdout)

	logger.Sync() //nolint:errcheck

	os.Exit(code)
}

func newLogger(debug bool) (*zap.Logger, error) {
	config := zap.NewDevelopmentConfig()
	config.DisableCaller = true
	config.DisableStacktrace = true

	if !debug {
		config.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}

	if isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()) {
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	return config.Build()
}

func usage(w io.Writer, flags *pflag.FlagSet) {
	fmt.Fprintf(w, "Usage:\n\tbootrecord [options] [device]\nOptions:\n%s", flags.FlagUsages())
	fmt.Fprintln(w, "Warning: Writing the wrong kind of boot record to a device might")
	fmt.Fprintln(w, "destroy partition information or file system!")
}

//nolint:gocyclo,cyclop
func run(logger *zap.Logger, args []string, stdout io.Writer) int {
	var opts options

	flags := pflag.NewFlagSet("bootrecord", pflag.ContinueOnError)
	flags.SetOutput(stdout)
	flags.SortFlags = false

	selected := map[bootrecord.Kind]*bool{}

	for _, kind := range bootrecord.Kinds() {
		selected[kind] = flags.BoolP(longFlags[kind], strings.TrimPrefix(kind.Flag(), "-"), false, "Write a "+kind.Description()+" to device")
	}

	flags.BoolVarP(&opts.force, "force", "f", false, "Force writing of boot record")
	flags.BoolVarP(&opts.wipeLabel, "wipelabel", "l", false, "Reset partition disk label in boot record")
	flags.BoolVarP(&opts.partition, "partition", "p", false, "Write partition info (hidden sectors and drive id)")
	flags.BoolVarP(&opts.auto, "write", "w", false, "Write automatically selected boot record to device")
	flags.BoolVarP(&opts.version, "version", "v", false, "Show program version")
	flags.StringVar(&opts.templates, "templates", os.Getenv(TemplatesEnv), "Directory with boot record template images (<kind>.bin or <kind>.bin.zst)")
	flags.BoolVar(&opts.debug, "debug", false, "Enable debug logging")

	flags.Usage = func() { usage(stdout, flags) }

	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}

		return 1
	}

	if opts.version {
		fmt.Fprintf(stdout, "bootrecord version %s\n", version)

		if flags.NArg() == 0 {
			return 0
		}
	}

	if flags.NArg() != 1 {
		flags.Usage()

		return 1
	}

	kind := bootrecord.KindNone
	requested := 0

	if opts.auto {
		kind = bootrecord.KindAuto
		requested++
	}

	for _, k := range bootrecord.Kinds() {
		if *selected[k] {
			kind = k
			requested++
		}
	}

	if requested > 1 {
		fmt.Fprintln(stdout, "Only one kind of boot record can be written at a time")

		return 1
	}

	catalogue := templates.Builtin()

	if opts.templates != "" {
		loaded, err := templates.LoadDir(opts.templates)
		if err != nil {
			logger.Error("error loading templates", zap.String("dir", opts.templates), zap.Error(err))

			return 1
		}

		catalogue = templates.Merge(catalogue, loaded)
	}

	path := flags.Arg(0)

	var openOpts []block.Option

	if kind != bootrecord.KindNone || opts.partition {
		openOpts = append(openOpts, block.OpenForWrite())
	}

	dev, err := block.NewFromPath(path, openOpts...)
	if err != nil {
		fmt.Fprintf(stdout, "Unable to open %s, %s\n", path, err)

		return 1
	}

	defer dev.Close() //nolint:errcheck

	sector, err := bootsector.Read(dev)
	if err != nil {
		fmt.Fprintf(stdout, "Unable to read boot sector of %s, %s\n", path, err)

		return 1
	}

	inspector := bootrecord.NewInspector(bootrecord.WithLogger(logger), bootrecord.WithCatalogue(catalogue))

	if kind == bootrecord.KindAuto {
		kind = inspector.AutoSelect(dev, &sector).ValueOr(bootrecord.KindNone)

		if kind == bootrecord.KindNone {
			fmt.Fprintf(stdout, "Unable to automatically select boot record for %s\n", path)
		}
	}

	if kind != bootrecord.KindNone && !opts.force {
		diag := inspector.Check(dev, &sector, kind)
		if !diag.Allowed {
			if errors.Is(diag.Err, bootrecord.ErrUnknownKind) {
				logger.Error("sanity check failed", zap.Error(diag.Err))
			}

			fmt.Fprintln(stdout, diag.Reason)

			return 1
		}
	}

	writer := install.NewWriter(install.WithLogger(logger), install.WithKeepLabel(!opts.wipeLabel))

	code := 0

	if opts.partition {
		if err = writer.WritePartitionInfo(dev); err != nil {
			logger.Debug("partition info", zap.Error(err))

			fmt.Fprintf(stdout, "Failed writing start sector to %s, this is only possible to do with\nreal partitions!\n", path)

			code = 1
		} else {
			fmt.Fprintf(stdout, "Start sector (nr of hidden sectors) and physical disk drive id 0x%02X (C:) successfully written to %s\n", install.DriveID, path)
		}
	}

	if kind == bootrecord.KindNone {
		if !opts.partition {
			report := inspector.Describe(dev, &sector)

			fmt.Fprintln(stdout, report.String())
		}

		return code
	}

	tmpl, ok := catalogue.Template(kind)
	if !ok {
		fmt.Fprintf(stdout, "No template image for %s (%s.bin), set --templates or %s\n", kind.Description(), kind, TemplatesEnv)

		return 1
	}

	if err = writer.Install(dev, tmpl); err != nil {
		logger.Debug("write failed", zap.Error(err))

		fmt.Fprintf(stdout, "Failed writing %s to %s, %s\n", kind.Description(), path, err)

		return 1
	}

	fmt.Fprintf(stdout, "%s successfully written to %s\n", capitalize(kind.Description()), path)

	return code
}

func capitalize(s string) string {
	if s == "" {
		return s
	}

	return strings.ToUpper(s[:1]) + s[1:]
}
