// Copyright 2021 the LinuxBoot Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package exitcode classifies an error returned by a cmd/* front-end's
// Execute into the process exit code spec.md §6.3 assigns it: 0 success,
// 1 caller/usage error, 2 input/parse error, 3 device/transport error.
// This is CLI glue only — none of the pkg/* libraries know about process
// exit codes.
package exitcode

import (
	"errors"

	"github.com/jessevdk/go-flags"

	"github.com/usbarmory/imx-tools/pkg/bin"
	"github.com/usbarmory/imx-tools/pkg/dcd"
	"github.com/usbarmory/imx-tools/pkg/ihex"
	"github.com/usbarmory/imx-tools/pkg/img"
	"github.com/usbarmory/imx-tools/pkg/sdp"
	"github.com/usbarmory/imx-tools/pkg/smartboot"
	"github.com/usbarmory/imx-tools/pkg/srk"
)

const (
	Success     = 0
	UsageError  = 1
	ParseError  = 2
	DeviceError = 3
)

// parseSentinels are the library errors that classify as a §6.3 "input/
// parse error" (exit 2): malformed on-disk/on-wire data, not a usage
// mistake or a live device fault.
var parseSentinels = []error{
	bin.ErrShortRead,
	bin.ErrMalformedHeader,
	img.ErrUnrecognizedVariant,
	img.ErrInvalidPointer,
	img.ErrLengthMismatch,
	img.ErrAppTooLarge,
	img.ErrMissingRequiredSegment,
	dcd.ErrMalformedHeader,
	dcd.ErrUnknownCommandTag,
	dcd.ErrOversizeSegment,
	dcd.ErrInvalidWidth,
	dcd.ErrInvalidOps,
	dcd.ErrUnknownEngine,
	dcd.ErrIllegalInDCD,
	dcd.ErrBadAlignment,
	ihex.ErrSyntax,
	ihex.ErrChecksum,
	ihex.ErrLengthMismatch,
	ihex.ErrNoEndRecord,
	srk.ErrKeyCount,
	srk.ErrMalformedTable,
	smartboot.ErrMalformedRecipe,
	smartboot.ErrUnknownSegmentRef,
	smartboot.ErrUnsupportedType,
	smartboot.ErrAmbiguousPayload,
	smartboot.ErrUnknownInstruction,
}

// deviceSentinels classify as a §6.3 "device/transport error" (exit 3).
var deviceSentinels = []error{
	sdp.ErrTransport,
	sdp.ErrNotSupported,
	sdp.ErrBadAlignment,
}

// For classifies err into the process exit code it should produce.
func For(err error) int {
	if err == nil {
		return Success
	}

	var unresolved *smartboot.ErrUnresolvedVariable
	if errors.As(err, &unresolved) {
		return ParseError
	}
	var deviceErr *sdp.DeviceError
	if errors.As(err, &deviceErr) {
		return DeviceError
	}

	var flagsErr *flags.Error
	if errors.As(err, &flagsErr) {
		return UsageError
	}

	for _, s := range parseSentinels {
		if errors.Is(err, s) {
			return ParseError
		}
	}
	for _, s := range deviceSentinels {
		if errors.Is(err, s) {
			return DeviceError
		}
	}

	return UsageError
}
