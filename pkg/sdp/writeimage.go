// Copyright 2021 the LinuxBoot Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sdp

import (
	"fmt"

	"github.com/usbarmory/imx-tools/pkg/img"
)

// WriteImageOptions controls the composite WriteImage sequence (spec.md
// §4.3's "Write image"), grounded on usbarmory-armory-drive__sdp.go's
// imxLoad() upload sequence: stage a DDR-init DCD at a fixed OCRAM address,
// write the full image (its DCD included) to its load address, tell the ROM
// to skip the DCD that image still carries, then jump.
type WriteImageOptions struct {
	// DCDAddress is the OCRAM staging address the DDR-init DCD is
	// written to ahead of the main payload, when StripDCD is set. The
	// armory-drive imxLoad() sequence uses 0x00910000 for this on MX6UL.
	DCDAddress uint32

	// StripDCD writes the image's DCD separately via WriteDCD before
	// writing the image itself, and issues SkipDCD after it, rather than
	// letting the ROM apply the DCD embedded in the image's own head.
	StripDCD bool

	// Run issues a Jump to the image's ivt.Self once the transfer
	// completes.
	Run bool

	Progress ProgressFunc
}

// WriteImage uploads a built v2/v2b image via the sequence spec.md §8
// scenario 5 exercises: [Write DCD] → Write File → [Skip DCD] → [Jump].
// SkipDCD tells the ROM to skip the DCD it still carries internally in the
// image it just received, so it must follow that image's WriteFile, not
// precede it.
func (c *Client) WriteImage(im *img.V2Image, opts WriteImageOptions) error {
	ivt, err := im.IVT()
	if err != nil {
		return fmt.Errorf("sdp: %w", err)
	}
	bdt, err := im.BDT()
	if err != nil {
		return fmt.Errorf("sdp: %w", err)
	}

	buf, err := im.Export()
	if err != nil {
		return fmt.Errorf("sdp: %w", err)
	}

	if opts.StripDCD && ivt.DCDAddress != 0 {
		if im.DCD == nil {
			return fmt.Errorf("sdp: %w: StripDCD requested but image carries no DCD", ErrNotSupported)
		}
		dcdBuf, err := im.DCD.Buf()
		if err != nil {
			return fmt.Errorf("sdp: %w", err)
		}
		if err := c.WriteDCD(opts.DCDAddress, dcdBuf, opts.Progress); err != nil {
			return err
		}
	}

	if err := c.WriteFile(bdt.Start, buf, opts.Progress); err != nil {
		return err
	}

	if opts.StripDCD && ivt.DCDAddress != 0 {
		if err := c.SkipDCD(); err != nil {
			return err
		}
	}

	if opts.Run {
		if err := c.Jump(ivt.Self); err != nil {
			return err
		}
	}

	return nil
}
