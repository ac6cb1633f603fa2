// Copyright 2021 the LinuxBoot Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package exitcode

import (
	"fmt"
	"testing"

	"github.com/jessevdk/go-flags"
	"github.com/stretchr/testify/assert"

	"github.com/usbarmory/imx-tools/pkg/dcd"
	"github.com/usbarmory/imx-tools/pkg/sdp"
	"github.com/usbarmory/imx-tools/pkg/smartboot"
)

func TestForNil(t *testing.T) {
	assert.Equal(t, Success, For(nil))
}

func TestForParseSentinels(t *testing.T) {
	assert.Equal(t, ParseError, For(fmt.Errorf("wrap: %w", dcd.ErrOversizeSegment)))
	assert.Equal(t, ParseError, For(fmt.Errorf("wrap: %w", &smartboot.ErrUnresolvedVariable{Name: "x"})))
}

func TestForDeviceSentinels(t *testing.T) {
	assert.Equal(t, DeviceError, For(fmt.Errorf("wrap: %w", sdp.ErrTransport)))
	assert.Equal(t, DeviceError, For(&sdp.DeviceError{Code: 0x1}))
}

func TestForUsageErrors(t *testing.T) {
	assert.Equal(t, UsageError, For(&flags.Error{Type: flags.ErrRequired, Message: "missing flag"}))
	assert.Equal(t, UsageError, For(fmt.Errorf("some unexpected error")))
}
