// Copyright 2023 The go-daq Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wfm

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidFormat means the input is not a recognized Rigol WFM
	// waveform file, or one of its header fields is out of range.
	ErrInvalidFormat = errors.New("wfm: invalid waveform file")

	// ErrOutOfBounds means a field read ran past the end of the input
	// buffer: the file is truncated or corrupted.
	ErrOutOfBounds = errors.New("wfm: read past end of data")

	// ErrTruncatedData means fewer sample bytes are present than the
	// declared sample count requires.
	ErrTruncatedData = errors.New("wfm: truncated sample data")
)

// UnknownTriggerModeError reports a trigger mode tag outside the
// documented set, e.g. from a newer hardware variant.
type UnknownTriggerModeError struct {
	Tag uint8
}

func (e UnknownTriggerModeError) Error() string {
	return fmt.Sprintf("wfm: unknown trigger mode 0x%02x", e.Tag)
}
