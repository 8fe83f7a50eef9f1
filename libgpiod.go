// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.
//
// Package libgpiod provides access to GPIO lines through the Linux GPIO
// character device.
//
// https://docs.kernel.org/userspace-api/gpio/chardev.html
//
// A Chip represents one /dev/gpiochip* device. Lines are operated on
// through a LineRequest, obtained from Chip.RequestLines, which holds a
// set of lines on a single file descriptor and supports reading and
// writing multiple lines in one kernel call, reconfiguration, and edge
// event monitoring.
package libgpiod

import (
	"fmt"
	"os"
	"path"

	"github.com/vireshk/libgpiod/uapi"
)

// Direction is the configured direction of a line.
type Direction int

const (
	// DirectionAsIs requests the line without changing its direction.
	DirectionAsIs Direction = iota

	// DirectionInput makes the line readable.
	DirectionInput

	// DirectionOutput makes the line drivable.
	DirectionOutput
)

// Edge selects which line transitions generate edge events.
type Edge int

const (
	// EdgeNone disables edge detection.
	EdgeNone Edge = iota

	// EdgeRising reports inactive to active transitions.
	EdgeRising

	// EdgeFalling reports active to inactive transitions.
	EdgeFalling

	// EdgeBoth reports transitions in both directions.
	EdgeBoth
)

// Bias is the internal bias setting of a line.
type Bias int

const (
	// BiasAsIs requests the line without changing its bias.
	BiasAsIs Bias = iota

	// BiasUnknown indicates the bias state cannot be determined.
	BiasUnknown

	// BiasDisabled disables the internal bias.
	BiasDisabled

	// BiasPullUp enables the internal pull-up.
	BiasPullUp

	// BiasPullDown enables the internal pull-down.
	BiasPullDown
)

// Drive is the drive setting of an output line.
type Drive int

const (
	// DrivePushPull drives the line both high and low.
	DrivePushPull Drive = iota

	// DriveOpenDrain drives the line low and floats it high.
	DriveOpenDrain

	// DriveOpenSource drives the line high and floats it low.
	DriveOpenSource
)

// EventClock is the clock used to timestamp edge events.
type EventClock int

const (
	// EventClockMonotonic timestamps events with CLOCK_MONOTONIC.
	EventClockMonotonic EventClock = iota

	// EventClockRealtime timestamps events with CLOCK_REALTIME.
	EventClockRealtime

	// EventClockHTE timestamps events with the hardware timestamp
	// engine, where available.
	EventClockHTE
)

// The consumer name used for line requests when the request config does
// not carry one. Initialized in init().
var defaultConsumer string

func init() {
	// program_name@pid, so utilities like gpioinfo can identify who
	// holds a line.
	s := fmt.Sprintf("%s@%d", path.Base(os.Args[0]), os.Getpid())
	if len(s) >= uapi.NameSize {
		s = s[:uapi.NameSize-1]
	}
	defaultConsumer = s
}
