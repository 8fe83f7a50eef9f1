//go:build linux

// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package libgpiod

import (
	"time"

	"github.com/vireshk/libgpiod/uapi"
)

// LineInfo is an immutable snapshot of a line's state, as reported by
// the kernel. It carries everything publicly known about the line except
// its value; the line must be requested to read that.
type LineInfo struct {
	// Offset of the line within its chip.
	Offset uint32

	// Name of the line, empty if the driver assigned none.
	Name string

	// Consumer holding the line, empty if unused.
	Consumer string

	// Used reports whether the line is in use, by another process or by
	// the kernel itself. A used line cannot be requested.
	Used bool

	ActiveLow bool
	Direction Direction
	Edge      Edge
	Bias      Bias
	Drive     Drive

	EventClock EventClock

	// Debounced reports whether the line is debounced, in hardware or
	// by the kernel.
	Debounced      bool
	DebouncePeriod time.Duration
}

func newLineInfo(li uapi.LineInfo) LineInfo {
	info := LineInfo{
		Offset:   li.Offset,
		Name:     uapi.BytesToString(li.Name[:]),
		Consumer: uapi.BytesToString(li.Consumer[:]),
		Used:     li.Flags&uapi.LineFlagUsed != 0,
	}
	f := li.Flags
	info.ActiveLow = f&uapi.LineFlagActiveLow != 0
	switch {
	case f&uapi.LineFlagOutput != 0:
		info.Direction = DirectionOutput
	case f&uapi.LineFlagInput != 0:
		info.Direction = DirectionInput
	}
	switch {
	case f&uapi.LineFlagEdgeRising != 0 && f&uapi.LineFlagEdgeFalling != 0:
		info.Edge = EdgeBoth
	case f&uapi.LineFlagEdgeRising != 0:
		info.Edge = EdgeRising
	case f&uapi.LineFlagEdgeFalling != 0:
		info.Edge = EdgeFalling
	}
	switch {
	case f&uapi.LineFlagBiasDisabled != 0:
		info.Bias = BiasDisabled
	case f&uapi.LineFlagBiasPullUp != 0:
		info.Bias = BiasPullUp
	case f&uapi.LineFlagBiasPullDown != 0:
		info.Bias = BiasPullDown
	default:
		info.Bias = BiasUnknown
	}
	switch {
	case f&uapi.LineFlagOpenDrain != 0:
		info.Drive = DriveOpenDrain
	case f&uapi.LineFlagOpenSource != 0:
		info.Drive = DriveOpenSource
	}
	switch {
	case f&uapi.LineFlagEventClockRealtime != 0:
		info.EventClock = EventClockRealtime
	case f&uapi.LineFlagEventClockHTE != 0:
		info.EventClock = EventClockHTE
	}
	for i := 0; i < int(li.NumAttrs) && i < uapi.LineNumAttrsMax; i++ {
		if li.Attrs[i].ID == uapi.LineAttrIDDebounce {
			info.Debounced = true
			info.DebouncePeriod = time.Duration(li.Attrs[i].Value) * time.Microsecond
		}
	}
	return info
}
