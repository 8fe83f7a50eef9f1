//go:build linux

// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package libgpiod

import (
	"time"

	"github.com/vireshk/libgpiod/uapi"
)

// InfoEventKind is the type of change reported by an InfoEvent.
type InfoEventKind int

const (
	// InfoEventLineRequested indicates the line has been requested.
	InfoEventLineRequested InfoEventKind = iota + 1

	// InfoEventLineReleased indicates the line has been released.
	InfoEventLineReleased

	// InfoEventLineConfigChanged indicates the line configuration has
	// changed.
	InfoEventLineConfigChanged
)

// InfoEvent reports a state change on a watched line. Events are read
// from the chip, in arrival order, for lines previously registered with
// Chip.WatchLineInfo.
type InfoEvent struct {
	Kind InfoEventKind

	// Timestamp of the change, in nanoseconds on the monotonic clock.
	Timestamp time.Duration

	// Info is the line's state after the change.
	Info LineInfo
}

func newInfoEvent(lic uapi.LineInfoChanged) InfoEvent {
	var kind InfoEventKind
	switch lic.EventType {
	case uapi.LineChangedRequested:
		kind = InfoEventLineRequested
	case uapi.LineChangedReleased:
		kind = InfoEventLineReleased
	case uapi.LineChangedConfig:
		kind = InfoEventLineConfigChanged
	}
	return InfoEvent{
		Kind:      kind,
		Timestamp: time.Duration(lic.Timestamp),
		Info:      newLineInfo(lic.Info),
	}
}
