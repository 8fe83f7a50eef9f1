//go:build linux

// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package libgpiod

import (
	"fmt"
	"time"

	"github.com/vireshk/libgpiod/uapi"
	"golang.org/x/sys/unix"
)

// EdgeEvent describes a single line transition reported by the kernel.
type EdgeEvent struct {
	// Edge is EdgeRising or EdgeFalling.
	Edge Edge

	// Timestamp of the event in nanoseconds. Monotonic unless the line
	// was configured for the realtime event clock.
	Timestamp time.Duration

	// Offset of the line that changed, within its chip.
	Offset uint32

	// Seqno is the sequence number of this event in all events on the
	// request.
	Seqno uint32

	// LineSeqno is the sequence number of this event in events on this
	// line.
	LineSeqno uint32
}

const (
	// DefaultEventBufferCapacity is used when NewEdgeEventBuffer is
	// given a capacity of zero.
	DefaultEventBufferCapacity = 64

	// MaxEventBufferCapacity caps the capacity of an EdgeEventBuffer.
	MaxEventBufferCapacity = 1024
)

// EdgeEventBuffer holds edge events read from a line request.
//
// The buffer exists to amortize allocation over many reads: it is
// created once and refilled by LineRequest.ReadEdgeEvents, and its
// backing storage grows to the largest batch ever requested and is never
// shrunk. Each read overwrites the previous contents.
//
// A buffer must not be used by multiple goroutines concurrently, nor
// refilled while events returned by Events are still being inspected.
type EdgeEventBuffer struct {
	capacity int
	raw      []byte
	events   []EdgeEvent
	count    int
}

// NewEdgeEventBuffer returns a buffer holding up to capacity events per
// read. A capacity of zero selects DefaultEventBufferCapacity; larger
// capacities are clamped to MaxEventBufferCapacity.
func NewEdgeEventBuffer(capacity int) *EdgeEventBuffer {
	if capacity <= 0 {
		capacity = DefaultEventBufferCapacity
	}
	if capacity > MaxEventBufferCapacity {
		capacity = MaxEventBufferCapacity
	}
	return &EdgeEventBuffer{capacity: capacity}
}

// Capacity returns the maximum number of events one read can return.
func (b *EdgeEventBuffer) Capacity() int {
	return b.capacity
}

// Len returns the number of events held from the last read.
func (b *EdgeEventBuffer) Len() int {
	return b.count
}

// Event returns the i-th event from the last read.
func (b *EdgeEventBuffer) Event(i int) (EdgeEvent, error) {
	if i < 0 || i >= b.count {
		return EdgeEvent{}, fmt.Errorf("event index %d out of range [0, %d)", i, b.count)
	}
	return b.events[i], nil
}

// Events returns the events held from the last read. The returned slice
// is only valid until the next read into the buffer.
func (b *EdgeEventBuffer) Events() []EdgeEvent {
	return b.events[:b.count]
}

// readFd reads up to maxEvents raw event records from fd in a single
// read and decodes them into the buffer.
//
// The backing storage is grown if the batch needs more room than any
// previous read. Only complete records are decoded; a read that is not a
// whole number of records, or that returns no data at all on a readable
// fd, is a kernel protocol violation reported as ErrEventRead.
func (b *EdgeEventBuffer) readFd(fd int32, maxEvents int) (int, error) {
	if maxEvents <= 0 || maxEvents > b.capacity {
		maxEvents = b.capacity
	}
	need := maxEvents * uapi.LineEventSize
	if cap(b.raw) < need {
		b.raw = make([]byte, need)
	}
	buf := b.raw[:need]

	b.count = 0
	n, err := unix.Read(int(fd), buf)
	if err != nil {
		return 0, fmt.Errorf("reading edge events: %w", err)
	}
	if n == 0 {
		return 0, fmt.Errorf("%w: zero-length read", ErrEventRead)
	}
	if n%uapi.LineEventSize != 0 {
		return 0, fmt.Errorf("%w: %d bytes is not a whole number of records", ErrEventRead, n)
	}
	count := n / uapi.LineEventSize
	if cap(b.events) < count {
		b.events = make([]EdgeEvent, count)
	}
	b.events = b.events[:count]
	for i := 0; i < count; i++ {
		raw := uapi.DecodeLineEvent(buf[i*uapi.LineEventSize:])
		edge := EdgeRising
		if raw.ID == uapi.LineEventFallingEdge {
			edge = EdgeFalling
		}
		b.events[i] = EdgeEvent{
			Edge:      edge,
			Timestamp: time.Duration(raw.Timestamp),
			Offset:    raw.Offset,
			Seqno:     raw.Seqno,
			LineSeqno: raw.LineSeqno,
		}
	}
	b.count = count
	return count, nil
}
