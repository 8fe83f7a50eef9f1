//go:build linux

// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package libgpiod

import (
	"fmt"
	"os"
	"time"

	"github.com/vireshk/libgpiod/uapi"
	"golang.org/x/sys/unix"
)

// Test seams for the chip-level uapi calls.
var (
	uapiGetChipInfo     = uapi.GetChipInfo
	uapiGetLineInfo     = uapi.GetLineInfo
	uapiWatchLineInfo   = uapi.WatchLineInfo
	uapiUnwatchLineInfo = uapi.UnwatchLineInfo
)

// Chip is an open GPIO character device, e.g. /dev/gpiochip0.
//
// It exposes the chip's identity, per-line information and line info
// watches, and is the factory for LineRequests. The chip fd is used by a
// request only while the request is being constructed; a Chip may be
// closed while its requests live on.
type Chip struct {
	// Path to the character device this chip was opened from.
	path string
	// The name of the device as reported by the kernel.
	name string
	// An identifying label, set by the device driver.
	label string
	// The number of lines this device supports.
	lines int

	file   *os.File
	closed bool
}

// IsChipDevice reports whether the file at path is a GPIO character
// device that answers the chip info ioctl.
func IsChipDevice(path string) bool {
	f, err := os.OpenFile(path, os.O_RDONLY, 0400)
	if err != nil {
		return false
	}
	defer f.Close()
	_, err = uapiGetChipInfo(f.Fd())
	return err == nil
}

// OpenChip opens the GPIO character device at path and reads its
// identity from the kernel.
func OpenChip(path string) (*Chip, error) {
	f, err := os.OpenFile(path, os.O_RDONLY, 0400)
	if err != nil {
		return nil, fmt.Errorf("opening gpio chip %s: %w", path, err)
	}
	ci, err := uapiGetChipInfo(f.Fd())
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("reading chip info for %s: %w", path, err)
	}
	c := &Chip{
		path:  path,
		name:  uapi.BytesToString(ci.Name[:]),
		label: uapi.BytesToString(ci.Label[:]),
		lines: int(ci.Lines),
		file:  f,
	}
	if len(c.label) == 0 {
		c.label = c.name
	}
	return c, nil
}

// Name returns the chip name as reported by the kernel.
func (c *Chip) Name() string {
	return c.name
}

// Label returns the chip's driver label. Falls back to the name when the
// driver supplies none.
func (c *Chip) Label() string {
	return c.label
}

// Path returns the path the chip was opened from.
func (c *Chip) Path() string {
	return c.path
}

// Lines returns the number of lines this chip supports.
func (c *Chip) Lines() int {
	return c.lines
}

// Fd returns the chip's file descriptor, for callers polling line info
// events themselves. It is owned by the Chip and must not be closed.
func (c *Chip) Fd() int {
	return int(c.file.Fd())
}

// LineInfo returns a snapshot of the state of the line at offset.
func (c *Chip) LineInfo(offset uint32) (LineInfo, error) {
	if c.closed {
		return LineInfo{}, ErrClosed
	}
	li, err := uapiGetLineInfo(c.file.Fd(), offset)
	if err != nil {
		return LineInfo{}, fmt.Errorf("reading line info for offset %d: %w", offset, err)
	}
	return newLineInfo(li), nil
}

// WatchLineInfo returns a snapshot of the line at offset and registers
// it for change notification. Subsequent requests, releases and
// reconfigurations of the line are reported through WaitInfoEvent and
// ReadInfoEvent.
func (c *Chip) WatchLineInfo(offset uint32) (LineInfo, error) {
	if c.closed {
		return LineInfo{}, ErrClosed
	}
	li := uapi.LineInfo{Offset: offset}
	if err := uapiWatchLineInfo(c.file.Fd(), &li); err != nil {
		return LineInfo{}, fmt.Errorf("watching line %d: %w", offset, err)
	}
	return newLineInfo(li), nil
}

// UnwatchLineInfo stops change notification for the line at offset.
func (c *Chip) UnwatchLineInfo(offset uint32) error {
	if c.closed {
		return ErrClosed
	}
	if err := uapiUnwatchLineInfo(c.file.Fd(), offset); err != nil {
		return fmt.Errorf("unwatching line %d: %w", offset, err)
	}
	return nil
}

// WaitInfoEvent waits up to timeout for a change on any watched line.
// Zero polls, negative waits indefinitely. Timeout and interruption are
// reported as results, not errors.
func (c *Chip) WaitInfoEvent(timeout time.Duration) (WaitResult, error) {
	if c.closed {
		return WaitTimeout, ErrClosed
	}
	return waitReadable(int32(c.file.Fd()), -1, timeout)
}

// ReadInfoEvent reads one change event for a watched line. This blocks
// if nothing is pending, so call it after WaitInfoEvent reports
// WaitReady.
func (c *Chip) ReadInfoEvent() (InfoEvent, error) {
	if c.closed {
		return InfoEvent{}, ErrClosed
	}
	lic, err := uapi.ReadLineInfoChanged(c.file.Fd())
	if err != nil {
		return InfoEvent{}, fmt.Errorf("reading info event: %w", err)
	}
	return newInfoEvent(lic), nil
}

// FindLine returns the offset of the line with the given name, scanning
// the chip's lines in order. Line names are not guaranteed unique; the
// first match wins.
func (c *Chip) FindLine(name string) (uint32, error) {
	if c.closed {
		return 0, ErrClosed
	}
	for offset := 0; offset < c.lines; offset++ {
		li, err := uapiGetLineInfo(c.file.Fd(), uint32(offset))
		if err != nil {
			return 0, fmt.Errorf("reading line info for offset %d: %w", offset, err)
		}
		if uapi.BytesToString(li.Name[:]) == name {
			return uint32(offset), nil
		}
	}
	return 0, fmt.Errorf("%w: %q on %s", ErrLineNotFound, name, c.name)
}

// RequestLines claims the lines named in rconfig for exclusive use,
// configured per lconfig, and returns the LineRequest owning them.
//
// The offset list is validated before the kernel is involved: it must
// hold between 1 and 64 unique offsets. Busy lines and insufficient
// privilege surface as wrapped EBUSY and EACCES from the kernel.
func (c *Chip) RequestLines(rconfig *RequestConfig, lconfig *LineConfig) (*LineRequest, error) {
	if c.closed {
		return nil, ErrClosed
	}
	offsets := rconfig.offsets
	if len(offsets) == 0 || len(offsets) > uapi.LinesMax {
		return nil, fmt.Errorf("%w: %d offsets", ErrInvalidOffsets, len(offsets))
	}
	seen := make(map[uint32]bool, len(offsets))
	for _, o := range offsets {
		if seen[o] {
			return nil, fmt.Errorf("%w: duplicate offset %d", ErrInvalidOffsets, o)
		}
		seen[o] = true
	}

	cfg, err := lconfig.toUapi(offsets)
	if err != nil {
		return nil, err
	}
	var req uapi.LineRequest
	req.Config = cfg
	req.NumLines = uint32(len(offsets))
	req.EventBufferSize = uint32(rconfig.eventBufferSize)
	copy(req.Offsets[:], offsets)
	consumer := rconfig.consumer
	if len(consumer) == 0 {
		consumer = defaultConsumer
	}
	copy(req.Consumer[:], consumer)

	if err := uapiGetLine(c.file.Fd(), &req); err != nil {
		return nil, fmt.Errorf("requesting lines %v: %w", offsets, err)
	}

	haltFd, err := unix.Eventfd(0, unix.EFD_CLOEXEC|unix.EFD_NONBLOCK)
	if err != nil {
		_ = unix.Close(int(req.Fd))
		return nil, fmt.Errorf("requesting lines %v: eventfd: %w", offsets, err)
	}

	r := &LineRequest{
		offsets: append([]uint32(nil), offsets...),
		names:   make([]string, len(offsets)),
		fd:      req.Fd,
		haltFd:  int32(haltFd),
	}
	for i, o := range offsets {
		// Names are a convenience for ByName; a line without one is
		// still fully usable by offset.
		if li, err := uapiGetLineInfo(c.file.Fd(), o); err == nil {
			r.names[i] = uapi.BytesToString(li.Name[:])
		}
	}
	return r, nil
}

// Close closes the chip's file descriptor. Requests created from the
// chip are unaffected; closing twice is a safe no-op.
func (c *Chip) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	return c.file.Close()
}

// String returns a short description of the chip.
func (c *Chip) String() string {
	return fmt.Sprintf("%s [%s] (%d lines)", c.name, c.label, c.lines)
}
