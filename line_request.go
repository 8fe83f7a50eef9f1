//go:build linux

// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package libgpiod

import (
	"fmt"
	"time"
	"unsafe"

	"github.com/vireshk/libgpiod/uapi"
	"golang.org/x/sys/unix"
)

// Indirection over the uapi calls so tests can substitute a recording
// fake without a real chip.
var (
	uapiGetLine       = uapi.GetLine
	uapiGetLineValues = uapi.GetLineValues
	uapiSetLineValues = uapi.SetLineValues
	uapiSetLineConfig = uapi.SetLineConfig
)

// LineRequest is a set of lines held on one file descriptor, obtained
// from Chip.RequestLines.
//
// The offset list is fixed for the lifetime of the request; the index of
// an offset in that list is its bit position in the kernel's mask/bits
// words. All value and event operations go through the one fd. The
// request stays valid after the owning Chip is closed.
//
// A LineRequest must not be used from multiple goroutines without
// external synchronization, except that Halt may be called from another
// goroutine to interrupt a blocked WaitEdgeEvent.
type LineRequest struct {
	offsets []uint32
	// Line names matching offsets, for ByName. Empty where the kernel
	// reports no name.
	names  []string
	fd     int32
	haltFd int32
	closed bool
	// Single-event buffer reused by the group WaitForEdge adapter.
	waitBuf *EdgeEventBuffer
}

// Offsets returns a copy of the requested offsets, in request order.
func (r *LineRequest) Offsets() []uint32 {
	return append([]uint32(nil), r.offsets...)
}

// NumLines returns the number of lines in the request.
func (r *LineRequest) NumLines() int {
	return len(r.offsets)
}

// Fd returns the file descriptor of the request, for callers that want
// to integrate it into their own poll loop. The fd is owned by the
// request and must not be closed.
func (r *LineRequest) Fd() int {
	return int(r.fd)
}

// offsetToBit resolves a GPIO offset to its bit position in the request.
// A linear scan; requests are capped at 64 lines so there is no point in
// anything cleverer.
func (r *LineRequest) offsetToBit(offset uint32) int {
	for i, o := range r.offsets {
		if o == offset {
			return i
		}
	}
	return -1
}

// Value returns the value, 0 or 1, of a single line.
func (r *LineRequest) Value(offset uint32) (int, error) {
	v, err := r.ValuesSubset([]uint32{offset})
	if err != nil {
		return 0, err
	}
	return v[0], nil
}

// Values returns the values of all lines in the request, in request
// order.
func (r *LineRequest) Values() ([]int, error) {
	return r.ValuesSubset(r.offsets)
}

// ValuesSubset returns the values of the given subset of the request's
// lines, in one kernel call.
//
// Results match the order of offsets. If any offset is not part of the
// request the whole call fails with ErrUnknownOffset before the kernel
// is involved; there are no partial results.
func (r *LineRequest) ValuesSubset(offsets []uint32) ([]int, error) {
	if r.closed {
		return nil, ErrClosed
	}
	var mask lineMask
	for _, o := range offsets {
		bit := r.offsetToBit(o)
		if bit < 0 {
			return nil, fmt.Errorf("%w: %d", ErrUnknownOffset, o)
		}
		mask.set(bit)
	}
	lv := uapi.LineValues{Mask: uint64(mask)}
	if err := uapiGetLineValues(uintptr(r.fd), &lv); err != nil {
		return nil, fmt.Errorf("getting line values: %w", err)
	}
	bits := lineMask(lv.Bits)
	values := make([]int, len(offsets))
	for i, o := range offsets {
		if bits.test(r.offsetToBit(o)) {
			values[i] = 1
		}
	}
	return values, nil
}

// SetValue sets the value of a single line. Other lines in the request
// are left untouched.
func (r *LineRequest) SetValue(offset uint32, value int) error {
	return r.SetValuesSubset([]uint32{offset}, []int{value})
}

// SetValues sets the values of all lines in the request. values must
// hold one value per requested line, in request order.
func (r *LineRequest) SetValues(values []int) error {
	if len(values) != len(r.offsets) {
		return fmt.Errorf("%w: %d values for %d lines", ErrSizeMismatch, len(values), len(r.offsets))
	}
	return r.SetValuesSubset(r.offsets, values)
}

// SetValuesSubset sets the values of the given subset of the request's
// lines, in one kernel call.
//
// The kernel mask covers exactly the given offsets, so lines outside the
// subset keep their state. An offset that is not part of the request
// fails the whole call with ErrUnknownOffset before the kernel is
// involved. An offset repeated within the subset resolves to the same
// bit; the value supplied last wins.
func (r *LineRequest) SetValuesSubset(offsets []uint32, values []int) error {
	if r.closed {
		return ErrClosed
	}
	if len(offsets) != len(values) {
		return fmt.Errorf("%w: %d values for %d offsets", ErrSizeMismatch, len(values), len(offsets))
	}
	var mask, bits lineMask
	for i, o := range offsets {
		bit := r.offsetToBit(o)
		if bit < 0 {
			return fmt.Errorf("%w: %d", ErrUnknownOffset, o)
		}
		mask.set(bit)
		bits.assign(bit, values[i] != 0)
	}
	lv := uapi.LineValues{Bits: uint64(bits), Mask: uint64(mask)}
	if err := uapiSetLineValues(uintptr(r.fd), &lv); err != nil {
		return fmt.Errorf("setting line values: %w", err)
	}
	return nil
}

// Reconfigure applies a new configuration to the lines held by the
// request, without releasing them. The set of lines cannot be changed.
//
// On failure the request, its fd and any event buffers remain valid with
// the previous configuration still in force.
func (r *LineRequest) Reconfigure(config *LineConfig) error {
	if r.closed {
		return ErrClosed
	}
	cfg, err := config.toUapi(r.offsets)
	if err != nil {
		return err
	}
	if err := uapiSetLineConfig(uintptr(r.fd), &cfg); err != nil {
		return fmt.Errorf("reconfiguring lines: %w", err)
	}
	return nil
}

// WaitEdgeEvent waits up to timeout for an edge event on any line of the
// request.
//
// A zero timeout polls without blocking, a negative timeout waits
// indefinitely. WaitTimeout and WaitInterrupted are ordinary outcomes,
// not errors; retry on WaitInterrupted.
func (r *LineRequest) WaitEdgeEvent(timeout time.Duration) (WaitResult, error) {
	if r.closed {
		return WaitTimeout, ErrClosed
	}
	return waitReadable(r.fd, r.haltFd, timeout)
}

// ReadEdgeEvents reads up to maxEvents edge events into buffer,
// replacing its previous contents, and returns the number read. Fewer
// events than requested may be returned; maxEvents above the buffer
// capacity, or zero or below, reads up to the capacity.
//
// This blocks if nothing is pending, so call it after WaitEdgeEvent
// reports WaitReady.
func (r *LineRequest) ReadEdgeEvents(buffer *EdgeEventBuffer, maxEvents int) (int, error) {
	if r.closed {
		return 0, ErrClosed
	}
	return buffer.readFd(r.fd, maxEvents)
}

// Halt interrupts a WaitEdgeEvent blocked in another goroutine; the wait
// returns WaitInterrupted. A no-op if nothing is waiting.
func (r *LineRequest) Halt() error {
	if r.closed {
		return ErrClosed
	}
	// Bump the eventfd counter to make the poll in waitReadable fire.
	var one = uint64(1)
	buf := (*[8]byte)(unsafe.Pointer(&one))[:]
	if _, err := unix.Write(int(r.haltFd), buf); err != nil {
		return fmt.Errorf("interrupting wait: %w", err)
	}
	return nil
}

// Close releases the lines and closes the request fd. Closing an
// already closed request is a safe no-op. Any other operation on a
// closed request fails with ErrClosed.
func (r *LineRequest) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	err := unix.Close(int(r.fd))
	if r.haltFd >= 0 {
		_ = unix.Close(int(r.haltFd))
	}
	if err != nil {
		return fmt.Errorf("releasing lines: %w", err)
	}
	return nil
}
