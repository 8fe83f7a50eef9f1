//go:build linux

// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package libgpiod

import (
	"errors"
	"fmt"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/pin"

	"github.com/vireshk/libgpiod/uapi"
)

// This file adapts LineRequest to periph.io/x/conn/v3/gpio so a request
// can be handed to code written against gpio.Group and gpio.PinIO. The
// adapter uses the same mask/bits convention as the rest of the
// package: bit i of a gpio.GPIOValue refers to the line at index i of
// the request's offset list.

// Pins returns the lines of the request as pin.Pin, in request order.
func (r *LineRequest) Pins() []pin.Pin {
	pins := make([]pin.Pin, len(r.offsets))
	for i := range r.offsets {
		pins[i] = &RequestPin{req: r, index: i}
	}
	return pins
}

// ByOffset returns the line at index offset within the request, or nil
// if out of range. Note this is the position in the request, not the
// chip line number; for that, use ByNumber.
func (r *LineRequest) ByOffset(offset int) pin.Pin {
	if offset < 0 || offset >= len(r.offsets) {
		return nil
	}
	return &RequestPin{req: r, index: offset}
}

// ByName returns the line with the given kernel name, or nil if the
// request holds no such line.
func (r *LineRequest) ByName(name string) pin.Pin {
	for i, n := range r.names {
		if len(n) > 0 && n == name {
			return &RequestPin{req: r, index: i}
		}
	}
	return nil
}

// ByNumber returns the line with the given chip line number, or nil if
// the request holds no such line.
func (r *LineRequest) ByNumber(number int) pin.Pin {
	for i, o := range r.offsets {
		if int(o) == number {
			return &RequestPin{req: r, index: i}
		}
	}
	return nil
}

// Out writes bits to the request's lines in one syscall. A zero mask
// means all lines.
func (r *LineRequest) Out(bits, mask gpio.GPIOValue) error {
	if r.closed {
		return ErrClosed
	}
	if mask == 0 {
		mask = (1 << len(r.offsets)) - 1
	}
	lv := uapi.LineValues{Bits: uint64(bits), Mask: uint64(mask)}
	return uapiSetLineValues(uintptr(r.fd), &lv)
}

// Read reads the request's lines in one syscall. A zero mask means all
// lines.
func (r *LineRequest) Read(mask gpio.GPIOValue) (gpio.GPIOValue, error) {
	if r.closed {
		return 0, ErrClosed
	}
	if mask == 0 {
		mask = (1 << len(r.offsets)) - 1
	}
	lv := uapi.LineValues{Mask: uint64(mask)}
	if err := uapiGetLineValues(uintptr(r.fd), &lv); err != nil {
		return 0, err
	}
	return gpio.GPIOValue(lv.Bits), nil
}

// WaitForEdge waits for an edge on any of the request's lines and
// returns the chip line number and edge that fired. A zero timeout
// waits forever, matching gpio.Group. Timeout and Halt are reported as
// gpio.NoEdge with a nil error.
func (r *LineRequest) WaitForEdge(timeout time.Duration) (int, gpio.Edge, error) {
	if r.closed {
		return 0, gpio.NoEdge, ErrClosed
	}
	if timeout == 0 {
		timeout = -1
	}
	res, err := r.WaitEdgeEvent(timeout)
	if err != nil {
		return 0, gpio.NoEdge, err
	}
	if res != WaitReady {
		return 0, gpio.NoEdge, nil
	}
	if r.waitBuf == nil {
		r.waitBuf = NewEdgeEventBuffer(1)
	}
	if _, err := r.ReadEdgeEvents(r.waitBuf, 1); err != nil {
		return 0, gpio.NoEdge, err
	}
	ev, err := r.waitBuf.Event(0)
	if err != nil {
		return 0, gpio.NoEdge, err
	}
	edge := gpio.RisingEdge
	if ev.Edge == EdgeFalling {
		edge = gpio.FallingEdge
	}
	return int(ev.Offset), edge, nil
}

// String implements conn.Resource.
func (r *LineRequest) String() string {
	return fmt.Sprintf("lines%v", r.offsets)
}

// RequestPin is one line of a LineRequest exposed through the
// gpio.PinIO interface. Reads and writes go through the parent
// request's fd with a single-bit mask.
type RequestPin struct {
	req   *LineRequest
	index int
}

// Number returns the chip line number. Implements gpio.Pin.
func (p *RequestPin) Number() int {
	return int(p.req.offsets[p.index])
}

// Name returns the kernel's name for the line. Implements gpio.Pin.
func (p *RequestPin) Name() string {
	return p.req.names[p.index]
}

// Function implements pin.Pin.
func (p *RequestPin) Function() string {
	return "not implemented"
}

// Out writes to this line only. Implements gpio.PinOut.
func (p *RequestPin) Out(l gpio.Level) error {
	v := 0
	if l {
		v = 1
	}
	return p.req.SetValue(p.req.offsets[p.index], v)
}

// PWM is not supported by the GPIO character device.
func (p *RequestPin) PWM(gpio.Duty, physic.Frequency) error {
	return errors.New("PWM() not implemented")
}

// In always fails. Lines in a request cannot be reconfigured one at a
// time; use LineRequest.Reconfigure for the whole request.
func (p *RequestPin) In(pull gpio.Pull, edge gpio.Edge) error {
	return errors.New("a requested line cannot be reconfigured individually, use Reconfigure on the request")
}

// Read returns the level of this line, or false on error.
func (p *RequestPin) Read() gpio.Level {
	v, err := p.req.Value(p.req.offsets[p.index])
	if err != nil {
		return false
	}
	return v != 0
}

// WaitForEdge always returns false. Edge events belong to the whole
// request; use LineRequest.WaitForEdge.
func (p *RequestPin) WaitForEdge(timeout time.Duration) bool {
	return false
}

// Pull returns gpio.PullNoChange. The character device does not report
// bias through the value path; read it from Chip.LineInfo instead.
func (p *RequestPin) Pull() gpio.Pull {
	return gpio.PullNoChange
}

// DefaultPull returns gpio.PullNoChange. The GPIO uAPI has no notion of
// a default pull.
func (p *RequestPin) DefaultPull() gpio.Pull {
	return gpio.PullNoChange
}

// Halt interrupts a pending WaitForEdge on the parent request.
func (p *RequestPin) Halt() error {
	return p.req.Halt()
}

// String returns the line name and number.
func (p *RequestPin) String() string {
	return fmt.Sprintf("%s(%d)", p.Name(), p.Number())
}

// Ensure that Interfaces for these types are implemented fully.
var _ gpio.Group = &LineRequest{}
var _ gpio.PinIO = &RequestPin{}
var _ gpio.PinIn = &RequestPin{}
var _ gpio.PinOut = &RequestPin{}
