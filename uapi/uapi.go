//go:build linux

// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package uapi provides the Linux GPIO character device v2 wire protocol:
// the kernel struct layouts and the ioctl() calls that operate on them.
//
// The layouts are bit-exact copies of the structs in
// /usr/include/linux/gpio.h and must not be changed.
//
// https://docs.kernel.org/userspace-api/gpio/chardev.html
package uapi

import (
	"bytes"
	"encoding/binary"
	"unsafe"

	"golang.org/x/sys/unix"
)

// From the linux /usr/include/asm-generic/ioctl.h file.
const (
	_IOC_WRITE = 1
	_IOC_READ  = 2

	_IOC_NRBITS   = 8
	_IOC_TYPEBITS = 8
	_IOC_SIZEBITS = 14

	_IOC_NRSHIFT   = 0
	_IOC_TYPESHIFT = _IOC_NRSHIFT + _IOC_NRBITS
	_IOC_SIZESHIFT = _IOC_TYPESHIFT + _IOC_TYPEBITS
	_IOC_DIRSHIFT  = _IOC_SIZESHIFT + _IOC_SIZEBITS
)

func ioc(dir, typ, nr, size uintptr) uintptr {
	return dir<<_IOC_DIRSHIFT |
		typ<<_IOC_TYPESHIFT |
		nr<<_IOC_NRSHIFT |
		size<<_IOC_SIZESHIFT
}

func ior(typ, nr, size uintptr) uintptr {
	return ioc(_IOC_READ, typ, nr, size)
}

func iorw(typ, nr, size uintptr) uintptr {
	return ioc(_IOC_READ|_IOC_WRITE, typ, nr, size)
}

// From the /usr/include/linux/gpio.h header file.
const (
	// NameSize is the size of the name and consumer fields.
	NameSize = 32

	// LinesMax is the maximum number of lines in one line request.
	LinesMax = 64

	// LineNumAttrsMax is the maximum number of config attributes in one
	// line config.
	LineNumAttrsMax = 10
)

// LineFlagV2 is the set of gpio_v2_line_flag flags for a line.
type LineFlagV2 uint64

const (
	LineFlagUsed LineFlagV2 = 1 << iota
	LineFlagActiveLow
	LineFlagInput
	LineFlagOutput
	LineFlagEdgeRising
	LineFlagEdgeFalling
	LineFlagOpenDrain
	LineFlagOpenSource
	LineFlagBiasPullUp
	LineFlagBiasPullDown
	LineFlagBiasDisabled
	LineFlagEventClockRealtime
	LineFlagEventClockHTE
)

// Line attribute ids, gpio_v2_line_attr_id.
const (
	LineAttrIDFlags        uint32 = 1
	LineAttrIDOutputValues uint32 = 2
	LineAttrIDDebounce     uint32 = 3
)

// Edge event ids, gpio_v2_line_event_id.
const (
	LineEventRisingEdge  uint32 = 1
	LineEventFallingEdge uint32 = 2
)

// Info changed event types, gpio_v2_line_changed_type.
const (
	LineChangedRequested uint32 = 1
	LineChangedReleased  uint32 = 2
	LineChangedConfig    uint32 = 3
)

// ChipInfo corresponds to struct gpiochip_info.
type ChipInfo struct {
	// The system name of the device.
	Name [NameSize]byte

	// An identifying label added by the device driver.
	Label [NameSize]byte

	// The number of lines supported by this chip.
	Lines uint32
}

// LineAttribute corresponds to struct gpio_v2_line_attribute.
type LineAttribute struct {
	ID uint32

	Padding uint32

	// Value is a union; its interpretation depends on ID.
	Value uint64
}

// LineConfigAttribute corresponds to struct gpio_v2_line_config_attribute.
type LineConfigAttribute struct {
	Attr LineAttribute

	// The lines the attribute applies to, as a bitmap of positions
	// within the request's offset list.
	Mask uint64
}

// LineConfig corresponds to struct gpio_v2_line_config.
type LineConfig struct {
	Flags    LineFlagV2
	NumAttrs uint32
	Padding  [5]uint32
	Attrs    [LineNumAttrsMax]LineConfigAttribute
}

// LineRequest corresponds to struct gpio_v2_line_request.
//
// On a successful GetLine call the kernel returns the fd for the
// requested lines in Fd.
type LineRequest struct {
	Offsets         [LinesMax]uint32
	Consumer        [NameSize]byte
	Config          LineConfig
	NumLines        uint32
	EventBufferSize uint32
	Padding         [5]uint32
	Fd              int32
}

// LineValues corresponds to struct gpio_v2_line_values.
//
// Bit positions in both fields are indices into the request's offset
// list, not GPIO offsets.
type LineValues struct {
	Bits uint64
	Mask uint64
}

// LineInfo corresponds to struct gpio_v2_line_info.
type LineInfo struct {
	Name     [NameSize]byte
	Consumer [NameSize]byte
	Offset   uint32
	NumAttrs uint32
	Flags    LineFlagV2
	Attrs    [LineNumAttrsMax]LineAttribute
	Padding  [4]uint32
}

// LineInfoChanged corresponds to struct gpio_v2_line_info_changed.
type LineInfoChanged struct {
	Info      LineInfo
	Timestamp uint64
	EventType uint32
	Padding   [5]uint32
}

// LineEvent corresponds to struct gpio_v2_line_event.
type LineEvent struct {
	// Best estimate of the time the event occurred, in nanoseconds.
	Timestamp uint64

	// LineEventRisingEdge or LineEventFallingEdge.
	ID uint32

	// The offset of the line that triggered the event.
	Offset uint32

	// Sequence number of the event in all events on this request.
	Seqno uint32

	// Sequence number of the event in events on this line.
	LineSeqno uint32

	Padding [6]uint32
}

// LineEventSize is the size in bytes of one LineEvent on the wire.
const LineEventSize = int(unsafe.Sizeof(LineEvent{}))

// LineInfoChangedSize is the size in bytes of one LineInfoChanged record.
const LineInfoChangedSize = int(unsafe.Sizeof(LineInfoChanged{}))

var (
	getChipInfoIoctl     uintptr
	getLineInfoIoctl     uintptr
	watchLineInfoIoctl   uintptr
	getLineIoctl         uintptr
	unwatchLineInfoIoctl uintptr
	setLineConfigIoctl   uintptr
	getLineValuesIoctl   uintptr
	setLineValuesIoctl   uintptr
)

func init() {
	// ioctl codes embed struct sizes, so compute them at runtime.
	getChipInfoIoctl = ior(0xB4, 0x01, unsafe.Sizeof(ChipInfo{}))
	getLineInfoIoctl = iorw(0xB4, 0x05, unsafe.Sizeof(LineInfo{}))
	watchLineInfoIoctl = iorw(0xB4, 0x06, unsafe.Sizeof(LineInfo{}))
	getLineIoctl = iorw(0xB4, 0x07, unsafe.Sizeof(LineRequest{}))
	var offset uint32
	unwatchLineInfoIoctl = iorw(0xB4, 0x0C, unsafe.Sizeof(offset))
	setLineConfigIoctl = iorw(0xB4, 0x0D, unsafe.Sizeof(LineConfig{}))
	getLineValuesIoctl = iorw(0xB4, 0x0E, unsafe.Sizeof(LineValues{}))
	setLineValuesIoctl = iorw(0xB4, 0x0F, unsafe.Sizeof(LineValues{}))
}

func ioctl(fd uintptr, code uintptr, arg unsafe.Pointer) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, fd, code, uintptr(arg))
	if errno != 0 {
		return errno
	}
	return nil
}

// GetChipInfo returns the ChipInfo for the GPIO character device.
//
// The fd is an open GPIO character device.
func GetChipInfo(fd uintptr) (ChipInfo, error) {
	var ci ChipInfo
	err := ioctl(fd, getChipInfoIoctl, unsafe.Pointer(&ci))
	return ci, err
}

// GetLineInfo returns the LineInfo for one line of the GPIO character
// device.
func GetLineInfo(fd uintptr, offset uint32) (LineInfo, error) {
	li := LineInfo{Offset: offset}
	if err := ioctl(fd, getLineInfoIoctl, unsafe.Pointer(&li)); err != nil {
		return LineInfo{}, err
	}
	return li, nil
}

// WatchLineInfo sets a watch on the line indicated by info.Offset and
// returns the current info in info.
//
// Subsequent changes to the line are reported as LineInfoChanged records
// readable from the chip fd.
func WatchLineInfo(fd uintptr, info *LineInfo) error {
	return ioctl(fd, watchLineInfoIoctl, unsafe.Pointer(info))
}

// UnwatchLineInfo clears a watch on the line.
func UnwatchLineInfo(fd uintptr, offset uint32) error {
	return ioctl(fd, unwatchLineInfoIoctl, unsafe.Pointer(&offset))
}

// GetLine requests the lines in request from the GPIO character device.
//
// The lines must not already be requested. If successful, the fd for the
// lines is returned in request.Fd.
func GetLine(fd uintptr, request *LineRequest) error {
	return ioctl(fd, getLineIoctl, unsafe.Pointer(request))
}

// GetLineValues reads the values of the lines selected by values.Mask.
//
// The fd is a requested line set, as returned by GetLine. Bit positions
// not in the mask are returned as zero.
func GetLineValues(fd uintptr, values *LineValues) error {
	return ioctl(fd, getLineValuesIoctl, unsafe.Pointer(values))
}

// SetLineValues writes values.Bits to the lines selected by values.Mask.
//
// Lines outside the mask are left untouched by the kernel.
func SetLineValues(fd uintptr, values *LineValues) error {
	return ioctl(fd, setLineValuesIoctl, unsafe.Pointer(values))
}

// SetLineConfig applies a new config to an existing line request fd.
//
// The set of requested lines is fixed; only their configuration changes.
func SetLineConfig(fd uintptr, config *LineConfig) error {
	return ioctl(fd, setLineConfigIoctl, unsafe.Pointer(config))
}

// DecodeLineEvent decodes one LineEvent from b.
//
// b must hold at least LineEventSize bytes; extra bytes are ignored.
func DecodeLineEvent(b []byte) LineEvent {
	return LineEvent{
		Timestamp: nativeEndian.Uint64(b[0:8]),
		ID:        nativeEndian.Uint32(b[8:12]),
		Offset:    nativeEndian.Uint32(b[12:16]),
		Seqno:     nativeEndian.Uint32(b[16:20]),
		LineSeqno: nativeEndian.Uint32(b[20:24]),
	}
}

type fdReader int

func (fd fdReader) Read(b []byte) (int, error) {
	return unix.Read(int(fd), b)
}

// ReadLineInfoChanged reads a single line info changed record from a
// chip fd.
//
// This blocks, so it should only be called when the fd is known to be
// readable.
func ReadLineInfoChanged(fd uintptr) (LineInfoChanged, error) {
	var lic LineInfoChanged
	err := binary.Read(fdReader(fd), nativeEndian, &lic)
	return lic, err
}

// BytesToString converts a NUL padded byte array, as used in the kernel
// structs, to a string.
func BytesToString(a []byte) string {
	n := bytes.IndexByte(a, 0)
	if n == -1 {
		return string(a)
	}
	return string(a[:n])
}
