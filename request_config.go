// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package libgpiod

import "github.com/vireshk/libgpiod/uapi"

// RequestConfig carries the request-wide options passed to the kernel
// when lines are requested: the offsets to claim, the consumer label and
// the kernel event buffer size.
//
// Mutators silently adjust invalid values to acceptable ranges, the same
// way the line config mutators do.
type RequestConfig struct {
	consumer        string
	offsets         []uint32
	eventBufferSize int
}

// NewRequestConfig returns an empty RequestConfig.
func NewRequestConfig() *RequestConfig {
	return &RequestConfig{}
}

// SetConsumer sets the consumer label for the request. Labels longer
// than the kernel's field are truncated. If never set, program_name@pid
// is used.
func (rc *RequestConfig) SetConsumer(consumer string) {
	if len(consumer) >= uapi.NameSize {
		consumer = consumer[:uapi.NameSize-1]
	}
	rc.consumer = consumer
}

// Consumer returns the configured consumer label.
func (rc *RequestConfig) Consumer() string {
	return rc.consumer
}

// SetOffsets sets the offsets of the lines to request. Offsets beyond
// the kernel's per-request limit are dropped.
func (rc *RequestConfig) SetOffsets(offsets []uint32) {
	if len(offsets) > uapi.LinesMax {
		offsets = offsets[:uapi.LinesMax]
	}
	rc.offsets = append(rc.offsets[:0], offsets...)
}

// Offsets returns a copy of the configured offsets.
func (rc *RequestConfig) Offsets() []uint32 {
	return append([]uint32(nil), rc.offsets...)
}

// SetEventBufferSize suggests a size for the kernel's edge event buffer.
// Zero selects the kernel default; the kernel may clamp large values.
func (rc *RequestConfig) SetEventBufferSize(size int) {
	if size < 0 {
		size = 0
	}
	rc.eventBufferSize = size
}

// EventBufferSize returns the configured event buffer size.
func (rc *RequestConfig) EventBufferSize() int {
	return rc.eventBufferSize
}
