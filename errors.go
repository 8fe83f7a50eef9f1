// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package libgpiod

import "errors"

// Errors returned by this package. Kernel call failures are wrapped with
// %w, so errors.Is(err, unix.EBUSY), errors.Is(err, unix.EACCES) and
// friends can be used to inspect the underlying errno.
var (
	// ErrClosed is returned when operating on a released request or a
	// closed chip.
	ErrClosed = errors.New("already closed")

	// ErrInvalidOffsets is returned when a request's offset list is
	// empty, too long, or contains duplicates. Detected before any
	// kernel call is made.
	ErrInvalidOffsets = errors.New("invalid offset list")

	// ErrUnknownOffset is returned when a value operation references an
	// offset that is not part of the request. Detected before any
	// kernel call is made.
	ErrUnknownOffset = errors.New("offset not in request")

	// ErrSizeMismatch is returned when the number of values supplied
	// does not match the number of offsets.
	ErrSizeMismatch = errors.New("offset and value counts differ")

	// ErrConfigTooComplex is returned when a line config needs more
	// attributes than the kernel accepts in one request.
	ErrConfigTooComplex = errors.New("line config too complex to encode")

	// ErrLineNotFound is returned by Chip.FindLine when no line has the
	// requested name.
	ErrLineNotFound = errors.New("line not found")

	// ErrEventRead is returned when an edge event read yields a
	// truncated record or no data at all. Either indicates a kernel
	// protocol violation and is surfaced rather than swallowed.
	ErrEventRead = errors.New("malformed edge event read")
)
