// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package libgpiod

// lineMask is the 64 bit line bitmap used by the v2 uAPI. Bit positions
// are indices into a request's offset list, never raw GPIO offsets.
//
// Positions must be in [0, 64). Out of range positions are a caller bug;
// the request construction path enforces the 64 line ceiling.
type lineMask uint64

func (m *lineMask) set(pos int) {
	*m |= 1 << uint(pos)
}

func (m lineMask) test(pos int) bool {
	return m&(1<<uint(pos)) != 0
}

func (m *lineMask) assign(pos int, value bool) {
	if value {
		m.set(pos)
	} else {
		*m &^= 1 << uint(pos)
	}
}
