// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package libgpiod

import (
	"strings"
	"testing"

	"github.com/vireshk/libgpiod/uapi"
)

func TestRequestConfigConsumerTruncation(t *testing.T) {
	rc := NewRequestConfig()
	rc.SetConsumer("short")
	if rc.Consumer() != "short" {
		t.Errorf("Consumer() = %q, want short", rc.Consumer())
	}

	long := strings.Repeat("x", 100)
	rc.SetConsumer(long)
	if len(rc.Consumer()) != uapi.NameSize-1 {
		t.Errorf("len(Consumer()) = %d, want %d", len(rc.Consumer()), uapi.NameSize-1)
	}
	if !strings.HasPrefix(long, rc.Consumer()) {
		t.Error("truncated consumer is not a prefix of the original")
	}
}

func TestRequestConfigOffsetLimit(t *testing.T) {
	offsets := make([]uint32, 70)
	for i := range offsets {
		offsets[i] = uint32(i)
	}
	rc := NewRequestConfig()
	rc.SetOffsets(offsets)
	got := rc.Offsets()
	if len(got) != uapi.LinesMax {
		t.Fatalf("len(Offsets()) = %d, want %d", len(got), uapi.LinesMax)
	}
	for i, o := range got {
		if o != uint32(i) {
			t.Fatalf("Offsets()[%d] = %d, want %d", i, o, i)
		}
	}
}

func TestRequestConfigOffsetsCopied(t *testing.T) {
	in := []uint32{2, 5, 7}
	rc := NewRequestConfig()
	rc.SetOffsets(in)
	in[0] = 99
	if rc.Offsets()[0] != 2 {
		t.Error("SetOffsets aliased the caller's slice")
	}
	out := rc.Offsets()
	out[1] = 99
	if rc.Offsets()[1] != 5 {
		t.Error("Offsets returned the internal slice")
	}
}

func TestRequestConfigEventBufferSize(t *testing.T) {
	rc := NewRequestConfig()
	if rc.EventBufferSize() != 0 {
		t.Error("default event buffer size is not zero")
	}
	rc.SetEventBufferSize(128)
	if rc.EventBufferSize() != 128 {
		t.Errorf("EventBufferSize() = %d, want 128", rc.EventBufferSize())
	}
	rc.SetEventBufferSize(-5)
	if rc.EventBufferSize() != 0 {
		t.Errorf("negative size not clamped, got %d", rc.EventBufferSize())
	}
}
