//go:build linux

// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package libgpiod

import (
	"errors"
	"os"
	"testing"
	"unsafe"

	"github.com/vireshk/libgpiod/uapi"
)

func eventBytes(events ...uapi.LineEvent) []byte {
	out := make([]byte, 0, len(events)*uapi.LineEventSize)
	for i := range events {
		raw := (*[uapi.LineEventSize]byte)(unsafe.Pointer(&events[i]))[:]
		out = append(out, raw...)
	}
	return out
}

func eventPipe(t *testing.T) (*os.File, *os.File) {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		r.Close()
		w.Close()
	})
	return r, w
}

func TestNewEdgeEventBufferCapacity(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{0, DefaultEventBufferCapacity},
		{-1, DefaultEventBufferCapacity},
		{1, 1},
		{100, 100},
		{5000, MaxEventBufferCapacity},
	}
	for _, tc := range tests {
		if got := NewEdgeEventBuffer(tc.in).Capacity(); got != tc.want {
			t.Errorf("NewEdgeEventBuffer(%d).Capacity() = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestReadEdgeEvents(t *testing.T) {
	r, w := eventPipe(t)
	raw := eventBytes(
		uapi.LineEvent{Timestamp: 1000, ID: uapi.LineEventRisingEdge, Offset: 2, Seqno: 1, LineSeqno: 1},
		uapi.LineEvent{Timestamp: 2000, ID: uapi.LineEventFallingEdge, Offset: 5, Seqno: 2, LineSeqno: 1},
		uapi.LineEvent{Timestamp: 3000, ID: uapi.LineEventRisingEdge, Offset: 2, Seqno: 3, LineSeqno: 2},
	)
	if _, err := w.Write(raw); err != nil {
		t.Fatal(err)
	}

	b := NewEdgeEventBuffer(16)
	n, err := b.readFd(int32(r.Fd()), 16)
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 || b.Len() != 3 {
		t.Fatalf("read %d events, Len() = %d, want 3", n, b.Len())
	}

	ev, err := b.Event(0)
	if err != nil {
		t.Fatal(err)
	}
	if ev.Edge != EdgeRising || ev.Offset != 2 || ev.Timestamp != 1000 {
		t.Errorf("event 0 = %+v", ev)
	}
	ev, err = b.Event(1)
	if err != nil {
		t.Fatal(err)
	}
	if ev.Edge != EdgeFalling || ev.Offset != 5 {
		t.Errorf("event 1 = %+v", ev)
	}

	// Request-wide sequence numbers never decrease.
	events := b.Events()
	for i := 1; i < len(events); i++ {
		if events[i].Seqno < events[i-1].Seqno {
			t.Errorf("seqno went backwards: %d after %d", events[i].Seqno, events[i-1].Seqno)
		}
	}

	if _, err := b.Event(3); err == nil {
		t.Error("Event(3) did not fail for a 3 event read")
	}
}

func TestReadEdgeEventsFewerThanMax(t *testing.T) {
	r, w := eventPipe(t)
	raw := eventBytes(uapi.LineEvent{Timestamp: 1, ID: uapi.LineEventRisingEdge, Offset: 0, Seqno: 1, LineSeqno: 1})
	if _, err := w.Write(raw); err != nil {
		t.Fatal(err)
	}
	b := NewEdgeEventBuffer(16)
	n, err := b.readFd(int32(r.Fd()), 16)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("read %d events, want 1", n)
	}
}

func TestReadEdgeEventsMaxClampedToCapacity(t *testing.T) {
	r, w := eventPipe(t)
	raw := eventBytes(
		uapi.LineEvent{Timestamp: 1, ID: uapi.LineEventRisingEdge, Seqno: 1, LineSeqno: 1},
		uapi.LineEvent{Timestamp: 2, ID: uapi.LineEventRisingEdge, Seqno: 2, LineSeqno: 2},
	)
	if _, err := w.Write(raw); err != nil {
		t.Fatal(err)
	}
	b := NewEdgeEventBuffer(1)
	n, err := b.readFd(int32(r.Fd()), 100)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("read %d events with capacity 1, want 1", n)
	}
	// The second event is still in the pipe for the next read.
	n, err = b.readFd(int32(r.Fd()), 1)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("second read got %d events, want 1", n)
	}
	ev, err := b.Event(0)
	if err != nil {
		t.Fatal(err)
	}
	if ev.Seqno != 2 {
		t.Errorf("second read Seqno = %d, want 2", ev.Seqno)
	}
}

func TestReadEdgeEventsShortRead(t *testing.T) {
	r, w := eventPipe(t)
	raw := eventBytes(uapi.LineEvent{Timestamp: 1, ID: uapi.LineEventRisingEdge})
	// A truncated record is a protocol violation.
	if _, err := w.Write(raw[:uapi.LineEventSize-5]); err != nil {
		t.Fatal(err)
	}
	b := NewEdgeEventBuffer(16)
	if _, err := b.readFd(int32(r.Fd()), 16); !errors.Is(err, ErrEventRead) {
		t.Errorf("err = %v, want ErrEventRead", err)
	}
	if b.Len() != 0 {
		t.Errorf("Len() = %d after failed read, want 0", b.Len())
	}
}

func TestReadEdgeEventsZeroLength(t *testing.T) {
	r, w := eventPipe(t)
	// Close the write end so the read returns no data at all.
	w.Close()
	b := NewEdgeEventBuffer(16)
	if _, err := b.readFd(int32(r.Fd()), 16); !errors.Is(err, ErrEventRead) {
		t.Errorf("err = %v, want ErrEventRead", err)
	}
}

func TestEdgeEventBufferGrowth(t *testing.T) {
	// The backing storage grows to the largest batch and is reused.
	r, w := eventPipe(t)
	b := NewEdgeEventBuffer(32)

	raw := eventBytes(uapi.LineEvent{Timestamp: 1, ID: uapi.LineEventRisingEdge, Seqno: 1})
	if _, err := w.Write(raw); err != nil {
		t.Fatal(err)
	}
	if _, err := b.readFd(int32(r.Fd()), 1); err != nil {
		t.Fatal(err)
	}
	small := cap(b.raw)

	var events []uapi.LineEvent
	for i := 0; i < 8; i++ {
		events = append(events, uapi.LineEvent{Timestamp: uint64(i), ID: uapi.LineEventRisingEdge, Seqno: uint32(i + 2)})
	}
	if _, err := w.Write(eventBytes(events...)); err != nil {
		t.Fatal(err)
	}
	n, err := b.readFd(int32(r.Fd()), 8)
	if err != nil {
		t.Fatal(err)
	}
	if n != 8 {
		t.Fatalf("read %d events, want 8", n)
	}
	if cap(b.raw) < 8*uapi.LineEventSize {
		t.Error("backing storage did not grow")
	}
	if cap(b.raw) < small {
		t.Error("backing storage shrank")
	}
}
