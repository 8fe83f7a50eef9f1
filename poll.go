//go:build linux

// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package libgpiod

import (
	"time"

	"golang.org/x/sys/unix"
)

// WaitResult is the outcome of a blocking wait.
type WaitResult int

const (
	// WaitTimeout indicates the timeout elapsed with nothing to read.
	WaitTimeout WaitResult = iota

	// WaitReady indicates data is available to read.
	WaitReady

	// WaitInterrupted indicates the wait was cut short, either by a
	// signal or by Halt. Not an error; callers are expected to retry.
	WaitInterrupted
)

// waitReadable blocks until fd is readable, the timeout elapses, or the
// wait is interrupted.
//
// A zero timeout polls without blocking, a negative timeout blocks
// indefinitely. wakeFd, if non-negative, is an eventfd that interrupts
// the wait when written to; it is drained before returning.
func waitReadable(fd, wakeFd int32, timeout time.Duration) (WaitResult, error) {
	fds := []unix.PollFd{{Fd: fd, Events: unix.POLLIN}}
	if wakeFd >= 0 {
		fds = append(fds, unix.PollFd{Fd: wakeFd, Events: unix.POLLIN})
	}
	var ts *unix.Timespec
	if timeout >= 0 {
		t := unix.NsecToTimespec(timeout.Nanoseconds())
		ts = &t
	}
	n, err := unix.Ppoll(fds, ts, nil)
	if err == unix.EINTR {
		return WaitInterrupted, nil
	}
	if err != nil {
		return WaitTimeout, err
	}
	if n == 0 {
		return WaitTimeout, nil
	}
	if len(fds) > 1 && fds[1].Revents&unix.POLLIN != 0 {
		var buf [8]byte
		_, _ = unix.Read(int(wakeFd), buf[:])
		return WaitInterrupted, nil
	}
	return WaitReady, nil
}
