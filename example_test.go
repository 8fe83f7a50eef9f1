//go:build linux

// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package libgpiod_test

import (
	"fmt"
	"log"
	"time"

	"github.com/vireshk/libgpiod"
)

func Example() {
	c, err := libgpiod.OpenChip("/dev/gpiochip0")
	if err != nil {
		log.Fatal(err)
	}
	defer c.Close()
	fmt.Println(c.String())

	// Drive an LED on line 5 while watching a button on line 6.
	lc := libgpiod.NewLineConfig()
	lc.SetDirection(libgpiod.DirectionOutput)
	lc.SetDirectionOffset(6, libgpiod.DirectionInput)
	lc.SetEdgeOffset(6, libgpiod.EdgeBoth)
	lc.SetBiasOffset(6, libgpiod.BiasPullUp)
	lc.SetDebouncePeriodOffset(6, 10*time.Millisecond)

	rc := libgpiod.NewRequestConfig()
	rc.SetOffsets([]uint32{5, 6})
	req, err := c.RequestLines(rc, lc)
	if err != nil {
		log.Fatal(err)
	}
	defer req.Close()

	buffer := libgpiod.NewEdgeEventBuffer(0)
	for i := 0; i < 20; i++ {
		_ = req.SetValue(5, i%2)
		res, err := req.WaitEdgeEvent(500 * time.Millisecond)
		if err != nil {
			log.Fatal(err)
		}
		if res != libgpiod.WaitReady {
			continue
		}
		n, err := req.ReadEdgeEvents(buffer, buffer.Capacity())
		if err != nil {
			log.Fatal(err)
		}
		for j := 0; j < n; j++ {
			ev, _ := buffer.Event(j)
			fmt.Println("button event:", ev.Edge, ev.Timestamp)
		}
	}
}

func ExampleChip_WatchLineInfo() {
	c, err := libgpiod.OpenChip("/dev/gpiochip0")
	if err != nil {
		log.Fatal(err)
	}
	defer c.Close()

	if _, err := c.WatchLineInfo(3); err != nil {
		log.Fatal(err)
	}
	for {
		res, err := c.WaitInfoEvent(time.Minute)
		if err != nil {
			log.Fatal(err)
		}
		if res != libgpiod.WaitReady {
			return
		}
		ev, err := c.ReadInfoEvent()
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println("line", ev.Info.Offset, "changed:", ev.Kind)
	}
}
