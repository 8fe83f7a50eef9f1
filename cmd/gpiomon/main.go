//go:build linux

// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// gpiomon watches a set of lines for edge events and prints them.
//
//	gpiomon -chip /dev/gpiochip0 -edge both 2 5
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/vireshk/libgpiod"
	"github.com/vireshk/libgpiod/internal/logcfg"
)

var edgeNames = map[libgpiod.Edge]string{
	libgpiod.EdgeRising:  "rising",
	libgpiod.EdgeFalling: "falling",
}

func main() {
	logcfg.InitParam()
	chipPath := flag.String("chip", "/dev/gpiochip0", "path of the chip to monitor")
	edge := flag.String("edge", "both", "edges to watch: rising, falling or both")
	debounce := flag.Duration("debounce", 0, "debounce period applied to all lines")
	flag.Parse()
	log := logcfg.GetLogger(logrus.InfoLevel)

	offsets := make([]uint32, 0, flag.NArg())
	for _, arg := range flag.Args() {
		n, err := strconv.ParseUint(arg, 10, 32)
		if err != nil {
			log.WithField("arg", arg).Fatal("offsets must be numeric")
		}
		offsets = append(offsets, uint32(n))
	}
	if len(offsets) == 0 {
		log.Fatal("no lines specified")
	}

	lc := libgpiod.NewLineConfig()
	lc.SetDirection(libgpiod.DirectionInput)
	switch *edge {
	case "rising":
		lc.SetEdge(libgpiod.EdgeRising)
	case "falling":
		lc.SetEdge(libgpiod.EdgeFalling)
	case "both":
		lc.SetEdge(libgpiod.EdgeBoth)
	default:
		log.WithField("edge", *edge).Fatal("unknown edge")
	}
	if *debounce > 0 {
		lc.SetDebouncePeriod(*debounce)
	}

	c, err := libgpiod.OpenChip(*chipPath)
	if err != nil {
		log.WithError(err).Fatal("opening chip")
	}
	defer c.Close()

	rc := libgpiod.NewRequestConfig()
	rc.SetConsumer("gpiomon")
	rc.SetOffsets(offsets)
	req, err := c.RequestLines(rc, lc)
	if err != nil {
		log.WithError(err).Fatal("requesting lines")
	}
	defer req.Close()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		_ = req.Halt()
	}()

	buffer := libgpiod.NewEdgeEventBuffer(libgpiod.DefaultEventBufferCapacity)
	for {
		res, err := req.WaitEdgeEvent(time.Second)
		if err != nil {
			log.WithError(err).Fatal("waiting for events")
		}
		switch res {
		case libgpiod.WaitTimeout:
			continue
		case libgpiod.WaitInterrupted:
			return
		}
		n, err := req.ReadEdgeEvents(buffer, buffer.Capacity())
		if err != nil {
			log.WithError(err).Fatal("reading events")
		}
		for i := 0; i < n; i++ {
			ev, err := buffer.Event(i)
			if err != nil {
				log.WithError(err).Fatal("reading buffered event")
			}
			fmt.Printf("%d\t%s\tline %d\tseq %d\n", ev.Timestamp, edgeNames[ev.Edge], ev.Offset, ev.Seqno)
		}
	}
}
