//go:build linux

// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// gpioset drives a set of lines and holds them until interrupted.
//
// Each argument is an offset=value pair:
//
//	gpioset -chip /dev/gpiochip0 2=1 5=0
//
// Output lines revert to their unmanaged state once the request is
// released, so the tool keeps the request open until SIGINT or SIGTERM.
package main

import (
	"flag"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/vireshk/libgpiod"
	"github.com/vireshk/libgpiod/internal/logcfg"
)

func parseAssignments(args []string) ([]uint32, []int, error) {
	offsets := make([]uint32, 0, len(args))
	values := make([]int, 0, len(args))
	for _, arg := range args {
		lhs, rhs, found := strings.Cut(arg, "=")
		if !found {
			return nil, nil, strconv.ErrSyntax
		}
		offset, err := strconv.ParseUint(lhs, 10, 32)
		if err != nil {
			return nil, nil, err
		}
		value, err := strconv.ParseUint(rhs, 10, 1)
		if err != nil {
			return nil, nil, err
		}
		offsets = append(offsets, uint32(offset))
		values = append(values, int(value))
	}
	return offsets, values, nil
}

func main() {
	logcfg.InitParam()
	chipPath := flag.String("chip", "/dev/gpiochip0", "path of the chip to drive")
	drive := flag.String("drive", "push-pull", "drive mode: push-pull, open-drain or open-source")
	flag.Parse()
	log := logcfg.GetLogger(logrus.InfoLevel)

	offsets, values, err := parseAssignments(flag.Args())
	if err != nil || len(offsets) == 0 {
		log.Fatal("arguments must be offset=value pairs, e.g. 2=1")
	}

	lc := libgpiod.NewLineConfig()
	lc.SetDirection(libgpiod.DirectionOutput)
	switch *drive {
	case "push-pull":
	case "open-drain":
		lc.SetDrive(libgpiod.DriveOpenDrain)
	case "open-source":
		lc.SetDrive(libgpiod.DriveOpenSource)
	default:
		log.WithField("drive", *drive).Fatal("unknown drive mode")
	}
	lc.SetOutputValues(offsets, values)

	c, err := libgpiod.OpenChip(*chipPath)
	if err != nil {
		log.WithError(err).Fatal("opening chip")
	}
	defer c.Close()

	rc := libgpiod.NewRequestConfig()
	rc.SetConsumer("gpioset")
	rc.SetOffsets(offsets)
	req, err := c.RequestLines(rc, lc)
	if err != nil {
		log.WithError(err).Fatal("requesting lines")
	}
	defer req.Close()

	log.Info("lines set, waiting for interrupt")
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
}
