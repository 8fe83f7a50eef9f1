//go:build linux

// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// gpioget reads the values of a set of lines in one operation.
//
// Lines are named by offset or by kernel line name:
//
//	gpioget -chip /dev/gpiochip0 2 5 LED_1
package main

import (
	"flag"
	"fmt"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/vireshk/libgpiod"
	"github.com/vireshk/libgpiod/internal/logcfg"
)

// resolveLines maps each argument to an offset, treating non-numeric
// arguments as line names.
func resolveLines(c *libgpiod.Chip, args []string) ([]uint32, error) {
	offsets := make([]uint32, 0, len(args))
	for _, arg := range args {
		if n, err := strconv.ParseUint(arg, 10, 32); err == nil {
			offsets = append(offsets, uint32(n))
			continue
		}
		offset, err := c.FindLine(arg)
		if err != nil {
			return nil, err
		}
		offsets = append(offsets, offset)
	}
	return offsets, nil
}

func main() {
	logcfg.InitParam()
	chipPath := flag.String("chip", "/dev/gpiochip0", "path of the chip to read from")
	activeLow := flag.Bool("active-low", false, "treat the lines as active low")
	pull := flag.String("bias", "as-is", "line bias: as-is, disabled, pull-up or pull-down")
	flag.Parse()
	log := logcfg.GetLogger(logrus.InfoLevel)

	if flag.NArg() == 0 {
		log.Fatal("no lines specified")
	}
	c, err := libgpiod.OpenChip(*chipPath)
	if err != nil {
		log.WithError(err).Fatal("opening chip")
	}
	defer c.Close()

	offsets, err := resolveLines(c, flag.Args())
	if err != nil {
		log.WithError(err).Fatal("resolving lines")
	}

	lc := libgpiod.NewLineConfig()
	lc.SetDirection(libgpiod.DirectionInput)
	lc.SetActiveLow(*activeLow)
	switch *pull {
	case "as-is":
	case "disabled":
		lc.SetBias(libgpiod.BiasDisabled)
	case "pull-up":
		lc.SetBias(libgpiod.BiasPullUp)
	case "pull-down":
		lc.SetBias(libgpiod.BiasPullDown)
	default:
		log.WithField("bias", *pull).Fatal("unknown bias")
	}

	rc := libgpiod.NewRequestConfig()
	rc.SetConsumer("gpioget")
	rc.SetOffsets(offsets)
	req, err := c.RequestLines(rc, lc)
	if err != nil {
		log.WithError(err).Fatal("requesting lines")
	}
	defer req.Close()

	values, err := req.Values()
	if err != nil {
		log.WithError(err).Fatal("reading values")
	}
	for i, v := range values {
		fmt.Printf("%s=%d\n", flag.Arg(i), v)
	}
}
