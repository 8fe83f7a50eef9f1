//go:build linux

// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// gpioinfo prints the lines of a GPIO chip and their current state.
package main

import (
	"flag"
	"fmt"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/vireshk/libgpiod"
	"github.com/vireshk/libgpiod/internal/logcfg"
)

var directionNames = map[libgpiod.Direction]string{
	libgpiod.DirectionInput:  "input",
	libgpiod.DirectionOutput: "output",
}

func printChip(c *libgpiod.Chip, log *logrus.Entry) {
	fmt.Println(c.String())
	for offset := 0; offset < c.Lines(); offset++ {
		li, err := c.LineInfo(uint32(offset))
		if err != nil {
			log.WithError(err).WithField("offset", offset).Warn("reading line info")
			continue
		}
		name := li.Name
		if len(name) == 0 {
			name = "unnamed"
		}
		state := "unused"
		if li.Used {
			state = fmt.Sprintf("used by %q", li.Consumer)
		}
		extra := ""
		if li.ActiveLow {
			extra = " active-low"
		}
		fmt.Printf("\tline %3d: %-24s %s %s%s\n", li.Offset, name, directionNames[li.Direction], state, extra)
	}
}

func main() {
	logcfg.InitParam()
	chipPath := flag.String("chip", "", "path of the chip to inspect, all chips when empty")
	flag.Parse()
	log := logcfg.GetLogger(logrus.InfoLevel)

	paths := []string{*chipPath}
	if len(*chipPath) == 0 {
		var err error
		paths, err = filepath.Glob("/dev/gpiochip*")
		if err != nil {
			log.WithError(err).Fatal("scanning /dev")
		}
	}
	for _, path := range paths {
		c, err := libgpiod.OpenChip(path)
		if err != nil {
			log.WithError(err).WithField("path", path).Warn("skipping chip")
			continue
		}
		printChip(c, log)
		_ = c.Close()
	}
}
