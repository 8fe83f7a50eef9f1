//go:build linux

// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// gpiodetect lists the GPIO chips present on the system.
package main

import (
	"flag"
	"fmt"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/vireshk/libgpiod"
	"github.com/vireshk/libgpiod/internal/logcfg"
)

func main() {
	logcfg.InitParam()
	flag.Parse()
	log := logcfg.GetLogger(logrus.InfoLevel)

	paths, err := filepath.Glob("/dev/gpiochip*")
	if err != nil {
		log.WithError(err).Fatal("scanning /dev")
	}
	for _, path := range paths {
		if !libgpiod.IsChipDevice(path) {
			continue
		}
		c, err := libgpiod.OpenChip(path)
		if err != nil {
			log.WithError(err).WithField("path", path).Warn("skipping chip")
			continue
		}
		fmt.Println(c.String())
		_ = c.Close()
	}
}
