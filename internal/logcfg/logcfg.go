// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package logcfg holds the shared logrus setup for the command line
// tools in cmd/.
package logcfg

import (
	"flag"

	prefixed "github.com/BertoldVdb/logrus-prefixed-formatter"
	"github.com/sirupsen/logrus"
)

var loglevel *int

// InitParam registers the -loglevel flag. Call before flag.Parse().
func InitParam() {
	loglevel = flag.Int("loglevel", int(logrus.InfoLevel), "The loglevel to use. Valid values are from 0 to 6. Higher values output more information")
}

// GetLogger returns an entry configured with the prefixed text
// formatter. The level defaults to level and is overridden by the
// -loglevel flag when InitParam was called.
func GetLogger(level logrus.Level) *logrus.Entry {
	logger := logrus.New()
	if loglevel == nil {
		logger.SetLevel(level)
	} else {
		logger.SetLevel(logrus.Level(*loglevel))
	}
	customFormatter := new(prefixed.TextFormatter)
	customFormatter.TimestampFormat = "2006-01-02 15:04:05"
	customFormatter.FullTimestamp = true
	logger.SetFormatter(customFormatter)
	return logrus.NewEntry(logger)
}
