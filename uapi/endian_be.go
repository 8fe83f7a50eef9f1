//go:build !amd64 && !386 && !arm64 && !arm && !riscv64 && !mips64le && !mipsle && !ppc64le && !loong64 && !wasm

// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package uapi

import "encoding/binary"

// The kernel structs are host-endian on the wire.
var nativeEndian binary.ByteOrder = binary.BigEndian
