//go:build linux

// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package libgpiod

import (
	"errors"
	"testing"
	"time"

	"github.com/vireshk/libgpiod/uapi"
)

func TestLineConfigDefaults(t *testing.T) {
	lc := NewLineConfig()
	if lc.DirectionOffset(0) != DirectionAsIs {
		t.Error("default direction is not as-is")
	}
	if lc.EdgeOffset(0) != EdgeNone {
		t.Error("default edge is not none")
	}
	if lc.BiasOffset(0) != BiasAsIs {
		t.Error("default bias is not as-is")
	}
	if lc.DriveOffset(0) != DrivePushPull {
		t.Error("default drive is not push-pull")
	}
	if lc.ActiveLowOffset(0) {
		t.Error("default is active low")
	}
	if lc.DebouncePeriodOffset(0) != 0 {
		t.Error("default debounce is not zero")
	}
	if lc.EventClockOffset(0) != EventClockMonotonic {
		t.Error("default event clock is not monotonic")
	}
}

func TestLineConfigOverrides(t *testing.T) {
	lc := NewLineConfig()
	lc.SetDirection(DirectionInput)
	lc.SetBias(BiasPullUp)
	lc.SetDirectionOffset(5, DirectionOutput)

	if lc.DirectionOffset(2) != DirectionInput {
		t.Error("line 2 did not inherit the default direction")
	}
	if lc.DirectionOffset(5) != DirectionOutput {
		t.Error("line 5 override not applied")
	}
	// The override only covers direction, the rest still follows the
	// defaults.
	if lc.BiasOffset(5) != BiasPullUp {
		t.Error("line 5 bias does not follow the default")
	}
	if !lc.Overridden(5) {
		t.Error("Overridden(5) = false")
	}
	if lc.Overridden(2) {
		t.Error("Overridden(2) = true")
	}

	lc.ClearDirectionOffset(5)
	if lc.DirectionOffset(5) != DirectionInput {
		t.Error("cleared override still in force")
	}
	if lc.Overridden(5) {
		t.Error("Overridden(5) = true after clearing the only override")
	}
}

func TestLineConfigOverrideFollowsLaterDefault(t *testing.T) {
	// An override pins only the property it names. Changing a default
	// afterwards must still reach overridden lines for other properties.
	lc := NewLineConfig()
	lc.SetEdgeOffset(3, EdgeBoth)
	lc.SetBias(BiasPullDown)
	if lc.BiasOffset(3) != BiasPullDown {
		t.Error("line 3 did not pick up the later bias default")
	}
	if lc.EdgeOffset(3) != EdgeBoth {
		t.Error("line 3 lost its edge override")
	}
}

func TestLineConfigReset(t *testing.T) {
	lc := NewLineConfig()
	lc.SetDirection(DirectionOutput)
	lc.SetActiveLowOffset(1, true)
	lc.Reset()
	if lc.DirectionOffset(0) != DirectionAsIs {
		t.Error("Reset did not restore the default direction")
	}
	if lc.Overridden(1) {
		t.Error("Reset did not remove overrides")
	}
}

func TestToUapiFlags(t *testing.T) {
	lc := NewLineConfig()
	lc.SetDirection(DirectionInput)
	lc.SetBias(BiasPullUp)
	lc.SetActiveLow(true)
	cfg, err := lc.toUapi([]uint32{2, 5, 7})
	if err != nil {
		t.Fatal(err)
	}
	want := uapi.LineFlagInput | uapi.LineFlagBiasPullUp | uapi.LineFlagActiveLow
	if cfg.Flags != want {
		t.Errorf("Flags = %#x, want %#x", cfg.Flags, want)
	}
	if cfg.NumAttrs != 0 {
		t.Errorf("NumAttrs = %d, want 0", cfg.NumAttrs)
	}
}

func TestToUapiEdgeImpliesInput(t *testing.T) {
	lc := NewLineConfig()
	lc.SetDirection(DirectionOutput)
	lc.SetEdge(EdgeBoth)
	cfg, err := lc.toUapi([]uint32{0})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Flags&uapi.LineFlagInput == 0 {
		t.Error("edge detection did not force the input flag")
	}
	if cfg.Flags&uapi.LineFlagOutput != 0 {
		t.Error("output flag survived edge detection")
	}
	if cfg.Flags&(uapi.LineFlagEdgeRising|uapi.LineFlagEdgeFalling) !=
		uapi.LineFlagEdgeRising|uapi.LineFlagEdgeFalling {
		t.Errorf("Flags = %#x, missing edge flags", cfg.Flags)
	}
}

func TestToUapiFlagOverrideAttr(t *testing.T) {
	// Three inputs, one output override. The input word is the most
	// common so it takes the config-wide slot; the output line gets a
	// flags attribute plus the output values attribute.
	lc := NewLineConfig()
	lc.SetDirection(DirectionInput)
	lc.SetDirectionOffset(5, DirectionOutput)
	lc.SetOutputValueOffset(5, 1)
	offsets := []uint32{2, 5, 7, 9}
	cfg, err := lc.toUapi(offsets)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Flags != uapi.LineFlagInput {
		t.Errorf("Flags = %#x, want input", cfg.Flags)
	}
	if cfg.NumAttrs != 2 {
		t.Fatalf("NumAttrs = %d, want 2", cfg.NumAttrs)
	}
	fa := cfg.Attrs[0]
	if fa.Attr.ID != uapi.LineAttrIDFlags {
		t.Errorf("attr 0 ID = %d, want flags", fa.Attr.ID)
	}
	if fa.Mask != 0b0010 {
		t.Errorf("attr 0 mask = %#b, want 0b0010", fa.Mask)
	}
	if uapi.LineFlagV2(fa.Attr.Value)&uapi.LineFlagOutput == 0 {
		t.Errorf("attr 0 value = %#x, missing output flag", fa.Attr.Value)
	}
	ov := cfg.Attrs[1]
	if ov.Attr.ID != uapi.LineAttrIDOutputValues {
		t.Errorf("attr 1 ID = %d, want output values", ov.Attr.ID)
	}
	if ov.Mask != 0b0010 {
		t.Errorf("attr 1 mask = %#b, want 0b0010", ov.Mask)
	}
	if ov.Attr.Value != 0b0010 {
		t.Errorf("attr 1 value = %#b, want 0b0010", ov.Attr.Value)
	}
}

func TestToUapiDebounceGrouping(t *testing.T) {
	// Lines sharing a debounce period share one attribute.
	lc := NewLineConfig()
	lc.SetDirection(DirectionInput)
	lc.SetDebouncePeriodOffset(1, 10*time.Millisecond)
	lc.SetDebouncePeriodOffset(3, 10*time.Millisecond)
	lc.SetDebouncePeriodOffset(4, 5*time.Millisecond)
	cfg, err := lc.toUapi([]uint32{1, 2, 3, 4})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.NumAttrs != 2 {
		t.Fatalf("NumAttrs = %d, want 2", cfg.NumAttrs)
	}
	a0 := cfg.Attrs[0]
	if a0.Attr.ID != uapi.LineAttrIDDebounce {
		t.Errorf("attr 0 ID = %d, want debounce", a0.Attr.ID)
	}
	if a0.Attr.Value != 10000 {
		t.Errorf("attr 0 value = %d, want 10000us", a0.Attr.Value)
	}
	if a0.Mask != 0b0101 {
		t.Errorf("attr 0 mask = %#b, want 0b0101", a0.Mask)
	}
	a1 := cfg.Attrs[1]
	if a1.Attr.Value != 5000 {
		t.Errorf("attr 1 value = %d, want 5000us", a1.Attr.Value)
	}
	if a1.Mask != 0b1000 {
		t.Errorf("attr 1 mask = %#b, want 0b1000", a1.Mask)
	}
}

func TestToUapiOutputValues(t *testing.T) {
	lc := NewLineConfig()
	lc.SetDirection(DirectionOutput)
	if err := lc.SetOutputValues([]uint32{2, 5, 7}, []int{1, 0, 1}); err != nil {
		t.Fatal(err)
	}
	cfg, err := lc.toUapi([]uint32{2, 5, 7})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.NumAttrs != 1 {
		t.Fatalf("NumAttrs = %d, want 1", cfg.NumAttrs)
	}
	a := cfg.Attrs[0]
	if a.Attr.ID != uapi.LineAttrIDOutputValues {
		t.Errorf("attr ID = %d, want output values", a.Attr.ID)
	}
	if a.Mask != 0b111 {
		t.Errorf("mask = %#b, want 0b111", a.Mask)
	}
	if a.Attr.Value != 0b101 {
		t.Errorf("value = %#b, want 0b101", a.Attr.Value)
	}
}

func TestSetOutputValuesSizeMismatch(t *testing.T) {
	lc := NewLineConfig()
	if err := lc.SetOutputValues([]uint32{1, 2}, []int{1}); !errors.Is(err, ErrSizeMismatch) {
		t.Errorf("err = %v, want ErrSizeMismatch", err)
	}
}

func TestToUapiTooComplex(t *testing.T) {
	// Eleven distinct debounce periods cannot fit in ten attribute
	// slots.
	lc := NewLineConfig()
	lc.SetDirection(DirectionInput)
	offsets := make([]uint32, 11)
	for i := range offsets {
		offsets[i] = uint32(i)
		lc.SetDebouncePeriodOffset(uint32(i), time.Duration(i+1)*time.Millisecond)
	}
	if _, err := lc.toUapi(offsets); !errors.Is(err, ErrConfigTooComplex) {
		t.Errorf("err = %v, want ErrConfigTooComplex", err)
	}
}

func TestToUapiIgnoresForeignOverrides(t *testing.T) {
	// Overrides for offsets outside the request must not influence the
	// encoding.
	lc := NewLineConfig()
	lc.SetDirection(DirectionInput)
	lc.SetDirectionOffset(40, DirectionOutput)
	cfg, err := lc.toUapi([]uint32{1, 2})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.NumAttrs != 0 {
		t.Errorf("NumAttrs = %d, want 0", cfg.NumAttrs)
	}
	if cfg.Flags != uapi.LineFlagInput {
		t.Errorf("Flags = %#x, want input", cfg.Flags)
	}
}
