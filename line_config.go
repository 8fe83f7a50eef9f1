// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package libgpiod

import (
	"time"

	"github.com/vireshk/libgpiod/uapi"
)

type configProp uint8

const (
	propDirection configProp = 1 << iota
	propEdge
	propBias
	propDrive
	propActiveLow
	propDebounce
	propEventClock
	propOutputValue
)

type lineSettings struct {
	direction   Direction
	edge        Edge
	bias        Bias
	drive       Drive
	activeLow   bool
	debounce    time.Duration
	eventClock  EventClock
	outputValue int
}

type lineOverride struct {
	props configProp
	lineSettings
}

// LineConfig holds the settings to apply to a set of lines, either when
// requesting them or when reconfiguring an existing request.
//
// The config carries a set of defaults plus per-offset overrides; an
// override takes precedence for its line, the defaults apply everywhere
// else. Overrides for offsets that don't end up in the request are
// silently ignored.
//
// Mutators never fail. If the combination of settings is too complex to
// express in the kernel structs, the error is reported at request or
// reconfigure time. Changing a LineConfig has no effect on the hardware
// until it is passed to Chip.RequestLines or LineRequest.Reconfigure.
type LineConfig struct {
	defaults  lineSettings
	overrides map[uint32]*lineOverride
}

// NewLineConfig returns a LineConfig with kernel defaults: direction
// as-is, no edge detection, bias as-is, push-pull, active high, no
// debounce, monotonic event clock.
func NewLineConfig() *LineConfig {
	return &LineConfig{overrides: make(map[uint32]*lineOverride)}
}

// Reset restores the config to its initial state so the object can be
// reused without reallocating.
func (lc *LineConfig) Reset() {
	lc.defaults = lineSettings{}
	lc.overrides = make(map[uint32]*lineOverride)
}

func (lc *LineConfig) override(offset uint32) *lineOverride {
	o, ok := lc.overrides[offset]
	if !ok {
		o = &lineOverride{lineSettings: lc.defaults}
		lc.overrides[offset] = o
	}
	return o
}

func (lc *LineConfig) clear(offset uint32, prop configProp) {
	if o, ok := lc.overrides[offset]; ok {
		o.props &^= prop
		if o.props == 0 {
			delete(lc.overrides, offset)
		}
	}
}

// SetDirection sets the default line direction.
func (lc *LineConfig) SetDirection(d Direction) { lc.defaults.direction = d }

// SetDirectionOffset overrides the direction for one line.
func (lc *LineConfig) SetDirectionOffset(offset uint32, d Direction) {
	o := lc.override(offset)
	o.props |= propDirection
	o.direction = d
}

// ClearDirectionOffset removes a line's direction override.
func (lc *LineConfig) ClearDirectionOffset(offset uint32) { lc.clear(offset, propDirection) }

// SetEdge sets the default edge detection.
func (lc *LineConfig) SetEdge(e Edge) { lc.defaults.edge = e }

// SetEdgeOffset overrides the edge detection for one line.
func (lc *LineConfig) SetEdgeOffset(offset uint32, e Edge) {
	o := lc.override(offset)
	o.props |= propEdge
	o.edge = e
}

// ClearEdgeOffset removes a line's edge detection override.
func (lc *LineConfig) ClearEdgeOffset(offset uint32) { lc.clear(offset, propEdge) }

// SetBias sets the default bias.
func (lc *LineConfig) SetBias(b Bias) { lc.defaults.bias = b }

// SetBiasOffset overrides the bias for one line.
func (lc *LineConfig) SetBiasOffset(offset uint32, b Bias) {
	o := lc.override(offset)
	o.props |= propBias
	o.bias = b
}

// ClearBiasOffset removes a line's bias override.
func (lc *LineConfig) ClearBiasOffset(offset uint32) { lc.clear(offset, propBias) }

// SetDrive sets the default drive.
func (lc *LineConfig) SetDrive(d Drive) { lc.defaults.drive = d }

// SetDriveOffset overrides the drive for one line.
func (lc *LineConfig) SetDriveOffset(offset uint32, d Drive) {
	o := lc.override(offset)
	o.props |= propDrive
	o.drive = d
}

// ClearDriveOffset removes a line's drive override.
func (lc *LineConfig) ClearDriveOffset(offset uint32) { lc.clear(offset, propDrive) }

// SetActiveLow sets the default active-low setting.
func (lc *LineConfig) SetActiveLow(v bool) { lc.defaults.activeLow = v }

// SetActiveLowOffset overrides the active-low setting for one line.
func (lc *LineConfig) SetActiveLowOffset(offset uint32, v bool) {
	o := lc.override(offset)
	o.props |= propActiveLow
	o.activeLow = v
}

// ClearActiveLowOffset removes a line's active-low override.
func (lc *LineConfig) ClearActiveLowOffset(offset uint32) { lc.clear(offset, propActiveLow) }

// SetDebouncePeriod sets the default debounce period. Zero disables
// debouncing.
func (lc *LineConfig) SetDebouncePeriod(period time.Duration) { lc.defaults.debounce = period }

// SetDebouncePeriodOffset overrides the debounce period for one line.
func (lc *LineConfig) SetDebouncePeriodOffset(offset uint32, period time.Duration) {
	o := lc.override(offset)
	o.props |= propDebounce
	o.debounce = period
}

// ClearDebouncePeriodOffset removes a line's debounce override.
func (lc *LineConfig) ClearDebouncePeriodOffset(offset uint32) { lc.clear(offset, propDebounce) }

// SetEventClock sets the default edge event timestamp clock.
func (lc *LineConfig) SetEventClock(c EventClock) { lc.defaults.eventClock = c }

// SetEventClockOffset overrides the event clock for one line.
func (lc *LineConfig) SetEventClockOffset(offset uint32, c EventClock) {
	o := lc.override(offset)
	o.props |= propEventClock
	o.eventClock = c
}

// ClearEventClockOffset removes a line's event clock override.
func (lc *LineConfig) ClearEventClockOffset(offset uint32) { lc.clear(offset, propEventClock) }

// SetOutputValue sets the default output value, 0 or 1, applied to
// output lines at request time.
func (lc *LineConfig) SetOutputValue(value int) { lc.defaults.outputValue = value }

// SetOutputValueOffset overrides the output value for one line.
func (lc *LineConfig) SetOutputValueOffset(offset uint32, value int) {
	o := lc.override(offset)
	o.props |= propOutputValue
	o.outputValue = value
}

// SetOutputValues overrides the output values for a set of lines.
func (lc *LineConfig) SetOutputValues(offsets []uint32, values []int) error {
	if len(offsets) != len(values) {
		return ErrSizeMismatch
	}
	for i, o := range offsets {
		lc.SetOutputValueOffset(o, values[i])
	}
	return nil
}

// ClearOutputValueOffset removes a line's output value override.
func (lc *LineConfig) ClearOutputValueOffset(offset uint32) { lc.clear(offset, propOutputValue) }

// Overridden reports whether any setting is overridden for the line.
func (lc *LineConfig) Overridden(offset uint32) bool {
	_, ok := lc.overrides[offset]
	return ok
}

// effective returns the settings the line would get if the config were
// applied now.
func (lc *LineConfig) effective(offset uint32) lineSettings {
	s := lc.defaults
	o, ok := lc.overrides[offset]
	if !ok {
		return s
	}
	if o.props&propDirection != 0 {
		s.direction = o.direction
	}
	if o.props&propEdge != 0 {
		s.edge = o.edge
	}
	if o.props&propBias != 0 {
		s.bias = o.bias
	}
	if o.props&propDrive != 0 {
		s.drive = o.drive
	}
	if o.props&propActiveLow != 0 {
		s.activeLow = o.activeLow
	}
	if o.props&propDebounce != 0 {
		s.debounce = o.debounce
	}
	if o.props&propEventClock != 0 {
		s.eventClock = o.eventClock
	}
	if o.props&propOutputValue != 0 {
		s.outputValue = o.outputValue
	}
	return s
}

// DirectionOffset returns the direction the line would get if the config
// were applied now.
func (lc *LineConfig) DirectionOffset(offset uint32) Direction {
	return lc.effective(offset).direction
}

// EdgeOffset returns the edge detection the line would get.
func (lc *LineConfig) EdgeOffset(offset uint32) Edge { return lc.effective(offset).edge }

// BiasOffset returns the bias the line would get.
func (lc *LineConfig) BiasOffset(offset uint32) Bias { return lc.effective(offset).bias }

// DriveOffset returns the drive the line would get.
func (lc *LineConfig) DriveOffset(offset uint32) Drive { return lc.effective(offset).drive }

// ActiveLowOffset returns the active-low setting the line would get.
func (lc *LineConfig) ActiveLowOffset(offset uint32) bool { return lc.effective(offset).activeLow }

// DebouncePeriodOffset returns the debounce period the line would get.
func (lc *LineConfig) DebouncePeriodOffset(offset uint32) time.Duration {
	return lc.effective(offset).debounce
}

// EventClockOffset returns the event clock the line would get.
func (lc *LineConfig) EventClockOffset(offset uint32) EventClock {
	return lc.effective(offset).eventClock
}

// OutputValueOffset returns the output value the line would get.
func (lc *LineConfig) OutputValueOffset(offset uint32) int {
	return lc.effective(offset).outputValue
}

func (s lineSettings) flags() uapi.LineFlagV2 {
	var f uapi.LineFlagV2
	switch s.direction {
	case DirectionInput:
		f |= uapi.LineFlagInput
	case DirectionOutput:
		f |= uapi.LineFlagOutput
	}
	switch s.edge {
	case EdgeRising:
		f |= uapi.LineFlagEdgeRising
	case EdgeFalling:
		f |= uapi.LineFlagEdgeFalling
	case EdgeBoth:
		f |= uapi.LineFlagEdgeRising | uapi.LineFlagEdgeFalling
	}
	if s.edge != EdgeNone {
		// Edge detection requires an input line.
		f |= uapi.LineFlagInput
		f &^= uapi.LineFlagOutput
	}
	switch s.bias {
	case BiasDisabled:
		f |= uapi.LineFlagBiasDisabled
	case BiasPullUp:
		f |= uapi.LineFlagBiasPullUp
	case BiasPullDown:
		f |= uapi.LineFlagBiasPullDown
	}
	switch s.drive {
	case DriveOpenDrain:
		f |= uapi.LineFlagOpenDrain
	case DriveOpenSource:
		f |= uapi.LineFlagOpenSource
	}
	if s.activeLow {
		f |= uapi.LineFlagActiveLow
	}
	switch s.eventClock {
	case EventClockRealtime:
		f |= uapi.LineFlagEventClockRealtime
	case EventClockHTE:
		f |= uapi.LineFlagEventClockHTE
	}
	return f
}

// toUapi encodes the config for the given request offsets. The bit
// position of each line is its index in offsets.
//
// The flag word shared by the most lines becomes the config-wide flags;
// every other distinct flag word, each distinct non-zero debounce
// period, and the output values each consume one of the kernel's
// attribute slots. Returns ErrConfigTooComplex when they don't fit.
func (lc *LineConfig) toUapi(offsets []uint32) (uapi.LineConfig, error) {
	var cfg uapi.LineConfig
	n := len(offsets)
	eff := make([]lineSettings, n)
	flags := make([]uapi.LineFlagV2, n)
	for i, o := range offsets {
		eff[i] = lc.effective(o)
		flags[i] = eff[i].flags()
	}

	// Most common flag word wins the config-wide slot, first seen wins
	// ties.
	counts := make(map[uapi.LineFlagV2]int, n)
	for _, f := range flags {
		counts[f]++
	}
	best := flags[0]
	for _, f := range flags {
		if counts[f] > counts[best] {
			best = f
		}
	}
	cfg.Flags = best

	addAttr := func(attr uapi.LineAttribute, mask lineMask) error {
		if int(cfg.NumAttrs) == uapi.LineNumAttrsMax {
			return ErrConfigTooComplex
		}
		cfg.Attrs[cfg.NumAttrs] = uapi.LineConfigAttribute{Attr: attr, Mask: uint64(mask)}
		cfg.NumAttrs++
		return nil
	}

	// Flag overrides, one attribute per distinct word.
	done := make(map[uapi.LineFlagV2]bool)
	for i, f := range flags {
		if f == best || done[f] {
			continue
		}
		done[f] = true
		var mask lineMask
		for j := i; j < n; j++ {
			if flags[j] == f {
				mask.set(j)
			}
		}
		attr := uapi.LineAttribute{ID: uapi.LineAttrIDFlags, Value: uint64(f)}
		if err := addAttr(attr, mask); err != nil {
			return uapi.LineConfig{}, err
		}
	}

	// Debounce periods, one attribute per distinct period.
	donePeriod := make(map[time.Duration]bool)
	for i := range eff {
		p := eff[i].debounce
		if p <= 0 || donePeriod[p] {
			continue
		}
		donePeriod[p] = true
		var mask lineMask
		for j := i; j < n; j++ {
			if eff[j].debounce == p {
				mask.set(j)
			}
		}
		attr := uapi.LineAttribute{ID: uapi.LineAttrIDDebounce, Value: uint64(p.Microseconds())}
		if err := addAttr(attr, mask); err != nil {
			return uapi.LineConfig{}, err
		}
	}

	// Output values for all output lines, one attribute.
	var outMask, outBits lineMask
	for i := range eff {
		if eff[i].direction == DirectionOutput {
			outMask.set(i)
			outBits.assign(i, eff[i].outputValue != 0)
		}
	}
	if outMask != 0 {
		attr := uapi.LineAttribute{ID: uapi.LineAttrIDOutputValues, Value: uint64(outBits)}
		if err := addAttr(attr, outMask); err != nil {
			return uapi.LineConfig{}, err
		}
	}
	return cfg, nil
}
