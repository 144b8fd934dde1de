// Copyright © 2025-2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package si5351 derives and programs the clock plan of a Silicon Labs
// Si5351 synthesizer with PLL A feeding the reference clock (CLK0) and the
// transmit clock (CLK1).
package si5351

import (
	"errors"
	"fmt"

	"github.com/platinasystems/sfpconv/internal/regbus"
)

var ErrRange = errors.New("out of range")

const (
	MinPllMultiplier = 15
	MaxPllMultiplier = 90
	MinVcoHz         = 600000000
	MaxVcoHz         = 900000000
	MaxMSDivider     = 2048
	maxDenominator   = 1<<20 - 1
)

// Programmer writes Params to a Si5351 on a register bus.
type Programmer struct {
	Bus regbus.Bus
}

func New(bus regbus.Bus) *Programmer { return &Programmer{Bus: bus} }

func (p *Programmer) String() string {
	if s, ok := p.Bus.(fmt.Stringer); ok {
		return "si5351@" + s.String()
	}
	return "si5351"
}

// P1, P2 and P3 encoding of a+b/c.
func (r Ratio) encode() (p1, p2, p3 uint32) {
	f := 128 * r.B / r.C
	p1 = 128*r.A + f - 512
	p2 = 128*r.B - r.C*f
	p3 = r.C
	return
}

func chkFraction(r Ratio) error {
	if r.C == 0 || r.C > maxDenominator || r.B >= r.C {
		return fmt.Errorf("%d/%d: %w", r.B, r.C, ErrRange)
	}
	return nil
}

// Valid multisynth dividers are 4, 6 and 8 through 2048.
func chkMS(n int, r Ratio) error {
	if err := chkFraction(r); err != nil {
		return fmt.Errorf("ms%d: %w", n, err)
	}
	switch {
	case r.IsInteger() && (r.A == 4 || r.A == 6):
	case r.A >= 8 && r.A < MaxMSDivider, r.A == MaxMSDivider && r.IsInteger():
	default:
		return fmt.Errorf("ms%d: divider %v: %w", n, r, ErrRange)
	}
	return nil
}

// Check validates Params against the synthesizer's ranges.
func (pa Params) Check() error {
	if err := chkFraction(pa.PllA); err != nil {
		return fmt.Errorf("plla: %w", err)
	}
	if a := pa.PllA.A; a < MinPllMultiplier || a >= MaxPllMultiplier &&
		!(a == MaxPllMultiplier && pa.PllA.IsInteger()) {
		return fmt.Errorf("plla: multiplier %v: %w", pa.PllA, ErrRange)
	}
	if vco := pa.VcoHz(); vco < MinVcoHz || vco > MaxVcoHz {
		return fmt.Errorf("plla: vco %d Hz: %w", vco, ErrRange)
	}
	if pa.Source == Xtal {
		switch pa.XtalLoad {
		case Load6pF, Load8pF, Load10pF:
		default:
			return fmt.Errorf("%v: %w", pa.XtalLoad, ErrXtalLoad)
		}
	}
	if pa.Source == Clkin && pa.ClkinDiv > 3 {
		return fmt.Errorf("clkin divider %d: %w", 1<<pa.ClkinDiv, ErrRange)
	}
	for n, r := range pa.MS {
		if err := chkMS(n, r); err != nil {
			return err
		}
	}
	for n, c := range pa.Clk {
		if c.RDiv > 7 || c.DisableState > 3 || c.Drive > 3 ||
			c.PhaseOffset > 0x7f {
			return fmt.Errorf("clk%d: %+v: %w", n, c, ErrRange)
		}
	}
	return nil
}

// Program checks Params, then disables the outputs, writes the plan,
// resets PLL A and enables the configured outputs. Writing stops at the
// first failure and the outputs are left disabled.
func (p *Programmer) Program(pa Params) error {
	if err := pa.Check(); err != nil {
		return err
	}
	r := getRegs()
	w := writer{bus: p.Bus}

	w.set(&r.OutputDisable, 0xff)
	for n := range r.ClkControl {
		w.set(&r.ClkControl[n], clkPdn)
	}

	var oebMask, disable byte = 0xff, 0
	for n, c := range pa.Clk {
		if c.UseOEBPin {
			oebMask &^= 1 << n
		}
		disable |= c.DisableState << (2 * n)
	}
	w.set(&r.OEBMask, oebMask)

	var src, fanout byte
	switch pa.Source {
	case Clkin:
		src = pllaSrc | pa.ClkinDiv<<clkinShift
		fanout = fanoutClkin
	case Xtal:
		fanout = fanoutXo
	}
	w.set(&r.PllSource, src)
	if pa.Source == Xtal {
		w.set(&r.XtalLoad, byte(pa.XtalLoad)<<xtalClShift|xtalLoadFixed)
	}
	w.set(&r.Fanout, fanout|fanoutMs)

	w.ratio(r.PllA[:], pa.PllA, 0)
	fb := byte(clkPdn)
	if pa.PllA.IsInteger() {
		fb |= fbaInt
	}
	// FBA_INT shares the CLK6 control register
	w.set(&r.ClkControl[6], fb)

	for n, ms := range pa.MS {
		c := pa.Clk[n]
		if ms.IsInteger() && ms.A == 4 {
			w.ratio(r.MS[n][:], Ratio{A: 4, C: 1}, c.RDiv<<rDivShift|divBy4)
		} else {
			w.ratio(r.MS[n][:], ms, c.RDiv<<rDivShift)
		}
		w.set(&r.PhaseOffset[n], c.PhaseOffset)
	}
	w.set(&r.DisableState[0], disable)
	for n, c := range pa.Clk {
		w.set(&r.ClkControl[n], c.control(pa.MS[n]))
	}

	w.set(&r.PllReset, pllaRst)

	var enable byte = 0xff
	for n, c := range pa.Clk {
		if c.Enable {
			enable &^= 1 << n
		}
	}
	w.set(&r.OutputDisable, enable)
	return w.err
}

func (c Output) control(ms Ratio) byte {
	v := byte(clkSrcMs) | c.Drive
	if c.PowerDown {
		v |= clkPdn
	}
	if ms.IsInteger() {
		v |= clkMsInt
	}
	if c.Invert {
		v |= clkInv
	}
	return v
}

type DeviceStatus struct {
	SysInit     bool
	LossOfLockA bool
	LossOfLockB bool
	LossOfClkin bool
	LossOfXtal  bool
}

// Locked is true once the device has initialized and PLL A has lock.
func (s DeviceStatus) Locked() bool { return !s.SysInit && !s.LossOfLockA }

func (p *Programmer) Status() (DeviceStatus, error) {
	v, err := p.Bus.Get(getRegs().DeviceStatus.offset())
	if err != nil {
		return DeviceStatus{}, err
	}
	return DeviceStatus{
		SysInit:     v&sysInit != 0,
		LossOfLockA: v&lolA != 0,
		LossOfLockB: v&lolB != 0,
		LossOfClkin: v&losClkin != 0,
		LossOfXtal:  v&losXtal != 0,
	}, nil
}

// writer skips every write after the first failure.
type writer struct {
	bus regbus.Bus
	err error
}

func (w *writer) set(r *reg8, v byte) {
	if w.err == nil {
		w.err = w.bus.Set(r.offset(), v)
	}
}

// ratio writes the eight parameter registers of a PLL or multisynth;
// x is or'd into the byte holding P1[17:16].
func (w *writer) ratio(r []reg8, ratio Ratio, x byte) {
	p1, p2, p3 := ratio.encode()
	if x&divBy4 != 0 {
		p1, p2, p3 = 0, 0, 1
	}
	for i, v := range [8]byte{
		byte(p3 >> 8),
		byte(p3),
		x | byte(p1>>16)&0x3,
		byte(p1 >> 8),
		byte(p1),
		byte(p3>>16)<<4 | byte(p2>>16)&0xf,
		byte(p2 >> 8),
		byte(p2),
	} {
		w.set(&r[i], v)
	}
}
