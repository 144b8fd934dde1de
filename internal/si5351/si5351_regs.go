// Copyright © 2025-2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package si5351

import "unsafe"

type reg8 byte

// Memory map
type regs struct {
	DeviceStatus  reg8       // 0
	IntSticky     reg8       // 1
	IntMask       reg8       // 2
	OutputDisable reg8       // 3
	_             [5]reg8    // 4
	OEBMask       reg8       // 9
	_             [5]reg8    // 10
	PllSource     reg8       // 15
	ClkControl    [8]reg8    // 16
	DisableState  [2]reg8    // 24
	PllA          [8]reg8    // 26
	PllB          [8]reg8    // 34
	MS            [6][8]reg8 // 42
	MS6           reg8       // 90
	MS7           reg8       // 91
	ClkDiv67      reg8       // 92
	_             [72]reg8   // 93
	PhaseOffset   [6]reg8    // 165
	_             [6]reg8    // 171
	PllReset      reg8       // 177
	_             [5]reg8    // 178
	XtalLoad      reg8       // 183
	_             [3]reg8    // 184
	Fanout        reg8       // 187
}

var (
	dummy       byte
	regsPointer = unsafe.Pointer(&dummy)
	regsAddr    = uintptr(unsafe.Pointer(&dummy))
)

func getRegs() *regs { return (*regs)(regsPointer) }

func (r *reg8) offset() uint8 { return uint8(uintptr(unsafe.Pointer(r)) - regsAddr) }

// Register bits
const (
	sysInit  = 1 << 7
	lolB     = 1 << 6
	lolA     = 1 << 5
	losClkin = 1 << 4
	losXtal  = 1 << 3

	pllaSrc = 1 << 2

	clkPdn      = 1 << 7
	clkMsInt    = 1 << 6
	clkMsSrcB   = 1 << 5
	clkInv      = 1 << 4
	clkSrcShift = 2
	clkSrcMs    = 3 << clkSrcShift

	fbaInt = 1 << 6

	pllaRst = 1 << 5

	xtalClShift   = 6
	xtalLoadFixed = 0x12

	fanoutClkin = 1 << 7
	fanoutXo    = 1 << 6
	fanoutMs    = 1 << 4

	rDivShift  = 4
	divBy4     = 3 << 2
	clkinShift = 6
)
