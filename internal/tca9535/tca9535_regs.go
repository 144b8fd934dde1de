// Copyright © 2025-2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package tca9535

import "unsafe"

type reg8 byte

// Memory map
type regs struct {
	Input    [2]reg8
	Output   [2]reg8
	Polarity [2]reg8
	Config   [2]reg8
}

var (
	dummy       byte
	regsPointer = unsafe.Pointer(&dummy)
	regsAddr    = uintptr(unsafe.Pointer(&dummy))
)

func getRegs() *regs { return (*regs)(regsPointer) }

func (r *reg8) offset() uint8 { return uint8(uintptr(unsafe.Pointer(r)) - regsAddr) }

// Register offsets of each port.
func InputReg(p Port) uint8    { return getRegs().Input[p].offset() }
func OutputReg(p Port) uint8   { return getRegs().Output[p].offset() }
func PolarityReg(p Port) uint8 { return getRegs().Polarity[p].offset() }
func ConfigReg(p Port) uint8   { return getRegs().Config[p].offset() }
