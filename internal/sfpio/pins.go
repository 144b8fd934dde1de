// Copyright © 2025-2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package sfpio

import "github.com/platinasystems/sfpconv/internal/tca9535"

// Signal names a converter board line wired to the I/O expander.
type Signal uint8

const (
	ReceiverEnable Signal = iota
	TransmitterEnable
	ReceiverPowerDown
	TransmitterPowerDown
	LocalLoopback
	LineLoopback
	TxFault
	TxDisable
	Present
	RateSelect
	RxLos
	PllInterrupt
	PllOutputEnable
	NSignals
)

type pin struct {
	name      string
	port      tca9535.Port
	bit       tca9535.Pin
	activeLow bool
	output    bool
}

var pinMap = [NSignals]pin{
	ReceiverEnable:       {"REN", tca9535.Port0, tca9535.Pin0, false, true},
	TransmitterEnable:    {"DEN", tca9535.Port0, tca9535.Pin1, false, true},
	ReceiverPowerDown:    {"RPWDN_L", tca9535.Port0, tca9535.Pin2, true, true},
	TransmitterPowerDown: {"TPWDN_L", tca9535.Port0, tca9535.Pin3, true, true},
	LocalLoopback:        {"LOCAL_LE", tca9535.Port0, tca9535.Pin4, false, true},
	LineLoopback:         {"LINE_LE", tca9535.Port0, tca9535.Pin5, false, true},
	TxFault:              {"TX_FAULT", tca9535.Port0, tca9535.Pin6, false, false},
	TxDisable:            {"TX_DISABLE", tca9535.Port0, tca9535.Pin7, false, true},

	Present:         {"MOD_ABS", tca9535.Port1, tca9535.Pin0, true, false},
	RateSelect:      {"RATE_SELECT", tca9535.Port1, tca9535.Pin1, false, true},
	RxLos:           {"RX_LOS", tca9535.Port1, tca9535.Pin2, false, false},
	PllInterrupt:    {"PLL_INTR", tca9535.Port1, tca9535.Pin3, false, false},
	PllOutputEnable: {"PLL_OEB", tca9535.Port1, tca9535.Pin4, true, true},
}

func (s Signal) String() string     { return pinMap[s].name }
func (s Signal) Port() tca9535.Port { return pinMap[s].port }
func (s Signal) Pin() tca9535.Pin   { return pinMap[s].bit }
func (s Signal) ActiveLow() bool    { return pinMap[s].activeLow }
func (s Signal) IsOutput() bool     { return pinMap[s].output }
func (s Signal) mask() byte         { return byte(pinMap[s].bit) }
func (s Signal) level(on bool) bool { return on != pinMap[s].activeLow }

// Directions returns the expander configuration registers for the board:
// a bit is set (input) unless the line is driven by the expander.
func Directions() (dir [tca9535.NPorts]byte) {
	dir[tca9535.Port0] = 0xff
	dir[tca9535.Port1] = 0xff
	for s := Signal(0); s < NSignals; s++ {
		if s.IsOutput() {
			dir[s.Port()] &^= s.mask()
		}
	}
	return
}

// Value is a snapshot of one 8-bit expander port.
//
// Bit and SetBit work on physical levels; Asserted and Assert work on the
// logical meaning of a signal, inverting active low lines.
type Value uint8

// Bit returns the physical level of the signal's bit.
func (v Value) Bit(s Signal) bool { return byte(v)&s.mask() != 0 }

// SetBit sets or clears the signal's bit w/o disturbing the others.
func (v Value) SetBit(s Signal, level bool) Value {
	if level {
		return v | Value(s.mask())
	}
	return v &^ Value(s.mask())
}

// Clear forces the signal's bit low.
func (v Value) Clear(s Signal) Value { return v &^ Value(s.mask()) }

// Asserted returns the logical state of the signal.
func (v Value) Asserted(s Signal) bool { return v.Bit(s) == s.level(true) }

// Assert sets the logical state of the signal.
func (v Value) Assert(s Signal, on bool) Value { return v.SetBit(s, s.level(on)) }
