// Copyright © 2025-2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package sfpio

import (
	"fmt"
	"strconv"
)

type Status struct {
	Present          bool
	TxFault          bool
	RxLos            bool
	PllInterrupt     bool
	PllOutputEnabled bool
	HighSpeed        bool

	ReceiverEnabled        bool
	TransmitterEnabled     bool
	ReceiverPoweredDown    bool
	TransmitterPoweredDown bool

	Loopback LoopbackMode
	// Both loopback latches were read set; Loopback is Local.
	LatchConflict bool
}

// Decode converts snapshots of port 0 and port 1 into a Status.
func Decode(p0, p1 Value) Status {
	s := Status{
		Present:          p1.Asserted(Present),
		TxFault:          p0.Asserted(TxFault),
		RxLos:            p1.Asserted(RxLos),
		PllInterrupt:     p1.Asserted(PllInterrupt),
		PllOutputEnabled: p1.Asserted(PllOutputEnable),
		HighSpeed:        p1.Asserted(RateSelect),

		ReceiverEnabled:        p0.Asserted(ReceiverEnable),
		TransmitterEnabled:     p0.Asserted(TransmitterEnable),
		ReceiverPoweredDown:    p0.Asserted(ReceiverPowerDown),
		TransmitterPoweredDown: p0.Asserted(TransmitterPowerDown),
	}
	local, line := p0.Asserted(LocalLoopback), p0.Asserted(LineLoopback)
	switch {
	case local:
		s.Loopback = LoopbackLocal
		s.LatchConflict = line
	case line:
		s.Loopback = LoopbackLine
	}
	return s
}

// Fields returns the status as key, value pairs in a fixed order for
// publishing and printing.
func (s Status) Fields() [][2]string {
	b := strconv.FormatBool
	f := [][2]string{
		{"present", b(s.Present)},
		{"tx_fault", b(s.TxFault)},
		{"rx_los", b(s.RxLos)},
		{"pll.interrupt", b(s.PllInterrupt)},
		{"pll.output_enabled", b(s.PllOutputEnabled)},
		{"rate_select", b(s.HighSpeed)},
		{"rx.enabled", b(s.ReceiverEnabled)},
		{"rx.powered_down", b(s.ReceiverPoweredDown)},
		{"tx.enabled", b(s.TransmitterEnabled)},
		{"tx.powered_down", b(s.TransmitterPoweredDown)},
		{"loopback", s.Loopback.String()},
	}
	if s.LatchConflict {
		f = append(f, [2]string{"loopback.conflict", "true"})
	}
	return f
}

func (s Status) String() string {
	return fmt.Sprintf("present=%t tx_fault=%t rx_los=%t loopback=%v",
		s.Present, s.TxFault, s.RxLos, s.Loopback)
}
