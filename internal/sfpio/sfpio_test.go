// Copyright © 2025-2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package sfpio

import (
	"errors"
	"fmt"
	"testing"

	"github.com/platinasystems/sfpconv/internal/tca9535"
)

var errBus = errors.New("bus error")

func TestPinMap(t *testing.T) {
	for _, x := range []struct {
		s         Signal
		port      tca9535.Port
		bit       int
		activeLow bool
		output    bool
	}{
		{ReceiverEnable, tca9535.Port0, 0, false, true},
		{TransmitterEnable, tca9535.Port0, 1, false, true},
		{ReceiverPowerDown, tca9535.Port0, 2, true, true},
		{TransmitterPowerDown, tca9535.Port0, 3, true, true},
		{LocalLoopback, tca9535.Port0, 4, false, true},
		{LineLoopback, tca9535.Port0, 5, false, true},
		{TxFault, tca9535.Port0, 6, false, false},
		{TxDisable, tca9535.Port0, 7, false, true},
		{Present, tca9535.Port1, 0, true, false},
		{RateSelect, tca9535.Port1, 1, false, true},
		{RxLos, tca9535.Port1, 2, false, false},
		{PllInterrupt, tca9535.Port1, 3, false, false},
		{PllOutputEnable, tca9535.Port1, 4, true, true},
	} {
		if x.s.Port() != x.port || x.s.Pin().Index() != x.bit {
			t.Errorf("%v: %v bit %d, expected %v bit %d", x.s,
				x.s.Port(), x.s.Pin().Index(), x.port, x.bit)
		}
		if x.s.ActiveLow() != x.activeLow {
			t.Errorf("%v: active low %t", x.s, x.s.ActiveLow())
		}
		if x.s.IsOutput() != x.output {
			t.Errorf("%v: output %t", x.s, x.s.IsOutput())
		}
	}
}

func TestPinMapUnique(t *testing.T) {
	var used [tca9535.NPorts]byte
	for s := Signal(0); s < NSignals; s++ {
		if s.Pin().Index() < 0 {
			t.Errorf("%v: not a single bit", s)
		}
		if used[s.Port()]&s.mask() != 0 {
			t.Errorf("%v: %v bit %d shared", s, s.Port(), s.Pin().Index())
		}
		used[s.Port()] |= s.mask()
	}
}

func TestDirections(t *testing.T) {
	dir := Directions()
	if dir[tca9535.Port0] != 0x40 || dir[tca9535.Port1] != 0xed {
		t.Errorf("directions %#x %#x, expected 0x40 0xed",
			dir[tca9535.Port0], dir[tca9535.Port1])
	}
}

func TestBitIndependence(t *testing.T) {
	for s := Signal(0); s < NSignals; s++ {
		for i := 0; i < 256; i++ {
			v := Value(i)
			others := v &^ Value(s.mask())
			if got := v.Clear(s).SetBit(s, true); got&^Value(s.mask()) != others || !got.Bit(s) {
				t.Fatalf("%v: %#x set to %#x", s, v, got)
			}
			if got := v.SetBit(s, false); got != others || got.Bit(s) {
				t.Fatalf("%v: %#x cleared to %#x", s, v, got)
			}
		}
	}
}

func TestPolarity(t *testing.T) {
	var v Value
	v = v.Assert(ReceiverPowerDown, true)
	if v.Bit(ReceiverPowerDown) {
		t.Error("asserted active low signal is high")
	}
	if !v.Asserted(ReceiverPowerDown) {
		t.Error("low active low signal not asserted")
	}
	v = v.Assert(ReceiverEnable, true)
	if !v.Bit(ReceiverEnable) || !v.Asserted(ReceiverEnable) {
		t.Error("asserted active high signal is low")
	}
}

func TestFromMode(t *testing.T) {
	if FromMode(Off) != Defaults() {
		t.Errorf("off: %+v, expected defaults", FromMode(Off))
	}
	d := Defaults()
	if d.TransmitterEnable || !d.TransmitterPowerDown || !d.TxDisable ||
		d.ReceiverEnable || !d.ReceiverPowerDown ||
		!d.PllOutputEnable || d.HighSpeed || d.Loopback != LoopbackDisabled {
		t.Errorf("defaults: %+v", d)
	}
	c := FromMode(FullDuplex)
	if !c.TransmitterEnable || c.TransmitterPowerDown || c.TxDisable {
		t.Errorf("full-duplex transmitter: %+v", c)
	}
	if !c.ReceiverEnable || c.ReceiverPowerDown {
		t.Errorf("full-duplex receiver: %+v", c)
	}
	tx, rx := FromMode(Tx), FromMode(Rx)
	if !tx.TransmitterEnable || tx.ReceiverEnable {
		t.Errorf("tx: %+v", tx)
	}
	if rx.TransmitterEnable || !rx.ReceiverEnable || !rx.TxDisable {
		t.Errorf("rx: %+v", rx)
	}
	for _, m := range []Mode{Off, Tx, Rx, FullDuplex} {
		c := FromMode(m)
		if c.HighSpeed || !c.PllOutputEnable {
			t.Errorf("%v: changed rate select or pll output enable", m)
		}
	}
}

func newIOExp(t *testing.T) (*IOExp, *tca9535.Sim) {
	sim := tca9535.NewSim()
	dev := tca9535.New(sim)
	if err := dev.Configure(Directions()); err != nil {
		t.Fatal(err)
	}
	sim.Gets, sim.Sets = 0, 0
	return New(dev), sim
}

func TestLoopback(t *testing.T) {
	x, sim := newIOExp(t)
	for _, m := range []LoopbackMode{
		LoopbackLocal, LoopbackLine, LoopbackDisabled, LoopbackLine,
		LoopbackLocal,
	} {
		if err := x.SetLoopback(m); err != nil {
			t.Fatal(err)
		}
		s, err := x.Status()
		if err != nil {
			t.Fatal(err)
		}
		if s.Loopback != m || s.LatchConflict {
			t.Errorf("set %v, read %v", m, s.Loopback)
		}
		p0 := Value(sim.Output[tca9535.Port0])
		if m != LoopbackLocal && p0.Bit(LocalLoopback) {
			t.Errorf("%v: local latch set", m)
		}
		if m != LoopbackLine && p0.Bit(LineLoopback) {
			t.Errorf("%v: line latch set", m)
		}
	}
}

func TestLoopbackPreservesPaths(t *testing.T) {
	x, sim := newIOExp(t)
	if err := x.ConfigureAll(FromMode(FullDuplex)); err != nil {
		t.Fatal(err)
	}
	before := sim.Output[tca9535.Port0]
	if err := x.SetLoopback(LoopbackLine); err != nil {
		t.Fatal(err)
	}
	after := sim.Output[tca9535.Port0]
	latches := byte(LocalLoopback.Pin() | LineLoopback.Pin())
	if before&^latches != after&^latches {
		t.Errorf("port0 %#x became %#x", before, after)
	}
}

func TestStartTransmitter(t *testing.T) {
	for _, start := range []byte{0x00, 0xff} {
		for i := 0; i < 1<<3; i++ {
			enable, powerDown, txDisable := i&1 != 0, i&2 != 0, i&4 != 0
			x, sim := newIOExp(t)
			sim.Output[tca9535.Port0] = start
			if err := x.StartTransmitter(enable, powerDown, txDisable); err != nil {
				t.Fatal(err)
			}
			p0 := Value(sim.Output[tca9535.Port0])
			if p0.Bit(TransmitterEnable) != enable ||
				p0.Bit(TransmitterPowerDown) == powerDown ||
				p0.Bit(TxDisable) != txDisable {
				t.Errorf("%#x: (%t, %t, %t) wrote %#x", start,
					enable, powerDown, txDisable, p0)
			}
			others := ^byte(TransmitterEnable.Pin() |
				TransmitterPowerDown.Pin() | TxDisable.Pin())
			if byte(p0)&others != start&others {
				t.Errorf("%#x: changed receiver or loopback to %#x",
					start, p0)
			}
			if sim.Sets != 1 {
				t.Errorf("%d port writes", sim.Sets)
			}
		}
	}
}

func TestStartReceiver(t *testing.T) {
	for _, start := range []byte{0x00, 0xff} {
		for i := 0; i < 1<<2; i++ {
			enable, powerDown := i&1 != 0, i&2 != 0
			x, sim := newIOExp(t)
			sim.Output[tca9535.Port0] = start
			if err := x.StartReceiver(enable, powerDown); err != nil {
				t.Fatal(err)
			}
			p0 := Value(sim.Output[tca9535.Port0])
			if p0.Bit(ReceiverEnable) != enable ||
				p0.Bit(ReceiverPowerDown) == powerDown {
				t.Errorf("%#x: (%t, %t) wrote %#x", start,
					enable, powerDown, p0)
			}
			others := ^byte(ReceiverEnable.Pin() | ReceiverPowerDown.Pin())
			if byte(p0)&others != start&others {
				t.Errorf("%#x: changed transmitter or loopback to %#x",
					start, p0)
			}
			if sim.Sets != 1 {
				t.Errorf("%d port writes", sim.Sets)
			}
		}
	}
}

func TestStartPathsKeepLoopback(t *testing.T) {
	x, sim := newIOExp(t)
	err := Sequence(
		func() error { return x.SetLoopback(LoopbackLine) },
		func() error { return x.StartTransmitter(true, false, false) },
		func() error { return x.StartReceiver(true, true) },
	)
	if err != nil {
		t.Fatal(err)
	}
	if p0 := sim.Output[tca9535.Port0]; p0 != 0x6b {
		t.Errorf("port0 %#x, expected 0x6b", p0)
	}
	s, err := x.Status()
	if err != nil {
		t.Fatal(err)
	}
	if s.Loopback != LoopbackLine || s.LatchConflict {
		t.Errorf("loopback %v conflict %t", s.Loopback, s.LatchConflict)
	}
	if !s.TransmitterEnabled || s.TransmitterPoweredDown {
		t.Errorf("transmitter %+v", s)
	}
	if !s.ReceiverEnabled || !s.ReceiverPoweredDown {
		t.Errorf("receiver %+v", s)
	}
}

func TestStartPathsFailure(t *testing.T) {
	for _, x := range []struct {
		name  string
		start func(*IOExp) error
	}{
		{"transmitter", func(x *IOExp) error {
			return x.StartTransmitter(true, false, false)
		}},
		{"receiver", func(x *IOExp) error {
			return x.StartReceiver(true, false)
		}},
	} {
		failOutput0 := func(reg uint8) error {
			if reg == tca9535.OutputReg(tca9535.Port0) {
				return errBus
			}
			return nil
		}
		for _, get := range []bool{true, false} {
			exp, sim := newIOExp(t)
			if get {
				sim.FailGet = failOutput0
			} else {
				sim.FailSet = failOutput0
			}
			if err := x.start(exp); err != errBus {
				t.Errorf("%s: returned %v, expected %v",
					x.name, err, errBus)
			}
			if sim.Output[tca9535.Port0] != 0xff || sim.Sets != 0 {
				t.Errorf("%s: port0 %#x after failure", x.name,
					sim.Output[tca9535.Port0])
			}
		}
	}
}

func TestLatchConflict(t *testing.T) {
	var p0 Value
	p0 = p0.SetBit(LocalLoopback, true).SetBit(LineLoopback, true)
	s := Decode(p0, 0)
	if s.Loopback != LoopbackLocal || !s.LatchConflict {
		t.Errorf("both latches: %v conflict %t", s.Loopback, s.LatchConflict)
	}
}

func TestConfigureStatusRoundTrip(t *testing.T) {
	configs := []Config{Defaults()}
	for _, m := range []Mode{Tx, Rx, FullDuplex} {
		configs = append(configs, FromMode(m))
	}
	for i := 0; i < 1<<7; i++ {
		configs = append(configs, Config{
			TransmitterEnable:    i&1 != 0,
			TransmitterPowerDown: i&2 != 0,
			TxDisable:            i&4 != 0,
			ReceiverEnable:       i&8 != 0,
			ReceiverPowerDown:    i&16 != 0,
			PllOutputEnable:      i&32 != 0,
			HighSpeed:            i&64 != 0,
			Loopback:             LoopbackMode(i % 3),
		})
	}
	x, _ := newIOExp(t)
	for _, c := range configs {
		if err := x.ConfigureAll(c); err != nil {
			t.Fatal(err)
		}
		s, err := x.Status()
		if err != nil {
			t.Fatal(err)
		}
		if s.TransmitterEnabled != c.TransmitterEnable ||
			s.TransmitterPoweredDown != c.TransmitterPowerDown ||
			s.ReceiverEnabled != c.ReceiverEnable ||
			s.ReceiverPoweredDown != c.ReceiverPowerDown ||
			s.PllOutputEnabled != c.PllOutputEnable ||
			s.HighSpeed != c.HighSpeed ||
			s.Loopback != c.Loopback {
			t.Errorf("%+v read back as %+v", c, s)
		}
	}
}

func TestStatusInputs(t *testing.T) {
	x, sim := newIOExp(t)
	var p1 Value
	p1 = p1.Assert(Present, true).Assert(RxLos, true)
	sim.Lines[tca9535.Port1] = byte(p1)
	sim.Lines[tca9535.Port0] = byte(Value(0).Assert(TxFault, true))
	s, err := x.Status()
	if err != nil {
		t.Fatal(err)
	}
	if !s.Present || !s.RxLos || s.PllInterrupt || !s.TxFault {
		t.Errorf("status %+v", s)
	}
	sim.Lines[tca9535.Port1] = 0xff
	if s, _ = x.Status(); s.Present || !s.PllInterrupt {
		t.Errorf("absent module: %+v", s)
	}
}

func TestConfigureAllFirstFailure(t *testing.T) {
	x, sim := newIOExp(t)
	sim.FailSet = func(reg uint8) error {
		if reg == tca9535.OutputReg(tca9535.Port0) {
			return errBus
		}
		return nil
	}
	if err := x.ConfigureAll(FromMode(Tx)); err != errBus {
		t.Fatalf("returned %v, expected %v", err, errBus)
	}
	if sim.Sets != 0 || sim.Gets != 1 {
		t.Errorf("%d reads, %d writes; expected port1 untouched",
			sim.Gets, sim.Sets)
	}
}

func TestConfigureAllSecondFailure(t *testing.T) {
	x, sim := newIOExp(t)
	sim.FailGet = func(reg uint8) error {
		if reg == tca9535.OutputReg(tca9535.Port1) {
			return errBus
		}
		return nil
	}
	if err := x.ConfigureAll(FromMode(Tx)); err != errBus {
		t.Fatalf("returned %v, expected %v", err, errBus)
	}
	p0 := Value(sim.Output[tca9535.Port0])
	if !p0.Asserted(TransmitterEnable) || p0.Asserted(TxDisable) {
		t.Errorf("port0 %#x not applied", p0)
	}
	if sim.Output[tca9535.Port1] != 0xff {
		t.Errorf("port1 changed to %#x", sim.Output[tca9535.Port1])
	}
}

func TestStatusReadFailure(t *testing.T) {
	x, sim := newIOExp(t)
	sim.FailGet = func(reg uint8) error {
		if reg == tca9535.InputReg(tca9535.Port1) {
			return errBus
		}
		return nil
	}
	if s, err := x.Status(); err != errBus || s != (Status{}) {
		t.Errorf("returned %+v, %v", s, err)
	}
}

func TestSequence(t *testing.T) {
	var ran []int
	step := func(i int, err error) func() error {
		return func() error {
			ran = append(ran, i)
			return err
		}
	}
	err := Sequence(step(1, nil), step(2, errBus), step(3, nil))
	if err != errBus {
		t.Errorf("returned %v", err)
	}
	if fmt.Sprint(ran) != "[1 2]" {
		t.Errorf("ran %v", ran)
	}
}

func TestParseMode(t *testing.T) {
	for _, m := range []Mode{Off, Tx, Rx, FullDuplex} {
		if got, err := ParseMode(m.String()); err != nil || got != m {
			t.Errorf("%v: %v, %v", m, got, err)
		}
	}
	if _, err := ParseMode("sideways"); !errors.Is(err, ErrMode) {
		t.Errorf("sideways: %v", err)
	}
	if m, err := ParseLoopbackMode("LINE"); err != nil || m != LoopbackLine {
		t.Errorf("LINE: %v, %v", m, err)
	}
	if _, err := ParseLoopbackMode("remote"); !errors.Is(err, ErrLoopback) {
		t.Errorf("remote: %v", err)
	}
}

func ExampleStatus_Fields() {
	var p0, p1 Value
	p0 = p0.Assert(ReceiverPowerDown, true).Assert(TransmitterPowerDown, true)
	p1 = p1.Assert(Present, true).Assert(PllOutputEnable, true)
	for _, f := range Decode(p0, p1).Fields() {
		fmt.Printf("%s: %s\n", f[0], f[1])
	}
	// Output:
	// present: true
	// tx_fault: false
	// rx_los: false
	// pll.interrupt: false
	// pll.output_enabled: true
	// rate_select: false
	// rx.enabled: false
	// rx.powered_down: true
	// tx.enabled: false
	// tx.powered_down: true
	// loopback: disabled
}
