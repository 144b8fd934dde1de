// Copyright © 2025-2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package sfpio drives the I/O expander of an SFP optical converter board.
//
// Port 0 gates the transmitter and receiver paths and holds the loopback
// latches; port 1 has module presence, rate select, loss of signal and the
// clock synthesizer interrupt and output enable. Every multi-field update
// lands as a single port write. Nothing is cached; each call goes to the
// expander.
package sfpio

import "github.com/platinasystems/sfpconv/internal/tca9535"

// Expander is the subset of *tca9535.Device used here.
type Expander interface {
	ReadInputs(tca9535.Port) (byte, error)
	Transact(tca9535.Port, func(byte) byte) error
}

// Sequence runs each step in order and returns the first error; the steps
// following a failure are skipped and completed steps are not undone.
func Sequence(steps ...func() error) error {
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}

type IOExp struct {
	Expander
}

func New(x Expander) *IOExp { return &IOExp{x} }

func (x *IOExp) transact(p tca9535.Port, f func(Value) Value) error {
	return x.Transact(p, func(b byte) byte {
		return byte(f(Value(b)))
	})
}

// StartTransmitter sets the transmitter lines of port 0 in one write.
func (x *IOExp) StartTransmitter(enable, powerDown, txDisable bool) error {
	return x.transact(tca9535.Port0, func(v Value) Value {
		return transmitter(v, enable, powerDown, txDisable)
	})
}

// StartReceiver sets the receiver lines of port 0 in one write.
func (x *IOExp) StartReceiver(enable, powerDown bool) error {
	return x.transact(tca9535.Port0, func(v Value) Value {
		return receiver(v, enable, powerDown)
	})
}

func (x *IOExp) SetLoopback(m LoopbackMode) error {
	return x.transact(tca9535.Port0, func(v Value) Value {
		return loopback(v, m)
	})
}

// ConfigureAll writes port 0 then port 1. If port 0 fails, port 1 isn't
// attempted; if port 1 fails, port 0 stays applied.
func (x *IOExp) ConfigureAll(c Config) error {
	return Sequence(
		func() error { return x.transact(tca9535.Port0, c.port0) },
		func() error { return x.transact(tca9535.Port1, c.port1) },
	)
}

// Status reads both ports and decodes them; either read failing fails the
// whole status.
func (x *IOExp) Status() (Status, error) {
	var p [tca9535.NPorts]byte
	for port := tca9535.Port0; port < tca9535.NPorts; port++ {
		b, err := x.ReadInputs(port)
		if err != nil {
			return Status{}, err
		}
		p[port] = b
	}
	return Decode(Value(p[tca9535.Port0]), Value(p[tca9535.Port1])), nil
}
