// Copyright © 2025-2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package tca9535 provides access to the TI TCA9535 16-bit I2C I/O expander.
//
// The expander has two 8-bit ports. Each port has an input, output (latch),
// polarity inversion and configuration (direction, 1 is input) register.
package tca9535

import (
	"errors"
	"fmt"
	"sync"

	"github.com/platinasystems/sfpconv/internal/regbus"
)

var ErrPort = errors.New("no such port")

type Port uint8

const (
	Port0 Port = iota
	Port1
	NPorts
)

func (p Port) String() string { return fmt.Sprint("port", uint8(p)) }

// Pin is the bit mask of one line w/in a port.
type Pin uint8

const (
	Pin0 Pin = 1 << iota
	Pin1
	Pin2
	Pin3
	Pin4
	Pin5
	Pin6
	Pin7
)

// Index returns the bit number of the pin.
func (pin Pin) Index() int {
	for i := 0; i < 8; i++ {
		if pin == 1<<i {
			return i
		}
	}
	return -1
}

// Device is a TCA9535 on a register bus.
//
// Transact serializes read-modify-write cycles of this Device within the
// process; another process sharing the expander must own it through a
// single daemon.
type Device struct {
	Bus   regbus.Bus
	mutex sync.Mutex
}

func New(bus regbus.Bus) *Device { return &Device{Bus: bus} }

func (d *Device) String() string {
	if s, ok := d.Bus.(fmt.Stringer); ok {
		return "tca9535@" + s.String()
	}
	return "tca9535"
}

func chkPort(p Port) error {
	if p >= NPorts {
		return fmt.Errorf("%v: %w", p, ErrPort)
	}
	return nil
}

// ReadInputs returns the levels observed on the port pins, including those
// driven by the expander itself.
func (d *Device) ReadInputs(p Port) (byte, error) {
	if err := chkPort(p); err != nil {
		return 0, err
	}
	return d.Bus.Get(InputReg(p))
}

// Transact reads the port's output latch, applies f and writes the result
// back. A failed read returns w/o calling f or writing.
func (d *Device) Transact(p Port, f func(byte) byte) error {
	if err := chkPort(p); err != nil {
		return err
	}
	d.mutex.Lock()
	defer d.mutex.Unlock()
	reg := OutputReg(p)
	v, err := d.Bus.Get(reg)
	if err != nil {
		return err
	}
	return d.Bus.Set(reg, f(v))
}

// Configure sets the direction of each port; a set bit is an input.
func (d *Device) Configure(dir [NPorts]byte) error {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	for p := Port0; p < NPorts; p++ {
		if err := d.Bus.Set(ConfigReg(p), dir[p]); err != nil {
			return err
		}
	}
	return nil
}

// SetPolarity sets the input inversion of each port; a set bit inverts.
func (d *Device) SetPolarity(pol [NPorts]byte) error {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	for p := Port0; p < NPorts; p++ {
		if err := d.Bus.Set(PolarityReg(p), pol[p]); err != nil {
			return err
		}
	}
	return nil
}
