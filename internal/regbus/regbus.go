// Copyright © 2025-2026 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package regbus provides byte wide register access to SMBus devices.
package regbus

import (
	"fmt"
	"sync"

	"github.com/platinasystems/i2c"
)

// Lock serializes access to the shared i2c adapters of this process.
var Lock sync.Mutex

// Bus reads and writes single 8-bit device registers.
type Bus interface {
	Get(reg uint8) (byte, error)
	Set(reg uint8, v byte) error
}

// Error is the only failure kind of a register transfer.
type Error struct {
	Op   string
	Bus  int
	Addr int
	Reg  uint8
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("i2c-%d.%#02x: %s %#02x: %v",
		e.Bus, e.Addr, e.Op, e.Reg, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// I2c is a Bus on the slave Addr of /dev/i2c-Bus.
type I2c struct {
	Bus  int
	Addr int
}

func (h *I2c) i2cDo(rw i2c.RW, reg uint8, data *i2c.SMBusData) (err error) {
	var bus i2c.Bus

	Lock.Lock()
	defer Lock.Unlock()

	err = bus.Open(h.Bus)
	if err != nil {
		return
	}
	defer bus.Close()

	err = bus.ForceSlaveAddress(h.Addr)
	if err != nil {
		return
	}

	err = bus.Do(rw, reg, i2c.ByteData, data)
	return
}

func (h *I2c) Get(reg uint8) (byte, error) {
	var data i2c.SMBusData
	if err := h.i2cDo(i2c.Read, reg, &data); err != nil {
		return 0, &Error{"read", h.Bus, h.Addr, reg, err}
	}
	return data[0], nil
}

func (h *I2c) Set(reg uint8, v byte) error {
	var data i2c.SMBusData
	data[0] = v
	if err := h.i2cDo(i2c.Write, reg, &data); err != nil {
		return &Error{"write", h.Bus, h.Addr, reg, err}
	}
	return nil
}

func (h *I2c) String() string {
	return fmt.Sprintf("i2c-%d.%#02x", h.Bus, h.Addr)
}
